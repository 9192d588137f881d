package maincmd_test

import (
	"bytes"
	"context"
	"os"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/require"

	"github.com/mna/gox/internal/filetest"
	"github.com/mna/gox/internal/maincmd"
)

var updateRunTests = false

func TestRunFilesGolden(t *testing.T) {
	for _, fi := range filetest.SourceFiles(t, "testdata", ".gox") {
		fi := fi
		t.Run(fi.Name(), func(t *testing.T) {
			var out, errs bytes.Buffer
			stdio := mainer.Stdio{Stdout: &out, Stderr: &errs}
			err := maincmd.RunFiles(context.Background(), stdio, maincmd.RunOptions{}, "testdata/"+fi.Name())
			_ = err // errors, if any, go to errs; only stdout is diffed
			filetest.DiffOutput(t, fi, out.String(), "testdata", &updateRunTests)
		})
	}
}

func TestCheckFilesReportsOK(t *testing.T) {
	var out, errs bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errs}
	err := maincmd.CheckFiles(context.Background(), stdio, 0, "testdata/hello.gox")
	require.NoError(t, err)
	require.Contains(t, out.String(), "ok")
}

func TestRunFilesGeneratesOutputFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/add.gox"
	require.NoError(t, os.WriteFile(path, []byte("print 1 + 1;"), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer func() { require.NoError(t, os.Chdir(wd)) }()

	var out, errs bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errs}
	err = maincmd.RunFiles(context.Background(), stdio, maincmd.RunOptions{GenerateOutputFile: true}, path)
	require.NoError(t, err)

	dump, err := os.ReadFile("output/add/add.ir")
	require.NoError(t, err)
	require.Contains(t, string(dump), "MODULE:::")
}

func TestRunFilesPropagatesRuntimeError(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/div.gox"
	require.NoError(t, os.WriteFile(path, []byte("print 1 / 0;"), 0o644))

	var out, errs bytes.Buffer
	stdio := mainer.Stdio{Stdout: &out, Stderr: &errs}
	err := maincmd.RunFiles(context.Background(), stdio, maincmd.RunOptions{}, path)
	require.Error(t, err)
	require.NotEmpty(t, errs.String())
}
