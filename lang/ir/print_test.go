package ir_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/gox/lang/ir"
)

func TestDumpFormat(t *testing.T) {
	m := lower(t, `
		var x int = 1;
		func add(a int, b int) int {
			return a + b;
		}
		print add(x, 2);
	`)

	var sb strings.Builder
	require.NoError(t, ir.Dump(&sb, m))
	out := sb.String()

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Equal(t, "MODULE:::", lines[0])
	require.Equal(t, `GLOBAL::: x: I`, lines[1])

	var sawFunction, sawLocals bool
	for _, l := range lines {
		if strings.HasPrefix(l, "FUNCTION::: add,") {
			sawFunction = true
			require.Contains(t, l, `["a", "b"]`)
			require.Contains(t, l, `["I", "I"]`)
		}
		if sawFunction && strings.HasPrefix(l, "locals:") {
			sawLocals = true
		}
	}
	require.True(t, sawFunction)
	require.True(t, sawLocals)
}
