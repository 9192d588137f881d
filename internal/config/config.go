// Package config loads the gox CLI's runtime settings: an optional YAML
// file overridden by GOX_* environment variables.
package config

import (
	"fmt"
	"log"
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"
)

// defaultMaxSteps is the instruction budget applied when neither the
// config file nor GOX_MAX_STEPS set one explicitly.
const defaultMaxSteps = 10_000_000

// Config holds the settings that govern a single gox run: whether to
// emit debug output, whether to write the compiled IR to
// output/<stem>/<stem>.ir under the working directory, and the
// interpreter's resource limits.
type Config struct {
	Debug              bool `yaml:"debug" env:"GOX_DEBUG"`
	GenerateOutputFile bool `yaml:"generateOutputFile" env:"GOX_GENERATE_OUTPUT_FILE"`

	// MaxSteps bounds the number of instructions the machine executes
	// before halting with a budget-exceeded error. 0 means no limit.
	MaxSteps int `yaml:"maxSteps" env:"GOX_MAX_STEPS"`

	// MaxMemory is linear memory's initial size in bytes. 0 uses the
	// machine's built-in default.
	MaxMemory int `yaml:"maxMemory" env:"GOX_MAX_MEMORY"`
}

// Load reads path (if it exists) as YAML into a Config, then overrides its
// fields from GOX_* environment variables. A missing or malformed file is
// not fatal: it is logged and Load falls back to defaults plus whatever
// environment overrides apply, mirroring the original interpreter's
// load_config fallback chain.
func Load(path string) (*Config, error) {
	cfg := &Config{MaxSteps: defaultMaxSteps}

	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, cfg); err != nil {
				log.Printf("config: ignoring malformed %s: %s", path, err)
				cfg = &Config{MaxSteps: defaultMaxSteps}
			}
		case os.IsNotExist(err):
			// no config file, defaults plus env only
		default:
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: env: %w", err)
	}
	return cfg, nil
}
