// Package config loads the build manifest (shaderc.toml) describing
// where the driver should look for template shaders and where the
// generated header should be written. It unmarshals into an unexported
// staging struct close to the TOML shape, validates it, then transforms
// it into the BuildConfig the rest of the module consumes.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// BuildConfig is the validated, ready-to-use build manifest.
type BuildConfig struct {
	// ShaderDir is the root directory to walk for <name>.<stage>.in files.
	ShaderDir string
	// OutputHeader is the path the generated header is written to.
	OutputHeader string
	// AssemblerPath overrides the default "glslangValidator" lookup.
	AssemblerPath string
	// SkipDirs are directory basenames the walk never descends into,
	// beyond the always-skipped "gen".
	SkipDirs []string
}

// tmpConfig mirrors the TOML document shape before validation.
type tmpConfig struct {
	ShaderDir     string   `toml:"shader_dir"`
	OutputHeader  string   `toml:"output_header"`
	AssemblerPath string   `toml:"assembler_path"`
	SkipDirs      []string `toml:"skip_dirs"`
}

// Validate rejects a manifest missing either required path.
func (c *tmpConfig) Validate() error {
	if c.ShaderDir == "" {
		return fmt.Errorf("config: shader_dir is required")
	}
	if c.OutputHeader == "" {
		return fmt.Errorf("config: output_header is required")
	}
	return nil
}

// TransformToBuildConfig applies defaults and produces the BuildConfig.
func (c *tmpConfig) TransformToBuildConfig() (*BuildConfig, error) {
	path := c.AssemblerPath
	if path == "" {
		path = "glslangValidator"
	}
	return &BuildConfig{
		ShaderDir:     c.ShaderDir,
		OutputHeader:  c.OutputHeader,
		AssemblerPath: path,
		SkipDirs:      c.SkipDirs,
	}, nil
}

// Load reads and validates a shaderc.toml manifest at path.
func Load(path string) (*BuildConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	var tmp tmpConfig
	if err := toml.Unmarshal(raw, &tmp); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := tmp.Validate(); err != nil {
		return nil, err
	}

	return tmp.TransformToBuildConfig()
}
