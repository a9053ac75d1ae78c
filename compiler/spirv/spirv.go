// Package spirv hands Vulkan GLSL to the external SPIR-V assembler and
// validates the result. The assembler is modeled as the Assembler
// interface so it can be swapped for a hermetic stub in tests.
package spirv

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/spaghettifunk/shaderc/compiler/core"
	"github.com/spaghettifunk/shaderc/compiler/model"
)

// Assembler turns Vulkan GLSL source for a given stage into a SPIR-V
// blob, or an error.
type Assembler interface {
	Compile(glsl string, stage model.Stage) ([]byte, error)
}

// External shells out to glslangValidator (or a compatible assembler)
// using the same stream-capturing exec.Command discipline used
// elsewhere in this module for subprocess calls.
type External struct {
	// Path is the assembler binary, e.g. "glslangValidator" or
	// "$VULKAN_SDK/bin/glslangValidator".
	Path string
	// ScratchDir is where temporary input/output files are created.
	// Defaults to os.TempDir() when empty.
	ScratchDir string
	// Verbose prints the Vulkan GLSL to stderr before assembling it and
	// streams the assembler's stdout/stderr as it runs.
	Verbose bool
}

// Compile writes glsl to a scratch file named after a fresh uuid and
// suffixed with the stage (so concurrent
// `mage Build:Shaders` invocations across shader files never collide on
// the scratch path), invokes the assembler, and validates the output.
func (e *External) Compile(glsl string, stage model.Stage) ([]byte, error) {
	dir := e.ScratchDir
	if dir == "" {
		dir = os.TempDir()
	}

	id := uuid.New().String()
	inPath := filepath.Join(dir, fmt.Sprintf("shaderc-%s.%s", id, stage.GlslArg()))
	outPath := filepath.Join(dir, fmt.Sprintf("shaderc-%s.%s.spv", id, stage.GlslArg()))

	if err := os.WriteFile(inPath, []byte(glsl), 0o644); err != nil {
		return nil, fmt.Errorf("spirv: writing scratch input: %w", err)
	}
	defer os.Remove(inPath)
	defer os.Remove(outPath)

	path := e.Path
	if path == "" {
		path = "glslangValidator"
	}

	cmd := exec.Command(path, "-S", stage.GlslArg(), "-o", outPath, "-V", inPath)

	var buf bytes.Buffer
	if e.Verbose {
		fmt.Fprintf(os.Stderr, "--- vulkan source (%s) ---\n%s\n", stage, glsl)
		cmd.Stdout = io.MultiWriter(&buf, os.Stdout)
		cmd.Stderr = io.MultiWriter(&buf, os.Stderr)
	} else {
		cmd.Stdout = &buf
		cmd.Stderr = &buf
	}

	if err := cmd.Run(); err != nil {
		core.LogError("spirv: assembler failed for stage %s:\n--- source ---\n%s\n--- assembler output ---\n%s", stage, glsl, buf.String())
		return nil, fmt.Errorf("spirv: %s exited with error: %w", path, err)
	}

	out, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("spirv: reading assembler output: %w", err)
	}

	return Validate(out)
}

// Validate enforces the length invariant: a SPIR-V blob must
// be a positive multiple of 4 bytes.
func Validate(blob []byte) ([]byte, error) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: got %d bytes", core.ErrSpirvLength, len(blob))
	}
	return blob, nil
}
