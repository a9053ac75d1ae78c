//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

func buildShaders(force bool) error {
	fmt.Println("Build shaders...")
	args := []string{"run", "./cmd/shaderc", "-config", "shaderc.toml"}
	if force {
		args = append(args, "-force")
	}
	_, err := executeCmd("go", withArgs(args...), withStream())
	return err
}

// Shaders runs the shaderc driver over shaderc.toml's configured
// shader_dir, regenerating the header it points at if any input is
// newer than the existing output.
func (Build) Shaders() error {
	return buildShaders(false)
}

// ShadersForce reruns the driver unconditionally, ignoring the output
// header's existing mtime.
func (Build) ShadersForce() error {
	return buildShaders(true)
}

// Driver compiles the shaderc binary into bin/shaderc.
func (Build) Driver() error {
	fmt.Println("Build shaderc driver...")
	_, err := executeCmd("go", withArgs("build", "-o", "bin/shaderc", "./cmd/shaderc"), withStream())
	return err
}
