//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Watch builds once, then keeps the driver running in --watch mode so
// edits under shader_dir trigger an incremental rebuild.
func (Run) Watch() error {
	fmt.Println("Run shaderc driver in watch mode...")
	_, err := executeCmd("go", withArgs("run", "./cmd/shaderc", "-config", "shaderc.toml", "-watch"), withStream())
	return err
}
