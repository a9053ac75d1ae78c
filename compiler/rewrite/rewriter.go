// Package rewrite implements the text rewriter: it replays the
// original source, substituting each recorded TemplateSlice with its
// per-backend replacement, in a single traversal per backend. It never
// reconstructs an AST or token text, only byte ranges of the original
// source and the slice's own replacement strings.
package rewrite

import (
	"strings"

	"github.com/spaghettifunk/shaderc/compiler/model"
)

// Backend selects which half of a TemplateSlice to substitute.
type Backend int

const (
	Vulkan Backend = iota
	OpenGL
)

// Rewrite walks slices in order, copying the untouched source between
// them and splicing in the backend-specific replacement text. Slices
// must already be non-decreasing in Start and non-overlapping; Rewrite
// does not re-validate it.
func Rewrite(src []byte, slices []model.TemplateSlice, backend Backend) string {
	var b strings.Builder
	b.Grow(len(src))

	prevEnd := 0
	for _, s := range slices {
		b.Write(src[prevEnd:s.Start])
		if backend == Vulkan {
			b.WriteString(s.VulkanText)
		} else {
			b.WriteString(s.OpenGLText)
		}
		prevEnd = s.End
	}
	b.Write(src[prevEnd:])

	return b.String()
}

// Both produces the Vulkan and OpenGL outputs, one traversal per
// backend.
func Both(src []byte, slices []model.TemplateSlice) (vulkan string, opengl string) {
	return Rewrite(src, slices, Vulkan), Rewrite(src, slices, OpenGL)
}
