// Package descriptor implements descriptor aggregation: tallying
// descriptor types for pool sizing and reconciling struct descriptions
// registered under the same typename across shaders.
package descriptor

import (
	"fmt"

	"github.com/spaghettifunk/shaderc/compiler/core"
	"github.com/spaghettifunk/shaderc/compiler/model"
)

// Aggregate folds one shader's SetBindingLayout list into the batch's
// GlobalState: it tallies each binding's descriptor type and, for
// UNIFORM_BUFFER bindings, registers or reconciles the bound struct by
// typename. A typename collision is reported via core.LogError and
// returned as an error, but it only refuses to emit that one struct's
// C translation (deleting it from StructRegistry and marking it in
// CollidedStructs). The shaders that reference it keep their SPIR-V,
// OpenGL source, and vertex-layout registration and are not dropped.
func Aggregate(state *model.GlobalState, bindings []model.SetBindingLayout) error {
	var firstErr error
	for _, b := range bindings {
		state.DescriptorTally[b.DescriptorType]++

		if b.Struct == nil {
			continue
		}
		typename := b.Struct.Typename
		if state.CollidedStructs[typename] {
			continue
		}
		existing, ok := state.StructRegistry[typename]
		if !ok {
			state.StructRegistry[typename] = *b.Struct
			continue
		}
		if !existing.Equal(*b.Struct) {
			core.LogError("struct typename collision for %q: conflicting member definitions, omitting its C translation", typename)
			state.CollidedStructs[typename] = true
			delete(state.StructRegistry, typename)
			if firstErr == nil {
				firstErr = fmt.Errorf("%w: %q", core.ErrStructCollision, typename)
			}
		}
	}
	return firstErr
}

// MaxSets computes the pool's maxSets as the maximum per-type
// descriptor count, not the union of all sets.
func MaxSets(state *model.GlobalState) int {
	max := 0
	for _, count := range state.DescriptorTally {
		if count > max {
			max = count
		}
	}
	return max
}
