package descriptor

import (
	"testing"

	"github.com/spaghettifunk/shaderc/compiler/model"
)

func TestAggregateTalliesDescriptorTypes(t *testing.T) {
	state := model.NewGlobalState()
	err := Aggregate(state, []model.SetBindingLayout{
		{Set: 0, Binding: 0, DescriptorType: model.DescriptorSampler2D},
		{Set: 0, Binding: 1, DescriptorType: model.DescriptorSampler2D},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.DescriptorTally[model.DescriptorSampler2D] != 2 {
		t.Fatalf("expected tally 2, got %d", state.DescriptorTally[model.DescriptorSampler2D])
	}
}

func TestAggregateDetectsStructCollision(t *testing.T) {
	state := model.NewGlobalState()
	mvp4 := model.StructDescription{Typename: "Mvp", Identifier: "u", Size: 64,
		Members: []model.StructMember{{Name: "m", GlslType: "mat4", Offset: 0, Size: 64}}}
	mvp3 := model.StructDescription{Typename: "Mvp", Identifier: "u", Size: 48,
		Members: []model.StructMember{{Name: "m", GlslType: "mat3", Offset: 0, Size: 36}}}

	if err := Aggregate(state, []model.SetBindingLayout{
		{Set: 0, Binding: 0, DescriptorType: model.DescriptorUniformBuffer, Struct: &mvp4},
	}); err != nil {
		t.Fatalf("unexpected error on first registration: %v", err)
	}

	err := Aggregate(state, []model.SetBindingLayout{
		{Set: 1, Binding: 0, DescriptorType: model.DescriptorUniformBuffer, Struct: &mvp3},
	})
	if err == nil {
		t.Fatal("expected a collision error for conflicting Mvp definitions")
	}
	if !state.CollidedStructs["Mvp"] {
		t.Fatal("expected Mvp to be marked collided")
	}
	if _, ok := state.StructRegistry["Mvp"]; ok {
		t.Fatal("expected the colliding struct to be removed from the registry, not emitted")
	}
	// Both descriptor bindings still tally: the collision only refuses
	// the struct's C translation, not the shaders that reference it.
	if state.DescriptorTally[model.DescriptorUniformBuffer] != 2 {
		t.Fatalf("expected both bindings to still tally, got %d", state.DescriptorTally[model.DescriptorUniformBuffer])
	}
}

func TestAggregateAllowsIdenticalRedefinition(t *testing.T) {
	state := model.NewGlobalState()
	mvp := model.StructDescription{Typename: "Mvp", Identifier: "u", Size: 64,
		Members: []model.StructMember{{Name: "m", GlslType: "mat4", Offset: 0, Size: 64}}}

	for i := 0; i < 2; i++ {
		if err := Aggregate(state, []model.SetBindingLayout{
			{Set: i, Binding: 0, DescriptorType: model.DescriptorUniformBuffer, Struct: &mvp},
		}); err != nil {
			t.Fatalf("unexpected error on identical redefinition %d: %v", i, err)
		}
	}
	if len(state.StructRegistry) != 1 {
		t.Fatalf("expected a single registry entry, got %d", len(state.StructRegistry))
	}
}

func TestMaxSetsIsPerTypeMaximum(t *testing.T) {
	state := model.NewGlobalState()
	state.DescriptorTally[model.DescriptorSampler2D] = 3
	state.DescriptorTally[model.DescriptorUniformBuffer] = 7
	if got := MaxSets(state); got != 7 {
		t.Fatalf("expected max_sets 7, got %d", got)
	}
}
