// Package vertex derives a VulkanVertexLayout from the VertexAttribute
// list recorded for one vertex shader, deduplicates it against the
// batch's global layout list, and synthesizes a stable C enum name for
// it.
//
// Vulkan format constants are taken from github.com/goki/vulkan rather
// than hand-rolled, so the glsl_type → format table can never drift
// from the real VkFormat enum.
package vertex

import (
	"fmt"
	"sort"
	"strings"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/shaderc/compiler/model"
)

// glslToVkFormat maps a scalar/vector GLSL type to the real vk.Format
// constant from github.com/goki/vulkan.
var glslToVkFormat = map[string]vk.Format{
	"float": vk.FormatR32Sfloat,
	"vec2":  vk.FormatR32g32Sfloat,
	"vec3":  vk.FormatR32g32b32Sfloat,
	"vec4":  vk.FormatR32g32b32a32Sfloat,
}

// vkFormatCName is the C identifier the header emitter prints for each
// vk.Format value this package can produce.
var vkFormatCName = map[vk.Format]string{
	vk.FormatR32Sfloat:         "VK_FORMAT_R32_SFLOAT",
	vk.FormatR32g32Sfloat:      "VK_FORMAT_R32G32_SFLOAT",
	vk.FormatR32g32b32Sfloat:   "VK_FORMAT_R32G32B32_SFLOAT",
	vk.FormatR32g32b32a32Sfloat: "VK_FORMAT_R32G32B32A32_SFLOAT",
}

// formatName returns the Vulkan format enum's C identifier for a
// scalar/vector GLSL type, backed by the real vk.Format constant.
func formatName(glslType string) (string, error) {
	f, ok := glslToVkFormat[glslType]
	if !ok {
		return "", fmt.Errorf("glsl type %q has no scalar/vector Vulkan format", glslType)
	}
	return vkFormatCName[f], nil
}

// columnType returns the vector type of one column of a matrix type,
// and the number of columns. Matrix vertex attributes have no single
// VkFormat; Vulkan pipelines instead consume one location per column,
// which is the expansion this package performs.
func columnType(glslType string) (string, int, bool) {
	switch glslType {
	case "mat2":
		return "vec2", 2, true
	case "mat3":
		return "vec3", 3, true
	case "mat4":
		return "vec4", 4, true
	default:
		return "", 0, false
	}
}

// DeriveLayout derives a binding/attribute layout over the attributes
// recorded for a single vertex shader: rejects inconsistent packing
// and duplicate locations, groups attributes by binding, computes
// offsets and strides, and returns bindings/attributes in canonical
// sorted order.
func DeriveLayout(attrs []model.VertexAttribute) (model.VulkanVertexLayout, error) {
	if len(attrs) == 0 {
		return model.VulkanVertexLayout{}, nil
	}

	// 1. reject mixed packing.
	tightly := attrs[0].TightlyPacked
	for _, a := range attrs[1:] {
		if a.TightlyPacked != tightly {
			return model.VulkanVertexLayout{}, fmt.Errorf("vertex attributes mix tightly-packed and explicit-offset forms")
		}
	}

	// 2. reject duplicate locations.
	seenLoc := make(map[int]bool, len(attrs))
	for _, a := range attrs {
		if seenLoc[a.Location] {
			return model.VulkanVertexLayout{}, fmt.Errorf("duplicate vertex attribute location %d", a.Location)
		}
		seenLoc[a.Location] = true
	}

	// Group by binding, preserving declaration order within each binding
	// (the order the running offset sum for tightly-packed layouts is
	// computed in).
	byBinding := make(map[int][]model.VertexAttribute)
	var bindingOrder []int
	for _, a := range attrs {
		if _, ok := byBinding[a.Binding]; !ok {
			bindingOrder = append(bindingOrder, a.Binding)
		}
		byBinding[a.Binding] = append(byBinding[a.Binding], a)
	}

	var bindings []model.VulkanVertexBinding
	var vkAttrs []model.VulkanVertexAttribute

	for _, b := range bindingOrder {
		group := byBinding[b]
		rate := group[0].Rate
		runningOffset := 0
		stride := 0
		for _, a := range group {
			if a.Rate != rate {
				return model.VulkanVertexLayout{}, fmt.Errorf("binding %d has inconsistent input rates", b)
			}
			typeSize, err := model.SizeOfGlslType(a.GlslType)
			if err != nil {
				return model.VulkanVertexLayout{}, err
			}

			offset := a.Offset
			if tightly {
				offset = runningOffset
			}

			if colType, cols, isMatrix := columnType(a.GlslType); isMatrix {
				colSize, _ := model.SizeOfGlslType(colType)
				fname, err := formatName(colType)
				if err != nil {
					return model.VulkanVertexLayout{}, err
				}
				for c := 0; c < cols; c++ {
					vkAttrs = append(vkAttrs, model.VulkanVertexAttribute{
						Location: a.Location + c,
						Binding:  b,
						Format:   fname,
						Offset:   offset + c*colSize,
					})
				}
			} else {
				fname, err := formatName(a.GlslType)
				if err != nil {
					return model.VulkanVertexLayout{}, err
				}
				vkAttrs = append(vkAttrs, model.VulkanVertexAttribute{
					Location: a.Location,
					Binding:  b,
					Format:   fname,
					Offset:   offset,
				})
			}

			runningOffset = offset + typeSize
			stride += typeSize
		}
		bindings = append(bindings, model.VulkanVertexBinding{Binding: b, Stride: stride, Rate: rate})
	}

	// 6. canonical sort order.
	sort.Slice(bindings, func(i, j int) bool { return bindings[i].Binding < bindings[j].Binding })
	sort.Slice(vkAttrs, func(i, j int) bool {
		if vkAttrs[i].Binding != vkAttrs[j].Binding {
			return vkAttrs[i].Binding < vkAttrs[j].Binding
		}
		return vkAttrs[i].Location < vkAttrs[j].Location
	})

	return model.VulkanVertexLayout{Bindings: bindings, Attributes: vkAttrs}, nil
}

// typeSuffixFromFormat renders the C enum suffix (without its leading
// underscore, e.g. "VEC3") for one attribute's Vulkan format.
func typeSuffixFromFormat(format string) string {
	// format is e.g. "VK_FORMAT_R32G32B32_SFLOAT"; recover a short GLSL
	// spelling from its component count.
	switch format {
	case "VK_FORMAT_R32_SFLOAT":
		return "FLOAT"
	case "VK_FORMAT_R32G32_SFLOAT":
		return "VEC2"
	case "VK_FORMAT_R32G32B32_SFLOAT":
		return "VEC3"
	case "VK_FORMAT_R32G32B32A32_SFLOAT":
		return "VEC4"
	default:
		return "UNKNOWN"
	}
}

// EnumName synthesizes a stable C identifier for a vertex layout.
// Non-vertex shaders or vertex shaders with zero attributes use
// model.InvalidVertexLayout; callers are expected to check that case
// themselves via len(layout.Attributes) == 0.
func EnumName(layout model.VulkanVertexLayout) string {
	if len(layout.Attributes) == 0 {
		return model.InvalidVertexLayout
	}

	var b strings.Builder
	b.WriteString("VERTEX_LAYOUT")

	uniqueBindings := map[int]bool{}
	for _, bd := range layout.Bindings {
		uniqueBindings[bd.Binding] = true
	}
	hasInstanceRate := false
	for _, bd := range layout.Bindings {
		if bd.Rate == model.RateInstance {
			hasInstanceRate = true
		}
	}

	lastBinding := -1
	for _, a := range layout.Attributes {
		if a.Binding != lastBinding {
			if len(uniqueBindings) > 1 {
				fmt.Fprintf(&b, "_BINDING%d", a.Binding)
			}
			if hasInstanceRate {
				rate := model.RateVertex
				for _, bd := range layout.Bindings {
					if bd.Binding == a.Binding {
						rate = bd.Rate
					}
				}
				if rate == model.RateInstance {
					b.WriteString("_RATE_INSTANCE")
				} else {
					b.WriteString("_RATE_VERTEX")
				}
			}
			lastBinding = a.Binding
		}
		b.WriteString("_")
		b.WriteString(typeSuffixFromFormat(a.Format))
	}

	return b.String()
}

// Register deduplicates layout against state's global list and returns
// the stable enum name plus whether this call inserted a new unique
// layout.
func Register(state *model.GlobalState, layout model.VulkanVertexLayout) (string, bool) {
	if len(layout.Attributes) == 0 {
		return model.InvalidVertexLayout, false
	}
	for i, existing := range state.Layouts {
		if existing.Equal(layout) {
			return state.LayoutNames[i], false
		}
	}
	name := EnumName(layout)
	state.Layouts = append(state.Layouts, layout)
	state.LayoutNames = append(state.LayoutNames, name)
	return name, true
}
