// Package header deterministically emits the single generated C/C++
// header consumed by the engine's runtime loader. Every ordering key is
// explicit: input order for shaders, canonical sort keys for layouts
// (already applied by package vertex), insertion order for struct
// typenames.
//
// The generated struct shapes use Doxygen-style /** @brief */ comments,
// since this header is itself C/C++ source meant to read like the
// engine's own C-facing structs.
package header

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spaghettifunk/shaderc/compiler/model"
)

var stageFlagBits = map[model.Stage]string{
	model.StageVertex:   "VK_SHADER_STAGE_VERTEX_BIT",
	model.StageFragment: "VK_SHADER_STAGE_FRAGMENT_BIT",
	model.StageCompute:  "VK_SHADER_STAGE_COMPUTE_BIT",
}

var inputRateName = map[model.VertexInputRate]string{
	model.RateVertex:   "VK_VERTEX_INPUT_RATE_VERTEX",
	model.RateInstance: "VK_VERTEX_INPUT_RATE_INSTANCE",
}

var descriptorTypeName = map[model.DescriptorType]string{
	model.DescriptorSampler2D:      "VK_DESCRIPTOR_TYPE_COMBINED_IMAGE_SAMPLER",
	model.DescriptorUniformBuffer:  "VK_DESCRIPTOR_TYPE_UNIFORM_BUFFER",
}

// sanitizeIdent turns a shader name like "Builtin.MaterialShader" into a
// valid C identifier fragment ("Builtin_MaterialShader").
func sanitizeIdent(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// Emit produces the complete generated header as a single string.
// shaders must already be in the deterministic order they were
// compiled in; state is the batch's aggregated GlobalState.
func Emit(shaders []model.CompiledShader, state *model.GlobalState) string {
	var b strings.Builder

	emitPreamble(&b)
	emitVertexLayoutEnum(&b, state)
	emitShaderSpecStruct(&b)
	emitVertexLayoutArray(&b, state)
	emitVertexLayoutRegistry(&b, state)
	for _, s := range shaders {
		emitShaderBlock(&b, s)
	}
	emitStructTranslations(&b, state)
	emitDescriptorPool(&b, state)
	emitShaderSpecsArray(&b, shaders)

	return b.String()
}

func emitPreamble(b *strings.Builder) {
	b.WriteString("#pragma once\n\n")
	b.WriteString("#include <cstdint>\n")
	b.WriteString("#include <cstddef>\n")
	b.WriteString("#include <vulkan/vulkan.h>\n\n")
	b.WriteString("// Generated by shaderc. Do not edit by hand.\n\n")
}

// emitVertexLayoutEnum emits the GeneratedVertexLayoutID enum.
func emitVertexLayoutEnum(b *strings.Builder, state *model.GlobalState) {
	b.WriteString("/** @brief Identifies one of the vertex layouts deduplicated across all compiled shaders. */\n")
	b.WriteString("typedef enum GeneratedVertexLayoutID {\n")
	for _, name := range state.LayoutNames {
		fmt.Fprintf(b, "\t%s,\n", name)
	}
	b.WriteString("\tNUM_GENERATED_VERTEX_LAYOUTS,\n")
	b.WriteString("\tINVALID_VERTEX_LAYOUT = NUM_GENERATED_VERTEX_LAYOUTS,\n")
	b.WriteString("} GeneratedVertexLayoutID;\n\n")
}

// emitShaderSpecStruct emits the ShaderSpec record type.
func emitShaderSpecStruct(b *strings.Builder) {
	b.WriteString("/** @brief Per-shader specification record consumed by the runtime loader. */\n")
	b.WriteString("typedef struct ShaderSpec {\n")
	b.WriteString("\tconst uint32_t* spv;\n")
	b.WriteString("\tuint32_t size;\n")
	b.WriteString("\tconst char* name;\n")
	b.WriteString("\tVkShaderStageFlagBits stage_flags;\n")
	b.WriteString("\tGeneratedVertexLayoutID vertex_layout_id;\n")
	b.WriteString("} ShaderSpec;\n\n")
}

// emitVertexLayoutArray emits the per-layout binding/attribute
// descriptor tables and the top-level array indexed by layout id.
func emitVertexLayoutArray(b *strings.Builder, state *model.GlobalState) {
	b.WriteString("typedef struct GeneratedVertexBindingDesc {\n")
	b.WriteString("\tuint32_t binding;\n")
	b.WriteString("\tuint32_t stride;\n")
	b.WriteString("\tVkVertexInputRate input_rate;\n")
	b.WriteString("} GeneratedVertexBindingDesc;\n\n")

	b.WriteString("typedef struct GeneratedVertexAttributeDesc {\n")
	b.WriteString("\tuint32_t location;\n")
	b.WriteString("\tuint32_t binding;\n")
	b.WriteString("\tVkFormat format;\n")
	b.WriteString("\tuint32_t offset;\n")
	b.WriteString("} GeneratedVertexAttributeDesc;\n\n")

	b.WriteString("typedef struct GeneratedVertexLayoutDesc {\n")
	b.WriteString("\tconst GeneratedVertexBindingDesc* bindings;\n")
	b.WriteString("\tuint32_t binding_count;\n")
	b.WriteString("\tconst GeneratedVertexAttributeDesc* attributes;\n")
	b.WriteString("\tuint32_t attribute_count;\n")
	b.WriteString("} GeneratedVertexLayoutDesc;\n\n")

	for i, layout := range state.Layouts {
		name := state.LayoutNames[i]
		fmt.Fprintf(b, "static const GeneratedVertexBindingDesc %s_bindings[] = {\n", name)
		for _, bd := range layout.Bindings {
			fmt.Fprintf(b, "\t{ %d, %d, %s },\n", bd.Binding, bd.Stride, inputRateName[bd.Rate])
		}
		b.WriteString("};\n")

		fmt.Fprintf(b, "static const GeneratedVertexAttributeDesc %s_attributes[] = {\n", name)
		for _, a := range layout.Attributes {
			fmt.Fprintf(b, "\t{ %d, %d, %s, %d },\n", a.Location, a.Binding, a.Format, a.Offset)
		}
		b.WriteString("};\n\n")
	}

	b.WriteString("static const GeneratedVertexLayoutDesc generated_vertex_layouts[NUM_GENERATED_VERTEX_LAYOUTS] = {\n")
	for i, layout := range state.Layouts {
		name := state.LayoutNames[i]
		fmt.Fprintf(b, "\t{ %s_bindings, %d, %s_attributes, %d },\n", name, len(layout.Bindings), name, len(layout.Attributes))
	}
	b.WriteString("};\n\n")
}

// emitVertexLayoutRegistry emits a static registry plus an inline
// initializer/accessor pair for materializing runtime Vulkan structs.
func emitVertexLayoutRegistry(b *strings.Builder, state *model.GlobalState) {
	b.WriteString("static VkVertexInputBindingDescription g_runtime_vertex_bindings[NUM_GENERATED_VERTEX_LAYOUTS][16];\n")
	b.WriteString("static VkVertexInputAttributeDescription g_runtime_vertex_attributes[NUM_GENERATED_VERTEX_LAYOUTS][16];\n\n")

	b.WriteString("/** @brief Materializes runtime VkVertexInput*Description arrays from the compile-time tables above. Call once at startup. */\n")
	b.WriteString("inline void init_vertex_layout_registry(void) {\n")
	b.WriteString("\tfor (uint32_t id = 0; id < NUM_GENERATED_VERTEX_LAYOUTS; ++id) {\n")
	b.WriteString("\t\tconst GeneratedVertexLayoutDesc* desc = &generated_vertex_layouts[id];\n")
	b.WriteString("\t\tfor (uint32_t i = 0; i < desc->binding_count; ++i) {\n")
	b.WriteString("\t\t\tg_runtime_vertex_bindings[id][i].binding = desc->bindings[i].binding;\n")
	b.WriteString("\t\t\tg_runtime_vertex_bindings[id][i].stride = desc->bindings[i].stride;\n")
	b.WriteString("\t\t\tg_runtime_vertex_bindings[id][i].inputRate = desc->bindings[i].input_rate;\n")
	b.WriteString("\t\t}\n")
	b.WriteString("\t\tfor (uint32_t i = 0; i < desc->attribute_count; ++i) {\n")
	b.WriteString("\t\t\tg_runtime_vertex_attributes[id][i].location = desc->attributes[i].location;\n")
	b.WriteString("\t\t\tg_runtime_vertex_attributes[id][i].binding = desc->attributes[i].binding;\n")
	b.WriteString("\t\t\tg_runtime_vertex_attributes[id][i].format = desc->attributes[i].format;\n")
	b.WriteString("\t\t\tg_runtime_vertex_attributes[id][i].offset = desc->attributes[i].offset;\n")
	b.WriteString("\t\t}\n")
	b.WriteString("\t}\n")
	b.WriteString("}\n\n")

	b.WriteString("/** @brief Returns the compile-time descriptor for a given layout id. */\n")
	b.WriteString("inline const GeneratedVertexLayoutDesc* get_vertex_layout(GeneratedVertexLayoutID id) {\n")
	b.WriteString("\treturn &generated_vertex_layouts[id];\n")
	b.WriteString("}\n\n")
}

// shaderIdent builds the C identifier prefix for one shader's generated
// symbols. A logical shader name is shared across its vertex/fragment/
// compute stage files, so the stage is folded into the
// identifier to keep per-stage symbols distinct; ShaderSpec.name itself
// still carries the bare logical name.
func shaderIdent(s model.CompiledShader) string {
	return sanitizeIdent(s.Name) + "_" + s.Stage.String()
}

// emitShaderBlock emits one shader's SPIR-V array, name, OpenGL
// source string, and ShaderSpec record.
func emitShaderBlock(b *strings.Builder, s model.CompiledShader) {
	ident := shaderIdent(s)

	fmt.Fprintf(b, "static const uint32_t %s_spv[] = {\n", ident)
	words := len(s.Spirv) / 4
	for i := 0; i < words; i++ {
		word := uint32(s.Spirv[i*4]) | uint32(s.Spirv[i*4+1])<<8 | uint32(s.Spirv[i*4+2])<<16 | uint32(s.Spirv[i*4+3])<<24
		if i%4 == 0 {
			b.WriteString("\t")
		}
		fmt.Fprintf(b, "0x%08x,", word)
		if i%4 == 3 || i == words-1 {
			b.WriteString("\n")
		} else {
			b.WriteString(" ")
		}
	}
	b.WriteString("};\n")
	fmt.Fprintf(b, "static const uint32_t %s_spv_size = sizeof(%s_spv);\n", ident, ident)
	fmt.Fprintf(b, "static const char* %s_name = \"%s\";\n", ident, s.Name)

	fmt.Fprintf(b, "static const char %s_opengl_glsl[] =\n", ident)
	lines := strings.Split(s.OpenGLSource, "\n")
	for i, line := range lines {
		suffix := "\\n"
		if i == len(lines)-1 {
			suffix = ""
		}
		fmt.Fprintf(b, "\t%q\n", line+suffix)
	}
	b.WriteString("\t;\n")

	layoutID := s.VertexLayoutID
	if layoutID == "" {
		layoutID = model.InvalidVertexLayout
	}
	fmt.Fprintf(b, "static const ShaderSpec %s_spec = { %s_spv, %s_spv_size, %s_name, %s, %s };\n\n",
		ident, ident, ident, ident, stageFlagBits[s.Stage], layoutID)
}

// emitStructTranslations emits the C struct translation of every
// registered uniform block.
func emitStructTranslations(b *strings.Builder, state *model.GlobalState) {
	for _, typename := range orderedStructNames(state) {
		desc := state.StructRegistry[typename]
		fmt.Fprintf(b, "typedef struct alignas(16) %s {\n", desc.Typename)
		for _, m := range desc.Members {
			align, _ := model.AlignOfGlslType(m.GlslType)
			components := componentCount(m.GlslType)
			total := components * maxInt(m.ArraySize, 1)
			if total > 1 {
				fmt.Fprintf(b, "\talignas(%d) float %s[%d];\n", align, m.Name, total)
			} else {
				fmt.Fprintf(b, "\talignas(%d) float %s;\n", align, m.Name)
			}
			if m.ArraySize > 1 {
				fmt.Fprintf(b, "\tstatic const uint32_t %s_COUNT = %d;\n", m.Name, m.ArraySize)
			}
		}
		fmt.Fprintf(b, "} %s;\n\n", desc.Typename)
	}
}

// componentCount is the number of float components a GLSL scalar/
// vector/matrix type flattens to in the C translation. vec3 never
// appears here: struct_body.go rejects it as a uniform-block member.
func componentCount(glslType string) int {
	switch glslType {
	case "float":
		return 1
	case "vec2":
		return 2
	case "vec4":
		return 4
	case "mat2":
		return 4
	case "mat3":
		return 9
	case "mat4":
		return 16
	default:
		return 1
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// orderedStructNames returns struct typenames in first-registration
// (insertion) order. GlobalState's
// map doesn't preserve insertion order on its own, so batch records it
// separately via state.DescriptorLists traversal order at aggregation
// time; here we fall back to a stable lexical order only if no better
// source is available, keeping this package self-contained for tests
// that build a GlobalState directly.
func orderedStructNames(state *model.GlobalState) []string {
	seen := make(map[string]bool, len(state.StructRegistry))
	var order []string
	for _, list := range state.DescriptorLists {
		for _, bnd := range list {
			if bnd.Struct == nil || seen[bnd.Struct.Typename] {
				continue
			}
			if _, ok := state.StructRegistry[bnd.Struct.Typename]; ok {
				seen[bnd.Struct.Typename] = true
				order = append(order, bnd.Struct.Typename)
			}
		}
	}
	var rest []string
	for name := range state.StructRegistry {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(order, rest...)
}

// emitDescriptorPool emits the descriptor pool size table and max_sets.
func emitDescriptorPool(b *strings.Builder, state *model.GlobalState) {
	b.WriteString("static const VkDescriptorPoolSize generated_pool_sizes[] = {\n")
	max := 0
	// Deterministic order: sampler before uniform buffer, matching the
	// DescriptorType enum's declaration order.
	order := []model.DescriptorType{model.DescriptorSampler2D, model.DescriptorUniformBuffer}
	for _, dt := range order {
		count := state.DescriptorTally[dt]
		if count == 0 {
			continue
		}
		fmt.Fprintf(b, "\t{ %s, %d },\n", descriptorTypeName[dt], count)
		if count > max {
			max = count
		}
	}
	b.WriteString("};\n")
	fmt.Fprintf(b, "static const uint32_t max_sets = %d;\n\n", max)
}

// emitShaderSpecsArray emits the trailing array of pointers to every
// compiled shader's spec, in input order.
func emitShaderSpecsArray(b *strings.Builder, shaders []model.CompiledShader) {
	b.WriteString("static const ShaderSpec* generated_shader_specs[] = {\n")
	for _, s := range shaders {
		fmt.Fprintf(b, "\t&%s_spec,\n", shaderIdent(s))
	}
	b.WriteString("};\n")
	b.WriteString("static const uint32_t num_generated_specs = sizeof(generated_shader_specs) / sizeof(generated_shader_specs[0]);\n")
}
