// Package model holds the data types shared across the compiler's
// lexer, directive parser, rewriter, vertex-layout, descriptor, and
// header-emitter passes, so none of those packages import one another
// just to share a struct.
package model

import "fmt"

// Stage is the shader stage a template file targets, derived from its
// filename extension (<name>.<stage>.in).
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
	StageCompute
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	case StageCompute:
		return "compute"
	default:
		return "unknown"
	}
}

// GlslArg is the -S argument glslangValidator expects for this stage.
func (s Stage) GlslArg() string {
	switch s {
	case StageVertex:
		return "vert"
	case StageFragment:
		return "frag"
	case StageCompute:
		return "comp"
	default:
		return ""
	}
}

// StageFromExt maps the <stage> component of an input filename
// to a Stage. Any other extension is a filename violation and is
// reported by the caller, not here.
func StageFromExt(ext string) (Stage, bool) {
	switch ext {
	case "vert":
		return StageVertex, true
	case "frag":
		return StageFragment, true
	case "comp":
		return StageCompute, true
	default:
		return 0, false
	}
}

// DescriptorType is the closed set of resource kinds a SET_BINDING
// directive can describe.
type DescriptorType int

const (
	DescriptorSampler2D DescriptorType = iota
	DescriptorUniformBuffer
)

func (d DescriptorType) String() string {
	switch d {
	case DescriptorSampler2D:
		return "SAMPLER2D"
	case DescriptorUniformBuffer:
		return "UNIFORM_BUFFER"
	default:
		return "UNKNOWN"
	}
}

// VertexInputRate is the per-binding update rate.
type VertexInputRate int

const (
	RateVertex VertexInputRate = iota
	RateInstance
)

func (r VertexInputRate) String() string {
	if r == RateInstance {
		return "instance"
	}
	return "vertex"
}

// InvalidVertexLayout is the sentinel vertex_layout_id for non-vertex
// stages or vertex shaders with zero attributes.
const InvalidVertexLayout = "INVALID_VERTEX_LAYOUT"

// TemplateSlice is a half-open byte range in the original source plus
// its two backend substitution strings. Invariant: slices
// produced by a single parse are emitted in non-decreasing Start order
// and never overlap.
type TemplateSlice struct {
	Start      int
	End        int
	VulkanText string
	OpenGLText string
}

// VertexAttribute is parsed from the extended LOCATION form inside a
// vertex stage.
type VertexAttribute struct {
	Location      int
	Binding       int
	GlslType      string
	Rate          VertexInputRate
	Identifier    string
	Offset        int
	TightlyPacked bool
}

// StructMember is one field of a uniform block, laid out with
// std140-like rules.
type StructMember struct {
	Name      string
	GlslType  string
	Offset    int
	Size      int
	ArraySize int
}

// StructDescription is the parsed body of a `uniform TypeName { ... } id;`
// block.
type StructDescription struct {
	Typename   string
	Identifier string
	Size       int
	Members    []StructMember
}

// Equal reports whether two struct descriptions have identical member
// sequences (same typename with non-equal members is a hard error).
func (s StructDescription) Equal(o StructDescription) bool {
	if len(s.Members) != len(o.Members) {
		return false
	}
	for i := range s.Members {
		if s.Members[i] != o.Members[i] {
			return false
		}
	}
	return true
}

// SetBindingLayout is a single `{{ SET_BINDING s b [BUFFER_LABEL L] }}`
// descriptor binding.
type SetBindingLayout struct {
	Set            int
	Binding        int
	DescriptorType DescriptorType
	Struct         *StructDescription
	BufferLabel    string
}

// VulkanVertexBinding is one vertex-buffer binding slot.
type VulkanVertexBinding struct {
	Binding int
	Stride  int
	Rate    VertexInputRate
}

// VulkanVertexAttribute is one attribute within a binding.
// Format holds the C identifier of the Vulkan format enum (e.g.
// "VK_FORMAT_R32G32B32_SFLOAT"), derived in package vertex from the
// real github.com/goki/vulkan format constants.
type VulkanVertexAttribute struct {
	Location int
	Binding  int
	Format   string
	Offset   int
}

// VulkanVertexLayout is the canonical (bindings, attributes) pair that
// describes how vertex buffer data feeds a pipeline.
type VulkanVertexLayout struct {
	Bindings   []VulkanVertexBinding
	Attributes []VulkanVertexAttribute
}

// Equal implements the structural-equality dedup rule: two
// layouts are equal iff their binding vectors and attribute vectors are
// elementwise equal.
func (l VulkanVertexLayout) Equal(o VulkanVertexLayout) bool {
	if len(l.Bindings) != len(o.Bindings) || len(l.Attributes) != len(o.Attributes) {
		return false
	}
	for i := range l.Bindings {
		if l.Bindings[i] != o.Bindings[i] {
			return false
		}
	}
	for i := range l.Attributes {
		if l.Attributes[i] != o.Attributes[i] {
			return false
		}
	}
	return true
}

// CompiledShader is the per-shader result of the batch pass.
type CompiledShader struct {
	Name           string
	Spirv          []byte
	OpenGLSource   string
	Stage          Stage
	VertexLayoutID string
}

// GlobalState is the aggregated state threaded across a compile batch:
// unique vertex layouts, one SetBindingLayout list per shader, the
// struct registry, and the descriptor-type tally.
type GlobalState struct {
	Layouts         []VulkanVertexLayout
	LayoutNames     []string
	DescriptorLists [][]SetBindingLayout
	StructRegistry  map[string]StructDescription
	DescriptorTally map[DescriptorType]int
	// CollidedStructs holds typenames that were registered with
	// conflicting member definitions from two different shaders. A
	// collided typename is permanently excluded from StructRegistry so
	// the header emitter never prints an ambiguous translation for it.
	// The shaders that reference it still compile normally.
	CollidedStructs map[string]bool
}

// NewGlobalState returns an empty, ready-to-use batch aggregation context.
func NewGlobalState() *GlobalState {
	return &GlobalState{
		StructRegistry:  make(map[string]StructDescription),
		DescriptorTally: make(map[DescriptorType]int),
		CollidedStructs: make(map[string]bool),
	}
}

// scalarSize is the std140-ish size table, shared by the
// struct-body parser and the vertex-layout deriver (attribute sizes use
// the same table as uniform-block member sizes).
var scalarSize = map[string]int{
	"float": 4,
	"vec2":  8,
	"vec3":  12,
	"vec4":  16,
	"mat2":  2 * 2 * 4,
	"mat3":  3 * 3 * 4,
	"mat4":  4 * 4 * 4,
}

// scalarAlign is the alignment table.
var scalarAlign = map[string]int{
	"float": 4,
	"vec2":  8,
	"vec3":  16,
	"vec4":  16,
	"mat2":  16,
	"mat3":  16,
	"mat4":  16,
}

// SizeOfGlslType returns the byte size of a scalar/vector/matrix GLSL type.
func SizeOfGlslType(t string) (int, error) {
	sz, ok := scalarSize[t]
	if !ok {
		return 0, fmt.Errorf("unknown glsl type %q", t)
	}
	return sz, nil
}

// AlignOfGlslType returns the std140-like alignment of a GLSL type.
func AlignOfGlslType(t string) (int, error) {
	al, ok := scalarAlign[t]
	if !ok {
		return 0, fmt.Errorf("unknown glsl type %q", t)
	}
	return al, nil
}

// IsNativeVertexType reports whether t is a type the vertex-layout
// deriver knows how to map to Vulkan formats: float, vec2..4 and
// mat2..4. vec3 is accepted here; it is rejected only inside uniform
// blocks.
func IsNativeVertexType(t string) bool {
	switch t {
	case "float", "vec2", "vec3", "vec4", "mat2", "mat3", "mat4":
		return true
	default:
		return false
	}
}
