package batch

import (
	"strings"
	"testing"

	"github.com/spaghettifunk/shaderc/compiler/spirv"
)

const vertSrc = `{{ VERSION }}
{{ LOCATION 0 BINDING 0 RATE_VERTEX OFFSET TIGHTLY_PACKED }}
in vec3 inPosition;
{{ LOCATION 1 BINDING 0 RATE_VERTEX OFFSET TIGHTLY_PACKED }}
in vec2 inUV;
{{ SET_BINDING 0 0 }}
uniform Mvp {
  mat4 projection;
} u_mvp;
void main() {}
`

const fragSrc = `{{ VERSION }}
{{ SET_BINDING 0 0 }}
uniform sampler2D diffuse;
void main() {}
`

func TestCompileProducesShadersAndHeader(t *testing.T) {
	sources := []Source{
		{Path: "triangle.vert.in", Src: []byte(vertSrc)},
		{Path: "triangle.frag.in", Src: []byte(fragSrc)},
	}

	result := Compile(sources, &spirv.Stub{})

	if len(result.Shaders) != 2 {
		t.Fatalf("expected 2 compiled shaders, got %d", len(result.Shaders))
	}
	if result.Shaders[0].Name != "triangle" {
		t.Errorf("expected first shader name %q, got %q", "triangle", result.Shaders[0].Name)
	}
	if result.Shaders[0].VertexLayoutID == "" {
		t.Errorf("expected a non-empty vertex layout id for the vertex shader")
	}
	if result.Shaders[1].VertexLayoutID != "" && result.Shaders[1].VertexLayoutID != "INVALID_VERTEX_LAYOUT" {
		t.Errorf("expected the fragment shader to carry the invalid vertex layout sentinel, got %q", result.Shaders[1].VertexLayoutID)
	}
	if result.State.DescriptorTally[0]+result.State.DescriptorTally[1] == 0 {
		t.Errorf("expected descriptor tallies to be non-zero")
	}
	if !strings.Contains(result.Header, "typedef enum GeneratedVertexLayoutID") {
		t.Errorf("expected a generated header to include the vertex layout enum")
	}
	if !strings.Contains(result.Header, "triangle_vertex_spec") {
		t.Errorf("expected the generated header to include the vertex shader's spec")
	}
	if result.Fatal {
		t.Errorf("expected Fatal to be false for a clean batch")
	}
}

const unknownDirectiveSrc = `{{ NOT_A_DIRECTIVE }}
void main() {}
`

func TestCompileSetsFatalOnUnknownDirective(t *testing.T) {
	sources := []Source{
		{Path: "triangle.vert.in", Src: []byte(vertSrc)},
		{Path: "bad.frag.in", Src: []byte(unknownDirectiveSrc)},
	}
	result := Compile(sources, &spirv.Stub{})
	if !result.Fatal {
		t.Fatal("expected Fatal to be true when a shader contains an unrecognized directive keyword")
	}
	if len(result.Shaders) != 1 {
		t.Fatalf("expected the well-formed shader to still compile, got %d shaders", len(result.Shaders))
	}
}

const collidingFragSrc = `{{ VERSION }}
{{ SET_BINDING 0 0 }}
uniform Mvp {
  vec4 color;
} u_mvp;
void main() {}
`

func TestCompileKeepsBothShadersOnStructCollision(t *testing.T) {
	sources := []Source{
		{Path: "triangle.vert.in", Src: []byte(vertSrc)},
		{Path: "other.frag.in", Src: []byte(collidingFragSrc)},
	}
	result := Compile(sources, &spirv.Stub{})
	if len(result.Shaders) != 2 {
		t.Fatalf("expected a struct collision to omit only the struct, not either shader; got %d shaders", len(result.Shaders))
	}
	if !result.State.CollidedStructs["Mvp"] {
		t.Error("expected Mvp to be recorded as collided")
	}
	if _, ok := result.State.StructRegistry["Mvp"]; ok {
		t.Error("expected the colliding struct to be omitted from the registry")
	}
	if result.Fatal {
		t.Error("a struct collision is not a fatal error category")
	}
}

func TestCompileSkipsFilesViolatingNamingContract(t *testing.T) {
	sources := []Source{
		{Path: "bad_name.in", Src: []byte(vertSrc)},
		{Path: "triangle.frag.in", Src: []byte(fragSrc)},
	}
	result := Compile(sources, &spirv.Stub{})
	if len(result.Shaders) != 1 {
		t.Fatalf("expected the malformed filename to be skipped, got %d shaders", len(result.Shaders))
	}
}

func TestCompileSkipsShaderOnAssemblerFailure(t *testing.T) {
	sources := []Source{
		{Path: "triangle.vert.in", Src: []byte(vertSrc)},
		{Path: "triangle.frag.in", Src: []byte(fragSrc)},
	}
	asm := &spirv.Stub{Err: errAssembler}
	result := Compile(sources, asm)
	if len(result.Shaders) != 0 {
		t.Fatalf("expected both shaders to be skipped on assembler failure, got %d", len(result.Shaders))
	}
}

var errAssembler = assemblerError("boom")

type assemblerError string

func (e assemblerError) Error() string { return string(e) }
