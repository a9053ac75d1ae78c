package directive

import (
	"errors"
	"testing"

	"github.com/spaghettifunk/shaderc/compiler/core"
	"github.com/spaghettifunk/shaderc/compiler/model"
	"github.com/spaghettifunk/shaderc/compiler/token"
)

func parseSrc(t *testing.T, src string, stage model.Stage) (Result, error) {
	t.Helper()
	toks := token.Lex([]byte(src))
	return Parse("fixture", []byte(src), toks, stage)
}

func TestParseVersionDirective(t *testing.T) {
	res, err := parseSrc(t, "{{ VERSION }}\nvoid main() {}\n", model.StageFragment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Slices) != 1 {
		t.Fatalf("expected 1 slice, got %d", len(res.Slices))
	}
	if res.Slices[0].VulkanText != "450\n" {
		t.Errorf("expected Vulkan VERSION substitution %q, got %q", "450\n", res.Slices[0].VulkanText)
	}
}

func TestParseLocationNonVertexBareForm(t *testing.T) {
	res, err := parseSrc(t, "{{ LOCATION 2 }}\nout vec4 outColor;\n", model.StageFragment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Slices) != 1 || res.Slices[0].VulkanText != "layout(location = 2) " {
		t.Fatalf("unexpected slices: %+v", res.Slices)
	}
	if len(res.Attributes) != 0 {
		t.Fatalf("non-vertex LOCATION must not record an attribute, got %+v", res.Attributes)
	}
}

func TestParseLocationVertexBareForm(t *testing.T) {
	res, err := parseSrc(t, "{{ LOCATION 0 }}\nout vec2 v_uv;\n", model.StageVertex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Slices) != 1 || res.Slices[0].VulkanText != "layout(location = 0) " {
		t.Fatalf("unexpected slices: %+v", res.Slices)
	}
	if len(res.Attributes) != 0 {
		t.Fatalf("bare vertex LOCATION (a varying, not an attribute) must not record an attribute, got %+v", res.Attributes)
	}
}

func TestParseLocationVertexExtendedForm(t *testing.T) {
	res, err := parseSrc(t,
		"{{ LOCATION 0 BINDING 0 RATE_VERTEX OFFSET TIGHTLY_PACKED }}\nin vec3 inPosition;\n"+
			"{{ LOCATION 1 BINDING 1 RATE_INSTANCE OFFSET 8 }}\nin vec2 inOffset;\n",
		model.StageVertex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Attributes) != 2 {
		t.Fatalf("expected 2 attributes, got %+v", res.Attributes)
	}

	a := res.Attributes[0]
	if a.Location != 0 || a.Binding != 0 || a.GlslType != "vec3" || a.Rate != model.RateVertex ||
		a.Identifier != "inPosition" || a.Offset != 0 || !a.TightlyPacked {
		t.Fatalf("unexpected first attribute: %+v", a)
	}

	b := res.Attributes[1]
	if b.Location != 1 || b.Binding != 1 || b.GlslType != "vec2" || b.Rate != model.RateInstance ||
		b.Identifier != "inOffset" || b.Offset != 8 || b.TightlyPacked {
		t.Fatalf("unexpected second attribute: %+v", b)
	}
}

func TestParseSetBindingSampler2D(t *testing.T) {
	res, err := parseSrc(t, "{{ SET_BINDING 0 1 }}\nuniform sampler2D diffuse;\n", model.StageFragment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %d", len(res.Bindings))
	}
	bnd := res.Bindings[0]
	if bnd.Set != 0 || bnd.Binding != 1 || bnd.DescriptorType != model.DescriptorSampler2D || bnd.Struct != nil {
		t.Fatalf("unexpected binding: %+v", bnd)
	}
}

func TestParseSetBindingStructStd140Layout(t *testing.T) {
	src := "{{ SET_BINDING 0 0 }}\n" +
		"uniform Mvp {\n" +
		"  vec2 a;\n" +
		"  vec4 b;\n" +
		"  float c;\n" +
		"} u_mvp;\n" +
		"void main() {}\n"
	res, err := parseSrc(t, src, model.StageVertex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Bindings) != 1 || res.Bindings[0].Struct == nil {
		t.Fatalf("expected 1 struct binding, got %+v", res.Bindings)
	}
	desc := res.Bindings[0].Struct

	wantOffsets := []int{0, 16, 32}
	if len(desc.Members) < 3 {
		t.Fatalf("expected at least 3 members, got %+v", desc.Members)
	}
	for i, want := range wantOffsets {
		if desc.Members[i].Offset != want {
			t.Errorf("member %d: expected offset %d, got %d", i, want, desc.Members[i].Offset)
		}
	}
	if desc.Size != 48 {
		t.Errorf("expected block size 48 (padded to a 16-byte boundary), got %d", desc.Size)
	}
}

func TestParseRejectsVec3InUniformBlock(t *testing.T) {
	src := "{{ SET_BINDING 0 0 }}\nuniform Foo {\n  vec3 n;\n} u;\nvoid main() {}\n"
	res, err := parseSrc(t, src, model.StageFragment)
	if err != nil {
		t.Fatalf("vec3 rejection is a recoverable semantic error, not a fatal Parse error: %v", err)
	}
	if len(res.Bindings) != 0 {
		t.Fatalf("expected the offending SET_BINDING to be dropped, got %+v", res.Bindings)
	}
}

func TestParseArrayMemberSize(t *testing.T) {
	src := "{{ SET_BINDING 0 0 }}\nuniform Weights {\n  float w[4];\n} u_w;\nvoid main() {}\n"
	res, err := parseSrc(t, src, model.StageFragment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Bindings) != 1 || res.Bindings[0].Struct == nil || len(res.Bindings[0].Struct.Members) == 0 {
		t.Fatalf("expected a struct binding with one member, got %+v", res.Bindings)
	}
	m := res.Bindings[0].Struct.Members[0]
	if m.ArraySize != 4 || m.Size != 16 {
		t.Fatalf("expected size_of(float)*4 = 16 bytes over 4 elements, got %+v", m)
	}
}

func TestParseSamplerWithBufferLabelIsIllegal(t *testing.T) {
	src := "{{ SET_BINDING 0 0 BUFFER_LABEL Foo }}\nuniform sampler2D diffuse;\nvoid main() {}\n"
	res, err := parseSrc(t, src, model.StageFragment)
	if err != nil {
		t.Fatalf("BUFFER_LABEL on sampler2D is a recoverable semantic error, not a fatal Parse error: %v", err)
	}
	if len(res.Bindings) != 0 {
		t.Fatalf("expected the offending SET_BINDING to be dropped, got %+v", res.Bindings)
	}
}

func TestParsePushConstantIsAStubThatResyncs(t *testing.T) {
	res, err := parseSrc(t, "{{ PUSH_CONSTANT }}\n{{ LOCATION 0 }}\nout vec4 x;\n", model.StageFragment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Slices) != 1 {
		t.Fatalf("expected PUSH_CONSTANT to contribute no slice of its own, got %+v", res.Slices)
	}
}

func TestParseUnknownDirectiveIsFatal(t *testing.T) {
	_, err := parseSrc(t, "{{ NOT_A_DIRECTIVE }}\nvoid main() {}\n", model.StageFragment)
	if err == nil {
		t.Fatal("expected a fatal error for an unrecognized directive keyword")
	}
	if !errors.Is(err, core.ErrUnknownDirective) {
		t.Fatalf("expected errors.Is(err, core.ErrUnknownDirective), got %v", err)
	}
}

func TestParseResyncsAfterMalformedVersionDirective(t *testing.T) {
	res, err := parseSrc(t, "{{ VERSION extra }}\n{{ LOCATION 3 }}\nout vec4 x;\n", model.StageFragment)
	if err != nil {
		t.Fatalf("a malformed directive is recoverable, not fatal: %v", err)
	}
	if len(res.Slices) != 1 {
		t.Fatalf("expected parsing to resync and still record the following LOCATION directive, got %+v", res.Slices)
	}
	if res.Slices[0].VulkanText != "layout(location = 3) " {
		t.Fatalf("unexpected recovered slice: %+v", res.Slices[0])
	}
}

func TestParseAllowsIdenticalStructRedefinitionAcrossCalls(t *testing.T) {
	src := "{{ SET_BINDING 0 0 }}\nuniform Mvp {\n  mat4 m;\n} u;\nvoid main() {}\n"
	res1, err := parseSrc(t, src, model.StageVertex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	res2, err := parseSrc(t, src, model.StageFragment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res1.Bindings[0].Struct.Equal(*res2.Bindings[0].Struct) {
		t.Fatalf("expected two parses of the same struct body to be structurally equal")
	}
}
