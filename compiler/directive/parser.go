// Package directive implements the recursive-descent directive parser:
// it scans a token stream for "{{ ... }}" regions, recognizes the four
// directives (VERSION, LOCATION, SET_BINDING, PUSH_CONSTANT), and
// produces the TemplateSlice list plus the per-shader vertex attribute
// and descriptor binding metadata that package vertex and package
// descriptor consume.
package directive

import (
	"fmt"
	"strconv"

	"github.com/spaghettifunk/shaderc/compiler/core"
	"github.com/spaghettifunk/shaderc/compiler/model"
	"github.com/spaghettifunk/shaderc/compiler/token"
)

// Result is everything one shader's directive pass produces.
type Result struct {
	Slices     []model.TemplateSlice
	Attributes []model.VertexAttribute
	Bindings   []model.SetBindingLayout
}

// Parse runs the outer scan over toks, the token stream lexed from
// src. fileName is used only for diagnostics. stage governs LOCATION's
// vertex-specific grammar extensions.
//
// Fatal errors (an unknown directive after "{{", or a token after "{{"
// that isn't a directive keyword at all) abort the whole shader and
// are returned as errors. Recoverable directive syntax and semantic
// errors are logged through the reporter and do not stop the pass; the
// affected slice/attribute/binding is simply dropped and parsing
// resumes after the next "}}".
func Parse(fileName string, src []byte, toks []token.Token, stage model.Stage) (Result, error) {
	rep := newReporter(fileName, src, toks)
	res := Result{}

	i := 0
	for i < len(toks) {
		if toks[i].Kind != token.KindDoubleLBrace {
			i++
			continue
		}
		start := toks[i].Offset
		kwIdx := i + 1
		if kwIdx >= len(toks) {
			return res, fmt.Errorf("%s: unexpected end of input after '{{'", fileName)
		}

		switch toks[kwIdx].Kind {
		case token.KindVERSION:
			next, ok := advanceSlice(toks, kwIdx+1, start, "450\n", "410 core\n", &res)
			if !ok {
				i = rep.syntaxError(kwIdx, "malformed VERSION directive, expected '{{ VERSION }}'")
				continue
			}
			i = next

		case token.KindLOCATION:
			next, err := parseLocation(rep, &res, toks, src, kwIdx, start, stage)
			if err != nil {
				i = rep.syntaxError(kwIdx, "%s", err.Error())
				continue
			}
			i = next

		case token.KindSET_BINDING:
			next, err := parseSetBinding(rep, &res, toks, kwIdx, start)
			if err != nil {
				i = rep.syntaxError(kwIdx, "%s", err.Error())
				continue
			}
			i = next

		case token.KindPUSH_CONSTANT:
			core.LogWarn("%s: %s", fileName, core.ErrPushConstantNotImplemented.Error())
			i = rep.resync(kwIdx)

		default:
			return res, fmt.Errorf("%s: %w", fileName, core.ErrUnknownDirective)
		}
	}

	return res, nil
}

// advanceSlice expects toks[idx] to be the closing "}}" of a directive
// with no further grammar, records the resulting slice, and returns the
// index just past it.
func advanceSlice(toks []token.Token, idx, start int, vulkan, opengl string, res *Result) (int, bool) {
	if idx >= len(toks) || toks[idx].Kind != token.KindDoubleRBrace {
		return idx, false
	}
	end := toks[idx].Offset + 2
	res.Slices = append(res.Slices, model.TemplateSlice{Start: start, End: end, VulkanText: vulkan, OpenGLText: opengl})
	return idx + 1, true
}

func parseUint(tok token.Token) (int, error) {
	if tok.Kind != token.KindText || !token.IsNumeric(tok.Text) {
		return 0, fmt.Errorf("expected an integer literal, got %q", tok.Text)
	}
	return strconv.Atoi(tok.Text)
}

// parseLocation implements the LOCATION grammar in all three forms:
// non-vertex bare, vertex bare, and vertex extended.
func parseLocation(rep *reporter, res *Result, toks []token.Token, src []byte, idx, start int, stage model.Stage) (int, error) {
	idx++ // consume LOCATION
	if idx >= len(toks) {
		return idx, fmt.Errorf("expected a location number after LOCATION")
	}
	loc, err := parseUint(toks[idx])
	if err != nil {
		return idx, err
	}
	idx++

	if stage != model.StageVertex {
		if idx >= len(toks) || toks[idx].Kind != token.KindDoubleRBrace {
			return idx, fmt.Errorf("expected '}}' to close non-vertex LOCATION directive")
		}
		end := toks[idx].Offset + 2
		res.Slices = append(res.Slices, model.TemplateSlice{
			Start: start, End: end,
			VulkanText: fmt.Sprintf("layout(location = %d) ", loc),
			OpenGLText: "",
		})
		return idx + 1, nil
	}

	// Vertex stage: bare form if the next token closes the directive.
	if idx < len(toks) && toks[idx].Kind == token.KindDoubleRBrace {
		end := toks[idx].Offset + 2
		res.Slices = append(res.Slices, model.TemplateSlice{
			Start: start, End: end,
			VulkanText: fmt.Sprintf("layout(location = %d) ", loc),
			OpenGLText: "",
		})
		return idx + 1, nil
	}

	// Full form: BINDING b (RATE_VERTEX|RATE_INSTANCE) OFFSET (k|TIGHTLY_PACKED) }}
	if idx >= len(toks) || toks[idx].Kind != token.KindBINDING {
		return idx, fmt.Errorf("expected 'BINDING' or '}}' after LOCATION %d", loc)
	}
	idx++
	if idx >= len(toks) {
		return idx, fmt.Errorf("expected a binding number after BINDING")
	}
	binding, err := parseUint(toks[idx])
	if err != nil {
		return idx, err
	}
	idx++

	if idx >= len(toks) {
		return idx, fmt.Errorf("expected RATE_VERTEX or RATE_INSTANCE")
	}
	var rate model.VertexInputRate
	switch toks[idx].Kind {
	case token.KindRATE_VERTEX:
		rate = model.RateVertex
	case token.KindRATE_INSTANCE:
		rate = model.RateInstance
	default:
		return idx, fmt.Errorf("expected RATE_VERTEX or RATE_INSTANCE")
	}
	idx++

	if idx >= len(toks) || toks[idx].Kind != token.KindOFFSET {
		return idx, fmt.Errorf("expected OFFSET after rate qualifier")
	}
	idx++
	if idx >= len(toks) {
		return idx, fmt.Errorf("expected an offset value or TIGHTLY_PACKED")
	}
	tightly := false
	offset := 0
	if toks[idx].Kind == token.KindTIGHTLY_PACKED {
		tightly = true
		idx++
	} else {
		offset, err = parseUint(toks[idx])
		if err != nil {
			return idx, err
		}
		idx++
	}

	if idx >= len(toks) || toks[idx].Kind != token.KindDoubleRBrace {
		return idx, fmt.Errorf("expected '}}' to close LOCATION directive")
	}
	end := toks[idx].Offset + 2
	idx++

	res.Slices = append(res.Slices, model.TemplateSlice{
		Start: start, End: end,
		VulkanText: fmt.Sprintf("layout(location = %d) ", loc),
		OpenGLText: "",
	})

	// The substitution is recorded regardless; now read the following
	// `in T id ;` (not substituted) to recover the attribute's GLSL type
	// and identifier.
	if idx >= len(toks) || toks[idx].Kind != token.KindIn {
		return idx, fmt.Errorf("expected 'in' after vertex LOCATION directive")
	}
	idx++
	if idx >= len(toks) {
		return idx, fmt.Errorf("expected a type after 'in'")
	}
	glslType, ok := typeKinds[toks[idx].Kind]
	if !ok || !model.IsNativeVertexType(glslType) {
		return idx, fmt.Errorf("expected a native scalar/vector/matrix type after 'in'")
	}
	idx++
	if idx >= len(toks) || toks[idx].Kind != token.KindText {
		return idx, fmt.Errorf("expected an attribute identifier")
	}
	identifier := toks[idx].Text
	idx++
	if idx >= len(toks) || toks[idx].Kind != token.KindSemicolon {
		return idx, fmt.Errorf("expected ';' after vertex attribute declaration")
	}
	idx++

	res.Attributes = append(res.Attributes, model.VertexAttribute{
		Location:      loc,
		Binding:       binding,
		GlslType:      glslType,
		Rate:          rate,
		Identifier:    identifier,
		Offset:        offset,
		TightlyPacked: tightly,
	})

	return idx, nil
}

// parseSetBinding implements the SET_BINDING grammar:
//
//	{{ SET_BINDING s b [BUFFER_LABEL label] }} uniform ( sampler2D id ; | TypeName { ... } id ; )
func parseSetBinding(rep *reporter, res *Result, toks []token.Token, idx, start int) (int, error) {
	idx++ // consume SET_BINDING
	if idx >= len(toks) {
		return idx, fmt.Errorf("expected a set number after SET_BINDING")
	}
	set, err := parseUint(toks[idx])
	if err != nil {
		return idx, err
	}
	idx++
	if idx >= len(toks) {
		return idx, fmt.Errorf("expected a binding number after SET_BINDING %d", set)
	}
	binding, err := parseUint(toks[idx])
	if err != nil {
		return idx, err
	}
	idx++

	label := ""
	if idx < len(toks) && toks[idx].Kind == token.KindBUFFER_LABEL {
		idx++
		if idx >= len(toks) || toks[idx].Kind != token.KindText {
			return idx, fmt.Errorf("expected a label identifier after BUFFER_LABEL")
		}
		label = toks[idx].Text
		idx++
	}

	if idx >= len(toks) || toks[idx].Kind != token.KindDoubleRBrace {
		return idx, fmt.Errorf("expected '}}' to close SET_BINDING directive")
	}
	end := toks[idx].Offset + 2
	idx++

	res.Slices = append(res.Slices, model.TemplateSlice{
		Start: start, End: end,
		VulkanText: fmt.Sprintf("layout(set = %d, binding = %d) ", set, binding),
		OpenGLText: "",
	})

	if idx >= len(toks) || toks[idx].Kind != token.KindUniform {
		return idx, fmt.Errorf("expected 'uniform' after SET_BINDING directive")
	}
	idx++
	if idx >= len(toks) {
		return idx, fmt.Errorf("expected 'sampler2D' or a struct type name after 'uniform'")
	}

	if toks[idx].Kind == token.KindSampler2D {
		idx++
		if idx >= len(toks) || toks[idx].Kind != token.KindText {
			return idx, fmt.Errorf("expected an identifier after 'uniform sampler2D'")
		}
		idx++
		if idx >= len(toks) || toks[idx].Kind != token.KindSemicolon {
			return idx, fmt.Errorf("expected ';' after sampler2D declaration")
		}
		idx++
		if label != "" {
			return idx, fmt.Errorf("BUFFER_LABEL is illegal on a sampler2D binding")
		}
		res.Bindings = append(res.Bindings, model.SetBindingLayout{
			Set: set, Binding: binding, DescriptorType: model.DescriptorSampler2D,
		})
		return idx, nil
	}

	if toks[idx].Kind != token.KindText {
		return idx, fmt.Errorf("expected 'sampler2D' or a struct type name after 'uniform'")
	}
	typename := toks[idx].Text
	idx++

	desc, next, err := parseStructBody(toks, idx, typename)
	if err != nil {
		return idx, err
	}

	res.Bindings = append(res.Bindings, model.SetBindingLayout{
		Set: set, Binding: binding, DescriptorType: model.DescriptorUniformBuffer,
		Struct: &desc, BufferLabel: label,
	})
	return next, nil
}
