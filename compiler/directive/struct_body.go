package directive

import (
	"fmt"
	"strconv"

	"github.com/spaghettifunk/shaderc/compiler/model"
	"github.com/spaghettifunk/shaderc/compiler/token"
)

// typeKinds maps a member-type token kind back to its GLSL spelling.
var typeKinds = map[token.Kind]string{
	token.KindFloat: "float",
	token.KindVec2:  "vec2",
	token.KindVec3:  "vec3",
	token.KindVec4:  "vec4",
	token.KindMat2:  "mat2",
	token.KindMat3:  "mat3",
	token.KindMat4:  "mat4",
}

// parseStructBody parses the uniform-block body grammar:
//
//	{ ( Type id ([n])? ; )+ } identifier
//
// idx must point at the '{' token. typename is the identifier already
// consumed before the '{' (the `uniform TypeName` of the caller). It
// returns the parsed StructDescription and the index just past the
// trailing ';' after the block's identifier.
func parseStructBody(toks []token.Token, idx int, typename string) (model.StructDescription, int, error) {
	if idx >= len(toks) || toks[idx].Kind != token.KindLBrace {
		return model.StructDescription{}, idx, fmt.Errorf("expected '{' to open struct body for %q", typename)
	}
	idx++

	var members []model.StructMember
	prevEnd := 0
	// Uniform blocks are always padded out to a 16-byte (vec4) boundary
	// regardless of their largest member, matching std140's block-level
	// base alignment and the generated header's `alignas(16)` on the
	// translated C struct.
	maxAlign := 16

	for idx < len(toks) && toks[idx].Kind != token.KindRBrace {
		glslType, ok := typeKinds[toks[idx].Kind]
		if !ok {
			return model.StructDescription{}, idx, fmt.Errorf("expected a member type inside struct %q", typename)
		}
		if glslType == "vec3" {
			return model.StructDescription{}, idx, fmt.Errorf("vec3 member inside uniform block %q is rejected (alignment hazard)", typename)
		}
		idx++

		if idx >= len(toks) || toks[idx].Kind != token.KindText {
			return model.StructDescription{}, idx, fmt.Errorf("expected member name inside struct %q", typename)
		}
		name := toks[idx].Text
		idx++

		arraySize := 0
		if idx < len(toks) && toks[idx].Kind == token.KindLBracket {
			idx++
			if idx >= len(toks) || toks[idx].Kind != token.KindText || !token.IsNumeric(toks[idx].Text) {
				return model.StructDescription{}, idx, fmt.Errorf("expected array size inside struct %q", typename)
			}
			n, err := strconv.Atoi(toks[idx].Text)
			if err != nil {
				return model.StructDescription{}, idx, fmt.Errorf("invalid array size %q: %w", toks[idx].Text, err)
			}
			arraySize = n
			idx++
			if idx >= len(toks) || toks[idx].Kind != token.KindRBracket {
				return model.StructDescription{}, idx, fmt.Errorf("expected ']' after array size inside struct %q", typename)
			}
			idx++
		}

		if idx >= len(toks) || toks[idx].Kind != token.KindSemicolon {
			return model.StructDescription{}, idx, fmt.Errorf("expected ';' after member %q inside struct %q", name, typename)
		}
		idx++

		align, _ := model.AlignOfGlslType(glslType)
		size, _ := model.SizeOfGlslType(glslType)
		if arraySize > 1 {
			size *= arraySize
		}
		offset := model.AlignUp(prevEnd, align)
		prevEnd = offset + size
		if align > maxAlign {
			maxAlign = align
		}

		members = append(members, model.StructMember{
			Name:      name,
			GlslType:  glslType,
			Offset:    offset,
			Size:      size,
			ArraySize: arraySize,
		})
	}

	if idx >= len(toks) || toks[idx].Kind != token.KindRBrace {
		return model.StructDescription{}, idx, fmt.Errorf("unterminated struct body for %q", typename)
	}
	idx++

	if idx >= len(toks) || toks[idx].Kind != token.KindText {
		return model.StructDescription{}, idx, fmt.Errorf("expected identifier after struct body for %q", typename)
	}
	identifier := toks[idx].Text
	idx++

	if idx >= len(toks) || toks[idx].Kind != token.KindSemicolon {
		return model.StructDescription{}, idx, fmt.Errorf("expected ';' after struct declaration for %q", typename)
	}
	idx++

	total := model.AlignUp(prevEnd, maxAlign)
	if padding := total - prevEnd; padding > 0 {
		members = append(members, model.StructMember{
			Name:      "_pad",
			GlslType:  "float",
			Offset:    prevEnd,
			Size:      padding,
			ArraySize: padding / 4,
		})
	}

	return model.StructDescription{
		Typename:   typename,
		Identifier: identifier,
		Size:       total,
		Members:    members,
	}, idx, nil
}
