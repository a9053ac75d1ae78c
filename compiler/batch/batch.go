// Package batch implements the end-to-end per-shader pipeline and the
// batch-level orchestration that threads a single GlobalState across
// every shader in a compile run: lex, directive-parse, rewrite,
// assemble+validate SPIR-V, derive+register a vertex layout, aggregate
// descriptors, and finally emit the generated header.
//
// The shape mirrors a single driving loop over a fixed pipeline of
// passes, generalized from per-frame render passes to per-shader
// compile passes.
package batch

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/shaderc/compiler/core"
	"github.com/spaghettifunk/shaderc/compiler/descriptor"
	"github.com/spaghettifunk/shaderc/compiler/directive"
	"github.com/spaghettifunk/shaderc/compiler/header"
	"github.com/spaghettifunk/shaderc/compiler/model"
	"github.com/spaghettifunk/shaderc/compiler/rewrite"
	"github.com/spaghettifunk/shaderc/compiler/spirv"
	"github.com/spaghettifunk/shaderc/compiler/token"
	"github.com/spaghettifunk/shaderc/compiler/vertex"
)

// Source is one input template file as read from disk (or a fixture in
// tests): its path (used both for diagnostics and for deriving name +
// stage), and its raw bytes.
type Source struct {
	Path string
	Src  []byte
}

// Result is the outcome of compiling one batch: every successfully
// compiled shader, in input order, plus the aggregated state and the
// generated header text.
type Result struct {
	Shaders []model.CompiledShader
	State   *model.GlobalState
	Header  string
	// Fatal is set when any shader failed with a fatal error category
	// (currently: an unknown directive keyword after "{{"). The header
	// is still produced from whatever shaders did compile, but the
	// caller must surface a non-zero exit code.
	Fatal bool
}

// nameAndStage derives the <name>.<stage>.in filename contract. ok is
// false on any violation: unrecognized extension, or too few
// dot-separated components.
func nameAndStage(path string) (name string, stage model.Stage, ok bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".in") {
		return "", 0, false
	}
	trimmed := strings.TrimSuffix(base, ".in")
	idx := strings.LastIndex(trimmed, ".")
	if idx < 0 {
		return "", 0, false
	}
	ext := trimmed[idx+1:]
	st, known := model.StageFromExt(ext)
	if !known {
		return "", 0, false
	}
	return trimmed[:idx], st, true
}

// Compile runs the full batch pipeline over sources, which must already
// be sorted into a deterministic order by the caller (the filesystem
// walk and sort live in cmd/shaderc); batch never re-sorts by path so
// callers can choose their own stable ordering.
func Compile(sources []Source, asm spirv.Assembler) Result {
	state := model.NewGlobalState()
	var shaders []model.CompiledShader
	fatal := false

	for _, src := range sources {
		name, stage, ok := nameAndStage(src.Path)
		if !ok {
			core.LogWarn("skipping %s: does not match the <name>.<stage>.in filename contract", src.Path)
			continue
		}

		shader, err := compileOne(state, name, stage, src.Src, asm)
		if err != nil {
			core.LogError("skipping %s: %v", src.Path, err)
			if errors.Is(err, core.ErrUnknownDirective) {
				fatal = true
			}
			continue
		}
		shaders = append(shaders, shader)
	}

	return Result{
		Shaders: shaders,
		State:   state,
		Header:  header.Emit(shaders, state),
		Fatal:   fatal,
	}
}

// compileOne runs the per-shader pipeline: lex -> directive parse ->
// rewrite -> spirv assemble+validate -> vertex layout derive and
// register -> descriptor aggregate.
func compileOne(state *model.GlobalState, name string, stage model.Stage, src []byte, asm spirv.Assembler) (model.CompiledShader, error) {
	toks := token.Lex(src)

	res, err := directive.Parse(name, src, toks, stage)
	if err != nil {
		return model.CompiledShader{}, fmt.Errorf("directive parse: %w", err)
	}

	vulkanSrc, openglSrc := rewrite.Both(src, res.Slices)

	spv, err := asm.Compile(vulkanSrc, stage)
	if err != nil {
		return model.CompiledShader{}, fmt.Errorf("spirv assembly: %w", err)
	}

	layoutID := model.InvalidVertexLayout
	if stage == model.StageVertex && len(res.Attributes) > 0 {
		layout, err := vertex.DeriveLayout(res.Attributes)
		if err != nil {
			return model.CompiledShader{}, fmt.Errorf("vertex layout: %w", err)
		}
		layoutID, _ = vertex.Register(state, layout)
	}

	if len(res.Bindings) > 0 {
		state.DescriptorLists = append(state.DescriptorLists, res.Bindings)
		// A struct-typename collision only omits that struct's C
		// translation (package descriptor deletes it from the
		// registry); it never drops this shader, so the error is
		// logged and the pipeline continues.
		if err := descriptor.Aggregate(state, res.Bindings); err != nil {
			core.LogWarn("%s: %v", name, err)
		}
	}

	return model.CompiledShader{
		Name:           name,
		Spirv:          spv,
		OpenGLSource:   openglSrc,
		Stage:          stage,
		VertexLayoutID: layoutID,
	}, nil
}
