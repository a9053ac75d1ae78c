package directive

import (
	"github.com/spaghettifunk/shaderc/compiler/core"
	"github.com/spaghettifunk/shaderc/compiler/token"
)

// reporter is an error reporter as a capability: a single object
// closed over the token stream and the original source that turns a
// failure at a given token index into a logged message plus a
// resynchronized token index. It mutates nothing but the caller's
// cursor (returned, never stored), keeping recovery centralized in one
// place instead of scattered through the parser's directive handlers.
type reporter struct {
	fileName string
	src      []byte
	tokens   []token.Token
}

func newReporter(fileName string, src []byte, tokens []token.Token) *reporter {
	return &reporter{fileName: fileName, src: src, tokens: tokens}
}

func (r *reporter) lineAt(offset int) int {
	line := 1
	for i := 0; i < offset && i < len(r.src); i++ {
		if r.src[i] == '\n' {
			line++
		}
	}
	return line
}

func (r *reporter) offsetAt(idx int) int {
	if idx < len(r.tokens) {
		return r.tokens[idx].Offset
	}
	return len(r.src)
}

// syntaxError reports a directive syntax error: it logs file/line and
// message, then resynchronizes to the token just after the next "}}"
// at or after idx so the parser can keep going.
func (r *reporter) syntaxError(idx int, format string, args ...interface{}) int {
	core.LogWarn("%s:%d: "+format, append([]interface{}{r.fileName, r.lineAt(r.offsetAt(idx))}, args...)...)
	return r.resync(idx)
}

// semanticError reports a semantic error inside a directive (vec3 in a
// block, duplicate location, inconsistent rate, sampler with
// BUFFER_LABEL, struct typename collision). Same resynchronization as
// syntaxError, logged at error level since these abort the affected
// entity's aggregation rather than just a slice.
func (r *reporter) semanticError(idx int, format string, args ...interface{}) int {
	core.LogError("%s:%d: "+format, append([]interface{}{r.fileName, r.lineAt(r.offsetAt(idx))}, args...)...)
	return r.resync(idx)
}

func (r *reporter) resync(idx int) int {
	for i := idx; i < len(r.tokens); i++ {
		if r.tokens[i].Kind == token.KindDoubleRBrace {
			return i + 1
		}
	}
	return len(r.tokens)
}
