package core

import "errors"

var (
	// ErrUnknownDirective is fatal: the token after {{ does not match any
	// recognized directive keyword.
	ErrUnknownDirective = errors.New("unknown directive after {{")
	// ErrHeaderWriteFailed is fatal: the generated header could not be
	// written to its output path.
	ErrHeaderWriteFailed = errors.New("failed to write generated header")
	// ErrPushConstantNotImplemented is the message logged as a warning for
	// a PUSH_CONSTANT directive: the parser recognizes the keyword, records
	// no slice or metadata for it, and resumes after its closing "}}".
	ErrPushConstantNotImplemented = errors.New("PUSH_CONSTANT directive is not implemented")
	// ErrStructCollision is raised when two SET_BINDING blocks declare the
	// same typename with non-equal member sequences.
	ErrStructCollision = errors.New("struct typename collision")
	// ErrSpirvLength is raised when an assembled SPIR-V blob is not a
	// positive multiple of 4 bytes.
	ErrSpirvLength = errors.New("spirv blob length is not a positive multiple of 4")
)
