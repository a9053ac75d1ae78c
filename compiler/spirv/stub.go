package spirv

import "github.com/spaghettifunk/shaderc/compiler/model"

// Stub is a hermetic Assembler for tests: it returns a fixed, known-good
// SPIR-V-shaped blob without shelling out to a real assembler, so the
// batch and header-emission paths can be exercised deterministically
// without glslangValidator installed.
type Stub struct {
	// Blob is returned verbatim from Compile when non-nil. Defaults to
	// a minimal 4-word placeholder blob (16 bytes, a valid length).
	Blob []byte
	// Err, when non-nil, is returned instead of a blob.
	Err error
}

func (s *Stub) Compile(glsl string, stage model.Stage) ([]byte, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Blob != nil {
		return s.Blob, nil
	}
	return []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, nil
}
