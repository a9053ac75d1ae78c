package spirv

import (
	"testing"

	"github.com/spaghettifunk/shaderc/compiler/model"
)

func TestValidateRejectsBadLength(t *testing.T) {
	cases := [][]byte{nil, {}, {1, 2, 3}, {1, 2, 3, 4, 5}}
	for _, c := range cases {
		if _, err := Validate(c); err == nil {
			t.Errorf("expected error validating %v", c)
		}
	}
}

func TestValidateAcceptsMultipleOf4(t *testing.T) {
	if _, err := Validate([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStubReturnsValidBlob(t *testing.T) {
	s := &Stub{}
	blob, err := s.Compile("#version 450\nvoid main(){}\n", model.StageVertex)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blob) == 0 || len(blob)%4 != 0 {
		t.Fatalf("stub blob fails spirv length invariant: %d bytes", len(blob))
	}
}
