package rewrite

import (
	"testing"

	"github.com/spaghettifunk/shaderc/compiler/model"
)

func TestRewriteIdentityWithNoSlices(t *testing.T) {
	src := []byte("void main(){}\n")
	vulkan, opengl := Both(src, nil)
	if vulkan != string(src) || opengl != string(src) {
		t.Fatalf("expected identity rewrite, got vulkan=%q opengl=%q", vulkan, opengl)
	}
}

func TestRewriteVersionDirective(t *testing.T) {
	src := []byte("#version {{ VERSION }}\nvoid main(){}\n")
	slice := model.TemplateSlice{
		Start: len("#version "), End: len("#version {{ VERSION }}\n"),
		VulkanText: "450\n", OpenGLText: "410 core\n",
	}
	vulkan, opengl := Both(src, []model.TemplateSlice{slice})
	if vulkan != "#version 450\nvoid main(){}\n" {
		t.Fatalf("unexpected vulkan output: %q", vulkan)
	}
	if opengl != "#version 410 core\nvoid main(){}\n" {
		t.Fatalf("unexpected opengl output: %q", opengl)
	}
}

func TestRewriteMultipleSlicesInOrder(t *testing.T) {
	src := []byte("AAAABBBBCCCC")
	slices := []model.TemplateSlice{
		{Start: 0, End: 4, VulkanText: "1", OpenGLText: "a"},
		{Start: 4, End: 8, VulkanText: "2", OpenGLText: "b"},
	}
	vulkan, opengl := Both(src, slices)
	if vulkan != "12CCCC" {
		t.Fatalf("unexpected vulkan output: %q", vulkan)
	}
	if opengl != "abCCCC" {
		t.Fatalf("unexpected opengl output: %q", opengl)
	}
}
