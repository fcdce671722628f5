package llm_test

import (
	"testing"

	"scenevox/internal/llm"
)

func TestStripFence(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name  string
		reply string
		want  string
	}{
		{"python fence", "```python\nprint(1)\n```", "print(1)"},
		{"bare fence", "```\nimport bpy\nbpy.ops.mesh.primitive_torus_add()\n```", "import bpy\nbpy.ops.mesh.primitive_torus_add()"},
		{"no fence", "print(1)", "print(1)"},
		{"surrounding whitespace", "  \n```python\nx = 1\n```\n  ", "x = 1"},
		{"single line fence", "```python```", ""},
		{"embedded backticks survive", "s = \"```\"", "s = \"```\""},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := llm.StripFence(tc.reply); got != tc.want {
				t.Errorf("StripFence(%q) = %q, want %q", tc.reply, got, tc.want)
			}
		})
	}
}

func TestStripFence_Idempotent(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"```python\nprint(1)\n```",
		"print(1)",
		"```\na = 2\nb = 3\n```",
		"",
	}
	for _, in := range inputs {
		once := llm.StripFence(in)
		twice := llm.StripFence(once)
		if once != twice {
			t.Errorf("StripFence not idempotent for %q: once %q, twice %q", in, once, twice)
		}
	}
}
