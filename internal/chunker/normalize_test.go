package chunker

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "collapses blank line runs",
			input: "first\n\n\n\nsecond",
			want:  "first\n\nsecond",
		},
		{
			name:  "blank line run with whitespace between newlines",
			input: "first\n \t\n  \nsecond",
			want:  "first\n\nsecond",
		},
		{
			name:  "keeps single blank line",
			input: "first\n\nsecond",
			want:  "first\n\nsecond",
		},
		{
			name:  "collapses spaces and tabs",
			input: "a  \t  b\tc",
			want:  "a b c",
		},
		{
			name:  "strips space after newline",
			input: "line one\n   line two",
			want:  "line one\nline two",
		},
		{
			name:  "trims whole text",
			input: "\n\n  padded  \n\n",
			want:  "padded",
		},
		{
			name:  "windows line endings",
			input: "a\r\n\r\n\r\nb\r\nc",
			want:  "a\n\nb\nc",
		},
		{
			name:  "whitespace only",
			input: " \t\n\n ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"a\n\t\n\n b",
		"x\n \n \nY   z",
		"  lead\n\n\n\n\t tab\t\tlead\n \n",
		"SKILLS\nPython, Go\n\nEXPERIENCE\nDid things.",
		"trailing space \nnext",
		"été\n\n\nà  bientôt",
		"a\r\r\nb",
		"a\rb",
		"page one\r\r\n\r\npage two\r",
	}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once = %q, twice = %q", input, once, twice)
		}
	}
}
