package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestIsHeading(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"SKILLS", true},
		{"EXPERIENCE", true},
		{"Work Experience", true},
		{"Short phrase here", true},
		{"Project Alpha Beta Gamma Delta Epsilon Zeta", true},
		{"2024", true},
		{"Python, Go", false},
		{"PYTHON, GO", true},
		{"SKILLS, TOOLS", true},
		{"Skills, Tools", false},
		{"Did things.", false},
		{"hello world.", false},
		{"This is a long sentence that ends with a period.", false},
		{"this line has quite a few words but no period", false},
		{strings.Repeat("A", 60), false},
		{strings.Repeat("A", 59), true},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := isHeading(tt.line); got != tt.want {
				t.Errorf("isHeading(%q) = %v, want %v", tt.line, got, tt.want)
			}
		})
	}
}

func TestIsTitleAndIsUpper(t *testing.T) {
	titleTests := []struct {
		s    string
		want bool
	}{
		{"Hello World", true},
		{"Hello world", false},
		{"HELLO", false},
		{"O'Neil Report", true},
		{"123", false},
		{"Python, Go", true},
	}
	for _, tt := range titleTests {
		if got := isTitle(tt.s); got != tt.want {
			t.Errorf("isTitle(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}

	upperTests := []struct {
		s    string
		want bool
	}{
		{"SKILLS", true},
		{"SKILLS & TOOLS 2024", true},
		{"Skills", false},
		{"2024", false},
		{"ÉTÉ", true},
	}
	for _, tt := range upperTests {
		if got := isUpper(tt.s); got != tt.want {
			t.Errorf("isUpper(%q) = %v, want %v", tt.s, got, tt.want)
		}
	}
}

func TestGroupBlocks(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Block
	}{
		{
			name: "text before first heading uses default label",
			text: "This opening paragraph has no heading at all.\nOVERVIEW\nThe overview body is here.",
			want: []Block{
				{Heading: DefaultHeading, Body: "This opening paragraph has no heading at all.", Kind: DocumentTypeStructured},
				{Heading: "OVERVIEW", Body: "The overview body is here.", Kind: DocumentTypeStructured},
			},
		},
		{
			name: "skills and experience",
			text: "SKILLS\nPython, Go\n\nEXPERIENCE\nDid things.",
			want: []Block{
				{Heading: "SKILLS", Body: "Python, Go", Kind: DocumentTypeStructured},
				{Heading: "EXPERIENCE", Body: "Did things.", Kind: DocumentTypeStructured},
			},
		},
		{
			name: "heading without body is dropped",
			text: "FIRST\nSECOND\nsome body text here.",
			want: []Block{
				{Heading: "SECOND", Body: "some body text here.", Kind: DocumentTypeStructured},
			},
		},
		{
			name: "blank lines inside a block are skipped",
			text: "NOTES\nline a is here.\n\nline b is here.",
			want: []Block{
				{Heading: "NOTES", Body: "line a is here.\nline b is here.", Kind: DocumentTypeStructured},
			},
		},
		{
			name: "only headings",
			text: "ONE\nTWO",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupBlocks(tt.text, HeadingDetector{})
			if len(got) != len(tt.want) {
				t.Fatalf("GroupBlocks() returned %d blocks, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("GroupBlocks()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestResumeDetector(t *testing.T) {
	text := Normalize("John Doe\nEXPERIENCE\nSenior Engineer, Acme Corp  2019 - Present\nBuilt systems.\n" +
		"Education:\nBSc Computer Science 2012 – 2016\nStudied.")

	blocks := GroupBlocks(text, ResumeDetector{})

	want := []Block{
		{Heading: DefaultHeading, Body: "John Doe", Kind: DocumentTypeSection},
		{Heading: "Senior Engineer, Acme Corp 2019 - Present", Body: "Built systems.", Kind: DocumentTypeItem},
		{Heading: "BSc Computer Science 2012 – 2016", Body: "Studied.", Kind: DocumentTypeItem},
	}
	if len(blocks) != len(want) {
		t.Fatalf("GroupBlocks() returned %d blocks, want %d: %+v", len(blocks), len(want), blocks)
	}
	for i := range want {
		if blocks[i] != want[i] {
			t.Errorf("GroupBlocks()[%d] = %+v, want %+v", i, blocks[i], want[i])
		}
	}
}

func TestResumeDetector_Detect(t *testing.T) {
	d := ResumeDetector{}
	tests := []struct {
		line     string
		wantOK   bool
		wantKind DocumentType
	}{
		{"SKILLS", true, DocumentTypeSection},
		{"Work Experience:", true, DocumentTypeSection},
		{"Jan 2020 – Present", true, DocumentTypeItem},
		{"Backend Developer at Initech (2015 to 2018)", true, DocumentTypeItem},
		{"Led a team of five engineers.", false, ""},
		{"Python, Go, Rust", false, ""},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			b, ok := d.Detect(tt.line)
			if ok != tt.wantOK {
				t.Fatalf("Detect(%q) ok = %v, want %v", tt.line, ok, tt.wantOK)
			}
			if ok && b.Kind != tt.wantKind {
				t.Errorf("Detect(%q) kind = %v, want %v", tt.line, b.Kind, tt.wantKind)
			}
		})
	}
}

func TestDetectorFor(t *testing.T) {
	tests := []struct {
		strategy Strategy
		want     Detector
		wantErr  bool
	}{
		{"", HeadingDetector{}, false},
		{StrategyGeneric, HeadingDetector{}, false},
		{StrategyResume, ResumeDetector{}, false},
		{"markdown", nil, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.strategy), func(t *testing.T) {
			got, err := DetectorFor(tt.strategy)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidConfiguration) {
					t.Errorf("DetectorFor(%q) error = %v, want ErrInvalidConfiguration", tt.strategy, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectorFor(%q) unexpected error: %v", tt.strategy, err)
			}
			if got != tt.want {
				t.Errorf("DetectorFor(%q) = %T, want %T", tt.strategy, got, tt.want)
			}
		})
	}
}
