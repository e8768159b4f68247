package extract

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"testing"
)

func TestExtractor_Dispatch(t *testing.T) {
	e := New()
	ctx := context.Background()

	tests := []struct {
		name     string
		filename string
		data     string
		want     string
		wantErr  error
	}{
		{
			name:     "plain text is trimmed",
			filename: "notes.txt",
			data:     "\n  hello there  \n",
			want:     "hello there",
		},
		{
			name:     "extension is case insensitive",
			filename: "NOTES.TXT",
			data:     "upper",
			want:     "upper",
		},
		{
			name:     "unsupported extension",
			filename: "program.exe",
			data:     "MZ",
			wantErr:  ErrUnsupportedType,
		},
		{
			name:     "missing extension",
			filename: "README",
			data:     "text",
			wantErr:  ErrUnsupportedType,
		},
		{
			name:     "binary text file",
			filename: "blob.txt",
			data:     "\xff\xfe\x00bad",
			wantErr:  ErrBinaryContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Extract(ctx, tt.filename, []byte(tt.data))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Extract() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Extract() unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Extract() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractor_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := New().Extract(ctx, "a.txt", []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("Extract() error = %v, want context.Canceled", err)
	}
}

func TestExtractor_SupportsAndRegister(t *testing.T) {
	e := New()

	for _, name := range []string{"a.pdf", "b.DOCX", "c.txt", "d.md", "e.markdown", "f.csv", "g.html", "h.htm"} {
		if !e.Supports(name) {
			t.Errorf("Supports(%q) = false, want true", name)
		}
	}
	if e.Supports("i.xlsx") {
		t.Error("Supports(i.xlsx) = true, want false")
	}

	e.Register(PlainText, ".LOG")
	if !e.Supports("server.log") {
		t.Error("registered extension should be supported")
	}
	if exts := e.Extensions(); len(exts) != 9 || exts[0] != ".csv" {
		t.Errorf("Extensions() = %v", exts)
	}
}

func TestPDF_InvalidData(t *testing.T) {
	if _, err := PDF([]byte("definitely not a pdf")); err == nil {
		t.Error("PDF() expected error for invalid data")
	}
}

func TestDOCX(t *testing.T) {
	const documentXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:pPr><w:pStyle w:val="Heading1"/></w:pPr><w:r><w:t>EXPERIENCE</w:t></w:r></w:p>
<w:p><w:r><w:t>Built</w:t></w:r><w:r><w:t xml:space="preserve"> things</w:t></w:r></w:p>
<w:p></w:p>
<w:p><w:r><w:t>Go</w:t></w:r><w:r><w:tab/><w:t>Rust</w:t></w:r></w:p>
</w:body>
</w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	got, err := DOCX(buf.Bytes())
	if err != nil {
		t.Fatalf("DOCX() unexpected error: %v", err)
	}
	if want := "EXPERIENCE\n\nBuilt things\n\nGo\tRust"; got != want {
		t.Errorf("DOCX() = %q, want %q", got, want)
	}
}

func TestDOCX_MissingBody(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("docProps/core.xml"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_ = zw.Close()

	if _, err := DOCX(buf.Bytes()); err == nil {
		t.Error("DOCX() expected error when word/document.xml is missing")
	}
	if _, err := DOCX([]byte("not a zip")); err == nil {
		t.Error("DOCX() expected error for non-zip data")
	}
}

func TestCSV(t *testing.T) {
	got, err := CSV([]byte("name,age\nAlice,30\nBob,4\n"))
	if err != nil {
		t.Fatalf("CSV() unexpected error: %v", err)
	}
	want := " name age\nAlice  30\n  Bob   4"
	if got != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}

	if got, _ := CSV(nil); got != "" {
		t.Errorf("CSV(nil) = %q, want empty", got)
	}
}

func TestCSV_RaggedRows(t *testing.T) {
	got, err := CSV([]byte("a,b,c\n1\n"))
	if err != nil {
		t.Fatalf("CSV() unexpected error: %v", err)
	}
	if want := "a b c\n1"; got != want {
		t.Errorf("CSV() = %q, want %q", got, want)
	}
}

func TestHTML(t *testing.T) {
	page := `<html><head><title>Team Page</title><style>p { color: red }</style></head>
<body><h1>Hello</h1><script>track()</script><p>World <b>bold</b></p>
<noscript>enable js</noscript><ul><li>one</li><li>two</li></ul></body></html>`

	got, err := HTML([]byte(page))
	if err != nil {
		t.Fatalf("HTML() unexpected error: %v", err)
	}
	if want := "Team Page\nHello\nWorld\nbold\none\ntwo"; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
}

func TestMarkdown(t *testing.T) {
	source := "# Title\n\nSome *intro* text\nspanning two lines.\n\n## Skills\n\n- Go\n- `Rust`\n\n" +
		"| lang | years |\n|------|-------|\n| Go | 5 |\n\n```\nfmt.Println(1)\n```\n\n---\n\nSee <https://example.com>.\n"

	got, err := Markdown([]byte(source))
	if err != nil {
		t.Fatalf("Markdown() unexpected error: %v", err)
	}
	want := "Title\n\nSome intro text\nspanning two lines.\n\nSkills\n\nGo\nRust\n\nlang | years\nGo | 5\n\nfmt.Println(1)\n\nSee https://example.com."
	if got != want {
		t.Errorf("Markdown() =\n%q\nwant\n%q", got, want)
	}
}
