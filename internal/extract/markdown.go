package extract

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New(goldmark.WithExtensions(extension.Table))

// Markdown converts a Markdown document to plain text. Headings become lines
// of their own so the heading detector can find them, list items and table
// rows are one per line, and other blocks are separated by blank lines.
func Markdown(data []byte) (string, error) {
	doc := markdownParser.Parser().Parse(text.NewReader(data))
	return strings.Join(markdownBlocks(doc, data), "\n\n"), nil
}

// markdownBlocks returns the plain text of each block-level child of n.
func markdownBlocks(n ast.Node, content []byte) []string {
	var blocks []string
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Heading, *ast.Paragraph, *ast.TextBlock:
			blocks = appendNonEmpty(blocks, extractTextFromNode(v, content))
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			blocks = appendNonEmpty(blocks, codeBlockText(v, content))
		case *ast.List:
			var items []string
			for item := v.FirstChild(); item != nil; item = item.NextSibling() {
				items = appendNonEmpty(items, strings.Join(markdownBlocks(item, content), "\n"))
			}
			blocks = appendNonEmpty(blocks, strings.Join(items, "\n"))
		case *east.Table:
			var rows []string
			for row := v.FirstChild(); row != nil; row = row.NextSibling() {
				rows = appendNonEmpty(rows, extractTableRowText(row, content))
			}
			blocks = appendNonEmpty(blocks, strings.Join(rows, "\n"))
		case *ast.HTMLBlock, *ast.ThematicBreak:
			// no text
		default:
			blocks = append(blocks, markdownBlocks(c, content)...)
		}
	}
	return blocks
}

// extractTextFromNode extracts the inline text of a node and its children.
// Source line breaks inside a paragraph are kept.
func extractTextFromNode(n ast.Node, content []byte) string {
	var textBuilder strings.Builder

	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch v := node.(type) {
		case *ast.Text:
			textBuilder.Write(v.Segment.Value(content))
			if v.SoftLineBreak() || v.HardLineBreak() {
				textBuilder.WriteByte('\n')
			}
		case *ast.String:
			textBuilder.Write(v.Value)
		case *ast.AutoLink:
			textBuilder.Write(v.Label(content))
			return ast.WalkSkipChildren, nil
		case *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})

	return strings.TrimSpace(textBuilder.String())
}

// extractTableRowText formats the cells of a table row with pipe separators.
func extractTableRowText(row ast.Node, content []byte) string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		if _, ok := cell.(*east.TableCell); ok {
			cells = append(cells, extractTextFromNode(cell, content))
		}
	}
	return strings.Join(cells, " | ")
}

func codeBlockText(n ast.Node, content []byte) string {
	var b strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		b.Write(line.Value(content))
	}
	return strings.TrimRight(b.String(), "\n")
}

func appendNonEmpty(list []string, s string) []string {
	if strings.TrimSpace(s) == "" {
		return list
	}
	return append(list, s)
}
