package ingest

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"
)

const (
	// minChunkRunes merges very small sections into their successor so we
	// don't embed near-empty fragments.
	minChunkRunes = 50
	// maxChunkRunes keeps chunks within the embedding model's context
	// (~450 tokens for a 512-token model).
	maxChunkRunes = 700
)

// MarkdownChunker splits markdown into heading-scoped chunks using the
// goldmark AST.
type MarkdownChunker struct {
	parser goldmark.Markdown
}

func NewMarkdownChunker() *MarkdownChunker {
	return &MarkdownChunker{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// Chunk parses markdown content and returns the document title and its
// chunks. Chunks follow the heading hierarchy; size constraints merge tiny
// sections and split oversized ones.
func (c *MarkdownChunker) Chunk(content []byte, name string) (string, []Chunk, error) {
	if len(strings.TrimSpace(string(content))) == 0 {
		return titleFromName(name), nil, nil
	}

	doc := c.parser.Parser().Parse(text.NewReader(content))
	title := extractTitle(doc, content, name)
	chunks := c.collect(doc, content, title)
	chunks = c.applySizeConstraints(chunks)
	return title, chunks, nil
}

// extractTitle picks the first H1, falling back to the first H2, then the
// filename.
func extractTitle(doc ast.Node, content []byte, name string) string {
	var h1, h2 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		switch {
		case heading.Level == 1 && h1 == "":
			h1 = nodeText(heading, content)
			return ast.WalkStop, nil
		case heading.Level == 2 && h2 == "":
			h2 = nodeText(heading, content)
		}
		return ast.WalkContinue, nil
	})

	if h1 != "" {
		return h1
	}
	if h2 != "" {
		return h2
	}
	return titleFromName(name)
}

func titleFromName(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	if len(words) == 0 {
		return base
	}
	return strings.Join(words, " ")
}

// collect walks the AST and groups text under the nearest heading. Content
// before the first heading is attributed to the document title.
func (c *MarkdownChunker) collect(doc ast.Node, content []byte, title string) []Chunk {
	var chunks []Chunk
	var current *Chunk
	var stack []headingLevel
	index := 0

	flush := func() {
		if current != nil && strings.TrimSpace(current.Text) != "" {
			current.Text = strings.TrimSpace(current.Text)
			chunks = append(chunks, *current)
			index++
		}
		current = nil
	}
	ensure := func(path string) {
		if current == nil {
			current = &Chunk{Index: index, HeadingPath: path}
		}
	}
	appendText := func(s string) {
		ensure("# " + title)
		current.Text += s
	}
	breakLine := func() {
		if current != nil && current.Text != "" && !strings.HasSuffix(current.Text, "\n") {
			current.Text += "\n"
		}
	}

	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, headingLevel{level: node.Level, text: nodeText(node, content)})
			flush()
			current = &Chunk{Index: index, HeadingPath: headingPath(stack)}
			return ast.WalkSkipChildren, nil

		case *ast.Text:
			appendText(string(node.Segment.Value(content)))
		case *ast.String:
			appendText(string(node.Value))
		case *ast.CodeSpan:
			appendText(nodeText(node, content))
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			ensure("# " + title)
			breakLine()
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				current.Text += string(seg.Value(content))
			}
			return ast.WalkSkipChildren, nil
		case *ast.Paragraph, *ast.List, *ast.ListItem:
			breakLine()
		default:
			// Table extension nodes are matched by kind name since their
			// types live outside the core ast package.
			kind := n.Kind().String()
			if kind == "TableRow" || kind == "TableHeader" {
				ensure("# " + title)
				breakLine()
				current.Text += tableRowText(n, content) + "\n"
				return ast.WalkSkipChildren, nil
			}
			if strings.Contains(kind, "Table") {
				breakLine()
			}
		}
		return ast.WalkContinue, nil
	})
	flush()

	if len(chunks) == 0 {
		chunks = append(chunks, Chunk{
			Index:       0,
			HeadingPath: "# " + title,
			Text:        strings.TrimSpace(string(content)),
		})
	}
	return chunks
}

type headingLevel struct {
	level int
	text  string
}

// headingPath renders the heading stack as "# A > ## B > ### C".
func headingPath(stack []headingLevel) string {
	parts := make([]string, len(stack))
	for i, h := range stack {
		parts[i] = strings.Repeat("#", h.level) + " " + h.text
	}
	return strings.Join(parts, " > ")
}

// nodeText collects the raw text under a node.
func nodeText(n ast.Node, content []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(content))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(sb.String())
}

// tableRowText joins the cell texts of a table row with " | ".
func tableRowText(row ast.Node, content []byte) string {
	var cells []string
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, nodeText(cell, content))
	}
	return strings.Join(cells, " | ")
}

// applySizeConstraints merges undersized chunks into the following chunk and
// splits oversized ones, then renumbers indices.
func (c *MarkdownChunker) applySizeConstraints(chunks []Chunk) []Chunk {
	var result []Chunk
	var carry string

	for _, chunk := range chunks {
		text := chunk.Text
		if carry != "" {
			text = carry + "\n\n" + text
			carry = ""
		}
		if len([]rune(text)) < minChunkRunes {
			carry = text
			continue
		}
		chunk.Text = text
		if len([]rune(chunk.Text)) > maxChunkRunes {
			result = append(result, splitChunk(chunk)...)
		} else {
			result = append(result, chunk)
		}
	}
	if carry != "" {
		if len(result) > 0 {
			result[len(result)-1].Text += "\n\n" + carry
		} else {
			result = append(result, Chunk{Text: carry})
		}
	}

	for i := range result {
		result[i].Index = i
	}
	return result
}

// splitChunk breaks an oversized chunk at paragraph boundaries, falling back
// to a hard rune split for a single oversized paragraph. Every part keeps the
// original heading path.
func splitChunk(chunk Chunk) []Chunk {
	paragraphs := strings.Split(chunk.Text, "\n\n")
	var parts []string
	var current string

	for _, p := range paragraphs {
		candidate := p
		if current != "" {
			candidate = current + "\n\n" + p
		}
		if len([]rune(candidate)) > maxChunkRunes && current != "" {
			parts = append(parts, current)
			current = p
		} else {
			current = candidate
		}
	}
	if current != "" {
		parts = append(parts, current)
	}

	var out []Chunk
	for _, part := range parts {
		runes := []rune(part)
		for len(runes) > maxChunkRunes {
			out = append(out, Chunk{HeadingPath: chunk.HeadingPath, Text: string(runes[:maxChunkRunes])})
			runes = runes[maxChunkRunes:]
		}
		if len(runes) > 0 {
			out = append(out, Chunk{HeadingPath: chunk.HeadingPath, Text: string(runes)})
		}
	}
	return out
}
