package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	frontMatterErrorTemplateConstant = "document front matter is malformed: %v"
	titleHeadingLevelConstant        = 1
	setextHeadingMarkerConstant      = '='
	lineFeedConstant                 = '\n'
)

// Article is the platform-neutral post generated from a document.
type Article struct {
	Title        string
	Body         string
	Tags         []string
	Published    *bool
	CanonicalURL string
	Description  string
	Series       string
	CoverImage   string
}

// ParseError reports a document that cannot be turned into an article.
type ParseError struct {
	Cause error
}

// Error describes the document failure.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(frontMatterErrorTemplateConstant, parseError.Cause)
}

// Unwrap exposes the underlying cause.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

type frontMatterEnvelope struct {
	Title        string   `yaml:"title" toml:"title" json:"title"`
	Tags         []string `yaml:"tags" toml:"tags" json:"tags"`
	Published    *bool    `yaml:"published" toml:"published" json:"published"`
	CanonicalURL string   `yaml:"canonical_url" toml:"canonical_url" json:"canonical_url"`
	Description  string   `yaml:"description" toml:"description" json:"description"`
	Series       string   `yaml:"series" toml:"series" json:"series"`
	CoverImage   string   `yaml:"cover_image" toml:"cover_image" json:"cover_image"`
}

// Parse converts document source into an article. The title comes from front matter, then
// from a leading level-one heading, then from fallbackTitle. The heading is removed from the
// body only when it supplies the title.
func Parse(source []byte, fallbackTitle string) (Article, error) {
	var envelope frontMatterEnvelope
	body, parseError := frontmatter.Parse(bytes.NewReader(source), &envelope)
	if parseError != nil {
		return Article{}, ParseError{Cause: parseError}
	}

	body = bytes.TrimSpace(body)
	remainingBody := body

	title := strings.TrimSpace(envelope.Title)
	if len(title) == 0 {
		title, remainingBody = splitLeadingTitle(body)
	}
	if len(title) == 0 {
		title = strings.TrimSpace(fallbackTitle)
	}

	return Article{
		Title:        title,
		Body:         string(remainingBody),
		Tags:         trimmedValues(envelope.Tags),
		Published:    envelope.Published,
		CanonicalURL: strings.TrimSpace(envelope.CanonicalURL),
		Description:  strings.TrimSpace(envelope.Description),
		Series:       strings.TrimSpace(envelope.Series),
		CoverImage:   strings.TrimSpace(envelope.CoverImage),
	}, nil
}

// splitLeadingTitle returns the text of a leading level-one heading and the body that follows it.
// When the body does not open with such a heading the title is empty and the body is unchanged.
func splitLeadingTitle(body []byte) (string, []byte) {
	if len(body) == 0 {
		return "", body
	}

	documentNode := goldmark.New().Parser().Parse(text.NewReader(body))
	heading, isHeading := documentNode.FirstChild().(*ast.Heading)
	if !isHeading || heading.Level != titleHeadingLevelConstant || heading.Lines().Len() == 0 {
		return "", body
	}

	title := strings.TrimSpace(collectText(heading, body))
	lastSegment := heading.Lines().At(heading.Lines().Len() - 1)
	offset := lastSegment.Stop
	if offset == 0 || offset > len(body) || body[offset-1] != lineFeedConstant {
		offset = endOfLine(body, offset)
	}
	if isSetextUnderline(body, offset) {
		offset = endOfLine(body, offset)
	}

	return title, bytes.TrimSpace(body[offset:])
}

func collectText(node ast.Node, source []byte) string {
	var builder strings.Builder
	_ = ast.Walk(node, func(current ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := current.(type) {
		case *ast.Text:
			builder.Write(typed.Segment.Value(source))
			if typed.SoftLineBreak() || typed.HardLineBreak() {
				builder.WriteByte(' ')
			}
		case *ast.String:
			builder.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return builder.String()
}

func endOfLine(source []byte, offset int) int {
	if offset >= len(source) {
		return len(source)
	}
	lineFeedIndex := bytes.IndexByte(source[offset:], lineFeedConstant)
	if lineFeedIndex < 0 {
		return len(source)
	}
	return offset + lineFeedIndex + 1
}

func isSetextUnderline(source []byte, offset int) bool {
	if offset >= len(source) {
		return false
	}
	line := source[offset:endOfLine(source, offset)]
	trimmedLine := bytes.TrimSpace(line)
	if len(trimmedLine) == 0 {
		return false
	}
	for _, character := range trimmedLine {
		if character != setextHeadingMarkerConstant {
			return false
		}
	}
	return true
}

func trimmedValues(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		candidate := strings.TrimSpace(value)
		if len(candidate) == 0 {
			continue
		}
		trimmed = append(trimmed, candidate)
	}
	if len(trimmed) == 0 {
		return nil
	}
	return trimmed
}
