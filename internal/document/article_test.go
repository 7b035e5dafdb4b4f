package document_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/postsync/internal/document"
)

const (
	testFallbackTitleConstant = "reactor-series"
)

func TestParseResolvesTitleAndBody(testInstance *testing.T) {
	testCases := []struct {
		name          string
		source        string
		expectedTitle string
		expectedBody  string
	}{
		{
			name:          "atx_heading",
			source:        "# Building a Reactor\n\nFirst paragraph.\n\n## Part one\nDetails.\n",
			expectedTitle: "Building a Reactor",
			expectedBody:  "First paragraph.\n\n## Part one\nDetails.",
		},
		{
			name:          "leading_whitespace_and_closing_hashes",
			source:        "\n\n  # Spaced Title ##\nBody text\n",
			expectedTitle: "Spaced Title",
			expectedBody:  "Body text",
		},
		{
			name:          "setext_heading",
			source:        "Setext Title\n============\n\nBody after setext.\n",
			expectedTitle: "Setext Title",
			expectedBody:  "Body after setext.",
		},
		{
			name:          "inline_markup_in_heading",
			source:        "# Using `gh api` with *style*\n\nBody\n",
			expectedTitle: "Using gh api with style",
			expectedBody:  "Body",
		},
		{
			name:          "second_level_heading_is_not_a_title",
			source:        "## Not a title\n\nBody\n",
			expectedTitle: testFallbackTitleConstant,
			expectedBody:  "## Not a title\n\nBody",
		},
		{
			name:          "paragraph_first",
			source:        "Intro line\n\n# Late heading\n",
			expectedTitle: testFallbackTitleConstant,
			expectedBody:  "Intro line\n\n# Late heading",
		},
		{
			name:          "heading_only",
			source:        "# Only a title",
			expectedTitle: "Only a title",
			expectedBody:  "",
		},
		{
			name:          "empty_document",
			source:        "",
			expectedTitle: testFallbackTitleConstant,
			expectedBody:  "",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			article, parseError := document.Parse([]byte(testCase.source), testFallbackTitleConstant)
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedTitle, article.Title)
			require.Equal(testInstance, testCase.expectedBody, article.Body)
		})
	}
}

func TestParseReadsFrontMatter(testInstance *testing.T) {
	source := "---\n" +
		"title: Front Matter Title\n" +
		"tags: [go, \" github \", \"\"]\n" +
		"published: true\n" +
		"canonical_url: https://example.com/post\n" +
		"series: Reactor\n" +
		"description: Short summary\n" +
		"cover_image: https://example.com/cover.png\n" +
		"---\n" +
		"# Heading Title\n\nBody\n"

	article, parseError := document.Parse([]byte(source), testFallbackTitleConstant)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, "Front Matter Title", article.Title)
	require.Equal(testInstance, "# Heading Title\n\nBody", article.Body)
	require.Equal(testInstance, []string{"go", "github"}, article.Tags)
	require.NotNil(testInstance, article.Published)
	require.True(testInstance, *article.Published)
	require.Equal(testInstance, "https://example.com/post", article.CanonicalURL)
	require.Equal(testInstance, "Reactor", article.Series)
	require.Equal(testInstance, "Short summary", article.Description)
	require.Equal(testInstance, "https://example.com/cover.png", article.CoverImage)
}

func TestParseWithoutPublishedFlagLeavesItUnset(testInstance *testing.T) {
	article, parseError := document.Parse([]byte("---\ntags: [go]\n---\n# Title\nBody\n"), testFallbackTitleConstant)
	require.NoError(testInstance, parseError)
	require.Nil(testInstance, article.Published)
	require.Equal(testInstance, "Title", article.Title)
	require.Equal(testInstance, "Body", article.Body)
}

func TestParseKeepsUnspacedHashLineInBody(testInstance *testing.T) {
	article, parseError := document.Parse([]byte("#Title\n\nBody\n"), testFallbackTitleConstant)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, testFallbackTitleConstant, article.Title)
	require.Equal(testInstance, "#Title\n\nBody", article.Body)
}

func TestParseRejectsMalformedFrontMatter(testInstance *testing.T) {
	_, parseError := document.Parse([]byte("---\ntitle: [unterminated\n---\n# Title\n"), testFallbackTitleConstant)
	require.Error(testInstance, parseError)
	require.IsType(testInstance, document.ParseError{}, parseError)
}
