package publishrecord_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/postsync/internal/publishrecord"
)

const (
	testDevToPlatformNameConstant  = "dev_to"
	testHashnodePlatformConstant   = "hashnode"
	testChecksumConstant           = "5d41402abc4b2a76b9719d911017c592"
	testSlugConstant               = "building-a-reactor-app-4k2j"
	testArticleIdentifierConstant  = "1234567"
	testLegacySidecarConstant      = `{"readme_sha": "abc123", "dev_to": {"slug": "my-post", "article_id": 42}}`
	testEmptyPlatformSidecarConst  = `{"readme_sha": "abc123", "dev_to": {"slug": "", "article_id": ""}}`
	testExtraFieldsSidecarConstant = `{"readme_sha": "abc123", "notes": ["keep", "me"], "owner": "docs-team"}`
	testObjectFieldsSidecarConst   = `{"readme_sha": "x", "notes": {"author": ""}, "meta": {"count": 3, "draft": true}, "dev_to": {"slug": "my-post", "article_id": 42}}`
)

func TestParseFailsSoft(testInstance *testing.T) {
	testCases := []struct {
		name             string
		input            string
		expectParseError bool
	}{
		{name: "empty_file", input: ""},
		{name: "whitespace_only", input: " \n\t"},
		{name: "empty_object", input: "{}"},
		{name: "malformed_json", input: "{\"readme_sha\": ", expectParseError: true},
		{name: "array_document", input: "[1, 2]", expectParseError: true},
		{name: "null_document", input: "null", expectParseError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			record, parseError := publishrecord.Parse([]byte(testCase.input))
			require.Equal(testInstance, publishrecord.Record{}, record)
			require.False(testInstance, record.IsPublished())

			if testCase.expectParseError {
				require.Error(testInstance, parseError)
				require.IsType(testInstance, publishrecord.ParseError{}, parseError)
				return
			}
			require.NoError(testInstance, parseError)
		})
	}
}

func TestParseReadsLegacySidecars(testInstance *testing.T) {
	record, parseError := publishrecord.Parse([]byte(testLegacySidecarConstant), testDevToPlatformNameConstant)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, "abc123", record.ReadmeChecksum)

	identifiers, exists := record.PlatformIdentifiers(testDevToPlatformNameConstant)
	require.True(testInstance, exists)
	require.Equal(testInstance, publishrecord.Identifiers{"slug": "my-post", "article_id": "42"}, identifiers)
}

func TestParseTreatsEmptyIdentifiersAsAbsent(testInstance *testing.T) {
	record, parseError := publishrecord.Parse([]byte(testEmptyPlatformSidecarConst), testDevToPlatformNameConstant)
	require.NoError(testInstance, parseError)

	_, exists := record.PlatformIdentifiers(testDevToPlatformNameConstant)
	require.False(testInstance, exists)
	require.True(testInstance, record.IsPublished())
}

func TestParsePreservesUnknownFields(testInstance *testing.T) {
	record, parseError := publishrecord.Parse([]byte(testExtraFieldsSidecarConstant))
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, json.RawMessage(`["keep","me"]`), record.Extra["notes"])
	require.Equal(testInstance, json.RawMessage(`"docs-team"`), record.Extra["owner"])

	serialized, serializationError := publishrecord.Serialize(record)
	require.NoError(testInstance, serializationError)
	require.Contains(testInstance, string(serialized), `"docs-team"`)
}

func TestParseKeepsObjectFieldsOutsidePlatformKeys(testInstance *testing.T) {
	record, parseError := publishrecord.Parse([]byte(testObjectFieldsSidecarConst), testDevToPlatformNameConstant)
	require.NoError(testInstance, parseError)
	require.Equal(testInstance, map[string]publishrecord.Identifiers{
		testDevToPlatformNameConstant: {"slug": "my-post", "article_id": "42"},
	}, record.Platforms)
	require.Equal(testInstance, json.RawMessage(`{"author":""}`), record.Extra["notes"])
	require.Equal(testInstance, json.RawMessage(`{"count":3,"draft":true}`), record.Extra["meta"])

	serialized, serializationError := publishrecord.Serialize(record.WithChecksum("y"))
	require.NoError(testInstance, serializationError)

	var rewritten map[string]any
	require.NoError(testInstance, json.Unmarshal(serialized, &rewritten))
	require.Equal(testInstance, map[string]any{"author": ""}, rewritten["notes"])
	require.Equal(testInstance, map[string]any{"count": float64(3), "draft": true}, rewritten["meta"])
	require.Equal(testInstance, "y", rewritten["readme_sha"])
}

func TestSerializeRoundTrip(testInstance *testing.T) {
	testCases := []struct {
		name   string
		record publishrecord.Record
	}{
		{name: "empty_record", record: publishrecord.Record{}},
		{name: "checksum_only", record: publishrecord.Record{ReadmeChecksum: testChecksumConstant}},
		{
			name: "single_platform",
			record: publishrecord.Record{
				ReadmeChecksum: testChecksumConstant,
				Platforms: map[string]publishrecord.Identifiers{
					testDevToPlatformNameConstant: {"slug": testSlugConstant, "article_id": testArticleIdentifierConstant},
				},
			},
		},
		{
			name: "platform_without_checksum",
			record: publishrecord.Record{
				Platforms: map[string]publishrecord.Identifiers{
					testDevToPlatformNameConstant: {"slug": testSlugConstant, "article_id": testArticleIdentifierConstant},
				},
			},
		},
		{
			name: "multiple_platforms_with_extra",
			record: publishrecord.Record{
				ReadmeChecksum: testChecksumConstant,
				Platforms: map[string]publishrecord.Identifiers{
					testDevToPlatformNameConstant: {"slug": testSlugConstant, "article_id": testArticleIdentifierConstant},
					testHashnodePlatformConstant:  {"post_id": "abc", "url": "https://example.com/a?b=<c>&d"},
				},
				Extra: map[string]json.RawMessage{
					"notes": json.RawMessage(`{"nested":[1,2,{"x":null}]}`),
				},
			},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			serialized, serializationError := publishrecord.Serialize(testCase.record)
			require.NoError(testInstance, serializationError)
			require.True(testInstance, json.Valid(serialized))

			parsed, parseError := publishrecord.Parse(serialized, testDevToPlatformNameConstant, testHashnodePlatformConstant)
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.record, parsed)
		})
	}
}

func TestSerializeIsCanonical(testInstance *testing.T) {
	record := publishrecord.Record{
		ReadmeChecksum: testChecksumConstant,
		Platforms: map[string]publishrecord.Identifiers{
			testDevToPlatformNameConstant: {"slug": testSlugConstant, "article_id": testArticleIdentifierConstant},
		},
	}

	serialized, serializationError := publishrecord.Serialize(record)
	require.NoError(testInstance, serializationError)

	expected := "{\n" +
		"  \"dev_to\": {\n" +
		"    \"article_id\": \"" + testArticleIdentifierConstant + "\",\n" +
		"    \"slug\": \"" + testSlugConstant + "\"\n" +
		"  },\n" +
		"  \"readme_sha\": \"" + testChecksumConstant + "\"\n" +
		"}\n"
	require.Equal(testInstance, expected, string(serialized))

	emptySerialized, emptySerializationError := publishrecord.Serialize(publishrecord.Record{})
	require.NoError(testInstance, emptySerializationError)
	require.Equal(testInstance, "{}\n", string(emptySerialized))
}

func TestRecordMutatorsDoNotAliasInput(testInstance *testing.T) {
	original := publishrecord.Record{
		Platforms: map[string]publishrecord.Identifiers{
			testDevToPlatformNameConstant: {"slug": testSlugConstant},
		},
	}

	updated := original.
		WithPlatform(testDevToPlatformNameConstant, publishrecord.Identifiers{"slug": "renamed", "article_id": testArticleIdentifierConstant}).
		WithChecksum(testChecksumConstant)

	require.Equal(testInstance, testSlugConstant, original.Platforms[testDevToPlatformNameConstant]["slug"])
	require.Empty(testInstance, original.ReadmeChecksum)
	require.Equal(testInstance, "renamed", updated.Platforms[testDevToPlatformNameConstant]["slug"])
	require.Equal(testInstance, testChecksumConstant, updated.ReadmeChecksum)

	cleared := updated.WithPlatform(testDevToPlatformNameConstant, publishrecord.Identifiers{"slug": ""})
	_, exists := cleared.PlatformIdentifiers(testDevToPlatformNameConstant)
	require.False(testInstance, exists)
	require.Nil(testInstance, cleared.Platforms)
}
