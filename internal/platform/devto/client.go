package devto

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"go.uber.org/zap"

	"github.com/temirov/postsync/internal/document"
	"github.com/temirov/postsync/internal/platform"
	"github.com/temirov/postsync/internal/publishrecord"
)

const (
	// PlatformName is the publish record key for dev.to identifiers.
	PlatformName = "dev_to"
	// DefaultBaseURL is the Forem API root of dev.to.
	DefaultBaseURL = "https://dev.to/api"
	// DefaultTag labels articles that carry no tags of their own.
	DefaultTag = "autogenerated"

	articlesPathConstant             = "/articles"
	articlePathTemplateConstant      = "/articles/%d"
	apiKeyHeaderConstant             = "api-key"
	contentTypeHeaderConstant        = "Content-Type"
	acceptHeaderConstant             = "Accept"
	userAgentHeaderConstant          = "User-Agent"
	jsonContentTypeConstant          = "application/json"
	foremAcceptConstant              = "application/vnd.forem.api-v1+json"
	userAgentConstant                = "postsync"
	slugIdentifierKeyConstant        = "slug"
	articleIdentifierKeyConstant     = "article_id"
	maximumTagCountConstant          = 4
	maximumDetailLengthConstant      = 512
	defaultRequestTimeout            = 30 * time.Second
	apiKeyMissingMessageConstant     = "dev.to api key is required"
	organizationInvalidTemplate      = "dev.to organization id %q is not a number"
	identifiersInvalidTemplate       = "dev.to identifiers are unusable: %v"
	articleIdentifierMissingMessage  = "article_id is missing"
	responseMissingIdentifierMessage = "response carries no article id"
	logMessageRequestConstant        = "dev.to request"
	logMessageResponseConstant       = "dev.to response"
	logFieldMethodConstant           = "method"
	logFieldPathConstant             = "path"
	logFieldStatusConstant           = "status"
	logFieldArticleConstant          = "article_id"
)

var (
	// ErrAPIKeyMissing indicates the client was constructed without an api key.
	ErrAPIKeyMissing             = errors.New(apiKeyMissingMessageConstant)
	errArticleIdentifierMissing  = errors.New(articleIdentifierMissingMessage)
	errResponseMissingIdentifier = errors.New(responseMissingIdentifierMessage)
)

// InvalidIdentifiersError reports stored identifiers that cannot address an existing article.
type InvalidIdentifiersError struct {
	Cause error
}

// Error describes the invalid identifiers.
func (identifiersError InvalidIdentifiersError) Error() string {
	return fmt.Sprintf(identifiersInvalidTemplate, identifiersError.Cause)
}

// Unwrap exposes the decoding failure.
func (identifiersError InvalidIdentifiersError) Unwrap() error {
	return identifiersError.Cause
}

// HTTPClient is the subset of *http.Client used by the dev.to client.
type HTTPClient interface {
	Do(request *http.Request) (*http.Response, error)
}

// Options configures a Client.
type Options struct {
	APIKey string
	// OrganizationID publishes under an organization when set; empty publishes as the individual owner of the key.
	OrganizationID string
	BaseURL        string
	// Published is used when a document does not set published in its front matter.
	Published bool
	// DefaultTags are used when a document carries no tags.
	DefaultTags []string
	HTTPClient  HTTPClient
	Logger      *zap.Logger
}

// Client creates and updates dev.to articles.
type Client struct {
	httpClient     HTTPClient
	logger         *zap.Logger
	baseURL        string
	apiKey         string
	organizationID *int64
	published      bool
	defaultTags    []string
}

// ArticleIdentifiers addresses a dev.to article.
type ArticleIdentifiers struct {
	Slug      string `mapstructure:"slug"`
	ArticleID int64  `mapstructure:"article_id"`
}

type articleEnvelope struct {
	Article articlePayload `json:"article"`
}

type articlePayload struct {
	Title          string   `json:"title"`
	BodyMarkdown   string   `json:"body_markdown"`
	Published      bool     `json:"published"`
	Tags           []string `json:"tags"`
	OrganizationID *int64   `json:"organization_id,omitempty"`
	Series         string   `json:"series,omitempty"`
	CanonicalURL   string   `json:"canonical_url,omitempty"`
	Description    string   `json:"description,omitempty"`
	MainImage      string   `json:"main_image,omitempty"`
}

type articleResponse struct {
	ID   int64  `json:"id"`
	Slug string `json:"slug"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewClient validates options and constructs a client.
func NewClient(options Options) (*Client, error) {
	apiKey := strings.TrimSpace(options.APIKey)
	if len(apiKey) == 0 {
		return nil, ErrAPIKeyMissing
	}

	var organizationID *int64
	if trimmedOrganization := strings.TrimSpace(options.OrganizationID); len(trimmedOrganization) > 0 {
		parsedOrganization, parseError := strconv.ParseInt(trimmedOrganization, 10, 64)
		if parseError != nil {
			return nil, fmt.Errorf(organizationInvalidTemplate, trimmedOrganization)
		}
		organizationID = &parsedOrganization
	}

	baseURL := strings.TrimRight(strings.TrimSpace(options.BaseURL), "/")
	if len(baseURL) == 0 {
		baseURL = DefaultBaseURL
	}

	httpClient := options.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}

	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	defaultTags := NormalizeTags(options.DefaultTags)
	if len(defaultTags) == 0 {
		defaultTags = []string{DefaultTag}
	}

	return &Client{
		httpClient:     httpClient,
		logger:         logger,
		baseURL:        baseURL,
		apiKey:         apiKey,
		organizationID: organizationID,
		published:      options.Published,
		defaultTags:    defaultTags,
	}, nil
}

// Name returns the publish record key for dev.to.
func (client *Client) Name() string {
	return PlatformName
}

// CreatePost creates a new article.
func (client *Client) CreatePost(executionContext context.Context, article document.Article) (publishrecord.Identifiers, error) {
	return client.send(executionContext, platform.OperationCreate, http.MethodPost, articlesPathConstant, article)
}

// UpdatePost replaces the article addressed by the stored article_id.
func (client *Client) UpdatePost(executionContext context.Context, identifiers publishrecord.Identifiers, article document.Article) (publishrecord.Identifiers, error) {
	decodedIdentifiers, decodingError := DecodeIdentifiers(identifiers)
	if decodingError != nil {
		return nil, decodingError
	}
	return client.send(executionContext, platform.OperationUpdate, http.MethodPut, fmt.Sprintf(articlePathTemplateConstant, decodedIdentifiers.ArticleID), article)
}

// DecodeIdentifiers reads stored identifiers, accepting numeric ids written as strings or numbers.
func DecodeIdentifiers(identifiers publishrecord.Identifiers) (ArticleIdentifiers, error) {
	var decoded ArticleIdentifiers
	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &decoded,
	})
	if decoderError != nil {
		return ArticleIdentifiers{}, InvalidIdentifiersError{Cause: decoderError}
	}
	if decodingError := decoder.Decode(map[string]string(identifiers)); decodingError != nil {
		return ArticleIdentifiers{}, InvalidIdentifiersError{Cause: decodingError}
	}
	if decoded.ArticleID <= 0 {
		return ArticleIdentifiers{}, InvalidIdentifiersError{Cause: errArticleIdentifierMissing}
	}
	return decoded, nil
}

// NormalizeTags applies dev.to tag rules: lowercase alphanumerics, no duplicates, at most four tags.
func NormalizeTags(tags []string) []string {
	normalized := make([]string, 0, maximumTagCountConstant)
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		var builder strings.Builder
		for _, character := range strings.ToLower(tag) {
			if unicode.IsLetter(character) || unicode.IsDigit(character) {
				builder.WriteRune(character)
			}
		}
		candidate := builder.String()
		if len(candidate) == 0 {
			continue
		}
		if _, duplicate := seen[candidate]; duplicate {
			continue
		}
		seen[candidate] = struct{}{}
		normalized = append(normalized, candidate)
		if len(normalized) == maximumTagCountConstant {
			break
		}
	}
	return normalized
}

func (client *Client) buildPayload(article document.Article) articleEnvelope {
	published := client.published
	if article.Published != nil {
		published = *article.Published
	}

	tags := NormalizeTags(article.Tags)
	if len(tags) == 0 {
		tags = append([]string(nil), client.defaultTags...)
	}

	return articleEnvelope{Article: articlePayload{
		Title:          article.Title,
		BodyMarkdown:   article.Body,
		Published:      published,
		Tags:           tags,
		OrganizationID: client.organizationID,
		Series:         article.Series,
		CanonicalURL:   article.CanonicalURL,
		Description:    article.Description,
		MainImage:      article.CoverImage,
	}}
}

func (client *Client) send(executionContext context.Context, operation platform.Operation, method string, path string, article document.Article) (publishrecord.Identifiers, error) {
	payloadBytes, encodingError := json.Marshal(client.buildPayload(article))
	if encodingError != nil {
		return nil, platform.TransportError{Platform: PlatformName, Operation: operation, Cause: encodingError}
	}

	request, requestError := http.NewRequestWithContext(executionContext, method, client.baseURL+path, bytes.NewReader(payloadBytes))
	if requestError != nil {
		return nil, platform.TransportError{Platform: PlatformName, Operation: operation, Cause: requestError}
	}
	request.Header.Set(apiKeyHeaderConstant, client.apiKey)
	request.Header.Set(contentTypeHeaderConstant, jsonContentTypeConstant)
	request.Header.Set(acceptHeaderConstant, foremAcceptConstant)
	request.Header.Set(userAgentHeaderConstant, userAgentConstant)

	client.logger.Debug(logMessageRequestConstant, zap.String(logFieldMethodConstant, method), zap.String(logFieldPathConstant, path))

	response, transportError := client.httpClient.Do(request)
	if transportError != nil {
		return nil, platform.TransportError{Platform: PlatformName, Operation: operation, Cause: transportError}
	}
	defer response.Body.Close()

	responseBody, readError := io.ReadAll(response.Body)
	if readError != nil {
		return nil, platform.TransportError{Platform: PlatformName, Operation: operation, StatusCode: response.StatusCode, Cause: readError}
	}

	client.logger.Debug(logMessageResponseConstant, zap.String(logFieldPathConstant, path), zap.Int(logFieldStatusConstant, response.StatusCode))

	if classificationError := classifyStatus(operation, response.StatusCode, responseBody); classificationError != nil {
		return nil, classificationError
	}

	var decoded articleResponse
	if decodingError := json.Unmarshal(responseBody, &decoded); decodingError != nil {
		return nil, platform.TransportError{Platform: PlatformName, Operation: operation, StatusCode: response.StatusCode, Cause: decodingError}
	}
	if decoded.ID <= 0 {
		return nil, platform.TransportError{Platform: PlatformName, Operation: operation, StatusCode: response.StatusCode, Cause: errResponseMissingIdentifier}
	}

	client.logger.Debug(logMessageResponseConstant, zap.Int64(logFieldArticleConstant, decoded.ID), zap.String(slugIdentifierKeyConstant, decoded.Slug))

	return publishrecord.Identifiers{
		slugIdentifierKeyConstant:    decoded.Slug,
		articleIdentifierKeyConstant: strconv.FormatInt(decoded.ID, 10),
	}, nil
}

// classifyStatus maps throttling and server errors to TransportError and other failures to RejectionError.
func classifyStatus(operation platform.Operation, statusCode int, responseBody []byte) error {
	switch {
	case statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices:
		return nil
	case statusCode == http.StatusTooManyRequests || statusCode >= http.StatusInternalServerError:
		return platform.TransportError{Platform: PlatformName, Operation: operation, StatusCode: statusCode}
	default:
		return platform.RejectionError{Platform: PlatformName, Operation: operation, StatusCode: statusCode, Detail: describeErrorBody(responseBody)}
	}
}

func describeErrorBody(responseBody []byte) string {
	var decoded errorResponse
	if json.Unmarshal(responseBody, &decoded) == nil && len(strings.TrimSpace(decoded.Error)) > 0 {
		return strings.TrimSpace(decoded.Error)
	}
	detail := strings.TrimSpace(string(responseBody))
	if len(detail) > maximumDetailLengthConstant {
		detail = detail[:maximumDetailLengthConstant]
	}
	return detail
}
