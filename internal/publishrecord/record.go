package publishrecord

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

const (
	readmeChecksumKeyConstant          = "readme_sha"
	serializationIndentConstant        = "  "
	serializationPrefixConstant        = ""
	parseErrorTemplateConstant         = "publish record is malformed: %v"
	notObjectMessageConstant           = "top-level value is not a JSON object"
	serializationErrorTemplateConstant = "publish record serialization failed: %w"
	jsonNullLiteralConstant            = "null"
)

// ErrNotObject indicates the sidecar holds valid JSON that is not an object.
var ErrNotObject = errors.New(notObjectMessageConstant)

// Identifiers is the opaque identifier bundle a platform returned for a post.
type Identifiers map[string]string

// Clone returns an independent copy of the identifiers.
func (identifiers Identifiers) Clone() Identifiers {
	if identifiers == nil {
		return nil
	}
	cloned := make(Identifiers, len(identifiers))
	for key, value := range identifiers {
		cloned[key] = value
	}
	return cloned
}

// Record is the parsed form of a folder's sidecar metadata file.
type Record struct {
	// ReadmeChecksum is the document checksum recorded at the last successful publish.
	ReadmeChecksum string
	// Platforms maps platform names to the identifiers of the post on that platform.
	Platforms map[string]Identifiers
	// Extra keeps unrecognized top-level values so rewrites do not drop them.
	Extra map[string]json.RawMessage
}

// ParseError reports a sidecar that could not be interpreted. Callers treat it as a never-published record.
type ParseError struct {
	Cause error
}

// Error describes the parse failure.
func (parseError ParseError) Error() string {
	return fmt.Sprintf(parseErrorTemplateConstant, parseError.Cause)
}

// Unwrap exposes the underlying decoding error.
func (parseError ParseError) Unwrap() error {
	return parseError.Cause
}

// IsPublished reports whether a checksum has ever been recorded.
func (record Record) IsPublished() bool {
	return len(record.ReadmeChecksum) > 0
}

// PlatformIdentifiers returns the identifiers stored for the platform and whether an entry exists.
func (record Record) PlatformIdentifiers(platformName string) (Identifiers, bool) {
	identifiers, exists := record.Platforms[platformName]
	if !exists || len(identifiers) == 0 {
		return nil, false
	}
	return identifiers.Clone(), true
}

// WithPlatform returns a copy of the record carrying the provided identifiers for the platform.
func (record Record) WithPlatform(platformName string, identifiers Identifiers) Record {
	updated := record.Clone()
	if updated.Platforms == nil {
		updated.Platforms = make(map[string]Identifiers)
	}
	updated.Platforms[platformName] = compactIdentifiers(identifiers)
	if len(updated.Platforms[platformName]) == 0 {
		delete(updated.Platforms, platformName)
	}
	if len(updated.Platforms) == 0 {
		updated.Platforms = nil
	}
	return updated
}

// WithChecksum returns a copy of the record carrying the provided checksum.
func (record Record) WithChecksum(readmeChecksum string) Record {
	updated := record.Clone()
	updated.ReadmeChecksum = readmeChecksum
	return updated
}

// Clone returns a deep copy of the record.
func (record Record) Clone() Record {
	cloned := Record{ReadmeChecksum: record.ReadmeChecksum}
	if len(record.Platforms) > 0 {
		cloned.Platforms = make(map[string]Identifiers, len(record.Platforms))
		for platformName, identifiers := range record.Platforms {
			cloned.Platforms[platformName] = identifiers.Clone()
		}
	}
	if len(record.Extra) > 0 {
		cloned.Extra = make(map[string]json.RawMessage, len(record.Extra))
		for key, value := range record.Extra {
			cloned.Extra[key] = append(json.RawMessage(nil), value...)
		}
	}
	return cloned
}

// Parse interprets sidecar bytes. It always returns a usable record: empty input yields the
// empty record without error, and malformed input yields the empty record with a ParseError.
// Only keys named in platformNames are read as identifier bundles; every other key is kept
// verbatim in Extra.
func Parse(data []byte, platformNames ...string) (Record, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return Record{}, nil
	}

	var topLevel map[string]json.RawMessage
	if decodingError := json.Unmarshal(trimmed, &topLevel); decodingError != nil {
		return Record{}, ParseError{Cause: decodingError}
	}
	if topLevel == nil {
		return Record{}, ParseError{Cause: ErrNotObject}
	}

	platformKeys := make(map[string]struct{}, len(platformNames))
	for _, platformName := range platformNames {
		platformKeys[platformName] = struct{}{}
	}

	record := Record{}
	for key, rawValue := range topLevel {
		if key == readmeChecksumKeyConstant {
			if scalarValue, isScalar := decodeScalar(rawValue); isScalar {
				record.ReadmeChecksum = scalarValue
				continue
			}
		} else if _, isPlatform := platformKeys[key]; isPlatform {
			if identifiers, isBundle := decodeIdentifiers(rawValue); isBundle {
				if len(identifiers) > 0 {
					if record.Platforms == nil {
						record.Platforms = make(map[string]Identifiers)
					}
					record.Platforms[key] = identifiers
				}
				continue
			}
		}

		var compacted bytes.Buffer
		if compactError := json.Compact(&compacted, rawValue); compactError != nil {
			return Record{}, ParseError{Cause: compactError}
		}
		if record.Extra == nil {
			record.Extra = make(map[string]json.RawMessage)
		}
		record.Extra[key] = json.RawMessage(compacted.Bytes())
	}

	return record, nil
}

// Serialize renders the record as canonical JSON: two-space indentation, sorted keys, trailing newline.
func Serialize(record Record) ([]byte, error) {
	document := make(map[string]any, len(record.Platforms)+len(record.Extra)+1)
	for key, value := range record.Extra {
		document[key] = value
	}
	for platformName, identifiers := range record.Platforms {
		compacted := compactIdentifiers(identifiers)
		if len(compacted) == 0 {
			continue
		}
		document[platformName] = map[string]string(compacted)
	}
	if len(record.ReadmeChecksum) > 0 {
		document[readmeChecksumKeyConstant] = record.ReadmeChecksum
	}

	encoded, encodingError := json.MarshalIndent(document, serializationPrefixConstant, serializationIndentConstant)
	if encodingError != nil {
		return nil, fmt.Errorf(serializationErrorTemplateConstant, encodingError)
	}
	return append(encoded, '\n'), nil
}

func decodeIdentifiers(rawValue json.RawMessage) (Identifiers, bool) {
	var fields map[string]json.RawMessage
	if decodingError := json.Unmarshal(rawValue, &fields); decodingError != nil || fields == nil {
		return nil, false
	}

	identifiers := make(Identifiers, len(fields))
	for fieldName, fieldValue := range fields {
		scalarValue, isScalar := decodeScalar(fieldValue)
		if !isScalar {
			return nil, false
		}
		if len(scalarValue) == 0 {
			continue
		}
		identifiers[fieldName] = scalarValue
	}
	if len(identifiers) == 0 {
		return nil, true
	}
	return identifiers, true
}

func decodeScalar(rawValue json.RawMessage) (string, bool) {
	trimmed := bytes.TrimSpace(rawValue)
	if string(trimmed) == jsonNullLiteralConstant {
		return "", true
	}

	var stringValue string
	if json.Unmarshal(trimmed, &stringValue) == nil {
		return stringValue, true
	}

	var numberValue json.Number
	if json.Unmarshal(trimmed, &numberValue) == nil {
		return numberValue.String(), true
	}

	var booleanValue bool
	if json.Unmarshal(trimmed, &booleanValue) == nil {
		return strconv.FormatBool(booleanValue), true
	}

	return "", false
}

func compactIdentifiers(identifiers Identifiers) Identifiers {
	compacted := make(Identifiers, len(identifiers))
	for key, value := range identifiers {
		if len(value) == 0 {
			continue
		}
		compacted[key] = value
	}
	if len(compacted) == 0 {
		return nil
	}
	return compacted
}
