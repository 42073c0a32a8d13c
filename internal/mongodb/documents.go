package mongodb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrFilterNotJSON     = errors.New("Search filter must be valid JSON.")
	ErrFilterNotObject   = errors.New("Search filter must be a JSON object.")
	ErrDocumentNotObject = errors.New("Document payload must be a JSON object.")
)

// ToJSON renders a document as relaxed Extended JSON.
func ToJSON(document bson.Raw) (json.RawMessage, error) {
	out, err := bson.MarshalExtJSON(document, false, false)
	if err != nil {
		return nil, fmt.Errorf("marshal extended json: %w", err)
	}
	return out, nil
}

func DocumentsToJSON(documents []bson.Raw) ([]json.RawMessage, error) {
	rendered := make([]json.RawMessage, 0, len(documents))
	for _, d := range documents {
		out, err := ToJSON(d)
		if err != nil {
			return nil, err
		}
		rendered = append(rendered, out)
	}
	return rendered, nil
}

func isJSONObject(raw []byte) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}

// ParseFilter parses an Extended JSON filter object. An empty query matches everything.
func ParseFilter(query string) (bson.D, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return bson.D{}, nil
	}
	if !json.Valid([]byte(query)) {
		return nil, ErrFilterNotJSON
	}
	if !isJSONObject([]byte(query)) {
		return nil, ErrFilterNotObject
	}

	var filter bson.D
	if err := bson.UnmarshalExtJSON([]byte(query), false, &filter); err != nil {
		return nil, ErrFilterNotJSON
	}
	return filter, nil
}

// ParseDocument parses a document to insert. Extended JSON wrappers ($oid, $date) are honored.
func ParseDocument(raw json.RawMessage) (bson.D, error) {
	if !isJSONObject(raw) || !json.Valid(raw) {
		return nil, ErrDocumentNotObject
	}

	var document bson.D
	if err := bson.UnmarshalExtJSON(raw, false, &document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDocumentNotObject, err)
	}
	return document, nil
}

// ContainsTextFilter matches documents whose JSON form contains text, ignoring case.
func ContainsTextFilter(text string) (bson.D, error) {
	needle, err := json.Marshal(strings.ToLower(text))
	if err != nil {
		return nil, fmt.Errorf("marshal search text: %w", err)
	}

	where := `function() {
  const needle = ` + string(needle) + `;
  if (!needle) {
    return false;
  }
  try {
    const json = JSON.stringify(this);
    return typeof json === 'string' && json.toLowerCase().includes(needle);
  } catch (error) {
    return false;
  }
}`
	return bson.D{{Key: "$where", Value: where}}, nil
}
