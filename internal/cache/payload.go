package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/tbourn/go-news-aggregator/internal/domain"
)

// decodePayload parses a stored payload. The expected shape is a JSON array
// of objects. A whole API response stored by mistake, i.e. an object with an
// "articles" array, is accepted too. Anything else is errMalformedPayload.
// Numbers decode as json.Number so integers keep every digit.
func decodePayload(payload string) ([]domain.Article, error) {
	dec := json.NewDecoder(strings.NewReader(payload))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %w", errMalformedPayload, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", errMalformedPayload)
	}

	switch v := raw.(type) {
	case []any:
		return asArticles(v)
	case map[string]any:
		inner, ok := v["articles"].([]any)
		if !ok {
			return nil, fmt.Errorf("%w: object without an articles list", errMalformedPayload)
		}
		return asArticles(inner)
	default:
		return nil, fmt.Errorf("%w: unexpected %T", errMalformedPayload, raw)
	}
}

func asArticles(items []any) ([]domain.Article, error) {
	out := make([]domain.Article, 0, len(items))
	for i, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: element %d is %T, not an object", errMalformedPayload, i, item)
		}
		out = append(out, domain.Article(obj))
	}
	return out, nil
}
