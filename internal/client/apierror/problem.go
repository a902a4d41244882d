// Package apierror decodes failed API responses and decides how the client reacts to them.
package apierror

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

// Kind tags the shape of a decoded error body.
type Kind int

const (
	// KindOpaque is any body that is neither a field-error map nor a titled problem.
	KindOpaque Kind = iota
	// KindFieldErrors is a body with an "errors" object of field messages.
	KindFieldErrors
	// KindMessage is a body with a "title" string and no field errors.
	KindMessage
)

func (k Kind) String() string {
	switch k {
	case KindFieldErrors:
		return "field_errors"
	case KindMessage:
		return "message"
	default:
		return "opaque"
	}
}

// Problem is an error body decoded once at the boundary.
type Problem struct {
	Kind     Kind
	Messages []string // Flattened field messages, in document order. Only for KindFieldErrors.
	Title    string   // Server-provided title, when the body has one.
	Raw      json.RawMessage
}

// DecodeProblem classifies a response body by its shape. It never fails:
// bodies that are not JSON objects decode as KindOpaque with Raw kept verbatim.
func DecodeProblem(body []byte) Problem {
	problem := Problem{Kind: KindOpaque, Raw: json.RawMessage(append([]byte(nil), body...))}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return problem
	}

	if rawTitle, ok := doc["title"]; ok {
		var title string
		if json.Unmarshal(rawTitle, &title) == nil {
			problem.Title = title
		}
	}

	if rawErrors, ok := doc["errors"]; ok {
		messages, err := flattenFieldErrors(rawErrors)
		if err == nil {
			problem.Kind = KindFieldErrors
			problem.Messages = messages

			return problem
		}
	}

	if problem.Title != "" {
		problem.Kind = KindMessage
	}

	return problem
}

// flattenFieldErrors walks an {"field": [msg, ...]} object in key order.
// A bare string value counts as a single message and null values are skipped.
func flattenFieldErrors(raw json.RawMessage) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))

	tok, err := dec.Token()
	if err != nil {
		return nil, errors.Wrap(err, "read errors object")
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("errors is not an object")
	}

	messages := make([]string, 0)
	for dec.More() {
		if _, err := dec.Token(); err != nil {
			return nil, errors.Wrap(err, "read field name")
		}

		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, errors.Wrap(err, "read field messages")
		}

		messages = appendMessages(messages, value)
	}

	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "close errors object")
	}

	return messages, nil
}

func appendMessages(dst []string, value any) []string {
	switch v := value.(type) {
	case nil:
		return dst
	case string:
		return append(dst, v)
	case []any:
		for _, item := range v {
			dst = appendMessages(dst, item)
		}

		return dst
	default:
		b, _ := json.Marshal(v)

		return append(dst, string(b))
	}
}
