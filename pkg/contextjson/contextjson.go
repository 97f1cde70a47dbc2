// Package contextjson serializes page context for the data-request wire
// format.
//
// The format is JSON with an escape convention that widens the value set:
// values JSON cannot express are encoded as marker strings with a "!"
// prefix, and ordinary strings starting with "!" are escaped by doubling
// it. Supported extended values:
//
//	Undefined      -> "!undefined"
//	time.Time      -> "!Date:<RFC 3339>"
//
// Nested maps and slices round-trip structurally. The envelope helpers
// produce the fixed response bodies of the data-request protocol.
package contextjson

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/pagekit-dev/pagekit/internal/errors"
)

type undefinedType struct{}

// Undefined is the serializable "no value" sentinel, distinct from nil.
var Undefined = undefinedType{}

const (
	undefinedMarker  = "!undefined"
	dateMarkerPrefix = "!Date:"
)

// Marshal serializes v into the extended wire format.
func Marshal(v any) (string, error) {
	encoded, err := encode(v)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(encoded)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Unmarshal parses data produced by Marshal, restoring extended values.
func Unmarshal(data string) (any, error) {
	var raw any
	if err := json.Unmarshal([]byte(data), &raw); err != nil {
		return nil, err
	}
	return decode(raw)
}

func encode(v any) (any, error) {
	switch val := v.(type) {
	case undefinedType:
		return undefinedMarker, nil
	case time.Time:
		return dateMarkerPrefix + val.UTC().Format(time.RFC3339Nano), nil
	case string:
		if strings.HasPrefix(val, "!") {
			return "!" + val, nil
		}
		return val, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			encoded, err := encode(item)
			if err != nil {
				return nil, err
			}
			out[k] = encoded
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			encoded, err := encode(item)
			if err != nil {
				return nil, err
			}
			out[i] = encoded
		}
		return out, nil
	default:
		return v, nil
	}
}

func decode(v any) (any, error) {
	switch val := v.(type) {
	case string:
		if !strings.HasPrefix(val, "!") {
			return val, nil
		}
		if val == undefinedMarker {
			return Undefined, nil
		}
		if rest, ok := strings.CutPrefix(val, dateMarkerPrefix); ok {
			parsed, err := time.Parse(time.RFC3339Nano, rest)
			if err != nil {
				return nil, fmt.Errorf("invalid date marker %q: %w", val, err)
			}
			return parsed, nil
		}
		if strings.HasPrefix(val, "!!") {
			return val[1:], nil
		}
		return nil, fmt.Errorf("unknown marker string %q", val)
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			decoded, err := decode(item)
			if err != nil {
				return nil, err
			}
			out[k] = decoded
		}
		return out, nil
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			decoded, err := decode(item)
			if err != nil {
				return nil, err
			}
			out[i] = decoded
		}
		return out, nil
	default:
		return v, nil
	}
}

// MarshalPageContext wraps a client page context in the success envelope.
func MarshalPageContext(pageContext map[string]any) (string, error) {
	return Marshal(map[string]any{"pageContext": pageContext})
}

// ServerSideErrorBody is the fixed body sent when user code failed on the
// server during a data request.
func ServerSideErrorBody() string {
	return `{"serverSideError":true}`
}

// PageNotFoundBody is the fixed body sent for a data request when no route
// matched and no error page is registered.
func PageNotFoundBody() string {
	return `{"pageContext404PageDoesNotExist":true}`
}

// Envelope is a parsed data-request response body.
type Envelope struct {
	// PageContext is the transferred context on success, nil otherwise.
	PageContext map[string]any

	// ServerSideError reports the fixed server-failure marker.
	ServerSideError bool

	// PageNotFound reports the fixed no-error-page 404 marker.
	PageNotFound bool
}

// ParseEnvelope parses a data-request response body.
func ParseEnvelope(body string) (*Envelope, error) {
	decoded, err := Unmarshal(body)
	if err != nil {
		return nil, errors.Transport("page context response is not valid JSON").Wrap(err)
	}
	obj, ok := decoded.(map[string]any)
	if !ok {
		return nil, errors.Transport("page context response is not an object")
	}
	env := &Envelope{}
	if v, ok := obj["serverSideError"].(bool); ok && v {
		env.ServerSideError = true
		return env, nil
	}
	if v, ok := obj["pageContext404PageDoesNotExist"].(bool); ok && v {
		env.PageNotFound = true
		return env, nil
	}
	pageContext, ok := obj["pageContext"].(map[string]any)
	if !ok {
		return nil, errors.Transport("page context response is missing the pageContext field")
	}
	env.PageContext = pageContext
	return env, nil
}
