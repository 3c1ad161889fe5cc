package dispatch

import (
	"encoding/json"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
)

// Content types sent by the dispatcher.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Params is the parameter mapping of a request. Values are scalars: strings,
// booleans, numbers or nil. JSON bodies accept any JSON-encodable value.
type Params map[string]any

// Callback receives the decoded response of a call. A nil *Response means
// the server answered without content.
type Callback func(resp *Response)

// Request describes one dispatcher call. It lives only for the call.
type Request struct {
	Operation Operation
	Path      string
	Params    Params
	OnSuccess Callback
	OnFailure Callback
}

// encodeValues converts params into url.Values for query strings and form
// bodies.
func encodeValues(params Params) (url.Values, error) {
	values := make(url.Values, len(params))
	for k, v := range params {
		s, err := formatScalar(v)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", k, err)
		}
		values.Set(k, s)
	}
	return values, nil
}

// encodeJSON serializes params as a JSON object. A nil mapping produces no
// body.
func encodeJSON(params Params) ([]byte, error) {
	if params == nil {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return data, nil
}

func formatScalar(v any) (string, error) {
	if v == nil {
		return "", nil
	}

	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case fmt.Stringer:
		return t.String(), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return rv.String(), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("unsupported value of type %T", v)
	}
}
