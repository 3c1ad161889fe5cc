package dispatch

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mitchellh/mapstructure"
)

// Response is a decoded JSON response handed to callbacks.
type Response struct {
	StatusCode int
	Header     http.Header

	// Body is the decoded JSON value: map[string]any, []any, string,
	// float64, bool or nil.
	Body any
}

// Decode copies Body into out, matching object keys to json struct tags.
// Numbers and strings are converted where the target type requires it.
func (r *Response) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := dec.Decode(r.Body); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}

// String renders Body as JSON.
func (r *Response) String() string {
	data, err := json.Marshal(r.Body)
	if err != nil {
		return fmt.Sprintf("%v", r.Body)
	}
	return string(data)
}
