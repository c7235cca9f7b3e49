package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/url"

	"github.com/danielgtaylor/huma/v2"
)

// FormContentType is the content type of HTML form submissions.
const FormContentType = "application/x-www-form-urlencoded"

// FormFormat lets operations read form submissions. Each field takes its
// first value and is decoded as if it were a JSON string.
var FormFormat = huma.Format{
	Marshal:   marshalForm,
	Unmarshal: unmarshalForm,
}

// NewAPIConfig returns the huma config for the service: the default formats
// plus form-encoded request bodies.
func NewAPIConfig(title, version string) huma.Config {
	config := huma.DefaultConfig(title, version)
	config.Formats = maps.Clone(config.Formats)
	config.Formats[FormContentType] = FormFormat

	return config
}

func unmarshalForm(data []byte, v any) error {
	values, err := url.ParseQuery(string(data))
	if err != nil {
		return fmt.Errorf("invalid form body: %w", err)
	}

	fields := make(map[string]any, len(values))
	for key, vals := range values {
		if len(vals) > 0 {
			fields[key] = vals[0]
		}
	}

	encoded, err := json.Marshal(fields)
	if err != nil {
		return err
	}

	return json.Unmarshal(encoded, v)
}

func marshalForm(w io.Writer, v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var fields map[string]any
	if err := json.Unmarshal(encoded, &fields); err != nil {
		return fmt.Errorf("form bodies must be objects: %w", err)
	}

	values := url.Values{}
	for key, val := range fields {
		values.Set(key, fmt.Sprint(val))
	}

	_, err = io.WriteString(w, values.Encode())

	return err
}
