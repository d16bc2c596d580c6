package security

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

type JSONSchemaValidator struct {
	schema *jsonschema.Schema
}

// NewJSONSchemaValidator compiles schemaJSON under the given resource name.
func NewJSONSchemaValidator(name, schemaJSON string) (*JSONSchemaValidator, error) {
	if name == "" {
		name = "schema.json"
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(schemaJSON)); err != nil {
		return nil, fmt.Errorf("add schema %s: %w", name, err)
	}
	schema, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("compile schema %s: %w", name, err)
	}

	return &JSONSchemaValidator{schema: schema}, nil
}

// Validate checks a decoded JSON document.
func (v *JSONSchemaValidator) Validate(doc interface{}) error {
	return v.schema.Validate(doc)
}

func (v *JSONSchemaValidator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body == nil {
			WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			var mbe *http.MaxBytesError
			if errors.As(err, &mbe) {
				WriteJSONError(w, r, http.StatusRequestEntityTooLarge, "payload_too_large")
				return
			}
			WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		_ = r.Body.Close()

		var payload interface{}
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&payload); err != nil {
			WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		if err := v.schema.Validate(payload); err != nil {
			WriteJSONErrorMessage(w, r, http.StatusBadRequest, "validation_error", describe(err))
			return
		}

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

// describe reduces a schema error to its first leaf cause.
func describe(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	loc := ve.InstanceLocation
	if loc == "" {
		loc = "/"
	}
	return loc + ": " + ve.Message
}
