// Package formutil decodes and validates JSON request bodies.
//
// Handlers declare a request struct with json and validate tags, then call
// Decode. Any failure comes back wrapped in errs.ErrInvalidInput with a
// message that is safe to show to the client.
//
// Example usage:
//
//	type groupRequest struct {
//		GroupName string `json:"group_name" validate:"notblank,max=200" label:"Group name"`
//	}
//
//	var req groupRequest
//	if err := formutil.Decode(w, r, &req); err != nil {
//		h.ErrLog.Write(w, r, err)
//		return
//	}
package formutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/bulletin/internal/app/system/inputval"
	"github.com/dalemusser/bulletin/internal/app/system/limits"
	"github.com/dalemusser/bulletin/internal/domain/errs"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Decode reads r's JSON body into dst (a pointer to a struct) and runs the
// struct's validate tags. Unknown fields are rejected.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, limits.MaxJSONBodySize)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: %s", errs.ErrInvalidInput, describe(err))
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: request body must contain a single JSON object", errs.ErrInvalidInput)
	}

	if res := inputval.Validate(dst); res.HasErrors() {
		return fmt.Errorf("%w: %s", errs.ErrInvalidInput, res.All())
	}
	return nil
}

// ObjectIDParam parses the chi URL parameter name as an ObjectID.
func ObjectIDParam(r *http.Request, name string) (primitive.ObjectID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q is not a valid id", errs.ErrInvalidInput, raw)
	}
	return id, nil
}

func describe(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError

	switch {
	case errors.Is(err, io.EOF):
		return "request body is empty"
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return "request body is not valid JSON"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("field %q has the wrong type", typeErr.Field)
	case errors.As(err, &maxErr):
		return fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
	case strings.HasPrefix(err.Error(), "json: unknown field "):
		return "unknown field " + strings.TrimPrefix(err.Error(), "json: unknown field ")
	}
	return "request body could not be read"
}
