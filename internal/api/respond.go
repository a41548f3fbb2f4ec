package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/example/storefront/internal/catalog"
	"github.com/example/storefront/internal/command"
	"github.com/example/storefront/internal/domain/product"
	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	return v
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeBody decodes and validates a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dest any) bool {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		respondJSONError(w, "invalid request body", http.StatusBadRequest)
		return false
	}

	if err := validate.Struct(dest); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			respondJSONError(w, "validation failed", http.StatusBadRequest)
			return false
		}
		details := make(map[string]string, len(errs))
		for _, fe := range errs {
			details[fe.Field()] = validationMessage(fe)
		}
		respondJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation failed",
			"details": details,
		})
		return false
	}
	return true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	}
	return "is invalid"
}

// writeError maps handler errors onto HTTP statuses. Server-side failures are logged.
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		respondJSONError(w, "product not found", http.StatusNotFound)
	case errors.Is(err, command.ErrQtyRequired):
		respondJSONError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, catalog.ErrCatalogUnavailable):
		h.log.Warn(r.Context(), fmt.Sprintf("catalog unavailable: %v", err))
		respondJSONError(w, "catalog unavailable", http.StatusServiceUnavailable)
	default:
		h.log.Error(r.Context(), "request failed", err)
		respondJSONError(w, "internal error", http.StatusInternalServerError)
	}
}
