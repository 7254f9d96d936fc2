package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/aeroway/aeroway-api/internal/errors"
	"github.com/aeroway/aeroway-api/internal/util"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return util.PasswordStrong(fl.Field().String())
	})
	return v
}

// FieldError names one rejected request field.
type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// decodeJSON decodes the body into dst and validates it. On failure it
// writes the error response and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			writeError(w, apperrors.ValidationError("Request body too large"))
		case errors.Is(err, io.EOF):
			writeError(w, apperrors.ValidationError("Request body is required"))
		default:
			writeError(w, apperrors.ValidationError("Invalid request body"))
		}
		return false
	}
	if err := validateStruct(dst); err != nil {
		writeError(w, err)
		return false
	}
	return true
}

func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperrors.ValidationError("Invalid request body")
	}
	details := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return apperrors.ValidationError("Validation failed").WithDetails(details)
}
