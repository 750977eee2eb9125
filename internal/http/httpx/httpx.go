// Package httpx holds the response, validation and error mapping helpers
// shared by the API handlers.
package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/payday/internal/account"
	"github.com/MrJamesThe3rd/payday/internal/bill"
	"github.com/MrJamesThe3rd/payday/internal/funds"
	"github.com/MrJamesThe3rd/payday/internal/ledger"
	"github.com/MrJamesThe3rd/payday/internal/money"
)

var ErrValidation = errors.New("validation failed")

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("form"), ","); name != "" && name != "-" {
			return name
		}

		return f.Name
	})

	return v
}

// Validate checks v's `validate` tags. Failures wrap ErrValidation and name
// fields by their `form` tag.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}

	sort.Strings(msgs)

	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "number", "numeric":
		return fe.Field() + " must be a number"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

// ParseID reads a positive int64 URL parameter.
func ParseID(r *http.Request, name string) (int64, error) {
	return ParseInt(chi.URLParam(r, name), name)
}

// ParseInt parses a positive int64 form or query value.
func ParseInt(s, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", ErrValidation, name)
	}

	return id, nil
}

// OptionalInt is ParseInt for values that may be blank.
func OptionalInt(s, name string) (*int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	id, err := ParseInt(s, name)
	if err != nil {
		return nil, err
	}

	return &id, nil
}

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Error writes err with the status its kind maps to. Unexpected errors are
// logged and reported without detail.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)

		msg = "internal error"
	}

	JSON(w, status, errorResponse{Error: msg})
}

func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation),
		errors.Is(err, money.ErrInvalidAmount),
		errors.Is(err, funds.ErrInvalidAccount),
		errors.Is(err, account.ErrInvalidName),
		errors.Is(err, bill.ErrInvalid),
		errors.Is(err, bill.ErrUnknownAccount),
		errors.Is(err, ledger.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, account.ErrNotFound),
		errors.Is(err, bill.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bill.ErrNotActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
