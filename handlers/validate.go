package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"storefinder/utils/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// validateInput runs struct validation and aggregates every failing field
// into a single error, so the caller sees all problems at once.
func validateInput(input any) *errors.APIError {
	err := validate.Struct(input)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.ErrInvalidInput
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return errors.NewAPIError("VALIDATION_FAILURE", "Invalid input", http.StatusBadRequest, strings.Join(fields, "; "))
}
