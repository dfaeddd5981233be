package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	auditdomain "github.com/smallbiznis/meritscore/internal/audit/domain"
	compositedomain "github.com/smallbiznis/meritscore/internal/composite/domain"
	eligibilitydomain "github.com/smallbiznis/meritscore/internal/eligibility/domain"
	gapdomain "github.com/smallbiznis/meritscore/internal/gap/domain"
	"github.com/smallbiznis/meritscore/internal/lock"
	measuredomain "github.com/smallbiznis/meritscore/internal/measure/domain"
	perfdomain "github.com/smallbiznis/meritscore/internal/performance/domain"
	programdomain "github.com/smallbiznis/meritscore/internal/programconfig/domain"
	providerdomain "github.com/smallbiznis/meritscore/internal/provider/domain"
	"github.com/smallbiznis/meritscore/pkg/db/pagination"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type       string                          `json:"type"`
	Message    string                          `json:"message"`
	Errors     []ValidationError               `json:"errors,omitempty"`
	Validation *measuredomain.ValidationResult `json:"validation,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	var selErr *measuredomain.SelectionError
	if errors.As(err, &selErr) {
		result := selErr.Result
		return http.StatusUnprocessableEntity, errorPayload{
			Type:       "invalid_selection",
			Message:    "measure selection does not satisfy program rules",
			Validation: &result,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrConflict),
		errors.Is(err, lock.ErrLockContention):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger the same classification
// clients receive.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return payload.Type, ""
	}
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, pagination.ErrInvalidPageToken),
		errors.Is(err, auditdomain.ErrInvalidAction):
		return true
	case isProviderValidationError(err),
		isProgramValidationError(err),
		isEligibilityValidationError(err),
		isMeasureValidationError(err),
		isPerformanceValidationError(err),
		isSubmissionValidationError(err),
		isGapValidationError(err):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, providerdomain.ErrNotFound),
		errors.Is(err, eligibilitydomain.ErrNotFound),
		errors.Is(err, compositedomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isProviderValidationError(err error) bool {
	return errors.Is(err, providerdomain.ErrInvalidID) ||
		errors.Is(err, providerdomain.ErrInvalidName) ||
		errors.Is(err, providerdomain.ErrInvalidNPI)
}

func isProgramValidationError(err error) bool {
	return errors.Is(err, programdomain.ErrInvalidYear) ||
		errors.Is(err, programdomain.ErrInvalidConfig)
}

func isEligibilityValidationError(err error) bool {
	return errors.Is(err, eligibilitydomain.ErrInvalidProvider) ||
		errors.Is(err, eligibilitydomain.ErrInvalidYear)
}

func isMeasureValidationError(err error) bool {
	return errors.Is(err, measuredomain.ErrInvalidProvider) ||
		errors.Is(err, measuredomain.ErrInvalidYear) ||
		errors.Is(err, measuredomain.ErrInvalidCatalog)
}

func isPerformanceValidationError(err error) bool {
	switch {
	case errors.Is(err, perfdomain.ErrInvalidProvider),
		errors.Is(err, perfdomain.ErrInvalidYear),
		errors.Is(err, perfdomain.ErrInvalidCounts),
		errors.Is(err, perfdomain.ErrInvalidPeriod),
		errors.Is(err, perfdomain.ErrInvalidCompleteness),
		errors.Is(err, perfdomain.ErrInvalidStatus),
		errors.Is(err, perfdomain.ErrInvalidScore),
		errors.Is(err, perfdomain.ErrInvalidPoints),
		errors.Is(err, perfdomain.ErrMeasureNotSelected),
		errors.Is(err, perfdomain.ErrUnknownMeasure):
		return true
	default:
		return false
	}
}

func isSubmissionValidationError(err error) bool {
	return errors.Is(err, compositedomain.ErrInvalidProvider) ||
		errors.Is(err, compositedomain.ErrInvalidYear)
}

func isGapValidationError(err error) bool {
	return errors.Is(err, gapdomain.ErrInvalidProvider) ||
		errors.Is(err, gapdomain.ErrInvalidYear)
}

// validationErrorCode returns the sentinel text found in the chain.
func validationErrorCode(err error) string {
	for e := err; e != nil; e = errors.Unwrap(e) {
		msg := e.Error()
		if !strings.ContainsAny(msg, " :") {
			return msg
		}
	}
	return "invalid_request"
}

func validationErrorField(code string) string {
	switch {
	case code == "invalid_request":
		return "request"
	case strings.HasPrefix(code, "invalid_"):
		return strings.TrimPrefix(code, "invalid_")
	default:
		return ""
	}
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "measure_not_selected":
		return "measure is not selected for this provider and year"
	case "unknown_measure":
		return "measure is not in the catalog"
	default:
		return "invalid value"
	}
}
