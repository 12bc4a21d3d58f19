package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"socialid/internal/domain"
	"socialid/internal/logger"
	"socialid/internal/middleware"
	"socialid/internal/service"
	"socialid/internal/validator"
)

const maxBodyBytes = 1 << 20

// APIResponse is the standard envelope for all API responses.
type APIResponse struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Error   *APIError         `json:"error,omitempty"`
	Errors  []validator.Entry `json:"errors,omitempty"`
}

// APIError holds error details in the response.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RespondOK sends a 200 success response.
func RespondOK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// RespondCreated sends a 201 success response.
func RespondCreated(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, APIResponse{Success: true, Data: data})
}

// RespondError sends an error response with the given status code.
func RespondError(c *gin.Context, status int, code, msg string) {
	c.JSON(status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: msg},
	})
}

// RespondValidation sends a 400 response listing every failed check.
func RespondValidation(c *gin.Context, set *validator.ErrorSet) {
	c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Error:   &APIError{Code: "VALIDATION_ERROR", Message: "request validation failed"},
		Errors:  set.Entries(),
	})
}

// MapDomainError translates domain errors to HTTP status codes and error codes.
func MapDomainError(err error) (status int, code, msg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials"
	case errors.Is(err, domain.ErrUserInactive):
		return http.StatusForbidden, "USER_INACTIVE", "user is inactive"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return http.StatusConflict, "DUPLICATE_EMAIL", "email already exists"
	case errors.Is(err, domain.ErrDuplicateUsername):
		return http.StatusConflict, "DUPLICATE_USERNAME", "username already exists"
	case errors.Is(err, domain.ErrProviderNotFound):
		return http.StatusNotFound, "PROVIDER_NOT_FOUND", "social provider not found"
	case errors.Is(err, domain.ErrSocialAccountTaken):
		return http.StatusConflict, "SOCIAL_ACCOUNT_TAKEN", "social account is connected to another user"
	case errors.Is(err, domain.ErrPendingLoginNotFound):
		return http.StatusNotFound, "FLOW_NOT_FOUND", "signup flow not found or expired"
	case errors.Is(err, domain.ErrSignupClosed):
		return http.StatusForbidden, "SIGNUP_CLOSED", "signup is closed"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}
}

// HandleError sends the response for err: validation failures list their
// entries, a pending signup returns its flow, anything else goes through
// MapDomainError.
func HandleError(c *gin.Context, err error) {
	var set *validator.ErrorSet
	if errors.As(err, &set) {
		RespondValidation(c, set)
		return
	}
	var signup *service.SignupRequiredError
	if errors.As(err, &signup) {
		c.JSON(http.StatusUnauthorized, APIResponse{
			Success: false,
			Data:    gin.H{"flow": domain.FlowProviderSignup, "pending": signup.Flow},
			Error:   &APIError{Code: "SIGNUP_REQUIRED", Message: "complete the signup form to finish logging in"},
		})
		return
	}

	status, code, msg := MapDomainError(err)
	if status >= 500 {
		logger.From(c.Request.Context()).Error("internal error", zap.Error(err))
	}
	RespondError(c, status, code, msg)
}

// readData decodes the request body for a validator input. It writes the
// error response itself and reports false when the body is unusable.
func readData(c *gin.Context) (validator.Data, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
			return nil, false
		}
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "could not read request body")
		return nil, false
	}
	data, err := validator.ParseData(body)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return nil, false
	}
	return data, true
}

// requireUser returns the authenticated user or writes a 401.
func requireUser(c *gin.Context) (*domain.User, bool) {
	user := middleware.GetUser(c)
	if user == nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing user context")
		return nil, false
	}
	return user, true
}
