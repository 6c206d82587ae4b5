// Package common provides shared helpers for the web API handlers: request
// binding and validation, success envelopes, RFC 9457 problem responses and
// the domain error to HTTP status mapping.
package common

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/duitku/duitku/pkg/domain"
)

var validate = validator.New()

// Response defines the standard API response structure for success cases.
type Response struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ProblemDetails follows RFC 9457 Problem Details for HTTP APIs.
type ProblemDetails struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// SuccessResponseJSON writes a success envelope.
func SuccessResponseJSON(c *fiber.Ctx, status int, message string, data any) error {
	return c.Status(status).JSON(Response{
		Status:  status,
		Message: message,
		Data:    data,
	})
}

// ProblemDetailsJSON writes an RFC 9457 problem response. The status is
// derived from the error unless an explicit status is given.
func ProblemDetailsJSON(c *fiber.Ctx, title string, err error, status ...int) error {
	code := ErrorToStatusCode(err)
	if len(status) > 0 {
		code = status[0]
	}
	pd := ProblemDetails{
		Type:     "about:blank",
		Title:    title,
		Status:   code,
		Instance: c.OriginalURL(),
	}
	if err != nil {
		pd.Detail = err.Error()
	}
	c.Set(fiber.HeaderContentType, "application/problem+json")
	return c.Status(code).JSON(pd)
}

// ErrorToStatusCode maps domain errors to HTTP status codes.
func ErrorToStatusCode(err error) int {
	switch {
	case err == nil:
		return fiber.StatusInternalServerError
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrDomainRule):
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

// BindAndValidate parses the request body and validates it with
// go-playground/validator. On failure it writes the error response and
// returns nil.
func BindAndValidate[T any](c *fiber.Ctx) (*T, error) {
	var input T
	if err := c.BodyParser(&input); err != nil {
		_ = ProblemDetailsJSON(c, "Invalid request body", err, fiber.StatusBadRequest)
		return nil, err
	}
	if err := validate.Struct(input); err != nil {
		_ = ProblemDetailsJSON(c, "Validation failed", err, fiber.StatusBadRequest)
		return nil, err
	}
	return &input, nil
}

// ParseIDParam parses a UUID route parameter.
func ParseIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a valid UUID", domain.ErrValidation, name)
	}
	return id, nil
}

// CurrentTenant extracts the tenant ID from the verified token claims.
func CurrentTenant(c *fiber.Ctx) (uuid.UUID, error) {
	return claimUUID(c, "tenant_id")
}

// CurrentActor extracts the acting user's ID from the token subject.
func CurrentActor(c *fiber.Ctx) (uuid.UUID, error) {
	return claimUUID(c, "sub")
}

func claimUUID(c *fiber.Ctx, key string) (uuid.UUID, error) {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok {
		return uuid.Nil, errors.New("missing user context")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("unexpected claims type")
	}
	raw, ok := claims[key].(string)
	if !ok {
		return uuid.Nil, fmt.Errorf("missing %s claim", key)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s claim: %w", key, err)
	}
	return id, nil
}
