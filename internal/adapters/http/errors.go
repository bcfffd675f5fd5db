package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/dandedj/csp-client/internal/adapters/plaqueapi"
)

// APIResponseError is a structured error response.
type APIResponseError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // bad_request, not_found, bad_gateway, internal_error
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIResponseError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, 400, "bad_request", msg)
}

// errNotFound returns a 404 error.
func errNotFound(c *fiber.Ctx, msg string) error {
	return newError(c, 404, "not_found", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, 500, "internal_error", msg)
}

// errBadGateway returns a 502 error for upstream catalog failures.
func errBadGateway(c *fiber.Ctx, msg string) error {
	return newError(c, 502, "bad_gateway", msg)
}

// upstreamError translates the catalog client's typed errors into a
// response. Transport, upstream-status, and parse failures are all the
// catalog's fault, not the caller's.
func upstreamError(c *fiber.Ctx, err error) error {
	var netErr *plaqueapi.NetworkError
	var apiErr *plaqueapi.APIError
	var parseErr *plaqueapi.ParseError

	switch {
	case errors.As(err, &netErr):
		return errBadGateway(c, "plaque catalog unreachable")
	case errors.As(err, &apiErr):
		return errBadGateway(c, apiErr.Error())
	case errors.As(err, &parseErr):
		return errBadGateway(c, "plaque catalog returned malformed data")
	default:
		return errInternal(c, err.Error())
	}
}
