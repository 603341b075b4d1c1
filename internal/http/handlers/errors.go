package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"beanbrew/internal/domain"
	applog "beanbrew/internal/log"
)

const internalMessage = "Something went wrong. Please try again."

// classify maps an error to an HTTP status and a stable code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.StatusBadRequest, "validation"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "not_found"
	case errors.Is(err, domain.ErrInsufficientStock):
		return fiber.StatusConflict, "insufficient_stock"
	case errors.Is(err, domain.ErrInsufficientPoints):
		return fiber.StatusConflict, "insufficient_points"
	case errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "conflict"
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		switch fe.Code {
		case fiber.StatusUnauthorized:
			return fe.Code, "unauthorized"
		case fiber.StatusForbidden:
			return fe.Code, "forbidden"
		case fiber.StatusNotFound:
			return fe.Code, "not_found"
		case fiber.StatusRequestEntityTooLarge:
			return fe.Code, "too_large"
		case fiber.StatusTooManyRequests:
			return fe.Code, "rate_limited"
		}
		if fe.Code < fiber.StatusInternalServerError {
			return fe.Code, "bad_request"
		}
	}
	return fiber.StatusInternalServerError, "internal"
}

// message is what the client sees; internals never leave the process.
func message(err error, status int) string {
	if status >= fiber.StatusInternalServerError {
		return internalMessage
	}
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return fe.Message
	}
	return err.Error()
}

// ErrorHandler renders every returned error as {"error", "code"}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, code := classify(err)
	c.Status(status)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Info(c, "request.rejected", map[string]any{"code": code, "err": err.Error()})
	}
	return c.JSON(fiber.Map{"error": message(err, status), "code": code})
}

// renderError is the page-route counterpart of ErrorHandler.
func renderError(c *fiber.Ctx, err error) error {
	status, _ := classify(err)
	c.Status(status)
	if status >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	}
	msg := message(err, status)
	if status == fiber.StatusNotFound {
		msg = "Not found"
	}
	if rerr := render(c, "notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.SendString(msg)
	}
	return nil
}

func paramID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid("id", "must be a positive integer")
	}
	return id, nil
}

// parseBody decodes a JSON or form body into dst; a malformed body is a
// validation error.
func parseBody(c *fiber.Ctx, dst any) error {
	if err := c.BodyParser(dst); err != nil {
		return domain.Invalid("body", "malformed request body")
	}
	return nil
}
