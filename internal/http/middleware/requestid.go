package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"

	"libapi/internal/logging"
)

const (
	// RequestIDHeader is the standard header name used to propagate request IDs.
	RequestIDHeader = "X-Request-ID"
	// RequestIDLocalKey is the key used to store the request ID in Fiber's context locals.
	RequestIDLocalKey = "request_id"
)

// maxRequestIDLen bounds client supplied IDs; longer ones are replaced.
const maxRequestIDLen = 128

// RequestID ensures every request has a request ID. The incoming
// X-Request-ID is kept when present, otherwise a UUID is generated. The ID
// is stored in the context locals, echoed in the response header and
// attached to the user context so repository logs can carry it.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		// The header value aliases a request buffer and the ID outlives it in
		// the user context.
		id := utils.CopyString(c.Get(RequestIDHeader))
		if id == "" || len(id) > maxRequestIDLen {
			id = uuid.NewString()
		}

		c.Locals(RequestIDLocalKey, id)
		c.SetUserContext(logging.WithRequestID(c.UserContext(), id))
		c.Set(RequestIDHeader, id)

		return c.Next()
	}
}
