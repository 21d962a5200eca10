package httpx

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"
const requestIDLocalsKey = "request_id"

// RequestID stamps every inbound request with a correlation id — reusing
// one supplied by an upstream proxy in X-Request-Id, minting a uuid
// otherwise — and echoes it back in the response header. Error reads the
// same id back out to tag Internal-error log lines, per spec §7.
func RequestID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Locals(requestIDLocalsKey, id)
		c.Set(requestIDHeader, id)
		return c.Next()
	}
}

func requestIDFrom(c *fiber.Ctx) string {
	id, _ := c.Locals(requestIDLocalsKey).(string)
	return id
}
