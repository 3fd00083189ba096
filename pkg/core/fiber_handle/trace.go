package fiber_handle

import (
	"context"

	"msifactory/pkg/core/consts"

	"github.com/gofiber/fiber/v2"
	uuid "github.com/satori/go.uuid"
)

// NewApiTrace 为每个请求分配追踪 ID 并写入 UserContext
func NewApiTrace() fiber.Handler {
	return func(c *fiber.Ctx) error {
		traceID := c.Get("X-Trace-Id")
		if traceID == "" {
			traceID = uuid.NewV4().String()
		}

		ctx := context.WithValue(c.UserContext(), consts.TraceKey, traceID)
		c.SetUserContext(ctx)
		c.Locals(consts.TraceKey, traceID)
		return c.Next()
	}
}
