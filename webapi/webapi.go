// Package webapi provides the HTTP surface of the ledger engine. Handlers
// are organized into sub-packages by domain:
//   - account: account CRUD and balance reads
//   - transaction: journal entry CRUD and export
//   - transfer: transfers between accounts and to savings goals
//   - goal: savings goals and contributions
package webapi

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/duitku/duitku/pkg/app"
	accountweb "github.com/duitku/duitku/webapi/account"
	"github.com/duitku/duitku/webapi/common"
	goalweb "github.com/duitku/duitku/webapi/goal"
	transactionweb "github.com/duitku/duitku/webapi/transaction"
	transferweb "github.com/duitku/duitku/webapi/transfer"
)

// SetupApp builds the Fiber application with middleware and all routes.
func SetupApp(a *app.App) *fiber.App {
	fiberApp := fiber.New(fiber.Config{
		AppName: "duitku",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			status := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
			return common.ProblemDetailsJSON(c, "Internal Server Error", err, status)
		},
	})

	fiberApp.Use(limiter.New(limiter.Config{
		Max: 60,
		KeyGenerator: func(c *fiber.Ctx) string {
			if forwardedFor := c.Get("X-Forwarded-For"); forwardedFor != "" {
				if commaIndex := strings.Index(forwardedFor, ","); commaIndex != -1 {
					return strings.TrimSpace(forwardedFor[:commaIndex])
				}
				return strings.TrimSpace(forwardedFor)
			}
			if realIP := c.Get("X-Real-IP"); realIP != "" {
				return realIP
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return common.ProblemDetailsJSON(
				c,
				"Too Many Requests",
				errors.New("rate limit exceeded"),
				fiber.StatusTooManyRequests,
			)
		},
	}))
	fiberApp.Use(recover.New())
	fiberApp.Use(logger.New())

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	accountweb.Routes(fiberApp, a.AccountService, a.Config)
	transactionweb.Routes(fiberApp, a.LedgerService, a.Config)
	transferweb.Routes(fiberApp, a.TransferService, a.Config)
	goalweb.Routes(fiberApp, a.GoalService, a.Config)
	return fiberApp
}
