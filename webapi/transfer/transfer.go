// Package transfer provides the HTTP endpoints for transfers between
// accounts and contributions to savings goals.
package transfer

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/duitku/duitku/pkg/config"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/middleware"
	transfersvc "github.com/duitku/duitku/pkg/service/transfer"
	"github.com/duitku/duitku/webapi/common"
)

// CreateRequest is the body of POST /transfers. The destination may be an
// account or a savings goal; the coordinator resolves which.
type CreateRequest struct {
	SourceAccountID uuid.UUID `json:"source_account_id" validate:"required"`
	DestinationID   uuid.UUID `json:"destination_id" validate:"required"`
	Amount          int64     `json:"amount" validate:"gt=0"`
	ValueDate       time.Time `json:"value_date"`
	Note            string    `json:"note" validate:"max=500"`
}

// Routes registers transfer endpoints.
//
//   - POST /transfers : Move money to another account or a savings goal.
//   - GET  /transfers : List transfers, one row per pair.
func Routes(app *fiber.App, svc *transfersvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Post("/transfers", protected, Create(svc))
	app.Get("/transfers", protected, List(svc))
}

// Create returns the handler for creating a transfer.
func Create(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		actorID, err := common.CurrentActor(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		input, err := common.BindAndValidate[CreateRequest](c)
		if input == nil {
			return err
		}
		valueDate := input.ValueDate
		if valueDate.IsZero() {
			valueDate = time.Now().UTC()
		}
		result, err := svc.CreateTransfer(c.UserContext(), transfersvc.CreateTransferInput{
			TenantID:        tenantID,
			ActorID:         actorID,
			SourceAccountID: input.SourceAccountID,
			DestinationID:   input.DestinationID,
			Amount:          input.Amount,
			ValueDate:       valueDate,
			Note:            input.Note,
		})
		if err != nil {
			log.Errorf("Failed to create transfer: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create transfer", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transfer created", result)
	}
}

// List returns the handler for listing transfers.
func List(svc *transfersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		filter := dto.TransactionFilter{
			Limit:  c.QueryInt("limit"),
			Offset: c.QueryInt("offset"),
		}
		if raw := c.Query("account_id"); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return common.ProblemDetailsJSON(c, "Invalid filter", err, fiber.StatusBadRequest)
			}
			filter.AccountID = id
		}
		transfers, err := svc.ListTransfers(c.UserContext(), tenantID, filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transfers", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transfers", transfers)
	}
}
