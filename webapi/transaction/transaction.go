// Package transaction provides the HTTP endpoints for journal entries.
package transaction

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/duitku/duitku/pkg/config"
	domainledger "github.com/duitku/duitku/pkg/domain/ledger"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/middleware"
	ledgersvc "github.com/duitku/duitku/pkg/service/ledger"
	"github.com/duitku/duitku/webapi/common"
)

// Routes registers transaction endpoints.
//
//   - POST   /transactions            : Record an income or expense.
//   - GET    /transactions            : List entries, filterable.
//   - GET    /transactions/export     : Export filtered entries as CSV or JSON.
//   - GET    /transactions/:id        : Get one entry.
//   - PATCH  /transactions/:id        : Amend an entry; the balance follows by delta.
//   - DELETE /transactions/:id        : Reverse and soft-delete an entry.
func Routes(app *fiber.App, svc *ledgersvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Post("/transactions", protected, Create(svc))
	app.Get("/transactions", protected, List(svc))
	app.Get("/transactions/export", protected, Export(svc))
	app.Get("/transactions/:id", protected, Get(svc))
	app.Patch("/transactions/:id", protected, Update(svc))
	app.Delete("/transactions/:id", protected, Delete(svc))
}

// Create returns the handler for recording an income or expense entry.
func Create(svc *ledgersvc.Service) fiber.Handler {
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
		t, err := svc.CreateTransaction(c.UserContext(), ledgersvc.CreateTransactionInput{
			TenantID:    tenantID,
			ActorID:     actorID,
			AccountID:   input.AccountID,
			CategoryID:  input.CategoryID,
			Kind:        domainledger.Kind(input.Kind),
			Amount:      input.Amount,
			Currency:    input.Currency,
			ValueDate:   valueDate,
			Note:        input.Note,
			RecurringID: input.RecurringID,
			Splits:      mapSplits(input.Splits),
		})
		if err != nil {
			log.Errorf("Failed to create transaction: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Transaction created", t)
	}
}

// List returns the handler for listing entries with query filters.
func List(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		filter, err := filterFromQuery(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid filter", err, fiber.StatusBadRequest)
		}
		entries, err := svc.ListTransactions(c.UserContext(), tenantID, filter)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list transactions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transactions", entries)
	}
}

// Export returns the handler streaming filtered entries as CSV or JSON.
func Export(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		filter, err := filterFromQuery(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid filter", err, fiber.StatusBadRequest)
		}
		format := c.Query("format", "csv")
		data, contentType, err := svc.ExportTransactions(c.UserContext(), tenantID, filter, format)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to export transactions", err)
		}
		c.Set(fiber.HeaderContentType, contentType)
		c.Set(fiber.HeaderContentDisposition, `attachment; filename="transactions.`+format+`"`)
		return c.Send(data)
	}
}

// Get returns the handler for reading one entry.
func Get(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err)
		}
		t, err := svc.GetTransaction(c.UserContext(), tenantID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction", t)
	}
}

// Update returns the handler for amending an entry.
func Update(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err)
		}
		input, err := common.BindAndValidate[UpdateRequest](c)
		if input == nil {
			return err
		}
		update := dto.TransactionUpdate{
			AccountID:  input.AccountID,
			CategoryID: input.CategoryID,
			Amount:     input.Amount,
			ValueDate:  input.ValueDate,
			Note:       input.Note,
		}
		if input.Splits != nil {
			splits := mapSplits(*input.Splits)
			update.Splits = &splits
		}
		t, err := svc.UpdateTransaction(c.UserContext(), tenantID, id, update)
		if err != nil {
			log.Errorf("Failed to update transaction: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to update transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction updated", t)
	}
}

// Delete returns the handler for reversing and soft-deleting an entry.
func Delete(svc *ledgersvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid transaction ID", err)
		}
		if err := svc.DeleteTransaction(c.UserContext(), tenantID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete transaction", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Transaction deleted", nil)
	}
}

func filterFromQuery(c *fiber.Ctx) (dto.TransactionFilter, error) {
	filter := dto.TransactionFilter{
		Kind:                c.Query("kind"),
		NoteContains:        c.Query("q"),
		IncludeIncomingLegs: c.QueryBool("include_incoming"),
		Limit:               c.QueryInt("limit"),
		Offset:              c.QueryInt("offset"),
	}
	if raw := c.Query("account_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.AccountID = id
	}
	if raw := c.Query("category_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return filter, err
		}
		filter.CategoryID = id
	}
	if raw := c.Query("from"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.From = t
	}
	if raw := c.Query("to"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return filter, err
		}
		filter.To = t
	}
	return filter, nil
}

func mapSplits(in []SplitRequest) []dto.SplitCreate {
	if len(in) == 0 {
		return nil
	}
	out := make([]dto.SplitCreate, 0, len(in))
	for _, s := range in {
		out = append(out, dto.SplitCreate{CategoryID: s.CategoryID, Amount: s.Amount})
	}
	return out
}
