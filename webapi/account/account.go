// Package account provides the HTTP endpoints for account operations.
package account

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/duitku/duitku/pkg/config"
	domainaccount "github.com/duitku/duitku/pkg/domain/account"
	"github.com/duitku/duitku/pkg/dto"
	"github.com/duitku/duitku/pkg/middleware"
	accountsvc "github.com/duitku/duitku/pkg/service/account"
	"github.com/duitku/duitku/webapi/common"
)

// Routes registers account endpoints.
//
//   - POST   /accounts      : Create an account, optionally seeding an opening balance.
//   - GET    /accounts      : List the tenant's accounts.
//   - GET    /accounts/:id  : Get one account with its balance status.
//   - PATCH  /accounts/:id  : Rename an account.
//   - DELETE /accounts/:id  : Soft-delete an account.
func Routes(app *fiber.App, svc *accountsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Post("/accounts", protected, Create(svc))
	app.Get("/accounts", protected, List(svc))
	app.Get("/accounts/:id", protected, Get(svc))
	app.Patch("/accounts/:id", protected, Update(svc))
	app.Delete("/accounts/:id", protected, Delete(svc))
}

// Create returns the handler for creating an account.
func Create(svc *accountsvc.Service) fiber.Handler {
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
		a, err := svc.CreateAccount(c.UserContext(), accountsvc.CreateAccountInput{
			TenantID:       tenantID,
			ActorID:        actorID,
			Name:           input.Name,
			Type:           domainaccount.Type(input.Type),
			Currency:       input.Currency,
			OpeningBalance: input.OpeningBalance,
		})
		if err != nil {
			log.Errorf("Failed to create account: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Account created", a)
	}
}

// List returns the handler for listing the tenant's accounts.
func List(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		accounts, err := svc.ListAccounts(c.UserContext(), tenantID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list accounts", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Accounts", accounts)
	}
}

// Get returns the handler for reading one account.
func Get(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		a, err := svc.GetAccount(c.UserContext(), tenantID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account", a)
	}
}

// Update returns the handler for renaming an account.
func Update(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		input, err := common.BindAndValidate[UpdateRequest](c)
		if input == nil {
			return err
		}
		a, err := svc.UpdateAccount(c.UserContext(), tenantID, id, dto.AccountUpdate{
			Name: input.Name,
		})
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to update account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account updated", a)
	}
}

// Delete returns the handler for soft-deleting an account.
func Delete(svc *accountsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid account ID", err)
		}
		if err := svc.DeleteAccount(c.UserContext(), tenantID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete account", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Account deleted", nil)
	}
}
