// Package goal provides the HTTP endpoints for savings goals and their
// contributions.
package goal

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/duitku/duitku/pkg/config"
	"github.com/duitku/duitku/pkg/middleware"
	goalsvc "github.com/duitku/duitku/pkg/service/goal"
	"github.com/duitku/duitku/webapi/common"
)

// CreateRequest is the body of POST /goals. TargetAmount is in minor units.
type CreateRequest struct {
	Name         string     `json:"name" validate:"required,max=120"`
	TargetAmount int64      `json:"target_amount" validate:"gt=0"`
	Deadline     *time.Time `json:"deadline"`
}

// Routes registers goal endpoints.
//
//   - POST   /goals                        : Create a savings goal.
//   - GET    /goals                        : List the tenant's goals with progress.
//   - GET    /goals/:id                    : Get one goal.
//   - DELETE /goals/:id                    : Soft-delete a goal.
//   - GET    /goals/:id/contributions      : List a goal's contributions.
//   - DELETE /contributions/:id            : Remove a contribution and reverse its ledger leg.
func Routes(app *fiber.App, svc *goalsvc.Service, cfg *config.App) {
	protected := middleware.JwtProtected(cfg.Jwt)
	app.Post("/goals", protected, Create(svc))
	app.Get("/goals", protected, List(svc))
	app.Get("/goals/:id", protected, Get(svc))
	app.Delete("/goals/:id", protected, Delete(svc))
	app.Get("/goals/:id/contributions", protected, ListContributions(svc))
	app.Delete("/contributions/:id", protected, DeleteContribution(svc))
}

// Create returns the handler for creating a goal.
func Create(svc *goalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		input, err := common.BindAndValidate[CreateRequest](c)
		if input == nil {
			return err
		}
		g, err := svc.CreateGoal(c.UserContext(), goalsvc.CreateGoalInput{
			TenantID:     tenantID,
			Name:         input.Name,
			TargetAmount: input.TargetAmount,
			Deadline:     input.Deadline,
		})
		if err != nil {
			log.Errorf("Failed to create goal: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to create goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusCreated, "Goal created", g)
	}
}

// List returns the handler for listing the tenant's goals.
func List(svc *goalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		goals, err := svc.ListGoals(c.UserContext(), tenantID)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list goals", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goals", goals)
	}
}

// Get returns the handler for reading one goal.
func Get(svc *goalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid goal ID", err)
		}
		g, err := svc.GetGoal(c.UserContext(), tenantID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to get goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goal", g)
	}
}

// Delete returns the handler for soft-deleting a goal.
func Delete(svc *goalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid goal ID", err)
		}
		if err := svc.DeleteGoal(c.UserContext(), tenantID, id); err != nil {
			return common.ProblemDetailsJSON(c, "Failed to delete goal", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Goal deleted", nil)
	}
}

// ListContributions returns the handler for listing a goal's contributions.
func ListContributions(svc *goalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid goal ID", err)
		}
		contributions, err := svc.ListContributions(c.UserContext(), tenantID, id)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Failed to list contributions", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Contributions", contributions)
	}
}

// DeleteContribution returns the handler for removing a contribution. The
// source account gets its money back through the reversal of the funding
// journal entry.
func DeleteContribution(svc *goalsvc.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tenantID, err := common.CurrentTenant(c)
		if err != nil {
			return common.ProblemDetailsJSON(c, "Unauthorized", err, fiber.StatusUnauthorized)
		}
		id, err := common.ParseIDParam(c, "id")
		if err != nil {
			return common.ProblemDetailsJSON(c, "Invalid contribution ID", err)
		}
		if err := svc.DeleteContribution(c.UserContext(), tenantID, id); err != nil {
			log.Errorf("Failed to delete contribution: %v", err)
			return common.ProblemDetailsJSON(c, "Failed to delete contribution", err)
		}
		return common.SuccessResponseJSON(c, fiber.StatusOK, "Contribution deleted", nil)
	}
}
