// Package goal provides business logic for savings goals and their
// contributions.
package goal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/duitku/duitku/pkg/domain"
	domaingoal "github.com/duitku/duitku/pkg/domain/goal"
	"github.com/duitku/duitku/pkg/dto"
	goalrepo "github.com/duitku/duitku/pkg/repository/goal"
	"github.com/google/uuid"
)

// Journal is the slice of the ledger service the goal service needs to
// reverse the outgoing leg when a contribution is removed.
type Journal interface {
	DeleteGoalTransferLeg(ctx context.Context, tenantID, transactionID uuid.UUID) error
}

// Service provides business logic for savings goals.
type Service struct {
	goals   goalrepo.Repository
	journal Journal
	logger  *slog.Logger
}

// New creates a goal Service.
func New(goals goalrepo.Repository, journal Journal, logger *slog.Logger) *Service {
	return &Service{
		goals:   goals,
		journal: journal,
		logger:  logger.With("service", "goal"),
	}
}

// CreateGoalInput carries a goal creation intent. Amounts in minor units.
type CreateGoalInput struct {
	TenantID     uuid.UUID
	Name         string
	TargetAmount int64
	Deadline     *time.Time
}

// CreateGoal validates and persists a savings goal.
func (s *Service) CreateGoal(ctx context.Context, in CreateGoalInput) (*dto.GoalRead, error) {
	g := &domaingoal.Goal{
		ID:           uuid.New(),
		TenantID:     in.TenantID,
		Name:         in.Name,
		TargetAmount: in.TargetAmount,
		Deadline:     in.Deadline,
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if err := s.goals.Create(ctx, dto.GoalCreate{
		ID:           g.ID,
		TenantID:     g.TenantID,
		Name:         g.Name,
		TargetAmount: g.TargetAmount,
		Deadline:     g.Deadline,
	}); err != nil {
		s.logger.Error("goal create failed", "tenant_id", in.TenantID, "error", err)
		return nil, err
	}
	s.logger.Info("goal created", "goal_id", g.ID, "target", g.TargetAmount)
	return s.GetGoal(ctx, g.TenantID, g.ID)
}

// GetGoal returns one goal with its progress.
func (s *Service) GetGoal(ctx context.Context, tenantID, id uuid.UUID) (*dto.GoalRead, error) {
	g, err := s.goals.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	read := mapToRead(g)
	return &read, nil
}

// ListGoals returns all of a tenant's goals.
func (s *Service) ListGoals(ctx context.Context, tenantID uuid.UUID) ([]dto.GoalRead, error) {
	goals, err := s.goals.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.GoalRead, 0, len(goals))
	for _, g := range goals {
		out = append(out, mapToRead(g))
	}
	return out, nil
}

// DeleteGoal soft-deletes a goal. Contributions and their journal entries
// survive for history.
func (s *Service) DeleteGoal(ctx context.Context, tenantID, id uuid.UUID) error {
	return s.goals.SoftDelete(ctx, tenantID, id)
}

// ListContributions returns a goal's contributions, newest first.
func (s *Service) ListContributions(ctx context.Context, tenantID, goalID uuid.UUID) ([]dto.ContributionRead, error) {
	if _, err := s.goals.Get(ctx, tenantID, goalID); err != nil {
		return nil, err
	}
	rows, err := s.goals.ListContributions(ctx, goalID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ContributionRead, 0, len(rows))
	for _, c := range rows {
		out = append(out, dto.ContributionRead{
			ID:            c.ID,
			GoalID:        c.GoalID,
			TransactionID: c.TransactionID,
			AccountID:     c.AccountID,
			Amount:        c.Amount,
			Date:          c.Date,
			CreatedAt:     c.CreatedAt,
		})
	}
	return out, nil
}

// DeleteContribution removes a contribution AND reverses its ledger side:
// the outgoing journal entry is soft-deleted with a compensating balance
// adjustment, and the goal's accumulated amount is decremented in lockstep
// with the row removal. A contribution is never deleted with its money
// left deducted.
func (s *Service) DeleteContribution(ctx context.Context, tenantID, contributionID uuid.UUID) error {
	c, err := s.goals.GetContribution(ctx, contributionID)
	if err != nil {
		return err
	}
	if _, err := s.goals.Get(ctx, tenantID, c.GoalID); err != nil {
		return fmt.Errorf("%w: contribution %s", domain.ErrNotFound, contributionID)
	}

	// Journal first: reverse the leg, then remove the contribution. If the
	// removal fails the leg is already reversed and the goal still shows
	// the contribution; a retry then finds the leg soft-deleted, so a
	// missing leg counts as already reversed and the delete proceeds to
	// the goal store.
	err = s.journal.DeleteGoalTransferLeg(ctx, tenantID, c.TransactionID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if _, err := s.goals.RemoveContribution(ctx, contributionID); err != nil {
		s.logger.Error("contribution removal failed after leg reversal",
			"contribution_id", contributionID, "error", err)
		return err
	}
	s.logger.Info("contribution deleted",
		"contribution_id", contributionID, "goal_id", c.GoalID, "amount", c.Amount)
	return nil
}

func mapToRead(g *domaingoal.Goal) dto.GoalRead {
	return dto.GoalRead{
		ID:                g.ID,
		TenantID:          g.TenantID,
		Name:              g.Name,
		TargetAmount:      g.TargetAmount,
		AccumulatedAmount: g.AccumulatedAmount,
		Deadline:          g.Deadline,
		Progress:          g.Progress(),
		CreatedAt:         g.CreatedAt,
	}
}
