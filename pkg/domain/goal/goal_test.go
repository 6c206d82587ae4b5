package goal_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duitku/duitku/pkg/domain"
	"github.com/duitku/duitku/pkg/domain/goal"
)

func TestGoal_Progress(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		target      int64
		accumulated int64
		want        float64
	}{
		{"empty", 1_000_000, 0, 0},
		{"halfway", 1_000_000, 500_000, 0.5},
		{"complete", 1_000_000, 1_000_000, 1},
		{"clamped over target", 1_000_000, 1_500_000, 1},
		{"zero target", 0, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := &goal.Goal{TargetAmount: tt.target, AccumulatedAmount: tt.accumulated}
			assert.InDelta(t, tt.want, g.Progress(), 1e-9)
		})
	}
}

func TestGoal_Validate(t *testing.T) {
	t.Parallel()
	valid := goal.Goal{TenantID: uuid.New(), Name: "Emergency fund", TargetAmount: 10_000_000}
	assert.NoError(t, valid.Validate())

	t.Run("missing tenant", func(t *testing.T) {
		t.Parallel()
		g := valid
		g.TenantID = uuid.Nil
		require.ErrorIs(t, g.Validate(), domain.ErrValidation)
	})
	t.Run("missing name", func(t *testing.T) {
		t.Parallel()
		g := valid
		g.Name = ""
		require.ErrorIs(t, g.Validate(), domain.ErrValidation)
	})
	t.Run("non-positive target", func(t *testing.T) {
		t.Parallel()
		g := valid
		g.TargetAmount = 0
		require.ErrorIs(t, g.Validate(), domain.ErrValidation)
	})
}

func TestGoal_DisplayName(t *testing.T) {
	t.Parallel()
	g := &goal.Goal{Name: "Vacation"}
	assert.Equal(t, "[Goal] Vacation", g.DisplayName())
}
