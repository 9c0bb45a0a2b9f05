package balance_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/audit"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/balance"
	"github.com/venkateshmergu-svg/LMS-ORG-01-sub002/internal/shared/contextutil"
)

type fakeRecorder struct {
	entries []audit.Entry
}

func (f *fakeRecorder) WithTx(tx *sql.Tx) audit.Recorder { return f }

func (f *fakeRecorder) Record(ctx context.Context, e audit.Entry) error {
	if e.ActorID == "" {
		e.ActorID = contextutil.GetActorID(ctx)
	}
	f.entries = append(f.entries, e)
	return nil
}

func TestBalanceAuditedRepository(t *testing.T) {
	employeeID := uuid.New()
	actorID := uuid.New().String()
	ctx := contextutil.WithActorID(context.Background(), actorID)

	t.Run("create records an entry with the new state", func(t *testing.T) {
		rec := &fakeRecorder{}
		repo := balance.NewAuditedRepository(&fakeBalanceRepository{}, rec)

		b := seededBalance(employeeID, "10.0", "0.0", "0.0")
		err := repo.Create(ctx, b)

		assert.NoError(t, err)
		assert.Len(t, rec.entries, 1)
		entry := rec.entries[0]
		assert.Equal(t, "leave_balance", entry.EntityType)
		assert.Equal(t, b.ID.String(), entry.EntityID)
		assert.Equal(t, audit.ActionCreate, entry.Action)
		assert.Equal(t, actorID, entry.ActorID)
		assert.Nil(t, entry.Before)
		assert.NotNil(t, entry.After)
	})

	t.Run("bucket updates carry before and after snapshots", func(t *testing.T) {
		rec := &fakeRecorder{}
		before := seededBalance(employeeID, "10.0", "0.0", "0.0")
		inner := &fakeBalanceRepository{
			findForUpdateFn: func(ctx context.Context, _ uuid.UUID, _ string) (*balance.LeaveBalance, error) {
				cp := *before
				return &cp, nil
			},
		}
		repo := balance.NewAuditedRepository(inner, rec)

		after := seededBalance(employeeID, "7.5", "2.5", "0.0")
		after.ID = before.ID
		err := repo.UpdateBuckets(ctx, after)

		assert.NoError(t, err)
		assert.Len(t, rec.entries, 1)
		entry := rec.entries[0]
		assert.Equal(t, audit.ActionUpdate, entry.Action)

		var beforeState, afterState map[string]any
		assert.NoError(t, json.Unmarshal(entry.Before, &beforeState))
		assert.NoError(t, json.Unmarshal(entry.After, &afterState))
		assert.NotEqual(t, beforeState["Available"], afterState["Available"])
	})

	t.Run("reads do not touch the audit trail", func(t *testing.T) {
		rec := &fakeRecorder{}
		inner := &fakeBalanceRepository{
			findByEmployeeFn: func(ctx context.Context, _ string) ([]balance.LeaveBalance, error) {
				return nil, nil
			},
		}
		repo := balance.NewAuditedRepository(inner, rec)

		_, err := repo.FindByEmployee(ctx, employeeID.String())

		assert.NoError(t, err)
		assert.Empty(t, rec.entries)
	})

	t.Run("a failed mutation records nothing", func(t *testing.T) {
		rec := &fakeRecorder{}
		inner := &fakeBalanceRepository{
			createFn: func(ctx context.Context, _ *balance.LeaveBalance) error {
				return sql.ErrConnDone
			},
		}
		repo := balance.NewAuditedRepository(inner, rec)

		err := repo.Create(ctx, seededBalance(employeeID, "1.0", "0.0", "0.0"))

		assert.Error(t, err)
		assert.Empty(t, rec.entries)
	})
}
