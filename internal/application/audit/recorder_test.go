package audit_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/audit"
	"github.com/jhoicas/erp-core/internal/domain/entity"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
)

type failingRepo struct{ calls int }

func (f *failingRepo) Create(context.Context, *entity.AuditEntry) error {
	f.calls++
	return errors.New("db caída")
}

func TestRecorder_Persiste(t *testing.T) {
	store := memory.NewStore()
	rec := audit.NewRecorder(store.AuditRepository(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Record(ctx, entity.AuditEntry{CompanyID: "c1", Action: "approve", EntityType: "reception", EntityID: "r1"})

	entries := store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "approve", entries[0].Action)
	assert.False(t, entries[0].CreatedAt.IsZero())
	assert.NotEmpty(t, entries[0].ID)
}

func TestRecorder_FalloNoSePropaga(t *testing.T) {
	repo := &failingRepo{}
	rec := audit.NewRecorder(repo, nil)
	assert.NotPanics(t, func() {
		rec.Record(context.Background(), entity.AuditEntry{Action: "close"})
	})
	assert.Equal(t, 1, repo.calls)
}
