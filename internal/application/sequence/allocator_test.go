package sequence_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/erp-core/internal/application/sequence"
	"github.com/jhoicas/erp-core/internal/domain/repository"
	"github.com/jhoicas/erp-core/internal/infrastructure/memory"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "PO-2024-00001", sequence.Format("PO", 2024, 1))
	assert.Equal(t, "ORD-2025-123456", sequence.Format("ORD", 2025, 123456))
	assert.Equal(t, "reception:2024", sequence.ScopeKey(sequence.ScopeReception, 2024))
}

func TestNext_RespetaPiso(t *testing.T) {
	store := memory.NewStore()
	alloc := sequence.NewAllocator()
	ctx := context.Background()

	var values []int64
	for _, floor := range []int64{0, 10, 3} {
		require.NoError(t, store.Run(ctx, func(repos repository.Repos) error {
			n, err := alloc.Next(ctx, repos, "c1", "purchase_order:2024", floor)
			values = append(values, n)
			return err
		}))
	}
	assert.Equal(t, []int64{1, 11, 12}, values)
}

func TestNext_ConcurrenteSinDuplicados(t *testing.T) {
	store := memory.NewStore()
	alloc := sequence.NewAllocator()
	ctx := context.Background()

	const workers = 50
	var (
		mu   sync.Mutex
		seen = map[int64]bool{}
		wg   sync.WaitGroup
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = store.Run(ctx, func(repos repository.Repos) error {
				n, err := alloc.Next(ctx, repos, "c1", "order:2024", 0)
				if err != nil {
					return err
				}
				mu.Lock()
				seen[n] = true
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()
	assert.Len(t, seen, workers, "cada asignación debe ser única")
	for i := int64(1); i <= workers; i++ {
		assert.True(t, seen[i], "falta el número %d", i)
	}
}

func TestNextNumber_AlcancesIndependientes(t *testing.T) {
	store := memory.NewStore()
	alloc := sequence.NewAllocator()
	ctx := context.Background()

	var po, rec, po2 string
	require.NoError(t, store.Run(ctx, func(repos repository.Repos) error {
		var err error
		if po, err = alloc.NextNumber(ctx, repos, "c1", sequence.ScopePurchaseOrder); err != nil {
			return err
		}
		if rec, err = alloc.NextNumber(ctx, repos, "c1", sequence.ScopeReception); err != nil {
			return err
		}
		po2, err = alloc.NextNumber(ctx, repos, "c1", sequence.ScopePurchaseOrder)
		return err
	}))
	assert.Regexp(t, `^PO-\d{4}-00001$`, po)
	assert.Regexp(t, `^REC-\d{4}-00001$`, rec)
	assert.Regexp(t, `^PO-\d{4}-00002$`, po2)

	err := store.Run(ctx, func(repos repository.Repos) error {
		_, err := alloc.NextNumber(ctx, repos, "c1", "desconocido")
		return err
	})
	assert.Error(t, err)
}
