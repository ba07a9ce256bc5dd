package store

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dgraph-io/ristretto"

	"budget-server/src/models"
)

// CachedStore layers a per-owner snapshot cache over another Store, so
// repeated reads of the same owner's snapshot (totals, charts and the
// list view recompute on every render) never touch storage. Every
// mutation invalidates the owner's snapshot; the next list re-reads
// storage, which keeps create-then-list consistency within a process.
//
// Invalidation bumps a per-owner generation instead of deleting the
// cache key. Ristretto applies Set and Del through async buffers, so a
// Del can be reordered behind a concurrent reader's stale Set; a new
// generation changes the key readers look up, and late Sets land under
// keys nobody reads anymore.
type CachedStore struct {
	Store
	cache *ristretto.Cache
	gens  sync.Map // ownerID -> *atomic.Int64
}

func NewCachedStore(inner Store) (*CachedStore, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10000, // number of keys to track frequency of
		MaxCost:     10000,
		BufferItems: 64, // number of keys per Get buffer
	})
	if err != nil {
		return nil, fmt.Errorf("initialize snapshot cache: %w", err)
	}
	return &CachedStore{Store: inner, cache: cache}, nil
}

func snapshotKey(ownerID, gen int64) string {
	return fmt.Sprintf("txns:%d:%d", ownerID, gen)
}

func (s *CachedStore) generation(ownerID int64) *atomic.Int64 {
	v, _ := s.gens.LoadOrStore(ownerID, new(atomic.Int64))
	return v.(*atomic.Int64)
}

func (s *CachedStore) ListTransactions(ctx context.Context, ownerID int64) ([]models.Transaction, error) {
	key := snapshotKey(ownerID, s.generation(ownerID).Load())
	if v, ok := s.cache.Get(key); ok {
		if txns, ok := v.([]models.Transaction); ok {
			return txns, nil
		}
	}

	txns, err := s.Store.ListTransactions(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, txns, 1)
	return txns, nil
}

func (s *CachedStore) CreateTransaction(ctx context.Context, ownerID int64, draft models.TransactionDraft) (*models.Transaction, error) {
	t, err := s.Store.CreateTransaction(ctx, ownerID, draft)
	if err != nil {
		return nil, err
	}
	s.invalidate(ownerID)
	return t, nil
}

func (s *CachedStore) UpdateTransaction(ctx context.Context, id, ownerID int64, patch models.TransactionDraft) (*models.Transaction, error) {
	t, err := s.Store.UpdateTransaction(ctx, id, ownerID, patch)
	if err != nil {
		return nil, err
	}
	s.invalidate(ownerID)
	return t, nil
}

func (s *CachedStore) DeleteTransaction(ctx context.Context, id, ownerID int64) error {
	if err := s.Store.DeleteTransaction(ctx, id, ownerID); err != nil {
		return err
	}
	s.invalidate(ownerID)
	return nil
}

// DeleteUser cascades to the user's transactions, so their snapshot goes too.
func (s *CachedStore) DeleteUser(ctx context.Context, id int64) error {
	if err := s.Store.DeleteUser(ctx, id); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *CachedStore) invalidate(ownerID int64) {
	old := s.generation(ownerID).Add(1) - 1
	s.cache.Del(snapshotKey(ownerID, old))
}

func (s *CachedStore) Close() error {
	s.cache.Close()
	return s.Store.Close()
}
