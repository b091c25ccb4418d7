package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"finanzas/internal/core"

	"github.com/google/uuid"
)

// SeedFile is read from the data directory by NewFromFiles.
const SeedFile = "seed_transactions.json"

// Store is an in-process store.Repository.
type Store struct {
	mu    sync.RWMutex
	byID  map[string]core.Transaction
	order []string
}

// New creates a store holding seed, in order. Records without an ID get one.
func New(seed ...core.Transaction) *Store {
	s := &Store{byID: make(map[string]core.Transaction)}
	for _, t := range seed {
		if t.ID == "" {
			t.ID = uuid.NewString()
		}
		if _, dup := s.byID[t.ID]; dup {
			continue
		}
		s.byID[t.ID] = t
		s.order = append(s.order, t.ID)
	}
	return s
}

// NewFromFiles seeds the store from base/seed_transactions.json, a JSON array
// of records in either the current or the legacy schema. A missing file
// yields an empty store.
func NewFromFiles(base string) (*Store, error) {
	raw, err := os.ReadFile(filepath.Join(base, SeedFile))
	if errors.Is(err, fs.ErrNotExist) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	var records []core.Record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode seed: %w", err)
	}
	seed := make([]core.Transaction, 0, len(records))
	for _, r := range records {
		seed = append(seed, r.Transaction())
	}
	return New(seed...), nil
}

// Insert stores a new record.
func (s *Store) Insert(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, dup := s.byID[t.ID]; dup || t.ID == "" {
		return fmt.Errorf("insert %q: %w", t.ID, core.ErrInvalidTransaction)
	}
	s.byID[t.ID] = t
	s.order = append(s.order, t.ID)
	return nil
}

// Replace overwrites a record owned by t.OwnerID.
func (s *Store) Replace(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[t.ID]
	if !ok || cur.OwnerID != t.OwnerID {
		return core.ErrNotFound
	}
	s.byID[t.ID] = t
	return nil
}

// Remove deletes ownerID's record id.
func (s *Store) Remove(_ context.Context, ownerID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.byID[id]
	if !ok || cur.OwnerID != ownerID {
		return core.ErrNotFound
	}
	delete(s.byID, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// Get returns ownerID's record id.
func (s *Store) Get(_ context.Context, ownerID, id string) (core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.byID[id]
	if !ok || t.OwnerID != ownerID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

// ListByOwner returns a fresh slice; callers may keep it.
func (s *Store) ListByOwner(_ context.Context, ownerID string) ([]core.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []core.Transaction{}
	for _, id := range s.order {
		if t := s.byID[id]; t.OwnerID == ownerID {
			out = append(out, t)
		}
	}
	return out, nil
}

// ListOwners returns every owner with at least one record, sorted.
func (s *Store) ListOwners(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := map[string]struct{}{}
	var owners []string
	for _, t := range s.byID {
		if _, ok := seen[t.OwnerID]; ok || t.OwnerID == "" {
			continue
		}
		seen[t.OwnerID] = struct{}{}
		owners = append(owners, t.OwnerID)
	}
	slices.Sort(owners)
	return owners, nil
}
