package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"finanzas/internal/amqp"
	"finanzas/internal/core"
	"finanzas/internal/store"

	"github.com/google/uuid"
)

// ChangePublisher announces writes to other processes. *amqp.Client
// implements it.
type ChangePublisher interface {
	PublishTransactionsChanged(ctx context.Context, msg *amqp.TransactionsChangedMessage) error
}

// TransactionService is the store.Store used by the application: it
// validates writes, persists them through a Repository, pushes the owner's new
// snapshot to subscribers and publishes a change event.
type TransactionService struct {
	repo      store.Repository
	hub       *store.Hub
	publisher ChangePublisher
	now       func() time.Time

	// notifyMu orders reload-and-publish so that a subscriber never receives
	// an older snapshot after a newer one.
	notifyMu sync.Mutex
}

var _ store.Store = (*TransactionService)(nil)

// NewTransactionService wires a service; publisher may be nil.
func NewTransactionService(repo store.Repository, publisher ChangePublisher) *TransactionService {
	return &TransactionService{
		repo:      repo,
		hub:       store.NewHub(),
		publisher: publisher,
		now:       time.Now,
	}
}

// Create assigns the id and creation time, validates and stores t.
func (s *TransactionService) Create(ctx context.Context, t core.Transaction) (string, error) {
	t.ID = uuid.NewString()
	t.CreatedAt = s.now().UTC()
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return "", err
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return "", fmt.Errorf("save transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction created",
		"id", t.ID,
		"owner_id", t.OwnerID,
		"type", t.Type,
		"category", t.Category)

	s.notify(ctx, t.OwnerID, amqp.ChangeCreated, t.ID)
	return t.ID, nil
}

// Update replaces record id with t. The id, owner and creation time of the
// stored record are kept; everything else comes from t.
func (s *TransactionService) Update(ctx context.Context, id string, t core.Transaction) error {
	cur, err := s.repo.Get(ctx, t.OwnerID, id)
	if err != nil {
		return err
	}
	t.ID = cur.ID
	t.OwnerID = cur.OwnerID
	t.CreatedAt = cur.CreatedAt
	t.Description = strings.TrimSpace(t.Description)
	if err := t.Validate(); err != nil {
		return err
	}
	if err := s.repo.Replace(ctx, t); err != nil {
		return fmt.Errorf("replace transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction updated", "id", id, "owner_id", t.OwnerID)

	s.notify(ctx, t.OwnerID, amqp.ChangeUpdated, id)
	return nil
}

// Delete removes ownerID's record id.
func (s *TransactionService) Delete(ctx context.Context, ownerID, id string) error {
	if err := s.repo.Remove(ctx, ownerID, id); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		return fmt.Errorf("delete transaction: %w", err)
	}
	slog.InfoContext(ctx, "Transaction deleted", "id", id, "owner_id", ownerID)

	s.notify(ctx, ownerID, amqp.ChangeDeleted, id)
	return nil
}

// List returns ownerID's records in creation order.
func (s *TransactionService) List(ctx context.Context, ownerID string) ([]core.Transaction, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Subscribe starts a snapshot feed for ownerID primed with the current set.
func (s *TransactionService) Subscribe(ctx context.Context, ownerID string) (<-chan []core.Transaction, error) {
	if ownerID == "" {
		return nil, core.ErrMissingOwner
	}
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	snap, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	return s.hub.Subscribe(ctx, ownerID, snap), nil
}

// Owners lists every owner with at least one record.
func (s *TransactionService) Owners(ctx context.Context) ([]string, error) {
	return s.repo.ListOwners(ctx)
}

// notify failures are logged only: the write itself already succeeded. It
// runs detached from ctx's cancellation, so a caller that goes away after the
// commit still leaves subscribers and the change feed up to date.
func (s *TransactionService) notify(ctx context.Context, ownerID string, kind amqp.ChangeKind, id string) {
	ctx = context.WithoutCancel(ctx)
	s.notifyMu.Lock()
	snap, err := s.repo.ListByOwner(ctx, ownerID)
	if err == nil {
		s.hub.Publish(ownerID, snap)
	}
	s.notifyMu.Unlock()
	if err != nil {
		slog.ErrorContext(ctx, "Failed to reload snapshot after write", "owner_id", ownerID, "error", err)
	}

	if s.publisher == nil {
		return
	}
	msg := amqp.NewTransactionsChangedMessage(ownerID, kind, id)
	if err := s.publisher.PublishTransactionsChanged(ctx, msg); err != nil {
		slog.WarnContext(ctx, "Failed to publish change event",
			"owner_id", ownerID,
			"kind", kind,
			"error", err)
	}
}

// Close closes the publisher and the repository when they hold resources.
func (s *TransactionService) Close() error {
	var errs []error
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}
	if c, ok := s.repo.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}
	return errors.Join(errs...)
}
