package repository

import (
	"context"

	"github.com/google/uuid"

	"gatherly/sessionhub/internal/model"
)

// MembershipRepository is the ledger: one entry per (session, identity key).
type MembershipRepository interface {
	// Find returns the entry for the identity key, or ErrNotFound.
	Find(ctx context.Context, sessionID uuid.UUID, identityKey string) (*model.MembershipEntry, error)

	// GetByID returns the entry by primary key, scoped to the session.
	GetByID(ctx context.Context, sessionID, entryID uuid.UUID) (*model.MembershipEntry, error)

	// Insert writes a new entry; ErrDuplicateEntry when the identity already
	// holds one (also raised by the unique index under concurrency).
	Insert(ctx context.Context, entry *model.MembershipEntry) error

	// SetStatus transitions an entry and reports whether a row changed.
	SetStatus(ctx context.Context, entryID uuid.UUID, from, to model.MembershipStatus) (bool, error)

	// Remove deletes the entry; absent entries are a no-op.
	Remove(ctx context.Context, sessionID uuid.UUID, identityKey string) error

	// RemoveBySession deletes every entry of a session (cancellation cascade).
	RemoveBySession(ctx context.Context, sessionID uuid.UUID) error

	// List returns entries for a session, optionally filtered by status.
	List(ctx context.Context, sessionID uuid.UUID, status model.MembershipStatus) ([]model.MembershipEntry, error)

	// ListConfirmed is a snapshot of the confirmed set.
	ListConfirmed(ctx context.Context, sessionID uuid.UUID) ([]model.MembershipEntry, error)

	// CountConfirmed counts confirmed entries (invariant checks, display).
	CountConfirmed(ctx context.Context, sessionID uuid.UUID) (int64, error)
}
