// Package storage defines the persistence contracts for the intake service.
package storage

import (
	"context"
	"errors"

	"github.com/brokerdesk/intake/internal/app/domain/application"
	"github.com/brokerdesk/intake/internal/app/domain/book"
)

// Sentinel errors shared by every store implementation. Callers match them
// with errors.Is.
var (
	// ErrNotFound reports that no record carries the requested id.
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a duplicate application id at write time.
	ErrConflict = errors.New("duplicate application id")
	// ErrUnavailable reports that the backing file or table cannot be read
	// or written.
	ErrUnavailable = errors.New("store unavailable")
)

// ApplicationStore persists application records. Lookups by id are
// case-insensitive; records are never deleted.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, rec application.Record) (application.Record, error)
	UpdateApplication(ctx context.Context, rec application.Record) (application.Record, error)
	GetApplication(ctx context.Context, id string) (application.Record, error)
	SearchApplicationsByName(ctx context.Context, firstName, lastName string) ([]application.Record, error)
	ListApplicationsByStatus(ctx context.Context, status application.Status) ([]application.Record, error)
	ListApplicationIDs(ctx context.Context) ([]string, error)
}

// ReferenceStore reads the book-of-business reference dataset. The dataset is
// read-only from the service's perspective.
type ReferenceStore interface {
	ListReferenceRows(ctx context.Context) ([]book.ReferenceRow, error)
}
