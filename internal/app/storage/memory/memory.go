// Package memory provides an in-memory store for tests and local development.
package memory

import (
	"context"
	"strings"
	"sync"

	"github.com/brokerdesk/intake/internal/app/domain/application"
	"github.com/brokerdesk/intake/internal/app/domain/book"
	"github.com/brokerdesk/intake/internal/app/storage"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use.
type Store struct {
	mu            sync.RWMutex
	applications  map[string]application.Record // keyed by lower-cased id
	order         []string                      // insertion order of keys
	referenceRows []book.ReferenceRow
}

var _ storage.ApplicationStore = (*Store)(nil)
var _ storage.ReferenceStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{applications: make(map[string]application.Record)}
}

// SetReferenceRows replaces the book-of-business dataset.
func (s *Store) SetReferenceRows(rows []book.ReferenceRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.referenceRows = append([]book.ReferenceRow(nil), rows...)
}

func (s *Store) CreateApplication(_ context.Context, rec application.Record) (application.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(rec.ApplicationID)
	if _, exists := s.applications[key]; exists {
		return application.Record{}, storage.ErrConflict
	}
	s.applications[key] = rec
	s.order = append(s.order, key)
	return rec, nil
}

func (s *Store) UpdateApplication(_ context.Context, rec application.Record) (application.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(rec.ApplicationID)
	if _, exists := s.applications[key]; !exists {
		return application.Record{}, storage.ErrNotFound
	}
	s.applications[key] = rec
	return rec, nil
}

func (s *Store) GetApplication(_ context.Context, id string) (application.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.applications[strings.ToLower(strings.TrimSpace(id))]
	if !ok {
		return application.Record{}, storage.ErrNotFound
	}
	return rec, nil
}

func (s *Store) SearchApplicationsByName(_ context.Context, firstName, lastName string) ([]application.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []application.Record
	for _, key := range s.order {
		rec := s.applications[key]
		if strings.EqualFold(rec.FirstName, firstName) && strings.EqualFold(rec.LastName, lastName) {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (s *Store) ListApplicationsByStatus(_ context.Context, status application.Status) ([]application.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []application.Record
	for _, key := range s.order {
		if rec := s.applications[key]; rec.Status == status {
			result = append(result, rec)
		}
	}
	return result, nil
}

func (s *Store) ListApplicationIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.order))
	for _, key := range s.order {
		ids = append(ids, s.applications[key].ApplicationID)
	}
	return ids, nil
}

func (s *Store) ListReferenceRows(_ context.Context) ([]book.ReferenceRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.referenceRows == nil {
		return nil, storage.ErrUnavailable
	}
	return append([]book.ReferenceRow(nil), s.referenceRows...), nil
}
