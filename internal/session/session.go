// Package session holds the per-login application state: the bound
// ledger service, the fiscal year, the edit-permission flag, and the
// record cache. The cache is replaced wholesale after every successful
// read, write, or delete, so the view never trails server state by more
// than one round trip.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/ledger"
)

type Session struct {
	ID   string
	Year string

	mu       sync.Mutex
	svc      ledger.Service
	editable bool
	records  []core.Record
}

// Login creates a session by performing the first read with the bound
// credentials. A failed read means no session: there is no separate
// authentication handshake.
func Login(ctx context.Context, svc ledger.Service, year string) (*Session, error) {
	s := &Session{
		ID:   uuid.NewString(),
		Year: year,
		svc:  svc,
	}
	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Refresh replaces the record cache with the server's current state.
// On failure the previous cache is left untouched.
func (s *Session) Refresh(ctx context.Context) error {
	snap, err := s.svc.FetchAll(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.records = snap.Records
	s.editable = snap.Editable
	s.mu.Unlock()
	return nil
}

// Append writes a new record and reloads the cache.
func (s *Session) Append(ctx context.Context, r core.Record) error {
	if err := s.svc.Append(ctx, r); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Delete removes a record by its server-assigned row number and
// reloads the cache.
func (s *Session) Delete(ctx context.Context, rowNum int64) error {
	if err := s.svc.Delete(ctx, rowNum); err != nil {
		return err
	}
	return s.Refresh(ctx)
}

// Records returns a copy of the cached records in server order.
func (s *Session) Records() []core.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Record(nil), s.records...)
}

// Editable reports the server-asserted edit permission. It only gates
// UI affordances; the server is the actual authority.
func (s *Session) Editable() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editable
}

// Record looks up a cached record by row number.
func (s *Session) Record(rowNum int64) (core.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.records {
		if r.RowNum == rowNum {
			return r, true
		}
	}
	return core.Record{}, false
}
