// Package memory is the in-process ledger backend used for local
// development and tests. It mimics the remote contract, including
// passcode checks and server-assigned row numbers.
package memory

import (
	"context"
	"sync"

	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/ledger"
)

type Store struct {
	mu       sync.Mutex
	passcode string
	editable bool
	nextRow  int64
	records  map[string][]core.Record // keyed by fiscal year
}

func New(passcode string, editable bool) *Store {
	return &Store{
		passcode: passcode,
		editable: editable,
		nextRow:  1,
		records:  make(map[string][]core.Record),
	}
}

// Seed installs records for a fiscal year, assigning row numbers.
func (s *Store) Seed(year string, records []core.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		r.RowNum = s.nextRow
		s.nextRow++
		s.records[year] = append(s.records[year], r)
	}
}

// ServiceFor returns a ledger.Service view bound to the given
// credentials, the same way the remote bridge binds passcode and year
// per login.
func (s *Store) ServiceFor(passcode, year string) ledger.Service {
	return &session{store: s, passcode: passcode, year: year}
}

type session struct {
	store    *Store
	passcode string
	year     string
}

var _ ledger.Service = (*session)(nil)

func (v *session) FetchAll(_ context.Context) (ledger.Snapshot, error) {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	if v.passcode != v.store.passcode {
		return ledger.Snapshot{}, &ledger.RemoteError{Message: "パスコードが正しくありません"}
	}
	records := append([]core.Record(nil), v.store.records[v.year]...)
	return ledger.Snapshot{Records: records, Editable: v.store.editable}, nil
}

func (v *session) Append(_ context.Context, r core.Record) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	if v.passcode != v.store.passcode {
		return &ledger.RemoteError{Message: "パスコードが正しくありません"}
	}
	if !v.store.editable {
		return &ledger.RemoteError{Message: "編集権限がありません"}
	}
	if err := r.ValidateNew(); err != nil {
		return &ledger.RemoteError{Message: err.Error()}
	}
	r.RowNum = v.store.nextRow
	v.store.nextRow++
	v.store.records[v.year] = append(v.store.records[v.year], r)
	return nil
}

func (v *session) Delete(_ context.Context, rowNum int64) error {
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	if v.passcode != v.store.passcode {
		return &ledger.RemoteError{Message: "パスコードが正しくありません"}
	}
	if !v.store.editable {
		return &ledger.RemoteError{Message: "編集権限がありません"}
	}
	rows := v.store.records[v.year]
	for i, r := range rows {
		if r.RowNum == rowNum {
			v.store.records[v.year] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return &ledger.RemoteError{Message: "指定された行が見つかりません"}
}
