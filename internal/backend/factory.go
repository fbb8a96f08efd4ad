package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/channkenn/pta-kaikei/internal/ledger"
	"github.com/channkenn/pta-kaikei/internal/ledger/gas"
	"github.com/channkenn/pta-kaikei/internal/ledger/memory"
	"github.com/channkenn/pta-kaikei/internal/ledger/sheets"
)

// Factory hands out ledger services bound to login credentials. The
// memory store is shared across logins so data written in one session
// is visible to the next, like the real service.
type Factory struct {
	cfg    Config
	logger *slog.Logger

	mu  sync.Mutex
	mem *memory.Store
}

func NewFactory(cfg Config, logger *slog.Logger) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{cfg: cfg, logger: logger}, nil
}

// ServiceFor returns a ledger service bound to the given passcode and
// fiscal year. Construction never talks to the remote service; the
// credentials are only proven by the first FetchAll.
func (f *Factory) ServiceFor(ctx context.Context, passcode, year string) (ledger.Service, error) {
	switch f.cfg.Type {
	case GASBackend:
		return gas.New(f.cfg.Endpoint, passcode, year, f.cfg.Timeout), nil
	case SheetsBackend:
		// The spreadsheet has no passcode check of its own; the
		// configured passcode stands in for the remote one.
		if passcode != f.cfg.SheetsPasscode {
			return nil, &ledger.RemoteError{Message: "パスコードが正しくありません"}
		}
		cli, err := sheets.NewFromEnv(ctx, year)
		if err != nil {
			return nil, fmt.Errorf("initialize sheets backend: %w", err)
		}
		return cli, nil
	case MemoryBackend:
		f.mu.Lock()
		if f.mem == nil {
			f.mem = memory.New(f.cfg.MemoryPasscode, f.cfg.MemoryEditable)
			f.logger.Info("Initialized memory backend", "editable", f.cfg.MemoryEditable)
		}
		store := f.mem
		f.mu.Unlock()
		return store.ServiceFor(passcode, year), nil
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", f.cfg.Type)
	}
}

// MemoryStore exposes the shared in-memory store so mains and tests can
// seed it. Nil unless the memory backend is active and has been used.
func (f *Factory) MemoryStore() *memory.Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mem == nil && f.cfg.Type == MemoryBackend {
		f.mem = memory.New(f.cfg.MemoryPasscode, f.cfg.MemoryEditable)
	}
	return f.mem
}
