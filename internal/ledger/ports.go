// Package ledger defines the port to the remote ledger service and the
// uniform error shape its adapters normalize failures into.
package ledger

import (
	"context"
	"errors"

	"github.com/channkenn/pta-kaikei/internal/core"
)

// Snapshot is the full server-side state for one fiscal year as of one
// read: the record list in server order plus the edit-permission flag.
type Snapshot struct {
	Records  []core.Record
	Editable bool
}

// Service is the remote data client. The passcode and fiscal year are
// bound at construction; a successful FetchAll with them is what
// "login" means, there is no separate handshake. Implementations never
// let a transport fault escape: every failure comes back as an error,
// remote-reported ones as *RemoteError.
type Service interface {
	FetchAll(ctx context.Context) (Snapshot, error)
	Append(ctx context.Context, r core.Record) error
	Delete(ctx context.Context, rowNum int64) error
}

// RemoteError carries the human-readable message for a failure reported
// by (or on the way to) the remote service. Transport failures and
// explicit {error: "..."} responses both end up here so callers have a
// single error path.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string { return e.Message }

// AsRemote unwraps err into a *RemoteError if there is one.
func AsRemote(err error) (*RemoteError, bool) {
	var re *RemoteError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}
