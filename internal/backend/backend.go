// Package backend selects which ledger implementation serves a login.
package backend

import (
	"fmt"
	"time"
)

// Type names a ledger backend.
type Type string

const (
	// GASBackend talks to the web-app bridge over its POST contract.
	GASBackend Type = "gas"
	// SheetsBackend talks straight to the backing spreadsheet.
	SheetsBackend Type = "sheets"
	// MemoryBackend is the in-process fake for development and tests.
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case GASBackend, SheetsBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation.
type Config struct {
	Type Type

	// GAS bridge specific
	Endpoint string
	Timeout  time.Duration

	// Google Sheets specific. Direct spreadsheet access has no remote
	// passcode check, so the expected passcode is configured here and
	// compared at login.
	GoogleSpreadsheetID string
	SheetsPasscode      string

	// Memory backend specific
	MemoryPasscode string
	MemoryEditable bool
}

// Validate validates the backend configuration.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	switch c.Type {
	case GASBackend:
		if c.Endpoint == "" {
			return fmt.Errorf("ledger endpoint is required for gas backend")
		}
	case SheetsBackend:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.SheetsPasscode == "" {
			return fmt.Errorf("passcode is required for sheets backend")
		}
	case MemoryBackend:
		if c.MemoryPasscode == "" {
			return fmt.Errorf("memory passcode is required for memory backend")
		}
	}
	return nil
}
