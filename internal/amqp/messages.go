package amqp

import (
	"encoding/json"
	"time"

	"github.com/channkenn/pta-kaikei/internal/core"
)

// Actions a ledger event can carry.
const (
	ActionAppend = "append"
	ActionDelete = "delete"
)

// LedgerEventMessage describes one accepted mutation of the remote
// ledger. It is published after the remote store confirmed the write,
// so consumers can treat it as fact.
type LedgerEventMessage struct {
	Action    string    `json:"action"`
	Year      string    `json:"year"`
	RowNum    int64     `json:"rowNum,omitempty"`
	Date      string    `json:"date,omitempty"`
	Category  string    `json:"category,omitempty"`
	Amount    string    `json:"amount,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAppendMessage builds the event for a confirmed append.
func NewAppendMessage(year string, rec core.Record) *LedgerEventMessage {
	return &LedgerEventMessage{
		Action:    ActionAppend,
		Year:      year,
		Date:      rec.Date.Format("2006-01-02"),
		Category:  rec.Category,
		Amount:    rec.Amount.String(),
		Timestamp: time.Now(),
	}
}

// NewDeleteMessage builds the event for a confirmed delete.
func NewDeleteMessage(year string, rowNum int64) *LedgerEventMessage {
	return &LedgerEventMessage{
		Action:    ActionDelete,
		Year:      year,
		RowNum:    rowNum,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventMessageFromJSON creates a message from JSON bytes
func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
