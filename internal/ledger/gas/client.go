// Package gas implements the ledger service over its web-app bridge: a
// single POST endpoint that multiplexes read/write/delete on an action
// field, authenticated by passcode and scoped by fiscal year.
package gas

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/ledger"
)

const dateLayout = "2006-01-02"

type Client struct {
	hc       *http.Client
	endpoint string
	passcode string
	year     string
}

var _ ledger.Service = (*Client)(nil)

// New binds a client to one endpoint, passcode, and fiscal year. The
// triple stays fixed for the client's lifetime; a new login gets a new
// client.
func New(endpoint, passcode, year string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		hc:       &http.Client{Timeout: timeout},
		endpoint: endpoint,
		passcode: passcode,
		year:     year,
	}
}

// request is the wire shape shared by all three actions. Write fields
// and rowNum are omitted when empty.
type request struct {
	Action   string `json:"action"`
	Passcode string `json:"passcode"`
	Year     string `json:"year"`

	Date    string `json:"date,omitempty"`
	Item    string `json:"item,omitempty"`
	Details string `json:"details,omitempty"`
	Amount  string `json:"amount,omitempty"`
	Payee   string `json:"payee,omitempty"`
	Memo    string `json:"memo,omitempty"`

	RowNum int64 `json:"rowNum,omitempty"`
}

type response struct {
	Data     [][]any `json:"data"`
	Editable bool    `json:"editable"`
	Success  bool    `json:"success"`
	Error    string  `json:"error"`
}

func (c *Client) FetchAll(ctx context.Context) (ledger.Snapshot, error) {
	resp, err := c.do(ctx, request{Action: "read", Passcode: c.passcode, Year: c.year})
	if err != nil {
		return ledger.Snapshot{}, err
	}

	records := make([]core.Record, 0, len(resp.Data))
	for i, tuple := range resp.Data {
		rec, err := decodeTuple(tuple)
		if err != nil {
			return ledger.Snapshot{}, &ledger.RemoteError{Message: fmt.Sprintf("malformed record at row %d: %v", i, err)}
		}
		records = append(records, rec)
	}

	slog.DebugContext(ctx, "ledger read complete", "year", c.year, "records", len(records), "editable", resp.Editable)
	return ledger.Snapshot{Records: records, Editable: resp.Editable}, nil
}

func (c *Client) Append(ctx context.Context, r core.Record) error {
	_, err := c.do(ctx, request{
		Action:   "write",
		Passcode: c.passcode,
		Year:     c.year,
		Date:     r.Date.Format(dateLayout),
		Item:     r.Category,
		Details:  r.Details,
		Amount:   r.Amount.String(),
		Payee:    r.Payee,
		Memo:     r.Memo,
	})
	return err
}

func (c *Client) Delete(ctx context.Context, rowNum int64) error {
	_, err := c.do(ctx, request{Action: "delete", Passcode: c.passcode, Year: c.year, RowNum: rowNum})
	return err
}

// do issues one POST and folds every failure mode into the uniform
// error shape: transport errors, non-2xx statuses, undecodable bodies,
// and explicit error responses all come back as *ledger.RemoteError.
// No retries; a failure is terminal for that action.
func (c *Client) do(ctx context.Context, req request) (*response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, &ledger.RemoteError{Message: fmt.Sprintf("encode request: %v", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ledger.RemoteError{Message: fmt.Sprintf("build request: %v", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := c.hc.Do(httpReq)
	if err != nil {
		slog.WarnContext(ctx, "ledger request failed", "action", req.Action, "error", err)
		return nil, &ledger.RemoteError{Message: fmt.Sprintf("ledger service unreachable: %v", err)}
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(httpResp.Body, 10<<20))
	if err != nil {
		return nil, &ledger.RemoteError{Message: fmt.Sprintf("read response: %v", err)}
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		slog.WarnContext(ctx, "ledger request rejected", "action", req.Action, "status", httpResp.StatusCode)
		return nil, &ledger.RemoteError{Message: fmt.Sprintf("ledger service returned status %d", httpResp.StatusCode)}
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &ledger.RemoteError{Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if resp.Error != "" {
		return nil, &ledger.RemoteError{Message: resp.Error}
	}
	return &resp, nil
}
