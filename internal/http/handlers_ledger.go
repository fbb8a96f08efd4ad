package http

import (
	"net/http"
	"strconv"

	"github.com/channkenn/pta-kaikei/internal/core"
	"github.com/channkenn/pta-kaikei/internal/ledger"
	applog "github.com/channkenn/pta-kaikei/internal/log"
)

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	filterKey, order := parseFilterSort(r)
	v := s.buildLedgerView(sess, filterKey, order)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "ledger.html", v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Ledger template execution failed", "error", err, "year", sess.Year)
	}
}

// handleRecordsPartial re-renders the record tables after a mutation or
// a filter change. Screen and print tables come from the same rows, so
// they can never disagree.
func (s *Server) handleRecordsPartial(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(r)
	if !ok {
		UnauthorizedError("セッションの有効期限が切れました。再度ログインしてください。").Write(w)
		return
	}
	filterKey, order := parseFilterSort(r)
	v := s.buildLedgerView(sess, filterKey, order)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "records.html", v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Records template execution failed", "error", err, "year", sess.Year)
	}
}

func (s *Server) handleCreateRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	sess, ok := s.currentSession(r)
	if !ok {
		UnauthorizedError("セッションの有効期限が切れました。再度ログインしてください。").Write(w)
		return
	}
	if !sess.Editable() {
		ErrorResponse(http.StatusForbidden, "編集権限がありません").
			TriggerErrorNotification("編集権限がありません").
			Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		BadRequestError("リクエストの形式が正しくありません").Write(w)
		return
	}

	date, err := parseDate(sanitizeInput(r.Form.Get("date")))
	if err != nil {
		UnprocessableEntityError("日付の形式が正しくありません").Write(w)
		return
	}
	category := sanitizeInput(r.Form.Get("category"))
	if !s.knownCategory(category) {
		UnprocessableEntityError("科目が正しくありません").Write(w)
		return
	}
	amount, err := core.ParseAmount(r.Form.Get("amount"))
	if err != nil {
		UnprocessableEntityError("金額が正しくありません").Write(w)
		return
	}

	rec := core.Record{
		Date:     date,
		Category: category,
		Details:  sanitizeInput(r.Form.Get("details")),
		Amount:   amount,
		Payee:    sanitizeInput(r.Form.Get("payee")),
		Memo:     sanitizeInput(r.Form.Get("memo")),
	}
	if err := rec.ValidateNew(); err != nil {
		UnprocessableEntityError("入力内容が正しくありません").Write(w)
		return
	}

	if err := sess.Append(r.Context(), rec); err != nil {
		s.writeRemoteError(w, r, err, "Record append error")
		return
	}
	if s.sink != nil {
		s.sink.RecordAppended(r.Context(), sess.Year, rec)
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Record created", "year", sess.Year, "category", rec.Category, "amount", rec.Amount.String())
	NewHTMXResponse().
		TriggerRecordCreated(sess.Year).
		TriggerTotalsRefresh().
		TriggerFormReset().
		TriggerSuccessNotification("記録を追加しました").
		BodyHTML(`<div class="success">記録を追加しました</div>`).
		Write(w)
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	sess, ok := s.currentSession(r)
	if !ok {
		UnauthorizedError("セッションの有効期限が切れました。再度ログインしてください。").Write(w)
		return
	}
	if !sess.Editable() {
		ErrorResponse(http.StatusForbidden, "編集権限がありません").
			TriggerErrorNotification("編集権限がありません").
			Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("リクエストの形式が正しくありません").Write(w)
		return
	}
	rowNum, err := strconv.ParseInt(r.Form.Get("rowNum"), 10, 64)
	if err != nil || rowNum <= 0 {
		UnprocessableEntityError("行番号が正しくありません").Write(w)
		return
	}

	if err := sess.Delete(r.Context(), rowNum); err != nil {
		s.writeRemoteError(w, r, err, "Record delete error")
		return
	}
	if s.sink != nil {
		s.sink.RecordDeleted(r.Context(), sess.Year, rowNum)
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Record deleted", "year", sess.Year, "row_num", rowNum)
	NewHTMXResponse().
		TriggerRecordDeleted(sess.Year).
		TriggerTotalsRefresh().
		TriggerSuccessNotification("記録を削除しました").
		BodyHTML(`<div class="success">記録を削除しました</div>`).
		Write(w)
}

// handleSelectionTotals recomputes income, expense, and balance over
// the rows the user left checked. The client posts the row numbers of
// the checked rows only.
func (s *Server) handleSelectionTotals(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		MethodNotAllowedError("POST").Write(w)
		return
	}
	sess, ok := s.currentSession(r)
	if !ok {
		UnauthorizedError("セッションの有効期限が切れました。再度ログインしてください。").Write(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		BadRequestError("リクエストの形式が正しくありません").Write(w)
		return
	}

	checked := make(map[int64]bool, len(r.Form["rows"]))
	for _, raw := range r.Form["rows"] {
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			checked[n] = true
		}
	}

	var entries []core.SelectionEntry
	count := 0
	for _, rec := range sess.Records() {
		isChecked := checked[rec.RowNum]
		if isChecked {
			count++
		}
		entries = append(entries, core.SelectionEntry{
			Amount:  rec.Amount,
			Income:  s.categories.IsIncome(rec.Category),
			Checked: isChecked,
		})
	}
	v := buildTotalsView(core.SumSelection(entries), count)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "totals.html", v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Totals template execution failed", "error", err)
	}
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.currentSession(r)
	if !ok {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	v := buildSummaryView(sess.Year, core.Summarize(sess.Records(), s.categories))

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "summary.html", v); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Summary template execution failed", "error", err, "year", sess.Year)
	}
}

func (s *Server) knownCategory(name string) bool {
	if name == "" {
		return false
	}
	if s.categories.IsIncome(name) {
		return true
	}
	for _, n := range s.categories.Expense() {
		if n == name {
			return true
		}
	}
	return false
}

// writeRemoteError maps a failed remote operation onto the response.
// Remote rejections keep their message; transport failures get a
// generic one.
func (s *Server) writeRemoteError(w http.ResponseWriter, r *http.Request, err error, logMsg string) {
	if remote, ok := ledger.AsRemote(err); ok {
		applog.FromContext(r.Context()).WarnContext(r.Context(), logMsg, "error", remote.Message)
		ErrorResponse(http.StatusBadGateway, remote.Message).
			TriggerErrorNotification(remote.Message).
			Write(w)
		return
	}
	applog.FromContext(r.Context()).ErrorContext(r.Context(), logMsg, "error", err)
	InternalServerError("サーバー内部エラーが発生しました").
		TriggerErrorNotification("サーバー内部エラーが発生しました").
		Write(w)
}
