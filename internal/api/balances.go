package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/cleared-dev/voucherbook/internal/balance"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// BalanceResponse is the body of GET /accounts/{name}/balance.
type BalanceResponse struct {
	Account   string `json:"account"`
	Balance   string `json:"balance"`
	Formatted string `json:"formatted"`
}

// StatementRow is one line of a statement response. Debit and credit are
// empty on rows that carry neither.
type StatementRow struct {
	Kind         string `json:"kind"`
	Date         string `json:"date,omitempty"`
	VoucherID    string `json:"voucherId,omitempty"`
	Counterparty string `json:"counterparty,omitempty"`
	Debit        string `json:"debit,omitempty"`
	Credit       string `json:"credit,omitempty"`
	Balance      string `json:"balance"`
}

// StatementResponse is the body of GET /accounts/{name}/statement.
type StatementResponse struct {
	Account        string         `json:"account"`
	Start          string         `json:"start"`
	End            string         `json:"end"`
	Opening        string         `json:"opening"`
	Closing        string         `json:"closing"`
	TotalDebits    string         `json:"totalDebits"`
	TotalCredits   string         `json:"totalCredits"`
	NoTransactions bool           `json:"noTransactions"`
	Rows           []StatementRow `json:"rows"`
}

// getBalance handles GET /accounts/{name}/balance. Unknown names report
// zero, matching the balance engine.
func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	name, err := accountParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	bal := s.book.Balance(name)
	writeJSON(w, http.StatusOK, BalanceResponse{
		Account:   name,
		Balance:   s.money.Plain(bal),
		Formatted: s.money.Format(bal),
	})
}

// getStatement handles GET /accounts/{name}/statement?start=&end=. Both
// bounds are YYYY-MM-DD; start defaults to the Unix epoch and end to the book's today.
func (s *Server) getStatement(w http.ResponseWriter, r *http.Request) {
	name, err := accountParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	start, err := dateParam(r, "start", time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	end, err := dateParam(r, "end", s.book.Today())
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	st, err := s.book.Statement(name, start, end)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statementResponse(st))
}

func (s *Server) statementResponse(st balance.Statement) StatementResponse {
	resp := StatementResponse{
		Account:        st.Account.Name,
		Start:          st.Start.Format(model.DateFormat),
		End:            st.End.Format(model.DateFormat),
		Opening:        s.money.Plain(st.Opening),
		Closing:        s.money.Plain(st.Closing),
		TotalDebits:    s.money.Plain(st.TotalDebits()),
		TotalCredits:   s.money.Plain(st.TotalCredits()),
		NoTransactions: st.NoTransactions(),
		Rows:           make([]StatementRow, len(st.Rows)),
	}
	for i, row := range st.Rows {
		out := StatementRow{
			Kind:         string(row.Kind),
			VoucherID:    row.VoucherID,
			Counterparty: row.Counterparty,
			Balance:      s.money.Plain(row.Balance),
		}
		if !row.Date.IsZero() {
			out.Date = row.Date.Format(model.DateFormat)
		}
		if !row.Debit.IsZero() {
			out.Debit = s.money.Plain(row.Debit)
		}
		if !row.Credit.IsZero() {
			out.Credit = s.money.Plain(row.Credit)
		}
		resp.Rows[i] = out
	}
	return resp
}

func dateParam(r *http.Request, key string, fallback time.Time) (time.Time, error) {
	v := r.URL.Query().Get(key)
	if v == "" {
		return model.Day(fallback), nil
	}
	d, err := model.ParseDate(v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s %q, want YYYY-MM-DD", key, v)
	}
	return d, nil
}
