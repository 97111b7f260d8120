package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/book"
	"github.com/cleared-dev/voucherbook/internal/journal"
	"github.com/cleared-dev/voucherbook/internal/model"
)

// VoucherResponse is the JSON form of a voucher with account names resolved.
type VoucherResponse struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	CreditAccountID string `json:"creditAccountId"`
	CreditAccount   string `json:"creditAccount"`
	DebitAccountID  string `json:"debitAccountId"`
	DebitAccount    string `json:"debitAccount"`
	Amount          string `json:"amount"`
	Remarks         string `json:"remarks"`
	Status          string `json:"status"`
	Version         int    `json:"version"`
}

// CreateVoucherRequest is the body of POST /vouchers.
type CreateVoucherRequest struct {
	CreditAccount string          `json:"creditAccount"`
	DebitAccount  string          `json:"debitAccount"`
	Amount        decimal.Decimal `json:"amount"`
	Remarks       string          `json:"remarks"`
}

// EditVoucherRequest is the body of PATCH /vouchers/{id}. Absent fields are
// left unchanged.
type EditVoucherRequest struct {
	CreditAccount *string          `json:"creditAccount,omitempty"`
	DebitAccount  *string          `json:"debitAccount,omitempty"`
	Amount        *decimal.Decimal `json:"amount,omitempty"`
	Remarks       *string          `json:"remarks,omitempty"`
	Date          *string          `json:"date,omitempty"`
	Version       int              `json:"version,omitempty"`
}

func (s *Server) voucherResponse(v book.VoucherView) VoucherResponse {
	return VoucherResponse{
		ID:              v.ID,
		Date:            v.Date.Format(model.DateFormat),
		CreditAccountID: v.CreditAccountID,
		CreditAccount:   v.CreditName,
		DebitAccountID:  v.DebitAccountID,
		DebitAccount:    v.DebitName,
		Amount:          s.money.Plain(v.Amount),
		Remarks:         v.Remarks,
		Status:          string(v.Status),
		Version:         v.Version,
	}
}

// listVouchers handles GET /vouchers?status=&account=.
func (s *Server) listVouchers(w http.ResponseWriter, r *http.Request) {
	var f journal.Filter
	if st := r.URL.Query().Get("status"); st != "" {
		status, err := model.ParseVoucherStatus(st)
		if err != nil {
			s.writeError(w, err)
			return
		}
		f.Status = status
	}
	if name := r.URL.Query().Get("account"); name != "" {
		a, ok := s.book.AccountByName(name)
		if !ok {
			s.writeError(w, fmt.Errorf("account %q: %w", name, model.ErrNotFound))
			return
		}
		f.AccountID = a.ID
	}

	vs := s.book.Vouchers(f)
	out := make([]VoucherResponse, len(vs))
	for i, v := range vs {
		out[i] = s.voucherResponse(v)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"vouchers": out})
}

// getVoucher handles GET /vouchers/{id}.
func (s *Server) getVoucher(w http.ResponseWriter, r *http.Request) {
	v, err := s.book.Voucher(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.voucherResponse(v))
}

// createVoucher handles POST /vouchers.
func (s *Server) createVoucher(w http.ResponseWriter, r *http.Request) {
	var req CreateVoucherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("Failed to parse request body: %v", err))
		return
	}

	v, err := s.book.CreateVoucher(journal.CreateParams{
		CreditAccount: req.CreditAccount,
		DebitAccount:  req.DebitAccount,
		Amount:        req.Amount,
		Remarks:       req.Remarks,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.saved(w) {
		return
	}
	s.respondVoucher(w, http.StatusCreated, v.ID)
}

// editVoucher handles PATCH /vouchers/{id}.
func (s *Server) editVoucher(w http.ResponseWriter, r *http.Request) {
	var req EditVoucherRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("Failed to parse request body: %v", err))
		return
	}

	patch := journal.Patch{
		CreditAccount: req.CreditAccount,
		DebitAccount:  req.DebitAccount,
		Amount:        req.Amount,
		Remarks:       req.Remarks,
		Version:       req.Version,
	}
	if req.Date != nil {
		d, err := model.ParseDate(*req.Date)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_parameter", fmt.Sprintf("Invalid date %q", *req.Date))
			return
		}
		patch.Date = &d
	}

	v, err := s.book.EditVoucher(chi.URLParam(r, "id"), patch)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.saved(w) {
		return
	}
	s.respondVoucher(w, http.StatusOK, v.ID)
}

// approveVoucher handles POST /vouchers/{id}/approve.
func (s *Server) approveVoucher(w http.ResponseWriter, r *http.Request) {
	v, err := s.book.Approve(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.saved(w) {
		return
	}
	s.respondVoucher(w, http.StatusOK, v.ID)
}

// rejectVoucher handles POST /vouchers/{id}/reject.
func (s *Server) rejectVoucher(w http.ResponseWriter, r *http.Request) {
	v, err := s.book.Reject(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.saved(w) {
		return
	}
	s.respondVoucher(w, http.StatusOK, v.ID)
}

// deleteVoucher handles DELETE /vouchers/{id}?confirm=true.
func (s *Server) deleteVoucher(w http.ResponseWriter, r *http.Request) {
	if _, err := s.book.DeleteVoucher(chi.URLParam(r, "id"), confirmed(r)); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.saved(w) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) respondVoucher(w http.ResponseWriter, status int, voucherID string) {
	v, err := s.book.Voucher(voucherID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, s.voucherResponse(v))
}
