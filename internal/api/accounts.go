package api

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/voucherbook/internal/model"
)

// AccountResponse is the JSON form of an account.
type AccountResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Balance string `json:"balance"`
}

// CreateAccountRequest is the body of POST /accounts.
type CreateAccountRequest struct {
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

func (s *Server) accountResponse(a model.Account) AccountResponse {
	return AccountResponse{
		ID:      a.ID,
		Name:    a.Name,
		Type:    string(a.Type),
		Balance: s.money.Plain(a.Balance),
	}
}

// listAccounts handles GET /accounts?type=.
func (s *Server) listAccounts(w http.ResponseWriter, r *http.Request) {
	accts := s.book.Accounts()
	if t := r.URL.Query().Get("type"); t != "" {
		accountType, err := model.ParseAccountType(t)
		if err != nil {
			s.writeError(w, err)
			return
		}
		accts = s.book.AccountsByType(accountType)
	}

	out := make([]AccountResponse, len(accts))
	for i, a := range accts {
		out[i] = s.accountResponse(a)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"accounts": out})
}

// createAccount handles POST /accounts.
func (s *Server) createAccount(w http.ResponseWriter, r *http.Request) {
	var req CreateAccountRequest
	if err := decodeJSON(r, &req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", fmt.Sprintf("Failed to parse request body: %v", err))
		return
	}

	a, err := s.book.AddAccount(req.Name, model.AccountType(req.Type), req.Balance)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if !s.saved(w) {
		return
	}
	writeJSON(w, http.StatusCreated, s.accountResponse(a))
}

// deleteAccount handles DELETE /accounts/{id}?confirm=true.
func (s *Server) deleteAccount(w http.ResponseWriter, r *http.Request) {
	accountID, err := accountParam(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}
	if _, err := s.book.DeleteAccount(accountID, confirmed(r)); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.saved(w) {
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
