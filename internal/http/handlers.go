package http

import (
	"net/http"
	"time"

	"familybank/internal/core"
)

type depositRequest struct {
	ChildID  string     `json:"childId"`
	Amount   core.Money `json:"amount"`
	Note     string     `json:"note"`
	Category string     `json:"category"`
	GoalID   string     `json:"goalId"`
}

type withdrawalRequest struct {
	ChildID  string     `json:"childId"`
	Amount   core.Money `json:"amount"`
	Note     string     `json:"note"`
	Category string     `json:"category"`
}

type editTransactionRequest struct {
	Amount   core.Money `json:"amount"`
	Note     string     `json:"note"`
	Category string     `json:"category"`
}

type allocateRequest struct {
	Amount core.Money `json:"amount"`
}

type setRateRequest struct {
	InterestRate float64 `json:"interestRate"`
}

type transactionResponse struct {
	Transaction core.Transaction `json:"transaction"`
	Child       core.Child       `json:"child"`
	Goal        *core.Goal       `json:"goal,omitempty"`
	GoalDone    bool             `json:"goalCompleted,omitempty"`
}

type balanceResponse struct {
	ChildID    string     `json:"childId"`
	Balance    core.Money `json:"balance"`
	TotalSaved core.Money `json:"totalSaved"`
}

type interestResponse struct {
	Applied      bool               `json:"applied"`
	Month        string             `json:"month"`
	Transactions []core.Transaction `json:"transactions"`
	Children     []core.Child       `json:"children"`
}

type allocationResponse struct {
	Goal      core.Goal `json:"goal"`
	Completed bool      `json:"completed"`
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req depositRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, "bad_request")
		return
	}

	res, err := s.service.Deposit(r.Context(), req.ChildID, req.Amount,
		sanitizeInput(req.Note), sanitizeInput(req.Category), req.GoalID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transactionResponse{
		Transaction: res.Transaction,
		Child:       res.Child,
		Goal:        res.Goal,
		GoalDone:    res.GoalDone,
	})
}

func (s *Server) handleWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req withdrawalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, "bad_request")
		return
	}

	res, err := s.service.Withdraw(r.Context(), req.ChildID, req.Amount,
		sanitizeInput(req.Note), sanitizeInput(req.Category))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, transactionResponse{
		Transaction: res.Transaction,
		Child:       res.Child,
	})
}

// handleListTransactions supports free-text search over note and child
// name plus a kind filter ("deposit", "withdrawal", "interest", "all").
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	kind := q.Get("kind")
	if kind == "" {
		kind = "all"
	}

	txs := s.service.SearchTransactions(q.Get("q"), kind)
	writeJSON(w, http.StatusOK, txs)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	var req editTransactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, "bad_request")
		return
	}

	res, err := s.service.EditTransaction(r.Context(), r.PathValue("id"), req.Amount,
		sanitizeInput(req.Note), sanitizeInput(req.Category))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse{
		Transaction: res.Transaction,
		Child:       res.Child,
	})
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.DeleteTransaction(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, transactionResponse{
		Transaction: res.Transaction,
		Child:       res.Child,
	})
}

func (s *Server) handleListChildren(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Children())
}

func (s *Server) handleChildBalance(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("id")
	balance, err := s.service.BalanceOf(childID)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{
		ChildID:    childID,
		Balance:    balance,
		TotalSaved: s.service.TotalSaved(childID),
	})
}

func (s *Server) handleChildTransactions(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("id")
	if _, err := s.service.BalanceOf(childID); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.TransactionsFor(childID))
}

func (s *Server) handleChildGoals(w http.ResponseWriter, r *http.Request) {
	childID := r.PathValue("id")
	if _, err := s.service.BalanceOf(childID); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.service.GoalsFor(childID))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Goals())
}

func (s *Server) handleAllocateGoal(w http.ResponseWriter, r *http.Request) {
	var req allocateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, "bad_request")
		return
	}

	res, err := s.service.AllocateToGoal(r.Context(), r.PathValue("id"), req.Amount)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, allocationResponse{Goal: res.Goal, Completed: res.Done})
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	goal, err := s.service.DeleteGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.service.Settings())
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	var req setRateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err, "bad_request")
		return
	}

	settings, err := s.service.SetInterestRate(r.Context(), req.InterestRate)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, settings)
}

// handleRunInterest triggers the monthly interest check on demand.
// Already-processed months come back with applied=false.
func (s *Server) handleRunInterest(w http.ResponseWriter, r *http.Request) {
	res, err := s.service.ApplyMonthlyInterest(r.Context(), time.Now())
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interestResponse{
		Applied:      res.Applied,
		Month:        res.Month,
		Transactions: res.Transactions,
		Children:     res.Children,
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Reset(r.Context()); err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snapshot := s.service.Export(time.Now())
	w.Header().Set("Content-Disposition", "attachment; filename=family-bank-export.json")
	writeJSON(w, http.StatusOK, snapshot)
}
