package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dongapp/dong/internal/middleware"
	"github.com/dongapp/dong/internal/service"
)

func expenseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid expense id"})
		return 0, false
	}
	return id, true
}

func (req *expenseRequest) payload() (service.ExpensePayload, []service.ShareInput) {
	shares := make([]service.ShareInput, len(req.Shares))
	for i, s := range req.Shares {
		shares[i] = service.ShareInput{UserID: s.UserID, Percent: s.Percent}
	}
	return service.ExpensePayload{
		GroupID:     req.GroupID,
		AddedAt:     req.AddedAt,
		Title:       req.Title,
		Category:    req.Category,
		Description: req.Description,
		Amount:      req.Amount,
	}, shares
}

func validExpenseRequest(w http.ResponseWriter, req *expenseRequest) bool {
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "title is required"})
		return false
	}
	if req.Amount <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "amount must be positive"})
		return false
	}
	for _, s := range req.Shares {
		if s.Percent < 0 || s.Percent > 100 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "share percent must be in [0, 100]"})
			return false
		}
	}
	return true
}

func (a *API) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if !decode(w, r, &req) {
		return
	}
	if !validExpenseRequest(w, &req) {
		return
	}

	payload, shares := req.payload()
	expense, err := a.expenses.CreateExpense(r.Context(), middleware.GetUserID(r.Context()), payload, shares)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseResponse(expense))
}

func (a *API) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	expense, err := a.expenses.GetExpense(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (a *API) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if !decode(w, r, &req) {
		return
	}
	if !validExpenseRequest(w, &req) {
		return
	}

	payload, shares := req.payload()
	expense, err := a.expenses.UpdateExpense(r.Context(), middleware.GetUserID(r.Context()), id, payload, shares)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseResponse(expense))
}

func (a *API) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	if err := a.expenses.DeleteExpense(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleMarkPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	if err := a.expenses.MarkPaid(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListExpenseMembers(w http.ResponseWriter, r *http.Request) {
	id, ok := expenseID(w, r)
	if !ok {
		return
	}

	members, err := a.expenses.ListExpenseMembers(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(members))
}

func (a *API) handleListPersonalExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.expenses.ListPersonalExpenses(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]expenseResponse, len(expenses))
	for i := range expenses {
		out[i] = toExpenseResponse(&expenses[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleListGroupExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := a.expenses.ListGroupExpenses(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]groupExpenseResponse, len(expenses))
	for i, ge := range expenses {
		out[i] = groupExpenseResponse{
			expenseResponse: toExpenseResponse(&ge.Expense),
			ShareAmount:     ge.ShareAmount,
			Settlement:      ge.Settlement.String(),
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// handleSummary buckets the caller's expenses per day over the
// [start, end] Unix-timestamp range given as query parameters.
func (a *API) handleSummary(w http.ResponseWriter, r *http.Request) {
	start, err := strconv.ParseInt(r.URL.Query().Get("start"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid start timestamp"})
		return
	}
	end, err := strconv.ParseInt(r.URL.Query().Get("end"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid end timestamp"})
		return
	}

	totals, err := a.expenses.SummaryByPeriod(r.Context(), middleware.GetUserID(r.Context()), start, end)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]periodTotalResponse, len(totals))
	for i, t := range totals {
		out[i] = periodTotalResponse{Period: t.Period, Total: t.Total}
	}
	writeJSON(w, http.StatusOK, out)
}
