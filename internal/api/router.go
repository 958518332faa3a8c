package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dongapp/dong/internal/auth"
	"github.com/dongapp/dong/internal/middleware"
)

// Router builds the full route table. Signup, login, and /metrics are
// open; everything else requires a valid bearer token.
func (a *API) Router(jwtManager *auth.JWTManager) http.Handler {
	r := mux.NewRouter()
	r.Use(middleware.Metrics, middleware.Logging)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/api/users/signup", a.handleSignup).Methods(http.MethodPost)
	r.HandleFunc("/api/users/login", a.handleLogin).Methods(http.MethodPost)

	s := r.PathPrefix("/api").Subrouter()
	s.Use(middleware.RequireAuth(jwtManager))

	s.HandleFunc("/users/me", a.handleGetCurrentUser).Methods(http.MethodGet)
	s.HandleFunc("/users", a.handleListUsers).Methods(http.MethodGet)
	s.HandleFunc("/users/{id}", a.handleGetUser).Methods(http.MethodGet)
	s.HandleFunc("/users/{id}", a.handleUpdateUser).Methods(http.MethodPut)
	s.HandleFunc("/users/{id}", a.handleDeleteUser).Methods(http.MethodDelete)

	s.HandleFunc("/groups", a.handleCreateGroup).Methods(http.MethodPost)
	s.HandleFunc("/groups", a.handleListUserGroups).Methods(http.MethodGet)
	s.HandleFunc("/groups/{id}", a.handleGetGroup).Methods(http.MethodGet)
	s.HandleFunc("/groups/{id}", a.handleUpdateGroup).Methods(http.MethodPut)
	s.HandleFunc("/groups/{id}", a.handleDeleteGroup).Methods(http.MethodDelete)
	s.HandleFunc("/groups/{id}/owner", a.handleIsGroupOwner).Methods(http.MethodGet)
	s.HandleFunc("/groups/{id}/members", a.handleListGroupMembers).Methods(http.MethodGet)
	s.HandleFunc("/groups/{id}/join", a.handleJoinGroup).Methods(http.MethodPost)
	s.HandleFunc("/groups/{id}/leave", a.handleLeaveGroup).Methods(http.MethodPost)
	s.HandleFunc("/groups/{id}/invitations", a.handleInvite).Methods(http.MethodPost)
	s.HandleFunc("/groups/{id}/expenses", a.handleListGroupExpenses).Methods(http.MethodGet)

	s.HandleFunc("/invitations", a.handleListInvitations).Methods(http.MethodGet)
	s.HandleFunc("/invitations/{id}/answer", a.handleAnswerInvitation).Methods(http.MethodPost)

	s.HandleFunc("/expenses", a.handleCreateExpense).Methods(http.MethodPost)
	s.HandleFunc("/expenses", a.handleListPersonalExpenses).Methods(http.MethodGet)
	s.HandleFunc("/expenses/summary", a.handleSummary).Methods(http.MethodGet)
	s.HandleFunc("/expenses/{id}", a.handleGetExpense).Methods(http.MethodGet)
	s.HandleFunc("/expenses/{id}", a.handleUpdateExpense).Methods(http.MethodPut)
	s.HandleFunc("/expenses/{id}", a.handleDeleteExpense).Methods(http.MethodDelete)
	s.HandleFunc("/expenses/{id}/pay", a.handleMarkPaid).Methods(http.MethodPost)
	s.HandleFunc("/expenses/{id}/members", a.handleListExpenseMembers).Methods(http.MethodGet)

	return r
}
