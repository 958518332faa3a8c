package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dongapp/dong/internal/middleware"
)

func (a *API) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and name are required"})
		return
	}

	user, token, err := a.users.Signup(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sessionResponse{User: toUserResponse(user), Token: token})
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	user, token, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{User: toUserResponse(user), Token: token})
}

func (a *API) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.GetUser(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *API) handleGetUser(w http.ResponseWriter, r *http.Request) {
	user, err := a.users.GetUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *API) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.users.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(users))
}

func (a *API) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var req updateUserRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	user, err := a.users.UpdateUser(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"], req.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (a *API) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := a.users.DeleteUser(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
