package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/dongapp/dong/internal/middleware"
	"github.com/dongapp/dong/internal/models"
)

func (a *API) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	group, err := a.groups.CreateGroup(r.Context(), middleware.GetUserID(r.Context()), req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupResponse(group))
}

func (a *API) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	group, err := a.groups.GetGroup(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (a *API) handleUpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "name is required"})
		return
	}

	group, err := a.groups.UpdateGroup(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"], req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupResponse(group))
}

func (a *API) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := a.groups.DeleteGroup(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleIsGroupOwner(w http.ResponseWriter, r *http.Request) {
	isOwner, err := a.groups.IsOwner(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ownerResponse{IsOwner: isOwner})
}

func (a *API) handleListUserGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := a.groups.ListUserGroups(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]groupResponse, len(groups))
	for i := range groups {
		out[i] = toGroupResponse(&groups[i])
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleListGroupMembers(w http.ResponseWriter, r *http.Request) {
	members, err := a.groups.ListGroupMembers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponses(members))
}

func (a *API) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	if err := a.groups.Join(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	if err := a.groups.Leave(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleInvite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email is required"})
		return
	}

	err := a.groups.Invite(r.Context(), middleware.GetEmail(r.Context()), req.Email, mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	invitations, err := a.groups.ListPendingInvitations(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]invitationResponse, len(invitations))
	for i, inv := range invitations {
		out[i] = invitationResponse{
			GroupID:          inv.GroupID,
			GroupName:        inv.GroupName,
			GroupDescription: inv.GroupDescription,
			InvitedByEmail:   inv.InvitedByEmail,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *API) handleAnswerInvitation(w http.ResponseWriter, r *http.Request) {
	var req answerInvitationRequest
	if !decode(w, r, &req) {
		return
	}

	answer := models.MembershipLeft
	if req.Accept {
		answer = models.MembershipActive
	}

	err := a.groups.AnswerInvitation(r.Context(), middleware.GetUserID(r.Context()), mux.Vars(r)["id"], answer)
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
