package api

import "github.com/dongapp/dong/internal/models"

// Wire types. Domain models carry no serialization concerns; these
// structs define the JSON contract and deliberately omit fields like
// password hashes.

type signupRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Name string `json:"name"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"createdAt"`
}

type sessionResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

type groupRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type groupResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"ownerId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CreatedAt   int64  `json:"createdAt"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

type answerInvitationRequest struct {
	Accept bool `json:"accept"`
}

type invitationResponse struct {
	GroupID          string `json:"groupId"`
	GroupName        string `json:"groupName"`
	GroupDescription string `json:"groupDescription"`
	InvitedByEmail   string `json:"invitedByEmail"`
}

type shareRequest struct {
	UserID  string  `json:"userId"`
	Percent float64 `json:"percent"`
}

type expenseRequest struct {
	GroupID     string         `json:"groupId,omitempty"`
	AddedAt     int64          `json:"addedAt"`
	Title       string         `json:"title"`
	Category    string         `json:"category"`
	Description string         `json:"description,omitempty"`
	Amount      float64        `json:"amount"`
	Shares      []shareRequest `json:"shares,omitempty"`
}

type expenseResponse struct {
	ID          int64   `json:"id"`
	GroupID     string  `json:"groupId,omitempty"`
	CreatedBy   string  `json:"createdBy"`
	CreatedAt   int64   `json:"createdAt"`
	AddedAt     int64   `json:"addedAt"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Description string  `json:"description,omitempty"`
	Amount      float64 `json:"amount"`
}

type groupExpenseResponse struct {
	expenseResponse
	ShareAmount float64 `json:"shareAmount"`
	Settlement  string  `json:"settlement"`
}

type periodTotalResponse struct {
	Period string  `json:"period"`
	Total  float64 `json:"total"`
}

type ownerResponse struct {
	IsOwner bool `json:"isOwner"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

func toUserResponses(users []models.User) []userResponse {
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = toUserResponse(&users[i])
	}
	return out
}

func toGroupResponse(g *models.Group) groupResponse {
	return groupResponse{
		ID:          g.ID,
		OwnerID:     g.OwnerID,
		Name:        g.Name,
		Description: g.Description,
		CreatedAt:   g.CreatedAt,
	}
}

func toExpenseResponse(e *models.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		GroupID:     e.GroupID,
		CreatedBy:   e.CreatedBy,
		CreatedAt:   e.CreatedAt,
		AddedAt:     e.AddedAt,
		Title:       e.Title,
		Category:    e.Category,
		Description: e.Description,
		Amount:      e.Amount,
	}
}
