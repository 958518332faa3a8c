// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/dongapp/dong/internal/models"
)

// Store defines the interface for expense and membership storage.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Contracts the service layer depends on:
//   - CreateGroupWithOwner returns ErrConflict when the group code is
//     already taken, and writes the group plus the owner's Active
//     membership atomically.
//   - DeleteGroup cascades to the group's expenses (and their shares)
//     and memberships in one transaction.
//   - UpdateExpense applies the share set-diff (update in place, insert
//     new, delete absent) as a single atomic unit.
//   - Lookups return ErrNotFound for absent entities, never (nil, nil).
type Store interface {
	// Users.
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error

	// Groups.
	CreateGroupWithOwner(ctx context.Context, group *models.Group) error
	GetGroup(ctx context.Context, id string) (*models.Group, error)
	UpdateGroup(ctx context.Context, group *models.Group) error
	DeleteGroup(ctx context.Context, id string) error

	// Memberships.
	GetMembership(ctx context.Context, userID, groupID string) (*models.Membership, error)
	UpsertMembership(ctx context.Context, m *models.Membership) error
	ListGroupsByMember(ctx context.Context, userID string) ([]models.Group, error)
	ListActiveMembers(ctx context.Context, groupID string) ([]models.User, error)
	ListPendingInvitations(ctx context.Context, userID string) ([]models.Invitation, error)

	// Expenses and shares.
	CreateExpense(ctx context.Context, expense *models.Expense, shares []models.Share) error
	GetExpense(ctx context.Context, id int64) (*models.Expense, error)
	UpdateExpense(ctx context.Context, expense *models.Expense, shares []models.Share) error
	DeleteExpense(ctx context.Context, id int64) error
	ListPersonalExpenses(ctx context.Context, userID string) ([]models.Expense, error)
	// ListGroupExpensesForUser returns every expense in the group plus
	// the viewer's share rows keyed by expense ID (absent when the
	// viewer holds no share of that expense).
	ListGroupExpensesForUser(ctx context.Context, groupID, userID string) ([]models.Expense, map[int64]models.Share, error)
	ListShares(ctx context.Context, expenseID int64) ([]models.Share, error)
	GetShare(ctx context.Context, userID string, expenseID int64) (*models.Share, error)
	MarkSharePaid(ctx context.Context, userID string, expenseID int64) error
	ListExpenseMembers(ctx context.Context, expenseID int64) ([]models.User, error)
	SummarizeByDay(ctx context.Context, userID string, start, end int64) ([]models.PeriodTotal, error)

	// Close releases any resources held by the store.
	Close() error
}
