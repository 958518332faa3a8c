package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dongapp/dong/internal/models"
	"github.com/dongapp/dong/internal/storage"
)

// ExpensePayload carries the caller-supplied fields of an expense.
// Shape validation (required fields, lengths, positive amount) happens
// before data reaches the service.
type ExpensePayload struct {
	GroupID     string // empty for a personal expense
	AddedAt     int64
	Title       string
	Category    string
	Description string
	Amount      float64
}

// ShareInput is one entry of a caller-supplied share list. Any paid
// flag the caller sends is ignored; new shares always start unpaid.
type ShareInput struct {
	UserID  string
	Percent float64
}

// ExpenseService owns expense records, their per-user share
// allocations, and the settlement view.
type ExpenseService struct {
	store  storage.Store
	logger *slog.Logger
}

// NewExpenseService creates an ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store, logger *slog.Logger) *ExpenseService {
	return &ExpenseService{store: store, logger: logger}
}

func shareRows(expenseID int64, inputs []ShareInput) []models.Share {
	shares := make([]models.Share, len(inputs))
	for i, in := range inputs {
		shares[i] = models.Share{
			ExpenseID: expenseID,
			UserID:    in.UserID,
			Percent:   in.Percent,
			// Paid deliberately left false.
		}
	}
	return shares
}

// CreateExpense persists a new expense with one unpaid share per input
// entry. Share percentages are not required to sum to 100.
func (s *ExpenseService) CreateExpense(ctx context.Context, creatorID string, p ExpensePayload, shares []ShareInput) (*models.Expense, error) {
	if !models.ValidCategory(p.Category) {
		return nil, ErrInvalidCategory
	}

	expense := &models.Expense{
		GroupID:     p.GroupID,
		CreatedBy:   creatorID,
		AddedAt:     p.AddedAt,
		Title:       p.Title,
		Category:    p.Category,
		Description: p.Description,
		Amount:      p.Amount,
	}

	if err := s.store.CreateExpense(ctx, expense, shareRows(0, shares)); err != nil {
		s.logger.Error("CreateExpense failed", "creator_id", creatorID, "error", err)
		return nil, err
	}

	s.logger.Info("Expense created",
		"expense_id", expense.ID,
		"creator_id", creatorID,
		"group_id", expense.GroupID,
		"shares", len(shares),
	)
	return expense, nil
}

// GetExpense retrieves an expense by ID.
func (s *ExpenseService) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	expense, err := s.store.GetExpense(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return expense, nil
}

// requireCreator loads the expense and enforces the creator-only
// mutation rule. Existence is checked before ownership.
func (s *ExpenseService) requireCreator(ctx context.Context, requesterID string, id int64) (*models.Expense, error) {
	expense, err := s.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if expense.CreatedBy != requesterID {
		return nil, ErrForbidden
	}
	return expense, nil
}

// UpdateExpense rewrites an expense's fields and reconciles its shares
// against the supplied list: entries for users already holding a share
// update the percentage in place and keep the current paid flag,
// entries for new users insert fresh unpaid shares, and existing shares
// for users absent from the list are removed. The reconciliation is
// atomic. Only the creator may update an expense.
func (s *ExpenseService) UpdateExpense(ctx context.Context, requesterID string, id int64, p ExpensePayload, shares []ShareInput) (*models.Expense, error) {
	expense, err := s.requireCreator(ctx, requesterID, id)
	if err != nil {
		return nil, err
	}

	if !models.ValidCategory(p.Category) {
		return nil, ErrInvalidCategory
	}

	expense.AddedAt = p.AddedAt
	expense.Title = p.Title
	expense.Category = p.Category
	expense.Description = p.Description
	expense.Amount = p.Amount

	if err := s.store.UpdateExpense(ctx, expense, shareRows(id, shares)); err != nil {
		s.logger.Error("UpdateExpense failed", "expense_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("Expense updated", "expense_id", id, "shares", len(shares))
	return expense, nil
}

// DeleteExpense removes an expense and its shares. Only the creator may
// delete an expense.
func (s *ExpenseService) DeleteExpense(ctx context.Context, requesterID string, id int64) error {
	if _, err := s.requireCreator(ctx, requesterID, id); err != nil {
		return err
	}

	if err := s.store.DeleteExpense(ctx, id); err != nil {
		s.logger.Error("DeleteExpense failed", "expense_id", id, "error", err)
		return err
	}

	s.logger.Info("Expense deleted", "expense_id", id)
	return nil
}

// MarkPaid records that the user settled their share of the expense.
// Idempotent: marking an already-paid share succeeds and leaves it
// paid. Fails with ErrNotFound when the user holds no share.
func (s *ExpenseService) MarkPaid(ctx context.Context, userID string, expenseID int64) error {
	if err := s.store.MarkSharePaid(ctx, userID, expenseID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		s.logger.Error("MarkPaid failed", "user_id", userID, "expense_id", expenseID, "error", err)
		return err
	}

	s.logger.Info("Share marked paid", "user_id", userID, "expense_id", expenseID)
	return nil
}

// SummaryByPeriod aggregates the user's expenses per calendar day over
// [start, end]. The grouping is delegated to the storage layer. Fails
// with ErrInvalidRange when start is after end.
func (s *ExpenseService) SummaryByPeriod(ctx context.Context, userID string, start, end int64) ([]models.PeriodTotal, error) {
	if start > end {
		return nil, ErrInvalidRange
	}
	return s.store.SummarizeByDay(ctx, userID, start, end)
}

// ListGroupExpenses returns every expense in the group as seen by one
// member: each with the viewer's share amount (percent of the expense
// amount, zero without a share row) and a settlement status. An unpaid
// share that amounts to zero is reported NotApplicable rather than
// Unpaid, because a 0% slice is not a debt.
func (s *ExpenseService) ListGroupExpenses(ctx context.Context, userID, groupID string) ([]models.GroupExpense, error) {
	expenses, shares, err := s.store.ListGroupExpensesForUser(ctx, groupID, userID)
	if err != nil {
		return nil, err
	}

	result := make([]models.GroupExpense, len(expenses))
	for i, e := range expenses {
		ge := models.GroupExpense{Expense: e, Settlement: models.SettlementUnpaid}

		if share, ok := shares[e.ID]; ok {
			ge.ShareAmount = share.Percent * e.Amount / 100
			if share.Paid {
				ge.Settlement = models.SettlementPaid
			}
		}
		if ge.Settlement != models.SettlementPaid && ge.ShareAmount == 0 {
			ge.Settlement = models.SettlementNotApplicable
		}

		result[i] = ge
	}

	return result, nil
}

// ListPersonalExpenses retrieves the user's expenses that belong to no
// group.
func (s *ExpenseService) ListPersonalExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	return s.store.ListPersonalExpenses(ctx, userID)
}

// ListExpenseMembers retrieves the users holding a share of the expense.
func (s *ExpenseService) ListExpenseMembers(ctx context.Context, expenseID int64) ([]models.User, error) {
	if _, err := s.GetExpense(ctx, expenseID); err != nil {
		return nil, err
	}
	return s.store.ListExpenseMembers(ctx, expenseID)
}

// IsCreator reports whether the user logged the expense.
func (s *ExpenseService) IsCreator(ctx context.Context, userID string, expenseID int64) (bool, error) {
	expense, err := s.GetExpense(ctx, expenseID)
	if err != nil {
		return false, err
	}
	return expense.CreatedBy == userID, nil
}
