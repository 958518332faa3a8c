package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dongapp/dong/internal/models"
	"github.com/dongapp/dong/internal/storage"
)

// CreateExpense persists a new expense and its shares in one
// transaction. Every share is written unpaid regardless of the Paid
// flag on the input; the expense ID is populated on return.
func (s *SQLiteStore) CreateExpense(ctx context.Context, expense *models.Expense, shares []models.Share) error {
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO expenses (group_id, created_by, created_at, added_at, title, category, description, amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		nullString(expense.GroupID), expense.CreatedBy, expense.CreatedAt, expense.AddedAt,
		expense.Title, expense.Category, expense.Description, expense.Amount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	expense.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read expense id: %w", err)
	}

	for _, share := range shares {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_shares (expense_id, user_id, share_percent, paid)
			 VALUES (?, ?, ?, 0)`,
			expense.ID, share.UserID, share.Percent,
		)
		if err != nil {
			return fmt.Errorf("failed to insert share: %w", mapConflict(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetExpense retrieves an expense by ID.
func (s *SQLiteStore) GetExpense(ctx context.Context, id int64) (*models.Expense, error) {
	expense := &models.Expense{}
	var groupID sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, group_id, created_by, created_at, added_at, title, category, description, amount
		 FROM expenses WHERE id = ?`,
		id,
	).Scan(&expense.ID, &groupID, &expense.CreatedBy, &expense.CreatedAt, &expense.AddedAt,
		&expense.Title, &expense.Category, &expense.Description, &expense.Amount)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}

	expense.GroupID = groupID.String
	return expense, nil
}

// UpdateExpense updates an expense and reconciles its shares against
// the supplied list as one atomic unit: shares for users already
// present are updated in place (keeping their paid flag), shares for
// new users are inserted unpaid, and shares for users absent from the
// list are deleted. An empty list leaves existing shares untouched.
func (s *SQLiteStore) UpdateExpense(ctx context.Context, expense *models.Expense, shares []models.Share) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE expenses SET added_at = ?, title = ?, category = ?, description = ?, amount = ?
		 WHERE id = ?`,
		expense.AddedAt, expense.Title, expense.Category, expense.Description, expense.Amount,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", expense.ID, storage.ErrNotFound)
	}

	if len(shares) > 0 {
		if err := reconcileShares(ctx, tx, expense.ID, shares); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// reconcileShares applies the share set-diff inside the caller's
// transaction.
func reconcileShares(ctx context.Context, tx *sql.Tx, expenseID int64, shares []models.Share) error {
	for _, share := range shares {
		res, err := tx.ExecContext(ctx,
			`UPDATE expense_shares SET share_percent = ?
			 WHERE expense_id = ? AND user_id = ?`,
			share.Percent, expenseID, share.UserID,
		)
		if err != nil {
			return fmt.Errorf("failed to update share: %w", err)
		}

		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to update share: %w", err)
		}
		if n == 0 {
			_, err = tx.ExecContext(ctx,
				`INSERT INTO expense_shares (expense_id, user_id, share_percent, paid)
				 VALUES (?, ?, ?, 0)`,
				expenseID, share.UserID, share.Percent,
			)
			if err != nil {
				return fmt.Errorf("failed to insert share: %w", mapConflict(err))
			}
		}
	}

	// Drop shares for users absent from the new list.
	args := make([]interface{}, 0, len(shares)+1)
	args = append(args, expenseID)
	placeholders := make([]string, len(shares))
	for i, share := range shares {
		placeholders[i] = "?"
		args = append(args, share.UserID)
	}

	_, err := tx.ExecContext(ctx,
		`DELETE FROM expense_shares WHERE expense_id = ? AND user_id NOT IN (`+
			strings.Join(placeholders, ", ")+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to delete removed shares: %w", err)
	}

	return nil
}

// DeleteExpense removes an expense and its shares.
func (s *SQLiteStore) DeleteExpense(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `DELETE FROM expense_shares WHERE expense_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete expense shares: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("expense %d: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListPersonalExpenses retrieves the user's expenses that belong to no
// group, newest first by the date the cost was incurred.
func (s *SQLiteStore) ListPersonalExpenses(ctx context.Context, userID string) ([]models.Expense, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, group_id, created_by, created_at, added_at, title, category, description, amount
		 FROM expenses WHERE created_by = ? AND group_id IS NULL
		 ORDER BY added_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list personal expenses: %w", err)
	}
	defer rows.Close()

	return scanExpenses(rows)
}

// ListGroupExpensesForUser retrieves every expense in the group plus
// the viewer's share rows keyed by expense ID.
func (s *SQLiteStore) ListGroupExpensesForUser(ctx context.Context, groupID, userID string) ([]models.Expense, map[int64]models.Share, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.group_id, e.created_by, e.created_at, e.added_at,
		        e.title, e.category, e.description, e.amount,
		        sh.share_percent, sh.paid
		 FROM expenses e
		 LEFT JOIN expense_shares sh ON sh.expense_id = e.id AND sh.user_id = ?
		 WHERE e.group_id = ?
		 ORDER BY e.added_at DESC`,
		userID, groupID,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list group expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	shares := make(map[int64]models.Share)
	for rows.Next() {
		var e models.Expense
		var gid sql.NullString
		var percent sql.NullFloat64
		var paid sql.NullBool

		if err := rows.Scan(&e.ID, &gid, &e.CreatedBy, &e.CreatedAt, &e.AddedAt,
			&e.Title, &e.Category, &e.Description, &e.Amount, &percent, &paid); err != nil {
			return nil, nil, fmt.Errorf("failed to scan group expense: %w", err)
		}

		e.GroupID = gid.String
		expenses = append(expenses, e)

		if percent.Valid {
			shares[e.ID] = models.Share{
				ExpenseID: e.ID,
				UserID:    userID,
				Percent:   percent.Float64,
				Paid:      paid.Bool,
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to iterate group expenses: %w", err)
	}

	return expenses, shares, nil
}

// ListShares retrieves all share rows of an expense.
func (s *SQLiteStore) ListShares(ctx context.Context, expenseID int64) ([]models.Share, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT expense_id, user_id, share_percent, paid
		 FROM expense_shares WHERE expense_id = ? ORDER BY user_id`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	var shares []models.Share
	for rows.Next() {
		var sh models.Share
		if err := rows.Scan(&sh.ExpenseID, &sh.UserID, &sh.Percent, &sh.Paid); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, sh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}

	return shares, nil
}

// GetShare retrieves one user's share of an expense.
func (s *SQLiteStore) GetShare(ctx context.Context, userID string, expenseID int64) (*models.Share, error) {
	share := &models.Share{}
	err := s.db.QueryRowContext(ctx,
		`SELECT expense_id, user_id, share_percent, paid
		 FROM expense_shares WHERE user_id = ? AND expense_id = ?`,
		userID, expenseID,
	).Scan(&share.ExpenseID, &share.UserID, &share.Percent, &share.Paid)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("share (%s, %d): %w", userID, expenseID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}

	return share, nil
}

// MarkSharePaid sets the paid flag on one user's share of an expense.
// Idempotent; fails with storage.ErrNotFound when no share row exists.
func (s *SQLiteStore) MarkSharePaid(ctx context.Context, userID string, expenseID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expense_shares SET paid = 1 WHERE user_id = ? AND expense_id = ?`,
		userID, expenseID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark share paid: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to mark share paid: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("share (%s, %d): %w", userID, expenseID, storage.ErrNotFound)
	}

	return nil
}

// ListExpenseMembers retrieves the users holding a share of an expense.
func (s *SQLiteStore) ListExpenseMembers(ctx context.Context, expenseID int64) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.password_hash, u.created_at
		 FROM users u
		 JOIN expense_shares sh ON sh.user_id = u.id
		 WHERE sh.expense_id = ?
		 ORDER BY u.name`,
		expenseID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list expense members: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// SummarizeByDay aggregates the user's expenses by the calendar day the
// cost was incurred, over the closed range [start, end]. The grouping
// happens in SQL rather than application code.
func (s *SQLiteStore) SummarizeByDay(ctx context.Context, userID string, start, end int64) ([]models.PeriodTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT date(added_at, 'unixepoch') AS period, SUM(amount)
		 FROM expenses
		 WHERE created_by = ? AND added_at BETWEEN ? AND ?
		 GROUP BY period
		 ORDER BY period`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize expenses: %w", err)
	}
	defer rows.Close()

	var totals []models.PeriodTotal
	for rows.Next() {
		var pt models.PeriodTotal
		if err := rows.Scan(&pt.Period, &pt.Total); err != nil {
			return nil, fmt.Errorf("failed to scan summary row: %w", err)
		}
		totals = append(totals, pt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate summary rows: %w", err)
	}

	return totals, nil
}

// scanExpenses drains an expense result set.
func scanExpenses(rows *sql.Rows) ([]models.Expense, error) {
	var expenses []models.Expense
	for rows.Next() {
		var e models.Expense
		var gid sql.NullString
		if err := rows.Scan(&e.ID, &gid, &e.CreatedBy, &e.CreatedAt, &e.AddedAt,
			&e.Title, &e.Category, &e.Description, &e.Amount); err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		e.GroupID = gid.String
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}
