package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dongapp/dong/internal/models"
	"github.com/dongapp/dong/internal/storage"
)

// CreateGroupWithOwner inserts a new group and the owner's Active
// membership in one transaction. Returns storage.ErrConflict when the
// group code is already taken, so the allocator can redraw.
func (s *SQLiteStore) CreateGroupWithOwner(ctx context.Context, group *models.Group) error {
	if group.CreatedAt == 0 {
		group.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO groups (id, owner_id, name, description, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		group.ID, group.OwnerID, group.Name, group.Description, group.CreatedAt,
	)
	if err != nil {
		return mapConflict(err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO memberships (user_id, group_id, status, joined_at, invited_by_email)
		 VALUES (?, ?, ?, ?, NULL)`,
		group.OwnerID, group.ID, models.MembershipActive, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetGroup retrieves a group by its short code.
func (s *SQLiteStore) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, name, description, created_at FROM groups WHERE id = ?`,
		id,
	).Scan(&group.ID, &group.OwnerID, &group.Name, &group.Description, &group.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// UpdateGroup updates a group's name and description. The owner never
// changes after creation.
func (s *SQLiteStore) UpdateGroup(ctx context.Context, group *models.Group) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE groups SET name = ?, description = ? WHERE id = ?`,
		group.Name, group.Description, group.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update group: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", group.ID, storage.ErrNotFound)
	}

	return nil
}

// DeleteGroup removes a group and cascades to its expenses (with their
// shares) and memberships in one transaction. Expenses with no group
// are never touched.
func (s *SQLiteStore) DeleteGroup(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM expense_shares WHERE expense_id IN
		   (SELECT id FROM expenses WHERE group_id = ?)`,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to delete group expense shares: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM expenses WHERE group_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete group expenses: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM memberships WHERE group_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete group memberships: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("group %s: %w", id, storage.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
