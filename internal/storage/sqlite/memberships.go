package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dongapp/dong/internal/models"
	"github.com/dongapp/dong/internal/storage"
)

// GetMembership retrieves the membership record for a (user, group) pair.
func (s *SQLiteStore) GetMembership(ctx context.Context, userID, groupID string) (*models.Membership, error) {
	m := &models.Membership{}
	var joinedAt sql.NullInt64
	var invitedBy sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, group_id, status, joined_at, invited_by_email
		 FROM memberships WHERE user_id = ? AND group_id = ?`,
		userID, groupID,
	).Scan(&m.UserID, &m.GroupID, &m.Status, &joinedAt, &invitedBy)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("membership (%s, %s): %w", userID, groupID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership: %w", err)
	}

	m.JoinedAt = joinedAt.Int64
	m.InvitedByEmail = invitedBy.String
	return m, nil
}

// UpsertMembership writes the membership record for a (user, group)
// pair, inserting or overwriting the single row in place. The write is
// one atomic statement, so concurrent transitions on the same pair
// resolve by commit order.
func (s *SQLiteStore) UpsertMembership(ctx context.Context, m *models.Membership) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO memberships (user_id, group_id, status, joined_at, invited_by_email)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, group_id) DO UPDATE SET
		   status = excluded.status,
		   joined_at = excluded.joined_at,
		   invited_by_email = excluded.invited_by_email`,
		m.UserID, m.GroupID, m.Status, nullUnix(m.JoinedAt), nullString(m.InvitedByEmail),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert membership: %w", err)
	}

	return nil
}

// ListGroupsByMember retrieves the groups where the user is an Active
// member, newest first.
func (s *SQLiteStore) ListGroupsByMember(ctx context.Context, userID string) ([]models.Group, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.owner_id, g.name, g.description, g.created_at
		 FROM groups g
		 JOIN memberships m ON m.group_id = g.id
		 WHERE m.user_id = ? AND m.status = ?
		 ORDER BY g.created_at DESC`,
		userID, models.MembershipActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups by member: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.OwnerID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate groups: %w", err)
	}

	return groups, nil
}

// ListActiveMembers retrieves the users with an Active membership in
// the group.
func (s *SQLiteStore) ListActiveMembers(ctx context.Context, groupID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u.id, u.email, u.name, u.password_hash, u.created_at
		 FROM users u
		 JOIN memberships m ON m.user_id = u.id
		 WHERE m.group_id = ? AND m.status = ?
		 ORDER BY u.name`,
		groupID, models.MembershipActive,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active members: %w", err)
	}
	defer rows.Close()

	return scanUsers(rows)
}

// ListPendingInvitations retrieves the user's pending invitations joined
// with the inviting group's metadata.
func (s *SQLiteStore) ListPendingInvitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT g.id, g.name, g.description, m.invited_by_email
		 FROM memberships m
		 JOIN groups g ON g.id = m.group_id
		 WHERE m.user_id = ? AND m.status = ?
		 ORDER BY g.name`,
		userID, models.MembershipInvited,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending invitations: %w", err)
	}
	defer rows.Close()

	var invitations []models.Invitation
	for rows.Next() {
		var inv models.Invitation
		var invitedBy sql.NullString
		if err := rows.Scan(&inv.GroupID, &inv.GroupName, &inv.GroupDescription, &invitedBy); err != nil {
			return nil, fmt.Errorf("failed to scan invitation: %w", err)
		}
		inv.InvitedByEmail = invitedBy.String
		invitations = append(invitations, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invitations: %w", err)
	}

	return invitations, nil
}
