// Package service implements the application's request-scoped
// operations: account management, the group membership registry, and
// the expense ledger. Each operation runs to completion within one
// logical transaction against the store; no locks are held across
// requests.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dongapp/dong/internal/groupid"
	"github.com/dongapp/dong/internal/models"
	"github.com/dongapp/dong/internal/storage"
)

// GroupService owns group lifecycle and the membership state machine.
type GroupService struct {
	store  storage.Store
	alloc  *groupid.Allocator
	logger *slog.Logger
}

// NewGroupService creates a GroupService with the given storage backend
// and group-code allocator.
func NewGroupService(store storage.Store, alloc *groupid.Allocator, logger *slog.Logger) *GroupService {
	return &GroupService{store: store, alloc: alloc, logger: logger}
}

// CreateGroup allocates a unique short code, persists the group, and
// records the creator as its first Active member, all in one storage
// transaction per attempt. Returns groupid.ErrExhausted if no unique
// code could be found within the attempt budget.
func (s *GroupService) CreateGroup(ctx context.Context, ownerID, name, description string) (*models.Group, error) {
	var created *models.Group

	_, err := s.alloc.Allocate(ctx, func(ctx context.Context, code string) error {
		group := &models.Group{
			ID:          code,
			OwnerID:     ownerID,
			Name:        name,
			Description: description,
		}
		if err := s.store.CreateGroupWithOwner(ctx, group); err != nil {
			return err
		}
		created = group
		return nil
	})
	if err != nil {
		s.logger.Error("CreateGroup failed", "owner_id", ownerID, "error", err)
		return nil, err
	}

	s.logger.Info("Group created", "group_id", created.ID, "owner_id", ownerID)
	return created, nil
}

// GetGroup retrieves a group by its short code.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.store.GetGroup(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return group, nil
}

// UpdateGroup changes a group's name and description. Only the owner
// may update a group; membership alone grants no mutation rights.
func (s *GroupService) UpdateGroup(ctx context.Context, requesterID, id, name, description string) (*models.Group, error) {
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.OwnerID != requesterID {
		return nil, ErrForbidden
	}

	group.Name = name
	group.Description = description
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		s.logger.Error("UpdateGroup failed", "group_id", id, "error", err)
		return nil, err
	}

	s.logger.Info("Group updated", "group_id", id)
	return group, nil
}

// DeleteGroup removes a group together with its expenses and
// memberships. Only the owner may delete a group.
func (s *GroupService) DeleteGroup(ctx context.Context, requesterID, id string) error {
	group, err := s.GetGroup(ctx, id)
	if err != nil {
		return err
	}
	if group.OwnerID != requesterID {
		return ErrForbidden
	}

	if err := s.store.DeleteGroup(ctx, id); err != nil {
		s.logger.Error("DeleteGroup failed", "group_id", id, "error", err)
		return err
	}

	s.logger.Info("Group deleted", "group_id", id)
	return nil
}

// IsOwner reports whether the user owns the group. This is a pure query
// against the group record, independent of membership state.
func (s *GroupService) IsOwner(ctx context.Context, userID, groupID string) (bool, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return false, err
	}
	return group.OwnerID == userID, nil
}

// Join transitions a (user, group) pair to Active:
//   - no existing record: the user joins fresh, e.g. via a shared code
//   - Left or Invited: the record moves back to Active with a refreshed
//     join time (joining with a pending invite implicitly accepts it)
//   - Active: fails with ErrAlreadyMember and leaves the record alone
func (s *GroupService) Join(ctx context.Context, userID, groupID string) error {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}

	m, err := s.store.GetMembership(ctx, userID, groupID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		m = &models.Membership{UserID: userID, GroupID: groupID}
	case err != nil:
		return err
	case m.Status == models.MembershipActive:
		return ErrAlreadyMember
	}

	m.Status = models.MembershipActive
	m.JoinedAt = time.Now().Unix()
	if err := s.store.UpsertMembership(ctx, m); err != nil {
		s.logger.Error("Join failed", "user_id", userID, "group_id", groupID, "error", err)
		return err
	}

	s.logger.Info("User joined group", "user_id", userID, "group_id", groupID)
	return nil
}

// Leave sets the membership to Left whatever its current state. A user
// with a pending invitation who "leaves" thereby declines it. Fails
// with ErrNotAMember when no record exists for the pair.
func (s *GroupService) Leave(ctx context.Context, userID, groupID string) error {
	m, err := s.store.GetMembership(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotAMember
		}
		return err
	}

	m.Status = models.MembershipLeft
	if err := s.store.UpsertMembership(ctx, m); err != nil {
		s.logger.Error("Leave failed", "user_id", userID, "group_id", groupID, "error", err)
		return err
	}

	s.logger.Info("User left group", "user_id", userID, "group_id", groupID)
	return nil
}

// Invite records a pending invitation for the user addressed by email.
// Users who are Active are rejected with ErrAlreadyMember; users with a
// pending invitation with ErrInvitePending. A user who previously left
// (or declined) may be invited again; the fresh invitation clears any
// old join time.
func (s *GroupService) Invite(ctx context.Context, inviterEmail, inviteeEmail, groupID string) error {
	invitee, err := s.store.GetUserByEmail(ctx, inviteeEmail)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNotFound
		}
		return err
	}

	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return err
	}

	existing, err := s.store.GetMembership(ctx, invitee.ID, groupID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return err
	}
	if existing != nil {
		switch existing.Status {
		case models.MembershipActive:
			return ErrAlreadyMember
		case models.MembershipInvited:
			return ErrInvitePending
		}
	}

	m := &models.Membership{
		UserID:         invitee.ID,
		GroupID:        groupID,
		Status:         models.MembershipInvited,
		InvitedByEmail: inviterEmail,
	}
	if err := s.store.UpsertMembership(ctx, m); err != nil {
		s.logger.Error("Invite failed", "invitee", inviteeEmail, "group_id", groupID, "error", err)
		return err
	}

	s.logger.Info("User invited to group",
		"invitee_id", invitee.ID,
		"group_id", groupID,
		"invited_by", inviterEmail,
	)
	return nil
}

// AnswerInvitation resolves a pending invitation to Active (accept) or
// Left (decline). Accepting stamps the join time; declining leaves it
// unset. Fails with ErrNoPendingInvitation unless an Invited record
// exists for the pair.
func (s *GroupService) AnswerInvitation(ctx context.Context, userID, groupID string, answer models.MembershipStatus) error {
	if answer != models.MembershipActive && answer != models.MembershipLeft {
		return fmt.Errorf("invalid invitation answer %d", answer)
	}

	m, err := s.store.GetMembership(ctx, userID, groupID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNoPendingInvitation
		}
		return err
	}
	if m.Status != models.MembershipInvited {
		return ErrNoPendingInvitation
	}

	m.Status = answer
	if answer == models.MembershipActive {
		m.JoinedAt = time.Now().Unix()
	}
	if err := s.store.UpsertMembership(ctx, m); err != nil {
		s.logger.Error("AnswerInvitation failed", "user_id", userID, "group_id", groupID, "error", err)
		return err
	}

	s.logger.Info("Invitation answered",
		"user_id", userID,
		"group_id", groupID,
		"answer", answer.String(),
	)
	return nil
}

// ListUserGroups retrieves the groups where the user is an Active member.
func (s *GroupService) ListUserGroups(ctx context.Context, userID string) ([]models.Group, error) {
	return s.store.ListGroupsByMember(ctx, userID)
}

// ListGroupMembers retrieves the Active members of a group.
func (s *GroupService) ListGroupMembers(ctx context.Context, groupID string) ([]models.User, error) {
	if _, err := s.GetGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.store.ListActiveMembers(ctx, groupID)
}

// ListPendingInvitations retrieves the user's pending invitations with
// the inviting group's metadata.
func (s *GroupService) ListPendingInvitations(ctx context.Context, userID string) ([]models.Invitation, error) {
	return s.store.ListPendingInvitations(ctx, userID)
}
