package models

// MembershipStatus is the state of a (user, group) relationship.
type MembershipStatus int

const (
	// MembershipLeft means the user left the group or declined an
	// invitation to it.
	MembershipLeft MembershipStatus = 0

	// MembershipActive means the user is a current member: they created
	// the group, joined it, or accepted an invitation.
	MembershipActive MembershipStatus = 1

	// MembershipInvited means an invitation is pending the user's answer.
	MembershipInvited MembershipStatus = 2
)

// String returns a human-readable label for logging.
func (s MembershipStatus) String() string {
	switch s {
	case MembershipLeft:
		return "left"
	case MembershipActive:
		return "active"
	case MembershipInvited:
		return "invited"
	default:
		return "unknown"
	}
}

// Membership is the relationship record between one user and one group.
// There is at most one record per (user, group) pair; transitions
// overwrite it in place.
type Membership struct {
	// UserID and GroupID form the composite key.
	UserID  string
	GroupID string

	// Status is the current state of the relationship.
	Status MembershipStatus

	// JoinedAt is the Unix timestamp of the most recent transition to
	// Active. Zero if the user never joined (e.g. still Invited, or
	// declined).
	JoinedAt int64

	// InvitedByEmail is the email of the member who sent the invitation,
	// empty for users who joined directly or created the group.
	InvitedByEmail string
}

// Invitation is a pending membership joined with the inviting group's
// metadata, as shown on a user's invitation list.
type Invitation struct {
	GroupID          string
	GroupName        string
	GroupDescription string
	InvitedByEmail   string
}
