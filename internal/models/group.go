package models

// Group represents a circle of users who share expenses.
//
// The ID is a human-shareable 6-letter code allocated at creation time;
// it doubles as the join code users exchange out of band.
type Group struct {
	// ID is the 6-letter uppercase short code identifying the group.
	ID string

	// OwnerID is the user who created the group. Ownership never
	// transfers; only the owner may update or delete the group.
	OwnerID string

	// Name is the display name of the group (e.g. "Roommates").
	Name string

	// Description is an optional free-text description.
	Description string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}
