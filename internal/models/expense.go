package models

// Categories is the closed set of allowed expense categories.
var Categories = map[string]bool{
	"Food":           true,
	"Shopping":       true,
	"Debt":           true,
	"Transportation": true,
	"Vehicle":        true,
	"House":          true,
	"Entertainment":  true,
	"Personal":       true,
	"Healthcare":     true,
	"Other":          true,
}

// ValidCategory reports whether c belongs to the allowed category set.
func ValidCategory(c string) bool {
	return Categories[c]
}

// Expense represents a logged cost, optionally attached to a group.
type Expense struct {
	// ID is the auto-assigned numeric identifier.
	ID int64

	// GroupID is the owning group's short code, or empty for a personal
	// expense that belongs to no group.
	GroupID string

	// CreatedBy is the user who logged the expense. Only the creator may
	// update or delete it.
	CreatedBy string

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64

	// AddedAt is the user-supplied Unix timestamp of when the cost was
	// incurred. Period summaries bucket on this, not CreatedAt.
	AddedAt int64

	// Title is the short human-readable name of the expense.
	Title string

	// Category is one of the values accepted by ValidCategory.
	Category string

	// Description is optional free text.
	Description string

	// Amount is the full expense amount. Always positive.
	Amount float64
}

// Share is one user's percentage allocation of one expense's amount.
// There is at most one share per (user, expense) pair.
type Share struct {
	ExpenseID int64
	UserID    string

	// Percent is the user's slice of the expense amount, in [0, 100].
	// Shares across an expense are not required to sum to 100.
	Percent float64

	// Paid reports whether the user settled their slice.
	Paid bool
}

// SettlementStatus is the reported payment state of a user's share of
// an expense. It is distinct from Share.Paid: a zero-amount share is
// reported as NotApplicable even though its stored flag is unpaid.
type SettlementStatus int

const (
	// SettlementUnpaid means the user owes their share and has not paid.
	SettlementUnpaid SettlementStatus = 0

	// SettlementPaid means the user marked their share as paid.
	SettlementPaid SettlementStatus = 1

	// SettlementNotApplicable means the user owes nothing on this
	// expense (no share row, or a 0% share).
	SettlementNotApplicable SettlementStatus = 2
)

// String returns a human-readable label for logging.
func (s SettlementStatus) String() string {
	switch s {
	case SettlementUnpaid:
		return "unpaid"
	case SettlementPaid:
		return "paid"
	case SettlementNotApplicable:
		return "not_applicable"
	default:
		return "unknown"
	}
}

// GroupExpense is an expense as seen by one group member: the raw
// expense plus that member's computed share amount and settlement state.
type GroupExpense struct {
	Expense

	// ShareAmount is the viewer's slice of Amount: Percent*Amount/100,
	// zero when the viewer holds no share.
	ShareAmount float64

	// Settlement is the viewer's reported payment state, including the
	// zero-share override.
	Settlement SettlementStatus
}

// PeriodTotal is one bucket of a period expense summary.
type PeriodTotal struct {
	// Period is the bucket label (a calendar date, YYYY-MM-DD).
	Period string

	// Total is the summed amount of the user's expenses in the bucket.
	Total float64
}
