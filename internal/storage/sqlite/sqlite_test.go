package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongapp/dong/internal/models"
	"github.com/dongapp/dong/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

// seedUser inserts a user with predictable fields derived from the name.
func seedUser(t *testing.T, store *SQLiteStore, name string) *models.User {
	t.Helper()

	user := models.NewUser(fmt.Sprintf("%s@example.com", name), name, "hash")
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func seedGroup(t *testing.T, store *SQLiteStore, owner *models.User, code string) *models.Group {
	t.Helper()

	group := &models.Group{ID: code, OwnerID: owner.ID, Name: code + " group"}
	require.NoError(t, store.CreateGroupWithOwner(context.Background(), group))
	return group
}

func TestUserCRUD(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "alice")

	got, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Equal(t, "alice", got.Name)

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	user.Name = "Alice A."
	require.NoError(t, store.UpdateUser(ctx, user))
	got, err = store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Alice A.", got.Name)

	require.NoError(t, store.DeleteUser(ctx, user.ID))
	_, err = store.GetUserByID(ctx, user.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	seedUser(t, store, "bob")

	dup := models.NewUser("bob@example.com", "other bob", "hash")
	err := store.CreateUser(ctx, dup)
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestCreateGroupWithOwner(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, store, "carol")
	group := seedGroup(t, store, owner, "ABCDEF")

	got, err := store.GetGroup(ctx, "ABCDEF")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, got.OwnerID)
	assert.NotZero(t, got.CreatedAt)

	// The owner gets an Active membership in the same transaction.
	m, err := store.GetMembership(ctx, owner.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipActive, m.Status)
	assert.Equal(t, group.CreatedAt, m.JoinedAt)
}

func TestCreateGroupWithOwner_CodeTaken(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, store, "dave")
	seedGroup(t, store, owner, "TAKEN1")

	err := store.CreateGroupWithOwner(ctx, &models.Group{ID: "TAKEN1", OwnerID: owner.ID, Name: "dup"})
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestDeleteGroup_Cascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, store, "erin")
	member := seedUser(t, store, "frank")
	group := seedGroup(t, store, owner, "CASCAD")

	require.NoError(t, store.UpsertMembership(ctx, &models.Membership{
		UserID: member.ID, GroupID: group.ID, Status: models.MembershipActive, JoinedAt: 100,
	}))

	expense := &models.Expense{GroupID: group.ID, CreatedBy: owner.ID, AddedAt: 100, Title: "dinner", Category: "Food", Amount: 40}
	require.NoError(t, store.CreateExpense(ctx, expense, []models.Share{
		{UserID: owner.ID, Percent: 50},
		{UserID: member.ID, Percent: 50},
	}))

	// A personal expense by the same user must survive the group delete.
	personal := &models.Expense{CreatedBy: owner.ID, AddedAt: 100, Title: "coffee", Category: "Food", Amount: 3}
	require.NoError(t, store.CreateExpense(ctx, personal, nil))

	require.NoError(t, store.DeleteGroup(ctx, group.ID))

	_, err := store.GetGroup(ctx, group.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetMembership(ctx, member.ID, group.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetExpense(ctx, expense.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetShare(ctx, owner.ID, expense.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetExpense(ctx, personal.ID)
	assert.NoError(t, err)
}

func TestUpsertMembership_SingleRowPerPair(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, store, "gina")
	user := seedUser(t, store, "hank")
	group := seedGroup(t, store, owner, "UPSRT1")

	require.NoError(t, store.UpsertMembership(ctx, &models.Membership{
		UserID: user.ID, GroupID: group.ID, Status: models.MembershipInvited, InvitedByEmail: owner.Email,
	}))
	require.NoError(t, store.UpsertMembership(ctx, &models.Membership{
		UserID: user.ID, GroupID: group.ID, Status: models.MembershipActive, JoinedAt: 200,
	}))

	m, err := store.GetMembership(ctx, user.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, models.MembershipActive, m.Status)
	assert.EqualValues(t, 200, m.JoinedAt)
	assert.Empty(t, m.InvitedByEmail)
}

func TestListGroupsByMember_ActiveOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, store, "iris")
	user := seedUser(t, store, "jack")
	active := seedGroup(t, store, owner, "ACTIVE")
	left := seedGroup(t, store, owner, "LEFTGP")
	invited := seedGroup(t, store, owner, "INVITE")

	require.NoError(t, store.UpsertMembership(ctx, &models.Membership{UserID: user.ID, GroupID: active.ID, Status: models.MembershipActive, JoinedAt: 1}))
	require.NoError(t, store.UpsertMembership(ctx, &models.Membership{UserID: user.ID, GroupID: left.ID, Status: models.MembershipLeft}))
	require.NoError(t, store.UpsertMembership(ctx, &models.Membership{UserID: user.ID, GroupID: invited.ID, Status: models.MembershipInvited}))

	groups, err := store.ListGroupsByMember(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, active.ID, groups[0].ID)
}

func TestListPendingInvitations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	owner := seedUser(t, store, "kate")
	user := seedUser(t, store, "liam")
	group := seedGroup(t, store, owner, "PENDNG")

	require.NoError(t, store.UpsertMembership(ctx, &models.Membership{
		UserID: user.ID, GroupID: group.ID, Status: models.MembershipInvited, InvitedByEmail: owner.Email,
	}))

	invitations, err := store.ListPendingInvitations(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, invitations, 1)
	assert.Equal(t, group.ID, invitations[0].GroupID)
	assert.Equal(t, group.Name, invitations[0].GroupName)
	assert.Equal(t, owner.Email, invitations[0].InvitedByEmail)
}

func TestCreateExpense_SharesAlwaysUnpaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "mona")

	expense := &models.Expense{CreatedBy: user.ID, AddedAt: 100, Title: "lunch", Category: "Food", Amount: 10}
	require.NoError(t, store.CreateExpense(ctx, expense, []models.Share{
		{UserID: user.ID, Percent: 100, Paid: true}, // paid flag must be ignored
	}))
	assert.NotZero(t, expense.ID)

	share, err := store.GetShare(ctx, user.ID, expense.ID)
	require.NoError(t, err)
	assert.False(t, share.Paid)
	assert.EqualValues(t, 100, share.Percent)
}

func TestUpdateExpense_ReconcilesShares(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := seedUser(t, store, "ned")
	b := seedUser(t, store, "olga")
	c := seedUser(t, store, "pete")

	expense := &models.Expense{CreatedBy: a.ID, AddedAt: 100, Title: "rent", Category: "House", Amount: 900}
	require.NoError(t, store.CreateExpense(ctx, expense, []models.Share{
		{UserID: a.ID, Percent: 50},
		{UserID: b.ID, Percent: 50},
	}))
	require.NoError(t, store.MarkSharePaid(ctx, a.ID, expense.ID))

	// Keep a (new percent), drop b, add c.
	expense.Amount = 1200
	require.NoError(t, store.UpdateExpense(ctx, expense, []models.Share{
		{UserID: a.ID, Percent: 40},
		{UserID: c.ID, Percent: 60},
	}))

	shares, err := store.ListShares(ctx, expense.ID)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	byUser := make(map[string]models.Share)
	for _, sh := range shares {
		byUser[sh.UserID] = sh
	}

	// a's paid flag survives the in-place update.
	assert.EqualValues(t, 40, byUser[a.ID].Percent)
	assert.True(t, byUser[a.ID].Paid)
	// c enters unpaid.
	assert.EqualValues(t, 60, byUser[c.ID].Percent)
	assert.False(t, byUser[c.ID].Paid)
	// b is gone.
	_, err = store.GetShare(ctx, b.ID, expense.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateExpense_EmptyShareListLeavesSharesAlone(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "quinn")

	expense := &models.Expense{CreatedBy: user.ID, AddedAt: 100, Title: "gas", Category: "Vehicle", Amount: 60}
	require.NoError(t, store.CreateExpense(ctx, expense, []models.Share{{UserID: user.ID, Percent: 100}}))

	expense.Title = "fuel"
	require.NoError(t, store.UpdateExpense(ctx, expense, nil))

	shares, err := store.ListShares(ctx, expense.ID)
	require.NoError(t, err)
	assert.Len(t, shares, 1)
}

func TestMarkSharePaid(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "rosa")

	expense := &models.Expense{CreatedBy: user.ID, AddedAt: 100, Title: "tickets", Category: "Entertainment", Amount: 30}
	require.NoError(t, store.CreateExpense(ctx, expense, []models.Share{{UserID: user.ID, Percent: 100}}))

	require.NoError(t, store.MarkSharePaid(ctx, user.ID, expense.ID))
	// Idempotent.
	require.NoError(t, store.MarkSharePaid(ctx, user.ID, expense.ID))

	share, err := store.GetShare(ctx, user.ID, expense.ID)
	require.NoError(t, err)
	assert.True(t, share.Paid)

	err = store.MarkSharePaid(ctx, "nobody", expense.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListPersonalExpenses_ExcludesGroupExpenses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "sven")
	group := seedGroup(t, store, user, "PERSNL")

	personal := &models.Expense{CreatedBy: user.ID, AddedAt: 200, Title: "book", Category: "Personal", Amount: 15}
	require.NoError(t, store.CreateExpense(ctx, personal, nil))

	grouped := &models.Expense{GroupID: group.ID, CreatedBy: user.ID, AddedAt: 100, Title: "pizza", Category: "Food", Amount: 25}
	require.NoError(t, store.CreateExpense(ctx, grouped, nil))

	expenses, err := store.ListPersonalExpenses(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	assert.Equal(t, "book", expenses[0].Title)
	assert.Empty(t, expenses[0].GroupID)
}

func TestListGroupExpensesForUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := seedUser(t, store, "tina")
	b := seedUser(t, store, "ugo")
	group := seedGroup(t, store, a, "GRPEXP")

	withShare := &models.Expense{GroupID: group.ID, CreatedBy: a.ID, AddedAt: 100, Title: "dinner", Category: "Food", Amount: 50}
	require.NoError(t, store.CreateExpense(ctx, withShare, []models.Share{
		{UserID: a.ID, Percent: 60},
		{UserID: b.ID, Percent: 40},
	}))

	withoutShare := &models.Expense{GroupID: group.ID, CreatedBy: a.ID, AddedAt: 200, Title: "cab", Category: "Transportation", Amount: 20}
	require.NoError(t, store.CreateExpense(ctx, withoutShare, []models.Share{{UserID: a.ID, Percent: 100}}))

	expenses, shares, err := store.ListGroupExpensesForUser(ctx, group.ID, b.ID)
	require.NoError(t, err)
	// b sees every group expense, even ones they hold no share of.
	require.Len(t, expenses, 2)

	sh, ok := shares[withShare.ID]
	require.True(t, ok)
	assert.EqualValues(t, 40, sh.Percent)

	_, ok = shares[withoutShare.ID]
	assert.False(t, ok)
}

func TestSummarizeByDay(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := seedUser(t, store, "vera")
	other := seedUser(t, store, "wade")

	const (
		day1 = 1700000000 // 2023-11-14
		day2 = 1700100000 // 2023-11-16
	)

	for _, e := range []*models.Expense{
		{CreatedBy: user.ID, AddedAt: day1, Title: "a", Category: "Food", Amount: 10},
		{CreatedBy: user.ID, AddedAt: day1 + 60, Title: "b", Category: "Food", Amount: 5},
		{CreatedBy: user.ID, AddedAt: day2, Title: "c", Category: "Food", Amount: 7},
		{CreatedBy: other.ID, AddedAt: day1, Title: "d", Category: "Food", Amount: 99},
	} {
		require.NoError(t, store.CreateExpense(ctx, e, nil))
	}

	totals, err := store.SummarizeByDay(ctx, user.ID, day1, day2)
	require.NoError(t, err)
	require.Len(t, totals, 2)

	assert.Equal(t, "2023-11-14", totals[0].Period)
	assert.EqualValues(t, 15, totals[0].Total)
	assert.Equal(t, "2023-11-16", totals[1].Period)
	assert.EqualValues(t, 7, totals[1].Total)

	// Range filter excludes everything.
	totals, err = store.SummarizeByDay(ctx, user.ID, 0, day1-1)
	require.NoError(t, err)
	assert.Empty(t, totals)
}
