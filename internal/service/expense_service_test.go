package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dongapp/dong/internal/models"
)

func TestCreateExpense(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	user := seedUser(t, store, "user@example.com")

	expense, err := svc.CreateExpense(ctx, user.ID, ExpensePayload{
		AddedAt:  100,
		Title:    "groceries",
		Category: "Food",
		Amount:   42.5,
	}, []ShareInput{{UserID: user.ID, Percent: 100}})
	require.NoError(t, err)

	assert.NotZero(t, expense.ID)
	assert.Equal(t, user.ID, expense.CreatedBy)
	assert.NotZero(t, expense.CreatedAt)

	share, err := store.GetShare(ctx, user.ID, expense.ID)
	require.NoError(t, err)
	assert.False(t, share.Paid)
}

func TestCreateExpense_InvalidCategory(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	user := seedUser(t, store, "user@example.com")

	_, err := svc.CreateExpense(ctx, user.ID, ExpensePayload{
		Title:    "mystery",
		Category: "Gambling",
		Amount:   10,
	}, nil)
	assert.ErrorIs(t, err, ErrInvalidCategory)
}

func TestUpdateExpense_CreatorOnly(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	creator := seedUser(t, store, "creator@example.com")
	other := seedUser(t, store, "other@example.com")

	expense, err := svc.CreateExpense(ctx, creator.ID, ExpensePayload{
		AddedAt: 100, Title: "taxi", Category: "Transportation", Amount: 18,
	}, nil)
	require.NoError(t, err)

	_, err = svc.UpdateExpense(ctx, other.ID, expense.ID, ExpensePayload{
		AddedAt: 100, Title: "taxi", Category: "Transportation", Amount: 20,
	}, nil)
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := svc.UpdateExpense(ctx, creator.ID, expense.ID, ExpensePayload{
		AddedAt: 100, Title: "taxi home", Category: "Transportation", Amount: 20,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "taxi home", updated.Title)
	assert.EqualValues(t, 20, updated.Amount)

	// Unknown expense reports not-found, not forbidden.
	_, err = svc.UpdateExpense(ctx, other.ID, 9999, ExpensePayload{
		Title: "x", Category: "Other", Amount: 1,
	}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteExpense_CreatorOnly(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	creator := seedUser(t, store, "creator@example.com")
	other := seedUser(t, store, "other@example.com")

	expense, err := svc.CreateExpense(ctx, creator.ID, ExpensePayload{
		AddedAt: 100, Title: "snack", Category: "Food", Amount: 4,
	}, []ShareInput{{UserID: creator.ID, Percent: 100}})
	require.NoError(t, err)

	assert.ErrorIs(t, svc.DeleteExpense(ctx, other.ID, expense.ID), ErrForbidden)

	require.NoError(t, svc.DeleteExpense(ctx, creator.ID, expense.ID))
	_, err = svc.GetExpense(ctx, expense.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkPaid(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	a := seedUser(t, store, "a@example.com")
	b := seedUser(t, store, "b@example.com")

	expense, err := svc.CreateExpense(ctx, a.ID, ExpensePayload{
		AddedAt: 100, Title: "dinner", Category: "Food", Amount: 60,
	}, []ShareInput{{UserID: a.ID, Percent: 50}, {UserID: b.ID, Percent: 50}})
	require.NoError(t, err)

	require.NoError(t, svc.MarkPaid(ctx, b.ID, expense.ID))
	// Idempotent.
	require.NoError(t, svc.MarkPaid(ctx, b.ID, expense.ID))

	share, err := store.GetShare(ctx, b.ID, expense.ID)
	require.NoError(t, err)
	assert.True(t, share.Paid)

	// No share, no payment to record.
	other := seedUser(t, store, "c@example.com")
	assert.ErrorIs(t, svc.MarkPaid(ctx, other.ID, expense.ID), ErrNotFound)
}

func TestListGroupExpenses_Settlement(t *testing.T) {
	store := newTestStore(t)
	groups := newGroupService(store)
	svc := newExpenseService(store)
	ctx := context.Background()

	a := seedUser(t, store, "a@example.com")
	b := seedUser(t, store, "b@example.com")

	group, err := groups.CreateGroup(ctx, a.ID, "Flat", "")
	require.NoError(t, err)
	require.NoError(t, groups.Join(ctx, b.ID, group.ID))

	// A pays 100 for dinner, splits 60/40 with B.
	dinner, err := svc.CreateExpense(ctx, a.ID, ExpensePayload{
		GroupID: group.ID, AddedAt: 100, Title: "dinner", Category: "Food", Amount: 100,
	}, []ShareInput{{UserID: a.ID, Percent: 60}, {UserID: b.ID, Percent: 40}})
	require.NoError(t, err)

	// An expense B holds no share of.
	soloExpense, err := svc.CreateExpense(ctx, a.ID, ExpensePayload{
		GroupID: group.ID, AddedAt: 200, Title: "cab", Category: "Transportation", Amount: 20,
	}, []ShareInput{{UserID: a.ID, Percent: 100}})
	require.NoError(t, err)

	// An expense where B's share is 0%.
	zeroShare, err := svc.CreateExpense(ctx, a.ID, ExpensePayload{
		GroupID: group.ID, AddedAt: 300, Title: "wine", Category: "Food", Amount: 30,
	}, []ShareInput{{UserID: a.ID, Percent: 100}, {UserID: b.ID, Percent: 0}})
	require.NoError(t, err)

	view, err := svc.ListGroupExpenses(ctx, b.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, view, 3)

	byID := make(map[int64]models.GroupExpense)
	for _, ge := range view {
		byID[ge.ID] = ge
	}

	// B owes 40% of 100.
	assert.EqualValues(t, 40, byID[dinner.ID].ShareAmount)
	assert.Equal(t, models.SettlementUnpaid, byID[dinner.ID].Settlement)

	// No share row: nothing owed.
	assert.Zero(t, byID[soloExpense.ID].ShareAmount)
	assert.Equal(t, models.SettlementNotApplicable, byID[soloExpense.ID].Settlement)

	// A 0% share owes nothing either.
	assert.Zero(t, byID[zeroShare.ID].ShareAmount)
	assert.Equal(t, models.SettlementNotApplicable, byID[zeroShare.ID].Settlement)

	// After B settles the dinner, the view flips to paid.
	require.NoError(t, svc.MarkPaid(ctx, b.ID, dinner.ID))
	view, err = svc.ListGroupExpenses(ctx, b.ID, group.ID)
	require.NoError(t, err)
	for _, ge := range view {
		if ge.ID == dinner.ID {
			assert.Equal(t, models.SettlementPaid, ge.Settlement)
			assert.EqualValues(t, 40, ge.ShareAmount)
		}
	}

	// A's own view of the same dinner.
	view, err = svc.ListGroupExpenses(ctx, a.ID, group.ID)
	require.NoError(t, err)
	for _, ge := range view {
		if ge.ID == dinner.ID {
			assert.EqualValues(t, 60, ge.ShareAmount)
			assert.Equal(t, models.SettlementUnpaid, ge.Settlement)
		}
	}
}

func TestSummaryByPeriod(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	user := seedUser(t, store, "user@example.com")

	const day = 1700000000
	for _, amount := range []float64{10, 5} {
		_, err := svc.CreateExpense(ctx, user.ID, ExpensePayload{
			AddedAt: day, Title: "x", Category: "Food", Amount: amount,
		}, nil)
		require.NoError(t, err)
	}

	totals, err := svc.SummaryByPeriod(ctx, user.ID, day-1, day+1)
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.EqualValues(t, 15, totals[0].Total)

	// Inverted range is rejected.
	_, err = svc.SummaryByPeriod(ctx, user.ID, day+1, day-1)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestUpdateExpense_SharesReconciled(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	a := seedUser(t, store, "a@example.com")
	b := seedUser(t, store, "b@example.com")
	c := seedUser(t, store, "c@example.com")

	expense, err := svc.CreateExpense(ctx, a.ID, ExpensePayload{
		AddedAt: 100, Title: "rent", Category: "House", Amount: 900,
	}, []ShareInput{{UserID: a.ID, Percent: 50}, {UserID: b.ID, Percent: 50}})
	require.NoError(t, err)
	require.NoError(t, svc.MarkPaid(ctx, a.ID, expense.ID))

	_, err = svc.UpdateExpense(ctx, a.ID, expense.ID, ExpensePayload{
		AddedAt: 100, Title: "rent", Category: "House", Amount: 900,
	}, []ShareInput{{UserID: a.ID, Percent: 40}, {UserID: c.ID, Percent: 60}})
	require.NoError(t, err)

	shares, err := store.ListShares(ctx, expense.ID)
	require.NoError(t, err)
	require.Len(t, shares, 2)

	byUser := make(map[string]models.Share)
	for _, sh := range shares {
		byUser[sh.UserID] = sh
	}
	assert.True(t, byUser[a.ID].Paid, "kept share keeps its paid flag")
	assert.False(t, byUser[c.ID].Paid, "new share starts unpaid")
	assert.NotContains(t, byUser, b.ID)
}

func TestListExpenseMembers(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	a := seedUser(t, store, "a@example.com")
	b := seedUser(t, store, "b@example.com")

	expense, err := svc.CreateExpense(ctx, a.ID, ExpensePayload{
		AddedAt: 100, Title: "pizza", Category: "Food", Amount: 25,
	}, []ShareInput{{UserID: a.ID, Percent: 50}, {UserID: b.ID, Percent: 50}})
	require.NoError(t, err)

	members, err := svc.ListExpenseMembers(ctx, expense.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)

	_, err = svc.ListExpenseMembers(ctx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIsCreator(t *testing.T) {
	store := newTestStore(t)
	svc := newExpenseService(store)
	ctx := context.Background()

	a := seedUser(t, store, "a@example.com")
	b := seedUser(t, store, "b@example.com")

	expense, err := svc.CreateExpense(ctx, a.ID, ExpensePayload{
		AddedAt: 100, Title: "coffee", Category: "Food", Amount: 3,
	}, nil)
	require.NoError(t, err)

	isCreator, err := svc.IsCreator(ctx, a.ID, expense.ID)
	require.NoError(t, err)
	assert.True(t, isCreator)

	isCreator, err = svc.IsCreator(ctx, b.ID, expense.ID)
	require.NoError(t, err)
	assert.False(t, isCreator)
}
