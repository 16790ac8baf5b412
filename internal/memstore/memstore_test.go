package memstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskify/internal/errs"
)

func TestAddAndGetRoundTrip(t *testing.T) {
	s := New()

	created, err := s.Add("Buy groceries", "")
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Buy groceries", created.Title)
	assert.Empty(t, created.Description)
	assert.False(t, created.Completed)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	tasks := s.List()
	require.Len(t, tasks, 1)
	assert.Equal(t, created, tasks[0])
}

func TestAddTrimsTitle(t *testing.T) {
	s := New()

	created, err := s.Add("  Buy groceries  ", "milk and eggs")
	require.NoError(t, err)
	assert.Equal(t, "Buy groceries", created.Title)
	assert.Equal(t, "milk and eggs", created.Description)
}

func TestAddRejectsEmptyTitle(t *testing.T) {
	s := New()

	for _, title := range []string{"", "   ", "\t\n"} {
		_, err := s.Add(title, "")
		require.Error(t, err, "title %q", title)
		assert.True(t, errs.IsValidation(err))
	}
	assert.Zero(t, s.Count())
	assert.Empty(t, s.List())
}

func TestIDUniqueness(t *testing.T) {
	s := New()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		task, err := s.Add("task", "")
		require.NoError(t, err)
		assert.False(t, seen[task.ID], "duplicate id %s", task.ID)
		seen[task.ID] = true
	}
}

func TestGetByShortID(t *testing.T) {
	s := New()

	created, err := s.Add("short id lookup", "")
	require.NoError(t, err)

	got, err := s.Get(created.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestGetNotFound(t *testing.T) {
	s := New()
	_, err := s.Add("something", "")
	require.NoError(t, err)

	for _, id := range []string{"", "   ", "ffffffff", "no-such-id"} {
		_, err := s.Get(id)
		assert.ErrorIs(t, err, errs.ErrNotFound, "id %q", id)
	}
}

func TestAmbiguousShortID(t *testing.T) {
	s := New()

	// Force two ids sharing a prefix.
	a, err := s.Add("first", "")
	require.NoError(t, err)
	b, err := s.Add("second", "")
	require.NoError(t, err)
	s.tasks["aaaa1111-0000-0000-0000-000000000000"] = s.tasks[a.ID]
	s.tasks["aaaa2222-0000-0000-0000-000000000000"] = s.tasks[b.ID]
	delete(s.tasks, a.ID)
	delete(s.tasks, b.ID)

	_, err = s.Get("aaaa")
	require.Error(t, err)
	assert.True(t, errs.IsAmbiguousID(err))
	assert.NotErrorIs(t, err, errs.ErrNotFound)

	got, err := s.Get("aaaa1")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Title)
}

func TestUpdatePartialFields(t *testing.T) {
	s := New()

	created, err := s.Add("original", "keep me")
	require.NoError(t, err)

	title := "  New  "
	updated, err := s.Update(created.ID, Update{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "keep me", updated.Description)

	desc := "changed"
	updated, err = s.Update(created.ID, Update{Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)
	assert.Equal(t, "changed", updated.Description)
}

func TestUpdateEmptyTitleLeavesTaskUnchanged(t *testing.T) {
	s := New()

	created, err := s.Add("original", "desc")
	require.NoError(t, err)

	empty := "   "
	other := "replaced"
	_, err = s.Update(created.ID, Update{Title: &empty, Description: &other})
	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))

	got, err := s.Get(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Title)
	assert.Equal(t, "desc", got.Description)
	assert.Equal(t, created.UpdatedAt, got.UpdatedAt)
}

func TestToggleCompletionSymmetry(t *testing.T) {
	s := New()

	task, err := s.Add("toggle me", "")
	require.NoError(t, err)
	require.False(t, task.Completed)

	now := task.UpdatedAt
	s.now = func() time.Time { now = now.Add(time.Second); return now }

	first, err := s.ToggleCompletion(task.ID)
	require.NoError(t, err)
	assert.True(t, first.Completed)
	assert.True(t, first.UpdatedAt.After(task.UpdatedAt))

	second, err := s.ToggleCompletion(task.ID)
	require.NoError(t, err)
	assert.False(t, second.Completed)
	assert.True(t, second.UpdatedAt.After(first.UpdatedAt))
}

func TestDeleteIdempotent(t *testing.T) {
	s := New()

	task, err := s.Add("delete me", "")
	require.NoError(t, err)

	removed, err := s.Delete(task.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(task.ID)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteLeavesOthers(t *testing.T) {
	s := New()

	var ids []string
	for _, title := range []string{"one", "two", "three"} {
		task, err := s.Add(title, "")
		require.NoError(t, err)
		ids = append(ids, task.ID)
	}

	removed, err := s.Delete(ids[1])
	require.NoError(t, err)
	require.True(t, removed)

	tasks := s.List()
	require.Len(t, tasks, 2)
	for _, task := range tasks {
		assert.NotEqual(t, ids[1], task.ID)
	}
}
