package client

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"userdir-service/internal/model"
)

func seedUsers(n int) []model.User {
	faker := gofakeit.New(42)
	users := make([]model.User, 0, n)
	for i := 1; i <= n; i++ {
		users = append(users, model.User{
			ID:    uint(i),
			Name:  faker.Name(),
			Email: faker.Email(),
		})
	}
	return users
}

func newTestView(t *testing.T, api *stubAPI) *DirectoryView {
	t.Helper()

	view := NewDirectoryView(newTestClient(t, api))
	require.NoError(t, view.Refresh())
	return view
}

func TestDirectoryView_Pagination(t *testing.T) {
	view := newTestView(t, &stubAPI{users: seedUsers(7), nextID: 7})

	assert.Equal(t, 1, view.CurrentPage())
	assert.Equal(t, 2, view.TotalPages())
	assert.Len(t, view.Page(), 5)

	view.NextPage()
	assert.Equal(t, 2, view.CurrentPage())
	assert.Len(t, view.Page(), 2)

	// Already on the last page
	view.NextPage()
	assert.Equal(t, 2, view.CurrentPage())

	view.PrevPage()
	view.PrevPage()
	view.PrevPage()
	assert.Equal(t, 1, view.CurrentPage())
}

func TestDirectoryView_FilterIsCaseInsensitive(t *testing.T) {
	api := &stubAPI{users: []model.User{
		{ID: 1, Name: "Alice Smith"},
		{ID: 2, Name: "Bob Jones"},
		{ID: 3, Name: "alice cooper"},
	}, nextID: 3}
	view := newTestView(t, api)

	view.SetQuery("ALICE")
	filtered := view.Filtered()
	require.Len(t, filtered, 2)
	assert.Equal(t, "Alice Smith", filtered[0].Name)
	assert.Equal(t, "alice cooper", filtered[1].Name)

	view.SetQuery("nobody")
	assert.Empty(t, view.Filtered())
	assert.Equal(t, 1, view.TotalPages())
	assert.Empty(t, view.Page())
}

func TestDirectoryView_SetQueryResetsPage(t *testing.T) {
	view := newTestView(t, &stubAPI{users: seedUsers(12), nextID: 12})

	view.NextPage()
	view.NextPage()
	require.Equal(t, 3, view.CurrentPage())

	view.SetQuery("a")
	assert.Equal(t, 1, view.CurrentPage())
}

func TestDirectoryView_RefreshClampsPage(t *testing.T) {
	api := &stubAPI{users: seedUsers(6), nextID: 6}
	view := newTestView(t, api)

	view.NextPage()
	require.Equal(t, 2, view.CurrentPage())

	// The second page disappears once the list shrinks
	api.users = api.users[:3]
	require.NoError(t, view.Refresh())
	assert.Equal(t, 1, view.CurrentPage())
}

func TestDirectoryView_MutationsRefetch(t *testing.T) {
	api := &stubAPI{users: seedUsers(2), nextID: 2}
	view := newTestView(t, api)
	calls := api.listCalls

	require.NoError(t, view.CreateUser(UserForm{Name: "Carol", Email: "carol@example.com", Password: "p"}))
	assert.Equal(t, calls+1, api.listCalls)
	assert.Len(t, view.Filtered(), 3)

	require.NoError(t, view.EditUser(3, map[string]interface{}{"name": "Caroline"}))
	assert.Equal(t, calls+2, api.listCalls)

	require.NoError(t, view.DeleteUser(3))
	assert.Equal(t, calls+3, api.listCalls)
	assert.Len(t, view.Filtered(), 2)
}
