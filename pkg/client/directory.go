package client

import (
	"strings"

	"userdir-service/internal/model"
)

// defaultPageSize is the fixed number of users shown per page
const defaultPageSize = 5

// DirectoryView holds the directory list state: the full fetched list, a
// case-insensitive substring filter over the name, and client-side
// pagination. Mutations go through the API and then force a full re-fetch;
// the view never patches its own cache.
type DirectoryView struct {
	client   *Client
	users    []model.User
	query    string
	page     int
	pageSize int
}

// NewDirectoryView creates a directory view bound to the given client
func NewDirectoryView(c *Client) *DirectoryView {
	return &DirectoryView{
		client:   c,
		page:     1,
		pageSize: defaultPageSize,
	}
}

// Refresh re-fetches the full user list from the API
func (v *DirectoryView) Refresh() error {
	users, err := v.client.ListUsers()
	if err != nil {
		return err
	}
	v.users = users
	v.clampPage()
	return nil
}

// SetQuery updates the name filter and resets to the first page
func (v *DirectoryView) SetQuery(query string) {
	v.query = query
	v.page = 1
}

// Query returns the current name filter
func (v *DirectoryView) Query() string {
	return v.query
}

// Filtered returns the users whose name contains the query,
// case-insensitively
func (v *DirectoryView) Filtered() []model.User {
	if v.query == "" {
		return v.users
	}
	query := strings.ToLower(v.query)
	filtered := []model.User{}
	for _, user := range v.users {
		if strings.Contains(strings.ToLower(user.Name), query) {
			filtered = append(filtered, user)
		}
	}
	return filtered
}

// Page returns the users on the current page of the filtered list
func (v *DirectoryView) Page() []model.User {
	filtered := v.Filtered()
	last := v.page * v.pageSize
	first := last - v.pageSize
	if first >= len(filtered) {
		return []model.User{}
	}
	if last > len(filtered) {
		last = len(filtered)
	}
	return filtered[first:last]
}

// CurrentPage returns the 1-based current page number
func (v *DirectoryView) CurrentPage() int {
	return v.page
}

// TotalPages returns the page count over the filtered list, at least 1
func (v *DirectoryView) TotalPages() int {
	pages := (len(v.Filtered()) + v.pageSize - 1) / v.pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// NextPage advances one page unless already on the last
func (v *DirectoryView) NextPage() {
	if v.page < v.TotalPages() {
		v.page++
	}
}

// PrevPage goes back one page unless already on the first
func (v *DirectoryView) PrevPage() {
	if v.page > 1 {
		v.page--
	}
}

// CreateUser creates a user and re-fetches the list
func (v *DirectoryView) CreateUser(form UserForm) error {
	if _, err := v.client.CreateUser(form); err != nil {
		return err
	}
	return v.Refresh()
}

// EditUser applies a partial update to a user and re-fetches the list
func (v *DirectoryView) EditUser(id uint, fields map[string]interface{}) error {
	if _, err := v.client.PatchUser(id, fields); err != nil {
		return err
	}
	return v.Refresh()
}

// DeleteUser removes a user and re-fetches the list
func (v *DirectoryView) DeleteUser(id uint) error {
	if err := v.client.DeleteUser(id); err != nil {
		return err
	}
	return v.Refresh()
}

func (v *DirectoryView) clampPage() {
	if total := v.TotalPages(); v.page > total {
		v.page = total
	}
	if v.page < 1 {
		v.page = 1
	}
}
