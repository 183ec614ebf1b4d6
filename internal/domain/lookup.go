package domain

import (
	"fmt"
	"strings"
)

// Location is a physical site tickets are raised against.
type Location struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Category classifies tickets.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User is a staff account that tickets can be assigned to.
type User struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// assignableRoles lists roles eligible for ticket assignment.
var assignableRoles = map[string]bool{
	"admin":      true,
	"technician": true,
	"support":    true,
	"staff":      true,
}

// Assignable reports whether the user can be assigned tickets.
func (u User) Assignable() bool {
	return assignableRoles[strings.ToLower(u.Role)]
}

// LookupTables holds the read-mostly reference data loaded wholesale at cache
// initialization: id to display-name maps plus the user directory.
type LookupTables struct {
	Locations  map[string]string
	Categories map[string]string
	Users      map[string]User
}

// NewLookupTables returns empty, non-nil tables.
func NewLookupTables() LookupTables {
	return LookupTables{
		Locations:  map[string]string{},
		Categories: map[string]string{},
		Users:      map[string]User{},
	}
}

// LocationName resolves a location id to its display name, empty when absent.
func (l LookupTables) LocationName(id *string) string {
	if id == nil {
		return ""
	}
	return l.Locations[*id]
}

// CategoryName resolves a category id to its display name, empty when absent.
func (l LookupTables) CategoryName(id *string) string {
	if id == nil {
		return ""
	}
	return l.Categories[*id]
}

// AssigneeDisplayName resolves an assignee reference for display. Falls back
// to a synthetic "User {id}" label for unknown ids and "Unassigned" when the
// reference is nil or empty.
func (l LookupTables) AssigneeDisplayName(id *string) string {
	if id == nil || *id == "" {
		return "Unassigned"
	}
	if user, ok := l.Users[*id]; ok && user.FullName != "" {
		return user.FullName
	}
	return fmt.Sprintf("User %s", *id)
}

// AssignableUsers returns the users eligible for assignment.
func (l LookupTables) AssignableUsers() []User {
	users := make([]User, 0, len(l.Users))
	for _, user := range l.Users {
		if user.Assignable() {
			users = append(users, user)
		}
	}
	return users
}
