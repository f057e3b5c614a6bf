// Package perms holds the role to permission mapping. The table is built
// once at startup and passed to whatever needs it; it is never mutated
// after construction.
package perms

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

const (
	ViewMovies          = "viewMovies"
	CreateMovies        = "createMovies"
	DeleteMovies        = "deleteMovies"
	ViewMembers         = "viewMembers"
	HandleMembers       = "handleMembers"
	ViewSubscriptions   = "viewSubscriptions"
	ManageSubscriptions = "manageSubscriptions"
	SyncMembers         = "syncMembers"
	ManageUsers         = "manageUsers"
)

type Table struct {
	roles map[string]map[string]struct{}
}

// New builds a table from a role -> permission list mapping. Role names
// are matched case-insensitively.
func New(roles map[string][]string) *Table {
	t := &Table{roles: make(map[string]map[string]struct{}, len(roles))}
	for role, list := range roles {
		set := make(map[string]struct{}, len(list))
		for _, p := range list {
			if p != "" {
				set[p] = struct{}{}
			}
		}
		t.roles[strings.ToLower(role)] = set
	}
	return t
}

// Default mirrors the shipped permissions file.
func Default() *Table {
	return New(map[string][]string{
		RoleUser: {
			ViewMovies, ViewMembers, ViewSubscriptions,
		},
		RoleModerator: {
			ViewMovies, CreateMovies, DeleteMovies,
			ViewMembers, HandleMembers,
			ViewSubscriptions, ManageSubscriptions,
		},
		RoleAdmin: {
			ViewMovies, CreateMovies, DeleteMovies,
			ViewMembers, HandleMembers,
			ViewSubscriptions, ManageSubscriptions,
			SyncMembers, ManageUsers,
		},
	})
}

// LoadFile reads a {"roles": {"user": [...], ...}} JSON document.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("perms: read %s: %w", path, err)
	}
	var doc struct {
		Roles map[string][]string `json:"roles"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("perms: parse %s: %w", path, err)
	}
	return New(doc.Roles), nil
}

// ForRole returns a copy of the role's permission list, sorted so repeated
// calls yield identical slices. Unknown roles get an empty list.
func (t *Table) ForRole(role string) []string {
	set, ok := t.roles[strings.ToLower(role)]
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Allowed reports whether the role grants the permission. Admin holds every
// permission regardless of the table contents.
func (t *Table) Allowed(role, perm string) bool {
	r := strings.ToLower(role)
	if r == RoleAdmin {
		return true
	}
	set, ok := t.roles[r]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// KnownRole reports whether the role is one of the closed role set.
func KnownRole(role string) bool {
	switch strings.ToLower(role) {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
