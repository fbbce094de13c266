package service

import (
	"strings"

	"github.com/noah-isme/findnest-api/internal/models"
)

// CountUsers returns the dashboard user total for the caller. visible is false for staff,
// whose dashboard has no user card. Super admins count every account, themselves included.
func CountUsers(users []models.User, caller models.Principal) (count int, visible bool) {
	switch caller.Role {
	case models.RoleAdmin:
		for _, u := range users {
			if u.Role == models.RoleStaff && u.Department == caller.Department {
				count++
			}
		}
		return count, true
	case models.RoleSuperAdmin:
		return len(users), true
	default:
		return 0, false
	}
}

// ScopeDirectory returns the users the caller may manage, narrowed by a free-text search.
// Admins see staff of their own department and super admins see everyone; the caller is never listed.
func ScopeDirectory(users []models.User, caller models.Principal, query models.DirectoryQuery) []models.User {
	term := strings.ToLower(strings.TrimSpace(query.Search))
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if string(u.ID) == caller.ID {
			continue
		}
		switch caller.Role {
		case models.RoleAdmin:
			if u.Role != models.RoleStaff || u.Department != caller.Department {
				continue
			}
		case models.RoleSuperAdmin:
		default:
			continue
		}
		if term != "" && !userMatches(u, term) {
			continue
		}
		out = append(out, u)
	}
	return out
}

func userMatches(u models.User, term string) bool {
	for _, f := range []string{u.FirstName, u.MiddleName, u.LastName, u.Department, string(u.Role)} {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
