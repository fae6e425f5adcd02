// Package routes decides which application areas a role may enter.
package routes

import (
	"strings"

	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

const (
	LoginPath = "/login"

	adminPrefix = "/admin"
	agentPrefix = "/agent"
)

// Reason explains a redirect.
type Reason int

const (
	Allowed Reason = iota
	NoSession
	WrongRole
	UnknownArea
)

func (r Reason) String() string {
	switch r {
	case Allowed:
		return "allowed"
	case NoSession:
		return "please login first"
	case WrongRole:
		return "unauthorized access"
	case UnknownArea:
		return "unknown area"
	}
	return "unknown"
}

// Decision is the outcome of guarding a path.
type Decision struct {
	Allow    bool
	Redirect string
	Reason   Reason
}

// Guard decides whether ident may open path. ident is nil when there is no
// usable session.
func Guard(ident *session.Identity, path string) Decision {
	if ident == nil {
		return deny(NoSession)
	}

	switch {
	case hasPrefix(path, adminPrefix):
		if ident.Role == session.RoleAdmin {
			return Decision{Allow: true, Reason: Allowed}
		}
		return deny(WrongRole)
	case hasPrefix(path, agentPrefix):
		if ident.Role.IsAgent() {
			return Decision{Allow: true, Reason: Allowed}
		}
		return deny(WrongRole)
	}
	return deny(UnknownArea)
}

func deny(reason Reason) Decision {
	return Decision{Redirect: LoginPath, Reason: reason}
}

// hasPrefix matches whole path segments so /administrator is not /admin.
func hasPrefix(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix) {
		return false
	}
	rest := path[len(prefix):]
	return rest == "" || rest[0] == '/' || rest[0] == '?'
}

// Link is one entry of a role's navigation.
type Link struct {
	Label string
	Path  string
}

// Home is where a role lands after logging in.
func Home(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return "/admin/dashboard"
	case session.RoleKarachiAgent, session.RoleDubaiAgent:
		return "/agent/dashboard"
	}
	return LoginPath
}

// Links returns the navigation entries available to role.
func Links(role session.Role) []Link {
	switch role {
	case session.RoleAdmin:
		return []Link{
			{Label: "Dashboard", Path: "/admin/dashboard"},
			{Label: "Leads", Path: "/admin/leads"},
			{Label: "Manage Agents", Path: "/admin/agents"},
			{Label: "Notifications", Path: "/admin/notifications"},
		}
	case session.RoleKarachiAgent, session.RoleDubaiAgent:
		return []Link{
			{Label: "Dashboard", Path: "/agent/dashboard"},
			{Label: "Leads", Path: "/agent/leads"},
			{Label: "Notifications", Path: "/agent/notifications"},
		}
	}
	return nil
}

// NotificationsPath is the per-role notification page.
func NotificationsPath(role session.Role) string {
	switch role {
	case session.RoleAdmin:
		return "/admin/notifications"
	case session.RoleKarachiAgent, session.RoleDubaiAgent:
		return "/agent/notifications"
	}
	return LoginPath
}
