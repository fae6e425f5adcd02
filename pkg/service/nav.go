package service

import (
	"errors"

	"github.com/Saad0095/leaders-tax-cli/pkg/output"
	"github.com/Saad0095/leaders-tax-cli/pkg/routes"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

// Links prints the navigation available to the signed-in role
func Links(deps Deps) error {
	ident, err := identity(deps.Tokens)
	if err != nil {
		return err
	}

	links := routes.Links(ident.Role)
	rows := make([][]string, 0, len(links))
	for _, l := range links {
		rows = append(rows, []string{l.Label, l.Path})
	}
	return output.PrintList(links, []string{"PAGE", "PATH"}, rows)
}

// Check prints whether the current session may open path and where it would
// be sent otherwise. A missing or unusable session is a decision, not an
// error.
func Check(deps Deps, path string) (routes.Decision, error) {
	ident, err := session.Load(deps.Tokens)
	if err != nil && !isDecodeError(err) {
		return routes.Decision{}, err
	}

	decision := routes.Guard(ident, path)
	role := "none"
	if ident != nil {
		role = ident.Role.String()
	}
	fields := []output.Field{
		{Key: "Path", Value: path},
		{Key: "Role", Value: role},
		{Key: "Allowed", Value: yesNo(decision.Allow)},
		{Key: "Reason", Value: decision.Reason.String()},
	}
	if !decision.Allow {
		fields = append(fields, output.Field{Key: "Redirect", Value: decision.Redirect})
	}
	if errors.Is(err, session.ErrTokenExpired) {
		output.PrintWarning("Your session has expired.")
	}
	return decision, output.PrintRecord("Route check", decision, fields)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
