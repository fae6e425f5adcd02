package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saad0095/leaders-tax-cli/pkg/routes"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

func TestLinksPerRole(t *testing.T) {
	e := newEnv(t, session.RoleAdmin, "", nil)
	require.NoError(t, Links(e.deps))
	assert.Contains(t, e.out.String(), "/admin/agents")

	e = newEnv(t, session.RoleDubaiAgent, "", nil)
	require.NoError(t, Links(e.deps))
	assert.Contains(t, e.out.String(), "/agent/notifications")
	assert.NotContains(t, e.out.String(), "/admin")
}

func TestLinksLoggedOut(t *testing.T) {
	e := newEnv(t, 0, "", nil)

	assert.ErrorIs(t, Links(e.deps), session.ErrNoToken)
}

func TestCheck(t *testing.T) {
	cases := []struct {
		name   string
		role   session.Role
		path   string
		allow  bool
		reason routes.Reason
	}{
		{"admin in admin area", session.RoleAdmin, "/admin/leads", true, routes.Allowed},
		{"agent in admin area", session.RoleKarachiAgent, "/admin/leads", false, routes.WrongRole},
		{"lookalike prefix", session.RoleAdmin, "/administrator", false, routes.UnknownArea},
		{"logged out", 0, "/agent/dashboard", false, routes.NoSession},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newEnv(t, tc.role, "", nil)

			decision, err := Check(e.deps, tc.path)

			require.NoError(t, err)
			assert.Equal(t, tc.allow, decision.Allow)
			assert.Equal(t, tc.reason, decision.Reason)
			if !tc.allow {
				assert.Contains(t, e.out.String(), "Redirect: /login")
			}
		})
	}
}
