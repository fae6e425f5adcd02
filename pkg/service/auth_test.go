package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	clierrors "github.com/Saad0095/leaders-tax-cli/pkg/errors"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

func TestLoginStoresTokenAndPrintsHome(t *testing.T) {
	var body api.LoginRequest
	var token string
	e := newEnv(t, 0, "", func(r *gin.Engine) {
		r.POST("/api/auth/login", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&body))
			c.JSON(http.StatusOK, gin.H{"token": token, "message": "Login successful"})
		})
	})
	token = mintToken(t, agentID, session.RoleDubaiAgent)

	ident, err := NewAuthService(e.deps).Login(context.Background(), "dubai@leaders.ae", "pw")

	require.NoError(t, err)
	assert.Equal(t, api.LoginRequest{Email: "dubai@leaders.ae", Password: "pw"}, body)
	assert.Equal(t, session.RoleDubaiAgent, ident.Role)
	stored, err := e.deps.Tokens.Token()
	require.NoError(t, err)
	assert.Equal(t, token, stored)
	assert.Contains(t, e.out.String(), "✓ Login successful")
	assert.Contains(t, e.out.String(), "Home: /agent/dashboard")
}

func TestLoginPromptsForMissingCredentials(t *testing.T) {
	var body api.LoginRequest
	var token string
	e := newEnv(t, 0, "admin@leaders.ae\ns3cret\n", func(r *gin.Engine) {
		r.POST("/api/auth/login", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&body))
			c.JSON(http.StatusOK, gin.H{"token": token})
		})
	})
	token = mintToken(t, adminID, session.RoleAdmin)

	ident, err := NewAuthService(e.deps).Login(context.Background(), "", "")

	require.NoError(t, err)
	assert.Equal(t, "admin@leaders.ae", body.Email)
	assert.Equal(t, "s3cret", body.Password)
	assert.Equal(t, adminID, ident.ID)
	assert.Contains(t, e.out.String(), "Home: /admin/dashboard")
}

func TestLoginRejectsUnusableToken(t *testing.T) {
	e := newEnv(t, 0, "", func(r *gin.Engine) {
		r.POST("/api/auth/login", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"token": "not-a-jwt"})
		})
	})

	_, err := NewAuthService(e.deps).Login(context.Background(), "a@b.c", "pw")

	assert.ErrorIs(t, err, session.ErrMalformedToken)
	stored, _ := e.deps.Tokens.Token()
	assert.Empty(t, stored)
}

func TestLoginInvalidCredentials(t *testing.T) {
	e := newEnv(t, 0, "", func(r *gin.Engine) {
		r.POST("/api/auth/login", func(c *gin.Context) {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		})
	})

	_, err := NewAuthService(e.deps).Login(context.Background(), "a@b.c", "wrong")

	assertErrorType(t, err, clierrors.ErrorTypeUnauthenticated)
	assert.Equal(t, "Invalid credentials", clierrors.CategorizeError(err).Message)
}

func TestLoginEmptyEmail(t *testing.T) {
	e := newEnv(t, 0, "\n", nil)

	_, err := NewAuthService(e.deps).Login(context.Background(), "", "pw")

	assertErrorType(t, err, clierrors.ErrorTypeValidation)
	assert.Empty(t, e.calls())
}

func TestLoginWhileSignedInCanBeCancelled(t *testing.T) {
	e := newEnv(t, session.RoleAdmin, "n\n", nil)

	ident, err := NewAuthService(e.deps).Login(context.Background(), "a@b.c", "pw")

	require.NoError(t, err)
	assert.Nil(t, ident)
	assert.Empty(t, e.calls())
	assert.Contains(t, e.out.String(), "Already logged in")
}

func TestLogout(t *testing.T) {
	e := newEnv(t, session.RoleAdmin, "", nil)

	require.NoError(t, NewAuthService(e.deps).Logout())

	stored, err := e.deps.Tokens.Token()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestWhoAmI(t *testing.T) {
	e := newEnv(t, session.RoleKarachiAgent, "", nil)

	ident, err := NewAuthService(e.deps).WhoAmI()

	require.NoError(t, err)
	assert.Equal(t, agentID, ident.ID)
	assert.Contains(t, e.out.String(), "Role: Karachi agent")
	assert.Contains(t, e.out.String(), "Home: /agent/dashboard")
}

func TestWhoAmILoggedOut(t *testing.T) {
	e := newEnv(t, 0, "", nil)

	_, err := NewAuthService(e.deps).WhoAmI()

	assert.ErrorIs(t, err, session.ErrNoToken)
}

func TestForgotPassword(t *testing.T) {
	var email string
	e := newEnv(t, 0, "", func(r *gin.Engine) {
		r.POST("/api/auth/forgot-password", func(c *gin.Context) {
			var body struct {
				Email string `json:"email"`
			}
			require.NoError(t, c.ShouldBindJSON(&body))
			email = body.Email
			c.JSON(http.StatusOK, gin.H{"message": "Reset link sent"})
		})
	})

	require.NoError(t, NewAuthService(e.deps).ForgotPassword(context.Background(), "agent@leaders.ae"))

	assert.Equal(t, "agent@leaders.ae", email)
	assert.Contains(t, e.out.String(), "Reset link sent")
}

func TestResetPasswordMismatch(t *testing.T) {
	e := newEnv(t, 0, "one\ntwo\n", nil)

	err := NewAuthService(e.deps).ResetPassword(context.Background(), "reset-tok", "")

	assertErrorType(t, err, clierrors.ErrorTypeValidation)
	assert.Contains(t, err.Error(), "Passwords do not match!")
	assert.Empty(t, e.calls())
}

func TestResetPassword(t *testing.T) {
	var body api.ResetPasswordRequest
	e := newEnv(t, 0, "n3w\nn3w\n", func(r *gin.Engine) {
		r.POST("/api/auth/reset-password", func(c *gin.Context) {
			require.NoError(t, c.ShouldBindJSON(&body))
			c.JSON(http.StatusOK, gin.H{"message": "Password reset successful"})
		})
	})

	require.NoError(t, NewAuthService(e.deps).ResetPassword(context.Background(), "reset-tok", ""))

	assert.Equal(t, api.ResetPasswordRequest{Token: "reset-tok", Password: "n3w"}, body)
}

func TestResetPasswordNeedsToken(t *testing.T) {
	e := newEnv(t, 0, "", nil)

	err := NewAuthService(e.deps).ResetPassword(context.Background(), "", "pw")

	assertErrorType(t, err, clierrors.ErrorTypeValidation)
}
