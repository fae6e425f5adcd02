package service

import (
	"errors"
	"fmt"

	"github.com/Saad0095/leaders-tax-cli/pkg/api"
	"github.com/Saad0095/leaders-tax-cli/pkg/credentials"
	clierrors "github.com/Saad0095/leaders-tax-cli/pkg/errors"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
	"github.com/Saad0095/leaders-tax-cli/pkg/prompter"
	"github.com/Saad0095/leaders-tax-cli/pkg/routes"
	"github.com/Saad0095/leaders-tax-cli/pkg/session"
)

// ErrReported marks a failure whose message has already been shown.
var ErrReported = errors.New("failure already reported")

// Deps are the collaborators shared by every service.
type Deps struct {
	API    *api.Client
	Tokens credentials.TokenStore
	Prompt *prompter.Prompter
}

// Authorize loads the session and checks it may open path, the way the web
// app guards its pages.
func Authorize(tokens credentials.TokenStore, path string) (*session.Identity, error) {
	ident, err := session.Load(tokens)
	if err != nil && !isDecodeError(err) {
		return nil, err
	}

	decision := routes.Guard(ident, path)
	if decision.Allow {
		return ident, nil
	}

	logger.Debug("Access denied", "path", path, "reason", decision.Reason.String(), "redirect", decision.Redirect)
	switch decision.Reason {
	case routes.NoSession:
		if err != nil {
			return nil, err
		}
		return nil, session.ErrNoToken
	case routes.WrongRole:
		return nil, clierrors.ForbiddenError("", nil)
	default:
		return nil, fmt.Errorf("unknown area %q", path)
	}
}

// identity loads the session for operations open to every role.
func identity(tokens credentials.TokenStore) (*session.Identity, error) {
	ident, err := session.Load(tokens)
	if err != nil {
		return nil, err
	}
	return ident, nil
}

func isDecodeError(err error) bool {
	return errors.Is(err, session.ErrNoToken) ||
		errors.Is(err, session.ErrMalformedToken) ||
		errors.Is(err, session.ErrTokenExpired) ||
		errors.Is(err, session.ErrMissingID) ||
		errors.Is(err, session.ErrUnknownRole)
}

func pluralize(count int) string {
	if count == 1 {
		return ""
	}
	return "s"
}
