package secrets

import (
	"errors"
	"strings"

	"github.com/ReyadGH/use-case-4-deployment/internal/config"
	domainerrors "github.com/ReyadGH/use-case-4-deployment/internal/errors"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the dashboard's secrets in the OS keychain.
const KeyringService = "jobmarket-dashboard"

// AdminToken returns the token guarding admin endpoints. An explicit
// admin.token (or DASHBOARD_ADMIN_TOKEN) wins over the keyring entry.
func AdminToken(cfg config.Config) (string, error) {
	if tok := strings.TrimSpace(cfg.Admin.Token); tok != "" {
		return tok, nil
	}
	if account := strings.TrimSpace(cfg.Admin.KeyringAccount); account != "" {
		tok, err := keyring.Get(KeyringService, account)
		if err == nil && strings.TrimSpace(tok) != "" {
			return strings.TrimSpace(tok), nil
		}
		if err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return "", domainerrors.Unavailable("read admin token from keyring", err)
		}
	}
	return "", domainerrors.NotFound("admin token not set (use -set-admin-token or DASHBOARD_ADMIN_TOKEN)", nil)
}

func SetAdminToken(account, token string) error {
	if strings.TrimSpace(account) == "" {
		return domainerrors.InvalidInput("keyring account name is empty", nil)
	}
	if strings.TrimSpace(token) == "" {
		return domainerrors.InvalidInput("token is empty", nil)
	}
	return keyring.Set(KeyringService, account, token)
}

func DeleteAdminToken(account string) error {
	if strings.TrimSpace(account) == "" {
		return domainerrors.InvalidInput("keyring account name is empty", nil)
	}
	return keyring.Delete(KeyringService, account)
}
