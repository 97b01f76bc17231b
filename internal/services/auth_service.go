package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	authorizer "github.com/localnerve/authorizer-go"
	"github.com/localnerve/carbonledger/internal/config"
	"github.com/localnerve/carbonledger/internal/utils"
	"github.com/rs/zerolog/log"
)

// ErrInvalidSession is returned when the Authorizer rejects a session cookie.
var ErrInvalidSession = errors.New("session is not valid")

// Session is the caller identity carried into the ledger.
type Session struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

var (
	authMu     sync.Mutex
	authClient *authorizer.AuthorizerClient
)

// IsAuthorizerInitialized returns true if the Authorizer client is initialized
func IsAuthorizerInitialized() bool {
	authMu.Lock()
	defer authMu.Unlock()
	return authClient != nil
}

// InitAuthorizer creates the Authorizer client once. A failed attempt is
// retried on the next call; the redirect url is taken from the first
// request that gets through.
func InitAuthorizer(ctx context.Context, cfg *config.Config, requestProtocol, requestHost string) error {
	authMu.Lock()
	defer authMu.Unlock()
	if authClient != nil {
		return nil
	}

	if err := utils.PingAuthorizer(ctx, cfg.AuthzURL); err != nil {
		return fmt.Errorf("authorizer ping failed: %w", err)
	}

	redirectURL := fmt.Sprintf("%s://%s", requestProtocol, requestHost)
	log.Info().
		Str("authorizer_url", cfg.AuthzURL).
		Str("client_id", cfg.AuthzClientID).
		Str("redirect_url", redirectURL).
		Msg("initializing authorizer")

	client, err := authorizer.NewAuthorizerClient(cfg.AuthzClientID, cfg.AuthzURL, redirectURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create authorizer client: %w", err)
	}
	authClient = client
	return nil
}

// ValidateSession checks a session cookie against the Authorizer for any of
// the given roles.
func ValidateSession(cookie string, roles []string) (*Session, error) {
	authMu.Lock()
	client := authClient
	authMu.Unlock()
	if client == nil {
		return nil, fmt.Errorf("authorizer client not initialized")
	}

	rolesPtrs := make([]*string, len(roles))
	for i := range roles {
		rolesPtrs[i] = &roles[i]
	}

	res, err := client.ValidateSession(&authorizer.ValidateSessionInput{
		Cookie: cookie,
		Roles:  rolesPtrs,
	})
	if err != nil {
		return nil, fmt.Errorf("session validation failed: %w", err)
	}
	if res == nil || !res.IsValid || res.User == nil {
		return nil, ErrInvalidSession
	}

	return &Session{UserID: res.User.ID, Email: res.User.Email}, nil
}
