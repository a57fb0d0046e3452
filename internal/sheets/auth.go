package sheets

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/edupricing/availability-go/internal/config"
	apperrors "github.com/edupricing/availability-go/internal/errors"
)

// spreadsheetsReadonlyScope is the only scope ever requested; the service
// never writes to a sheet.
const spreadsheetsReadonlyScope = "https://www.googleapis.com/auth/spreadsheets.readonly"

// NewTokenSource builds the OAuth2 token source for the spreadsheet API.
// When a refresh token is configured the standard three-legged flow is
// used (the token source exchanges the refresh token on demand and caches
// the access token until expiry); otherwise the service-account blob is
// parsed and a two-legged JWT source is built. Neither path performs a
// network call here; the first token exchange happens on first use.
func NewTokenSource(ctx context.Context, cfg *config.Config) (oauth2.TokenSource, error) {
	switch {
	case cfg.HasOAuthCredentials():
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURI,
			Endpoint:     google.Endpoint,
			Scopes:       []string{spreadsheetsReadonlyScope},
		}
		token := &oauth2.Token{RefreshToken: cfg.GoogleRefreshToken}
		return oauthCfg.TokenSource(ctx, token), nil

	case cfg.HasServiceAccount():
		raw := cfg.ServiceAccountJSON()
		jwtCfg, err := google.JWTConfigFromJSON(raw, spreadsheetsReadonlyScope)
		if err != nil {
			return nil, apperrors.NewConfigError(config.EnvGoogleServiceAccount,
				fmt.Sprintf("invalid service account credentials: %v", err))
		}
		return jwtCfg.TokenSource(ctx), nil

	default:
		return nil, apperrors.NewConfigError(config.EnvGoogleRefreshToken,
			"no usable Google credentials: set an OAuth refresh token with client id/secret, or a service account blob")
	}
}
