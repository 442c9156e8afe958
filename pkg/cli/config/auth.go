package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/usecase"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Auth holds CLI flags for bearer token authentication
type Auth struct {
	tokenSecret string `masq:"secret"`
	noAuthnAs   int64
	tokenTTL    time.Duration
}

func (x *Auth) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "token-secret",
			Usage:       "HMAC secret for HS256 bearer tokens (empty disables authentication)",
			Category:    "Auth",
			Sources:     cli.EnvVars("GRC_RISK_TOKEN_SECRET"),
			Destination: &x.tokenSecret,
		},
		&cli.Int64Flag{
			Name:        "no-authn-person-id",
			Usage:       "Person id used as the actor when authentication is disabled",
			Category:    "Auth",
			Sources:     cli.EnvVars("GRC_RISK_NO_AUTHN_PERSON_ID"),
			Destination: &x.noAuthnAs,
		},
	}
}

// TokenFlags returns the flags of the token command
func (x *Auth) TokenFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "token-secret",
			Usage:       "HMAC secret for HS256 bearer tokens",
			Category:    "Auth",
			Required:    true,
			Sources:     cli.EnvVars("GRC_RISK_TOKEN_SECRET"),
			Destination: &x.tokenSecret,
		},
		&cli.DurationFlag{
			Name:        "ttl",
			Usage:       "Token lifetime",
			Category:    "Auth",
			Value:       24 * time.Hour,
			Sources:     cli.EnvVars("GRC_RISK_TOKEN_TTL"),
			Destination: &x.tokenTTL,
		},
	}
}

func (x Auth) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("token_secret_set", x.tokenSecret != ""),
		slog.Int64("no_authn_person_id", x.noAuthnAs),
	)
}

// TTL returns the lifetime of issued tokens
func (x *Auth) TTL() time.Duration {
	return x.tokenTTL
}

// Configure returns a token verifier, or a no-authn use case when no
// secret is set
func (x *Auth) Configure(repo interfaces.Repository) (usecase.AuthUseCaseInterface, error) {
	if x.tokenSecret == "" {
		if x.noAuthnAs < 0 {
			return nil, goerr.Wrap(ErrInvalidConfig, "no-authn-person-id must not be negative",
				goerr.V("person_id", x.noAuthnAs))
		}
		logging.Default().Warn("Authentication is disabled", "person_id", x.noAuthnAs)
		return usecase.NewNoAuthnUseCaseAs(x.noAuthnAs), nil
	}

	return usecase.NewAuthUseCase(repo, []byte(x.tokenSecret)), nil
}

// Secret returns the HMAC secret
func (x *Auth) Secret() []byte {
	return []byte(x.tokenSecret)
}
