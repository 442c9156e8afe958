package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
	"github.com/secmon-lab/grc-risk/pkg/domain/model"
	"github.com/secmon-lab/grc-risk/pkg/utils/logging"
)

const tokenIssuer = "grc-risk"

// AuthUseCaseInterface resolves the acting person of a request
type AuthUseCaseInterface interface {
	// Authenticate returns the Person stub a bearer token was issued for.
	// A nil stub with a nil error means the request acts anonymously.
	Authenticate(ctx context.Context, token string) (*model.Stub, error)
	IsNoAuthn() bool
}

// AuthUseCase verifies HS256 bearer tokens whose subject is a person id
type AuthUseCase struct {
	repo   interfaces.Repository
	secret []byte
	now    func() time.Time
	cache  *authCache
}

type AuthOption func(*AuthUseCase)

// WithClock replaces the time source used for issuing and verifying tokens
func WithClock(now func() time.Time) AuthOption {
	return func(uc *AuthUseCase) {
		uc.now = now
	}
}

func NewAuthUseCase(repo interfaces.Repository, secret []byte, options ...AuthOption) *AuthUseCase {
	uc := &AuthUseCase{
		repo:   repo,
		secret: secret,
		now:    time.Now,
		cache:  newAuthCache(),
	}

	for _, opt := range options {
		opt(uc)
	}

	return uc
}

func (uc *AuthUseCase) IsNoAuthn() bool {
	return false
}

// IssueToken signs a token for personID valid for ttl
func (uc *AuthUseCase) IssueToken(personID int64, ttl time.Duration) (string, error) {
	return IssueToken(uc.secret, personID, uc.now(), ttl)
}

// IssueToken signs an HS256 token with secret for personID
func IssueToken(secret []byte, personID int64, now time.Time, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", goerr.New("token secret is required")
	}
	if personID <= 0 {
		return "", goerr.New("person id must be positive", goerr.V("person_id", personID))
	}

	token, err := jwt.NewBuilder().
		Issuer(tokenIssuer).
		Subject(strconv.FormatInt(personID, 10)).
		IssuedAt(now).
		Expiration(now.Add(ttl)).
		Build()
	if err != nil {
		return "", goerr.Wrap(err, "failed to build token")
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.HS256, secret))
	if err != nil {
		return "", goerr.Wrap(err, "failed to sign token")
	}
	return string(signed), nil
}

func (uc *AuthUseCase) Authenticate(ctx context.Context, raw string) (*model.Stub, error) {
	if raw == "" {
		return nil, goerr.Wrap(ErrUnauthorized, "bearer token is required")
	}

	now := uc.now()
	if actor, ok := uc.cache.get(raw, now); ok {
		return actor, nil
	}

	token, err := jwt.Parse([]byte(raw),
		jwt.WithKey(jwa.HS256, uc.secret),
		jwt.WithValidate(true),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithClock(jwt.ClockFunc(uc.now)),
	)
	if err != nil {
		return nil, goerr.Wrap(ErrUnauthorized, "invalid token", goerr.V("reason", err.Error()))
	}

	personID, err := strconv.ParseInt(token.Subject(), 10, 64)
	if err != nil || personID <= 0 {
		return nil, goerr.Wrap(ErrUnauthorized, "invalid token subject", goerr.V("sub", token.Subject()))
	}

	person, err := uc.repo.Person().Get(ctx, personID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, goerr.Wrap(ErrUnauthorized, "unknown person", goerr.V("person_id", personID))
		}
		return nil, goerr.Wrap(err, "failed to get person", goerr.V("person_id", personID))
	}

	actor := person.Stub()
	uc.cache.set(raw, actor, token.Expiration(), now)
	logging.From(ctx).Debug("token verified", "person_id", personID)
	return actor, nil
}
