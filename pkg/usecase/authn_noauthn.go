package usecase

import (
	"context"

	"github.com/secmon-lab/grc-risk/pkg/domain/model"
)

// NoAuthnUseCase accepts every request as the configured default person
// (for development/testing). With a zero person id requests act anonymously.
type NoAuthnUseCase struct {
	personID int64
}

func NewNoAuthnUseCase() *NoAuthnUseCase {
	return &NoAuthnUseCase{}
}

// NewNoAuthnUseCaseAs returns a NoAuthnUseCase acting as personID
func NewNoAuthnUseCaseAs(personID int64) *NoAuthnUseCase {
	return &NoAuthnUseCase{personID: personID}
}

// Authenticate ignores the token and returns the default person
func (uc *NoAuthnUseCase) Authenticate(ctx context.Context, token string) (*model.Stub, error) {
	if uc.personID == 0 {
		return nil, nil
	}
	return model.NewPersonStub(uc.personID), nil
}

func (uc *NoAuthnUseCase) IsNoAuthn() bool {
	return true
}
