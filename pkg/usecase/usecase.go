package usecase

import (
	"github.com/secmon-lab/grc-risk/pkg/domain/interfaces"
)

type UseCases struct {
	repo interfaces.Repository
	bus  interfaces.EventBus
	Risk *RiskUseCase
	Auth AuthUseCaseInterface
}

type Option func(*UseCases)

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithServerEventBus makes server-side saves announce themselves on bus
func WithServerEventBus(bus interfaces.EventBus) Option {
	return func(uc *UseCases) {
		uc.bus = bus
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.Auth == nil {
		uc.Auth = NewNoAuthnUseCase()
	}
	var riskOpts []RiskUseCaseOption
	if uc.bus != nil {
		riskOpts = append(riskOpts, WithRiskEventBus(uc.bus))
	}
	uc.Risk = NewRiskUseCase(repo, riskOpts...)

	return uc
}
