package usecase

import (
	"time"

	"github.com/secmon-lab/riskreg/pkg/domain/interfaces"
)

type UseCases struct {
	repo   interfaces.Repository
	now    func() time.Time
	Risk   *RiskUseCase
	Import *ImportUseCase
	Export *ExportUseCase
	Audit  *AuditUseCase
	Auth   AuthUseCaseInterface
}

type Option func(*UseCases)

func WithAuth(auth AuthUseCaseInterface) Option {
	return func(uc *UseCases) {
		uc.Auth = auth
	}
}

// WithClock replaces time.Now, for tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
		now:  time.Now,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Audit = NewAuditUseCase(repo, uc.now)
	uc.Risk = NewRiskUseCase(repo, uc.Audit, uc.now)
	uc.Import = NewImportUseCase(repo, uc.Risk, uc.Audit, uc.now)
	uc.Export = NewExportUseCase(uc.Risk)

	return uc
}
