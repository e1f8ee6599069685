package usecase

import (
	"github.com/privsec-lab/custodian/pkg/domain/interfaces"
	"github.com/privsec-lab/custodian/pkg/domain/model/policy"
	"github.com/privsec-lab/custodian/pkg/service/compliance"
	"github.com/privsec-lab/custodian/pkg/service/docgen"
	"github.com/privsec-lab/custodian/pkg/service/risk"
	"github.com/privsec-lab/custodian/pkg/service/scheduler"
)

// UseCases aggregates the application use cases over a repository and
// policy
type UseCases struct {
	repo     interfaces.Repository
	pol      *policy.Policy
	notifier interfaces.Notifier

	Collection *CollectionUseCase
	Breach     *BreachUseCase
}

// Option is a functional option for UseCases construction
type Option func(*UseCases)

// WithNotifier wires a notification dispatcher. Without one, notification
// sends fail as transport errors and stay pending.
func WithNotifier(n interfaces.Notifier) Option {
	return func(uc *UseCases) {
		uc.notifier = n
	}
}

// New builds the use case aggregate. The policy must already be
// validated; the compliance analyzer additionally rejects framework
// definitions referencing unknown predicates.
func New(repo interfaces.Repository, pol *policy.Policy, opts ...Option) (*UseCases, error) {
	uc := &UseCases{
		repo: repo,
		pol:  pol,
	}
	for _, opt := range opts {
		opt(uc)
	}

	analyzer, err := compliance.New(pol.Frameworks)
	if err != nil {
		return nil, err
	}

	docs := docgen.New(repo)
	sched := scheduler.New(repo)

	uc.Collection = NewCollectionUseCase(repo, pol, uc.notifier, docs, sched)
	uc.Breach = NewBreachUseCase(repo, risk.New(&pol.Risk), analyzer, uc.notifier)

	return uc, nil
}
