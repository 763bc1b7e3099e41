package services

import (
	portsrepo "github.com/dkruglov/family_budget_app/internal/core/ports/repositories"
	portssvc "github.com/dkruglov/family_budget_app/internal/core/ports/services"
	"github.com/dkruglov/family_budget_app/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// Carryover first since the snapshot and attribution services depend on it
	container.Carryover = NewCarryoverService(
		repos.CategoryRepo,
		repos.IncomeRepo,
		repos.ExpenseRepo,
	)

	container.Snapshot = NewSnapshotService(
		repos.CategoryRepo,
		repos.IncomeRepo,
		repos.ExpenseRepo,
		container.Carryover,
	)

	container.Attribution = NewAttributionService(
		repos.CategoryRepo,
		repos.SourceRepo,
		repos.IncomeRepo,
		repos.ExpenseRepo,
		container.Carryover,
	)

	container.Rates = NewRateService(
		repos.RateRepo,
		WithBridgeCurrency(cfg.RateBridgeCurrency),
		WithRateCacheTTL(cfg.RateCacheTTL),
		WithRateFetchTimeout(cfg.RateFetchTimeout),
	)

	container.Ledger = NewLedgerService(
		repos.CategoryRepo,
		repos.SourceRepo,
		repos.IncomeRepo,
		repos.ExpenseRepo,
		container.Rates,
		WithBaseCurrency(cfg.DefaultCurrency),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.CarryoverSvcFacade   = (*carryoverService)(nil)
	_ portssvc.SnapshotSvcFacade    = (*snapshotService)(nil)
	_ portssvc.AttributionSvcFacade = (*attributionService)(nil)
	_ portssvc.LedgerSvcFacade      = (*ledgerService)(nil)
	_ portssvc.RateSvcFacade        = (*rateService)(nil)
)
