package shipping

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
)

// CarrierRates is one account's outcome in a rate comparison: either a rate
// list or the error that account produced.
type CarrierRates struct {
	Account Account
	Rates   []Rate
	Err     error
}

// ComparisonResult holds the per-account rate lists and the per-service-type
// cheapest selection.
type ComparisonResult struct {
	// AllRates is keyed by account name.
	AllRates map[string]CarrierRates

	// Cheapest is keyed by canonical service type. For each service type the
	// entry is the lowest total charge seen across all accounts; on equal
	// charge the earlier-queried account keeps the slot.
	Cheapest map[string]Rate
}

// CheapestFor returns the cheapest rate for a service type.
func (r *ComparisonResult) CheapestFor(serviceType string) (Rate, bool) {
	rate, ok := r.Cheapest[serviceType]
	return rate, ok
}

// CheapestOverall returns the single lowest-charge rate across all service
// types.
func (r *ComparisonResult) CheapestOverall() (Rate, bool) {
	if len(r.Cheapest) == 0 {
		return Rate{}, false
	}
	rates := make([]Rate, 0, len(r.Cheapest))
	for _, rate := range r.Cheapest {
		rates = append(rates, rate)
	}
	sort.SliceStable(rates, func(i, j int) bool {
		if rates[i].TotalCharge != rates[j].TotalCharge {
			return rates[i].TotalCharge < rates[j].TotalCharge
		}
		return rates[i].ServiceType < rates[j].ServiceType
	})
	return rates[0], true
}

// ServiceTypes returns the service types present in the cheapest selection,
// sorted by ascending charge.
func (r *ComparisonResult) ServiceTypes() []string {
	types := make([]string, 0, len(r.Cheapest))
	for t := range r.Cheapest {
		types = append(types, t)
	}
	sort.SliceStable(types, func(i, j int) bool {
		if r.Cheapest[types[i]].TotalCharge != r.Cheapest[types[j]].TotalCharge {
			return r.Cheapest[types[i]].TotalCharge < r.Cheapest[types[j]].TotalCharge
		}
		return types[i] < types[j]
	})
	return types
}

// Comparison fetches rates from multiple carrier accounts in parallel and
// selects the cheapest quote per service type.
type Comparison struct {
	registry *Registry
	logger   *otelzap.Logger
}

// NewComparison creates a rate comparison engine over a carrier registry.
func NewComparison(registry *Registry, logger *otelzap.Logger) *Comparison {
	return &Comparison{registry: registry, logger: logger}
}

// CompareRates queries every account concurrently. A failing account
// contributes an error entry instead of failing the whole comparison; the
// returned error is a *PartialFailure when at least one account failed, nil
// otherwise. Accounts earlier in the slice win ties on equal charge.
func (c *Comparison) CompareRates(ctx context.Context, req *ShipmentRequest, accounts []Account) (*ComparisonResult, error) {
	outcomes := make([]CarrierRates, len(accounts))
	mu := &sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)
	for i, account := range accounts {
		i, account := i, account
		g.Go(func() error {
			rates, err := c.fetchRates(ctx, req, account)
			mu.Lock()
			defer mu.Unlock()
			outcomes[i] = CarrierRates{Account: account, Rates: rates, Err: err}
			if err != nil {
				c.logger.Ctx(ctx).Warn("carrier rate request failed",
					zap.String("account", account.Name),
					zap.String("carrier", string(account.Carrier)),
					zap.Error(err))
			}
			return nil
		})
	}
	g.Wait()

	result := &ComparisonResult{
		AllRates: make(map[string]CarrierRates, len(accounts)),
		Cheapest: make(map[string]Rate),
	}
	failures := make(map[string]error)

	for _, outcome := range outcomes {
		result.AllRates[outcome.Account.Name] = outcome
		if outcome.Err != nil {
			failures[outcome.Account.Name] = outcome.Err
			continue
		}
		for _, rate := range outcome.Rates {
			current, ok := result.Cheapest[rate.ServiceType]
			if !ok || rate.TotalCharge < current.TotalCharge {
				result.Cheapest[rate.ServiceType] = rate
			}
		}
	}

	if len(failures) > 0 {
		return result, &PartialFailure{Errors: failures}
	}
	return result, nil
}

func (c *Comparison) fetchRates(ctx context.Context, req *ShipmentRequest, account Account) ([]Rate, error) {
	carrier, err := c.registry.New(account.Carrier)
	if err != nil {
		return nil, err
	}
	if err := carrier.SetAccount(ctx, account.Name); err != nil {
		return nil, err
	}
	return carrier.GetRates(ctx, req)
}
