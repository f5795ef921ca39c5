package router

import (
	"context"
	"sort"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/settlement-switch/internal/adapter"
	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	tracing "github.com/yourorg/settlement-switch/internal/otel"
	"github.com/yourorg/settlement-switch/internal/validation"
)

// Reasons a quote is left out of route discovery
const (
	skipQuoteFailed = "quote_failed"
	skipUnavailable = "unavailable"
)

// FindBestRoute returns the available route with the lowest comparison
// cost. Ties keep the earliest-registered provider.
func (r *Router) FindBestRoute(ctx context.Context, req model.TransferRequest) (model.RankedRoute, error) {
	ctx, span := r.tracer.Start(ctx, "router.FindBestRoute", trace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	best, err := r.findBest(ctx, req)
	if err != nil {
		tracing.RecordError(ctx, err)
	}
	return best, err
}

// FindRoutes returns every available route ordered by preference, capped at
// the configured maximum. An asset no provider can serve yields no routes.
func (r *Router) FindRoutes(ctx context.Context, req model.TransferRequest) ([]model.RankedRoute, error) {
	ctx, span := r.tracer.Start(ctx, "router.FindRoutes", trace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	r.mu.RLock()
	defer r.mu.RUnlock()

	routes, err := r.discover(ctx, req)
	if err != nil {
		tracing.RecordError(ctx, err)
		return nil, err
	}
	sort.SliceStable(routes, func(i, j int) bool { return r.better(routes[i], routes[j]) })
	if len(routes) > r.maxRoutes {
		routes = routes[:r.maxRoutes]
	}
	return routes, nil
}

// findBest runs discovery and picks the winner. The caller must hold r.mu.
func (r *Router) findBest(ctx context.Context, req model.TransferRequest) (model.RankedRoute, error) {
	routes, err := r.discover(ctx, req)
	if err != nil {
		return model.RankedRoute{}, err
	}
	if len(routes) == 0 {
		return model.RankedRoute{}, errs.Ef("router.FindBestRoute", errs.ErrNoRouteAvailable,
			"%s from %s to %s", req.Asset.Hex(), req.FromChain, req.ToChain)
	}

	best := routes[0]
	for _, route := range routes[1:] {
		if r.better(route, best) {
			best = route
		}
	}
	r.metrics.routesSelected.WithLabelValues(best.Quote.ProviderName).Inc()
	return best, nil
}

// discover quotes every admitted provider in registration order and prices
// the survivors. Quote failures and unavailable quotes are skipped; an oracle
// failure aborts discovery. The caller must hold r.mu.
func (r *Router) discover(ctx context.Context, req model.TransferRequest) ([]model.RankedRoute, error) {
	const op = "router.FindBestRoute"
	if !r.initialized {
		return nil, errs.E(op, errs.ErrNotInitialized)
	}
	if err := validation.ValidateRequestWithOptions(req, r.validation); err != nil {
		return nil, err
	}
	if !r.supported[req.Asset] {
		return nil, errs.Ef(op, errs.ErrUnsupportedAsset, "asset %s", req.Asset.Hex())
	}

	var (
		routes     []model.RankedRoute
		assetPrice *uint256.Int
		oracleErr  error
	)
	r.registry.Each(func(id common.Address, a adapter.BridgeAdapter) bool {
		name := a.Describe().Name
		log := r.log.WithFields(logrus.Fields{"provider": name, "id": id.Hex()})
		r.metrics.quotesRequested.WithLabelValues(name).Inc()

		q, err := a.Quote(ctx, req.FromChain, req.ToChain, req.Asset, req.Amount)
		if err != nil {
			log.WithError(err).Debug("Quote failed, skipping provider")
			r.metrics.quotesSkipped.WithLabelValues(name, skipQuoteFailed).Inc()
			return true
		}
		if !q.Available {
			log.Debug("Provider unavailable, skipping")
			r.metrics.quotesSkipped.WithLabelValues(name, skipUnavailable).Inc()
			return true
		}

		gasUSD, err := r.oracle.CalculateGasCost(ctx, req.ToChain, q.EstimatedGas)
		if err != nil {
			oracleErr = err
			return false
		}

		route := model.RankedRoute{
			ProviderID:          id,
			Quote:               q,
			EstimatedGasCostUSD: gasUSD,
			TotalCostUSD:        gasUSD,
			AmountOut:           fixedpoint.Sub(req.Amount, q.Fee),
		}
		if r.costModel == GasPlusFee {
			if assetPrice == nil {
				if assetPrice, err = r.oracle.AssetPrice(ctx, req.Asset); err != nil {
					oracleErr = err
					return false
				}
			}
			route.FeeUSD = toUSD(assetPrice, q.Fee)
			route.TotalCostUSD = fixedpoint.Add(gasUSD, route.FeeUSD)
		}
		routes = append(routes, route)
		return true
	})
	if oracleErr != nil {
		return nil, oracleErr
	}
	return routes, nil
}

// better reports whether a strictly beats b under the router preference
func (r *Router) better(a, b model.RankedRoute) bool {
	if r.preference == PreferFastest && a.Quote.EstimatedTime != b.Quote.EstimatedTime {
		return a.Quote.EstimatedTime < b.Quote.EstimatedTime
	}
	return a.TotalCostUSD.Lt(b.TotalCostUSD)
}

// toUSD converts an asset amount with 18 decimals at an 8-decimal price
func toUSD(price, amount *uint256.Int) *uint256.Int {
	return fixedpoint.MulDiv(price, amount, fixedpoint.Pow10(fixedpoint.WeiDecimals))
}

func requestAttributes(req model.TransferRequest) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("from_chain", req.FromChain.String()),
		attribute.String("to_chain", req.ToChain.String()),
		attribute.String("asset", req.Asset.Hex()),
		attribute.String("amount", fixedpoint.String(req.Amount)),
	}
}

func boolString(b bool) string {
	return strconv.FormatBool(b)
}

func sortAddresses(addrs []common.Address) {
	sort.Slice(addrs, func(i, j int) bool { return addrs[i].Cmp(addrs[j]) < 0 })
}
