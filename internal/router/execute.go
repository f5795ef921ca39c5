package router

import (
	"context"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	tracing "github.com/yourorg/settlement-switch/internal/otel"
)

// ExecuteTransfer re-runs discovery and settles through the winner. It
// returns true once the provider accepted the transfer.
func (r *Router) ExecuteTransfer(ctx context.Context, req model.TransferRequest) (bool, error) {
	if _, err := r.Execute(ctx, req); err != nil {
		return false, err
	}
	return true, nil
}

// Execute is ExecuteTransfer returning the receipt of the settled transfer.
// On any failure the statistics are left unchanged.
func (r *Router) Execute(ctx context.Context, req model.TransferRequest) (model.Receipt, error) {
	ctx, span := r.tracer.Start(ctx, "router.ExecuteTransfer", trace.WithAttributes(requestAttributes(req)...))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	receipt, err := r.execute(ctx, req)
	if err != nil {
		r.metrics.transfers.WithLabelValues("failed").Inc()
		tracing.RecordError(ctx, err)
		return model.Receipt{}, err
	}
	r.metrics.transfers.WithLabelValues("executed").Inc()
	span.SetAttributes(
		attribute.String("provider", receipt.ProviderName),
		attribute.String("receipt_id", receipt.ID),
	)
	return receipt, nil
}

// execute performs discover, transfer and record. The caller must hold the
// write lock.
func (r *Router) execute(ctx context.Context, req model.TransferRequest) (model.Receipt, error) {
	const op = "router.ExecuteTransfer"

	best, err := r.findBest(ctx, req)
	if err != nil {
		return model.Receipt{}, err
	}
	if !best.Quote.Available {
		return model.Receipt{}, errs.Ef(op, errs.ErrProviderUnavailable, "%s", best.Quote.ProviderName)
	}
	provider, ok := r.registry.Get(best.ProviderID)
	if !ok {
		return model.Receipt{}, errs.Ef(op, errs.ErrAdapterNotFound, "provider %s", best.ProviderID.Hex())
	}

	// priced before dispatch so a pricing failure leaves nothing in flight
	price, err := r.oracle.AssetPrice(ctx, req.Asset)
	if err != nil {
		return model.Receipt{}, err
	}
	volume := toUSD(price, req.Amount)

	if err := provider.Transfer(ctx, req.ToChain, req.Asset, req.Amount, req.Recipient, nil); err != nil {
		r.log.WithFields(logrus.Fields{
			"provider": best.Quote.ProviderName,
			"asset":    req.Asset.Hex(),
		}).WithError(err).Warn("Transfer failed")
		return model.Receipt{}, err
	}

	r.totalTransfers = fixedpoint.Add(r.totalTransfers, fixedpoint.New(1))
	r.totalVolumeUSD = fixedpoint.Add(r.totalVolumeUSD, volume)
	r.metrics.setVolume(r.totalVolumeUSD)

	receipt := model.NewReceipt(r.newID(), req, best, volume, r.now())
	receipt = r.record(ctx, receipt)

	r.log.WithFields(logrus.Fields{
		"id":         receipt.ID,
		"provider":   receipt.ProviderName,
		"to_chain":   req.ToChain.String(),
		"amount":     receipt.Amount,
		"volume_usd": fixedpoint.FormatUSD(volume),
	}).Info("Transfer executed")
	r.sink.Publish(model.NewEvent(model.EventTransferExecuted, map[string]string{
		"id":          receipt.ID,
		"provider_id": receipt.ProviderID.Hex(),
		"asset":       receipt.Asset.Hex(),
		"amount":      receipt.Amount,
		"to_chain":    req.ToChain.String(),
		"volume_usd":  receipt.VolumeUSD,
	}))
	return receipt, nil
}

// record signs and journals the receipt. The transfer already settled, so
// failures here are logged rather than returned.
func (r *Router) record(ctx context.Context, receipt model.Receipt) model.Receipt {
	if r.signer != nil {
		signed, err := r.signer.SignReceipt(receipt)
		if err != nil {
			r.log.WithError(err).WithField("id", receipt.ID).Error("Failed to sign receipt")
		} else {
			receipt = signed
		}
	}
	if r.journal != nil {
		if err := r.journal.Record(ctx, receipt); err != nil {
			r.log.WithError(err).WithField("id", receipt.ID).Error("Failed to journal receipt")
		}
	}
	return receipt
}
