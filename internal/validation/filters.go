// Package validation checks transfer requests before they reach route
// discovery.
package validation

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

var zeroAddress common.Address

// ValidationOptions holds configuration for the validation process
type ValidationOptions struct {
	// EnabledChains restricts source and destination chains; empty allows any
	EnabledChains map[types.ChainID]bool

	// AllowSameChain permits requests whose source and destination match
	AllowSameChain bool

	// MaxAmount caps the request amount; nil means no cap
	MaxAmount *uint256.Int
}

// DefaultValidationOptions accepts any non-null request
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{AllowSameChain: true}
}

// ValidateRequest applies the default checks to req
func ValidateRequest(req model.TransferRequest) error {
	return ValidateRequestWithOptions(req, DefaultValidationOptions())
}

// ValidateRequestWithOptions rejects null identifiers, zero amounts and
// chains outside the configured set
func ValidateRequestWithOptions(req model.TransferRequest, opts ValidationOptions) error {
	const op = "validation.ValidateRequest"

	if req.FromChain.IsZero() || req.ToChain.IsZero() {
		return errs.E(op, errs.ErrInvalidChain)
	}
	if !opts.AllowSameChain && req.FromChain == req.ToChain {
		return errs.Ef(op, errs.ErrInvalidChain, "source and destination are both %s", req.FromChain)
	}
	if len(opts.EnabledChains) > 0 {
		for _, c := range []types.ChainID{req.FromChain, req.ToChain} {
			if !opts.EnabledChains[c] {
				logrus.WithField("chain", c.String()).Debug("Rejected request for disabled chain")
				return errs.Ef(op, errs.ErrInvalidChain, "%s is not enabled", c)
			}
		}
	}

	if req.Asset == zeroAddress {
		return errs.Ef(op, errs.ErrInvalidAddress, "asset")
	}
	if req.Recipient == zeroAddress {
		return errs.Ef(op, errs.ErrInvalidAddress, "recipient")
	}

	if req.Amount == nil || req.Amount.IsZero() {
		return errs.E(op, errs.ErrInvalidAmount)
	}
	if opts.MaxAmount != nil && req.Amount.Gt(opts.MaxAmount) {
		return errs.Ef(op, errs.ErrInvalidAmount, "above maximum %s", fixedpoint.String(opts.MaxAmount))
	}
	return nil
}
