package adapter

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

// Reference bridge estimates
const (
	ReferenceName = "Reference Bridge"
	referenceTime = 300
	referenceGas  = 100_000
)

// Reference is the flat-fee provider used for local settlement and as a
// baseline: it charges amount/1000 and pays the recipient directly with an
// ERC-20 transfer of the asset.
type Reference struct {
	*core
	policy FeePolicy
}

// NewReference creates a reference provider. A nil dispatcher accepts every
// transfer without a downstream call.
func NewReference(authority common.Address, d Dispatcher) *Reference {
	return &Reference{
		core:   newCore(ReferenceName, authority, referenceTime, referenceGas, d),
		policy: FlatFee{Divisor: 1000},
	}
}

// AdmitAsset adds or updates an asset; only MinAmount is used
func (r *Reference) AdmitAsset(caller, asset common.Address, params AssetParams) error {
	return r.admit("reference.AdmitAsset", caller, asset, params, nil)
}

// Quote implements BridgeAdapter
func (r *Reference) Quote(_ context.Context, _, _ types.ChainID, asset common.Address, amount *uint256.Int) (model.Quote, error) {
	return r.quote(asset, amount, r.policy.Fee)
}

// Transfer implements BridgeAdapter
func (r *Reference) Transfer(ctx context.Context, _ types.ChainID, asset common.Address, amount *uint256.Int, recipient common.Address, _ []byte) error {
	if _, err := r.prepare(asset, amount, recipient); err != nil {
		return err
	}
	return r.dispatch(ctx, Call{
		To:     asset,
		Method: MethodTransfer,
		Args:   []interface{}{recipient, amount.ToBig()},
	})
}
