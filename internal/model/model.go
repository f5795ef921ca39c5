// Package model defines the core data structures for the settlement switch.
package model

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"

	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/types"
)

// TransferRequest asks to move Amount of Asset from FromChain to Recipient
// on ToChain. It is built by the caller and consumed once.
type TransferRequest struct {
	FromChain types.ChainID
	ToChain   types.ChainID

	// Asset is the token identifier on the source chain
	Asset common.Address

	// Amount is in the asset's native integer unit
	Amount *uint256.Int

	Recipient common.Address
}

// Quote is a provider's estimate for a prospective transfer.
type Quote struct {
	// ProviderName is the human-readable provider name
	ProviderName string

	// EstimatedTime is the expected settlement latency in seconds
	EstimatedTime uint64

	// EstimatedGas is the expected gas consumption in units
	EstimatedGas uint64

	// Fee is charged in the asset's native unit
	Fee *uint256.Int

	// Available is false when the provider cannot serve the transfer right now
	Available bool
}

// RankedRoute is the outcome of route discovery for one provider.
type RankedRoute struct {
	// ProviderID is the registry handle of the provider
	ProviderID common.Address

	Quote Quote

	// EstimatedGasCostUSD is the oracle-normalized gas cost (8 decimals)
	EstimatedGasCostUSD *uint256.Int

	// FeeUSD is the fee converted via the asset price. It is only
	// populated when the cost model prices fees.
	FeeUSD *uint256.Int

	// TotalCostUSD is the comparison basis used to rank this route
	TotalCostUSD *uint256.Int

	// AmountOut is the amount minus the fee, never below zero
	AmountOut *uint256.Int
}

// Statistics aggregates successful executions. Both counters only grow.
type Statistics struct {
	TotalTransfers *uint256.Int
	TotalVolumeUSD *uint256.Int
}

// Receipt records a successfully executed transfer.
type Receipt struct {
	ID           string         `json:"id"`
	ProviderID   common.Address `json:"provider_id"`
	ProviderName string         `json:"provider_name"`
	FromChain    types.ChainID  `json:"from_chain"`
	ToChain      types.ChainID  `json:"to_chain"`
	Asset        common.Address `json:"asset"`
	Recipient    common.Address `json:"recipient"`
	Amount       string         `json:"amount"`
	Fee          string         `json:"fee"`
	AmountOut    string         `json:"amount_out"`
	TotalCostUSD string         `json:"total_cost_usd"`
	VolumeUSD    string         `json:"volume_usd"`
	ExecutedAt   time.Time      `json:"executed_at"`
	Signature    hexutil.Bytes  `json:"signature,omitempty"`
}

// NewReceipt builds an unsigned receipt for an executed route
func NewReceipt(id string, req TransferRequest, route RankedRoute, volumeUSD *uint256.Int, at time.Time) Receipt {
	return Receipt{
		ID:           id,
		ProviderID:   route.ProviderID,
		ProviderName: route.Quote.ProviderName,
		FromChain:    req.FromChain,
		ToChain:      req.ToChain,
		Asset:        req.Asset,
		Recipient:    req.Recipient,
		Amount:       fixedpoint.String(req.Amount),
		Fee:          fixedpoint.String(route.Quote.Fee),
		AmountOut:    fixedpoint.String(route.AmountOut),
		TotalCostUSD: fixedpoint.String(route.TotalCostUSD),
		VolumeUSD:    fixedpoint.String(volumeUSD),
		ExecutedAt:   at.UTC(),
	}
}

// Unsigned returns a copy of the receipt without its signature
func (r Receipt) Unsigned() Receipt {
	r.Signature = nil
	return r
}

// EventKind names a change notification
type EventKind string

// Change notifications emitted by the oracle and the router
const (
	EventAdapterAdded     EventKind = "adapter_added"
	EventAdapterRemoved   EventKind = "adapter_removed"
	EventAssetFeedSet     EventKind = "asset_price_feed_set"
	EventNativeFeedSet    EventKind = "native_price_feed_set"
	EventGasPriceSet      EventKind = "gas_price_set"
	EventAssetSupportSet  EventKind = "asset_support_set"
	EventTransferExecuted EventKind = "transfer_executed"
)

// Event is a change notification carrying the affected identifiers and the
// new value.
type Event struct {
	Kind   EventKind         `json:"kind"`
	Fields map[string]string `json:"fields"`
	At     time.Time         `json:"at"`
}

// NewEvent creates an event stamped with the current time
func NewEvent(kind EventKind, fields map[string]string) Event {
	return Event{Kind: kind, Fields: fields, At: time.Now().UTC()}
}
