package api

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/router"
	"github.com/yourorg/settlement-switch/internal/types"
)

// TransferRequest is the body of the route and transfer endpoints. Chains
// are JSON strings holding a name or a numeric id; the amount is a base-10
// integer string in the asset's native unit.
type TransferRequest struct {
	FromChain types.ChainID  `json:"from_chain"`
	ToChain   types.ChainID  `json:"to_chain"`
	Asset     common.Address `json:"asset"`
	Amount    string         `json:"amount"`
	Recipient common.Address `json:"recipient"`
}

// toModel converts the body into a routing request
func (t TransferRequest) toModel() (model.TransferRequest, error) {
	amount, err := fixedpoint.ParseDecimal(t.Amount)
	if err != nil {
		return model.TransferRequest{}, fmt.Errorf("amount: %w", err)
	}
	return model.TransferRequest{
		FromChain: t.FromChain,
		ToChain:   t.ToChain,
		Asset:     t.Asset,
		Amount:    amount,
		Recipient: t.Recipient,
	}, nil
}

// RouteResponse describes one ranked route. USD values carry 8 decimals.
type RouteResponse struct {
	ProviderID    common.Address `json:"provider_id"`
	Provider      string         `json:"provider"`
	EstimatedTime uint64         `json:"estimated_time"`
	EstimatedGas  uint64         `json:"estimated_gas"`
	Fee           string         `json:"fee"`
	GasCostUSD    string         `json:"gas_cost_usd"`
	FeeUSD        string         `json:"fee_usd,omitempty"`
	TotalCostUSD  string         `json:"total_cost_usd"`
	AmountOut     string         `json:"amount_out"`
}

func newRouteResponse(r model.RankedRoute) RouteResponse {
	resp := RouteResponse{
		ProviderID:    r.ProviderID,
		Provider:      r.Quote.ProviderName,
		EstimatedTime: r.Quote.EstimatedTime,
		EstimatedGas:  r.Quote.EstimatedGas,
		Fee:           fixedpoint.String(r.Quote.Fee),
		GasCostUSD:    fixedpoint.FormatUSD(r.EstimatedGasCostUSD),
		TotalCostUSD:  fixedpoint.FormatUSD(r.TotalCostUSD),
		AmountOut:     fixedpoint.String(r.AmountOut),
	}
	if r.FeeUSD != nil {
		resp.FeeUSD = fixedpoint.FormatUSD(r.FeeUSD)
	}
	return resp
}

// TransferResponse reports an executed transfer
type TransferResponse struct {
	Success bool          `json:"success"`
	Receipt model.Receipt `json:"receipt"`
}

// StatsResponse carries the router statistics
type StatsResponse struct {
	TotalTransfers string `json:"total_transfers"`
	TotalVolumeUSD string `json:"total_volume_usd"`
}

func newStatsResponse(s model.Statistics) StatsResponse {
	return StatsResponse{
		TotalTransfers: fixedpoint.String(s.TotalTransfers),
		TotalVolumeUSD: fixedpoint.FormatUSD(s.TotalVolumeUSD),
	}
}

// AdaptersResponse lists admitted providers and the admission history
type AdaptersResponse struct {
	Adapters []router.AdapterInfo `json:"adapters"`
	History  []HistoryEntry       `json:"history"`
}

// HistoryEntry is one provider ever admitted
type HistoryEntry struct {
	ID       common.Address `json:"id"`
	Admitted bool           `json:"admitted"`
}

// AssetSupportRequest is the body of PUT /assets/{asset}
type AssetSupportRequest struct {
	Supported bool `json:"supported"`
}

// ErrorResponse is returned with every non-2xx status
type ErrorResponse struct {
	Status string `json:"status"`
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error"`
}
