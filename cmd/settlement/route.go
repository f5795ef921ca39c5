package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/yourorg/settlement-switch/internal/app"
	"github.com/yourorg/settlement-switch/internal/config"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
)

var routeCMD = &cobra.Command{
	Use:   "route",
	Short: "Print the ranked routes of one transfer without executing it",
	RunE: func(cmd *cobra.Command, args []string) error {
		req, err := routeRequest()
		if err != nil {
			return err
		}
		return printRoutes(cmd.Context(), loadConfig(), req)
	},
}

func init() {
	flags := routeCMD.Flags()
	flags.String("from", "", "source chain name or id")
	flags.String("to", "", "destination chain name or id")
	flags.String("asset", "", "asset address")
	flags.String("amount", "", "amount in the asset's native unit")
	flags.String("recipient", "", "recipient address")
	flags.Bool("all", false, "print every ranked route instead of the best one")
	for _, name := range []string{"from", "to", "asset", "amount", "recipient", "all"} {
		_ = viper.BindPFlag("route."+name, flags.Lookup(name))
	}
}

func routeRequest() (model.TransferRequest, error) {
	var req model.TransferRequest
	if err := req.FromChain.UnmarshalText([]byte(viper.GetString("route.from"))); err != nil {
		return req, fmt.Errorf("--from: %w", err)
	}
	if err := req.ToChain.UnmarshalText([]byte(viper.GetString("route.to"))); err != nil {
		return req, fmt.Errorf("--to: %w", err)
	}
	asset, err := config.ParseAddress(viper.GetString("route.asset"))
	if err != nil {
		return req, fmt.Errorf("--asset: %w", err)
	}
	recipient, err := config.ParseAddress(viper.GetString("route.recipient"))
	if err != nil {
		return req, fmt.Errorf("--recipient: %w", err)
	}
	amount, err := fixedpoint.ParseDecimal(viper.GetString("route.amount"))
	if err != nil {
		return req, fmt.Errorf("--amount: %w", err)
	}
	req.Asset, req.Recipient, req.Amount = asset, recipient, amount
	return req, nil
}

type routeOutput struct {
	Provider     string `json:"provider"`
	ProviderID   string `json:"provider_id"`
	Time         uint64 `json:"estimated_time"`
	Fee          string `json:"fee"`
	TotalCostUSD string `json:"total_cost_usd"`
	AmountOut    string `json:"amount_out"`
}

func printRoutes(ctx context.Context, cfg config.Config, req model.TransferRequest) error {
	file, err := config.LoadFile(cfg.ConfigFile)
	if err != nil {
		return err
	}
	// offline queries never persist receipts
	file.Journal.Backend = config.JournalNone
	file.Webhook = nil

	a, err := app.New(ctx, cfg, file)
	if err != nil {
		return err
	}
	defer a.Close()

	var routes []model.RankedRoute
	if viper.GetBool("route.all") {
		if routes, err = a.Router.FindRoutes(ctx, req); err != nil {
			return err
		}
	} else {
		best, err := a.Router.FindBestRoute(ctx, req)
		if err != nil {
			return err
		}
		routes = append(routes, best)
	}

	out := make([]routeOutput, 0, len(routes))
	for _, r := range routes {
		out = append(out, routeOutput{
			Provider:     r.Quote.ProviderName,
			ProviderID:   r.ProviderID.Hex(),
			Time:         r.Quote.EstimatedTime,
			Fee:          fixedpoint.String(r.Quote.Fee),
			TotalCostUSD: fixedpoint.FormatUSD(r.TotalCostUSD),
			AmountOut:    fixedpoint.String(r.AmountOut),
		})
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
