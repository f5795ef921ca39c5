package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourorg/settlement-switch/internal/api"
	"github.com/yourorg/settlement-switch/internal/types"
)

var versionCMD = &cobra.Command{
	Use:   "version",
	Short: "Print the version and the known settlement domains",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "settlement %s\n", api.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "domains: %s\n", strings.Join(domainNames(), ", "))
	},
}

func domainNames() []string {
	chains := types.KnownChains()
	names := make([]string, 0, len(chains))
	for _, c := range chains {
		names = append(names, c.String())
	}
	return names
}
