// Package types contains shared type definitions used across multiple packages
package types

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ChainID identifies a settlement domain. Zero is the null domain.
type ChainID uint64

// Well-known settlement domains
const (
	ChainEthereum        ChainID = 1
	ChainOptimism        ChainID = 10
	ChainBSC             ChainID = 56
	ChainPolygon         ChainID = 137
	ChainBase            ChainID = 8453
	ChainArbitrum        ChainID = 42161
	ChainAvalanche       ChainID = 43114
	ChainPolygonAmoy     ChainID = 80002
	ChainArbitrumSepolia ChainID = 421614
)

var chainNames = map[ChainID]string{
	ChainEthereum:        "ethereum",
	ChainOptimism:        "optimism",
	ChainBSC:             "binance",
	ChainPolygon:         "polygon",
	ChainBase:            "base",
	ChainArbitrum:        "arbitrum",
	ChainAvalanche:       "avalanche",
	ChainPolygonAmoy:     "polygon-amoy",
	ChainArbitrumSepolia: "arbitrum-sepolia",
}

// KnownChains lists the well-known settlement domains in id order
func KnownChains() []ChainID {
	ids := make([]ChainID, 0, len(chainNames))
	for id := range chainNames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// IsZero reports whether c is the null domain
func (c ChainID) IsZero() bool {
	return c == 0
}

// String returns the well-known name of the chain, or its numeric id
func (c ChainID) String() string {
	if name, ok := chainNames[c]; ok {
		return name
	}
	return strconv.FormatUint(uint64(c), 10)
}

// ParseChainID accepts a numeric chain id or a well-known chain name
func ParseChainID(s string) (ChainID, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if id, err := strconv.ParseUint(s, 10, 64); err == nil {
		return ChainID(id), nil
	}
	for id, name := range chainNames {
		if name == s {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown chain %q", s)
}

// MarshalText encodes the chain by name when it has one
func (c ChainID) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText lets chain ids be written by name in config files
func (c *ChainID) UnmarshalText(text []byte) error {
	id, err := ParseChainID(string(text))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

// ChainConfig holds connection settings for a specific settlement domain
type ChainConfig struct {
	Enabled     bool   `json:"enabled" yaml:"enabled"`
	RPCEndpoint string `json:"rpc_endpoint" yaml:"rpc_endpoint"`
	// Native gas token symbol, used for display only
	NativeSymbol string `json:"native_symbol,omitempty" yaml:"native_symbol,omitempty"`
}
