package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseChainID(t *testing.T) {
	tests := []struct {
		input    string
		expected ChainID
		wantErr  bool
	}{
		{"1", ChainEthereum, false},
		{"arbitrum", ChainArbitrum, false},
		{" Polygon ", ChainPolygon, false},
		{"421614", ChainArbitrumSepolia, false},
		{"777", ChainID(777), false},
		{"mars", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseChainID(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestChainIDJSON(t *testing.T) {
	raw, err := json.Marshal(map[string]ChainID{"to": ChainOptimism, "custom": 999})
	require.NoError(t, err)
	assert.JSONEq(t, `{"to":"optimism","custom":"999"}`, string(raw))

	var decoded map[string]ChainID
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, ChainOptimism, decoded["to"])
	assert.Equal(t, ChainID(999), decoded["custom"])
	assert.True(t, ChainID(0).IsZero())
}

func TestKnownChains(t *testing.T) {
	chains := KnownChains()
	require.Len(t, chains, 9)
	assert.Equal(t, ChainEthereum, chains[0])
	assert.Equal(t, ChainArbitrumSepolia, chains[len(chains)-1])
}
