package oracle

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAggregator answers decimals and latestRoundData from fixed values
type fakeAggregator struct {
	t         *testing.T
	reader    *ChainlinkReader
	decimals  uint8
	answer    *big.Int
	updatedAt int64
	err       error
	calls     []common.Address
}

func (f *fakeAggregator) CallContract(_ context.Context, call ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, *call.To)
	method, err := f.reader.abi.MethodById(call.Data[:4])
	require.NoError(f.t, err)

	switch method.Name {
	case "decimals":
		return method.Outputs.Pack(f.decimals)
	default:
		return method.Outputs.Pack(big.NewInt(7), f.answer, big.NewInt(f.updatedAt), big.NewInt(f.updatedAt), big.NewInt(7))
	}
}

func newFakeReader(t *testing.T, decimals uint8, answer int64, updatedAt int64) (*ChainlinkReader, *fakeAggregator) {
	fake := &fakeAggregator{t: t, decimals: decimals, answer: big.NewInt(answer), updatedAt: updatedAt}
	reader, err := NewChainlinkReader(fake)
	require.NoError(t, err)
	fake.reader = reader
	return reader, fake
}

func TestChainlinkReaderLatestRound(t *testing.T) {
	feed := common.HexToAddress("0x639Fe6ab55C921f74e7fac1ee960C0B6293ba612")
	updated := time.Now().Add(-time.Minute).Unix()

	tests := []struct {
		name     string
		decimals uint8
		answer   int64
		expected uint64
	}{
		{"eight decimals", 8, 200_000_000_000, 200_000_000_000},
		{"eighteen decimals", 18, 1_000_000_000_000_000_000, 100_000_000},
		{"six decimals", 6, 700_000, 70_000_000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, fake := newFakeReader(t, tt.decimals, tt.answer, updated)
			round, err := reader.LatestRound(context.Background(), feed)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, round.Answer.Uint64())
			assert.Equal(t, updated, round.UpdatedAt.Unix())
			assert.Equal(t, []common.Address{feed, feed}, fake.calls)
		})
	}
}

func TestChainlinkReaderRejectsNonPositiveAnswer(t *testing.T) {
	reader, _ := newFakeReader(t, 8, -5, time.Now().Unix())
	_, err := reader.LatestRound(context.Background(), common.HexToAddress("0x01"))
	assert.ErrorContains(t, err, "non-positive answer")
}

func TestChainlinkReaderPropagatesCallErrors(t *testing.T) {
	reader, fake := newFakeReader(t, 8, 1, time.Now().Unix())
	fake.err = errors.New("execution reverted")
	_, err := reader.LatestRound(context.Background(), common.HexToAddress("0x01"))
	assert.ErrorContains(t, err, "execution reverted")
}
