package oracle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/events"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/oracle"
	mock_oracle "github.com/yourorg/settlement-switch/internal/oracle/mock"
	"github.com/yourorg/settlement-switch/internal/types"
)

var (
	authority = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	stranger  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	usdc      = common.HexToAddress("0x0000000000000000000000000000000000000c01")
	usdcFeed  = common.HexToAddress("0x0000000000000000000000000000000000000f01")
	ethFeed   = common.HexToAddress("0x0000000000000000000000000000000000000f02")
	arbitrum  = types.ChainArbitrum
	fiftyGwei = uint256.NewInt(50_000_000_000)
	ethPrice  = uint256.NewInt(200_000_000_000)
)

func newConfiguredOracle(t *testing.T) (*oracle.PriceOracle, *oracle.StaticFeeds) {
	t.Helper()
	feeds := oracle.NewStaticFeeds()
	feeds.Set(usdcFeed, oracle.FallbackStablecoinPrice)
	feeds.Set(ethFeed, ethPrice)

	o := oracle.New(authority, feeds)
	require.NoError(t, o.SetAssetFeed(authority, usdc, usdcFeed))
	require.NoError(t, o.SetNativeFeed(authority, arbitrum, ethFeed))
	require.NoError(t, o.SetGasPrice(authority, arbitrum, fiftyGwei))
	return o, feeds
}

func TestCalculateGasCost(t *testing.T) {
	o, _ := newConfiguredOracle(t)
	ctx := context.Background()

	cost, err := o.CalculateGasCost(ctx, arbitrum, 100_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), cost.Uint64(), "100k gas at 50 gwei and $2000 is $10.00")

	zero, err := o.CalculateGasCost(ctx, arbitrum, 0)
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestCalculateGasCostSaturates(t *testing.T) {
	feeds := oracle.NewStaticFeeds()
	feeds.Set(ethFeed, fixedpoint.Max())
	o := oracle.New(authority, feeds)
	require.NoError(t, o.SetNativeFeed(authority, arbitrum, ethFeed))
	require.NoError(t, o.SetGasPrice(authority, arbitrum, fixedpoint.Max()))

	cost, err := o.CalculateGasCost(context.Background(), arbitrum, 1<<63)
	require.NoError(t, err)
	assert.True(t, fixedpoint.IsMax(cost))
}

func TestCalculateGasCostMissingConfiguration(t *testing.T) {
	o, _ := newConfiguredOracle(t)
	ctx := context.Background()

	_, err := o.CalculateGasCost(ctx, types.ChainOptimism, 100_000)
	assert.True(t, errors.Is(err, errs.ErrGasPriceNotConfigured))

	require.NoError(t, o.SetGasPrice(authority, types.ChainOptimism, fiftyGwei))
	_, err = o.CalculateGasCost(ctx, types.ChainOptimism, 100_000)
	assert.True(t, errors.Is(err, errs.ErrFeedNotConfigured))
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestAssetPrice(t *testing.T) {
	o, feeds := newConfiguredOracle(t)
	ctx := context.Background()

	price, err := o.AssetPrice(ctx, usdc)
	require.NoError(t, err)
	assert.Equal(t, uint64(100_000_000), price.Uint64())

	_, err = o.AssetPrice(ctx, common.HexToAddress("0xdead"))
	assert.True(t, errors.Is(err, errs.ErrFeedNotConfigured))

	feeds.SetRound(usdcFeed, oracle.Round{Answer: uint256.NewInt(1), UpdatedAt: time.Now().Add(-2 * time.Hour)})
	_, err = o.AssetPrice(ctx, usdc)
	assert.True(t, errors.Is(err, errs.ErrStalePrice))

	o.WithMaxPriceAge(0)
	price, err = o.AssetPrice(ctx, usdc)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), price.Uint64())

	feeds.Set(usdcFeed, uint256.NewInt(0))
	_, err = o.AssetPrice(ctx, usdc)
	assert.True(t, errors.Is(err, errs.ErrInvalidPrice))
}

func TestSettersAreAuthorityGated(t *testing.T) {
	o := oracle.New(authority, nil)

	tests := []struct {
		name string
		call func() error
		want *errs.Error
	}{
		{"asset feed stranger", func() error { return o.SetAssetFeed(stranger, usdc, usdcFeed) }, errs.ErrUnauthorized},
		{"asset feed zero asset", func() error { return o.SetAssetFeed(authority, common.Address{}, usdcFeed) }, errs.ErrInvalidAddress},
		{"asset feed zero feed", func() error { return o.SetAssetFeed(authority, usdc, common.Address{}) }, errs.ErrInvalidAddress},
		{"native feed stranger", func() error { return o.SetNativeFeed(stranger, arbitrum, ethFeed) }, errs.ErrUnauthorized},
		{"native feed zero chain", func() error { return o.SetNativeFeed(authority, 0, ethFeed) }, errs.ErrInvalidChain},
		{"native feed zero feed", func() error { return o.SetNativeFeed(authority, arbitrum, common.Address{}) }, errs.ErrInvalidAddress},
		{"gas price stranger", func() error { return o.SetGasPrice(stranger, arbitrum, fiftyGwei) }, errs.ErrUnauthorized},
		{"gas price zero chain", func() error { return o.SetGasPrice(authority, 0, fiftyGwei) }, errs.ErrInvalidChain},
		{"gas price zero", func() error { return o.SetGasPrice(authority, arbitrum, uint256.NewInt(0)) }, errs.ErrInvalidGasPrice},
		{"gas price nil", func() error { return o.SetGasPrice(authority, arbitrum, nil) }, errs.ErrInvalidGasPrice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := o.GasPrice(context.Background(), arbitrum)
	assert.True(t, errors.Is(err, errs.ErrGasPriceNotConfigured), "rejected setters leave no state")
}

func TestSettersPublishEvents(t *testing.T) {
	recorder := events.NewRecorder()
	o := oracle.New(authority, nil).WithSink(recorder)

	require.NoError(t, o.SetAssetFeed(authority, usdc, usdcFeed))
	require.NoError(t, o.SetNativeFeed(authority, arbitrum, ethFeed))
	require.NoError(t, o.SetGasPrice(authority, arbitrum, fiftyGwei))
	require.Error(t, o.SetGasPrice(stranger, arbitrum, fiftyGwei))

	assert.Equal(t, []model.EventKind{
		model.EventAssetFeedSet,
		model.EventNativeFeedSet,
		model.EventGasPriceSet,
	}, recorder.Kinds())
	last := recorder.Events()[2]
	assert.Equal(t, "42161", last.Fields["chain"])
	assert.Equal(t, "50000000000", last.Fields["gas_price"])
}

func TestGasPriceLastWriteWins(t *testing.T) {
	o, _ := newConfiguredOracle(t)
	require.NoError(t, o.SetGasPrice(authority, arbitrum, uint256.NewInt(7)))

	price, err := o.GasPrice(context.Background(), arbitrum)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), price.Uint64())
}

func TestReaderFailureIsUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	reader := mock_oracle.NewMockFeedReader(ctrl)
	reader.EXPECT().LatestRound(gomock.Any(), usdcFeed).Return(oracle.Round{}, errors.New("rpc down"))

	o := oracle.New(authority, reader)
	require.NoError(t, o.SetAssetFeed(authority, usdc, usdcFeed))

	_, err := o.AssetPrice(context.Background(), usdc)
	assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
	assert.Contains(t, err.Error(), "rpc down")
}

func TestFallbackReader(t *testing.T) {
	ctrl := gomock.NewController(t)
	primary := mock_oracle.NewMockFeedReader(ctrl)
	primary.EXPECT().LatestRound(gomock.Any(), ethFeed).Return(oracle.Round{}, errors.New("unreachable"))

	static := oracle.NewStaticFeeds()
	static.Pin(ethFeed, oracle.FallbackETHPrice)

	reader := oracle.FallbackReader{primary, static}
	round, err := reader.LatestRound(context.Background(), ethFeed)
	require.NoError(t, err)
	assert.Equal(t, uint64(200_000_000_000), round.Answer.Uint64())
	assert.WithinDuration(t, time.Now(), round.UpdatedAt, time.Second)

	_, err = oracle.FallbackReader{}.LatestRound(context.Background(), ethFeed)
	assert.Error(t, err)
}

func TestFallbackPrices(t *testing.T) {
	prices := oracle.FallbackPrices()
	assert.Equal(t, uint64(100_000_000), prices["DAI"].Uint64())
	assert.Equal(t, uint64(70_000_000), prices["MATIC"].Uint64())
	assert.Equal(t, uint64(200_000_000_000), prices["ETH"].Uint64())
}
