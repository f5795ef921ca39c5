package adapter

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/types"
)

var (
	owner     = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	stranger  = common.HexToAddress("0x00000000000000000000000000000000000000b2")
	usdc      = common.HexToAddress("0x0000000000000000000000000000000000000c01")
	recipient = common.HexToAddress("0x0000000000000000000000000000000000000d01")
	spokePool = common.HexToAddress("0x0000000000000000000000000000000000000e01")
	hopBridge = common.HexToAddress("0x0000000000000000000000000000000000000e02")
	hopAMM    = common.HexToAddress("0x0000000000000000000000000000000000000e03")
	sgRouter  = common.HexToAddress("0x0000000000000000000000000000000000000e04")
	fixedNow  = time.Unix(1_700_000_000, 0)
)

type variant interface {
	BridgeAdapter
	Admin
	SetClock(func() time.Time)
}

// newVariants returns one configured instance of every provider, all
// recording their downstream calls into sub
func newVariants(t *testing.T, sub *RecordingSubmitter) map[string]variant {
	t.Helper()
	d, err := NewABIDispatcher(sub)
	require.NoError(t, err)

	ref := NewReference(owner, d)
	require.NoError(t, ref.AdmitAsset(owner, usdc, AssetParams{}))

	across := NewAcross(owner, spokePool, d)
	require.NoError(t, across.AdmitAsset(owner, usdc, AssetParams{MinAmount: uint256.NewInt(100)}))

	hop := NewHop(owner, d)
	require.NoError(t, hop.AdmitAsset(owner, usdc, AssetParams{Endpoint: hopBridge, AMM: hopAMM}))

	sg := NewStargate(owner, sgRouter, d)
	require.NoError(t, sg.AdmitAsset(owner, usdc, AssetParams{PoolID: 1}))

	out := map[string]variant{"reference": ref, "across": across, "hop": hop, "stargate": sg}
	for _, v := range out {
		v.SetClock(func() time.Time { return fixedNow })
	}
	return out
}

func TestQuoteFeesAndEstimates(t *testing.T) {
	variants := newVariants(t, &RecordingSubmitter{})
	amount := uint256.NewInt(1_000_000)

	tests := []struct {
		variant string
		name    string
		fee     uint64
		time    uint64
		gas     uint64
	}{
		{"reference", ReferenceName, 1_000, 300, 100_000},
		{"across", AcrossName, 1_500, 180, 120_000},
		{"hop", HopName, 1_400, 300, 150_000},
		{"stargate", StargateName, 600, 900, 250_000},
	}

	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			q, err := variants[tt.variant].Quote(context.Background(), types.ChainEthereum, types.ChainArbitrum, usdc, amount)
			require.NoError(t, err)
			assert.Equal(t, tt.name, q.ProviderName)
			assert.Equal(t, tt.fee, q.Fee.Uint64())
			assert.Equal(t, tt.time, q.EstimatedTime)
			assert.Equal(t, tt.gas, q.EstimatedGas)
			assert.True(t, q.Available)
			assert.Equal(t, uint64(1_000_000), amount.Uint64(), "quote must not mutate the amount")
		})
	}
}

func TestQuoteAdmission(t *testing.T) {
	for name, v := range newVariants(t, &RecordingSubmitter{}) {
		t.Run(name, func(t *testing.T) {
			_, err := v.Quote(context.Background(), 1, types.ChainArbitrum, common.HexToAddress("0xdead"), uint256.NewInt(1_000))
			assert.True(t, errors.Is(err, errs.ErrUnsupportedAsset))
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}

	across := newVariants(t, &RecordingSubmitter{})["across"]
	_, err := across.Quote(context.Background(), 1, types.ChainArbitrum, usdc, uint256.NewInt(99))
	assert.True(t, errors.Is(err, errs.ErrBelowMinimum))
	_, err = across.Quote(context.Background(), 1, types.ChainArbitrum, usdc, uint256.NewInt(100))
	assert.NoError(t, err)
}

func TestTransferDispatchesDownstreamCalls(t *testing.T) {
	sub := &RecordingSubmitter{}
	variants := newVariants(t, sub)
	d, err := NewABIDispatcher(nil)
	require.NoError(t, err)
	amount := uint256.NewInt(1_000_000)

	tests := []struct {
		variant string
		to      common.Address
		method  string
		check   func(t *testing.T, args []interface{})
	}{
		{"reference", usdc, MethodTransfer, func(t *testing.T, args []interface{}) {
			assert.Equal(t, recipient, args[0])
			assert.Equal(t, big.NewInt(1_000_000).String(), args[1].(*big.Int).String())
		}},
		{"across", spokePool, MethodDeposit, func(t *testing.T, args []interface{}) {
			assert.Equal(t, recipient, args[0])
			assert.Equal(t, usdc, args[1])
			assert.Equal(t, big.NewInt(42161).String(), args[3].(*big.Int).String())
			assert.Equal(t, uint64(15*relayerFeePctPerBasis), args[4])
			assert.Equal(t, uint32(fixedNow.Unix()), args[5])
		}},
		{"hop", hopBridge, MethodSendToL2, func(t *testing.T, args []interface{}) {
			assert.Equal(t, big.NewInt(42161).String(), args[0].(*big.Int).String())
			assert.Equal(t, big.NewInt(995_000).String(), args[3].(*big.Int).String())
			assert.Equal(t, fixedNow.Add(20*time.Minute).Unix(), args[4].(*big.Int).Int64())
			assert.Equal(t, big.NewInt(1_400).String(), args[6].(*big.Int).String())
		}},
		{"stargate", sgRouter, MethodSwap, func(t *testing.T, args []interface{}) {
			assert.Equal(t, uint16(110), args[0])
			assert.Equal(t, big.NewInt(1).String(), args[1].(*big.Int).String())
			assert.Equal(t, big.NewInt(995_000).String(), args[5].(*big.Int).String())
			assert.Equal(t, recipient, args[6])
		}},
	}

	for i, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			err := variants[tt.variant].Transfer(context.Background(), types.ChainArbitrum, usdc, amount, recipient, nil)
			require.NoError(t, err)

			subs := sub.Submissions()
			require.Len(t, subs, i+1)
			last := subs[i]
			assert.Equal(t, tt.to, last.To)

			method, err := d.abi.MethodById(last.Calldata[:4])
			require.NoError(t, err)
			assert.Equal(t, tt.method, method.Name)
			args, err := method.Inputs.Unpack(last.Calldata[4:])
			require.NoError(t, err)
			tt.check(t, args)
		})
	}
}

func TestTransferAdmission(t *testing.T) {
	for name, v := range newVariants(t, &RecordingSubmitter{}) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			err := v.Transfer(ctx, types.ChainArbitrum, usdc, uint256.NewInt(0), recipient, nil)
			assert.True(t, errors.Is(err, errs.ErrInvalidAmount))

			err = v.Transfer(ctx, types.ChainArbitrum, usdc, uint256.NewInt(1_000), common.Address{}, nil)
			assert.True(t, errors.Is(err, errs.ErrInvalidAddress))

			err = v.Transfer(ctx, types.ChainArbitrum, common.HexToAddress("0xdead"), uint256.NewInt(1_000), recipient, nil)
			assert.True(t, errors.Is(err, errs.ErrUnsupportedAsset))
		})
	}
}

func TestTransferRequiresEndpoint(t *testing.T) {
	sub := &RecordingSubmitter{}
	d, err := NewABIDispatcher(sub)
	require.NoError(t, err)
	amount := uint256.NewInt(1_000)

	across := NewAcross(owner, common.Address{}, d)
	require.NoError(t, across.AdmitAsset(owner, usdc, AssetParams{}))
	err = across.Transfer(context.Background(), types.ChainArbitrum, usdc, amount, recipient, nil)
	assert.True(t, errors.Is(err, errs.ErrEndpointNotSet))

	require.NoError(t, across.SetEndpoint(owner, spokePool))
	assert.NoError(t, across.Transfer(context.Background(), types.ChainArbitrum, usdc, amount, recipient, nil))

	sg := NewStargate(owner, common.Address{}, d)
	require.NoError(t, sg.AdmitAsset(owner, usdc, AssetParams{PoolID: 2}))
	err = sg.Transfer(context.Background(), types.ChainArbitrum, usdc, amount, recipient, nil)
	assert.True(t, errors.Is(err, errs.ErrEndpointNotSet))
	assert.Len(t, sub.Submissions(), 1, "failed transfers dispatch nothing")
}

func TestAdmitAssetValidation(t *testing.T) {
	hop := NewHop(owner, nil)
	assert.True(t, errors.Is(hop.AdmitAsset(owner, usdc, AssetParams{Endpoint: hopBridge}), errs.ErrInvalidAddress))
	assert.True(t, errors.Is(hop.AdmitAsset(stranger, usdc, AssetParams{Endpoint: hopBridge, AMM: hopAMM}), errs.ErrUnauthorized))

	sg := NewStargate(owner, sgRouter, nil)
	assert.True(t, errors.Is(sg.AdmitAsset(owner, usdc, AssetParams{}), errs.ErrInvalidAddress))

	ref := NewReference(owner, nil)
	assert.True(t, errors.Is(ref.AdmitAsset(owner, common.Address{}, AssetParams{}), errs.ErrInvalidAddress))
	assert.Empty(t, ref.SupportedAssets())

	require.NoError(t, ref.AdmitAsset(owner, usdc, AssetParams{}))
	assert.Equal(t, []common.Address{usdc}, ref.SupportedAssets())
	require.NoError(t, ref.RemoveAsset(owner, usdc))
	assert.True(t, errors.Is(ref.RemoveAsset(owner, usdc), errs.ErrUnsupportedAsset))
}

func TestSetFeeBps(t *testing.T) {
	across := NewAcross(owner, spokePool, nil)
	hop := NewHop(owner, nil)

	for name, setter := range map[string]FeeSetter{"across": across, "hop": hop} {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, setter.SetFeeBps(owner, 1_000))
			assert.True(t, errors.Is(setter.SetFeeBps(owner, 1_001), errs.ErrFeeTooHigh))
			assert.True(t, errors.Is(setter.SetFeeBps(stranger, 5), errs.ErrUnauthorized))
		})
	}

	require.NoError(t, across.SetFeeBps(owner, 30))
	assert.Equal(t, uint64(30), across.FeeBps())
	require.NoError(t, across.AdmitAsset(owner, usdc, AssetParams{}))
	q, err := across.Quote(context.Background(), 1, types.ChainArbitrum, usdc, uint256.NewInt(1_000_000))
	require.NoError(t, err)
	assert.Equal(t, uint64(3_000), q.Fee.Uint64())

	assert.True(t, errors.Is(across.SetEndpoint(owner, common.Address{}), errs.ErrInvalidAddress))
	assert.True(t, errors.Is(across.SetEndpoint(stranger, spokePool), errs.ErrUnauthorized))
}

func TestPausedProvider(t *testing.T) {
	ref := NewReference(owner, nil)
	require.NoError(t, ref.AdmitAsset(owner, usdc, AssetParams{}))
	assert.True(t, errors.Is(ref.SetActive(stranger, false), errs.ErrUnauthorized))
	require.NoError(t, ref.SetActive(owner, false))

	assert.False(t, ref.Describe().Active)
	q, err := ref.Quote(context.Background(), 1, types.ChainArbitrum, usdc, uint256.NewInt(1_000))
	require.NoError(t, err)
	assert.False(t, q.Available)

	err = ref.Transfer(context.Background(), types.ChainArbitrum, usdc, uint256.NewInt(1_000), recipient, nil)
	assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
}

func TestStargateUnmappedDestination(t *testing.T) {
	sg := newVariants(t, &RecordingSubmitter{})["stargate"]
	q, err := sg.Quote(context.Background(), 1, types.ChainArbitrumSepolia, usdc, uint256.NewInt(1_000))
	require.NoError(t, err)
	assert.False(t, q.Available)

	err = sg.Transfer(context.Background(), types.ChainArbitrumSepolia, usdc, uint256.NewInt(1_000), recipient, nil)
	assert.True(t, errors.Is(err, errs.ErrInvalidChain))
}

func TestSubmitterFailureIsUnavailable(t *testing.T) {
	sub := &RecordingSubmitter{Err: errors.New("nonce too low")}
	ref := newVariants(t, sub)["reference"]

	err := ref.Transfer(context.Background(), types.ChainArbitrum, usdc, uint256.NewInt(1_000), recipient, nil)
	assert.True(t, errors.Is(err, errs.ErrProviderUnavailable))
	assert.Contains(t, err.Error(), "nonce too low")
	assert.Empty(t, sub.Submissions())
}

func TestFeePolicies(t *testing.T) {
	amount := uint256.NewInt(1_000_000)
	assert.Equal(t, uint64(1_000), FlatFee{Divisor: 1000}.Fee(amount).Uint64())
	assert.Equal(t, uint64(1_500), Proportional{Bps: 15}.Fee(amount).Uint64())
	assert.Equal(t, uint64(1_400), ProportionalPlusLiquidity{Bps: 10, LiquidityBps: 4}.Fee(amount).Uint64())
	assert.Equal(t, uint64(600), PoolBased{Bps: 6}.Fee(amount).Uint64())
	assert.Equal(t, uint64(995_000), slippageFloor(amount).Uint64())
}
