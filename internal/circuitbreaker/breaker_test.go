package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/golang/mock/gomock"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/settlement-switch/internal/adapter"
	mock_adapter "github.com/yourorg/settlement-switch/internal/adapter/mock"
	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestCircuitBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	cb := New(Thresholds{MaxFailures: 3})
	assert.Equal(t, StateClosed, cb.GetState(), "Circuit breaker should start closed")

	cause := errors.New("rpc timeout")
	cb.RecordFailure(cause)
	cb.RecordFailure(cause)
	cb.RecordSuccess()
	cb.RecordFailure(cause)
	cb.RecordFailure(cause)
	assert.Equal(t, StateClosed, cb.GetState(), "A success should reset the failure count")

	cb.RecordFailure(cause)
	assert.Equal(t, StateOpen, cb.GetState())
	assert.ErrorIs(t, cb.Allow(), ErrOpen)
}

func TestCircuitBreaker_Recovery(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cb := New(Thresholds{MaxFailures: 1}).
		WithResetDelay(time.Minute).
		WithSuccessThreshold(2).
		WithClock(clock.Now)

	cb.RecordFailure(errors.New("boom"))
	require.Equal(t, StateOpen, cb.GetState())

	clock.Advance(30 * time.Second)
	assert.ErrorIs(t, cb.Allow(), ErrOpen, "Circuit should stay open before the reset delay")

	clock.Advance(31 * time.Second)
	require.NoError(t, cb.Allow())
	assert.Equal(t, StateHalfOpen, cb.GetState())

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.GetState())
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.GetState())
}

func TestCircuitBreaker_FailureWhileHalfOpen(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	cb := New(Thresholds{MaxFailures: 1}).WithResetDelay(time.Second).WithClock(clock.Now)

	cb.RecordFailure(errors.New("boom"))
	clock.Advance(2 * time.Second)
	require.NoError(t, cb.Allow())
	cb.RecordFailure(errors.New("again"))
	assert.Equal(t, StateOpen, cb.GetState())
}

func TestCircuitBreaker_FeeThreshold(t *testing.T) {
	cb := New(Thresholds{MaxFailures: 5, MaxFeeBps: 100})
	amount := uint256.NewInt(1_000_000)

	assert.NoError(t, cb.CheckFee(uint256.NewInt(10_000), amount))
	assert.Equal(t, StateClosed, cb.GetState())

	err := cb.CheckFee(uint256.NewInt(10_001), amount)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quoted fee exceeds maximum threshold")
	assert.Equal(t, StateOpen, cb.GetState())

	assert.NoError(t, New(Thresholds{}).CheckFee(uint256.NewInt(999_999), amount), "Zero MaxFeeBps disables the check")
}

func TestCircuitBreaker_TripCallback(t *testing.T) {
	reasons := make(chan string, 1)
	cb := New(Thresholds{MaxFailures: 1}).WithTripCallback(func(reason string) { reasons <- reason })

	cb.RecordFailure(errors.New("boom"))
	select {
	case reason := <-reasons:
		assert.Contains(t, reason, "boom")
	case <-time.After(time.Second):
		t.Fatal("trip callback was not called")
	}

	cb.Reset()
	assert.Equal(t, StateClosed, cb.GetState())
	assert.NoError(t, cb.Allow())
}

func TestGuard(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	inner := mock_adapter.NewMockBridgeAdapter(ctrl)
	guard := NewGuard(inner, New(Thresholds{MaxFailures: 2, MaxFeeBps: 1000}))

	asset := common.HexToAddress("0x0c01")
	recipient := common.HexToAddress("0x0d01")
	amount := uint256.NewInt(1_000_000)
	ctx := context.Background()

	inner.EXPECT().Describe().Return(adapter.Info{Name: "Reference Bridge", Active: true}).AnyTimes()
	inner.EXPECT().Quote(ctx, types.ChainEthereum, types.ChainArbitrum, asset, amount).
		Return(model.Quote{ProviderName: "Reference Bridge", Fee: uint256.NewInt(1_000), Available: true}, nil).AnyTimes()

	q, err := guard.Quote(ctx, types.ChainEthereum, types.ChainArbitrum, asset, amount)
	require.NoError(t, err)
	assert.True(t, q.Available)

	// validation failures are not held against the provider
	inner.EXPECT().Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil).
		Return(errs.E("adapter.Transfer", errs.ErrBelowMinimum)).Times(2)
	for i := 0; i < 2; i++ {
		assert.Error(t, guard.Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil))
	}
	assert.Equal(t, StateClosed, guard.Breaker().GetState())

	inner.EXPECT().Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil).
		Return(errs.Unavailable("adapter.Transfer", errors.New("rpc down"))).Times(2)
	for i := 0; i < 2; i++ {
		assert.Error(t, guard.Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil))
	}
	assert.Equal(t, StateOpen, guard.Breaker().GetState())
	assert.False(t, guard.Describe().Active)

	q, err = guard.Quote(ctx, types.ChainEthereum, types.ChainArbitrum, asset, amount)
	require.NoError(t, err)
	assert.False(t, q.Available)

	// open circuit fails fast without reaching the provider
	err = guard.Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil)
	assert.True(t, errors.Is(err, errs.ErrProviderUnavailable))
	assert.Same(t, inner, guard.Unwrap())
}

func TestGuard_RecoversAfterResetDelay(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	inner := mock_adapter.NewMockBridgeAdapter(ctrl)
	guard := NewGuard(inner, New(Thresholds{MaxFailures: 1}).WithResetDelay(time.Minute).WithClock(clock.Now))

	asset := common.HexToAddress("0x0c01")
	recipient := common.HexToAddress("0x0d01")
	amount := uint256.NewInt(1_000_000)
	ctx := context.Background()

	inner.EXPECT().Describe().Return(adapter.Info{Name: "Reference Bridge", Active: true}).AnyTimes()
	inner.EXPECT().Quote(ctx, types.ChainEthereum, types.ChainArbitrum, asset, amount).
		Return(model.Quote{ProviderName: "Reference Bridge", Fee: uint256.NewInt(1_000), Available: true}, nil).AnyTimes()
	gomock.InOrder(
		inner.EXPECT().Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil).
			Return(errs.Unavailable("adapter.Transfer", errors.New("rpc down"))),
		inner.EXPECT().Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil).
			Return(nil),
	)

	assert.Error(t, guard.Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil))
	require.Equal(t, StateOpen, guard.Breaker().GetState())
	q, err := guard.Quote(ctx, types.ChainEthereum, types.ChainArbitrum, asset, amount)
	require.NoError(t, err)
	assert.False(t, q.Available)

	clock.Advance(time.Hour)

	q, err = guard.Quote(ctx, types.ChainEthereum, types.ChainArbitrum, asset, amount)
	require.NoError(t, err)
	assert.True(t, q.Available)
	assert.True(t, guard.Describe().Active)
	assert.Equal(t, StateHalfOpen, guard.Breaker().GetState())

	require.NoError(t, guard.Transfer(ctx, types.ChainArbitrum, asset, amount, recipient, nil))
	assert.Equal(t, StateClosed, guard.Breaker().GetState())
}
