package app

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/settlement-switch/internal/config"
	"github.com/yourorg/settlement-switch/internal/fixedpoint"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/security"
	"github.com/yourorg/settlement-switch/internal/types"
)

const testKey = "b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291"

var (
	usdc      = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
	reference = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	stargate  = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	across    = common.HexToAddress("0x00000000000000000000000000000000000000a3")
)

const testDoc = `
oracle:
  assets:
    - asset: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
      symbol: USDC
      feed: "0x00000000000000000000000000000000000000f1"
  native:
    - chain: arbitrum
      feed: "0x00000000000000000000000000000000000000f2"
      price: "2000"
      gas_price_gwei: "50"
router:
  assets:
    - "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
adapters:
  - kind: reference
    id: "0x00000000000000000000000000000000000000a1"
    assets:
      - asset: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
  - kind: stargate
    id: "0x00000000000000000000000000000000000000a2"
    endpoint: "0x00000000000000000000000000000000000000e2"
    assets:
      - asset: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
        pool_id: 1
  - kind: across
    id: "0x00000000000000000000000000000000000000a3"
    paused: true
journal:
  backend: memory
`

func newTestApp(t *testing.T, doc string) *App {
	t.Helper()
	file, err := config.ParseFile([]byte(doc))
	require.NoError(t, err)

	a, err := New(context.Background(), config.Config{OperatorKey: testKey}, file)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func testRequest() model.TransferRequest {
	return model.TransferRequest{
		FromChain: types.ChainEthereum,
		ToChain:   types.ChainArbitrum,
		Asset:     usdc,
		Amount:    fixedpoint.New(1_000_000),
		Recipient: common.HexToAddress("0x00000000000000000000000000000000000000b1"),
	}
}

func TestNewAssemblesRouter(t *testing.T) {
	a := newTestApp(t, testDoc)

	key, err := security.ParseKey(testKey)
	require.NoError(t, err)
	assert.Equal(t, security.AddressFromKey(key), a.Authority)
	assert.Equal(t, a.Authority, a.Router.Authority())
	assert.True(t, a.Router.Initialized())

	// the paused provider is configured but never admitted
	assert.Equal(t, 2, a.Router.AdapterCount())
	require.Len(t, a.Providers, 2)
	assert.Equal(t, reference, a.Providers[0].ID)
	assert.Equal(t, config.KindStargate, a.Providers[1].Kind)
	assert.Equal(t, []common.Address{usdc}, a.Router.SupportedAssets())

	cost, err := a.Oracle.CalculateGasCost(context.Background(), types.ChainArbitrum, 100_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), cost.Uint64())
}

func TestBestRouteAndExecution(t *testing.T) {
	a := newTestApp(t, testDoc)
	ctx := context.Background()

	best, err := a.Router.FindBestRoute(ctx, testRequest())
	require.NoError(t, err)
	assert.Equal(t, reference, best.ProviderID)
	assert.Equal(t, uint64(1_000_000_000), best.TotalCostUSD.Uint64())

	receipt, err := a.Router.Execute(ctx, testRequest())
	require.NoError(t, err)
	assert.Equal(t, reference, receipt.ProviderID)
	assert.Equal(t, uint64(1), a.Router.TotalTransfers().Uint64())

	receipts, err := a.Journal.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.Equal(t, receipt.ID, receipts[0].ID)
	assert.NoError(t, security.VerifyReceipt(receipts[0], a.Signer.Address()))
}

func TestBreakers(t *testing.T) {
	a := newTestApp(t, testDoc)

	statuses := a.Breakers()
	require.Len(t, statuses, 2)
	assert.Equal(t, stargate, statuses[1].ID)
	assert.Equal(t, "Stargate", statuses[1].Provider)
	assert.Equal(t, "closed", statuses[1].State)

	assert.True(t, a.ResetBreaker(reference))
	assert.False(t, a.ResetBreaker(across))
	assert.Nil(t, a.WebhookStatus())

	families, err := a.Metrics.Gather()
	require.NoError(t, err)
	var found bool
	for _, mf := range families {
		if mf.GetName() == "settlement_circuit_breaker_state" {
			found = true
			assert.Len(t, mf.GetMetric(), 2)
		}
	}
	assert.True(t, found)
}

func TestBreakerDisabled(t *testing.T) {
	a := newTestApp(t, testDoc+"circuit_breaker:\n  enabled: false\n")

	assert.Empty(t, a.Breakers())
	assert.Equal(t, 2, a.Router.AdapterCount())
}

func TestAuthorityMismatch(t *testing.T) {
	file, err := config.ParseFile([]byte(testDoc + "authority: \"0x00000000000000000000000000000000000000c1\"\n"))
	require.NoError(t, err)

	_, err = New(context.Background(), config.Config{OperatorKey: testKey}, file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match operator key")
}

func TestEphemeralOperatorKey(t *testing.T) {
	file, err := config.ParseFile([]byte(testDoc))
	require.NoError(t, err)

	a, err := New(context.Background(), config.Config{}, file)
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, a.Signer.Address(), a.Authority)
}

func TestLevelDBJournal(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal", "transfers")
	doc := strings.Replace(testDoc, "backend: memory", "backend: leveldb\n  path: "+path, 1)
	a := newTestApp(t, doc)

	_, err := a.Router.Execute(context.Background(), testRequest())
	require.NoError(t, err)

	receipts, err := a.Journal.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, receipts, 1)
}

func TestInvalidFileIsRejected(t *testing.T) {
	file := config.DefaultFile()
	file.Journal.Backend = "tape"

	_, err := New(context.Background(), config.Config{OperatorKey: testKey}, file)
	assert.ErrorContains(t, err, "unknown backend")
}
