package security

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

func testReceipt() model.Receipt {
	req := model.TransferRequest{
		FromChain: types.ChainEthereum,
		ToChain:   types.ChainArbitrum,
		Asset:     common.HexToAddress("0x0c01"),
		Amount:    uint256.NewInt(1_000_000),
		Recipient: common.HexToAddress("0x0d01"),
	}
	route := model.RankedRoute{
		ProviderID:   common.HexToAddress("0x0e01"),
		Quote:        model.Quote{ProviderName: "Reference Bridge", Fee: uint256.NewInt(1_000), Available: true},
		TotalCostUSD: uint256.NewInt(1_000_000_000),
		AmountOut:    uint256.NewInt(999_000),
	}
	return model.NewReceipt("tx-1", req, route, uint256.NewInt(100_000_000), time.Unix(1_700_000_000, 0))
}

func TestSignAndVerifyReceipt(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	signer := NewReceiptSigner(key)
	assert.Equal(t, AddressFromKey(key), signer.Address())

	signed, err := signer.SignReceipt(testReceipt())
	require.NoError(t, err)
	assert.Len(t, signed.Signature, crypto.SignatureLength)
	assert.NoError(t, VerifyReceipt(signed, signer.Address()))

	tampered := signed
	tampered.AmountOut = "999999"
	assert.Error(t, VerifyReceipt(tampered, signer.Address()))

	other, err := crypto.GenerateKey()
	require.NoError(t, err)
	assert.ErrorContains(t, VerifyReceipt(signed, AddressFromKey(other)), "signature verification failed")

	assert.ErrorContains(t, VerifyReceipt(testReceipt(), signer.Address()), "invalid signature length")
}

func TestParseKey(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	hexKey := "0x" + common.Bytes2Hex(crypto.FromECDSA(key))

	parsed, err := ParseKey(hexKey)
	require.NoError(t, err)
	assert.Equal(t, AddressFromKey(key), AddressFromKey(parsed))

	_, err = ParseKey("not-a-key")
	assert.Error(t, err)
}
