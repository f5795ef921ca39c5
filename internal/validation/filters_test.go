package validation

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"

	"github.com/yourorg/settlement-switch/internal/errs"
	"github.com/yourorg/settlement-switch/internal/model"
	"github.com/yourorg/settlement-switch/internal/types"
)

func validRequest() model.TransferRequest {
	return model.TransferRequest{
		FromChain: types.ChainEthereum,
		ToChain:   types.ChainArbitrum,
		Asset:     common.HexToAddress("0x0c01"),
		Amount:    uint256.NewInt(1_000_000),
		Recipient: common.HexToAddress("0x0d01"),
	}
}

func TestValidateRequest_BasicCriteria(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.TransferRequest)
		want   *errs.Error
	}{
		{name: "valid request", mutate: func(*model.TransferRequest) {}},
		{name: "zero source chain", mutate: func(r *model.TransferRequest) { r.FromChain = 0 }, want: errs.ErrInvalidChain},
		{name: "zero destination chain", mutate: func(r *model.TransferRequest) { r.ToChain = 0 }, want: errs.ErrInvalidChain},
		{name: "null asset", mutate: func(r *model.TransferRequest) { r.Asset = common.Address{} }, want: errs.ErrInvalidAddress},
		{name: "null recipient", mutate: func(r *model.TransferRequest) { r.Recipient = common.Address{} }, want: errs.ErrInvalidAddress},
		{name: "zero amount", mutate: func(r *model.TransferRequest) { r.Amount = uint256.NewInt(0) }, want: errs.ErrInvalidAmount},
		{name: "missing amount", mutate: func(r *model.TransferRequest) { r.Amount = nil }, want: errs.ErrInvalidAmount},
		{name: "same chain allowed by default", mutate: func(r *model.TransferRequest) { r.ToChain = r.FromChain }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			err := ValidateRequest(req)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.Equal(t, errs.KindValidation, errs.KindOf(err))
		})
	}
}

func TestValidateRequestWithOptions_CustomSettings(t *testing.T) {
	opts := ValidationOptions{
		EnabledChains: map[types.ChainID]bool{types.ChainEthereum: true, types.ChainArbitrum: true},
		MaxAmount:     uint256.NewInt(5_000_000),
	}

	assert.NoError(t, ValidateRequestWithOptions(validRequest(), opts))

	sameChain := validRequest()
	sameChain.ToChain = sameChain.FromChain
	assert.True(t, errors.Is(ValidateRequestWithOptions(sameChain, opts), errs.ErrInvalidChain))

	disabled := validRequest()
	disabled.ToChain = types.ChainPolygon
	err := ValidateRequestWithOptions(disabled, opts)
	assert.True(t, errors.Is(err, errs.ErrInvalidChain))
	assert.Contains(t, err.Error(), "polygon")

	tooLarge := validRequest()
	tooLarge.Amount = uint256.NewInt(5_000_001)
	assert.True(t, errors.Is(ValidateRequestWithOptions(tooLarge, opts), errs.ErrInvalidAmount))
}
