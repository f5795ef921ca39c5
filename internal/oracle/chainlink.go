package oracle

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/holiman/uint256"

	"github.com/yourorg/settlement-switch/internal/fixedpoint"
)

// aggregatorABI is the subset of the Chainlink AggregatorV3Interface used here
const aggregatorABI = `[
	{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"latestRoundData","outputs":[
		{"internalType":"uint80","name":"roundId","type":"uint80"},
		{"internalType":"int256","name":"answer","type":"int256"},
		{"internalType":"uint256","name":"startedAt","type":"uint256"},
		{"internalType":"uint256","name":"updatedAt","type":"uint256"},
		{"internalType":"uint80","name":"answeredInRound","type":"uint80"}
	],"stateMutability":"view","type":"function"}
]`

// ContractCaller executes read-only contract calls. *ethclient.Client satisfies it.
type ContractCaller interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// ChainlinkReader reads Chainlink aggregator contracts over JSON-RPC. The feed
// handle is the aggregator address.
type ChainlinkReader struct {
	caller ContractCaller
	abi    abi.ABI
}

// NewChainlinkReader creates a reader issuing calls through caller
func NewChainlinkReader(caller ContractCaller) (*ChainlinkReader, error) {
	parsed, err := abi.JSON(strings.NewReader(aggregatorABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse aggregator ABI: %w", err)
	}
	return &ChainlinkReader{caller: caller, abi: parsed}, nil
}

// DialChainlink connects to an RPC endpoint and returns a reader using it
func DialChainlink(ctx context.Context, rpcURL string) (*ChainlinkReader, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return NewChainlinkReader(client)
}

// LatestRound calls decimals and latestRoundData and rescales the answer to 8 decimals
func (r *ChainlinkReader) LatestRound(ctx context.Context, feed common.Address) (Round, error) {
	decOut, err := r.call(ctx, feed, "decimals")
	if err != nil {
		return Round{}, err
	}
	decimals, ok := decOut[0].(uint8)
	if !ok {
		return Round{}, fmt.Errorf("unexpected decimals type %T", decOut[0])
	}

	out, err := r.call(ctx, feed, "latestRoundData")
	if err != nil {
		return Round{}, err
	}
	answer, ok := out[1].(*big.Int)
	if !ok {
		return Round{}, fmt.Errorf("unexpected answer type %T", out[1])
	}
	updatedAt, ok := out[3].(*big.Int)
	if !ok {
		return Round{}, fmt.Errorf("unexpected updatedAt type %T", out[3])
	}
	if answer.Sign() <= 0 {
		return Round{}, fmt.Errorf("non-positive answer %s from feed %s", answer, feed.Hex())
	}

	price, overflow := uint256.FromBig(answer)
	if overflow {
		return Round{}, fmt.Errorf("answer from feed %s exceeds 256 bits", feed.Hex())
	}
	return Round{
		Answer:    rescale(price, uint(decimals), fixedpoint.USDDecimals),
		UpdatedAt: time.Unix(updatedAt.Int64(), 0),
	}, nil
}

func (r *ChainlinkReader) call(ctx context.Context, feed common.Address, method string) ([]interface{}, error) {
	data, err := r.abi.Pack(method)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", method, err)
	}
	raw, err := r.caller.CallContract(ctx, ethereum.CallMsg{To: &feed, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("%s call to %s failed: %w", method, feed.Hex(), err)
	}
	out, err := r.abi.Unpack(method, raw)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack %s: %w", method, err)
	}
	return out, nil
}

// rescale converts v from one decimal scale to another
func rescale(v *uint256.Int, from, to uint) *uint256.Int {
	switch {
	case from > to:
		return fixedpoint.Div(v, fixedpoint.Pow10(from-to))
	case from < to:
		return fixedpoint.Mul(v, fixedpoint.Pow10(to-from))
	default:
		return v
	}
}
