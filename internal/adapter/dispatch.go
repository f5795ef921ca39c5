package adapter

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/sirupsen/logrus"
)

// downstreamABI holds the downstream entry points the providers call
const downstreamABI = `[
	{"type":"function","name":"transfer","stateMutability":"nonpayable","inputs":[
		{"name":"recipient","type":"address"},
		{"name":"amount","type":"uint256"}
	],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"deposit","stateMutability":"payable","inputs":[
		{"name":"recipient","type":"address"},
		{"name":"originToken","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"destinationChainId","type":"uint256"},
		{"name":"relayerFeePct","type":"uint64"},
		{"name":"quoteTimestamp","type":"uint32"}
	],"outputs":[]},
	{"type":"function","name":"sendToL2","stateMutability":"payable","inputs":[
		{"name":"chainId","type":"uint256"},
		{"name":"recipient","type":"address"},
		{"name":"amount","type":"uint256"},
		{"name":"amountOutMin","type":"uint256"},
		{"name":"deadline","type":"uint256"},
		{"name":"relayer","type":"address"},
		{"name":"relayerFee","type":"uint256"}
	],"outputs":[]},
	{"type":"function","name":"swap","stateMutability":"payable","inputs":[
		{"name":"dstChainId","type":"uint16"},
		{"name":"srcPoolId","type":"uint256"},
		{"name":"dstPoolId","type":"uint256"},
		{"name":"refundAddress","type":"address"},
		{"name":"amountLD","type":"uint256"},
		{"name":"minAmountLD","type":"uint256"},
		{"name":"to","type":"address"},
		{"name":"payload","type":"bytes"}
	],"outputs":[]}
]`

// Downstream method names
const (
	MethodTransfer = "transfer"
	MethodDeposit  = "deposit"
	MethodSendToL2 = "sendToL2"
	MethodSwap     = "swap"
)

// Call is one downstream contract invocation
type Call struct {
	// To is the downstream contract
	To common.Address

	// Method is a function of the downstream ABI
	Method string

	// Args are ABI-typed arguments in declaration order
	Args []interface{}

	// Value is the native value attached to the call, if any
	Value *uint256.Int
}

// Dispatcher performs a downstream call
type Dispatcher interface {
	Dispatch(ctx context.Context, call Call) error
}

// NopDispatcher accepts every call without side effects
type NopDispatcher struct{}

// Dispatch implements Dispatcher
func (NopDispatcher) Dispatch(context.Context, Call) error { return nil }

// Submitter sends encoded calldata to a contract
type Submitter interface {
	Submit(ctx context.Context, to common.Address, calldata []byte, value *big.Int) error
}

// ABIDispatcher packs calls against the downstream ABI and submits them
type ABIDispatcher struct {
	abi       abi.ABI
	submitter Submitter
}

// NewABIDispatcher creates a dispatcher submitting through s
func NewABIDispatcher(s Submitter) (*ABIDispatcher, error) {
	parsed, err := abi.JSON(strings.NewReader(downstreamABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse downstream ABI: %w", err)
	}
	return &ABIDispatcher{abi: parsed, submitter: s}, nil
}

// Pack encodes call into calldata
func (d *ABIDispatcher) Pack(call Call) ([]byte, error) {
	data, err := d.abi.Pack(call.Method, call.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to pack %s: %w", call.Method, err)
	}
	return data, nil
}

// Dispatch implements Dispatcher
func (d *ABIDispatcher) Dispatch(ctx context.Context, call Call) error {
	data, err := d.Pack(call)
	if err != nil {
		return err
	}
	var value *big.Int
	if call.Value != nil {
		value = call.Value.ToBig()
	}
	return d.submitter.Submit(ctx, call.To, data, value)
}

// Submission is a recorded call
type Submission struct {
	To       common.Address
	Calldata []byte
	Value    *big.Int
}

// maxRecorded bounds the submissions a RecordingSubmitter retains
const maxRecorded = 1024

// RecordingSubmitter keeps the latest submissions in memory instead of
// sending them. It backs dry-run mode and tests.
type RecordingSubmitter struct {
	mu          sync.Mutex
	submissions []Submission
	// Err, when set, is returned by every Submit
	Err error
}

// Submit implements Submitter
func (r *RecordingSubmitter) Submit(_ context.Context, to common.Address, calldata []byte, value *big.Int) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.submissions) == maxRecorded {
		r.submissions = append(r.submissions[:0], r.submissions[1:]...)
	}
	r.submissions = append(r.submissions, Submission{To: to, Calldata: calldata, Value: value})
	logrus.WithFields(logrus.Fields{
		"to":       to.Hex(),
		"selector": fmt.Sprintf("0x%x", calldata[:4]),
	}).Debug("Recorded downstream call")
	return nil
}

// Submissions returns a copy of the recorded calls
func (r *RecordingSubmitter) Submissions() []Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Submission, len(r.submissions))
	copy(out, r.submissions)
	return out
}
