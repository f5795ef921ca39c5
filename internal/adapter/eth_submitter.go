package adapter

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// ChainClient is the JSON-RPC surface EthSubmitter needs. *ethclient.Client
// satisfies it.
type ChainClient interface {
	ChainID(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	SuggestGasTipCap(ctx context.Context) (*big.Int, error)
	HeaderByNumber(ctx context.Context, number *big.Int) (*ethtypes.Header, error)
	EstimateGas(ctx context.Context, call ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
}

// EthSubmitter signs downstream calls with an operator key and broadcasts
// them. Chains reporting a base fee get dynamic-fee transactions, others
// legacy ones.
type EthSubmitter struct {
	client ChainClient
	key    *ecdsa.PrivateKey
	from   common.Address

	// serializes nonce allocation
	mu sync.Mutex
}

// NewEthSubmitter creates a submitter sending from key's address
func NewEthSubmitter(client ChainClient, key *ecdsa.PrivateKey) *EthSubmitter {
	return &EthSubmitter{
		client: client,
		key:    key,
		from:   crypto.PubkeyToAddress(key.PublicKey),
	}
}

// DialEthSubmitter connects to rpcURL and returns a submitter using it
func DialEthSubmitter(ctx context.Context, rpcURL string, key *ecdsa.PrivateKey) (*EthSubmitter, error) {
	client, err := ethclient.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", rpcURL, err)
	}
	return NewEthSubmitter(client, key), nil
}

// From returns the sending address
func (s *EthSubmitter) From() common.Address {
	return s.from
}

// Submit implements Submitter
func (s *EthSubmitter) Submit(ctx context.Context, to common.Address, calldata []byte, value *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		value = new(big.Int)
	}
	chainID, err := s.client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to read chain id: %w", err)
	}
	nonce, err := s.client.PendingNonceAt(ctx, s.from)
	if err != nil {
		return fmt.Errorf("failed to read nonce: %w", err)
	}
	gas, err := s.client.EstimateGas(ctx, ethereum.CallMsg{From: s.from, To: &to, Value: value, Data: calldata})
	if err != nil {
		return fmt.Errorf("failed to estimate gas: %w", err)
	}
	head, err := s.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to read latest header: %w", err)
	}

	var tx *ethtypes.Transaction
	if head.BaseFee != nil {
		tip, err := s.client.SuggestGasTipCap(ctx)
		if err != nil {
			return fmt.Errorf("failed to suggest gas tip: %w", err)
		}
		// leaves room for the base fee to double before inclusion
		feeCap := new(big.Int).Add(tip, new(big.Int).Mul(head.BaseFee, big.NewInt(2)))
		tx = ethtypes.NewTx(&ethtypes.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			GasTipCap: tip,
			GasFeeCap: feeCap,
			Gas:       gas,
			To:        &to,
			Value:     value,
			Data:      calldata,
		})
	} else {
		gasPrice, err := s.client.SuggestGasPrice(ctx)
		if err != nil {
			return fmt.Errorf("failed to suggest gas price: %w", err)
		}
		tx = ethtypes.NewTx(&ethtypes.LegacyTx{
			Nonce:    nonce,
			GasPrice: gasPrice,
			Gas:      gas,
			To:       &to,
			Value:    value,
			Data:     calldata,
		})
	}
	signed, err := ethtypes.SignTx(tx, ethtypes.LatestSignerForChainID(chainID), s.key)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return fmt.Errorf("failed to send transaction: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"tx":    signed.Hash().Hex(),
		"to":    to.Hex(),
		"nonce": nonce,
		"gas":   gas,
	}).Info("Downstream transaction sent")
	return nil
}
