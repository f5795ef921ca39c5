// Package security signs and verifies transfer receipts with the operator's
// secp256k1 key.
package security

import (
	"crypto/ecdsa"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/sirupsen/logrus"

	"github.com/yourorg/settlement-switch/internal/model"
)

// ReceiptSigner signs receipts with the operator key
type ReceiptSigner struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewReceiptSigner creates a signer for key
func NewReceiptSigner(key *ecdsa.PrivateKey) *ReceiptSigner {
	s := &ReceiptSigner{privateKey: key, address: crypto.PubkeyToAddress(key.PublicKey)}
	logrus.Infof("Receipt signer initialized for %s", s.address.Hex())
	return s
}

// ParseKey decodes a hex private key, with or without 0x prefix
func ParseKey(hexKey string) (*ecdsa.PrivateKey, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}
	return key, nil
}

// AddressFromKey returns the identity derived from key
func AddressFromKey(key *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(key.PublicKey)
}

// Address returns the signing identity
func (s *ReceiptSigner) Address() common.Address {
	return s.address
}

// SignReceipt returns a copy of r carrying a 65-byte signature over the
// keccak256 hash of its unsigned JSON encoding
func (s *ReceiptSigner) SignReceipt(r model.Receipt) (model.Receipt, error) {
	hash, err := receiptHash(r)
	if err != nil {
		return r, err
	}
	sig, err := crypto.Sign(hash.Bytes(), s.privateKey)
	if err != nil {
		return r, fmt.Errorf("failed to sign receipt: %w", err)
	}
	r.Signature = sig
	return r, nil
}

// VerifyReceipt recovers the signer of r and compares it with expected
func VerifyReceipt(r model.Receipt, expected common.Address) error {
	if len(r.Signature) != crypto.SignatureLength {
		return fmt.Errorf("invalid signature length: %d", len(r.Signature))
	}
	hash, err := receiptHash(r)
	if err != nil {
		return err
	}
	pub, err := crypto.SigToPub(hash.Bytes(), r.Signature)
	if err != nil {
		return fmt.Errorf("failed to recover signer: %w", err)
	}
	if signer := crypto.PubkeyToAddress(*pub); signer != expected {
		return fmt.Errorf("signature verification failed: signed by %s", signer.Hex())
	}
	return nil
}

func receiptHash(r model.Receipt) (common.Hash, error) {
	payload, err := json.Marshal(r.Unsigned())
	if err != nil {
		return common.Hash{}, fmt.Errorf("failed to marshal receipt: %w", err)
	}
	return crypto.Keccak256Hash(payload), nil
}
