// Package solanapay builds Solana Pay transfer request URLs and finds the
// on-chain transaction that carries a payment reference.
package solanapay

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"net/url"

	"github.com/btcsuite/btcutil/base58"
)

const (
	scheme        = "solana"
	publicKeySize = ed25519.PublicKeySize
)

// NewReference returns the base58 public key of a fresh ed25519 keypair.
// The private key is discarded; the key only tags the payment transaction.
func NewReference() (string, error) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return "", fmt.Errorf("failed to generate reference key: %w", err)
	}
	return base58.Encode(pub), nil
}

// ValidatePublicKey checks that s decodes to a 32 byte public key.
func ValidatePublicKey(s string) error {
	if s == "" {
		return fmt.Errorf("public key is empty")
	}
	decoded := base58.Decode(s)
	if len(decoded) != publicKeySize {
		return fmt.Errorf("invalid public key %q: decoded to %d bytes", s, len(decoded))
	}
	return nil
}

type PaymentRequest struct {
	Recipient string
	Reference string
	Label     string
	Message   string
	Memo      string
}

// BuildPaymentURL encodes a transfer request without an amount. An empty
// recipient yields "" and no error.
func BuildPaymentURL(req PaymentRequest) (string, error) {
	if req.Recipient == "" {
		return "", nil
	}
	if err := ValidatePublicKey(req.Recipient); err != nil {
		return "", fmt.Errorf("invalid recipient: %w", err)
	}
	if err := ValidatePublicKey(req.Reference); err != nil {
		return "", fmt.Errorf("invalid reference: %w", err)
	}

	params := url.Values{}
	params.Set("reference", req.Reference)
	if req.Label != "" {
		params.Set("label", req.Label)
	}
	if req.Message != "" {
		params.Set("message", req.Message)
	}
	if req.Memo != "" {
		params.Set("memo", req.Memo)
	}

	u := url.URL{Scheme: scheme, Opaque: req.Recipient, RawQuery: params.Encode()}
	return u.String(), nil
}
