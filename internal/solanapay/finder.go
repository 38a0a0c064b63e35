package solanapay

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
	"go.uber.org/zap"
)

const (
	DefaultRPCURL     = "https://api.devnet.solana.com"
	DefaultCommitment = "confirmed"

	signaturesPageLimit = 1000
)

// ErrReferenceNotFound means no transaction carrying the reference is visible
// at the requested commitment yet.
var ErrReferenceNotFound = errors.New("reference not found")

type Signature struct {
	Signature string
	Slot      uint64
	BlockTime *time.Time
}

// ReferenceFinder locates the transaction that paid a reference.
type ReferenceFinder interface {
	FindReference(ctx context.Context, reference string) (*Signature, error)
}

type signatureInfo struct {
	Signature          string `json:"signature"`
	Slot               uint64 `json:"slot"`
	Err                any    `json:"err"`
	BlockTime          *int64 `json:"blockTime"`
	ConfirmationStatus string `json:"confirmationStatus"`
}

type signaturesConfig struct {
	Limit      int    `json:"limit"`
	Before     string `json:"before,omitempty"`
	Commitment string `json:"commitment,omitempty"`
}

// RPCFinder queries a Solana JSON-RPC node with getSignaturesForAddress.
type RPCFinder struct {
	client     *rpc.Client
	commitment string
	log        *zap.Logger
}

var _ ReferenceFinder = (*RPCFinder)(nil)

func Dial(ctx context.Context, endpoint string, log *zap.Logger) (*RPCFinder, error) {
	if endpoint == "" {
		endpoint = DefaultRPCURL
	}

	client, err := rpc.DialOptions(ctx, endpoint, rpc.WithHTTPClient(&http.Client{Timeout: 15 * time.Second}))
	if err != nil {
		return nil, fmt.Errorf("failed to dial solana rpc %s: %w", endpoint, err)
	}

	return &RPCFinder{
		client:     client,
		commitment: DefaultCommitment,
		log:        log.Named("solanapay"),
	}, nil
}

func (f *RPCFinder) Close() {
	f.client.Close()
}

// FindReference returns the oldest successful transaction that lists the
// reference as an account. Failed transactions are ignored.
func (f *RPCFinder) FindReference(ctx context.Context, reference string) (*Signature, error) {
	if err := ValidatePublicKey(reference); err != nil {
		return nil, err
	}

	var (
		oldest *signatureInfo
		before string
	)
	for {
		var page []signatureInfo
		cfg := signaturesConfig{Limit: signaturesPageLimit, Before: before, Commitment: f.commitment}
		if err := f.client.CallContext(ctx, &page, "getSignaturesForAddress", reference, cfg); err != nil {
			return nil, fmt.Errorf("getSignaturesForAddress failed for %s: %w", reference, err)
		}

		// Pages are newest first, so the last success seen is the oldest.
		for i := range page {
			if page[i].Err == nil {
				oldest = &page[i]
			}
		}

		if len(page) < signaturesPageLimit {
			break
		}
		before = page[len(page)-1].Signature
	}

	if oldest == nil {
		return nil, ErrReferenceNotFound
	}

	f.log.Debug("reference found",
		zap.String("reference", reference),
		zap.String("signature", oldest.Signature),
		zap.Uint64("slot", oldest.Slot))

	sig := &Signature{Signature: oldest.Signature, Slot: oldest.Slot}
	if oldest.BlockTime != nil {
		t := time.Unix(*oldest.BlockTime, 0).UTC()
		sig.BlockTime = &t
	}
	return sig, nil
}
