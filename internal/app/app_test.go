package app

import (
	"context"
	"testing"

	"dealMintAPI/internal/config"
	"dealMintAPI/internal/drop"
	"dealMintAPI/services"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func memoryConfig(t *testing.T, extra map[string]string) *config.Config {
	t.Helper()
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("SOLANA_RPC_URL", "http://127.0.0.1:1")
	t.Setenv("SOLANA_PAY_RECIPIENT", "")
	for k, v := range extra {
		t.Setenv(k, v)
	}
	cfg, err := config.Parse(nil)
	require.NoError(t, err)
	return cfg
}

func TestNewWiresMemoryStack(t *testing.T) {
	ctx := context.Background()
	a, err := New(ctx, memoryConfig(t, nil), zap.NewNop(), prometheus.NewRegistry())
	require.NoError(t, err)
	defer a.Close()

	require.NoError(t, a.Store.Ping(ctx))

	demo, err := a.Drops.CreateDemoDrop(ctx, services.DemoDropOptions{Supply: 3, Hours: 2})
	require.NoError(t, err)

	res, err := a.Claims.ClaimDrop(ctx, drop.ClaimRequest{DropID: demo.Drop.ID.String(), WalletAddress: "wallet-1"})
	require.NoError(t, err)
	assert.Equal(t, drop.ClaimConfirmed, res.Claim.Status)

	sweep, err := a.Confirmations.ConfirmPendingDropClaims(ctx)
	require.NoError(t, err)
	assert.Zero(t, sweep.Processed)

	transferred, err := a.Coupons.Transfer(ctx, drop.TransferCouponRequest{
		CouponID: res.Claim.CouponID.String(),
		ToWallet: "wallet-2",
	})
	require.NoError(t, err)
	assert.Equal(t, drop.CouponTransferred, transferred.State)
}

func TestNewRejectsBadRecipient(t *testing.T) {
	cfg := memoryConfig(t, map[string]string{"SOLANA_PAY_RECIPIENT": "not-base58-0OIl"})

	_, err := New(context.Background(), cfg, zap.NewNop(), prometheus.NewRegistry())
	assert.Error(t, err)
}
