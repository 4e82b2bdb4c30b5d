package token

import (
	"context"
	"testing"

	"canopy-backend/internal/events"
	"canopy-backend/internal/models"

	"github.com/ethereum/go-ethereum/common"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	admin = common.HexToAddress("0x5d3Cd01f5f1646cd52ccb00edeFF5f3943e7F60d")
	alice = common.HexToAddress("0x2A25Fa4bDC059079f36Aa38539086AD337b6FdaD")
	bob   = common.HexToAddress("0x7Bd6321f99C6511348B0E65eC1250F02A0b7eF34")
	carol = common.HexToAddress("0x2908dA8E7936b11Bc9e730b0a8B4B6Bb7f591Dae")
)

func setupTokenTest(t *testing.T) *Service {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TokenBalance{}, &models.TokenAllowance{}, &models.LedgerEvent{}))
	return &Service{
		DB:     db,
		Events: &events.Service{DB: db, Channel: "test:events"},
		Admin:  admin,
	}
}

func TestMint_AdminOnly(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	_, err := s.Mint(ctx, alice, bob, 1000)
	assert.ErrorIs(t, err, ErrUnauthorized)

	balance, err := s.BalanceOf(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	receipt, err := s.Mint(ctx, admin, bob, 1000)
	require.NoError(t, err)
	assert.NotEmpty(t, receipt.TxHash)

	balance, err = s.BalanceOf(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), balance)
}

func TestMint_ZeroIsNoOp(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	_, err := s.Mint(ctx, admin, bob, 0)
	require.NoError(t, err)

	balance, err := s.BalanceOf(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)

	total, err := s.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestMint_NegativeRejected(t *testing.T) {
	s := setupTokenTest(t)
	_, err := s.Mint(context.Background(), admin, bob, -5)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestMint_ZeroAddressRejected(t *testing.T) {
	s := setupTokenTest(t)
	_, err := s.Mint(context.Background(), admin, common.Address{}, 100)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

func TestTransfer(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	_, err := s.Mint(ctx, admin, alice, 100_000000)
	require.NoError(t, err)

	_, err = s.Transfer(ctx, alice, bob, 50_000000)
	require.NoError(t, err)

	aliceBal, _ := s.BalanceOf(ctx, alice)
	bobBal, _ := s.BalanceOf(ctx, bob)
	assert.Equal(t, int64(50_000000), aliceBal)
	assert.Equal(t, int64(50_000000), bobBal)
}

func TestTransfer_InsufficientBalance(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	_, err := s.Mint(ctx, admin, alice, 100)
	require.NoError(t, err)

	_, err = s.Transfer(ctx, alice, bob, 101)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// No partial effect
	aliceBal, _ := s.BalanceOf(ctx, alice)
	bobBal, _ := s.BalanceOf(ctx, bob)
	assert.Equal(t, int64(100), aliceBal)
	assert.Equal(t, int64(0), bobBal)
}

func TestApprove_Overwrites(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	_, err := s.Approve(ctx, alice, carol, 20_000000)
	require.NoError(t, err)
	allowance, _ := s.Allowance(ctx, alice, carol)
	assert.Equal(t, int64(20_000000), allowance)

	// Overwrite, not add
	_, err = s.Approve(ctx, alice, carol, 5_000000)
	require.NoError(t, err)
	allowance, _ = s.Allowance(ctx, alice, carol)
	assert.Equal(t, int64(5_000000), allowance)
}

func TestTransferFrom(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	_, err := s.Mint(ctx, admin, alice, 100_000000)
	require.NoError(t, err)
	_, err = s.Approve(ctx, alice, carol, 20_000000)
	require.NoError(t, err)

	_, err = s.TransferFrom(ctx, carol, alice, bob, 20_000000)
	require.NoError(t, err)

	aliceBal, _ := s.BalanceOf(ctx, alice)
	bobBal, _ := s.BalanceOf(ctx, bob)
	allowance, _ := s.Allowance(ctx, alice, carol)
	assert.Equal(t, int64(80_000000), aliceBal)
	assert.Equal(t, int64(20_000000), bobBal)
	assert.Equal(t, int64(0), allowance)
}

func TestTransferFrom_AllowanceCheckedBeforeBalance(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	// Alice has nothing and granted nothing: allowance failure wins.
	_, err := s.TransferFrom(ctx, carol, alice, bob, 10)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	// With allowance but no balance, the balance check fires.
	_, err = s.Approve(ctx, alice, carol, 10)
	require.NoError(t, err)
	_, err = s.TransferFrom(ctx, carol, alice, bob, 10)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	// Failed attempts never touched the allowance.
	allowance, _ := s.Allowance(ctx, alice, carol)
	assert.Equal(t, int64(10), allowance)
}

func TestTotalSupply_ConservedByTransfers(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	_, err := s.Mint(ctx, admin, alice, 500)
	require.NoError(t, err)
	_, err = s.Mint(ctx, admin, bob, 300)
	require.NoError(t, err)

	_, err = s.Transfer(ctx, alice, bob, 123)
	require.NoError(t, err)

	total, err := s.TotalSupply(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(800), total)
}

func TestTokenEventsLogged(t *testing.T) {
	s := setupTokenTest(t)
	ctx := context.Background()

	_, err := s.Mint(ctx, admin, alice, 500)
	require.NoError(t, err)
	_, err = s.Approve(ctx, alice, carol, 100)
	require.NoError(t, err)

	evs, err := s.Events.Range(ctx, 0, 0, nil)
	require.NoError(t, err)
	require.Len(t, evs, 2)
	assert.Equal(t, models.EventTokenTransfer, evs[0].Type)
	assert.Equal(t, models.EventTokenApproval, evs[1].Type)
}
