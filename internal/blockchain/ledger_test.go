package blockchain

import (
	"context"
	"errors"
	"testing"
	"time"

	"real-estate-market/internal/database"
	"real-estate-market/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewLedger(db, decimal.NewFromInt(10))
}

func amount(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func expectBalance(t *testing.T, what string, got decimal.Decimal, err error, want int64) {
	t.Helper()
	if err != nil {
		t.Fatalf("%s: %v", what, err)
	}
	if !got.Equal(amount(want)) {
		t.Errorf("%s: expected %d, got %s", what, want, got)
	}
}

func TestCurrencyTransfer(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()
	c := ledger.Currency

	if err := c.Deposit(ctx, "alice", amount(5)); !errors.Is(err, ErrBelowExistentialDeposit) {
		t.Fatalf("expected dust deposit to fail, got %v", err)
	}
	if err := c.Deposit(ctx, "alice", amount(100)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}

	tests := []struct {
		name    string
		amount  int64
		req     ExistenceRequirement
		wantErr error
	}{
		{"below existential deposit for receiver", 5, AllowDeath, ErrBelowExistentialDeposit},
		{"sender kept alive", 95, KeepAlive, ErrBelowExistentialDeposit},
		{"more than free", 101, AllowDeath, ErrNotEnoughFunds},
		{"negative amount", -1, AllowDeath, ErrInvalidAmount},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Transfer(ctx, "alice", "bob", amount(tt.amount), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if err := c.Transfer(ctx, "alice", "bob", amount(90), KeepAlive); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	free, err := c.FreeBalance(ctx, "alice")
	expectBalance(t, "alice", free, err, 10)
	free, err = c.FreeBalance(ctx, "bob")
	expectBalance(t, "bob", free, err, 90)

	if err := c.Transfer(ctx, "alice", "bob", amount(10), AllowDeath); err != nil {
		t.Fatalf("AllowDeath transfer failed: %v", err)
	}
	free, err = c.FreeBalance(ctx, "alice")
	expectBalance(t, "alice emptied", free, err, 0)
}

func TestCurrencyReserve(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()
	c := ledger.Currency

	if err := c.Deposit(ctx, "agent", amount(100)); err != nil {
		t.Fatalf("Deposit failed: %v", err)
	}
	if err := c.Reserve(ctx, "agent", amount(101)); !errors.Is(err, ErrNotEnoughFunds) {
		t.Fatalf("expected ErrNotEnoughFunds, got %v", err)
	}
	if err := c.Reserve(ctx, "agent", amount(60)); err != nil {
		t.Fatalf("Reserve failed: %v", err)
	}

	slashed, err := c.SlashReserved(ctx, "agent", amount(25))
	expectBalance(t, "slashed", slashed, err, 25)
	moved, err := c.Unreserve(ctx, "agent", amount(100))
	expectBalance(t, "unreserved", moved, err, 35)

	free, err := c.FreeBalance(ctx, "agent")
	expectBalance(t, "free", free, err, 75)
	reserved, err := c.ReservedBalance(ctx, "agent")
	expectBalance(t, "reserved", reserved, err, 0)
}

func TestAssets(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()
	a := ledger.Assets

	if err := a.Mint(ctx, 7, "alice", amount(1)); !errors.Is(err, ErrUnknownAsset) {
		t.Fatalf("expected ErrUnknownAsset, got %v", err)
	}
	if err := a.Create(ctx, 7, "admin"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := a.Create(ctx, 7, "admin"); !errors.Is(err, ErrAssetExists) {
		t.Fatalf("expected ErrAssetExists, got %v", err)
	}
	if err := a.Mint(ctx, 7, "alice", amount(100)); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := a.Transfer(ctx, 7, "alice", "bob", amount(30)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if err := a.Transfer(ctx, 7, "bob", "carol", amount(31)); !errors.Is(err, ErrNotEnoughFunds) {
		t.Fatalf("expected ErrNotEnoughFunds, got %v", err)
	}
	if err := a.Burn(ctx, 7, "bob", amount(30)); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}

	balance, err := a.Balance(ctx, 7, "alice")
	expectBalance(t, "alice", balance, err, 70)
	balance, err = a.Balance(ctx, 7, "bob")
	expectBalance(t, "bob", balance, err, 0)
	var holdings int64
	if err := ledger.DB().Model(&models.AssetAccount{}).Where("asset_id = ?", 7).Count(&holdings).Error; err != nil {
		t.Fatalf("failed to count holdings: %v", err)
	}
	if holdings != 1 {
		t.Errorf("expected emptied holdings to be removed, got %d rows", holdings)
	}
	supply, ok, err := a.MaybeTotalSupply(ctx, 7)
	expectBalance(t, "supply", supply, err, 70)
	if !ok {
		t.Error("expected asset 7 to exist")
	}
	if _, ok, err := a.MaybeTotalSupply(ctx, 8); ok || err != nil {
		t.Errorf("expected no supply for asset 8, got ok=%v err=%v", ok, err)
	}

	if err := a.Mint(ctx, 7, "alice", MaxBalance); !errors.Is(err, ErrBalanceOverflow) {
		t.Fatalf("expected ErrBalanceOverflow, got %v", err)
	}
}

func TestFractionalizeAndUnify(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()

	if err := ledger.Nfts.CreateCollection(ctx, 0, "market", "market"); err != nil {
		t.Fatalf("CreateCollection failed: %v", err)
	}
	if err := ledger.Nfts.Mint(ctx, 0, 0, "market"); err != nil {
		t.Fatalf("Mint failed: %v", err)
	}
	if err := ledger.Nfts.Mint(ctx, 0, 0, "market"); !errors.Is(err, ErrItemExists) {
		t.Fatalf("expected ErrItemExists, got %v", err)
	}
	if err := ledger.Fractions.Fractionalize(ctx, 0, 0, 3, "market", amount(100)); err != nil {
		t.Fatalf("Fractionalize failed: %v", err)
	}

	if err := ledger.Nfts.Burn(ctx, 0, 0); !errors.Is(err, ErrItemLocked) {
		t.Fatalf("expected locked item, got %v", err)
	}
	if err := ledger.Nfts.Transfer(ctx, 0, 0, "thief"); !errors.Is(err, ErrItemLocked) {
		t.Fatalf("expected locked item, got %v", err)
	}
	if err := ledger.Fractions.Unify(ctx, 0, 0, 4, "market"); !errors.Is(err, ErrIncorrectAsset) {
		t.Fatalf("expected ErrIncorrectAsset, got %v", err)
	}

	if err := ledger.Assets.Transfer(ctx, 3, "market", "alice", amount(1)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if err := ledger.Fractions.Unify(ctx, 0, 0, 3, "market"); !errors.Is(err, ErrNotEnoughFunds) {
		t.Fatalf("expected unify to need the whole supply, got %v", err)
	}
	if err := ledger.Assets.Transfer(ctx, 3, "alice", "market", amount(1)); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	if err := ledger.Fractions.Unify(ctx, 0, 0, 3, "market"); err != nil {
		t.Fatalf("Unify failed: %v", err)
	}
	item, err := ledger.Nfts.Item(ctx, 0, 0)
	if err != nil {
		t.Fatalf("Item failed: %v", err)
	}
	if item.Locked || item.Owner != "market" {
		t.Errorf("unexpected item after unify: %+v", item)
	}
	if err := ledger.Fractions.Unify(ctx, 0, 0, 3, "market"); !errors.Is(err, ErrNotFractionalized) {
		t.Fatalf("expected ErrNotFractionalized, got %v", err)
	}
	if err := ledger.Nfts.Burn(ctx, 0, 0); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}
}

func TestChainHashesLinkBlocks(t *testing.T) {
	ledger := setupLedger(t)
	ctx := context.Background()
	start := time.Unix(1_700_000_000, 0)

	number, err := ledger.Chain.BlockNumber(ctx)
	if err != nil || number != 0 {
		t.Fatalf("expected block 0 before genesis, got %d (%v)", number, err)
	}

	genesis, err := ledger.Chain.AdvanceBlock(ctx, start)
	if err != nil {
		t.Fatalf("AdvanceBlock failed: %v", err)
	}
	next, err := ledger.Chain.AdvanceBlock(ctx, start.Add(6*time.Second))
	if err != nil {
		t.Fatalf("AdvanceBlock failed: %v", err)
	}

	if genesis.Number != 0 || next.Number != 1 {
		t.Errorf("unexpected block numbers %d, %d", genesis.Number, next.Number)
	}
	if next.ParentHash != genesis.Hash {
		t.Errorf("expected parent hash %s, got %s", genesis.Hash, next.ParentHash)
	}
	raw, err := base58.Decode(next.Hash)
	if err != nil || len(raw) != 32 {
		t.Errorf("expected a 32 byte base58 hash, got %q (%v)", next.Hash, err)
	}
	now, err := ledger.Chain.Now(ctx)
	if err != nil || now != start.Add(6*time.Second).Unix() {
		t.Errorf("unexpected chain time %d (%v)", now, err)
	}
}

func TestModuleAccounts(t *testing.T) {
	market := ModuleAccount(MarketplacePalletID)
	if market != ModuleAccount(MarketplacePalletID) {
		t.Error("module accounts must be deterministic")
	}
	if market == ModuleAccount(TreasuryPalletID) {
		t.Error("module accounts must differ per module")
	}
	parsed, err := ParseAccount(market)
	if err != nil || parsed != market {
		t.Errorf("expected module account to parse, got %q (%v)", parsed, err)
	}
	raw, _ := base58.Decode(market)
	if string(raw[:4]) != "modl" {
		t.Errorf("expected modl prefix, got %q", raw[:4])
	}
	if _, err := ParseAccount("not-base58!"); !errors.Is(err, ErrInvalidAccount) {
		t.Errorf("expected ErrInvalidAccount, got %v", err)
	}
}
