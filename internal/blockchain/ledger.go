package blockchain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotEnoughFunds          = errors.New("not enough funds")
	ErrBelowExistentialDeposit = errors.New("balance would fall below the existential deposit")
	ErrBalanceOverflow         = errors.New("balance overflow")
	ErrInvalidAmount           = errors.New("amount must be a non-negative integer")
	ErrInvalidAccount          = errors.New("invalid account id")
	ErrUnknownAsset            = errors.New("unknown asset")
	ErrAssetExists             = errors.New("asset already exists")
	ErrUnknownCollection       = errors.New("unknown collection")
	ErrCollectionExists        = errors.New("collection already exists")
	ErrUnknownItem             = errors.New("unknown item")
	ErrItemExists              = errors.New("item already exists")
	ErrItemLocked              = errors.New("item is locked")
	ErrNotFractionalized       = errors.New("item is not fractionalized")
	ErrIncorrectAsset          = errors.New("asset does not belong to this item")
)

// MaxBalance is the largest representable balance (2^128 - 1).
var MaxBalance = decimal.RequireFromString("340282366920938463463374607431768211455")

// Ledger bundles the ledger capabilities. Every capability runs on the
// handle it was built with, so a Ledger bound to a transaction moves funds
// and items inside that transaction.
type Ledger struct {
	db                 *gorm.DB
	existentialDeposit decimal.Decimal

	Currency  *Currency
	Assets    *Assets
	Nfts      *Nfts
	Fractions *Fractionalizer
	Whitelist *Whitelist
	Chain     *Chain
}

// NewLedger creates a ledger on db
func NewLedger(db *gorm.DB, existentialDeposit decimal.Decimal) *Ledger {
	l := &Ledger{db: db, existentialDeposit: existentialDeposit}
	l.Currency = &Currency{db: db, existentialDeposit: existentialDeposit}
	l.Assets = &Assets{db: db}
	l.Nfts = &Nfts{db: db}
	l.Fractions = &Fractionalizer{assets: l.Assets, nfts: l.Nfts, db: db}
	l.Whitelist = &Whitelist{db: db}
	l.Chain = &Chain{db: db}
	return l
}

// WithTx returns a ledger bound to tx
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return NewLedger(tx, l.existentialDeposit)
}

// DB returns the handle the ledger is bound to
func (l *Ledger) DB() *gorm.DB {
	return l.db
}

func validAmount(amount decimal.Decimal) error {
	if amount.IsNegative() || !amount.Equal(amount.Truncate(0)) {
		return ErrInvalidAmount
	}
	return nil
}

func credit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	sum := balance.Add(amount)
	if sum.GreaterThan(MaxBalance) {
		return decimal.Zero, ErrBalanceOverflow
	}
	return sum, nil
}

func debit(balance, amount decimal.Decimal) (decimal.Decimal, error) {
	if balance.LessThan(amount) {
		return decimal.Zero, ErrNotEnoughFunds
	}
	return balance.Sub(amount), nil
}

func upsert(ctx context.Context, db *gorm.DB, value interface{}) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(value).Error
}
