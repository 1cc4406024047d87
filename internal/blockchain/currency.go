package blockchain

import (
	"context"
	"errors"
	"fmt"

	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ExistenceRequirement decides whether a transfer may leave the sender below
// the existential deposit.
type ExistenceRequirement int

const (
	KeepAlive ExistenceRequirement = iota
	AllowDeath
)

// Currency is the native balance of accounts, with free and reserved parts.
type Currency struct {
	db                 *gorm.DB
	existentialDeposit decimal.Decimal
}

func (c *Currency) account(ctx context.Context, who string) (*models.CurrencyAccount, error) {
	var acc models.CurrencyAccount
	err := c.db.WithContext(ctx).Where("account = ?", who).First(&acc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.CurrencyAccount{Account: who, Free: decimal.Zero, Reserved: decimal.Zero}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load currency account: %w", err)
	}
	return &acc, nil
}

func (c *Currency) save(ctx context.Context, acc *models.CurrencyAccount) error {
	if err := upsert(ctx, c.db, acc); err != nil {
		return fmt.Errorf("failed to save currency account: %w", err)
	}
	return nil
}

// FreeBalance returns the transferable balance of who
func (c *Currency) FreeBalance(ctx context.Context, who string) (decimal.Decimal, error) {
	acc, err := c.account(ctx, who)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Free, nil
}

// ReservedBalance returns the reserved balance of who
func (c *Currency) ReservedBalance(ctx context.Context, who string) (decimal.Decimal, error) {
	acc, err := c.account(ctx, who)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Reserved, nil
}

// Deposit creates new currency in who's free balance
func (c *Currency) Deposit(ctx context.Context, who string, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	acc, err := c.account(ctx, who)
	if err != nil {
		return err
	}
	if acc.Free.Add(amount).LessThan(c.existentialDeposit) && acc.Reserved.IsZero() {
		return ErrBelowExistentialDeposit
	}
	if acc.Free, err = credit(acc.Free, amount); err != nil {
		return err
	}
	return c.save(ctx, acc)
}

// Transfer moves amount of free balance from one account to another
func (c *Currency) Transfer(ctx context.Context, from, to string, amount decimal.Decimal, req ExistenceRequirement) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	if amount.IsZero() || from == to {
		return nil
	}

	src, err := c.account(ctx, from)
	if err != nil {
		return err
	}
	if src.Free, err = debit(src.Free, amount); err != nil {
		return err
	}
	if req == KeepAlive && src.Free.LessThan(c.existentialDeposit) {
		return ErrBelowExistentialDeposit
	}

	dst, err := c.account(ctx, to)
	if err != nil {
		return err
	}
	if dst.Free, err = credit(dst.Free, amount); err != nil {
		return err
	}
	if dst.Free.LessThan(c.existentialDeposit) && dst.Reserved.IsZero() {
		return ErrBelowExistentialDeposit
	}

	if err := c.save(ctx, src); err != nil {
		return err
	}
	return c.save(ctx, dst)
}

// Reserve moves amount from free to reserved balance
func (c *Currency) Reserve(ctx context.Context, who string, amount decimal.Decimal) error {
	if err := validAmount(amount); err != nil {
		return err
	}
	acc, err := c.account(ctx, who)
	if err != nil {
		return err
	}
	if acc.Free, err = debit(acc.Free, amount); err != nil {
		return err
	}
	if acc.Reserved, err = credit(acc.Reserved, amount); err != nil {
		return err
	}
	return c.save(ctx, acc)
}

// Unreserve moves up to amount back to the free balance and returns what was moved
func (c *Currency) Unreserve(ctx context.Context, who string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validAmount(amount); err != nil {
		return decimal.Zero, err
	}
	acc, err := c.account(ctx, who)
	if err != nil {
		return decimal.Zero, err
	}
	moved := decimal.Min(amount, acc.Reserved)
	acc.Reserved = acc.Reserved.Sub(moved)
	if acc.Free, err = credit(acc.Free, moved); err != nil {
		return decimal.Zero, err
	}
	return moved, c.save(ctx, acc)
}

// SlashReserved destroys up to amount of who's reserved balance and returns what was slashed
func (c *Currency) SlashReserved(ctx context.Context, who string, amount decimal.Decimal) (decimal.Decimal, error) {
	if err := validAmount(amount); err != nil {
		return decimal.Zero, err
	}
	acc, err := c.account(ctx, who)
	if err != nil {
		return decimal.Zero, err
	}
	slashed := decimal.Min(amount, acc.Reserved)
	acc.Reserved = acc.Reserved.Sub(slashed)
	return slashed, c.save(ctx, acc)
}
