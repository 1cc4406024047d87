package blockchain

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"real-estate-market/internal/models"

	"github.com/mr-tron/base58"
	"golang.org/x/crypto/blake2b"
	"gorm.io/gorm"
)

// Chain is the local block clock
type Chain struct {
	db *gorm.DB
}

// Head returns the latest block, or nil before genesis
func (c *Chain) Head(ctx context.Context) (*models.ChainBlock, error) {
	var block models.ChainBlock
	err := c.db.WithContext(ctx).Order("number DESC").First(&block).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load chain head: %w", err)
	}
	return &block, nil
}

// BlockNumber returns the current block number
func (c *Chain) BlockNumber(ctx context.Context) (uint64, error) {
	head, err := c.Head(ctx)
	if err != nil || head == nil {
		return 0, err
	}
	return head.Number, nil
}

// Now returns the timestamp of the current block in unix seconds
func (c *Chain) Now(ctx context.Context) (int64, error) {
	head, err := c.Head(ctx)
	if err != nil {
		return 0, err
	}
	if head == nil {
		return time.Now().Unix(), nil
	}
	return head.Timestamp, nil
}

// AdvanceBlock appends the next block. The genesis block is number 0.
func (c *Chain) AdvanceBlock(ctx context.Context, at time.Time) (*models.ChainBlock, error) {
	head, err := c.Head(ctx)
	if err != nil {
		return nil, err
	}

	next := &models.ChainBlock{Timestamp: at.Unix()}
	var parent []byte
	if head != nil {
		next.Number = head.Number + 1
		next.ParentHash = head.Hash
		if parent, err = base58.Decode(head.Hash); err != nil {
			return nil, fmt.Errorf("corrupt block hash at %d: %w", head.Number, err)
		}
	}
	next.Hash = blockHash(parent, next.Number, next.Timestamp)

	if err := c.db.WithContext(ctx).Create(next).Error; err != nil {
		return nil, fmt.Errorf("failed to store block %d: %w", next.Number, err)
	}
	return next, nil
}

func blockHash(parent []byte, number uint64, timestamp int64) string {
	buf := make([]byte, 0, len(parent)+16)
	buf = append(buf, parent...)
	buf = binary.BigEndian.AppendUint64(buf, number)
	buf = binary.BigEndian.AppendUint64(buf, uint64(timestamp))
	sum := blake2b.Sum256(buf)
	return base58.Encode(sum[:])
}
