package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Vote string

const (
	VoteYes Vote = "YES"
	VoteNo  Vote = "NO"
)

func (v Vote) Valid() bool {
	return v == VoteYes || v == VoteNo
}

type ChallengeState string

const (
	ChallengeStateFirst  ChallengeState = "FIRST"
	ChallengeStateSecond ChallengeState = "SECOND"
	ChallengeStateThird  ChallengeState = "THIRD"
	ChallengeStateFourth ChallengeState = "FOURTH"
)

type Proposal struct {
	ProposalID uint64          `gorm:"primaryKey;autoIncrement:false" json:"proposal_id"`
	Proposer   string          `gorm:"size:64;not null" json:"proposer"`
	AssetID    uint32          `gorm:"not null;index" json:"asset_id"`
	Amount     decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"amount"`
	CreatedAt  uint64          `gorm:"not null;autoCreateTime:false" json:"created_at"`
	ExpiryAt   uint64          `gorm:"not null" json:"expiry_at"`
	Info       []byte          `json:"info"`
}

func (Proposal) TableName() string {
	return "proposals"
}

type Challenge struct {
	ChallengeID uint64         `gorm:"primaryKey;autoIncrement:false" json:"challenge_id"`
	Proposer    string         `gorm:"size:64;not null" json:"proposer"`
	AssetID     uint32         `gorm:"not null;uniqueIndex" json:"asset_id"`
	CreatedAt   uint64         `gorm:"not null;autoCreateTime:false" json:"created_at"`
	ExpiryAt    uint64         `gorm:"not null" json:"expiry_at"`
	State       ChallengeState `gorm:"size:20;not null" json:"state"`
}

func (Challenge) TableName() string {
	return "challenges"
}

// VoteStats is the tally of one voting round. Proposals use State "".
type VoteStats struct {
	Kind           RoundKind      `gorm:"primaryKey;size:20" json:"kind"`
	ItemID         uint64         `gorm:"primaryKey;autoIncrement:false" json:"item_id"`
	State          ChallengeState `gorm:"primaryKey;size:20" json:"state,omitempty"`
	YesVotingPower uint64         `gorm:"not null;default:0" json:"yes_voting_power"`
	NoVotingPower  uint64         `gorm:"not null;default:0" json:"no_voting_power"`
}

func (VoteStats) TableName() string {
	return "vote_stats"
}

// VoteRecord keeps a voter's choice and the power it added to the tally.
type VoteRecord struct {
	Kind    RoundKind      `gorm:"primaryKey;size:20"`
	ItemID  uint64         `gorm:"primaryKey;autoIncrement:false"`
	State   ChallengeState `gorm:"primaryKey;size:20"`
	Account string         `gorm:"primaryKey;size:64"`
	Vote    Vote           `gorm:"size:10;not null"`
	Power   uint64         `gorm:"not null"`
}

func (VoteRecord) TableName() string {
	return "vote_records"
}

type RoundKind string

const (
	RoundKindProposal  RoundKind = "PROPOSAL"
	RoundKindChallenge RoundKind = "CHALLENGE"
)

// VotingRound schedules an item for the block hook at ExpiryBlock.
// Row order (ID) is the per-block processing order.
type VotingRound struct {
	ID          uint      `gorm:"primaryKey"`
	ExpiryBlock uint64    `gorm:"not null;index"`
	Kind        RoundKind `gorm:"size:20;not null"`
	ItemID      uint64    `gorm:"not null"`
	CreatedAt   time.Time
}

func (VotingRound) TableName() string {
	return "voting_rounds"
}
