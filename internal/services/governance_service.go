package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/config"
	"real-estate-market/internal/events"
	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GovernanceService runs owner votes on letting agent spending proposals
// and on challenges against letting agents.
type GovernanceService struct {
	exec       *Executor
	cfg        config.RuntimeConfig
	management *ManagementService
	account    string
}

func NewGovernanceService(exec *Executor, cfg config.RuntimeConfig, management *ManagementService) *GovernanceService {
	return &GovernanceService{
		exec:       exec,
		cfg:        cfg,
		management: management,
		account:    blockchain.ModuleAccount(cfg.GovernancePalletID),
	}
}

// AccountID returns the custodial account of governance
func (s *GovernanceService) AccountID() string {
	return s.account
}

// currentAgent returns the letting agent of an asset
func currentAgent(ctx context.Context, sc *scope, assetID uint32) (string, error) {
	assignment, err := sc.repo.GetPropertyLettingAgent(ctx, assetID)
	if err != nil {
		return "", notFound(err, ErrNoLettingAgentFound)
	}
	return assignment.Account, nil
}

// votingPower returns the live token amount of an owner, ErrNoPermission
// for accounts that own no tokens of the asset
func votingPower(ctx context.Context, sc *scope, assetID uint32, who string) (uint64, error) {
	owner, err := sc.repo.GetPropertyOwnerToken(ctx, assetID, who)
	if err != nil {
		return 0, notFound(err, ErrNoPermission)
	}
	return uint64(owner.TokenAmount), nil
}

// schedule queues an item for the block hook VotingTime blocks from now
func (s *GovernanceService) schedule(ctx context.Context, sc *scope, kind models.RoundKind, itemID uint64) (uint64, error) {
	expiry := sc.block + s.cfg.VotingTime
	queued, err := sc.repo.CountRounds(ctx, expiry)
	if err != nil {
		return 0, err
	}
	if queued >= s.cfg.MaxVotesForBlock {
		return 0, ErrTooManyProposals
	}
	if err := sc.repo.ScheduleRound(ctx, expiry, kind, itemID); err != nil {
		return 0, fmt.Errorf("failed to schedule voting round: %w", err)
	}
	return expiry, nil
}

// Propose asks the owners to approve a spend by the letting agent. Spends
// up to LowProposal are paid out at once and return a nil proposal.
func (s *GovernanceService) Propose(ctx context.Context, agent string, assetID uint32, amount decimal.Decimal, info []byte) (*models.Proposal, error) {
	amount, err := toBalance(amount)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return nil, ErrAmountCannotBeZero
	}

	var proposal *models.Proposal
	err = s.exec.Run(ctx, func(sc *scope) error {
		current, err := currentAgent(ctx, sc, assetID)
		if err != nil {
			return err
		}
		if current != agent {
			return ErrNoPermission
		}

		if amount.LessThanOrEqual(s.cfg.LowProposal) {
			return s.executeProposal(ctx, sc, 0, assetID, amount)
		}

		id, err := sc.repo.NextID(ctx, models.CounterNextProposalID)
		if err != nil {
			return err
		}
		expiry, err := s.schedule(ctx, sc, models.RoundKindProposal, id)
		if err != nil {
			return err
		}
		proposal = &models.Proposal{
			ProposalID: id,
			Proposer:   agent,
			AssetID:    assetID,
			Amount:     amount,
			CreatedAt:  sc.block,
			ExpiryAt:   expiry,
			Info:       info,
		}
		if err := sc.repo.CreateProposal(ctx, proposal); err != nil {
			return fmt.Errorf("failed to create proposal: %w", err)
		}
		if err := sc.repo.CreateVoteStats(ctx, models.RoundKindProposal, id, ""); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleGovernance, "Proposed", events.Fields{
			"proposal_id": id,
			"asset_id":    assetID,
			"proposer":    agent,
			"amount":      amount,
			"expiry":      expiry,
		})
	})
	if err != nil {
		return nil, err
	}
	return proposal, nil
}

// executeProposal pays a spend to the letting agent out of the property
// reserve. Whatever the reserve cannot cover becomes property debt.
func (s *GovernanceService) executeProposal(ctx context.Context, sc *scope, proposalID uint64, assetID uint32, amount decimal.Decimal) error {
	agent, err := currentAgent(ctx, sc, assetID)
	if err != nil {
		return err
	}
	reserve, err := sc.repo.GetReserve(ctx, assetID)
	if err != nil {
		return err
	}
	if reserve.GreaterThanOrEqual(amount) {
		if err := s.management.decreaseReserves(ctx, sc, assetID, amount); err != nil {
			return err
		}
	} else {
		shortfall, err := checkedSub(amount, reserve)
		if err != nil {
			return err
		}
		if err := s.management.decreaseReserves(ctx, sc, assetID, reserve); err != nil {
			return err
		}
		if err := s.management.increaseDebts(ctx, sc, assetID, shortfall); err != nil {
			return err
		}
	}

	value, err := checkedMul(amount, s.cfg.AssetMultiplier)
	if err != nil {
		return err
	}
	if err := sc.ledger.Currency.Transfer(ctx, s.account, agent, value, blockchain.AllowDeath); err != nil {
		return err
	}
	return sc.emit(ctx, events.ModuleGovernance, "ProposalExecuted", events.Fields{
		"proposal_id":   proposalID,
		"asset_id":      assetID,
		"letting_agent": agent,
		"amount":        amount,
	})
}

// castVote adds the voter's live power to a round, replacing the power of
// any earlier vote by the same account
func castVote(ctx context.Context, sc *scope, kind models.RoundKind, itemID uint64, state models.ChallengeState, voter string, vote models.Vote, power uint64) (*models.VoteStats, error) {
	stats, err := sc.repo.GetVoteStats(ctx, kind, itemID, state)
	if err != nil {
		return nil, notFound(err, ErrNotOngoing)
	}
	previous, err := sc.repo.GetVoteRecord(ctx, kind, itemID, state, voter)
	switch {
	case err == nil:
		if previous.Vote == models.VoteYes {
			stats.YesVotingPower = saturatingSub(stats.YesVotingPower, previous.Power)
		} else {
			stats.NoVotingPower = saturatingSub(stats.NoVotingPower, previous.Power)
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	if vote == models.VoteYes {
		stats.YesVotingPower = saturatingAdd(stats.YesVotingPower, power)
	} else {
		stats.NoVotingPower = saturatingAdd(stats.NoVotingPower, power)
	}
	if err := sc.repo.SaveVoteRecord(ctx, &models.VoteRecord{
		Kind:    kind,
		ItemID:  itemID,
		State:   state,
		Account: voter,
		Vote:    vote,
		Power:   power,
	}); err != nil {
		return nil, err
	}
	if err := sc.repo.UpdateVoteStats(ctx, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// VoteOnProposal records an owner's vote on an open proposal
func (s *GovernanceService) VoteOnProposal(ctx context.Context, voter string, proposalID uint64, vote models.Vote) error {
	if !vote.Valid() {
		return ErrInvalidVote
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		proposal, err := sc.repo.GetProposal(ctx, proposalID)
		if err != nil {
			return notFound(err, ErrNotOngoing)
		}
		power, err := votingPower(ctx, sc, proposal.AssetID, voter)
		if err != nil {
			return err
		}
		if _, err := castVote(ctx, sc, models.RoundKindProposal, proposalID, "", voter, vote, power); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleGovernance, "VotedOnProposal", events.Fields{
			"proposal_id": proposalID,
			"voter":       voter,
			"vote":        vote,
		})
	})
}

// ChallengeAgainstLettingAgent opens a dispute against the agent of an asset
func (s *GovernanceService) ChallengeAgainstLettingAgent(ctx context.Context, caller string, assetID uint32) (*models.Challenge, error) {
	var challenge *models.Challenge
	err := s.exec.Run(ctx, func(sc *scope) error {
		if _, err := votingPower(ctx, sc, assetID, caller); err != nil {
			return err
		}
		if _, err := currentAgent(ctx, sc, assetID); err != nil {
			return err
		}
		ongoing, err := sc.repo.ChallengeExistsForAsset(ctx, assetID)
		if err != nil {
			return err
		}
		if ongoing {
			return ErrChallengeAlreadyOngoing
		}

		id, err := sc.repo.NextID(ctx, models.CounterNextChallengeID)
		if err != nil {
			return err
		}
		expiry, err := s.schedule(ctx, sc, models.RoundKindChallenge, id)
		if err != nil {
			return err
		}
		challenge = &models.Challenge{
			ChallengeID: id,
			Proposer:    caller,
			AssetID:     assetID,
			CreatedAt:   sc.block,
			ExpiryAt:    expiry,
			State:       models.ChallengeStateFirst,
		}
		if err := sc.repo.CreateChallenge(ctx, challenge); err != nil {
			return fmt.Errorf("failed to create challenge: %w", err)
		}
		if err := sc.repo.CreateVoteStats(ctx, models.RoundKindChallenge, id, models.ChallengeStateFirst); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleGovernance, "ChallengeCreated", events.Fields{
			"challenge_id": id,
			"asset_id":     assetID,
			"proposer":     caller,
			"expiry":       expiry,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Governance] Challenge %d opened against the agent of asset %d", challenge.ChallengeID, assetID)
	return challenge, nil
}

// VoteOnLettingAgentChallenge records an owner's vote in the current round
// of a challenge
func (s *GovernanceService) VoteOnLettingAgentChallenge(ctx context.Context, voter string, challengeID uint64, vote models.Vote) error {
	if !vote.Valid() {
		return ErrInvalidVote
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		challenge, err := sc.repo.GetChallenge(ctx, challengeID)
		if err != nil {
			return notFound(err, ErrNotOngoing)
		}
		// the cooling-off round takes no votes
		if challenge.State == models.ChallengeStateSecond {
			return ErrNotOngoing
		}
		power, err := votingPower(ctx, sc, challenge.AssetID, voter)
		if err != nil {
			return err
		}
		if _, err := castVote(ctx, sc, models.RoundKindChallenge, challengeID, challenge.State, voter, vote, power); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleGovernance, "VotedOnChallenge", events.Fields{
			"challenge_id": challengeID,
			"state":        challenge.State,
			"voter":        voter,
			"vote":         vote,
		})
	})
}

// GetProposal returns an open proposal with its tally
func (s *GovernanceService) GetProposal(ctx context.Context, proposalID uint64) (*models.Proposal, *models.VoteStats, error) {
	repo := s.exec.Repository()
	proposal, err := repo.GetProposal(ctx, proposalID)
	if err != nil {
		return nil, nil, notFound(err, ErrNotOngoing)
	}
	stats, err := repo.GetVoteStats(ctx, models.RoundKindProposal, proposalID, "")
	if err != nil {
		return nil, nil, notFound(err, ErrNotOngoing)
	}
	return proposal, stats, nil
}

// GetChallenge returns an open challenge with the tally of its current round
func (s *GovernanceService) GetChallenge(ctx context.Context, challengeID uint64) (*models.Challenge, *models.VoteStats, error) {
	repo := s.exec.Repository()
	challenge, err := repo.GetChallenge(ctx, challengeID)
	if err != nil {
		return nil, nil, notFound(err, ErrNotOngoing)
	}
	stats, err := repo.GetVoteStats(ctx, models.RoundKindChallenge, challengeID, challenge.State)
	if err != nil {
		return nil, nil, notFound(err, ErrNotOngoing)
	}
	return challenge, stats, nil
}
