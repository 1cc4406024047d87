package services

import (
	"context"
	"errors"
	"log"
	"time"

	"real-estate-market/internal/events"
	"real-estate-market/internal/models"

	"gorm.io/gorm"
)

// outcome of a finished voting round
type outcome int

const (
	outcomePassed outcome = iota
	outcomeRejected
	outcomeThresholdNotReached
)

// tally decides a round against the total token supply of the asset. A
// round passes when yes beats no and yes plus no exceeds threshold percent
// of all tokens, so abstentions count against the threshold.
func tally(stats *models.VoteStats, totalTokens uint32, threshold uint32) (outcome, error) {
	if totalTokens == 0 {
		return 0, ErrDivisionError
	}
	yes, no := stats.YesVotingPower, stats.NoVotingPower
	if yes <= no {
		return outcomeRejected, nil
	}
	turnout := saturatingAdd(yes, no)
	if turnout > ^uint64(0)/100 {
		return 0, ErrMultiplyError
	}
	if turnout*100 <= uint64(threshold)*uint64(totalTokens) {
		return outcomeThresholdNotReached, nil
	}
	return outcomePassed, nil
}

// HookResult summarises one run of the block hook
type HookResult struct {
	Block     uint64
	Processed int
	Failed    int
}

// OnNewBlock produces the next block and settles every voting round that
// expires in it. A failing item is discarded without affecting the others.
func (s *GovernanceService) OnNewBlock(ctx context.Context, at time.Time) (*HookResult, error) {
	result := &HookResult{}
	err := s.exec.Run(ctx, func(sc *scope) error {
		block, err := sc.ledger.Chain.AdvanceBlock(ctx, at)
		if err != nil {
			return err
		}
		sc.block = block.Number
		result.Block = block.Number

		rounds, err := sc.repo.ListRounds(ctx, block.Number)
		if err != nil {
			return err
		}
		if err := sc.repo.DeleteRounds(ctx, block.Number); err != nil {
			return err
		}

		for _, round := range rounds {
			err := sc.nested(ctx, func(inner *scope) error {
				return s.settleRound(ctx, inner, round)
			})
			if err == nil {
				result.Processed++
				continue
			}
			result.Failed++
			log.Printf("[Governance] Block %d: %s %d failed: %v", block.Number, round.Kind, round.ItemID, err)
			if err := sc.nested(ctx, func(inner *scope) error {
				return discardRound(ctx, inner, round)
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *GovernanceService) settleRound(ctx context.Context, sc *scope, round models.VotingRound) error {
	switch round.Kind {
	case models.RoundKindProposal:
		return s.settleProposal(ctx, sc, round.ItemID)
	case models.RoundKindChallenge:
		return s.settleChallenge(ctx, sc, round.ItemID)
	}
	return nil
}

func discardRound(ctx context.Context, sc *scope, round models.VotingRound) error {
	switch round.Kind {
	case models.RoundKindProposal:
		if err := sc.repo.DeleteProposal(ctx, round.ItemID); err != nil {
			return err
		}
	case models.RoundKindChallenge:
		if err := sc.repo.DeleteChallenge(ctx, round.ItemID); err != nil {
			return err
		}
	}
	return sc.repo.DeleteAllVotes(ctx, round.Kind, round.ItemID)
}

func (s *GovernanceService) settleProposal(ctx context.Context, sc *scope, proposalID uint64) error {
	proposal, err := sc.repo.GetProposal(ctx, proposalID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	asset, err := sc.repo.GetAssetDetails(ctx, proposal.AssetID)
	if err != nil {
		return notFound(err, ErrInvalidIndex)
	}
	stats, err := sc.repo.GetVoteStats(ctx, models.RoundKindProposal, proposalID, "")
	if err != nil {
		return err
	}

	threshold := s.cfg.Threshold
	if proposal.Amount.GreaterThanOrEqual(s.cfg.HighProposal) {
		threshold = s.cfg.HighThreshold
	}
	result, err := tally(stats, asset.TokenAmount, threshold)
	if err != nil {
		return err
	}

	if err := sc.repo.DeleteProposal(ctx, proposalID); err != nil {
		return err
	}
	if err := sc.repo.DeleteAllVotes(ctx, models.RoundKindProposal, proposalID); err != nil {
		return err
	}

	switch result {
	case outcomePassed:
		return s.executeProposal(ctx, sc, proposalID, proposal.AssetID, proposal.Amount)
	case outcomeRejected:
		return sc.emit(ctx, events.ModuleGovernance, "ProposalRejected", events.Fields{"proposal_id": proposalID})
	default:
		return sc.emit(ctx, events.ModuleGovernance, "ProposalThresholdNotReached", events.Fields{"proposal_id": proposalID})
	}
}

func (s *GovernanceService) settleChallenge(ctx context.Context, sc *scope, challengeID uint64) error {
	challenge, err := sc.repo.GetChallenge(ctx, challengeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// The second round is a cooling-off period and always moves on.
	if challenge.State == models.ChallengeStateSecond {
		return s.advanceChallenge(ctx, sc, challenge, models.ChallengeStateThird)
	}

	asset, err := sc.repo.GetAssetDetails(ctx, challenge.AssetID)
	if err != nil {
		return notFound(err, ErrInvalidIndex)
	}
	stats, err := sc.repo.GetVoteStats(ctx, models.RoundKindChallenge, challengeID, challenge.State)
	if err != nil {
		return err
	}
	result, err := tally(stats, asset.TokenAmount, s.cfg.Threshold)
	if err != nil {
		return err
	}

	switch result {
	case outcomePassed:
	case outcomeRejected:
		return s.closeChallenge(ctx, sc, challenge, "ChallengeRejected", events.Fields{"challenge_id": challengeID})
	default:
		return s.closeChallenge(ctx, sc, challenge, "ChallengeThresholdNotReached", events.Fields{"challenge_id": challengeID})
	}

	switch challenge.State {
	case models.ChallengeStateFirst:
		return s.advanceChallenge(ctx, sc, challenge, models.ChallengeStateSecond)
	case models.ChallengeStateThird:
		if err := s.slashLettingAgent(ctx, sc, challenge.AssetID); err != nil {
			return err
		}
		return s.advanceChallenge(ctx, sc, challenge, models.ChallengeStateFourth)
	default:
		return s.changeLettingAgent(ctx, sc, challenge, asset)
	}
}

// advanceChallenge opens a fresh round of a challenge in the next state
func (s *GovernanceService) advanceChallenge(ctx context.Context, sc *scope, challenge *models.Challenge, next models.ChallengeState) error {
	if err := sc.repo.DeleteVotes(ctx, models.RoundKindChallenge, challenge.ChallengeID, challenge.State); err != nil {
		return err
	}
	expiry, err := s.schedule(ctx, sc, models.RoundKindChallenge, challenge.ChallengeID)
	if err != nil {
		return err
	}
	if err := sc.repo.UpdateChallengeRound(ctx, challenge.ChallengeID, next, expiry); err != nil {
		return err
	}
	if err := sc.repo.CreateVoteStats(ctx, models.RoundKindChallenge, challenge.ChallengeID, next); err != nil {
		return err
	}
	return sc.emit(ctx, events.ModuleGovernance, "ChallengeStateAdvanced", events.Fields{
		"challenge_id": challenge.ChallengeID,
		"state":        next,
		"expiry":       expiry,
	})
}

func (s *GovernanceService) closeChallenge(ctx context.Context, sc *scope, challenge *models.Challenge, event string, fields events.Fields) error {
	if err := sc.repo.DeleteChallenge(ctx, challenge.ChallengeID); err != nil {
		return err
	}
	if err := sc.repo.DeleteAllVotes(ctx, models.RoundKindChallenge, challenge.ChallengeID); err != nil {
		return err
	}
	return sc.emit(ctx, events.ModuleGovernance, event, fields)
}

// slashLettingAgent takes MinSlashingAmount from the reserved deposit of the
// agent of an asset
func (s *GovernanceService) slashLettingAgent(ctx context.Context, sc *scope, assetID uint32) error {
	agent, err := currentAgent(ctx, sc, assetID)
	if err != nil {
		return err
	}
	slashed, err := sc.ledger.Currency.SlashReserved(ctx, agent, s.cfg.MinSlashingAmount)
	if err != nil {
		return err
	}
	log.Printf("[Governance] Slashed %s from letting agent %s", slashed, agent)
	return sc.emit(ctx, events.ModuleGovernance, "LettingAgentSlashed", events.Fields{
		"asset_id":      assetID,
		"letting_agent": agent,
		"amount":        slashed,
	})
}

// changeLettingAgent replaces the agent of an asset and ends the challenge
func (s *GovernanceService) changeLettingAgent(ctx context.Context, sc *scope, challenge *models.Challenge, asset *models.AssetDetails) error {
	removed, err := s.management.removeBadLettingAgent(ctx, sc, asset)
	if err != nil {
		return err
	}
	replacement, err := s.management.selectsLettingAgent(ctx, sc, asset, removed)
	if err != nil {
		return err
	}
	log.Printf("[Governance] Asset %d: letting agent %s replaced by %q", asset.AssetID, removed, replacement)
	return s.closeChallenge(ctx, sc, challenge, "LettingAgentChanged", events.Fields{
		"challenge_id": challenge.ChallengeID,
		"asset_id":     asset.AssetID,
		"removed":      removed,
		"new_agent":    replacement,
	})
}
