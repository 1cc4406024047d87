package repository

import (
	"context"

	"real-estate-market/internal/models"
)

func (r *Repository) CreateProposal(ctx context.Context, proposal *models.Proposal) error {
	return r.db.WithContext(ctx).Create(proposal).Error
}

func (r *Repository) GetProposal(ctx context.Context, proposalID uint64) (*models.Proposal, error) {
	var proposal models.Proposal
	err := r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).First(&proposal).Error
	if err != nil {
		return nil, err
	}
	return &proposal, nil
}

func (r *Repository) DeleteProposal(ctx context.Context, proposalID uint64) error {
	return r.db.WithContext(ctx).Where("proposal_id = ?", proposalID).Delete(&models.Proposal{}).Error
}

func (r *Repository) CreateChallenge(ctx context.Context, challenge *models.Challenge) error {
	return r.db.WithContext(ctx).Create(challenge).Error
}

func (r *Repository) GetChallenge(ctx context.Context, challengeID uint64) (*models.Challenge, error) {
	var challenge models.Challenge
	err := r.db.WithContext(ctx).Where("challenge_id = ?", challengeID).First(&challenge).Error
	if err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (r *Repository) ChallengeExistsForAsset(ctx context.Context, assetID uint32) (bool, error) {
	return r.exists(ctx, &models.Challenge{}, "asset_id = ?", assetID)
}

// UpdateChallengeRound moves a challenge to a new state and expiry
func (r *Repository) UpdateChallengeRound(ctx context.Context, challengeID uint64, state models.ChallengeState, expiry uint64) error {
	return r.db.WithContext(ctx).Model(&models.Challenge{}).
		Where("challenge_id = ?", challengeID).
		Updates(map[string]interface{}{"state": state, "expiry_at": expiry}).Error
}

func (r *Repository) DeleteChallenge(ctx context.Context, challengeID uint64) error {
	return r.db.WithContext(ctx).Where("challenge_id = ?", challengeID).Delete(&models.Challenge{}).Error
}

// Vote tallies

func (r *Repository) CreateVoteStats(ctx context.Context, kind models.RoundKind, itemID uint64, state models.ChallengeState) error {
	return r.db.WithContext(ctx).Create(&models.VoteStats{Kind: kind, ItemID: itemID, State: state}).Error
}

func (r *Repository) GetVoteStats(ctx context.Context, kind models.RoundKind, itemID uint64, state models.ChallengeState) (*models.VoteStats, error) {
	var stats models.VoteStats
	err := r.db.WithContext(ctx).
		Where("kind = ? AND item_id = ? AND state = ?", kind, itemID, state).
		First(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func (r *Repository) UpdateVoteStats(ctx context.Context, stats *models.VoteStats) error {
	return r.db.WithContext(ctx).Model(&models.VoteStats{}).
		Where("kind = ? AND item_id = ? AND state = ?", stats.Kind, stats.ItemID, stats.State).
		Updates(map[string]interface{}{
			"yes_voting_power": stats.YesVotingPower,
			"no_voting_power":  stats.NoVotingPower,
		}).Error
}

// DeleteVotes removes the tally and the vote records of one round
func (r *Repository) DeleteVotes(ctx context.Context, kind models.RoundKind, itemID uint64, state models.ChallengeState) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("kind = ? AND item_id = ? AND state = ?", kind, itemID, state).Delete(&models.VoteStats{}).Error; err != nil {
		return err
	}
	return db.Where("kind = ? AND item_id = ? AND state = ?", kind, itemID, state).Delete(&models.VoteRecord{}).Error
}

// DeleteAllVotes removes every round of an item
func (r *Repository) DeleteAllVotes(ctx context.Context, kind models.RoundKind, itemID uint64) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("kind = ? AND item_id = ?", kind, itemID).Delete(&models.VoteStats{}).Error; err != nil {
		return err
	}
	return db.Where("kind = ? AND item_id = ?", kind, itemID).Delete(&models.VoteRecord{}).Error
}

func (r *Repository) GetVoteRecord(ctx context.Context, kind models.RoundKind, itemID uint64, state models.ChallengeState, account string) (*models.VoteRecord, error) {
	var record models.VoteRecord
	err := r.db.WithContext(ctx).
		Where("kind = ? AND item_id = ? AND state = ? AND account = ?", kind, itemID, state, account).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *Repository) SaveVoteRecord(ctx context.Context, record *models.VoteRecord) error {
	return r.upsert(ctx, record)
}

// Expiry schedule

func (r *Repository) ScheduleRound(ctx context.Context, block uint64, kind models.RoundKind, itemID uint64) error {
	return r.db.WithContext(ctx).Create(&models.VotingRound{ExpiryBlock: block, Kind: kind, ItemID: itemID}).Error
}

func (r *Repository) CountRounds(ctx context.Context, block uint64) (int, error) {
	return r.count(ctx, &models.VotingRound{}, "expiry_block = ?", block)
}

// ListRounds returns the rounds expiring at block in scheduling order
func (r *Repository) ListRounds(ctx context.Context, block uint64) ([]models.VotingRound, error) {
	var rounds []models.VotingRound
	err := r.db.WithContext(ctx).Where("expiry_block = ?", block).Order("id ASC").Find(&rounds).Error
	return rounds, err
}

func (r *Repository) DeleteRounds(ctx context.Context, block uint64) error {
	return r.db.WithContext(ctx).Where("expiry_block = ?", block).Delete(&models.VotingRound{}).Error
}
