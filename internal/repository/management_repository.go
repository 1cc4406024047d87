package repository

import (
	"context"
	"errors"

	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (r *Repository) CreateLettingAgent(ctx context.Context, agent *models.LettingAgent) error {
	return r.db.WithContext(ctx).Create(agent).Error
}

// GetLettingAgent retrieves an agent with its locations and assigned properties
func (r *Repository) GetLettingAgent(ctx context.Context, account string) (*models.LettingAgent, error) {
	var agent models.LettingAgent
	if err := r.db.WithContext(ctx).Where("account = ?", account).First(&agent).Error; err != nil {
		return nil, err
	}

	locations, err := r.ListAgentLocations(ctx, account)
	if err != nil {
		return nil, err
	}
	agent.Locations = make([]string, 0, len(locations))
	for _, l := range locations {
		agent.Locations = append(agent.Locations, l.Location)
	}

	var assigned []models.PropertyLettingAgent
	if err := r.db.WithContext(ctx).Where("account = ?", account).Order("id ASC").Find(&assigned).Error; err != nil {
		return nil, err
	}
	agent.AssignedProperties = make([]uint32, 0, len(assigned))
	for _, a := range assigned {
		agent.AssignedProperties = append(agent.AssignedProperties, a.AssetID)
	}
	return &agent, nil
}

func (r *Repository) LettingAgentExists(ctx context.Context, account string) (bool, error) {
	return r.exists(ctx, &models.LettingAgent{}, "account = ?", account)
}

func (r *Repository) SetLettingAgentDeposited(ctx context.Context, account string, deposited bool) error {
	return r.db.WithContext(ctx).Model(&models.LettingAgent{}).
		Where("account = ?", account).
		Update("deposited", deposited).Error
}

// Agent locations

func (r *Repository) AddAgentLocation(ctx context.Context, account string, regionID uint32, location string) error {
	return r.db.WithContext(ctx).Create(&models.LettingAgentLocation{
		Account:  account,
		RegionID: regionID,
		Location: location,
	}).Error
}

func (r *Repository) ListAgentLocations(ctx context.Context, account string) ([]models.LettingAgentLocation, error) {
	var locations []models.LettingAgentLocation
	err := r.db.WithContext(ctx).Where("account = ?", account).Order("id ASC").Find(&locations).Error
	return locations, err
}

func (r *Repository) AgentHasLocation(ctx context.Context, account string, regionID uint32, location string) (bool, error) {
	return r.exists(ctx, &models.LettingAgentLocation{}, "account = ? AND region_id = ? AND location = ?", account, regionID, location)
}

// Location pools

func (r *Repository) AddToLocationPool(ctx context.Context, regionID uint32, location, account string) error {
	return r.db.WithContext(ctx).Create(&models.LocationAgentPool{
		RegionID: regionID,
		Location: location,
		Account:  account,
	}).Error
}

func (r *Repository) InLocationPool(ctx context.Context, regionID uint32, location, account string) (bool, error) {
	return r.exists(ctx, &models.LocationAgentPool{}, "region_id = ? AND location = ? AND account = ?", regionID, location, account)
}

func (r *Repository) CountLocationPool(ctx context.Context, regionID uint32, location string) (int, error) {
	return r.count(ctx, &models.LocationAgentPool{}, "region_id = ? AND location = ?", regionID, location)
}

// ListLocationPool returns the agents of a location in joining order
func (r *Repository) ListLocationPool(ctx context.Context, regionID uint32, location string) ([]models.LocationAgentPool, error) {
	var pool []models.LocationAgentPool
	err := r.db.WithContext(ctx).Where("region_id = ? AND location = ?", regionID, location).Order("id ASC").Find(&pool).Error
	return pool, err
}

func (r *Repository) RemoveFromLocationPool(ctx context.Context, regionID uint32, location, account string) error {
	return r.db.WithContext(ctx).
		Where("region_id = ? AND location = ? AND account = ?", regionID, location, account).
		Delete(&models.LocationAgentPool{}).Error
}

// Property assignments

func (r *Repository) GetPropertyLettingAgent(ctx context.Context, assetID uint32) (*models.PropertyLettingAgent, error) {
	var assignment models.PropertyLettingAgent
	err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *Repository) AssignLettingAgent(ctx context.Context, assetID uint32, account string) error {
	return r.db.WithContext(ctx).Create(&models.PropertyLettingAgent{AssetID: assetID, Account: account}).Error
}

func (r *Repository) CountAssignedProperties(ctx context.Context, account string) (int, error) {
	return r.count(ctx, &models.PropertyLettingAgent{}, "account = ?", account)
}

func (r *Repository) RemovePropertyLettingAgent(ctx context.Context, assetID uint32) error {
	return r.db.WithContext(ctx).Where("asset_id = ?", assetID).Delete(&models.PropertyLettingAgent{}).Error
}

// Reserves, debts and stored funds. Missing rows read as zero.

func (r *Repository) GetReserve(ctx context.Context, assetID uint32) (decimal.Decimal, error) {
	var reserve models.PropertyReserve
	err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&reserve).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return reserve.Amount, nil
}

func (r *Repository) SetReserve(ctx context.Context, assetID uint32, amount decimal.Decimal) error {
	return r.upsert(ctx, &models.PropertyReserve{AssetID: assetID, Amount: amount})
}

func (r *Repository) GetDebt(ctx context.Context, assetID uint32) (decimal.Decimal, error) {
	var debt models.PropertyDebt
	err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&debt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return debt.Amount, nil
}

func (r *Repository) SetDebt(ctx context.Context, assetID uint32, amount decimal.Decimal) error {
	return r.upsert(ctx, &models.PropertyDebt{AssetID: assetID, Amount: amount})
}

func (r *Repository) GetStoredFunds(ctx context.Context, account string) (decimal.Decimal, error) {
	var funds models.StoredFunds
	err := r.db.WithContext(ctx).Where("account = ?", account).First(&funds).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, err
	}
	return funds.Amount, nil
}

func (r *Repository) SetStoredFunds(ctx context.Context, account string, amount decimal.Decimal) error {
	return r.upsert(ctx, &models.StoredFunds{Account: account, Amount: amount})
}

func (r *Repository) DeleteStoredFunds(ctx context.Context, account string) error {
	return r.db.WithContext(ctx).Where("account = ?", account).Delete(&models.StoredFunds{}).Error
}
