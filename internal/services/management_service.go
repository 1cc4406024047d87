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

// reserveDivisor sets the reserve target of a property to price/300
var reserveDivisor = decimal.NewFromInt(300)

// ManagementService owns letting agents, income distribution and the
// reserve and debt ledger of every property.
type ManagementService struct {
	exec       *Executor
	cfg        config.RuntimeConfig
	account    string
	governance string
}

func NewManagementService(exec *Executor, cfg config.RuntimeConfig) *ManagementService {
	return &ManagementService{
		exec:       exec,
		cfg:        cfg,
		account:    blockchain.ModuleAccount(cfg.ManagementPalletID),
		governance: blockchain.ModuleAccount(cfg.GovernancePalletID),
	}
}

// AccountID returns the custodial account of property management
func (s *ManagementService) AccountID() string {
	return s.account
}

// native converts an amount in payment asset units to native currency
func (s *ManagementService) native(amount decimal.Decimal) (decimal.Decimal, error) {
	return checkedMul(amount, s.cfg.AssetMultiplier)
}

// AddLettingAgent registers an agent for a location
func (s *ManagementService) AddLettingAgent(ctx context.Context, regionID uint32, location, agent string) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		if _, err := sc.repo.GetRegion(ctx, regionID); err != nil {
			return notFound(err, ErrRegionUnknown)
		}
		registered, err := sc.repo.LocationExists(ctx, regionID, location)
		if err != nil {
			return err
		}
		if !registered {
			return ErrLocationUnknown
		}
		exists, err := sc.repo.LettingAgentExists(ctx, agent)
		if err != nil {
			return err
		}
		if exists {
			return ErrLettingAgentExists
		}

		if err := sc.repo.CreateLettingAgent(ctx, &models.LettingAgent{Account: agent, RegionID: regionID}); err != nil {
			return fmt.Errorf("failed to create letting agent: %w", err)
		}
		if err := sc.repo.AddAgentLocation(ctx, agent, regionID, location); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleManagement, "LettingAgentAdded", events.Fields{
			"region":        regionID,
			"location":      location,
			"letting_agent": agent,
		})
	})
}

// LettingAgentDeposit reserves the agent deposit and adds the agent to the
// pool of each of its locations.
func (s *ManagementService) LettingAgentDeposit(ctx context.Context, agent string) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		info, err := sc.repo.GetLettingAgent(ctx, agent)
		if err != nil {
			return notFound(err, ErrAgentNotFound)
		}
		if info.Deposited {
			return ErrAlreadyDeposited
		}
		if len(info.Locations) == 0 {
			return ErrNoLoactions
		}
		if err := sc.ledger.Currency.Reserve(ctx, agent, s.cfg.LettingAgentDeposit); err != nil {
			return err
		}
		for _, location := range info.Locations {
			if err := s.joinPool(ctx, sc, info.RegionID, location, agent); err != nil {
				return err
			}
		}
		if err := sc.repo.SetLettingAgentDeposited(ctx, agent, true); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleManagement, "Deposited", events.Fields{"who": agent})
	})
}

func (s *ManagementService) joinPool(ctx context.Context, sc *scope, regionID uint32, location, agent string) error {
	in, err := sc.repo.InLocationPool(ctx, regionID, location, agent)
	if err != nil {
		return err
	}
	if in {
		return ErrLettingAgentInLocation
	}
	size, err := sc.repo.CountLocationPool(ctx, regionID, location)
	if err != nil {
		return err
	}
	if size >= s.cfg.MaxLettingAgents {
		return ErrTooManyLettingAgents
	}
	return sc.repo.AddToLocationPool(ctx, regionID, location, agent)
}

// AddLettingAgentToLocation extends a deposited agent to another location of its region
func (s *ManagementService) AddLettingAgentToLocation(ctx context.Context, location, agent string) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		info, err := sc.repo.GetLettingAgent(ctx, agent)
		if err != nil {
			return notFound(err, ErrAgentNotFound)
		}
		if !info.Deposited {
			return ErrNotDeposited
		}
		registered, err := sc.repo.LocationExists(ctx, info.RegionID, location)
		if err != nil {
			return err
		}
		if !registered {
			return ErrLocationUnknown
		}
		has, err := sc.repo.AgentHasLocation(ctx, agent, info.RegionID, location)
		if err != nil {
			return err
		}
		if has {
			return ErrLettingAgentInLocation
		}
		if len(info.Locations) >= s.cfg.MaxLocations {
			return ErrTooManyLocations
		}
		if err := s.joinPool(ctx, sc, info.RegionID, location, agent); err != nil {
			return err
		}
		if err := sc.repo.AddAgentLocation(ctx, agent, info.RegionID, location); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleManagement, "LettingAgentAddedToLocation", events.Fields{
			"who":      agent,
			"location": location,
		})
	})
}

// SetLettingAgent makes the caller the agent of a property in one of its locations
func (s *ManagementService) SetLettingAgent(ctx context.Context, agent string, assetID uint32) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		asset, err := sc.repo.GetAssetDetails(ctx, assetID)
		if err != nil {
			return notFound(err, ErrInvalidIndex)
		}
		if _, err := sc.repo.GetLettingAgent(ctx, agent); err != nil {
			return notFound(err, ErrAgentNotFound)
		}
		inPool, err := sc.repo.InLocationPool(ctx, asset.RegionID, asset.Location, agent)
		if err != nil {
			return err
		}
		if !inPool {
			return ErrNoPermission
		}
		_, err = sc.repo.GetPropertyLettingAgent(ctx, assetID)
		if err == nil {
			return ErrLettingAgentAlreadySet
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err := s.assign(ctx, sc, assetID, agent); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleManagement, "LettingAgentSet", events.Fields{
			"asset_id": assetID,
			"who":      agent,
		})
	})
}

func (s *ManagementService) assign(ctx context.Context, sc *scope, assetID uint32, agent string) error {
	assigned, err := sc.repo.CountAssignedProperties(ctx, agent)
	if err != nil {
		return err
	}
	if assigned >= s.cfg.MaxProperties {
		return ErrTooManyAssignedProperties
	}
	return sc.repo.AssignLettingAgent(ctx, assetID, agent)
}

// DistributeIncome pays rent into the property. The amount first pays down
// debt, then tops up the reserve, and the rest is shared among the owners.
func (s *ManagementService) DistributeIncome(ctx context.Context, agent string, assetID uint32, amount decimal.Decimal) (decimal.Decimal, error) {
	amount, err := toBalance(amount)
	if err != nil {
		return decimal.Zero, err
	}
	if amount.IsZero() {
		return decimal.Zero, ErrAmountCannotBeZero
	}

	var distributed decimal.Decimal
	err = s.exec.Run(ctx, func(sc *scope) error {
		assignment, err := sc.repo.GetPropertyLettingAgent(ctx, assetID)
		if err != nil {
			return notFound(err, ErrNoLettingAgentFound)
		}
		if assignment.Account != agent {
			return ErrNoPermission
		}
		asset, err := sc.repo.GetAssetDetails(ctx, assetID)
		if err != nil {
			return notFound(err, ErrInvalidIndex)
		}

		gross, err := s.native(amount)
		if err != nil {
			return err
		}
		if err := sc.ledger.Currency.Transfer(ctx, agent, s.account, gross, blockchain.KeepAlive); err != nil {
			return err
		}

		remaining := amount
		debt, err := sc.repo.GetDebt(ctx, assetID)
		if err != nil {
			return err
		}
		if repay := decimal.Min(remaining, debt); repay.IsPositive() {
			if err := s.toGovernance(ctx, sc, repay); err != nil {
				return err
			}
			if err := sc.repo.SetDebt(ctx, assetID, debt.Sub(repay)); err != nil {
				return err
			}
			remaining = remaining.Sub(repay)
		}

		target, err := checkedDiv(asset.Price, reserveDivisor)
		if err != nil {
			return err
		}
		reserve, err := sc.repo.GetReserve(ctx, assetID)
		if err != nil {
			return err
		}
		if reserve.LessThan(target) {
			if topUp := decimal.Min(remaining, target.Sub(reserve)); topUp.IsPositive() {
				if err := s.toGovernance(ctx, sc, topUp); err != nil {
					return err
				}
				if err := sc.repo.SetReserve(ctx, assetID, reserve.Add(topUp)); err != nil {
					return err
				}
				remaining = remaining.Sub(topUp)
			}
		}

		if err := s.shareAmongOwners(ctx, sc, asset, remaining); err != nil {
			return err
		}
		distributed = remaining
		return sc.emit(ctx, events.ModuleManagement, "IncomeDistributed", events.Fields{
			"asset_id": assetID,
			"amount":   remaining,
		})
	})
	if err != nil {
		return decimal.Zero, err
	}
	log.Printf("[Management] Asset %d: distributed %s of %s to owners", assetID, distributed, amount)
	return distributed, nil
}

func (s *ManagementService) toGovernance(ctx context.Context, sc *scope, amount decimal.Decimal) error {
	value, err := s.native(amount)
	if err != nil {
		return err
	}
	return sc.ledger.Currency.Transfer(ctx, s.account, s.governance, value, blockchain.AllowDeath)
}

// shareAmongOwners credits each owner floor(amount * tokens / total tokens).
// Rounding dust stays in the management account.
func (s *ManagementService) shareAmongOwners(ctx context.Context, sc *scope, asset *models.AssetDetails, amount decimal.Decimal) error {
	if amount.IsZero() {
		return nil
	}
	owners, err := sc.repo.ListPropertyOwners(ctx, asset.AssetID)
	if err != nil {
		return err
	}
	total := fromUint(uint64(asset.TokenAmount))
	for _, owner := range owners {
		share, err := mulDiv(amount, fromUint(uint64(owner.TokenAmount)), total)
		if err != nil {
			return err
		}
		stored, err := sc.repo.GetStoredFunds(ctx, owner.Account)
		if err != nil {
			return err
		}
		if stored, err = checkedAdd(stored, share); err != nil {
			return err
		}
		if err := sc.repo.SetStoredFunds(ctx, owner.Account, stored); err != nil {
			return err
		}
	}
	return nil
}

// WithdrawFunds pays out everything the caller has stored
func (s *ManagementService) WithdrawFunds(ctx context.Context, who string) (decimal.Decimal, error) {
	var withdrawn decimal.Decimal
	err := s.exec.Run(ctx, func(sc *scope) error {
		stored, err := sc.repo.GetStoredFunds(ctx, who)
		if err != nil {
			return err
		}
		if stored.IsZero() {
			return ErrUserHasNoFundsStored
		}
		if err := sc.repo.DeleteStoredFunds(ctx, who); err != nil {
			return err
		}
		value, err := s.native(stored)
		if err != nil {
			return err
		}
		if err := sc.ledger.Currency.Transfer(ctx, s.account, who, value, blockchain.AllowDeath); err != nil {
			return err
		}
		withdrawn = stored
		return sc.emit(ctx, events.ModuleManagement, "WithdrawFunds", events.Fields{
			"who":    who,
			"amount": stored,
		})
	})
	return withdrawn, err
}

// decreaseReserves draws amount from the reserve of a property
func (s *ManagementService) decreaseReserves(ctx context.Context, sc *scope, assetID uint32, amount decimal.Decimal) error {
	reserve, err := sc.repo.GetReserve(ctx, assetID)
	if err != nil {
		return err
	}
	if reserve.LessThan(amount) {
		return ErrNotEnoughReserves
	}
	return sc.repo.SetReserve(ctx, assetID, reserve.Sub(amount))
}

// increaseDebts adds amount to the debt of a property
func (s *ManagementService) increaseDebts(ctx context.Context, sc *scope, assetID uint32, amount decimal.Decimal) error {
	debt, err := sc.repo.GetDebt(ctx, assetID)
	if err != nil {
		return err
	}
	if debt, err = checkedAdd(debt, amount); err != nil {
		return err
	}
	return sc.repo.SetDebt(ctx, assetID, debt)
}

// removeBadLettingAgent unassigns the agent of a property and drops it from
// the property's location pool. It returns the removed agent.
func (s *ManagementService) removeBadLettingAgent(ctx context.Context, sc *scope, asset *models.AssetDetails) (string, error) {
	assignment, err := sc.repo.GetPropertyLettingAgent(ctx, asset.AssetID)
	if err != nil {
		return "", notFound(err, ErrNoLettingAgentFound)
	}
	if err := sc.repo.RemovePropertyLettingAgent(ctx, asset.AssetID); err != nil {
		return "", err
	}
	if err := sc.repo.RemoveFromLocationPool(ctx, asset.RegionID, asset.Location, assignment.Account); err != nil {
		return "", err
	}
	return assignment.Account, nil
}

// selectsLettingAgent assigns the first agent of the property's location
// pool, other than excluded, that has capacity left. It returns "" when no
// agent qualifies and the property stays unassigned.
func (s *ManagementService) selectsLettingAgent(ctx context.Context, sc *scope, asset *models.AssetDetails, excluded string) (string, error) {
	pool, err := sc.repo.ListLocationPool(ctx, asset.RegionID, asset.Location)
	if err != nil {
		return "", err
	}
	for _, member := range pool {
		if member.Account == excluded {
			continue
		}
		assigned, err := sc.repo.CountAssignedProperties(ctx, member.Account)
		if err != nil {
			return "", err
		}
		if assigned >= s.cfg.MaxProperties {
			continue
		}
		if err := sc.repo.AssignLettingAgent(ctx, asset.AssetID, member.Account); err != nil {
			return "", err
		}
		return member.Account, nil
	}
	return "", nil
}

// GetLettingAgent returns an agent with its locations and assigned properties
func (s *ManagementService) GetLettingAgent(ctx context.Context, agent string) (*models.LettingAgent, error) {
	info, err := s.exec.Repository().GetLettingAgent(ctx, agent)
	if err != nil {
		return nil, notFound(err, ErrAgentNotFound)
	}
	return info, nil
}

// GetPropertyAgent returns the account managing a property
func (s *ManagementService) GetPropertyAgent(ctx context.Context, assetID uint32) (string, error) {
	assignment, err := s.exec.Repository().GetPropertyLettingAgent(ctx, assetID)
	if err != nil {
		return "", notFound(err, ErrNoLettingAgentFound)
	}
	return assignment.Account, nil
}

// GetPropertyFunds returns the reserve and debt of a property
func (s *ManagementService) GetPropertyFunds(ctx context.Context, assetID uint32) (reserve, debt decimal.Decimal, err error) {
	repo := s.exec.Repository()
	if reserve, err = repo.GetReserve(ctx, assetID); err != nil {
		return
	}
	debt, err = repo.GetDebt(ctx, assetID)
	return
}

// GetStoredFunds returns what an owner can withdraw
func (s *ManagementService) GetStoredFunds(ctx context.Context, who string) (decimal.Decimal, error) {
	return s.exec.Repository().GetStoredFunds(ctx, who)
}
