package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"real-estate-market/internal/events"
	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// LawyerClaimProperty assigns the caller to one side of a listing's legal gate
func (s *MarketplaceService) LawyerClaimProperty(
	ctx context.Context,
	lawyer string,
	listingID uint32,
	side models.LegalProperty,
	costs decimal.Decimal,
) error {
	if !side.Valid() {
		return ErrInvalidLegalSide
	}
	costs, err := toBalance(costs)
	if err != nil {
		return err
	}

	return s.exec.Run(ctx, func(sc *scope) error {
		registered, err := sc.repo.LawyerExists(ctx, lawyer)
		if err != nil {
			return err
		}
		if !registered {
			return ErrNoPermission
		}
		record, err := sc.repo.GetPropertyLawyer(ctx, listingID)
		if err != nil {
			return notFound(err, ErrInvalidIndex)
		}
		listing, err := sc.repo.GetObjectListing(ctx, listingID)
		if err != nil {
			return notFound(err, ErrInvalidIndex)
		}

		// Both costs are paid out of the 1% kept from the funds plus the fees;
		// on rejection the spv lawyer is paid out of the fees alone.
		budget, err := s.treasuryBudget(listing)
		if err != nil {
			return err
		}

		switch side {
		case models.LegalPropertyDeveloper:
			if record.DeveloperLawyer != nil {
				return ErrLawyerJobTaken
			}
			if record.SpvLawyer != nil && *record.SpvLawyer == lawyer {
				return ErrNoPermission
			}
			total, err := checkedAdd(costs, record.SpvLawyerCosts)
			if err != nil {
				return err
			}
			if total.GreaterThan(budget) {
				return ErrCostsTooHigh
			}
			record.DeveloperLawyer = &lawyer
			record.DeveloperLawyerCosts = costs
		case models.LegalPropertySpv:
			if record.SpvLawyer != nil {
				return ErrLawyerJobTaken
			}
			if record.DeveloperLawyer != nil && *record.DeveloperLawyer == lawyer {
				return ErrNoPermission
			}
			total, err := checkedAdd(costs, record.DeveloperLawyerCosts)
			if err != nil {
				return err
			}
			if total.GreaterThan(budget) || costs.GreaterThan(listing.CollectedFees) {
				return ErrCostsTooHigh
			}
			record.SpvLawyer = &lawyer
			record.SpvLawyerCosts = costs
		}

		if err := sc.repo.UpdatePropertyLawyer(ctx, record); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "LawyerClaimedProperty", events.Fields{
			"lawyer":        lawyer,
			"listing_index": listingID,
			"legal_side":    side,
			"costs":         costs,
		})
	})
}

// treasuryBudget is what the treasury would keep on approval before lawyer costs
func (s *MarketplaceService) treasuryBudget(listing *models.ObjectListing) (decimal.Decimal, error) {
	developerShare, err := percentOf(listing.CollectedFunds, developerPercent)
	if err != nil {
		return decimal.Zero, err
	}
	kept, err := checkedSub(listing.CollectedFunds, developerShare)
	if err != nil {
		return decimal.Zero, err
	}
	return checkedAdd(kept, listing.CollectedFees)
}

// LawyerConfirmDocuments records the caller's verdict and settles the sale
// once both sides agree.
func (s *MarketplaceService) LawyerConfirmDocuments(ctx context.Context, lawyer string, listingID uint32, approve bool) error {
	status := models.DocumentStatusRejected
	if approve {
		status = models.DocumentStatusApproved
	}

	var outcome string
	err := s.exec.Run(ctx, func(sc *scope) error {
		record, err := sc.repo.GetPropertyLawyer(ctx, listingID)
		if err != nil {
			return notFound(err, ErrInvalidIndex)
		}

		var side models.LegalProperty
		switch {
		case record.DeveloperLawyer != nil && *record.DeveloperLawyer == lawyer:
			side = models.LegalPropertyDeveloper
			record.DeveloperStatus = status
		case record.SpvLawyer != nil && *record.SpvLawyer == lawyer:
			side = models.LegalPropertySpv
			record.SpvStatus = status
		default:
			return ErrNoPermission
		}
		if err := sc.emit(ctx, events.ModuleMarketplace, "DocumentsConfirmed", events.Fields{
			"signer":        lawyer,
			"listing_index": listingID,
			"legal_side":    side,
			"approve":       approve,
		}); err != nil {
			return err
		}

		// Take the record so that no settlement branch can run twice.
		if err := sc.repo.DeletePropertyLawyer(ctx, listingID); err != nil {
			return err
		}

		approved := models.DocumentStatusApproved
		rejected := models.DocumentStatusRejected
		dev, spv := record.DeveloperStatus, record.SpvStatus
		split := (dev == approved && spv == rejected) || (dev == rejected && spv == approved)

		switch {
		case dev == approved && spv == approved:
			outcome = "finalized"
			return s.executeDeal(ctx, sc, listingID, record)
		case dev == rejected && spv == rejected:
			outcome = "rejected"
			return s.rejectDeal(ctx, sc, listingID, record)
		case split && !record.SecondAttempt:
			outcome = "retry"
			record.DeveloperStatus = models.DocumentStatusPending
			record.SpvStatus = models.DocumentStatusPending
			record.SecondAttempt = true
			if err := sc.repo.CreatePropertyLawyer(ctx, record); err != nil {
				return err
			}
			return sc.emit(ctx, events.ModuleMarketplace, "DocumentsResetForSecondAttempt", events.Fields{
				"listing_index": listingID,
			})
		case split:
			outcome = "rejected"
			return s.rejectDeal(ctx, sc, listingID, record)
		default:
			return sc.repo.CreatePropertyLawyer(ctx, record)
		}
	})
	if err != nil {
		return err
	}
	if outcome != "" {
		log.Printf("[Marketplace] Legal process of listing %d: %s", listingID, outcome)
	}
	return nil
}

// executeDeal pays out the escrow and hands the tokens to the buyers
func (s *MarketplaceService) executeDeal(ctx context.Context, sc *scope, listingID uint32, record *models.PropertyLawyer) error {
	listing, err := sc.repo.GetObjectListing(ctx, listingID)
	if err != nil {
		return notFound(err, ErrInvalidIndex)
	}
	if err := sc.repo.DeleteObjectListing(ctx, listingID); err != nil {
		return err
	}

	developerAmount, err := percentOf(listing.CollectedFunds, developerPercent)
	if err != nil {
		return err
	}
	treasuryAmount, err := s.treasuryBudget(listing)
	if err != nil {
		return err
	}
	if treasuryAmount, err = checkedSub(treasuryAmount, record.DeveloperLawyerCosts); err != nil {
		return err
	}
	if treasuryAmount, err = checkedSub(treasuryAmount, record.SpvLawyerCosts); err != nil {
		return err
	}
	developerLawyerAmount, err := checkedAdd(listing.CollectedTax, record.DeveloperLawyerCosts)
	if err != nil {
		return err
	}

	payouts := []struct {
		to     string
		amount decimal.Decimal
	}{
		{listing.Developer, developerAmount},
		{*record.DeveloperLawyer, developerLawyerAmount},
		{*record.SpvLawyer, record.SpvLawyerCosts},
		{s.treasury, treasuryAmount},
	}
	for _, p := range payouts {
		if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, s.account, p.to, p.amount); err != nil {
			return fmt.Errorf("failed to pay %s: %w", p.to, err)
		}
	}

	buyers, err := sc.repo.ListTokenOwnerDetails(ctx, listingID)
	if err != nil {
		return err
	}
	for _, buyer := range buyers {
		if err := sc.ledger.Assets.Transfer(ctx, listing.AssetID, s.account, buyer.Account, fromUint(uint64(buyer.TokenAmount))); err != nil {
			return err
		}
		if err := s.creditOwner(ctx, sc, listing.AssetID, buyer.Account, buyer.TokenAmount); err != nil {
			return err
		}
	}
	if err := sc.repo.DeleteTokenOwnerDetails(ctx, listingID); err != nil {
		return err
	}
	if err := sc.repo.MarkSpvCreated(ctx, listing.CollectionID, listing.ItemID); err != nil {
		return err
	}

	return sc.emit(ctx, events.ModuleMarketplace, "PropertyFinalized", events.Fields{
		"listing_index": listingID,
		"asset_id":      listing.AssetID,
		"developer":     listing.Developer,
		"funds":         developerAmount,
		"treasury":      treasuryAmount,
	})
}

// rejectDeal burns the property and refunds every buyer
func (s *MarketplaceService) rejectDeal(ctx context.Context, sc *scope, listingID uint32, record *models.PropertyLawyer) error {
	listing, err := sc.repo.GetObjectListing(ctx, listingID)
	if err != nil {
		return notFound(err, ErrInvalidIndex)
	}
	if err := sc.repo.DeleteObjectListing(ctx, listingID); err != nil {
		return err
	}

	if err := sc.ledger.Fractions.Unify(ctx, listing.CollectionID, listing.ItemID, listing.AssetID, s.account); err != nil {
		return err
	}
	if err := sc.ledger.Nfts.Burn(ctx, listing.CollectionID, listing.ItemID); err != nil {
		return err
	}
	if err := sc.repo.DeleteAssetDetails(ctx, listing.AssetID); err != nil {
		return err
	}
	if err := sc.repo.DeleteNftDetails(ctx, listing.CollectionID, listing.ItemID); err != nil {
		return err
	}

	buyers, err := sc.repo.ListTokenOwnerDetails(ctx, listingID)
	if err != nil {
		return err
	}
	for _, buyer := range buyers {
		refund, err := checkedAdd(buyer.PaidFunds, buyer.PaidTax)
		if err != nil {
			return err
		}
		if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, s.account, buyer.Account, refund); err != nil {
			return err
		}
	}
	if err := sc.repo.DeleteTokenOwnerDetails(ctx, listingID); err != nil {
		return err
	}

	treasuryAmount, err := checkedSub(listing.CollectedFees, record.SpvLawyerCosts)
	if err != nil {
		return err
	}
	if record.SpvLawyer != nil {
		if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, s.account, *record.SpvLawyer, record.SpvLawyerCosts); err != nil {
			return err
		}
	}
	if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, s.account, s.treasury, treasuryAmount); err != nil {
		return err
	}

	return sc.emit(ctx, events.ModuleMarketplace, "PropertyRejected", events.Fields{
		"listing_index": listingID,
		"asset_id":      listing.AssetID,
		"refunded":      len(buyers),
	})
}

// creditOwner adds tokens to an account in the cap table of an asset
func (s *MarketplaceService) creditOwner(ctx context.Context, sc *scope, assetID uint32, account string, amount uint32) error {
	owner, err := sc.repo.GetPropertyOwnerToken(ctx, assetID, account)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		owners, err := sc.repo.CountPropertyOwners(ctx, assetID)
		if err != nil {
			return err
		}
		if owners >= s.cfg.MaxPropertyOwners {
			return ErrTooManyTokenBuyer
		}
		return sc.repo.CreatePropertyOwnerToken(ctx, &models.PropertyOwnerToken{
			AssetID:     assetID,
			Account:     account,
			TokenAmount: amount,
		})
	}
	if err != nil {
		return err
	}
	if owner.TokenAmount > math.MaxUint32-amount {
		return ErrArithmeticOverflow
	}
	return sc.repo.UpdatePropertyOwnerToken(ctx, owner.ID, owner.TokenAmount+amount)
}

// debitOwner removes tokens from an account in the cap table. Owners
// left with no tokens leave the owner list.
func (s *MarketplaceService) debitOwner(ctx context.Context, sc *scope, assetID uint32, account string, amount uint32) error {
	owner, err := sc.repo.GetPropertyOwnerToken(ctx, assetID, account)
	if err != nil {
		return notFound(err, ErrNotEnoughToken)
	}
	if owner.TokenAmount < amount {
		return ErrArithmeticUnderflow
	}
	if owner.TokenAmount == amount {
		return sc.repo.DeletePropertyOwnerToken(ctx, owner.ID)
	}
	return sc.repo.UpdatePropertyOwnerToken(ctx, owner.ID, owner.TokenAmount-amount)
}
