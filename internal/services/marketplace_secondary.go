package services

import (
	"context"
	"errors"
	"fmt"

	"real-estate-market/internal/events"
	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RelistToken puts tokens of a settled property up for resale. The tokens
// move to the marketplace account until sold or delisted.
func (s *MarketplaceService) RelistToken(
	ctx context.Context,
	seller string,
	regionID, itemID uint32,
	tokenPrice decimal.Decimal,
	amount uint32,
) (*models.TokenListing, error) {
	price, err := toBalance(tokenPrice)
	if err != nil {
		return nil, err
	}
	if price.IsZero() || amount == 0 {
		return nil, ErrAmountCannotBeZero
	}

	var listing *models.TokenListing
	err = s.exec.Run(ctx, func(sc *scope) error {
		if err := ensureWhitelisted(ctx, sc, seller); err != nil {
			return err
		}
		region, err := sc.repo.GetRegion(ctx, regionID)
		if err != nil {
			return notFound(err, ErrRegionUnknown)
		}
		nft, err := sc.repo.GetNftDetails(ctx, region.CollectionID, itemID)
		if err != nil {
			return notFound(err, ErrInvalidIndex)
		}
		if !nft.SpvCreated {
			return ErrSpvNotCreated
		}

		held, err := sc.ledger.Assets.Balance(ctx, nft.AssetID, seller)
		if err != nil {
			return err
		}
		if held.LessThan(fromUint(uint64(amount))) {
			return ErrNotEnoughToken
		}
		if err := sc.ledger.Assets.Transfer(ctx, nft.AssetID, seller, s.account, fromUint(uint64(amount))); err != nil {
			return err
		}

		listingID, err := s.nextListingID(ctx, sc)
		if err != nil {
			return err
		}
		listing = &models.TokenListing{
			ListingID:    listingID,
			Seller:       seller,
			TokenPrice:   price,
			AssetID:      nft.AssetID,
			ItemID:       itemID,
			CollectionID: region.CollectionID,
			Amount:       amount,
		}
		if err := sc.repo.CreateTokenListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to create token listing: %w", err)
		}
		if err := sc.repo.CreateListedToken(ctx, listingID, amount); err != nil {
			return err
		}

		return sc.emit(ctx, events.ModuleMarketplace, "TokenRelisted", events.Fields{
			"listing_index": listingID,
			"asset_id":      nft.AssetID,
			"amount":        amount,
			"price":         price,
			"seller":        seller,
		})
	})
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// BuyRelistedToken buys tokens from a resale. The buyer pays the seller directly.
func (s *MarketplaceService) BuyRelistedToken(ctx context.Context, buyer string, listingID, amount uint32) error {
	if amount == 0 {
		return ErrAmountCannotBeZero
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		if err := ensureWhitelisted(ctx, sc, buyer); err != nil {
			return err
		}
		listing, err := sc.repo.GetTokenListing(ctx, listingID)
		if err != nil {
			return notFound(err, ErrTokenNotForSale)
		}
		if amount > listing.Amount {
			return ErrNotEnoughTokenAvailable
		}
		price, err := checkedMul(listing.TokenPrice, fromUint(uint64(amount)))
		if err != nil {
			return err
		}
		if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, buyer, listing.Seller, price); err != nil {
			return err
		}
		if err := s.settleResale(ctx, sc, listing, buyer, amount); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "RelistedTokenBought", events.Fields{
			"listing_index": listingID,
			"asset_id":      listing.AssetID,
			"buyer":         buyer,
			"amount":        amount,
			"price":         price,
		})
	})
}

// settleResale hands amount tokens from escrow to buyer and updates the cap table and listing
func (s *MarketplaceService) settleResale(ctx context.Context, sc *scope, listing *models.TokenListing, buyer string, amount uint32) error {
	if err := sc.ledger.Assets.Transfer(ctx, listing.AssetID, s.account, buyer, fromUint(uint64(amount))); err != nil {
		return err
	}
	if err := s.debitOwner(ctx, sc, listing.AssetID, listing.Seller, amount); err != nil {
		return err
	}
	if err := s.creditOwner(ctx, sc, listing.AssetID, buyer, amount); err != nil {
		return err
	}

	remaining := listing.Amount - amount
	if remaining == 0 {
		if err := sc.repo.DeleteTokenListing(ctx, listing.ListingID); err != nil {
			return err
		}
		return sc.repo.DeleteListedToken(ctx, listing.ListingID)
	}
	if err := sc.repo.UpdateTokenListing(ctx, listing.ListingID, remaining, listing.TokenPrice); err != nil {
		return err
	}
	return sc.repo.UpdateListedToken(ctx, listing.ListingID, remaining)
}

// MakeOffer escrows a bid for tokens of a resale
func (s *MarketplaceService) MakeOffer(ctx context.Context, offeror string, listingID uint32, offerPrice decimal.Decimal, amount uint32) error {
	price, err := toBalance(offerPrice)
	if err != nil {
		return err
	}
	if price.IsZero() || amount == 0 {
		return ErrAmountCannotBeZero
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		if err := ensureWhitelisted(ctx, sc, offeror); err != nil {
			return err
		}
		listing, err := sc.repo.GetTokenListing(ctx, listingID)
		if err != nil {
			return notFound(err, ErrTokenNotForSale)
		}
		if amount > listing.Amount {
			return ErrNotEnoughTokenAvailable
		}
		if _, err := sc.repo.GetOffer(ctx, listingID, offeror); err == nil {
			return ErrOfferAlreadyExists
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		total, err := checkedMul(price, fromUint(uint64(amount)))
		if err != nil {
			return err
		}
		if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, offeror, s.account, total); err != nil {
			return err
		}
		if err := sc.repo.CreateOffer(ctx, &models.Offer{
			ListingID:  listingID,
			Offeror:    offeror,
			TokenPrice: price,
			Amount:     amount,
		}); err != nil {
			return fmt.Errorf("failed to store offer: %w", err)
		}
		return sc.emit(ctx, events.ModuleMarketplace, "OfferCreated", events.Fields{
			"listing_index": listingID,
			"offeror":       offeror,
			"price":         price,
			"amount":        amount,
		})
	})
}

// HandleOffer lets the seller accept or reject an offer. Rejected offers are refunded.
func (s *MarketplaceService) HandleOffer(ctx context.Context, seller string, listingID uint32, offeror string, accept bool) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		listing, err := sc.repo.GetTokenListing(ctx, listingID)
		if err != nil {
			return notFound(err, ErrTokenNotForSale)
		}
		if listing.Seller != seller {
			return ErrNoPermission
		}
		offer, err := sc.repo.GetOffer(ctx, listingID, offeror)
		if err != nil {
			return notFound(err, ErrInvalidIndex)
		}
		if err := sc.repo.DeleteOffer(ctx, listingID, offeror); err != nil {
			return err
		}
		total, err := checkedMul(offer.TokenPrice, fromUint(uint64(offer.Amount)))
		if err != nil {
			return err
		}

		if !accept {
			if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, s.account, offeror, total); err != nil {
				return err
			}
			return sc.emit(ctx, events.ModuleMarketplace, "OfferRejected", events.Fields{
				"listing_index": listingID,
				"offeror":       offeror,
			})
		}

		if offer.Amount > listing.Amount {
			return ErrNotEnoughTokenAvailable
		}
		if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, s.account, seller, total); err != nil {
			return err
		}
		if err := s.settleResale(ctx, sc, listing, offeror, offer.Amount); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "OfferAccepted", events.Fields{
			"listing_index": listingID,
			"offeror":       offeror,
			"amount":        offer.Amount,
			"price":         offer.TokenPrice,
		})
	})
}

// CancelOffer withdraws the caller's offer and refunds it
func (s *MarketplaceService) CancelOffer(ctx context.Context, offeror string, listingID uint32) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		offer, err := sc.repo.GetOffer(ctx, listingID, offeror)
		if err != nil {
			return notFound(err, ErrInvalidIndex)
		}
		if err := sc.repo.DeleteOffer(ctx, listingID, offeror); err != nil {
			return err
		}
		total, err := checkedMul(offer.TokenPrice, fromUint(uint64(offer.Amount)))
		if err != nil {
			return err
		}
		if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, s.account, offeror, total); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "OfferCancelled", events.Fields{
			"listing_index": listingID,
			"offeror":       offeror,
		})
	})
}

// UpgradeListing changes the price of a resale
func (s *MarketplaceService) UpgradeListing(ctx context.Context, seller string, listingID uint32, newPrice decimal.Decimal) error {
	price, err := toBalance(newPrice)
	if err != nil {
		return err
	}
	if price.IsZero() {
		return ErrAmountCannotBeZero
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		listing, err := sc.repo.GetTokenListing(ctx, listingID)
		if err != nil {
			return notFound(err, ErrTokenNotForSale)
		}
		if listing.Seller != seller {
			return ErrNoPermission
		}
		if err := sc.repo.UpdateTokenListing(ctx, listingID, listing.Amount, price); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "ListingUpdated", events.Fields{
			"listing_index": listingID,
			"new_price":     price,
		})
	})
}

// UpgradeObject changes the token price of a primary listing still on sale
func (s *MarketplaceService) UpgradeObject(ctx context.Context, developer string, listingID uint32, newPrice decimal.Decimal) error {
	price, err := toBalance(newPrice)
	if err != nil {
		return err
	}
	if price.IsZero() {
		return ErrAmountCannotBeZero
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		listing, err := sc.repo.GetObjectListing(ctx, listingID)
		if err != nil {
			return notFound(err, ErrTokenNotForSale)
		}
		if listing.Developer != developer {
			return ErrNoPermission
		}
		if _, err := sc.repo.GetListedToken(ctx, listingID); err != nil {
			return notFound(err, ErrPropertyAlreadySold)
		}
		listing.TokenPrice = price
		if err := sc.repo.UpdateObjectListing(ctx, listing); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "ObjectUpdated", events.Fields{
			"listing_index": listingID,
			"new_price":     price,
		})
	})
}

// DelistToken ends a resale and returns the unsold tokens to the seller
func (s *MarketplaceService) DelistToken(ctx context.Context, seller string, listingID uint32) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		listing, err := sc.repo.GetTokenListing(ctx, listingID)
		if err != nil {
			return notFound(err, ErrTokenNotForSale)
		}
		if listing.Seller != seller {
			return ErrNoPermission
		}
		if err := sc.repo.DeleteTokenListing(ctx, listingID); err != nil {
			return err
		}
		if err := sc.repo.DeleteListedToken(ctx, listingID); err != nil {
			return err
		}
		if err := sc.ledger.Assets.Transfer(ctx, listing.AssetID, s.account, seller, fromUint(uint64(listing.Amount))); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "ListingDelisted", events.Fields{
			"listing_index": listingID,
		})
	})
}
