package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"

	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/config"
	"real-estate-market/internal/events"
	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	feePercent       = 1
	taxPercent       = 3
	developerPercent = 99
)

// MarketplaceService owns regions, primary listings, the legal gate and
// the secondary market.
type MarketplaceService struct {
	exec     *Executor
	cfg      config.RuntimeConfig
	account  string
	treasury string
}

func NewMarketplaceService(exec *Executor, cfg config.RuntimeConfig) *MarketplaceService {
	return &MarketplaceService{
		exec:     exec,
		cfg:      cfg,
		account:  blockchain.ModuleAccount(cfg.MarketplacePalletID),
		treasury: blockchain.ModuleAccount(cfg.TreasuryPalletID),
	}
}

// AccountID returns the custodial account of the marketplace
func (s *MarketplaceService) AccountID() string {
	return s.account
}

// TreasuryAccount returns the account receiving marketplace fees
func (s *MarketplaceService) TreasuryAccount() string {
	return s.treasury
}

func notFound(err error, missing error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return missing
	}
	return err
}

func ensureWhitelisted(ctx context.Context, sc *scope, who string) error {
	ok, err := sc.ledger.Whitelist.IsWhitelisted(ctx, who)
	if err != nil {
		return err
	}
	if !ok {
		return ErrUserNotWhitelisted
	}
	return nil
}

// CreateNewRegion creates a region with a fresh collection owned by the marketplace
func (s *MarketplaceService) CreateNewRegion(ctx context.Context) (*models.Region, error) {
	var region *models.Region
	err := s.exec.Run(ctx, func(sc *scope) error {
		regionID, err := sc.repo.NextID(ctx, models.CounterNextRegionID)
		if err != nil {
			return err
		}
		collectionID, err := sc.repo.NextID(ctx, models.CounterNextCollectionID)
		if err != nil {
			return err
		}
		if regionID > math.MaxUint32 || collectionID > math.MaxUint32 {
			return ErrArithmeticOverflow
		}

		if err := sc.ledger.Nfts.CreateCollection(ctx, uint32(collectionID), s.account, s.account); err != nil {
			return err
		}
		region = &models.Region{RegionID: uint32(regionID), CollectionID: uint32(collectionID)}
		if err := sc.repo.CreateRegion(ctx, region); err != nil {
			return fmt.Errorf("failed to create region: %w", err)
		}

		return sc.emit(ctx, events.ModuleMarketplace, "RegionCreated", events.Fields{
			"region_id":     region.RegionID,
			"collection_id": region.CollectionID,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Marketplace] Region %d created with collection %d", region.RegionID, region.CollectionID)
	return region, nil
}

// CreateNewLocation registers a location in a region
func (s *MarketplaceService) CreateNewLocation(ctx context.Context, regionID uint32, location string) error {
	if location == "" || len(location) > s.cfg.MaxLocationLength {
		return ErrInvalidLocation
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		if _, err := sc.repo.GetRegion(ctx, regionID); err != nil {
			return notFound(err, ErrRegionUnknown)
		}
		exists, err := sc.repo.LocationExists(ctx, regionID, location)
		if err != nil {
			return err
		}
		if exists {
			return ErrLocationRegistered
		}
		if err := sc.repo.CreateLocation(ctx, &models.Location{RegionID: regionID, Location: location}); err != nil {
			return fmt.Errorf("failed to create location: %w", err)
		}
		return sc.emit(ctx, events.ModuleMarketplace, "LocationCreated", events.Fields{
			"region_id": regionID,
			"location":  location,
		})
	})
}

// ListObject mints a property NFT, fractionalizes it and opens the primary sale
func (s *MarketplaceService) ListObject(
	ctx context.Context,
	seller string,
	regionID uint32,
	location string,
	tokenPrice decimal.Decimal,
	tokenAmount uint32,
	metadata []byte,
) (*models.ObjectListing, error) {
	price, err := toBalance(tokenPrice)
	if err != nil {
		return nil, err
	}
	if price.IsZero() || tokenAmount == 0 {
		return nil, ErrAmountCannotBeZero
	}

	var listing *models.ObjectListing
	err = s.exec.Run(ctx, func(sc *scope) error {
		if err := ensureWhitelisted(ctx, sc, seller); err != nil {
			return err
		}
		if tokenAmount > s.cfg.MaxNftToken {
			return ErrTooManyToken
		}

		region, err := sc.repo.GetRegion(ctx, regionID)
		if err != nil {
			return notFound(err, ErrRegionUnknown)
		}
		registered, err := sc.repo.LocationExists(ctx, regionID, location)
		if err != nil {
			return err
		}
		if !registered {
			return ErrLocationUnknown
		}

		listingID, err := s.nextListingID(ctx, sc)
		if err != nil {
			return err
		}
		itemID := region.NextItemID
		if itemID == math.MaxUint32 {
			return ErrArithmeticOverflow
		}
		if err := sc.repo.SetRegionNextItem(ctx, regionID, itemID+1); err != nil {
			return err
		}
		assetID, err := s.nextFreeAssetID(ctx, sc)
		if err != nil {
			return err
		}

		if err := sc.ledger.Nfts.Mint(ctx, region.CollectionID, itemID, s.account); err != nil {
			return err
		}
		if err := sc.ledger.Nfts.SetMetadata(ctx, region.CollectionID, itemID, metadata); err != nil {
			return err
		}
		if err := sc.ledger.Fractions.Fractionalize(ctx, region.CollectionID, itemID, assetID, s.account, fromUint(uint64(tokenAmount))); err != nil {
			return err
		}

		totalPrice, err := checkedMul(price, fromUint(uint64(tokenAmount)))
		if err != nil {
			return err
		}

		listing = &models.ObjectListing{
			ListingID:      listingID,
			Developer:      seller,
			TokenPrice:     price,
			CollectedFunds: decimal.Zero,
			CollectedTax:   decimal.Zero,
			CollectedFees:  decimal.Zero,
			AssetID:        assetID,
			ItemID:         itemID,
			CollectionID:   region.CollectionID,
			TokenAmount:    tokenAmount,
		}
		if err := sc.repo.CreateObjectListing(ctx, listing); err != nil {
			return fmt.Errorf("failed to create listing: %w", err)
		}
		if err := sc.repo.CreateListedToken(ctx, listingID, tokenAmount); err != nil {
			return fmt.Errorf("failed to mark listing: %w", err)
		}
		if err := sc.repo.CreateAssetDetails(ctx, &models.AssetDetails{
			AssetID:      assetID,
			CollectionID: region.CollectionID,
			ItemID:       itemID,
			RegionID:     regionID,
			Location:     location,
			Price:        totalPrice,
			TokenAmount:  tokenAmount,
		}); err != nil {
			return fmt.Errorf("failed to register asset: %w", err)
		}
		if err := sc.repo.CreateNftDetails(ctx, &models.NftDetails{
			CollectionID: region.CollectionID,
			ItemID:       itemID,
			AssetID:      assetID,
			RegionID:     regionID,
			Location:     location,
		}); err != nil {
			return fmt.Errorf("failed to store nft details: %w", err)
		}

		return sc.emit(ctx, events.ModuleMarketplace, "ObjectListed", events.Fields{
			"listing_index": listingID,
			"collection_id": region.CollectionID,
			"item_id":       itemID,
			"asset_id":      assetID,
			"token_price":   price,
			"token_amount":  tokenAmount,
			"seller":        seller,
			"region":        regionID,
			"location":      location,
		})
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[Marketplace] Listing %d: asset %d with %d tokens at %s", listing.ListingID, listing.AssetID, tokenAmount, price)
	return listing, nil
}

func (s *MarketplaceService) nextListingID(ctx context.Context, sc *scope) (uint32, error) {
	id, err := sc.repo.NextID(ctx, models.CounterNextListingID)
	if err != nil {
		return 0, err
	}
	if id > math.MaxUint32 {
		return 0, ErrArithmeticOverflow
	}
	return uint32(id), nil
}

// nextFreeAssetID scans forward from NextAssetId to the first id no asset uses
func (s *MarketplaceService) nextFreeAssetID(ctx context.Context, sc *scope) (uint32, error) {
	next, err := sc.repo.PeekID(ctx, models.CounterNextAssetID)
	if err != nil {
		return 0, err
	}
	for ; next <= math.MaxUint32; next++ {
		taken, err := sc.ledger.Assets.Exists(ctx, uint32(next))
		if err != nil {
			return 0, err
		}
		if !taken {
			if taken, err = sc.repo.AssetDetailsExist(ctx, uint32(next)); err != nil {
				return 0, err
			}
		}
		if !taken {
			if err := sc.repo.SetCounter(ctx, models.CounterNextAssetID, next+1); err != nil {
				return 0, err
			}
			return uint32(next), nil
		}
	}
	return 0, ErrArithmeticOverflow
}

// BuyToken buys tokens of a primary listing. Payment is held by the
// marketplace until the legal gate settles the sale.
func (s *MarketplaceService) BuyToken(ctx context.Context, buyer string, listingID, amount uint32) error {
	if amount == 0 {
		return ErrAmountCannotBeZero
	}
	soldOut := false
	err := s.exec.Run(ctx, func(sc *scope) error {
		if err := ensureWhitelisted(ctx, sc, buyer); err != nil {
			return err
		}
		listed, err := sc.repo.GetListedToken(ctx, listingID)
		if err != nil {
			return notFound(err, ErrTokenNotForSale)
		}
		listing, err := sc.repo.GetObjectListing(ctx, listingID)
		if err != nil {
			return notFound(err, ErrTokenNotForSale)
		}
		if amount > listed.Remaining {
			return ErrNotEnoughTokenAvailable
		}

		transferPrice, err := checkedMul(listing.TokenPrice, fromUint(uint64(amount)))
		if err != nil {
			return err
		}
		fee, err := percentOf(transferPrice, feePercent)
		if err != nil {
			return err
		}
		tax, err := percentOf(transferPrice, taxPercent)
		if err != nil {
			return err
		}
		total, err := checkedAdd(transferPrice, fee)
		if err != nil {
			return err
		}
		if total, err = checkedAdd(total, tax); err != nil {
			return err
		}

		if err := sc.ledger.Assets.Transfer(ctx, s.cfg.PaymentAssetID, buyer, s.account, total); err != nil {
			return err
		}

		if err := s.recordPurchase(ctx, sc, listingID, buyer, amount, transferPrice, tax); err != nil {
			return err
		}
		if listing.CollectedFunds, err = checkedAdd(listing.CollectedFunds, transferPrice); err != nil {
			return err
		}
		if listing.CollectedTax, err = checkedAdd(listing.CollectedTax, tax); err != nil {
			return err
		}
		if listing.CollectedFees, err = checkedAdd(listing.CollectedFees, fee); err != nil {
			return err
		}
		if err := sc.repo.UpdateObjectListing(ctx, listing); err != nil {
			return err
		}

		remaining := listed.Remaining - amount
		if remaining > 0 {
			if err := sc.repo.UpdateListedToken(ctx, listingID, remaining); err != nil {
				return err
			}
		} else {
			soldOut = true
			if err := sc.repo.DeleteListedToken(ctx, listingID); err != nil {
				return err
			}
			if err := sc.repo.CreatePropertyLawyer(ctx, &models.PropertyLawyer{
				ListingID:            listingID,
				DeveloperStatus:      models.DocumentStatusPending,
				SpvStatus:            models.DocumentStatusPending,
				DeveloperLawyerCosts: decimal.Zero,
				SpvLawyerCosts:       decimal.Zero,
			}); err != nil {
				return fmt.Errorf("failed to open legal process: %w", err)
			}
		}

		return sc.emit(ctx, events.ModuleMarketplace, "PropertyTokenBought", events.Fields{
			"listing_index": listingID,
			"asset_id":      listing.AssetID,
			"buyer":         buyer,
			"amount":        amount,
			"price":         total,
		})
	})
	if err != nil {
		return err
	}
	if soldOut {
		log.Printf("[Marketplace] Listing %d sold out, awaiting lawyers", listingID)
	}
	return nil
}

func (s *MarketplaceService) recordPurchase(ctx context.Context, sc *scope, listingID uint32, buyer string, amount uint32, funds, tax decimal.Decimal) error {
	details, err := sc.repo.GetTokenOwnerDetails(ctx, listingID, buyer)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		buyers, err := sc.repo.CountTokenBuyers(ctx, listingID)
		if err != nil {
			return err
		}
		if buyers >= s.cfg.MaxListingBuyers {
			return ErrTooManyTokenBuyer
		}
		return sc.repo.CreateTokenOwnerDetails(ctx, &models.TokenOwnerDetails{
			ListingID:   listingID,
			Account:     buyer,
			TokenAmount: amount,
			PaidFunds:   funds,
			PaidTax:     tax,
		})
	}
	if err != nil {
		return err
	}

	if details.TokenAmount > math.MaxUint32-amount {
		return ErrArithmeticOverflow
	}
	details.TokenAmount += amount
	if details.PaidFunds, err = checkedAdd(details.PaidFunds, funds); err != nil {
		return err
	}
	if details.PaidTax, err = checkedAdd(details.PaidTax, tax); err != nil {
		return err
	}
	return sc.repo.UpdateTokenOwnerDetails(ctx, details)
}

// RegisterLawyer allows an account to claim legal roles
func (s *MarketplaceService) RegisterLawyer(ctx context.Context, lawyer string) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		exists, err := sc.repo.LawyerExists(ctx, lawyer)
		if err != nil {
			return err
		}
		if exists {
			return ErrLawyerAlreadyRegistered
		}
		if err := sc.repo.CreateLawyer(ctx, lawyer); err != nil {
			return fmt.Errorf("failed to register lawyer: %w", err)
		}
		return sc.emit(ctx, events.ModuleMarketplace, "LawyerRegistered", events.Fields{"lawyer": lawyer})
	})
}

// Whitelist administration

func (s *MarketplaceService) AddToWhitelist(ctx context.Context, who string) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		if err := sc.ledger.Whitelist.AddAccount(ctx, who); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "WhitelistedAccountAdded", events.Fields{"account": who})
	})
}

func (s *MarketplaceService) RemoveFromWhitelist(ctx context.Context, who string) error {
	return s.exec.Run(ctx, func(sc *scope) error {
		if err := sc.ledger.Whitelist.RemoveAccount(ctx, who); err != nil {
			return err
		}
		return sc.emit(ctx, events.ModuleMarketplace, "WhitelistedAccountRemoved", events.Fields{"account": who})
	})
}

// Faucet

// FundAccount credits native currency to an account
func (s *MarketplaceService) FundAccount(ctx context.Context, who string, amount decimal.Decimal) error {
	amount, err := toBalance(amount)
	if err != nil {
		return err
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		return sc.ledger.Currency.Deposit(ctx, who, amount)
	})
}

// MintPaymentAsset credits the payment asset to an account, creating the asset on first use
func (s *MarketplaceService) MintPaymentAsset(ctx context.Context, who string, amount decimal.Decimal) error {
	amount, err := toBalance(amount)
	if err != nil {
		return err
	}
	return s.exec.Run(ctx, func(sc *scope) error {
		exists, err := sc.ledger.Assets.Exists(ctx, s.cfg.PaymentAssetID)
		if err != nil {
			return err
		}
		if !exists {
			if err := sc.ledger.Assets.Create(ctx, s.cfg.PaymentAssetID, s.treasury); err != nil {
				return err
			}
		}
		return sc.ledger.Assets.Mint(ctx, s.cfg.PaymentAssetID, who, amount)
	})
}
