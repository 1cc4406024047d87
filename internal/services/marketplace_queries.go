package services

import (
	"context"
	"errors"

	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListingView is a primary listing with the tokens still on sale
type ListingView struct {
	models.ObjectListing
	Remaining uint32 `json:"remaining"`
	OnSale    bool   `json:"on_sale"`
}

// ResaleView is a secondary listing with its open offers
type ResaleView struct {
	models.TokenListing
	Offers []models.Offer `json:"offers"`
}

// AssetView is a property with its cap table
type AssetView struct {
	models.AssetDetails
	SpvCreated bool                        `json:"spv_created"`
	Owners     []models.PropertyOwnerToken `json:"owners"`
}

// Balances of an account on the ledger
type Balances struct {
	Account      string          `json:"account"`
	Free         decimal.Decimal `json:"free"`
	Reserved     decimal.Decimal `json:"reserved"`
	PaymentAsset decimal.Decimal `json:"payment_asset"`
}

func (s *MarketplaceService) ListRegions(ctx context.Context) ([]models.Region, error) {
	return s.exec.Repository().ListRegions(ctx)
}

func (s *MarketplaceService) ListLocations(ctx context.Context, regionID uint32) ([]models.Location, error) {
	repo := s.exec.Repository()
	if _, err := repo.GetRegion(ctx, regionID); err != nil {
		return nil, notFound(err, ErrRegionUnknown)
	}
	return repo.ListLocations(ctx, regionID)
}

// ListListings pages through the primary listings that are not settled yet
func (s *MarketplaceService) ListListings(ctx context.Context, limit, offset int) ([]models.ObjectListing, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.exec.Repository().ListObjectListings(ctx, limit, offset)
}

func (s *MarketplaceService) GetListing(ctx context.Context, listingID uint32) (*ListingView, error) {
	repo := s.exec.Repository()
	listing, err := repo.GetObjectListing(ctx, listingID)
	if err != nil {
		return nil, notFound(err, ErrInvalidIndex)
	}
	view := &ListingView{ObjectListing: *listing}
	listed, err := repo.GetListedToken(ctx, listingID)
	switch {
	case err == nil:
		view.Remaining = listed.Remaining
		view.OnSale = true
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}
	return view, nil
}

func (s *MarketplaceService) GetResale(ctx context.Context, listingID uint32) (*ResaleView, error) {
	repo := s.exec.Repository()
	listing, err := repo.GetTokenListing(ctx, listingID)
	if err != nil {
		return nil, notFound(err, ErrTokenNotForSale)
	}
	offers, err := repo.ListOffers(ctx, listingID)
	if err != nil {
		return nil, err
	}
	return &ResaleView{TokenListing: *listing, Offers: offers}, nil
}

func (s *MarketplaceService) GetAsset(ctx context.Context, assetID uint32) (*AssetView, error) {
	repo := s.exec.Repository()
	details, err := repo.GetAssetDetails(ctx, assetID)
	if err != nil {
		return nil, notFound(err, ErrInvalidIndex)
	}
	nft, err := repo.GetNftDetails(ctx, details.CollectionID, details.ItemID)
	if err != nil {
		return nil, notFound(err, ErrInvalidIndex)
	}
	owners, err := repo.ListPropertyOwners(ctx, assetID)
	if err != nil {
		return nil, err
	}
	return &AssetView{AssetDetails: *details, SpvCreated: nft.SpvCreated, Owners: owners}, nil
}

// GetLegalProcess returns the lawyer record of a sold out listing
func (s *MarketplaceService) GetLegalProcess(ctx context.Context, listingID uint32) (*models.PropertyLawyer, error) {
	record, err := s.exec.Repository().GetPropertyLawyer(ctx, listingID)
	if err != nil {
		return nil, notFound(err, ErrInvalidIndex)
	}
	return record, nil
}

func (s *MarketplaceService) GetBalances(ctx context.Context, who string) (*Balances, error) {
	ledger := s.exec.Ledger()
	free, err := ledger.Currency.FreeBalance(ctx, who)
	if err != nil {
		return nil, err
	}
	reserved, err := ledger.Currency.ReservedBalance(ctx, who)
	if err != nil {
		return nil, err
	}
	payment, err := ledger.Assets.Balance(ctx, s.cfg.PaymentAssetID, who)
	if err != nil {
		return nil, err
	}
	return &Balances{Account: who, Free: free, Reserved: reserved, PaymentAsset: payment}, nil
}
