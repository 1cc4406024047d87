package repository

import (
	"context"

	"real-estate-market/internal/models"

	"github.com/shopspring/decimal"
)

// CreateRegion stores a region and its collection
func (r *Repository) CreateRegion(ctx context.Context, region *models.Region) error {
	return r.db.WithContext(ctx).Create(region).Error
}

// GetRegion retrieves a region by id
func (r *Repository) GetRegion(ctx context.Context, regionID uint32) (*models.Region, error) {
	var region models.Region
	err := r.db.WithContext(ctx).Where("region_id = ?", regionID).First(&region).Error
	if err != nil {
		return nil, err
	}
	return &region, nil
}

// ListRegions returns every region ordered by id
func (r *Repository) ListRegions(ctx context.Context) ([]models.Region, error) {
	var regions []models.Region
	err := r.db.WithContext(ctx).Order("region_id ASC").Find(&regions).Error
	return regions, err
}

// SetRegionNextItem stores the next NFT item id of a region
func (r *Repository) SetRegionNextItem(ctx context.Context, regionID, next uint32) error {
	return r.db.WithContext(ctx).Model(&models.Region{}).
		Where("region_id = ?", regionID).
		Update("next_item_id", next).Error
}

func (r *Repository) CreateLocation(ctx context.Context, location *models.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}

func (r *Repository) LocationExists(ctx context.Context, regionID uint32, location string) (bool, error) {
	return r.exists(ctx, &models.Location{}, "region_id = ? AND location = ?", regionID, location)
}

// ListLocations returns the locations of a region
func (r *Repository) ListLocations(ctx context.Context, regionID uint32) ([]models.Location, error) {
	var locations []models.Location
	err := r.db.WithContext(ctx).Where("region_id = ?", regionID).Order("location ASC").Find(&locations).Error
	return locations, err
}

// Object listings

func (r *Repository) CreateObjectListing(ctx context.Context, listing *models.ObjectListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *Repository) GetObjectListing(ctx context.Context, listingID uint32) (*models.ObjectListing, error) {
	var listing models.ObjectListing
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// UpdateObjectListing stores the mutable fields of a listing
func (r *Repository) UpdateObjectListing(ctx context.Context, listing *models.ObjectListing) error {
	return r.db.WithContext(ctx).Model(&models.ObjectListing{}).
		Where("listing_id = ?", listing.ListingID).
		Updates(map[string]interface{}{
			"token_price":     listing.TokenPrice,
			"collected_funds": listing.CollectedFunds,
			"collected_tax":   listing.CollectedTax,
			"collected_fees":  listing.CollectedFees,
		}).Error
}

func (r *Repository) DeleteObjectListing(ctx context.Context, listingID uint32) error {
	return r.db.WithContext(ctx).Where("listing_id = ?", listingID).Delete(&models.ObjectListing{}).Error
}

// ListObjectListings returns ongoing primary sales, newest first
func (r *Repository) ListObjectListings(ctx context.Context, limit, offset int) ([]models.ObjectListing, error) {
	var listings []models.ObjectListing
	err := r.db.WithContext(ctx).Order("listing_id DESC").Limit(limit).Offset(offset).Find(&listings).Error
	return listings, err
}

// Listed token markers

func (r *Repository) CreateListedToken(ctx context.Context, listingID, remaining uint32) error {
	return r.db.WithContext(ctx).Create(&models.ListedToken{ListingID: listingID, Remaining: remaining}).Error
}

func (r *Repository) GetListedToken(ctx context.Context, listingID uint32) (*models.ListedToken, error) {
	var listed models.ListedToken
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&listed).Error
	if err != nil {
		return nil, err
	}
	return &listed, nil
}

func (r *Repository) UpdateListedToken(ctx context.Context, listingID, remaining uint32) error {
	return r.db.WithContext(ctx).Model(&models.ListedToken{}).
		Where("listing_id = ?", listingID).
		Update("remaining", remaining).Error
}

func (r *Repository) DeleteListedToken(ctx context.Context, listingID uint32) error {
	return r.db.WithContext(ctx).Where("listing_id = ?", listingID).Delete(&models.ListedToken{}).Error
}

// Asset registry

func (r *Repository) CreateAssetDetails(ctx context.Context, details *models.AssetDetails) error {
	return r.db.WithContext(ctx).Create(details).Error
}

func (r *Repository) GetAssetDetails(ctx context.Context, assetID uint32) (*models.AssetDetails, error) {
	var details models.AssetDetails
	err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).First(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *Repository) AssetDetailsExist(ctx context.Context, assetID uint32) (bool, error) {
	return r.exists(ctx, &models.AssetDetails{}, "asset_id = ?", assetID)
}

func (r *Repository) DeleteAssetDetails(ctx context.Context, assetID uint32) error {
	return r.db.WithContext(ctx).Where("asset_id = ?", assetID).Delete(&models.AssetDetails{}).Error
}

func (r *Repository) CreateNftDetails(ctx context.Context, details *models.NftDetails) error {
	return r.db.WithContext(ctx).Create(details).Error
}

func (r *Repository) GetNftDetails(ctx context.Context, collectionID, itemID uint32) (*models.NftDetails, error) {
	var details models.NftDetails
	err := r.db.WithContext(ctx).Where("collection_id = ? AND item_id = ?", collectionID, itemID).First(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *Repository) MarkSpvCreated(ctx context.Context, collectionID, itemID uint32) error {
	return r.db.WithContext(ctx).Model(&models.NftDetails{}).
		Where("collection_id = ? AND item_id = ?", collectionID, itemID).
		Update("spv_created", true).Error
}

func (r *Repository) DeleteNftDetails(ctx context.Context, collectionID, itemID uint32) error {
	return r.db.WithContext(ctx).
		Where("collection_id = ? AND item_id = ?", collectionID, itemID).
		Delete(&models.NftDetails{}).Error
}

// Buyers of primary listings

func (r *Repository) GetTokenOwnerDetails(ctx context.Context, listingID uint32, account string) (*models.TokenOwnerDetails, error) {
	var details models.TokenOwnerDetails
	err := r.db.WithContext(ctx).Where("listing_id = ? AND account = ?", listingID, account).First(&details).Error
	if err != nil {
		return nil, err
	}
	return &details, nil
}

func (r *Repository) CreateTokenOwnerDetails(ctx context.Context, details *models.TokenOwnerDetails) error {
	return r.db.WithContext(ctx).Create(details).Error
}

func (r *Repository) UpdateTokenOwnerDetails(ctx context.Context, details *models.TokenOwnerDetails) error {
	return r.db.WithContext(ctx).Model(&models.TokenOwnerDetails{}).
		Where("id = ?", details.ID).
		Updates(map[string]interface{}{
			"token_amount": details.TokenAmount,
			"paid_funds":   details.PaidFunds,
			"paid_tax":     details.PaidTax,
		}).Error
}

// ListTokenOwnerDetails returns the buyers of a listing in purchase order
func (r *Repository) ListTokenOwnerDetails(ctx context.Context, listingID uint32) ([]models.TokenOwnerDetails, error) {
	var buyers []models.TokenOwnerDetails
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("id ASC").Find(&buyers).Error
	return buyers, err
}

func (r *Repository) CountTokenBuyers(ctx context.Context, listingID uint32) (int, error) {
	return r.count(ctx, &models.TokenOwnerDetails{}, "listing_id = ?", listingID)
}

func (r *Repository) DeleteTokenOwnerDetails(ctx context.Context, listingID uint32) error {
	return r.db.WithContext(ctx).Where("listing_id = ?", listingID).Delete(&models.TokenOwnerDetails{}).Error
}

// Cap table

// ListPropertyOwners returns the owners of an asset in the order they became owners
func (r *Repository) ListPropertyOwners(ctx context.Context, assetID uint32) ([]models.PropertyOwnerToken, error) {
	var owners []models.PropertyOwnerToken
	err := r.db.WithContext(ctx).Where("asset_id = ?", assetID).Order("id ASC").Find(&owners).Error
	return owners, err
}

func (r *Repository) GetPropertyOwnerToken(ctx context.Context, assetID uint32, account string) (*models.PropertyOwnerToken, error) {
	var owner models.PropertyOwnerToken
	err := r.db.WithContext(ctx).Where("asset_id = ? AND account = ?", assetID, account).First(&owner).Error
	if err != nil {
		return nil, err
	}
	return &owner, nil
}

func (r *Repository) CountPropertyOwners(ctx context.Context, assetID uint32) (int, error) {
	return r.count(ctx, &models.PropertyOwnerToken{}, "asset_id = ?", assetID)
}

func (r *Repository) CreatePropertyOwnerToken(ctx context.Context, owner *models.PropertyOwnerToken) error {
	return r.db.WithContext(ctx).Create(owner).Error
}

func (r *Repository) UpdatePropertyOwnerToken(ctx context.Context, id uint, amount uint32) error {
	return r.db.WithContext(ctx).Model(&models.PropertyOwnerToken{}).Where("id = ?", id).Update("token_amount", amount).Error
}

func (r *Repository) DeletePropertyOwnerToken(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PropertyOwnerToken{}).Error
}

// Secondary market

func (r *Repository) CreateTokenListing(ctx context.Context, listing *models.TokenListing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *Repository) GetTokenListing(ctx context.Context, listingID uint32) (*models.TokenListing, error) {
	var listing models.TokenListing
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&listing).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *Repository) UpdateTokenListing(ctx context.Context, listingID uint32, amount uint32, price decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&models.TokenListing{}).
		Where("listing_id = ?", listingID).
		Updates(map[string]interface{}{"amount": amount, "token_price": price}).Error
}

func (r *Repository) DeleteTokenListing(ctx context.Context, listingID uint32) error {
	return r.db.WithContext(ctx).Where("listing_id = ?", listingID).Delete(&models.TokenListing{}).Error
}

func (r *Repository) CreateOffer(ctx context.Context, offer *models.Offer) error {
	return r.db.WithContext(ctx).Create(offer).Error
}

func (r *Repository) GetOffer(ctx context.Context, listingID uint32, offeror string) (*models.Offer, error) {
	var offer models.Offer
	err := r.db.WithContext(ctx).Where("listing_id = ? AND offeror = ?", listingID, offeror).First(&offer).Error
	if err != nil {
		return nil, err
	}
	return &offer, nil
}

func (r *Repository) DeleteOffer(ctx context.Context, listingID uint32, offeror string) error {
	return r.db.WithContext(ctx).Where("listing_id = ? AND offeror = ?", listingID, offeror).Delete(&models.Offer{}).Error
}

func (r *Repository) ListOffers(ctx context.Context, listingID uint32) ([]models.Offer, error) {
	var offers []models.Offer
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).Order("created_at ASC").Find(&offers).Error
	return offers, err
}

// Lawyers

func (r *Repository) CreateLawyer(ctx context.Context, account string) error {
	return r.db.WithContext(ctx).Create(&models.RealEstateLawyer{Account: account}).Error
}

func (r *Repository) LawyerExists(ctx context.Context, account string) (bool, error) {
	return r.exists(ctx, &models.RealEstateLawyer{}, "account = ?", account)
}

func (r *Repository) CreatePropertyLawyer(ctx context.Context, lawyer *models.PropertyLawyer) error {
	return r.db.WithContext(ctx).Create(lawyer).Error
}

func (r *Repository) GetPropertyLawyer(ctx context.Context, listingID uint32) (*models.PropertyLawyer, error) {
	var lawyer models.PropertyLawyer
	err := r.db.WithContext(ctx).Where("listing_id = ?", listingID).First(&lawyer).Error
	if err != nil {
		return nil, err
	}
	return &lawyer, nil
}

// UpdatePropertyLawyer stores every mutable field of the legal record
func (r *Repository) UpdatePropertyLawyer(ctx context.Context, lawyer *models.PropertyLawyer) error {
	return r.db.WithContext(ctx).Model(&models.PropertyLawyer{}).
		Where("listing_id = ?", lawyer.ListingID).
		Updates(map[string]interface{}{
			"developer_lawyer":       lawyer.DeveloperLawyer,
			"spv_lawyer":             lawyer.SpvLawyer,
			"developer_status":       lawyer.DeveloperStatus,
			"spv_status":             lawyer.SpvStatus,
			"developer_lawyer_costs": lawyer.DeveloperLawyerCosts,
			"spv_lawyer_costs":       lawyer.SpvLawyerCosts,
			"second_attempt":         lawyer.SecondAttempt,
		}).Error
}

func (r *Repository) DeletePropertyLawyer(ctx context.Context, listingID uint32) error {
	return r.db.WithContext(ctx).Where("listing_id = ?", listingID).Delete(&models.PropertyLawyer{}).Error
}
