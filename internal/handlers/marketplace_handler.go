package handlers

import (
	"net/http"
	"strconv"

	"real-estate-market/internal/models"
	"real-estate-market/internal/services"

	"github.com/gin-gonic/gin"
)

// MarketplaceHandler exposes listing, the legal gate and the secondary market
type MarketplaceHandler struct {
	market *services.MarketplaceService
}

func NewMarketplaceHandler(market *services.MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{market: market}
}

// ListObject lists a new property for primary sale
// POST /marketplace/listings
func (h *MarketplaceHandler) ListObject(c *gin.Context) {
	seller, ok := caller(c)
	if !ok {
		return
	}
	var req models.ListObjectRequest
	if !bind(c, &req) {
		return
	}

	listing, err := h.market.ListObject(c.Request.Context(), seller, req.RegionID, req.Location, req.TokenPrice, req.TokenAmount, []byte(req.Metadata))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": listing})
}

// BuyToken buys tokens of a primary listing
// POST /marketplace/buy
func (h *MarketplaceHandler) BuyToken(c *gin.Context) {
	buyer, ok := caller(c)
	if !ok {
		return
	}
	var req models.BuyTokenRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.BuyToken(c.Request.Context(), buyer, req.ListingID, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpgradeObject changes the token price of an unsold primary listing
// POST /marketplace/listings/upgrade
func (h *MarketplaceHandler) UpgradeObject(c *gin.Context) {
	developer, ok := caller(c)
	if !ok {
		return
	}
	var req models.UpgradePriceRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.UpgradeObject(c.Request.Context(), developer, req.ListingID, req.NewPrice); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LawyerClaimProperty takes one side of a listing's legal process
// POST /marketplace/legal/claim
func (h *MarketplaceHandler) LawyerClaimProperty(c *gin.Context) {
	lawyer, ok := caller(c)
	if !ok {
		return
	}
	var req models.LawyerClaimRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.LawyerClaimProperty(c.Request.Context(), lawyer, req.ListingID, req.LegalSide, req.Costs); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// LawyerConfirmDocuments records the caller's verdict
// POST /marketplace/legal/confirm
func (h *MarketplaceHandler) LawyerConfirmDocuments(c *gin.Context) {
	lawyer, ok := caller(c)
	if !ok {
		return
	}
	var req models.ConfirmDocumentsRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.LawyerConfirmDocuments(c.Request.Context(), lawyer, req.ListingID, req.Approve); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RelistToken offers tokens of a settled property for resale
// POST /marketplace/resales
func (h *MarketplaceHandler) RelistToken(c *gin.Context) {
	seller, ok := caller(c)
	if !ok {
		return
	}
	var req models.RelistTokenRequest
	if !bind(c, &req) {
		return
	}

	listing, err := h.market.RelistToken(c.Request.Context(), seller, req.RegionID, req.ItemID, req.TokenPrice, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": listing})
}

// BuyRelistedToken buys from a resale listing
// POST /marketplace/resales/buy
func (h *MarketplaceHandler) BuyRelistedToken(c *gin.Context) {
	buyer, ok := caller(c)
	if !ok {
		return
	}
	var req models.BuyTokenRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.BuyRelistedToken(c.Request.Context(), buyer, req.ListingID, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// MakeOffer escrows an offer on a resale listing
// POST /marketplace/offers
func (h *MarketplaceHandler) MakeOffer(c *gin.Context) {
	offeror, ok := caller(c)
	if !ok {
		return
	}
	var req models.OfferRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.MakeOffer(c.Request.Context(), offeror, req.ListingID, req.OfferPrice, req.Amount); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// HandleOffer accepts or rejects an offer on the caller's listing
// POST /marketplace/offers/handle
func (h *MarketplaceHandler) HandleOffer(c *gin.Context) {
	seller, ok := caller(c)
	if !ok {
		return
	}
	var req models.HandleOfferRequest
	if !bind(c, &req) {
		return
	}
	offeror, ok := accountParam(c, req.Offeror)
	if !ok {
		return
	}
	if err := h.market.HandleOffer(c.Request.Context(), seller, req.ListingID, offeror, req.Accept); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// CancelOffer withdraws the caller's offer
// POST /marketplace/offers/cancel
func (h *MarketplaceHandler) CancelOffer(c *gin.Context) {
	offeror, ok := caller(c)
	if !ok {
		return
	}
	var req models.ListingIDRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.CancelOffer(c.Request.Context(), offeror, req.ListingID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpgradeListing changes the price of a resale listing
// POST /marketplace/resales/upgrade
func (h *MarketplaceHandler) UpgradeListing(c *gin.Context) {
	seller, ok := caller(c)
	if !ok {
		return
	}
	var req models.UpgradePriceRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.UpgradeListing(c.Request.Context(), seller, req.ListingID, req.NewPrice); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DelistToken closes a resale listing and returns the tokens
// POST /marketplace/resales/delist
func (h *MarketplaceHandler) DelistToken(c *gin.Context) {
	seller, ok := caller(c)
	if !ok {
		return
	}
	var req models.ListingIDRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.DelistToken(c.Request.Context(), seller, req.ListingID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetRegions returns all regions
// GET /regions
func (h *MarketplaceHandler) GetRegions(c *gin.Context) {
	regions, err := h.market.ListRegions(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": regions, "count": len(regions)})
}

// GetLocations returns the locations of a region
// GET /regions/:id/locations
func (h *MarketplaceHandler) GetLocations(c *gin.Context) {
	regionID, ok := uint32Param(c, "id")
	if !ok {
		return
	}
	locations, err := h.market.ListLocations(c.Request.Context(), regionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": locations, "count": len(locations)})
}

// GetListings returns open primary listings
// GET /listings
func (h *MarketplaceHandler) GetListings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	listings, err := h.market.ListListings(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listings, "count": len(listings)})
}

// GetListing returns one primary listing with its sale progress
// GET /listings/:id
func (h *MarketplaceHandler) GetListing(c *gin.Context) {
	listingID, ok := uint32Param(c, "id")
	if !ok {
		return
	}
	listing, err := h.market.GetListing(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": listing})
}

// GetLegalProcess returns the legal gate of a sold out listing
// GET /listings/:id/legal
func (h *MarketplaceHandler) GetLegalProcess(c *gin.Context) {
	listingID, ok := uint32Param(c, "id")
	if !ok {
		return
	}
	process, err := h.market.GetLegalProcess(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": process})
}

// GetResale returns a resale listing with its offers
// GET /resales/:id
func (h *MarketplaceHandler) GetResale(c *gin.Context) {
	listingID, ok := uint32Param(c, "id")
	if !ok {
		return
	}
	resale, err := h.market.GetResale(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": resale})
}

// GetAsset returns the property behind an asset id and its owners
// GET /assets/:id
func (h *MarketplaceHandler) GetAsset(c *gin.Context) {
	assetID, ok := uint32Param(c, "id")
	if !ok {
		return
	}
	asset, err := h.market.GetAsset(c.Request.Context(), assetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": asset})
}

// GetBalances returns the native and payment asset balances of an account
// GET /accounts/:account/balances
func (h *MarketplaceHandler) GetBalances(c *gin.Context) {
	account, ok := accountParam(c, c.Param("account"))
	if !ok {
		return
	}
	balances, err := h.market.GetBalances(c.Request.Context(), account)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": balances})
}
