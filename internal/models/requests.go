package models

import "github.com/shopspring/decimal"

// CreateLocationRequest registers a location under a region
type CreateLocationRequest struct {
	RegionID uint32 `json:"region_id"`
	Location string `json:"location" binding:"required"`
}

// ListObjectRequest lists a property for primary sale
type ListObjectRequest struct {
	RegionID    uint32          `json:"region_id"`
	Location    string          `json:"location" binding:"required"`
	TokenPrice  decimal.Decimal `json:"token_price"`
	TokenAmount uint32          `json:"token_amount" binding:"required,min=1"`
	Metadata    string          `json:"metadata"`
}

type BuyTokenRequest struct {
	ListingID uint32 `json:"listing_id"`
	Amount    uint32 `json:"amount" binding:"required,min=1"`
}

type RelistTokenRequest struct {
	RegionID   uint32          `json:"region_id"`
	ItemID     uint32          `json:"item_id"`
	TokenPrice decimal.Decimal `json:"token_price"`
	Amount     uint32          `json:"amount" binding:"required,min=1"`
}

type OfferRequest struct {
	ListingID  uint32          `json:"listing_id"`
	OfferPrice decimal.Decimal `json:"offer_price"`
	Amount     uint32          `json:"amount" binding:"required,min=1"`
}

type HandleOfferRequest struct {
	ListingID uint32 `json:"listing_id"`
	Offeror   string `json:"offeror" binding:"required"`
	Accept    bool   `json:"accept"`
}

type ListingIDRequest struct {
	ListingID uint32 `json:"listing_id"`
}

type UpgradePriceRequest struct {
	ListingID uint32          `json:"listing_id"`
	NewPrice  decimal.Decimal `json:"new_price"`
}

type AccountRequest struct {
	Account string `json:"account" binding:"required"`
}

type LawyerClaimRequest struct {
	ListingID uint32          `json:"listing_id"`
	LegalSide LegalProperty   `json:"legal_side" binding:"required"`
	Costs     decimal.Decimal `json:"costs"`
}

type ConfirmDocumentsRequest struct {
	ListingID uint32 `json:"listing_id"`
	Approve   bool   `json:"approve"`
}

type AddLettingAgentRequest struct {
	RegionID uint32 `json:"region_id"`
	Location string `json:"location" binding:"required"`
	Agent    string `json:"agent" binding:"required"`
}

type AddLettingAgentToLocationRequest struct {
	Location string `json:"location" binding:"required"`
	Agent    string `json:"agent" binding:"required"`
}

type AssetIDRequest struct {
	AssetID uint32 `json:"asset_id"`
}

type DistributeIncomeRequest struct {
	AssetID uint32          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
}

type ProposeRequest struct {
	AssetID uint32          `json:"asset_id"`
	Amount  decimal.Decimal `json:"amount"`
	Info    string          `json:"info"`
}

type VoteRequest struct {
	ID   uint64 `json:"id"`
	Vote Vote   `json:"vote" binding:"required"`
}

// FaucetRequest credits test funds to an account
type FaucetRequest struct {
	Account string          `json:"account" binding:"required"`
	Native  decimal.Decimal `json:"native"`
	Payment decimal.Decimal `json:"payment"`
}

// WalletLoginRequest is an ed25519 signature over the login message
type WalletLoginRequest struct {
	Account   string `json:"account" binding:"required"`
	Message   string `json:"message" binding:"required"`
	Signature string `json:"signature" binding:"required"`
}
