package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "PENDING"
	DocumentStatusApproved DocumentStatus = "APPROVED"
	DocumentStatusRejected DocumentStatus = "REJECTED"
)

// LegalProperty is the side of the legal gate a lawyer works for.
type LegalProperty string

const (
	LegalPropertyDeveloper LegalProperty = "REAL_ESTATE_DEVELOPER"
	LegalPropertySpv       LegalProperty = "SPV"
)

func (p LegalProperty) Valid() bool {
	return p == LegalPropertyDeveloper || p == LegalPropertySpv
}

type RealEstateLawyer struct {
	Account   string    `gorm:"primaryKey;size:64" json:"account"`
	CreatedAt time.Time `json:"created_at"`
}

func (RealEstateLawyer) TableName() string {
	return "real_estate_lawyers"
}

// PropertyLawyer holds the legal gate of a fully sold listing.
type PropertyLawyer struct {
	ListingID            uint32          `gorm:"primaryKey;autoIncrement:false" json:"listing_id"`
	DeveloperLawyer      *string         `gorm:"size:64" json:"real_estate_developer_lawyer,omitempty"`
	SpvLawyer            *string         `gorm:"size:64" json:"spv_lawyer,omitempty"`
	DeveloperStatus      DocumentStatus  `gorm:"size:20;not null;default:PENDING" json:"real_estate_developer_status"`
	SpvStatus            DocumentStatus  `gorm:"size:20;not null;default:PENDING" json:"spv_status"`
	DeveloperLawyerCosts decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"real_estate_developer_lawyer_costs"`
	SpvLawyerCosts       decimal.Decimal `gorm:"type:numeric(39,0);not null" json:"spv_lawyer_costs"`
	SecondAttempt        bool            `gorm:"not null;default:false" json:"second_attempt"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func (PropertyLawyer) TableName() string {
	return "property_lawyers"
}
