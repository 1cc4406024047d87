package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// runtimeFile is the YAML overlay. Amounts are strings so that values above
// 2^64 survive decoding.
type runtimeFile struct {
	MaxNftToken       *uint32 `yaml:"max_nft_token"`
	MaxListingBuyers  *int    `yaml:"max_listing_buyers"`
	MaxPropertyOwners *int    `yaml:"max_property_owners"`
	MaxLocationLength *int    `yaml:"max_location_length"`
	PaymentAssetID    *uint32 `yaml:"payment_asset_id"`

	LettingAgentDeposit *string `yaml:"letting_agent_deposit"`
	MaxLettingAgents    *int    `yaml:"max_letting_agents"`
	MaxLocations        *int    `yaml:"max_locations"`
	MaxProperties       *int    `yaml:"max_properties"`
	AssetMultiplier     *string `yaml:"asset_multiplier"`
	ExistentialDeposit  *string `yaml:"existential_deposit"`

	VotingTime        *uint64 `yaml:"voting_time"`
	MaxVotesForBlock  *int    `yaml:"max_votes_for_block"`
	LowProposal       *string `yaml:"low_proposal"`
	HighProposal      *string `yaml:"high_proposal"`
	Threshold         *uint32 `yaml:"threshold"`
	HighThreshold     *uint32 `yaml:"high_threshold"`
	MinSlashingAmount *string `yaml:"min_slashing_amount"`
}

// LoadFile overlays the runtime constants with the values set in a YAML file
func (r *RuntimeConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read runtime config: %w", err)
	}
	return r.LoadYAML(data)
}

// LoadYAML overlays the runtime constants with the values set in data
func (r *RuntimeConfig) LoadYAML(data []byte) error {
	var file runtimeFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse runtime config: %w", err)
	}

	setUint32(&r.MaxNftToken, file.MaxNftToken)
	setInt(&r.MaxListingBuyers, file.MaxListingBuyers)
	setInt(&r.MaxPropertyOwners, file.MaxPropertyOwners)
	setInt(&r.MaxLocationLength, file.MaxLocationLength)
	setUint32(&r.PaymentAssetID, file.PaymentAssetID)
	setInt(&r.MaxLettingAgents, file.MaxLettingAgents)
	setInt(&r.MaxLocations, file.MaxLocations)
	setInt(&r.MaxProperties, file.MaxProperties)
	setInt(&r.MaxVotesForBlock, file.MaxVotesForBlock)
	setUint32(&r.Threshold, file.Threshold)
	setUint32(&r.HighThreshold, file.HighThreshold)
	if file.VotingTime != nil {
		r.VotingTime = *file.VotingTime
	}

	amounts := []struct {
		name  string
		value *string
		dst   *decimal.Decimal
	}{
		{"letting_agent_deposit", file.LettingAgentDeposit, &r.LettingAgentDeposit},
		{"asset_multiplier", file.AssetMultiplier, &r.AssetMultiplier},
		{"existential_deposit", file.ExistentialDeposit, &r.ExistentialDeposit},
		{"low_proposal", file.LowProposal, &r.LowProposal},
		{"high_proposal", file.HighProposal, &r.HighProposal},
		{"min_slashing_amount", file.MinSlashingAmount, &r.MinSlashingAmount},
	}
	for _, a := range amounts {
		if a.value == nil {
			continue
		}
		v, err := decimal.NewFromString(*a.value)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", a.name, err)
		}
		*a.dst = v
	}
	return nil
}

// applyEnv lets single constants be overridden from the environment
func (r *RuntimeConfig) applyEnv() error {
	if v := os.Getenv("VOTING_TIME"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid VOTING_TIME: %w", err)
		}
		r.VotingTime = n
	}
	if v := os.Getenv("PAYMENT_ASSET_ID"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid PAYMENT_ASSET_ID: %w", err)
		}
		r.PaymentAssetID = uint32(n)
	}
	if v := os.Getenv("ASSET_MULTIPLIER"); v != "" {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return fmt.Errorf("invalid ASSET_MULTIPLIER: %w", err)
		}
		r.AssetMultiplier = d
	}
	return nil
}

// Validate checks the runtime constants for values the modules cannot work with
func (r *RuntimeConfig) Validate() error {
	if r.MaxNftToken == 0 {
		return fmt.Errorf("max_nft_token must be positive")
	}
	if r.MaxListingBuyers <= 0 || r.MaxPropertyOwners <= 0 {
		return fmt.Errorf("buyer and owner capacities must be positive")
	}
	if r.MaxLettingAgents <= 0 || r.MaxLocations <= 0 || r.MaxProperties <= 0 || r.MaxVotesForBlock <= 0 {
		return fmt.Errorf("letting agent and voting capacities must be positive")
	}
	if r.VotingTime == 0 {
		return fmt.Errorf("voting_time must be positive")
	}
	if r.Threshold > 100 || r.HighThreshold > 100 {
		return fmt.Errorf("thresholds are percentages and must not exceed 100")
	}
	for name, v := range map[string]decimal.Decimal{
		"letting_agent_deposit": r.LettingAgentDeposit,
		"asset_multiplier":      r.AssetMultiplier,
		"existential_deposit":   r.ExistentialDeposit,
		"low_proposal":          r.LowProposal,
		"high_proposal":         r.HighProposal,
		"min_slashing_amount":   r.MinSlashingAmount,
	} {
		if v.IsNegative() || !v.Equal(v.Truncate(0)) {
			return fmt.Errorf("%s must be a non-negative integer", name)
		}
	}
	if r.AssetMultiplier.IsZero() {
		return fmt.Errorf("asset_multiplier must be positive")
	}
	return nil
}

func setUint32(dst *uint32, v *uint32) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}
