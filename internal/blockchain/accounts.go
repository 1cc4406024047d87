package blockchain

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Module identifiers of the custodial accounts
const (
	MarketplacePalletID = "py/nftmp"
	ManagementPalletID  = "py/ppmgt"
	GovernancePalletID  = "py/gvrnc"
	TreasuryPalletID    = "py/trsry"
)

// ModuleAccount derives the account of a module: "modl" || id padded to 32 bytes.
func ModuleAccount(id string) string {
	var raw [32]byte
	copy(raw[:], "modl"+id)
	return solana.PublicKeyFromBytes(raw[:]).String()
}

// ParseAccount validates a base58 encoded 32 byte account id
func ParseAccount(s string) (string, error) {
	key, err := solana.PublicKeyFromBase58(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	return key.String(), nil
}
