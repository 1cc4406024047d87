package services

import (
	"testing"

	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/events"
	"real-estate-market/internal/models"
)

// soldOutListing returns a sold out listing bought 60/40 by alice and bob
// with both legal sides claimed
func soldOutListing(t *testing.T, rt *testRuntime) (*models.ObjectListing, string, string) {
	t.Helper()
	developer := rt.user("developer", 0, 0)
	listing, _ := rt.listProperty(developer, 10_000, 100)
	rt.user("alice", 0, 10_000_000)
	rt.user("bob", 0, 10_000_000)
	rt.must(rt.market.BuyToken(rt.ctx, "alice", listing.ListingID, 60))
	rt.must(rt.market.BuyToken(rt.ctx, "bob", listing.ListingID, 40))

	devLawyer, spvLawyer := "lawyer-dev", "lawyer-spv"
	rt.must(rt.market.RegisterLawyer(rt.ctx, devLawyer))
	rt.must(rt.market.RegisterLawyer(rt.ctx, spvLawyer))
	rt.must(rt.market.LawyerClaimProperty(rt.ctx, devLawyer, listing.ListingID, models.LegalPropertyDeveloper, dec(1_000)))
	rt.must(rt.market.LawyerClaimProperty(rt.ctx, spvLawyer, listing.ListingID, models.LegalPropertySpv, dec(2_000)))
	return listing, devLawyer, spvLawyer
}

func expectRefunded(t *testing.T, rt *testRuntime, listing *models.ObjectListing, spvLawyer string) {
	t.Helper()
	// only the 1% fee is kept
	expectAmount(t, "alice", rt.paymentBalance("alice"), 10_000_000-6_000)
	expectAmount(t, "bob", rt.paymentBalance("bob"), 10_000_000-4_000)
	expectAmount(t, "spv lawyer", rt.paymentBalance(spvLawyer), 2_000)
	expectAmount(t, "treasury", rt.paymentBalance(rt.market.TreasuryAccount()), 8_000)
	expectAmount(t, "escrow", rt.paymentBalance(rt.market.AccountID()), 0)
	expectAmount(t, "developer", rt.paymentBalance("developer"), 0)

	_, err := rt.market.GetAsset(rt.ctx, listing.AssetID)
	expectErr(t, err, ErrInvalidIndex)
	_, err = rt.exec.Ledger().Nfts.Item(rt.ctx, listing.CollectionID, listing.ItemID)
	expectErr(t, err, blockchain.ErrUnknownItem)
	_, err = rt.market.GetLegalProcess(rt.ctx, listing.ListingID)
	expectErr(t, err, ErrInvalidIndex)
	rt.expectEvent(events.ModuleMarketplace, "PropertyRejected")
	if len(rt.emitted(events.ModuleMarketplace, "PropertyFinalized")) != 0 {
		t.Error("a rejected sale must not be finalized")
	}
}

func TestLegalBothRejectRefundsBuyers(t *testing.T) {
	rt := newTestRuntime(t)
	listing, devLawyer, spvLawyer := soldOutListing(t, rt)

	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, devLawyer, listing.ListingID, false))
	record, err := rt.market.GetLegalProcess(rt.ctx, listing.ListingID)
	if err != nil {
		t.Fatalf("expected legal process to stay open: %v", err)
	}
	if record.DeveloperStatus != models.DocumentStatusRejected || record.SpvStatus != models.DocumentStatusPending {
		t.Errorf("unexpected statuses: %+v", record)
	}

	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, spvLawyer, listing.ListingID, false))
	expectRefunded(t, rt, listing, spvLawyer)
}

func TestLegalSplitVerdictGetsOneRetry(t *testing.T) {
	rt := newTestRuntime(t)
	listing, devLawyer, spvLawyer := soldOutListing(t, rt)

	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, devLawyer, listing.ListingID, true))
	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, spvLawyer, listing.ListingID, false))

	record, err := rt.market.GetLegalProcess(rt.ctx, listing.ListingID)
	if err != nil {
		t.Fatalf("expected a second attempt: %v", err)
	}
	if !record.SecondAttempt {
		t.Error("expected second_attempt to be set")
	}
	if record.DeveloperStatus != models.DocumentStatusPending || record.SpvStatus != models.DocumentStatusPending {
		t.Errorf("expected statuses reset to pending, got %+v", record)
	}
	if record.DeveloperLawyer == nil || *record.DeveloperLawyer != devLawyer || record.SpvLawyer == nil || *record.SpvLawyer != spvLawyer {
		t.Errorf("expected lawyers to keep their roles, got %+v", record)
	}
	rt.expectEvent(events.ModuleMarketplace, "DocumentsResetForSecondAttempt")

	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, devLawyer, listing.ListingID, false))
	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, spvLawyer, listing.ListingID, true))
	expectRefunded(t, rt, listing, spvLawyer)

	expectErr(t, rt.market.LawyerConfirmDocuments(rt.ctx, devLawyer, listing.ListingID, true), ErrInvalidIndex)
}

func TestLegalSecondAttemptCanApprove(t *testing.T) {
	rt := newTestRuntime(t)
	listing, devLawyer, spvLawyer := soldOutListing(t, rt)

	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, devLawyer, listing.ListingID, false))
	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, spvLawyer, listing.ListingID, true))
	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, spvLawyer, listing.ListingID, true))
	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, devLawyer, listing.ListingID, true))

	expectAmount(t, "developer", rt.paymentBalance("developer"), 990_000)
	expectAmount(t, "alice tokens", rt.tokenBalance(listing.AssetID, "alice"), 60)
	expectAmount(t, "bob tokens", rt.tokenBalance(listing.AssetID, "bob"), 40)
	asset, err := rt.market.GetAsset(rt.ctx, listing.AssetID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if !asset.SpvCreated || len(asset.Owners) != 2 {
		t.Errorf("unexpected asset after settlement: %+v", asset)
	}
}

func TestLawyerClaimRules(t *testing.T) {
	rt := newTestRuntime(t)
	developer := rt.user("developer", 0, 0)
	alice := rt.user("alice", 0, 10_000_000)
	listing, _ := rt.listProperty(developer, 10_000, 100)

	rt.must(rt.market.RegisterLawyer(rt.ctx, "lawyer-a"))
	rt.must(rt.market.RegisterLawyer(rt.ctx, "lawyer-b"))
	expectErr(t, rt.market.RegisterLawyer(rt.ctx, "lawyer-a"), ErrLawyerAlreadyRegistered)

	// nothing to claim before the sale completes
	expectErr(t, rt.market.LawyerClaimProperty(rt.ctx, "lawyer-a", listing.ListingID, models.LegalPropertyDeveloper, dec(0)), ErrInvalidIndex)
	rt.must(rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 100))

	expectErr(t, rt.market.LawyerClaimProperty(rt.ctx, "nobody", listing.ListingID, models.LegalPropertyDeveloper, dec(0)), ErrNoPermission)
	expectErr(t, rt.market.LawyerClaimProperty(rt.ctx, "lawyer-a", listing.ListingID, "JUDGE", dec(0)), ErrInvalidLegalSide)
	// budget is 1% of the funds plus the fees
	expectErr(t, rt.market.LawyerClaimProperty(rt.ctx, "lawyer-a", listing.ListingID, models.LegalPropertyDeveloper, dec(20_001)), ErrCostsTooHigh)
	// spv costs are also bounded by the fees
	expectErr(t, rt.market.LawyerClaimProperty(rt.ctx, "lawyer-a", listing.ListingID, models.LegalPropertySpv, dec(10_001)), ErrCostsTooHigh)

	rt.must(rt.market.LawyerClaimProperty(rt.ctx, "lawyer-a", listing.ListingID, models.LegalPropertyDeveloper, dec(15_000)))
	expectErr(t, rt.market.LawyerClaimProperty(rt.ctx, "lawyer-b", listing.ListingID, models.LegalPropertyDeveloper, dec(0)), ErrLawyerJobTaken)
	expectErr(t, rt.market.LawyerClaimProperty(rt.ctx, "lawyer-a", listing.ListingID, models.LegalPropertySpv, dec(0)), ErrNoPermission)
	expectErr(t, rt.market.LawyerClaimProperty(rt.ctx, "lawyer-b", listing.ListingID, models.LegalPropertySpv, dec(5_001)), ErrCostsTooHigh)
	rt.must(rt.market.LawyerClaimProperty(rt.ctx, "lawyer-b", listing.ListingID, models.LegalPropertySpv, dec(5_000)))

	expectErr(t, rt.market.LawyerConfirmDocuments(rt.ctx, "lawyer-c", listing.ListingID, true), ErrNoPermission)
	expectErr(t, rt.market.LawyerConfirmDocuments(rt.ctx, "lawyer-a", listing.ListingID+1, true), ErrInvalidIndex)

	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, "lawyer-a", listing.ListingID, true))
	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, "lawyer-b", listing.ListingID, true))
	expectAmount(t, "treasury", rt.paymentBalance(rt.market.TreasuryAccount()), 0)
	expectAmount(t, "escrow", rt.paymentBalance(rt.market.AccountID()), 0)
}
