package services

import (
	"errors"
	"testing"

	"real-estate-market/internal/config"
	"real-estate-market/internal/events"
	"real-estate-market/internal/models"

	"gorm.io/gorm"
)

func TestListBuyAndFinalize(t *testing.T) {
	rt := newTestRuntime(t)
	developer := rt.user("developer", 0, 0)
	buyer := rt.user("buyer", 0, 2_000_000)

	listing, _ := rt.listProperty(developer, 10_000, 100)

	if err := rt.market.BuyToken(rt.ctx, buyer, listing.ListingID, 100); err != nil {
		t.Fatalf("BuyToken failed: %v", err)
	}
	// price + 1% fee + 3% tax
	expectAmount(t, "buyer after purchase", rt.paymentBalance(buyer), 2_000_000-1_040_000)
	expectAmount(t, "escrow", rt.paymentBalance(rt.market.AccountID()), 1_040_000)

	if _, err := rt.exec.Repository().GetListedToken(rt.ctx, listing.ListingID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected listed token to be removed, got %v", err)
	}

	devLawyer, spvLawyer := rt.settle(listing.ListingID, 1_000, 2_000)

	expectAmount(t, "developer", rt.paymentBalance(developer), 990_000)
	expectAmount(t, "developer lawyer", rt.paymentBalance(devLawyer), 30_000+1_000)
	expectAmount(t, "spv lawyer", rt.paymentBalance(spvLawyer), 2_000)
	expectAmount(t, "treasury", rt.paymentBalance(rt.market.TreasuryAccount()), 10_000+10_000-3_000)
	expectAmount(t, "escrow after settlement", rt.paymentBalance(rt.market.AccountID()), 0)
	expectAmount(t, "buyer tokens", rt.tokenBalance(listing.AssetID, buyer), 100)

	asset, err := rt.market.GetAsset(rt.ctx, listing.AssetID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	if !asset.SpvCreated {
		t.Error("expected spv_created")
	}
	if len(asset.Owners) != 1 || asset.Owners[0].Account != buyer || asset.Owners[0].TokenAmount != 100 {
		t.Errorf("unexpected owners: %+v", asset.Owners)
	}
	if !asset.Price.Equal(dec(1_000_000)) {
		t.Errorf("expected asset price 1000000, got %s", asset.Price)
	}

	_, err = rt.market.GetListing(rt.ctx, listing.ListingID)
	expectErr(t, err, ErrInvalidIndex)
	rt.expectEvent(events.ModuleMarketplace, "PropertyFinalized")
}

func TestBuyTokenPartialPurchases(t *testing.T) {
	rt := newTestRuntime(t)
	developer := rt.user("developer", 0, 0)
	alice := rt.user("alice", 0, 10_000_000)
	listing, _ := rt.listProperty(developer, 1_000, 10)

	rt.must(rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 3))
	rt.must(rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 4))

	view, err := rt.market.GetListing(rt.ctx, listing.ListingID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if !view.OnSale || view.Remaining != 3 {
		t.Errorf("expected 3 tokens on sale, got %+v", view)
	}
	expectAmount(t, "collected funds", view.CollectedFunds, 7_000)
	expectAmount(t, "collected fees", view.CollectedFees, 70)
	expectAmount(t, "collected tax", view.CollectedTax, 210)

	details, err := rt.exec.Repository().GetTokenOwnerDetails(rt.ctx, listing.ListingID, alice)
	if err != nil {
		t.Fatalf("GetTokenOwnerDetails failed: %v", err)
	}
	if details.TokenAmount != 7 {
		t.Errorf("expected 7 tokens recorded, got %d", details.TokenAmount)
	}
	expectAmount(t, "paid funds", details.PaidFunds, 7_000)
	expectAmount(t, "paid tax", details.PaidTax, 210)

	expectErr(t, rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 4), ErrNotEnoughTokenAvailable)
	expectErr(t, rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 0), ErrAmountCannotBeZero)

	rt.must(rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 3))
	expectErr(t, rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 1), ErrTokenNotForSale)

	record, err := rt.market.GetLegalProcess(rt.ctx, listing.ListingID)
	if err != nil {
		t.Fatalf("expected legal process after sell out: %v", err)
	}
	if record.DeveloperStatus != models.DocumentStatusPending || record.SpvStatus != models.DocumentStatusPending {
		t.Errorf("expected pending documents, got %+v", record)
	}
}

func TestMarketplacePreconditions(t *testing.T) {
	rt := newTestRuntime(t, func(cfg *config.RuntimeConfig) {
		cfg.MaxListingBuyers = 1
	})
	developer := rt.user("developer", 0, 0)
	alice := rt.user("alice", 0, 1_000_000)
	bob := rt.user("bob", 0, 1_000_000)
	regionID := rt.location("Paris")

	expectErr(t, rt.market.CreateNewLocation(rt.ctx, regionID, "Paris"), ErrLocationRegistered)
	expectErr(t, rt.market.CreateNewLocation(rt.ctx, regionID+7, "Rome"), ErrRegionUnknown)
	expectErr(t, rt.market.CreateNewLocation(rt.ctx, regionID, ""), ErrInvalidLocation)

	_, err := rt.market.ListObject(rt.ctx, "stranger", regionID, "Paris", dec(10), 5, nil)
	expectErr(t, err, ErrUserNotWhitelisted)
	_, err = rt.market.ListObject(rt.ctx, developer, regionID, "Paris", dec(10), rt.cfg.MaxNftToken+1, nil)
	expectErr(t, err, ErrTooManyToken)
	_, err = rt.market.ListObject(rt.ctx, developer, regionID, "Rome", dec(10), 5, nil)
	expectErr(t, err, ErrLocationUnknown)
	_, err = rt.market.ListObject(rt.ctx, developer, regionID, "Paris", dec(0), 5, nil)
	expectErr(t, err, ErrAmountCannotBeZero)

	listing, err := rt.market.ListObject(rt.ctx, developer, regionID, "Paris", dec(10), 5, nil)
	if err != nil {
		t.Fatalf("ListObject failed: %v", err)
	}
	second, err := rt.market.ListObject(rt.ctx, developer, regionID, "Paris", dec(10), 5, nil)
	if err != nil {
		t.Fatalf("ListObject failed: %v", err)
	}
	if second.AssetID == listing.AssetID || second.ItemID == listing.ItemID || second.ListingID == listing.ListingID {
		t.Errorf("expected fresh ids, got %+v and %+v", listing, second)
	}

	rt.must(rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 1))
	expectErr(t, rt.market.BuyToken(rt.ctx, bob, listing.ListingID, 1), ErrTooManyTokenBuyer)

	rt.must(rt.market.RemoveFromWhitelist(rt.ctx, alice))
	expectErr(t, rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 1), ErrUserNotWhitelisted)
}

func TestBuyTokenWithoutFundsRollsBack(t *testing.T) {
	rt := newTestRuntime(t)
	developer := rt.user("developer", 0, 0)
	poor := rt.user("poor", 0, 100)
	listing, _ := rt.listProperty(developer, 1_000, 10)

	err := rt.market.BuyToken(rt.ctx, poor, listing.ListingID, 1)
	if err == nil {
		t.Fatal("expected purchase to fail")
	}

	view, err := rt.market.GetListing(rt.ctx, listing.ListingID)
	if err != nil {
		t.Fatalf("GetListing failed: %v", err)
	}
	if view.Remaining != 10 || !view.CollectedFunds.IsZero() {
		t.Errorf("expected untouched listing, got %+v", view)
	}
	expectAmount(t, "poor balance", rt.paymentBalance(poor), 100)
	if len(rt.emitted(events.ModuleMarketplace, "PropertyTokenBought")) != 0 {
		t.Error("expected no purchase event")
	}
}

func TestUpgradeObject(t *testing.T) {
	rt := newTestRuntime(t)
	developer := rt.user("developer", 0, 0)
	alice := rt.user("alice", 0, 1_000_000)
	listing, _ := rt.listProperty(developer, 1_000, 10)

	expectErr(t, rt.market.UpgradeObject(rt.ctx, alice, listing.ListingID, dec(2_000)), ErrNoPermission)
	rt.must(rt.market.UpgradeObject(rt.ctx, developer, listing.ListingID, dec(2_000)))
	rt.must(rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 10))
	// 10 * 2000 plus 4%
	expectAmount(t, "alice", rt.paymentBalance(alice), 1_000_000-20_800)

	expectErr(t, rt.market.UpgradeObject(rt.ctx, developer, listing.ListingID, dec(3_000)), ErrPropertyAlreadySold)

	asset, err := rt.market.GetAsset(rt.ctx, listing.AssetID)
	if err != nil {
		t.Fatalf("GetAsset failed: %v", err)
	}
	expectAmount(t, "asset price", asset.Price, 10_000)
}
