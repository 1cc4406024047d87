package services

import (
	"testing"
)

func ownerTokens(t *testing.T, rt *testRuntime, assetID uint32) map[string]uint32 {
	t.Helper()
	owners, err := rt.exec.Repository().ListPropertyOwners(rt.ctx, assetID)
	rt.must(err)
	tokens := make(map[string]uint32)
	for _, owner := range owners {
		tokens[owner.Account] = owner.TokenAmount
	}
	return tokens
}

func TestSecondaryMarket(t *testing.T) {
	rt := newTestRuntime(t)
	listing, regionID := rt.ownedProperty(map[string]uint32{"alice": 60, "bob": 40})
	assetID := listing.AssetID
	carol := rt.user("carol", 0, 1_000_000)
	dave := rt.user("dave", 0, 1_000_000)
	aliceStart := rt.paymentBalance("alice")

	_, err := rt.market.RelistToken(rt.ctx, "alice", regionID, listing.ItemID, dec(100), 61)
	expectErr(t, err, ErrNotEnoughToken)

	resale, err := rt.market.RelistToken(rt.ctx, "alice", regionID, listing.ItemID, dec(100), 20)
	if err != nil {
		t.Fatalf("RelistToken failed: %v", err)
	}
	if resale.ListingID == listing.ListingID {
		t.Errorf("expected a fresh listing id, got %d", resale.ListingID)
	}
	expectAmount(t, "alice tokens in escrow", rt.tokenBalance(assetID, "alice"), 40)
	expectAmount(t, "escrowed tokens", rt.tokenBalance(assetID, rt.market.AccountID()), 20)

	rt.must(rt.market.BuyRelistedToken(rt.ctx, "bob", resale.ListingID, 5))
	expectAmount(t, "bob tokens", rt.tokenBalance(assetID, "bob"), 45)
	expectErr(t, rt.market.BuyRelistedToken(rt.ctx, "bob", resale.ListingID, 16), ErrNotEnoughTokenAvailable)

	rt.must(rt.market.MakeOffer(rt.ctx, carol, resale.ListingID, dec(90), 10))
	expectAmount(t, "carol after offer", rt.paymentBalance(carol), 1_000_000-900)
	expectErr(t, rt.market.MakeOffer(rt.ctx, carol, resale.ListingID, dec(90), 1), ErrOfferAlreadyExists)
	expectErr(t, rt.market.HandleOffer(rt.ctx, "bob", resale.ListingID, carol, true), ErrNoPermission)
	rt.must(rt.market.HandleOffer(rt.ctx, "alice", resale.ListingID, carol, true))
	expectAmount(t, "carol tokens", rt.tokenBalance(assetID, carol), 10)

	rt.must(rt.market.MakeOffer(rt.ctx, dave, resale.ListingID, dec(90), 5))
	rt.must(rt.market.HandleOffer(rt.ctx, "alice", resale.ListingID, dave, false))
	expectAmount(t, "dave refunded", rt.paymentBalance(dave), 1_000_000)

	rt.must(rt.market.MakeOffer(rt.ctx, dave, resale.ListingID, dec(50), 2))
	rt.must(rt.market.CancelOffer(rt.ctx, dave, resale.ListingID))
	expectAmount(t, "dave after cancel", rt.paymentBalance(dave), 1_000_000)
	expectErr(t, rt.market.CancelOffer(rt.ctx, dave, resale.ListingID), ErrInvalidIndex)

	expectErr(t, rt.market.UpgradeListing(rt.ctx, "bob", resale.ListingID, dec(200)), ErrNoPermission)
	rt.must(rt.market.UpgradeListing(rt.ctx, "alice", resale.ListingID, dec(200)))
	rt.must(rt.market.BuyRelistedToken(rt.ctx, "bob", resale.ListingID, 1))

	expectErr(t, rt.market.DelistToken(rt.ctx, "bob", resale.ListingID), ErrNoPermission)
	rt.must(rt.market.DelistToken(rt.ctx, "alice", resale.ListingID))
	expectErr(t, rt.market.BuyRelistedToken(rt.ctx, "bob", resale.ListingID, 1), ErrTokenNotForSale)

	// 5*100 + 10*90 + 1*200
	expectAmount(t, "alice proceeds", rt.paymentBalance("alice").Sub(aliceStart), 1_600)
	expectAmount(t, "alice tokens", rt.tokenBalance(assetID, "alice"), 44)
	expectAmount(t, "escrow tokens", rt.tokenBalance(assetID, rt.market.AccountID()), 0)
	expectAmount(t, "escrow payment", rt.paymentBalance(rt.market.AccountID()), 0)

	tokens := ownerTokens(t, rt, assetID)
	want := map[string]uint32{"alice": 44, "bob": 46, carol: 10}
	if len(tokens) != len(want) {
		t.Fatalf("expected owners %v, got %v", want, tokens)
	}
	for who, amount := range want {
		if tokens[who] != amount {
			t.Errorf("%s: expected %d tokens, got %d", who, amount, tokens[who])
		}
	}
}

func TestRelistRequiresSettledProperty(t *testing.T) {
	rt := newTestRuntime(t)
	developer := rt.user("developer", 0, 0)
	alice := rt.user("alice", 0, 10_000_000)
	listing, regionID := rt.listProperty(developer, 1_000, 10)
	rt.must(rt.market.BuyToken(rt.ctx, alice, listing.ListingID, 10))

	_, err := rt.market.RelistToken(rt.ctx, alice, regionID, listing.ItemID, dec(100), 1)
	expectErr(t, err, ErrSpvNotCreated)
	_, err = rt.market.RelistToken(rt.ctx, alice, regionID, listing.ItemID+1, dec(100), 1)
	expectErr(t, err, ErrInvalidIndex)
	_, err = rt.market.RelistToken(rt.ctx, alice, regionID, listing.ItemID, dec(0), 1)
	expectErr(t, err, ErrAmountCannotBeZero)
}

func TestSellingAllTokensLeavesOwnerList(t *testing.T) {
	rt := newTestRuntime(t)
	listing, regionID := rt.ownedProperty(map[string]uint32{"alice": 60, "bob": 40})

	resale, err := rt.market.RelistToken(rt.ctx, "bob", regionID, listing.ItemID, dec(10), 40)
	if err != nil {
		t.Fatalf("RelistToken failed: %v", err)
	}
	rt.must(rt.market.BuyRelistedToken(rt.ctx, "alice", resale.ListingID, 40))

	tokens := ownerTokens(t, rt, listing.AssetID)
	if len(tokens) != 1 || tokens["alice"] != 100 {
		t.Errorf("expected alice to own everything, got %v", tokens)
	}
	_, err = rt.market.GetResale(rt.ctx, resale.ListingID)
	expectErr(t, err, ErrTokenNotForSale)
}
