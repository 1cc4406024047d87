package services

import (
	"testing"

	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/config"
	"real-estate-market/internal/events"
)

func TestDistributeIncomePaysDebtFirst(t *testing.T) {
	rt := newTestRuntime(t)
	listing := rt.managedProperty(map[string]uint32{"alice": 60, "bob": 40}, "agent")
	repo := rt.exec.Repository()
	rt.must(repo.SetDebt(rt.ctx, listing.AssetID, dec(50)))
	// reserve target is price / 300
	rt.must(repo.SetReserve(rt.ctx, listing.AssetID, dec(3_333)))

	distributed, err := rt.management.DistributeIncome(rt.ctx, "agent", listing.AssetID, dec(200))
	if err != nil {
		t.Fatalf("DistributeIncome failed: %v", err)
	}
	expectAmount(t, "distributed", distributed, 150)

	reserve, debt, err := rt.management.GetPropertyFunds(rt.ctx, listing.AssetID)
	rt.must(err)
	expectAmount(t, "debt", debt, 0)
	expectAmount(t, "reserve", reserve, 3_333)
	expectAmount(t, "governance", rt.freeBalance(rt.governance.AccountID()), 50)
	expectAmount(t, "management", rt.freeBalance(rt.management.AccountID()), 150)
	expectAmount(t, "agent", rt.freeBalance("agent"), 100_000-100-200)

	alice, err := rt.management.GetStoredFunds(rt.ctx, "alice")
	rt.must(err)
	expectAmount(t, "alice stored", alice, 90)
	bob, err := rt.management.GetStoredFunds(rt.ctx, "bob")
	rt.must(err)
	expectAmount(t, "bob stored", bob, 60)

	event := rt.expectEvent(events.ModuleManagement, "IncomeDistributed")
	if event["amount"] != "150" {
		t.Errorf("expected IncomeDistributed amount 150, got %v", event["amount"])
	}
}

func TestDistributeIncomeTopsUpReserve(t *testing.T) {
	rt := newTestRuntime(t)
	listing := rt.managedProperty(map[string]uint32{"alice": 60, "bob": 40}, "agent")

	distributed, err := rt.management.DistributeIncome(rt.ctx, "agent", listing.AssetID, dec(1_000))
	rt.must(err)
	expectAmount(t, "first distribution", distributed, 0)

	distributed, err = rt.management.DistributeIncome(rt.ctx, "agent", listing.AssetID, dec(3_000))
	rt.must(err)
	expectAmount(t, "second distribution", distributed, 667)

	reserve, _, err := rt.management.GetPropertyFunds(rt.ctx, listing.AssetID)
	rt.must(err)
	expectAmount(t, "reserve", reserve, 3_333)
	expectAmount(t, "governance", rt.freeBalance(rt.governance.AccountID()), 3_333)

	// shares are rounded down
	alice, err := rt.management.GetStoredFunds(rt.ctx, "alice")
	rt.must(err)
	expectAmount(t, "alice stored", alice, 400)
	bob, err := rt.management.GetStoredFunds(rt.ctx, "bob")
	rt.must(err)
	expectAmount(t, "bob stored", bob, 266)
}

func TestWithdrawFunds(t *testing.T) {
	rt := newTestRuntime(t)
	listing := rt.managedProperty(map[string]uint32{"alice": 60, "bob": 40}, "agent")
	rt.must(rt.exec.Repository().SetReserve(rt.ctx, listing.AssetID, dec(3_333)))
	_, err := rt.management.DistributeIncome(rt.ctx, "agent", listing.AssetID, dec(200))
	rt.must(err)

	before := rt.freeBalance("alice")
	withdrawn, err := rt.management.WithdrawFunds(rt.ctx, "alice")
	if err != nil {
		t.Fatalf("WithdrawFunds failed: %v", err)
	}
	expectAmount(t, "withdrawn", withdrawn, 120)
	expectAmount(t, "alice gained", rt.freeBalance("alice").Sub(before), 120)

	_, err = rt.management.WithdrawFunds(rt.ctx, "alice")
	expectErr(t, err, ErrUserHasNoFundsStored)
	stored, err := rt.management.GetStoredFunds(rt.ctx, "alice")
	rt.must(err)
	expectAmount(t, "alice stored", stored, 0)

	_, err = rt.management.WithdrawFunds(rt.ctx, "carol")
	expectErr(t, err, ErrUserHasNoFundsStored)
}

func TestDecreaseReservesRejectsShortfall(t *testing.T) {
	rt := newTestRuntime(t)
	listing := rt.managedProperty(map[string]uint32{"alice": 100}, "agent")
	rt.must(rt.exec.Repository().SetReserve(rt.ctx, listing.AssetID, dec(5_000)))

	err := rt.exec.Run(rt.ctx, func(sc *scope) error {
		return rt.management.decreaseReserves(rt.ctx, sc, listing.AssetID, dec(6_000))
	})
	expectErr(t, err, ErrNotEnoughReserves)
	reserve, _, err := rt.management.GetPropertyFunds(rt.ctx, listing.AssetID)
	rt.must(err)
	expectAmount(t, "reserve after shortfall", reserve, 5_000)

	// the whole reserve can be spent
	rt.must(rt.exec.Run(rt.ctx, func(sc *scope) error {
		return rt.management.decreaseReserves(rt.ctx, sc, listing.AssetID, dec(5_000))
	}))
	reserve, _, err = rt.management.GetPropertyFunds(rt.ctx, listing.AssetID)
	rt.must(err)
	expectAmount(t, "reserve after spending", reserve, 0)
}

func TestDistributeIncomePermissions(t *testing.T) {
	rt := newTestRuntime(t)
	listing, _ := rt.ownedProperty(map[string]uint32{"alice": 100})

	_, err := rt.management.DistributeIncome(rt.ctx, "agent", listing.AssetID, dec(10))
	expectErr(t, err, ErrNoLettingAgentFound)

	listing = rt.managedProperty(map[string]uint32{"bob": 100}, "agent")
	_, err = rt.management.DistributeIncome(rt.ctx, "bob", listing.AssetID, dec(10))
	expectErr(t, err, ErrNoPermission)
	_, err = rt.management.DistributeIncome(rt.ctx, "agent", listing.AssetID, dec(0))
	expectErr(t, err, ErrAmountCannotBeZero)
	// the agent has to keep the existential deposit
	_, err = rt.management.DistributeIncome(rt.ctx, "agent", listing.AssetID, dec(100_000-100))
	expectErr(t, err, blockchain.ErrBelowExistentialDeposit)
}

func TestLettingAgentLifecycle(t *testing.T) {
	rt := newTestRuntime(t, func(cfg *config.RuntimeConfig) {
		cfg.MaxLettingAgents = 1
		cfg.MaxProperties = 1
	})
	listing, regionID := rt.ownedProperty(map[string]uint32{"alice": 100})
	rt.user("agent", 1_000, 0)
	rt.user("other", 1_000, 0)
	rt.user("broke", 10, 0)

	expectErr(t, rt.management.AddLettingAgent(rt.ctx, regionID+9, "Berlin", "agent"), ErrRegionUnknown)
	expectErr(t, rt.management.AddLettingAgent(rt.ctx, regionID, "Rome", "agent"), ErrLocationUnknown)
	rt.must(rt.management.AddLettingAgent(rt.ctx, regionID, "Berlin", "agent"))
	expectErr(t, rt.management.AddLettingAgent(rt.ctx, regionID, "Berlin", "agent"), ErrLettingAgentExists)

	expectErr(t, rt.management.LettingAgentDeposit(rt.ctx, "ghost"), ErrAgentNotFound)
	expectErr(t, rt.management.SetLettingAgent(rt.ctx, "agent", listing.AssetID), ErrNoPermission)
	rt.must(rt.management.LettingAgentDeposit(rt.ctx, "agent"))
	expectErr(t, rt.management.LettingAgentDeposit(rt.ctx, "agent"), ErrAlreadyDeposited)
	reserved, err := rt.exec.Ledger().Currency.ReservedBalance(rt.ctx, "agent")
	rt.must(err)
	expectAmount(t, "deposit", reserved, 100)

	rt.must(rt.management.AddLettingAgent(rt.ctx, regionID, "Berlin", "broke"))
	expectErr(t, rt.management.LettingAgentDeposit(rt.ctx, "broke"), blockchain.ErrNotEnoughFunds)
	rt.must(rt.management.AddLettingAgent(rt.ctx, regionID, "Berlin", "other"))
	expectErr(t, rt.management.LettingAgentDeposit(rt.ctx, "other"), ErrTooManyLettingAgents)

	_, err = rt.management.GetPropertyAgent(rt.ctx, listing.AssetID)
	expectErr(t, err, ErrNoLettingAgentFound)
	expectErr(t, rt.management.SetLettingAgent(rt.ctx, "agent", listing.AssetID+50), ErrInvalidIndex)
	rt.must(rt.management.SetLettingAgent(rt.ctx, "agent", listing.AssetID))
	expectErr(t, rt.management.SetLettingAgent(rt.ctx, "agent", listing.AssetID), ErrLettingAgentAlreadySet)
	current, err := rt.management.GetPropertyAgent(rt.ctx, listing.AssetID)
	rt.must(err)
	if current != "agent" {
		t.Errorf("expected agent to manage the property, got %q", current)
	}

	second, err := rt.market.ListObject(rt.ctx, "developer", regionID, "Berlin", dec(10), 5, nil)
	rt.must(err)
	expectErr(t, rt.management.SetLettingAgent(rt.ctx, "agent", second.AssetID), ErrTooManyAssignedProperties)

	rt.must(rt.market.CreateNewLocation(rt.ctx, regionID, "Potsdam"))
	expectErr(t, rt.management.AddLettingAgentToLocation(rt.ctx, "Potsdam", "other"), ErrNotDeposited)
	expectErr(t, rt.management.AddLettingAgentToLocation(rt.ctx, "Hamburg", "agent"), ErrLocationUnknown)
	expectErr(t, rt.management.AddLettingAgentToLocation(rt.ctx, "Berlin", "agent"), ErrLettingAgentInLocation)
	rt.must(rt.management.AddLettingAgentToLocation(rt.ctx, "Potsdam", "agent"))

	info, err := rt.management.GetLettingAgent(rt.ctx, "agent")
	rt.must(err)
	if len(info.Locations) != 2 || len(info.AssignedProperties) != 1 || !info.Deposited {
		t.Errorf("unexpected agent info: %+v", info)
	}
}
