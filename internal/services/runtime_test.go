package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/config"
	"real-estate-market/internal/database"
	"real-estate-market/internal/events"
	"real-estate-market/internal/models"
	"real-estate-market/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testRuntime wires the three services on an in-memory database
type testRuntime struct {
	t          *testing.T
	ctx        context.Context
	db         *gorm.DB
	cfg        config.RuntimeConfig
	exec       *Executor
	market     *MarketplaceService
	management *ManagementService
	governance *GovernanceService
	now        time.Time
}

func newTestRuntime(t *testing.T, tweaks ...func(*config.RuntimeConfig)) *testRuntime {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	cfg := config.DefaultRuntime()
	cfg.VotingTime = 3
	for _, tweak := range tweaks {
		tweak(&cfg)
	}

	ledger := blockchain.NewLedger(db, cfg.ExistentialDeposit)
	exec := NewExecutor(db, repository.NewRepository(db), ledger, events.NewRecorder(db))
	management := NewManagementService(exec, cfg)
	rt := &testRuntime{
		t:          t,
		ctx:        context.Background(),
		db:         db,
		cfg:        cfg,
		exec:       exec,
		market:     NewMarketplaceService(exec, cfg),
		management: management,
		governance: NewGovernanceService(exec, cfg, management),
		now:        time.Unix(1_700_000_000, 0),
	}
	rt.advance(1)
	return rt
}

// advance produces n blocks
func (rt *testRuntime) advance(n int) *HookResult {
	rt.t.Helper()
	var last *HookResult
	for i := 0; i < n; i++ {
		rt.now = rt.now.Add(6 * time.Second)
		result, err := rt.governance.OnNewBlock(rt.ctx, rt.now)
		if err != nil {
			rt.t.Fatalf("block hook failed: %v", err)
		}
		last = result
	}
	return last
}

// advanceRound produces blocks until every round scheduled now has expired
func (rt *testRuntime) advanceRound() *HookResult {
	rt.t.Helper()
	return rt.advance(int(rt.cfg.VotingTime))
}

func (rt *testRuntime) must(err error) {
	rt.t.Helper()
	if err != nil {
		rt.t.Fatalf("unexpected error: %v", err)
	}
}

func expectErr(t *testing.T, err, want error) {
	t.Helper()
	if !errors.Is(err, want) {
		t.Fatalf("expected %v, got %v", want, err)
	}
}

func dec(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func expectAmount(t *testing.T, what string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(dec(want)) {
		t.Errorf("%s: expected %d, got %s", what, want, got)
	}
}

// user whitelists an account and gives it native currency and payment asset
func (rt *testRuntime) user(who string, native, payment int64) string {
	rt.t.Helper()
	rt.must(rt.market.AddToWhitelist(rt.ctx, who))
	if native > 0 {
		rt.must(rt.market.FundAccount(rt.ctx, who, dec(native)))
	}
	if payment > 0 {
		rt.must(rt.market.MintPaymentAsset(rt.ctx, who, dec(payment)))
	}
	return who
}

func (rt *testRuntime) paymentBalance(who string) decimal.Decimal {
	rt.t.Helper()
	balance, err := rt.exec.Ledger().Assets.Balance(rt.ctx, rt.cfg.PaymentAssetID, who)
	rt.must(err)
	return balance
}

func (rt *testRuntime) freeBalance(who string) decimal.Decimal {
	rt.t.Helper()
	balance, err := rt.exec.Ledger().Currency.FreeBalance(rt.ctx, who)
	rt.must(err)
	return balance
}

func (rt *testRuntime) tokenBalance(assetID uint32, who string) decimal.Decimal {
	rt.t.Helper()
	balance, err := rt.exec.Ledger().Assets.Balance(rt.ctx, assetID, who)
	rt.must(err)
	return balance
}

// location creates a region with one location
func (rt *testRuntime) location(name string) uint32 {
	rt.t.Helper()
	region, err := rt.market.CreateNewRegion(rt.ctx)
	rt.must(err)
	rt.must(rt.market.CreateNewLocation(rt.ctx, region.RegionID, name))
	return region.RegionID
}

// listProperty lists a property of tokenAmount tokens in a new region
func (rt *testRuntime) listProperty(developer string, tokenPrice int64, tokenAmount uint32) (*models.ObjectListing, uint32) {
	rt.t.Helper()
	regionID := rt.location("Berlin")
	listing, err := rt.market.ListObject(rt.ctx, developer, regionID, "Berlin", dec(tokenPrice), tokenAmount, []byte("flat"))
	rt.must(err)
	return listing, regionID
}

// settle claims both legal sides and approves the sale
func (rt *testRuntime) settle(listingID uint32, devCosts, spvCosts int64) (string, string) {
	rt.t.Helper()
	devLawyer, spvLawyer := "lawyer-dev", "lawyer-spv"
	for _, lawyer := range []string{devLawyer, spvLawyer} {
		if err := rt.market.RegisterLawyer(rt.ctx, lawyer); err != nil && !errors.Is(err, ErrLawyerAlreadyRegistered) {
			rt.t.Fatalf("register lawyer: %v", err)
		}
	}
	rt.must(rt.market.LawyerClaimProperty(rt.ctx, devLawyer, listingID, models.LegalPropertyDeveloper, dec(devCosts)))
	rt.must(rt.market.LawyerClaimProperty(rt.ctx, spvLawyer, listingID, models.LegalPropertySpv, dec(spvCosts)))
	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, devLawyer, listingID, true))
	rt.must(rt.market.LawyerConfirmDocuments(rt.ctx, spvLawyer, listingID, true))
	return devLawyer, spvLawyer
}

// ownedProperty lists a property, sells it to the given owners and settles it
func (rt *testRuntime) ownedProperty(owners map[string]uint32) (*models.ObjectListing, uint32) {
	rt.t.Helper()
	developer := rt.user("developer", 0, 0)
	var total uint32
	for _, amount := range owners {
		total += amount
	}
	listing, regionID := rt.listProperty(developer, 10_000, total)
	for owner, amount := range owners {
		rt.user(owner, 1_000, 10_000_000)
		rt.must(rt.market.BuyToken(rt.ctx, owner, listing.ListingID, amount))
	}
	rt.settle(listing.ListingID, 1_000, 2_000)
	return listing, regionID
}

// managedProperty is an owned property with a deposited letting agent
func (rt *testRuntime) managedProperty(owners map[string]uint32, agents ...string) *models.ObjectListing {
	rt.t.Helper()
	listing, regionID := rt.ownedProperty(owners)
	for _, agent := range agents {
		rt.user(agent, 100_000, 0)
		rt.must(rt.management.AddLettingAgent(rt.ctx, regionID, "Berlin", agent))
		rt.must(rt.management.LettingAgentDeposit(rt.ctx, agent))
	}
	if len(agents) > 0 {
		rt.must(rt.management.SetLettingAgent(rt.ctx, agents[0], listing.AssetID))
	}
	return listing
}

func (rt *testRuntime) emitted(module, name string) []map[string]interface{} {
	rt.t.Helper()
	recorded, err := rt.exec.Repository().ListEvents(rt.ctx, module, 1000)
	rt.must(err)
	var payloads []map[string]interface{}
	for _, event := range recorded {
		if event.Name != name {
			continue
		}
		var payload map[string]interface{}
		if err := json.Unmarshal([]byte(event.Payload), &payload); err != nil {
			rt.t.Fatalf("bad payload for %s: %v", name, err)
		}
		payloads = append(payloads, payload)
	}
	return payloads
}

func (rt *testRuntime) expectEvent(module, name string) map[string]interface{} {
	rt.t.Helper()
	payloads := rt.emitted(module, name)
	if len(payloads) == 0 {
		rt.t.Fatalf("expected a %s event", name)
	}
	return payloads[0]
}
