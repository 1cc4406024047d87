package handlers

import (
	"real-estate-market/internal/auth"

	"github.com/gin-gonic/gin"
)

// Handlers groups every handler the API serves
type Handlers struct {
	Auth        *AuthHandler
	Marketplace *MarketplaceHandler
	Management  *ManagementHandler
	Governance  *GovernanceHandler
	Admin       *AdminHandler
	Chain       *ChainHandler
}

// RegisterRoutes mounts the API on router. isAdmin decides who may use /api/admin.
func RegisterRoutes(router *gin.Engine, h *Handlers, isAdmin func(account string) bool) {
	// Authentication routes (public)
	router.POST("/auth/wallet", h.Auth.WalletLogin)

	authProtected := router.Group("/auth")
	authProtected.Use(auth.AuthMiddleware())
	{
		authProtected.GET("/me", h.Auth.GetMe)
	}

	// Public queries
	public := router.Group("/api")
	{
		public.GET("/regions", h.Marketplace.GetRegions)
		public.GET("/regions/:id/locations", h.Marketplace.GetLocations)
		public.GET("/listings", h.Marketplace.GetListings)
		public.GET("/listings/:id", h.Marketplace.GetListing)
		public.GET("/listings/:id/legal", h.Marketplace.GetLegalProcess)
		public.GET("/resales/:id", h.Marketplace.GetResale)
		public.GET("/assets/:id", h.Marketplace.GetAsset)
		public.GET("/accounts/:account/balances", h.Marketplace.GetBalances)
		public.GET("/accounts/:account/funds", h.Management.GetStoredFunds)
		public.GET("/agents/:account", h.Management.GetLettingAgent)
		public.GET("/properties/:id", h.Management.GetProperty)
		public.GET("/proposals/:id", h.Governance.GetProposal)
		public.GET("/challenges/:id", h.Governance.GetChallenge)
		public.GET("/chain/head", h.Chain.GetHead)
		public.GET("/chain/accounts", h.Chain.GetAccounts)
		public.GET("/events", h.Chain.GetEvents)
	}

	// Signed calls
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware())
	{
		marketplace := api.Group("/marketplace")
		{
			marketplace.POST("/listings", h.Marketplace.ListObject)
			marketplace.POST("/listings/upgrade", h.Marketplace.UpgradeObject)
			marketplace.POST("/buy", h.Marketplace.BuyToken)
			marketplace.POST("/legal/claim", h.Marketplace.LawyerClaimProperty)
			marketplace.POST("/legal/confirm", h.Marketplace.LawyerConfirmDocuments)
			marketplace.POST("/resales", h.Marketplace.RelistToken)
			marketplace.POST("/resales/buy", h.Marketplace.BuyRelistedToken)
			marketplace.POST("/resales/upgrade", h.Marketplace.UpgradeListing)
			marketplace.POST("/resales/delist", h.Marketplace.DelistToken)
			marketplace.POST("/offers", h.Marketplace.MakeOffer)
			marketplace.POST("/offers/handle", h.Marketplace.HandleOffer)
			marketplace.POST("/offers/cancel", h.Marketplace.CancelOffer)
		}

		management := api.Group("/management")
		{
			management.POST("/agents/deposit", h.Management.Deposit)
			management.POST("/properties/agent", h.Management.SetLettingAgent)
			management.POST("/income", h.Management.DistributeIncome)
			management.POST("/withdraw", h.Management.WithdrawFunds)
		}

		governance := api.Group("/governance")
		{
			governance.POST("/proposals", h.Governance.Propose)
			governance.POST("/proposals/vote", h.Governance.VoteOnProposal)
			governance.POST("/challenges", h.Governance.Challenge)
			governance.POST("/challenges/vote", h.Governance.VoteOnChallenge)
		}
	}

	// Admin routes (protected + admin only)
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware())
	admin.Use(auth.AdminMiddleware(isAdmin))
	{
		admin.POST("/regions", h.Admin.CreateRegion)
		admin.POST("/locations", h.Admin.CreateLocation)
		admin.POST("/lawyers", h.Admin.RegisterLawyer)
		admin.POST("/whitelist", h.Admin.AddToWhitelist)
		admin.DELETE("/whitelist/:account", h.Admin.RemoveFromWhitelist)
		admin.POST("/letting-agents", h.Admin.AddLettingAgent)
		admin.POST("/letting-agents/locations", h.Admin.AddLettingAgentToLocation)
		admin.POST("/faucet", h.Admin.Faucet)
	}
}
