package handlers

import (
	"net/http"

	"real-estate-market/internal/models"
	"real-estate-market/internal/services"

	"github.com/gin-gonic/gin"
)

// AdminHandler exposes the calls reserved for admin accounts
type AdminHandler struct {
	market       *services.MarketplaceService
	management   *services.ManagementService
	enableFaucet bool
}

func NewAdminHandler(market *services.MarketplaceService, management *services.ManagementService, enableFaucet bool) *AdminHandler {
	return &AdminHandler{
		market:       market,
		management:   management,
		enableFaucet: enableFaucet,
	}
}

// CreateRegion opens a new region and its collection
// POST /admin/regions
func (h *AdminHandler) CreateRegion(c *gin.Context) {
	region, err := h.market.CreateNewRegion(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": region})
}

// CreateLocation registers a location in a region
// POST /admin/locations
func (h *AdminHandler) CreateLocation(c *gin.Context) {
	var req models.CreateLocationRequest
	if !bind(c, &req) {
		return
	}
	if err := h.market.CreateNewLocation(c.Request.Context(), req.RegionID, req.Location); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// RegisterLawyer allows an account to take legal jobs
// POST /admin/lawyers
func (h *AdminHandler) RegisterLawyer(c *gin.Context) {
	account, ok := h.bindAccount(c)
	if !ok {
		return
	}
	if err := h.market.RegisterLawyer(c.Request.Context(), account); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// AddToWhitelist lets an account trade
// POST /admin/whitelist
func (h *AdminHandler) AddToWhitelist(c *gin.Context) {
	account, ok := h.bindAccount(c)
	if !ok {
		return
	}
	if err := h.market.AddToWhitelist(c.Request.Context(), account); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveFromWhitelist revokes trading rights
// DELETE /admin/whitelist/:account
func (h *AdminHandler) RemoveFromWhitelist(c *gin.Context) {
	account, ok := accountParam(c, c.Param("account"))
	if !ok {
		return
	}
	if err := h.market.RemoveFromWhitelist(c.Request.Context(), account); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AddLettingAgent registers a letting agent for a location
// POST /admin/letting-agents
func (h *AdminHandler) AddLettingAgent(c *gin.Context) {
	var req models.AddLettingAgentRequest
	if !bind(c, &req) {
		return
	}
	agent, ok := accountParam(c, req.Agent)
	if !ok {
		return
	}
	if err := h.management.AddLettingAgent(c.Request.Context(), req.RegionID, req.Location, agent); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true})
}

// AddLettingAgentToLocation extends a deposited agent to another location of its region
// POST /admin/letting-agents/locations
func (h *AdminHandler) AddLettingAgentToLocation(c *gin.Context) {
	var req models.AddLettingAgentToLocationRequest
	if !bind(c, &req) {
		return
	}
	agent, ok := accountParam(c, req.Agent)
	if !ok {
		return
	}
	if err := h.management.AddLettingAgentToLocation(c.Request.Context(), req.Location, agent); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Faucet credits native currency and the payment asset on test deployments
// POST /admin/faucet
func (h *AdminHandler) Faucet(c *gin.Context) {
	if !h.enableFaucet {
		c.JSON(http.StatusNotFound, gin.H{"error": "faucet disabled"})
		return
	}
	var req models.FaucetRequest
	if !bind(c, &req) {
		return
	}
	account, ok := accountParam(c, req.Account)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if req.Native.IsPositive() {
		if err := h.market.FundAccount(ctx, account, req.Native); err != nil {
			respondError(c, err)
			return
		}
	}
	if req.Payment.IsPositive() {
		if err := h.market.MintPaymentAsset(ctx, account, req.Payment); err != nil {
			respondError(c, err)
			return
		}
	}

	balances, err := h.market.GetBalances(ctx, account)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": balances})
}

func (h *AdminHandler) bindAccount(c *gin.Context) (string, bool) {
	var req models.AccountRequest
	if !bind(c, &req) {
		return "", false
	}
	return accountParam(c, req.Account)
}
