package handlers

import (
	"errors"
	"net/http"

	"real-estate-market/internal/models"
	"real-estate-market/internal/services"

	"github.com/gin-gonic/gin"
)

// ManagementHandler exposes letting agents, property income and owner payouts
type ManagementHandler struct {
	management *services.ManagementService
}

func NewManagementHandler(management *services.ManagementService) *ManagementHandler {
	return &ManagementHandler{management: management}
}

// Deposit locks the caller's letting agent deposit
// POST /management/agents/deposit
func (h *ManagementHandler) Deposit(c *gin.Context) {
	agent, ok := caller(c)
	if !ok {
		return
	}
	if err := h.management.LettingAgentDeposit(c.Request.Context(), agent); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// SetLettingAgent assigns the caller to a property
// POST /management/properties/agent
func (h *ManagementHandler) SetLettingAgent(c *gin.Context) {
	agent, ok := caller(c)
	if !ok {
		return
	}
	var req models.AssetIDRequest
	if !bind(c, &req) {
		return
	}
	if err := h.management.SetLettingAgent(c.Request.Context(), agent, req.AssetID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DistributeIncome pays rental income into a property
// POST /management/income
func (h *ManagementHandler) DistributeIncome(c *gin.Context) {
	agent, ok := caller(c)
	if !ok {
		return
	}
	var req models.DistributeIncomeRequest
	if !bind(c, &req) {
		return
	}
	distributed, err := h.management.DistributeIncome(c.Request.Context(), agent, req.AssetID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "distributed": distributed})
}

// WithdrawFunds pays out the caller's stored income
// POST /management/withdraw
func (h *ManagementHandler) WithdrawFunds(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}
	amount, err := h.management.WithdrawFunds(c.Request.Context(), who)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "amount": amount})
}

// GetLettingAgent returns a registered letting agent
// GET /agents/:account
func (h *ManagementHandler) GetLettingAgent(c *gin.Context) {
	account, ok := accountParam(c, c.Param("account"))
	if !ok {
		return
	}
	agent, err := h.management.GetLettingAgent(c.Request.Context(), account)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": agent})
}

// GetProperty returns the letting agent and funds of a property
// GET /properties/:id
func (h *ManagementHandler) GetProperty(c *gin.Context) {
	assetID, ok := uint32Param(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	agent, err := h.management.GetPropertyAgent(ctx, assetID)
	if err != nil && !errors.Is(err, services.ErrNoLettingAgentFound) {
		respondError(c, err)
		return
	}
	reserve, debt, err := h.management.GetPropertyFunds(ctx, assetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"asset_id":      assetID,
		"letting_agent": agent,
		"reserve":       reserve,
		"debt":          debt,
	})
}

// GetStoredFunds returns the income waiting for an account
// GET /accounts/:account/funds
func (h *ManagementHandler) GetStoredFunds(c *gin.Context) {
	account, ok := accountParam(c, c.Param("account"))
	if !ok {
		return
	}
	funds, err := h.management.GetStoredFunds(c.Request.Context(), account)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "account": account, "funds": funds})
}
