package handlers

import (
	"net/http"
	"strconv"

	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/repository"

	"github.com/gin-gonic/gin"
)

const maxEventPage = 200

// ChainHandler exposes the block clock, the event log and the module accounts
type ChainHandler struct {
	repo     *repository.Repository
	chain    *blockchain.Chain
	accounts map[string]string
}

// NewChainHandler creates a chain handler. accounts maps module names to
// their custodial account ids.
func NewChainHandler(repo *repository.Repository, chain *blockchain.Chain, accounts map[string]string) *ChainHandler {
	return &ChainHandler{repo: repo, chain: chain, accounts: accounts}
}

// GetHead returns the latest block
// GET /chain/head
func (h *ChainHandler) GetHead(c *gin.Context) {
	head, err := h.chain.Head(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if head == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no block produced yet"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": head})
}

// GetEvents returns the latest events, newest first
// GET /events?module=&limit=
func (h *ChainHandler) GetEvents(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 || limit > maxEventPage {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	events, err := h.repo.ListEvents(c.Request.Context(), c.Query("module"), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": events, "count": len(events)})
}

// GetAccounts returns the custodial accounts of the modules
// GET /chain/accounts
func (h *ChainHandler) GetAccounts(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": h.accounts})
}
