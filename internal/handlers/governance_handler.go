package handlers

import (
	"net/http"

	"real-estate-market/internal/models"
	"real-estate-market/internal/services"

	"github.com/gin-gonic/gin"
)

// GovernanceHandler exposes spending proposals and letting agent challenges
type GovernanceHandler struct {
	governance *services.GovernanceService
}

func NewGovernanceHandler(governance *services.GovernanceService) *GovernanceHandler {
	return &GovernanceHandler{governance: governance}
}

// Propose asks the owners of a property to approve a spending.
// Small amounts execute at once and return no proposal.
// POST /governance/proposals
func (h *GovernanceHandler) Propose(c *gin.Context) {
	agent, ok := caller(c)
	if !ok {
		return
	}
	var req models.ProposeRequest
	if !bind(c, &req) {
		return
	}

	proposal, err := h.governance.Propose(c.Request.Context(), agent, req.AssetID, req.Amount, []byte(req.Info))
	if err != nil {
		respondError(c, err)
		return
	}
	if proposal == nil {
		c.JSON(http.StatusOK, gin.H{"success": true, "executed": true})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "executed": false, "data": proposal})
}

// VoteOnProposal casts or replaces the caller's vote
// POST /governance/proposals/vote
func (h *GovernanceHandler) VoteOnProposal(c *gin.Context) {
	voter, ok := caller(c)
	if !ok {
		return
	}
	var req models.VoteRequest
	if !bind(c, &req) {
		return
	}
	if err := h.governance.VoteOnProposal(c.Request.Context(), voter, req.ID, req.Vote); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Challenge opens a challenge against the letting agent of a property
// POST /governance/challenges
func (h *GovernanceHandler) Challenge(c *gin.Context) {
	owner, ok := caller(c)
	if !ok {
		return
	}
	var req models.AssetIDRequest
	if !bind(c, &req) {
		return
	}
	challenge, err := h.governance.ChallengeAgainstLettingAgent(c.Request.Context(), owner, req.AssetID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": challenge})
}

// VoteOnChallenge votes in the current round of a challenge
// POST /governance/challenges/vote
func (h *GovernanceHandler) VoteOnChallenge(c *gin.Context) {
	voter, ok := caller(c)
	if !ok {
		return
	}
	var req models.VoteRequest
	if !bind(c, &req) {
		return
	}
	if err := h.governance.VoteOnLettingAgentChallenge(c.Request.Context(), voter, req.ID, req.Vote); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetProposal returns an ongoing proposal and its tally
// GET /proposals/:id
func (h *GovernanceHandler) GetProposal(c *gin.Context) {
	id, ok := uint64Param(c, "id")
	if !ok {
		return
	}
	proposal, stats, err := h.governance.GetProposal(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": proposal, "votes": stats})
}

// GetChallenge returns an ongoing challenge and the tally of its current round
// GET /challenges/:id
func (h *GovernanceHandler) GetChallenge(c *gin.Context) {
	id, ok := uint64Param(c, "id")
	if !ok {
		return
	}
	challenge, stats, err := h.governance.GetChallenge(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": challenge, "votes": stats})
}
