package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"real-estate-market/internal/auth"
	"real-estate-market/internal/models"

	"github.com/gagliardetto/solana-go"
	"github.com/gin-gonic/gin"
)

// LoginMessagePrefix is followed by the unix time at which the wallet signed
const LoginMessagePrefix = "Sign in to Real Estate Market at "

// loginWindow bounds the age of a signed login message
const loginWindow = 5 * time.Minute

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	now func() time.Time
}

func NewAuthHandler() *AuthHandler {
	return &AuthHandler{now: time.Now}
}

// WalletLogin authenticates an account by an ed25519 signature over a
// timestamped login message.
// POST /auth/wallet
func (h *AuthHandler) WalletLogin(c *gin.Context) {
	var req models.WalletLoginRequest
	if !bind(c, &req) {
		return
	}

	pubKey, err := solana.PublicKeyFromBase58(req.Account)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid account"})
		return
	}
	sig, err := solana.SignatureFromBase58(req.Signature)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature format"})
		return
	}

	signedAt, ok := parseLoginMessage(req.Message)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login message"})
		return
	}
	if age := h.now().Sub(signedAt); age > loginWindow || age < -loginWindow {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "login message expired"})
		return
	}

	if !sig.Verify(pubKey, []byte(req.Message)) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	token, err := auth.GenerateToken(pubKey.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":   token,
		"account": pubKey.String(),
	})
}

// GetMe returns the authenticated account
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	account, ok := caller(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"account": account})
}

func parseLoginMessage(message string) (time.Time, bool) {
	if !strings.HasPrefix(message, LoginMessagePrefix) {
		return time.Time{}, false
	}
	unix, err := strconv.ParseInt(strings.TrimPrefix(message, LoginMessagePrefix), 10, 64)
	if err != nil {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}
