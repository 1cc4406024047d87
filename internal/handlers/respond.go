package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"real-estate-market/internal/auth"
	"real-estate-market/internal/blockchain"
	"real-estate-market/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var kindStatus = map[services.ErrorKind]int{
	services.KindPermission:        http.StatusForbidden,
	services.KindStatePrecondition: http.StatusConflict,
	services.KindCapacity:          http.StatusUnprocessableEntity,
	services.KindArithmetic:        http.StatusUnprocessableEntity,
	services.KindInsufficientFunds: http.StatusPaymentRequired,
	services.KindInvalidInput:      http.StatusBadRequest,
}

// respondError writes err as {"error", "code"} with a status derived from its kind
func respondError(c *gin.Context, err error) {
	var domainErr *services.Error
	switch {
	case errors.As(err, &domainErr):
		c.JSON(kindStatus[domainErr.Kind], gin.H{"error": domainErr.Error(), "code": domainErr.Code})
	case errors.Is(err, blockchain.ErrNotEnoughFunds):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error(), "code": "NotEnoughFunds"})
	case errors.Is(err, blockchain.ErrBelowExistentialDeposit):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "ExistentialDeposit"})
	case errors.Is(err, blockchain.ErrBalanceOverflow):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error(), "code": "Overflow"})
	case errors.Is(err, blockchain.ErrInvalidAccount), errors.Is(err, blockchain.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "InvalidInput"})
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found", "code": "NotFound"})
	default:
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// uint32Param parses a numeric path parameter, answering 400 when it is malformed
func uint32Param(c *gin.Context, name string) (uint32, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint32(value), true
}

func uint64Param(c *gin.Context, name string) (uint64, bool) {
	value, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return value, true
}

// accountParam validates an account id taken from the request
func accountParam(c *gin.Context, raw string) (string, bool) {
	account, err := blockchain.ParseAccount(raw)
	if err != nil {
		respondError(c, err)
		return "", false
	}
	return account, true
}

// caller returns the authenticated account, set by auth.AuthMiddleware
func caller(c *gin.Context) (string, bool) {
	account, ok := auth.GetAccount(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	}
	return account, ok
}

func bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return false
	}
	return true
}
