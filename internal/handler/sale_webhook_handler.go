package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"afilia/config"
	"afilia/internal/domain"
	"afilia/internal/repository"
	"afilia/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SaleWebhookHandler receives the completed-sale event from the checkout
// system. The event is idempotent: redelivery of an already-distributed
// order id returns the original records.
type SaleWebhookHandler struct {
	cfg           *config.Config
	commissionSvc *service.CommissionService
	affiliates    repository.AffiliateRepository
}

func NewSaleWebhookHandler(cfg *config.Config, commissionSvc *service.CommissionService, affiliates repository.AffiliateRepository) *SaleWebhookHandler {
	return &SaleWebhookHandler{cfg: cfg, commissionSvc: commissionSvc, affiliates: affiliates}
}

type saleEvent struct {
	OrderID      string          `json:"order_id"`
	OrderTotal   decimal.Decimal `json:"order_total"`
	AffiliateID  uint            `json:"selling_affiliate_id"`
	ReferralCode string          `json:"referral_code"`
}

// Handle verifies the optional HMAC signature, resolves the selling
// affiliate (by id or referral code) and distributes commission.
// POST /webhooks/sale
func (h *SaleWebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if h.cfg.Webhook.Secret != "" {
		if !h.verifySignature(body, c.GetHeader("X-Webhook-Signature")) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
			return
		}
	}
	var event saleEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if event.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id required"})
		return
	}

	sellerID := event.AffiliateID
	if sellerID == 0 && event.ReferralCode != "" {
		a, err := h.affiliates.GetByReferralCode(event.ReferralCode)
		if err != nil {
			respondErr(c, err)
			return
		}
		sellerID = a.ID
	}
	if sellerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "selling_affiliate_id or referral_code required"})
		return
	}

	records, err := h.commissionSvc.Distribute(service.Sale{
		OrderID:    event.OrderID,
		OrderTotal: event.OrderTotal,
		SellerID:   sellerID,
	})
	if err != nil {
		if errors.Is(err, domain.ErrAffiliateNotApproved) {
			// The sale stands, the seller just earns nothing.
			c.JSON(http.StatusOK, gin.H{"received": true, "records": 0})
			return
		}
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "records": len(records)})
}

func (h *SaleWebhookHandler) verifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.cfg.Webhook.Secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
