package handler

import (
	"errors"
	"net/http"
	"strconv"

	"afilia/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondErr maps domain errors onto HTTP statuses. Transition errors keep
// their detail (record id, attempted action, current state) in the body.
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrAffiliateNotFound),
		errors.Is(err, domain.ErrCommissionNotFound),
		errors.Is(err, domain.ErrWithdrawalNotFound),
		errors.Is(err, domain.ErrSponsorCodeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInsufficientBalance),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAffiliateNotApproved),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrSelfSponsor):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrCorruptHierarchy):
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func idParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}
