package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tableside/internal/domain"
	loyaltysvc "tableside/internal/service/loyalty"
)

func loyaltyCustomerHandler(loyalty *loyaltysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		phone := c.Query("phone")
		if phone == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "phone query parameter is required"})
			return
		}
		st := currentStore(c)
		customer, err := loyalty.Balance(c.Request.Context(), st.ID, phone)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

func listRewardsHandler(rewards rewardLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := currentStore(c)
		list, err := rewards.ListRewards(c.Request.Context(), st.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]gin.H, 0, len(list))
		for _, r := range list {
			out = append(out, gin.H{
				"id":         r.ID,
				"name":       r.Name,
				"pointsCost": r.PointsCost,
				"discount":   domain.FormatCents(r.DiscountCents),
			})
		}
		c.JSON(http.StatusOK, gin.H{"rewards": out})
	}
}
