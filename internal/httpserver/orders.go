package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ordersvc "tableside/internal/service/order"
)

func listActiveOrdersHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := currentStore(c)
		active, err := orders.ListActive(c.Request.Context(), st.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		out := make([]orderResponse, 0, len(active))
		for i := range active {
			out = append(out, toOrderResponse(&active[i], ordersvc.FlowKitchen))
		}
		c.JSON(http.StatusOK, gin.H{"orders": out})
	}
}

func getOrderHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := currentStore(c)
		o, err := orders.Get(c.Request.Context(), st.ID, c.Param("orderID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o, flowViewParam(c)))
	}
}

func orderHistoryHandler(orders *ordersvc.Service, history orderHistory) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := currentStore(c)
		ctx := c.Request.Context()
		// Scope check before exposing the log.
		if _, err := orders.Get(ctx, st.ID, c.Param("orderID")); err != nil {
			respondError(c, err)
			return
		}
		changes, err := history.StatusHistory(ctx, c.Param("orderID"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"history": changes})
	}
}

type advanceRequest struct {
	View  ordersvc.FlowView `json:"view"`
	Actor string            `json:"actor"`
}

func advanceOrderHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req advanceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		view := req.View
		if view == "" {
			view = ordersvc.FlowKitchen
		}
		st := currentStore(c)
		o, err := orders.Advance(c.Request.Context(), st.ID, c.Param("orderID"), view, req.Actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o, view))
	}
}

type cancelRequest struct {
	Actor string `json:"actor"`
}

func cancelOrderHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req cancelRequest
		_ = c.ShouldBindJSON(&req)
		st := currentStore(c)
		o, err := orders.Cancel(c.Request.Context(), st.ID, c.Param("orderID"), req.Actor)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toOrderResponse(o, flowViewParam(c)))
	}
}

type reprintRequest struct {
	Destination string `json:"destination"`
}

func reprintOrderHandler(orders *ordersvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req reprintRequest
		_ = c.ShouldBindJSON(&req)
		st := currentStore(c)
		if err := orders.Reprint(c.Request.Context(), st.ID, c.Param("orderID"), req.Destination); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "sent"})
	}
}

func flowViewParam(c *gin.Context) ordersvc.FlowView {
	if c.Query("view") == string(ordersvc.FlowCustomer) {
		return ordersvc.FlowCustomer
	}
	return ordersvc.FlowKitchen
}
