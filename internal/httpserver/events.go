package httpserver

import (
	"io"

	"github.com/gin-gonic/gin"

	"tableside/internal/realtime"
)

// SSE endpoints fan order events out to the kitchen board and the customer
// tracker. Events carry the order id and new status; clients re-fetch or
// apply in place, so a duplicate delivery is harmless.

func storeEventsHandler(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := currentStore(c)
		streamEvents(c, hub.SubscribeStore(st.ID))
	}
}

func orderEventsHandler(hub *realtime.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		streamEvents(c, hub.SubscribeOrder(c.Param("orderID")))
	}
}

func streamEvents(c *gin.Context, sub *realtime.Subscription) {
	defer sub.Close()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case event, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent("order", event)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
