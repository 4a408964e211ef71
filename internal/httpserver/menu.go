package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	catalogsvc "tableside/internal/service/catalog"
)

func listMenuHandler(catalog *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := currentStore(c)
		items, err := catalog.ListItems(c.Request.Context(), st.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		now := time.Now()
		out := make([]menuItemResponse, 0, len(items))
		for _, item := range items {
			out = append(out, toMenuItemResponse(item, now))
		}
		c.JSON(http.StatusOK, gin.H{"items": out})
	}
}

func getMenuItemHandler(catalog *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := currentStore(c)
		ctx := c.Request.Context()

		item, err := catalog.GetItem(ctx, st.ID, c.Param("itemID"))
		if err != nil {
			respondError(c, err)
			return
		}
		groups, err := catalog.GroupsForItem(ctx, st.ID, *item)
		if err != nil {
			respondError(c, err)
			return
		}

		now := time.Now()
		groupOut := make([]optionGroupResponse, 0, len(groups))
		for _, g := range groups {
			groupOut = append(groupOut, toOptionGroupResponse(g, now))
		}
		c.JSON(http.StatusOK, gin.H{
			"item":   toMenuItemResponse(*item, now),
			"groups": groupOut,
		})
	}
}
