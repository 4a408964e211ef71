package httpserver

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"tableside/internal/domain"
	"tableside/internal/realtime"
	storerepo "tableside/internal/repository/store"
	catalogsvc "tableside/internal/service/catalog"
	checkoutsvc "tableside/internal/service/checkout"
	couponsvc "tableside/internal/service/coupon"
	loyaltysvc "tableside/internal/service/loyalty"
	ordersvc "tableside/internal/service/order"
)

type orderHistory interface {
	StatusHistory(ctx context.Context, orderID string) ([]domain.StatusChange, error)
}

type rewardLister interface {
	ListRewards(ctx context.Context, storeID string) ([]domain.LoyaltyReward, error)
}

// Deps carries everything the route handlers need.
type Deps struct {
	StoreRepo   storerepo.Repository
	Catalog     *catalogsvc.Service
	Coupons     *couponsvc.Service
	Loyalty     *loyaltysvc.Service
	Rewards     rewardLister
	Orders      *ordersvc.Service
	History     orderHistory
	Checkout    *checkoutsvc.Service
	Hub         *realtime.Hub
	CORSOrigins []string
}

// buildRouter wires routes for the API. Everything except the probes is
// scoped to a store resolved from the URL key.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(deps.CORSOrigins) == 1 && deps.CORSOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = deps.CORSOrigins
	}
	router.Use(cors.New(corsCfg))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	sessions := newSessionStore()

	store := router.Group("/stores/:storeKey")
	store.Use(storeMiddleware(deps.StoreRepo))
	{
		store.GET("", getStoreHandler)

		store.GET("/menu", listMenuHandler(deps.Catalog))
		store.GET("/menu/:itemID", getMenuItemHandler(deps.Catalog))

		store.POST("/carts", createCartHandler(sessions))
		carts := store.Group("/carts/:cartID")
		{
			carts.GET("", getCartHandler(sessions))
			carts.POST("/items", addItemHandler(sessions, deps.Catalog))
			carts.PATCH("/items/:lineID", updateLineHandler(sessions))
			carts.DELETE("/items/:lineID", removeLineHandler(sessions))
			carts.POST("/discount", setDiscountHandler(sessions))
			carts.DELETE("/discount", clearDiscountHandler(sessions))
			carts.POST("/reward", applyRewardHandler(sessions, deps.Loyalty))
			carts.DELETE("/reward", clearRewardHandler(sessions))
			carts.POST("/split", setSplitHandler(sessions))
			carts.POST("/customer", setCustomerHandler(sessions))
			carts.POST("/clear", clearCartHandler(sessions))
		}

		store.POST("/quote", quoteHandler(sessions, deps.Checkout))
		store.POST("/checkout", checkoutHandler(sessions, deps.Checkout))

		store.GET("/loyalty/customer", loyaltyCustomerHandler(deps.Loyalty))
		store.GET("/loyalty/rewards", listRewardsHandler(deps.Rewards))

		orders := store.Group("/orders")
		{
			orders.GET("/active", listActiveOrdersHandler(deps.Orders))
			orders.GET("/:orderID", getOrderHandler(deps.Orders))
			orders.GET("/:orderID/history", orderHistoryHandler(deps.Orders, deps.History))
			orders.POST("/:orderID/advance", advanceOrderHandler(deps.Orders))
			orders.POST("/:orderID/cancel", cancelOrderHandler(deps.Orders))
			orders.POST("/:orderID/reprint", reprintOrderHandler(deps.Orders))
			orders.GET("/:orderID/events", orderEventsHandler(deps.Hub))
		}

		store.GET("/events", storeEventsHandler(deps.Hub))
	}

	return router, nil
}

func getStoreHandler(c *gin.Context) {
	st := currentStore(c)
	c.JSON(http.StatusOK, toStoreResponse(st))
}
