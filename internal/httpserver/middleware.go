package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tableside/internal/domain"
	storerepo "tableside/internal/repository/store"
)

const storeCtxKey = "tableside.store"

// storeMiddleware resolves the store key in the URL and aborts with 404 when
// it does not exist. Handlers downstream read the store via currentStore.
func storeMiddleware(repo storerepo.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("storeKey")
		st, err := repo.GetByKey(c.Request.Context(), key)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "store not found"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		c.Set(storeCtxKey, st)
		c.Next()
	}
}

func currentStore(c *gin.Context) *domain.Store {
	return c.MustGet(storeCtxKey).(*domain.Store)
}

// respondError maps the domain error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		body := gin.H{"error": verr.Message}
		if verr.Field != "" {
			body["field"] = verr.Field
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}
	var cerr *domain.ConflictError
	if errors.As(err, &cerr) {
		c.JSON(http.StatusConflict, gin.H{"error": cerr.Error()})
		return
	}
	var ierr *domain.IntegrationError
	if errors.As(err, &ierr) {
		c.JSON(http.StatusBadGateway, gin.H{"error": ierr.Error()})
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
