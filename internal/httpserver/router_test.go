package httpserver

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"tableside/internal/domain"
)

type stubStoreRepo struct {
	store *domain.Store
	err   error
}

func (s *stubStoreRepo) GetByKey(_ context.Context, _ string) (*domain.Store, error) {
	return s.store, s.err
}

func (s *stubStoreRepo) GetByID(_ context.Context, _ string) (*domain.Store, error) {
	return s.store, s.err
}

func logDiscard() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestStoreMiddleware_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubStoreRepo{
		store: &domain.Store{ID: "123", Key: "demo", Name: "Demo", DeliveryFeeCents: 800},
	}
	router := gin.New()
	router.Use(storeMiddleware(repo))
	router.GET("/stores/:storeKey/test", func(c *gin.Context) {
		st := currentStore(c)
		if st.ID != "123" {
			t.Fatalf("expected store in context, got %+v", st)
		}
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stores/demo/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestStoreMiddleware_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := &stubStoreRepo{err: domain.ErrNotFound}
	router := gin.New()
	router.Use(storeMiddleware(repo))
	router.GET("/stores/:storeKey/test", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/stores/missing/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestBuildRouter_Probes(t *testing.T) {
	router, err := buildRouter(logDiscard(), nil, Deps{
		StoreRepo:   &stubStoreRepo{err: domain.ErrNotFound},
		CORSOrigins: []string{"*"},
	})
	if err != nil {
		t.Fatalf("buildRouter: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
