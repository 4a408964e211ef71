package httpserver

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tableside/internal/cart"
	"tableside/internal/domain"
	catalogsvc "tableside/internal/service/catalog"
	loyaltysvc "tableside/internal/service/loyalty"
)

// sessionTTL is how long an untouched cart survives. Expired sessions are
// swept lazily whenever a new cart is created.
const sessionTTL = 2 * time.Hour

type cartSession struct {
	mu       sync.Mutex
	engine   *cart.Engine
	lastUsed time.Time
	// loyaltyCustomerID is set once a reward is applied so checkout can
	// debit the right account.
	loyaltyCustomerID string
}

type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*cartSession
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*cartSession)}
}

func (s *sessionStore) create() (string, *cartSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if time.Since(sess.lastUsed) > sessionTTL {
			delete(s.sessions, id)
		}
	}
	id := uuid.NewString()
	sess := &cartSession{engine: cart.New(), lastUsed: time.Now()}
	s.sessions[id] = sess
	return id, sess
}

func (s *sessionStore) get(id string) (*cartSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if ok {
		sess.lastUsed = time.Now()
	}
	return sess, ok
}

// withSession runs fn holding the session lock, or responds 404 when the
// cart id is unknown or expired.
func withSession(c *gin.Context, sessions *sessionStore, fn func(sess *cartSession)) {
	sess, ok := sessions.get(c.Param("cartID"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "cart not found"})
		return
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	fn(sess)
}

func createCartHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, sess := sessions.create()
		c.JSON(http.StatusCreated, toCartResponse(id, sess.engine.Snapshot(), sess.engine.Now()))
	}
}

func getCartHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		withSession(c, sessions, func(sess *cartSession) {
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

type addItemRequest struct {
	ItemID      string `json:"itemId" binding:"required"`
	VariationID string `json:"variationId"`
	Complements []struct {
		OptionID string `json:"optionId"`
		Quantity int    `json:"quantity"`
	} `json:"complements"`
	Notes string `json:"notes"`
}

func addItemHandler(sessions *sessionStore, catalog *catalogsvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req addItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		st := currentStore(c)
		ctx := c.Request.Context()
		item, err := catalog.GetItem(ctx, st.ID, req.ItemID)
		if err != nil {
			respondError(c, err)
			return
		}
		groups, err := catalog.GroupsForItem(ctx, st.ID, *item)
		if err != nil {
			respondError(c, err)
			return
		}

		withSession(c, sessions, func(sess *cartSession) {
			line, err := addToCart(sess.engine, *item, groups, req)
			if err != nil {
				respondError(c, err)
				return
			}
			if req.Notes != "" {
				sess.engine.UpdateNotes(line.ID, req.Notes)
			}
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

// addToCart routes an add through the same gates the POS front end walks:
// variation first, then the complement picker when the category carries
// secondary groups, otherwise straight in.
func addToCart(e *cart.Engine, item domain.CatalogItem, groups []domain.OptionGroup, req addItemRequest) (domain.CartLine, error) {
	if cart.NeedsVariationPicker(item) {
		if req.VariationID == "" {
			return domain.CartLine{}, &domain.ValidationError{Field: "variationId", Message: "item requires a variation"}
		}
		for _, v := range item.Variations {
			if v.ID == req.VariationID {
				return e.ConfirmVariation(item, v), nil
			}
		}
		return domain.CartLine{}, &domain.ValidationError{Field: "variationId", Message: "unknown variation"}
	}

	if !cart.NeedsComplementPicker(item, groups) {
		return e.AddDirect(item, nil), nil
	}

	session := e.OpenComplementPicker(item, groups)
	for _, sel := range req.Complements {
		opt, group, ok := findOption(groups, sel.OptionID)
		if !ok {
			e.CancelSelection()
			return domain.CartLine{}, &domain.ValidationError{Field: "complements", Message: "unknown option " + sel.OptionID}
		}
		qty := sel.Quantity
		if qty <= 0 {
			qty = 1
		}
		var err error
		if group.Selection == domain.SelectionSingle {
			err = session.Toggle(opt, group)
		} else {
			err = session.AdjustQuantity(opt, group, qty)
		}
		if err != nil {
			e.CancelSelection()
			return domain.CartLine{}, err
		}
	}
	line, err := e.ConfirmComplementSelection()
	if err != nil {
		e.CancelSelection()
		return domain.CartLine{}, err
	}
	return line, nil
}

func findOption(groups []domain.OptionGroup, optionID string) (domain.OptionItem, domain.OptionGroup, bool) {
	for _, g := range groups {
		if g.Primary {
			continue
		}
		for _, it := range g.Items {
			if it.ID == optionID {
				return it, g, true
			}
		}
	}
	return domain.OptionItem{}, domain.OptionGroup{}, false
}

type updateLineRequest struct {
	Delta int     `json:"delta"`
	Notes *string `json:"notes"`
}

func updateLineHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateLineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		withSession(c, sessions, func(sess *cartSession) {
			if req.Delta != 0 {
				sess.engine.UpdateQuantity(c.Param("lineID"), req.Delta)
			}
			if req.Notes != nil {
				sess.engine.UpdateNotes(c.Param("lineID"), *req.Notes)
			}
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

func removeLineHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		withSession(c, sessions, func(sess *cartSession) {
			sess.engine.RemoveLine(c.Param("lineID"))
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

type discountRequest struct {
	Kind  domain.DiscountKind `json:"kind" binding:"required"`
	Value string              `json:"value" binding:"required"`
}

func setDiscountHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req discountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		var value int64
		switch req.Kind {
		case domain.DiscountFixed:
			cents, err := domain.ParseCents(req.Value)
			if err != nil {
				respondError(c, &domain.ValidationError{Field: "value", Message: "invalid amount"})
				return
			}
			value = cents
		case domain.DiscountPercentage:
			pct, err := parsePercent(req.Value)
			if err != nil {
				respondError(c, &domain.ValidationError{Field: "value", Message: "invalid percentage"})
				return
			}
			value = pct
		default:
			respondError(c, &domain.ValidationError{Field: "kind", Message: "unknown discount kind"})
			return
		}
		withSession(c, sessions, func(sess *cartSession) {
			sess.engine.SetManualDiscount(&domain.ManualDiscount{Kind: req.Kind, Value: value})
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

func clearDiscountHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		withSession(c, sessions, func(sess *cartSession) {
			sess.engine.SetManualDiscount(nil)
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

type rewardRequest struct {
	RewardID string `json:"rewardId" binding:"required"`
	Phone    string `json:"phone" binding:"required"`
}

func applyRewardHandler(sessions *sessionStore, loyalty *loyaltysvc.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req rewardRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		st := currentStore(c)
		reward, customer, err := loyalty.Validate(c.Request.Context(), st.ID, req.Phone, req.RewardID)
		if err != nil {
			respondError(c, err)
			return
		}
		withSession(c, sessions, func(sess *cartSession) {
			sess.engine.SetLoyaltyReward(reward)
			sess.engine.SetCustomer(customer.Name, customer.Phone)
			sess.loyaltyCustomerID = customer.ID
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

func clearRewardHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		withSession(c, sessions, func(sess *cartSession) {
			sess.engine.SetLoyaltyReward(nil)
			sess.loyaltyCustomerID = ""
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

type splitRequest struct {
	Parts []struct {
		Method string `json:"method" binding:"required"`
		Amount string `json:"amount" binding:"required"`
	} `json:"parts" binding:"required"`
}

func setSplitHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req splitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		sp := &domain.SplitPayment{}
		for _, p := range req.Parts {
			cents, err := domain.ParseCents(p.Amount)
			if err != nil {
				respondError(c, &domain.ValidationError{Field: "parts", Message: "invalid amount"})
				return
			}
			sp.Parts = append(sp.Parts, domain.SplitPart{Method: p.Method, AmountCents: cents})
		}
		withSession(c, sessions, func(sess *cartSession) {
			sess.engine.SetSplitPayment(sp)
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

type customerRequest struct {
	Name  string `json:"name" binding:"required"`
	Phone string `json:"phone"`
}

func setCustomerHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req customerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		withSession(c, sessions, func(sess *cartSession) {
			sess.engine.SetCustomer(req.Name, req.Phone)
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

func clearCartHandler(sessions *sessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		withSession(c, sessions, func(sess *cartSession) {
			sess.engine.Clear()
			sess.loyaltyCustomerID = ""
			c.JSON(http.StatusOK, toCartResponse(c.Param("cartID"), sess.engine.Snapshot(), sess.engine.Now()))
		})
	}
}

// parsePercent accepts a whole-number percentage.
func parsePercent(s string) (int64, error) {
	out, err := strconv.ParseInt(s, 10, 64)
	if err != nil || out < 0 || out > 100 {
		return 0, &domain.ValidationError{Field: "value", Message: "must be a percentage between 0 and 100"}
	}
	return out, nil
}
