// Package cart implements the in-memory order composition engine shared by
// the storefront checkout and the staff point of sale. One Engine holds one
// customer's (or one POS terminal's) session; callers serialize access.
package cart

import (
	"time"

	"github.com/google/uuid"

	"tableside/internal/domain"
	"tableside/internal/pricing"
	"tableside/internal/selection"
)

// DefaultCustomerName is what a cleared POS session shows until staff enter a
// name.
const DefaultCustomerName = "Guest"

// Engine owns the cart lines and the cart-level discount state. Derived
// values are recomputed on every read, never cached across mutations.
type Engine struct {
	lines []domain.CartLine

	manual  *domain.ManualDiscount
	reward  *domain.LoyaltyReward
	split   *domain.SplitPayment
	pending *pendingLine

	customerName  string
	customerPhone string

	now func() time.Time
}

// pendingLine is an item routed through the variation or complement picker
// before a line is committed.
type pendingLine struct {
	item    domain.CatalogItem
	groups  []domain.OptionGroup
	session *selection.Session
}

func New() *Engine {
	return &Engine{
		customerName: DefaultCustomerName,
		now:          time.Now,
	}
}

// NewWithClock builds an engine with a fixed reference clock, used by tests
// exercising promotion windows.
func NewWithClock(now func() time.Time) *Engine {
	e := New()
	e.now = now
	return e
}

// Lines returns the cart lines in insertion order.
func (e *Engine) Lines() []domain.CartLine {
	return e.lines
}

// AddDirect appends a new line with quantity 1, bypassing the pickers. Used
// for stock items, items without variations, and items whose category has no
// secondary option groups.
func (e *Engine) AddDirect(item domain.CatalogItem, complements []domain.ComplementSelection) domain.CartLine {
	line := domain.CartLine{
		ID:          uuid.NewString(),
		Item:        item,
		Quantity:    1,
		Complements: complements,
	}
	e.lines = append(e.lines, line)
	return line
}

// NeedsVariationPicker reports whether adding this item must go through
// variation selection. Stock items never do.
func NeedsVariationPicker(item domain.CatalogItem) bool {
	return item.Origin != domain.OriginStock && len(item.Variations) > 0
}

// NeedsComplementPicker reports whether adding this item must go through the
// complement picker, given the secondary option groups of its category.
func NeedsComplementPicker(item domain.CatalogItem, groups []domain.OptionGroup) bool {
	if item.Origin == domain.OriginStock {
		return false
	}
	for _, g := range groups {
		if !g.Primary {
			return true
		}
	}
	return false
}

// ConfirmVariation commits a line for an item routed through the variation
// picker. The line's effective price becomes the variation's absolute price.
func (e *Engine) ConfirmVariation(item domain.CatalogItem, variation domain.Variation) domain.CartLine {
	v := variation
	line := domain.CartLine{
		ID:        uuid.NewString(),
		Item:      item,
		Quantity:  1,
		Variation: &v,
	}
	e.lines = append(e.lines, line)
	return line
}

// OpenComplementPicker starts a selection session for an item whose category
// has secondary option groups. Only the secondary groups participate.
func (e *Engine) OpenComplementPicker(item domain.CatalogItem, groups []domain.OptionGroup) *selection.Session {
	secondary := make([]domain.OptionGroup, 0, len(groups))
	for _, g := range groups {
		if !g.Primary {
			secondary = append(secondary, g)
		}
	}
	e.pending = &pendingLine{
		item:    item,
		groups:  secondary,
		session: selection.NewSession(),
	}
	return e.pending.session
}

// ConfirmComplementSelection validates required groups against the open
// picker session and commits the line. No line is added when a required
// group is unmet; the error names the group.
func (e *Engine) ConfirmComplementSelection() (domain.CartLine, error) {
	if e.pending == nil {
		return domain.CartLine{}, domain.Validationf("no item selection in progress")
	}
	p := e.pending
	if err := p.session.ValidateRequired(p.groups); err != nil {
		return domain.CartLine{}, err
	}
	line := e.AddDirect(p.item, p.session.Selections(p.groups))
	e.pending = nil
	return line, nil
}

// CancelSelection discards any open picker session without adding a line.
func (e *Engine) CancelSelection() {
	e.pending = nil
}

// UpdateQuantity changes a line's quantity by delta. A resulting quantity of
// zero or below removes the line entirely.
func (e *Engine) UpdateQuantity(lineID string, delta int) {
	for i := range e.lines {
		if e.lines[i].ID != lineID {
			continue
		}
		e.lines[i].Quantity += delta
		if e.lines[i].Quantity <= 0 {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
		}
		return
	}
}

// RemoveLine deletes a line regardless of quantity.
func (e *Engine) RemoveLine(lineID string) {
	for i := range e.lines {
		if e.lines[i].ID == lineID {
			e.lines = append(e.lines[:i], e.lines[i+1:]...)
			return
		}
	}
}

// UpdateNotes replaces the free-text note on a line.
func (e *Engine) UpdateNotes(lineID, text string) {
	for i := range e.lines {
		if e.lines[i].ID == lineID {
			e.lines[i].Notes = text
			return
		}
	}
}

// SetManualDiscount applies or clears (nil) the operator discount.
func (e *Engine) SetManualDiscount(d *domain.ManualDiscount) {
	e.manual = d
}

// SetLoyaltyReward applies or clears (nil) the redeemed reward.
func (e *Engine) SetLoyaltyReward(r *domain.LoyaltyReward) {
	e.reward = r
}

// SetSplitPayment applies or clears (nil) the split payment breakdown.
func (e *Engine) SetSplitPayment(sp *domain.SplitPayment) {
	e.split = sp
}

func (e *Engine) SplitPayment() *domain.SplitPayment { return e.split }

// SetCustomer records the customer metadata shown on the order.
func (e *Engine) SetCustomer(name, phone string) {
	if name != "" {
		e.customerName = name
	}
	e.customerPhone = phone
}

func (e *Engine) CustomerName() string  { return e.customerName }
func (e *Engine) CustomerPhone() string { return e.customerPhone }

// Clear is the authoritative "new order" reset: it empties the lines and
// returns every cart-level field (discounts, reward, split payment, customer
// metadata, open picker) to its default. Calling it twice is a no-op the
// second time.
func (e *Engine) Clear() {
	e.lines = nil
	e.manual = nil
	e.reward = nil
	e.split = nil
	e.pending = nil
	e.customerName = DefaultCustomerName
	e.customerPhone = ""
}

// Subtotal is the sum of every line total at the engine's reference clock.
func (e *Engine) Subtotal() int64 {
	var sum int64
	now := e.now()
	for _, line := range e.lines {
		sum += pricing.LineTotal(line, now)
	}
	return sum
}

// ManualDiscountAmount resolves the operator discount against the current
// subtotal, capped at the subtotal.
func (e *Engine) ManualDiscountAmount() int64 {
	if e.manual == nil {
		return 0
	}
	subtotal := e.Subtotal()
	var amount int64
	switch e.manual.Kind {
	case domain.DiscountPercentage:
		amount = pricing.PercentOf(subtotal, e.manual.Value)
	default:
		amount = e.manual.Value
	}
	return pricing.ClampDiscount(amount, subtotal)
}

// LoyaltyDiscountAmount is the redeemed reward's discount, capped at what the
// manual discount left of the subtotal.
func (e *Engine) LoyaltyDiscountAmount() int64 {
	if e.reward == nil {
		return 0
	}
	remaining := e.Subtotal() - e.ManualDiscountAmount()
	return pricing.ClampDiscount(e.reward.DiscountCents, remaining)
}

// FinalTotal is the subtotal minus the stacked manual and loyalty discounts,
// never negative. Delivery fee and coupon are layered in by checkout, which
// owns those concerns.
func (e *Engine) FinalTotal() int64 {
	total := e.Subtotal() - e.ManualDiscountAmount() - e.LoyaltyDiscountAmount()
	if total < 0 {
		return 0
	}
	return total
}

// Snapshot captures the engine state for order submission. It carries the
// raw manual discount alongside the derived amounts so Restore can rebuild
// the engine exactly.
type Snapshot struct {
	Lines         []domain.CartLine
	Manual        *domain.ManualDiscount
	SubtotalCents int64
	ManualCents   int64
	LoyaltyCents  int64
	TotalCents    int64
	Reward        *domain.LoyaltyReward
	Split         *domain.SplitPayment
	CustomerName  string
	CustomerPhone string
}

// Snapshot freezes the current cart for checkout. The engine itself is left
// untouched; Restore rebuilds it from the snapshot when a submission fails.
func (e *Engine) Snapshot() Snapshot {
	lines := make([]domain.CartLine, len(e.lines))
	copy(lines, e.lines)
	var manual *domain.ManualDiscount
	if e.manual != nil {
		m := *e.manual
		manual = &m
	}
	var reward *domain.LoyaltyReward
	if e.reward != nil {
		r := *e.reward
		reward = &r
	}
	var split *domain.SplitPayment
	if e.split != nil {
		s := *e.split
		split = &s
	}
	return Snapshot{
		Lines:         lines,
		Manual:        manual,
		SubtotalCents: e.Subtotal(),
		ManualCents:   e.ManualDiscountAmount(),
		LoyaltyCents:  e.LoyaltyDiscountAmount(),
		TotalCents:    e.FinalTotal(),
		Reward:        reward,
		Split:         split,
		CustomerName:  e.customerName,
		CustomerPhone: e.customerPhone,
	}
}

// Restore replaces the engine state with a previously taken snapshot. Any
// picker open at restore time is discarded.
func (e *Engine) Restore(snap Snapshot) {
	e.lines = make([]domain.CartLine, len(snap.Lines))
	copy(e.lines, snap.Lines)
	e.manual = nil
	if snap.Manual != nil {
		m := *snap.Manual
		e.manual = &m
	}
	e.reward = nil
	if snap.Reward != nil {
		r := *snap.Reward
		e.reward = &r
	}
	e.split = nil
	if snap.Split != nil {
		s := *snap.Split
		e.split = &s
	}
	e.pending = nil
	e.customerName = snap.CustomerName
	e.customerPhone = snap.CustomerPhone
}

// Now exposes the engine's reference clock for pricing display.
func (e *Engine) Now() time.Time { return e.now() }
