package coupon

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableside/internal/domain"
)

type stubRepo struct {
	coupon       *domain.Coupon
	getErr       error
	customerUses int
	countErr     error
	registerErr  error

	lastCode      string
	lastPhone     string
	lastNormPhone string
	lastOrderID   string
}

func (s *stubRepo) GetByCode(_ context.Context, _, code string) (*domain.Coupon, error) {
	s.lastCode = code
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.coupon, nil
}

func (s *stubRepo) CountUsesByCustomer(_ context.Context, _, phone, normalized string) (int, error) {
	s.lastPhone = phone
	s.lastNormPhone = normalized
	return s.customerUses, s.countErr
}

func (s *stubRepo) RegisterUse(_ context.Context, _, phone, orderID string) error {
	s.lastPhone = phone
	s.lastOrderID = orderID
	return s.registerErr
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }

func fixedNow() time.Time {
	return time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
}

func newService(repo couponRepo) *Service {
	return &Service{repo: repo, now: fixedNow}
}

func validCoupon() *domain.Coupon {
	return &domain.Coupon{
		ID:     "cup-1",
		Code:   "SAVE20",
		Type:   domain.CouponPercentage,
		Value:  20,
		Active: true,
	}
}

func TestResolveNotFound(t *testing.T) {
	svc := newService(&stubRepo{getErr: domain.ErrNotFound})
	_, err := svc.Resolve(context.Background(), "store", "NOPE", 4590, 0, "")
	if err == nil || !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveInactiveBehavesAsNotFound(t *testing.T) {
	c := validCoupon()
	c.Active = false
	svc := newService(&stubRepo{coupon: c})
	_, err := svc.Resolve(context.Background(), "store", "SAVE20", 4590, 0, "")
	if err == nil || !domain.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestResolveCodeNormalized(t *testing.T) {
	repo := &stubRepo{coupon: validCoupon()}
	svc := newService(repo)
	if _, err := svc.Resolve(context.Background(), "store", "  save20 ", 4590, 0, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastCode != "SAVE20" {
		t.Fatalf("code not normalized: %q", repo.lastCode)
	}
}

func TestResolveTimeWindow(t *testing.T) {
	future := validCoupon()
	future.ValidFrom = timePtr(fixedNow().Add(time.Hour))
	svc := newService(&stubRepo{coupon: future})
	if _, err := svc.Resolve(context.Background(), "store", "SAVE20", 4590, 0, ""); err == nil || !domain.IsValidation(err) {
		t.Fatalf("expected not-yet-valid error, got %v", err)
	}

	expired := validCoupon()
	expired.ValidUntil = timePtr(fixedNow().Add(-time.Hour))
	svc = newService(&stubRepo{coupon: expired})
	if _, err := svc.Resolve(context.Background(), "store", "SAVE20", 4590, 0, ""); err == nil || !domain.IsValidation(err) {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestResolveGlobalCapConflict(t *testing.T) {
	c := validCoupon()
	c.UsageLimit = intPtr(10)
	c.UsedCount = 10
	svc := newService(&stubRepo{coupon: c})
	_, err := svc.Resolve(context.Background(), "store", "SAVE20", 4590, 0, "")
	if err == nil || !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestResolvePerCustomerCap(t *testing.T) {
	c := validCoupon()
	c.PerCustomerLimit = intPtr(1)
	repo := &stubRepo{coupon: c, customerUses: 1}
	svc := newService(repo)
	_, err := svc.Resolve(context.Background(), "store", "SAVE20", 4590, 0, "(11) 99999-0000")
	if err == nil || !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if repo.lastPhone != "(11) 99999-0000" || repo.lastNormPhone != "11999990000" {
		t.Fatalf("phone forms not both checked: raw=%q normalized=%q", repo.lastPhone, repo.lastNormPhone)
	}
}

func TestResolveMinimumOrderValue(t *testing.T) {
	c := validCoupon()
	c.MinOrderCents = 5000
	svc := newService(&stubRepo{coupon: c})
	_, err := svc.Resolve(context.Background(), "store", "SAVE20", 4590, 0, "")
	if err == nil || !domain.IsValidation(err) {
		t.Fatalf("expected minimum-order error, got %v", err)
	}
}

func TestResolveDiscountByType(t *testing.T) {
	cases := []struct {
		name         string
		typ          domain.CouponType
		value        int64
		wantSubtotal int64
		wantDelivery int64
		wantFree     bool
	}{
		{"fixed", domain.CouponFixed, 1000, 1000, 0, false},
		{"fixed capped at subtotal", domain.CouponFixed, 10000, 4590, 0, false},
		{"percentage", domain.CouponPercentage, 20, 918, 0, false},
		{"free shipping", domain.CouponFreeShipping, 0, 0, 0, true},
		{"combined", domain.CouponCombined, 10, 459, 0, true},
		{"delivery discount", domain.CouponDeliveryDiscount, 50, 0, 400, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := validCoupon()
			c.Type = tc.typ
			c.Value = tc.value
			svc := newService(&stubRepo{coupon: c})

			applied, err := svc.Resolve(context.Background(), "store", "SAVE20", 4590, 800, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if applied.SubtotalDiscountCents != tc.wantSubtotal {
				t.Fatalf("subtotal discount = %d, want %d", applied.SubtotalDiscountCents, tc.wantSubtotal)
			}
			if applied.DeliveryDiscountCents != tc.wantDelivery {
				t.Fatalf("delivery discount = %d, want %d", applied.DeliveryDiscountCents, tc.wantDelivery)
			}
			if applied.FreeDelivery != tc.wantFree {
				t.Fatalf("free delivery = %v, want %v", applied.FreeDelivery, tc.wantFree)
			}
		})
	}
}

func TestCommitPassesThroughConflict(t *testing.T) {
	repo := &stubRepo{registerErr: domain.Conflictf("usage limit reached")}
	svc := newService(repo)
	err := svc.Commit(context.Background(), "cup-1", "11999990000", "order-1")
	if err == nil || !domain.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestCommitWrapsRepoFailure(t *testing.T) {
	repo := &stubRepo{registerErr: errors.New("connection reset")}
	svc := newService(repo)
	err := svc.Commit(context.Background(), "cup-1", "11999990000", "order-1")
	var ie *domain.IntegrationError
	if !errors.As(err, &ie) {
		t.Fatalf("expected integration error, got %v", err)
	}
	if repo.lastOrderID != "order-1" {
		t.Fatalf("order id not passed: %q", repo.lastOrderID)
	}
}
