package httpserver

import (
	"time"

	"tableside/internal/cart"
	"tableside/internal/domain"
	"tableside/internal/pricing"
	checkoutsvc "tableside/internal/service/checkout"
	ordersvc "tableside/internal/service/order"
)

// Money travels as decimal strings with two fraction digits; cents stay
// internal.

type storeResponse struct {
	ID          string `json:"id"`
	Key         string `json:"key"`
	Name        string `json:"name"`
	DeliveryFee string `json:"deliveryFee"`
}

func toStoreResponse(st *domain.Store) storeResponse {
	return storeResponse{
		ID:          st.ID,
		Key:         st.Key,
		Name:        st.Name,
		DeliveryFee: domain.FormatCents(st.DeliveryFeeCents),
	}
}

type menuItemResponse struct {
	ID          string              `json:"id"`
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Origin      domain.ItemOrigin   `json:"origin"`
	Price       string              `json:"price"`
	PromoActive bool                `json:"promoActive"`
	Variations  []variationResponse `json:"variations,omitempty"`
}

type variationResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func toMenuItemResponse(item domain.CatalogItem, now time.Time) menuItemResponse {
	out := menuItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Origin:      item.Origin,
		Price:       domain.FormatCents(pricing.EffectivePrice(item, now)),
		PromoActive: pricing.EffectivePrice(item, now) != item.PriceCents,
	}
	for _, v := range item.Variations {
		out.Variations = append(out.Variations, variationResponse{
			ID:    v.ID,
			Name:  v.Name,
			Price: domain.FormatCents(v.PriceCents),
		})
	}
	return out
}

type optionGroupResponse struct {
	ID            string               `json:"id"`
	Name          string               `json:"name"`
	Selection     domain.SelectionType `json:"selection"`
	Required      bool                 `json:"required"`
	MinSelections int                  `json:"minSelections"`
	MaxSelections *int                 `json:"maxSelections,omitempty"`
	Primary       bool                 `json:"primary"`
	Items         []optionItemResponse `json:"items"`
}

type optionItemResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Price string `json:"price"`
}

func toOptionGroupResponse(g domain.OptionGroup, now time.Time) optionGroupResponse {
	out := optionGroupResponse{
		ID:            g.ID,
		Name:          g.Name,
		Selection:     g.Selection,
		Required:      g.Required,
		MinSelections: g.MinSelections,
		MaxSelections: g.MaxSelections,
		Primary:       g.Primary,
		Items:         []optionItemResponse{},
	}
	for _, it := range g.Items {
		out.Items = append(out.Items, optionItemResponse{
			ID:    it.ID,
			Name:  it.Name,
			Price: domain.FormatCents(pricing.OptionPrice(it, now)),
		})
	}
	return out
}

type cartResponse struct {
	ID              string             `json:"id"`
	Lines           []cartLineResponse `json:"lines"`
	Subtotal        string             `json:"subtotal"`
	ManualDiscount  string             `json:"manualDiscount"`
	LoyaltyDiscount string             `json:"loyaltyDiscount"`
	Total           string             `json:"total"`
	CustomerName    string             `json:"customerName"`
	CustomerPhone   string             `json:"customerPhone,omitempty"`
}

type cartLineResponse struct {
	ID          string               `json:"id"`
	ItemID      string               `json:"itemId"`
	Name        string               `json:"name"`
	Variation   string               `json:"variation,omitempty"`
	Quantity    int                  `json:"quantity"`
	UnitPrice   string               `json:"unitPrice"`
	Total       string               `json:"total"`
	Complements []complementResponse `json:"complements,omitempty"`
	Notes       string               `json:"notes,omitempty"`
}

type complementResponse struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

func toCartResponse(id string, snap cart.Snapshot, now time.Time) cartResponse {
	out := cartResponse{
		ID:              id,
		Lines:           []cartLineResponse{},
		Subtotal:        domain.FormatCents(snap.SubtotalCents),
		ManualDiscount:  domain.FormatCents(snap.ManualCents),
		LoyaltyDiscount: domain.FormatCents(snap.LoyaltyCents),
		Total:           domain.FormatCents(snap.TotalCents),
		CustomerName:    snap.CustomerName,
		CustomerPhone:   snap.CustomerPhone,
	}
	for _, line := range snap.Lines {
		lr := cartLineResponse{
			ID:        line.ID,
			ItemID:    line.Item.ID,
			Name:      line.Item.Name,
			Quantity:  line.Quantity,
			UnitPrice: domain.FormatCents(pricing.UnitPrice(line, now)),
			Total:     domain.FormatCents(pricing.LineTotal(line, now)),
			Notes:     line.Notes,
		}
		if line.Variation != nil {
			lr.Variation = line.Variation.Name
		}
		for _, comp := range line.Complements {
			lr.Complements = append(lr.Complements, complementResponse{
				Name:     comp.Item.Name,
				Quantity: comp.Quantity,
				Price:    domain.FormatCents(pricing.OptionPrice(comp.Item, now)),
			})
		}
		out.Lines = append(out.Lines, lr)
	}
	return out
}

type totalsResponse struct {
	Subtotal    string `json:"subtotal"`
	DeliveryFee string `json:"deliveryFee"`
	Discount    string `json:"discount"`
	Total       string `json:"total"`
	CouponCode  string `json:"couponCode,omitempty"`
}

func toTotalsResponse(t *checkoutsvc.Totals) totalsResponse {
	out := totalsResponse{
		Subtotal:    domain.FormatCents(t.SubtotalCents),
		DeliveryFee: domain.FormatCents(t.DeliveryFeeCents),
		Discount:    domain.FormatCents(t.DiscountCents),
		Total:       domain.FormatCents(t.TotalCents),
	}
	if t.Coupon != nil {
		out.CouponCode = t.Coupon.Coupon.Code
	}
	return out
}

type orderResponse struct {
	ID            string              `json:"id"`
	Sequence      int64               `json:"sequence"`
	Status        domain.Status       `json:"status"`
	Service       domain.ServiceType  `json:"service"`
	PaymentMethod string              `json:"paymentMethod"`
	CustomerName  string              `json:"customerName"`
	CustomerPhone string              `json:"customerPhone,omitempty"`
	Address       string              `json:"address,omitempty"`
	TableRef      string              `json:"tableRef,omitempty"`
	Items         []orderItemResponse `json:"items"`
	Subtotal      string              `json:"subtotal"`
	DeliveryFee   string              `json:"deliveryFee"`
	Discount      string              `json:"discount"`
	Total         string              `json:"total"`
	CouponCode    string              `json:"couponCode,omitempty"`
	Stage         int                 `json:"stage"`
	StageCount    int                 `json:"stageCount"`
	CreatedAt     time.Time           `json:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt"`
}

type orderItemResponse struct {
	Name      string               `json:"name"`
	Variation string               `json:"variation,omitempty"`
	Quantity  int                  `json:"quantity"`
	UnitPrice string               `json:"unitPrice"`
	Total     string               `json:"total"`
	Modifiers []complementResponse `json:"modifiers,omitempty"`
	Notes     string               `json:"notes,omitempty"`
}

func toOrderResponse(o *domain.Order, view ordersvc.FlowView) orderResponse {
	out := orderResponse{
		ID:            o.ID,
		Sequence:      o.Sequence,
		Status:        o.Status,
		Service:       o.Service,
		PaymentMethod: o.PaymentMethod,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		Address:       o.Address,
		TableRef:      o.TableRef,
		Items:         []orderItemResponse{},
		Subtotal:      domain.FormatCents(o.SubtotalCents),
		DeliveryFee:   domain.FormatCents(o.DeliveryFeeCents),
		Discount:      domain.FormatCents(o.DiscountCents),
		Total:         domain.FormatCents(o.TotalCents),
		CouponCode:    o.CouponCode,
		Stage:         ordersvc.StageIndex(view, o.Status),
		StageCount:    len(ordersvc.Flow(view)),
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	for _, it := range o.Items {
		ir := orderItemResponse{
			Name:      it.Name,
			Variation: it.VariationName,
			Quantity:  it.Quantity,
			UnitPrice: domain.FormatCents(it.UnitPriceCents),
			Total:     domain.FormatCents(it.TotalCents),
			Notes:     it.Notes,
		}
		for _, m := range it.Modifiers {
			ir.Modifiers = append(ir.Modifiers, complementResponse{
				Name:     m.Name,
				Quantity: m.Quantity,
				Price:    domain.FormatCents(m.PriceCents),
			})
		}
		out.Items = append(out.Items, ir)
	}
	return out
}
