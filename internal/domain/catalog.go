package domain

import "time"

// ItemOrigin discriminates menu items from raw stock items. Stock items skip
// the variation and complement flows entirely.
type ItemOrigin string

const (
	OriginMenu  ItemOrigin = "menu"
	OriginStock ItemOrigin = "stock"
)

// SelectionType controls how many option items may be picked from a group.
type SelectionType string

const (
	SelectionSingle   SelectionType = "single"
	SelectionMultiple SelectionType = "multiple"
)

type CatalogItem struct {
	ID              string      `json:"id"`
	StoreID         string      `json:"-"`
	CategoryID      string      `json:"categoryId,omitempty"`
	Name            string      `json:"name"`
	Description     string      `json:"description,omitempty"`
	PriceCents      int64       `json:"priceCents"`
	PromoPriceCents *int64      `json:"promoPriceCents,omitempty"`
	PromoStartsAt   *time.Time  `json:"promoStartsAt,omitempty"`
	PromoEndsAt     *time.Time  `json:"promoEndsAt,omitempty"`
	Active          bool        `json:"active"`
	Origin          ItemOrigin  `json:"origin"`
	Variations      []Variation `json:"variations,omitempty"`
	SortOrder       int         `json:"sortOrder"`
}

// Variation is a named alternative of an item with an absolute price that
// replaces the item's effective price. Variations are not promotion-aware.
type Variation struct {
	ID         string `json:"id"`
	ItemID     string `json:"-"`
	Name       string `json:"name"`
	PriceCents int64  `json:"priceCents"`
}

type OptionGroup struct {
	ID            string        `json:"id"`
	StoreID       string        `json:"-"`
	CategoryID    string        `json:"categoryId"`
	Name          string        `json:"name"`
	Selection     SelectionType `json:"selection"`
	Required      bool          `json:"required"`
	MinSelections int           `json:"minSelections"`
	// MaxSelections is nil when the group is unbounded.
	MaxSelections *int         `json:"maxSelections,omitempty"`
	Primary       bool         `json:"primary"`
	SortOrder     int          `json:"sortOrder"`
	Items         []OptionItem `json:"items,omitempty"`
}

type OptionItem struct {
	ID              string     `json:"id"`
	GroupID         string     `json:"groupId"`
	Name            string     `json:"name"`
	PriceCents      *int64     `json:"priceCents,omitempty"`
	PromoPriceCents *int64     `json:"promoPriceCents,omitempty"`
	PromoStartsAt   *time.Time `json:"promoStartsAt,omitempty"`
	PromoEndsAt     *time.Time `json:"promoEndsAt,omitempty"`
	Active          bool       `json:"active"`
	SortOrder       int        `json:"sortOrder"`
}
