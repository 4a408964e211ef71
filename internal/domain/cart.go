package domain

// ComplementSelection is one add-on picked from a secondary option group,
// attached to a cart line with its own quantity.
type ComplementSelection struct {
	Item     OptionItem `json:"item"`
	Quantity int        `json:"quantity"`
}

// CartLine is one addable unit in a cart: a root item plus either a chosen
// variation or a list of complements, never both.
type CartLine struct {
	ID          string                `json:"id"`
	Item        CatalogItem           `json:"item"`
	Quantity    int                   `json:"quantity"`
	Variation   *Variation            `json:"variation,omitempty"`
	Complements []ComplementSelection `json:"complements,omitempty"`
	Notes       string                `json:"notes,omitempty"`
}

// DiscountKind classifies an operator-entered manual discount.
type DiscountKind string

const (
	DiscountFixed      DiscountKind = "fixed"
	DiscountPercentage DiscountKind = "percentage"
)

// ManualDiscount is entered by staff at the point of sale, independent of any
// coupon. Value is cents for fixed discounts and whole percent otherwise.
type ManualDiscount struct {
	Kind  DiscountKind `json:"kind"`
	Value int64        `json:"value"`
}

// SplitPayment records how a POS total is divided across payment methods.
type SplitPayment struct {
	Parts []SplitPart `json:"parts"`
}

type SplitPart struct {
	Method      string `json:"method"`
	AmountCents int64  `json:"amountCents"`
}
