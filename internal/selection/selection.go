// Package selection enforces per-group cardinality rules while a customer or
// operator composes a cart line's complements.
package selection

import (
	"tableside/internal/domain"
)

// Session holds the selected quantity per option item for one group-picking
// interaction. A fresh Session is created every time a picker opens.
type Session struct {
	quantities map[string]int
}

func NewSession() *Session {
	return &Session{quantities: make(map[string]int)}
}

// Quantity returns the selected quantity for an option item id.
func (s *Session) Quantity(itemID string) int {
	return s.quantities[itemID]
}

// GroupTotal is the aggregate selected quantity across a group's items.
func (s *Session) GroupTotal(group domain.OptionGroup) int {
	total := 0
	for _, it := range group.Items {
		total += s.quantities[it.ID]
	}
	return total
}

// Toggle flips an item between selected (quantity 1) and unselected. For
// single-selection groups every other selection in the group is cleared
// first, giving radio semantics. For multiple-selection groups the toggle is
// rejected when it would push the group total past its max; state is left
// untouched on rejection.
func (s *Session) Toggle(item domain.OptionItem, group domain.OptionGroup) error {
	if s.quantities[item.ID] > 0 {
		delete(s.quantities, item.ID)
		return nil
	}

	if group.Selection == domain.SelectionSingle {
		for _, it := range group.Items {
			delete(s.quantities, it.ID)
		}
		s.quantities[item.ID] = 1
		return nil
	}

	if group.MaxSelections != nil && s.GroupTotal(group)+1 > *group.MaxSelections {
		return domain.Validationf("%s allows at most %d selections", group.Name, *group.MaxSelections)
	}
	s.quantities[item.ID] = 1
	return nil
}

// AdjustQuantity changes an item's selected quantity by delta. The result is
// clamped at zero (removing the entry) and the change is rejected outright,
// with no partial application, when it would exceed the group's max.
func (s *Session) AdjustQuantity(item domain.OptionItem, group domain.OptionGroup, delta int) error {
	next := s.quantities[item.ID] + delta
	if next <= 0 {
		delete(s.quantities, item.ID)
		return nil
	}
	if group.MaxSelections != nil {
		if s.GroupTotal(group)-s.quantities[item.ID]+next > *group.MaxSelections {
			return domain.Validationf("%s allows at most %d selections", group.Name, *group.MaxSelections)
		}
	}
	s.quantities[item.ID] = next
	return nil
}

// ValidateRequired checks every required group's minimum against the session.
// The first violation is returned as a validation error naming the group.
func (s *Session) ValidateRequired(groups []domain.OptionGroup) error {
	for _, g := range groups {
		if !g.Required {
			continue
		}
		min := g.MinSelections
		if min < 1 {
			min = 1
		}
		if s.GroupTotal(g) < min {
			return &domain.ValidationError{
				Field:   g.Name,
				Message: "selection required",
			}
		}
	}
	return nil
}

// Selections resolves the session into complement selections, preserving the
// display order of the groups and their items.
func (s *Session) Selections(groups []domain.OptionGroup) []domain.ComplementSelection {
	var out []domain.ComplementSelection
	for _, g := range groups {
		for _, it := range g.Items {
			if qty := s.quantities[it.ID]; qty > 0 {
				out = append(out, domain.ComplementSelection{Item: it, Quantity: qty})
			}
		}
	}
	return out
}
