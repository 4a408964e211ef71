package order

import "tableside/internal/domain"

// FlowView identifies which consumer is driving a transition. The kitchen
// board and the customer tracker historically render different stage lists,
// so both are kept explicit over the one canonical status enum instead of
// being unified.
type FlowView string

const (
	FlowKitchen  FlowView = "kitchen"
	FlowCustomer FlowView = "customer"
)

var kitchenFlow = []domain.Status{
	domain.StatusPending,
	domain.StatusPreparing,
	domain.StatusReady,
	domain.StatusDelivering,
	domain.StatusDelivered,
}

var customerFlow = []domain.Status{
	domain.StatusPending,
	domain.StatusConfirmed,
	domain.StatusPreparing,
	domain.StatusReady,
	domain.StatusDelivering,
	domain.StatusCompleted,
}

// Flow returns the ordered stage list for a consumer view.
func Flow(view FlowView) []domain.Status {
	if view == FlowCustomer {
		return customerFlow
	}
	return kitchenFlow
}

// Next returns the status following current in the view's flow. Transitions
// are strictly forward; ok is false at the tail, for a status outside the
// flow, and for the terminal cancelled state.
func Next(view FlowView, current domain.Status) (domain.Status, bool) {
	flow := Flow(view)
	for i, s := range flow {
		if s != current {
			continue
		}
		if i+1 >= len(flow) {
			return "", false
		}
		return flow[i+1], true
	}
	return "", false
}

// CanCancel reports whether an order can still be cancelled: any state that
// is not already terminal.
func CanCancel(current domain.Status) bool {
	return !current.Terminal()
}

// StageIndex maps a canonical status onto the view's column index, -1 when
// the view does not render it.
func StageIndex(view FlowView, s domain.Status) int {
	for i, st := range Flow(view) {
		if st == s {
			return i
		}
	}
	return -1
}
