package domain

import "strings"

// POStatus is the lifecycle status of a purchase order
type POStatus string

const (
	StatusDraft     POStatus = "draft"
	StatusPending   POStatus = "pending"
	StatusApproved  POStatus = "approved"
	StatusSent      POStatus = "sent"
	StatusConfirmed POStatus = "confirmed"
	StatusPartial   POStatus = "partial"
	StatusReceived  POStatus = "received"
	StatusCancelled POStatus = "cancelled"
)

// poTransitions is the full transition table. received is terminal;
// cancelled may only re-open to draft.
var poTransitions = map[POStatus][]POStatus{
	StatusDraft:     {StatusPending, StatusSent, StatusCancelled},
	StatusPending:   {StatusApproved, StatusSent, StatusCancelled},
	StatusApproved:  {StatusSent, StatusCancelled},
	StatusSent:      {StatusConfirmed, StatusPartial, StatusReceived, StatusCancelled},
	StatusConfirmed: {StatusPartial, StatusReceived, StatusCancelled},
	StatusPartial:   {StatusReceived, StatusCancelled},
	StatusReceived:  {},
	StatusCancelled: {StatusDraft},
}

// IsValid reports whether s is a known purchase order status.
func (s POStatus) IsValid() bool {
	_, ok := poTransitions[s]
	return ok
}

// CanTransitionTo reports whether the state machine permits moving from s
// to target.
func (s POStatus) CanTransitionTo(target POStatus) bool {
	for _, allowed := range poTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether s has no outgoing transitions.
func (s POStatus) IsTerminal() bool {
	return len(poTransitions[s]) == 0
}

// AllowsDeletion reports whether a purchase order in status s may be
// deleted together with its line items.
func (s POStatus) AllowsDeletion() bool {
	return s == StatusDraft || s == StatusCancelled
}

// AllowsReceiving reports whether line items may still be received against
// a purchase order in status s.
func (s POStatus) AllowsReceiving() bool {
	return s != StatusReceived && s != StatusCancelled
}

// ParsePOStatus returns the status for a given label (case-insensitive).
func ParsePOStatus(label string) (POStatus, bool) {
	s := POStatus(strings.ToLower(strings.TrimSpace(label)))
	if s.IsValid() {
		return s, true
	}
	return "", false
}

// DeriveReceivingStatus computes the status a purchase order should land in
// after a receiving batch: received when every line is complete, partial
// otherwise. The caller only applies the result when it differs from the
// current status.
func DeriveReceivingStatus(items []PurchaseOrderItem) POStatus {
	for i := range items {
		if !items[i].IsComplete() {
			return StatusPartial
		}
	}
	return StatusReceived
}

// OnOrderDeltasForTransition returns the stock level changes entailed by
// moving po from its current status to target. Entering sent/confirmed from
// a state that does not already commit stock adds every line's outstanding
// quantity to on_order, so a reopened partially received order commits only
// what is still owed. Cancelling a committed order, or closing it to
// received without a final receiving batch, releases each line's remaining
// quantity.
func OnOrderDeltasForTransition(po *PurchaseOrder, target POStatus) []StockDelta {
	var deltas []StockDelta

	switch target {
	case StatusSent, StatusConfirmed:
		if po.CommitsStock() {
			return nil
		}
		for i := range po.Items {
			remaining := po.Items[i].Remaining()
			if remaining <= 0 {
				continue
			}
			deltas = append(deltas, StockDelta{
				ComponentID: po.Items[i].ComponentID,
				OnOrder:     remaining,
			})
		}
	case StatusCancelled, StatusReceived:
		if !po.CommitsStock() || po.Status == StatusReceived {
			return nil
		}
		for i := range po.Items {
			remaining := po.Items[i].Remaining()
			if remaining <= 0 {
				continue
			}
			deltas = append(deltas, StockDelta{
				ComponentID: po.Items[i].ComponentID,
				OnOrder:     -remaining,
			})
		}
	}

	return deltas
}
