package models

import "time"

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusConfirmed, OrderStatusCancelled},
	OrderStatusConfirmed:  {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusCancelled},
	OrderStatusCompleted:  {},
	OrderStatusCancelled:  {},
}

// AllowedTransitions returns the statuses reachable from the given one
func AllowedTransitions(from OrderStatus) []OrderStatus {
	return append([]OrderStatus(nil), orderTransitions[from]...)
}

// CanTransition reports whether from -> to is an edge of the lifecycle graph
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports a status with no outgoing transitions
func (s OrderStatus) IsTerminal() bool {
	return len(orderTransitions[s]) == 0
}

// NextOrderStatus validates a requested transition
func NextOrderStatus(current, target OrderStatus) (OrderStatus, error) {
	if v := ValidateEnum(string(target), OrderStatuses(), "status"); v != nil {
		return current, NewValidationErrors("order", []ValidationError{*v})
	}
	if !CanTransition(current, target) {
		return current, NewInvalidTransitionError(current, target)
	}
	return target, nil
}

// ApplyStatus returns a copy of the order moved to target. Completing an
// order stamps the actual delivery date if it is not already set.
func ApplyStatus(order Order, target OrderStatus, now time.Time) (Order, error) {
	next, err := NextOrderStatus(order.Status, target)
	if err != nil {
		return order, err
	}

	order.Status = next
	if next == OrderStatusCompleted && order.ActualDeliveryDate == nil {
		delivered := now
		order.ActualDeliveryDate = &delivered
	}
	order.UpdatedAt = now
	return order, nil
}

// StockDelta is a signed change to one product's stock
type StockDelta struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Delta       int    `json:"delta"`
}

// StockDeltas returns the stock changes an order applies: sales remove
// stock and purchases add it.
func StockDeltas(order *Order) []StockDelta {
	sign := -1
	if order.IsPurchase() {
		sign = 1
	}
	deltas := make([]StockDelta, 0, len(order.Items))
	for _, item := range order.Items {
		deltas = append(deltas, StockDelta{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Delta:       sign * item.Quantity,
		})
	}
	return deltas
}

// ReverseStockDeltas returns the changes that undo StockDeltas
func ReverseStockDeltas(order *Order) []StockDelta {
	deltas := StockDeltas(order)
	for i := range deltas {
		deltas[i].Delta = -deltas[i].Delta
	}
	return deltas
}

// ParsePaymentStatus validates a payment status value
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	if v := ValidateEnum(value, PaymentStatuses(), "payment_status"); v != nil {
		return "", NewValidationErrors("order", []ValidationError{*v})
	}
	return PaymentStatus(value), nil
}
