package models

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func newSaleOrder(quantity int, price float64) *Order {
	order := NewOrder(OrderTypeSale)
	order.Customer = &Customer{Name: "Ali", Phone: "03001234567"}
	product := NewProduct("Widget", "cat", price/2, price)
	order.AddItem(NewOrderItem(order.ID, product, quantity, price))
	return order
}

func TestOrder_CalculateTotals(t *testing.T) {
	order := newSaleOrder(3, 10)
	order.TaxAmount = 2
	order.Discount = 1
	order.CalculateTotals()

	if order.Subtotal != 30 {
		t.Errorf("Subtotal = %.2f, want 30", order.Subtotal)
	}
	if order.TotalAmount != 31 {
		t.Errorf("TotalAmount = %.2f, want 31", order.TotalAmount)
	}
	if order.Status != OrderStatusPending {
		t.Errorf("Status = %s, want pending", order.Status)
	}

	var sum float64
	for _, item := range order.Items {
		sum += item.Subtotal
	}
	if sum != order.Subtotal {
		t.Errorf("sum of item subtotals %.2f != order subtotal %.2f", sum, order.Subtotal)
	}
}

func TestOrder_CalculateTotalsAllowsNegative(t *testing.T) {
	order := newSaleOrder(1, 10)
	order.Discount = 25
	order.CalculateTotals()

	if order.TotalAmount != -15 {
		t.Errorf("TotalAmount = %.2f, want -15", order.TotalAmount)
	}
}

func TestOrder_CalculateTotalsPrecision(t *testing.T) {
	order := newSaleOrder(3, 0.1)
	order.ShippingCost = 0.2
	order.CalculateTotals()

	if order.Subtotal != 0.3 {
		t.Errorf("Subtotal = %v, want 0.3", order.Subtotal)
	}
	if order.TotalAmount != 0.5 {
		t.Errorf("TotalAmount = %v, want 0.5", order.TotalAmount)
	}
}

func TestOrder_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(o *Order)
		wantErr bool
	}{
		{"valid sale", func(o *Order) {}, false},
		{"no items", func(o *Order) { o.Items = nil }, true},
		{"zero quantity", func(o *Order) { o.Items[0].Quantity = 0 }, true},
		{"sale without customer", func(o *Order) { o.Customer = nil }, true},
		{"sale without phone", func(o *Order) { o.Customer.Phone = " " }, true},
		{"purchase without supplier", func(o *Order) { o.OrderType = OrderTypePurchase }, true},
		{"purchase with supplier", func(o *Order) {
			o.OrderType = OrderTypePurchase
			id := "supplier-1"
			o.SupplierID = &id
		}, false},
		{"unknown type", func(o *Order) { o.OrderType = "rental" }, true},
		{"negative discount", func(o *Order) { o.Discount = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := newSaleOrder(1, 10)
			tt.mutate(order)
			err := order.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrValidation) {
				t.Errorf("Validate() error kind = %v, want ErrValidation", err)
			}
		})
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	at := time.UnixMilli(1700000012345)

	sale := GenerateOrderNumber(OrderTypeSale, at)
	if !regexp.MustCompile(`^SO-00012345-\d{3}$`).MatchString(sale) {
		t.Errorf("GenerateOrderNumber(sale) = %s", sale)
	}

	purchase := GenerateOrderNumber(OrderTypePurchase, at)
	if !regexp.MustCompile(`^PO-00012345-\d{3}$`).MatchString(purchase) {
		t.Errorf("GenerateOrderNumber(purchase) = %s", purchase)
	}
}

func TestNextOrderStatus(t *testing.T) {
	if _, err := NextOrderStatus(OrderStatusPending, OrderStatusProcessing); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("pending -> processing error = %v, want ErrInvalidTransition", err)
	}

	if _, err := NextOrderStatus(OrderStatusPending, "shipped"); !errors.Is(err, ErrValidation) {
		t.Errorf("pending -> shipped error = %v, want ErrValidation", err)
	}

	for _, terminal := range []OrderStatus{OrderStatusCompleted, OrderStatusCancelled} {
		if !terminal.IsTerminal() {
			t.Errorf("%s should be terminal", terminal)
		}
		for _, target := range OrderStatuses() {
			if _, err := NextOrderStatus(terminal, OrderStatus(target)); err == nil {
				t.Errorf("%s -> %s should fail", terminal, target)
			}
		}
	}
}

func TestApplyStatus_FullLifecycle(t *testing.T) {
	order := *newSaleOrder(1, 10)
	now := order.OrderDate.Add(50 * time.Hour)

	var err error
	for _, next := range []OrderStatus{OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCompleted} {
		order, err = ApplyStatus(order, next, now)
		if err != nil {
			t.Fatalf("ApplyStatus(%s) error = %v", next, err)
		}
	}

	if order.Status != OrderStatusCompleted {
		t.Errorf("Status = %s, want completed", order.Status)
	}
	if order.ActualDeliveryDate == nil || !order.ActualDeliveryDate.Equal(now) {
		t.Errorf("ActualDeliveryDate = %v, want %v", order.ActualDeliveryDate, now)
	}
	if days := order.DeliveryDays(); days == nil || *days != 3 {
		t.Errorf("DeliveryDays() = %v, want 3", days)
	}
	if order.CanBeCancelled() {
		t.Error("completed order should not be cancellable")
	}
}

func TestApplyStatus_DoesNotMutateInput(t *testing.T) {
	original := *newSaleOrder(1, 10)

	updated, err := ApplyStatus(original, OrderStatusConfirmed, Now())
	if err != nil {
		t.Fatalf("ApplyStatus() error = %v", err)
	}
	if original.Status != OrderStatusPending {
		t.Errorf("input status changed to %s", original.Status)
	}
	if updated.Status != OrderStatusConfirmed {
		t.Errorf("updated status = %s, want confirmed", updated.Status)
	}
}

func TestApplyStatus_KeepsExistingDeliveryDate(t *testing.T) {
	order := *newSaleOrder(1, 10)
	order.Status = OrderStatusProcessing
	delivered := order.OrderDate.Add(24 * time.Hour)
	order.ActualDeliveryDate = &delivered

	completed, err := ApplyStatus(order, OrderStatusCompleted, order.OrderDate.Add(72*time.Hour))
	if err != nil {
		t.Fatalf("ApplyStatus() error = %v", err)
	}
	if !completed.ActualDeliveryDate.Equal(delivered) {
		t.Errorf("ActualDeliveryDate = %v, want %v", completed.ActualDeliveryDate, delivered)
	}
}

func TestStockDeltas(t *testing.T) {
	order := newSaleOrder(3, 10)

	deltas := StockDeltas(order)
	if len(deltas) != 1 || deltas[0].Delta != -3 {
		t.Errorf("sale StockDeltas() = %+v, want -3", deltas)
	}
	reversed := ReverseStockDeltas(order)
	if reversed[0].Delta != 3 {
		t.Errorf("sale ReverseStockDeltas() = %+v, want +3", reversed)
	}

	order.OrderType = OrderTypePurchase
	if deltas := StockDeltas(order); deltas[0].Delta != 3 {
		t.Errorf("purchase StockDeltas() = %+v, want +3", deltas)
	}
	if reversed := ReverseStockDeltas(order); reversed[0].Delta != -3 {
		t.Errorf("purchase ReverseStockDeltas() = %+v, want -3", reversed)
	}
}

func TestOrder_Summary(t *testing.T) {
	order := newSaleOrder(2, 10)
	order.CalculateTotals()

	summary := order.Summary()
	if summary.CustomerName != "Ali" || summary.ItemCount != 1 || summary.TotalQuantity != 2 {
		t.Errorf("Summary() = %+v", summary)
	}

	order.Customer = nil
	if order.Summary().CustomerName != "N/A" {
		t.Errorf("Summary().CustomerName = %s, want N/A", order.Summary().CustomerName)
	}
	if order.DeliveryDays() != nil {
		t.Error("DeliveryDays() should be nil before delivery")
	}
}

func TestOrder_CountsTowardRevenue(t *testing.T) {
	order := newSaleOrder(1, 10)
	if order.CountsTowardRevenue() {
		t.Error("unpaid order should not count toward revenue")
	}

	order.PaymentStatus = PaymentStatusPartial
	if !order.CountsTowardRevenue() {
		t.Error("partially paid sale should count toward revenue")
	}

	order.Status = OrderStatusCancelled
	if order.CountsTowardRevenue() {
		t.Error("cancelled order should not count toward revenue")
	}
}

func TestParsePaymentStatus(t *testing.T) {
	if _, err := ParsePaymentStatus("refunded"); err != nil {
		t.Errorf("ParsePaymentStatus(refunded) error = %v", err)
	}
	if _, err := ParsePaymentStatus("overdue"); !errors.Is(err, ErrValidation) {
		t.Errorf("ParsePaymentStatus(overdue) error = %v, want ErrValidation", err)
	}
}
