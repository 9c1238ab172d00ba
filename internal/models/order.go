package models

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderType distinguishes outgoing sales from incoming purchases
type OrderType string

const (
	OrderTypeSale     OrderType = "sale"
	OrderTypePurchase OrderType = "purchase"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusConfirmed  OrderStatus = "confirmed"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus tracks settlement of an order
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusPartial  PaymentStatus = "partial"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

// PaymentMethod represents the payment method used
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOnline       PaymentMethod = "online"
)

// OrderTypes lists the valid order types
func OrderTypes() []string {
	return []string{string(OrderTypeSale), string(OrderTypePurchase)}
}

// OrderStatuses lists the valid order statuses
func OrderStatuses() []string {
	return []string{
		string(OrderStatusPending),
		string(OrderStatusConfirmed),
		string(OrderStatusProcessing),
		string(OrderStatusCompleted),
		string(OrderStatusCancelled),
	}
}

// PaymentStatuses lists the valid payment statuses
func PaymentStatuses() []string {
	return []string{
		string(PaymentStatusUnpaid),
		string(PaymentStatusPartial),
		string(PaymentStatusPaid),
		string(PaymentStatusRefunded),
	}
}

// PaymentMethods lists the valid payment methods
func PaymentMethods() []string {
	return []string{
		string(PaymentMethodCash),
		string(PaymentMethodCard),
		string(PaymentMethodBankTransfer),
		string(PaymentMethodOnline),
	}
}

// Customer is the buyer on a sale order
type Customer struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

// OrderItem is a line on an order. Product name, SKU and price are copied
// from the product when the order is created and never refreshed.
type OrderItem struct {
	ID          string  `json:"id" db:"id"`
	OrderID     string  `json:"order_id" db:"order_id"`
	ProductID   string  `json:"product_id" db:"product_id"`
	ProductName string  `json:"product_name" db:"product_name"`
	SKU         string  `json:"sku" db:"sku"`
	Quantity    int     `json:"quantity" db:"quantity"`
	UnitPrice   float64 `json:"unit_price" db:"unit_price"`
	Subtotal    float64 `json:"subtotal" db:"subtotal"`
}

// NewOrderItem snapshots a product at the given unit price
func NewOrderItem(orderID string, product *Product, quantity int, unitPrice float64) OrderItem {
	return OrderItem{
		ID:          uuid.New().String(),
		OrderID:     orderID,
		ProductID:   product.ID,
		ProductName: product.Name,
		SKU:         product.SKU,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Subtotal:    lineSubtotal(quantity, unitPrice),
	}
}

func lineSubtotal(quantity int, unitPrice float64) float64 {
	return decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))).Round(2).InexactFloat64()
}

// Order is a sale or purchase order
type Order struct {
	ID                   string        `json:"id" db:"id" validate:"required,uuid"`
	OrderNumber          string        `json:"order_number" db:"order_number"`
	OrderType            OrderType     `json:"order_type" db:"order_type" validate:"required,oneof=sale purchase"`
	Customer             *Customer     `json:"customer,omitempty"`
	SupplierID           *string       `json:"supplier_id,omitempty" db:"supplier_id"`
	Items                []OrderItem   `json:"items"`
	Subtotal             float64       `json:"subtotal" db:"subtotal"`
	TaxAmount            float64       `json:"tax_amount" db:"tax_amount"`
	Discount             float64       `json:"discount" db:"discount"`
	ShippingCost         float64       `json:"shipping_cost" db:"shipping_cost"`
	TotalAmount          float64       `json:"total_amount" db:"total_amount"`
	Status               OrderStatus   `json:"status" db:"status"`
	PaymentStatus        PaymentStatus `json:"payment_status" db:"payment_status"`
	PaymentMethod        PaymentMethod `json:"payment_method" db:"payment_method"`
	Notes                *string       `json:"notes,omitempty" db:"notes"`
	OrderDate            time.Time     `json:"order_date" db:"order_date"`
	ExpectedDeliveryDate *time.Time    `json:"expected_delivery_date,omitempty" db:"expected_delivery_date"`
	ActualDeliveryDate   *time.Time    `json:"actual_delivery_date,omitempty" db:"actual_delivery_date"`
	CreatedAt            time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" db:"updated_at"`
}

// NewOrder creates a pending, unpaid order with a generated ID and order number
func NewOrder(orderType OrderType) *Order {
	now := Now()
	return &Order{
		ID:            uuid.New().String(),
		OrderNumber:   GenerateOrderNumber(orderType, now),
		OrderType:     orderType,
		Items:         []OrderItem{},
		Status:        OrderStatusPending,
		PaymentStatus: PaymentStatusUnpaid,
		PaymentMethod: PaymentMethodCash,
		OrderDate:     now,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// GenerateOrderNumber returns SO-/PO- followed by the last eight digits of
// the millisecond timestamp and a three digit random suffix. Collisions are
// possible and left to the unique index on order_number.
func GenerateOrderNumber(orderType OrderType, at time.Time) string {
	prefix := "SO"
	if orderType == OrderTypePurchase {
		prefix = "PO"
	}
	millis := strconv.FormatInt(at.UnixMilli(), 10)
	if len(millis) > 8 {
		millis = millis[len(millis)-8:]
	}
	return fmt.Sprintf("%s-%s-%03d", prefix, millis, rand.Intn(1000))
}

// AddItem appends a line item
func (o *Order) AddItem(item OrderItem) {
	item.OrderID = o.ID
	o.Items = append(o.Items, item)
}

// CalculateTotals sets subtotal to the sum of line subtotals and
// totalAmount to subtotal + tax + shipping - discount. The total is not
// floored at zero.
func (o *Order) CalculateTotals() {
	subtotal := decimal.Zero
	for _, item := range o.Items {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.Subtotal))
	}

	total := subtotal.
		Add(decimal.NewFromFloat(o.TaxAmount)).
		Add(decimal.NewFromFloat(o.ShippingCost)).
		Sub(decimal.NewFromFloat(o.Discount))

	o.Subtotal = subtotal.Round(2).InexactFloat64()
	o.TotalAmount = total.Round(2).InexactFloat64()
}

// Validate validates the order data
func (o *Order) Validate() error {
	var errs []ValidationError

	if o.ID == "" {
		errs = append(errs, ValidationError{Field: "id", Message: "order ID is required"})
	}

	errs = collect(errs,
		ValidateEnum(string(o.OrderType), OrderTypes(), "order_type"),
		ValidateEnum(string(o.Status), OrderStatuses(), "status"),
		ValidateEnum(string(o.PaymentStatus), PaymentStatuses(), "payment_status"),
		ValidateEnum(string(o.PaymentMethod), PaymentMethods(), "payment_method"),
		ValidateNonNegative(o.TaxAmount, "tax_amount"),
		ValidateNonNegative(o.Discount, "discount"),
		ValidateNonNegative(o.ShippingCost, "shipping_cost"),
	)

	if len(o.Items) == 0 {
		errs = append(errs, ValidationError{Field: "items", Message: "Order must contain at least one item"})
	}

	for i, item := range o.Items {
		if item.ProductID == "" {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("items[%d].product_id", i), Message: "Product is required for each item"})
		}
		if item.Quantity < 1 {
			errs = append(errs, ValidationError{Field: fmt.Sprintf("items[%d].quantity", i), Message: "Quantity must be at least 1", Value: item.Quantity})
		}
	}

	switch o.OrderType {
	case OrderTypeSale:
		if o.Customer == nil || strings.TrimSpace(o.Customer.Name) == "" || strings.TrimSpace(o.Customer.Phone) == "" {
			errs = append(errs, ValidationError{Field: "customer", Message: "Customer name and phone are required for sale orders"})
		}
	case OrderTypePurchase:
		if o.SupplierID == nil || strings.TrimSpace(*o.SupplierID) == "" {
			errs = append(errs, ValidationError{Field: "supplier", Message: "Supplier is required for purchase orders"})
		}
	}

	return NewValidationErrors("order", errs)
}

// IsSale reports a sale order
func (o *Order) IsSale() bool {
	return o.OrderType == OrderTypeSale
}

// IsPurchase reports a purchase order
func (o *Order) IsPurchase() bool {
	return o.OrderType == OrderTypePurchase
}

// CanBeCancelled reports whether the order may still be cancelled
func (o *Order) CanBeCancelled() bool {
	return CanTransition(o.Status, OrderStatusCancelled)
}

// TotalQuantity sums item quantities
func (o *Order) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

// DeliveryDays returns the whole days between order and delivery, rounded
// up, or nil while the order has not been delivered.
func (o *Order) DeliveryDays() *int {
	if o.ActualDeliveryDate == nil {
		return nil
	}
	diff := math.Abs(o.ActualDeliveryDate.Sub(o.OrderDate).Hours())
	days := int(math.Ceil(diff / 24))
	return &days
}

// OrderSummary is the compact view of an order
type OrderSummary struct {
	OrderNumber   string        `json:"order_number"`
	OrderType     OrderType     `json:"order_type"`
	CustomerName  string        `json:"customer_name"`
	ItemCount     int           `json:"item_count"`
	TotalQuantity int           `json:"total_quantity"`
	TotalAmount   float64       `json:"total_amount"`
	Status        OrderStatus   `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	OrderDate     time.Time     `json:"order_date"`
}

// Summary returns the compact view; customer name falls back to "N/A"
func (o *Order) Summary() OrderSummary {
	customerName := "N/A"
	if o.Customer != nil && o.Customer.Name != "" {
		customerName = o.Customer.Name
	}
	return OrderSummary{
		OrderNumber:   o.OrderNumber,
		OrderType:     o.OrderType,
		CustomerName:  customerName,
		ItemCount:     len(o.Items),
		TotalQuantity: o.TotalQuantity(),
		TotalAmount:   o.TotalAmount,
		Status:        o.Status,
		PaymentStatus: o.PaymentStatus,
		OrderDate:     o.OrderDate,
	}
}

// CountsTowardRevenue reports a sale that is not cancelled and at least partly paid
func (o *Order) CountsTowardRevenue() bool {
	if !o.IsSale() || o.Status == OrderStatusCancelled {
		return false
	}
	return o.PaymentStatus == PaymentStatusPaid || o.PaymentStatus == PaymentStatusPartial
}

// SetNotes sets or clears the order notes
func (o *Order) SetNotes(notes string) {
	if strings.TrimSpace(notes) == "" {
		o.Notes = nil
		return
	}
	trimmed := strings.TrimSpace(notes)
	o.Notes = &trimmed
}

// UpdateTimestamp updates the UpdatedAt timestamp
func (o *Order) UpdateTimestamp() {
	o.UpdatedAt = Now()
}
