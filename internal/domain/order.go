package domain

import "slices"

// OrderStatus mirrors the order lifecycle kept by the OPS order API.
type OrderStatus string

const (
	OrderDraft      OrderStatus = "draft"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderApproved   OrderStatus = "approved"
	OrderInPacking  OrderStatus = "in-packing"
	OrderPacked     OrderStatus = "packed"
	OrderLoaded     OrderStatus = "loaded"
	OrderInDelivery OrderStatus = "in-delivery"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderDraft,
	OrderConfirmed,
	OrderApproved,
	OrderInPacking,
	OrderPacked,
	OrderLoaded,
	OrderInDelivery,
	OrderDelivered,
	OrderCancelled,
}

func (s OrderStatus) Valid() bool {
	return slices.Contains(OrderStatuses, s)
}

// Order is the slice of an OPS order the delivery side needs:
// who receives it and where.
type Order struct {
	ID              string
	OrderNumber     string
	CustomerID      string
	CustomerName    string
	CustomerAddress string
	Status          OrderStatus
}
