package dto

type OrderResponse struct {
	ID              string `json:"id"`
	OrderNumber     string `json:"order_number"`
	CustomerID      string `json:"customer_id"`
	CustomerName    string `json:"customer_name"`
	CustomerAddress string `json:"customer_address"`
	Status          string `json:"status"`
}

type ListOrdersResponse struct {
	Orders []OrderResponse `json:"orders"`
}
