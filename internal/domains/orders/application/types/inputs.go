package types

// CreateOrderInput carries the operator-supplied fields of a new order.
type CreateOrderInput struct {
	CustomerName    string
	CustomerContact string
	MerchantRef     string
}

// UpdateStatusInput requests a single lifecycle transition.
type UpdateStatusInput struct {
	OrderID  string
	Status   string
	Source   string
	Metadata map[string]any
}
