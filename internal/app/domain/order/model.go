// Package order models the auxiliary order-confirmation endpoint. Orders are
// never persisted.
package order

// Confirmation is the fabricated acknowledgement returned for an order.
type Confirmation struct {
	OrderID string `json:"order_id"`
	Item    string `json:"item"`
	Qty     string `json:"qty"`
	Address string `json:"address"`
	Message string `json:"message"`
}
