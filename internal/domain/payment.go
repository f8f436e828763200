package domain

const RefundReasonRequestedByCustomer = "requested_by_customer"

type CheckoutLineItem struct {
	Name     string
	ImageURL string
	// UnitAmount is in minor currency units.
	UnitAmount int64
	Currency   string
	Quantity   int64
}

type CheckoutSessionRequest struct {
	CustomerEmail string
	Metadata      map[string]string
	LineItems     []CheckoutLineItem
	DiscountIDs   []string
}

type CheckoutSession struct {
	ID  string
	URL string
}

type Refund struct {
	ID     string
	Status string
}

// PaymentConfirmation is the part of a provider event the checkout core needs.
type PaymentConfirmation struct {
	EventID       string
	EventType     string
	OrderID       string
	PaymentIntent string
}
