package events

// Topic constants for domain events emitted by the engine.
const (
	TopicCartCreated         = "cart.created"
	TopicCartPriceOverride   = "cart.price_overridden"
	TopicCartParked          = "cart.parked"
	TopicCartCancelled       = "cart.cancelled"
	TopicSaleCheckedOut      = "sale.checked_out"
	TopicSaleReturned        = "sale.returned"
	TopicPaymentTransitioned = "payment.transitioned"
)
