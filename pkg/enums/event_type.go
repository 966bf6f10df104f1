package enums

// EventType names domain events published on the event bus.
type EventType string

const (
	EventOrderPlaced        EventType = "order.placed"
	EventOrderStatusChanged EventType = "order.status_changed"
	EventProductTracked     EventType = "product.tracked"
	EventHamperCheckedOut   EventType = "hamper.checked_out"
)
