package outbox

// Event is the domain event envelope written to the outbox table.
// The Kafka topic name equals EventType (event per topic). The excluded
// notification collaborator consumes reserva.* topics to send email.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	EventReservationConfirmed = "reserva.confirmed.v1"
	EventReservationCancelled = "reserva.cancelled.v1"
)
