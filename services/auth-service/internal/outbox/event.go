package outbox

// Event is a pending integration event written in the same transaction as
// the state change it describes.
type Event struct {
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
}

const (
	EventUserRegistered = "auth.user.registered.v1"
	EventAudit          = "auth.audit.v1"
)
