package event

import "time"

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

type CustomerEventPayload struct {
	AccountID   string    `json:"accountId"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Email       string    `json:"email"`
	DateCreated time.Time `json:"dateCreated"`
}

// CustomerLifecycleEvent announces a create, update or delete of a
// customer record. Action selects the routing key suffix.
type CustomerLifecycleEvent struct {
	Action    string               `json:"action"`
	Timestamp time.Time            `json:"timestamp"`
	Payload   CustomerEventPayload `json:"payload"`
}
