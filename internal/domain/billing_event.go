package domain

import "time"

// BillingEvent is a verified webhook notification from the payment provider.
type BillingEvent struct {
	ID         string
	Type       string
	Payload    []byte
	CreatedAt  time.Time
	ReceivedAt time.Time
}
