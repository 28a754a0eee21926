package contracts

import "time"

// Envelope adds cross-cutting headers all outbound payloads may carry.
type Envelope struct {
	CorrelationID string    `json:"correlation_id,omitempty"` // correlation for tracing across sessions
	Producer      string    `json:"producer,omitempty"`       // producer service name, e.g. "trip-service"
	SentAt        time.Time `json:"sent_at,omitempty"`        // ISO-8601 send time (UTC)
}

// Payload type discriminators. Every outbound payload carries one so clients
// never have to infer the kind from the field set.
const (
	TypeConnectionAck  = "connection_ack"
	TypeAuthError      = "auth_error"
	TypeInitiate       = "initiate"
	TypeInProgress     = "in_progress"
	TypeReadyToPickup  = "ready_to_pickup"
	TypeFinished       = "finished"
	TypeRideCancelled  = "ride_cancelled"
	TypeOTPIssued      = "otp_issued"
	TypeDriverLocation = "driver_location"
	TypeDriverSelected = "driver_selected"
)
