// Package notify delivers seat-booking events to the affected party
// through RabbitMQ.  Delivery is strictly best-effort: the dispatcher
// runs detached from the request that triggered it, and every failure
// is swallowed and logged so it can never influence a transition that
// already committed.
package notify

// seatEventsQueue is the durable queue all seat notifications go
// through.  A consumer per delivery channel (push, SMS, ...) can bind
// downstream; this service ships a logging consumer.
const seatEventsQueue = "seat.events"

// SeatNotification is the wire payload published for every committed
// seat transition.  EventID makes deliveries traceable end to end;
// RecipientID tells the consumer whose inbox the message belongs in.
type SeatNotification struct {
    EventID     string `json:"event_id"`
    Kind        string `json:"kind"`
    RideID      uint64 `json:"ride_id"`
    SeatNo      uint32 `json:"seat_no"`
    ActorID     uint64 `json:"actor_id"`
    RecipientID uint64 `json:"recipient_id"`
    HolderName  string `json:"holder_name,omitempty"`
    OccurredAt  string `json:"occurred_at"`
}
