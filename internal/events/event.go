// AngelaMos | 2026
// event.go

package events

import (
	"time"
)

const TicketUpdatesQueue = "ticket_updates"

type Event interface {
	RoutingKey() string
}

type TicketStatusChanged struct {
	TicketID  int64  `json:"ticket_id"`
	NewStatus string `json:"new_status"`
	UpdatedBy string `json:"updated_by"`
	Timestamp string `json:"timestamp"`
}

func NewTicketStatusChanged(
	ticketID int64,
	newStatus, updatedBy string,
	at time.Time,
) TicketStatusChanged {
	return TicketStatusChanged{
		TicketID:  ticketID,
		NewStatus: newStatus,
		UpdatedBy: updatedBy,
		Timestamp: at.UTC().Format(time.RFC3339Nano),
	}
}

func (TicketStatusChanged) RoutingKey() string {
	return TicketUpdatesQueue
}
