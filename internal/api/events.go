package api

import (
	"context"
	"net/url"

	"github.com/church-agenda/agenda-client/internal/domain/agenda"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
)

// ListEvents lists events between from and to (either may be empty), scoped to the
// selected organization.
func (c *Client) ListEvents(ctx context.Context, from, to string) envelope.Envelope[agenda.EventList] {
	q := url.Values{}
	setIf(q, "from", from)
	setIf(q, "to", to)
	return get[agenda.EventList](ctx, c, "/events", c.scoped(q))
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, ev agenda.NewEvent) envelope.Envelope[agenda.EventCreated] {
	return post[agenda.EventCreated](ctx, c, "/events", ev)
}

// RSVP records the signed-in member's answer for an event.
func (c *Client) RSVP(ctx context.Context, eventID int64, status string) envelope.Envelope[agenda.Message] {
	return post[agenda.Message](ctx, c, idPath("/events/", eventID)+"/rsvp", map[string]string{"status": status})
}
