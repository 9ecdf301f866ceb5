package api

import (
	"context"
	"net/url"

	"github.com/church-agenda/agenda-client/internal/domain/agenda"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
)

// Feed returns the announcements feed, scoped to the selected organization.
func (c *Client) Feed(ctx context.Context, page Page) envelope.Envelope[agenda.AnnouncementPage] {
	q := url.Values{}
	page.apply(q)
	return get[agenda.AnnouncementPage](ctx, c, "/announcements/feed", c.scoped(q))
}

// PostAnnouncement publishes an announcement. An empty target type means Global.
func (c *Client) PostAnnouncement(
	ctx context.Context,
	a agenda.NewAnnouncement,
) envelope.Envelope[agenda.AnnouncementCreated] {
	if a.TargetType == "" {
		a.TargetType = agenda.TargetGlobal
	}
	return post[agenda.AnnouncementCreated](ctx, c, "/announcements", a)
}
