package api

import (
	"context"
	"net/url"

	"github.com/church-agenda/agenda-client/internal/domain/agenda"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
)

// Directory searches the member directory.
func (c *Client) Directory(ctx context.Context, search string, page Page) envelope.Envelope[agenda.MemberPage] {
	q := url.Values{}
	setIf(q, "search", search)
	page.apply(q)
	return get[agenda.MemberPage](ctx, c, "/members/directory", q)
}

// UpdateProfile patches the signed-in member's profile.
func (c *Client) UpdateProfile(ctx context.Context, update agenda.ProfileUpdate) envelope.Envelope[agenda.Message] {
	return patch[agenda.Message](ctx, c, "/members/me", update)
}
