package api

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/church-agenda/agenda-client/internal/domain/envelope"
)

// Passage fetches a Bible passage such as "John 3:16". The payload is passed through
// as returned by the upstream Bible service.
func (c *Client) Passage(ctx context.Context, ref, translation string) envelope.Envelope[json.RawMessage] {
	q := url.Values{}
	q.Set("ref", ref)
	setIf(q, "translation", translation)
	return get[json.RawMessage](ctx, c, "/bible/passage", q)
}
