package api

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/church-agenda/agenda-client/internal/domain/agenda"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
)

// ListSongs searches the repertoire.
func (c *Client) ListSongs(ctx context.Context, search string, page Page) envelope.Envelope[agenda.SongPage] {
	q := url.Values{}
	setIf(q, "search", search)
	page.apply(q)
	return get[agenda.SongPage](ctx, c, "/worship/repertoire/songs", q)
}

// CreateSong adds a song to the repertoire.
func (c *Client) CreateSong(ctx context.Context, s agenda.NewSong) envelope.Envelope[agenda.SongCreated] {
	return post[agenda.SongCreated](ctx, c, "/worship/repertoire/songs", s)
}

// UpdateSong patches a song.
func (c *Client) UpdateSong(ctx context.Context, songID int64, u agenda.SongUpdate) envelope.Envelope[agenda.Message] {
	return patch[agenda.Message](ctx, c, idPath("/worship/repertoire/songs/", songID), u)
}

// AddSongAsset attaches a link or an uploaded file to a song.
func (c *Client) AddSongAsset(
	ctx context.Context,
	songID int64,
	a agenda.NewSongAsset,
) envelope.Envelope[agenda.SongAssetCreated] {
	return post[agenda.SongAssetCreated](ctx, c, idPath("/worship/repertoire/songs/", songID)+"/assets", a)
}

// RemoveSongAsset detaches an asset from its song.
func (c *Client) RemoveSongAsset(ctx context.Context, songAssetID int64) envelope.Envelope[agenda.Message] {
	return del[agenda.Message](ctx, c, idPath("/worship/repertoire/song-assets/", songAssetID))
}

// UploadFile stores a worship file (sheet music, audio) and returns its asset id.
func (c *Client) UploadFile(ctx context.Context, filename string, r io.Reader) envelope.Envelope[agenda.FileUploaded] {
	return envelope.Decode[agenda.FileUploaded](c.transport.Upload(ctx, "/worship/files/upload", "file", filename, r))
}

// DownloadFile streams a worship file. The caller must close the body.
func (c *Client) DownloadFile(ctx context.Context, assetID int64) (*http.Response, error) {
	return c.transport.Download(ctx, idPath("/worship/files/", assetID)+"/download")
}

// DeleteFile removes a worship file.
func (c *Client) DeleteFile(ctx context.Context, assetID int64) envelope.Envelope[agenda.Message] {
	return del[agenda.Message](ctx, c, idPath("/worship/files/", assetID))
}

// ListPlans lists service plans between fromDate and toDate (either may be empty).
func (c *Client) ListPlans(ctx context.Context, fromDate, toDate string) envelope.Envelope[agenda.PlanList] {
	q := url.Values{}
	setIf(q, "from_date", fromDate)
	setIf(q, "to_date", toDate)
	return get[agenda.PlanList](ctx, c, "/worship/schedule/plans", q)
}

// CreatePlan creates a service plan.
func (c *Client) CreatePlan(ctx context.Context, p agenda.NewPlan) envelope.Envelope[agenda.PlanCreated] {
	return post[agenda.PlanCreated](ctx, c, "/worship/schedule/plans", p)
}

// AddSetlistSong places a song in a plan's setlist.
func (c *Client) AddSetlistSong(ctx context.Context, planID int64, e agenda.SetlistEntry) envelope.Envelope[agenda.Message] {
	return post[agenda.Message](ctx, c, idPath("/worship/schedule/plans/", planID)+"/setlist", e)
}

// AssignRoster assigns a musician to a plan.
func (c *Client) AssignRoster(
	ctx context.Context,
	planID int64,
	a agenda.RosterAssignment,
) envelope.Envelope[agenda.RosterCreated] {
	return post[agenda.RosterCreated](ctx, c, idPath("/worship/schedule/plans/", planID)+"/roster", a)
}

// UpdateRosterStatus confirms or declines a roster slot.
func (c *Client) UpdateRosterStatus(ctx context.Context, rosterID int64, status string) envelope.Envelope[agenda.Message] {
	return post[agenda.Message](ctx, c, idPath("/worship/schedule/roster/", rosterID)+"/status", map[string]string{"status": status})
}
