// Package agenda holds the request and response payloads of the church agenda endpoints.
package agenda

// Member is a directory entry.
type Member struct {
	ID            int64  `json:"id"`
	FullName      string `json:"full_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Bio           string `json:"bio,omitempty"`
	DOB           string `json:"dob,omitempty"`
	ProfilePicURL string `json:"profile_pic_url,omitempty"`
}

// MemberPage is the data of GET /members/directory.
type MemberPage struct {
	Results []Member `json:"results"`
	Page    int      `json:"page,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Offset  int      `json:"offset,omitempty"`
}

// ProfileUpdate is the body of PATCH /members/me. Nil fields are left unchanged.
type ProfileUpdate struct {
	Phone         *string `json:"phone,omitempty"`
	Address       *string `json:"address,omitempty"`
	DOB           *string `json:"dob,omitempty"`
	Bio           *string `json:"bio,omitempty"`
	SharePhone    *bool   `json:"share_phone,omitempty"`
	ProfilePicURL *string `json:"profile_pic_url,omitempty"`
}

// Event is one calendar entry.
type Event struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartAt     string `json:"start_at"`
	EndAt       string `json:"end_at,omitempty"`
	IsPublic    bool   `json:"is_public"`
}

// EventList is the data of GET /events.
type EventList struct {
	Results []Event `json:"results"`
}

// NewEvent is the body of POST /events.
type NewEvent struct {
	Title             string  `json:"title"`
	StartAt           string  `json:"start_at"`
	EndAt             string  `json:"end_at"`
	Description       string  `json:"description,omitempty"`
	Location          string  `json:"location,omitempty"`
	IsPublic          bool    `json:"is_public"`
	TargetMinistryIDs []int64 `json:"target_ministry_ids,omitempty"`
}

// EventCreated is the data of POST /events.
type EventCreated struct {
	EventID int64  `json:"event_id"`
	Message string `json:"message"`
}

// RSVP statuses accepted by the backend.
const (
	RSVPGoing    = "going"
	RSVPMaybe    = "maybe"
	RSVPNotGoing = "not_going"
)

// RSVPStatuses lists the accepted RSVP values.
func RSVPStatuses() []string { return []string{RSVPGoing, RSVPMaybe, RSVPNotGoing} }

// Announcement is one feed item.
type Announcement struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	TargetType string `json:"target_type,omitempty"`
	IsPinned   bool   `json:"is_pinned"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// AnnouncementPage is the data of GET /announcements/feed.
type AnnouncementPage struct {
	Results []Announcement `json:"results"`
	Limit   int            `json:"limit,omitempty"`
	Offset  int            `json:"offset,omitempty"`
}

// Announcement targets.
const (
	TargetGlobal   = "Global"
	TargetRole     = "Role"
	TargetMinistry = "Ministry"
)

// NewAnnouncement is the body of POST /announcements.
type NewAnnouncement struct {
	Title      string `json:"title"`
	Body       string `json:"body,omitempty"`
	TargetType string `json:"target_type"`
	TargetID   string `json:"target_id,omitempty"`
	ExpiresAt  string `json:"expires_at,omitempty"`
	IsPinned   bool   `json:"is_pinned"`
}

// AnnouncementCreated is the data of POST /announcements.
type AnnouncementCreated struct {
	AnnouncementID int64  `json:"announcement_id"`
	Message        string `json:"message"`
}

// Song is a repertoire entry.
type Song struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	BPM        int    `json:"bpm,omitempty"`
	DefaultKey string `json:"default_key,omitempty"`
}

// SongPage is the data of GET /worship/repertoire/songs.
type SongPage struct {
	Results []Song `json:"results"`
	Limit   int    `json:"limit,omitempty"`
	Offset  int    `json:"offset,omitempty"`
}

// NewSong is the body of POST /worship/repertoire/songs.
type NewSong struct {
	Title      string `json:"title"`
	Artist     string `json:"artist,omitempty"`
	BPM        int    `json:"bpm,omitempty"`
	DefaultKey string `json:"default_key,omitempty"`
}

// SongUpdate is the body of PATCH /worship/repertoire/songs/{id}. Nil fields are left unchanged.
type SongUpdate struct {
	Title      *string `json:"title,omitempty"`
	Artist     *string `json:"artist,omitempty"`
	BPM        *int    `json:"bpm,omitempty"`
	DefaultKey *string `json:"default_key,omitempty"`
}

// SongCreated is the data of POST /worship/repertoire/songs.
type SongCreated struct {
	SongID  int64  `json:"song_id"`
	Message string `json:"message"`
}

// Song asset types.
const (
	AssetLink = "LINK"
	AssetFile = "FILE"
)

// NewSongAsset is the body of POST /worship/repertoire/songs/{id}/assets.
// LINK assets carry URL; FILE assets carry AssetID of an uploaded file.
type NewSongAsset struct {
	Type             string   `json:"type"`
	URL              string   `json:"url,omitempty"`
	AssetID          int64    `json:"asset_id,omitempty"`
	Label            string   `json:"label,omitempty"`
	InstrumentTagIDs []string `json:"instrument_tag_ids,omitempty"`
}

// SongAssetCreated is the data of POST /worship/repertoire/songs/{id}/assets.
type SongAssetCreated struct {
	SongAssetID int64  `json:"song_asset_id"`
	Message     string `json:"message"`
}

// FileUploaded is the data of POST /worship/files/upload.
type FileUploaded struct {
	AssetID int64  `json:"asset_id"`
	Message string `json:"message"`
}

// Plan is a service plan.
type Plan struct {
	ID      int64  `json:"id"`
	Date    string `json:"date"`
	EventID *int64 `json:"event_id,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// PlanList is the data of GET /worship/schedule/plans.
type PlanList struct {
	Results []Plan `json:"results"`
}

// NewPlan is the body of POST /worship/schedule/plans.
type NewPlan struct {
	Date    string `json:"date"`
	EventID *int64 `json:"event_id,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// PlanCreated is the data of POST /worship/schedule/plans.
type PlanCreated struct {
	PlanID  int64  `json:"plan_id"`
	Message string `json:"message"`
}

// SetlistEntry is the body of POST /worship/schedule/plans/{id}/setlist.
type SetlistEntry struct {
	SongID     int64 `json:"song_id"`
	OrderIndex int   `json:"order_index"`
}

// RosterAssignment is the body of POST /worship/schedule/plans/{id}/roster.
type RosterAssignment struct {
	MusicianID int64  `json:"musician_id"`
	Instrument string `json:"instrument"`
}

// RosterCreated is the data of POST /worship/schedule/plans/{id}/roster.
type RosterCreated struct {
	RosterID int64  `json:"roster_id"`
	Message  string `json:"message"`
}

// Roster statuses accepted by the backend.
const (
	RosterPending   = "pending"
	RosterConfirmed = "confirmed"
	RosterDeclined  = "declined"
)

// Message is the common `{message}` payload.
type Message struct {
	Message string `json:"message"`
}
