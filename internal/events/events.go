package events

import "time"

const (
	TypeCreated = "anime.created"
	TypeUpdated = "anime.updated"
	TypeDeleted = "anime.deleted"
)

// EntryEvent is broadcast to subscribers whenever the catalog changes.
type EntryEvent struct {
	Type    string    `json:"type"`
	AnimeID int64     `json:"anime_id"`
	Title   string    `json:"title,omitempty"`
	Status  string    `json:"status,omitempty"`
	At      time.Time `json:"at"`
}
