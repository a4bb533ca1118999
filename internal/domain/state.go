package domain

import "time"

// SessionState is the engine-side view of a live torrent session. It is
// ephemeral: the engine rebuilds it from scratch after every restart.
type SessionState struct {
	InfoHash       InfoHash      `json:"infoHash"`
	Name           string        `json:"name"`
	Status         TorrentStatus `json:"status"`
	Progress       float64       `json:"progress"` // 0-100
	DownloadRate   int64         `json:"downloadRate"`
	UploadRate     int64         `json:"uploadRate"`
	Peers          int           `json:"peers"`
	SeedingSeconds int64         `json:"seedingSeconds"`
	UpdatedAt      time.Time     `json:"updatedAt"`
}
