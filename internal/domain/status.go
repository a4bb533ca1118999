package domain

type TorrentStatus string

const (
	TorrentPending     TorrentStatus = "pending"
	TorrentDownloading TorrentStatus = "downloading"
	TorrentSeeding     TorrentStatus = "seeding"
	TorrentPaused      TorrentStatus = "paused"
	TorrentError       TorrentStatus = "error"

	// TorrentRemoved never appears in the store; it is used only in the
	// payload of torrent_removed events.
	TorrentRemoved TorrentStatus = "removed"
)
