package mongo

import (
	"bytes"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"

	"bitserve/internal/domain"
)

func TestToDocFromDocRoundtrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := domain.TorrentRecord{
		InfoHash:  "c12fe1c06bde254a89ce91bd9a28226d9ada4a6e",
		Name:      "Big Buck Bunny",
		Status:    domain.TorrentDownloading,
		Source:    []byte("d4:infoe"),
		AddedAt:   now,
		UpdatedAt: now.Add(time.Minute),
	}

	doc := toDoc(record)
	got := fromDoc(doc)

	if got.InfoHash != record.InfoHash {
		t.Errorf("InfoHash: got %q, want %q", got.InfoHash, record.InfoHash)
	}
	if got.Name != record.Name {
		t.Errorf("Name: got %q, want %q", got.Name, record.Name)
	}
	if got.Status != record.Status {
		t.Errorf("Status: got %q, want %q", got.Status, record.Status)
	}
	if !bytes.Equal(got.Source, record.Source) {
		t.Errorf("Source: got %q, want %q", got.Source, record.Source)
	}
	// Time loses sub-second precision through Unix conversion.
	if got.AddedAt.Unix() != record.AddedAt.Unix() {
		t.Errorf("AddedAt: got %v, want %v", got.AddedAt, record.AddedAt)
	}
	if got.UpdatedAt.Unix() != record.UpdatedAt.Unix() {
		t.Errorf("UpdatedAt: got %v, want %v", got.UpdatedAt, record.UpdatedAt)
	}
}

func TestTorrentDocUsesInfoHashAsID(t *testing.T) {
	record := domain.TorrentRecord{
		InfoHash: "aa11bb22",
		Name:     "sample",
		Status:   domain.TorrentPending,
	}
	doc := toDoc(record)
	if doc.ID != "aa11bb22" {
		t.Fatalf("doc _id = %q, want the info hash", doc.ID)
	}
}

func TestTorrentDocBSONFields(t *testing.T) {
	doc := torrentDoc{
		ID:        "abc",
		Name:      "sample",
		Status:    "seeding",
		Source:    []byte{0x64, 0x65},
		AddedAt:   100,
		UpdatedAt: 200,
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded bson.M
	if err := bson.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, field := range []string{"_id", "name", "status", "source", "addedAt", "updatedAt"} {
		if _, ok := decoded[field]; !ok {
			t.Errorf("field %q missing from document", field)
		}
	}
}

func TestWebhookDocRoundtrip(t *testing.T) {
	doc := webhookDoc{
		Event:     "torrent_completed",
		URL:       "https://hooks.example.com/done",
		CreatedAt: 1234,
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got webhookDoc
	if err := bson.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != doc {
		t.Fatalf("roundtrip mismatch: got %+v, want %+v", got, doc)
	}
}
