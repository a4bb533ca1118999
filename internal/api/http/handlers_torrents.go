package apihttp

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"bitserve/internal/domain"
	"bitserve/internal/usecase"
)

const (
	maxUploadMemory = 16 << 20 // multipart parse buffer
	maxTorrentSize  = 8 << 20  // single .torrent metadata cap
	handlerTimeout  = 60 * time.Second
)

type addResultItem struct {
	FileName string          `json:"file_name"`
	InfoHash domain.InfoHash `json:"info_hash,omitempty"`
	Status   string          `json:"status"`
	Error    string          `json:"error,omitempty"`
}

type addResponse struct {
	Results []addResultItem `json:"results"`
	Count   int             `json:"count"`
}

func (s *Server) handleAddTorrents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.addTorrents == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "add torrents use case not configured")
		return
	}

	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "multipart/form-data" {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported_media_type", "expected multipart/form-data")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid multipart form")
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "no torrent files provided")
		return
	}

	uploads := make([]usecase.TorrentUpload, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unreadable upload")
			return
		}
		data, err := io.ReadAll(io.LimitReader(file, maxTorrentSize+1))
		file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unreadable upload")
			return
		}
		if len(data) > maxTorrentSize {
			writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "torrent file too large")
			return
		}
		uploads = append(uploads, usecase.TorrentUpload{
			FileName: strings.TrimSpace(header.Filename),
			Data:     data,
		})
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	results := s.addTorrents.Execute(ctx, uploads)

	resp := addResponse{Results: make([]addResultItem, 0, len(results)), Count: len(results)}
	for _, res := range results {
		item := addResultItem{FileName: res.FileName, InfoHash: res.InfoHash}
		switch {
		case res.Err != nil:
			item.Status = resultStatus(res.Err)
			item.Error = res.Err.Error()
		case res.Duplicate:
			item.Status = "duplicate"
		default:
			item.Status = "added"
		}
		resp.Results = append(resp.Results, item)
	}
	writeJSON(w, http.StatusOK, resp)
}

type torrentListResponse struct {
	Torrents []usecase.TorrentView `json:"torrents"`
	Count    int                   `json:"count"`
}

func (s *Server) handleListTorrents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.listTorrents == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "list torrents use case not configured")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	views, err := s.listTorrents.Execute(ctx)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, torrentListResponse{Torrents: views, Count: len(views)})
}

type removeRequest struct {
	InfoHashes  []string `json:"info_hashes"`
	RemoveFiles bool     `json:"remove_files"`
}

type removeResultItem struct {
	InfoHash domain.InfoHash `json:"info_hash"`
	Status   string          `json:"status"`
	Error    string          `json:"error,omitempty"`
}

type removeResponse struct {
	Results []removeResultItem `json:"results"`
	Count   int                `json:"count"`
}

func (s *Server) handleRemoveTorrents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.removeTorrents == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "remove torrents use case not configured")
		return
	}

	var body removeRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid json")
		return
	}

	hashes := make([]domain.InfoHash, 0, len(body.InfoHashes))
	for _, raw := range body.InfoHashes {
		hash := strings.ToLower(strings.TrimSpace(raw))
		if hash == "" {
			continue
		}
		hashes = append(hashes, domain.InfoHash(hash))
	}
	if len(hashes) == 0 {
		writeError(w, http.StatusBadRequest, "invalid_request", "no info hashes provided")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
	defer cancel()

	results := s.removeTorrents.Execute(ctx, hashes, body.RemoveFiles)

	resp := removeResponse{Results: make([]removeResultItem, 0, len(results)), Count: len(results)}
	for _, res := range results {
		item := removeResultItem{InfoHash: res.InfoHash, Status: resultStatus(res.Err)}
		if res.Err != nil {
			item.Error = res.Err.Error()
		} else {
			item.Status = "removed"
		}
		resp.Results = append(resp.Results, item)
	}
	writeJSON(w, http.StatusOK, resp)
}
