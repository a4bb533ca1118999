package apihttp

import (
	"net/http"
)

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if s.systemInfo == nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "system info use case not configured")
		return
	}

	usage, err := s.systemInfo.Execute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, usage)
}
