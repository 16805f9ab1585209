package vision

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// MaxVisionImageBytes caps an image posted for analysis.
const MaxVisionImageBytes = 10 * 1024 * 1024

// Handler exposes the reference analysis used by pre-analysis.
type Handler struct {
	Analyzer *Analyzer
}

// Analyze handles POST /api/analyze with a multipart reference_image.
func (h Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	if h.Analyzer == nil {
		http.Error(w, "reference analysis inactive", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseMultipartForm(MaxVisionImageBytes + (1 << 20)); err != nil {
		http.Error(w, fmt.Sprintf("could not parse form: %v", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("reference_image")
	if err != nil {
		http.Error(w, "reference_image is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxVisionImageBytes+1))
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return
	}
	if len(data) == 0 {
		http.Error(w, "empty file", http.StatusBadRequest)
		return
	}
	if len(data) > MaxVisionImageBytes {
		http.Error(w, fmt.Sprintf("file exceeds %d bytes", MaxVisionImageBytes), http.StatusBadRequest)
		return
	}

	writeJSON(w, h.Analyzer.Analyze(r.Context(), data, header.Header.Get("Content-Type")))
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
