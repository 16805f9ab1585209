package advisor

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

// MaxImageBytes caps the client photo.
const MaxImageBytes = 10 * 1024 * 1024

// Handler exposes the advisor over HTTP.
type Handler struct {
	Advisor *Advisor
}

type failedResponse struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

// Recommend handles POST /api/advisor/recommend.
func (h Handler) Recommend(w http.ResponseWriter, r *http.Request) {
	image, mimeType, ok := h.readImage(w, r)
	if !ok {
		return
	}
	prefs := map[string]string{}
	if raw := strings.TrimSpace(r.FormValue("preferences")); raw != "" {
		if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
			http.Error(w, "preferences must be a JSON object of strings", http.StatusBadRequest)
			return
		}
	}
	advice, err := h.Advisor.Recommend(r.Context(), image, mimeType, r.FormValue("desired_style"), prefs)
	h.respond(w, advice, err)
}

// Compare handles POST /api/advisor/compare. Styles come as repeated
// "styles" fields or one comma separated value.
func (h Handler) Compare(w http.ResponseWriter, r *http.Request) {
	image, mimeType, ok := h.readImage(w, r)
	if !ok {
		return
	}
	var styles []string
	for _, value := range r.MultipartForm.Value["styles"] {
		styles = append(styles, strings.Split(value, ",")...)
	}
	advice, err := h.Advisor.Compare(r.Context(), image, mimeType, styles)
	if errors.Is(err, ErrNoStyles) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.respond(w, advice, err)
}

// Consult handles POST /api/advisor/consult.
func (h Handler) Consult(w http.ResponseWriter, r *http.Request) {
	image, mimeType, ok := h.readImage(w, r)
	if !ok {
		return
	}
	advice, err := h.Advisor.Consult(r.Context(), image, mimeType, r.FormValue("kind"))
	h.respond(w, advice, err)
}

// Categories handles GET /api/advisor/categories.
func (h Handler) Categories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, Categories())
}

func (h Handler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if h.Advisor == nil || h.Advisor.client == nil {
		http.Error(w, "advisor inactive", http.StatusServiceUnavailable)
		return nil, "", false
	}
	if err := r.ParseMultipartForm(MaxImageBytes + (1 << 20)); err != nil {
		http.Error(w, fmt.Sprintf("could not parse form: %v", err), http.StatusBadRequest)
		return nil, "", false
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "image is required", http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		http.Error(w, "could not read file", http.StatusBadRequest)
		return nil, "", false
	}
	if len(data) == 0 {
		http.Error(w, "empty file", http.StatusBadRequest)
		return nil, "", false
	}
	if len(data) > MaxImageBytes {
		http.Error(w, fmt.Sprintf("file exceeds %d bytes", MaxImageBytes), http.StatusBadRequest)
		return nil, "", false
	}
	return data, header.Header.Get("Content-Type"), true
}

func (h Handler) respond(w http.ResponseWriter, advice Advice, err error) {
	if err != nil {
		log.Printf("advisor: %v", err)
		writeJSON(w, http.StatusBadGateway, failedResponse{Status: "failed", Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "advice": advice})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("advisor: encode response: %v", err)
	}
}
