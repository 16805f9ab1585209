package transform

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"sentraSalon/internal/events"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/storage"
)

// MaxImageBytes caps each uploaded photo.
const MaxImageBytes = 10 * 1024 * 1024

var optionFields = []string{
	"prompt_override", "template", "hair_length", "hair_color", "hair_texture", "occasion",
	"face_shape", "maintenance", "preserve_color", "age_appropriate", "style", "custom_instructions",
}

// Handler exposes the transform, history and catalog endpoints.
type Handler struct {
	Service      *Service
	History      storage.Store
	Catalog      *prompts.Catalog
	Events       *events.Broker
	HistoryLimit int
}

type transformResponse struct {
	RequestID   string `json:"request_id"`
	Backend     string `json:"backend"`
	Status      Kind   `json:"status"`
	MIMEType    string `json:"mime_type,omitempty"`
	ImageData   string `json:"image_data,omitempty"`
	ImageKey    string `json:"image_key,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
	WebPURL     string `json:"webp_url,omitempty"`
	Explanation string `json:"explanation,omitempty"`
	ErrorKind   string `json:"error_kind,omitempty"`
	Message     string `json:"message,omitempty"`
	EntryID     string `json:"entry_id,omitempty"`
	DurationMS  int64  `json:"duration_ms"`
}

// Transform handles POST /api/transform (multipart form).
func (h Handler) Transform(w http.ResponseWriter, r *http.Request) {
	if h.Service == nil {
		http.Error(w, "transform service inactive", http.StatusServiceUnavailable)
		return
	}
	if err := r.ParseMultipartForm(2*MaxImageBytes + (1 << 20)); err != nil {
		http.Error(w, fmt.Sprintf("could not parse form: %v", err), http.StatusBadRequest)
		return
	}

	subject, subjectMIME, err := readImage(r, "subject_image")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if len(subject) == 0 {
		http.Error(w, "subject_image is required", http.StatusBadRequest)
		return
	}
	reference, referenceMIME, err := readImage(r, "reference_image")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	values := make(map[string]string, len(optionFields))
	for _, field := range optionFields {
		values[field] = r.FormValue(field)
	}

	req := Request{
		SubjectImage:   subject,
		SubjectMIME:    subjectMIME,
		ReferenceImage: reference,
		ReferenceMIME:  referenceMIME,
		Description:    r.FormValue("description"),
		Options:        prompts.OptionsFromMap(values),
	}

	outcome, err := h.Service.Run(r.Context(), r.FormValue("backend"), req)
	if err != nil {
		if errors.Is(err, ErrUnknownBackend) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resp := transformResponse{
		RequestID:   outcome.RequestID,
		Backend:     outcome.Backend,
		Status:      outcome.Result.Kind,
		MIMEType:    outcome.Result.MIMEType,
		ImageKey:    outcome.Output.Key,
		ImageURL:    outcome.Output.URL,
		WebPURL:     outcome.WebP.URL,
		Explanation: outcome.Result.Explanation,
		ErrorKind:   string(outcome.Result.ErrorKind),
		Message:     outcome.Result.Message,
		DurationMS:  outcome.Duration.Milliseconds(),
	}
	if outcome.Result.OK() {
		resp.ImageData = base64.StdEncoding.EncodeToString(outcome.Result.Image)
	}
	if outcome.Entry != nil {
		resp.EntryID = outcome.Entry.ID
	}

	status := http.StatusOK
	if outcome.Result.Kind == KindFailure {
		status = http.StatusBadGateway
		if outcome.Result.ErrorKind == ErrorValidation {
			status = http.StatusBadRequest
		}
	}
	writeJSON(w, status, resp)
}

// Backends handles GET /api/backends.
func (h Handler) Backends(w http.ResponseWriter, _ *http.Request) {
	if h.Service == nil || h.Service.Backends == nil {
		writeJSON(w, http.StatusOK, map[string]any{"backends": []string{}, "default": ""})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"backends": h.Service.Backends.Names(),
		"default":  h.Service.Backends.Default(),
	})
}

// ListHistory handles GET /api/history.
func (h Handler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		writeJSON(w, http.StatusOK, []storage.HistoryEntry{})
		return
	}
	limit := h.HistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 && (limit <= 0 || parsed < limit) {
			limit = parsed
		}
	}
	entries, err := h.History.Recent(r.Context(), limit)
	if err != nil {
		http.Error(w, "could not load history", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetHistory handles GET /api/history/{id}.
func (h Handler) GetHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		http.Error(w, storage.ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	entry, err := h.History.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "could not load history entry", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

// DeleteHistory handles DELETE /api/history/{id}.
func (h Handler) DeleteHistory(w http.ResponseWriter, r *http.Request) {
	if h.History == nil {
		http.Error(w, storage.ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	if err := h.History.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, "could not delete history entry", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Templates handles GET /api/templates.
func (h Handler) Templates(w http.ResponseWriter, _ *http.Request) {
	catalog := h.Catalog
	if catalog == nil {
		catalog = prompts.DefaultCatalog()
	}
	writeJSON(w, http.StatusOK, catalog.List())
}

// Styles handles GET /api/styles and lists the allowed option values.
func (h Handler) Styles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"styles":       prompts.Styles,
		"hair_length":  prompts.HairLengths,
		"hair_color":   prompts.HairColors,
		"hair_texture": prompts.HairTextures,
		"occasion":     prompts.Occasions,
		"face_shape":   prompts.FaceShapes,
		"maintenance":  prompts.MaintenanceLevels,
	})
}

// StreamEvents handles GET /api/events as a server-sent event stream.
func (h Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.Events == nil {
		http.Error(w, "events inactive", http.StatusServiceUnavailable)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	// The stream outlives the server's WriteTimeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("events: clear write deadline: %v", err)
	}
	flusher.Flush()

	ch := h.Events.Subscribe()
	defer h.Events.Unsubscribe(ch)

	for {
		select {
		case <-r.Context().Done():
			return
		case evt, open := <-ch:
			if !open {
				return
			}
			payload, err := json.Marshal(evt)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", evt.Stage, payload)
			flusher.Flush()
		}
	}
}

func readImage(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, "", nil
		}
		return nil, "", fmt.Errorf("%s: %w", field, err)
	}
	defer file.Close()
	return readLimited(file, header, field)
}

func readLimited(file multipart.File, header *multipart.FileHeader, field string) ([]byte, string, error) {
	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("%s: could not read file", field)
	}
	if len(data) > MaxImageBytes {
		return nil, "", fmt.Errorf("%s exceeds %d bytes", field, MaxImageBytes)
	}
	mimeType := strings.TrimSpace(header.Header.Get("Content-Type"))
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = http.DetectContentType(data)
	}
	return data, mimeType, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
