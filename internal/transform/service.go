package transform

import (
	"bytes"
	"context"
	"errors"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sentraSalon/internal/events"
	"sentraSalon/internal/media"
	"sentraSalon/internal/prompts"
	"sentraSalon/internal/storage"
)

// DefaultTimeout bounds a single backend call when the service has no explicit timeout.
const DefaultTimeout = 60 * time.Second

// Service runs transforms end to end: validation, backend call, persistence and history.
type Service struct {
	Backends *Registry
	Media    media.Uploader
	History  storage.Store
	Events   *events.Broker
	Catalog  *prompts.Catalog
	Timeout  time.Duration
	// WebPCopy, when set, converts successful outputs for an additional WebP upload.
	WebPCopy func([]byte) ([]byte, error)

	now func() time.Time
}

// Outcome is what a caller receives for one transform.
type Outcome struct {
	RequestID string                `json:"request_id"`
	Backend   string                `json:"backend"`
	Result    Result                `json:"result"`
	Output    media.UploadResult    `json:"output"`
	WebP      media.UploadResult    `json:"webp"`
	Entry     *storage.HistoryEntry `json:"entry,omitempty"`
	Duration  time.Duration         `json:"duration"`
}

// Run executes req against the named backend (or the default). The returned
// error is only non-nil when no backend can be selected; every other problem is
// reported through Outcome.Result.
func (s *Service) Run(ctx context.Context, backendName string, req Request) (Outcome, error) {
	if s.Backends == nil {
		return Outcome{}, ErrUnknownBackend
	}
	backend, err := s.Backends.Get(backendName)
	if err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		RequestID: uuid.NewString(),
		Backend:   backend.Name(),
	}

	if req.Options.Template != "" && s.Catalog != nil {
		req.Description = s.Catalog.ResolveDescription(req.Description, req.Options.Template)
	}
	if err := req.Validate(); err != nil {
		outcome.Result = Failure(ErrorValidation, err.Error())
		return outcome, nil
	}

	summary := summarize(req)
	summary.SubjectKey = s.store(ctx, media.FolderUploads, media.UUIDName("subject", req.SubjectMIME), req.SubjectMIME, req.SubjectImage).Key
	if req.HasReference() {
		summary.ReferenceKey = s.store(ctx, media.FolderUploads, media.UUIDName("reference", req.ReferenceMIME), req.ReferenceMIME, req.ReferenceImage).Key
	}

	s.Events.Publish(events.Event{RequestID: outcome.RequestID, Backend: outcome.Backend, Stage: events.StageStarted})

	started := s.clock()
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	outcome.Result = backend.Transform(callCtx, req)
	cancel()
	outcome.Duration = s.clock().Sub(started)

	if outcome.Result.OK() {
		name := media.UUIDName("generated_hair", outcome.Result.MIMEType)
		if !req.HasReference() {
			name = media.TimestampName("styled", started, outcome.Result.MIMEType)
		}
		outcome.Output = s.store(ctx, media.FolderOutputs, name, outcome.Result.MIMEType, outcome.Result.Image)
		if s.WebPCopy != nil {
			outcome.WebP = s.storeWebP(ctx, name, outcome.Result.Image)
		}
	}

	log.Printf("transform %s: backend=%s status=%s error_kind=%s duration=%s",
		outcome.RequestID, outcome.Backend, outcome.Result.Kind, outcome.Result.ErrorKind, outcome.Duration.Round(time.Millisecond))

	entry := storage.HistoryEntry{
		CreatedAt: started,
		Backend:   outcome.Backend,
		Status:    string(outcome.Result.Kind),
		ErrorKind: string(outcome.Result.ErrorKind),
		Message:   firstNonEmpty(outcome.Result.Message, truncate(outcome.Result.Explanation, 500)),
		Summary:   summary,
		ImageKey:  outcome.Output.Key,
		ImageURL:  outcome.Output.URL,
		WebPURL:   outcome.WebP.URL,
	}
	if s.History != nil {
		saved, err := s.History.Append(ctx, entry)
		if err != nil {
			log.Printf("transform %s: record history: %v", outcome.RequestID, err)
		} else {
			outcome.Entry = &saved
		}
	}

	finished := events.Event{
		RequestID: outcome.RequestID,
		Backend:   outcome.Backend,
		Stage:     events.StageFinished,
		Status:    string(outcome.Result.Kind),
		ErrorKind: string(outcome.Result.ErrorKind),
	}
	if outcome.Entry != nil {
		finished.EntryID = outcome.Entry.ID
	}
	s.Events.Publish(finished)

	return outcome, nil
}

func (s *Service) store(ctx context.Context, folder, name, mimeType string, data []byte) media.UploadResult {
	if s.Media == nil || len(data) == 0 {
		return media.UploadResult{}
	}
	res, err := s.Media.Upload(ctx, media.UploadInput{
		Folder:      folder,
		Filename:    name,
		ContentType: mimeType,
		Body:        bytes.NewReader(data),
		Size:        int64(len(data)),
	})
	if err != nil {
		if !errors.Is(err, media.ErrUploaderDisabled) {
			log.Printf("transform: store %s/%s: %v", folder, name, err)
		}
		return media.UploadResult{}
	}
	return res
}

func (s *Service) storeWebP(ctx context.Context, name string, data []byte) media.UploadResult {
	encoded, err := s.WebPCopy(data)
	if err != nil {
		log.Printf("transform: webp copy of %s: %v", name, err)
		return media.UploadResult{}
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	return s.store(ctx, media.FolderOutputs, stem+".webp", "image/webp", encoded)
}

func (s *Service) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}

func summarize(req Request) storage.Summary {
	opts := req.Options
	values := map[string]string{
		"template":            opts.Template,
		"hair_length":         opts.HairLength,
		"hair_color":          opts.HairColor,
		"hair_texture":        opts.HairTexture,
		"occasion":            opts.Occasion,
		"face_shape":          opts.FaceShape,
		"maintenance":         opts.Maintenance,
		"style":               opts.Style,
		"custom_instructions": opts.CustomInstructions,
	}
	if opts.PromptOverride != "" {
		values["prompt_override"] = truncate(opts.PromptOverride, 200)
	}
	if opts.PreserveColor {
		values["preserve_color"] = strconv.FormatBool(true)
	}
	if opts.AgeAppropriate {
		values["age_appropriate"] = strconv.FormatBool(true)
	}
	for k, v := range values {
		if strings.TrimSpace(v) == "" {
			delete(values, k)
		}
	}
	return storage.Summary{
		Description:  truncate(strings.TrimSpace(req.Description), 500),
		Template:     opts.Template,
		HasReference: req.HasReference(),
		Options:      values,
	}
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "…"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
