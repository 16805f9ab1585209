package server

import (
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"sentraSalon/internal/advisor"
	"sentraSalon/internal/auth"
	"sentraSalon/internal/media"
	"sentraSalon/internal/transform"
	"sentraSalon/internal/vision"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Transform transform.Handler
	Vision    vision.Handler
	Advisor   advisor.Handler
	Admin     auth.AdminGuard
	// MediaDir is the local media root whose uploads/ and outputs/ folders are served
	// under /media/. Empty when media lives in S3.
	MediaDir string
}

// Router builds the chi router with middleware and routes.
func Router(h Handlers) chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	router.Route("/api", func(r chi.Router) {
		r.Post("/transform", h.Transform.Transform)
		r.Get("/backends", h.Transform.Backends)
		r.Get("/templates", h.Transform.Templates)
		r.Get("/styles", h.Transform.Styles)
		r.Get("/events", h.Transform.StreamEvents)
		r.Post("/analyze", h.Vision.Analyze)
		r.Route("/history", func(r chi.Router) {
			r.Get("/", h.Transform.ListHistory)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.Transform.GetHistory)
				r.With(h.Admin.Require).Delete("/", h.Transform.DeleteHistory)
			})
		})
		r.Route("/advisor", func(r chi.Router) {
			r.Post("/recommend", h.Advisor.Recommend)
			r.Post("/compare", h.Advisor.Compare)
			r.Post("/consult", h.Advisor.Consult)
			r.Get("/categories", h.Advisor.Categories)
		})
	})

	if h.MediaDir != "" {
		router.Get("/media/{folder}/*", mediaFiles(h.MediaDir))
	}
	return router
}

// mediaFiles serves only the uploads and outputs folders, each rooted at its own
// directory so nothing else under the media root is reachable.
func mediaFiles(dir string) http.HandlerFunc {
	folders := make(map[string]http.Handler, 2)
	for _, folder := range []string{media.FolderUploads, media.FolderOutputs} {
		folders[folder] = http.StripPrefix("/media/"+folder, http.FileServer(http.Dir(filepath.Join(dir, folder))))
	}
	return func(w http.ResponseWriter, r *http.Request) {
		files, ok := folders[chi.URLParam(r, "folder")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		files.ServeHTTP(w, r)
	}
}

// New constructs the HTTP server. Write timeouts leave room for slow image backends.
func New(port string, h Handlers, requestTimeout time.Duration) *http.Server {
	if requestTimeout <= 0 {
		requestTimeout = 60 * time.Second
	}
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      Router(h),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: requestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Println("server ready on", srv.Addr)
	return srv
}
