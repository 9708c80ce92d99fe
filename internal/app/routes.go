package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/registro/internal/handler"
	"github.com/registro/internal/middleware"
	"github.com/registro/internal/web"
)

func (app *App) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.SecurityHeaders)

	// Static files
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(web.StaticFS)))

	// Health check
	r.Get("/api/health", handler.Health(app.config.EndpointURL))

	registro := handler.NewRegistroHandler(app.logger, app.schema, web.Templates, handler.RegistroOptions{
		Endpoint:        app.config.EndpointURL,
		Client:          app.client,
		MaxUploadSizeMB: app.config.MaxUploadSizeMB,
		StripMetadata:   app.config.StripImageMetadata,
	})
	r.Get("/", registro.Form)
	r.Get("/api/registro/schema", registro.Schema)

	r.Group(func(r chi.Router) {
		r.Use(middleware.PerMinute(app.config.RateLimitPerMinute))
		r.Post("/api/registro", registro.Submit)
	})
	return r
}
