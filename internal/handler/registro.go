package handler

import (
	"errors"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/registro/internal/model"
	"github.com/registro/internal/submit"
)

// RegistroHandler serves the registration form and relays each posted form
// to the registration endpoint.
type RegistroHandler struct {
	BaseHandler
	schema         model.RegistrationSchema
	endpoint       string
	client         *http.Client
	templates      *template.Template
	maxUploadBytes int64
	stripMetadata  bool
}

// RegistroOptions holds the settings a RegistroHandler needs.
type RegistroOptions struct {
	Endpoint        string
	Client          *http.Client
	MaxUploadSizeMB int
	StripMetadata   bool
}

func NewRegistroHandler(logger *slog.Logger, schema model.RegistrationSchema, tmpl *template.Template, opts RegistroOptions) *RegistroHandler {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	return &RegistroHandler{
		BaseHandler:    BaseHandler{Logger: logger},
		schema:         schema,
		endpoint:       opts.Endpoint,
		client:         client,
		templates:      tmpl,
		maxUploadBytes: int64(opts.MaxUploadSizeMB) << 20,
		stripMetadata:  opts.StripMetadata,
	}
}

// Texts for posts rejected before a submit cycle starts.
const (
	msgInvalidForm  = "El formulario es demasiado grande o no se pudo leer."
	msgTooManyFiles = "Solo se permite adjuntar un archivo."
)

// submitResponse tells the page what to show and how to update the form.
type submitResponse struct {
	Notifications []submit.Notification `json:"notifications"`
	Reset         bool                  `json:"reset"`
	WasValidated  bool                  `json:"wasValidated"`
	ID            string                `json:"id,omitempty"`
	InvalidFields []string              `json:"invalidFields,omitempty"`
}

// Form renders the registration page.
func (h *RegistroHandler) Form(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, "registro.html", h.schema); err != nil {
		h.Logger.Error("registro: template error", "err", err)
	}
}

// Schema returns the form definition as JSON.
func (h *RegistroHandler) Schema(w http.ResponseWriter, r *http.Request) {
	if err := h.writeJSON(w, http.StatusOK, h.schema, nil); err != nil {
		h.logError(r, err)
	}
}

// Submit runs one submit cycle for the posted form.
func (h *RegistroHandler) Submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.Logger.Warn("registro: form parse failed", "error", err)
		h.rejectRequest(w, r, msgInvalidForm)
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	files, err := attachmentFromForm(r.MultipartForm, h.stripMetadata)
	if err != nil {
		h.Logger.Warn("registro: attachment rejected", "error", err)
		h.rejectRequest(w, r, msgTooManyFiles)
		return
	}

	form := newRequestForm(&h.schema, r.PostForm)
	notes := &submit.Recorder{}
	submitter := submit.New(h.endpoint, form, notes,
		submit.WithHTTPClient(h.client),
		submit.WithLogger(h.Logger),
		submit.WithFileInput(files),
	)

	res, err := submitter.Submit(r.Context())

	resp := submitResponse{
		Notifications: notes.All(),
		Reset:         form.reset,
		WasValidated:  form.validated,
	}
	if res != nil && res.Success {
		resp.ID = res.ID
	}
	if errors.Is(err, submit.ErrIncomplete) {
		resp.InvalidFields = form.invalidFields()
	}

	if err := h.writeJSON(w, statusFor(err), resp, nil); err != nil {
		h.logError(r, err)
	}
}

// rejectRequest answers a post that never reached the submitter.
func (h *RegistroHandler) rejectRequest(w http.ResponseWriter, r *http.Request, text string) {
	resp := submitResponse{Notifications: []submit.Notification{{
		Kind:        submit.KindError,
		Title:       "Error",
		Text:        text,
		Dismissible: true,
	}}}
	if err := h.writeJSON(w, http.StatusBadRequest, resp, nil); err != nil {
		h.logError(r, err)
	}
}

func statusFor(err error) int {
	var (
		fileErr     *submit.FileReadError
		businessErr *submit.BusinessError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, submit.ErrIncomplete):
		return http.StatusUnprocessableEntity
	case errors.Is(err, submit.ErrInFlight):
		return http.StatusConflict
	case errors.As(err, &fileErr):
		return http.StatusBadRequest
	case errors.As(err, &businessErr):
		return http.StatusConflict
	case submit.IsConnectionError(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
