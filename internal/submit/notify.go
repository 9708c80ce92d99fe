package submit

import (
	"context"
	"sync"
)

// Kind classifies a notification for the surface that renders it.
type Kind string

const (
	KindIncomplete Kind = "incomplete"
	KindLoading    Kind = "loading"
	KindSuccess    Kind = "success"
	KindError      Kind = "error"
)

// Notification is a message shown to the person filling in the form.
type Notification struct {
	Kind        Kind   `json:"kind"`
	Title       string `json:"title"`
	Text        string `json:"text"`
	Dismissible bool   `json:"dismissible"`
}

// Notifier displays notifications. Each call replaces the one shown before.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

func incompleteNotice() Notification {
	return Notification{
		Kind:        KindIncomplete,
		Title:       "Formulario Incompleto",
		Text:        "Por favor, completa todos los campos requeridos.",
		Dismissible: true,
	}
}

func loadingNotice() Notification {
	return Notification{
		Kind:  KindLoading,
		Title: "Enviando Registro...",
		Text:  "Por favor, espere un momento.",
	}
}

func successNotice(id string) Notification {
	return Notification{
		Kind:        KindSuccess,
		Title:       "¡Registro Exitoso!",
		Text:        "Tu ID de registro es: " + id,
		Dismissible: true,
	}
}

func rejectedNotice(message string) Notification {
	return Notification{Kind: KindError, Title: "Error al Registrar", Text: message, Dismissible: true}
}

func fileNotice() Notification {
	return Notification{Kind: KindError, Title: "Error", Text: "No se pudo procesar el archivo adjunto.", Dismissible: true}
}

func connectionNotice() Notification {
	return Notification{
		Kind:        KindError,
		Title:       "Error de Conexión",
		Text:        "No se pudo enviar el registro. Verifica tu conexión e inténtalo de nuevo.",
		Dismissible: true,
	}
}

// Recorder is a Notifier that keeps every notification it receives.
type Recorder struct {
	mu    sync.Mutex
	shown []Notification
}

func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shown = append(r.shown, n)
}

// All returns the notifications in the order they were shown.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.shown...)
}

// Last returns the most recent notification.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shown) == 0 {
		return Notification{}, false
	}
	return r.shown[len(r.shown)-1], true
}
