package model

import "strings"

// FileFieldID is the name of the attachment input on the registration form.
const FileFieldID = "archivo"

type RegistrationSchema struct {
	Page   PageMeta `json:"page"`
	Fields []Field  `json:"fields"`
}

type PageMeta struct {
	Title             string `json:"title"`
	Subtitle          string `json:"subtitle"`
	SubmitButtonLabel string `json:"submitButtonLabel"`
}

type Field struct {
	ID          string   `json:"id"`
	Type        string   `json:"type"` // text, email, tel, date, textarea, select, file
	Order       int      `json:"order"`
	Label       string   `json:"label"`
	Placeholder string   `json:"placeholder"`
	Required    bool     `json:"required"`
	Options     []string `json:"options,omitempty"` // for select fields
	Accept      string   `json:"accept,omitempty"`  // for file fields
}

// Valid reports whether value satisfies the field's constraints.
func (f Field) Valid(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return !f.Required
	}
	switch f.Type {
	case "email":
		at := strings.Index(value, "@")
		return at > 0 && at < len(value)-1 && !strings.ContainsAny(value, " \t")
	case "select":
		for _, o := range f.Options {
			if o == value {
				return true
			}
		}
		return false
	}
	return true
}

// InputFields returns every field except the file input.
func (s *RegistrationSchema) InputFields() []Field {
	out := make([]Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		if f.Type != "file" {
			out = append(out, f)
		}
	}
	return out
}

// DefaultRegistrationSchema returns the registration form.
func DefaultRegistrationSchema() RegistrationSchema {
	return RegistrationSchema{
		Page: PageMeta{
			Title:             "Formulario de Registro",
			Subtitle:          "Completa tus datos para registrarte.",
			SubmitButtonLabel: "Enviar Registro",
		},
		Fields: []Field{
			{ID: "nombre", Type: "text", Order: 1, Label: "Nombre", Placeholder: "Ana", Required: true},
			{ID: "apellido", Type: "text", Order: 2, Label: "Apellido", Placeholder: "García", Required: true},
			{ID: "email", Type: "email", Order: 3, Label: "Correo electrónico", Placeholder: "ana@ejemplo.com", Required: true},
			{ID: "telefono", Type: "tel", Order: 4, Label: "Teléfono", Placeholder: "+34 600 000 000", Required: true},
			{ID: "fechaNacimiento", Type: "date", Order: 5, Label: "Fecha de nacimiento"},
			{ID: "categoria", Type: "select", Order: 6, Label: "Categoría", Required: true, Options: []string{"Estudiante", "Profesional", "Otro"}},
			{ID: "comentarios", Type: "textarea", Order: 7, Label: "Comentarios"},
			{ID: FileFieldID, Type: "file", Order: 8, Label: "Archivo adjunto (opcional)", Accept: "image/*,application/pdf"},
		},
	}
}
