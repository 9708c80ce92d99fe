package handler

import (
	"net/url"

	"github.com/registro/internal/model"
	"github.com/registro/internal/submit"
)

// requestForm is the registration form as posted by one browser request.
// Reset and SetValidated record what the page has to apply once the
// response arrives.
type requestForm struct {
	fields    []model.Field
	values    map[string]string
	reset     bool
	validated bool
}

func newRequestForm(schema *model.RegistrationSchema, posted url.Values) *requestForm {
	fields := schema.InputFields()
	values := make(map[string]string, len(fields))
	for _, f := range fields {
		values[f.ID] = posted.Get(f.ID)
	}
	return &requestForm{fields: fields, values: values}
}

func (f *requestForm) CheckValidity() bool {
	for _, field := range f.fields {
		if !field.Valid(f.values[field.ID]) {
			return false
		}
	}
	return true
}

func (f *requestForm) Values() []submit.Field {
	out := make([]submit.Field, 0, len(f.fields))
	for _, field := range f.fields {
		out = append(out, submit.Field{Name: field.ID, Value: f.values[field.ID]})
	}
	return out
}

func (f *requestForm) Reset() {
	for k := range f.values {
		f.values[k] = ""
	}
	f.reset = true
}

func (f *requestForm) SetValidated(v bool) {
	f.validated = v
}

// invalidFields lists the IDs of fields that fail their constraints.
func (f *requestForm) invalidFields() []string {
	var ids []string
	for _, field := range f.fields {
		if !field.Valid(f.values[field.ID]) {
			ids = append(ids, field.ID)
		}
	}
	return ids
}
