package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldValid(t *testing.T) {
	email := Field{ID: "email", Type: "email", Required: true}
	cat := Field{ID: "categoria", Type: "select", Options: []string{"Estudiante", "Otro"}}
	opt := Field{ID: "comentarios", Type: "textarea"}

	cases := []struct {
		name  string
		field Field
		value string
		want  bool
	}{
		{"required blank", email, "   ", false},
		{"email ok", email, "ana@example.org", true},
		{"email no at", email, "ana.example.org", false},
		{"email trailing at", email, "ana@", false},
		{"select known", cat, "Otro", true},
		{"select unknown", cat, "Jubilado", false},
		{"select optional blank", cat, "", true},
		{"optional blank", opt, "", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.field.Valid(tc.value))
		})
	}
}

func TestInputFieldsExcludesFile(t *testing.T) {
	s := DefaultRegistrationSchema()
	for _, f := range s.InputFields() {
		assert.NotEqual(t, FileFieldID, f.ID)
	}
	assert.Len(t, s.InputFields(), len(s.Fields)-1)
}
