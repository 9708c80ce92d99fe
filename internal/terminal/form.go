package terminal

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/registro/internal/submit"
)

// FlagForm is a form whose fields come from name=value pairs.
type FlagForm struct {
	fields    []submit.Field
	required  map[string]bool
	Validated bool
}

// ParseFields builds a FlagForm from name=value pairs. Every name listed in
// required must be present and non-blank for the form to be valid.
func ParseFields(pairs, required []string) (*FlagForm, error) {
	f := &FlagForm{required: make(map[string]bool, len(required))}
	for _, name := range required {
		if name = strings.TrimSpace(name); name != "" {
			f.required[name] = true
		}
	}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("field %q: expected name=value", p)
		}
		f.fields = append(f.fields, submit.Field{Name: name, Value: value})
	}
	return f, nil
}

func (f *FlagForm) CheckValidity() bool {
	return len(f.Missing()) == 0
}

// Missing returns the required field names without a value, in flag order.
func (f *FlagForm) Missing() []string {
	filled := make(map[string]bool, len(f.fields))
	for _, fld := range f.fields {
		if strings.TrimSpace(fld.Value) != "" {
			filled[fld.Name] = true
		}
	}
	var missing []string
	for name := range f.required {
		if !filled[name] {
			missing = append(missing, name)
		}
	}
	slices.Sort(missing)
	return missing
}

func (f *FlagForm) Values() []submit.Field {
	return append([]submit.Field(nil), f.fields...)
}

func (f *FlagForm) Reset() {
	for i := range f.fields {
		f.fields[i].Value = ""
	}
}

func (f *FlagForm) SetValidated(v bool) { f.Validated = v }

// PathFile is a FileInput backed by a file on disk. An empty path selects nothing.
type PathFile string

func (p PathFile) Selected() (submit.File, bool) {
	path := string(p)
	if path == "" {
		return submit.File{}, false
	}
	return submit.File{
		Name: filepath.Base(path),
		Type: contentTypeOf(path),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, true
}

func contentTypeOf(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		mediaType, _, err := mime.ParseMediaType(ct)
		if err == nil {
			return mediaType
		}
	}
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if n == 0 {
		return ""
	}
	ct, _, _ := strings.Cut(http.DetectContentType(head[:n]), ";")
	return ct
}
