package submit

import "net/url"

// Keys added to the payload when a file is attached.
const (
	KeyFileContent = "archivo"
	KeyMimeType    = "mimeType"
	KeyFileName    = "nombreArchivo"
)

// Field is one named form control value.
type Field struct {
	Name  string
	Value string
}

// Payload is the set of key/value pairs sent to the endpoint.
type Payload map[string]string

// NewPayload builds a payload from form fields. Unnamed fields are skipped
// and a repeated name keeps its last value.
func NewPayload(fields []Field) Payload {
	p := make(Payload, len(fields))
	for _, f := range fields {
		if f.Name == "" {
			continue
		}
		p[f.Name] = f.Value
	}
	return p
}

// Attach adds the encoded file content and its metadata.
func (p Payload) Attach(content, mimeType, name string) {
	p[KeyFileContent] = content
	p[KeyMimeType] = mimeType
	p[KeyFileName] = name
}

// Encode returns the payload as application/x-www-form-urlencoded text.
func (p Payload) Encode() string {
	v := make(url.Values, len(p))
	for k, val := range p {
		v.Set(k, val)
	}
	return v.Encode()
}
