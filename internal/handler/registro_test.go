package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"html/template"
	"image"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/registro/internal/model"
	"github.com/registro/internal/submit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTemplates = template.Must(template.New("registro.html").Parse(`<h1>{{.Page.Title}}</h1>{{range .Fields}}<input name="{{.ID}}">{{end}}`))

// fakeEndpoint stands in for the remote registration endpoint.
type fakeEndpoint struct {
	*httptest.Server
	mu    sync.Mutex
	forms []url.Values
}

func newFakeEndpoint(t *testing.T, reply string) *fakeEndpoint {
	t.Helper()
	e := &fakeEndpoint{}
	e.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		e.mu.Lock()
		e.forms = append(e.forms, r.PostForm)
		e.mu.Unlock()
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(e.Close)
	return e
}

func (e *fakeEndpoint) received() []url.Values {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]url.Values(nil), e.forms...)
}

func newTestHandler(endpoint string, strip bool) *RegistroHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewRegistroHandler(logger, model.DefaultRegistrationSchema(), testTemplates, RegistroOptions{
		Endpoint:        endpoint,
		MaxUploadSizeMB: 1,
		StripMetadata:   strip,
	})
}

func validFields() map[string]string {
	return map[string]string{
		"nombre":          "Ana",
		"apellido":        "García",
		"email":           "ana@example.org",
		"telefono":        "600000000",
		"fechaNacimiento": "",
		"categoria":       "Estudiante",
		"comentarios":     "",
	}
}

type upload struct {
	name        string
	contentType string
	data        []byte
}

// buildMultipartForm creates a multipart form body from key-value pairs
func buildMultipartForm(t *testing.T, fields map[string]string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="archivo"; filename="`+f.name+`"`)
		if f.contentType != "" {
			h.Set("Content-Type", f.contentType)
		}
		part, err := writer.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func postSubmit(t *testing.T, h *RegistroHandler, fields map[string]string, files ...upload) (*httptest.ResponseRecorder, submitResponse) {
	t.Helper()
	body, contentType := buildMultipartForm(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, "/api/registro", body)
	req.Header.Set("Content-Type", contentType)
	rr := httptest.NewRecorder()
	h.Submit(rr, req)

	var resp submitResponse
	if rr.Header().Get("Content-Type") == "application/json" {
		_ = json.Unmarshal(rr.Body.Bytes(), &resp)
	}
	return rr, resp
}

func lastNotification(t *testing.T, resp submitResponse) submit.Notification {
	t.Helper()
	require.NotEmpty(t, resp.Notifications)
	return resp.Notifications[len(resp.Notifications)-1]
}

func TestSubmitMissingRequiredField(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R1"}`)
	fields := validFields()
	fields["email"] = ""

	rr, resp := postSubmit(t, newTestHandler(ep.URL, false), fields)

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.True(t, resp.WasValidated)
	assert.False(t, resp.Reset)
	assert.Equal(t, []string{"email"}, resp.InvalidFields)
	assert.Equal(t, "Formulario Incompleto", lastNotification(t, resp).Title)
	assert.Empty(t, ep.received())
}

func TestSubmitRelaysFormWithoutFile(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R123"}`)
	fields := validFields()
	fields["intruso"] = "not on the form"

	rr, resp := postSubmit(t, newTestHandler(ep.URL, false), fields)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "R123", resp.ID)
	assert.True(t, resp.Reset)
	assert.False(t, resp.WasValidated)
	assert.Contains(t, lastNotification(t, resp).Text, "R123")

	got := ep.received()
	require.Len(t, got, 1)
	want := url.Values{}
	for k, v := range validFields() {
		want.Set(k, v)
	}
	assert.Equal(t, want, got[0])
}

func TestSubmitRelaysAttachment(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R2"}`)
	pdf := []byte("%PDF-1.4 fake")

	rr, _ := postSubmit(t, newTestHandler(ep.URL, false), validFields(),
		upload{name: "mi cv.pdf", contentType: "application/pdf", data: pdf})
	require.Equal(t, http.StatusOK, rr.Code)

	got := ep.received()[0]
	assert.Equal(t, base64.StdEncoding.EncodeToString(pdf), got.Get(submit.KeyFileContent))
	assert.Equal(t, "application/pdf", got.Get(submit.KeyMimeType))
	assert.Equal(t, "mi cv.pdf", got.Get(submit.KeyFileName))
}

func TestSubmitEmptyFileInputCountsAsNoFile(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R3"}`)

	rr, _ := postSubmit(t, newTestHandler(ep.URL, false), validFields(),
		upload{name: "", contentType: "application/octet-stream"})
	require.Equal(t, http.StatusOK, rr.Code)

	got := ep.received()[0]
	assert.NotContains(t, got, submit.KeyFileContent)
	assert.NotContains(t, got, submit.KeyMimeType)
	assert.NotContains(t, got, submit.KeyFileName)
}

func TestSubmitSniffsUndeclaredType(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R4"}`)
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 1, 1))))

	rr, _ := postSubmit(t, newTestHandler(ep.URL, true), validFields(),
		upload{name: "foto.png", data: buf.Bytes()})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", ep.received()[0].Get(submit.KeyMimeType))
}

func TestSubmitUnreadableImageIsFileError(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R5"}`)

	rr, resp := postSubmit(t, newTestHandler(ep.URL, true), validFields(),
		upload{name: "foto.jpg", contentType: "image/jpeg", data: []byte("not really a jpeg")})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "No se pudo procesar el archivo adjunto.", lastNotification(t, resp).Text)
	assert.False(t, resp.Reset)
	assert.Empty(t, ep.received())
}

func TestSubmitRejectsSecondAttachment(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R6"}`)

	rr, resp := postSubmit(t, newTestHandler(ep.URL, false), validFields(),
		upload{name: "a.pdf", contentType: "application/pdf", data: []byte("a")},
		upload{name: "b.pdf", contentType: "application/pdf", data: []byte("b")})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, msgTooManyFiles, lastNotification(t, resp).Text)
	assert.Empty(t, ep.received())
}

func TestSubmitOversizedPostIsRejected(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R8"}`)
	big := bytes.Repeat([]byte("x"), 2<<20)

	rr, resp := postSubmit(t, newTestHandler(ep.URL, false), validFields(),
		upload{name: "grande.pdf", contentType: "application/pdf", data: big})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	n := lastNotification(t, resp)
	assert.Equal(t, submit.KindError, n.Kind)
	assert.Equal(t, msgInvalidForm, n.Text)
	assert.Empty(t, ep.received())
}

func TestSubmitKeepsLongNonASCIIFilename(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R9"}`)
	name := strings.Repeat("a", 99) + "é.pdf"

	rr, _ := postSubmit(t, newTestHandler(ep.URL, false), validFields(),
		upload{name: name, contentType: "application/pdf", data: []byte("%PDF-1.4")})
	require.Equal(t, http.StatusOK, rr.Code)

	got := ep.received()[0].Get(submit.KeyFileName)
	assert.Equal(t, name, got)
	assert.True(t, utf8.ValidString(got))
}

func TestSubmitBusinessFailure(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":false,"message":"Duplicate entry"}`)

	rr, resp := postSubmit(t, newTestHandler(ep.URL, false), validFields())

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.False(t, resp.Reset)
	n := lastNotification(t, resp)
	assert.Equal(t, "Error al Registrar", n.Title)
	assert.Equal(t, "Duplicate entry", n.Text)
}

func TestSubmitEndpointUnreachable(t *testing.T) {
	ep := newFakeEndpoint(t, `{}`)
	addr := ep.URL
	ep.Close()

	rr, resp := postSubmit(t, newTestHandler(addr, false), validFields())

	assert.Equal(t, http.StatusBadGateway, rr.Code)
	assert.Equal(t, "Error de Conexión", lastNotification(t, resp).Title)
}

func TestSubmitAcceptsURLEncodedPost(t *testing.T) {
	ep := newFakeEndpoint(t, `{"success":true,"id":"R7"}`)
	form := url.Values{}
	for k, v := range validFields() {
		form.Set(k, v)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/registro", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	newTestHandler(ep.URL, false).Submit(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, ep.received(), 1)
}

func TestFormRendersSchema(t *testing.T) {
	rr := httptest.NewRecorder()
	newTestHandler("http://unused", false).Form(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Formulario de Registro")
	assert.Contains(t, rr.Body.String(), `name="archivo"`)
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health("https://example.org/exec")(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	Health("")(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "a_b_c.txt", sanitizeFilename(`a/b\c.txt`))
	assert.Equal(t, "attachment", sanitizeFilename("\x00"))
	assert.Equal(t, "informe año 2024.pdf", sanitizeFilename("informe año 2024.pdf"))

	long := strings.Repeat("ñ", 200) + ".pdf"
	got := sanitizeFilename(long)
	assert.LessOrEqual(t, len(got), maxFilenameBytes)
	assert.True(t, utf8.ValidString(got))
	assert.True(t, strings.HasSuffix(got, ".pdf"))
	assert.True(t, strings.HasPrefix(got, "ññ"))
}
