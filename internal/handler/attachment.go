package handler

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/registro/internal/media"
	"github.com/registro/internal/model"
	"github.com/registro/internal/submit"
)

var errTooManyFiles = errors.New("only one attachment is allowed")

// uploadedFile is the file input of a posted form.
type uploadedFile struct {
	file submit.File
	ok   bool
}

func (u uploadedFile) Selected() (submit.File, bool) { return u.file, u.ok }

// attachmentFromForm returns the single file posted in the archivo field.
// An empty file input posts a part with no filename, which counts as no file.
func attachmentFromForm(mf *multipart.Form, stripMetadata bool) (submit.FileInput, error) {
	if mf == nil {
		return submit.NoFile{}, nil
	}

	var headers []*multipart.FileHeader
	for _, fh := range mf.File[model.FileFieldID] {
		if fh.Filename != "" {
			headers = append(headers, fh)
		}
	}
	switch len(headers) {
	case 0:
		return submit.NoFile{}, nil
	case 1:
	default:
		return nil, errTooManyFiles
	}

	fh := headers[0]
	contentType := detectContentType(fh)
	return uploadedFile{
		ok: true,
		file: submit.File{
			Name: sanitizeFilename(fh.Filename),
			Type: contentType,
			Open: func() (io.ReadCloser, error) {
				f, err := fh.Open()
				if err != nil {
					return nil, err
				}
				if !stripMetadata {
					return f, nil
				}
				defer f.Close()

				data, err := io.ReadAll(f)
				if err != nil {
					return nil, err
				}
				clean, err := media.StripMetadata(data, contentType)
				if err != nil {
					return nil, err
				}
				return io.NopCloser(bytes.NewReader(clean)), nil
			},
		},
	}, nil
}

// detectContentType prefers the MIME type the browser declared and sniffs
// the content when none was given.
func detectContentType(fh *multipart.FileHeader) string {
	if ct := fh.Header.Get("Content-Type"); ct != "" && ct != "application/octet-stream" {
		if mediaType, _, err := mime.ParseMediaType(ct); err == nil {
			return mediaType
		}
	}

	f, err := fh.Open()
	if err != nil {
		return ""
	}
	defer f.Close()

	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if n == 0 {
		return ""
	}
	sniffed, _, _ := strings.Cut(http.DetectContentType(head[:n]), ";")
	return sniffed
}

// maxFilenameBytes matches the usual filesystem limit on a name.
const maxFilenameBytes = 255

// sanitizeFilename replaces path separators and drops NUL bytes. Names longer
// than maxFilenameBytes are shortened on a rune boundary, keeping the extension.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "\x00", "")
	name = strings.ToValidUTF8(name, "\uFFFD")

	if len(name) > maxFilenameBytes {
		ext := filepath.Ext(name)
		if len(ext) >= maxFilenameBytes/2 {
			ext = ""
		}
		name = truncateRunes(strings.TrimSuffix(name, ext), maxFilenameBytes-len(ext)) + ext
	}
	if name == "" {
		name = "attachment"
	}
	return name
}

// truncateRunes returns the longest prefix of s that fits in limit bytes
// without splitting a rune.
func truncateRunes(s string, limit int) string {
	n := 0
	for n < len(s) {
		_, size := utf8.DecodeRuneInString(s[n:])
		if n+size > limit {
			break
		}
		n += size
	}
	return s[:n]
}
