package submit

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

// File is an attachment chosen in the form's file input.
type File struct {
	Name string
	Type string
	Open func() (io.ReadCloser, error)
}

// FileInput exposes the currently selected file, if any.
type FileInput interface {
	Selected() (File, bool)
}

// NoFile is a FileInput with nothing selected.
type NoFile struct{}

func (NoFile) Selected() (File, bool) { return File{}, false }

// ReadDataURL reads f fully and returns it as a base64 data URL.
func ReadDataURL(f File) (string, error) {
	if f.Open == nil {
		return "", errors.New("file has no content source")
	}
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open: %w", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("read: %w", err)
	}

	mimeType := f.Type
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DataURLBody returns the part of a data URL after its header.
func DataURLBody(dataURL string) (string, error) {
	header, body, ok := strings.Cut(dataURL, ",")
	if !ok || !strings.HasPrefix(header, "data:") {
		return "", errors.New("malformed data URL")
	}
	return body, nil
}
