package api

import (
	"bytes"
	"io"
	"mime/multipart"
)

// FilePart is one file in a multipart upload.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// Multipart is a request body sent as multipart/form-data instead of JSON.
type Multipart struct {
	Fields map[string]string
	Files  []FilePart
}

// NewFileUpload builds a single-file multipart body.
func NewFileUpload(field, filename string, content io.Reader) *Multipart {
	return &Multipart{Files: []FilePart{{Field: field, Filename: filename, Content: content}}}
}

func (m *Multipart) encode() (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)

	for k, v := range m.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	for _, f := range m.Files {
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", err
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
