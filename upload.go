package minapi

import (
	"fmt"
	"io"
	"mime/multipart"
)

// FileUpload marks a form parameter as a file. In generated documents
// file parameters always render as binary string schemas nested under
// their own property name, never merged into a sibling schema.
type FileUpload struct {
	Filename string
	Size     int64
	Header   *multipart.FileHeader
	file     multipart.File
}

// Open returns a reader for the uploaded file contents.
func (f *FileUpload) Open() (io.ReadCloser, error) {
	if f.file != nil {
		return f.file, nil
	}
	if f.Header == nil {
		return nil, fmt.Errorf("no file header")
	}
	file, err := f.Header.Open()
	if err != nil {
		return nil, err
	}
	f.file = file
	return file, nil
}
