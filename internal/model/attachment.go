package model

import (
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// Attachment is a file sent to the backend with a request or a chat turn.
type Attachment struct {
	// Name is the file's base name.
	Name string `json:"name"`

	// MIMEType is the detected media type.
	MIMEType string `json:"mime_type"`

	// Data is the raw content. It is empty for text attachments.
	Data []byte `json:"-"`

	// Text is the decoded content of text attachments.
	Text string `json:"-"`
}

// IsText reports whether the attachment is sent as text.
func (a Attachment) IsText() bool {
	return a.Text != "" || len(a.Data) == 0
}

// textExtensions are the extensions read as plain text.
var textExtensions = map[string]bool{
	".tf":   true,
	".hcl":  true,
	".yaml": true,
	".yml":  true,
	".json": true,
	".txt":  true,
	".md":   true,
	".sh":   true,
	".py":   true,
}

// IsTextAttachment reports whether a file name has a text extension.
func IsTextAttachment(name string) bool {
	return textExtensions[strings.ToLower(filepath.Ext(name))]
}

// LoadAttachment reads a file from disk. Text files are decoded into Text,
// everything else is kept as Data with a sniffed MIME type.
func LoadAttachment(path string) (Attachment, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return Attachment{}, fmt.Errorf("failed to read attachment: %w", err)
	}

	name := filepath.Base(path)
	if IsTextAttachment(name) {
		return Attachment{Name: name, MIMEType: "text/plain", Text: string(data)}, nil
	}

	mimeType := mime.TypeByExtension(filepath.Ext(name))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	return Attachment{Name: name, MIMEType: mimeType, Data: data}, nil
}

// AttachmentNames returns the names of attachments in order.
func AttachmentNames(attachments []Attachment) []string {
	names := make([]string, len(attachments))
	for i, a := range attachments {
		names[i] = a.Name
	}
	return names
}
