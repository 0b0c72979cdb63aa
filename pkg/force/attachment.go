package force

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

const attachmentObject = "Attachment"

// DefaultContentType is used when an attachment's type cannot be determined.
const DefaultContentType = "application/octet-stream"

// CreateAttachment attaches text content to the record parentID.
func (c *Connection) CreateAttachment(ctx context.Context, parentID, name, content, contentType string) (*SaveResult, error) {
	return c.AttachBuffer(ctx, parentID, name, []byte(content), contentType)
}

// AttachBuffer attaches binary content to the record parentID.
func (c *Connection) AttachBuffer(ctx context.Context, parentID, name string, content []byte, contentType string) (*SaveResult, error) {
	if contentType == "" {
		contentType = DefaultContentType
	}
	return c.Create(ctx, attachmentObject, Record{
		"ParentId":    parentID,
		"Name":        name,
		"ContentType": contentType,
		"Body":        base64.StdEncoding.EncodeToString(content),
	})
}

// AttachFile reads filename from disk and attaches it to parentID. When
// contentType is empty it is guessed from the file extension.
func (c *Connection) AttachFile(ctx context.Context, parentID, filename, contentType string) (*SaveResult, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("read attachment: %w", err)
	}
	if contentType == "" {
		contentType = mime.TypeByExtension(filepath.Ext(filename))
	}
	if contentType == "" {
		contentType = http.DetectContentType(content)
	}
	return c.AttachBuffer(ctx, parentID, filepath.Base(filename), content, contentType)
}
