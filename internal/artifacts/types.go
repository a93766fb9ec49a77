package artifacts

import (
	"net/http"
	"time"
)

// Class is one of the three binary-artifact categories.
type Class string

const (
	ClassImages      Class = "images"
	ClassPDFs        Class = "pdfs"
	ClassWhiteboards Class = "whiteboards"
)

// Classes lists every artifact class, in scan order.
var Classes = []Class{ClassImages, ClassPDFs, ClassWhiteboards}

// ValidClass reports whether c is a known artifact class.
func ValidClass(c Class) bool {
	switch c {
	case ClassImages, ClassPDFs, ClassWhiteboards:
		return true
	}
	return false
}

// SavedArtifact describes one stored file. It is not persisted separately;
// prescriptions reference artifacts by relative path.
type SavedArtifact struct {
	Filename       string    `json:"filename"`
	Path           string    `json:"path"`
	RelativePath   string    `json:"relative_path"`
	URL            string    `json:"url"`
	Size           int64     `json:"size"`
	MimeType       string    `json:"mime_type"`
	PrescriptionID string    `json:"prescription_id"`
	Class          Class     `json:"class"`
	UploadedAt     time.Time `json:"uploaded_at"`
}

// DeleteResult reports a batch deletion. Partial completion is the intended
// contract: failed unlinks are skipped and listed, not fatal.
type DeleteResult struct {
	Deleted int      `json:"deleted"`
	Failed  []string `json:"failed,omitempty"`
}

// extensionFor picks a file extension for the class, sniffing image payloads.
func extensionFor(class Class, data []byte) (ext, mimeType string) {
	switch class {
	case ClassPDFs:
		return ".pdf", "application/pdf"
	case ClassWhiteboards:
		return ".png", "image/png"
	}

	switch http.DetectContentType(data) {
	case "image/png":
		return ".png", "image/png"
	case "image/jpeg":
		return ".jpg", "image/jpeg"
	case "image/gif":
		return ".gif", "image/gif"
	case "image/webp":
		return ".webp", "image/webp"
	}
	return ".bin", "application/octet-stream"
}

// mimeTypeFor maps a stored filename extension back to a mime type when listing.
func mimeTypeFor(ext string) string {
	switch ext {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	}
	return "application/octet-stream"
}
