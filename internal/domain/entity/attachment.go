package entity

import (
	"net/url"
	"strings"
)

// AttachmentKind names a binary file type that can hang off a record
type AttachmentKind string

const (
	AttachmentKindReport       AttachmentKind = "report"
	AttachmentKindPrescription AttachmentKind = "prescription"
)

// ParseAttachmentKind validates a kind coming from a request path or flag
func ParseAttachmentKind(s string) (AttachmentKind, bool) {
	switch AttachmentKind(s) {
	case AttachmentKindReport, AttachmentKindPrescription:
		return AttachmentKind(s), true
	}
	return "", false
}

// ExportType is the archive export selector offered to the user
type ExportType string

const (
	ExportTypeReports       ExportType = "reports"
	ExportTypePrescriptions ExportType = "prescriptions"
	ExportTypeBoth          ExportType = "both"
)

// Kinds returns the attachment kinds an export type pulls, in archive order
func (t ExportType) Kinds() []AttachmentKind {
	switch t {
	case ExportTypeReports:
		return []AttachmentKind{AttachmentKindReport}
	case ExportTypePrescriptions:
		return []AttachmentKind{AttachmentKindPrescription}
	case ExportTypeBoth:
		return []AttachmentKind{AttachmentKindReport, AttachmentKindPrescription}
	}
	return nil
}

// AttachmentShape tags the variant held by an Attachment
type AttachmentShape string

const (
	AttachmentNone   AttachmentShape = "none"
	AttachmentSingle AttachmentShape = "single"
	AttachmentMany   AttachmentShape = "many"
)

// Attachment is None, Single(url) or Many(urls). Build it with NormalizeAttachment
// so every screen agrees on the shape.
type Attachment struct {
	Shape AttachmentShape `json:"shape"`
	URLs  []string        `json:"urls,omitempty"`
}

// NoAttachment is the empty variant
func NoAttachment() Attachment {
	return Attachment{Shape: AttachmentNone}
}

func newAttachment(urls []string) Attachment {
	switch len(urls) {
	case 0:
		return NoAttachment()
	case 1:
		return Attachment{Shape: AttachmentSingle, URLs: urls}
	default:
		return Attachment{Shape: AttachmentMany, URLs: urls}
	}
}

// List returns zero or more absolute URLs regardless of shape
func (a Attachment) List() []string {
	if a.Shape == AttachmentNone || a.Shape == "" {
		return nil
	}
	return a.URLs
}

// IsEmpty reports whether there is nothing to fetch
func (a Attachment) IsEmpty() bool {
	return len(a.List()) == 0
}

// attachmentURLKeys are the object keys the API has used for a file location
var attachmentURLKeys = []string{"url", "fileUrl", "fileURL", "path", "location", "file"}

// NormalizeAttachment folds every shape the API returns for a file field
// (string, []string, []any of strings or objects, a single object) into one
// Attachment. Relative locations are resolved against base.
func NormalizeAttachment(raw any, base string) Attachment {
	var urls []string
	collectAttachmentURLs(raw, &urls)

	resolved := make([]string, 0, len(urls))
	for _, u := range urls {
		if abs := resolveURL(base, u); abs != "" {
			resolved = append(resolved, abs)
		}
	}
	return newAttachment(resolved)
}

func collectAttachmentURLs(raw any, out *[]string) {
	switch v := raw.(type) {
	case nil:
	case string:
		if s := strings.TrimSpace(v); s != "" {
			*out = append(*out, s)
		}
	case []string:
		for _, s := range v {
			collectAttachmentURLs(s, out)
		}
	case []any:
		for _, item := range v {
			collectAttachmentURLs(item, out)
		}
	case map[string]any:
		for _, key := range attachmentURLKeys {
			if s, ok := v[key].(string); ok && strings.TrimSpace(s) != "" {
				*out = append(*out, strings.TrimSpace(s))
				return
			}
		}
	}
}

func resolveURL(base, ref string) string {
	refURL, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if refURL.IsAbs() {
		return refURL.String()
	}
	baseURL, err := url.Parse(base)
	if err != nil || base == "" {
		return ""
	}
	if !strings.HasSuffix(baseURL.Path, "/") {
		baseURL.Path += "/"
	}
	return baseURL.ResolveReference(&url.URL{Path: strings.TrimPrefix(refURL.Path, "/"), RawQuery: refURL.RawQuery}).String()
}
