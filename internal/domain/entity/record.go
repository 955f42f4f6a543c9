package entity

import (
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Record is one loosely typed row of a screen: a booking, an appointment or a staff entry.
// Fields keeps the raw API object; only the id, date and attachments are lifted out.
type Record struct {
	ID          string                        `json:"id"`
	OccurredAt  any                           `json:"occurred_at,omitempty"`
	Fields      map[string]any                `json:"fields"`
	Attachments map[AttachmentKind]Attachment `json:"attachments,omitempty"`
}

// NewRecord lifts the pipeline-relevant fields out of a raw API object
func NewRecord(raw map[string]any, screen *Screen, fileBaseURL string) Record {
	record := Record{Fields: raw}
	record.ID = record.Text(screen.IDField)
	record.OccurredAt = record.Value(screen.DateField)

	if len(screen.AttachmentFields) > 0 {
		record.Attachments = make(map[AttachmentKind]Attachment, len(screen.AttachmentFields))
		for kind, field := range screen.AttachmentFields {
			record.Attachments[kind] = NormalizeAttachment(record.Value(field), fileBaseURL)
		}
	}
	return record
}

// Value resolves a dotted path such as "patient.name" against the raw fields
func (r *Record) Value(path string) any {
	if path == "" {
		return nil
	}
	var current any = r.Fields
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// Text renders the value at path as a string; missing or composite values yield ""
func (r *Record) Text(path string) string {
	value := r.Value(path)
	switch value.(type) {
	case nil, map[string]any, []any:
		return ""
	}
	s, err := cast.ToStringE(value)
	if err != nil {
		return ""
	}
	return s
}

// SetValue writes a top-level or dotted field, creating intermediate objects
func (r *Record) SetValue(path string, value any) {
	if r.Fields == nil {
		r.Fields = map[string]any{}
	}
	parts := strings.Split(path, ".")
	current := r.Fields
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part].(map[string]any)
		if !ok {
			next = map[string]any{}
			current[part] = next
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
}

// Attachment returns the normalized attachment of the given kind
func (r *Record) Attachment(kind AttachmentKind) Attachment {
	if a, ok := r.Attachments[kind]; ok {
		return a
	}
	return NoAttachment()
}

var recordTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

// OccurredTime parses the record date. Strings without an offset are read in loc.
// ok is false when the value is missing or unparsable.
func (r *Record) OccurredTime(loc *time.Location) (time.Time, bool) {
	return ParseRecordTime(r.OccurredAt, loc)
}

// ParseRecordTime accepts the ISO-ish strings and epoch milliseconds the API emits
func ParseRecordTime(value any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}
	switch v := value.(type) {
	case time.Time:
		return v.In(loc), !v.IsZero()
	case float64:
		return time.UnixMilli(int64(v)).In(loc), true
	case int64:
		return time.UnixMilli(v).In(loc), true
	case int:
		return time.UnixMilli(int64(v)).In(loc), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range recordTimeLayouts {
			if t, err := time.ParseInLocation(layout, s, loc); err == nil {
				return t.In(loc), true
			}
		}
	}
	return time.Time{}, false
}
