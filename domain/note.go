package domain

import (
	"strings"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
)

// Note is a single stored note. The id is generated at creation time and
// never changes; title and content are always non-empty and trimmed.
type Note struct {
	ID      uuid.UUID `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
}

const (
	errTypeMissing = "missing"
	errTypeString  = "string_type"
	errTypeEmpty   = "string_empty"
)

// FieldError describes one failed payload check.
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// ValidationError aggregates every field check a payload failed.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Loc[len(f.Loc)-1] + ": " + f.Msg
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

func fieldError(name, msg, errType string) FieldError {
	return FieldError{Loc: []string{"body", name}, Msg: msg, Type: errType}
}

// OptionalString is a JSON string field that tracks its own presence, so a
// payload can tell an omitted field apart from one that was supplied with a
// bad value. Decoding never fails outright; bad values are recorded and
// reported by validation so every broken field surfaces in one pass.
type OptionalString struct {
	value     string
	present   bool
	wrongType bool
}

// UnmarshalJSON records the raw field value. Null and non-string values are
// kept as wrong-type markers for validation instead of aborting the decode.
func (f *OptionalString) UnmarshalJSON(data []byte) error {
	f.present = true
	if string(data) == "null" {
		f.wrongType = true
		return nil
	}
	if err := sonic.ConfigStd.Unmarshal(data, &f.value); err != nil {
		f.wrongType = true
	}
	return nil
}

// required validates a field that must be supplied. It returns the trimmed
// value or the check it failed.
func (f OptionalString) required(name string) (string, *FieldError) {
	if !f.present {
		fe := fieldError(name, "field required", errTypeMissing)
		return "", &fe
	}
	return f.checked(name)
}

// checked validates a supplied field: it must hold a string that is
// non-empty after trimming. The trimmed value is what gets stored.
func (f OptionalString) checked(name string) (string, *FieldError) {
	if f.wrongType {
		fe := fieldError(name, "must be a string", errTypeString)
		return "", &fe
	}
	v := strings.TrimSpace(f.value)
	if v == "" {
		fe := fieldError(name, "must not be empty", errTypeEmpty)
		return "", &fe
	}
	return v, nil
}

// NoteCreate is the create-note request payload. Both fields are required.
type NoteCreate struct {
	Title   OptionalString `json:"title"`
	Content OptionalString `json:"content"`
}

// NewNote validates the payload and builds the note to store under id.
func (p NoteCreate) NewNote(id uuid.UUID) (Note, error) {
	var fields []FieldError
	title, fe := p.Title.required("title")
	if fe != nil {
		fields = append(fields, *fe)
	}
	content, fe := p.Content.required("content")
	if fe != nil {
		fields = append(fields, *fe)
	}
	if len(fields) > 0 {
		return Note{}, &ValidationError{Fields: fields}
	}
	return Note{ID: id, Title: title, Content: content}, nil
}

// NoteUpdate is the update-note request payload. Either field may be
// omitted; an omitted field keeps the stored value.
type NoteUpdate struct {
	Title   OptionalString `json:"title"`
	Content OptionalString `json:"content"`
}

// Validate checks every supplied field without applying anything, so a bad
// payload is rejected before the stored note is read or written.
func (p NoteUpdate) Validate() error {
	var fields []FieldError
	if p.Title.present {
		if _, fe := p.Title.checked("title"); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if p.Content.present {
		if _, fe := p.Content.checked("content"); fe != nil {
			fields = append(fields, *fe)
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Apply merges the supplied fields onto base and returns the result. The
// payload must have passed Validate.
func (p NoteUpdate) Apply(base Note) Note {
	if p.Title.present {
		base.Title = strings.TrimSpace(p.Title.value)
	}
	if p.Content.present {
		base.Content = strings.TrimSpace(p.Content.value)
	}
	return base
}
