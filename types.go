package blogfs

import "github.com/karlseguin/typed"

// Metadata is a blog's overview document: a flat key/value mapping
// authored alongside the content. Unknown keys are carried through as-is.
type Metadata map[string]interface{}

// Entry pairs a blog folder name with its metadata.
type Entry struct {
	ID       string
	Metadata Metadata
}

func (m Metadata) typed() typed.Typed {
	return typed.Typed(m)
}

// Title returns the "title" field, or "" when absent or not a string.
func (m Metadata) Title() string {
	return m.typed().String("title")
}

// Cover returns the cover image path relative to the blog folder.
func (m Metadata) Cover() (string, bool) {
	cover, ok := m.typed().StringIf("cover")
	return cover, ok && cover != ""
}

// Summary returns "summary", falling back to "description".
func (m Metadata) Summary() string {
	if s, ok := m.typed().StringIf("summary"); ok && s != "" {
		return s
	}
	return m.typed().String("description")
}

// DateValue returns the raw "date" field.
func (m Metadata) DateValue() (interface{}, bool) {
	v, ok := m["date"]
	return v, ok && v != nil && v != ""
}
