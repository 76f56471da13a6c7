package model

import "strings"

// JobContext identifies the posting a résumé is being tailored for.
type JobContext struct {
	Title   string `json:"title" cbor:"title"`
	Company string `json:"company" cbor:"company"`
	URL     string `json:"url" cbor:"url"`
}

// Normalize trims every field.
func (j JobContext) Normalize() JobContext {
	return JobContext{
		Title:   strings.TrimSpace(j.Title),
		Company: strings.TrimSpace(j.Company),
		URL:     strings.TrimSpace(j.URL),
	}
}

// HasURL reports whether the posting link is usable for navigation.
func (j JobContext) HasURL() bool {
	return strings.TrimSpace(j.URL) != ""
}

// IsEmpty reports whether neither a title nor a company is known.
func (j JobContext) IsEmpty() bool {
	return strings.TrimSpace(j.Title) == "" && strings.TrimSpace(j.Company) == ""
}
