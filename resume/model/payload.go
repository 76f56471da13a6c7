package model

import "strings"

// ResumePayload is the canonical résumé shape handed to renderers, the
// session store and the local agent. Every container field is non-nil
// after Normalize.
type ResumePayload struct {
	PersonalInfo PersonalInfo `json:"personalInfo" cbor:"personalInfo"`
	Summary      string       `json:"summary" cbor:"summary"`
	Experience   []Experience `json:"experience" cbor:"experience"`
	Education    []Education  `json:"education" cbor:"education"`
	Skills       []string     `json:"skills" cbor:"skills"`
}

// PersonalInfo captures contact and identity details.
type PersonalInfo struct {
	FullName string   `json:"fullName" cbor:"fullName"`
	Title    string   `json:"title" cbor:"title"`
	Email    string   `json:"email" cbor:"email"`
	Phone    string   `json:"phone" cbor:"phone"`
	Location string   `json:"location" cbor:"location"`
	Links    []string `json:"links" cbor:"links"`
}

// Experience represents a work history entry.
type Experience struct {
	Company    string   `json:"company" cbor:"company"`
	Role       string   `json:"role" cbor:"role"`
	Location   string   `json:"location" cbor:"location"`
	Start      string   `json:"start" cbor:"start"`
	End        string   `json:"end" cbor:"end"`
	Highlights []string `json:"highlights" cbor:"highlights"`
}

// Education represents an education entry.
type Education struct {
	Institution string `json:"institution" cbor:"institution"`
	Degree      string `json:"degree" cbor:"degree"`
	Field       string `json:"field" cbor:"field"`
	Start       string `json:"start" cbor:"start"`
	End         string `json:"end" cbor:"end"`
}

// Normalize returns a copy with every slice allocated and free text trimmed.
func (p ResumePayload) Normalize() ResumePayload {
	out := ResumePayload{
		PersonalInfo: PersonalInfo{
			FullName: strings.TrimSpace(p.PersonalInfo.FullName),
			Title:    strings.TrimSpace(p.PersonalInfo.Title),
			Email:    strings.TrimSpace(p.PersonalInfo.Email),
			Phone:    strings.TrimSpace(p.PersonalInfo.Phone),
			Location: strings.TrimSpace(p.PersonalInfo.Location),
			Links:    compact(p.PersonalInfo.Links),
		},
		Summary:    strings.TrimSpace(p.Summary),
		Experience: make([]Experience, 0, len(p.Experience)),
		Education:  make([]Education, 0, len(p.Education)),
		Skills:     compact(p.Skills),
	}
	for _, exp := range p.Experience {
		exp.Highlights = compact(exp.Highlights)
		out.Experience = append(out.Experience, exp)
	}
	out.Education = append(out.Education, p.Education...)
	return out
}

// IsEmpty reports whether the payload carries nothing worth rendering.
func (p ResumePayload) IsEmpty() bool {
	return strings.TrimSpace(p.PersonalInfo.FullName) == "" &&
		strings.TrimSpace(p.Summary) == "" &&
		len(p.Experience) == 0 &&
		len(p.Education) == 0 &&
		len(p.Skills) == 0
}

func compact(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
