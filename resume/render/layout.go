package render

import (
	"strings"

	"flash-backend/resume/model"
)

// Kind names an artifact format.
type Kind string

const (
	KindPDF  Kind = "pdf"
	KindDOCX Kind = "docx"
)

// Extension returns the file extension for the kind, including the dot.
func (k Kind) Extension() string {
	return "." + string(k)
}

// ContentType returns the MIME type for the kind.
func (k Kind) ContentType() string {
	switch k {
	case KindPDF:
		return "application/pdf"
	case KindDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	default:
		return "application/octet-stream"
	}
}

// emptyTitle heads the document rendered for a payload with no content.
const emptyTitle = "Resume"

// Renderer turns a résumé payload into a binary document.
type Renderer interface {
	Kind() Kind
	Render(payload model.ResumePayload) ([]byte, error)
}

type lineStyle string

const (
	styleName    lineStyle = "name"
	styleHeading lineStyle = "sectionHeading"
	styleRole    lineStyle = "roleLine"
	styleMeta    lineStyle = "meta"
	styleBody    lineStyle = "body"
	styleBullet  lineStyle = "bullet"
)

type line struct {
	Text  string
	Style lineStyle
}

// layout flattens a payload into styled lines shared by every renderer. It
// never returns an empty slice.
func layout(payload model.ResumePayload) []line {
	p := payload.Normalize()
	if p.IsEmpty() {
		return []line{{Text: emptyTitle, Style: styleName}}
	}

	var out []line
	info := p.PersonalInfo
	if info.FullName != "" {
		out = append(out, line{Text: info.FullName, Style: styleName})
	}
	if info.Title != "" {
		out = append(out, line{Text: info.Title, Style: styleMeta})
	}
	if contact := joinNonEmpty(" | ", append([]string{info.Email, info.Phone, info.Location}, info.Links...)...); contact != "" {
		out = append(out, line{Text: contact, Style: styleBody})
	}

	if p.Summary != "" {
		out = append(out, line{Text: "Summary", Style: styleHeading})
		out = append(out, line{Text: p.Summary, Style: styleBody})
	}

	if len(p.Skills) > 0 {
		out = append(out, line{Text: "Skills", Style: styleHeading})
		out = append(out, line{Text: strings.Join(p.Skills, ", "), Style: styleBody})
	}

	if len(p.Experience) > 0 {
		out = append(out, line{Text: "Experience", Style: styleHeading})
		for _, exp := range p.Experience {
			out = append(out, line{Text: joinNonEmpty(" — ", exp.Role, exp.Company), Style: styleRole})
			if meta := joinNonEmpty(" | ", exp.Location, dateRange(exp.Start, exp.End)); meta != "" {
				out = append(out, line{Text: meta, Style: styleMeta})
			}
			for _, highlight := range exp.Highlights {
				out = append(out, line{Text: "• " + highlight, Style: styleBullet})
			}
		}
	}

	if len(p.Education) > 0 {
		out = append(out, line{Text: "Education", Style: styleHeading})
		for _, edu := range p.Education {
			out = append(out, line{Text: joinNonEmpty(", ", edu.Degree, edu.Field), Style: styleRole})
			if meta := joinNonEmpty(" | ", edu.Institution, dateRange(edu.Start, edu.End)); meta != "" {
				out = append(out, line{Text: meta, Style: styleMeta})
			}
		}
	}

	return out
}

func dateRange(start, end string) string {
	start = strings.TrimSpace(start)
	end = strings.TrimSpace(end)
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start + " – Present"
	case start == "":
		return end
	default:
		return start + " – " + end
	}
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, sep)
}
