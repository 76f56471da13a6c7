package render

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"golang.org/x/text/encoding/charmap"

	"flash-backend/resume/model"
)

// A4 portrait in points.
const (
	pageHeight   = 842
	pageMargin   = 56
	wrapColumns  = 92
	lineSpacing  = 1.45
	headingSpace = 8
)

// ErrUnencodableText is returned when a payload holds characters the
// standard 14 fonts cannot draw. The DOCX renderer has no such limit.
var ErrUnencodableText = errors.New("text not encodable in WinAnsi")

// PDF renders payloads through pdfcpu's JSON page description.
type PDF struct{}

// Kind implements Renderer.
func (PDF) Kind() Kind { return KindPDF }

// Render lays out every line top-down, starting a new page when the
// bottom margin is reached.
func (PDF) Render(payload model.ResumePayload) ([]byte, error) {
	lines := layout(payload)
	if err := checkEncodable(lines); err != nil {
		return nil, err
	}

	desc, err := json.Marshal(pageDescription(lines))
	if err != nil {
		return nil, fmt.Errorf("encode pdf description: %w", err)
	}

	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed

	var output bytes.Buffer
	if err := api.Create(nil, bytes.NewReader(desc), &output, conf); err != nil {
		return nil, fmt.Errorf("pdfcpu create: %w", err)
	}
	return output.Bytes(), nil
}

type pdfDocument struct {
	Paper  string             `json:"paper"`
	Origin string             `json:"origin"`
	Pages  map[string]pdfPage `json:"pages"`
}

type pdfPage struct {
	Content pdfContent `json:"content"`
}

type pdfContent struct {
	Text []pdfText `json:"text"`
}

type pdfText struct {
	Value string     `json:"value"`
	Pos   [2]float64 `json:"pos"`
	Font  pdfFont    `json:"font"`
}

type pdfFont struct {
	Name string `json:"name"`
	Size int    `json:"size"`
	Col  string `json:"col,omitempty"`
}

func pageDescription(lines []line) pdfDocument {
	doc := pdfDocument{Paper: "A4P", Origin: "LowerLeft", Pages: map[string]pdfPage{}}
	pageNum := 1
	page := pdfPage{}
	y := float64(pageHeight - pageMargin)

	flush := func() {
		doc.Pages[strconv.Itoa(pageNum)] = page
		pageNum++
		page = pdfPage{}
		y = float64(pageHeight - pageMargin)
	}

	for _, l := range lines {
		style := StyleMap[l.Style]
		size := style.Size / 2
		if l.Style == styleHeading {
			y -= headingSpace
		}
		for _, chunk := range wrap(l.Text, wrapColumns) {
			step := float64(size) * lineSpacing
			if y-step < pageMargin {
				flush()
			}
			y -= step
			x := float64(pageMargin)
			if l.Style == styleBullet {
				x += 12
			}
			page.Content.Text = append(page.Content.Text, pdfText{
				Value: asciiPunctuation.Replace(chunk),
				Pos:   [2]float64{x, y},
				Font:  pdfFont{Name: fontFor(style), Size: size, Col: colorFor(style)},
			})
		}
	}
	if len(page.Content.Text) > 0 || pageNum == 1 {
		flush()
	}
	return doc
}

// The standard 14 fonts are single-byte encoded.
var asciiPunctuation = strings.NewReplacer("•", "-", "—", "-", "–", "-")

// checkEncodable rejects lines pdfcpu would otherwise draw as blanks.
func checkEncodable(lines []line) error {
	for _, l := range lines {
		for _, r := range asciiPunctuation.Replace(l.Text) {
			if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
				return fmt.Errorf("%w: %q in %s line", ErrUnencodableText, r, l.Style)
			}
		}
	}
	return nil
}

func fontFor(style RunStyle) string {
	switch {
	case style.Bold && style.Italic:
		return "Helvetica-BoldOblique"
	case style.Bold:
		return "Helvetica-Bold"
	case style.Italic:
		return "Helvetica-Oblique"
	default:
		return "Helvetica"
	}
}

func colorFor(style RunStyle) string {
	if style.Color == "" {
		return ""
	}
	return "#" + style.Color
}

// wrap splits text on word boundaries so no chunk exceeds width runes,
// unless a single word is longer than width.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var out []string
	current := words[0]
	for _, word := range words[1:] {
		if len([]rune(current))+1+len([]rune(word)) > width {
			out = append(out, current)
			current = word
			continue
		}
		current += " " + word
	}
	return append(out, current)
}

var _ Renderer = PDF{}
