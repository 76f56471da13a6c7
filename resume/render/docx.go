package render

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"flash-backend/resume/model"
)

const wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

// DOCX renders payloads as WordprocessingML packages.
type DOCX struct{}

// Kind implements Renderer.
func (DOCX) Kind() Kind { return KindDOCX }

// Render builds a minimal .docx package with one paragraph per layout line.
func (DOCX) Render(payload model.ResumePayload) ([]byte, error) {
	lines := layout(payload)

	documentXML, err := documentXMLFor(lines)
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	parts := []struct {
		name    string
		content []byte
	}{
		{name: "[Content_Types].xml", content: []byte(contentTypesXML)},
		{name: "_rels/.rels", content: []byte(packageRelsXML)},
		{name: "word/document.xml", content: documentXML},
	}
	for _, part := range parts {
		if err := writeZipFile(writer, part.name, part.content); err != nil {
			_ = writer.Close()
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func documentXMLFor(lines []line) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	buf.WriteString(`<w:document xmlns:w="` + wmlNamespace + `"><w:body>`)
	for _, l := range lines {
		if err := writeParagraph(&buf, l); err != nil {
			return nil, err
		}
	}
	buf.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1134"/></w:sectPr>`)
	buf.WriteString(`</w:body></w:document>`)
	return buf.Bytes(), nil
}

func writeParagraph(buf *bytes.Buffer, l line) error {
	style := StyleMap[l.Style]
	buf.WriteString("<w:p>")
	switch l.Style {
	case styleHeading:
		buf.WriteString(`<w:pPr><w:spacing w:before="240" w:after="60"/></w:pPr>`)
	case styleBullet:
		buf.WriteString(`<w:pPr><w:ind w:left="360"/></w:pPr>`)
	}
	buf.WriteString("<w:r>")
	buf.WriteString(runProperties(style))
	buf.WriteString(`<w:t xml:space="preserve">`)
	if err := xml.EscapeText(buf, []byte(l.Text)); err != nil {
		return err
	}
	buf.WriteString("</w:t></w:r></w:p>")
	return nil
}

func runProperties(style RunStyle) string {
	var props strings.Builder
	if style.Bold {
		props.WriteString("<w:b/>")
	}
	if style.Italic {
		props.WriteString("<w:i/>")
	}
	if style.Color != "" {
		props.WriteString(`<w:color w:val="` + style.Color + `"/>`)
	}
	if style.Size > 0 {
		props.WriteString(`<w:sz w:val="` + strconv.Itoa(style.Size) + `"/>`)
	}
	if props.Len() == 0 {
		return ""
	}
	return "<w:rPr>" + props.String() + "</w:rPr>"
}

func writeZipFile(writer *zip.Writer, name string, content []byte) error {
	dst, err := writer.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return err
	}
	_, err = dst.Write(content)
	return err
}

var _ Renderer = DOCX{}
