package docx

import (
	"fmt"
	"strings"
)

// Fixed relationships in word/_rels/document.xml.rels. Image
// relationships start right after them.
const (
	stylesRelID     = "rId1"
	headerRelID     = "rId2"
	footerRelID     = "rId3"
	firstImageRelID = 4
)

// mediaRef points a drawing at its media part and carries the display
// size in EMU.
type mediaRef struct {
	relID  string
	cx, cy int64
	index  int
}

type sectionXML struct {
	heading     string
	description string
	image       *mediaRef
	placeholder string
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func esc(s string) string { return xmlEscaper.Replace(s) }

// documentXML emits word/document.xml: cover page, table of contents,
// then one section per step and the page geometry.
func documentXML(title string, qr *mediaRef, sections []sectionXML) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<w:document` +
		` xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"` +
		` xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"` +
		` xmlns:wp="http://schemas.openxmlformats.org/drawingml/2006/wordprocessingDrawing">`)
	b.WriteString(`<w:body>`)

	// Cover page.
	b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/><w:spacing w:before="2400" w:after="480"/></w:pPr>` +
		`<w:r><w:rPr><w:b/><w:sz w:val="48"/></w:rPr><w:t>` + esc(title) + `</w:t></w:r></w:p>`)
	if qr != nil {
		b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
		writeDrawing(&b, qr)
		b.WriteString(`</w:p>`)
	}
	writePageBreak(&b)

	// Table of contents over the section headings, marked dirty so the
	// word processor recalculates it on open.
	b.WriteString(`<w:p><w:r><w:fldChar w:fldCharType="begin" w:dirty="true"/></w:r>` +
		`<w:r><w:instrText xml:space="preserve"> TOC \o "2-2" \h \z \u </w:instrText></w:r>` +
		`<w:r><w:fldChar w:fldCharType="separate"/></w:r>` +
		`<w:r><w:t>Update the table of contents to see the sections.</w:t></w:r>` +
		`<w:r><w:fldChar w:fldCharType="end"/></w:r></w:p>`)
	writePageBreak(&b)

	for i, sec := range sections {
		b.WriteString(`<w:p><w:pPr><w:pStyle w:val="Heading2"/></w:pPr>` +
			`<w:r><w:t>` + esc(sec.heading) + `</w:t></w:r></w:p>`)
		if sec.image != nil {
			b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>`)
			writeDrawing(&b, sec.image)
			b.WriteString(`</w:p>`)
		} else {
			b.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` +
				`<w:r><w:rPr><w:i/><w:color w:val="969696"/></w:rPr>` +
				`<w:t>` + esc(sec.placeholder) + `</w:t></w:r></w:p>`)
		}
		if sec.description != "" {
			b.WriteString(`<w:p><w:r><w:t xml:space="preserve">` + esc(sec.description) + `</w:t></w:r></w:p>`)
		}
		if i < len(sections)-1 {
			writePageBreak(&b)
		}
	}

	b.WriteString(`<w:sectPr>` +
		`<w:headerReference w:type="default" r:id="` + headerRelID + `"/>` +
		`<w:footerReference w:type="default" r:id="` + footerRelID + `"/>` +
		`<w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1134" w:right="1134" w:bottom="1134" w:left="1418" w:header="709" w:footer="709" w:gutter="0"/>` +
		`</w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func writePageBreak(b *strings.Builder) {
	b.WriteString(`<w:p><w:r><w:br w:type="page"/></w:r></w:p>`)
}

func writeDrawing(b *strings.Builder, ref *mediaRef) {
	fmt.Fprintf(b, `<w:r><w:drawing><wp:inline distT="0" distB="0" distL="0" distR="0">`+
		`<wp:extent cx="%d" cy="%d"/>`+
		`<wp:docPr id="%d" name="Picture %d"/>`+
		`<a:graphic xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">`+
		`<a:graphicData uri="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:pic xmlns:pic="http://schemas.openxmlformats.org/drawingml/2006/picture">`+
		`<pic:nvPicPr><pic:cNvPr id="%d" name="Picture %d"/><pic:cNvPicPr/></pic:nvPicPr>`+
		`<pic:blipFill><a:blip r:embed="%s"/><a:stretch><a:fillRect/></a:stretch></pic:blipFill>`+
		`<pic:spPr><a:xfrm><a:off x="0" y="0"/><a:ext cx="%d" cy="%d"/></a:xfrm>`+
		`<a:prstGeom prst="rect"><a:avLst/></a:prstGeom></pic:spPr>`+
		`</pic:pic></a:graphicData></a:graphic></wp:inline></w:drawing></w:r>`,
		ref.cx, ref.cy, ref.index, ref.index, ref.index, ref.index, ref.relID, ref.cx, ref.cy)
}

// documentRelsXML emits word/_rels/document.xml.rels for the fixed parts
// plus imageCount media relationships.
func documentRelsXML(imageCount int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	b.WriteString(`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">`)
	b.WriteString(`<Relationship Id="` + stylesRelID + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>`)
	b.WriteString(`<Relationship Id="` + headerRelID + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/header" Target="header1.xml"/>`)
	b.WriteString(`<Relationship Id="` + footerRelID + `" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>`)
	for i := 1; i <= imageCount; i++ {
		fmt.Fprintf(&b, `<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/image" Target="media/image%d.png"/>`,
			firstImageRelID+i-1, i)
	}
	b.WriteString(`</Relationships>`)
	return b.String()
}

// headerXML emits word/header1.xml with the manual title right-aligned.
func headerXML(title string) string {
	return `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n" +
		`<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:p><w:pPr><w:jc w:val="right"/></w:pPr>` +
		`<w:r><w:rPr><w:sz w:val="18"/><w:color w:val="808080"/></w:rPr>` +
		`<w:t>` + esc(title) + `</w:t></w:r></w:p></w:hdr>`
}
