package docx

import (
	"archive/zip"
	"bytes"
	"errors"
	"image"
	_ "image/png"
	"io"
	"strings"
	"testing"
)

func unpack(t *testing.T, data []byte) map[string]string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("output is not a zip archive: %v", err)
	}
	parts := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open part %s: %v", f.Name, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read part %s: %v", f.Name, err)
		}
		parts[f.Name] = string(raw)
	}
	return parts
}

func testImage(w, h int) *image.RGBA {
	return image.NewRGBA(image.Rect(0, 0, w, h))
}

func TestBuildEmitsSectionsAndImages(t *testing.T) {
	steps := []Step{
		{Number: 1, Title: "Open settings", Description: "Click the gear icon.", Image: testImage(320, 200)},
		{Number: 2, Title: "Pick a theme"},
	}
	data, err := Build(steps, Options{Title: "Setup guide"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	parts := unpack(t, data)
	doc, ok := parts["word/document.xml"]
	if !ok {
		t.Fatal("word/document.xml missing")
	}

	if !strings.Contains(doc, "Step 1: Open settings") || !strings.Contains(doc, "Step 2: Pick a theme") {
		t.Error("section headings missing from the document body")
	}
	if !strings.Contains(doc, `w:val="Heading2"`) {
		t.Error("sections must use the Heading2 style the TOC collects")
	}
	if !strings.Contains(doc, ` TOC \o "2-2" \h \z \u `) {
		t.Error("table of contents field instruction missing")
	}
	if !strings.Contains(doc, "Image not available for step 2") {
		t.Error("step without a frame must show a placeholder naming it")
	}
	if _, ok := parts["word/media/image1.png"]; !ok {
		t.Error("embedded image part missing")
	}
	if !strings.Contains(parts["word/_rels/document.xml.rels"], "media/image1.png") {
		t.Error("image relationship missing")
	}
	if !strings.Contains(parts["word/header1.xml"], "Setup guide") {
		t.Error("header must carry the manual title")
	}
	if !strings.Contains(parts["word/footer1.xml"], " NUMPAGES ") {
		t.Error("footer must show total page count")
	}
}

func TestBuildEmptyStepsFails(t *testing.T) {
	_, err := Build(nil, Options{Title: "x"})
	if err == nil {
		t.Fatal("expected error for empty step list")
	}
	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Errorf("expected AssemblyError, got %T", err)
	}
}

func TestBuildSourceLinkAddsQR(t *testing.T) {
	steps := []Step{{Number: 1, Title: "Only step", Image: testImage(100, 100)}}
	data, err := Build(steps, Options{Title: "Guide", SourceLink: "https://example.com/video"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	parts := unpack(t, data)

	// The QR is encoded first, so it occupies image1; the step picture
	// follows as image2.
	qr, ok := parts["word/media/image1.png"]
	if !ok {
		t.Fatal("QR media part missing")
	}
	img, _, err := image.Decode(strings.NewReader(qr))
	if err != nil {
		t.Fatalf("decode QR part: %v", err)
	}
	if img.Bounds().Dx() != 256 {
		t.Errorf("expected 256px QR, got %v", img.Bounds())
	}
	if _, ok := parts["word/media/image2.png"]; !ok {
		t.Error("step picture part missing")
	}
}

func TestBuildZeroSizedImageFails(t *testing.T) {
	steps := []Step{{Number: 1, Title: "Broken", Image: testImage(0, 0)}}
	_, err := Build(steps, Options{Title: "Guide"})
	var ae *AssemblyError
	if !errors.As(err, &ae) {
		t.Fatalf("expected AssemblyError for a zero-sized image, got %v", err)
	}
}

func TestBuildEscapesMarkup(t *testing.T) {
	steps := []Step{{Number: 1, Title: `Click "Save" & <Exit>`}}
	data, err := Build(steps, Options{Title: "A & B"})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	parts := unpack(t, data)
	doc := parts["word/document.xml"]
	if strings.Contains(doc, "<Exit>") {
		t.Error("raw markup leaked into the document")
	}
	if !strings.Contains(doc, "&quot;Save&quot; &amp; &lt;Exit&gt;") {
		t.Error("title not escaped")
	}
}

func TestBuildDownsizesWideImages(t *testing.T) {
	steps := []Step{{Number: 1, Title: "Wide", Image: testImage(2000, 1000)}}
	data, err := Build(steps, Options{Title: "Guide", ImageMaxWidthPx: 800})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	parts := unpack(t, data)
	img, _, err := image.Decode(strings.NewReader(parts["word/media/image1.png"]))
	if err != nil {
		t.Fatalf("decode embedded image: %v", err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 400 {
		t.Errorf("expected 800x400 after downsizing, got %v", img.Bounds())
	}
}
