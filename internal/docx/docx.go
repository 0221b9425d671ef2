// Package docx assembles paginated .docx manuals: a title page with an
// optional QR code, an auto-updating table of contents and one numbered
// section per step.
package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"

	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	xdraw "golang.org/x/image/draw"
)

// Step is one manual section. A nil Image renders as a placeholder
// paragraph instead of a picture.
type Step struct {
	Number      int
	Title       string
	Description string
	Image       image.Image
}

// Options controls document-wide layout.
type Options struct {
	// Title goes on the cover page and into the page header.
	Title string
	// SourceLink, when non-empty, is rendered as a QR code under the
	// title.
	SourceLink string
	// ImageWidthInches is the display width of step pictures. Zero
	// falls back to 5 inches.
	ImageWidthInches float64
	// ImageMaxWidthPx downsizes wider pictures before embedding. Zero
	// keeps them at full resolution.
	ImageMaxWidthPx int
	Logger          *zap.Logger
}

// AssemblyError reports a document that cannot be built.
type AssemblyError struct {
	Reason string
	Err    error
}

func (e *AssemblyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("assemble document: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("assemble document: %s", e.Reason)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

const emuPerInch = 914400

// Build renders the document as .docx bytes. Steps are emitted in the
// order given; their Number field is what readers see, not the slice
// position.
func Build(steps []Step, opts Options) ([]byte, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if len(steps) == 0 {
		return nil, &AssemblyError{Reason: "no steps to document"}
	}
	if opts.ImageWidthInches <= 0 {
		opts.ImageWidthInches = 5.0
	}

	var media []mediaPart
	addImage := func(img image.Image) (mediaRef, error) {
		b := img.Bounds()
		if b.Dx() <= 0 || b.Dy() <= 0 {
			return mediaRef{}, fmt.Errorf("zero-sized image %dx%d", b.Dx(), b.Dy())
		}
		img = fitToWidth(img, opts.ImageMaxWidthPx)
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return mediaRef{}, err
		}
		n := len(media) + 1
		media = append(media, mediaPart{
			name: fmt.Sprintf("media/image%d.png", n),
			data: buf.Bytes(),
		})
		b = img.Bounds()
		widthEMU := int64(opts.ImageWidthInches * emuPerInch)
		heightEMU := widthEMU * int64(b.Dy()) / int64(b.Dx())
		return mediaRef{
			relID: fmt.Sprintf("rId%d", firstImageRelID+n-1),
			cx:    widthEMU,
			cy:    heightEMU,
			index: n,
		}, nil
	}

	var qr *mediaRef
	if opts.SourceLink != "" {
		data, err := qrcode.Encode(opts.SourceLink, qrcode.Medium, 256)
		if err != nil {
			return nil, &AssemblyError{Reason: "encode source QR", Err: err}
		}
		n := len(media) + 1
		media = append(media, mediaPart{
			name: fmt.Sprintf("media/image%d.png", n),
			data: data,
		})
		side := int64(1.5 * emuPerInch)
		qr = &mediaRef{relID: fmt.Sprintf("rId%d", firstImageRelID+n-1), cx: side, cy: side, index: n}
	}

	sections := make([]sectionXML, 0, len(steps))
	for _, s := range steps {
		sec := sectionXML{
			heading:     fmt.Sprintf("Step %d: %s", s.Number, s.Title),
			description: s.Description,
			placeholder: fmt.Sprintf("Image not available for step %d", s.Number),
		}
		if s.Image != nil {
			ref, err := addImage(s.Image)
			if err != nil {
				return nil, &AssemblyError{Reason: fmt.Sprintf("encode image for step %d", s.Number), Err: err}
			}
			sec.image = &ref
		}
		sections = append(sections, sec)
	}

	doc := documentXML(opts.Title, qr, sections)
	rels := documentRelsXML(len(media))

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data []byte
	}{
		{"[Content_Types].xml", []byte(contentTypesXML)},
		{"_rels/.rels", []byte(rootRelsXML)},
		{"word/document.xml", []byte(doc)},
		{"word/_rels/document.xml.rels", []byte(rels)},
		{"word/styles.xml", []byte(stylesXML)},
		{"word/header1.xml", []byte(headerXML(opts.Title))},
		{"word/footer1.xml", []byte(footerXML)},
	}
	for _, m := range media {
		parts = append(parts, struct {
			name string
			data []byte
		}{"word/" + m.name, m.data})
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			return nil, &AssemblyError{Reason: "write " + part.name, Err: err}
		}
		if _, err := w.Write(part.data); err != nil {
			return nil, &AssemblyError{Reason: "write " + part.name, Err: err}
		}
	}
	if err := zw.Close(); err != nil {
		return nil, &AssemblyError{Reason: "finalize archive", Err: err}
	}

	log.Info("document assembled",
		zap.Int("sections", len(sections)),
		zap.Int("images", len(media)),
		zap.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// Write builds the document and saves it atomically: a temp file in the
// target directory, then a rename.
func Write(path string, steps []Step, opts Options) error {
	data, err := Build(steps, opts)
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".docx-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

type mediaPart struct {
	name string
	data []byte
}

// fitToWidth downsizes img to maxWidth pixels with Catmull-Rom
// resampling, preserving aspect ratio. Images at or under the limit pass
// through untouched.
func fitToWidth(img image.Image, maxWidth int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return img
	}
	h := b.Dy() * maxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, b, xdraw.Over, nil)
	return dst
}
