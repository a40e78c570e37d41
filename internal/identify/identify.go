// Package identify reads card titles off extracted card images with OCR.
// Identification is best-effort: failures leave the title empty and never
// fail the extraction that produced the card.
package identify

import (
	"bytes"
	"image"
	"strings"

	"cardsmith/internal/card"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// titleBandRatio is the fraction of card height scanned for the name line.
// Trading card layouts put the title in the top strip.
const titleBandRatio = 0.18

// Reader wraps a tesseract client for title recognition.
type Reader struct {
	client *gosseract.Client
}

// NewReader creates an OCR reader. Close releases the tesseract client.
func NewReader() *Reader {
	client := gosseract.NewClient()
	_ = client.SetPageSegMode(gosseract.PSM_SINGLE_LINE)
	return &Reader{client: client}
}

// Close releases OCR resources.
func (r *Reader) Close() error {
	if r.client == nil {
		return nil
	}
	err := r.client.Close()
	r.client = nil
	return err
}

// ReadTitle OCRs the title band of an extracted card and returns the
// cleaned text, or an empty string when nothing legible is found.
func (r *Reader) ReadTitle(c card.ExtractedCard) (string, error) {
	img, err := imaging.Decode(bytes.NewReader(c.PNG))
	if err != nil {
		return "", err
	}

	b := img.Bounds()
	bandH := int(float64(b.Dy()) * titleBandRatio)
	if bandH < 1 {
		return "", nil
	}
	band := imaging.Crop(img, b.Intersect(image.Rect(b.Min.X, b.Min.Y, b.Max.X, b.Min.Y+bandH)))

	// Grayscale with a contrast push helps tesseract on foil and art
	// backgrounds.
	band = imaging.AdjustContrast(imaging.Grayscale(band), 30)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, band, imaging.PNG); err != nil {
		return "", err
	}
	if err := r.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return "", err
	}

	text, err := r.client.Text()
	if err != nil {
		return "", err
	}
	return cleanTitle(text), nil
}

// Annotate fills in titles for a batch of extracted cards in place,
// skipping cards whose extraction already failed.
func (r *Reader) Annotate(cards []*card.ExtractedCard) {
	for _, c := range cards {
		if c == nil || len(c.PNG) == 0 {
			continue
		}
		if title, err := r.ReadTitle(*c); err == nil {
			c.Title = title
		}
	}
}

// cleanTitle collapses whitespace and strips characters OCR commonly
// misreads around card name boxes.
func cleanTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "|_-~*")
	return strings.Join(strings.Fields(s), " ")
}
