// MODUL: image
// ZWECK: Laden und geometrisches Vorverarbeiten von CLEVR-Szenenbildern
// INPUT: Dateipfad, Bytes oder io.Reader
// OUTPUT: Image Struktur mit dekodiertem RGBA-Bild
// NEBENEFFEKTE: Dateisystem-Lesezugriff bei Load
// ABHAENGIGKEITEN: golang.org/x/image (extern), image/jpeg, image/png
// HINWEISE: CLEVR-Renderings sind 480x320 PNG; fuer den ResNet-Feature-
// Extraktor werden sie auf eine quadratische Zielgroesse skaliert

package vision

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	// Standard-Decoder registrieren
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Image enthaelt ein dekodiertes Szenenbild mit Metadaten
type Image struct {
	RGBA   *image.RGBA
	Width  int
	Height int
	Format ImageFormat
}

// Load laedt ein Szenenbild von einem Dateipfad
func Load(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bild lesen fehlgeschlagen: %w", err)
	}
	return Decode(bytes.NewReader(data))
}

// Decode dekodiert ein Szenenbild aus einem io.Reader
func Decode(reader io.Reader) (*Image, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("bilddaten lesen fehlgeschlagen: %w", err)
	}

	format := DetectFormat(data)
	if format == FormatUnknown {
		return nil, ErrUnknownFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("bild dekodieren fehlgeschlagen: %w", err)
	}

	rgba := toRGBA(img)
	bounds := rgba.Bounds()

	return &Image{
		RGBA:   rgba,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Format: format,
	}, nil
}

// toRGBA konvertiert ein beliebiges image.Image zu *image.RGBA
func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	return rgba
}

// Resize skaliert ein Szenenbild bilinear auf die angegebene Groesse
func (img *Image) Resize(width, height int) (*Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("ungueltige Zielgroesse: %dx%d", width, height)
	}

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.BiLinear.Scale(dst, dst.Bounds(), img.RGBA, img.RGBA.Bounds(), draw.Src, nil)

	return &Image{
		RGBA:   dst,
		Width:  width,
		Height: height,
		Format: img.Format,
	}, nil
}

// CenterCrop schneidet einen zentrierten Bereich aus
func (img *Image) CenterCrop(width, height int) (*Image, error) {
	if width > img.Width || height > img.Height {
		return nil, fmt.Errorf("crop groesser als bild: %dx%d > %dx%d",
			width, height, img.Width, img.Height)
	}

	offsetX := (img.Width - width) / 2
	offsetY := (img.Height - height) / 2

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	srcRect := image.Rect(offsetX, offsetY, offsetX+width, offsetY+height)
	draw.Draw(dst, dst.Bounds(), img.RGBA, srcRect.Min, draw.Src)

	return &Image{
		RGBA:   dst,
		Width:  width,
		Height: height,
		Format: img.Format,
	}, nil
}
