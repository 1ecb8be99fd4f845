// MODUL: formats
// ZWECK: Bildformat-Erkennung fuer die CLEVR-Vorverarbeitung
// INPUT: Bild-Bytes
// OUTPUT: ImageFormat, Fehler bei ungueltigem Format
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: Magic-Bytes-basierte Erkennung; CLEVR-Renderings sind PNG,
// die uebrigen Formate werden fuer externe Bildquellen akzeptiert

package vision

import (
	"errors"
)

// ImageFormat repraesentiert ein unterstuetztes Bildformat
type ImageFormat string

const (
	FormatJPEG    ImageFormat = "jpeg"
	FormatPNG     ImageFormat = "png"
	FormatWebP    ImageFormat = "webp"
	FormatBMP     ImageFormat = "bmp"
	FormatTIFF    ImageFormat = "tiff"
	FormatUnknown ImageFormat = "unknown"
)

var (
	magicJPEG   = []byte{0xFF, 0xD8, 0xFF}
	magicPNG    = []byte{0x89, 0x50, 0x4E, 0x47}
	magicRIFF   = []byte{0x52, 0x49, 0x46, 0x46}
	magicBMP    = []byte{0x42, 0x4D}
	magicTIFFLE = []byte{0x49, 0x49, 0x2A, 0x00}
	magicTIFFBE = []byte{0x4D, 0x4D, 0x00, 0x2A}
)

var ErrUnknownFormat = errors.New("unbekanntes Bildformat")

// DetectFormat erkennt das Bildformat anhand der Magic-Bytes
func DetectFormat(data []byte) ImageFormat {
	switch {
	case matchesMagic(data, magicJPEG):
		return FormatJPEG
	case matchesMagic(data, magicPNG):
		return FormatPNG
	case matchesMagic(data, magicRIFF) && isWebP(data):
		return FormatWebP
	case matchesMagic(data, magicBMP):
		return FormatBMP
	case matchesMagic(data, magicTIFFLE), matchesMagic(data, magicTIFFBE):
		return FormatTIFF
	}
	return FormatUnknown
}

func matchesMagic(data, magic []byte) bool {
	if len(data) < len(magic) {
		return false
	}
	for i, b := range magic {
		if data[i] != b {
			return false
		}
	}
	return true
}

// isWebP prueft auf "WEBP" Marker nach dem RIFF Header
func isWebP(data []byte) bool {
	return len(data) >= 12 && string(data[8:12]) == "WEBP"
}

// MimeType gibt den MIME-Type fuer ein Format zurueck
func (f ImageFormat) MimeType() string {
	switch f {
	case FormatJPEG:
		return "image/jpeg"
	case FormatPNG:
		return "image/png"
	case FormatWebP:
		return "image/webp"
	case FormatBMP:
		return "image/bmp"
	case FormatTIFF:
		return "image/tiff"
	}
	return "application/octet-stream"
}

func (f ImageFormat) String() string {
	return string(f)
}
