// MODUL: vision_test
// ZWECK: Tests fuer Bildformat-Erkennung, Vorverarbeitung und Tensor-Bruecke
// INPUT: Synthetisch erzeugte PNG-Bilder
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing, image/png
// HINWEISE: Kodiert Testbilder in-memory, kein Dateisystem-Zugriff

package vision

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/staceycy/probnmn-clevr/ml"
	_ "github.com/staceycy/probnmn-clevr/ml/backend/cpu"
)

// encodePNG erzeugt ein einfarbiges PNG als Byte-Slice
func encodePNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("PNG-Kodierung fehlgeschlagen: %v", err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want ImageFormat
	}{
		{"png", []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}, FormatPNG},
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, FormatJPEG},
		{"webp", []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0, 'W', 'E', 'B', 'P'}, FormatWebP},
		{"bmp", []byte{'B', 'M', 0x36, 0x00}, FormatBMP},
		{"tiff le", []byte{0x49, 0x49, 0x2A, 0x00}, FormatTIFF},
		{"tiff be", []byte{0x4D, 0x4D, 0x00, 0x2A}, FormatTIFF},
		{"riff ohne webp", []byte{'R', 'I', 'F', 'F', 0, 0, 0, 0, 'W', 'A', 'V', 'E'}, FormatUnknown},
		{"leer", nil, FormatUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectFormat(tt.data); got != tt.want {
				t.Errorf("DetectFormat = %v, erwartet %v", got, tt.want)
			}
		})
	}
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	if _, err := Decode(bytes.NewReader([]byte("kein bild"))); err == nil {
		t.Error("unbekanntes Format muss einen Fehler liefern")
	}
}

func TestDecodeAndResize(t *testing.T) {
	data := encodePNG(t, 480, 320, color.RGBA{R: 200, G: 100, B: 50, A: 255})

	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode fehlgeschlagen: %v", err)
	}
	if img.Width != 480 || img.Height != 320 {
		t.Fatalf("Dimensionen %dx%d, erwartet 480x320", img.Width, img.Height)
	}
	if img.Format != FormatPNG {
		t.Errorf("Format %v, erwartet png", img.Format)
	}

	resized, err := img.Resize(224, 224)
	if err != nil {
		t.Fatalf("Resize fehlgeschlagen: %v", err)
	}
	if resized.Width != 224 || resized.Height != 224 {
		t.Errorf("Resize-Dimensionen %dx%d, erwartet 224x224", resized.Width, resized.Height)
	}
}

func TestCenterCropBounds(t *testing.T) {
	data := encodePNG(t, 10, 10, color.RGBA{A: 255})
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode fehlgeschlagen: %v", err)
	}

	cropped, err := img.CenterCrop(4, 4)
	if err != nil {
		t.Fatalf("CenterCrop fehlgeschlagen: %v", err)
	}
	if cropped.Width != 4 || cropped.Height != 4 {
		t.Errorf("Crop-Dimensionen %dx%d, erwartet 4x4", cropped.Width, cropped.Height)
	}

	if _, err := img.CenterCrop(20, 20); err == nil {
		t.Error("Crop groesser als Bild muss einen Fehler liefern")
	}
}

func TestNormalizeCHWLayout(t *testing.T) {
	// 1x2 Bild: linkes Pixel rot, rechtes blau
	img := &Image{RGBA: image.NewRGBA(image.Rect(0, 0, 2, 1)), Width: 2, Height: 1, Format: FormatPNG}
	img.RGBA.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	img.RGBA.SetRGBA(1, 0, color.RGBA{B: 255, A: 255})

	got := Normalize(img, IdentityMean, IdentityStd)
	want := []float32{
		1, 0, // R-Ebene
		0, 0, // G-Ebene
		0, 1, // B-Ebene
	}

	if len(got) != len(want) {
		t.Fatalf("Laenge %d, erwartet %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Index %d: %f, erwartet %f", i, got[i], want[i])
		}
	}
}

func TestNormalizeImageNetStats(t *testing.T) {
	// Einfarbig grau: (0.5 - mean) / std pro Kanal
	data := encodePNG(t, 2, 2, color.RGBA{R: 128, G: 128, B: 128, A: 255})
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode fehlgeschlagen: %v", err)
	}

	got := Normalize(img, ImageNetMean, ImageNetStd)
	for ch := 0; ch < 3; ch++ {
		want := (float32(128)/255 - ImageNetMean[ch]) / ImageNetStd[ch]
		for i := 0; i < 4; i++ {
			if got[ch*4+i] != want {
				t.Fatalf("Kanal %d Index %d: %f, erwartet %f", ch, i, got[ch*4+i], want)
			}
		}
	}
}

func TestPreprocessorBatch(t *testing.T) {
	b, err := ml.NewBackend("cpu", ml.BackendParams{Seed: 1})
	if err != nil {
		t.Fatalf("Backend-Erstellung fehlgeschlagen: %v", err)
	}
	defer b.Close()
	ctx := b.NewContext()
	defer ctx.Close()

	var imgs []*Image
	for i := 0; i < 3; i++ {
		data := encodePNG(t, 32, 48, color.RGBA{R: uint8(50 * i), A: 255})
		img, err := Decode(bytes.NewReader(data))
		if err != nil {
			t.Fatalf("Decode fehlgeschlagen: %v", err)
		}
		imgs = append(imgs, img)
	}

	p := NewPreprocessor()
	p.Size = 16

	out, err := p.Batch(ctx, imgs)
	if err != nil {
		t.Fatalf("Batch fehlgeschlagen: %v", err)
	}

	want := []int{3, 3, 16, 16}
	got := out.Shape()
	if len(got) != len(want) {
		t.Fatalf("Rang %d, erwartet %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Batch-Form %v, erwartet %v", got, want)
		}
	}
	if out.DType() != ml.DTypeF32 {
		t.Errorf("DType %v, erwartet F32", out.DType())
	}
}

func TestPreprocessorHalfPrecision(t *testing.T) {
	b, err := ml.NewBackend("cpu", ml.BackendParams{Seed: 1})
	if err != nil {
		t.Fatalf("Backend-Erstellung fehlgeschlagen: %v", err)
	}
	defer b.Close()
	ctx := b.NewContext()
	defer ctx.Close()

	data := encodePNG(t, 8, 8, color.RGBA{G: 255, A: 255})
	img, err := Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode fehlgeschlagen: %v", err)
	}

	p := &Preprocessor{Size: 8, Mean: IdentityMean, Std: IdentityStd, HalfPrecision: true}
	out, err := p.Batch(ctx, []*Image{img})
	if err != nil {
		t.Fatalf("Batch fehlgeschlagen: %v", err)
	}
	if out.DType() != ml.DTypeF16 {
		t.Errorf("DType %v, erwartet F16", out.DType())
	}

	// 1.0 ist in F16 exakt darstellbar
	vals := out.Floats()
	plane := 64
	if vals[plane] != 1 {
		t.Errorf("G-Ebene = %f, erwartet 1", vals[plane])
	}
}
