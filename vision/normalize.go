// MODUL: normalize
// ZWECK: Pixel-Normalisierung fuer den ResNet-Feature-Extraktor
// INPUT: Image, Normalisierungs-Parameter (mean, std)
// OUTPUT: float32-Slices im CHW Layout
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: keine (nur Standardbibliothek)
// HINWEISE: CLEVR-Features werden mit ImageNet-Statistiken extrahiert

package vision

// Normalisierungs-Statistiken
var (
	// ImageNet-Statistiken des vortrainierten ResNet
	ImageNetMean = [3]float32{0.485, 0.456, 0.406}
	ImageNetStd  = [3]float32{0.229, 0.224, 0.225}

	// Keine Normalisierung, nur Skalierung auf [0, 1]
	IdentityMean = [3]float32{0, 0, 0}
	IdentityStd  = [3]float32{1, 1, 1}
)

// Normalize skaliert Pixel auf [0, 1], zieht mean ab und teilt durch std.
// Das Ergebnis liegt im CHW Layout vor (Channel-First), passend zum
// NCHW-Eingabeformat der Faltungsmodule.
func Normalize(img *Image, mean, std [3]float32) []float32 {
	bounds := img.RGBA.Bounds()
	h := bounds.Dy()
	w := bounds.Dx()
	plane := h * w

	result := make([]float32, plane*3)

	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b := rgbAt(img, x, y)

			result[idx] = (r - mean[0]) / std[0]
			result[plane+idx] = (g - mean[1]) / std[1]
			result[2*plane+idx] = (b - mean[2]) / std[2]
			idx++
		}
	}

	return result
}

// rgbAt holt RGB-Werte als float32 im Bereich [0, 1]
func rgbAt(img *Image, x, y int) (float32, float32, float32) {
	c := img.RGBA.RGBAAt(x, y)
	return float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255
}

// TensorShape gibt die CHW-Form des Bildes zurueck
func (img *Image) TensorShape() []int {
	return []int{3, img.Height, img.Width}
}
