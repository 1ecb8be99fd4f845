// MODUL: tensor
// ZWECK: Bruecke von vorverarbeiteten Szenenbildern zum ml-Substrat
// INPUT: Dekodierte Bilder, ml.Context
// OUTPUT: Batch-Tensor im NCHW Layout
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: golang.org/x/sync/errgroup (extern), ml, envconfig
// HINWEISE: Die Normalisierung pro Bild laeuft parallel, die Batch-Groesse
// bestimmt die erste Tensor-Dimension

package vision

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/staceycy/probnmn-clevr/envconfig"
	"github.com/staceycy/probnmn-clevr/ml"
)

// DefaultSize ist die quadratische Zielgroesse fuer den Feature-Extraktor
const DefaultSize = 224

// Preprocessor buendelt die geometrische und photometrische Vorverarbeitung
type Preprocessor struct {
	Size int
	Mean [3]float32
	Std  [3]float32

	// HalfPrecision speichert den Batch-Tensor als F16
	HalfPrecision bool
}

// NewPreprocessor liefert die Standard-Vorverarbeitung des Feature-Extraktors
func NewPreprocessor() *Preprocessor {
	return &Preprocessor{
		Size: DefaultSize,
		Mean: ImageNetMean,
		Std:  ImageNetStd,
	}
}

// Apply skaliert ein Bild auf die Zielgroesse und normalisiert die Pixel
func (p *Preprocessor) Apply(img *Image) ([]float32, error) {
	resized, err := img.Resize(p.Size, p.Size)
	if err != nil {
		return nil, err
	}
	return Normalize(resized, p.Mean, p.Std), nil
}

// Batch verarbeitet mehrere Bilder zu einem (batch, 3, size, size) Tensor
func (p *Preprocessor) Batch(ctx ml.Context, imgs []*Image) (ml.Tensor, error) {
	if len(imgs) == 0 {
		return nil, fmt.Errorf("leerer Bild-Batch")
	}

	plane := p.Size * p.Size
	data := make([]float32, len(imgs)*3*plane)

	var g errgroup.Group
	g.SetLimit(envconfig.NumThreads())

	for i, img := range imgs {
		i, img := i, img
		g.Go(func() error {
			chw, err := p.Apply(img)
			if err != nil {
				return fmt.Errorf("bild %d: %w", i, err)
			}
			copy(data[i*3*plane:], chw)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	t := ctx.FromFloats(data, len(imgs), 3, p.Size, p.Size)
	if p.HalfPrecision {
		t = t.Cast(ctx, ml.DTypeF16)
	}
	return t, nil
}
