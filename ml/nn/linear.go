// linear.go - Linearer Layer
//
// Dieses Modul enthaelt:
// - Linear: y = x W^T + b mit Gewicht der Form (out, in)
//
// Das Gewicht liegt transponiert vor, damit eine Ausgabeprojektion das
// Embedding-Tabellen-Tensor direkt teilen kann (Weight Tying): die Tabelle
// (vocab, in) ist zugleich ein gueltiges Linear-Gewicht (out=vocab, in).
package nn

import "github.com/staceycy/probnmn-clevr/ml"

// Linear implementiert eine affine Projektion
type Linear struct {
	Weight ml.Tensor // (out, in)
	Bias   ml.Tensor // (out), nil wenn ohne Bias
}

// NewLinear erstellt einen Linear-Layer mit Fan-In-Initialisierung
func NewLinear(ctx ml.Context, in, out int, bias bool) *Linear {
	l := &Linear{Weight: ScaledUniform(ctx, in, out, in)}
	if bias {
		l.Bias = ctx.Zeros(ml.DTypeF32, out)
	}

	return l
}

// Forward projiziert (..., in) zu (..., out)
func (l *Linear) Forward(ctx ml.Context, t ml.Tensor) ml.Tensor {
	t = t.MatmulT(ctx, l.Weight)
	if l.Bias != nil {
		t = t.Add(ctx, l.Bias)
	}

	return t
}
