// conv.go - 2D-Faltungs-Layer
//
// Dieses Modul enthaelt:
// - Conv2D: Faltung mit quadratischem Kernel, Padding und Dilation
//
// Gewichte werden Fan-In-basiert normalverteilt initialisiert, Biases
// starten bei Null und bleiben unangetastet.
package nn

import "github.com/staceycy/probnmn-clevr/ml"

// Conv2D implementiert eine 2D-Faltung (stride 1)
type Conv2D struct {
	Weight ml.Tensor // (out, in, k, k)
	Bias   ml.Tensor // (out)

	Padding  int
	Dilation int
}

// NewConv2D erstellt einen Faltungs-Layer mit Kaiming-Initialisierung
func NewConv2D(ctx ml.Context, in, out, kernel, padding, dilation int) *Conv2D {
	return &Conv2D{
		Weight:   KaimingNormal(ctx, in*kernel*kernel, out, in, kernel, kernel),
		Bias:     ctx.Zeros(ml.DTypeF32, out),
		Padding:  padding,
		Dilation: dilation,
	}
}

// Forward faltet (batch, in, H, W) zu (batch, out, H', W')
func (c *Conv2D) Forward(ctx ml.Context, t ml.Tensor) ml.Tensor {
	return t.Conv2D(ctx, c.Weight, c.Bias, c.Padding, c.Dilation)
}
