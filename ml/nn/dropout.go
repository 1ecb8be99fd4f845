// dropout.go - Inverted Dropout
// Dieses Modul implementiert Dropout ueber eine Bernoulli-Maske aus dem
// seedbaren RNG des Backends; Erhaltene Elemente werden mit 1/(1-p) skaliert.
package nn

import "github.com/staceycy/probnmn-clevr/ml"

// Dropout nullt Elemente mit Wahrscheinlichkeit p und skaliert den Rest
func Dropout(ctx ml.Context, t ml.Tensor, p float32) ml.Tensor {
	if p <= 0 {
		return t
	}
	if p >= 1 {
		return t.Scale(ctx, 0)
	}

	u := ctx.RandomUniform(0, 1, t.Shape()...).Floats()
	keep := 1 / (1 - p)
	for i, v := range u {
		if v < p {
			u[i] = 0
		} else {
			u[i] = keep
		}
	}

	return t.Mul(ctx, ctx.FromFloats(u, t.Shape()...))
}
