// lstm.go - Mehrschichtiger unidirektionaler LSTM-Encoder
//
// Dieses Modul enthaelt:
// - LSTMLayer: eine LSTM-Schicht mit Gate-Reihenfolge i, f, g, o
// - LSTM: Stapel von Schichten mit Dropout zwischen den Schichten
//
// Eingaben sind batch-first (batch, T, in); die Ausgabe enthaelt die
// Hidden-States aller Zeitschritte der obersten Schicht (batch, T, hidden).
package nn

import "github.com/staceycy/probnmn-clevr/ml"

// LSTMLayer implementiert eine einzelne LSTM-Schicht
type LSTMLayer struct {
	WeightIH ml.Tensor // (4*hidden, in)
	WeightHH ml.Tensor // (4*hidden, hidden)
	BiasIH   ml.Tensor // (4*hidden)
	BiasHH   ml.Tensor // (4*hidden)

	hidden int
}

// NewLSTMLayer erstellt eine Schicht mit uniformer 1/sqrt(hidden)-Initialisierung
func NewLSTMLayer(ctx ml.Context, in, hidden int) *LSTMLayer {
	return &LSTMLayer{
		WeightIH: ScaledUniform(ctx, hidden, 4*hidden, in),
		WeightHH: ScaledUniform(ctx, hidden, 4*hidden, hidden),
		BiasIH:   ScaledUniform(ctx, hidden, 4*hidden),
		BiasHH:   ScaledUniform(ctx, hidden, 4*hidden),
		hidden:   hidden,
	}
}

// step fuehrt einen Zeitschritt aus; x (batch, in), h und c (batch, hidden)
func (l *LSTMLayer) step(ctx ml.Context, x, h, c ml.Tensor) (ml.Tensor, ml.Tensor) {
	gates := x.MatmulT(ctx, l.WeightIH).
		Add(ctx, h.MatmulT(ctx, l.WeightHH)).
		Add(ctx, l.BiasIH).
		Add(ctx, l.BiasHH)

	n := l.hidden
	i := gates.Slice(ctx, 1, 0, n).Sigmoid(ctx)
	f := gates.Slice(ctx, 1, n, 2*n).Sigmoid(ctx)
	g := gates.Slice(ctx, 1, 2*n, 3*n).Tanh(ctx)
	o := gates.Slice(ctx, 1, 3*n, 4*n).Sigmoid(ctx)

	c = f.Mul(ctx, c).Add(ctx, i.Mul(ctx, g))
	h = o.Mul(ctx, c.Tanh(ctx))
	return h, c
}

// Forward verarbeitet (batch, T, in) zu (batch, T, hidden)
func (l *LSTMLayer) Forward(ctx ml.Context, x ml.Tensor) ml.Tensor {
	batch, steps := x.Dim(0), x.Dim(1)
	h := ctx.Zeros(ml.DTypeF32, batch, l.hidden)
	c := ctx.Zeros(ml.DTypeF32, batch, l.hidden)

	var out ml.Tensor
	for t := 0; t < steps; t++ {
		xt := x.Slice(ctx, 1, t, t+1).Reshape(ctx, batch, x.Dim(2))
		h, c = l.step(ctx, xt, h, c)

		ht := h.Reshape(ctx, batch, 1, l.hidden)
		if out == nil {
			out = ht
		} else {
			out = out.Concat(ctx, ht, 1)
		}
	}

	return out
}

// LSTM implementiert einen Stapel von LSTM-Schichten
type LSTM struct {
	Layers  []*LSTMLayer
	Dropout float32
}

// NewLSTM erstellt numLayers Schichten; Dropout wirkt zwischen den Schichten
func NewLSTM(ctx ml.Context, in, hidden, numLayers int, dropout float32) *LSTM {
	layers := make([]*LSTMLayer, numLayers)
	for i := range layers {
		size := in
		if i > 0 {
			size = hidden
		}
		layers[i] = NewLSTMLayer(ctx, size, hidden)
	}

	return &LSTM{Layers: layers, Dropout: dropout}
}

// Forward verarbeitet (batch, T, in) zu (batch, T, hidden); training
// aktiviert Dropout zwischen den Schichten
func (l *LSTM) Forward(ctx ml.Context, x ml.Tensor, training bool) ml.Tensor {
	for i, layer := range l.Layers {
		x = layer.Forward(ctx, x)
		if training && l.Dropout > 0 && i < len(l.Layers)-1 {
			x = Dropout(ctx, x, l.Dropout)
		}
	}

	return x
}
