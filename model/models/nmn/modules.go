// modules.go - Elementare Module des Neural Module Network
//
// Dieses Modul enthaelt:
// - And, Or: mengenartige Verknuepfung zweier Attention-Masken
// - Attention, Relate, Same: Feature + Attention -> Attention
// - Query, Compare: Faltungsbloecke mit Feature-Ausgabe
// - Flatten: parameterfreie Formtransformation
//
// Jedes Modul ist pro Forward-Pass zustandslos; trainierbare Parameter
// gehoeren der jeweiligen Instanz und werden bei der Konstruktion Fan-In-
// basiert initialisiert. Feature-Maps haben die Form (batch, C, H, W),
// Attention-Masken (batch, 1, H, W) mit Werten in (0, 1).
package nmn

import (
	"github.com/staceycy/probnmn-clevr/ml"
	"github.com/staceycy/probnmn-clevr/ml/nn"
)

// And schneidet zwei Attention-Masken (elementweises Minimum)
type And struct{}

func (And) Forward(ctx ml.Context, attn1, attn2 ml.Tensor) ml.Tensor {
	return attn1.Minimum(ctx, attn2)
}

// Or vereinigt zwei Attention-Masken (elementweises Maximum)
type Or struct{}

func (Or) Forward(ctx ml.Context, attn1, attn2 ml.Tensor) ml.Tensor {
	return attn1.Maximum(ctx, attn2)
}

// Attention attendiert Features und produziert eine neue Attention-Maske
type Attention struct {
	Conv1 *nn.Conv2D
	Conv2 *nn.Conv2D
	Conv3 *nn.Conv2D
}

// NewAttention erstellt das Modul fuer dim Feature-Kanaele
func NewAttention(ctx ml.Context, dim int) *Attention {
	return &Attention{
		Conv1: nn.NewConv2D(ctx, dim, dim, 3, 1, 1),
		Conv2: nn.NewConv2D(ctx, dim, dim, 3, 1, 1),
		Conv3: nn.NewConv2D(ctx, dim, 1, 1, 0, 1),
	}
}

func (m *Attention) Forward(ctx ml.Context, feats, attn ml.Tensor) ml.Tensor {
	attended := feats.Mul(ctx, attn)
	out := m.Conv1.Forward(ctx, attended).RELU(ctx)
	out = m.Conv2.Forward(ctx, out).RELU(ctx)
	return m.Conv3.Forward(ctx, out).Sigmoid(ctx)
}

// Query attendiert Features und extrahiert eine Feature-Map gleicher Form
type Query struct {
	Conv1 *nn.Conv2D
	Conv2 *nn.Conv2D
}

// NewQuery erstellt das Modul fuer dim Feature-Kanaele
func NewQuery(ctx ml.Context, dim int) *Query {
	return &Query{
		Conv1: nn.NewConv2D(ctx, dim, dim, 3, 1, 1),
		Conv2: nn.NewConv2D(ctx, dim, dim, 3, 1, 1),
	}
}

func (m *Query) Forward(ctx ml.Context, feats, attn ml.Tensor) ml.Tensor {
	attended := feats.Mul(ctx, attn)
	out := m.Conv1.Forward(ctx, attended).RELU(ctx)
	return m.Conv2.Forward(ctx, out).RELU(ctx)
}

// Relate markiert raeumliche Relationen zur attendierten Region. Die
// wachsende Dilation (1, 2, 4, 8) weitet das rezeptive Feld von 3 auf 31
// Pixel und erfasst damit langreichweitige Beziehungen.
type Relate struct {
	Conv1 *nn.Conv2D
	Conv2 *nn.Conv2D
	Conv3 *nn.Conv2D
	Conv4 *nn.Conv2D
	Conv5 *nn.Conv2D
	Conv6 *nn.Conv2D
}

// NewRelate erstellt das Modul fuer dim Feature-Kanaele
func NewRelate(ctx ml.Context, dim int) *Relate {
	return &Relate{
		Conv1: nn.NewConv2D(ctx, dim, dim, 3, 1, 1),
		Conv2: nn.NewConv2D(ctx, dim, dim, 3, 2, 2),
		Conv3: nn.NewConv2D(ctx, dim, dim, 3, 4, 4),
		Conv4: nn.NewConv2D(ctx, dim, dim, 3, 8, 8),
		Conv5: nn.NewConv2D(ctx, dim, dim, 3, 1, 1),
		Conv6: nn.NewConv2D(ctx, dim, 1, 1, 0, 1),
	}
}

func (m *Relate) Forward(ctx ml.Context, feats, attn ml.Tensor) ml.Tensor {
	out := feats.Mul(ctx, attn)
	out = m.Conv1.Forward(ctx, out).RELU(ctx)
	out = m.Conv2.Forward(ctx, out).RELU(ctx)
	out = m.Conv3.Forward(ctx, out).RELU(ctx)
	out = m.Conv4.Forward(ctx, out).RELU(ctx)
	out = m.Conv5.Forward(ctx, out).RELU(ctx)
	return m.Conv6.Forward(ctx, out).Sigmoid(ctx)
}

// Same lokalisiert das Maximum der Attention, extrahiert dort den
// Feature-Vektor und korreliert ihn mit allen Positionen. Bei mehreren
// gleich grossen Maxima gewinnt das erste in Zeilenreihenfolge.
type Same struct {
	Conv *nn.Conv2D

	dim int
}

// NewSame erstellt das Modul fuer dim Feature-Kanaele
func NewSame(ctx ml.Context, dim int) *Same {
	return &Same{
		Conv: nn.NewConv2D(ctx, dim+1, 1, 1, 0, 1),
		dim:  dim,
	}
}

func (m *Same) Forward(ctx ml.Context, feats, attn ml.Tensor) ml.Tensor {
	batch := feats.Dim(0)
	h, w := feats.Dim(2), feats.Dim(3)

	// Argmax ueber die flache H*W-Achse pro Batch-Element
	flatIdx := attn.Reshape(ctx, batch, h*w).Argmax(ctx).Ints()

	// Referenz-Feature-Vektor pro Batch-Element an der Maximalposition
	src := feats.Floats()
	ref := make([]float32, batch*m.dim)
	for b := 0; b < batch; b++ {
		r, c := int(flatIdx[b])/w, int(flatIdx[b])%w
		for ch := 0; ch < m.dim; ch++ {
			ref[b*m.dim+ch] = src[((b*m.dim+ch)*h+r)*w+c]
		}
	}

	// (batch, dim, 1, 1) broadcastet ueber alle raeumlichen Positionen
	refTensor := ctx.FromFloats(ref, batch, m.dim, 1, 1)
	correlated := feats.Mul(ctx, refTensor)

	// Original-Attention als zusaetzlichen Kanal anhaengen
	stacked := correlated.Concat(ctx, attn, 1)
	return m.Conv.Forward(ctx, stacked).Sigmoid(ctx)
}

// ReferenceVector gibt den extrahierten Feature-Vektor an der maximalen
// Attention-Position zurueck; primaer fuer Tests und Diagnose.
func (m *Same) ReferenceVector(ctx ml.Context, feats, attn ml.Tensor, batchIndex int) []float32 {
	batch := feats.Dim(0)
	h, w := feats.Dim(2), feats.Dim(3)

	flatIdx := attn.Reshape(ctx, batch, h*w).Argmax(ctx).Ints()
	r, c := int(flatIdx[batchIndex])/w, int(flatIdx[batchIndex])%w

	src := feats.Floats()
	ref := make([]float32, m.dim)
	for ch := 0; ch < m.dim; ch++ {
		ref[ch] = src[((batchIndex*m.dim+ch)*h+r)*w+c]
	}

	return ref
}

// Compare verkettet zwei Feature-Maps und reduziert sie auf eine
// Vergleichs-Feature-Map
type Compare struct {
	Projection *nn.Conv2D
	Conv1      *nn.Conv2D
	Conv2      *nn.Conv2D
}

// NewCompare erstellt das Modul fuer dim Feature-Kanaele
func NewCompare(ctx ml.Context, dim int) *Compare {
	return &Compare{
		Projection: nn.NewConv2D(ctx, 2*dim, dim, 1, 0, 1),
		Conv1:      nn.NewConv2D(ctx, dim, dim, 3, 1, 1),
		Conv2:      nn.NewConv2D(ctx, dim, dim, 3, 1, 1),
	}
}

func (m *Compare) Forward(ctx ml.Context, in1, in2 ml.Tensor) ml.Tensor {
	out := in1.Concat(ctx, in2, 1)
	out = m.Projection.Forward(ctx, out).RELU(ctx)
	out = m.Conv1.Forward(ctx, out).RELU(ctx)
	return m.Conv2.Forward(ctx, out).RELU(ctx)
}

// Flatten kollabiert alle Nicht-Batch-Dimensionen zu einer
type Flatten struct{}

func (Flatten) Forward(ctx ml.Context, x ml.Tensor) ml.Tensor {
	return x.Flatten(ctx)
}
