// embedding.go - Token-Embedding
//
// Dieses Modul enthaelt:
// - Embedding: Nachschlagetabelle Token-Index -> Vektor
//
// Die Padding-Zeile wird bei der Konstruktion auf Null gesetzt und gilt als
// nicht trainierbar: ein externer Optimierer darf sie nicht veraendern.
package nn

import "github.com/staceycy/probnmn-clevr/ml"

// Embedding implementiert eine Embedding-Tabelle
type Embedding struct {
	Weight ml.Tensor // (vocab, dim)

	PaddingIndex int
}

// NewEmbedding erstellt eine normalverteilte Tabelle mit genullter Padding-Zeile
func NewEmbedding(ctx ml.Context, vocabSize, dim, paddingIndex int) *Embedding {
	weight := ctx.RandomNormal(0, 1, vocabSize, dim)

	// Padding-Zeile nullen
	data := weight.Floats()
	for i := 0; i < dim; i++ {
		data[paddingIndex*dim+i] = 0
	}

	return &Embedding{
		Weight:       ctx.FromFloats(data, vocabSize, dim),
		PaddingIndex: paddingIndex,
	}
}

// Forward schlaegt Token-Indizes (beliebige Form, I32) nach; Ergebnisform
// ist Indexform + (dim)
func (e *Embedding) Forward(ctx ml.Context, ids ml.Tensor) ml.Tensor {
	return e.Weight.Rows(ctx, ids)
}
