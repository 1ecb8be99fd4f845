// sequence.go - Sequenz-Hilfsfunktionen
//
// Dieses Modul enthaelt:
// - AddSequenceBoundaries: Start-/End-Token pro Sequenz einfuegen
// - PaddingMask: 0/1-Maske aus Token-Indizes
// - SequenceCrossEntropyWithLogits: gewichtete Kreuzentropie pro Sequenz
//
// Die Boundary-Einfuegung respektiert die tatsaechliche Laenge jeder
// Sequenz: das End-Token folgt unmittelbar auf das letzte echte Token,
// nicht auf eine globale Maximallaenge.
package nn

import (
	"fmt"

	"github.com/staceycy/probnmn-clevr/ml"
)

// AddSequenceBoundaries fuegt Start- und End-Token in (batch, L) ein und
// liefert (batch, L+2); Padding bleibt rechtsbuendig erhalten.
func AddSequenceBoundaries(ctx ml.Context, tokens ml.Tensor, padIndex, startIndex, endIndex int32) ml.Tensor {
	shape := tokens.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("nn: AddSequenceBoundaries auf Form %v", shape))
	}

	batch, length := shape[0], shape[1]
	src := tokens.Ints()
	out := make([]int32, batch*(length+2))

	for b := 0; b < batch; b++ {
		row := src[b*length : (b+1)*length]

		n := len(row)
		for n > 0 && row[n-1] == padIndex {
			n--
		}

		dst := out[b*(length+2):]
		dst[0] = startIndex
		copy(dst[1:], row[:n])
		dst[n+1] = endIndex
		for i := n + 2; i < length+2; i++ {
			dst[i] = padIndex
		}
	}

	return ctx.FromInts(out, batch, length+2)
}

// PaddingMask liefert eine F32-Maske gleicher Form: 1 fuer echte Token,
// 0 fuer Padding.
func PaddingMask(ctx ml.Context, tokens ml.Tensor, padIndex int32) ml.Tensor {
	src := tokens.Ints()
	mask := make([]float32, len(src))
	for i, v := range src {
		if v != padIndex {
			mask[i] = 1
		}
	}

	return ctx.FromFloats(mask, tokens.Shape()...)
}

// SequenceCrossEntropyWithLogits berechnet die gewichtete Kreuzentropie
// zwischen logits (batch, T, vocab) und targets (batch, T), normalisiert
// pro Sequenz ueber die Summe der Gewichte. Ergebnisform: (batch,).
func SequenceCrossEntropyWithLogits(ctx ml.Context, logits, targets, weights ml.Tensor) ml.Tensor {
	shape := logits.Shape()
	if len(shape) != 3 {
		panic(fmt.Sprintf("nn: SequenceCrossEntropy auf Logit-Form %v", shape))
	}

	batch, steps, vocab := shape[0], shape[1], shape[2]
	logProbs := logits.LogSoftmax(ctx).Floats()
	tgt := targets.Ints()
	w := weights.Floats()

	out := make([]float32, batch)
	for b := 0; b < batch; b++ {
		var loss, norm float64
		for t := 0; t < steps; t++ {
			i := b*steps + t
			if tgt[i] < 0 || int(tgt[i]) >= vocab {
				panic(fmt.Sprintf("nn: Ziel-Index %d ausserhalb [0, %d)", tgt[i], vocab))
			}

			loss += float64(w[i]) * float64(logProbs[i*vocab+int(tgt[i])])
			norm += float64(w[i])
		}

		// Epsilon verhindert Division durch Null bei reinen Padding-Sequenzen
		out[b] = float32(-loss / (norm + 1e-13))
	}

	return ctx.FromFloats(out, batch)
}
