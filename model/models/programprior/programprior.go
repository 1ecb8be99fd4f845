// programprior.go - Sprachmodell-Prior ueber Programm-Sequenzen
//
// Dieses Modul enthaelt:
// - ProgramPrior: LSTM-Sprachmodell ueber den "programs"-Namensraum
// - EvaluateAndSample: Loss-Berechnung und ancestrales Sampling
// - Metrics: Perplexitaet mit Reset-beim-Lesen-Semantik
//
// Die Ausgabeprojektion teilt ihr Gewicht mit der Embedding-Tabelle
// (Weight Tying): beide Rollen zeigen auf denselben Tensor, eine Mutation
// der einen ist in der anderen sichtbar.
package programprior

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/staceycy/probnmn-clevr/ml"
	"github.com/staceycy/probnmn-clevr/ml/nn"
	"github.com/staceycy/probnmn-clevr/model"
)

const namespace = "programs"

// Architektur-Defaults
const (
	defaultInputSize  = 256
	defaultHiddenSize = 128
	defaultNumLayers  = 2
)

func init() {
	model.Register("program_prior", New)
}

// ProgramPrior modelliert P(token_t | token_<t) ueber Programm-Sequenzen
type ProgramPrior struct {
	model.Base

	vocab *model.Vocabulary
	ctx   ml.Context

	startIndex int32
	endIndex   int32
	padIndex   int32
	unkIndex   int32

	embedder   *nn.Embedding
	encoder    *nn.LSTM
	projection *nn.Linear // hidden -> input, ohne Bias
	output     *nn.Linear // input -> vocab, Gewicht mit Embedding geteilt

	perplexity model.Average
}

// Result enthaelt die Ausgaben von EvaluateAndSample
type Result struct {
	// Predictions enthaelt die pro Zeitschritt gesampelten naechsten
	// Tokens, Form (batch, T-1) nach Boundary-Erweiterung
	Predictions ml.Tensor

	// Loss enthaelt die Kreuzentropie pro Sequenz, Form (batch,)
	Loss ml.Tensor
}

// New erstellt einen ProgramPrior aus der Konfiguration
func New(c model.Config) (model.Model, error) {
	if c.Vocabulary == nil {
		return nil, model.ErrNoVocabulary
	}

	inputSize := c.InputSize
	if inputSize == 0 {
		inputSize = defaultInputSize
	}
	hiddenSize := c.HiddenSize
	if hiddenSize == 0 {
		hiddenSize = defaultHiddenSize
	}
	numLayers := c.NumLayers
	if numLayers == 0 {
		numLayers = defaultNumLayers
	}

	ctx := c.Backend.NewContext()
	vocabSize := c.Vocabulary.Size(namespace)
	padIndex := c.Vocabulary.TokenIndex(namespace, model.PaddingToken)

	p := &ProgramPrior{
		Base:  model.NewBase(c.Backend),
		vocab: c.Vocabulary,
		ctx:   ctx,

		startIndex: int32(c.Vocabulary.TokenIndex(namespace, model.StartToken)),
		endIndex:   int32(c.Vocabulary.TokenIndex(namespace, model.EndToken)),
		padIndex:   int32(padIndex),
		unkIndex:   int32(c.Vocabulary.TokenIndex(namespace, model.UnknownToken)),

		embedder:   nn.NewEmbedding(ctx, vocabSize, inputSize, padIndex),
		encoder:    nn.NewLSTM(ctx, inputSize, hiddenSize, numLayers, c.Dropout),
		projection: nn.NewLinear(ctx, hiddenSize, inputSize, false),
	}

	// Ein- und Ausgabe-Embeddings teilen: dasselbe Tensor-Handle dient als
	// Tabelle (vocab, input) und als Ausgabegewicht (out=vocab, in=input)
	p.output = &nn.Linear{Weight: p.embedder.Weight}

	return p, nil
}

// validate prueft die Eingabe an der Modellgrenze
func (p *ProgramPrior) validate(programTokens ml.Tensor) error {
	shape := programTokens.Shape()
	if len(shape) != 2 || shape[0] == 0 {
		return fmt.Errorf("programprior: erwarte (batch, seqLen), erhielt %v", shape)
	}
	if shape[1] == 0 {
		return errors.New("programprior: maximale Sequenzlaenge ist 0")
	}

	vocabSize := int32(p.vocab.Size(namespace))
	for _, tok := range programTokens.Ints() {
		if tok < 0 || tok >= vocabSize {
			return fmt.Errorf("programprior: Token-Index %d ausserhalb [0, %d)", tok, vocabSize)
		}
	}

	return nil
}

// EvaluateAndSample berechnet pro Sequenz den Kreuzentropie-Loss und sampelt
// pro Zeitschritt das naechste Token (ancestrales Sampling, kein Argmax).
//
// programTokens: (batch, seqLen), rechts mit Padding aufgefuellt.
// Im Evaluationsmodus wird der Batch-Mittelwert des Loss (Basis 2) fuer die
// Perplexitaet akkumuliert.
func (p *ProgramPrior) EvaluateAndSample(programTokens ml.Tensor) (*Result, error) {
	if err := p.validate(programTokens); err != nil {
		return nil, err
	}

	ctx := p.ctx

	// Start- und End-Token pro Sequenz einfuegen; (batch, T) mit T = L+2
	tokens := nn.AddSequenceBoundaries(ctx, programTokens, p.padIndex, p.startIndex, p.endIndex)
	mask := nn.PaddingMask(ctx, tokens, p.padIndex)
	steps := tokens.Dim(1)

	// Maske um einen Schritt verschoben: Positionen 1..T-1, passend zu den
	// Zielen des naechsten Zeitschritts (Start-Token zaehlt nicht zur Laenge)
	shiftedMask := mask.Slice(ctx, 1, 1, steps)

	// (batch, T, input) -> (batch, T, hidden) -> (batch, T, vocab)
	embedded := p.embedder.Forward(ctx, tokens)
	encoded := p.encoder.Forward(ctx, embedded, p.Training())
	logits := p.output.Forward(ctx, p.projection.Forward(ctx, encoded))

	// Start, Padding und Unknown duerfen nie gesampelt werden; nur die
	// Sampling-Verteilung wird genullt, die Logits bleiben unveraendert
	probs := p.maskReserved(ctx, logits.Softmax(ctx))

	// Pro Zeitschritt eine kategoriale Ziehung; letzter Schritt entfaellt,
	// da kein weiteres Ziel existiert
	sampled := probs.Multinomial(ctx)
	predictions := p.maskPredictions(ctx, sampled, shiftedMask)

	// Dump nur bei aktivem Debug-Level materialisieren
	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("programme gesampelt", "predictions", ml.Dump(predictions))
	}

	nextLogits := logits.Slice(ctx, 1, 0, steps-1)
	nextTargets := tokens.Slice(ctx, 1, 1, steps)
	loss := nn.SequenceCrossEntropyWithLogits(ctx, nextLogits, nextTargets, shiftedMask)

	if !p.Training() {
		var mean float64
		vals := loss.Floats()
		for _, v := range vals {
			mean += float64(v)
		}
		mean /= float64(len(vals))

		// Akkumulation in Basis 2, Perplexitaet ist 2^Mittelwert
		p.perplexity.Record(mean / math.Ln2)
	}

	return &Result{Predictions: predictions, Loss: loss}, nil
}

// maskReserved nullt die Sampling-Masse der reservierten Tokens
func (p *ProgramPrior) maskReserved(ctx ml.Context, probs ml.Tensor) ml.Tensor {
	shape := probs.Shape()
	vocab := shape[len(shape)-1]

	keep := make([]float32, vocab)
	for i := range keep {
		keep[i] = 1
	}
	keep[p.startIndex] = 0
	keep[p.padIndex] = 0
	keep[p.unkIndex] = 0

	return probs.Mul(ctx, ctx.FromFloats(keep, vocab))
}

// maskPredictions verwirft den letzten Schritt und nullt Padding-Positionen
func (p *ProgramPrior) maskPredictions(ctx ml.Context, sampled, shiftedMask ml.Tensor) ml.Tensor {
	steps := sampled.Dim(1)
	pred := sampled.Slice(ctx, 1, 0, steps-1).Ints()
	m := shiftedMask.Floats()

	for i := range pred {
		if m[i] == 0 {
			pred[i] = 0
		}
	}

	return ctx.FromInts(pred, sampled.Dim(0), steps-1)
}

// Metrics gibt die Perplexitaet zurueck und setzt den Akkumulator zurueck.
// Ohne akkumulierte Daten (z.B. zweites Lesen in Folge) wird ErrNoData
// zurueckgegeben.
func (p *ProgramPrior) Metrics() (map[string]float64, error) {
	avg, err := p.perplexity.Value()
	if err != nil {
		return nil, err
	}

	return map[string]float64{"perplexity": math.Pow(2, avg)}, nil
}

// Close gibt den Modell-Kontext frei
func (p *ProgramPrior) Close() {
	p.ctx.Close()
}
