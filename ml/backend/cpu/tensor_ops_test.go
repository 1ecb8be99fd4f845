// MODUL: tensor_ops_test
// ZWECK: Tests fuer Arithmetik, Matmul, Aktivierungen und Faltung
// INPUT: Synthetische Tensoren
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing, go-cmp
// HINWEISE: Testet Broadcasting, Softmax-Normierung und Dilation-Formen

package cpu

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/staceycy/probnmn-clevr/ml"
)

// newTestContext erstellt ein geseedetes Backend samt Kontext
func newTestContext(t *testing.T) ml.Context {
	t.Helper()

	b, err := ml.NewBackend("cpu", ml.BackendParams{NumThreads: 2, Seed: 42})
	if err != nil {
		t.Fatalf("Backend-Erstellung fehlgeschlagen: %v", err)
	}
	t.Cleanup(b.Close)

	ctx := b.NewContext()
	t.Cleanup(ctx.Close)
	return ctx
}

var approx = cmpopts.EquateApprox(1e-5, 1e-6)

func TestAddBroadcast(t *testing.T) {
	ctx := newTestContext(t)

	// (2, 3) + (3,) broadcastet den Bias ueber beide Zeilen
	a := ctx.FromFloats([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	bias := ctx.FromFloats([]float32{10, 20, 30}, 3)

	got := a.Add(ctx, bias)
	want := []float32{11, 22, 33, 14, 25, 36}
	if diff := cmp.Diff(want, got.Floats(), approx); diff != "" {
		t.Errorf("Add-Broadcast abweichend (-want +got):\n%s", diff)
	}
}

func TestSubBroadcast(t *testing.T) {
	ctx := newTestContext(t)

	// (2, 3) - (3,) zieht den Mittelwert pro Spalte ab
	a := ctx.FromFloats([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	mean := ctx.FromFloats([]float32{2.5, 3.5, 4.5}, 3)

	got := a.Sub(ctx, mean)
	want := []float32{-1.5, -1.5, -1.5, 1.5, 1.5, 1.5}
	if diff := cmp.Diff(want, got.Floats(), approx); diff != "" {
		t.Errorf("Sub-Broadcast abweichend (-want +got):\n%s", diff)
	}
}

func TestMulChannelBroadcast(t *testing.T) {
	ctx := newTestContext(t)

	// Attention (1,1,2,2) gegen Features (1,2,2,2) ueber Kanaele expandiert
	feats := ctx.FromFloats([]float32{1, 2, 3, 4, 5, 6, 7, 8}, 1, 2, 2, 2)
	attn := ctx.FromFloats([]float32{1, 0, 0.5, 1}, 1, 1, 2, 2)

	got := feats.Mul(ctx, attn)
	want := []float32{1, 0, 1.5, 4, 5, 0, 3.5, 8}
	if diff := cmp.Diff(want, got.Floats(), approx); diff != "" {
		t.Errorf("Kanal-Broadcast abweichend (-want +got):\n%s", diff)
	}
}

func TestMinimumMaximum(t *testing.T) {
	ctx := newTestContext(t)

	ones := ctx.FromFloats([]float32{1, 1, 1, 1}, 1, 1, 2, 2)
	zeros := ctx.Zeros(ml.DTypeF32, 1, 1, 2, 2)

	if got := ones.Minimum(ctx, zeros).Floats(); got[0] != 0 || got[3] != 0 {
		t.Errorf("Minimum(1, 0) = %v, erwartet nur Nullen", got)
	}
	if got := ones.Maximum(ctx, zeros).Floats(); got[0] != 1 || got[3] != 1 {
		t.Errorf("Maximum(1, 0) = %v, erwartet nur Einsen", got)
	}
}

func TestMinimumMaximumMixedValues(t *testing.T) {
	ctx := newTestContext(t)

	a := ctx.FromFloats([]float32{0.2, 0.9, -1, 3}, 2, 2)
	b := ctx.FromFloats([]float32{0.5, 0.1, 2, -4}, 2, 2)

	if diff := cmp.Diff([]float32{0.2, 0.1, -1, -4}, a.Minimum(ctx, b).Floats(), approx); diff != "" {
		t.Errorf("Minimum abweichend (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float32{0.5, 0.9, 2, 3}, a.Maximum(ctx, b).Floats(), approx); diff != "" {
		t.Errorf("Maximum abweichend (-want +got):\n%s", diff)
	}
}

func TestEmptyShapeAndWrite(t *testing.T) {
	ctx := newTestContext(t)

	e := ctx.Empty(ml.DTypeF32, 2, 3)
	if diff := cmp.Diff([]int{2, 3}, e.Shape()); diff != "" {
		t.Fatalf("Empty-Form abweichend (-want +got):\n%s", diff)
	}
	if e.DType() != ml.DTypeF32 {
		t.Fatalf("Empty-DType %v, erwartet F32", e.DType())
	}

	// Empty dient als beschreibbarer Puffer
	e.FromFloats([]float32{1, 2, 3, 4, 5, 6})
	if diff := cmp.Diff([]float32{1, 2, 3, 4, 5, 6}, e.Floats(), approx); diff != "" {
		t.Errorf("Puffer-Inhalt abweichend (-want +got):\n%s", diff)
	}
}

func TestMatmul(t *testing.T) {
	ctx := newTestContext(t)

	a := ctx.FromFloats([]float32{1, 2, 3, 4}, 2, 2)
	b := ctx.FromFloats([]float32{5, 6, 7, 8}, 2, 2)

	got := a.Matmul(ctx, b)
	want := []float32{19, 22, 43, 50}
	if diff := cmp.Diff(want, got.Floats(), approx); diff != "" {
		t.Errorf("Matmul abweichend (-want +got):\n%s", diff)
	}
}

func TestMatmulTMatchesExplicitTranspose(t *testing.T) {
	ctx := newTestContext(t)

	// (2, 3) x (4, 3)^T -> (2, 4)
	a := ctx.FromFloats([]float32{1, 2, 3, 4, 5, 6}, 2, 3)
	w := ctx.FromFloats([]float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
		1, 1, 1,
	}, 4, 3)

	got := a.MatmulT(ctx, w)
	want := []float32{1, 2, 3, 6, 4, 5, 6, 15}
	if diff := cmp.Diff(want, got.Floats(), approx); diff != "" {
		t.Errorf("MatmulT abweichend (-want +got):\n%s", diff)
	}
}

func TestMatmulBatchedLeadingDims(t *testing.T) {
	ctx := newTestContext(t)

	// (2, 2, 2) x (2, 2): fuehrende Dimensionen als Zeilenblock
	a := ctx.FromFloats([]float32{1, 0, 0, 1, 2, 0, 0, 2}, 2, 2, 2)
	b := ctx.FromFloats([]float32{1, 2, 3, 4}, 2, 2)

	got := a.Matmul(ctx, b)
	if diff := cmp.Diff([]int{2, 2, 2}, got.Shape()); diff != "" {
		t.Fatalf("Matmul-Form abweichend (-want +got):\n%s", diff)
	}

	want := []float32{1, 2, 3, 4, 2, 4, 6, 8}
	if diff := cmp.Diff(want, got.Floats(), approx); diff != "" {
		t.Errorf("Batched Matmul abweichend (-want +got):\n%s", diff)
	}
}

func TestSoftmaxRowsSumToOne(t *testing.T) {
	ctx := newTestContext(t)

	logits := ctx.FromFloats([]float32{1, 2, 3, -1, 0, 1}, 2, 3)
	probs := logits.Softmax(ctx).Floats()

	for row := 0; row < 2; row++ {
		var sum float32
		for i := 0; i < 3; i++ {
			v := probs[row*3+i]
			if v < 0 || v > 1 {
				t.Errorf("Softmax-Wert %f ausserhalb [0,1]", v)
			}
			sum += v
		}
		if sum < 0.9999 || sum > 1.0001 {
			t.Errorf("Softmax-Zeile %d summiert zu %f, erwartet 1", row, sum)
		}
	}
}

func TestLogSoftmaxConsistent(t *testing.T) {
	ctx := newTestContext(t)

	logits := ctx.FromFloats([]float32{0.5, -1.5, 2, 0.25}, 1, 4)
	probs := logits.Softmax(ctx).Floats()
	logProbs := logits.LogSoftmax(ctx).Floats()

	for i := range probs {
		// exp(logsoftmax) == softmax
		if diff := probs[i] - float32(math.Exp(float64(logProbs[i]))); diff > 1e-5 || diff < -1e-5 {
			t.Errorf("LogSoftmax[%d] inkonsistent: %f vs %f", i, logProbs[i], probs[i])
		}
	}
}

func TestConv2DIdentityKernel(t *testing.T) {
	ctx := newTestContext(t)

	// 1x1-Kernel mit Gewicht 1 reproduziert die Eingabe
	x := ctx.FromFloats([]float32{1, 2, 3, 4}, 1, 1, 2, 2)
	w := ctx.FromFloats([]float32{1}, 1, 1, 1, 1)

	got := x.Conv2D(ctx, w, nil, 0, 1)
	if diff := cmp.Diff(x.Floats(), got.Floats(), approx); diff != "" {
		t.Errorf("Identitaets-Faltung abweichend (-want +got):\n%s", diff)
	}
}

func TestConv2DSamePaddingShape(t *testing.T) {
	ctx := newTestContext(t)

	x := ctx.RandomNormal(0, 1, 2, 3, 8, 8)
	w := ctx.RandomNormal(0, 0.1, 5, 3, 3, 3)

	// 3x3 mit Padding 1 erhaelt die raeumliche Form
	got := x.Conv2D(ctx, w, nil, 1, 1)
	if diff := cmp.Diff([]int{2, 5, 8, 8}, got.Shape()); diff != "" {
		t.Errorf("Conv2D-Form abweichend (-want +got):\n%s", diff)
	}
}

func TestConv2DDilationPreservesShape(t *testing.T) {
	ctx := newTestContext(t)

	x := ctx.RandomNormal(0, 1, 1, 2, 16, 16)
	w := ctx.RandomNormal(0, 0.1, 2, 2, 3, 3)

	// Padding == Dilation erhaelt bei 3x3-Kernel die Form (wachsendes
	// rezeptives Feld 3 -> 7 -> 15 -> 31)
	for _, d := range []int{1, 2, 4, 8} {
		got := x.Conv2D(ctx, w, nil, d, d)
		if diff := cmp.Diff([]int{1, 2, 16, 16}, got.Shape()); diff != "" {
			t.Errorf("Dilation %d: Form abweichend (-want +got):\n%s", d, diff)
		}
	}
}

func TestConv2DBias(t *testing.T) {
	ctx := newTestContext(t)

	x := ctx.Zeros(ml.DTypeF32, 1, 1, 2, 2)
	w := ctx.FromFloats([]float32{1}, 1, 1, 1, 1)
	bias := ctx.FromFloats([]float32{3}, 1)

	got := x.Conv2D(ctx, w, bias, 0, 1).Floats()
	for i, v := range got {
		if v != 3 {
			t.Errorf("Conv2D-Bias: Element %d = %f, erwartet 3", i, v)
		}
	}
}
