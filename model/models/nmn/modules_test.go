// MODUL: modules_test
// ZWECK: Tests fuer die elementaren NMN-Module
// INPUT: Synthetische Feature-Maps und Attention-Masken
// OUTPUT: Testresultate
// NEBENEFFEKTE: keine
// ABHAENGIGKEITEN: testing, go-cmp
// HINWEISE: Testet And/Or-Eigenschaften, Same-Referenzvektor und Formvertraege

package nmn

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/staceycy/probnmn-clevr/ml"
	_ "github.com/staceycy/probnmn-clevr/ml/backend/cpu"
)

func newTestContext(t *testing.T) ml.Context {
	t.Helper()

	b, err := ml.NewBackend("cpu", ml.BackendParams{Seed: 42})
	if err != nil {
		t.Fatalf("Backend-Erstellung fehlgeschlagen: %v", err)
	}
	t.Cleanup(b.Close)

	ctx := b.NewContext()
	t.Cleanup(ctx.Close)
	return ctx
}

// fill erstellt einen konstant gefuellten Tensor
func fill(ctx ml.Context, v float32, shape ...int) ml.Tensor {
	n := 1
	for _, d := range shape {
		n *= d
	}
	s := make([]float32, n)
	for i := range s {
		s[i] = v
	}
	return ctx.FromFloats(s, shape...)
}

func TestAndOrSetSemantics(t *testing.T) {
	ctx := newTestContext(t)

	ones := fill(ctx, 1, 2, 1, 3, 3)
	zeros := fill(ctx, 0, 2, 1, 3, 3)

	for _, v := range (And{}).Forward(ctx, ones, zeros).Floats() {
		if v != 0 {
			t.Fatalf("And(1, 0) = %f, erwartet 0", v)
		}
	}
	for _, v := range (Or{}).Forward(ctx, ones, zeros).Floats() {
		if v != 1 {
			t.Fatalf("Or(1, 0) = %f, erwartet 1", v)
		}
	}
}

func TestAttentionOutputShapeAndRange(t *testing.T) {
	ctx := newTestContext(t)

	m := NewAttention(ctx, 4)
	out := m.Forward(ctx, ctx.RandomNormal(0, 1, 2, 4, 6, 6), fill(ctx, 1, 2, 1, 6, 6))

	if diff := cmp.Diff([]int{2, 1, 6, 6}, out.Shape()); diff != "" {
		t.Fatalf("Attention-Form abweichend (-want +got):\n%s", diff)
	}
	for _, v := range out.Floats() {
		if v <= 0 || v >= 1 {
			t.Fatalf("Attention-Wert %f ausserhalb (0, 1)", v)
		}
	}
}

func TestQueryPreservesFeatureShape(t *testing.T) {
	ctx := newTestContext(t)

	m := NewQuery(ctx, 5)
	out := m.Forward(ctx, ctx.RandomNormal(0, 1, 1, 5, 4, 4), fill(ctx, 0.5, 1, 1, 4, 4))

	if diff := cmp.Diff([]int{1, 5, 4, 4}, out.Shape()); diff != "" {
		t.Errorf("Query-Form abweichend (-want +got):\n%s", diff)
	}
}

func TestRelateDilatedStackShape(t *testing.T) {
	ctx := newTestContext(t)

	// 16x16 ist gross genug fuer die maximale Dilation 8
	m := NewRelate(ctx, 3)
	out := m.Forward(ctx, ctx.RandomNormal(0, 1, 2, 3, 16, 16), fill(ctx, 1, 2, 1, 16, 16))

	if diff := cmp.Diff([]int{2, 1, 16, 16}, out.Shape()); diff != "" {
		t.Fatalf("Relate-Form abweichend (-want +got):\n%s", diff)
	}
	for _, v := range out.Floats() {
		if v <= 0 || v >= 1 {
			t.Fatalf("Relate-Wert %f ausserhalb (0, 1)", v)
		}
	}
}

func TestSameExtractsExactReferenceVector(t *testing.T) {
	ctx := newTestContext(t)

	feats := ctx.RandomNormal(0, 1, 1, 4, 5, 5)

	// Genau ein Maximum an Position (2, 3)
	attnVals := make([]float32, 25)
	attnVals[2*5+3] = 1
	attn := ctx.FromFloats(attnVals, 1, 1, 5, 5)

	m := NewSame(ctx, 4)
	got := m.ReferenceVector(ctx, feats, attn, 0)

	// Erwartet exakt feats[0, :, 2, 3]
	src := feats.Floats()
	want := make([]float32, 4)
	for ch := 0; ch < 4; ch++ {
		want[ch] = src[(ch*5+2)*5+3]
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Referenzvektor abweichend (-want +got):\n%s", diff)
	}
}

func TestSameOutputShape(t *testing.T) {
	ctx := newTestContext(t)

	m := NewSame(ctx, 4)
	attnVals := make([]float32, 25)
	attnVals[7] = 1

	out := m.Forward(ctx, ctx.RandomNormal(0, 1, 1, 4, 5, 5), ctx.FromFloats(attnVals, 1, 1, 5, 5))
	if diff := cmp.Diff([]int{1, 1, 5, 5}, out.Shape()); diff != "" {
		t.Errorf("Same-Form abweichend (-want +got):\n%s", diff)
	}
}

func TestCompareReducesConcatenation(t *testing.T) {
	ctx := newTestContext(t)

	m := NewCompare(ctx, 6)
	in1 := ctx.RandomNormal(0, 1, 2, 6, 4, 4)
	in2 := ctx.RandomNormal(0, 1, 2, 6, 4, 4)

	out := m.Forward(ctx, in1, in2)
	if diff := cmp.Diff([]int{2, 6, 4, 4}, out.Shape()); diff != "" {
		t.Errorf("Compare-Form abweichend (-want +got):\n%s", diff)
	}
}

func TestFlattenArbitraryRank(t *testing.T) {
	ctx := newTestContext(t)

	out := (Flatten{}).Forward(ctx, ctx.RandomNormal(0, 1, 2, 3, 4, 5))
	if diff := cmp.Diff([]int{2, 60}, out.Shape()); diff != "" {
		t.Errorf("Flatten-Form abweichend (-want +got):\n%s", diff)
	}
}

func TestNewModuleClosedSet(t *testing.T) {
	ctx := newTestContext(t)

	kinds := []Kind{KindAnd, KindOr, KindAttention, KindQuery, KindRelate, KindSame, KindCompare, KindFlatten}
	for _, k := range kinds {
		m, err := NewModule(ctx, k, 4)
		if err != nil {
			t.Fatalf("NewModule(%v) fehlgeschlagen: %v", k, err)
		}
		if m.Kind() != k {
			t.Errorf("NewModule(%v).Kind() = %v", k, m.Kind())
		}
	}

	if _, err := NewModule(ctx, Kind(99), 4); err == nil {
		t.Error("unbekannte Modulart muss einen Fehler liefern")
	}
}

func TestCheckComposition(t *testing.T) {
	ctx := newTestContext(t)

	attention, _ := NewModule(ctx, KindAttention, 4)
	query, _ := NewModule(ctx, KindQuery, 4)
	and, _ := NewModule(ctx, KindAnd, 4)

	// Attention liefert eine Maske: gueltig als zweite And-Eingabe
	if err := CheckComposition(attention, and, 1); err != nil {
		t.Errorf("Attention -> And sollte gueltig sein: %v", err)
	}

	// Query liefert Features: ungueltig als And-Eingabe
	if err := CheckComposition(query, and, 0); err == nil {
		t.Error("Query -> And sollte als Typfehler erkannt werden")
	}

	// Eingabe-Index ausserhalb der Stelligkeit
	if err := CheckComposition(attention, and, 2); err == nil {
		t.Error("Eingabe-Index 2 bei And sollte ein Fehler sein")
	}
}
