// dispatch.go - Geschlossene Modul-Auswahl fuer den Executor
//
// Dieses Modul enthaelt:
// - Kind: Aufzaehlung der acht Modularten
// - ValueKind: Attention-Maske vs. Feature-Map
// - Module: gemeinsamer Vertrag (Signatur) fuer den externen Executor
// - NewModule: geschlossener Konstruktor-Switch
// - CheckComposition: Typpruefung einer Modulfolge
//
// Der Executor komponiert Module entlang der Baumstruktur eines Programms;
// die Typpruefung der Komposition liegt bei ihm, nicht beim Einzelmodul.
package nmn

import (
	"fmt"

	"github.com/staceycy/probnmn-clevr/ml"
)

// Kind bezeichnet eine der acht Modularten
type Kind int

const (
	KindAnd Kind = iota
	KindOr
	KindAttention
	KindQuery
	KindRelate
	KindSame
	KindCompare
	KindFlatten
)

// String gibt den Namen der Modulart zurueck
func (k Kind) String() string {
	switch k {
	case KindAnd:
		return "and"
	case KindOr:
		return "or"
	case KindAttention:
		return "attention"
	case KindQuery:
		return "query"
	case KindRelate:
		return "relate"
	case KindSame:
		return "same"
	case KindCompare:
		return "compare"
	case KindFlatten:
		return "flatten"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ValueKind klassifiziert Ein- und Ausgaben eines Moduls
type ValueKind int

const (
	// ValueAttention ist eine Maske (batch, 1, H, W)
	ValueAttention ValueKind = iota
	// ValueFeatures ist eine Feature-Map (batch, C, H, W)
	ValueFeatures
	// ValueFlat ist eine flache Form (batch, N)
	ValueFlat
)

// Signature beschreibt den Typ-Vertrag eines Moduls fuer den Executor
type Signature struct {
	Inputs []ValueKind
	Output ValueKind
}

// Module ist der gemeinsame Vertrag aller Modularten. Das konkrete Forward
// haengt von der Stelligkeit ab; der Executor waehlt anhand der Signatur.
type Module interface {
	Kind() Kind
	Signature() Signature
}

// Kind- und Signatur-Implementierungen der Modularten
func (And) Kind() Kind { return KindAnd }
func (And) Signature() Signature {
	return Signature{Inputs: []ValueKind{ValueAttention, ValueAttention}, Output: ValueAttention}
}

func (Or) Kind() Kind { return KindOr }
func (Or) Signature() Signature {
	return Signature{Inputs: []ValueKind{ValueAttention, ValueAttention}, Output: ValueAttention}
}

func (*Attention) Kind() Kind { return KindAttention }
func (*Attention) Signature() Signature {
	return Signature{Inputs: []ValueKind{ValueFeatures, ValueAttention}, Output: ValueAttention}
}

func (*Query) Kind() Kind { return KindQuery }
func (*Query) Signature() Signature {
	return Signature{Inputs: []ValueKind{ValueFeatures, ValueAttention}, Output: ValueFeatures}
}

func (*Relate) Kind() Kind { return KindRelate }
func (*Relate) Signature() Signature {
	return Signature{Inputs: []ValueKind{ValueFeatures, ValueAttention}, Output: ValueAttention}
}

func (*Same) Kind() Kind { return KindSame }
func (*Same) Signature() Signature {
	return Signature{Inputs: []ValueKind{ValueFeatures, ValueAttention}, Output: ValueAttention}
}

func (*Compare) Kind() Kind { return KindCompare }
func (*Compare) Signature() Signature {
	return Signature{Inputs: []ValueKind{ValueFeatures, ValueFeatures}, Output: ValueFeatures}
}

func (Flatten) Kind() Kind { return KindFlatten }
func (Flatten) Signature() Signature {
	return Signature{Inputs: []ValueKind{ValueFeatures}, Output: ValueFlat}
}

// NewModule erstellt ein Modul der gegebenen Art fuer dim Feature-Kanaele.
// Die Menge der Modularten ist geschlossen; unbekannte Arten sind ein Fehler.
func NewModule(ctx ml.Context, kind Kind, dim int) (Module, error) {
	switch kind {
	case KindAnd:
		return And{}, nil
	case KindOr:
		return Or{}, nil
	case KindAttention:
		return NewAttention(ctx, dim), nil
	case KindQuery:
		return NewQuery(ctx, dim), nil
	case KindRelate:
		return NewRelate(ctx, dim), nil
	case KindSame:
		return NewSame(ctx, dim), nil
	case KindCompare:
		return NewCompare(ctx, dim), nil
	case KindFlatten:
		return Flatten{}, nil
	default:
		return nil, fmt.Errorf("nmn: unbekannte Modulart %v", kind)
	}
}

// CheckComposition prueft, ob die Ausgabe von from als inputIndex-te Eingabe
// von to zulaessig ist. Hilfsfunktion fuer den externen Executor.
func CheckComposition(from, to Module, inputIndex int) error {
	sig := to.Signature()
	if inputIndex < 0 || inputIndex >= len(sig.Inputs) {
		return fmt.Errorf("nmn: %v hat keine Eingabe %d", to.Kind(), inputIndex)
	}

	if got, want := from.Signature().Output, sig.Inputs[inputIndex]; got != want {
		return fmt.Errorf("nmn: %v liefert Wertart %d, %v erwartet %d an Eingabe %d",
			from.Kind(), got, to.Kind(), want, inputIndex)
	}

	return nil
}
