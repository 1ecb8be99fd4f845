// types.go - Datentypen und Konstanten fuer ML-Operationen
// Dieses Modul definiert grundlegende Typen wie DType.
package ml

// DType represents the data type of tensor elements.
type DType int

const (
	DTypeOther DType = iota
	DTypeF32
	DTypeF16
	DTypeI32
)

// String gibt den Namen des Datentyps zurueck
func (dt DType) String() string {
	switch dt {
	case DTypeF32:
		return "F32"
	case DTypeF16:
		return "F16"
	case DTypeI32:
		return "I32"
	default:
		return "Other"
	}
}
