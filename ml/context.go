// context.go - Context und Tensor Interfaces fuer ML-Operationen
// Dieses Modul definiert die Schnittstellen fuer Tensor-Operationen und Compute-Kontexte.
package ml

// Context represents an execution context for tensor operations. Tensors are
// created through a context and remain valid until the context is closed.
type Context interface {
	Empty(dtype DType, shape ...int) Tensor
	Zeros(dtype DType, shape ...int) Tensor
	FromFloats(s []float32, shape ...int) Tensor
	FromInts(s []int32, shape ...int) Tensor

	// RandomNormal creates a tensor with normally distributed values drawn
	// from the backend's seedable source.
	RandomNormal(mean, std float32, shape ...int) Tensor

	// RandomUniform creates a tensor with uniformly distributed values in
	// [low, high) drawn from the backend's seedable source.
	RandomUniform(low, high float32, shape ...int) Tensor

	// Arange creates a 1D tensor with values within the interval
	// [start, stop) increased by step.
	Arange(start, stop, step float32, dtype DType) Tensor

	Close()
}

// Tensor represents a multi-dimensional array with various operations.
// All operations are eager and leave their receivers unmodified.
type Tensor interface {
	Dim(n int) int
	Shape() []int
	DType() DType

	// Floats liefert die Elemente als float32 (konvertiert bei F16/I32)
	Floats() []float32
	// Ints liefert die Elemente als int32 (nur fuer I32-Tensoren)
	Ints() []int32

	// FromFloats schreibt Werte in-place in den Tensor; die Form bleibt
	// unveraendert. In-place-Updates geteilter Parameter (Weight Tying)
	// laufen ueber diesen Weg.
	FromFloats(s []float32)

	// Elementweise Operationen mit Broadcasting (Dimensionen der Groesse 1
	// werden expandiert)
	Add(ctx Context, t2 Tensor) Tensor
	Sub(ctx Context, t2 Tensor) Tensor
	Mul(ctx Context, t2 Tensor) Tensor
	Minimum(ctx Context, t2 Tensor) Tensor
	Maximum(ctx Context, t2 Tensor) Tensor
	Scale(ctx Context, s float64) Tensor

	// Matmul multipliziert (..., k) mit (k, n) zu (..., n)
	Matmul(ctx Context, t2 Tensor) Tensor
	// MatmulT multipliziert (..., k) mit (n, k) transponiert zu (..., n)
	MatmulT(ctx Context, t2 Tensor) Tensor

	// Aktivierungen und Normalisierung (jeweils ueber die letzte Achse
	// bei Softmax/LogSoftmax)
	Softmax(ctx Context) Tensor
	LogSoftmax(ctx Context) Tensor
	Sigmoid(ctx Context) Tensor
	Tanh(ctx Context) Tensor
	RELU(ctx Context) Tensor

	// Conv2D faltet NCHW-Eingaben mit OIHW-Gewichten; stride 1, gegebenes
	// Padding und gegebene Dilation. bias darf nil sein.
	Conv2D(ctx Context, weight, bias Tensor, padding, dilation int) Tensor

	// Formoperationen
	Reshape(ctx Context, shape ...int) Tensor
	Flatten(ctx Context) Tensor
	Concat(ctx Context, t2 Tensor, dim int) Tensor
	Slice(ctx Context, dim, low, high int) Tensor
	Repeat(ctx Context, dim, n int) Tensor
	Duplicate(ctx Context) Tensor
	Cast(ctx Context, dtype DType) Tensor

	// Rows selektiert Zeilen einer 2D-Tabelle anhand eines I32-Tensors
	// beliebiger Form; Ergebnisform ist Indexform + (cols).
	Rows(ctx Context, idxs Tensor) Tensor

	// Argmax liefert die Indizes der Maxima ueber die letzte Achse (I32).
	// Bei mehreren Maxima gewinnt das erste in Zeilenreihenfolge.
	Argmax(ctx Context) Tensor

	// Multinomial zieht pro Zeile der letzten Achse einen Index aus der
	// (unnormierten) Verteilung; nutzt den RNG des Backends.
	Multinomial(ctx Context) Tensor
}
