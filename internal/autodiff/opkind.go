package autodiff

import "strconv"

// OpKind tags a node with the gradient rule its backward step applies.
//
// The set is closed: leaves carry OpNone or OpAccumulateGrad, every other
// kind is produced by exactly one primitive in this package.
type OpKind uint8

// Operation kinds.
const (
	OpNone             OpKind = iota // constant leaf, no gradient flows
	OpAccumulateGrad                 // trainable leaf, gradients accumulate here
	OpTranspose                      // aᵗ
	OpMatMul                         // a @ b
	OpReLU                           // max(a, 0)
	OpSum                            // Σ a
	OpAdd                            // a + b
	OpAffine                         // bias + x @ W
	OpSubtract                       // a - b
	OpMeanSquaredError               // mean((a - b)²)
)

var opNames = [...]string{
	OpNone:             "None",
	OpAccumulateGrad:   "AccumulateGrad",
	OpTranspose:        "Transpose",
	OpMatMul:           "MatMul",
	OpReLU:             "Relu",
	OpSum:              "Sum",
	OpAdd:              "Add",
	OpAffine:           "AffineAddMatMul",
	OpSubtract:         "Subtract",
	OpMeanSquaredError: "MeanSquaredError",
}

// String returns the tag name, e.g. "MatMul".
func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return "OpKind(" + strconv.Itoa(int(k)) + ")"
}

// IsLeafKind reports whether k may only appear on leaves.
func (k OpKind) IsLeafKind() bool {
	return k == OpNone || k == OpAccumulateGrad
}

// Arity returns the number of operands a result node of kind k holds.
// The second result is false for leaf kinds and unknown tags.
func (k OpKind) Arity() (int, bool) {
	switch k {
	case OpTranspose, OpReLU, OpSum:
		return 1, true
	case OpMatMul, OpAdd, OpSubtract, OpMeanSquaredError:
		return 2, true
	case OpAffine:
		return 3, true
	default:
		return 0, false
	}
}
