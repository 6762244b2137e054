package types

import (
	"math/big"

	fbig "github.com/filecoin-project/go-state-types/big"
)

// FilecoinPrecision is the number of attoFIL in one FIL.
const FilecoinPrecision = uint64(1_000_000_000_000_000_000)

type BigInt = fbig.Int

var EmptyInt = BigInt{}

// NewInt builds a BigInt from an unsigned value.
func NewInt(i uint64) BigInt {
	return BigInt{Int: new(big.Int).SetUint64(i)}
}

// FromFil converts whole FIL to attoFIL.
func FromFil(i uint64) BigInt {
	return BigMul(NewInt(i), NewInt(FilecoinPrecision))
}

func BigMul(a, b BigInt) BigInt {
	return fbig.Mul(a, b)
}

// BigDiv is floor division for non-negative operands.
func BigDiv(a, b BigInt) BigInt {
	return fbig.Div(a, b)
}

func BigCmp(a, b BigInt) int {
	return a.Int.Cmp(b.Int)
}

// BigMin returns the smaller of a and b.
func BigMin(a, b BigInt) BigInt {
	if BigCmp(a, b) <= 0 {
		return a
	}
	return b
}

// IsZeroOrNil reports whether v is unset or zero, the two encodings of
// "not provided" for optional token amounts.
func IsZeroOrNil(v BigInt) bool {
	return v.Int == nil || v.Sign() == 0
}
