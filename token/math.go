package token

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
)

func checkAmount(v *big.Int) error {
	if v == nil || v.Sign() < 0 || v.Cmp(math.MaxBig256) > 0 {
		return ErrInvalidAmount
	}
	return nil
}

func checkedAdd(a, b *big.Int) (*big.Int, error) {
	sum := new(big.Int).Add(a, b)
	if sum.Cmp(math.MaxBig256) > 0 {
		return nil, ErrArithmeticOverflow
	}
	return sum, nil
}

func checkedSub(a, b *big.Int) (*big.Int, error) {
	if a.Cmp(b) < 0 {
		return nil, ErrArithmeticUnderflow
	}
	return new(big.Int).Sub(a, b), nil
}

func copyInt(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}

func sum(amounts []*big.Int) (*big.Int, error) {
	total := new(big.Int)
	for _, a := range amounts {
		if err := checkAmount(a); err != nil {
			return nil, err
		}
		next, err := checkedAdd(total, a)
		if err != nil {
			return nil, err
		}
		total = next
	}
	return total, nil
}
