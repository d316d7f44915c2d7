package utils

import (
	"math/big"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/quantumauth-io/quantum-wallet-demo/internal/quantum-wallet-demo/constants"
)

var ErrInvalidNumber = errors.New("invalid decimal number")

// FormatUnits renders amount / 10^decimals at full precision, without trailing zeros.
func FormatUnits(amount *big.Int, decimals uint8) string {
	if amount == nil {
		return "0"
	}

	neg := amount.Sign() < 0
	digits := new(big.Int).Abs(amount).String()

	d := int(decimals)
	if len(digits) <= d {
		digits = strings.Repeat("0", d-len(digits)+1) + digits
	}

	intPart := digits[:len(digits)-d]
	fracPart := strings.TrimRight(digits[len(digits)-d:], "0")

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	sb.WriteString(intPart)
	if fracPart != "" {
		sb.WriteByte('.')
		sb.WriteString(fracPart)
	}
	return sb.String()
}

func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, constants.EtherDecimals)
}

// ParseUnits converts a decimal string into base units. Fractions longer than
// decimals are rounded half up.
func ParseUnits(value string, decimals uint8) (*big.Int, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, errors.Wrap(ErrInvalidNumber, "empty value")
	}

	neg := false
	if strings.HasPrefix(v, "-") {
		neg = true
		v = v[1:]
	}

	intPart, fracPart, _ := strings.Cut(v, ".")
	if intPart == "" && fracPart == "" {
		return nil, errors.Wrapf(ErrInvalidNumber, "%q", value)
	}
	if !isDigits(intPart) || !isDigits(fracPart) {
		return nil, errors.Wrapf(ErrInvalidNumber, "%q", value)
	}
	if intPart == "" {
		intPart = "0"
	}

	d := int(decimals)
	roundUp := false
	if len(fracPart) > d {
		roundUp = fracPart[d] >= '5'
		fracPart = fracPart[:d]
	}
	fracPart += strings.Repeat("0", d-len(fracPart))

	out, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidNumber, "%q", value)
	}
	if roundUp {
		out.Add(out, big.NewInt(1))
	}
	if neg {
		out.Neg(out)
	}
	return out, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
