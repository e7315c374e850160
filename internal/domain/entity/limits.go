package entity

import (
	"math"

	"github.com/shopspring/decimal"
)

// MoneyScale decimales admitidos en precios, totales y pagos (columnas NUMERIC(18,4)).
const MoneyScale = 4

// maxMoney límite exclusivo de NUMERIC(18,4): 14 dígitos enteros.
var maxMoney = decimal.New(1, 18-MoneyScale)

// MaxItemQuantity cantidad máxima por línea de movimiento.
const MaxItemQuantity int64 = 1_000_000_000

// ValidMoney indica si d no es negativo, cabe en NUMERIC(18,4) y no tiene más de MoneyScale
// decimales significativos.
func ValidMoney(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(maxMoney) && d.Equal(d.Round(MoneyScale))
}

// AddQuantity suma cantidades de stock; ok=false si el resultado desborda int64.
func AddQuantity(a, b int64) (sum int64, ok bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}
