package inventory

import "github.com/shopspring/decimal"

// WeightedAverageCost implementa el costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
// Un stock actual negativo o nulo se trata como cero: el costo de la entrada reemplaza al anterior.
func WeightedAverageCost(onHand, currentCost, incoming, incomingCost decimal.Decimal) decimal.Decimal {
	if onHand.IsNegative() {
		onHand = decimal.Zero
	}
	sum := onHand.Add(incoming)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := onHand.Mul(currentCost).Add(incoming.Mul(incomingCost))
	return num.DivRound(sum, 4)
}
