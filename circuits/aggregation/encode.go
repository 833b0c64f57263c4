package aggregation

import "github.com/consensys/gnark/frontend"

// encode64 decomposes v into 64 bits, least significant first. The
// decomposition doubles as a range constraint: a value outside 64 bits makes
// the circuit unsatisfiable instead of silently wrapping, which would break
// the binding between a quote and its signature.
func encode64(api frontend.API, v frontend.Variable) []frontend.Variable {
	return api.ToBinary(v, 64)
}

// quoteMessage recomposes the signed payload from the price and confidence
// encodings: the 128-bit concatenation encode64(price) || encode64(conf),
// i.e. price + conf*2^64 as a single field element.
func quoteMessage(api frontend.API, price, conf frontend.Variable) frontend.Variable {
	bits := make([]frontend.Variable, 0, 128)
	bits = append(bits, encode64(api, price)...)
	bits = append(bits, encode64(api, conf)...)
	return api.FromBinary(bits...)
}
