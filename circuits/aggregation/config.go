package aggregation

const (
	// MaxQuotes is the fixed capacity of every per-publisher witness array.
	MaxQuotes = 8

	// ModelSlots is the length of the price model: three derived values
	// (bid/mid/ask) per quote slot.
	ModelSlots = 3 * MaxQuotes

	// TimestampThreshold is the staleness window. Every active timestamp
	// must lie in (median - TimestampThreshold, median].
	TimestampThreshold = 10
)

// Price model operations. The derived comparison value for a slot is
// price - conf, price, or price + conf respectively.
const (
	OpSubConf     = 0
	OpPassthrough = 1
	OpAddConf     = 2
)
