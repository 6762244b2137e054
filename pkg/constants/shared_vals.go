package constants

// constants for Weight calculation
// The ratio of weight contributed by short-term vs long-term factors in a given round
const (
	WRatioNum = int64(1)
	WRatioDen = uint64(2)
)

// ExpectedLeadersPerEpoch is the expected number of blocks per epoch (e).
const ExpectedLeadersPerEpoch = uint64(5)

const (
	FilBase = uint64(2_000_000_000)
)

const (
	FilecoinPrecision = uint64(1_000_000_000_000_000_000)
)

// /////
// Fee market

// BlockGasLimit is the most gas a single block may consume.
const BlockGasLimit = int64(10_000_000_000)

// BlockGasTarget is the per-block gas the base fee steers towards.
const BlockGasTarget = BlockGasLimit / 2

// BaseFeeMaxChangeDenom bounds the per-epoch base fee change to 1/8 = 12.5%.
const BaseFeeMaxChangeDenom = int64(8)

// MinimumBaseFee in attoFIL.
const MinimumBaseFee = int64(100)

// MinGasPremium is the fallback premium in attoFIL when history yields none.
const MinGasPremium = 100e3

// GasLimitMargin is added to the gas a speculative call reports.
// Raw execution gas consistently under-estimates what inclusion costs and the
// cause is still unexplained, so the margin is a fixed compensation.
const GasLimitMargin = int64(200_000)

// Lookahead used by the message gas filler.
const (
	GasPremiumLookaheadBlocks = uint64(10)
	GasFeeCapLookaheadBlocks  = int64(20)
)
