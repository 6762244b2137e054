package messagepool

import (
	"context"
	"math"
	stdbig "math/big"
	"sort"
	"time"

	"github.com/filecoin-project/go-address"
	"github.com/filecoin-project/go-state-types/abi"
	"github.com/filecoin-project/go-state-types/big"
	"github.com/filecoin-project/go-state-types/exitcode"
	logging "github.com/ipfs/go-log/v2"
	"github.com/pkg/errors"
	"golang.org/x/xerrors"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/filecoin-project/venus-gas/pkg/config"
	"github.com/filecoin-project/venus-gas/pkg/constants"
	"github.com/filecoin-project/venus-gas/pkg/metrics"
	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

var log = logging.Logger("gas-estimate")

var (
	// ErrNumericConversion is returned when a float intermediate cannot be
	// represented as an integer.
	ErrNumericConversion = errors.New("float value cannot be converted to an integer")
	// ErrExecutionFailed is returned by message estimation when the message
	// would fail on chain, so no gas limit can be given for it.
	ErrExecutionFailed = errors.New("message execution failed")
	// ErrNilMessage is returned when an estimate is requested for no message.
	ErrNilMessage = errors.New("message is nil")
)

// MessageProvider lists the messages included in a tipset.
type MessageProvider interface {
	MessagesForTipset(ctx context.Context, ts *types.TipSet) ([]types.ChainMsg, error)
}

// ChainReader gives access to chain history. GetTipSet resolves the empty key
// to the heaviest tipset.
type ChainReader interface {
	MessageProvider
	GetTipSet(ctx context.Context, key types.TipSetKey) (*types.TipSet, error)
}

// PendingProvider lists the messages a sender has waiting in the pool.
type PendingProvider interface {
	PendingFor(a address.Address) ([]*types.SignedMessage, bool)
}

// Caller executes a message on top of a tipset without persisting any state change.
type Caller interface {
	CallWithGas(ctx context.Context, msg *types.Message, priorMsgs []types.ChainMsg, ts *types.TipSet) (*types.InvocResult, error)
}

// AddressResolver resolves an address to the key address that controls it.
type AddressResolver interface {
	ResolveToKeyAddr(ctx context.Context, addr address.Address, ts *types.TipSet) (address.Address, error)
}

// Option configures a GasEstimator.
type Option func(*GasEstimator)

// WithNoise replaces the source of the multiplicative premium noise. The
// default draws from a normal distribution with mean 1 and deviation 0.005.
func WithNoise(noise func() float64) Option {
	return func(ge *GasEstimator) {
		ge.noise = noise
	}
}

// WithObserver sets the metrics observer.
func WithObserver(observer metrics.Observer) Option {
	return func(ge *GasEstimator) {
		ge.observer = observer
	}
}

// GasEstimator suggests gas limits, premiums and fee caps for messages,
// relative to the heaviest tipset or a tipset chosen by key.
type GasEstimator struct {
	chain    ChainReader
	pending  PendingProvider
	caller   Caller
	resolver AddressResolver

	PriceCache    *GasPriceCache
	defaultMaxFee abi.TokenAmount

	noise    func() float64
	observer metrics.Observer
}

// NewGasEstimator creates an estimator from its collaborators.
func NewGasEstimator(chain ChainReader, pending PendingProvider, caller Caller, resolver AddressResolver, cfg *config.GasConfig, opts ...Option) (*GasEstimator, error) {
	maxFee, err := cfg.MaxFee()
	if err != nil {
		return nil, err
	}
	cache, err := NewGasPriceCache(cfg.PriceCacheSize)
	if err != nil {
		return nil, err
	}

	ge := &GasEstimator{
		chain:         chain,
		pending:       pending,
		caller:        caller,
		resolver:      resolver,
		PriceCache:    cache,
		defaultMaxFee: maxFee,
		// mean 1, stddev 0.005 => 95% within +-1%
		noise:    distuv.Normal{Mu: 1, Sigma: 0.005}.Rand,
		observer: metrics.NoopObserver{},
	}
	for _, opt := range opts {
		opt(ge)
	}
	return ge, nil
}

func (ge *GasEstimator) observe(ctx context.Context, method string, start time.Time, err *error) {
	ge.observer.EstimateFinished(ctx, method, time.Since(start), *err)
}

// GasEstimateFeeCap estimates the fee cap needed for msg to stay includable
// while the base fee rises at its maximum rate for maxqueueblks epochs.
func (ge *GasEstimator) GasEstimateFeeCap(ctx context.Context, msg *types.Message, maxqueueblks int64, tsk types.TipSetKey) (_ big.Int, err error) {
	defer ge.observe(ctx, "GasEstimateFeeCap", time.Now(), &err)

	if msg == nil {
		return types.EmptyInt, ErrNilMessage
	}
	ts, err := ge.chain.GetTipSet(ctx, tsk)
	if err != nil {
		return types.EmptyInt, xerrors.Errorf("loading tipset %s: %w", tsk, err)
	}
	return ge.estimateFeeCap(msg, maxqueueblks, ts)
}

func (ge *GasEstimator) estimateFeeCap(msg *types.Message, maxqueueblks int64, ts *types.TipSet) (big.Int, error) {
	parentBaseFee := ts.ParentBaseFee()
	increaseFactor := math.Pow(1.+1./float64(constants.BaseFeeMaxChangeDenom), float64(maxqueueblks))

	factor, err := floatToBigInt(increaseFactor * (1 << 8))
	if err != nil {
		return types.EmptyInt, xerrors.Errorf("fee cap increase factor %f over %d blocks: %w", increaseFactor, maxqueueblks, err)
	}
	feeInFuture := big.Mul(parentBaseFee, factor)
	out := big.Div(feeInFuture, big.NewInt(1<<8))

	if !types.IsZeroOrNil(msg.GasPremium) {
		out = big.Add(out, msg.GasPremium)
	}
	return out, nil
}

// medianGasPremium returns the premium at which the most expensive messages
// fill half the gas target of the given number of blocks, or zero when the
// messages do not fill it.
func medianGasPremium(prices []GasMeta, blocks int) abi.TokenAmount {
	sort.SliceStable(prices, func(i, j int) bool {
		// sort desc by price
		return prices[i].Price.GreaterThan(prices[j].Price)
	})

	at := constants.BlockGasTarget * int64(blocks) / 2
	prev := big.Zero()

	for _, price := range prices {
		at -= price.Limit
		if at > 0 {
			prev = price.Price
			continue
		}

		if prev.IsZero() {
			return big.Add(price.Price, big.NewInt(1))
		}

		return big.Add(big.Div(big.Add(price.Price, prev), big.NewInt(2)), big.NewInt(1))
	}

	return big.Zero()
}

// GasEstimateGasPremium estimates what gas price should be used for a
// message to have high likelihood of inclusion in `nblocksincl` epochs.
// The result carries random noise; identical calls return different values.
func (ge *GasEstimator) GasEstimateGasPremium(ctx context.Context, nblocksincl uint64, sender address.Address, gaslimit int64, tsk types.TipSetKey) (_ big.Int, err error) {
	defer ge.observe(ctx, "GasEstimateGasPremium", time.Now(), &err)

	ts, err := ge.chain.GetTipSet(ctx, tsk)
	if err != nil {
		return types.EmptyInt, xerrors.Errorf("loading tipset %s: %w", tsk, err)
	}
	return ge.estimateGasPremium(ctx, nblocksincl, ts)
}

func (ge *GasEstimator) estimateGasPremium(ctx context.Context, nblocksincl uint64, ts *types.TipSet) (big.Int, error) {
	if nblocksincl == 0 {
		nblocksincl = 1
	}

	var prices []GasMeta
	var blocks int

	for i := uint64(0); i < nblocksincl*2; i++ {
		if ts.Height() == 0 {
			break // genesis
		}

		pts, err := ge.chain.GetTipSet(ctx, ts.Parents())
		if err != nil {
			return types.EmptyInt, xerrors.Errorf("loading parent of %s: %w", ts.Key(), err)
		}

		blocks += pts.Len()
		meta, err := ge.PriceCache.GetTSGasStats(ctx, ge.chain, pts)
		if err != nil {
			return types.EmptyInt, xerrors.Errorf("gas stats of %s: %w", pts.Key(), err)
		}
		prices = append(prices, meta...)

		ts = pts
	}

	premium := medianGasPremium(prices, blocks)

	if premium.IsZero() {
		switch nblocksincl {
		case 1:
			premium = big.NewInt(2 * constants.MinGasPremium)
		case 2:
			premium = big.NewInt(1.5 * constants.MinGasPremium)
		default:
			premium = big.NewInt(constants.MinGasPremium)
		}
		log.Debugw("no premium in history, using fallback", "blocks", blocks, "messages", len(prices), "premium", premium)
	}

	// add some noise to normalize behaviour of message selection
	const precision = 32
	noise, err := floatToBigInt(ge.noise() * (1 << precision))
	if err != nil {
		return types.EmptyInt, xerrors.Errorf("premium noise: %w", err)
	}
	premium = big.Mul(premium, noise)
	premium = big.Div(premium, big.NewInt(1<<precision))
	if premium.LessThan(big.NewInt(1)) {
		premium = big.NewInt(1)
	}

	return premium, nil
}

// GasEstimateGasLimit executes msg against the tipset with the maximum gas
// limit and returns the gas it used plus a safety margin. A message that
// would fail on chain yields -1 and no error.
func (ge *GasEstimator) GasEstimateGasLimit(ctx context.Context, msgIn *types.Message, tsk types.TipSetKey) (_ int64, err error) {
	defer ge.observe(ctx, "GasEstimateGasLimit", time.Now(), &err)

	if msgIn == nil {
		return -1, ErrNilMessage
	}
	ts, err := ge.chain.GetTipSet(ctx, tsk)
	if err != nil {
		return -1, xerrors.Errorf("loading tipset %s: %w", tsk, err)
	}

	fromA, err := ge.resolver.ResolveToKeyAddr(ctx, msgIn.From, ts)
	if err != nil {
		return -1, xerrors.Errorf("getting key address: %w", err)
	}

	return ge.estimateGasLimit(ctx, msgIn, ge.pendingMsgs(fromA), ts)
}

func (ge *GasEstimator) pendingMsgs(from address.Address) []types.ChainMsg {
	pending, ok := ge.pending.PendingFor(from)
	if !ok {
		return nil
	}
	priorMsgs := make([]types.ChainMsg, 0, len(pending))
	for _, m := range pending {
		priorMsgs = append(priorMsgs, m)
	}
	return priorMsgs
}

func (ge *GasEstimator) estimateGasLimit(ctx context.Context, msgIn *types.Message, priorMsgs []types.ChainMsg, ts *types.TipSet) (int64, error) {
	msg := msgIn.Copy()
	msg.GasLimit = constants.BlockGasLimit
	msg.GasFeeCap = big.NewInt(constants.MinimumBaseFee + 1)
	msg.GasPremium = big.NewInt(1)

	res, err := ge.caller.CallWithGas(ctx, msg, priorMsgs, ts)
	if err != nil {
		return -1, xerrors.Errorf("CallWithGas failed: %w", err)
	}
	if res.MsgRct == nil {
		log.Debugw("call returned no receipt", "msg", msg, "error", res.Error)
		return -1, nil
	}
	if res.MsgRct.ExitCode != exitcode.Ok {
		log.Debugw("message execution failed", "msg", msg, "exitCode", res.MsgRct.ExitCode, "error", res.Error)
		return -1, nil
	}

	return res.MsgRct.GasUsed + constants.GasLimitMargin, nil
}

// GasEstimateMessageGas estimates gas values for unset message gas fields.
// Fields that are non-zero on input are kept. The input message is not modified.
func (ge *GasEstimator) GasEstimateMessageGas(ctx context.Context, estimateMessage *types.EstimateMessage, tsk types.TipSetKey) (_ *types.Message, err error) {
	defer ge.observe(ctx, "GasEstimateMessageGas", time.Now(), &err)

	if estimateMessage == nil || estimateMessage.Msg == nil {
		return nil, xerrors.New("estimate message is nil")
	}

	ts, err := ge.chain.GetTipSet(ctx, tsk)
	if err != nil {
		return nil, xerrors.Errorf("loading tipset %s: %w", tsk, err)
	}

	msg := estimateMessage.Msg.Copy()
	if msg.GasLimit == 0 {
		fromA, err := ge.resolver.ResolveToKeyAddr(ctx, msg.From, ts)
		if err != nil {
			return nil, xerrors.Errorf("getting key address: %w", err)
		}
		if err := ge.fillGasLimit(ctx, msg, ge.pendingMsgs(fromA), ts); err != nil {
			return nil, err
		}
	}

	if err := ge.fillFees(ctx, msg, estimateMessage.Spec, ts); err != nil {
		return nil, err
	}
	return msg, nil
}

func (ge *GasEstimator) fillGasLimit(ctx context.Context, msg *types.Message, priorMsgs []types.ChainMsg, ts *types.TipSet) error {
	gasLimit, err := ge.estimateGasLimit(ctx, msg, priorMsgs, ts)
	if err != nil {
		return xerrors.Errorf("estimating gas used: %w", err)
	}
	if gasLimit < 0 {
		return xerrors.Errorf("estimating gas limit of message from %s nonce %d: %w", msg.From, msg.Nonce, ErrExecutionFailed)
	}
	msg.GasLimit = gasLimit
	return nil
}

func (ge *GasEstimator) fillFees(ctx context.Context, msg *types.Message, spec *types.MessageSendSpec, ts *types.TipSet) error {
	premiumEstimated := false
	if types.IsZeroOrNil(msg.GasPremium) {
		gasPremium, err := ge.estimateGasPremium(ctx, constants.GasPremiumLookaheadBlocks, ts)
		if err != nil {
			return xerrors.Errorf("estimating gas price: %w", err)
		}
		msg.GasPremium = gasPremium
		premiumEstimated = true
	}

	if types.IsZeroOrNil(msg.GasFeeCap) {
		feeCap, err := ge.estimateFeeCap(msg, constants.GasFeeCapLookaheadBlocks, ts)
		if err != nil {
			return xerrors.Errorf("estimating fee cap: %w", err)
		}
		msg.GasFeeCap = feeCap
		capGasFee(msg, ge.maxFee(spec), premiumEstimated)
	}
	return nil
}

func (ge *GasEstimator) maxFee(spec *types.MessageSendSpec) abi.TokenAmount {
	if spec != nil && !types.IsZeroOrNil(spec.MaxFee) {
		return spec.MaxFee
	}
	return ge.defaultMaxFee
}

// capGasFee lowers the fee cap so that the message costs at most maxFee. An
// estimated premium is lowered to the fee cap as well. A zero maxFee disables capping.
func capGasFee(msg *types.Message, maxFee abi.TokenAmount, capPremium bool) {
	if maxFee.IsZero() || msg.GasLimit <= 0 {
		return
	}

	gl := big.NewInt(msg.GasLimit)
	totalFee := big.Mul(msg.GasFeeCap, gl)
	if totalFee.LessThanEqual(maxFee) {
		return
	}

	msg.GasFeeCap = big.Div(maxFee, gl)
	if capPremium {
		msg.GasPremium = types.BigMin(msg.GasFeeCap, msg.GasPremium)
	}
	log.Debugw("capped message fee", "from", msg.From, "nonce", msg.Nonce, "maxFee", maxFee, "feeCap", msg.GasFeeCap)
}

// GasBatchEstimateMessageGas estimates a sequence of messages from one
// sender. Nonces are assigned from fromNonce and advance with every message
// that estimates successfully; each such message becomes part of the
// execution context of the next. Per message failures are reported in the
// results rather than as an error.
func (ge *GasEstimator) GasBatchEstimateMessageGas(ctx context.Context, estimateMessages []*types.EstimateMessage, fromNonce uint64, tsk types.TipSetKey) (_ []*types.EstimateResult, err error) {
	defer ge.observe(ctx, "GasBatchEstimateMessageGas", time.Now(), &err)

	if len(estimateMessages) == 0 {
		return nil, xerrors.New("no messages to estimate")
	}
	for _, em := range estimateMessages {
		if em == nil || em.Msg == nil {
			return nil, xerrors.New("estimate message is nil")
		}
	}

	ts, err := ge.chain.GetTipSet(ctx, tsk)
	if err != nil {
		return nil, xerrors.Errorf("loading tipset %s: %w", tsk, err)
	}

	from := estimateMessages[0].Msg.From
	for _, em := range estimateMessages[1:] {
		if em.Msg.From != from {
			return nil, xerrors.Errorf("batch holds messages from %s and %s", from, em.Msg.From)
		}
	}
	fromA, err := ge.resolver.ResolveToKeyAddr(ctx, from, ts)
	if err != nil {
		return nil, xerrors.Errorf("getting key address: %w", err)
	}
	priorMsgs := ge.pendingMsgs(fromA)

	estimateResults := make([]*types.EstimateResult, 0, len(estimateMessages))
	for _, em := range estimateMessages {
		msg := em.Msg.Copy()
		msg.Nonce = fromNonce

		if err := ge.estimateInBatch(ctx, msg, em.Spec, priorMsgs, ts); err != nil {
			log.Debugw("batch estimation failed", "from", msg.From, "nonce", msg.Nonce, "error", err)
			estimateResults = append(estimateResults, &types.EstimateResult{Msg: msg, Err: err.Error()})
			continue
		}

		priorMsgs = append(priorMsgs, msg)
		fromNonce++
		estimateResults = append(estimateResults, &types.EstimateResult{Msg: msg})
	}

	return estimateResults, nil
}

func (ge *GasEstimator) estimateInBatch(ctx context.Context, msg *types.Message, spec *types.MessageSendSpec, priorMsgs []types.ChainMsg, ts *types.TipSet) error {
	if msg.GasLimit == 0 {
		if err := ge.fillGasLimit(ctx, msg, priorMsgs, ts); err != nil {
			return err
		}
	}
	return ge.fillFees(ctx, msg, spec, ts)
}

func floatToBigInt(f float64) (big.Int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return types.EmptyInt, xerrors.Errorf("%f: %w", f, ErrNumericConversion)
	}
	i, _ := new(stdbig.Float).SetFloat64(f).Int(nil)
	return big.Int{Int: i}, nil
}
