package messagepool

import (
	"context"

	"github.com/filecoin-project/go-state-types/abi"
	lru "github.com/hashicorp/golang-lru"
	"golang.org/x/xerrors"

	"github.com/filecoin-project/venus-gas/venus-shared/types"
)

// GasMeta is the premium and gas limit of one message included on chain.
type GasMeta struct {
	Price abi.TokenAmount
	Limit int64
}

// GasPriceCache caches the GasMeta of every message in a tipset, keyed by tipset key.
type GasPriceCache struct {
	c *lru.ARCCache
}

// NewGasPriceCache creates a cache holding the stats of up to size tipsets.
func NewGasPriceCache(size int) (*GasPriceCache, error) {
	c, err := lru.NewARC(size)
	if err != nil {
		return nil, xerrors.Errorf("creating gas price cache: %w", err)
	}
	return &GasPriceCache{c: c}, nil
}

// GetTSGasStats returns the premiums and gas limits of the messages included in ts.
// Callers must not modify the returned slice.
func (g *GasPriceCache) GetTSGasStats(ctx context.Context, provider MessageProvider, ts *types.TipSet) ([]GasMeta, error) {
	if i, has := g.c.Get(ts.Key()); has {
		return i.([]GasMeta), nil
	}

	var prices []GasMeta
	msgs, err := provider.MessagesForTipset(ctx, ts)
	if err != nil {
		return nil, xerrors.Errorf("loading messages: %w", err)
	}
	for _, msg := range msgs {
		m := msg.VMMessage()
		prices = append(prices, GasMeta{
			Price: m.GasPremium,
			Limit: m.GasLimit,
		})
	}

	g.c.Add(ts.Key(), prices)

	return prices, nil
}

// Len returns the number of cached tipsets.
func (g *GasPriceCache) Len() int {
	return g.c.Len()
}
