package synthetic

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"fx-dashboard/src/helpers"
	"fx-dashboard/src/models"
	"fx-dashboard/src/utils"
)

// maxStep is the largest relative move between two quotes of a pair
const maxStep = 0.001

// Starting levels; other pairs start at a random level in [1, 11)
var startPrices = map[string]float64{
	"EUR/USD": 1.08,
	"USD/JPY": 150.0,
	"GBP/USD": 1.27,
}

// -----------------------------------------------------------------------------
// SyntheticSource produces a random walk per pair. It needs no network and is
// deterministic for a given seed.
// -----------------------------------------------------------------------------

type SyntheticSource struct {
	mu     sync.Mutex
	rng    *rand.Rand
	prices map[string]float64

	now func() time.Time
}

// -----------------------------------------------------------------------------

// NewSyntheticSource seeds the walk; seed 0 uses the clock.
func NewSyntheticSource(seed int64) *SyntheticSource {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &SyntheticSource{
		rng:    rand.New(rand.NewSource(seed)),
		prices: make(map[string]float64),
		now:    time.Now,
	}
}

// -----------------------------------------------------------------------------

func (s *SyntheticSource) Name() string {
	return "synthetic"
}

// -----------------------------------------------------------------------------

func (s *SyntheticSource) FetchRate(ctx context.Context, pair string) (models.MRateQuote, error) {
	if _, _, err := utils.SplitPair(pair); err != nil {
		return models.MRateQuote{}, helpers.NewProviderError(helpers.ErrBadQuote, err.Error())
	}
	if err := ctx.Err(); err != nil {
		return models.MRateQuote{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	price, ok := s.prices[pair]
	if !ok {
		price, ok = startPrices[pair]
		if !ok {
			price = 1 + s.rng.Float64()*10
		}
	} else {
		// simple random walk
		price += (s.rng.Float64()*2 - 1) * maxStep * price
		if price <= 0 {
			price = startPrices[pair]
		}
	}
	s.prices[pair] = price

	return models.MRateQuote{Pair: pair, Rate: price, FetchedAt: s.now().UTC()}, nil
}
