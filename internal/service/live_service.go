package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/apperrors"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/marketdata"
	"github.com/pdekker/Portfolio-Dashboard-Analytics/internal/model"
)

// maxConcurrentQuoteFetches caps parallel requests to the quote provider so a
// large holding list does not trip provider rate limits.
const maxConcurrentQuoteFetches = 4

// LiveService builds the current live position set. It starts from the most
// recent persisted snapshot (the holdings themselves change slowly) and
// reprices the quoted positions with current market data.
type LiveService struct {
	snapshotService *SnapshotService
	quoteClient     marketdata.Client
}

// NewLiveService creates a new LiveService with the provided snapshot service
// and quote client.
func NewLiveService(snapshotService *SnapshotService, quoteClient marketdata.Client) *LiveService {
	return &LiveService{
		snapshotService: snapshotService,
		quoteClient:     quoteClient,
	}
}

// BuildLivePositions computes the live position set. Security and crypto
// positions are repriced with current quotes; cash, metals and other
// unquoted positions keep their snapshot values.
//
// Quote fetches run in parallel with a bounded worker pool. A failed fetch
// degrades to the snapshot price for that symbol rather than failing the
// whole set; the miss still surfaces through the reconciler as a stale
// price because PriceUpdatedAt keeps its snapshot value.
func (s *LiveService) BuildLivePositions(ctx context.Context) (model.LivePositionSet, error) {
	snapshot, err := s.snapshotService.GetLatestSnapshot()
	if err != nil {
		return model.LivePositionSet{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToBuildLivePositions, err)
	}

	quotes, err := s.fetchQuotes(ctx, quotedSymbols(snapshot))
	if err != nil {
		return model.LivePositionSet{}, fmt.Errorf("%w: %w", apperrors.ErrFailedToFetchQuotes, err)
	}

	asOf := time.Now().UTC()
	positions := make(map[model.PositionKey]model.PositionRecord, len(snapshot.Positions))
	for key, record := range snapshot.Positions {
		if quote, ok := quotes[key.Identifier]; ok && isQuoted(key.AssetType) {
			record = repriceRecord(record, quote)
		}
		positions[key] = record
	}

	return model.LivePositionSet{Positions: positions, AsOf: asOf}, nil
}

// fetchQuotes fetches current quotes for the given symbols in parallel.
// Individual fetch failures are logged and skipped; only context
// cancellation aborts the whole fetch.
func (s *LiveService) fetchQuotes(ctx context.Context, symbols []string) (map[string]marketdata.Quote, error) {
	quotes := make(map[string]marketdata.Quote, len(symbols))
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(maxConcurrentQuoteFetches)

	for _, symbol := range symbols {
		symbol := symbol
		group.Go(func() error {
			quote, err := s.quoteClient.LatestQuote(groupCtx, symbol)
			if err != nil {
				if groupCtx.Err() != nil {
					return groupCtx.Err()
				}
				log.Printf("Warning: quote fetch failed for %s: %v", symbol, err)
				return nil
			}

			mu.Lock()
			quotes[symbol] = quote
			mu.Unlock()
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return quotes, nil
}

// quotedSymbols collects the distinct identifiers of quoted positions in a
// snapshot, in no particular order.
func quotedSymbols(snapshot model.Snapshot) []string {
	seen := make(map[string]bool)
	symbols := []string{}
	for key := range snapshot.Positions {
		if !isQuoted(key.AssetType) || seen[key.Identifier] {
			continue
		}
		seen[key.Identifier] = true
		symbols = append(symbols, key.Identifier)
	}
	return symbols
}

// isQuoted reports whether positions of this asset type are repriced from
// market quotes.
func isQuoted(assetType model.AssetType) bool {
	return assetType == model.AssetTypeSecurity || assetType == model.AssetTypeCrypto
}

// repriceRecord applies a current quote to a snapshot record, recomputing
// the value and gain/loss fields that depend on price.
func repriceRecord(record model.PositionRecord, quote marketdata.Quote) model.PositionRecord {
	record.CurrentPrice = quote.Price
	record.CurrentValue = round(record.Quantity * quote.Price)
	record.GainLossAmount = round(record.CurrentValue - record.TotalCostBasis)
	if record.TotalCostBasis != 0 {
		record.GainLossPercent = round(record.GainLossAmount / record.TotalCostBasis * 100)
	} else {
		record.GainLossPercent = 0
	}
	record.PriceUpdatedAt = quote.UpdatedAt
	return record
}
