package offers

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
)

const fallbackSellerName = "N/A"

type assetLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Asset, error)
}

// Enricher computes fetch-time display fields for offers: the monthly
// equivalent of the asset's duration-keyed pricing, the seller name, and the
// full pricing map. Lookups fan out through a bounded pool; a failed lookup
// degrades that one row to zero price / "N/A" seller and never fails the batch.
type Enricher struct {
	assets      assetLookup
	logg        *logger.Logger
	concurrency int
}

// NewEnricher builds an enricher with the given fan-out width.
func NewEnricher(assets assetLookup, logg *logger.Logger, concurrency int) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{assets: assets, logg: logg, concurrency: concurrency}
}

// Enrich maps raw offer rows to views, classifying and pricing each one.
// Order is preserved.
func (e *Enricher) Enrich(ctx context.Context, rows []models.OfferRequest) ([]OfferView, error) {
	views := make([]OfferView, len(rows))

	grp, grpCtx := errgroup.WithContext(ctx)
	grp.SetLimit(e.concurrency)
	for i, row := range rows {
		grp.Go(func() error {
			views[i] = e.enrichOne(grpCtx, row)
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

func (e *Enricher) enrichOne(ctx context.Context, row models.OfferRequest) OfferView {
	view := OfferView{
		OfferRequest:    row,
		BuyerStatus:     BuyerStatusFor(row),
		AdminStatus:     AdminStatusFor(row),
		AssetSellerName: fallbackSellerName,
	}

	asset, err := e.assets.FindByID(ctx, row.AssetID)
	if err != nil || asset == nil {
		if err != nil && e.logg != nil {
			logCtx := e.logg.WithOfferID(ctx, row.ID.String())
			e.logg.Warn(logCtx, "asset lookup failed during enrichment, degrading row")
		}
		return view
	}

	if asset.SellerName != "" {
		view.AssetSellerName = asset.SellerName
	}
	view.AssetPricingFull = asset.Pricing
	view.AssetPrice = monthlyPrice(asset.Pricing, row.ContractDuration)
	return view
}

// monthlyPrice derives a monthly-equivalent figure from the duration-keyed
// pricing map ("3_months" -> total for the window). The offer's own contract
// duration wins when the map prices it; otherwise the shortest priced
// duration is used. Unparsable keys and empty maps yield zero.
func monthlyPrice(pricing map[string]float64, contractDuration string) float64 {
	if len(pricing) == 0 {
		return 0
	}

	if months, ok := durationMonths(contractDuration); ok {
		if total, priced := pricing[normalizeDurationKey(contractDuration)]; priced {
			return perMonth(total, months)
		}
	}

	bestMonths := 0
	bestTotal := 0.0
	for key, total := range pricing {
		months, ok := durationMonths(key)
		if !ok {
			continue
		}
		if bestMonths == 0 || months < bestMonths {
			bestMonths = months
			bestTotal = total
		}
	}
	if bestMonths == 0 {
		return 0
	}
	return perMonth(bestTotal, bestMonths)
}

func perMonth(total float64, months int) float64 {
	result, _ := decimal.NewFromFloat(total).
		Div(decimal.NewFromInt(int64(months))).
		Round(2).
		Float64()
	return result
}

// durationMonths parses keys like "3_months", "1_month", or "12 months".
func durationMonths(key string) (int, bool) {
	normalized := normalizeDurationKey(key)
	head, _, found := strings.Cut(normalized, "_")
	if !found {
		return 0, false
	}
	months, err := strconv.Atoi(head)
	if err != nil || months < 1 {
		return 0, false
	}
	return months, true
}

func normalizeDurationKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), " ", "_")
}
