package offers

import (
	"fmt"
	"strings"

	"github.com/beatspace-ads/beatspace-backend/pkg/pagination"
)

// BuildMediationView runs the admin mediation pipeline over enriched offers:
// search filter and optional buyer-status filter, then the active-set
// restriction, then the page slice, then the buyer-group fold. Pagination
// operates on individual offers, not groups, so a buyer can span pages.
// The pipeline is stateless: identical inputs produce identical output.
func BuildMediationView(views []OfferView, params MediationParams) MediationResult {
	filtered := pagination.Filter(views, func(v OfferView) bool {
		return matchesSearch(v, params.Search) && matchesBuyerStatus(v, params.BuyerStatus)
	})
	active := pagination.Filter(filtered, func(v OfferView) bool {
		return IsActive(v.OfferRequest)
	})

	page := params.Page
	if page < 1 {
		page = 1
	}
	pageRows := pagination.Paginate(active, page, pagination.DefaultPageSize)

	return MediationResult{
		Groups:     groupByBuyer(pageRows),
		Page:       page,
		TotalPages: pagination.TotalPages(len(active), pagination.DefaultPageSize),
		ActiveRows: len(active),
	}
}

func matchesSearch(v OfferView, term string) bool {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return true
	}
	campaign := ""
	if v.CampaignName != nil {
		campaign = *v.CampaignName
	}
	for _, hay := range []string{v.AssetName, v.BuyerName, campaign, string(v.Status)} {
		if strings.Contains(strings.ToLower(hay), needle) {
			return true
		}
	}
	return false
}

func matchesBuyerStatus(v OfferView, filter string) bool {
	trimmed := strings.TrimSpace(filter)
	if trimmed == "" || strings.EqualFold(trimmed, "all") {
		return true
	}
	return string(BuyerStatusFor(v.OfferRequest)) == trimmed
}

// groupByBuyer folds the page rows into buyer groups in first-seen order. The
// key pairs name with email so two buyers sharing a display name stay apart.
func groupByBuyer(views []OfferView) []BuyerGroup {
	order := make([]string, 0, len(views))
	byKey := make(map[string]*BuyerGroup, len(views))

	for _, v := range views {
		key := fmt.Sprintf("%s-%s", v.BuyerName, v.BuyerEmail)
		group, ok := byKey[key]
		if !ok {
			group = &BuyerGroup{Buyer: BuyerRef{Name: v.BuyerName, Email: v.BuyerEmail}}
			byKey[key] = group
			order = append(order, key)
		}
		group.Offers = append(group.Offers, v)
	}

	groups := make([]BuyerGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	return groups
}
