package offers

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatspace-ads/beatspace-backend/pkg/db/models"
	"github.com/beatspace-ads/beatspace-backend/pkg/enums"
)

func viewWith(assetName, buyerName, buyerEmail string, status enums.OfferStatus) OfferView {
	offer := models.OfferRequest{
		AssetName:  assetName,
		BuyerName:  buyerName,
		BuyerEmail: buyerEmail,
		Status:     status,
	}
	return OfferView{
		OfferRequest: offer,
		BuyerStatus:  BuyerStatusFor(offer),
		AdminStatus:  AdminStatusFor(offer),
	}
}

func TestMediationViewDropsTerminalRows(t *testing.T) {
	views := []OfferView{
		viewWith("Billboard A", "Acme", "buy@acme.test", enums.OfferStatusPending),
		viewWith("Billboard B", "Acme", "buy@acme.test", enums.OfferStatusApproved),
		viewWith("Billboard C", "Brio", "ads@brio.test", enums.OfferStatusQuoted),
	}

	result := BuildMediationView(views, MediationParams{Page: 1})
	assert.Equal(t, 2, result.ActiveRows)
	assert.Equal(t, 1, result.TotalPages)
	require.Len(t, result.Groups, 2)
	assert.Equal(t, "Acme", result.Groups[0].Buyer.Name)
	assert.Equal(t, "Brio", result.Groups[1].Buyer.Name)
}

func TestMediationViewSearchIsCaseInsensitive(t *testing.T) {
	views := []OfferView{
		viewWith("Gulshan Billboard", "Acme", "buy@acme.test", enums.OfferStatusPending),
		viewWith("Airport Wrap", "Brio", "ads@brio.test", enums.OfferStatusPending),
	}

	result := BuildMediationView(views, MediationParams{Search: "gUlShAn", Page: 1})
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "Acme", result.Groups[0].Buyer.Name)

	// Status text is searchable too.
	result = BuildMediationView(views, MediationParams{Search: "pending", Page: 1})
	assert.Equal(t, 2, result.ActiveRows)
}

func TestMediationViewBuyerStatusFilter(t *testing.T) {
	quoted := viewWith("Billboard A", "Acme", "buy@acme.test", enums.OfferStatusQuoted)
	price := 1200.0
	quoted.AdminQuotedPrice = &price
	quoted.BuyerStatus = BuyerStatusFor(quoted.OfferRequest)

	views := []OfferView{
		quoted,
		viewWith("Billboard B", "Brio", "ads@brio.test", enums.OfferStatusPending),
	}

	result := BuildMediationView(views, MediationParams{BuyerStatus: "Price Quoted", Page: 1})
	assert.Equal(t, 1, result.ActiveRows)
	require.Len(t, result.Groups, 1)
	assert.Equal(t, "Acme", result.Groups[0].Buyer.Name)
}

func TestMediationViewAllFilterRoundTrip(t *testing.T) {
	views := make([]OfferView, 0, 5)
	for i := 0; i < 5; i++ {
		views = append(views, viewWith(
			fmt.Sprintf("Asset %d", i),
			fmt.Sprintf("Buyer %d", i),
			fmt.Sprintf("b%d@test", i),
			enums.OfferStatusPending,
		))
	}

	result := BuildMediationView(views, MediationParams{Search: "", BuyerStatus: "all", Page: 1})
	require.Len(t, result.Groups, 5)
	for i, group := range result.Groups {
		assert.Equal(t, fmt.Sprintf("Buyer %d", i), group.Buyer.Name, "order must be preserved")
	}
}

func TestMediationViewPageMath(t *testing.T) {
	views := make([]OfferView, 0, 23)
	for i := 0; i < 23; i++ {
		views = append(views, viewWith(
			fmt.Sprintf("Asset %d", i),
			fmt.Sprintf("Buyer %d", i),
			fmt.Sprintf("b%d@test", i),
			enums.OfferStatusPending,
		))
	}

	first := BuildMediationView(views, MediationParams{Page: 1})
	assert.Equal(t, 3, first.TotalPages)
	assert.Equal(t, 23, first.ActiveRows)
	assert.Len(t, flattenOffers(first.Groups), 10)

	last := BuildMediationView(views, MediationParams{Page: 3})
	assert.Len(t, flattenOffers(last.Groups), 3, "last page carries the remainder")

	beyond := BuildMediationView(views, MediationParams{Page: 9})
	assert.Empty(t, beyond.Groups)
}

func TestGroupingKeyPairsNameWithEmail(t *testing.T) {
	views := []OfferView{
		viewWith("A", "Acme", "first@acme.test", enums.OfferStatusPending),
		viewWith("B", "Acme", "first@acme.test", enums.OfferStatusQuoted),
		viewWith("C", "Acme", "second@acme.test", enums.OfferStatusPending),
	}

	result := BuildMediationView(views, MediationParams{Page: 1})
	require.Len(t, result.Groups, 2, "same name with different email is a different buyer")
	assert.Len(t, result.Groups[0].Offers, 2)
	assert.Len(t, result.Groups[1].Offers, 1)
}

func TestMediationViewIsStateless(t *testing.T) {
	views := []OfferView{
		viewWith("A", "Acme", "a@acme.test", enums.OfferStatusPending),
		viewWith("B", "Brio", "b@brio.test", enums.OfferStatusQuoted),
	}
	params := MediationParams{Search: "b", Page: 1}

	first := BuildMediationView(views, params)
	second := BuildMediationView(views, params)
	assert.Equal(t, first, second)
}

func flattenOffers(groups []BuyerGroup) []OfferView {
	var out []OfferView
	for _, g := range groups {
		out = append(out, g.Offers...)
	}
	return out
}
