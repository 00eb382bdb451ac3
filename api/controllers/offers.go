package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/beatspace-ads/beatspace-backend/api/responses"
	"github.com/beatspace-ads/beatspace-backend/api/validators"
	"github.com/beatspace-ads/beatspace-backend/internal/offers"
	"github.com/beatspace-ads/beatspace-backend/pkg/logger"
)

// ListMyOffers returns the authenticated buyer's enriched offer requests.
func ListMyOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, _, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views, err := svc.ListForBuyer(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// CreateOfferRequest opens a new offer request on an asset.
func CreateOfferRequest(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input offers.CreateRequestInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.CreateRequest(r.Context(), offers.Actor{UserID: userID, Role: role}, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// ApproveOffer accepts the current quote on behalf of the buyer.
func ApproveOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return offerAction(svc, logg, func(r *http.Request, actor offers.Actor, svc offers.Service) (any, error) {
		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerId"), "offerId")
		if err != nil {
			return nil, err
		}
		return svc.Approve(r.Context(), actor, offerID)
	})
}

// RequestOfferRevision pushes a quote back for rework.
func RequestOfferRevision(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerId"), "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input offers.RevisionInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.RequestRevision(r.Context(), offers.Actor{UserID: userID, Role: role}, offerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// CancelOffer withdraws the buyer's own request.
func CancelOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return offerAction(svc, logg, func(r *http.Request, actor offers.Actor, svc offers.Service) (any, error) {
		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerId"), "offerId")
		if err != nil {
			return nil, err
		}
		return svc.CancelRequest(r.Context(), actor, offerID)
	})
}

// DeleteOffer removes an offer request entirely.
func DeleteOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerId"), "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), offers.Actor{UserID: userID, Role: role}, offerID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminMediationView serves the grouped, paginated mediation queue.
func AdminMediationView(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 10000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params := offers.MediationParams{
			Search:      strings.TrimSpace(r.URL.Query().Get("search")),
			BuyerStatus: strings.TrimSpace(r.URL.Query().Get("buyer_status")),
			Page:        page,
		}

		result, err := svc.MediationView(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// AdminSubmitQuote attaches or revises the admin's price quote.
func AdminSubmitQuote(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerId"), "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input offers.SubmitQuoteInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.SubmitQuote(r.Context(), offers.Actor{UserID: userID, Role: role}, offerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// AdminRejectOffer declines an offer request with an optional reason.
func AdminRejectOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerId"), "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body struct {
			Reason string `json:"reason"`
		}
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.Reject(r.Context(), offers.Actor{UserID: userID, Role: role}, offerID, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// AdminSetOfferStatus applies a direct status override.
func AdminSetOfferStatus(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offerID, err := validators.ParsePathUUID(chi.URLParam(r, "offerId"), "offerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var input offers.SetStatusInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		offer, err := svc.SetStatus(r.Context(), offers.Actor{UserID: userID, Role: role}, offerID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

func offerAction(svc offers.Service, logg *logger.Logger, fn func(*http.Request, offers.Actor, offers.Service) (any, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, role, err := requestActor(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := fn(r, offers.Actor{UserID: userID, Role: role}, svc)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
