package controllers

import (
	"net/http"

	"github.com/voltline/voltline-backend/api/middleware"
	"github.com/voltline/voltline-backend/api/responses"
	"github.com/voltline/voltline-backend/api/validators"
	"github.com/voltline/voltline-backend/internal/payments"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
)

type confirmPaymentBody struct {
	PaymentRef string  `json:"payment_ref" validate:"required"`
	ProofURL   *string `json:"proof_url,omitempty" validate:"omitempty,url"`
}

// ConfirmPayment records the customer's UPI reference and moves the order
// into verification.
func ConfirmPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body confirmPaymentBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.ConfirmPayment(r.Context(), payments.ConfirmPaymentInput{
			OrderID:    orderID,
			Actor:      middleware.ActorFromContext(r.Context()),
			PaymentRef: body.PaymentRef,
			ProofURL:   body.ProofURL,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
