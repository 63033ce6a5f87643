package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/refund"
)

// depositShare is the fraction of the total charged up front when the guest
// pays the rest at the desk.
const depositShare = 0.3

type PaymentService struct {
	successURL string
	cancelURL  string
	log        *logrus.Logger
}

func NewPaymentService(callbackBase string, log *logrus.Logger) *PaymentService {
	return &PaymentService{
		successURL: callbackBase + "/payment/success?session_id={CHECKOUT_SESSION_ID}",
		cancelURL:  callbackBase + "/payment/cancel?session_id={CHECKOUT_SESSION_ID}",
		log:        log,
	}
}

// CheckoutAmount is the amount to collect now: the full total for online
// payment, a deposit for pay-at-desk.
func (s *PaymentService) CheckoutAmount(totalCents int64, payAtDesk bool) int64 {
	if payAtDesk {
		return int64(float64(totalCents) * depositShare)
	}
	return totalCents
}

// CreateCheckoutSession opens a Stripe Checkout session for a reservation
// and returns the hosted payment URL plus the session id.
func (s *PaymentService) CreateCheckoutSession(amountCents int64, currency, reservationID, customerEmail string) (string, string, error) {
	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("CloudLodge reservation " + reservationID),
					},
					UnitAmount: stripe.Int64(amountCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		Mode:          stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:    stripe.String(s.successURL),
		CancelURL:     stripe.String(s.cancelURL),
		CustomerEmail: stripe.String(customerEmail),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("creating checkout session: %w", err)
	}
	return sess.URL, sess.ID, nil
}

// RefundBySessionID refunds the payment behind a checkout session, used when
// a paid reservation is cancelled.
func (s *PaymentService) RefundBySessionID(sessionID string) error {
	sess, err := session.Get(sessionID, nil)
	if err != nil {
		return fmt.Errorf("looking up checkout session %s: %w", sessionID, err)
	}
	if sess.PaymentIntent == nil || sess.PaymentIntent.ID == "" {
		return fmt.Errorf("no payment intent found for session %s", sessionID)
	}
	_, err = refund.New(&stripe.RefundParams{
		PaymentIntent: stripe.String(sess.PaymentIntent.ID),
	})
	return err
}

// CallbackResult is what the loopback listener captured from the checkout
// redirect.
type CallbackResult struct {
	SessionID string
	Completed bool
}

// WaitForCallback runs a loopback HTTP listener until Stripe redirects the
// browser to the success or cancel URL, then reports which one fired. It
// returns when the redirect lands or ctx is cancelled.
func (s *PaymentService) WaitForCallback(ctx context.Context, addr string) (*CallbackResult, error) {
	results := make(chan CallbackResult, 1)

	capture := func(completed bool) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			if completed {
				fmt.Fprintln(w, "Payment received. You can close this tab and return to CloudLodge.")
			} else {
				fmt.Fprintln(w, "Payment cancelled. You can close this tab and return to CloudLodge.")
			}
			select {
			case results <- CallbackResult{SessionID: r.URL.Query().Get("session_id"), Completed: completed}:
			default:
			}
		}
	}

	r := mux.NewRouter()
	r.HandleFunc("/payment/success", capture(true)).Methods(http.MethodGet)
	r.HandleFunc("/payment/cancel", capture(false)).Methods(http.MethodGet)

	srv := &http.Server{Addr: addr, Handler: r}
	errs := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errs <- err
		}
	}()

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	select {
	case res := <-results:
		s.log.WithFields(logrus.Fields{
			"session_id": res.SessionID,
			"completed":  res.Completed,
		}).Info("payment callback received")
		return &res, nil
	case err := <-errs:
		return nil, fmt.Errorf("callback listener: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
