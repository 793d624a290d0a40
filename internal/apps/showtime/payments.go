package showtime

import (
	"fmt"
	"math"

	"github.com/fredseo/showhub-backend/internal/config"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
)

// PaymentService creates Stripe Checkout sessions for ticket purchases. The
// success URL lands back on the ticket-issue route so the seat is only
// reserved after payment.
type PaymentService struct {
	cfg *config.Config
}

func NewPaymentService(cfg *config.Config) *PaymentService {
	stripe.Key = cfg.StripeSecretKey
	return &PaymentService{cfg: cfg}
}

// CheckoutURL builds a one-item card session and returns its hosted URL.
func (s *PaymentService) CheckoutURL(userID, concertID uuid.UUID, amount float64, item string) (string, error) {
	successURL := fmt.Sprintf("%s/tickets/%s/pay/%s/%g",
		s.cfg.FrontendURL, userID, concertID, amount)

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyUSD)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(item),
					},
					UnitAmount: stripe.Int64(int64(math.Round(amount * 100))),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(s.cfg.FrontendURL + "/payments/failure"),
	}

	sess, err := session.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	if sess.URL == "" {
		return s.cfg.FrontendURL, nil
	}
	return sess.URL, nil
}
