// Package checkout drives the simulated purchase flow: form
// validation, card masking and order placement.
package checkout

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shophub/storefront/internal/auth"
	"github.com/shophub/storefront/internal/cart"
	"github.com/shophub/storefront/internal/orders"
	"github.com/shophub/storefront/pkg/enums"
	pkgerrors "github.com/shophub/storefront/pkg/errors"
	"github.com/shophub/storefront/pkg/logger"
	"github.com/shophub/storefront/pkg/types"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	return v
}

// ShippingDetails is the recipient form collected during checkout.
type ShippingDetails struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Address   string `json:"address" validate:"required"`
	City      string `json:"city" validate:"required"`
	State     string `json:"state" validate:"required"`
	ZipCode   string `json:"zipCode" validate:"required"`
	Country   string `json:"country"`
}

// PaymentCard is the payment form. The full number is used only to
// derive the masked form; it is never stored or logged.
type PaymentCard struct {
	CardNumber string `json:"cardNumber" validate:"required,min=12"`
	CardName   string `json:"cardName" validate:"required"`
	ExpiryDate string `json:"expiryDate" validate:"required"`
	CVV        string `json:"cvv" validate:"required,min=3,max=4"`
}

// Service ties the cart and session engines together for order
// placement. Payment is simulated: once validation passes it always
// succeeds.
type Service struct {
	cart *cart.Engine
	auth *auth.Engine
	logg *logger.Logger
}

func NewService(cartEngine *cart.Engine, authEngine *auth.Engine, logg *logger.Logger) *Service {
	return &Service{cart: cartEngine, auth: authEngine, logg: logg}
}

// ValidateShipping checks the shipping form and returns a coded
// validation error carrying per-field messages.
func ValidateShipping(details ShippingDetails) error {
	if err := validate.Struct(details); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// ValidatePayment checks the payment form. The card number is
// normalized before length checks so formatted input passes.
func ValidatePayment(card PaymentCard) error {
	card.CardNumber = NormalizeCardNumber(card.CardNumber)
	if err := validate.Struct(card); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

// PlaceOrder runs the full checkout: validate both forms, require an
// authenticated session and a non-empty cart, snapshot the cart into a
// pending order, then clear the cart. Any failure leaves the cart and
// order history untouched.
func (s *Service) PlaceOrder(ctx context.Context, details ShippingDetails, card PaymentCard) (orders.Order, error) {
	if err := ValidateShipping(details); err != nil {
		return orders.Order{}, err
	}
	if err := ValidatePayment(card); err != nil {
		return orders.Order{}, err
	}
	if s.auth.State() != enums.SessionStateAuthenticated {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to place an order")
	}

	lines := s.cart.Lines()
	if len(lines) == 0 {
		return orders.Order{}, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}
	summary := s.cart.Summary()

	draft := orders.Draft{
		Items: lines,
		Total: summary.Total,
		ShippingAddress: orders.ShippingInfo{
			FirstName: details.FirstName,
			LastName:  details.LastName,
			Email:     details.Email,
			Phone:     details.Phone,
			Address: types.Address{
				Street:  details.Address,
				City:    details.City,
				State:   details.State,
				ZipCode: details.ZipCode,
				Country: details.Country,
			},
		},
		PaymentMethod: MaskCard(card.CardNumber),
	}

	order := s.auth.AddOrder(ctx, draft)
	s.cart.Clear(ctx)

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID), "order placed")
	}
	return order, nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		for _, fieldErr := range errs {
			details[fieldErr.Field()] = validationMessage(fieldErr)
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	}
	return "is invalid"
}
