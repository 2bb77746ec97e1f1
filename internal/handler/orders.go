package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
	"github.com/vivekyarra/moviesbyvivek/internal/service"
)

// OrderHandler drives checkout: opening an order claims the seats, and
// confirming it with the gateway's signed callback books them.
type OrderHandler struct {
	Orders   *service.OrderCoordinator
	Payments *service.PaymentVerifier
	KeyID    string // public gateway key id the client checkout needs
	Log      *logger.Logger
}

type createOrderRequest struct {
	ShowtimeID uint64   `json:"showtime_id" validate:"required"`
	Seats      []string `json:"seats" validate:"required,min=1,max=20,dive,required"`
	Amount     int64    `json:"amount" validate:"gt=0"`
}

type confirmOrderRequest struct {
	ProviderPaymentID string `json:"provider_payment_id" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

// verifyPaymentRequest is the checkout widget's callback shape.
type verifyPaymentRequest struct {
	OrderID   string `json:"order_id" validate:"required"`
	PaymentID string `json:"payment_id" validate:"required"`
	Signature string `json:"signature" validate:"required"`
}

type showtimeSummary struct {
	ID         uint64 `json:"id"`
	MovieTitle string `json:"movie_title"`
	Theatre    string `json:"theatre"`
	DateTime   string `json:"datetime"`
}

type orderResponse struct {
	OrderID        string          `json:"order_id"`
	Status         string          `json:"status"`
	Seats          []string        `json:"seats"`
	Amount         int64           `json:"amount"`
	Currency       string          `json:"currency"`
	KeyID          string          `json:"key_id,omitempty"`
	ClaimExpiresAt time.Time       `json:"claim_expires_at"`
	BookingID      *string         `json:"booking_id,omitempty"`
	Showtime       showtimeSummary `json:"showtime"`
}

func (h *OrderHandler) toResponse(o *model.PaymentOrder) orderResponse {
	return orderResponse{
		OrderID:        o.OrderID,
		Status:         string(o.Status),
		Seats:          o.Seats,
		Amount:         o.Amount,
		Currency:       o.Currency,
		KeyID:          h.KeyID,
		ClaimExpiresAt: o.ClaimExpiresAt,
		BookingID:      o.BookingID,
		Showtime: showtimeSummary{
			ID:         o.ShowtimeID,
			MovieTitle: o.Snapshot.MovieTitle,
			Theatre:    o.Snapshot.TheatreName,
			DateTime:   o.Snapshot.DateTime(),
		},
	}
}

// Create handles POST /v1/orders.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var body createOrderRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	order, err := h.Orders.OpenOrder(c.Request().Context(), service.OpenOrderInput{
		UserID:     userID,
		ShowtimeID: body.ShowtimeID,
		Seats:      body.Seats,
		Amount:     body.Amount,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, h.toResponse(order))
}

func (h *OrderHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	order, err := h.Orders.GetOrder(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, h.toResponse(order))
}

// Cancel handles DELETE /v1/orders/:id and frees the order's seats.
func (h *OrderHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	if err := h.Orders.CancelOrder(c.Request().Context(), userID, c.Param("id")); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Confirm handles POST /v1/orders/:id/confirm.
func (h *OrderHandler) Confirm(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var body confirmOrderRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	return h.confirm(c, service.ConfirmInput{
		UserID:            userID,
		OrderID:           c.Param("id"),
		ProviderPaymentID: body.ProviderPaymentID,
		Signature:         body.Signature,
	})
}

// Verify handles POST /v1/payments/verify, the same confirmation keyed
// by the body's order_id.
func (h *OrderHandler) Verify(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return unauthorized(c)
	}
	var body verifyPaymentRequest
	if ok, err := bindAndValidate(c, &body); !ok {
		return err
	}
	return h.confirm(c, service.ConfirmInput{
		UserID:            userID,
		OrderID:           body.OrderID,
		ProviderPaymentID: body.PaymentID,
		Signature:         body.Signature,
	})
}

func (h *OrderHandler) confirm(c echo.Context, in service.ConfirmInput) error {
	booking, err := h.Payments.Confirm(c.Request().Context(), in)
	if err != nil {
		return respondConfirmError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": booking})
}
