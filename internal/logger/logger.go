// Package logger wraps log/slog with the handful of structured log
// lines the booking service emits.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Logger wraps slog.Logger with booking specific helpers.
type Logger struct {
	*slog.Logger
}

// New builds a logger writing to stdout.  The dev environment gets the
// text handler, everything else JSON.
func New(env, level string) *Logger {
	return NewWithWriter(os.Stdout, env, level)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, env, level string) *Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level:     lvl,
		AddSource: lvl == slog.LevelDebug,
	}
	var handler slog.Handler
	if env == "dev" || env == "" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &Logger{Logger: slog.New(handler)}
}

// Discard returns a logger that drops everything.  Used by tests.
func Discard() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel converts LOG_LEVEL values to slog levels, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *Logger) WithRequestID(requestID string) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("request_id", requestID))}
}

func (l *Logger) WithUserID(userID uint64) *Logger {
	return &Logger{Logger: l.Logger.With(slog.Uint64("user_id", userID))}
}

func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// LogHTTPRequest logs one served request.
func (l *Logger) LogHTTPRequest(c echo.Context, duration time.Duration) {
	req := c.Request()
	res := c.Response()
	l.Logger.InfoContext(req.Context(),
		"http request",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.String("query", req.URL.RawQuery),
		slog.Int("status", res.Status),
		slog.Duration("duration", duration),
		slog.String("ip", c.RealIP()),
		slog.String("request_id", res.Header().Get(echo.HeaderXRequestID)),
		slog.Int64("size", res.Size),
	)
}

// LogHTTPError logs an unexpected handler failure.
func (l *Logger) LogHTTPError(c echo.Context, err error, statusCode int) {
	req := c.Request()
	l.Logger.ErrorContext(req.Context(),
		"http error",
		slog.String("method", req.Method),
		slog.String("path", req.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
	)
}

func (l *Logger) LogOrderOpened(ctx context.Context, orderID, claimID string, userID, showtimeID uint64, seats []string, amount int64) {
	l.Logger.InfoContext(ctx,
		"order opened",
		slog.String("order_id", orderID),
		slog.String("claim_id", claimID),
		slog.Uint64("user_id", userID),
		slog.Uint64("showtime_id", showtimeID),
		slog.Any("seats", seats),
		slog.Int64("amount", amount),
	)
}

func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, orderID string, userID, showtimeID uint64) {
	l.Logger.InfoContext(ctx,
		"booking confirmed",
		slog.String("booking_id", bookingID),
		slog.String("order_id", orderID),
		slog.Uint64("user_id", userID),
		slog.Uint64("showtime_id", showtimeID),
	)
}

func (l *Logger) LogSeatConflict(ctx context.Context, showtimeID uint64, seats []string) {
	l.Logger.InfoContext(ctx,
		"seat conflict",
		slog.Uint64("showtime_id", showtimeID),
		slog.Any("seats", seats),
	)
}

// LogPaidSeatsLost records a captured payment whose seats were gone at
// confirmation.  Refunds are handled outside this service, so this
// line is what operators reconcile against.
func (l *Logger) LogPaidSeatsLost(ctx context.Context, orderID, paymentID string, seats []string) {
	l.Logger.WarnContext(ctx,
		"payment captured but seats lost",
		slog.String("order_id", orderID),
		slog.String("payment_id", paymentID),
		slog.Any("seats", seats),
	)
}

func (l *Logger) LogPaymentRejected(ctx context.Context, orderID, reason string) {
	l.Logger.WarnContext(ctx,
		"payment rejected",
		slog.String("order_id", orderID),
		slog.String("reason", reason),
	)
}

var defaultLogger = New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

// GetDefault returns the process wide logger.
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault replaces the process wide logger.
func SetDefault(l *Logger) {
	defaultLogger = l
}
