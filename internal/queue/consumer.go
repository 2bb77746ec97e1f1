package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/vivekyarra/moviesbyvivek/internal/logger"
)

// BookingLog appends one human readable line per confirmed booking to
// <dir>/booking.log.
type BookingLog struct {
	dir string
	mu  sync.Mutex
}

func NewBookingLog(dir string) *BookingLog {
	return &BookingLog{dir: dir}
}

func (b *BookingLog) Path() string {
	return filepath.Join(b.dir, "booking.log")
}

// Handle decodes one message body and appends it.
func (b *BookingLog) Handle(body []byte) error {
	var ev BookingConfirmedEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return fmt.Errorf("unmarshal: %w", err)
	}
	if ev.BookingID == "" {
		return errors.New("event without booking_id")
	}
	return b.Append(ev)
}

func (b *BookingLog) Append(ev BookingConfirmedEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", b.dir, err)
	}
	f, err := os.OpenFile(b.Path(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	line := fmt.Sprintf("[%s] Booking confirmed | booking_id=%s | order_id=%s | user_id=%d | showtime_id=%d | movie=%q | theatre=%q | when=%q | total=%d %s | seats=[%s]\n",
		ev.ConfirmedAt, ev.BookingID, ev.OrderID, ev.UserID, ev.ShowtimeID,
		ev.MovieTitle, ev.TheatreName, ev.DateTime, ev.Amount, ev.Currency, strings.Join(ev.Seats, ","))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

// ConsumeRabbit keeps a consumer attached to queue until ctx is done,
// redialing with exponential backoff.  Messages that fail to decode or
// write are rejected without requeue so one bad payload cannot spin.
func ConsumeRabbit(ctx context.Context, url, queue string, sink *BookingLog, log *logger.Logger) error {
	backoff := time.Second
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		conn, err := amqp.Dial(url)
		if err != nil {
			log.Warn("booking consumer: dial failed", "error", err, "retry_in", backoff)
			if !sleep(ctx, backoff) {
				return ctx.Err()
			}
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		err = consumeLoop(ctx, conn, queue, sink, log)
		_ = conn.Close()
		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Warn("booking consumer: loop ended, reconnecting", "error", err)
		if !sleep(ctx, 2*time.Second) {
			return ctx.Err()
		}
	}
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, queue string, sink *BookingLog, log *logger.Logger) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if err := ch.Qos(50, 0, false); err != nil {
		log.Warn("booking consumer: set QoS failed", "error", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			if err := sink.Handle(d.Body); err != nil {
				log.Error("booking consumer: handle message failed", "error", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
