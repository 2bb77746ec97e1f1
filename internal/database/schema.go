package database

import (
	"context"
	"database/sql"
	"fmt"
)

// schema is applied in order by Migrate.  seat_claims is the ledger: its
// primary key (showtime_id, seat_code) is what makes a seat claimable by
// one order at a time.  booking_seats repeats the key for sold seats.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS movies (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title      VARCHAR(255)    NOT NULL,
		created_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS theatres (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		name       VARCHAR(255)    NOT NULL,
		city       VARCHAR(128)    NOT NULL DEFAULT '',
		show_times JSON            NOT NULL,
		created_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS showtimes (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		movie_id   BIGINT UNSIGNED NOT NULL,
		theatre_id BIGINT UNSIGNED NOT NULL,
		show_date  CHAR(10)        NOT NULL,
		show_time  VARCHAR(16)     NOT NULL,
		layout     JSON            NOT NULL,
		created_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at DATETIME(6)     NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_showtimes_slot (movie_id, theatre_id, show_date, show_time),
		KEY idx_showtimes_movie_date (movie_id, show_date),
		CONSTRAINT fk_showtimes_movie FOREIGN KEY (movie_id) REFERENCES movies (id),
		CONSTRAINT fk_showtimes_theatre FOREIGN KEY (theatre_id) REFERENCES theatres (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS seat_claims (
		showtime_id BIGINT UNSIGNED     NOT NULL,
		seat_code   VARCHAR(8)          NOT NULL,
		claim_id    CHAR(36)            NOT NULL,
		status      ENUM('HELD','SOLD') NOT NULL DEFAULT 'HELD',
		expires_at  DATETIME(6)         NULL,
		booking_id  CHAR(36)            NULL,
		created_at  DATETIME(6)         NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		PRIMARY KEY (showtime_id, seat_code),
		KEY idx_seat_claims_claim (claim_id),
		CONSTRAINT fk_seat_claims_showtime FOREIGN KEY (showtime_id) REFERENCES showtimes (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS payment_orders (
		order_id            VARCHAR(64)                      NOT NULL PRIMARY KEY,
		claim_id            CHAR(36)                         NOT NULL,
		user_id             BIGINT UNSIGNED                  NOT NULL,
		showtime_id         BIGINT UNSIGNED                  NOT NULL,
		seats               JSON                             NOT NULL,
		amount              BIGINT                           NOT NULL,
		currency            CHAR(3)                          NOT NULL,
		status              ENUM('created','paid','failed')  NOT NULL DEFAULT 'created',
		provider_payment_id VARCHAR(64)                      NULL,
		booking_id          CHAR(36)                         NULL,
		movie_title         VARCHAR(255)                     NOT NULL,
		theatre_name        VARCHAR(255)                     NOT NULL,
		show_date           CHAR(10)                         NOT NULL,
		show_time           VARCHAR(16)                      NOT NULL,
		claim_expires_at    DATETIME(6)                      NOT NULL,
		created_at          DATETIME(6)                      NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
		updated_at          DATETIME(6)                      NOT NULL DEFAULT CURRENT_TIMESTAMP(6) ON UPDATE CURRENT_TIMESTAMP(6),
		UNIQUE KEY uq_payment_orders_claim (claim_id),
		KEY idx_payment_orders_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id               CHAR(36)        NOT NULL PRIMARY KEY,
		user_id          BIGINT UNSIGNED NOT NULL,
		showtime_id      BIGINT UNSIGNED NOT NULL,
		order_id         VARCHAR(64)     NOT NULL,
		movie_title      VARCHAR(255)    NOT NULL,
		theatre_name     VARCHAR(255)    NOT NULL,
		show_date        CHAR(10)        NOT NULL,
		show_time        VARCHAR(16)     NOT NULL,
		seats            JSON            NOT NULL,
		amount           BIGINT          NOT NULL,
		currency         CHAR(3)         NOT NULL,
		status           VARCHAR(16)     NOT NULL DEFAULT 'confirmed',
		payment_id       VARCHAR(64)     NULL,
		payment_provider VARCHAR(32)     NOT NULL,
		created_at       DATETIME(6)     NOT NULL,
		UNIQUE KEY uq_bookings_order (order_id),
		KEY idx_bookings_user (user_id, created_at),
		KEY idx_bookings_showtime (showtime_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS booking_seats (
		showtime_id BIGINT UNSIGNED NOT NULL,
		seat_code   VARCHAR(8)      NOT NULL,
		booking_id  CHAR(36)        NOT NULL,
		PRIMARY KEY (showtime_id, seat_code),
		KEY idx_booking_seats_booking (booking_id),
		CONSTRAINT fk_booking_seats_booking FOREIGN KEY (booking_id) REFERENCES bookings (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate creates any missing tables.  It is idempotent.
func Migrate(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
