package database

import (
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/ANIKETSHETTY47/grid-theft-monitor/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
	id        BIGSERIAL PRIMARY KEY,
	meter_id  TEXT NOT NULL,
	role      TEXT NOT NULL,
	area      TEXT NOT NULL DEFAULT '',
	power_w   DOUBLE PRECISION NOT NULL,
	timestamp TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS readings_meter_ts ON readings (meter_id, timestamp DESC);

CREATE TABLE IF NOT EXISTS daily_logs (
	id          TEXT PRIMARY KEY,
	date        TIMESTAMPTZ NOT NULL,
	power_loss  DOUBLE PRECISION NOT NULL,
	theft_alert TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS monthly_logs (
	id          TEXT PRIMARY KEY,
	date        TIMESTAMPTZ NOT NULL,
	power_loss  DOUBLE PRECISION NOT NULL,
	theft_alert TEXT NOT NULL
);
`

func Connect() (*sqlx.DB, error) {
	return sqlx.Connect("pgx", config.DBDSN())
}

// Migrate creates the tables the backend reads and writes. It is safe to run
// on every start.
func Migrate(db *sqlx.DB) error {
	_, err := db.Exec(schema)
	return err
}
