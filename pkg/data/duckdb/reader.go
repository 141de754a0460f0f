package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

// Reader streams recorded market trades out of a duckdb file for replay.
type Reader struct {
	dataSourceName string
	db             *sql.DB
}

func NewReader(dataSourceName string) *Reader {
	return &Reader{
		dataSourceName: dataSourceName,
	}
}

func (r *Reader) Connect() error {
	db, err := sql.Open("duckdb", r.dataSourceName)
	if err != nil {
		return fmt.Errorf("sql.Open: %w", err)
	}
	r.db = db
	return nil
}

func (r *Reader) Close() {
	_ = r.db.Close()
}

// LoadTrades feeds every recorded trade of the instrument inside [from, to]
// to the handler in timestamp order.
func (r *Reader) LoadTrades(ctx context.Context, instrument common.Instrument, ex common.ExchangeType, from, to time.Time, handler func(trade common.Trade) error) error {

	query := fmt.Sprintf(`SELECT ts, side, price, volume FROM %s_trades WHERE ts BETWEEN ? AND ? ORDER BY ts`, instrument.Name)

	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return fmt.Errorf("error preparing query: %w", err)
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	for rows.Next() {
		var (
			ts     time.Time
			side   string
			price  float64
			volume float64
		)
		if err := rows.Scan(&ts, &side, &price, &volume); err != nil {
			return fmt.Errorf("error scanning row: %w", err)
		}

		trade := common.Trade{
			Price:      fixed.FromFloat64(price),
			Volume:     fixed.FromFloat64(volume),
			Side:       common.OrderSideBuy,
			Instrument: instrument,
			Exchange:   ex,
			TimeStamp:  ts,
		}
		if side == "sell" {
			trade.Side = common.OrderSideSell
		}

		if err := handler(trade); err != nil {
			return fmt.Errorf("error processing trade: %w", err)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error scanning rows: %w", err)
	}

	return nil
}
