package psql

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/quantarc/tradekit/pkg/common"
)

func Connect(ctx context.Context, host, port, user, pass, db string) (*sql.DB, error) {
	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, pass, db)
	dbConn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := dbConn.PingContext(ctx); err != nil {
		return nil, err
	}

	return dbConn, nil
}

func InsertTrade(ctx context.Context, db *sql.DB, appId, accountId int64, trade common.Trade) error {
	query := `
	INSERT INTO trades (
		app_id,
		account_id,
		instrument,
		exchange,
		ts,
		side,
		price,
		volume,
		maker_id,
		taker_id,
		slippage,
		transaction_cost
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	ON CONFLICT DO NOTHING;
	`

	_, err := db.ExecContext(
		ctx,
		query,
		appId,
		accountId,
		trade.Instrument.Name,
		trade.Exchange.Name,
		trade.TimeStamp,
		trade.Side.String(),
		trade.Price.String(),
		trade.Volume.String(),
		trade.MakerId,
		trade.TakerId,
		trade.Slippage.String(),
		trade.TransactionCost.String(),
	)

	return err
}

func InsertCancel(ctx context.Context, db *sql.DB, appId, accountId int64, order common.Order) error {
	query := `
	INSERT INTO order_cancels (
		app_id,
		account_id,
		order_id,
		instrument,
		exchange,
		ts,
		side,
		price,
		volume,
		filled
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (order_id, app_id, account_id) DO NOTHING;
	`

	_, err := db.ExecContext(
		ctx,
		query,
		appId,
		accountId,
		order.Id,
		order.Instrument.Name,
		order.Exchange.Name,
		order.TimeStamp,
		order.Side.String(),
		order.Price.String(),
		order.Volume.String(),
		order.Filled.String(),
	)

	return err
}
