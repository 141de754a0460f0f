package middleware

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/data/db/psql"
)

// Ledger persists the audit trail asynchronously; the chain never waits on
// the database.
type Ledger struct {
	db        *sql.DB
	appId     int64
	accountId int64
}

func NewLedger(db *sql.DB, appId, accountId int64) *Ledger {
	return &Ledger{
		db:        db,
		appId:     appId,
		accountId: accountId,
	}
}

func (l *Ledger) WithTrade(handler bus.TradeEventHandler) bus.TradeEventHandler {
	return func(ctx context.Context, trade common.Trade) {
		go func() {
			if err := psql.InsertTrade(ctx, l.db, l.appId, l.accountId, trade); err != nil {
				slog.Warn("unable to insert trade", "error", err)
			}
		}()
		handler(ctx, trade)
	}
}

func (l *Ledger) WithCancel(handler bus.CancelEventHandler) bus.CancelEventHandler {
	return func(ctx context.Context, cancel common.Cancel) {
		go func() {
			if err := psql.InsertCancel(ctx, l.db, l.appId, l.accountId, cancel.Order); err != nil {
				slog.Warn("unable to insert cancel", "error", err)
			}
		}()
		handler(ctx, cancel)
	}
}
