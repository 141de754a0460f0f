package bus

import (
	"context"

	"github.com/quantarc/tradekit/pkg/common"
)

type EventHandler[T any] = func(context.Context, T)

type OrderEventHandler EventHandler[common.Order]
type TradeEventHandler EventHandler[common.Trade]
type OrderOpenEventHandler EventHandler[common.OrderOpen]
type FillEventHandler EventHandler[common.Fill]
type CancelEventHandler EventHandler[common.Cancel]
type ChangeEventHandler EventHandler[common.Change]
type OrderRejectionEventHandler EventHandler[common.OrderRejected]
type ErrorEventHandler EventHandler[common.Error]
type HaltEventHandler EventHandler[common.Halt]
type ContinueEventHandler EventHandler[common.Continue]

func MergeHandlers[T any](handlers ...EventHandler[T]) EventHandler[T] {
	return func(ctx context.Context, event T) {
		for _, handler := range handlers {
			handler(ctx, event)
		}
	}
}
