package middleware

import (
	"context"

	"github.com/quantarc/tradekit/pkg/common"
)

//goland:noinspection ALL
var (
	NoopOrderHdl     = func(context.Context, common.Order) {}
	NoopTradeHdl     = func(context.Context, common.Trade) {}
	NoopOrderOpenHdl = func(context.Context, common.OrderOpen) {}
	NoopFillHdl      = func(context.Context, common.Fill) {}
	NoopCancelHdl    = func(context.Context, common.Cancel) {}
	NoopChangeHdl    = func(context.Context, common.Change) {}
	NoopOrderRjctHdl = func(context.Context, common.OrderRejected) {}
	NoopErrorHdl     = func(context.Context, common.Error) {}
	NoopHaltHdl      = func(context.Context, common.Halt) {}
	NoopContinueHdl  = func(context.Context, common.Continue) {}
)
