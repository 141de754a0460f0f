package sim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantarc/tradekit/pkg/bus"
	"github.com/quantarc/tradekit/pkg/common"
	"github.com/quantarc/tradekit/pkg/exchange"
	"github.com/quantarc/tradekit/pkg/ledger"
	"github.com/quantarc/tradekit/pkg/utility/fixed"
)

var (
	testInstrument = common.NewInstrument("BTCUSD", common.InstrumentCrypto)
	testExchange   = common.ExchangeType{Name: "test-venue"}
)

func newTestSimulator() (*Simulator, *bus.Router) {
	router := bus.NewRouter(100)
	account := ledger.NewAccount("test", testExchange)
	return NewSimulator(router, exchange.NewGroup(), account, WithMode(exchange.ModeBacktest)), router
}

func limitOrder(side common.OrderSide, volume, price float64) common.Order {
	return common.NewOrder(side, fixed.FromFloat64(volume), fixed.FromFloat64(price),
		testInstrument, testExchange, common.OrderTypeLimit, common.OrderFlagNone)
}

var errDrained = errors.New("drained")

// drain dispatches everything queued on the router and returns the events by type.
func drain(t *testing.T, router *bus.Router) (trades []common.Trade, fills []common.Fill, opens []common.OrderOpen, cancels []common.Cancel, rejected []common.OrderRejected) {
	t.Helper()

	router.TradeHandler = func(_ context.Context, tr common.Trade) { trades = append(trades, tr) }
	router.FillHandler = func(_ context.Context, f common.Fill) { fills = append(fills, f) }
	router.OrderOpenHandler = func(_ context.Context, o common.OrderOpen) { opens = append(opens, o) }
	router.CancelHandler = func(_ context.Context, c common.Cancel) { cancels = append(cancels, c) }
	router.OrderRejectedHandler = func(_ context.Context, r common.OrderRejected) { rejected = append(rejected, r) }

	go router.ExecLoop(context.Background(), func() error { return errDrained })
	require.ErrorIs(t, <-router.Done(), errDrained)
	return
}

func TestSimulator_CrossUpdatesAccount(t *testing.T) {
	s, router := newTestSimulator()
	ctx := context.Background()

	s.OnOrder(ctx, limitOrder(common.OrderSideBuy, 2, 100))
	s.OnOrder(ctx, limitOrder(common.OrderSideSell, 2, 100))

	trades, fills, opens, _, _ := drain(t, router)
	require.Len(t, trades, 1)
	require.Len(t, fills, 1)
	require.Len(t, opens, 1, "the resting bid reports open")

	p, err := s.Account().Find(testInstrument)
	require.NoError(t, err)
	assert.Equal(t, "-2", p.Size().String())
	assert.Equal(t, "100", p.Price().String())
}

func TestSimulator_MarketRemainderCancels(t *testing.T) {
	s, router := newTestSimulator()
	ctx := context.Background()

	s.OnOrder(ctx, limitOrder(common.OrderSideBuy, 2, 100))
	market := common.NewOrder(common.OrderSideSell, fixed.FromFloat64(5), fixed.Zero,
		testInstrument, testExchange, common.OrderTypeMarket, common.OrderFlagNone)
	s.OnOrder(ctx, market)

	trades, _, _, cancels, _ := drain(t, router)
	require.Len(t, trades, 1)
	assert.Equal(t, "2", trades[0].Volume.String())

	require.Len(t, cancels, 1)
	assert.Equal(t, market.Id, cancels[0].Order.Id)
	assert.Equal(t, "2", cancels[0].Order.Filled.String())
}

func TestSimulator_RejectsUnfillableFillOrKill(t *testing.T) {
	s, router := newTestSimulator()

	fok := common.NewOrder(common.OrderSideBuy, fixed.FromFloat64(10), fixed.FromFloat64(100),
		testInstrument, testExchange, common.OrderTypeLimit, common.OrderFlagFillOrKill)
	s.OnOrder(context.Background(), fok)

	_, _, _, _, rejected := drain(t, router)
	require.Len(t, rejected, 1)
	assert.Equal(t, fok.Id, rejected[0].OriginalOrder.Id)
}

func TestSimulator_HaltAndContinue(t *testing.T) {
	s, router := newTestSimulator()
	ctx := context.Background()

	s.OnHalt(ctx, common.Halt{Reason: "volatility"})
	s.OnOrder(ctx, limitOrder(common.OrderSideBuy, 1, 100))

	_, _, opens, _, rejected := drain(t, router)
	require.Len(t, rejected, 1)
	assert.Empty(t, opens)

	s.OnContinue(ctx, common.Continue{})
	s.OnOrder(ctx, limitOrder(common.OrderSideBuy, 1, 100))

	_, _, opens, _, rejected = drain(t, router)
	assert.Empty(t, rejected)
	require.Len(t, opens, 1)
}

func TestSimulator_StopHeldReportsOpen(t *testing.T) {
	s, router := newTestSimulator()

	stop := common.NewOrder(common.OrderSideSell, fixed.FromFloat64(5), fixed.FromFloat64(95),
		testInstrument, testExchange, common.OrderTypeStop, common.OrderFlagNone)
	stop.StopTarget = fixed.FromFloat64(95)
	s.OnOrder(context.Background(), stop)

	_, _, opens, _, _ := drain(t, router)
	require.Len(t, opens, 1)
	assert.Equal(t, stop.Id, opens[0].Order.Id)
	assert.Equal(t, 1, s.books.Book(testInstrument, testExchange).PendingStops())
}

func TestSimulator_StopRejectionStillSettlesCommittedTrades(t *testing.T) {
	s, router := newTestSimulator()
	ctx := context.Background()

	stop := common.NewOrder(common.OrderSideSell, fixed.FromFloat64(5), fixed.FromFloat64(95),
		testInstrument, testExchange, common.OrderTypeStop, common.OrderFlagFillOrKill)
	stop.StopTarget = fixed.FromFloat64(95)
	s.OnOrder(ctx, stop)

	s.OnOrder(ctx, limitOrder(common.OrderSideBuy, 1, 94))
	s.OnOrder(ctx, common.NewOrder(common.OrderSideSell, fixed.FromFloat64(1), fixed.Zero,
		testInstrument, testExchange, common.OrderTypeMarket, common.OrderFlagNone))

	trades, fills, _, _, _ := drain(t, router)
	require.Len(t, trades, 1)
	require.Len(t, fills, 1)
	assert.Equal(t, "94", trades[0].Price.String())

	// The trade that triggered the doomed stop still reached the ledger.
	p, err := s.Account().Find(testInstrument)
	require.NoError(t, err)
	assert.Equal(t, "-1", p.Size().String())
	assert.Equal(t, "94", p.Price().String())
}

func TestSimulator_CascadeFillsCarryTriggeringSubmission(t *testing.T) {
	s, router := newTestSimulator()
	ctx := context.Background()

	stop := common.NewOrder(common.OrderSideSell, fixed.FromFloat64(2), fixed.FromFloat64(95),
		testInstrument, testExchange, common.OrderTypeStop, common.OrderFlagNone)
	stop.StopTarget = fixed.FromFloat64(95)
	s.OnOrder(ctx, stop)

	s.OnOrder(ctx, limitOrder(common.OrderSideBuy, 3, 94))

	trigger := common.NewOrder(common.OrderSideSell, fixed.FromFloat64(1), fixed.Zero,
		testInstrument, testExchange, common.OrderTypeMarket, common.OrderFlagNone)
	s.OnOrder(ctx, trigger)

	_, fills, _, _, _ := drain(t, router)
	require.Len(t, fills, 2)

	// Fill.Order is the submission whose match cycle committed the trade;
	// the taker ids identify the actual counterparties.
	assert.Equal(t, trigger.Id, fills[0].Order.Id)
	assert.Equal(t, trigger.Id, fills[1].Order.Id)
	assert.Equal(t, trigger.Id, fills[0].Trade.TakerId)
	assert.Equal(t, stop.Id, fills[1].Trade.TakerId)
}

func TestSimulator_CancelOrder(t *testing.T) {
	s, router := newTestSimulator()
	ctx := context.Background()

	o := limitOrder(common.OrderSideBuy, 1, 100)
	s.OnOrder(ctx, o)

	require.NoError(t, s.CancelOrder(testInstrument, testExchange, o.Id))
	assert.Error(t, s.CancelOrder(testInstrument, testExchange, o.Id))

	_, _, _, cancels, _ := drain(t, router)
	require.Len(t, cancels, 1)
	assert.Equal(t, o.Id, cancels[0].Order.Id)
}

func TestSimulator_ChangeOrder(t *testing.T) {
	s, router := newTestSimulator()
	ctx := context.Background()

	o := limitOrder(common.OrderSideBuy, 1, 100)
	s.OnOrder(ctx, o)

	changed := o
	changed.Price = fixed.FromFloat64(101)
	require.NoError(t, s.ChangeOrder(changed))

	b := s.books.Book(testInstrument, testExchange)
	top, ok := b.TopOfBook(common.OrderSideBuy)
	require.True(t, ok)
	assert.Equal(t, "101", top.Price.String())

	_, _, _, _, _ = drain(t, router)
}
