package historical

import (
	"os"
	"path/filepath"
	"testing"
	"time"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantarc/tradekit/pkg/common"
)

func writeRecords(t *testing.T, records []BinaryTrade) string {
	t.Helper()

	var buf []byte
	for i := range records {
		b := (*[unsafe.Sizeof(BinaryTrade{})]byte)(unsafe.Pointer(&records[i]))
		buf = append(buf, b[:]...)
	}

	path := filepath.Join(t.TempDir(), "trades.bin")
	require.NoError(t, os.WriteFile(path, buf, 0o600))
	return path
}

func TestSource_ReadRoundTrip(t *testing.T) {
	records := []BinaryTrade{
		{TimeStamp: 1, Price: 100.5, Volume: 2, Side: 0},
		{TimeStamp: 2, Price: 101, Volume: 1, Side: 1},
	}

	source := NewSource[BinaryTrade](writeRecords(t, records))
	require.NoError(t, source.Open())
	defer source.Close()

	assert.Equal(t, int64(2), source.EntryCount())

	var entry BinaryTrade
	require.NoError(t, source.Read(1, &entry))
	assert.Equal(t, records[1], entry)

	assert.ErrorIs(t, source.Read(2, &entry), ErrEof)
	assert.ErrorIs(t, source.Read(-1, &entry), ErrEof)
}

func TestSource_RejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trades.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 17), 0o600))

	source := NewSource[BinaryTrade](path)
	assert.Error(t, source.Open())
}

func TestSource_OpenMissingFile(t *testing.T) {
	source := NewSource[BinaryTrade](filepath.Join(t.TempDir(), "absent.bin"))
	assert.Error(t, source.Open())
}

func TestTradeReader_GetNext(t *testing.T) {
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	records := []BinaryTrade{
		{TimeStamp: base.Add(-time.Hour).UnixNano(), Price: 99, Volume: 1, Side: 0},
		{TimeStamp: base.UnixNano(), Price: 100, Volume: 2, Side: 1},
		{TimeStamp: base.Add(time.Minute).UnixNano(), Price: 101, Volume: 3, Side: 0},
		{TimeStamp: base.Add(time.Hour).UnixNano(), Price: 102, Volume: 4, Side: 1},
	}

	source := NewSource[BinaryTrade](writeRecords(t, records))
	require.NoError(t, source.Open())
	defer source.Close()

	instrument := common.NewInstrument("BTCUSD", common.InstrumentCrypto)
	venue := common.ExchangeType{Name: "test-venue"}
	reader := NewTradeReader(source, instrument, venue, base, base.Add(30*time.Minute))

	// The start lookup binary-searches past records before the window.
	first, err := reader.GetNext()
	require.NoError(t, err)
	assert.Equal(t, "100", first.Price.String())
	assert.Equal(t, common.OrderSideSell, first.Side)
	assert.True(t, first.TimeStamp.Equal(base))

	second, err := reader.GetNext()
	require.NoError(t, err)
	assert.Equal(t, "101", second.Price.String())
	assert.Equal(t, common.OrderSideBuy, second.Side)

	// The next record falls past the window's end.
	_, err = reader.GetNext()
	assert.ErrorIs(t, err, ErrEof)
}
