package service

import (
	"sort"
	"strings"
	"time"

	"paper_bot/internal/models"
)

// CanonicalSymbol убирает префикс стороны книги: tBTCUSD -> BTCUSD.
// Уже канонический символ возвращается как есть — всё внутреннее
// состояние ключуется только такими символами.
func CanonicalSymbol(pair string) string {
	return strings.TrimPrefix(pair, "t")
}

// SymbolFromKey достаёт символ из ключа канала свечей "trade:1m:tBTCUSD".
func SymbolFromKey(key string) (string, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[2] == "" {
		return "", false
	}
	return CanonicalSymbol(parts[2]), true
}

// candleFromRow разбирает строку кадра Bitfinex:
// [MTS, OPEN, CLOSE, HIGH, LOW, VOLUME]. Строка без валидной метки
// времени бракуется — это единственный повод выкинуть свечу.
func candleFromRow(row []float64) (models.Candle, bool) {
	if len(row) < 6 || row[0] <= 0 {
		return models.Candle{}, false
	}
	return models.Candle{
		Timestamp: time.UnixMilli(int64(row[0])),
		Open:      row[1],
		Close:     row[2],
		High:      row[3],
		Low:       row[4],
		Volume:    row[5],
	}, true
}

// NormalizeCandles приводит пачку к oldest-first и отсеивает брак,
// возвращая число выброшенных строк. Снапшоты приходят newest-first —
// разворачиваем; после разворота серия дотягивается до неубывающей
// по времени стабильной сортировкой на случай кривого порядка с wire.
func NormalizeCandles(rows [][]float64, snapshot bool) ([]models.Candle, int) {
	out := make([]models.Candle, 0, len(rows))
	dropped := 0
	for _, row := range rows {
		c, ok := candleFromRow(row)
		if !ok {
			dropped++
			continue
		}
		out = append(out, c)
	}

	if snapshot {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})

	return out, dropped
}

// tickerFromPayload: [BID, BID_SIZE, ASK, ASK_SIZE, ...] —
// bid и ask пробрасываются как есть, остальное нам не нужно.
func tickerFromPayload(p []float64) (models.Ticker, bool) {
	if len(p) < 3 {
		return models.Ticker{}, false
	}
	return models.Ticker{Bid: p[0], Ask: p[2]}, true
}
