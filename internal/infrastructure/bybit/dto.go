package bybit

import "github.com/shopspring/decimal"

// BaseResponse - standard Bybit v5 envelope
type BaseResponse[T any] struct {
	RetCode int    `json:"retCode"`
	RetMsg  string `json:"retMsg"`
	Result  T      `json:"result"`
}

// TickerResponse - /v5/market/tickers
type TickerResponse struct {
	Category string `json:"category"`
	List     []struct {
		Symbol    string          `json:"symbol"`
		LastPrice decimal.Decimal `json:"lastPrice"`
		Bid1Price decimal.Decimal `json:"bid1Price"`
		Ask1Price decimal.Decimal `json:"ask1Price"`
	} `json:"list"`
}

// WsTickerEvent - tickers.{symbol} push from the public spot stream
type WsTickerEvent struct {
	Topic string `json:"topic"`
	Type  string `json:"type"` // "snapshot"
	Ts    int64  `json:"ts"`
	Data  struct {
		Symbol    string          `json:"symbol"`
		LastPrice decimal.Decimal `json:"lastPrice"`
	} `json:"data"`
}
