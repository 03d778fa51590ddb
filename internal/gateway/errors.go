package gateway

import "errors"

var (
	// ErrRateLimited 外部APIのレート制限（HTTP 429）
	ErrRateLimited = errors.New("レート制限に達しました")
	// ErrCityNotFound 天気APIで都市が見つからない
	ErrCityNotFound = errors.New("都市が見つかりません")
)
