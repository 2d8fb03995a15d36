package models

import "errors"

var (
	ErrTickerNotFound    = errors.New("ticker not found")
	ErrDuplicateAlert    = errors.New("alert already exists")
	ErrAlreadySubscribed = errors.New("ticker already subscribed")
	ErrInvalidSymbol     = errors.New("symbol is empty")

	// ErrSettingsNotFound is returned by a store that has nothing saved yet.
	ErrSettingsNotFound = errors.New("settings not found")
	ErrSettingsIO       = errors.New("settings io")

	ErrFeedConnect = errors.New("feed connect")
	ErrRateLimited = errors.New("rate limited")
)
