package domain

import "errors"

// Таксономия ошибок ядра. Репозитории заворачивают ошибки БД в
// ErrStoreUnavailable, хендлеры маппят остальное на HTTP-коды.
var (
	ErrStoreUnavailable  = errors.New("store unavailable")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientFunds = errors.New("insufficient xp")
	ErrAlreadyProcessed  = errors.New("already processed")
	ErrExternalService   = errors.New("external service failure")
	ErrAccessDenied      = errors.New("access denied")
)
