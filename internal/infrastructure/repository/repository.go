package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"lingoplatform/internal/domain"
)

// Любая неожиданная ошибка БД наружу уходит как ErrStoreUnavailable,
// чтобы вызывающий слой не зависел от деталей драйвера.
// ErrRecordNotFound пропускаем как есть — это не сбой стора.
func wrapStore(err error) error {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
