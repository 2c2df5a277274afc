// Package resolver выполняет определение номера транспортного средства
// по данным внешнего распознавания с ручным подтверждением оператором.
package resolver

import (
	"context"
	"errors"
	"strings"

	"github.com/mmeshcher/parking-system/internal/model"
	"github.com/mmeshcher/parking-system/internal/validation"
)

// ErrEmptyIdentifier возвращается, если номер пуст после нормализации.
var ErrEmptyIdentifier = errors.New("vehicle number is empty")

// Source описывает внешний источник распознавания номера.
type Source interface {
	RecognizePlate(ctx context.Context, imageHandle string) (string, error)
}

// ConfirmFunc запрашивает у оператора подтверждение распознанного номера.
type ConfirmFunc func(suggested string) bool

// ManualFunc запрашивает у оператора номер, введённый вручную.
type ManualFunc func() string

// Resolver превращает результат распознавания и подтверждение оператора
// в нормализованный номер. Валидацией формата реальных номеров не занимается.
type Resolver struct {
	source Source
}

// New создаёт Resolver с указанным источником распознавания.
// Источник может быть nil — тогда всегда запрашивается ручной ввод.
func New(source Source) *Resolver {
	return &Resolver{source: source}
}

// Suggest возвращает нормализованный вариант номера из источника
// распознавания без участия оператора. Подтверждение остаётся за вызывающим.
func (r *Resolver) Suggest(ctx context.Context, imageHandle string) (string, error) {
	if r.source == nil {
		return "", errors.New("recognition source is not configured")
	}

	raw, err := r.source.RecognizePlate(ctx, imageHandle)
	if err != nil {
		return "", err
	}

	return validation.NormalizePlate(raw), nil
}

// Resolve получает номер из источника, предъявляет его оператору и при
// отказе или сбое распознавания однократно запрашивает ручной ввод.
func (r *Resolver) Resolve(ctx context.Context, imageHandle string, confirm ConfirmFunc, manual ManualFunc) (model.Identifier, error) {
	suggested, err := r.Suggest(ctx, imageHandle)

	var number string
	switch {
	case err != nil || suggested == "":
		number = manual()
	case confirm(suggested):
		number = suggested
	default:
		number = manual()
	}

	return Finalize(number)
}

// Finalize выполняет итоговую нормализацию номера: обрезает пробелы и
// строит каноническую и отображаемую формы. Пустой номер — ошибка.
func Finalize(number string) (model.Identifier, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return model.Identifier{}, ErrEmptyIdentifier
	}
	return model.NewIdentifier(number), nil
}
