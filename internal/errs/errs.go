// Package errs содержит сигнальные ошибки, общие для слоёв сервиса и хранилища.
// Обработчики HTTP сопоставляют их со статус-кодами через errors.Is.
package errs

import "errors"

var (
	// ErrNotFound — запрошенная сущность отсутствует в хранилище.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — нарушение уникальности (например, занятый email).
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidCredentials — неверная пара email/пароль.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrForbidden — недостаточно прав: чужая подписка или не admin-роль.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidInput — данные запроса не прошли доменную проверку.
	ErrInvalidInput = errors.New("invalid input")
)
