package state

import "errors"

var (
	// ErrStateNotFound возвращается, когда снимок состояния не найден
	ErrStateNotFound = errors.New("state.repository: state not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("state.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("state.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("state.repository: failed to scan row")
)
