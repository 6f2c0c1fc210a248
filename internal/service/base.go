// Package service holds the pool use cases served over HTTP: quoting,
// liquidity, swaps and token ledger operations.
package service

import "log/slog"

// BaseService carries the logger shared by service types, tagged with the
// service's component name.
type BaseService struct {
	logger *slog.Logger
}

func newBaseService(logger *slog.Logger, component string) BaseService {
	return BaseService{logger: logger.With("component", component)}
}
