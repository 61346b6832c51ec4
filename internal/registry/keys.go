package registry

import (
	"log/slog"

	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/pubsub"
	"github.com/nfrund/storefront/internal/simulate"
	"github.com/nfrund/storefront/internal/topicmgr"
)

// Framework services, registered by the server before any module.
const (
	BusKey       Key[pubsub.Bus]               = "framework.bus"
	ProductsKey  Key[domain.ProductRepository] = "framework.products"
	SchedulerKey Key[*simulate.Scheduler]      = "framework.scheduler"
	RandomKey    Key[simulate.Random]          = "framework.random"
	TopicsKey    Key[*topicmgr.Manager]        = "framework.topics"
	LoggerKey    Key[*slog.Logger]             = "framework.logger"
)

// Logger returns the registered application logger, or slog.Default.
func Logger(reg *Registry) *slog.Logger {
	if logger, ok := Get(reg, LoggerKey); ok && logger != nil {
		return logger
	}
	return slog.Default()
}
