package server

import (
	"errors"

	"github.com/nfrund/storefront/internal/module"
	"github.com/nfrund/storefront/internal/modules/assistant"
	assistanttopics "github.com/nfrund/storefront/internal/modules/assistant/topics"
	"github.com/nfrund/storefront/internal/modules/catalog"
	catalogtopics "github.com/nfrund/storefront/internal/modules/catalog/topics"
	"github.com/nfrund/storefront/internal/modules/checkout"
	"github.com/nfrund/storefront/internal/topicmgr"
)

// AppModules returns every application module in boot order.
func AppModules() []module.Module {
	return []module.Module{
		catalog.New(),
		assistant.New(nil),
		checkout.New(),
	}
}

// RegisterTopics adds every module's topics to manager without building the
// modules' services.
func RegisterTopics(manager *topicmgr.Manager) error {
	return errors.Join(
		catalogtopics.Register(manager),
		assistanttopics.Register(manager),
	)
}
