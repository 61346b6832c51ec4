package topics

import (
	"github.com/nfrund/storefront/internal/domain"
	"github.com/nfrund/storefront/internal/pubsub"
	"github.com/nfrund/storefront/internal/topicmgr"
)

// ProductChanged carries every product mutation. Messages are keyed by the
// product id in decimal, so subscribers filter without decoding.
var ProductChanged = pubsub.NewEvent[domain.ProductChangeEvent](topicmgr.TopicConfig{
	Name:        "catalog.product.changed",
	Module:      "catalog",
	Description: "A product's price or availability changed",
	Example:     `{"productId":7,"type":"availability_change","data":{"productName":"Running Shoes","isAvailable":false,"timestamp":"2024-01-01T00:00:00Z"}}`,
	Metadata: map[string]interface{}{
		"key": "productId",
	},
})

// Register adds the catalog topics to manager.
func Register(manager *topicmgr.Manager) error {
	return manager.RegisterAll(ProductChanged.Topic())
}
