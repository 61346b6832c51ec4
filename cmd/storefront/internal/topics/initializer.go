// Package topics backs the storefront topics commands.
package topics

import (
	"github.com/nfrund/storefront/internal/server"
	"github.com/nfrund/storefront/internal/topicmgr"
)

// Initialize returns a manager holding every topic the application modules
// register. No bus, store or HTTP server is created.
func Initialize() (*topicmgr.Manager, error) {
	manager := topicmgr.NewManager()
	if err := server.RegisterTopics(manager); err != nil {
		return nil, err
	}
	return manager, nil
}
