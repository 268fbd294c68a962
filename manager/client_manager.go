// Package manager keeps one authentication client per Apple ID so that an
// application juggling several accounts reuses each account's cookie jar and
// pending second-factor session.
package manager

import (
	"strings"
	"sync"

	"github.com/XcodesOrg/XcodesLoginKit/idmsa"
)

type ClientManager struct {
	clients map[string]*idmsa.Client
	options []idmsa.Option
	mu      sync.Mutex
}

var (
	clientManagerInstance *ClientManager
	onceClientManager     sync.Once
)

// GetClientManager returns the process-wide manager.
func GetClientManager() *ClientManager {
	onceClientManager.Do(func() {
		clientManagerInstance = NewClientManager()
	})
	return clientManagerInstance
}

// NewClientManager builds an isolated manager; opts are applied to every
// client it creates.
func NewClientManager(opts ...idmsa.Option) *ClientManager {
	return &ClientManager{
		clients: make(map[string]*idmsa.Client),
		options: opts,
	}
}

// GetClient returns the client already held for userName, or nil.
func (m *ClientManager) GetClient(userName string) *idmsa.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clients[key(userName)]
}

// NewAuthClient returns the client for userName, creating it on first use.
func (m *ClientManager) NewAuthClient(userName string) *idmsa.Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(userName)
	if client, ok := m.clients[k]; ok {
		return client
	}
	client := idmsa.NewClient(m.options...)
	m.clients[k] = client
	return client
}

// RemoveClient signs the account out and forgets its client.
func (m *ClientManager) RemoveClient(userName string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(userName)
	if client, ok := m.clients[k]; ok {
		client.SignOut()
		delete(m.clients, k)
	}
}

// Accounts without consistent casing are the same Apple ID.
func key(userName string) string { return strings.ToLower(userName) }
