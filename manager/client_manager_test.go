package manager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAuthClientIsReusedPerAccount(t *testing.T) {
	m := NewClientManager()
	first := m.NewAuthClient("jappleseed@apple.com")
	require.NotNil(t, first)

	assert.Same(t, first, m.NewAuthClient("jappleseed@apple.com"))
	assert.Same(t, first, m.NewAuthClient("JAppleseed@Apple.COM"))
	assert.NotSame(t, first, m.NewAuthClient("other@apple.com"))
}

func TestGetClientWithoutCreate(t *testing.T) {
	m := NewClientManager()
	assert.Nil(t, m.GetClient("jappleseed@apple.com"))

	created := m.NewAuthClient("jappleseed@apple.com")
	assert.Same(t, created, m.GetClient("jappleseed@apple.com"))
}

func TestRemoveClient(t *testing.T) {
	m := NewClientManager()
	m.NewAuthClient("jappleseed@apple.com")
	m.RemoveClient("jappleseed@apple.com")
	assert.Nil(t, m.GetClient("jappleseed@apple.com"))
}

func TestGetClientManagerIsSingleton(t *testing.T) {
	assert.Same(t, GetClientManager(), GetClientManager())
}
