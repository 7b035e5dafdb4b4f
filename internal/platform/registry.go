package platform

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	nilClientMessageConstant        = "platform client is nil"
	emptyNameMessageConstant        = "platform client name is empty"
	duplicateClientTemplateConstant = "platform %s is already registered"
)

var (
	// ErrNilClient indicates a nil client was registered.
	ErrNilClient = errors.New(nilClientMessageConstant)
	// ErrEmptyName indicates a client reported an empty name.
	ErrEmptyName = errors.New(emptyNameMessageConstant)
)

// DuplicateClientError reports a second client registered under an existing name.
type DuplicateClientError struct {
	Name string
}

// Error describes the duplicate.
func (duplicateError DuplicateClientError) Error() string {
	return fmt.Sprintf(duplicateClientTemplateConstant, duplicateError.Name)
}

// Registry maps platform names to clients. The zero value is ready to use.
type Registry struct {
	clients map[string]Client
}

// NewRegistry registers every provided client.
func NewRegistry(clients ...Client) (*Registry, error) {
	registry := &Registry{}
	for _, client := range clients {
		if registrationError := registry.Register(client); registrationError != nil {
			return nil, registrationError
		}
	}
	return registry, nil
}

// Register adds a client under its name.
func (registry *Registry) Register(client Client) error {
	if client == nil {
		return ErrNilClient
	}
	name := strings.TrimSpace(client.Name())
	if len(name) == 0 {
		return ErrEmptyName
	}
	if registry.clients == nil {
		registry.clients = make(map[string]Client)
	}
	if _, exists := registry.clients[name]; exists {
		return DuplicateClientError{Name: name}
	}
	registry.clients[name] = client
	return nil
}

// Names returns the registered platform names in sorted order.
func (registry *Registry) Names() []string {
	names := make([]string, 0, len(registry.clients))
	for name := range registry.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clients returns the registered clients ordered by name.
func (registry *Registry) Clients() []Client {
	names := registry.Names()
	clients := make([]Client, 0, len(names))
	for _, name := range names {
		clients = append(clients, registry.clients[name])
	}
	return clients
}

// Len reports the number of registered clients.
func (registry *Registry) Len() int {
	return len(registry.clients)
}
