//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
)

// InitializeContainer builds the full application graph
func InitializeContainer() (*Container, error) {
	wire.Build(ProviderSet)
	return nil, nil
}
