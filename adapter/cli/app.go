package cli

import (
	"errors"

	"github.com/mirelabalan/fanvault/internal/app"
)

// container is the global dependency container the commands run against.
var container *app.Container

// SetContainer sets the global container for CLI commands.
func SetContainer(c *app.Container) {
	container = c
}

// getContainer returns the container or an error when the CLI runs in
// limited mode without a database.
func getContainer() (*app.Container, error) {
	if container == nil {
		return nil, errors.New("storefront services unavailable, check database configuration")
	}
	return container, nil
}
