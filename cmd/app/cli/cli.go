package cli

import (
	"context"

	"go.uber.org/fx"

	"runclub.dev/backend/internal/app"
	"runclub.dev/backend/internal/app/appcontext"
)

// Start builds the CLI fx graph with module appended and starts it. The
// returned stop function releases the infrastructure connections.
func Start(module fx.Option) (stop func() error, err error) {
	a := app.New(appcontext.Declare(appcontext.EnvCLI), module)
	if err := a.Start(context.Background()); err != nil {
		return nil, err
	}
	return func() error {
		return a.Stop(context.Background())
	}, nil
}

// Run populates the dependencies of a command, runs fn and stops the graph.
func Run[T any](fn func(deps T) error) error {
	var deps T
	stop, err := Start(fx.Populate(&deps))
	if err != nil {
		return err
	}
	defer func() {
		_ = stop()
	}()
	return fn(deps)
}
