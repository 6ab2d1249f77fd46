package otypes

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/meridb/otypes/handle"
	"github.com/meridb/otypes/native"
)

// Environment is the root context under which every managed resource is
// allocated. It is created once, must outlive every handle derived from
// it, and is torn down once. The registry it owns tracks live handles so a
// premature Close is reported instead of stranding native resources.
type Environment struct {
	client native.Client
	reg    *handle.Registry
	log    *zap.Logger
}

// Option configures an Environment.
type Option func(*Environment)

// WithLogger sets the logger used for lifecycle diagnostics. The default
// is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Environment) {
		if log != nil {
			e.log = log
		}
	}
}

// NewEnvironment creates the root environment over the given native
// client. The client's own lifecycle (connection establishment, pin
// reclamation) remains with the caller.
func NewEnvironment(client native.Client, opts ...Option) (*Environment, error) {
	if client == nil {
		return nil, fmt.Errorf("otypes: nil native client")
	}
	env := &Environment{
		client: client,
		log:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(env)
	}
	env.reg = handle.NewRegistry(env.log)
	return env, nil
}

// Close tears the environment down. It fails while any handle derived
// from it is still alive; callers must release connections, descriptors
// and objects first.
func (e *Environment) Close() error {
	if n := e.reg.Live(); n > 0 {
		return fmt.Errorf("otypes: close: %d handles still open", n)
	}
	e.reg.Close()
	e.log.Debug("environment closed")
	return nil
}

// Logger returns the environment's logger.
func (e *Environment) Logger() *zap.Logger {
	return e.log
}
