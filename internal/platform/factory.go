package platform

import (
	"context"
	"io"

	"github.com/aretw0/harumemo/pkg/core"
)

// New opens the configured blob store, wires a Service on top of it and
// loads the persisted notes.
//
//	svc, err := harumemo.New(ctx, "./notes", harumemo.WithAdapter("sqlite"))
func New(ctx context.Context, uri string, opts ...Option) (*core.Service, error) {
	o := resolve(opts)

	blobs, err := openBlobStore(ctx, uri, o)
	if err != nil {
		return nil, err
	}

	svc := core.NewService(blobs, core.ServiceConfig{
		Store: core.StoreConfig{
			Key:   o.storageKey,
			Clock: o.clock,
		},
		Logger:      o.logger,
		EventBuffer: o.eventBuffer,
	})

	if err := svc.Load(ctx); err != nil {
		if c, ok := blobs.(io.Closer); ok {
			_ = c.Close()
		}
		return nil, err
	}

	if o.logger != nil {
		o.logger.Debug("service ready", "adapter", o.adapter, "notes", svc.Len())
	}
	return svc, nil
}
