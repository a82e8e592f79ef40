package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Call executes d, waits for it and decodes a successful JSON body into T
func Call[T any](ctx context.Context, ex Executor, d Descriptor) (T, *Response, error) {
	var out T

	resp, err := ex.Execute(ctx, d).Wait(ctx)
	if err != nil {
		return out, nil, err
	}
	if err := resp.DecodeJSON(&out); err != nil {
		return out, resp, err
	}
	return out, resp, nil
}

// All executes every descriptor concurrently and returns the responses in
// order. The first failure cancels the executions still in flight.
func All(ctx context.Context, ex Executor, ds ...Descriptor) ([]*Response, error) {
	responses := make([]*Response, len(ds))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range ds {
		f := ex.Execute(gctx, d)
		g.Go(func() error {
			resp, err := f.Wait(gctx)
			if err != nil {
				f.Cancel()
				return err
			}
			responses[i] = resp
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return responses, nil
}
