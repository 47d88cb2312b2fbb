package fs

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/lifecycle"
)

// ReadResult is the outcome of ReadFileAsync.
type ReadResult struct {
	Name string
	Data []byte
	Err  error
}

// ReadFileAsync reads a whole file in the background. The returned channel
// delivers exactly one result and is then closed. If ctx ends first the
// result carries ctx's error and the bytes are discarded.
func ReadFileAsync(ctx context.Context, path string) <-chan ReadResult {
	out := make(chan ReadResult, 1)
	if err := ctx.Err(); err != nil {
		out <- ReadResult{Name: path, Err: err}
		close(out)
		return out
	}

	lifecycle.Go(ctx, func(ctx context.Context) error {
		defer close(out)

		done := make(chan ReadResult, 1)
		go func() {
			data, err := os.ReadFile(path)
			if err != nil {
				err = fmt.Errorf("failed to read %s: %w", path, err)
			}
			done <- ReadResult{Name: path, Data: data, Err: err}
		}()

		select {
		case <-ctx.Done():
			out <- ReadResult{Name: path, Err: ctx.Err()}
		case res := <-done:
			out <- res
		}
		return nil
	})

	return out
}
