package pipeline

import (
	"context"
	"errors"
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/smartmap-tools/holderscan/internal/detector"
)

// ProgressFunc is invoked after each image finishes, with the number of
// completed images and the total.
type ProgressFunc func(done, total int)

// RunImages processes multiple images concurrently, one worker per image up
// to maxWorkers. Each run owns its own candidate set, so no state is shared
// between images. Results come back in input order.
func (o *Orchestrator) RunImages(ctx context.Context, images []image.Image,
	maxWorkers int, progress ProgressFunc,
) ([][]detector.Candidate, error) {
	if len(images) == 0 {
		return nil, errors.New("no images provided")
	}
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	results := make([][]detector.Candidate, len(images))
	done := make(chan int, len(images))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxWorkers)
	for i, img := range images {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = o.Run(img)
			done <- i
			return nil
		})
	}

	// Drain completions for progress reporting while workers run.
	finished := make(chan struct{})
	go func() {
		count := 0
		for range done {
			count++
			if progress != nil {
				progress(count, len(images))
			}
			if count == len(images) {
				break
			}
		}
		close(finished)
	}()

	if err := g.Wait(); err != nil {
		close(done)
		return nil, err
	}
	<-finished
	return results, nil
}
