package pipeline

import (
	"os"

	"golang.org/x/sync/errgroup"
)

// RunFiles runs the default pipeline over several source files
// concurrently, one independent Context per file, so each elaboration
// stays single-threaded over its own arenas and tables. Results come in
// input order regardless of completion order.
func RunFiles(paths []string, verbose bool) ([]*Context, error) {
	results := make([]*Context, len(paths))
	var g errgroup.Group
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			src, err := os.ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = RunSource(path, string(src), verbose)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
