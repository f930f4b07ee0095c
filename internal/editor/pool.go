package editor

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/vampirenirmal/storylord/internal/story"
)

// EditCorpus runs the editor over every finalized narration. Edits of
// distinct narrations carry no data dependency on each other, so they fan
// out over a bounded worker group; results are reassembled in corpus order.
// Any single failure cancels the remaining edits and fails the pass.
func EditCorpus(ctx context.Context, ed Editor, narrations []story.BeatNarration, workers int) ([]string, error) {
	if len(narrations) == 0 {
		return []string{}, nil
	}
	if workers < 1 {
		workers = 1
	}

	slog.Info("starting editor pass",
		"editor", ed.Name(),
		"narrations", len(narrations),
		"workers", workers,
	)

	edited := make([]string, len(narrations))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, narration := range narrations {
		i, narration := i, narration
		g.Go(func() error {
			result, err := ed.Edit(ctx, Input{Text: narration.NarrativeText})
			if err != nil {
				return fmt.Errorf("editing %s: %w", narration.BeatReference, err)
			}
			edited[i] = result.Text

			slog.Debug("narration edited",
				"editor", ed.Name(),
				"beat_reference", narration.BeatReference,
			)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return edited, nil
}
