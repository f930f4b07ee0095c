package editor

import (
	"github.com/sergi/go-diff/diffmatchpatch"
)

// Delta is one contiguous change between original and edited text.
type Delta struct {
	Original string `json:"original"`
	Edited   string `json:"edited"`
}

// ComputeDelta diffs original against edited text and returns the ordered
// list of changed spans. Adjacent delete/insert pairs collapse into a single
// replacement. Identical texts yield an empty slice.
func ComputeDelta(original, edited string) []Delta {
	if original == edited {
		return []Delta{}
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(original, edited, false)
	dmp.DiffCleanupSemantic(diffs)

	var deltas []Delta
	var pending *Delta

	flush := func() {
		if pending != nil {
			deltas = append(deltas, *pending)
			pending = nil
		}
	}

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
		case diffmatchpatch.DiffDelete:
			if pending == nil {
				pending = &Delta{}
			}
			pending.Original += d.Text
		case diffmatchpatch.DiffInsert:
			if pending == nil {
				pending = &Delta{}
			}
			pending.Edited += d.Text
		}
	}
	flush()

	return deltas
}
