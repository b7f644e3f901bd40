package dispatch

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/verisight-labs/trustagent/src/agent/components/planner"
	"github.com/verisight-labs/trustagent/src/agent/components/uploads"
	"github.com/verisight-labs/trustagent/src/agent/types"
)

// RunAll executes every action of one request as a single batch and waits
// for all of them. Actions are independent: no ordering between siblings,
// no cancellation of the batch when one fails. The wait itself is
// unbounded; each backend call is bounded by its client timeout, so the
// join is bounded transitively by the slowest backend.
func (d *Dispatcher) RunAll(ctx context.Context, actions []planner.Action, run types.RunContext, reg *uploads.Registry) []types.ActionResult {
	results := make([]types.ActionResult, len(actions))
	var wg sync.WaitGroup
	for i, action := range actions {
		wg.Add(1)
		go func(index int, a planner.Action) {
			defer wg.Done()
			// Failures become result values inside the task body so the
			// join stays a plain wait-for-all.
			defer func() {
				if r := recover(); r != nil {
					log.Printf("dispatch: action %s panicked: %v", a.Kind, r)
					results[index] = types.ActionResult{Kind: a.Kind, Payload: map[string]any{
						"error": fmt.Sprintf("internal: %v", r),
					}}
				}
			}()
			results[index] = d.Execute(ctx, a, run, reg)
		}(i, action)
	}
	wg.Wait()

	for i, r := range results {
		if msg := r.Err(); msg != "" {
			log.Printf("dispatch: action %d/%d (%s) had error: %s", i+1, len(results), r.Kind, msg)
		}
	}
	return results
}

// InjectedUploadActions returns one media-detection action per uploaded
// file. These run regardless of what the plan asked for.
func InjectedUploadActions(reg *uploads.Registry) []planner.Action {
	out := make([]planner.Action, 0, reg.Len())
	for i := 0; i < reg.Len(); i++ {
		out = append(out, planner.Action{
			Kind:     planner.KindAIMediaDetection,
			MediaRef: fmt.Sprintf("upload:%d", i),
		})
	}
	return out
}
