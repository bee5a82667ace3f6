package installer

import (
	"context"
	"fmt"
	"sync"

	"modkit/internal/errors"
	"modkit/internal/module"
	"modkit/internal/output"

	"golang.org/x/sync/errgroup"
)

// runParallel processes modules through a bounded worker pool. Module
// installs are side-effect-isolated to their own directories, so they may
// run concurrently; the errgroup context cancels outstanding steps once
// one fails. Status lines are printed as steps finish, which means their
// order is not the listing order.
func (i *Installer) runParallel(ctx context.Context, mods []module.Module) ([]Result, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(i.Jobs)

	results := make([]Result, len(mods))
	var printMu sync.Mutex

	for n, m := range mods {
		if !m.HasInstallStep {
			results[n] = Result{Module: m, Status: StatusSkipped}
			printMu.Lock()
			output.PrintSkipped(i.Out, m.Name, "no "+i.InstallEntry)
			printMu.Unlock()
			continue
		}

		g.Go(func() error {
			// Each step writes into its own buffer; interleaving raw
			// subprocess output from concurrent steps would be unreadable.
			var buf lockedBuffer
			err := i.Steps.RunStep(ctx, m, &buf, &buf)

			printMu.Lock()
			defer printMu.Unlock()
			if err != nil {
				results[n] = Result{Module: m, Status: StatusFailed, Err: err}
				output.PrintFailed(i.Out, m.Name, err)
				if out := buf.Bytes(); len(out) > 0 {
					i.ErrOut.Write(out)
					output.PrintStepOutputEnd(i.ErrOut)
				}
				return errors.WrapWithMessage(err, errors.Runtime,
					fmt.Sprintf("module %s install step failed", m.Name))
			}
			results[n] = Result{Module: m, Status: StatusInstalled}
			output.PrintInstalled(i.Out, m.Name)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return compact(results), err
	}
	return results, nil
}

// compact drops zero-value slots left by steps that were cancelled before
// they recorded a result.
func compact(results []Result) []Result {
	out := results[:0]
	for _, r := range results {
		if r.Status != "" {
			out = append(out, r)
		}
	}
	return out
}
