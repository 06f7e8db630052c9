package service

import (
	"context"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lewismosage/acna-gateway/internal/backend"
	"github.com/lewismosage/acna-gateway/internal/normalize"
)

// Branch is one independent fetch contributing records to a listing
type Branch struct {
	Name  string
	Fetch func(ctx context.Context) ([]any, error)
}

// BranchFailure reports a branch that contributed nothing because its fetch
// failed
type BranchFailure struct {
	Branch    string `json:"source"`
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
	err       error
}

// Err returns the underlying fetch error
func (f BranchFailure) Err() error { return f.err }

// GatherResult is the merged outcome of a set of branches
type GatherResult struct {
	Records []any
	Failed  []BranchFailure
}

// AllFailed reports whether every branch failed
func (r GatherResult) AllFailed(branches int) bool {
	return branches > 0 && len(r.Failed) == branches
}

// Gather runs branches concurrently and waits for all of them to settle. A
// failing branch contributes an empty list and is reported in Failed; it
// never cancels or fails the others. Records are concatenated in branch
// order and de-duplicated by id, keeping the first occurrence.
func Gather(ctx context.Context, log zerolog.Logger, branches ...Branch) GatherResult {
	results := make([][]any, len(branches))
	failures := make([]*BranchFailure, len(branches))

	var g errgroup.Group
	for i, b := range branches {
		g.Go(func() error {
			records, err := b.Fetch(ctx)
			if err != nil {
				log.Warn().Err(err).Str("branch", b.Name).Msg("Listing branch failed")
				failures[i] = &BranchFailure{Branch: b.Name, Error: err.Error(), Retryable: backend.Retryable(err), err: err}
				return nil
			}
			results[i] = records
			return nil
		})
	}
	// Branches record their failure and return nil, so the group never fails.
	g.Wait()

	var res GatherResult
	var combined []any
	for i := range branches {
		if failures[i] != nil {
			res.Failed = append(res.Failed, *failures[i])
			continue
		}
		combined = append(combined, results[i]...)
	}
	res.Records = DedupByID(combined)
	return res
}

// DedupByID drops records whose id was already seen, keeping the first
// occurrence. Records without a usable id are kept.
func DedupByID(records []any) []any {
	seen := make(map[int]bool, len(records))
	out := make([]any, 0, len(records))
	for _, r := range records {
		if id, ok := normalize.RecordID(r); ok {
			if seen[id] {
				continue
			}
			seen[id] = true
		}
		out = append(out, r)
	}
	return out
}
