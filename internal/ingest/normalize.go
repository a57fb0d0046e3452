package ingest

import (
	"fmt"
	"sort"

	"github.com/edupricing/availability-go/internal/stringutil"
)

// Prune keeps only entries that are active and carry a non-empty plantel,
// programa and modalidad after trimming. Pruning an already-pruned list is
// a no-op.
func Prune(entries []Entry) []Entry {
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !e.Activo {
			continue
		}
		if stringutil.Normalize(e.Plantel) == "" ||
			stringutil.Normalize(e.Programa) == "" ||
			stringutil.Normalize(e.Modalidad) == "" {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// BackfillPlanURLs fills the plan link of online entries missing one from
// the first non-online entry of the same (normalized) program. It mutates
// the slice in place and returns the sorted program names that still lack
// a link after the pass.
func BackfillPlanURLs(entries []Entry) []string {
	plans := make(map[string]string)
	for _, e := range entries {
		if e.Modalidad == ModalidadOnline || e.PlanURL == "" {
			continue
		}
		key := stringutil.Normalize(e.Programa)
		if _, ok := plans[key]; !ok {
			plans[key] = e.PlanURL
		}
	}

	missing := make(map[string]struct{})
	for i := range entries {
		e := &entries[i]
		if e.Modalidad != ModalidadOnline || e.PlanURL != "" {
			continue
		}
		if url, ok := plans[stringutil.Normalize(e.Programa)]; ok {
			e.PlanURL = url
		} else {
			missing[e.Programa] = struct{}{}
		}
	}

	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Normalize runs the full post-parse pass over the concatenated per-tab
// output: prune incomplete entries, backfill online plan links, and append
// one synthetic debug record when programs remain without a plan link.
func Normalize(entries []Entry, debug []SheetDebug) Payload {
	pruned := Prune(entries)
	missing := BackfillPlanURLs(pruned)
	if len(missing) > 0 {
		warnings := make([]string, 0, len(missing))
		for _, name := range missing {
			warnings = append(warnings, fmt.Sprintf("no plan link found for online program %q", name))
		}
		debug = append(debug, SheetDebug{
			Plantel:  "normalizer",
			Mode:     "backfill",
			Warnings: warnings,
		})
	}
	return Payload{Availability: pruned, Debug: debug}
}
