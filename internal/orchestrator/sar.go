package orchestrator

import "github.com/Baltic-RCC/RAO/internal/triplestore"

// violatedContingency is one distinct contingency surfaced by the violation
// filter, carrying the subject ids needed to drive one builder.Build call.
type violatedContingency struct {
	ContingencyID string
}

// filterViolations extracts ContingencyPowerFlowResult rows with
// isViolation = true, optionally requiring valueA to be non-null (spec §4.5
// step 2), and collects the distinct contingencies they reference. The
// violation flag, current value and contingency reference are all
// predicates of the same result row: isViolation/valueA are inherited from
// PowerFlowResult, Contingency is the subtype's own association.
func filterViolations(sar *triplestore.View, currentViolationsOnly bool) []violatedContingency {
	results, _ := triplestore.TypeView(sar, "ContingencyPowerFlowResult", false)
	seen := map[string]struct{}{}
	var out []violatedContingency
	for _, row := range results.Rows {
		if !row.GetBool("isViolation") {
			continue
		}
		if currentViolationsOnly {
			if _, ok := row.Get("valueA"); !ok {
				continue
			}
		}
		contingencyID, ok := row.Get("Contingency")
		if !ok {
			continue
		}
		if _, dup := seen[contingencyID]; dup {
			continue
		}
		seen[contingencyID] = struct{}{}
		out = append(out, violatedContingency{ContingencyID: contingencyID})
	}
	return out
}
