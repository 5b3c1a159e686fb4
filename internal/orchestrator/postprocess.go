package orchestrator

import "github.com/Baltic-RCC/RAO/internal/solver"

// resultRow is one long-form post-processed row, ready for bulk indexing.
// The three CNEC result tables are melted into a single long form keyed by
// cnecResultsType, network-action activation and range-action setpoints are
// joined on (instant, contingencyId), and the message headers are attached
// under rmq. CNEC and contingency attributes from the CRAC are not joined,
// thresholds are not exploded, and NetworkActionID/RangeActionID stay empty.
type resultRow struct {
	CnecResultsType string             `json:"cnecResultsType"`
	CnecID          string             `json:"cnecId"`
	ContingencyID   string             `json:"contingencyId"`
	Instant         string             `json:"instant"`
	Values          map[string]float64 `json:"values"`
	NetworkActionID string             `json:"networkActionId,omitempty"`
	Activated       *bool              `json:"activated,omitempty"`
	RangeActionID   string             `json:"rangeActionId,omitempty"`
	SetPoint        *float64           `json:"setPoint,omitempty"`
	RMQ             map[string]string  `json:"rmq"`
}

// postProcess explicitly folds each of the three CNEC result kinds into long
// form (spec §9's "replace the generic pivot/melt with an explicit fold"),
// then left-joins network-action activation by (instant, contingencyId) and
// range-action setpoints the same way.
func postProcess(result solver.Result, headers map[string]string) []resultRow {
	activationByKey := map[string]bool{}
	for _, na := range result.NetworkActionResults {
		activationByKey[joinKey(na.Instant, na.ContingencyID)] = na.Activated
	}
	setPointByKey := map[string]float64{}
	for _, ra := range result.RangeActionResults {
		setPointByKey[joinKey(ra.Instant, ra.ContingencyID)] = ra.SetPoint
	}

	var rows []resultRow

	for _, r := range result.FlowCnecResults {
		rows = append(rows, foldRow("flowCnecResults", r.FlowCnecID, r.ContingencyID, r.Instant, r.Values, activationByKey, setPointByKey, headers))
	}
	for _, r := range result.AngleCnecResults {
		rows = append(rows, foldRow("angleCnecResults", r.AngleCnecID, r.ContingencyID, r.Instant, r.Values, activationByKey, setPointByKey, headers))
	}
	for _, r := range result.VoltageCnecResults {
		rows = append(rows, foldRow("voltageCnecResults", r.VoltageCnecID, r.ContingencyID, r.Instant, r.Values, activationByKey, setPointByKey, headers))
	}

	return rows
}

func foldRow(kind, cnecID, contingencyID, instant string, values map[string]float64, activationByKey map[string]bool, setPointByKey map[string]float64, headers map[string]string) resultRow {
	row := resultRow{
		CnecResultsType: kind,
		CnecID:          cnecID,
		ContingencyID:   contingencyID,
		Instant:         instant,
		Values:          values,
		RMQ:             headers,
	}
	key := joinKey(instant, contingencyID)
	if activated, ok := activationByKey[key]; ok {
		row.Activated = &activated
	}
	if setPoint, ok := setPointByKey[key]; ok {
		row.SetPoint = &setPoint
	}
	return row
}

func joinKey(instant, contingencyID string) string {
	return instant + "|" + contingencyID
}
