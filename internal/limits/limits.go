// Package limits materializes per-equipment active-power and current limits
// from a grid-model triplestore view, discriminated by kind (C2).
package limits

import (
	"math"
	"sort"

	"github.com/Baltic-RCC/RAO/internal/triplestore"
)

// Kind discriminates a permanent vs temporary admissible limit.
const (
	KindPATL = "patl"
	KindTATL = "tatl"
)

// Record is one synthesized/joined limit aggregate for an equipment×kind
// pair: the minimum current, active-power and apparent-power limits seen,
// plus the mean/max voltage observed on the same terminal.
type Record struct {
	EquipmentID      string
	Kind             string
	MinCurrent       *float64
	MinActivePower   *float64
	MinApparentPower *float64
	MeanVoltage      float64
	MaxVoltage       float64
}

// Key addresses one Record by equipment id and kind.
type Key struct {
	EquipmentID string
	Kind        string
}

type rawLimit struct {
	equipmentID string
	kind        string
	measurement string // "current" | "activePower" | "apparentPower"
	value       float64
	voltageKV   float64
	hasVoltage  bool
	instanceID  string
	rowIndex    int
}

// Extract runs the §4.2 join chain over network and returns the grouped
// limit aggregates keyed by (equipment, kind).
func Extract(network *triplestore.View) map[Key]Record {
	raws := joinRawLimits(network)
	return group(raws)
}

// concreteLimitTypes maps the CIM concrete rdf:type name of an operational
// limit to the probe kind used in the limit-update pass.
var concreteLimitTypes = map[string]string{
	"CurrentLimit":       "current",
	"ActivePowerLimit":   "activePower",
	"ApparentPowerLimit": "apparentPower",
}

func joinRawLimits(network *triplestore.View) []rawLimit {
	limitSets, _ := triplestore.TypeView(network, "OperationalLimitSet", false)
	limitSetByID := map[string]triplestore.Row{}
	for _, r := range limitSets.Rows {
		limitSetByID[r.Subject] = r
	}

	limitTypes, _ := triplestore.TypeView(network, "OperationalLimitType", false)
	limitTypeKind := map[string]string{}
	for _, r := range limitTypes.Rows {
		if lt, ok := r.Get("limitType"); ok {
			limitTypeKind[r.Subject] = lastSegmentKind(lt)
		}
	}

	terminals, _ := triplestore.TypeView(network, "Terminal", false)
	terminalByID := map[string]triplestore.Row{}
	for _, r := range terminals.Rows {
		terminalByID[r.Subject] = r
	}

	svVoltages, _ := triplestore.TypeView(network, "SvVoltage", false)
	voltageByNode := map[string]float64{}
	for _, r := range svVoltages.Rows {
		if tn, ok := r.Get("TopologicalNode"); ok {
			if v, ok := r.GetNumeric("v"); ok {
				voltageByNode[tn] = v
			}
		}
	}

	var raws []rawLimit
	for concreteType, measurement := range concreteLimitTypes {
		opLimits, _ := triplestore.TypeView(network, concreteType, false)
		for _, ol := range opLimits.Rows {
			setID, ok := ol.Get("OperationalLimitSet")
			if !ok {
				continue
			}
			set, ok := limitSetByID[setID]
			if !ok {
				continue
			}
			typeID, ok := ol.Get("OperationalLimitType")
			if !ok {
				continue
			}
			kind, ok := limitTypeKind[typeID]
			if !ok {
				continue
			}
			value, ok := ol.GetNumeric("value")
			if !ok {
				continue
			}

			equipmentID := ""
			var voltageKV float64
			hasVoltage := false
			if terminalID, ok := set.Get("Terminal"); ok {
				if term, ok := terminalByID[terminalID]; ok {
					if ce, ok := term.Get("ConductingEquipment"); ok {
						equipmentID = ce
					}
					if tn, ok := term.Get("TopologicalNode"); ok {
						if v, ok := voltageByNode[tn]; ok {
							voltageKV = v
							hasVoltage = true
						}
					}
				}
			}
			if equipmentID == "" {
				if eq, ok := set.Get("Equipment"); ok {
					equipmentID = eq
				}
			}
			if equipmentID == "" {
				continue
			}

			raws = append(raws, rawLimit{
				equipmentID: equipmentID,
				kind:        kind,
				measurement: measurement,
				value:       value,
				voltageKV:   voltageKV,
				hasVoltage:  hasVoltage,
				instanceID:  ol.InstanceID,
				rowIndex:    ol.RowIndex,
			})
		}
	}

	sort.Slice(raws, func(i, j int) bool {
		if raws[i].instanceID != raws[j].instanceID {
			return raws[i].instanceID < raws[j].instanceID
		}
		return raws[i].rowIndex < raws[j].rowIndex
	})
	return raws
}

func lastSegmentKind(uri string) string {
	// The limitType URI is suffixed; its last segment names the kind.
	last := uri
	for i := len(uri) - 1; i >= 0; i-- {
		if uri[i] == '#' || uri[i] == '/' || uri[i] == '.' {
			last = uri[i+1:]
			break
		}
	}
	switch last {
	case "patl", "PATL":
		return KindPATL
	case "tatl", "TATL":
		return KindTATL
	default:
		return ""
	}
}

func group(raws []rawLimit) map[Key]Record {
	type acc struct {
		rec        Record
		synthPower *float64
		voltages   []float64
		sawVoltage bool
	}
	accs := map[Key]*acc{}

	order := func(k Key) *acc {
		a, ok := accs[k]
		if !ok {
			a = &acc{rec: Record{EquipmentID: k.EquipmentID, Kind: k.Kind}}
			accs[k] = a
		}
		return a
	}

	for _, raw := range raws {
		k := Key{EquipmentID: raw.equipmentID, Kind: raw.kind}
		a := order(k)
		switch raw.measurement {
		case "current":
			setMin(&a.rec.MinCurrent, raw.value)
			// Candidate MW synthesis from this row's own voltage, per spec
			// §4.2 step 7; applied below only when no genuine active-power
			// limit is present for the group.
			if raw.hasVoltage {
				synth := roundTo(math.Sqrt(3)*raw.value*raw.voltageKV/1000.0, 1)
				setMin(&a.synthPower, synth)
			}
		case "activePower":
			setMin(&a.rec.MinActivePower, raw.value)
		case "apparentPower":
			setMin(&a.rec.MinApparentPower, raw.value)
		}
		if raw.hasVoltage {
			a.voltages = append(a.voltages, raw.voltageKV)
			a.sawVoltage = true
		}
	}

	out := map[Key]Record{}
	for k, a := range accs {
		if a.rec.MinActivePower == nil && a.synthPower != nil {
			a.rec.MinActivePower = a.synthPower
		}
		if a.sawVoltage {
			a.rec.MeanVoltage = roundTo(mean(a.voltages), 1)
			a.rec.MaxVoltage = roundTo(maxOf(a.voltages), 1)
		}
		out[k] = a.rec
	}
	return out
}

func setMin(dst **float64, v float64) {
	if *dst == nil || v < **dst {
		vv := v
		*dst = &vv
	}
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func maxOf(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
