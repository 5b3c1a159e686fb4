package crac

import (
	"context"
	"math"
	"strings"

	"github.com/Baltic-RCC/RAO/internal/limits"
	"github.com/Baltic-RCC/RAO/internal/models"
)

// probeOrder is the §4.3.5 step 3 probe sequence: physical current first,
// active power (the optimization target) second, apparent power (requires a
// cos phi assumption) last.
var probeOrder = []string{"current", "activePower", "apparentPower"}

func probeValue(rec limits.Record, probe string) (float64, bool) {
	switch probe {
	case "current":
		if rec.MinCurrent != nil {
			return *rec.MinCurrent, true
		}
	case "activePower":
		if rec.MinActivePower != nil {
			return *rec.MinActivePower, true
		}
	case "apparentPower":
		if rec.MinApparentPower != nil {
			return *rec.MinApparentPower, true
		}
	}
	return 0, false
}

func probeUnit(probe string) string {
	switch probe {
	case "current":
		return models.UnitAmpere
	default:
		return models.UnitMegawatt
	}
}

// updateLimits implements spec §4.3.5 over every FlowCnec already assembled
// into doc.
func (b *Builder) updateLimits(ctx context.Context, doc *models.Crac) {
	for i := range doc.FlowCnecs {
		cnec := &doc.FlowCnecs[i]
		b.updateOneLimit(ctx, cnec)
	}
}

func (b *Builder) updateOneLimit(ctx context.Context, cnec *models.FlowCnec) {
	patl, hasPATL := b.limitRecord(cnec.NetworkElementID, limits.KindPATL)
	tatl, hasTATL := b.limitRecord(cnec.NetworkElementID, limits.KindTATL)

	// Step 1: nominal voltage, taken from the state-vector voltages seen on
	// the PATL rows when present.
	voltageSource, haveVoltage := patl, hasPATL
	if !hasPATL {
		voltageSource, haveVoltage = tatl, hasTATL
	}
	if haveVoltage && (voltageSource.MeanVoltage != 0 || voltageSource.MaxVoltage != 0) {
		if strings.Contains(cnec.Name, "_AT") {
			cnec.NominalV = []float64{voltageSource.MaxVoltage}
		} else {
			cnec.NominalV = []float64{voltageSource.MeanVoltage}
		}
	} else {
		b.warn(ctx, cnec.NetworkElementID, models.ErrLimitNotFound, "operational voltage not available for CNEC "+cnec.ID+", using nominal")
	}

	// Step 2: select limit source by instant.
	primary, hasPrimary := patl, hasPATL
	curative := cnec.Instant == models.InstantCurative
	if curative {
		primary, hasPrimary = tatl, hasTATL
	}

	// Step 3: probe current -> activePower -> apparentPower. A probe absent
	// on the TATL side falls back to PATL of the same kind.
	var (
		winningValue float64
		winningProbe string
		found        bool
	)
	for _, probe := range probeOrder {
		if hasPrimary {
			if v, ok := probeValue(primary, probe); ok {
				winningValue, winningProbe, found = v, probe, true
				break
			}
		}
		if curative && hasPATL {
			if v, ok := probeValue(patl, probe); ok {
				b.warn(ctx, cnec.NetworkElementID, models.ErrLimitNotFound, "TATL limit is missing for "+cnec.Name+", using PATL value instead")
				winningValue, winningProbe, found = v, probe, true
				break
			}
		}
	}

	if !found {
		b.warn(ctx, cnec.NetworkElementID, models.ErrLimitNotFound, "no current/active-power/apparent-power limit found for CNEC "+cnec.ID)
		return
	}

	limitValue := winningValue
	unit := probeUnit(winningProbe)
	if winningProbe == "apparentPower" {
		// Step 4: assume a 0.9 power factor to convert apparent to active power.
		limitValue = roundTo(limitValue*0.9, 1)
	}

	abs := limitValue
	if abs < 0 {
		abs = -abs
	}
	cnec.Thresholds = []models.Threshold{{
		Unit: unit,
		Min:  -abs,
		Max:  abs,
		Side: 1,
	}}
}

func (b *Builder) limitRecord(equipmentID, kind string) (limits.Record, bool) {
	rec, ok := b.limits[limits.Key{EquipmentID: equipmentID, Kind: kind}]
	return rec, ok
}

// consistencyPass implements spec §4.3.6: drop every FlowCnec whose
// thresholds are entirely unconstrained (min=0, max=0).
func consistencyPass(doc *models.Crac) {
	kept := doc.FlowCnecs[:0]
	for _, cnec := range doc.FlowCnecs {
		if allUnconstrained(cnec.Thresholds) {
			continue
		}
		kept = append(kept, cnec)
	}
	doc.FlowCnecs = kept
}

func allUnconstrained(thresholds []models.Threshold) bool {
	for _, t := range thresholds {
		if !t.Unconstrained() {
			return false
		}
	}
	return true
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
