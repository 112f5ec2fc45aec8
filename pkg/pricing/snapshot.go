package pricing

// Snapshot freezes the company cost rates at the moment an estimate is first
// opened for editing. Later changes to company settings never alter an
// already-issued estimate; all labor pricing on that estimate keeps reading
// from its snapshot.
type Snapshot struct {
	BaseLaborCost         float64
	LaborBurdenPercent    float64
	OverheadPerManHour    float64
	BreakEvenRate         float64
	TargetHourlyRate      float64
	MaterialMarkupPercent float64
}

// SnapshotFromMetrics captures the subset of derived metrics an estimate
// needs, plus the material markup in force at capture time.
func SnapshotFromMetrics(m Metrics, materialMarkupPercent float64) Snapshot {
	return Snapshot{
		BaseLaborCost:         m.AvgHourlyWage,
		LaborBurdenPercent:    m.AvgLaborBurdenPercent,
		OverheadPerManHour:    m.OverheadPerManHour,
		BreakEvenRate:         m.BreakEvenRate,
		TargetHourlyRate:      m.TargetHourlyRate,
		MaterialMarkupPercent: materialMarkupPercent,
	}
}

// LoadedLaborCost is the true hourly cost of labor under this snapshot:
// base wage plus payroll burden plus allocated overhead. Missing snapshot
// fields are zero, which flows through to a zero rate rather than an error.
func (s Snapshot) LoadedLaborCost() float64 {
	return s.BaseLaborCost*(1+s.LaborBurdenPercent/100) + s.OverheadPerManHour
}
