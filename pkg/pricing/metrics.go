package pricing

import (
	"github.com/DaKloudStudios/cruzremodel-backend/pkg/enums"
)

// SeasonCapacity describes the working season an owner configures.
type SeasonCapacity struct {
	WeeksPerYear float64
	DaysPerWeek  float64
	HoursPerDay  float64
}

// Employee is a roster entry used when deriving labor cost rates.
type Employee struct {
	PayType enums.PayType
	// Wage is the hourly rate for hourly employees and the annual salary
	// for salaried ones.
	Wage               float64
	BurdenPercent      float64
	UtilizationPercent float64
}

// OverheadLine is a recurring overhead expense.
type OverheadLine struct {
	Amount    float64
	Frequency enums.OverheadFrequency
}

// BusinessRules carries the owner-configured fee rules applied at the
// estimate level.
type BusinessRules struct {
	MinServiceCallFee         float64
	TripCharge                float64
	EmergencySurchargePercent float64
}

// Settings is the full company configuration the metrics calculator consumes.
type Settings struct {
	Season                SeasonCapacity
	Employees             []Employee
	Overhead              []OverheadLine
	TargetMarginPercent   float64
	MaterialMarkupPercent float64
	TaxLaborByDefault     bool
	Rules                 BusinessRules
}

// Metrics is the set of rates derived from Settings. It is recomputed from
// scratch on every call and never persisted as an input.
type Metrics struct {
	ProductionDays        float64
	SeasonHours           float64
	TotalBillableHours    float64
	TotalGrossPayroll     float64
	TotalBurdenCost       float64
	TotalOverhead         float64
	OverheadPerManHour    float64
	TotalAnnualCost       float64
	BreakEvenRate         float64
	TargetHourlyRate      float64
	AvgHourlyWage         float64
	AvgLaborBurdenPercent float64
}

// ComputeMetrics derives the company cost rates from the provided settings.
// Any division with a zero denominator yields 0 rather than NaN/Inf, so an
// empty roster or a zero-length season produces all-zero rates.
func ComputeMetrics(s Settings) Metrics {
	var m Metrics

	m.ProductionDays = s.Season.WeeksPerYear * s.Season.DaysPerWeek
	m.SeasonHours = m.ProductionDays * s.Season.HoursPerDay

	var hourlyWageSum float64
	var hourlyCount int
	for _, e := range s.Employees {
		annualHours := m.SeasonHours
		gross := e.Wage
		if e.PayType == enums.PayTypeHourly {
			gross = e.Wage * annualHours
			hourlyWageSum += e.Wage
			hourlyCount++
		}
		m.TotalGrossPayroll += gross
		m.TotalBurdenCost += gross * e.BurdenPercent / 100
		m.TotalBillableHours += annualHours * e.UtilizationPercent / 100
	}

	if hourlyCount > 0 {
		m.AvgHourlyWage = hourlyWageSum / float64(hourlyCount)
	}
	m.AvgLaborBurdenPercent = safeDiv(m.TotalBurdenCost, m.TotalGrossPayroll) * 100

	for _, line := range s.Overhead {
		m.TotalOverhead += line.Amount * line.Frequency.AnnualMultiplier()
	}
	m.OverheadPerManHour = safeDiv(m.TotalOverhead, m.TotalBillableHours)

	m.TotalAnnualCost = m.TotalGrossPayroll + m.TotalBurdenCost + m.TotalOverhead
	m.BreakEvenRate = safeDiv(m.TotalAnnualCost, m.TotalBillableHours)
	if m.BreakEvenRate > 0 {
		m.TargetHourlyRate = safeDiv(m.BreakEvenRate, 1-s.TargetMarginPercent/100)
	}

	return m
}
