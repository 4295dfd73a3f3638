package telemetry

import (
	"fmt"
	"strconv"
	"time"
)

// HoursPerDay is the number of hourly slots in a daily consumption profile.
const HoursPerDay = 24

// MonitoringRecord is a raw telemetry row loaded for a category page.
type MonitoringRecord struct {
	Category  string             `json:"category"`
	Timestamp time.Time          `json:"timestamp"`
	Metrics   map[string]float64 `json:"metrics"`
}

// DepartmentCost is one row of the aggregate-energy-costs resource.
type DepartmentCost struct {
	ID        string  `json:"_id"`
	TotalCost float64 `json:"totalCost"`
}

// AvgKWHRow is one row of the avgKWH resource.
type AvgKWHRow struct {
	Date   string  `json:"Date"`
	AvgIF1 float64 `json:"avg_of_IF1"`
	AvgIF2 float64 `json:"avg_of_IF2"`
}

// KWHPartsRow carries per-machine KWH/part values for one date.
// A nil value means the machine reported nothing for that date.
type KWHPartsRow struct {
	ID          string              `json:"_id"`
	MachineData map[string]*float64 `json:"machineData"`
}

// MoltenMetalRow pairs consumption with molten metal output (kg) for a date.
type MoltenMetalRow struct {
	Date        string  `json:"date"`
	MoltenMetal float64 `json:"sum_of_moltenmetal"`
	Consumption float64 `json:"sum_of_consumtion"`
}

// TimeZoneBucket holds one day of tariff zone cost. Zones are reported
// independently and their sum is not checked against any total.
type TimeZoneBucket struct {
	Date  string  `json:"date"`
	ZoneA float64 `json:"zoneA"`
	ZoneB float64 `json:"zoneB"`
	ZoneC float64 `json:"zoneC"`
	ZoneD float64 `json:"zoneD"`
}

// Zones returns the four zone costs in A..D order.
func (b TimeZoneBucket) Zones() [4]float64 {
	return [4]float64{b.ZoneA, b.ZoneB, b.ZoneC, b.ZoneD}
}

// HourReading is a single machine-hour sample. Nil fields were not reported.
type HourReading struct {
	Consumption *float64 `json:"consumption"`
	PowerFactor *float64 `json:"F_F"`
}

// MachineHours maps hour keys "0".."23" to readings.
type MachineHours map[string]HourReading

// DailyConsumptionDay is the hourly profile of every machine in every
// department for a single day.
type DailyConsumptionDay struct {
	Date        string                             `json:"Date"`
	Departments map[string]map[string]MachineHours `json:"Departments"`
}

// Validate checks the date is present and every hour key is in "0".."23".
func (d DailyConsumptionDay) Validate() error {
	if d.Date == "" {
		return fmt.Errorf("daily consumption day missing Date")
	}
	for dept, machines := range d.Departments {
		for machine, hours := range machines {
			for key := range hours {
				if !ValidHourKey(key) {
					return fmt.Errorf("day %s department %s machine %s: invalid hour key %q", d.Date, dept, machine, key)
				}
			}
		}
	}
	return nil
}

// ValidHourKey reports whether key is one of the canonical hour keys.
func ValidHourKey(key string) bool {
	hour, err := strconv.Atoi(key)
	if err != nil {
		return false
	}
	return hour >= 0 && hour < HoursPerDay && strconv.Itoa(hour) == key
}

// HourKeys returns "0".."23".
func HourKeys() []string {
	keys := make([]string, HoursPerDay)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
	}
	return keys
}
