package snapshot

import (
	"fmt"

	"github.com/mpapenbr/race-strategy-engine/pkg/model"
)

// laps below this value point to timestamps parsed with the wrong unit
const MinRealisticLapTime = 10.0

const maxReportedIssues = 3

type CarBestLap struct {
	CarID   string
	BestLap float64
}

// VerifyBestLaps checks the best lap of each car for unrealistic values.
// It returns false and a list of issues if the data is not valid.
func VerifyBestLaps(cars []CarBestLap) (valid bool, issues []string) {
	if len(cars) == 0 {
		return false, []string{"No cars found in race data"}
	}
	bad := make([]CarBestLap, 0)
	for _, c := range cars {
		if c.BestLap < MinRealisticLapTime {
			bad = append(bad, c)
		}
	}
	if len(bad) == 0 {
		return true, nil
	}
	issues = append(issues, fmt.Sprintf(
		"[CRITICAL] Found %d cars with lap times < %gs (possible timestamp unit bug)",
		len(bad), MinRealisticLapTime))
	for _, c := range bad[:min(len(bad), maxReportedIssues)] {
		issues = append(issues, fmt.Sprintf("  - Car %s: %gs", c.CarID, c.BestLap))
	}
	return false, issues
}

func Verify(s *model.RaceSnapshot) (valid bool, issues []string) {
	if s == nil {
		return false, []string{"Invalid race data structure"}
	}
	cars := make([]CarBestLap, 0, len(s.Cars))
	for _, c := range s.Cars {
		cars = append(cars, CarBestLap{CarID: c.CarID, BestLap: c.BestLap})
	}
	return VerifyBestLaps(cars)
}

func VerifyReport(r *model.RaceReport) (valid bool, issues []string) {
	if r == nil {
		return false, []string{"Invalid race data structure"}
	}
	cars := make([]CarBestLap, 0, len(r.Cars))
	for _, c := range r.Cars {
		cars = append(cars, CarBestLap{CarID: c.CarID, BestLap: c.BestLapTime})
	}
	return VerifyBestLaps(cars)
}
