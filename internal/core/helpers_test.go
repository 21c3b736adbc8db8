package core

import "time"

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// sampleObservations mirrors the one-year fixture used across the package
// tests, including a duplicated first of January.
func sampleObservations() []Observation {
	return []Observation{
		{Date: day(2019, 1, 1), Value: 13},
		{Date: day(2019, 1, 1), Value: 16},
		{Date: day(2019, 1, 3), Value: 5},
		{Date: day(2019, 3, 31), Value: 2},
		{Date: day(2019, 4, 1), Value: 27},
		{Date: day(2019, 4, 2), Value: 29},
		{Date: day(2019, 4, 3), Value: 20},
		{Date: day(2019, 4, 4), Value: 13},
		{Date: day(2019, 4, 5), Value: 23},
		{Date: day(2019, 5, 30), Value: 0},
	}
}

func multiYearObservations() []Observation {
	return []Observation{
		{Date: day(2019, 1, 1), Value: 13},
		{Date: day(2019, 1, 1), Value: 16},
		{Date: day(2020, 1, 3), Value: 5},
		{Date: day(2020, 3, 31), Value: 2},
		{Date: day(2021, 4, 1), Value: 27},
		{Date: day(2022, 4, 2), Value: 29},
		{Date: day(2023, 4, 3), Value: 20},
		{Date: day(2024, 4, 4), Value: 13},
		{Date: day(2024, 4, 5), Value: 23},
		{Date: day(2025, 5, 30), Value: 0},
	}
}
