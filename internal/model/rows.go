package model

import "time"

// SoldierRow holds display-ready data for one row of the casualty table.
type SoldierRow struct {
	DevEUI     string
	Name       string
	Unit       string
	Priority   int // 1=critical .. 5=no data
	SpO2       int // -1 when no reading
	HeartRate  int // -1 when no reading
	IssueType  string
	EvacStatus string
	Lat, Lon   float64
	HasPos     bool
	DataAge    time.Duration // -1 when no reading
	DistanceKm float64       // from the active selection; -1 when not set
}

// SummaryCounts are the per-snapshot totals shown in the overview bar.
type SummaryCounts struct {
	Total        int
	Critical     int // priority 1
	Warning      int // priority 2
	SensorErrors int
	EvacNeeded   int
	EvacActive   int
	UnreadAlerts int
}

// TrendPoint is a single timestamped sample of snapshot-level totals kept
// for the header sparklines.
type TrendPoint struct {
	Timestamp time.Time
	Critical  float64
	Tracked   float64
}
