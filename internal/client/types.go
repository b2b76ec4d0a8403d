package client

import "time"

// Issue type values assigned by the backend to each medical reading.
const (
	IssueNormal      = "NORMAL"
	IssueSpO2        = "SPO2"
	IssueHR          = "HR"
	IssueBoth        = "BOTH"
	IssueSensorError = "SENSOR_ERROR"
)

// Evacuation status lifecycle values.
const (
	EvacNotNeeded  = "NOT_NEEDED"
	EvacNeeded     = "NEEDED"
	EvacInProgress = "IN_PROGRESS"
	EvacEvacuated  = "EVACUATED"
)

// Alert type values.
const (
	AlertNewCasualty      = "NEW_CASUALTY"
	AlertCriticalState    = "CRITICAL_STATE"
	AlertCriticalDuration = "CRITICAL_DURATION"
)

// MedicalData is a single telemetry reading from a soldier's sensor belt.
type MedicalData struct {
	ID        int64     `json:"id"`
	Device    string    `json:"device"`
	SpO2      int       `json:"spo2"`
	HeartRate int       `json:"heart_rate"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
	Timestamp time.Time `json:"timestamp"`
	IssueType string    `json:"issue_type"`
}

// Critical reports whether the reading carries a vitals alarm
// (not a sensor error and not normal).
func (m MedicalData) Critical() bool {
	switch m.IssueType {
	case IssueSpO2, IssueHR, IssueBoth:
		return true
	}
	return false
}

// Evacuation is the per-soldier evacuation sub-record.
type Evacuation struct {
	ID       int64      `json:"id"`
	Soldier  string     `json:"soldier"`
	Status   string     `json:"status"`
	Time     *time.Time `json:"evacuation_time"`
	Started  *time.Time `json:"evacuation_started"`
	Team     string     `json:"evacuation_team"`
	Priority int        `json:"priority"`
	Notes    string     `json:"notes"`
}

// Soldier is one record of the prioritized list. LatestData is nil until the
// device has reported at least once; Evacuation is nil when no evacuation
// record exists.
type Soldier struct {
	DevEUI     string       `json:"devEui"`
	FirstName  string       `json:"first_name"`
	LastName   string       `json:"last_name"`
	Unit       string       `json:"unit"`
	Priority   int          `json:"priority"`
	LatestData *MedicalData `json:"latest_data"`
	Evacuation *Evacuation  `json:"evacuation"`
	LastUpdate time.Time    `json:"last_update"`
}

// FullName returns "FirstName LastName" for display.
func (s Soldier) FullName() string {
	if s.FirstName == "" {
		return s.LastName
	}
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}

// HasPosition reports whether the soldier has a usable coordinate. The
// backend emits 0/0 for devices that have never acquired a GPS fix, so the
// zero coordinate is treated as absent.
func (s Soldier) HasPosition() bool {
	return s.LatestData != nil && (s.LatestData.Latitude != 0 || s.LatestData.Longitude != 0)
}

// NearbyResult is one entry of the nearby-radius search response: the
// soldier, its distance from the query point in kilometres, and the reading
// the distance was computed from.
type NearbyResult struct {
	Soldier     Soldier     `json:"soldier"`
	Distance    float64     `json:"distance"`
	MedicalData MedicalData `json:"medical_data"`
}

// HistoryStats is the aggregate block returned with a medical history.
type HistoryStats struct {
	AvgSpO2       float64 `json:"avg_spo2"`
	AvgHeartRate  float64 `json:"avg_heart_rate"`
	RecordsCount  int     `json:"records_count"`
	CriticalStats struct {
		CriticalSpO2Count int `json:"critical_spo2_count"`
		CriticalHRCount   int `json:"critical_hr_count"`
		CriticalBothCount int `json:"critical_both_count"`
		SensorErrors      int `json:"sensor_errors"`
	} `json:"critical_stats"`
}

// MedicalHistory is the medical-history response for a single soldier,
// newest record first.
type MedicalHistory struct {
	Records []MedicalData `json:"medical_history"`
	Stats   *HistoryStats `json:"stats"`
}

// Alert is a server-generated operator notification.
type Alert struct {
	ID          int64      `json:"id"`
	Soldier     string     `json:"soldier"`
	SoldierName string     `json:"soldier_name"`
	AlertType   string     `json:"alert_type"`
	Message     string     `json:"message"`
	CreatedAt   time.Time  `json:"created_at"`
	IsRead      bool       `json:"is_read"`
	ReadAt      *time.Time `json:"read_at"`
}

// LoginResult is the response of a successful login.
type LoginResult struct {
	Success  bool   `json:"success"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

// Profile is the authenticated user's own profile.
type Profile struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Unit     string `json:"unit"`
	Position string `json:"position"`
}
