package model

// AdvisorySeverity indicates the urgency level of a triage advisory.
type AdvisorySeverity int

const (
	SeverityNotice AdvisorySeverity = iota
	SeverityWarning
	SeverityCritical
)

// AdvisoryCategory groups related advisories.
type AdvisoryCategory int

const (
	CategoryVitals AdvisoryCategory = iota
	CategoryEvacuation
	CategorySensors
)

// Advisory is a single derived triage note shown in the advisories panel.
type Advisory struct {
	Severity AdvisorySeverity
	Category AdvisoryCategory
	Title    string
	Detail   string
}
