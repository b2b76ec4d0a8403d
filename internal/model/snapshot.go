package model

import (
	"time"

	"github.com/dkm/casewatch/internal/client"
)

// Snapshot holds the results of a single poll cycle: the full prioritized
// soldier list plus the current unread alerts. Each snapshot is a complete
// replacement set: views apply it wholesale, never merged partially.
type Snapshot struct {
	Soldiers  []client.Soldier
	Alerts    []client.Alert
	FetchedAt time.Time
}

// Find returns the soldier with the given device id, or nil.
func (s *Snapshot) Find(devEUI string) *client.Soldier {
	for i := range s.Soldiers {
		if s.Soldiers[i].DevEUI == devEUI {
			return &s.Soldiers[i]
		}
	}
	return nil
}
