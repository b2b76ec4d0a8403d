package engine

import (
	"context"
	"errors"

	"github.com/dkm/casewatch/internal/client"
)

// MockAPIClient implements client.APIClient for testing.
type MockAPIClient struct {
	PrioritizedFn func(ctx context.Context) ([]client.Soldier, error)
	AlertsFn      func(ctx context.Context) ([]client.Alert, error)
	NearbyFn      func(ctx context.Context, lat, lon, radiusKm float64) ([]client.NearbyResult, error)
	HistoryFn     func(ctx context.Context, devEUI string, days int) (*client.MedicalHistory, error)
	StartEvacFn   func(ctx context.Context, devEUI string) error
}

func (m *MockAPIClient) Login(ctx context.Context, username, password string) (*client.LoginResult, error) {
	return &client.LoginResult{Success: true, Username: username}, nil
}

func (m *MockAPIClient) Logout(ctx context.Context) error { return nil }

func (m *MockAPIClient) GetProfile(ctx context.Context) (*client.Profile, error) {
	return &client.Profile{Username: "medic"}, nil
}

func (m *MockAPIClient) GetPrioritizedSoldiers(ctx context.Context) ([]client.Soldier, error) {
	if m.PrioritizedFn != nil {
		return m.PrioritizedFn(ctx)
	}
	return []client.Soldier{{DevEUI: "dev-1", FirstName: "Taras", LastName: "Bilyk"}}, nil
}

func (m *MockAPIClient) GetSoldier(ctx context.Context, devEUI string) (*client.Soldier, error) {
	return &client.Soldier{DevEUI: devEUI}, nil
}

func (m *MockAPIClient) GetMedicalHistory(ctx context.Context, devEUI string, days int) (*client.MedicalHistory, error) {
	if m.HistoryFn != nil {
		return m.HistoryFn(ctx, devEUI, days)
	}
	return &client.MedicalHistory{}, nil
}

func (m *MockAPIClient) GetNearbySoldiers(ctx context.Context, lat, lon, radiusKm float64) ([]client.NearbyResult, error) {
	if m.NearbyFn != nil {
		return m.NearbyFn(ctx, lat, lon, radiusKm)
	}
	return nil, nil
}

func (m *MockAPIClient) GetCriticalVitals(ctx context.Context) ([]client.NearbyResult, error) {
	return nil, nil
}

func (m *MockAPIClient) StartEvacuation(ctx context.Context, devEUI string) error {
	if m.StartEvacFn != nil {
		return m.StartEvacFn(ctx, devEUI)
	}
	return nil
}

func (m *MockAPIClient) CompleteEvacuation(ctx context.Context, devEUI string) error { return nil }

func (m *MockAPIClient) CancelEvacuation(ctx context.Context, devEUI string) error { return nil }

func (m *MockAPIClient) GetUnreadAlerts(ctx context.Context) ([]client.Alert, error) {
	if m.AlertsFn != nil {
		return m.AlertsFn(ctx)
	}
	return nil, nil
}

func (m *MockAPIClient) MarkAlertRead(ctx context.Context, alertID int64) error { return nil }

func (m *MockAPIClient) MarkAllAlertsRead(ctx context.Context) error { return nil }

func (m *MockAPIClient) BaseURL() string { return "http://mock:8000" }

var errMockFailure = errors.New("mock failure")
