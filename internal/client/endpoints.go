package client

import (
	"context"
	"fmt"
	"strconv"
)

const (
	endpointAuth        = "/api/auth/"
	endpointLogin       = "/api/auth/login/"
	endpointLogout      = "/api/auth/logout/"
	endpointProfile     = "/api/profile/"
	endpointSoldiers    = "/api/soldiers/"
	endpointPrioritized = "/api/soldiers/prioritized/"
	endpointNearby      = "/api/soldiers/nearby/"
	endpointCritical    = "/api/soldiers/critical_vitals/"
	endpointAlerts      = "/api/alerts/"
)

// Login authenticates with username/password and establishes the session
// cookie. The CSRF middleware skips this endpoint.
func (c *RestClient) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	var result LoginResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"username": username, "password": password}).
		SetResult(&result).
		Post(endpointLogin)
	if err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("Login: %w", err)
	}
	if !result.Success {
		return nil, fmt.Errorf("Login: rejected for user %q", username)
	}
	return &result, nil
}

// Logout terminates the server-side session.
func (c *RestClient) Logout(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Post(endpointLogout)
	if err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("Logout: %w", err)
	}
	return nil
}

// GetProfile fetches the authenticated user's profile. Doubles as a session
// probe: ErrUnauthorized means the session is gone.
func (c *RestClient) GetProfile(ctx context.Context) (*Profile, error) {
	var result Profile
	resp, err := c.http.R().SetContext(ctx).SetResult(&result).Get(endpointProfile)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	return &result, nil
}

// GetPrioritizedSoldiers fetches the full soldier list sorted by triage
// priority (1=critical .. 5=no data). Evacuated soldiers are excluded by the
// backend.
func (c *RestClient) GetPrioritizedSoldiers(ctx context.Context) ([]Soldier, error) {
	var result []Soldier
	resp, err := c.http.R().SetContext(ctx).SetResult(&result).Get(endpointPrioritized)
	if err != nil {
		return nil, fmt.Errorf("GetPrioritizedSoldiers: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GetPrioritizedSoldiers: %w", err)
	}
	return result, nil
}

// GetSoldier fetches a single soldier by device identifier.
func (c *RestClient) GetSoldier(ctx context.Context, devEUI string) (*Soldier, error) {
	var result Soldier
	resp, err := c.http.R().SetContext(ctx).SetResult(&result).
		Get(endpointSoldiers + devEUI + "/")
	if err != nil {
		return nil, fmt.Errorf("GetSoldier: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GetSoldier: %w", err)
	}
	return &result, nil
}

// GetMedicalHistory fetches a soldier's reading history, newest first.
// days > 0 limits the window; days <= 0 returns everything.
func (c *RestClient) GetMedicalHistory(ctx context.Context, devEUI string, days int) (*MedicalHistory, error) {
	req := c.http.R().SetContext(ctx)
	if days > 0 {
		req.SetQueryParam("days", strconv.Itoa(days))
	}
	var result MedicalHistory
	resp, err := req.SetResult(&result).
		Get(endpointSoldiers + devEUI + "/medical_history/")
	if err != nil {
		return nil, fmt.Errorf("GetMedicalHistory: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GetMedicalHistory: %w", err)
	}
	return &result, nil
}

// GetNearbySoldiers fetches soldiers within radiusKm of the given point,
// sorted by distance ascending.
func (c *RestClient) GetNearbySoldiers(ctx context.Context, lat, lon, radiusKm float64) ([]NearbyResult, error) {
	var result []NearbyResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"lat":    strconv.FormatFloat(lat, 'f', -1, 64),
			"lon":    strconv.FormatFloat(lon, 'f', -1, 64),
			"radius": strconv.FormatFloat(radiusKm, 'f', -1, 64),
		}).
		SetResult(&result).
		Get(endpointNearby)
	if err != nil {
		return nil, fmt.Errorf("GetNearbySoldiers: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GetNearbySoldiers: %w", err)
	}
	return result, nil
}

// GetCriticalVitals fetches soldiers whose latest reading carries a vitals
// alarm, worst first.
func (c *RestClient) GetCriticalVitals(ctx context.Context) ([]NearbyResult, error) {
	var result []NearbyResult
	resp, err := c.http.R().SetContext(ctx).SetResult(&result).Get(endpointCritical)
	if err != nil {
		return nil, fmt.Errorf("GetCriticalVitals: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GetCriticalVitals: %w", err)
	}
	return result, nil
}

// StartEvacuation marks a soldier's evacuation as in progress.
func (c *RestClient) StartEvacuation(ctx context.Context, devEUI string) error {
	return c.postAction(ctx, "StartEvacuation", endpointSoldiers+devEUI+"/start_evacuation/")
}

// CompleteEvacuation marks a soldier as evacuated.
func (c *RestClient) CompleteEvacuation(ctx context.Context, devEUI string) error {
	return c.postAction(ctx, "CompleteEvacuation", endpointSoldiers+devEUI+"/complete_evacuation/")
}

// CancelEvacuation returns a soldier's evacuation to the needed state.
func (c *RestClient) CancelEvacuation(ctx context.Context, devEUI string) error {
	return c.postAction(ctx, "CancelEvacuation", endpointSoldiers+devEUI+"/cancel_evacuation/")
}

// GetUnreadAlerts fetches unread alerts, newest first.
func (c *RestClient) GetUnreadAlerts(ctx context.Context) ([]Alert, error) {
	var result []Alert
	resp, err := c.http.R().SetContext(ctx).SetResult(&result).
		Get(endpointAlerts + "unread/")
	if err != nil {
		return nil, fmt.Errorf("GetUnreadAlerts: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, fmt.Errorf("GetUnreadAlerts: %w", err)
	}
	return result, nil
}

// MarkAlertRead marks a single alert as read.
func (c *RestClient) MarkAlertRead(ctx context.Context, alertID int64) error {
	return c.postAction(ctx, "MarkAlertRead",
		fmt.Sprintf("%s%d/mark_as_read/", endpointAlerts, alertID))
}

// MarkAllAlertsRead marks every unread alert as read.
func (c *RestClient) MarkAllAlertsRead(ctx context.Context) error {
	return c.postAction(ctx, "MarkAllAlertsRead", endpointAlerts+"mark_all_as_read/")
}

// postAction issues an empty-body POST to an action endpoint.
func (c *RestClient) postAction(ctx context.Context, op, path string) error {
	resp, err := c.http.R().SetContext(ctx).Post(path)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := checkStatus(resp); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
