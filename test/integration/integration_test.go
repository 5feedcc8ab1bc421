package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
)

func TestGatewayEndToEnd(t *testing.T) {
	if os.Getenv("INTEGRATION_TEST") == "" {
		t.Skip("Skipping integration tests. Set INTEGRATION_TEST=1 to run.")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tc, err := NewTestContext(ctx)
	if err != nil {
		t.Fatalf("Failed to create test context: %v", err)
	}
	defer tc.Close(ctx)

	if _, err := tc.SeedUser("aiot-admin", "SecretAdmin1", "admin"); err != nil {
		t.Fatalf("Failed to seed admin user: %v", err)
	}

	var adminToken string

	t.Run("login through gateway", func(t *testing.T) {
		var resp struct {
			Token  string `json:"token"`
			UserID uint   `json:"user_id"`
		}
		code := tc.doJSON(t, "POST", "/api/auth/login", "",
			map[string]string{"username": "aiot-admin", "password": "SecretAdmin1"}, &resp)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if resp.Token == "" {
			t.Fatal("Expected a token in the login response")
		}
		adminToken = resp.Token
	})

	t.Run("rejects bad credentials", func(t *testing.T) {
		code := tc.doJSON(t, "POST", "/api/auth/login", "",
			map[string]string{"username": "aiot-admin", "password": "wrong"}, nil)
		if code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", code)
		}
	})

	t.Run("rejects requests without a token", func(t *testing.T) {
		code := tc.doJSON(t, "GET", "/api/drones", "", nil, nil)
		if code != http.StatusUnauthorized {
			t.Errorf("Expected 401, got %d", code)
		}
	})

	var droneID uint

	t.Run("drone lifecycle", func(t *testing.T) {
		var drone model.Drone
		code := tc.doJSON(t, "POST", "/api/drones", adminToken,
			map[string]string{"serial": "AIOT-IT-001", "name": "survey-1", "model": "M350"}, &drone)
		if code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", code)
		}
		if drone.ID == 0 {
			t.Fatal("Expected a drone id")
		}
		droneID = drone.ID

		var fetched model.Drone
		code = tc.doJSON(t, "GET", fmt.Sprintf("/api/drones/%d", droneID), adminToken, nil, &fetched)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if fetched.Serial != "AIOT-IT-001" {
			t.Errorf("Expected serial AIOT-IT-001, got %q", fetched.Serial)
		}

		code = tc.doJSON(t, "POST", "/api/drones", adminToken,
			map[string]string{"serial": "AIOT-IT-001"}, nil)
		if code != http.StatusConflict {
			t.Errorf("Expected 409 for duplicate serial, got %d", code)
		}
	})

	t.Run("telemetry round trip", func(t *testing.T) {
		base := fmt.Sprintf("/api/drones/%d", droneID)

		code := tc.doJSON(t, "POST", base+"/statuses", adminToken,
			map[string]any{"state": "flying", "battery_percent": 87.5, "firmware": "1.4.2"}, nil)
		if code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", code)
		}

		code = tc.doJSON(t, "POST", base+"/positions", adminToken,
			map[string]any{
				"latitude": 24.7866, "longitude": 120.9966,
				"altitude_m": 52.3, "fix_type": "rtk_fixed", "satellites": 17,
			}, nil)
		if code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", code)
		}

		var latest model.DronePosition
		code = tc.doJSON(t, "GET", base+"/positions/latest", adminToken, nil, &latest)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if latest.FixType != model.FixRTKFixed {
			t.Errorf("Expected fix_type rtk_fixed, got %q", latest.FixType)
		}
		if latest.DroneID != droneID {
			t.Errorf("Expected drone_id %d, got %d", droneID, latest.DroneID)
		}
	})

	t.Run("command dispatch and acknowledgement", func(t *testing.T) {
		base := fmt.Sprintf("/api/drones/%d/commands", droneID)

		var cmd model.DroneCommand
		code := tc.doJSON(t, "POST", base, adminToken,
			map[string]string{"command_type": "takeoff"}, &cmd)
		if code != http.StatusCreated {
			t.Fatalf("Expected 201, got %d", code)
		}
		if cmd.Status != model.StatusPending {
			t.Errorf("Expected pending without a broker, got %v", cmd.Status)
		}

		code = tc.doJSON(t, "POST", base+"/"+cmd.ID+"/ack", adminToken,
			map[string]any{"success": true}, &cmd)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if cmd.Status != model.StatusCompleted {
			t.Errorf("Expected completed after ack, got %v", cmd.Status)
		}
		if cmd.CompletedAt == nil {
			t.Error("Expected completed_at to be set")
		}
	})

	t.Run("preferences", func(t *testing.T) {
		var pref model.UserPreference
		code := tc.doJSON(t, "PUT", "/api/preferences/theme", adminToken,
			map[string]string{"value": "dark"}, &pref)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if pref.PrefValue != "dark" {
			t.Errorf("Expected value dark, got %q", pref.PrefValue)
		}

		// Upsert on the same key must replace, not duplicate
		code = tc.doJSON(t, "PUT", "/api/preferences/theme", adminToken,
			map[string]string{"value": "light"}, &pref)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}

		var list struct {
			Count int64                  `json:"count"`
			Items []model.UserPreference `json:"items"`
		}
		code = tc.doJSON(t, "GET", "/api/preferences", adminToken, nil, &list)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}
		if list.Count != 1 || len(list.Items) != 1 || list.Items[0].PrefValue != "light" {
			t.Errorf("Expected one preference with value light, got %+v", list)
		}

		code = tc.doJSON(t, "DELETE", "/api/preferences/theme", adminToken, nil, nil)
		if code != http.StatusNoContent {
			t.Errorf("Expected 204, got %d", code)
		}
	})

	t.Run("permission denied without role", func(t *testing.T) {
		if _, err := tc.SeedUser("aiot-norole", "SecretView1"); err != nil {
			t.Fatalf("Failed to seed user: %v", err)
		}

		var resp struct {
			Token string `json:"token"`
		}
		code := tc.doJSON(t, "POST", "/api/auth/login", "",
			map[string]string{"username": "aiot-norole", "password": "SecretView1"}, &resp)
		if code != http.StatusOK {
			t.Fatalf("Expected 200, got %d", code)
		}

		code = tc.doJSON(t, "GET", "/api/drones", resp.Token, nil, nil)
		if code != http.StatusForbidden {
			t.Errorf("Expected 403 for a user without drone:read, got %d", code)
		}
	})

	t.Run("gateway health", func(t *testing.T) {
		resp, err := tc.HTTPClient.Get(tc.GatewayURL + "/health")
		if err != nil {
			t.Fatalf("Failed to reach gateway health: %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("Expected 200, got %d", resp.StatusCode)
		}
	})
}

// doJSON sends a request through the gateway and decodes the JSON response
// into out when out is non-nil. Returns the response status code.
func (tc *TestContext) doJSON(t *testing.T, method, path, token string, body, out any) int {
	t.Helper()

	var reqBody *bytes.Buffer = bytes.NewBuffer(nil)
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to encode request body: %v", err)
		}
		reqBody = bytes.NewBuffer(encoded)
	}

	req, err := http.NewRequest(method, tc.GatewayURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Request %s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response for %s %s: %v", method, path, err)
		}
	}

	return resp.StatusCode
}
