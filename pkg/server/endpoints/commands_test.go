package endpoints

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/wenhsiu/aiot-in-go/pkg/model"
	"github.com/wenhsiu/aiot-in-go/pkg/server/store"
)

func TestDispatchCommand(t *testing.T) {
	rig := newTestRig(t)
	RegisterDroneEndpoints(rig.server)

	rig.authz.On("PermissionsForUser", uint(1)).Return([]string{"drone:read", "drone:control"}, nil)
	pilot := bearerFor(t, 1, "pilot")

	drone := &model.Drone{ID: 3, Serial: "DJI-0003"}
	rig.drones.On("FetchDrone", uint(3)).Return(drone, nil)

	t.Run("stays pending without a broker", func(t *testing.T) {
		rig.commands.On("CreateCommand", mock.AnythingOfType("*model.DroneCommand")).Return(nil).Once()

		rr := rig.do("POST", "/api/drones/3/commands", `{"command_type":"takeoff","parameters":"{\"altitude_m\":30}"}`, pilot)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}

		var resp model.DroneCommand
		if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.Status != model.StatusPending {
			t.Errorf("status = %v, want pending", resp.Status)
		}
		if resp.IssuedBy != 1 {
			t.Errorf("issued_by = %d, want 1", resp.IssuedBy)
		}
		if _, err := uuid.Parse(resp.ID); err != nil {
			t.Errorf("command id %q is not a uuid", resp.ID)
		}
	})

	t.Run("unknown command type", func(t *testing.T) {
		rr := rig.do("POST", "/api/drones/3/commands", `{"command_type":"self_destruct"}`, pilot)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("missing command type", func(t *testing.T) {
		rr := rig.do("POST", "/api/drones/3/commands", `{}`, pilot)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("unknown drone", func(t *testing.T) {
		rig.drones.On("FetchDrone", uint(44)).Return(nil, store.ErrNotFound).Once()

		rr := rig.do("POST", "/api/drones/44/commands", `{"command_type":"land"}`, pilot)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})
}

func TestCommandStatusUpdate(t *testing.T) {
	rig := newTestRig(t)
	RegisterDroneEndpoints(rig.server)

	rig.authz.On("PermissionsForUser", uint(1)).Return([]string{"drone:read", "drone:control"}, nil)
	pilot := bearerFor(t, 1, "pilot")

	commandID := uuid.NewString()

	t.Run("mark completed", func(t *testing.T) {
		rig.commands.On("UpdateCommandStatus", commandID, model.StatusCompleted, mock.AnythingOfType("*time.Time")).Return(nil).Once()
		rig.commands.On("FetchCommand", commandID).Return(&model.DroneCommand{
			ID: commandID, DroneID: 3, Status: model.StatusCompleted,
		}, nil).Once()

		rr := rig.do("PATCH", "/api/drones/3/commands/"+commandID, `{"status":"completed"}`, pilot)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		rr := rig.do("PATCH", "/api/drones/3/commands/"+commandID, `{"status":"vanished"}`, pilot)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("malformed command id", func(t *testing.T) {
		rr := rig.do("GET", "/api/drones/3/commands/not-a-uuid", "", pilot)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("unknown command", func(t *testing.T) {
		missing := uuid.NewString()
		rig.commands.On("FetchCommand", missing).Return(nil, store.ErrNotFound).Once()

		rr := rig.do("GET", "/api/drones/3/commands/"+missing, "", pilot)

		if rr.Code != http.StatusNotFound {
			t.Errorf("expected 404, got %d", rr.Code)
		}
	})
}
