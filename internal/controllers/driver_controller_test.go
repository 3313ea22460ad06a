package controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"cabgo/internal/config"
	"cabgo/internal/models"
)

// Covers the full driver onboarding path: self-registration, the verification
// gate on vehicles, admin verification, vehicle creation and availability.
func TestDriverOnboardingFlow(t *testing.T) {
	r := setupTestApp(t)
	admin := createUser(t, "admin@example.com", true)
	user := createUser(t, "driver@example.com", false)
	token := tokenFor(t, user)

	// Register as driver.
	w := doRequest(r, http.MethodPost, "/api/drivers/register", token, `{"license_number": "DL-2024-001"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("register driver: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Second registration conflicts.
	w = doRequest(r, http.MethodPost, "/api/drivers/register", token, `{"license_number": "DL-2024-002"}`)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate registration: expected 409, got %d", w.Code)
	}

	// Adding a vehicle before verification is forbidden.
	vehicleBody := `{"make": "Toyota", "model": "Etios", "license_plate": "KA-01-9999", "vehicle_type": "SEDAN"}`
	w = doRequest(r, http.MethodPost, "/api/vehicles/add", token, vehicleBody)
	if w.Code != http.StatusForbidden {
		t.Errorf("unverified vehicle add: expected 403, got %d: %s", w.Code, w.Body.String())
	}

	// Admin verifies the profile.
	var profile models.DriverProfile
	if err := config.DB.Where("user_id = ?", user.ID).First(&profile).Error; err != nil {
		t.Fatalf("load profile: %v", err)
	}
	w = doRequest(r, http.MethodPatch, fmt.Sprintf("/api/admin/drivers/%d/verify", profile.ID),
		tokenFor(t, admin), `{"is_verified": true, "verification_notes": "documents checked"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("verify: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Vehicle add now succeeds.
	w = doRequest(r, http.MethodPost, "/api/vehicles/add", token, vehicleBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("vehicle add: expected 201, got %d: %s", w.Code, w.Body.String())
	}

	// Duplicate plate conflicts.
	w = doRequest(r, http.MethodPost, "/api/vehicles/add", token, vehicleBody)
	if w.Code != http.StatusConflict {
		t.Errorf("duplicate plate: expected 409, got %d: %s", w.Code, w.Body.String())
	}

	// Unknown vehicle type is rejected.
	w = doRequest(r, http.MethodPost, "/api/vehicles/add", token,
		`{"make": "X", "model": "Y", "license_plate": "KA-01-0001", "vehicle_type": "ROCKET"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad vehicle type: expected 400, got %d", w.Code)
	}
}

func TestUpdateDriverAvailability(t *testing.T) {
	r := setupTestApp(t)
	user := createUser(t, "driver@example.com", false)
	user.IsDriver = true
	if err := config.DB.Save(&user).Error; err != nil {
		t.Fatalf("save: %v", err)
	}
	profile := models.DriverProfile{UserID: user.ID, LicenseNumber: "DL-7", IsVerified: true, AvailabilityStatus: models.DriverOffline}
	if err := config.DB.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	token := tokenFor(t, user)

	w := doRequest(r, http.MethodPatch, "/api/drivers/availability", token,
		`{"availability_status": "AVAILABLE", "latitude": 12.97, "longitude": 77.59}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var reloaded models.DriverProfile
	if err := config.DB.First(&reloaded, profile.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.AvailabilityStatus != models.DriverAvailable {
		t.Errorf("status = %s, want AVAILABLE", reloaded.AvailabilityStatus)
	}
	if reloaded.CurrentLatitude == nil || reloaded.LastLocationUpdate == nil {
		t.Error("location and last_location_update not recorded")
	}

	// Unrecognized status is rejected.
	w = doRequest(r, http.MethodPatch, "/api/drivers/availability", token, `{"availability_status": "NAPPING"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}

	// Verified + AVAILABLE drivers show up in the public listing.
	w = doRequest(r, http.MethodGet, "/api/drivers/available", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("available list: expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), fmt.Sprintf(`"driver_id":%d`, user.ID)) {
		t.Errorf("available list missing driver: %s", w.Body.String())
	}
}

func TestUpdateDriverAvailability_NoProfile(t *testing.T) {
	r := setupTestApp(t)
	user := createUser(t, "rider@example.com", false)
	w := doRequest(r, http.MethodPatch, "/api/drivers/availability", tokenFor(t, user),
		`{"availability_status": "AVAILABLE"}`)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
