package controllers_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"cabgo/internal/config"
	"cabgo/internal/middleware"
	"cabgo/internal/models"
	"cabgo/internal/routes"
)

func setupTestApp(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.DriverProfile{}, &models.Vehicle{}, &models.Location{}, &models.Ride{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	config.DB = db
	return routes.SetupRouter()
}

func createUser(t *testing.T, email string, isAdmin bool) models.User {
	t.Helper()
	user := models.User{Email: email, PasswordHash: "x", FullName: "Test User", IsAdmin: isAdmin}
	if err := config.DB.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateToken(user.ID)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	return token
}

func doRequest(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createRide(t *testing.T, passengerID uint, driverID *uint, status models.RideStatus) models.Ride {
	t.Helper()
	pickup := models.Location{Latitude: 12.97, Longitude: 77.59}
	dropoff := models.Location{Latitude: 12.93, Longitude: 77.62}
	if err := config.DB.Create(&pickup).Error; err != nil {
		t.Fatalf("create pickup: %v", err)
	}
	if err := config.DB.Create(&dropoff).Error; err != nil {
		t.Fatalf("create dropoff: %v", err)
	}
	ride := models.Ride{
		PassengerID:       passengerID,
		DriverID:          driverID,
		PickupLocationID:  pickup.ID,
		DropoffLocationID: dropoff.ID,
		Status:            status,
		RequestedAt:       time.Now().UTC(),
		PaymentStatus:     models.PaymentPending,
	}
	if err := config.DB.Create(&ride).Error; err != nil {
		t.Fatalf("create ride: %v", err)
	}
	return ride
}

func TestBookRideEndpoint(t *testing.T) {
	r := setupTestApp(t)
	passenger := createUser(t, "p@example.com", false)
	token := tokenFor(t, passenger)

	body := `{
		"pickup_location": {"latitude": 12.9716, "longitude": 77.5946, "address_line1": "MG Road"},
		"dropoff_location": {"latitude": 12.9352, "longitude": 77.6245, "address_line1": "Koramangala"},
		"vehicle_type": "SUV",
		"notes_for_driver": "blue gate"
	}`
	w := doRequest(r, http.MethodPost, "/api/rides/book-ride", token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "REQUESTED") {
		t.Errorf("body missing REQUESTED status: %s", w.Body.String())
	}

	// Missing dropoff: 400 and nothing persisted beyond the first booking.
	w = doRequest(r, http.MethodPost, "/api/rides/book-ride", token,
		`{"pickup_location": {"latitude": 1, "longitude": 1}}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	var rideCount int64
	config.DB.Model(&models.Ride{}).Count(&rideCount)
	if rideCount != 1 {
		t.Errorf("ride count = %d, want 1", rideCount)
	}
}

func TestBookRideEndpoint_Unauthenticated(t *testing.T) {
	r := setupTestApp(t)
	w := doRequest(r, http.MethodPost, "/api/rides/book-ride", "", `{}`)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestDeleteUser_LastAdminProtected(t *testing.T) {
	r := setupTestApp(t)
	admin := createUser(t, "admin@example.com", true)
	token := tokenFor(t, admin)

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", admin.ID), token, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("deleting the only admin: expected 403, got %d: %s", w.Code, w.Body.String())
	}

	var count int64
	config.DB.Model(&models.User{}).Where("is_admin = ?", true).Count(&count)
	if count != 1 {
		t.Errorf("admin count = %d, want 1", count)
	}
}

func TestUpdateUser_DemoteLastAdminProtected(t *testing.T) {
	r := setupTestApp(t)
	admin := createUser(t, "admin@example.com", true)
	token := tokenFor(t, admin)

	w := doRequest(r, http.MethodPatch, fmt.Sprintf("/api/admin/users/%d", admin.ID), token, `{"is_admin": false}`)
	if w.Code != http.StatusForbidden {
		t.Errorf("demoting the only admin: expected 403, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteUser_PassengerHistoryBlocks(t *testing.T) {
	r := setupTestApp(t)
	admin := createUser(t, "admin@example.com", true)
	passenger := createUser(t, "p@example.com", false)
	createRide(t, passenger.ID, nil, models.RideCompleted)

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", passenger.ID), tokenFor(t, admin), "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDeleteUser_DriverCascade(t *testing.T) {
	r := setupTestApp(t)
	admin := createUser(t, "admin@example.com", true)
	passenger := createUser(t, "p@example.com", false)

	driver := createUser(t, "d@example.com", false)
	driver.IsDriver = true
	if err := config.DB.Save(&driver).Error; err != nil {
		t.Fatalf("save driver: %v", err)
	}
	profile := models.DriverProfile{UserID: driver.ID, LicenseNumber: "DL-42", IsVerified: true, AvailabilityStatus: models.DriverOffline}
	if err := config.DB.Create(&profile).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	vehicle := models.Vehicle{DriverID: driver.ID, Make: "Toyota", VehicleModel: "Etios", LicensePlate: "KA-01-1234", VehicleType: models.VehicleSedan, IsActive: true}
	if err := config.DB.Create(&vehicle).Error; err != nil {
		t.Fatalf("create vehicle: %v", err)
	}
	ride := createRide(t, passenger.ID, &driver.ID, models.RideCompleted)

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", driver.ID), tokenFor(t, admin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var gone models.DriverProfile
	if err := config.DB.Where("user_id = ?", driver.ID).First(&gone).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("driver profile still present (err=%v)", err)
	}
	var goneVehicle models.Vehicle
	if err := config.DB.Where("driver_id = ?", driver.ID).First(&goneVehicle).Error; !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("vehicle still present (err=%v)", err)
	}
	var reloaded models.Ride
	if err := config.DB.First(&reloaded, ride.ID).Error; err != nil {
		t.Fatalf("reload ride: %v", err)
	}
	if reloaded.DriverID != nil {
		t.Errorf("ride driver_id = %v, want nil after driver deletion", *reloaded.DriverID)
	}
}

func TestCancelRideByAdminEndpoint(t *testing.T) {
	r := setupTestApp(t)
	admin := createUser(t, "admin@example.com", true)
	passenger := createUser(t, "p@example.com", false)
	token := tokenFor(t, admin)

	active := createRide(t, passenger.ID, nil, models.RideRequested)
	w := doRequest(r, http.MethodPatch, fmt.Sprintf("/api/admin/rides/%d/cancel-by-admin", active.ID), token, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "CANCELLED_ADMIN") {
		t.Errorf("body missing CANCELLED_ADMIN: %s", w.Body.String())
	}

	done := createRide(t, passenger.ID, nil, models.RideCompleted)
	w = doRequest(r, http.MethodPatch, fmt.Sprintf("/api/admin/rides/%d/cancel-by-admin", done.ID), token, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "COMPLETED") {
		t.Errorf("error does not name the current status: %s", w.Body.String())
	}
}

func TestDeleteUser_RideLookupFailure(t *testing.T) {
	r := setupTestApp(t)
	admin := createUser(t, "admin@example.com", true)
	target := createUser(t, "target@example.com", false)
	token := tokenFor(t, admin)

	// With the rides table gone the passenger history check cannot run.
	// The delete must fail loudly instead of treating the count as zero.
	if err := config.DB.Exec("DROP TABLE rides").Error; err != nil {
		t.Fatalf("drop rides: %v", err)
	}

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", target.ID), token, "")
	if w.Code != http.StatusInternalServerError {
		t.Errorf("expected 500 when ride lookup fails, got %d: %s", w.Code, w.Body.String())
	}
	var still models.User
	if err := config.DB.First(&still, target.ID).Error; err != nil {
		t.Fatalf("user deleted despite the failed history check: %v", err)
	}
}

func TestAdminRoutes_RequireAdmin(t *testing.T) {
	r := setupTestApp(t)
	rider := createUser(t, "rider@example.com", false)
	token := tokenFor(t, rider)

	w := doRequest(r, http.MethodGet, "/api/admin/users", token, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin, got %d", w.Code)
	}

	// The rejection must land before the handler runs, not after. A non-admin
	// hitting the delete endpoint must leave the target row untouched.
	victim := createUser(t, "victim@example.com", false)
	w = doRequest(r, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d", victim.ID), token, "")
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for non-admin delete, got %d", w.Code)
	}
	var survivor models.User
	if err := config.DB.First(&survivor, victim.ID).Error; err != nil {
		t.Fatalf("user was deleted despite the 403: %v", err)
	}
}
