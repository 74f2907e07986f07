package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"traveldesk/internal/cache"
	"traveldesk/internal/handlers"
	"traveldesk/internal/logger"
	"traveldesk/internal/middleware"
	"traveldesk/internal/models"
	"traveldesk/internal/services"
	"traveldesk/internal/validator"
)

// testApp holds the full application stack for integration tests.
type testApp struct {
	DB     *gorm.DB
	Router *gin.Engine
}

// dbCounter ensures each test gets a unique in-memory database.
var dbCounter atomic.Int64

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
}

// setupIsolatedDB creates an isolated in-memory SQLite database for a single test.
func setupIsolatedDB(t *testing.T) *gorm.DB {
	t.Helper()

	n := dbCounter.Add(1)
	dsn := fmt.Sprintf("file:integrationdb%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	allModels := []interface{}{
		&models.User{},
		&models.TravelRequest{},
		&models.ActivityLog{},
		&models.PasswordReset{},
	}
	if err := db.AutoMigrate(allModels...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// setupApp creates a full application stack backed by an isolated in-memory SQLite.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	db := setupIsolatedDB(t)

	// Services
	activityService := services.NewActivityService(db)
	notifier := services.NewNoopNotifier()
	userService := services.NewUserService(db, activityService)
	travelRequestService := services.NewTravelRequestService(db, activityService, notifier)
	locationService := services.NewLocationService(db, nil, cache.NewMemoryCache(), false)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService, notifier)
	userHandler := handlers.NewUserHandler(userService)
	travelRequestHandler := handlers.NewTravelRequestHandler(travelRequestService)
	activityLogHandler := handlers.NewActivityLogHandler(activityService)
	locationHandler := handlers.NewLocationHandler(locationService)

	// Router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())

	v1 := router.Group("/api/v1")

	v1.POST("/register", authHandler.Register)
	v1.POST("/login", authHandler.Login)
	v1.POST("/refresh", authHandler.Refresh)
	v1.POST("/forgot-password", authHandler.ForgotPassword)
	v1.POST("/reset-password", authHandler.ResetPassword)
	v1.GET("/locations/destinations", locationHandler.GetDestinations)

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(userService))

	protected.GET("/me", authHandler.Me)
	protected.POST("/logout", authHandler.Logout)

	travelRequests := protected.Group("/travel-requests")
	travelRequests.GET("", travelRequestHandler.List)
	travelRequests.POST("", travelRequestHandler.Create)
	travelRequests.GET("/:id", travelRequestHandler.Get)
	travelRequests.PUT("/:id", travelRequestHandler.Update)
	travelRequests.DELETE("/:id", travelRequestHandler.Delete)
	travelRequests.PATCH("/:id/status", travelRequestHandler.UpdateStatus)
	travelRequests.PATCH("/:id/cancel", travelRequestHandler.Cancel)

	protected.GET("/users/:id", userHandler.GetUser)

	admin := v1.Group("/")
	admin.Use(middleware.AuthMiddleware(userService), middleware.AdminOnly())
	admin.GET("/users", userHandler.ListUsers)
	admin.PUT("/users/:id", userHandler.UpdateUser)
	admin.DELETE("/users/:id", userHandler.DeleteUser)
	admin.GET("/activity-logs", activityLogHandler.List)

	return &testApp{DB: db, Router: router}
}

// request makes an HTTP request to the test router and returns the recorder.
func (app *testApp) request(method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

// parseJSON parses the response body into a map.
func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

// registerUser registers a new user and returns the access token and user ID.
func (app *testApp) registerUser(t *testing.T, email, password string) (accessToken string, userID float64) {
	t.Helper()
	body := fmt.Sprintf(`{"name":"Test User","email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/register", body, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", rec.Code, rec.Body.String())
	}
	data := parseJSON(t, rec)["data"].(map[string]interface{})
	user := data["user"].(map[string]interface{})
	return data["token"].(string), user["id"].(float64)
}

// promoteToAdmin flips the is_admin flag directly in the database.
func (app *testApp) promoteToAdmin(t *testing.T, userID float64) {
	t.Helper()
	if err := app.DB.Model(&models.User{}).Where("id = ?", uint(userID)).Update("is_admin", true).Error; err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}
}

// loginUser logs in and returns the access and refresh tokens.
func (app *testApp) loginUser(t *testing.T, email, password string) (accessToken, refreshToken string) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, email, password)
	rec := app.request("POST", "/api/v1/login", body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", rec.Code, rec.Body.String())
	}
	data := parseJSON(t, rec)["data"].(map[string]interface{})
	return data["token"].(string), data["refresh_token"].(string)
}

// createTravelRequest creates a travel request and returns its ID.
func (app *testApp) createTravelRequest(t *testing.T, token, destination string) int {
	t.Helper()
	body := fmt.Sprintf(`{"requester_name":"Test Requester","destination":%q,"departure_date":"2030-06-01","return_date":"2030-06-10"}`, destination)
	rec := app.request("POST", "/api/v1/travel-requests", body, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create travel request failed: %d %s", rec.Code, rec.Body.String())
	}
	data := parseJSON(t, rec)["data"].(map[string]interface{})
	return int(data["id"].(float64))
}
