package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/calendar"
	"github.com/daybox-app/daybox/pkg/daybox/folders"
	"github.com/daybox-app/daybox/pkg/daybox/ideas"
	"github.com/daybox-app/daybox/pkg/daybox/importexport"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/daybox-app/daybox/pkg/daybox/tags"
	"github.com/daybox-app/daybox/pkg/daybox/tasks"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return db
}

// setupFullServer creates a Gin engine with all routes registered.
// This mirrors the setup in cmd/daybox-server/main.go, minus the OAuth
// handler (OIDC discovery needs a live issuer) and the preview workers.
func setupFullServer(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"service": "daybox",
			})
		})

		authHandler := auth.NewHandler(db)
		authHandler.RegisterRoutes(api.Group("/auth"))

		protected := api.Group("", auth.AuthMiddleware())

		folders.NewHandler(db).RegisterRoutes(protected)
		tags.NewHandler(db).RegisterRoutes(protected)
		ideas.NewHandler(db, nil).RegisterRoutes(protected)
		tasks.NewHandler(db).RegisterRoutes(protected)
		calendar.NewHandler(db).RegisterRoutes(protected)
		importexport.NewHandler(db).RegisterRoutes(protected)
	}

	return r
}

// TestServerStartup verifies that all routes can be registered without conflicts
func TestServerStartup(t *testing.T) {
	db := setupTestDB(t)

	// This will panic if there are route conflicts
	router := setupFullServer(db)

	if router == nil {
		t.Fatal("Expected router to be created")
	}
}

// TestHealthEndpoint verifies the health endpoint responds correctly
func TestHealthEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	req, _ := http.NewRequest("GET", "/health", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
}

// TestAPIHealthEndpoint verifies the API health endpoint responds correctly
func TestAPIHealthEndpoint(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	req, _ := http.NewRequest("GET", "/api/health", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.Code)
	}
}

// TestProtectedEndpointsRequireAuth verifies that protected endpoints return 401 without auth
func TestProtectedEndpointsRequireAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	protectedEndpoints := []struct {
		method string
		path   string
	}{
		{"GET", "/api/folders"},
		{"POST", "/api/folders"},
		{"GET", "/api/ideas"},
		{"GET", "/api/tags"},
		{"GET", "/api/tasks"},
		{"GET", "/api/calendar"},
	}

	for _, endpoint := range protectedEndpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			req, _ := http.NewRequest(endpoint.method, endpoint.path, nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			if resp.Code != http.StatusUnauthorized {
				t.Errorf("Expected status 401 for %s %s, got %d", endpoint.method, endpoint.path, resp.Code)
			}
		})
	}
}

// TestPublicEndpointsNoAuth verifies that public endpoints don't require auth
func TestPublicEndpointsNoAuth(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	publicEndpoints := []struct {
		method       string
		path         string
		expectedCode int
	}{
		{"GET", "/health", http.StatusOK},
		{"GET", "/api/health", http.StatusOK},
		{"POST", "/api/auth/register", http.StatusBadRequest}, // Bad request (no body), but not 401
		{"POST", "/api/auth/login", http.StatusBadRequest},    // Bad request (no body), but not 401
	}

	for _, endpoint := range publicEndpoints {
		t.Run(endpoint.method+" "+endpoint.path, func(t *testing.T) {
			req, _ := http.NewRequest(endpoint.method, endpoint.path, nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			if resp.Code != endpoint.expectedCode {
				t.Errorf("Expected status %d for %s %s, got %d", endpoint.expectedCode, endpoint.method, endpoint.path, resp.Code)
			}
		})
	}
}

// TestIdeaLifecycle walks the main user journey end to end: register, create
// a folder, capture tagged ideas, filter by tag, promote one to a task, and
// finally delete the folder and everything in it.
func TestIdeaLifecycle(t *testing.T) {
	db := setupTestDB(t)
	router := setupFullServer(db)

	do := func(method, path, token string, payload interface{}) *httptest.ResponseRecorder {
		var body *bytes.Buffer
		if payload != nil {
			raw, _ := json.Marshal(payload)
			body = bytes.NewBuffer(raw)
		} else {
			body = bytes.NewBuffer(nil)
		}
		req, _ := http.NewRequest(method, path, body)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		req.Header.Set("Content-Type", "application/json")
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		return resp
	}

	// Register
	resp := do("POST", "/api/auth/register", "", auth.RegisterRequest{
		Email:    "test@example.com",
		Username: "test",
		Password: "password123",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var session auth.AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &session)
	token := session.Token

	// Create a folder
	resp = do("POST", "/api/folders", token, folders.CreateFolderRequest{Name: "Inbox"})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create folder: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var folder folders.FolderResponse
	json.Unmarshal(resp.Body.Bytes(), &folder)
	folderPath := strconv.FormatUint(uint64(folder.ID), 10)

	// Capture two ideas, one tagged urgent
	resp = do("POST", "/api/ideas", token, ideas.CreateIdeaRequest{
		FolderID: folder.ID,
		Title:    "Fix the leaky faucet",
		Content:  "kitchen sink, left handle",
		Tags:     []string{"home", "urgent"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create idea: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}
	var urgent ideas.IdeaResponse
	json.Unmarshal(resp.Body.Bytes(), &urgent)

	resp = do("POST", "/api/ideas", token, ideas.CreateIdeaRequest{
		FolderID: folder.ID,
		Title:    "Read that novel",
		Tags:     []string{"home"},
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create idea: expected 201, got %d", resp.Code)
	}

	// Tag filter returns only the urgent idea
	resp = do("GET", "/api/ideas?tags=urgent", token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("list ideas: expected 200, got %d", resp.Code)
	}
	var filtered []ideas.IdeaResponse
	json.Unmarshal(resp.Body.Bytes(), &filtered)
	if len(filtered) != 1 || filtered[0].ID != urgent.ID {
		t.Fatalf("Expected only the urgent idea, got %v", filtered)
	}

	// Promote it to a task
	urgentPath := strconv.FormatUint(uint64(urgent.ID), 10)
	resp = do("POST", "/api/ideas/"+urgentPath+"/promote-to-task", token, ideas.PromoteRequest{
		TaskTitle: "Fix the faucet",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("promote: expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	// The task shows up in the task list
	resp = do("GET", "/api/tasks", token, nil)
	var taskList []tasks.TaskResponse
	json.Unmarshal(resp.Body.Bytes(), &taskList)
	if len(taskList) != 1 || taskList[0].Title != "Fix the faucet" {
		t.Fatalf("Expected the promoted task, got %v", taskList)
	}

	// Delete the folder; its ideas go with it, the task stays
	resp = do("DELETE", "/api/folders/"+folderPath, token, nil)
	if resp.Code != http.StatusOK {
		t.Fatalf("delete folder: expected 200, got %d", resp.Code)
	}

	resp = do("GET", "/api/ideas", token, nil)
	var remaining []ideas.IdeaResponse
	json.Unmarshal(resp.Body.Bytes(), &remaining)
	if len(remaining) != 0 {
		t.Errorf("Expected no ideas after folder deletion, got %d", len(remaining))
	}

	resp = do("GET", "/api/tasks", token, nil)
	json.Unmarshal(resp.Body.Bytes(), &taskList)
	if len(taskList) != 1 {
		t.Errorf("Expected the task to survive folder deletion, got %d", len(taskList))
	}
}
