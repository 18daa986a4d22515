package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

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

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	authGroup := r.Group("/api/auth")
	handler.RegisterRoutes(authGroup)

	return r
}

func registerUser(t *testing.T, router *gin.Engine, email, username, password string) AuthResponse {
	body, _ := json.Marshal(RegisterRequest{Email: email, Username: username, Password: password})
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var auth AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &auth)
	return auth
}

func TestRegister(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	auth := registerUser(t, router, "test@example.com", "test", "password123")

	if auth.Token == "" {
		t.Error("Expected a token in the response")
	}
	if auth.User.Email != "test@example.com" || auth.User.Username != "test" {
		t.Errorf("Unexpected user in response: %+v", auth.User)
	}

	// Password is stored hashed
	var user models.User
	db.First(&user, auth.User.ID)
	if user.PasswordHash == "" || user.PasswordHash == "password123" {
		t.Error("Expected password to be stored hashed")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	registerUser(t, router, "test@example.com", "test", "password123")

	body, _ := json.Marshal(RegisterRequest{Email: "test@example.com", Username: "other", Password: "password123"})
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	registerUser(t, router, "test@example.com", "test", "password123")

	body, _ := json.Marshal(RegisterRequest{Email: "other@example.com", Username: "test", Password: "password123"})
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusConflict {
		t.Errorf("Expected status 409, got %d", resp.Code)
	}
}

func TestRegisterShortPassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	body, _ := json.Marshal(RegisterRequest{Email: "test@example.com", Username: "test", Password: "short"})
	req, _ := http.NewRequest("POST", "/api/auth/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", resp.Code)
	}
}

func TestLogin(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	registerUser(t, router, "test@example.com", "test", "password123")

	body, _ := json.Marshal(LoginRequest{Email: "test@example.com", Password: "password123"})
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var auth AuthResponse
	json.Unmarshal(resp.Body.Bytes(), &auth)
	if auth.Token == "" {
		t.Error("Expected a token in the response")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	registerUser(t, router, "test@example.com", "test", "password123")

	body, _ := json.Marshal(LoginRequest{Email: "test@example.com", Password: "wrongpassword"})
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestLoginOAuthOnlyUser(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	// Provisioned through an identity provider; no local password
	user := models.User{Email: "sso@example.com", Username: "sso", Active: true}
	db.Create(&user)

	body, _ := json.Marshal(LoginRequest{Email: "sso@example.com", Password: "anything1"})
	req, _ := http.NewRequest("POST", "/api/auth/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for OAuth-only user, got %d", resp.Code)
	}
}

func TestMe(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	auth := registerUser(t, router, "test@example.com", "test", "password123")

	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+auth.Token)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var user UserResponse
	json.Unmarshal(resp.Body.Bytes(), &user)
	if user.Email != "test@example.com" {
		t.Errorf("Expected current user, got %+v", user)
	}
}

func TestMeWithoutToken(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestMeWithInvalidToken(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)

	req, _ := http.NewRequest("GET", "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp := httptest.NewRecorder()

	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", resp.Code)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "password123" {
		t.Error("Hash must differ from the plaintext")
	}
	if !CheckPassword("password123", hash) {
		t.Error("Expected the right password to verify")
	}
	if CheckPassword("wrongpassword", hash) {
		t.Error("Expected the wrong password to fail")
	}
}

func TestGenerateAndValidateToken(t *testing.T) {
	token, err := GenerateToken(42, "test@example.com", "test")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	claims, err := ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "test@example.com" {
		t.Errorf("Unexpected claims: %+v", claims)
	}

	if _, err := ValidateToken(token + "x"); err == nil {
		t.Error("Expected a tampered token to be rejected")
	}
}
