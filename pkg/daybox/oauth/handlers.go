// Package oauth implements external login via OpenID Connect providers.
//
// Providers are registered once at startup from the application config map;
// there is no runtime or database-backed provider registry.
package oauth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/daybox-app/daybox/pkg/daybox/auth"
	"github.com/daybox-app/daybox/pkg/daybox/config"
	"github.com/daybox-app/daybox/pkg/daybox/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

// Handler handles OAuth login requests
type Handler struct {
	db        *gorm.DB
	log       *zap.Logger
	baseURL   string
	providers map[string]*providerConfig
}

type providerConfig struct {
	provider *oidc.Provider
	config   oauth2.Config
	verifier *oidc.IDTokenVerifier
}

// StateData stores OAuth state for callback validation
type StateData struct {
	Provider  string `json:"provider"`
	ReturnURL string `json:"return_url"`
	Nonce     string `json:"nonce"`
}

// NewHandler creates an OAuth handler and runs OIDC discovery for every
// configured provider. Providers that fail discovery are skipped with a log
// line so one bad issuer cannot take the whole service down.
func NewHandler(db *gorm.DB, log *zap.Logger, baseURL string, providers map[string]config.OAuthProviderConfig) *Handler {
	h := &Handler{
		db:        db,
		log:       log,
		baseURL:   baseURL,
		providers: make(map[string]*providerConfig),
	}

	for name, cfg := range providers {
		if err := h.initProvider(name, cfg); err != nil {
			log.Warn("skipping OAuth provider",
				zap.String("provider", name),
				zap.Error(err))
		}
	}
	return h
}

func (h *Handler) initProvider(name string, cfg config.OAuthProviderConfig) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	provider, err := oidc.NewProvider(ctx, cfg.Issuer)
	if err != nil {
		return err
	}

	oauth2Config := oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     provider.Endpoint(),
		RedirectURL:  h.baseURL + "/api/auth/callback/" + name,
		Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
	}

	h.providers[name] = &providerConfig{
		provider: provider,
		config:   oauth2Config,
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}
	return nil
}

// ProviderResponse represents a login provider in API responses
type ProviderResponse struct {
	Name string `json:"name"`
}

// ListProviders returns the configured login providers (public endpoint)
func (h *Handler) ListProviders(c *gin.Context) {
	responses := make([]ProviderResponse, 0, len(h.providers))
	for name := range h.providers {
		responses = append(responses, ProviderResponse{Name: name})
	}
	c.JSON(http.StatusOK, responses)
}

// Login redirects the browser to the provider's authorization endpoint
func (h *Handler) Login(c *gin.Context) {
	name := c.Param("provider")
	pc, ok := h.providers[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not configured"})
		return
	}

	nonce := generateRandomString(32)
	stateData := StateData{
		Provider:  name,
		ReturnURL: c.Query("return_url"),
		Nonce:     nonce,
	}
	stateJSON, _ := json.Marshal(stateData)
	state := base64.URLEncoding.EncodeToString(stateJSON)

	c.Redirect(http.StatusFound, pc.config.AuthCodeURL(state, oidc.Nonce(nonce)))
}

// Callback handles the provider redirect, verifies the identity and issues
// the same JWT as a local login
func (h *Handler) Callback(c *gin.Context) {
	name := c.Param("provider")
	pc, ok := h.providers[name]
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Provider not configured"})
		return
	}

	stateJSON, err := base64.URLEncoding.DecodeString(c.Query("state"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}
	var stateData StateData
	if err := json.Unmarshal(stateJSON, &stateData); err != nil || stateData.Provider != name {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid state"})
		return
	}

	code := c.Query("code")
	if code == "" {
		errorDesc := c.Query("error_description")
		if errorDesc == "" {
			errorDesc = c.Query("error")
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authentication failed: " + errorDesc})
		return
	}

	ctx := c.Request.Context()
	oauth2Token, err := pc.config.Exchange(ctx, code)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange token"})
		return
	}

	rawIDToken, ok := oauth2Token.Extra("id_token").(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No ID token in response"})
		return
	}

	idToken, err := pc.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify ID token"})
		return
	}

	if idToken.Nonce != stateData.Nonce {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid nonce"})
		return
	}

	var claims struct {
		Email         string `json:"email"`
		EmailVerified bool   `json:"email_verified"`
	}
	if err := idToken.Claims(&claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse claims"})
		return
	}
	if claims.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email not provided by identity provider"})
		return
	}

	user, err := h.findOrCreateUser(name, idToken.Subject, claims.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process user"})
		return
	}

	if !user.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "User account is deactivated"})
		return
	}

	token, err := auth.GenerateToken(user.ID, user.Email, user.Username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	if stateData.ReturnURL != "" {
		c.Redirect(http.StatusFound, stateData.ReturnURL+"?token="+token)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": auth.UserResponse{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
			Active:   user.Active,
		},
	})
}

// findOrCreateUser resolves the authenticated identity to a local user,
// linking or provisioning as needed
func (h *Handler) findOrCreateUser(provider, subject, email string) (*models.User, error) {
	// Existing identity link wins
	var account models.OAuthAccount
	err := h.db.Where("provider = ? AND subject = ?", provider, subject).First(&account).Error
	if err == nil {
		var user models.User
		if err := h.db.First(&user, account.UserID).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	// Otherwise link by email
	var user models.User
	err = h.db.Where("email = ?", email).First(&user).Error
	if err == nil {
		account = models.OAuthAccount{
			UserID:   user.ID,
			Provider: provider,
			Subject:  subject,
		}
		if err := h.db.Create(&account).Error; err != nil {
			return nil, err
		}
		return &user, nil
	}

	// Brand new user; no local password
	user = models.User{
		Email:    email,
		Username: uniqueUsername(h.db, strings.Split(email, "@")[0]),
		Active:   true,
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		account = models.OAuthAccount{
			UserID:   user.ID,
			Provider: provider,
			Subject:  subject,
		}
		return tx.Create(&account).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// uniqueUsername derives a username from the email local part, suffixing it
// when taken
func uniqueUsername(db *gorm.DB, base string) string {
	candidate := base
	for i := 0; i < 10; i++ {
		var existing models.User
		if err := db.Where("username = ?", candidate).First(&existing).Error; err != nil {
			return candidate
		}
		candidate = base + "-" + generateRandomString(4)
	}
	return base + "-" + generateRandomString(8)
}

const randomCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

func generateRandomString(length int) string {
	b := make([]byte, length)
	rand.Read(b)
	for i := range b {
		b[i] = randomCharset[int(b[i])%len(randomCharset)]
	}
	return string(b)
}

// RegisterRoutes registers OAuth routes (public; they issue the session token)
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/providers", h.ListProviders)
	rg.GET("/login/:provider", h.Login)
	rg.GET("/callback/:provider", h.Callback)
}
