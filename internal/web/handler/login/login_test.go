package login_test

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/auth"
	"github.com/storehub/storehub/internal/cache"
	"github.com/storehub/storehub/internal/config"
	"github.com/storehub/storehub/internal/db/models"
	"github.com/storehub/storehub/internal/web/handler/login"
)

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupPermission{},
		&models.GroupStorePermission{},
		&models.Store{},
	))

	group := models.Group{Name: models.SystemGroupName, IsSystem: true}
	require.NoError(t, db.Create(&group).Error)

	require.NoError(t, db.Create(&models.User{
		Username: "admin",
		Password: models.HashPassword("changeme"),
		Active:   true,
		GroupID:  &group.ID,
	}).Error)

	require.NoError(t, db.Create(&models.User{
		Username: "ghost",
		Password: models.HashPassword("boo"),
		Active:   false,
	}).Error)

	cfg := &config.Config{Auth: config.Auth{Secret: "test-secret"}}
	resolver := auth.NewResolver(db, cache.New(time.Minute), cfg.Auth.Secret, cfg.Auth.SignAlgorithm())

	app := fiber.New()
	require.NoError(t, login.Handler.Init(app, cfg, db, resolver))

	return app
}

func post(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(fiber.MethodPost, login.Path, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer resp.Body.Close() //nolint:errcheck

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))

	return resp.StatusCode, decoded
}

func TestLogin(t *testing.T) {
	app := setupApp(t)

	status, body := post(t, app, `{"username": "admin", "password": "changeme"}`)

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["token"])

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin", user["username"])
	assert.Equal(t, true, user["is_system"])
}

func TestLoginFailures(t *testing.T) {
	app := setupApp(t)

	testCases := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{
			name:       "wrong password",
			body:       `{"username": "admin", "password": "nope"}`,
			wantStatus: fiber.StatusUnauthorized,
			wantError:  login.ErrInvalidCredentials,
		},
		{
			name:       "unknown user",
			body:       `{"username": "nobody", "password": "changeme"}`,
			wantStatus: fiber.StatusUnauthorized,
			wantError:  login.ErrInvalidCredentials,
		},
		{
			name:       "inactive user",
			body:       `{"username": "ghost", "password": "boo"}`,
			wantStatus: fiber.StatusUnauthorized,
			wantError:  login.ErrInvalidCredentials,
		},
		{
			name:       "missing password",
			body:       `{"username": "admin"}`,
			wantStatus: fiber.StatusBadRequest,
		},
		{
			name:       "broken body",
			body:       `{not json`,
			wantStatus: fiber.StatusBadRequest,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := post(t, app, tc.body)

			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, false, body["success"])

			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, body["error"])
			}
		})
	}
}
