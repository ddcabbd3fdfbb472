// Package login provides the credential exchange endpoint issuing bearer
// tokens.
package login

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/storehub/storehub/internal/auth"
	"github.com/storehub/storehub/internal/config"
	"github.com/storehub/storehub/internal/db/models"
	"github.com/storehub/storehub/internal/web/respond"
)

const (
	// Path is the login endpoint path.
	Path = "/api/auth/login"

	// ErrInvalidCredentials is returned for unknown users, inactive users
	// and bad passwords alike.
	ErrInvalidCredentials = "Invalid username or password"
)

// request is the login payload.
type request struct {
	Username string `json:"username" validate:"required,min=1,max=100"`
	Password string `json:"password" validate:"required,min=1,max=200"`
}

// Service is the login handler service.
type Service struct {
	cfg      *config.Config
	db       *gorm.DB
	resolver *auth.Resolver
	validate *validator.Validate
}

// Handler is the login handler.
var Handler = Service{} //nolint:gochecknoglobals

// Init initializes the login handler. The route is registered on the app
// itself: it is the one API endpoint outside the authenticated group.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, resolver *auth.Resolver) error {
	if app == nil || cfg == nil || db == nil || resolver == nil {
		return errors.New("app, cfg, db or resolver is nil")
	}

	s.cfg = cfg
	s.db = db
	s.resolver = resolver
	s.validate = validator.New()

	app.Post(Path, s.Post)

	return nil
}

// Post handles the credential exchange.
func (s *Service) Post(c *fiber.Ctx) error {
	var req request

	if err := c.BodyParser(&req); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "Invalid request body")
	}

	if err := s.validate.Struct(&req); err != nil {
		return respond.Error(c, fiber.StatusBadRequest, "Username and password are required")
	}

	var user models.User

	err := s.db.Where("username = ? AND active = ?", req.Username, true).First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return respond.FromError(c, err)
		}

		return respond.Error(c, fiber.StatusUnauthorized, ErrInvalidCredentials)
	}

	if !user.VerifyPassword(req.Password) {
		log.Warn().Str("username", req.Username).Msg("failed login attempt")

		return respond.Error(c, fiber.StatusUnauthorized, ErrInvalidCredentials)
	}

	uc, err := s.resolver.ContextFor(user.ID)
	if err != nil {
		return respond.FromError(c, err)
	}

	token, err := auth.SignToken(uc, s.cfg.Auth.Secret, s.cfg.Auth.SignAlgorithm(), s.cfg.Auth.TokenLifetime())
	if err != nil {
		return respond.FromError(c, err)
	}

	return respond.OK(c, fiber.Map{"token": token, "user": uc})
}
