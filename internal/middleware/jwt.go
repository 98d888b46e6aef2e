package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"freightdesk/internal/common"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const tokenContextKey = "user"

// JWTCustomClaims carries the acting user. Tokens issued by an external
// identity provider usually only set the subject, so UserID is optional.
type JWTCustomClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// userID returns the user_id claim, falling back to the subject.
func (c *JWTCustomClaims) userID() (uuid.UUID, error) {
	raw := c.UserID
	if raw == "" {
		raw = c.Subject
	}
	if raw == "" {
		return uuid.Nil, errors.New("missing user id claim")
	}
	return uuid.Parse(raw)
}

// Authenticator builds the bearer token guard for protected routes.
type Authenticator struct {
	config echojwt.Config
	jwks   *keyfunc.JWKS
}

// NewAuthenticator verifies tokens against jwksURL when it is set and with
// the HMAC secret otherwise.
func NewAuthenticator(secret, jwksURL string, logger *zap.Logger) (*Authenticator, error) {
	a := &Authenticator{}

	cfg := echojwt.Config{
		ContextKey: tokenContextKey,
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(JWTCustomClaims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			logger.Debug("rejected bearer token", zap.String("path", c.Path()), zap.Error(err))
			return common.SendUnauthorizedError(c)
		},
	}

	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshRateLimit:  5 * time.Minute,
			RefreshTimeout:    10 * time.Second,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				logger.Warn("failed to refresh JWKS", zap.Error(err))
			},
		})
		if err != nil {
			return nil, fmt.Errorf("load JWKS from %s: %w", jwksURL, err)
		}
		a.jwks = jwks
		cfg.KeyFunc = jwks.Keyfunc
	} else {
		if secret == "" {
			return nil, errors.New("jwt secret is required when no JWKS url is configured")
		}
		cfg.SigningKey = []byte(secret)
		cfg.SigningMethod = jwt.SigningMethodHS256.Alg()
	}

	a.config = cfg
	return a, nil
}

// Middleware validates the token and then stores the acting user on the
// request context.
func (a *Authenticator) Middleware() echo.MiddlewareFunc {
	verify := echojwt.WithConfig(a.config)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return verify(UserContext(next))
	}
}

// Close stops the background JWKS refresh, if any.
func (a *Authenticator) Close() {
	if a.jwks != nil {
		a.jwks.EndBackground()
	}
}

// UserContext copies the user id of a verified token into the request
// context so services can attribute writes.
func UserContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := c.Get(tokenContextKey).(*jwt.Token)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
		}
		claims, ok := token.Claims.(*JWTCustomClaims)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
		}

		userID, err := claims.userID()
		if err != nil {
			return common.SendUnauthorizedError(c)
		}

		ctx := common.WithUserID(c.Request().Context(), userID)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}
