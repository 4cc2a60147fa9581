package handler

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/evently/backend/internal/apperr"
	"github.com/evently/backend/internal/auth"
	"github.com/evently/backend/internal/metrics"
	"github.com/evently/backend/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	authIdentityKey = "auth_identity"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-Id"
)

var rejectionMessages = map[apperr.Kind]string{
	apperr.KindTokenMissing:   "Access token required",
	apperr.KindTokenExpired:   "Access token expired",
	apperr.KindTokenMalformed: "Invalid access token",
	apperr.KindTokenType:      "Invalid token type",
}

// Authenticator gates routes on bearer access tokens.
type Authenticator struct {
	tokens  *auth.TokenService
	metrics *metrics.Metrics
	log     zerolog.Logger
}

func NewAuthenticator(tokens *auth.TokenService, m *metrics.Metrics, log zerolog.Logger) *Authenticator {
	return &Authenticator{tokens: tokens, metrics: m, log: log.With().Str("component", "auth_middleware").Logger()}
}

// Authenticate rejects any request without a valid access token.
func (a *Authenticator) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}
		a.verify(c)
	}
}

// OptionalAuth lets requests that carry no bearer token through as anonymous.
// A bearer token that is present must still be a valid access token.
func (a *Authenticator) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			c.Set(authIdentityKey, (*model.AuthIdentity)(nil))
			c.Next()
			return
		}
		a.verifyToken(c, token)
	}
}

func (a *Authenticator) verify(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		a.reject(c, apperr.New(apperr.KindTokenMissing, "token missing"), "")
		return
	}
	a.verifyToken(c, token)
}

func (a *Authenticator) verifyToken(c *gin.Context, token string) {
	claims, err := a.tokens.VerifyType(token, auth.TokenAccess)
	if err != nil {
		a.reject(c, err, token)
		return
	}

	c.Set(authIdentityKey, &model.AuthIdentity{
		Subject: claims.Subject,
		Type:    string(claims.Type),
	})
	c.Next()
}

func (a *Authenticator) reject(c *gin.Context, err error, token string) {
	kind := apperr.KindOf(err)
	message, ok := rejectionMessages[kind]
	if !ok {
		kind = apperr.KindTokenMalformed
		message = rejectionMessages[kind]
	}
	code := apperr.New(kind, message).Code

	event := a.log.Debug().Str("code", code).Str("path", c.Request.URL.Path)
	if token != "" {
		if claims := a.tokens.Decode(token); claims != nil {
			event = event.Str("claimed_subject", claims.Subject).Str("claimed_type", string(claims.Type))
		}
	}
	event.Msg("request rejected")

	a.metrics.AuthRejected(code)
	c.AbortWithStatusJSON(http.StatusUnauthorized, model.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func bearerToken(header string) string {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetAuthIdentity returns the verified caller, or nil for anonymous requests.
func GetAuthIdentity(c *gin.Context) *model.AuthIdentity {
	if value, ok := c.Get(authIdentityKey); ok {
		if identity, ok := value.(*model.AuthIdentity); ok {
			return identity
		}
	}
	return nil
}

func CORSMiddleware(allowedOrigins []string, allowCredentials bool) gin.HandlerFunc {
	originMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}
		originMap[trimmed] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			if _, ok := originMap[origin]; ok {
				c.Header("Access-Control-Allow-Origin", origin)
				c.Header("Vary", "Origin")
				if allowCredentials {
					c.Header("Access-Control-Allow-Credentials", "true")
				}
				c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
				c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			}
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestID propagates or assigns an X-Request-Id.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request at a level chosen by status.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		default:
			event = log.Info()
		}

		event = event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("client", c.ClientIP()).
			Str("request_id", c.GetString(requestIDKey))
		if identity := GetAuthIdentity(c); identity != nil {
			event = event.Str("user_id", identity.Subject)
		}
		event.Msg("request completed")
	}
}

// Recovery turns panics into a sanitized 500.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Str("panic", fmt.Sprintf("%v", rec)).
					Str("stack", string(debug.Stack())).
					Str("path", c.Request.URL.Path).
					Str("request_id", c.GetString(requestIDKey)).
					Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, model.ErrorResponse{
					Error: "internal server error",
					Code:  apperr.CodeInternal,
				})
			}
		}()
		c.Next()
	}
}

// Instrument records request counts and latency per route template.
func Instrument(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.HTTPRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
