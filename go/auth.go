package posserver

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleEmployee = "employee"
	RoleAdmin    = "admin"

	claimsKey = "posserver.claims"
)

var ErrInvalidToken = errors.New("invalid or expired session token")

// Claims identify the order session a terminal token belongs to.
type Claims struct {
	SessionID string `json:"sid"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && keyMatch2(r.obj, p.obj) && regexMatch(r.act, p.act)
`

var rbacPolicies = [][]string{
	{RoleEmployee, "/v1/sessions/current", "^DELETE$"},
	{RoleEmployee, "/v1/sessions/current/admin", "^(POST|DELETE)$"},
	{RoleEmployee, "/v1/catalog", "^GET$"},
	{RoleEmployee, "/v1/settings", "^GET$"},
	{RoleEmployee, "/v1/order", "^(GET|DELETE)$"},
	{RoleEmployee, "/v1/order/events", "^GET$"},
	{RoleEmployee, "/v1/order/*", "^(POST|PUT|PATCH|DELETE)$"},
	{RoleAdmin, "/v1/admin/*", "^(GET|POST|PATCH|DELETE)$"},
}

// Authenticator issues session tokens and guards routes by role.
type Authenticator struct {
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
	enforcer *casbin.Enforcer
}

// NewAuthenticator builds the HS256 token issuer and the route policy.
func NewAuthenticator(secret string, ttl time.Duration) (*Authenticator, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("token secret is required")
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to load RBAC model: %w", err)
	}
	enforcer, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize RBAC enforcer: %w", err)
	}
	for _, policy := range rbacPolicies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return nil, fmt.Errorf("failed to add policy: %w", err)
		}
	}
	if _, err := enforcer.AddGroupingPolicy(RoleAdmin, RoleEmployee); err != nil {
		return nil, fmt.Errorf("failed to add role inheritance: %w", err)
	}
	return &Authenticator{secret: []byte(secret), ttl: ttl, now: time.Now, enforcer: enforcer}, nil
}

// Issue signs a token for the session.
func (a *Authenticator) Issue(sessionID, username, role string) (string, time.Time, error) {
	now := a.now()
	expires := now.Add(a.ttl)
	claims := Claims{
		SessionID: sessionID,
		Username:  username,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expires, nil
}

// Parse validates a token and returns its claims.
func (a *Authenticator) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(a.now))
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Allowed reports whether role may call method on path.
func (a *Authenticator) Allowed(role, path, method string) (bool, error) {
	return a.enforcer.Enforce(role, path, method)
}

// Middleware requires a bearer token whose role may call the route.
func (a *Authenticator) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, found := strings.Cut(header, " ")
		if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			responder.Unauthorized(c, "bearer token required")
			c.Abort()
			return
		}
		claims, err := a.Parse(strings.TrimSpace(token))
		if err != nil {
			responder.Unauthorized(c, err.Error())
			c.Abort()
			return
		}
		allowed, err := a.Allowed(claims.Role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			responder.InternalError(c, err.Error())
			c.Abort()
			return
		}
		if !allowed {
			responder.Forbidden(c, "role "+claims.Role+" may not call this route")
			c.Abort()
			return
		}
		c.Set(claimsKey, claims)
		c.Next()
	}
}

func claimsFrom(c *gin.Context) (*Claims, bool) {
	value, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}

// currentClaims aborts with 401 when the route ran without authentication.
func currentClaims(c *gin.Context) (*Claims, bool) {
	claims, ok := claimsFrom(c)
	if !ok {
		responder.Unauthorized(c, "no session")
		return nil, false
	}
	return claims, true
}
