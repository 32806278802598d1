package auth

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"github.com/matheusmosca/sales-orders/internal/platform/config"
	"github.com/matheusmosca/sales-orders/internal/platform/httpx"
	"github.com/matheusmosca/sales-orders/internal/sales"
)

const actorKey = "sales.actor"

// Claims são as claims do token de acesso: sub = nationalId do vendedor
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens emite e verifica tokens HS256
type Tokens struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(cfg config.Auth) *Tokens {
	return &Tokens{
		secret: []byte(cfg.JWTSecret),
		issuer: cfg.Issuer,
		ttl:    cfg.TokenTTL,
		now:    time.Now,
	}
}

// Issue emite um token para o vendedor
func (t *Tokens) Issue(seller *sales.Seller) (string, time.Time, error) {
	now := t.now()
	expires := now.Add(t.ttl)
	claims := Claims{
		Role: string(seller.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(seller.NationalID, 10),
			Issuer:    t.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "sign token")
	}
	return signed, expires, nil
}

// Verify valida assinatura, expiração e emissor e resolve o ator
func (t *Tokens) Verify(raw string) (sales.Actor, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(t.issuer),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return sales.Actor{}, sales.Unauthorized("invalid or expired token")
	}

	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	role := sales.Role(claims.Role)
	if err != nil || id <= 0 || !role.Valid() {
		return sales.Actor{}, sales.Unauthorized("invalid token claims")
	}
	return sales.Actor{SellerID: id, Role: role}, nil
}

// Middleware exige um Bearer token válido e guarda o ator no contexto do gin
func Middleware(tokens *Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			httpx.WriteError(c, sales.Unauthorized("missing bearer token"))
			return
		}

		actor, err := tokens.Verify(strings.TrimSpace(raw))
		if err != nil {
			httpx.WriteError(c, err)
			return
		}

		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireRole bloqueia atores sem o papel informado
func RequireRole(role sales.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			httpx.WriteError(c, sales.Unauthorized("authentication required"))
			return
		}
		if actor.Role != role {
			httpx.WriteError(c, sales.Forbidden("insufficient permissions"))
			return
		}
		c.Next()
	}
}

// ActorFrom retorna o ator autenticado da requisição
func ActorFrom(c *gin.Context) (sales.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return sales.Actor{}, false
	}
	actor, ok := v.(sales.Actor)
	return actor, ok
}

// SetActor guarda o ator no contexto do gin (usado em testes de handlers)
func SetActor(c *gin.Context, actor sales.Actor) {
	c.Set(actorKey, actor)
}
