package session

import (
	"staffing/bizerror"
	"staffing/credential"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
)

// TokenCache holds verified sessions until their token expires.
var TokenCache = cache.New(credential.DefaultTokenTTL, 1*time.Minute)

// RevokedTokens holds logged out tokens until their natural expiry.
var RevokedTokens = cache.New(credential.DefaultTokenTTL, 10*time.Minute)

const KeySecCtx = "SecCtx"
const KeySecToken = "sec_token"

type TokenVerifier interface {
	Verify(token string) (*credential.Claims, error)
}

func ExtractSessionFromGinContext(ctx *gin.Context) *Session {
	value, found := ctx.Get(KeySecCtx)
	if !found {
		return &Session{Context: ctx.Request.Context(), ClientIP: ctx.ClientIP(), UserAgent: ctx.Request.UserAgent()}
	}
	s0, ok := value.(*Session)
	if !ok || s0.Token == "" {
		return &Session{Context: ctx.Request.Context(), ClientIP: ctx.ClientIP(), UserAgent: ctx.Request.UserAgent()}
	}
	s := s0.Clone()
	s.Context = ctx.Request.Context() // trace context
	s.ClientIP = ctx.ClientIP()
	s.UserAgent = ctx.Request.UserAgent()
	return &s
}

func InjectSessionIntoGinContext(ctx *gin.Context, secCtx *Session) {
	if secCtx != nil && secCtx.Token != "" {
		ctx.Set(KeySecCtx, secCtx)
	}
}

// AuthFilter authenticates requests by bearer token, or by cookie for browser clients.
func AuthFilter(verifier TokenVerifier) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ExtractToken(ctx)
		if token == "" {
			panic(bizerror.ErrUnauthenticated)
		}
		s, err := Resolve(verifier, token)
		if err != nil {
			panic(err)
		}
		InjectSessionIntoGinContext(ctx, s)
		ctx.Next()
	}
}

func ExtractToken(ctx *gin.Context) string {
	if header := ctx.GetHeader("Authorization"); header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}
	token, err := ctx.Cookie(KeySecToken)
	if err != nil {
		return ""
	}
	return token
}

// Resolve returns the cached session of a token, verifying and caching it on first use.
func Resolve(verifier TokenVerifier, token string) (*Session, error) {
	if _, revoked := RevokedTokens.Get(token); revoked {
		return nil, bizerror.ErrTokenInvalid
	}
	if value, found := TokenCache.Get(token); found {
		if s, ok := value.(*Session); ok {
			return s, nil
		}
	}

	claims, err := verifier.Verify(token)
	if err != nil {
		return nil, err
	}
	uid, err := claims.UserID()
	if err != nil {
		return nil, bizerror.ErrTokenInvalid
	}
	s := &Session{Token: token, Identity: Identity{ID: uid}, Role: claims.Role}
	if claims.IssuedAt != nil {
		s.SigningTime = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		s.ExpiresAt = claims.ExpiresAt.Time
	}
	Remember(s)
	return s, nil
}

// Remember caches a verified session until its expiry.
func Remember(s *Session) {
	ttl := cache.DefaultExpiration
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return
		}
	}
	TokenCache.Set(s.Token, s, ttl)
}

func Revoke(s *Session) {
	TokenCache.Delete(s.Token)
	ttl := cache.DefaultExpiration
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return
		}
	}
	RevokedTokens.Set(s.Token, true, ttl)
}
