package credential

import (
	"errors"
	"staffing/authority"
	"staffing/bizerror"
	"strings"
	"testing"
	"time"

	"github.com/fundwit/go-commons/types"
	"github.com/golang-jwt/jwt/v5"
	. "github.com/onsi/gomega"
)

func TestPassword(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should verify hashed password", func(t *testing.T) {
		hash, err := HashPassword("abc123")
		Expect(err).To(BeNil())
		Expect(hash).ToNot(Equal("abc123"))
		Expect(strings.HasPrefix(hash, "$2a$10$")).To(BeTrue())
		Expect(VerifyPassword("abc123", hash)).To(BeTrue())
		Expect(VerifyPassword("abc124", hash)).To(BeFalse())
		Expect(VerifyPassword("abc123", "not a hash")).To(BeFalse())
	})
}

func TestTokenService(t *testing.T) {
	RegisterTestingT(t)

	t.Run("should issue and verify tokens", func(t *testing.T) {
		s := NewTokenService("secret", time.Hour)
		token, issued, err := s.Issue(types.ID(42), authority.ProjectOwner)
		Expect(err).To(BeNil())

		claims, err := s.Verify(token)
		Expect(err).To(BeNil())
		Expect(claims.Role).To(Equal(authority.ProjectOwner))
		Expect(claims.Subject).To(Equal("42"))
		Expect(claims.ID).To(Equal(issued.ID))
		uid, err := claims.UserID()
		Expect(err).To(BeNil())
		Expect(uid).To(Equal(types.ID(42)))
	})

	t.Run("should reject tokens signed with another secret", func(t *testing.T) {
		token, _, err := NewTokenService("other", time.Hour).Issue(types.ID(42), authority.Consultant)
		Expect(err).To(BeNil())
		_, err = NewTokenService("secret", time.Hour).Verify(token)
		Expect(errors.Is(err, bizerror.ErrTokenInvalid)).To(BeTrue())

		_, err = NewTokenService("secret", time.Hour).Verify("garbage")
		Expect(errors.Is(err, bizerror.ErrTokenInvalid)).To(BeTrue())
	})

	t.Run("should reject expired tokens", func(t *testing.T) {
		s := NewTokenService("secret", time.Hour)
		s.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, _, err := s.Issue(types.ID(42), authority.Consultant)
		Expect(err).To(BeNil())

		s.now = time.Now
		_, err = s.Verify(token)
		Expect(errors.Is(err, bizerror.ErrTokenExpired)).To(BeTrue())
		Expect(errors.Is(err, bizerror.ErrUnauthenticated)).To(BeTrue())
	})

	t.Run("should reject unexpected signing methods and unknown roles", func(t *testing.T) {
		s := NewTokenService("secret", time.Hour)
		none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{Role: authority.Directeur,
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		Expect(err).To(BeNil())
		_, err = s.Verify(none)
		Expect(errors.Is(err, bizerror.ErrTokenInvalid)).To(BeTrue())

		forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: "root",
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1"}}).SignedString([]byte("secret"))
		Expect(err).To(BeNil())
		_, err = s.Verify(forged)
		Expect(errors.Is(err, bizerror.ErrTokenInvalid)).To(BeTrue())
	})
}
