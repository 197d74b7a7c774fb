package account_test

import (
	"context"
	"errors"
	"staffing/account"
	"staffing/authority"
	"staffing/bizerror"
	"staffing/credential"
	"staffing/persistence"
	"staffing/session"
	"staffing/testinfra"
	"time"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Accounts", func() {
	var (
		testDatabase *testinfra.TestDatabase
		directeur    *session.Session
		admin        *session.Session
	)

	BeforeEach(func() {
		testDatabase = testinfra.StartTestDatabase("account")
		persistence.ActiveDataSourceManager = testDatabase.DS
		Expect(testDatabase.DS.GormDB(context.Background()).AutoMigrate(&account.User{}).Error).To(BeNil())
		account.ActiveTokenService = credential.NewTokenService("test-secret", time.Hour)
		session.TokenCache.Flush()
		session.RevokedTokens.Flush()

		directeur = testinfra.BuildSession(1, authority.Directeur)
		admin = testinfra.BuildSession(2, authority.Administrator)
	})

	AfterEach(func() {
		testinfra.StopTestDatabase(testDatabase)
	})

	Describe("CreateUser", func() {
		It("should create user with hashed secret and normalized email", func() {
			info, err := account.CreateUser(&account.UserCreation{Email: " Ann@Example.com ", Password: "password1",
				FirstName: "Ann", LastName: "Lee", Role: authority.Consultant}, admin)
			Expect(err).To(BeNil())
			Expect(info.ID).ToNot(BeZero())
			Expect(info.Email).To(Equal("ann@example.com"))
			Expect(info.Role).To(Equal(authority.Consultant))

			user := account.User{}
			Expect(testDatabase.DS.GormDB(context.Background()).Where("id = ?", info.ID).First(&user).Error).To(BeNil())
			Expect(user.Secret).ToNot(Equal("password1"))
			Expect(credential.VerifyPassword("password1", user.Secret)).To(BeTrue())
		})

		It("should reject duplicated email", func() {
			c := &account.UserCreation{Email: "ann@example.com", Password: "password1", FirstName: "Ann", LastName: "Lee", Role: authority.Consultant}
			_, err := account.CreateUser(c, admin)
			Expect(err).To(BeNil())
			_, err = account.CreateUser(c, admin)
			Expect(errors.Is(err, bizerror.ErrDuplicated)).To(BeTrue())
		})

		It("should forbid consultants and project owners", func() {
			c := &account.UserCreation{Email: "ann@example.com", Password: "password1", FirstName: "Ann", LastName: "Lee", Role: authority.Consultant}
			_, err := account.CreateUser(c, testinfra.BuildSession(3, authority.Consultant))
			Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())
			_, err = account.CreateUser(c, testinfra.BuildSession(3, authority.ProjectOwner))
			Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())
		})

		It("should only let a directeur appoint a directeur", func() {
			c := &account.UserCreation{Email: "boss@example.com", Password: "password1", FirstName: "Big", LastName: "Boss", Role: authority.Directeur}
			_, err := account.CreateUser(c, admin)
			Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())
			_, err = account.CreateUser(c, directeur)
			Expect(err).To(BeNil())
		})
	})

	Describe("Login and Logout", func() {
		BeforeEach(func() {
			_, err := account.CreateUser(&account.UserCreation{Email: "ann@example.com", Password: "password1",
				FirstName: "Ann", LastName: "Lee", Role: authority.ProjectOwner}, admin)
			Expect(err).To(BeNil())
		})

		It("should issue a verifiable token and remember the session", func() {
			result, err := account.Login(&account.LoginRequest{Email: "ANN@example.com", Password: "password1"}, &session.Session{})
			Expect(err).To(BeNil())
			Expect(result.Token).ToNot(BeEmpty())
			Expect(result.User.Email).To(Equal("ann@example.com"))
			Expect(result.ExpiresAt.After(time.Now())).To(BeTrue())

			claims, err := account.ActiveTokenService.Verify(result.Token)
			Expect(err).To(BeNil())
			Expect(claims.Role).To(Equal(authority.ProjectOwner))

			s, err := session.Resolve(account.ActiveTokenService, result.Token)
			Expect(err).To(BeNil())
			Expect(s.Identity.Name).To(Equal("Ann Lee"))
			Expect(s.Identity.ID).To(Equal(result.User.ID))
		})

		It("should reject wrong password and unknown email alike", func() {
			_, err := account.Login(&account.LoginRequest{Email: "ann@example.com", Password: "bad"}, &session.Session{})
			Expect(errors.Is(err, bizerror.ErrInvalidPassword)).To(BeTrue())
			_, err = account.Login(&account.LoginRequest{Email: "bob@example.com", Password: "password1"}, &session.Session{})
			Expect(errors.Is(err, bizerror.ErrInvalidPassword)).To(BeTrue())
		})

		It("should revoke the token on logout", func() {
			result, err := account.Login(&account.LoginRequest{Email: "ann@example.com", Password: "password1"}, &session.Session{})
			Expect(err).To(BeNil())
			s, err := session.Resolve(account.ActiveTokenService, result.Token)
			Expect(err).To(BeNil())

			account.Logout(s)
			_, err = session.Resolve(account.ActiveTokenService, result.Token)
			Expect(errors.Is(err, bizerror.ErrTokenInvalid)).To(BeTrue())
		})
	})

	Describe("UpdatePassword", func() {
		It("should replace the secret when the original password matches", func() {
			info, err := account.CreateUser(&account.UserCreation{Email: "ann@example.com", Password: "password1",
				FirstName: "Ann", LastName: "Lee", Role: authority.Consultant}, admin)
			Expect(err).To(BeNil())
			sec := testinfra.BuildSession(info.ID, authority.Consultant)

			err = account.UpdatePassword(&account.PasswordUpdating{OriginalPassword: "nope", NewPassword: "password2"}, sec)
			Expect(errors.Is(err, bizerror.ErrInvalidPassword)).To(BeTrue())

			Expect(account.UpdatePassword(&account.PasswordUpdating{OriginalPassword: "password1", NewPassword: "password2"}, sec)).To(BeNil())
			_, err = account.Login(&account.LoginRequest{Email: "ann@example.com", Password: "password2"}, &session.Session{})
			Expect(err).To(BeNil())
		})
	})

	Describe("QueryUsers and QueryUserInfos", func() {
		It("should list users ordered by email for administrators only", func() {
			b, err := account.CreateUser(&account.UserCreation{Email: "bob@example.com", Password: "password1", FirstName: "Bob", LastName: "B", Role: authority.Consultant}, admin)
			Expect(err).To(BeNil())
			a, err := account.CreateUser(&account.UserCreation{Email: "ann@example.com", Password: "password1", FirstName: "Ann", LastName: "A", Role: authority.Consultant}, admin)
			Expect(err).To(BeNil())

			users, err := account.QueryUsers(admin)
			Expect(err).To(BeNil())
			Expect(*users).To(Equal([]account.UserInfo{*a, *b}))

			_, err = account.QueryUsers(testinfra.BuildSession(9, authority.Consultant))
			Expect(errors.Is(err, bizerror.ErrForbidden)).To(BeTrue())

			infos, err := account.QueryUserInfos(testDatabase.DS.GormDB(context.Background()), []types.ID{a.ID, 404})
			Expect(err).To(BeNil())
			Expect(infos).To(HaveLen(1))
			Expect(infos[a.ID].DisplayName()).To(Equal("Ann A"))
		})
	})

	Describe("BootstrapDirecteur", func() {
		It("should create a directeur only when no user exists", func() {
			info, err := account.BootstrapDirecteur("boss@example.com", "password1")
			Expect(err).To(BeNil())
			Expect(info.Role).To(Equal(authority.Directeur))

			info, err = account.BootstrapDirecteur("other@example.com", "password1")
			Expect(err).To(BeNil())
			Expect(info).To(BeNil())
		})

		It("should do nothing without a password", func() {
			info, err := account.BootstrapDirecteur("boss@example.com", "")
			Expect(err).To(BeNil())
			Expect(info).To(BeNil())
		})
	})
})
