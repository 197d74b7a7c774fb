package account_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"staffing/account"
	"staffing/authority"
	"staffing/bizerror"
	"staffing/session"
	"staffing/testinfra"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("UserRestApi", func() {
	var (
		router *gin.Engine
		sec    *session.Session
	)
	BeforeEach(func() {
		sec = testinfra.BuildSession(1, authority.Administrator)
		router = gin.Default()
		router.Use(bizerror.ErrorHandling())
		account.RegisterUsersHandler(router, testinfra.InjectSession(sec))
	})

	Describe("HandleCreateUser", func() {
		It("should return 201 with created user", func() {
			var payload *account.UserCreation
			var caller *session.Session
			account.CreateUserFunc = func(c *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				payload, caller = c, s
				return &account.UserInfo{ID: 10, Email: c.Email, FirstName: c.FirstName, LastName: c.LastName, Role: c.Role}, nil
			}
			req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte(
				`{"email":"ann@example.com","password":"password1","firstName":"Ann","lastName":"Lee","role":"consultant"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusCreated))
			Expect(body).To(MatchJSON(`{"id":"10","email":"ann@example.com","firstName":"Ann","lastName":"Lee","role":"consultant"}`))
			Expect(payload.Role).To(Equal(authority.Consultant))
			Expect(caller.Identity.ID).To(Equal(sec.Identity.ID))
		})

		It("should return 400 when role is unknown", func() {
			account.CreateUserFunc = func(c *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				Fail("should not be called")
				return nil, nil
			}
			req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte(
				`{"email":"ann@example.com","password":"password1","firstName":"Ann","lastName":"Lee","role":"king"}`)))
			status, _, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
		})

		It("should return 403 when service forbids", func() {
			account.CreateUserFunc = func(c *account.UserCreation, s *session.Session) (*account.UserInfo, error) {
				return nil, bizerror.ErrForbidden
			}
			req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewReader([]byte(
				`{"email":"ann@example.com","password":"password1","firstName":"Ann","lastName":"Lee","role":"directeur"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusForbidden))
			Expect(body).To(MatchJSON(`{"code":"security.forbidden","message":"access forbidden","data":null}`))
		})
	})

	Describe("HandleDetailCurrentUser", func() {
		It("should return current user", func() {
			account.DetailCurrentUserFunc = func(s *session.Session) (*account.UserInfo, error) {
				return &account.UserInfo{ID: s.Identity.ID, Email: "admin@example.com", Role: s.Role}, nil
			}
			req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`{"id":"1","email":"admin@example.com","firstName":"","lastName":"","role":"administrator"}`))
		})
	})

	Describe("HandleUpdatePassword", func() {
		It("should return 200 when update successful", func() {
			var payload *account.PasswordUpdating
			account.UpdatePasswordFunc = func(u *account.PasswordUpdating, s *session.Session) error {
				payload = u
				return nil
			}
			req := httptest.NewRequest(http.MethodPut, "/v1/me/password", bytes.NewReader([]byte(
				`{"originalPassword":"password1","newPassword":"password2"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(BeEmpty())
			Expect(*payload).To(Equal(account.PasswordUpdating{OriginalPassword: "password1", NewPassword: "password2"}))
		})

		It("should return 400 when new password is too short", func() {
			req := httptest.NewRequest(http.MethodPut, "/v1/me/password", bytes.NewReader([]byte(
				`{"originalPassword":"password1","newPassword":"short"}`)))
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusBadRequest))
			Expect(body).To(ContainSubstring(`"code":"common.bad_param"`))
		})
	})

	Describe("HandleQueryUsers", func() {
		It("should return users", func() {
			account.QueryUsersFunc = func(s *session.Session) (*[]account.UserInfo, error) {
				return &[]account.UserInfo{{ID: 2, Email: "b@example.com", Role: authority.Consultant}}, nil
			}
			req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
			status, body, _ := testinfra.ExecuteRequest(req, router)
			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(MatchJSON(`[{"id":"2","email":"b@example.com","firstName":"","lastName":"","role":"consultant"}]`))
		})
	})
})
