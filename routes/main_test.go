package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"
	"time"

	"gatherings-server/models"
	"gatherings-server/storage"
	"gatherings-server/utils"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"
	"gorm.io/gorm"
)

// testDB is the database the handlers see through storage.DB for the
// duration of a test.
var testDB *gorm.DB

// buildTestApp wires the real handlers, verifier, and an in-memory database
// into an Iris app, mirroring the production router.
func buildTestApp(t *testing.T) *iris.Application {
	t.Helper()
	os.Setenv("ACCESS_TOKEN_SECRET", "testsecret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	storage.PerformMigrations(db)
	testDB = db
	storage.DB = db
	t.Cleanup(func() { storage.DB = nil; testDB = nil })

	app := iris.New()
	app.Validator = validator.New()

	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	groups := app.Party("/api/groups")
	{
		groups.Get("/public/{linkUid}", GetPublicGroup)
		groups.Post("/public/{linkUid}/join", accessTokenVerifierMiddleware, JoinPublicGroup)

		groups.Get("/", accessTokenVerifierMiddleware, ListGroups)
		groups.Post("/", accessTokenVerifierMiddleware, CreateGroup)
		groups.Get("/{id:uint}", accessTokenVerifierMiddleware, GetGroup)
		groups.Put("/{id:uint}", accessTokenVerifierMiddleware, UpdateGroup)
		groups.Delete("/{id:uint}", accessTokenVerifierMiddleware, DeleteGroup)

		groups.Post("/{id:uint}/members", accessTokenVerifierMiddleware, JoinGroup)
		groups.Delete("/{id:uint}/members", accessTokenVerifierMiddleware, LeaveGroup)
		groups.Post("/{id:uint}/members/{userID:uint}/approve", accessTokenVerifierMiddleware, ApproveMember)
		groups.Delete("/{id:uint}/members/{userID:uint}/decline", accessTokenVerifierMiddleware, DeclineMember)

		groups.Get("/{id:uint}/invitations", accessTokenVerifierMiddleware, ListGroupInvitations)
		groups.Post("/{id:uint}/invitations", accessTokenVerifierMiddleware, CreateInvitation)

		groups.Get("/{id:uint}/events", accessTokenVerifierMiddleware, ListGroupEvents)
		groups.Post("/{id:uint}/events", accessTokenVerifierMiddleware, CreateEvent)
	}

	invitations := app.Party("/api/invitations")
	{
		invitations.Get("/", accessTokenVerifierMiddleware, ListMyInvitations)
		invitations.Post("/{id:uint}/respond", accessTokenVerifierMiddleware, RespondToInvitation)
	}

	events := app.Party("/api/events")
	{
		events.Get("/public/{linkUid}", GetPublicEvent)
		events.Get("/", accessTokenVerifierMiddleware, ListEvents)
		events.Get("/{id:uint}", accessTokenVerifierMiddleware, GetEvent)
		events.Put("/{id:uint}", accessTokenVerifierMiddleware, UpdateEvent)
		events.Delete("/{id:uint}", accessTokenVerifierMiddleware, DeleteEvent)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/users", AdminListUsers)
		admin.Patch("/users/{id:uint}/admin", AdminSetUserAdmin)
	}

	if err := app.Build(); err != nil {
		t.Fatalf("build app: %v", err)
	}
	return app
}

func createTestUser(t *testing.T, email string, isAdmin bool) *models.User {
	t.Helper()
	user := models.User{Name: email, Email: email, Password: "x", IsAdmin: isAdmin}
	if err := testDB.Create(&user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return &user
}

func signToken(t *testing.T, user *models.User) string {
	t.Helper()
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), time.Hour)
	token, err := signer.Sign(utils.AccessToken{ID: user.ID, Email: user.Email, IsAdmin: user.IsAdmin})
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return string(token)
}

func doRequest(t *testing.T, app *iris.Application, method, path string, body []byte, as *models.User) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if as != nil {
		req.Header.Set("Authorization", "Bearer "+signToken(t, as))
	}
	resp := httptest.NewRecorder()
	app.ServeHTTP(resp, req)
	return resp
}

func doJSON(t *testing.T, app *iris.Application, method, path string, payload interface{}, as *models.User) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return doRequest(t, app, method, path, body, as)
}

func decodeBody(t *testing.T, resp *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(resp.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", resp.Body.String(), err)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
