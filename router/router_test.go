// file: router/router_test.go

package router_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"go-tube-api/config"
	"go-tube-api/handler"
	"go-tube-api/logger"
	"go-tube-api/model"
	"go-tube-api/repository"
	"go-tube-api/router"
	"go-tube-api/service"
	"go-tube-api/storage"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestMain(m *testing.M) {
	logger.Init()

	config.AppConfig.JWT.AccessSecret = "test-access-secret"
	config.AppConfig.JWT.RefreshSecret = "test-refresh-secret"
	config.AppConfig.JWT.AccessTTL = 15 * time.Minute
	config.AppConfig.JWT.RefreshTTL = 24 * time.Hour
	config.AppConfig.Server.BodyLimitKB = 16
	config.AppConfig.Server.UploadTempDir = os.TempDir()

	os.Exit(m.Run())
}

// --- In-memory collaborators ---

type fakeUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[int]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*model.User{}}
}

func clone(u *model.User) *model.User {
	c := *u
	return &c
}

func (r *fakeUserRepo) Create(user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrDuplicateUser
		}
	}
	r.seq++
	user.ID = r.seq
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = clone(user)
	return nil
}

func (r *fakeUserRepo) ExistsByUsernameOrEmail(username, email string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) GetByUsernameOrEmail(identifier string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == identifier || u.Email == identifier {
			return clone(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (r *fakeUserRepo) GetByID(id int) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return clone(u), nil
}

func (r *fakeUserRepo) GetPublicByID(id int) (*model.User, error) {
	u, err := r.GetByID(id)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	u.RefreshToken = ""
	return u, nil
}

func (r *fakeUserRepo) UpdateAccountDetails(id int, fullName, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u.FullName = fullName
	u.Email = email
	u.UpdatedAt = time.Now()
	return clone(u), nil
}

func (r *fakeUserRepo) UpdateAvatar(id int, url string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u.Avatar = url
	return clone(u), nil
}

func (r *fakeUserRepo) UpdateCoverImage(id int, url string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	u.CoverImage = url
	return clone(u), nil
}

func (r *fakeUserRepo) UpdatePassword(id int, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.Password = hashedPassword
	}
	return nil
}

func (r *fakeUserRepo) SetRefreshToken(id int, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.RefreshToken = token
	}
	return nil
}

func (r *fakeUserRepo) ClearRefreshToken(id int) error {
	return r.SetRefreshToken(id, "")
}

func (r *fakeUserRepo) RotateRefreshToken(id int, presented, next string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.RefreshToken != presented {
		return false, nil
	}
	u.RefreshToken = next
	return true, nil
}

type subEdge struct{ subscriber, channel int }

type fakeChannelRepo struct {
	users   *fakeUserRepo
	subs    map[subEdge]bool
	history map[int][]*model.WatchEntry
}

func newFakeChannelRepo(users *fakeUserRepo) *fakeChannelRepo {
	return &fakeChannelRepo{
		users:   users,
		subs:    map[subEdge]bool{},
		history: map[int][]*model.WatchEntry{},
	}
}

func (r *fakeChannelRepo) GetChannelStats(username string) (*model.ChannelStats, error) {
	user, err := r.users.GetByUsernameOrEmail(username)
	if err != nil {
		return nil, err
	}
	stats := &model.ChannelStats{
		ID:         user.ID,
		FullName:   user.FullName,
		Username:   user.Username,
		Email:      user.Email,
		Avatar:     user.Avatar,
		CoverImage: user.CoverImage,
	}
	for edge := range r.subs {
		if edge.channel == user.ID {
			stats.SubscriberCount++
		}
		if edge.subscriber == user.ID {
			stats.SubscribedToCount++
		}
	}
	return stats, nil
}

func (r *fakeChannelRepo) IsSubscriber(channelID, subscriberID int) (bool, error) {
	return r.subs[subEdge{subscriber: subscriberID, channel: channelID}], nil
}

func (r *fakeChannelRepo) GetWatchHistory(userID int) ([]*model.WatchEntry, error) {
	return r.history[userID], nil
}

type fakeMediaStorage struct{}

func (fakeMediaStorage) Upload(ctx context.Context, localFilePath string) (*storage.UploadResult, error) {
	return &storage.UploadResult{URL: "https://cdn.test/" + filepath.Base(localFilePath)}, nil
}

// --- Fixture ---

type fixture struct {
	router      http.Handler
	userRepo    *fakeUserRepo
	channelRepo *fakeChannelRepo
	authService *service.AuthService
}

func newFixture() *fixture {
	userRepo := newFakeUserRepo()
	channelRepo := newFakeChannelRepo(userRepo)

	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo, fakeMediaStorage{}, nil, authService)
	channelService := service.NewChannelService(channelRepo, nil)

	userHandler := handler.NewUserHandler(userService, authService)
	channelHandler := handler.NewChannelHandler(channelService)
	authMw := handler.NewAuthMiddleware(authService, userRepo)

	return &fixture{
		router:      router.NewRouter(userHandler, channelHandler, authMw),
		userRepo:    userRepo,
		channelRepo: channelRepo,
		authService: authService,
	}
}

func (f *fixture) seedUser(t *testing.T, username, email, password string) *model.User {
	t.Helper()
	hashed, err := f.authService.HashPassword(password)
	if err != nil {
		t.Fatalf("could not hash password: %v", err)
	}
	user := &model.User{
		Username: username,
		Email:    email,
		FullName: "Seeded User",
		Avatar:   "https://cdn.test/seed.png",
		Password: hashed,
	}
	if err := f.userRepo.Create(user); err != nil {
		t.Fatalf("could not seed user: %v", err)
	}
	return user
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("could not decode envelope: %v (body: %s)", err, rr.Body.String())
	}
	return env
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			t.Fatalf("could not write form field: %v", err)
		}
	}
	for field, filename := range files {
		fw, err := w.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("could not create form file: %v", err)
		}
		fw.Write([]byte("fake image bytes"))
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func responseCookie(rr *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (f *fixture) loginFor(t *testing.T, identifier, password string) (string, string) {
	t.Helper()
	body := fmt.Sprintf(`{"username": %q, "password": %q}`, identifier, password)
	req := httptest.NewRequest("POST", "/api/v1/users/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := f.do(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("login failed with status %d: %s", rr.Code, rr.Body.String())
	}
	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	env := decodeEnvelope(t, rr)
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("could not decode login data: %v", err)
	}
	return data.AccessToken, data.RefreshToken
}

// --- Test suites ---

func TestHealthCheck(t *testing.T) {
	f := newFixture()
	rr := f.do(httptest.NewRequest("GET", "/health", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "healthy") {
		t.Errorf("unexpected health body: %s", rr.Body.String())
	}
}

func TestRegister(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		f := newFixture()
		body, contentType := multipartBody(t,
			map[string]string{
				"fullName": "Jane Doe",
				"email":    "Jane@Example.com",
				"username": "JaneDoe",
				"password": "password123",
			},
			map[string]string{"avatar": "avatar.png", "coverImage": "cover.png"},
		)
		req := httptest.NewRequest("POST", "/api/v1/users/register", body)
		req.Header.Set("Content-Type", contentType)
		rr := f.do(req)

		if rr.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
		}
		env := decodeEnvelope(t, rr)
		var user model.User
		json.Unmarshal(env.Data, &user)
		if user.Username != "janedoe" {
			t.Errorf("username should be normalized, got %q", user.Username)
		}
		if user.Email != "jane@example.com" {
			t.Errorf("email should be normalized, got %q", user.Email)
		}
		if strings.Contains(rr.Body.String(), "password123") {
			t.Error("plaintext password leaked into response")
		}

		stored, _ := f.userRepo.GetByID(user.ID)
		if stored.Password == "password123" || stored.Password == "" {
			t.Error("stored password must be a hash")
		}
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		f := newFixture()
		f.seedUser(t, "janedoe", "jane@example.com", "password123")

		body, contentType := multipartBody(t,
			map[string]string{
				"fullName": "Other Jane",
				"email":    "other@example.com",
				"username": "JANEDOE",
				"password": "password123",
			},
			map[string]string{"avatar": "avatar.png"},
		)
		req := httptest.NewRequest("POST", "/api/v1/users/register", body)
		req.Header.Set("Content-Type", contentType)
		rr := f.do(req)

		if rr.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", rr.Code)
		}
		if len(f.userRepo.users) != 1 {
			t.Errorf("conflict must not create a second record, have %d", len(f.userRepo.users))
		}
	})

	t.Run("missing avatar fails", func(t *testing.T) {
		f := newFixture()
		body, contentType := multipartBody(t,
			map[string]string{
				"fullName": "Jane Doe",
				"email":    "jane@example.com",
				"username": "janedoe",
				"password": "password123",
			},
			nil,
		)
		req := httptest.NewRequest("POST", "/api/v1/users/register", body)
		req.Header.Set("Content-Type", contentType)
		rr := f.do(req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
		if len(f.userRepo.users) != 0 {
			t.Error("failed registration must persist nothing")
		}
	})

	t.Run("blank required field fails", func(t *testing.T) {
		f := newFixture()
		body, contentType := multipartBody(t,
			map[string]string{
				"fullName": "   ",
				"email":    "jane@example.com",
				"username": "janedoe",
				"password": "password123",
			},
			map[string]string{"avatar": "avatar.png"},
		)
		req := httptest.NewRequest("POST", "/api/v1/users/register", body)
		req.Header.Set("Content-Type", contentType)
		rr := f.do(req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestLogin(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "janedoe", "jane@example.com", "password123")

	t.Run("success sets both cookies and returns tokens", func(t *testing.T) {
		body := `{"email": "jane@example.com", "password": "password123"}`
		req := httptest.NewRequest("POST", "/api/v1/users/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rr := f.do(req)

		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		for _, name := range []string{"accessToken", "refreshToken"} {
			cookie := responseCookie(rr, name)
			if cookie == nil {
				t.Fatalf("missing %s cookie", name)
			}
			if !cookie.HttpOnly || !cookie.Secure {
				t.Errorf("%s cookie must be httpOnly and secure", name)
			}
		}

		env := decodeEnvelope(t, rr)
		var data struct {
			User         model.User `json:"user"`
			AccessToken  string     `json:"accessToken"`
			RefreshToken string     `json:"refreshToken"`
		}
		json.Unmarshal(env.Data, &data)
		if data.AccessToken == "" || data.RefreshToken == "" {
			t.Fatal("token pair missing from body")
		}

		claims, err := f.authService.VerifyAccessToken(data.AccessToken)
		if err != nil {
			t.Fatalf("access token does not verify: %v", err)
		}
		if claims.UserID != data.User.ID {
			t.Errorf("claims id %d != user id %d", claims.UserID, data.User.ID)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		body := `{"username": "janedoe", "password": "wrongpassword"}`
		req := httptest.NewRequest("POST", "/api/v1/users/login", strings.NewReader(body))
		rr := f.do(req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		if responseCookie(rr, "accessToken") != nil {
			t.Error("failed login must not set cookies")
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		body := `{"username": "ghost", "password": "password123"}`
		req := httptest.NewRequest("POST", "/api/v1/users/login", strings.NewReader(body))
		rr := f.do(req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("missing identifier", func(t *testing.T) {
		body := `{"password": "password123"}`
		req := httptest.NewRequest("POST", "/api/v1/users/login", strings.NewReader(body))
		rr := f.do(req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestCurrentUser(t *testing.T) {
	f := newFixture()
	seeded := f.seedUser(t, "janedoe", "jane@example.com", "password123")
	accessToken, _ := f.loginFor(t, "janedoe", "password123")

	req := httptest.NewRequest("GET", "/api/v1/users/current-user", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := f.do(req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	var user model.User
	json.Unmarshal(env.Data, &user)
	if user.ID != seeded.ID {
		t.Errorf("expected user %d, got %d", seeded.ID, user.ID)
	}
}

func TestRefreshRotationIsSingleUse(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "janedoe", "jane@example.com", "password123")
	_, firstRefresh := f.loginFor(t, "janedoe", "password123")

	// First exchange succeeds and yields a new pair.
	req := httptest.NewRequest("POST", "/api/v1/users/refresh-token", nil)
	req.AddCookie(&http.Cookie{Name: "refreshToken", Value: firstRefresh})
	rr := f.do(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("first refresh should succeed, got %d: %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	var pair service.TokenPair
	json.Unmarshal(env.Data, &pair)
	if pair.RefreshToken == "" || pair.RefreshToken == firstRefresh {
		t.Fatal("refresh must rotate to a new token")
	}

	// Replaying the superseded token fails.
	replay := httptest.NewRequest("POST", "/api/v1/users/refresh-token", nil)
	replay.AddCookie(&http.Cookie{Name: "refreshToken", Value: firstRefresh})
	rr = f.do(replay)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("replayed refresh token should be rejected, got %d", rr.Code)
	}

	// The rotated token still works, supplied via body this time.
	body := fmt.Sprintf(`{"refreshToken": %q}`, pair.RefreshToken)
	viaBody := httptest.NewRequest("POST", "/api/v1/users/refresh-token", strings.NewReader(body))
	viaBody.Header.Set("Content-Type", "application/json")
	rr = f.do(viaBody)
	if rr.Code != http.StatusOK {
		t.Fatalf("rotated token should be honored, got %d: %s", rr.Code, rr.Body.String())
	}
}

func TestLogout(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "janedoe", "jane@example.com", "password123")
	accessToken, refreshToken := f.loginFor(t, "janedoe", "password123")

	req := httptest.NewRequest("POST", "/api/v1/users/logout", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := f.do(req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	for _, name := range []string{"accessToken", "refreshToken"} {
		cookie := responseCookie(rr, name)
		if cookie == nil || cookie.MaxAge >= 0 {
			t.Errorf("%s cookie should be cleared on logout", name)
		}
	}

	// The previously issued refresh token is no longer honored.
	refresh := httptest.NewRequest("POST", "/api/v1/users/refresh-token", nil)
	refresh.AddCookie(&http.Cookie{Name: "refreshToken", Value: refreshToken})
	rr = f.do(refresh)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("refresh after logout should fail, got %d", rr.Code)
	}
}

func TestChangePassword(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "janedoe", "jane@example.com", "oldpassword")
	accessToken, _ := f.loginFor(t, "janedoe", "oldpassword")

	t.Run("wrong old password", func(t *testing.T) {
		body := `{"oldPassword": "nope", "newPassword": "newpassword"}`
		req := httptest.NewRequest("POST", "/api/v1/users/change-password", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rr := f.do(req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})

	t.Run("success invalidates the old password", func(t *testing.T) {
		body := `{"oldPassword": "oldpassword", "newPassword": "newpassword"}`
		req := httptest.NewRequest("POST", "/api/v1/users/change-password", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rr := f.do(req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}

		// Old password no longer logs in.
		old := httptest.NewRequest("POST", "/api/v1/users/login",
			strings.NewReader(`{"username": "janedoe", "password": "oldpassword"}`))
		rr = f.do(old)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("old password should be rejected, got %d", rr.Code)
		}

		f.loginFor(t, "janedoe", "newpassword")
	})
}

func TestUpdateAccountDetails(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "janedoe", "jane@example.com", "password123")
	accessToken, _ := f.loginFor(t, "janedoe", "password123")

	t.Run("success", func(t *testing.T) {
		body := `{"fullName": "Jane Smith", "email": "jane.smith@example.com"}`
		req := httptest.NewRequest("PATCH", "/api/v1/users/update-account", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rr := f.do(req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		env := decodeEnvelope(t, rr)
		var user model.User
		json.Unmarshal(env.Data, &user)
		if user.FullName != "Jane Smith" {
			t.Errorf("full name not updated, got %q", user.FullName)
		}
	})

	t.Run("missing field", func(t *testing.T) {
		body := `{"fullName": "Jane Smith"}`
		req := httptest.NewRequest("PATCH", "/api/v1/users/update-account", strings.NewReader(body))
		req.Header.Set("Authorization", "Bearer "+accessToken)
		rr := f.do(req)
		if rr.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rr.Code)
		}
	})
}

func TestUpdateAvatar(t *testing.T) {
	f := newFixture()
	f.seedUser(t, "janedoe", "jane@example.com", "password123")
	accessToken, _ := f.loginFor(t, "janedoe", "password123")

	body, contentType := multipartBody(t, nil, map[string]string{"avatar": "new-avatar.png"})
	req := httptest.NewRequest("PATCH", "/api/v1/users/avatar", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := f.do(req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	env := decodeEnvelope(t, rr)
	var user model.User
	json.Unmarshal(env.Data, &user)
	if !strings.HasPrefix(user.Avatar, "https://cdn.test/") {
		t.Errorf("avatar reference not updated, got %q", user.Avatar)
	}
}

func TestChannelProfile(t *testing.T) {
	f := newFixture()
	channel := f.seedUser(t, "channelguy", "channel@example.com", "password123")
	viewer := f.seedUser(t, "viewer", "viewer@example.com", "password123")
	sub2 := f.seedUser(t, "sub2", "sub2@example.com", "password123")
	sub3 := f.seedUser(t, "sub3", "sub3@example.com", "password123")
	outgoing := f.seedUser(t, "other", "other@example.com", "password123")

	// Three incoming edges, one outgoing.
	f.channelRepo.subs[subEdge{subscriber: viewer.ID, channel: channel.ID}] = true
	f.channelRepo.subs[subEdge{subscriber: sub2.ID, channel: channel.ID}] = true
	f.channelRepo.subs[subEdge{subscriber: sub3.ID, channel: channel.ID}] = true
	f.channelRepo.subs[subEdge{subscriber: channel.ID, channel: outgoing.ID}] = true

	viewerToken, _ := f.loginFor(t, "viewer", "password123")
	otherToken, _ := f.loginFor(t, "other", "password123")

	t.Run("subscribed viewer", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/c/channelguy", nil)
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := f.do(req)
		if rr.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
		}
		env := decodeEnvelope(t, rr)
		var profile model.ChannelProfile
		json.Unmarshal(env.Data, &profile)
		if profile.SubscriberCount != 3 {
			t.Errorf("expected subscriberCount 3, got %d", profile.SubscriberCount)
		}
		if profile.SubscribedToCount != 1 {
			t.Errorf("expected subscribedToCount 1, got %d", profile.SubscribedToCount)
		}
		if !profile.IsSubscribed {
			t.Error("viewer is a subscriber, flag should be true")
		}
	})

	t.Run("non-subscribed viewer", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/c/channelguy", nil)
		req.Header.Set("Authorization", "Bearer "+otherToken)
		rr := f.do(req)
		env := decodeEnvelope(t, rr)
		var profile model.ChannelProfile
		json.Unmarshal(env.Data, &profile)
		if profile.IsSubscribed {
			t.Error("non-subscriber viewer, flag should be false")
		}
	})

	t.Run("unknown channel", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/c/ghost", nil)
		req.Header.Set("Authorization", "Bearer "+viewerToken)
		rr := f.do(req)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rr.Code)
		}
	})

	t.Run("unauthenticated", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/users/c/channelguy", nil)
		rr := f.do(req)
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
	})
}

func TestWatchHistory(t *testing.T) {
	f := newFixture()
	user := f.seedUser(t, "janedoe", "jane@example.com", "password123")
	f.channelRepo.history[user.ID] = []*model.WatchEntry{
		{VideoID: "v2", WatchedAt: time.Now()},
		{VideoID: "v1", WatchedAt: time.Now().Add(-time.Hour)},
	}
	accessToken, _ := f.loginFor(t, "janedoe", "password123")

	req := httptest.NewRequest("GET", "/api/v1/users/history", nil)
	req.Header.Set("Authorization", "Bearer "+accessToken)
	rr := f.do(req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	env := decodeEnvelope(t, rr)
	var history []model.WatchEntry
	json.Unmarshal(env.Data, &history)
	if len(history) != 2 || history[0].VideoID != "v2" {
		t.Errorf("unexpected history: %+v", history)
	}
}
