package controller

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/back-pedagogico/stories-backend/internal/app/model"
	"github.com/back-pedagogico/stories-backend/internal/app/repository"
	"github.com/back-pedagogico/stories-backend/internal/app/service"
	"github.com/back-pedagogico/stories-backend/internal/db"
	"github.com/back-pedagogico/stories-backend/internal/media"
	"github.com/back-pedagogico/stories-backend/internal/middleware"
	"github.com/back-pedagogico/stories-backend/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret      = "test-secret"
	testAdminName      = "admin1"
	testAdminPassword  = "correct"
	testMaxUploadBytes = 1 << 20
)

type testEnv struct {
	router    *gin.Engine
	db        *gorm.DB
	auth      service.AuthService
	stories   service.StoryService
	admin     *model.AdminUser
	token     string
	uploadDir string
}

// setupControllerTest wires every controller against an in-memory database
// and a temporary upload directory, with one admin already logged in.
func setupControllerTest(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	uploadDir := t.TempDir()
	store, err := storage.NewLocalStorage(uploadDir)
	require.NoError(t, err)

	adminRepo := repository.NewAdminUserRepository(testDB)
	personRepo := repository.NewPersonRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	storyRepo := repository.NewStoryRepository(testDB)
	imageRepo := repository.NewImageRepository(testDB)

	authService := service.NewAuthService(adminRepo, testJWTSecret, 15*time.Minute, nil)
	storyService := service.NewStoryService(testDB, storyRepo, personRepo, tagRepo)
	publicService := service.NewPublicStoryService(storyRepo, "es")
	personService := service.NewPersonService(testDB, personRepo, imageRepo, store)
	tagService := service.NewTagService(testDB, tagRepo)
	imageService := service.NewImageService(imageRepo, personRepo, store, media.NewProcessor(store, 32),
		[]string{"png", "jpg", "jpeg", "gif", "webp"})

	authCtrl := NewAuthController(authService)
	storyCtrl := NewStoryController(storyService, "es")
	publicCtrl := NewPublicStoryController(publicService)
	personCtrl := NewPersonController(personService)
	tagCtrl := NewTagController(tagService)
	imageCtrl := NewImageController(imageService)
	uploadCtrl := NewUploadController(imageService)
	auth := middleware.NewAuthMiddleware(testJWTSecret, nil)

	router := gin.New()
	router.POST("/api/admin/login", authCtrl.Login)
	router.POST("/api/admin/logout", auth.Authenticate(), authCtrl.Logout)
	router.GET("/api/admin/me", auth.Authenticate(), authCtrl.GetMe)
	router.GET("/api/public/stories", publicCtrl.ListStories)
	router.GET("/api/public/stories/:id", publicCtrl.GetStory)
	router.GET("/api/uploads/:filename", uploadCtrl.ServeFile)

	protected := router.Group("/api", auth.Authenticate())
	protected.POST("/stories", storyCtrl.CreateStory)
	protected.GET("/stories", storyCtrl.ListStories)
	protected.GET("/stories/:id", storyCtrl.GetStory)
	protected.PUT("/stories/:id", storyCtrl.UpdateStory)
	protected.DELETE("/stories/:id", storyCtrl.DeleteStory)
	protected.POST("/persons", personCtrl.CreatePerson)
	protected.GET("/persons", personCtrl.ListPersons)
	protected.GET("/persons/:id", personCtrl.GetPerson)
	protected.PUT("/persons/:id", personCtrl.UpdatePerson)
	protected.DELETE("/persons/:id", personCtrl.DeletePerson)
	protected.POST("/persons/:id/images", middleware.BodyLimit(testMaxUploadBytes), imageCtrl.UploadImage)
	protected.GET("/persons/:id/images", imageCtrl.ListImages)
	protected.DELETE("/images/:id", imageCtrl.DeleteImage)
	protected.POST("/tags", tagCtrl.CreateTag)
	protected.GET("/tags", tagCtrl.ListTags)
	protected.GET("/tags/:id", tagCtrl.GetTag)
	protected.PUT("/tags/:id", tagCtrl.UpdateTag)
	protected.DELETE("/tags/:id", tagCtrl.DeleteTag)

	env := &testEnv{
		router:    router,
		db:        testDB,
		auth:      authService,
		stories:   storyService,
		uploadDir: uploadDir,
	}

	admin, err := authService.CreateAdmin(t.Context(), testAdminName, testAdminPassword)
	require.NoError(t, err)
	env.admin = admin

	login, err := authService.Login(t.Context(), testAdminName, testAdminPassword)
	require.NoError(t, err)
	env.token = login.AccessToken

	return env
}

func (e *testEnv) do(method, path string, body io.Reader, contentType string, authorized bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authorized {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// doJSON sends an authorized request with v encoded as the body. A string is sent verbatim.
func (e *testEnv) doJSON(t *testing.T, method, path string, v interface{}) *httptest.ResponseRecorder {
	var body io.Reader
	switch b := v.(type) {
	case nil:
	case string:
		body = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(v)
		require.NoError(t, err)
		body = bytes.NewBuffer(raw)
	}
	return e.do(method, path, body, "application/json", true)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func (e *testEnv) person(t *testing.T, origin string) *model.Person {
	person := &model.Person{Origin: origin}
	require.NoError(t, e.db.Create(person).Error)
	return person
}

func (e *testEnv) tag(t *testing.T, name string) *model.Tag {
	tag := &model.Tag{Name: name}
	require.NoError(t, e.db.Create(tag).Error)
	return tag
}

func (e *testEnv) count(t *testing.T, table string) int64 {
	var n int64
	require.NoError(t, e.db.Table(table).Count(&n).Error)
	return n
}
