package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/internal/service"
)

func newCheckRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Member{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	memberSvc := service.NewMemberService(repository.NewMemberRepository(db), service.NewLogMailer(), rdb)

	h := &Handler{memberSvc: memberSvc}
	r := gin.New()
	r.GET("/check/nickname", h.CheckNickname)
	r.GET("/check/email", h.CheckEmail)
	return r, db
}

type checkPayload struct {
	Code int `json:"code"`
	Data struct {
		Duplicated bool `json:"duplicated"`
	} `json:"data"`
}

func doCheck(t *testing.T, r *gin.Engine, path string) checkPayload {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var payload checkPayload
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &payload))
	return payload
}

func TestCheckNicknameDuplicated(t *testing.T) {
	r, db := newCheckRouter(t)
	require.NoError(t, db.Create(&model.Member{
		ID:       "m1",
		Name:     "alice",
		Nickname: "taken",
		Email:    "alice@example.com",
		Password: "x",
	}).Error)

	// 已占用昵称必须报 duplicated=true
	payload := doCheck(t, r, "/check/nickname?nickname=taken")
	assert.True(t, payload.Data.Duplicated)

	payload = doCheck(t, r, "/check/nickname?nickname=fresh")
	assert.False(t, payload.Data.Duplicated)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/check/nickname", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckEmailDuplicated(t *testing.T) {
	r, db := newCheckRouter(t)
	require.NoError(t, db.Create(&model.Member{
		ID:       "m1",
		Name:     "alice",
		Nickname: "alice",
		Email:    "taken@example.com",
		Password: "x",
	}).Error)

	payload := doCheck(t, r, "/check/email?email=taken@example.com")
	assert.True(t, payload.Data.Duplicated)

	payload = doCheck(t, r, "/check/email?email=fresh@example.com")
	assert.False(t, payload.Data.Duplicated)
}
