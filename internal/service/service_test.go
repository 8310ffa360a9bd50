package service

import (
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/d60-Lab/sns-service/internal/model"
)

// 测试基座：sqlite 内存库 + miniredis
// TranslateError 必须开，服务层依赖 gorm.ErrDuplicatedKey

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Member{}, &model.Follow{}, &model.Block{}, &model.ProfileImage{},
		&model.Post{}, &model.Outbox{}, &model.Inbox{}, &model.Notification{},
	))
	return db
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

var (
	secretHashOnce sync.Once
	secretHash     string
)

// 所有种子会员共用密码 "secret"，MinCost 散列只算一次
func seedPasswordHash(t *testing.T) string {
	t.Helper()
	secretHashOnce.Do(func() {
		hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
		require.NoError(t, err)
		secretHash = string(hash)
	})
	return secretHash
}

func seedMember(t *testing.T, db *gorm.DB, id string, visibility model.Visibility) *model.Member {
	t.Helper()
	m := &model.Member{
		ID:         id,
		Name:       id,
		Nickname:   "nick-" + id,
		Email:      id + "@example.com",
		Password:   seedPasswordHash(t),
		Role:       model.RoleMember,
		Activation: model.ActivationActive,
		Visibility: visibility,
	}
	require.NoError(t, db.Create(m).Error)
	return m
}
