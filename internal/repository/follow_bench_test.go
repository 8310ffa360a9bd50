package repository

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
)

func setupRelBenchDB(b *testing.B) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		b.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.Member{}, &model.Follow{}, &model.Block{}); err != nil {
		b.Fatalf("migrate: %v", err)
	}
	return db
}

func benchMember(id string) model.Member {
	return model.Member{ID: id, Name: id, Nickname: id, Email: id + "@example.com",
		Password: "p", Visibility: model.VisibilityPublic, Activation: model.ActivationActive, Role: model.RoleMember}
}

func BenchmarkFollowWrite(b *testing.B) {
	db := setupRelBenchDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	// 预创建部分会员
	members := make([]model.Member, 1000)
	for i := range members {
		members[i] = benchMember(fmt.Sprintf("m%04d", i))
	}
	if err := db.Create(&members).Error; err != nil {
		b.Fatalf("seed members: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		from := members[rand.Intn(len(members))].ID
		to := members[rand.Intn(len(members))].ID
		if from == to {
			continue
		}
		_ = followRepo.Create(ctx, from, to)
	}
}

func BenchmarkQueryFollowersAndFollowings(b *testing.B) {
	db := setupRelBenchDB(b)
	followRepo := NewFollowRepository(db)
	ctx := context.Background()

	// 构造：M0 有 N 个粉丝，同时 M0 也关注 N 个会员
	const N = 5000
	m0 := benchMember("m0")
	_ = db.Create(&m0).Error
	for i := 1; i <= N; i++ {
		mid := fmt.Sprintf("m%v", i)
		m := benchMember(mid)
		_ = db.Create(&m).Error
		_ = followRepo.Create(ctx, mid, m0.ID) // 关注 m0
		_ = followRepo.Create(ctx, m0.ID, mid) // m0 关注别人
	}

	b.ResetTimer()
	b.Run("ListFollowers", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.ListFollowers(ctx, m0.ID, 0, 50)
		}
	})

	b.Run("ListFollowings", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.ListFollowings(ctx, m0.ID, 0, 50)
		}
	})

	b.Run("CountFollowers", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_, _ = followRepo.CountFollowers(ctx, m0.ID)
		}
	})
}
