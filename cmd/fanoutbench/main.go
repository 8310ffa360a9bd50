package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/d60-Lab/sns-service/config"
	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/internal/service"
	"github.com/d60-Lab/sns-service/pkg/database"
)

// 发帖扩散压测：一个大 V 带 FOLLOWERS 个粉丝，连续发 POSTS 篇帖子，
// 观察 outbox 认领到收件箱落地的延迟分布。
func main() {
	cfg, err := config.Load()
	if err != nil { panic(err) }
	db, err := database.InitDB(cfg)
	if err != nil { panic(err) }

	FOLLOWERS := 10000
	if s := os.Getenv("FOLLOWERS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 { FOLLOWERS = v }
	}
	POSTS := 20
	if s := os.Getenv("POSTS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 { POSTS = v }
	}
	WORKERS := 4
	if s := os.Getenv("WORKERS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 { WORKERS = v }
	}

	memberRepo := repository.NewMemberRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	feedRepo := repository.NewSingleFeedRepository(db)

	// seed celebrity + followers
	celeb := model.Member{ID: "c0", Name: "c0", Nickname: "c0", Email: "c0@example.com",
		Password: "p", Visibility: model.VisibilityPublic, Activation: model.ActivationActive, Role: model.RoleMember}
	_ = db.Where("id = ?", celeb.ID).FirstOrCreate(&celeb).Error
	ctx := context.Background()
	batch := 1000
	follows := make([]model.Follow, 0, batch)
	for i := 0; i < FOLLOWERS; i++ {
		id := uuid.New().String()
		m := model.Member{ID: id, Name: "f" + id[:8], Nickname: "f" + id[:8], Email: id[:8] + "@example.com",
			Password: "p", Visibility: model.VisibilityPublic, Activation: model.ActivationActive, Role: model.RoleMember}
		_ = db.Create(&m).Error
		follows = append(follows, model.Follow{ID: uuid.New().String(), FollowerID: id, FollowingID: celeb.ID})
		if len(follows) == batch {
			_ = db.Create(&follows).Error
			follows = follows[:0]
		}
	}
	if len(follows) > 0 {
		_ = db.Create(&follows).Error
	}

	relation := service.NewBlockFollowRelation(followRepo, blockRepo, nil)
	accessPolicy := service.NewAccessPolicy(followRepo, relation)
	postSvc := service.NewPostService(db, postRepo, feedRepo, memberRepo, accessPolicy)

	worker := service.NewFanoutWorker(db, followRepo, feedRepo, WORKERS, 500, 0, 0)
	metrics := worker.Metrics()
	recs := make([]time.Duration, 0, POSTS)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case d := <-metrics:
				recs = append(recs, d)
				if len(recs) == POSTS { close(done); return }
			case <-time.After(2 * time.Minute):
				close(done)
				return
			}
		}
	}()
	stop := worker.Start()

	t0 := time.Now()
	for i := 0; i < POSTS; i++ {
		if _, err := postSvc.Publish(ctx, celeb.ID, fmt.Sprintf("post %d", i), "body"); err != nil {
			panic(err)
		}
	}
	<-done
	total := time.Since(t0)
	_ = stop(ctx)

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 { return 0 }
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(float64(len(xs)) * p)
		if k >= len(xs) { k = len(xs) - 1 }
		return xs[k]
	}

	var cnt int64
	db.Model(&model.Inbox{}).Count(&cnt)
	fmt.Printf("FOLLOWERS=%d POSTS=%d WORKERS=%d\n", FOLLOWERS, POSTS, WORKERS)
	fmt.Printf("Total wall time: %v, inbox rows: %d\n", total, cnt)
	fmt.Printf("Fanout landing: samples=%d p50=%v p95=%v p99=%v\n",
		len(recs), pct(recs, 0.50), pct(recs, 0.95), pct(recs, 0.99))
}
