package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/d60-Lab/sns-service/config"
	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/internal/service"
	"github.com/d60-Lab/sns-service/pkg/database"
)

func must[T any](v T, err error) T { if err != nil { panic(err) }; return v }

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	rdb := must(database.InitRedis(cfg))

	// repositories & services
	memberRepo := repository.NewMemberRepository(db)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	relation := service.NewBlockFollowRelation(followRepo, blockRepo, rdb)
	accessPolicy := service.NewAccessPolicy(followRepo, relation)
	followerCache := service.NewFollowerListCache(followRepo, memberRepo, rdb, 10*time.Minute)
	notifier := service.NewNotifier(notificationRepo, 100000)
	stop := notifier.Start(8)
	followSvc := service.NewFollowService(followRepo, memberRepo, relation, accessPolicy, followerCache, rdb, notifier)

	ctx := context.Background()

	N := 10000
	if s := os.Getenv("N"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 { N = n }
	}
	CONC := 1
	if s := os.Getenv("CONC"); s != "" {
		if c, err := strconv.Atoi(s); err == nil && c > 0 { CONC = c }
	}
	PAGE := 50
	if s := os.Getenv("PAGE"); s != "" {
		if p, err := strconv.Atoi(s); err == nil && p > 0 { PAGE = p }
	}

	// seed members: m0 is celebrity; others follow m0
	pw, _ := bcrypt.GenerateFromPassword([]byte("p"), bcrypt.MinCost)
	celeb := model.Member{ID: "m0", Name: "m0", Nickname: "m0", Email: "m0@example.com",
		Password: string(pw), Visibility: model.VisibilityPublic, Activation: model.ActivationActive, Role: model.RoleMember}
	_ = db.Where("id = ?", celeb.ID).FirstOrCreate(&celeb).Error
	members := make([]model.Member, N)
	batch := 1000
	for i := 0; i < N; i++ {
		id := uuid.New().String()
		members[i] = model.Member{ID: id, Name: "m" + id[:8], Nickname: "m" + id[:8], Email: id[:8] + "@example.com",
			Password: string(pw), Visibility: model.VisibilityPublic, Activation: model.ActivationActive, Role: model.RoleMember}
		if (i+1)%batch == 0 {
			sub := members[i+1-batch : i+1]
			_ = db.Create(&sub).Error
		}
	}
	if N%batch != 0 {
		sub := members[N-N%batch:]
		_ = db.Create(&sub).Error
	}

	// measure follow with async notification, with concurrency
	followRecs := make([]time.Duration, 0, N)
	followCh := make(chan time.Duration, N)
	// metrics for notification landing
	notifyMetrics := notifier.Metrics()
	notifyRecs := make([]time.Duration, 0, N)
	doneNotify := make(chan struct{})
	go func() {
		timeout := time.NewTimer(5 * time.Minute)
		defer timeout.Stop()
		for {
			select {
			case d := <-notifyMetrics:
				notifyRecs = append(notifyRecs, d)
			case <-doneNotify:
				return
			case <-timeout.C:
				return
			}
		}
	}()

	maxQ := 0
	quitSample := make(chan struct{})
	go func() {
		ticker := time.NewTicker(50 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if q := notifier.QueueLen(); q > maxQ { maxQ = q }
			case <-quitSample:
				return
			}
		}
	}()

	t0 := time.Now()
	workers := CONC
	if workers > N { workers = N }
	errCh := make(chan error, workers)
	feed := make(chan int, N)
	for i := 0; i < N; i++ { feed <- i }
	close(feed)
	for w := 0; w < workers; w++ {
		go func() {
			for i := range feed {
				st := time.Now()
				_ = followSvc.Follow(ctx, members[i].ID, celeb.ID)
				followCh <- time.Since(st)
			}
			errCh <- nil
		}()
	}
	for w := 0; w < workers; w++ { <-errCh }
	close(followCh)
	for d := range followCh { followRecs = append(followRecs, d) }
	followDur := time.Since(t0)
	close(quitSample)

	drainStart := time.Now()
	time.Sleep(500 * time.Millisecond)

	// queries
	q0 := time.Now()
	_, _ = followSvc.GetFollowerList(ctx, "", celeb.ID, 1, PAGE)
	followerDur := time.Since(q0)

	q1 := time.Now()
	_, _ = followSvc.GetFollowerCount(ctx, celeb.ID)
	countDur := time.Since(q1)

	_ = stop(context.Background())
	drainDur := time.Since(drainStart)
	close(doneNotify)

	// Percentiles helper
	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 { return 0 }
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 { k = 0 }
		if k >= len(xs) { k = len(xs)-1 }
		return xs[k]
	}

	fmt.Printf("N=%d, CONC=%d, PAGE=%d\n", N, CONC, PAGE)
	fmt.Printf("Follow latency total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		followDur, followDur/time.Duration(N), pct(followRecs, 0.50), pct(followRecs, 0.95), pct(followRecs, 0.99))
	fmt.Printf("Query followers(%d) latency: %v\n", PAGE, followerDur)
	fmt.Printf("Query follower count latency: %v\n", countDur)
	if len(notifyRecs) > 0 {
		fmt.Printf("Notification landing: samples=%d, p50=%v, p95=%v, p99=%v, maxQueue=%d, drain=%v\n",
			len(notifyRecs), pct(notifyRecs, 0.50), pct(notifyRecs, 0.95), pct(notifyRecs, 0.99), maxQ, drainDur)
	}
}
