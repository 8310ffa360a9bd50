package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/internal/service"
)

type request struct {
	page int
	size int
}

func main() {
	ctx := context.Background()

	// Use PostgreSQL for realistic testing
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=postgres port=5434 sslmode=disable"
	}

	db := must(gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true}))

	// Clean up existing test data
	mustDo(db.Exec("DROP TABLE IF EXISTS follows CASCADE").Error)
	mustDo(db.Exec("DROP TABLE IF EXISTS members CASCADE").Error)

	mustDo(db.AutoMigrate(&model.Member{}, &model.Follow{}))

	const (
		memberCount = 20000 // 20k members in system
		ttl         = 10 * time.Minute
	)

	fmt.Println("Setting up test data...")

	// Three celebrities with overlapping follower sets, so snapshot keys get shared
	celebs := make([]model.Member, 3)
	for i := range celebs {
		id := fmt.Sprintf("celeb%d", i+1)
		celebs[i] = model.Member{ID: id, Name: id, Nickname: id, Email: id + "@example.com",
			Password: "secret", Visibility: model.VisibilityPublic, Activation: model.ActivationActive, Role: model.RoleMember}
		mustDo(db.Create(&celebs[i]).Error)
	}

	members := make([]model.Member, memberCount)
	base := time.Now()
	for i := 0; i < memberCount; i++ {
		id := uuid.NewString()
		members[i] = model.Member{ID: id, Name: fmt.Sprintf("member_%d", i), Nickname: fmt.Sprintf("member_%d", i),
			Email: fmt.Sprintf("member_%d@example.com", i), Password: "secret",
			Visibility: model.VisibilityPublic, Activation: model.ActivationActive, Role: model.RoleMember}
	}
	mustDo(db.CreateInBatches(&members, 1000).Error)

	// celeb1: followers 0-9999; celeb2: 5000-14999; celeb3: rotated overlap with celeb2
	half := memberCount / 2
	for ci, start := range []int{0, memberCount / 4, memberCount * 3 / 8} {
		rows := make([]model.Follow, half)
		for i := 0; i < half; i++ {
			rows[i] = model.Follow{
				ID:          uuid.NewString(),
				FollowerID:  members[(i+start)%memberCount].ID,
				FollowingID: celebs[ci].ID,
				BaseTime:    model.BaseTime{CreatedAt: base.Add(-time.Duration(i) * time.Second)},
			}
		}
		mustDo(db.CreateInBatches(&rows, 1000).Error)
	}
	fmt.Println("Test data ready: 3 celebrities with overlapping followers")

	// Use real Redis
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6380"
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	if err := client.Ping(ctx).Err(); err != nil {
		panic(fmt.Sprintf("Failed to connect to Redis at %s: %v", redisAddr, err))
	}

	followRepo := repository.NewFollowRepository(db)
	memberRepo := repository.NewMemberRepository(db)
	cache := service.NewFollowerListCache(followRepo, memberRepo, client, ttl)

	// Mix paged requests across the 3 celebrities
	allReqs := make([]struct {
		memberID string
		req      request
	}, 0, 9000)
	for _, c := range celebs {
		for _, r := range makeRequests(3000) {
			allReqs = append(allReqs, struct {
				memberID string
				req      request
			}{c.ID, r})
		}
	}

	noCache := runScenario(ctx, allReqs, false, client, func(ctx context.Context, memberID string, r request) error {
		_, err := followRepo.ListFollowers(ctx, memberID, (r.page-1)*r.size, r.size)
		return err
	})
	cached := runScenario(ctx, allReqs, true, client, func(ctx context.Context, memberID string, r request) error {
		_, err := cache.FetchFollowers(ctx, memberID, r.page, r.size)
		return err
	})

	fmt.Println("\nFollower list latency (9k req across 3 celebrities, 20k members, PostgreSQL + Redis)")
	fmt.Printf("%-22s avg=%v p95=%v p99=%v cache_keys=%d mem=%s\n",
		"No cache", avg(noCache.durations), pct(noCache.durations, 0.95), pct(noCache.durations, 0.99),
		noCache.cacheKeys, formatBytes(noCache.memoryBytes))
	fmt.Printf("%-22s avg=%v p95=%v p99=%v cache_keys=%d mem=%s\n",
		"Index+snapshot cache", avg(cached.durations), pct(cached.durations, 0.95), pct(cached.durations, 0.99),
		cached.cacheKeys, formatBytes(cached.memoryBytes))
}

type scenarioResult struct {
	durations   []time.Duration
	cacheKeys   int
	memoryBytes int64
}

func runScenario(ctx context.Context, reqs []struct {
	memberID string
	req      request
}, warm bool, client *redis.Client, call func(context.Context, string, request) error) scenarioResult {
	client.FlushAll(ctx)

	if warm {
		fmt.Print("  Warming cache...")
		for _, r := range reqs {
			if err := call(ctx, r.memberID, r.req); err != nil {
				panic(err)
			}
		}
		fmt.Println(" done")
	}

	fmt.Print("  Running benchmark...")
	out := make([]time.Duration, 0, len(reqs))
	for _, r := range reqs {
		start := time.Now()
		if err := call(ctx, r.memberID, r.req); err != nil {
			panic(err)
		}
		out = append(out, time.Since(start))
	}
	fmt.Println(" done")

	keys, _ := client.Keys(ctx, "*").Result()
	info, err := client.Info(ctx, "memory").Result()
	var memBytes int64
	if err == nil {
		memBytes = parseRedisMemory(info)
	}
	return scenarioResult{durations: out, cacheKeys: len(keys), memoryBytes: memBytes}
}

func makeRequests(n int) []request {
	reqs := make([]request, n)
	for i := range reqs {
		reqs[i] = request{page: 1 + rand.Intn(20), size: 50}
	}
	return reqs
}

func avg(vs []time.Duration) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range vs {
		sum += v
	}
	return sum / time.Duration(len(vs))
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	if k < 0 {
		k = 0
	}
	if k >= len(xs) {
		k = len(xs) - 1
	}
	return xs[k]
}

func parseRedisMemory(info string) int64 {
	for _, line := range strings.Split(info, "\r\n") {
		if strings.HasPrefix(line, "used_memory:") {
			var v int64
			fmt.Sscanf(line, "used_memory:%d", &v)
			return v
		}
	}
	return 0
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%dB", b)
	}
}

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}
