package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
)

const (
	// 测试参数
	MemberCount     = 10000 // 1万会员
	ItemsPerMember  = 10    // 每个会员10条时间线
	BenchDuration   = 30    // 查询压测时长（秒）
	ConcurrentLevel = 100   // 并发数

	// 数据库连接参数
	SingleDBPort     = 5434
	ShardDBStartPort = 5440
)

type BenchResult struct {
	Name            string
	Duration        time.Duration
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	QPS             float64
	AvgLatency      time.Duration
	P50Latency      time.Duration
	P95Latency      time.Duration
	P99Latency      time.Duration
}

func main() {
	ctx := context.Background()

	fmt.Println("===== 时间线分库分表压测 =====")
	fmt.Printf("会员数: %d\n", MemberCount)
	fmt.Printf("每会员时间线条数: %d\n", ItemsPerMember)
	fmt.Printf("查询压测时长: 每场景 %d秒\n", BenchDuration)
	fmt.Printf("并发数: %d\n\n", ConcurrentLevel)

	// ========== 单库压测 ==========
	fmt.Println(">>> 准备单库环境...")
	singleRepo := prepareSingleDB()
	if singleRepo == nil {
		fmt.Println("单库初始化失败")
		return
	}
	defer singleRepo.Close()

	items := generateTimelineItems()
	fmt.Printf("生成了 %d 条时间线数据\n\n", len(items))

	fmt.Println("===== 单库压测 - 写入时间线 =====")
	singleInsert := benchInsert(ctx, singleRepo, items, "单库")
	printBenchResult(singleInsert)

	fmt.Println("\n===== 单库压测 - 按会员查询时间线 =====")
	singleQuery := benchQueryTimeline(ctx, singleRepo, "单库")
	printBenchResult(singleQuery)

	singleRepo.Close()

	// ========== 分库分表压测 ==========
	fmt.Println("\n>>> 准备分库分表环境...")
	shardedRepo := prepareShardedDB()
	if shardedRepo == nil {
		fmt.Println("分库分表初始化失败")
		return
	}
	defer shardedRepo.Close()

	fmt.Println("===== 分库分表压测 - 写入时间线 =====")
	shardedInsert := benchInsert(ctx, shardedRepo, items, "分库分表")
	printBenchResult(shardedInsert)

	fmt.Println("\n===== 分库分表压测 - 按会员查询时间线 =====")
	shardedQuery := benchQueryTimeline(ctx, shardedRepo, "分库分表")
	printBenchResult(shardedQuery)

	// ========== 打印对比总结 ==========
	fmt.Println("\n===== 性能对比总结 =====")
	printComparison("写入时间线", singleInsert, shardedInsert)
	printComparison("按会员查询", singleQuery, shardedQuery)

	fmt.Println("\n✅ 压测完成！")
}

// prepareSingleDB 准备单库环境
func prepareSingleDB() repository.FeedRepository {
	dsn := fmt.Sprintf("host=localhost user=postgres password=postgres dbname=sns port=%d sslmode=disable", SingleDBPort)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Printf("连接单库失败: %v\n", err)
		return nil
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(200)
	sqlDB.SetMaxIdleConns(50)

	repo := repository.NewSingleFeedRepository(db)

	db.Exec("DROP TABLE IF EXISTS inbox")
	if err := repo.InitSchema(); err != nil {
		fmt.Printf("初始化单库表结构失败: %v\n", err)
		return nil
	}

	fmt.Println("单库环境准备完成")
	return repo
}

// prepareShardedDB 准备分库分表环境
func prepareShardedDB() repository.FeedRepository {
	var dbs []*gorm.DB

	for i := 0; i < repository.FeedShardCount; i++ {
		port := ShardDBStartPort + i
		dbName := fmt.Sprintf("feed_shard_%d", i)
		dsn := fmt.Sprintf("host=localhost user=postgres password=postgres dbname=%s port=%d sslmode=disable", dbName, port)

		db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Silent),
		})
		if err != nil {
			fmt.Printf("连接分片数据库 %d 失败: %v\n", i, err)
			return nil
		}

		sqlDB, _ := db.DB()
		sqlDB.SetMaxOpenConns(150)
		sqlDB.SetMaxIdleConns(30)

		dbs = append(dbs, db)

		for j := 0; j < repository.FeedTableCount; j++ {
			db.Exec(fmt.Sprintf("DROP TABLE IF EXISTS inbox_%d", j))
		}
	}

	repo, err := repository.NewShardedFeedRepository(dbs)
	if err != nil {
		fmt.Printf("创建分库分表仓储失败: %v\n", err)
		return nil
	}
	if err := repo.InitSchema(); err != nil {
		fmt.Printf("初始化分库分表表结构失败: %v\n", err)
		return nil
	}

	fmt.Println("分库分表环境准备完成")
	return repo
}

// generateTimelineItems 生成测试时间线数据
func generateTimelineItems() []model.Inbox {
	items := make([]model.Inbox, 0, MemberCount*ItemsPerMember)
	baseTime := time.Now().Add(-30 * 24 * time.Hour)

	for m := 0; m < MemberCount; m++ {
		memberID := fmt.Sprintf("member-%05d", m)
		for i := 0; i < ItemsPerMember; i++ {
			created := baseTime.Add(time.Duration(rand.Intn(30*24*60)) * time.Minute)
			items = append(items, model.Inbox{
				ID:        uuid.New().String(),
				MemberID:  memberID,
				PostID:    uuid.New().String(),
				AuthorID:  fmt.Sprintf("author-%03d", rand.Intn(500)),
				Score:     created.UnixMilli(),
				CreatedAt: created,
			})
		}
	}
	return items
}

// benchInsert 压测批量写入性能
func benchInsert(ctx context.Context, repo repository.FeedRepository, items []model.Inbox, name string) *BenchResult {
	var (
		totalRequests   int64
		successRequests int64
		failedRequests  int64
		latencies       []time.Duration
		latencyMu       sync.Mutex
		wg              sync.WaitGroup
	)

	const batchSize = 100
	batches := make([][]model.Inbox, 0, len(items)/batchSize+1)
	for i := 0; i < len(items); i += batchSize {
		end := i + batchSize
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[i:end])
	}

	fmt.Printf("开始写入 %d 条（%d 批）...\n", len(items), len(batches))
	startTime := time.Now()

	for w := 0; w < ConcurrentLevel; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for bi := workerID; bi < len(batches); bi += ConcurrentLevel {
				reqStart := time.Now()
				err := repo.AddBatch(ctx, batches[bi])
				latency := time.Since(reqStart)

				atomic.AddInt64(&totalRequests, 1)
				if err != nil {
					atomic.AddInt64(&failedRequests, 1)
				} else {
					atomic.AddInt64(&successRequests, 1)
				}
				latencyMu.Lock()
				latencies = append(latencies, latency)
				latencyMu.Unlock()
			}
		}(w)
	}
	wg.Wait()

	duration := time.Since(startTime)
	fmt.Printf("✅ 写入完成！耗时: %v\n", duration.Round(time.Second))
	return calculateResult(name, duration, totalRequests, successRequests, failedRequests, latencies)
}

// benchQueryTimeline 压测按会员查询时间线
func benchQueryTimeline(ctx context.Context, repo repository.FeedRepository, name string) *BenchResult {
	var (
		totalRequests   int64
		successRequests int64
		failedRequests  int64
		latencies       []time.Duration
		latencyMu       sync.Mutex
		wg              sync.WaitGroup
	)

	startTime := time.Now()
	stopTime := startTime.Add(BenchDuration * time.Second)

	for i := 0; i < ConcurrentLevel; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(stopTime) {
				memberID := fmt.Sprintf("member-%05d", rand.Intn(MemberCount))

				reqStart := time.Now()
				_, err := repo.GetTimeline(ctx, memberID, 20)
				latency := time.Since(reqStart)

				atomic.AddInt64(&totalRequests, 1)
				if err != nil {
					atomic.AddInt64(&failedRequests, 1)
				} else {
					atomic.AddInt64(&successRequests, 1)
				}
				latencyMu.Lock()
				latencies = append(latencies, latency)
				latencyMu.Unlock()
			}
		}()
	}
	wg.Wait()

	return calculateResult(name, time.Since(startTime), totalRequests, successRequests, failedRequests, latencies)
}

func calculateResult(name string, duration time.Duration, total, success, failed int64, latencies []time.Duration) *BenchResult {
	r := &BenchResult{
		Name:            name,
		Duration:        duration,
		TotalRequests:   total,
		SuccessRequests: success,
		FailedRequests:  failed,
	}
	if duration > 0 {
		r.QPS = float64(total) / duration.Seconds()
	}
	if len(latencies) == 0 {
		return r
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })
	var sum time.Duration
	for _, d := range latencies {
		sum += d
	}
	r.AvgLatency = sum / time.Duration(len(latencies))
	pct := func(p float64) time.Duration {
		k := int(math.Ceil(p*float64(len(latencies)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(latencies) {
			k = len(latencies) - 1
		}
		return latencies[k]
	}
	r.P50Latency = pct(0.50)
	r.P95Latency = pct(0.95)
	r.P99Latency = pct(0.99)
	return r
}

func printBenchResult(r *BenchResult) {
	fmt.Printf("[%s] 请求: %d (成功 %d / 失败 %d)\n", r.Name, r.TotalRequests, r.SuccessRequests, r.FailedRequests)
	fmt.Printf("[%s] QPS: %.0f, 平均延迟: %v, p50: %v, p95: %v, p99: %v\n",
		r.Name, r.QPS, r.AvgLatency, r.P50Latency, r.P95Latency, r.P99Latency)
}

func printComparison(scene string, single, sharded *BenchResult) {
	if single.QPS == 0 {
		return
	}
	fmt.Printf("%s: 单库 QPS %.0f vs 分库分表 QPS %.0f (%.2fx)\n",
		scene, single.QPS, sharded.QPS, sharded.QPS/single.QPS)
}
