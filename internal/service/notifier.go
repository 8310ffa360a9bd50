package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/sns-service/internal/model"
	"github.com/d60-Lab/sns-service/internal/repository"
	"github.com/d60-Lab/sns-service/pkg/logger"
)

type notifyJob struct {
	memberID string
	actorID  string
	typ      model.NotificationType
	enqAt    time.Time
}

// Notifier 本地异步通知写入器
// 关注成功等事件在这里落库，主流程不等待
type Notifier struct {
	notificationRepo repository.NotificationRepository
	ch               chan notifyJob
	metricsCh        chan time.Duration
}

func NewNotifier(notificationRepo repository.NotificationRepository, queueSize int) *Notifier {
	if queueSize <= 0 {
		queueSize = 10000
	}
	return &Notifier{
		notificationRepo: notificationRepo,
		ch:               make(chan notifyJob, queueSize),
		metricsCh:        make(chan time.Duration, 65536),
	}
}

func (n *Notifier) Start(workers int) func(context.Context) error {
	if workers <= 0 {
		workers = 4
	}
	stopCh := make(chan struct{})
	for i := 0; i < workers; i++ {
		go func() {
			for {
				select {
				case job := <-n.ch:
					ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					if err := n.notificationRepo.Create(ctx, job.memberID, job.actorID, job.typ); err != nil {
						logger.Warn("write notification", zap.Error(err),
							zap.String("member", job.memberID), zap.String("actor", job.actorID))
					}
					cancel()
					if !job.enqAt.IsZero() {
						select {
						case n.metricsCh <- time.Since(job.enqAt):
						default:
						}
					}
				case <-stopCh:
					return
				}
			}
		}()
	}
	return func(ctx context.Context) error {
		close(stopCh)
		// 等待队列自然排空一小段时间
		timeout := time.After(2 * time.Second)
		for {
			select {
			case <-timeout:
				return nil
			default:
				if len(n.ch) == 0 {
					return nil
				}
				time.Sleep(50 * time.Millisecond)
			}
		}
	}
}

// EnqueueFollow 排队一条关注通知，队列满则丢弃并告警
func (n *Notifier) EnqueueFollow(memberID, actorID string) {
	select {
	case n.ch <- notifyJob{memberID: memberID, actorID: actorID, typ: model.NotificationFollow, enqAt: time.Now()}:
	default:
		logger.Warn("notifier queue full, drop follow", zap.String("member", memberID), zap.String("actor", actorID))
	}
}

// Metrics 返回通知落地耗时的只读通道（每处理一条发送一次 duration）。
func (n *Notifier) Metrics() <-chan time.Duration { return n.metricsCh }

// QueueLen 返回当前队列长度（采样值）。
func (n *Notifier) QueueLen() int { return len(n.ch) }
