package bus

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ReportUpdate 报告推荐字段的更新事件（nil = 该字段无变更）
type ReportUpdate struct {
	ReportID             string
	AIRecommendation     *string
	DoctorRecommendation *string
}

// Subscription 某个 report_id 的订阅句柄。
// 订阅方持有 channel 生命周期：视图销毁时必须 Unsubscribe，
// 发布方不会触碰已销毁视图的状态
type Subscription struct {
	ID       string
	ReportID string
	C        <-chan ReportUpdate

	ch chan ReportUpdate
}

// ReportBus 按 report_id 分发更新的发布/订阅通道。
// 同一报告可能同时在多个视图中打开（患者端列表、医生端推荐页），
// 生成/保存的结果通过该通道广播，保证各视图一致
type ReportBus struct {
	mu     sync.RWMutex
	subs   map[string]map[string]*Subscription // reportID -> subscriptionID -> sub
	logger *zap.Logger
}

// NewReportBus 创建报告更新总线
func NewReportBus(logger *zap.Logger) *ReportBus {
	return &ReportBus{
		subs:   map[string]map[string]*Subscription{},
		logger: logger,
	}
}

// Subscribe 订阅指定报告的更新
func (b *ReportBus) Subscribe(reportID string) *Subscription {
	ch := make(chan ReportUpdate, 8)
	sub := &Subscription{
		ID:       uuid.NewString(),
		ReportID: reportID,
		C:        ch,
		ch:       ch,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs[reportID] == nil {
		b.subs[reportID] = map[string]*Subscription{}
	}
	b.subs[reportID][sub.ID] = sub
	return sub
}

// Unsubscribe 退订并关闭 channel。视图销毁时必须调用
func (b *ReportBus) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	byReport, ok := b.subs[sub.ReportID]
	if !ok {
		return
	}
	if _, ok := byReport[sub.ID]; !ok {
		return
	}
	delete(byReport, sub.ID)
	if len(byReport) == 0 {
		delete(b.subs, sub.ReportID)
	}
	close(sub.ch)
}

// Publish 广播更新。发送不阻塞：缓冲已满的订阅者丢弃本次事件，
// 绝不让网络回调阻塞在失活的视图上
func (b *ReportBus) Publish(update ReportUpdate) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, sub := range b.subs[update.ReportID] {
		select {
		case sub.ch <- update:
		default:
			b.logger.Warn("dropping report update for slow subscriber",
				zap.String("report_id", update.ReportID),
				zap.String("subscription_id", sub.ID),
			)
		}
	}
}

// SubscriberCount 指定报告的订阅数（测试用）
func (b *ReportBus) SubscriberCount(reportID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[reportID])
}
