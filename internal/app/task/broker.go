/*
 * @Description: 定时任务调度
 * @Author: 安知鱼
 * @Date: 2025-10-08 09:15:27
 * @LastEditTime: 2025-10-11 18:22:40
 * @LastEditors: 安知鱼
 */
package task

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/service/cleanup"
)

const (
	// OrphanSweepSpec 是孤儿对象清理任务的执行频率
	OrphanSweepSpec = "@every 10m"
	sweepTimeout    = 2 * time.Minute
)

// Broker 负责注册并运行后台定时任务
type Broker struct {
	cron       *cron.Cron
	cleanupSvc cleanup.Service
}

// zapCronLogger 把 cron 的日志转发到 zap
type zapCronLogger struct{}

func (zapCronLogger) Info(msg string, keysAndValues ...interface{}) {
	zap.S().Debugw("[定时任务] "+msg, keysAndValues...)
}

func (zapCronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	zap.S().Errorw("[定时任务] "+msg, append(keysAndValues, "error", err)...)
}

func NewBroker(cleanupSvc cleanup.Service) *Broker {
	logger := zapCronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)
	return &Broker{cron: c, cleanupSvc: cleanupSvc}
}

// RegisterCronJobs 注册所有定时任务
func (b *Broker) RegisterCronJobs() error {
	if _, err := b.cron.AddFunc(OrphanSweepSpec, b.SweepOrphans); err != nil {
		return err
	}
	zap.S().Infof("[定时任务] 已注册孤儿对象清理任务 (%s)", OrphanSweepSpec)
	return nil
}

// SweepOrphans 执行一次孤儿对象清理
func (b *Broker) SweepOrphans() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	res, err := b.cleanupSvc.Sweep(ctx)
	if err != nil {
		zap.S().Errorf("[定时任务] 孤儿对象清理失败: %v", err)
		return
	}
	if res.Removed > 0 || res.Failed > 0 {
		zap.S().Infof("[定时任务] 孤儿对象清理完成: 删除 %d 个, 失败 %d 个", res.Removed, res.Failed)
	}
}

func (b *Broker) Start() {
	b.cron.Start()
}

// Stop 停止调度并等待正在运行的任务结束
func (b *Broker) Stop() {
	<-b.cron.Stop().Done()
}

// Entries 返回已注册的任务数量
func (b *Broker) Entries() int {
	return len(b.cron.Entries())
}
