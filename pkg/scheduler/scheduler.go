package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"context"

	"msifactory/pkg/core/logger"
)

// Scheduler 本地任务调度器
// 使用任务堆 + 定时器驱动，工作者数量由信号量限制
type Scheduler struct {
	// 配置
	checkInterval time.Duration
	maxWorkers    int

	// 运行时状态
	isRunning atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup

	// 任务管理
	taskHeap *TaskHeap

	// 工作者池
	workerSemaphore chan struct{}

	// 定时器
	timer   *time.Timer
	timerMu sync.Mutex

	// 日志
	log *logger.Log

	// 统计信息
	stats *SchedulerStats
}

// SchedulerStats 调度器统计信息
type SchedulerStats struct {
	mu              sync.RWMutex
	TotalTasks      int64     `json:"total_tasks"`
	CompletedTasks  int64     `json:"completed_tasks"`
	FailedTasks     int64     `json:"failed_tasks"`
	LastExecuteTime time.Time `json:"last_execute_time"`
}

// SchedulerConfig 调度器配置
type SchedulerConfig struct {
	CheckInterval time.Duration `json:"check_interval"`
	MaxWorkers    int           `json:"max_workers"`
}

// DefaultSchedulerConfig 默认调度器配置
func DefaultSchedulerConfig() *SchedulerConfig {
	return &SchedulerConfig{
		CheckInterval: 1 * time.Second,
		MaxWorkers:    10,
	}
}

// NewScheduler 创建新的调度器
func NewScheduler(config *SchedulerConfig) *Scheduler {
	if config == nil {
		config = DefaultSchedulerConfig()
	}
	if config.MaxWorkers <= 0 {
		config.MaxWorkers = DefaultSchedulerConfig().MaxWorkers
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		checkInterval:   config.CheckInterval,
		maxWorkers:      config.MaxWorkers,
		ctx:             ctx,
		cancel:          cancel,
		taskHeap:        NewTaskHeap(),
		workerSemaphore: make(chan struct{}, config.MaxWorkers),
		log:             logger.GetLogger().WithEntryName("Scheduler"),
		stats:           &SchedulerStats{},
	}
}

// Start 启动调度器
func (s *Scheduler) Start() error {
	if s.isRunning.Load() {
		return fmt.Errorf("调度器已经在运行")
	}

	s.log.Infof("启动调度器，工作者上限: %d", s.maxWorkers)
	s.isRunning.Store(true)

	// 如果有任务需要执行，立即设置定时器
	s.resetTimer()

	return nil
}

// Stop 停止调度器
// 取消所有任务的上下文，等待进行中的任务在宽限期内退出
func (s *Scheduler) Stop() error {
	if !s.isRunning.Load() {
		return nil
	}

	s.log.Info("停止调度器")
	s.isRunning.Store(false)
	s.cancel()

	// 停止定时器
	s.stopTimer()

	// 等待所有goroutine完成
	s.wg.Wait()

	s.log.Info("调度器已停止")
	return nil
}

// AddTask 添加任务
func (s *Scheduler) AddTask(task Task) error {
	if !s.isRunning.Load() {
		return fmt.Errorf("调度器未运行")
	}

	s.taskHeap.SafePush(task)
	s.stats.IncrementTotalTasks()

	s.log.Infof("添加任务: %s [%s]", task.GetName(), task.GetID())

	// 重新设置定时器
	s.resetTimer()

	return nil
}

// RemoveTask 移除任务
func (s *Scheduler) RemoveTask(taskID string) bool {
	removed := s.taskHeap.SafeRemove(taskID)
	if removed {
		s.log.Infof("移除任务: %s", taskID)
		s.resetTimer()
	}
	return removed
}

// GetTask 获取任务信息
func (s *Scheduler) GetTask(taskID string) Task {
	tasks := s.taskHeap.SafeList()
	for _, task := range tasks {
		if task.GetID() == taskID {
			return task
		}
	}
	return nil
}

// ListTasks 列出所有任务
func (s *Scheduler) ListTasks() []Task {
	return s.taskHeap.SafeList()
}

// GetStats 获取统计信息
func (s *Scheduler) GetStats() *SchedulerStats {
	s.stats.mu.RLock()
	defer s.stats.mu.RUnlock()

	// 创建副本返回
	return &SchedulerStats{
		TotalTasks:      s.stats.TotalTasks,
		CompletedTasks:  s.stats.CompletedTasks,
		FailedTasks:     s.stats.FailedTasks,
		LastExecuteTime: s.stats.LastExecuteTime,
	}
}

// resetTimer 重置定时器
func (s *Scheduler) resetTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
	}

	nextTime := s.taskHeap.GetNextExecuteTime()
	if nextTime == nil {
		return
	}

	waitDuration := time.Until(*nextTime)
	if waitDuration < 0 {
		waitDuration = 0
	}

	s.timer = time.AfterFunc(waitDuration, s.onTimerFired)
}

// stopTimer 停止定时器
func (s *Scheduler) stopTimer() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// onTimerFired 定时器触发
func (s *Scheduler) onTimerFired() {
	if !s.isRunning.Load() {
		return
	}

	now := time.Now()
	readyTasks := s.taskHeap.PopReadyTasks(now)

	if len(readyTasks) == 0 {
		s.resetTimer()
		return
	}

	for _, task := range readyTasks {
		s.executeTask(task)
	}

	// 定时器的重置由 runTask 在任务执行完成后触发
}

// executeTask 执行任务
func (s *Scheduler) executeTask(task Task) {
	// 获取工作者资源
	select {
	case s.workerSemaphore <- struct{}{}:
		// 异步执行任务
		s.wg.Add(1)
		go func(t Task) {
			defer s.wg.Done()
			defer func() { <-s.workerSemaphore }()

			s.runTask(t)
		}(task)
	default:
		// 工作者池满，任务延后重新调度
		s.log.Warnf("工作者池已满，任务重新调度: %s", task.GetID())
		nextTime := task.UpdateNextTime(time.Now().Add(1 * time.Second))
		if !task.IsCompleted() && !nextTime.IsZero() {
			task.SetStatus(TaskStatusWaiting)
			s.taskHeap.SafePush(task)
			s.resetTimer()
		}
	}
}

// runTask 运行任务
func (s *Scheduler) runTask(task Task) {
	start := time.Now()
	s.log.Debugf("开始执行任务: %s [%s]", task.GetName(), task.GetID())

	// 创建带超时的上下文
	ctx, cancel := context.WithTimeout(s.ctx, task.GetTimeout())
	defer cancel()

	err := task.Execute(ctx)

	duration := time.Since(start)
	s.stats.SetLastExecuteTime(start)

	if err != nil {
		s.log.Errorf("任务执行失败: %s [%s], 耗时: %v, 错误: %v",
			task.GetName(), task.GetID(), duration, err)
		s.stats.IncrementFailedTasks()
	} else {
		s.log.Debugf("任务执行成功: %s [%s], 耗时: %v",
			task.GetName(), task.GetID(), duration)
		s.stats.IncrementCompletedTasks()
	}

	// 更新下次执行时间并重新加入堆
	if !task.IsCompleted() {
		nextTime := task.UpdateNextTime(time.Now())
		if !nextTime.IsZero() {
			task.SetStatus(TaskStatusWaiting)
			s.taskHeap.SafePush(task)
			s.resetTimer()
		}
	} else {
		// 任务已完成，重置定时器以便调度其他任务
		s.resetTimer()
	}
}

// 统计方法
func (s *SchedulerStats) IncrementTotalTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalTasks++
}

func (s *SchedulerStats) IncrementCompletedTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CompletedTasks++
}

func (s *SchedulerStats) IncrementFailedTasks() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FailedTasks++
}

func (s *SchedulerStats) SetLastExecuteTime(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.LastExecuteTime = t
}
