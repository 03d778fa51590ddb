// Package scheduler は robfig/cron の上に一定間隔の定期実行を提供する
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler 定期実行ジョブの管理
// 現在時刻ラインの更新とリマインダーの定期チェックで共有する
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger

	mu      sync.Mutex
	running bool
}

// New スケジューラを生成（Start するまでジョブは動かない）
func New(loc *time.Location, logger *zap.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{logger: logger.Sugar()}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cl),
			// 前回の実行が終わっていなければ今回は飛ばす
			cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
		),
		logger: logger,
	}
}

// cronLogger cron のログを zap に流す（Info は Debug として出す）
type cronLogger struct {
	logger *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorw(msg, append(keysAndValues, "error", err)...)
}

// Every interval ごとに fn を実行するジョブを登録
// cron の最小単位は1秒のため、1秒未満は1秒に切り上げられる
func (s *Scheduler) Every(interval time.Duration, fn func()) (func(), error) {
	if interval <= 0 {
		return nil, fmt.Errorf("実行間隔が不正です: %s", interval)
	}
	if fn == nil {
		return nil, fmt.Errorf("実行する関数が指定されていません")
	}

	id := s.cron.Schedule(cron.Every(interval), cron.FuncJob(fn))
	s.logger.Debug("定期ジョブを登録しました", zap.Int("entryID", int(id)), zap.Duration("interval", interval))

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.cron.Remove(id)
			s.logger.Debug("定期ジョブを解除しました", zap.Int("entryID", int(id)))
		})
	}
	return cancel, nil
}

// entryCount 登録中のジョブ数
func (s *Scheduler) entryCount() int {
	return len(s.cron.Entries())
}

// Start ジョブの実行を開始
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("スケジューラを開始しました")
}

// Stop 新しいジョブの起動を止め、実行中のジョブの終了を待つ
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.running = false
	s.logger.Info("スケジューラを停止しました")
}
