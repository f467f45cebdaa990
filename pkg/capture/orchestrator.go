package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/decker502/silhouette-stack/pkg/imagestore"
)

// State 循环状态
type State int

const (
	StateIdle State = iota
	StateCapturing
	StateSaving
	StateGenerating
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCapturing:
		return "capturing"
	case StateSaving:
		return "saving"
	case StateGenerating:
		return "generating"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Camera 输出已分割剪影（背景透明）的相机
type Camera interface {
	Capture(ctx context.Context) (image.Image, error)
	Ready() bool
	Status() string
}

// ImageSaver 保存剪影 PNG 并返回新 ID
type ImageSaver interface {
	Put(ctx context.Context, pngData []byte) (imagestore.ID, error)
}

// Recognizer 把已保存的图片转换为可生成刚体的部件
type Recognizer interface {
	Recognize(ctx context.Context, id imagestore.ID) (*Recognition, error)
}

// SpawnFunc 在主循环中把识别结果变成刚体
type SpawnFunc func(rec *Recognition) error

// Options 循环参数（单位：秒，对应 Tick 的调用次数）
type Options struct {
	Interval      int
	ErrorRecovery int
}

// CycleState 供界面显示的状态快照
type CycleState struct {
	State     State
	Countdown int
	Busy      bool
	Running   bool
	// LastProcessedImageID 最近一次完成识别的图片
	LastProcessedImageID imagestore.ID
	// LatestImageID 图片库中最新的图片（包括其他写入方）
	LatestImageID imagestore.ID
	Status        string
	LastError     string
}

// result 工作 goroutine 交回主循环的结果
type result struct {
	epoch   uint64
	imageID imagestore.ID
	rec     *Recognition
	err     error
}

// Orchestrator 自动拍摄循环
//
// Tick、TryStart、Pump、Start、Stop 都应在游戏主循环中调用；
// 工作 goroutine 只更新阶段状态并把结果放入通道。
type Orchestrator struct {
	camera     Camera
	saver      ImageSaver
	recognizer Recognizer
	opts       Options

	slot      *semaphore.Weighted
	results   chan result
	wg        sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once

	mu           sync.Mutex
	state        State
	countdown    int
	recoveryLeft int
	busy         bool
	running      bool
	epoch        uint64
	ctx          context.Context
	cancel       context.CancelFunc
	lastID       imagestore.ID
	latestID     imagestore.ID
	status       string
	lastErr      error
}

// NewOrchestrator 创建循环（初始为停止状态，需调用 Start）
func NewOrchestrator(camera Camera, saver ImageSaver, recognizer Recognizer, opts Options) *Orchestrator {
	if opts.Interval < 1 {
		opts.Interval = 1
	}
	if opts.ErrorRecovery < 0 {
		opts.ErrorRecovery = 0
	}
	return &Orchestrator{
		camera:     camera,
		saver:      saver,
		recognizer: recognizer,
		opts:       opts,
		slot:       semaphore.NewWeighted(1),
		// 同一时刻最多一个结果待处理，发送方永不阻塞
		results:   make(chan result, 1),
		done:      make(chan struct{}),
		countdown: opts.Interval,
		status:    camera.Status(),
	}
}

// Start 以给定世界代数开始（或恢复）循环，倒计时重置为完整间隔
func (o *Orchestrator) Start(epoch uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
	}
	o.ctx, o.cancel = context.WithCancel(context.Background())
	o.running = true
	o.epoch = epoch
	o.countdown = o.opts.Interval
	if !o.busy {
		o.state = StateIdle
		o.lastErr = nil
		o.status = o.camera.Status()
	}
	log.Printf("[Capture] Started, epoch=%d interval=%ds", epoch, o.opts.Interval)
}

// Stop 停止计时并取消正在运行的循环
// 已在运行的循环会被允许结束，但其结果会在 Pump 中被丢弃
func (o *Orchestrator) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return
	}
	o.running = false
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	log.Printf("[Capture] Stopped, epoch=%d", o.epoch)
}

// Close 停止循环并等待工作 goroutine 退出
func (o *Orchestrator) Close() {
	o.Stop()
	o.closeOnce.Do(func() { close(o.done) })
	o.wg.Wait()
	select {
	case res := <-o.results:
		o.finish(res, nil)
	default:
	}
}

// Tick 每秒调用一次
//
// 其他写入方产生的新图片总会被处理；autoCapture 为 false 时不推进拍摄倒计时，
// 相机只在手动触发（TryStart）时拍摄。
func (o *Orchestrator) Tick(autoCapture bool) {
	o.mu.Lock()
	if !o.running || o.busy {
		o.mu.Unlock()
		return
	}
	if o.state == StateError {
		o.recoveryLeft--
		if o.recoveryLeft <= 0 {
			o.state = StateIdle
			o.countdown = o.opts.Interval
			o.status = o.camera.Status()
		}
		o.mu.Unlock()
		return
	}
	if o.latestID > o.lastID {
		// 其他写入方产生的新图片优先处理，不等倒计时
		id := o.latestID
		o.mu.Unlock()
		if err := o.Process(id); err != nil && !errors.Is(err, ErrBusy) {
			log.Printf("[Capture] Warning: image %d not processed: %v", id, err)
		}
		return
	}
	if !autoCapture {
		o.mu.Unlock()
		return
	}
	o.countdown--
	if o.countdown > 0 {
		o.mu.Unlock()
		return
	}
	if !o.camera.Ready() {
		o.countdown = o.opts.Interval
		o.status = o.camera.Status()
		o.mu.Unlock()
		return
	}
	o.mu.Unlock()

	if err := o.TryStart(); err != nil && !errors.Is(err, ErrBusy) {
		log.Printf("[Capture] Warning: auto capture not started: %v", err)
	}
}

// TryStart 立即开始一次拍摄循环
// 已有循环在运行时返回 ErrBusy，不排队
func (o *Orchestrator) TryStart() error {
	return o.start(func(ctx context.Context) (imagestore.ID, *Recognition, error) {
		return o.captureCycle(ctx)
	})
}

// Process 跳过拍摄，直接识别图片库中已有的图片（其他写入方产生的图片）
func (o *Orchestrator) Process(id imagestore.ID) error {
	return o.start(func(ctx context.Context) (imagestore.ID, *Recognition, error) {
		o.setState(StateGenerating)
		rec, err := o.recognizer.Recognize(ctx, id)
		return id, rec, err
	})
}

func (o *Orchestrator) start(run func(ctx context.Context) (imagestore.ID, *Recognition, error)) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.running {
		return ErrStopped
	}
	if !o.slot.TryAcquire(1) {
		return ErrBusy
	}
	o.busy = true
	o.state = StateCapturing
	o.status = "capturing"
	epoch, ctx := o.epoch, o.ctx

	o.wg.Add(1)
	go o.work(ctx, epoch, run)
	return nil
}

// work 在独立 goroutine 中执行循环；panic 被转换为拍摄错误
func (o *Orchestrator) work(ctx context.Context, epoch uint64, run func(ctx context.Context) (imagestore.ID, *Recognition, error)) {
	defer o.wg.Done()
	res := result{epoch: epoch}
	defer func() {
		if r := recover(); r != nil {
			res.err = fmt.Errorf("%w: panic: %v", ErrAcquisition, r)
		}
		o.results <- res
	}()
	res.imageID, res.rec, res.err = run(ctx)
}

func (o *Orchestrator) captureCycle(ctx context.Context) (imagestore.ID, *Recognition, error) {
	img, err := o.camera.Capture(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrAcquisition, err)
	}

	o.setState(StateSaving)
	data, err := imagestore.EncodePNG(img)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrAcquisition, err)
	}
	id, err := o.saver.Put(ctx, data)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrAcquisition, err)
	}

	o.setState(StateGenerating)
	rec, err := o.recognizer.Recognize(ctx, id)
	return id, rec, err
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.status = s.String()
	o.mu.Unlock()
}

// Pump 非阻塞地处理至多一个已完成的循环，返回是否处理了结果
// spawn 只在结果属于当前代数且循环仍在运行时调用
func (o *Orchestrator) Pump(spawn SpawnFunc) bool {
	select {
	case res := <-o.results:
		o.finish(res, spawn)
		return true
	default:
		return false
	}
}

// finish 是释放信号量的唯一位置
func (o *Orchestrator) finish(res result, spawn SpawnFunc) {
	defer o.slot.Release(1)

	o.mu.Lock()
	o.busy = false
	o.countdown = o.opts.Interval
	if res.imageID > o.lastID {
		o.lastID = res.imageID
	}
	if res.imageID > o.latestID {
		o.latestID = res.imageID
	}
	if res.epoch != o.epoch || !o.running {
		o.state = StateIdle
		o.status = o.camera.Status()
		o.mu.Unlock()
		log.Printf("[Capture] Discarded stale result (epoch %d, image %d)", res.epoch, res.imageID)
		return
	}
	o.mu.Unlock()

	// spawn 可能回调 Snapshot，不能持锁调用
	err := res.err
	if err == nil && spawn != nil {
		err = spawn(res.rec)
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case err == nil:
		o.state = StateIdle
		o.lastErr = nil
		o.status = o.camera.Status()
	case IsNoOp(err):
		o.state = StateIdle
		o.status = "no silhouette"
		log.Printf("[Capture] Image %d produced no body: %v", res.imageID, err)
	default:
		o.state = StateError
		o.lastErr = err
		o.recoveryLeft = o.opts.ErrorRecovery
		o.status = err.Error()
		if o.recoveryLeft == 0 {
			o.state = StateIdle
		}
		log.Printf("[Capture] Error: cycle failed: %v", err)
	}
}

// Watch 订阅图片库的新图片通知，直到 ctx 结束或 Close
//
// 启动时把库中已有的最新图片视为已处理，不会为旧图片生成刚体。
// poll > 0 时还会定期查询最新 ID，用于发现其他进程写入同一个库的图片。
func (o *Orchestrator) Watch(ctx context.Context, store imagestore.Store, poll time.Duration) error {
	latest, ok, err := store.LatestID(ctx)
	if err != nil {
		return fmt.Errorf("read latest image id: %w", err)
	}
	if ok {
		o.mu.Lock()
		o.lastID = max(o.lastID, latest)
		o.latestID = max(o.latestID, latest)
		o.mu.Unlock()
	}

	ch, cancel := store.Subscribe()
	var ticker *time.Ticker
	var tick <-chan time.Time
	if poll > 0 {
		ticker = time.NewTicker(poll)
		tick = ticker.C
	}

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		defer cancel()
		if ticker != nil {
			defer ticker.Stop()
		}
		o.watchLoop(ctx, store, ch, tick)
	}()
	return nil
}

func (o *Orchestrator) watchLoop(ctx context.Context, store imagestore.Store, ch <-chan imagestore.ID, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-o.done:
			return
		case id, ok := <-ch:
			if !ok {
				return
			}
			o.noteImage(id)
		case <-tick:
			id, ok, err := store.LatestID(ctx)
			if err != nil {
				log.Printf("[Capture] Warning: poll latest image id: %v", err)
				continue
			}
			if ok {
				o.noteImage(id)
			}
		}
	}
}

func (o *Orchestrator) noteImage(id imagestore.ID) {
	o.mu.Lock()
	o.latestID = max(o.latestID, id)
	o.mu.Unlock()
}

// Snapshot 返回当前状态的拷贝
func (o *Orchestrator) Snapshot() CycleState {
	o.mu.Lock()
	defer o.mu.Unlock()
	cs := CycleState{
		State:                o.state,
		Countdown:            o.countdown,
		Busy:                 o.busy,
		Running:              o.running,
		LastProcessedImageID: o.lastID,
		LatestImageID:        o.latestID,
		Status:               o.status,
	}
	if o.lastErr != nil {
		cs.LastError = o.lastErr.Error()
	}
	return cs
}
