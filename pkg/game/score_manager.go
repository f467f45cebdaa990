package game

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"
)

// ScoreEntry 一条最高分记录
type ScoreEntry struct {
	Score      int       `yaml:"score"`
	Stage      string    `yaml:"stage"`
	RecordedAt time.Time `yaml:"recordedAt"`
}

// ScoreManager 维护按分数降序排列的最高分列表
//
// 每次写入都整体覆盖存储的列表。gdataManager 为 nil 时只保存在内存中。
type ScoreManager struct {
	gdataManager *gdata.Manager
	limit        int
	entries      []ScoreEntry
	now          func() time.Time
}

// 存储路径常量
const (
	scoresObject   = "scores"
	scoresProperty = "top"
)

// NewScoreManager 创建最高分管理器并加载已保存的记录
// 加载失败只记录警告，以空列表开始
func NewScoreManager(gdataManager *gdata.Manager, limit int) *ScoreManager {
	if limit < 1 {
		limit = 1
	}
	sm := &ScoreManager{
		gdataManager: gdataManager,
		limit:        limit,
		now:          time.Now,
	}
	if err := sm.Load(); err != nil {
		log.Printf("[ScoreManager] Warning: Failed to load scores: %v (starting empty)", err)
	}
	return sm
}

// Load 从 gdata 读取记录
func (sm *ScoreManager) Load() error {
	sm.entries = nil
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(scoresObject, scoresProperty) {
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(scoresObject, scoresProperty)
	if err != nil {
		return fmt.Errorf("failed to load scores: %w", err)
	}
	var entries []ScoreEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("failed to unmarshal scores: %w", err)
	}
	sm.entries = normalize(entries, sm.limit)
	return nil
}

// Record 插入一条记录；返回该分数是否进入了列表
// 持久化失败时内存中的列表仍然更新
func (sm *ScoreManager) Record(score int, stage string) (bool, error) {
	entry := ScoreEntry{Score: score, Stage: stage, RecordedAt: sm.now()}
	sm.entries = normalize(append(sm.entries, entry), sm.limit)

	kept := false
	for _, e := range sm.entries {
		if e == entry {
			kept = true
			break
		}
	}
	if !kept {
		return false, nil
	}
	if err := sm.save(); err != nil {
		return true, err
	}
	log.Printf("[ScoreManager] Recorded score %d (stage %s)", score, stage)
	return true, nil
}

func (sm *ScoreManager) save() error {
	if sm.gdataManager == nil {
		return nil
	}
	data, err := yaml.Marshal(sm.entries)
	if err != nil {
		return fmt.Errorf("failed to marshal scores: %w", err)
	}
	if err := sm.gdataManager.SaveObjectProp(scoresObject, scoresProperty, data); err != nil {
		return fmt.Errorf("failed to save scores: %w", err)
	}
	return nil
}

// Top 返回当前列表的拷贝
func (sm *ScoreManager) Top() []ScoreEntry {
	return append([]ScoreEntry(nil), sm.entries...)
}

// Best 返回最高分，无记录时为 0
func (sm *ScoreManager) Best() int {
	if len(sm.entries) == 0 {
		return 0
	}
	return sm.entries[0].Score
}

// normalize 按分数降序排序（同分早者在前）并截断
func normalize(entries []ScoreEntry, limit int) []ScoreEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].RecordedAt.Before(entries[j].RecordedAt)
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}
