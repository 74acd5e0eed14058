package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TargetKind 限定技能可施放的目標類型。
type TargetKind string

const (
	TargetSelf  TargetKind = "self"
	TargetAlly  TargetKind = "ally"
	TargetEnemy TargetKind = "enemy"
	TargetAny   TargetKind = "any"
)

// SkillInfo holds a single skill template.
type SkillInfo struct {
	SkillID        int32
	Name           string
	CastRange      float64       // 最大施法距離（以碰撞體最近點計算）
	CastTime       time.Duration // 0 = 瞬發
	Cooldown       time.Duration
	ManaCost       int16
	WeaponCategory string     // 需要的武器類別（"" = 不限）
	Target         TargetKind // 目標類型限制
	RequiresDead   bool       // true = 目標必須死亡（復活類技能）
	CancelOnLoss   bool       // 施法期間目標消失/死亡時是否中斷施法
	FollowupAttack bool       // 完成後是否自動接續普通攻擊
	Stuns          bool       // 命中時附加暈眩（時長由戰鬥設定決定）
	Damage         int32
	Heal           int32
}

// SkillTable holds all skill templates indexed by SkillID.
type SkillTable struct {
	skills map[int32]*SkillInfo
}

// Get returns a skill by ID, or nil if not found.
func (t *SkillTable) Get(skillID int32) *SkillInfo {
	return t.skills[skillID]
}

// Count returns total loaded skills.
func (t *SkillTable) Count() int {
	return len(t.skills)
}

// NewSkillTable builds a table from templates (tests and embedded defaults).
func NewSkillTable(infos ...*SkillInfo) *SkillTable {
	t := &SkillTable{skills: make(map[int32]*SkillInfo, len(infos))}
	for _, s := range infos {
		t.skills[s.SkillID] = s
	}
	return t
}

// --- YAML loading ---

type skillEntry struct {
	SkillID        int32   `yaml:"skill_id"`
	Name           string  `yaml:"name"`
	CastRange      float64 `yaml:"cast_range"`
	CastTimeMs     int     `yaml:"cast_time_ms"`
	CooldownMs     int     `yaml:"cooldown_ms"`
	ManaCost       int16   `yaml:"mana_cost"`
	WeaponCategory string  `yaml:"weapon_category"`
	Target         string  `yaml:"target"`
	RequiresDead   int     `yaml:"requires_dead"`
	CancelOnLoss   int     `yaml:"cancel_on_target_loss"`
	Followup       int     `yaml:"followup_attack"`
	Stuns          int     `yaml:"stuns"`
	Damage         int32   `yaml:"damage"`
	Heal           int32   `yaml:"heal"`
}

type skillListFile struct {
	Skills []skillEntry `yaml:"skills"`
}

// LoadSkillTable loads skill definitions from YAML.
func LoadSkillTable(path string) (*SkillTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read skills: %w", err)
	}
	var f skillListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse skills: %w", err)
	}
	t := &SkillTable{skills: make(map[int32]*SkillInfo, len(f.Skills))}
	for i := range f.Skills {
		e := &f.Skills[i]
		kind := TargetKind(e.Target)
		switch kind {
		case TargetSelf, TargetAlly, TargetEnemy, TargetAny:
		default:
			return nil, fmt.Errorf("skill %d (%s): unknown target kind %q", e.SkillID, e.Name, e.Target)
		}
		t.skills[e.SkillID] = &SkillInfo{
			SkillID:        e.SkillID,
			Name:           e.Name,
			CastRange:      e.CastRange,
			CastTime:       time.Duration(e.CastTimeMs) * time.Millisecond,
			Cooldown:       time.Duration(e.CooldownMs) * time.Millisecond,
			ManaCost:       e.ManaCost,
			WeaponCategory: e.WeaponCategory,
			Target:         kind,
			RequiresDead:   e.RequiresDead != 0,
			CancelOnLoss:   e.CancelOnLoss != 0,
			FollowupAttack: e.Followup != 0,
			Stuns:          e.Stuns != 0,
			Damage:         e.Damage,
			Heal:           e.Heal,
		}
	}
	return t, nil
}
