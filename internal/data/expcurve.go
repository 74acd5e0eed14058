package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ExpCurve 定義每個等級升到下一級所需的經驗值上限。
// experienceMax 對等級單調不減；experience 永遠被夾在 [0, experienceMax(level)]。
type ExpCurve struct {
	maxLevel int16
	required []int64 // required[level-1] = 該等級的 experienceMax
}

// NewExpCurve builds a curve from an explicit per-level table (1-based).
// The table must be monotonic non-decreasing.
func NewExpCurve(required []int64) (*ExpCurve, error) {
	if len(required) == 0 {
		return nil, fmt.Errorf("exp curve: empty table")
	}
	for i := 1; i < len(required); i++ {
		if required[i] < required[i-1] {
			return nil, fmt.Errorf("exp curve: level %d requirement %d below level %d requirement %d",
				i+1, required[i], i, required[i-1])
		}
	}
	return &ExpCurve{maxLevel: int16(len(required)), required: required}, nil
}

// DefaultExpCurve 產生標準曲線：每級所需經驗 = 100 * level^2，60 級封頂。
func DefaultExpCurve() *ExpCurve {
	req := make([]int64, 60)
	for i := range req {
		lvl := int64(i + 1)
		req[i] = 100 * lvl * lvl
	}
	c, _ := NewExpCurve(req)
	return c
}

// MaxLevel returns the level cap implied by the table length.
func (c *ExpCurve) MaxLevel() int16 { return c.maxLevel }

// ExperienceMax returns the experience required to finish the given level.
// Levels outside the table clamp to the nearest entry, so callers never see
// a zero requirement from a bad level.
func (c *ExpCurve) ExperienceMax(level int16) int64 {
	if level < 1 {
		level = 1
	}
	if level > c.maxLevel {
		level = c.maxLevel
	}
	return c.required[level-1]
}

// --- YAML loading ---

type expCurveFile struct {
	Levels []int64 `yaml:"experience_max"`
}

// LoadExpCurve loads a per-level experience table from YAML.
func LoadExpCurve(path string) (*ExpCurve, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read exp curve: %w", err)
	}
	var f expCurveFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse exp curve: %w", err)
	}
	c, err := NewExpCurve(f.Levels)
	if err != nil {
		return nil, err
	}
	return c, nil
}
