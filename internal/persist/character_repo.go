package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type CharacterRow struct {
	ID          int32
	AccountName string
	Name        string
	Level       int16
	Exp         int64
	HP          int32
	MaxHP       int32
	MP          int32
	MaxMP       int32
	X           float64
	Y           float64
	Dead        bool
	WeaponCat   string
	Skills      []CharacterSkillRow
}

type CharacterSkillRow struct {
	Slot       int
	SkillID    int32
	SkillLevel int16
}

type CharacterRepo struct {
	db *DB
}

func NewCharacterRepo(db *DB) *CharacterRepo {
	return &CharacterRepo{db: db}
}

// LoadByName loads a character and its learned skills, nil if absent.
func (r *CharacterRepo) LoadByName(ctx context.Context, name string) (*CharacterRow, error) {
	row := &CharacterRow{}
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, account_name, name, level, exp, hp, max_hp, mp, max_mp,
		        x, y, dead, weapon_cat
		 FROM characters WHERE name = $1`, name,
	).Scan(&row.ID, &row.AccountName, &row.Name, &row.Level, &row.Exp,
		&row.HP, &row.MaxHP, &row.MP, &row.MaxMP,
		&row.X, &row.Y, &row.Dead, &row.WeaponCat)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Pool.Query(ctx,
		`SELECT slot, skill_id, skill_level
		 FROM character_skills WHERE character_id = $1 ORDER BY slot`, row.ID)
	if err != nil {
		return nil, fmt.Errorf("load skills for %s: %w", name, err)
	}
	defer rows.Close()
	for rows.Next() {
		var s CharacterSkillRow
		if err := rows.Scan(&s.Slot, &s.SkillID, &s.SkillLevel); err != nil {
			return nil, err
		}
		row.Skills = append(row.Skills, s)
	}
	return row, rows.Err()
}

// Create inserts a fresh character with its starting skill list.
func (r *CharacterRepo) Create(ctx context.Context, row *CharacterRow) error {
	err := r.db.Pool.QueryRow(ctx,
		`INSERT INTO characters (account_name, name, level, exp, hp, max_hp, mp, max_mp, x, y, dead, weapon_cat)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING id`,
		row.AccountName, row.Name, row.Level, row.Exp,
		row.HP, row.MaxHP, row.MP, row.MaxMP,
		row.X, row.Y, row.Dead, row.WeaponCat,
	).Scan(&row.ID)
	if err != nil {
		return fmt.Errorf("insert character %s: %w", row.Name, err)
	}
	return r.saveSkills(ctx, row)
}

// Save upserts the mutable character fields and skill cooldown-free state.
func (r *CharacterRepo) Save(ctx context.Context, row *CharacterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`UPDATE characters
		 SET level = $2, exp = $3, hp = $4, max_hp = $5, mp = $6, max_mp = $7,
		     x = $8, y = $9, dead = $10, weapon_cat = $11
		 WHERE id = $1`,
		row.ID, row.Level, row.Exp, row.HP, row.MaxHP, row.MP, row.MaxMP,
		row.X, row.Y, row.Dead, row.WeaponCat,
	)
	if err != nil {
		return fmt.Errorf("save character %d: %w", row.ID, err)
	}
	return r.saveSkills(ctx, row)
}

func (r *CharacterRepo) saveSkills(ctx context.Context, row *CharacterRow) error {
	_, err := r.db.Pool.Exec(ctx,
		`DELETE FROM character_skills WHERE character_id = $1`, row.ID)
	if err != nil {
		return err
	}
	for _, s := range row.Skills {
		_, err := r.db.Pool.Exec(ctx,
			`INSERT INTO character_skills (character_id, slot, skill_id, skill_level)
			 VALUES ($1, $2, $3, $4)`,
			row.ID, s.Slot, s.SkillID, s.SkillLevel)
		if err != nil {
			return err
		}
	}
	return nil
}
