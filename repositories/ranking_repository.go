package repositories

import (
	"gorm.io/gorm"
)

// RankingEntry is one row of the public standing.
type RankingEntry struct {
	ID       uint   `gorm:"column:id" json:"id"`
	Name     string `gorm:"column:name" json:"name"`
	XP       int    `gorm:"column:xp" json:"xp"`
	Level    int    `gorm:"column:level" json:"level"`
	Rank     string `gorm:"column:rank" json:"rank"`
	Position int64  `gorm:"column:position" json:"position"`
}

// RankingRepository computes standings from stored state on every call.
// Positions use standard competition ranking: equal XP shares a position and
// the next distinct XP resumes at one plus the count of strictly greater users.
type RankingRepository struct {
	DB *gorm.DB
}

// NewRankingRepository creates a RankingRepository.
func NewRankingRepository(db *gorm.DB) *RankingRepository {
	return &RankingRepository{DB: db}
}

// TopN returns the first n users ordered by XP descending with positions.
func (r *RankingRepository) TopN(n int) ([]RankingEntry, error) {
	entries := []RankingEntry{}
	err := r.DB.Raw(`
		SELECT id, name, xp, level, "rank",
		       RANK() OVER (ORDER BY xp DESC) AS position
		FROM users
		ORDER BY xp DESC, id ASC
		LIMIT ?
	`, n).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// PositionOf returns the user's position over the full user set and its XP.
func (r *RankingRepository) PositionOf(userID uint) (position int64, xp int, err error) {
	var row struct {
		Position int64 `gorm:"column:position"`
		XP       int   `gorm:"column:xp"`
	}
	res := r.DB.Raw(`
		SELECT position, xp FROM (
			SELECT id, xp, RANK() OVER (ORDER BY xp DESC) AS position
			FROM users
		) ranked
		WHERE id = ?
	`, userID).Scan(&row)
	if res.Error != nil {
		return 0, 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, 0, ErrUserNotFound
	}
	return row.Position, row.XP, nil
}
