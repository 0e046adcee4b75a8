package repositories

import (
	"errors"
	"fmt"
	"testing"

	"gorm.io/gorm"

	"github.com/cppla/carquest/models"
	"github.com/cppla/carquest/testhelpers"
)

func seedUsers(t *testing.T, db *gorm.DB, xps ...int) []models.User {
	t.Helper()
	users := make([]models.User, 0, len(xps))
	for i, xp := range xps {
		u := models.User{
			Name:         fmt.Sprintf("user%d", i),
			Email:        fmt.Sprintf("user%d@example.com", i),
			PasswordHash: "hash",
			XP:           xp,
			Level:        models.LevelForXP(xp),
		}
		if err := db.Create(&u).Error; err != nil {
			t.Fatalf("seed user %d: %v", i, err)
		}
		users = append(users, u)
	}
	return users
}

func TestTopNStandardCompetitionRanking(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewRankingRepository(db)
	seedUsers(t, db, 100, 100, 50, 200)

	entries, err := repo.TopN(10)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	if len(entries) != 4 {
		t.Fatalf("got %d entries, want 4", len(entries))
	}

	// 200 first, the tied 100s share position 2, 50 resumes at 4.
	wantXP := []int{200, 100, 100, 50}
	wantPos := []int64{1, 2, 2, 4}
	for i, e := range entries {
		if e.XP != wantXP[i] || e.Position != wantPos[i] {
			t.Errorf("entry %d = (xp=%d, pos=%d), want (xp=%d, pos=%d)", i, e.XP, e.Position, wantXP[i], wantPos[i])
		}
	}
}

func TestTopNLimit(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewRankingRepository(db)
	xps := make([]int, 12)
	for i := range xps {
		xps[i] = (i + 1) * 10
	}
	seedUsers(t, db, xps...)

	entries, err := repo.TopN(10)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	if len(entries) != 10 {
		t.Errorf("got %d entries, want 10", len(entries))
	}
	if entries[0].XP != 120 || entries[0].Position != 1 {
		t.Errorf("first entry = (xp=%d, pos=%d), want (120, 1)", entries[0].XP, entries[0].Position)
	}
}

func TestPositionOfMatchesTopN(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewRankingRepository(db)
	users := seedUsers(t, db, 300, 150, 150, 10)

	entries, err := repo.TopN(10)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	positions := map[uint]int64{}
	for _, e := range entries {
		positions[e.ID] = e.Position
	}

	for _, u := range users {
		pos, xp, err := repo.PositionOf(u.ID)
		if err != nil {
			t.Fatalf("PositionOf(%d): %v", u.ID, err)
		}
		if xp != u.XP {
			t.Errorf("PositionOf(%d) xp = %d, want %d", u.ID, xp, u.XP)
		}
		if want, ok := positions[u.ID]; ok && pos != want {
			t.Errorf("PositionOf(%d) = %d, TopN says %d", u.ID, pos, want)
		}
	}
}

func TestPositionOfEqualXPEqualPosition(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewRankingRepository(db)
	users := seedUsers(t, db, 500, 500)

	p0, _, err := repo.PositionOf(users[0].ID)
	if err != nil {
		t.Fatalf("PositionOf: %v", err)
	}
	p1, _, err := repo.PositionOf(users[1].ID)
	if err != nil {
		t.Fatalf("PositionOf: %v", err)
	}
	if p0 != p1 || p0 != 1 {
		t.Errorf("tied positions = (%d, %d), want (1, 1)", p0, p1)
	}
}

func TestPositionOfUnknownUser(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	repo := NewRankingRepository(db)
	seedUsers(t, db, 100)

	if _, _, err := repo.PositionOf(999); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
