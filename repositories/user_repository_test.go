package repositories

import (
	"errors"
	"sync"
	"testing"

	"github.com/cppla/carquest/models"
	"github.com/cppla/carquest/testhelpers"
)

func newTestUserRepo(t *testing.T) *UserRepository {
	t.Helper()
	return NewUserRepository(testhelpers.SetupTestDB(t), models.DefaultRankTable())
}

func TestCreateSetsDerivedFields(t *testing.T) {
	repo := newTestUserRepo(t)

	user, err := repo.Create("Anna", "anna@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected assigned id")
	}
	if user.XP != 0 || user.Level != 1 || user.Rank != "Bronce" {
		t.Errorf("derived fields = (%d, %d, %q), want (0, 1, Bronce)", user.XP, user.Level, user.Rank)
	}
}

func TestCreateDuplicateEmailKeepsOriginalRow(t *testing.T) {
	repo := newTestUserRepo(t)

	if _, err := repo.Create("Anna", "anna@example.com", "original-hash"); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := repo.Create("Impostor", "anna@example.com", "other-hash"); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	var count int64
	if err := repo.DB.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("user count = %d, want 1", count)
	}

	original, err := repo.GetByEmail("anna@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if original.PasswordHash != "original-hash" {
		t.Errorf("hash changed to %q after duplicate registration", original.PasswordHash)
	}
}

func TestLookupsNotFound(t *testing.T) {
	repo := newTestUserRepo(t)

	if _, err := repo.GetByEmail("ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByEmail: expected ErrUserNotFound, got %v", err)
	}
	if _, err := repo.GetByID(42); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("GetByID: expected ErrUserNotFound, got %v", err)
	}
}

func TestGrantXPCrossesLevelBoundary(t *testing.T) {
	repo := newTestUserRepo(t)
	user, err := repo.Create("Marc", "marc@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.DB.Model(&models.User{}).Where("id = ?", user.ID).UpdateColumn("xp", 950).Error; err != nil {
		t.Fatalf("seed xp: %v", err)
	}

	result, err := repo.GrantXP(user.ID, 100, nil)
	if err != nil {
		t.Fatalf("GrantXP: %v", err)
	}
	if result.XP != 1050 || result.Level != 2 || result.Rank != "Plata" {
		t.Errorf("result = (%d, %d, %q), want (1050, 2, Plata)", result.XP, result.Level, result.Rank)
	}

	// The stored row must agree with the returned triple.
	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.XP != 1050 || stored.Level != 2 || stored.Rank != "Plata" {
		t.Errorf("stored = (%d, %d, %q), want (1050, 2, Plata)", stored.XP, stored.Level, stored.Rank)
	}
}

func TestGrantXPRejectsNonPositive(t *testing.T) {
	repo := newTestUserRepo(t)
	user, err := repo.Create("Marc", "marc@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	for _, delta := range []int{0, -10} {
		if _, err := repo.GrantXP(user.ID, delta, nil); !errors.Is(err, ErrInvalidXP) {
			t.Errorf("GrantXP(%d): expected ErrInvalidXP, got %v", delta, err)
		}
	}

	stored, _ := repo.GetByID(user.ID)
	if stored.XP != 0 {
		t.Errorf("xp changed to %d after rejected grants", stored.XP)
	}
}

func TestGrantXPUnknownUser(t *testing.T) {
	repo := newTestUserRepo(t)
	if _, err := repo.GrantXP(99, 100, nil); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestGrantXPActivityLogging(t *testing.T) {
	repo := newTestUserRepo(t)
	user, err := repo.Create("Laia", "laia@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := repo.GrantXP(user.ID, 50, nil); err != nil {
		t.Fatalf("pure grant: %v", err)
	}
	var count int64
	repo.DB.Model(&models.ProgressEntry{}).Count(&count)
	if count != 0 {
		t.Errorf("pure grant logged %d entries, want 0", count)
	}

	activity := &Activity{Type: "test", Name: "senyals de transit", Score: 8}
	if _, err := repo.GrantXP(user.ID, 100, activity); err != nil {
		t.Fatalf("activity grant: %v", err)
	}

	var entries []models.ProgressEntry
	if err := repo.DB.Where("user_id = ?", user.ID).Find(&entries).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("logged %d entries, want 1", len(entries))
	}
	e := entries[0]
	if e.Type != "test" || e.Name != "senyals de transit" || e.Score != 8 || !e.Completed {
		t.Errorf("entry = %+v, want completed test/senyals de transit/8", e)
	}
}

func TestGrantXPConcurrentGrantsBothLand(t *testing.T) {
	repo := NewUserRepository(testhelpers.SetupFileTestDB(t), models.DefaultRankTable())
	user, err := repo.Create("Pol", "pol@example.com", "hash")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.GrantXP(user.ID, 500, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("grant %d: %v", i, err)
		}
	}

	stored, err := repo.GetByID(user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.XP != 1000 {
		t.Errorf("xp = %d after two +500 grants, want 1000", stored.XP)
	}
	if stored.Level != 2 {
		t.Errorf("level = %d, want 2", stored.Level)
	}
}
