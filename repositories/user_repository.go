package repositories

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cppla/carquest/models"
)

var (
	// ErrUserNotFound is returned when no user row matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidXP is returned for zero or negative grant amounts.
	ErrInvalidXP = errors.New("xp gained must be positive")
)

// Activity describes the optional progress-log payload of an XP grant.
type Activity struct {
	Type  string
	Name  string
	Score int
}

// XPResult is the post-update progression triple.
type XPResult struct {
	XP    int    `json:"xp"`
	Level int    `json:"level"`
	Rank  string `json:"rank"`
}

// UserRepository persists user records and applies XP grants.
type UserRepository struct {
	DB         *gorm.DB
	Thresholds models.RankTable
}

// NewUserRepository creates a UserRepository bound to the given rank table.
func NewUserRepository(db *gorm.DB, thresholds models.RankTable) *UserRepository {
	return &UserRepository{DB: db, Thresholds: thresholds.Normalize()}
}

// Create inserts a new user with derived level and rank for zero XP.
// Emails are case-sensitive unique keys; the pre-check keeps the common path
// friendly and the unique index backstops the race window.
func (r *UserRepository) Create(name, email, passwordHash string) (*models.User, error) {
	var existing models.User
	err := r.DB.Where("email = ?", email).First(&existing).Error
	if err == nil {
		return nil, ErrEmailTaken
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Level:        models.LevelForXP(0),
		Rank:         r.Thresholds.RankFor(0),
	}
	if err := r.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail returns the user with the given email.
func (r *UserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID returns the user with the given id.
func (r *UserRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.DB.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GrantXP atomically adds delta to the user's XP, recomputes level and rank
// from the resulting value, and optionally appends one completed progress
// entry, all in a single transaction.
//
// The increment runs as an in-place UPDATE, so the row lock is held until
// commit and concurrent grants serialize instead of overwriting each other;
// the re-read inside the transaction therefore observes the final XP that
// level and rank are derived from.
func (r *UserRepository) GrantXP(userID uint, delta int, activity *Activity) (XPResult, error) {
	if delta <= 0 {
		return XPResult{}, ErrInvalidXP
	}

	var result XPResult
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.User{}).Where("id = ?", userID).
			UpdateColumn("xp", gorm.Expr("xp + ?", delta))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}

		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		user.Level = models.LevelForXP(user.XP)
		user.Rank = r.Thresholds.RankFor(user.XP)
		if err := tx.Model(&models.User{}).Where("id = ?", userID).UpdateColumns(map[string]interface{}{
			"level":      user.Level,
			"rank":       user.Rank,
			"updated_at": time.Now(),
		}).Error; err != nil {
			return err
		}

		if activity != nil && activity.Type != "" && activity.Name != "" {
			entry := models.ProgressEntry{
				UserID:    userID,
				Type:      activity.Type,
				Name:      activity.Name,
				Score:     activity.Score,
				Completed: true,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
		}

		result = XPResult{XP: user.XP, Level: user.Level, Rank: user.Rank}
		return nil
	})
	if err != nil {
		return XPResult{}, err
	}
	return result, nil
}

// isUniqueViolation matches the duplicate-key wording of the postgres and
// sqlite drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
