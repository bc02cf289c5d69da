package domain

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrHabitTitleEmpty    = errors.New("habit title cannot be empty")
	ErrHabitTitleTooLong  = errors.New("habit title is too long (max 100 chars)")
	ErrHabitDescTooLong   = errors.New("habit description is too long (max 500 chars)")
	ErrHabitInvalidUserID = errors.New("invalid user id")
	ErrInvalidColor       = errors.New("invalid color format (must be #RRGGBB)")
	ErrInvalidHabitType   = errors.New("invalid habit type (must be boolean or numeric)")
	ErrInvalidTarget      = errors.New("target cannot be negative")
	ErrHabitArchived      = errors.New("cannot update an archived habit")
)

var colorRegex = regexp.MustCompile(`^#([A-Fa-f0-9]{6}|[A-Fa-f0-9]{3})$`)

const (
	HabitTypeBoolean = "boolean"
	HabitTypeNumeric = "numeric"
	DefaultIcon      = "default_icon"
	MaxTitleLen      = 100
	MaxDescLen       = 500
)

type Habit struct {
	ID          string `json:"id" db:"id"`
	UserID      string `json:"user_id" db:"user_id"`
	Title       string `json:"title" db:"title"`
	Description string `json:"description,omitempty" db:"description"`
	Category    string `json:"category,omitempty" db:"category"`
	Color       string `json:"color" db:"color"`
	Icon        string `json:"icon" db:"icon"`
	SortOrder   int    `json:"sort_order" db:"sort_order"`
	Type        string `json:"type" db:"type"`
	TargetValue int    `json:"target_value" db:"target_value"`
	Unit        string `json:"unit,omitempty" db:"unit"`

	// Denormalized streak values maintained by the streak worker. The
	// stats engine is always the source of truth, these are read caches.
	CurrentStreak int `json:"current_streak" db:"current_streak"`
	LongestStreak int `json:"longest_streak" db:"longest_streak"`

	Version    int        `json:"version" db:"version"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at" db:"updated_at"`
	ArchivedAt *time.Time `json:"archived_at,omitempty" db:"archived_at"`
	DeletedAt  *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

func validateHabit(title, desc, color, hType string, target int) (int, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return 0, ErrHabitTitleEmpty
	}
	if len(trimmed) > MaxTitleLen {
		return 0, ErrHabitTitleTooLong
	}

	if len(strings.TrimSpace(desc)) > MaxDescLen {
		return 0, ErrHabitDescTooLong
	}

	switch hType {
	case HabitTypeBoolean, HabitTypeNumeric:
	default:
		return 0, ErrInvalidHabitType
	}

	if color != "" && !colorRegex.MatchString(color) {
		return 0, ErrInvalidColor
	}

	// Boolean habits are done or not done; the target is pinned to 1 so
	// completion checks stay uniform across both types.
	finalTarget := target
	if hType == HabitTypeBoolean {
		finalTarget = 1
	} else if target < 0 {
		return 0, ErrInvalidTarget
	} else if target == 0 {
		finalTarget = 1
	}

	return finalTarget, nil
}

func NewHabit(userID, title, description, category, color, icon, hType, unit string, target int) (*Habit, error) {
	if userID == "" {
		return nil, ErrHabitInvalidUserID
	}

	if hType == "" {
		hType = HabitTypeBoolean
	}

	cleanDesc := strings.TrimSpace(description)

	safeTarget, err := validateHabit(title, cleanDesc, color, hType, target)
	if err != nil {
		return nil, err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	now := time.Now().UTC()

	return &Habit{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       strings.TrimSpace(title),
		Description: cleanDesc,
		Category:    strings.TrimSpace(category),
		Color:       color,
		Icon:        icon,
		Type:        hType,
		TargetValue: safeTarget,
		Unit:        unit,
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func (h *Habit) Update(title, description, category, color, icon, hType, unit string, target int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	if hType == "" {
		hType = h.Type
	}

	cleanDesc := strings.TrimSpace(description)

	safeTarget, err := validateHabit(title, cleanDesc, color, hType, target)
	if err != nil {
		return err
	}

	if icon == "" {
		icon = DefaultIcon
	}

	h.Title = strings.TrimSpace(title)
	h.Description = cleanDesc
	h.Category = strings.TrimSpace(category)
	h.Color = color
	h.Icon = icon
	h.Type = hType
	h.Unit = unit
	h.TargetValue = safeTarget
	h.UpdatedAt = time.Now().UTC()

	return nil
}

func (h *Habit) ChangePosition(newOrder int) error {
	if h.ArchivedAt != nil {
		return ErrHabitArchived
	}

	h.SortOrder = newOrder
	h.UpdatedAt = time.Now().UTC()
	return nil
}

func (h *Habit) Archive() {
	if h.ArchivedAt != nil {
		return
	}

	now := time.Now().UTC()
	h.ArchivedAt = &now
	h.UpdatedAt = now
}

func (h *Habit) Restore() {
	if h.ArchivedAt == nil {
		return
	}
	h.ArchivedAt = nil
	h.UpdatedAt = time.Now().UTC()
}
