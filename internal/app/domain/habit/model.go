// Package habit defines habits, their daily completions, and the read views
// the tracking screens render.
package habit

import "time"

// Category groups habits for filtering. Unknown values fall back to
// CategoryOther rather than being rejected.
type Category string

const (
	CategoryHealth      Category = "health"
	CategoryFitness     Category = "fitness"
	CategoryLearning    Category = "learning"
	CategoryWork        Category = "work"
	CategoryMindfulness Category = "mindfulness"
	CategoryFinance     Category = "finance"
	CategorySocial      Category = "social"
	CategoryOther       Category = "other"
)

// ParseCategory maps a raw string onto a known category, defaulting to
// CategoryOther.
func ParseCategory(raw string) Category {
	switch Category(raw) {
	case CategoryHealth, CategoryFitness, CategoryLearning, CategoryWork,
		CategoryMindfulness, CategoryFinance, CategorySocial:
		return Category(raw)
	default:
		return CategoryOther
	}
}

// Frequency is how often a habit is meant to be performed.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// ParseFrequency maps a raw string onto a frequency. Empty and unknown
// values default to daily.
func ParseFrequency(raw string) Frequency {
	switch Frequency(raw) {
	case FrequencyWeekly:
		return FrequencyWeekly
	case FrequencyMonthly:
		return FrequencyMonthly
	default:
		return FrequencyDaily
	}
}

// Habit is a tracked routine. Streak holds the running consecutive-day
// counter; LongestStreak is the historical high-water mark and never
// decreases. A zero PausedAt means the habit is not paused.
type Habit struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	Category      Category  `json:"category"`
	Frequency     Frequency `json:"frequency"`
	Color         string    `json:"color,omitempty"`
	Icon          string    `json:"icon,omitempty"`
	Streak        int       `json:"streak"`
	LongestStreak int       `json:"longest_streak"`
	IsActive      bool      `json:"is_active"`
	PausedAt      time.Time `json:"paused_at"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Completion records that a habit was done on a calendar day. CompletedOn is
// the day key in YYYY-MM-DD form and is unique per habit; CompletedAt keeps
// the full timestamp for range queries.
type Completion struct {
	ID          string    `json:"id"`
	HabitID     string    `json:"habit_id"`
	CompletedAt time.Time `json:"completed_at"`
	CompletedOn string    `json:"completed_on"`
	Note        string    `json:"note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// WithStatus is the flat list view: the habit plus its today flag and the
// most recent completions.
type WithStatus struct {
	Habit
	CompletedToday    bool         `json:"completed_today"`
	RecentCompletions []Completion `json:"recent_completions"`
}

// MonthHabit is one habit's row in the month grid. FirstActiveDay and
// LastActiveDay bound the renderable range; PausedDay is set only when the
// pause happened inside the requested month.
type MonthHabit struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Category      Category `json:"category"`
	Color         string   `json:"color,omitempty"`
	Icon          string   `json:"icon,omitempty"`
	CompletedDays []int    `json:"completed_days"`
	FirstActiveDay int     `json:"first_active_day"`
	LastActiveDay  int     `json:"last_active_day"`
	PausedDay      *int    `json:"paused_day"`
}

// MonthView is the full month grid response.
type MonthView struct {
	Year        int          `json:"year"`
	Month       int          `json:"month"`
	DaysInMonth int          `json:"days_in_month"`
	Habits      []MonthHabit `json:"habits"`
}

// DayKey renders a timestamp as its YYYY-MM-DD day key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
