package services

import (
	"math"
	"time"

	"github.com/mytaskflow/backend/database/models"
)

// HabitMonthlyRow is one line of the monthly analysis table: how a habit is
// tracking against one completion per day of the month.
type HabitMonthlyRow struct {
	HabitID  int64  `json:"habit_id"`
	Name     string `json:"name"`
	Goal     int    `json:"goal"`
	Current  int    `json:"current"`
	Progress int    `json:"progress"`
}

// DailyStat is the per-day slice of a month: how many of the user's habits
// were completed on that date.
type DailyStat struct {
	Date           string `json:"date"`
	CompletedCount int    `json:"completed_count"`
	TotalHabits    int    `json:"total_habits"`
	Percentage     int    `json:"percentage"`
}

// DaysInMonth returns the day count of a zero-based month.
func DaysInMonth(year, month int) int {
	return time.Date(year, time.Month(month+2), 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthlyRows computes the analysis table for one month window.
func MonthlyRows(habits []*models.Habit, completions []*models.HabitCompletion, year, month int) []HabitMonthlyRow {
	days := DaysInMonth(year, month)
	rows := make([]HabitMonthlyRow, 0, len(habits))
	for _, habit := range habits {
		current := 0
		for _, c := range completions {
			if c.HabitID == habit.ID {
				current++
			}
		}
		progress := 0
		if days > 0 {
			progress = roundPercent(current, days)
			if progress > 100 {
				progress = 100
			}
		}
		rows = append(rows, HabitMonthlyRow{
			HabitID:  habit.ID,
			Name:     habit.Name,
			Goal:     days,
			Current:  current,
			Progress: progress,
		})
	}
	return rows
}

// MonthlyProgress is the headline percentage: completions made over one
// completion per habit per elapsed day. For past or future months the full
// month counts as elapsed.
func MonthlyProgress(habits []*models.Habit, completions []*models.HabitCompletion, year, month int, now time.Time) int {
	if len(habits) == 0 {
		return 0
	}
	elapsed := elapsedDays(year, month, now)
	totalPossible := len(habits) * elapsed
	if totalPossible == 0 {
		return 0
	}
	return roundPercent(len(completions), totalPossible)
}

// DailySeries buckets a month's completions by calendar day.
func DailySeries(habits []*models.Habit, completions []*models.HabitCompletion, year, month int) []DailyStat {
	days := DaysInMonth(year, month)
	byDay := make(map[string]int, days)
	for _, c := range completions {
		byDay[c.CompletedAt.UTC().Format(dateLayout)]++
	}

	series := make([]DailyStat, 0, days)
	for d := 1; d <= days; d++ {
		date := time.Date(year, time.Month(month+1), d, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		completed := byDay[date]
		pct := 0
		if len(habits) > 0 {
			pct = roundPercent(completed, len(habits))
		}
		series = append(series, DailyStat{
			Date:           date,
			CompletedCount: completed,
			TotalHabits:    len(habits),
			Percentage:     pct,
		})
	}
	return series
}

// GoalAchievement scores a month against each habit's target_count: a day
// contributes at most target_count completions per habit, over the days
// elapsed so far.
func GoalAchievement(habits []*models.Habit, completions []*models.HabitCompletion, year, month int, now time.Time) int {
	if len(habits) == 0 {
		return 0
	}

	perHabitDay := make(map[int64]map[string]int)
	for _, c := range completions {
		date := c.CompletedAt.UTC().Format(dateLayout)
		if perHabitDay[c.HabitID] == nil {
			perHabitDay[c.HabitID] = make(map[string]int)
		}
		perHabitDay[c.HabitID][date]++
	}

	elapsed := elapsedDays(year, month, now)
	totalExpected := 0
	totalCompleted := 0
	for d := 1; d <= elapsed; d++ {
		date := time.Date(year, time.Month(month+1), d, 0, 0, 0, 0, time.UTC).Format(dateLayout)
		for _, habit := range habits {
			target := habit.TargetCount
			if target < 1 {
				target = 1
			}
			totalExpected += target
			done := perHabitDay[habit.ID][date]
			if done > target {
				done = target
			}
			totalCompleted += done
		}
	}
	if totalExpected == 0 {
		return 0
	}
	return roundPercent(totalCompleted, totalExpected)
}

// elapsedDays returns how many days of the month count as elapsed relative
// to now: the current day for the running month, the whole month otherwise.
func elapsedDays(year, month int, now time.Time) int {
	if now.Year() == year && int(now.Month())-1 == month {
		return now.Day()
	}
	return DaysInMonth(year, month)
}

func roundPercent(part, whole int) int {
	return int(math.Round(float64(part) / float64(whole) * 100))
}
