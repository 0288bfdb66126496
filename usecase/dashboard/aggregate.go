package dashboard

import (
	"math"
	"time"

	"github.com/progresssync/backend/domain"
)

const (
	activityDays  = 365
	daysPerWeek   = 7
	dateLayout    = "2006-01-02"
	levelMidCount = 3
	levelTopCount = 5
)

// Summary holds the dashboard counters for one user.
type Summary struct {
	TotalTasks              int  `json:"totalTasks"`
	CompletedTasks          int  `json:"completedTasks"`
	PendingTasks            int  `json:"pendingTasks"`
	TodayTasks              int  `json:"todayTasks"`
	CompletionRate          int  `json:"completionRate"`
	GoogleCalendarConnected bool `json:"googleCalendarConnected"`
}

// ActivityDay is one cell of the activity heatmap.
type ActivityDay struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Activity is the 365-day grid plus its weekly reshape.
type Activity struct {
	ActivityData   []ActivityDay `json:"activityData"`
	WeeklyActivity [][]int       `json:"weeklyActivity"`
}

// ComputeSummary derives the counters in a single pass over the task list.
// completionRate is a whole percent, rounded half up. todayTasks counts tasks
// created on or after local midnight of now.
func ComputeSummary(tasks []domain.Task, now time.Time) Summary {
	s := Summary{TotalTasks: len(tasks)}

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	for i := range tasks {
		t := &tasks[i]
		if t.Completed {
			s.CompletedTasks++
		}
		if !t.CreatedAt.Before(midnight) {
			s.TodayTasks++
		}
	}
	s.PendingTasks = s.TotalTasks - s.CompletedTasks
	if s.TotalTasks > 0 {
		s.CompletionRate = int(math.Round(float64(s.CompletedTasks) / float64(s.TotalTasks) * 100))
	}
	return s
}

// ComputeActivity buckets completed tasks by day and discretizes each of the
// 365 days ending at now into a level: 0 tasks → 0, 1-2 → 1, 3-4 → 2, ≥5 → 3.
// Completion days come from Task.ActivityDate, in the local timezone.
func ComputeActivity(tasks []domain.Task, now time.Time) Activity {
	counts := make(map[string]int)
	for i := range tasks {
		t := &tasks[i]
		if !t.Completed {
			continue
		}
		counts[t.ActivityDate().In(now.Location()).Format(dateLayout)]++
	}

	days := make([]ActivityDay, 0, activityDays)
	for i := activityDays - 1; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format(dateLayout)
		count := counts[date]
		days = append(days, ActivityDay{
			Date:  date,
			Count: count,
			Level: activityLevel(count),
		})
	}

	return Activity{
		ActivityData:   days,
		WeeklyActivity: reshapeWeeks(days),
	}
}

func activityLevel(count int) int {
	switch {
	case count >= levelTopCount:
		return 3
	case count >= levelMidCount:
		return 2
	case count >= 1:
		return 1
	default:
		return 0
	}
}

// reshapeWeeks folds the day sequence into rows of seven starting from the
// oldest day. The final partial week keeps only the days present.
func reshapeWeeks(days []ActivityDay) [][]int {
	var weeks [][]int
	for start := 0; start < len(days); start += daysPerWeek {
		end := start + daysPerWeek
		if end > len(days) {
			end = len(days)
		}
		week := make([]int, 0, end-start)
		for _, day := range days[start:end] {
			week = append(week, day.Level)
		}
		weeks = append(weeks, week)
	}
	return weeks
}
