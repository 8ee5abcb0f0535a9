package domain

import "time"

// ActivityType identifies a wellness log category.
type ActivityType string

const (
	ActivityMeal        ActivityType = "meal"
	ActivityWorkout     ActivityType = "workout"
	ActivityYoga        ActivityType = "yoga"
	ActivityMeditation  ActivityType = "meditation"
	ActivitySleep       ActivityType = "sleep"
	ActivityMood        ActivityType = "mood"
	ActivityMenstrual   ActivityType = "menstrual"
	ActivityScreenTime  ActivityType = "screen_time"
	ActivityReading     ActivityType = "reading"
	ActivitySteps       ActivityType = "steps"
	ActivityMedicine    ActivityType = "medicine"
	ActivityMeasurement ActivityType = "measurement"
)

// logCounters maps each activity type to its quest-condition variable.
var logCounters = map[ActivityType]string{
	ActivityMeal:        "mealLogs",
	ActivityWorkout:     "workoutLogs",
	ActivityYoga:        "yogaLogs",
	ActivityMeditation:  "meditationLogs",
	ActivitySleep:       "sleepLogs",
	ActivityMood:        "moodLogs",
	ActivityMenstrual:   "menstrualLogs",
	ActivityScreenTime:  "screenTimeLogs",
	ActivityReading:     "readingLogs",
	ActivitySteps:       "stepLogs",
	ActivityMedicine:    "medicineLogs",
	ActivityMeasurement: "measurementLogs",
}

// ActivityTypes returns every known activity type. Order is not
// significant.
func ActivityTypes() []ActivityType {
	types := make([]ActivityType, 0, len(logCounters))
	for t := range logCounters {
		types = append(types, t)
	}
	return types
}

// Valid reports whether t names a known activity type.
func (t ActivityType) Valid() bool {
	_, ok := logCounters[t]
	return ok
}

// LogCounter returns the snapshot variable name for this type,
// e.g. ActivityWorkout → "workoutLogs".
func (t ActivityType) LogCounter() string {
	return logCounters[t]
}

// CountsTowardStreak reports whether logging this activity extends the
// daily streak. Only workouts and yoga qualify; mood, menstrual, and
// screen-time logs explicitly do not.
func (t ActivityType) CountsTowardStreak() bool {
	return t == ActivityWorkout || t == ActivityYoga
}

// Activity is the primary record written by a logging request. Its write
// must succeed even when every gamification side effect fails.
type Activity struct {
	ID       string       `json:"id"`
	UserID   string       `json:"user_id"`
	Type     ActivityType `json:"type"`
	Value    float64      `json:"value"` // minutes, kcal, steps — unit depends on type
	LoggedAt time.Time    `json:"logged_at"`
}
