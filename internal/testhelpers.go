package internal

import (
	"encoding/json"
	"fmt"
	"time"
)

// testClock is the fixed assembly time used by the test documents
var testClock = time.Date(2025, 3, 15, 7, 45, 0, 0, time.UTC)

// CreateTestActivity creates an activity as if decoded from the API
func CreateTestActivity(id int64, activityType string, distance float64, movingTime int64) Activity {
	raw := fmt.Sprintf(`{"id":%d,"name":"Activity %d","type":%q,"sport_type":%q,"distance":%g,"moving_time":%d,"total_elevation_gain":12,"average_speed":%g,"start_date_local":"2025-03-15T07:00:00Z","kudos_count":3}`,
		id, id, activityType, activityType, distance, movingTime, distance/float64(max(movingTime, 1)))
	var a Activity
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		panic(err)
	}
	return a
}

// CreateTestWindowExport creates a window document with sample activities
func CreateTestWindowExport(kind WindowKind, activities ...Activity) *WindowExport {
	w, err := ResolveWindow(kind, testClock, "Europe/Istanbul")
	if err != nil {
		panic(err)
	}
	a := &Assembler{Location: w.Start.Location(), Now: func() time.Time { return testClock }}
	return a.Window(w, activities)
}

// CreateTestActivityExport creates a latest-activity document for a run
func CreateTestActivityExport() *ActivityExport {
	a := &Assembler{Location: time.UTC, Now: func() time.Time { return testClock }}
	detail := CreateTestActivity(99, "Run", 10000, 3000)
	return a.Activity(&detail)
}
