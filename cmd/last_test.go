package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/iksnae/strava-export/internal"
	"github.com/iksnae/strava-export/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLastCommand(t *testing.T) {
	fake := testutil.NewFakeStrava(t, testutil.MakeActivities(2)...)
	fake.SetDetail(1, testutil.RunDetail(1))
	dir := setupEnv(t, fake)

	out, err := executeCommand("last")
	require.NoError(t, err)
	assert.Contains(t, out, "Evening Run")
	assert.Contains(t, out, "5:00/km")

	listRequests := fake.ListRequests()
	require.Len(t, listRequests, 1)
	assert.Equal(t, "1", listRequests[0].Get("per_page"))
	assert.Equal(t, []string{"1"}, fake.DetailRequests())

	files := outputFiles(t, dir, "strava-last.json")
	require.Len(t, files, 1)
	data, err := os.ReadFile(files[0])
	require.NoError(t, err)

	var doc internal.ActivityExport
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, int64(1), doc.Activity.ID)
	assert.Equal(t, 10.0, doc.Summary.DistanceKm)
	assert.Equal(t, 50, doc.Summary.MovingTimeMin)
	require.NotNil(t, doc.Performance.AvgPace)
	assert.Equal(t, "5:00/km", *doc.Performance.AvgPace)
	assert.Nil(t, doc.Performance.AvgSpeedKmh)
	assert.Equal(t, internal.IntensityModerate, doc.Interpretation.IntensityHint)
}

func TestLastCommand_NoActivities(t *testing.T) {
	fake := testutil.NewFakeStrava(t)
	dir := setupEnv(t, fake)

	_, err := executeCommand("last")
	require.NoError(t, err)
	assert.Empty(t, fake.DetailRequests())
	assert.Empty(t, outputFiles(t, dir, "*"), "nothing is written without an activity")
}

func TestLastCommand_DetailMissing(t *testing.T) {
	fake := testutil.NewFakeStrava(t, testutil.MakeActivities(1)...)
	dir := setupEnv(t, fake)

	_, err := executeCommand("last", "-f", "md")
	var fetchErr *internal.FetchError
	require.True(t, errors.As(err, &fetchErr), "got %v", err)
	assert.Equal(t, "detail", fetchErr.Op)
	assert.Equal(t, 404, fetchErr.StatusCode)
	assert.Empty(t, outputFiles(t, dir, "*"))
}
