package internal

import (
	"bytes"
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShowProgress(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		fn      func() error
		wantErr bool
	}{
		{
			name: "refresh succeeds",
			fn:   func() error { return nil },
		},
		{
			name: "refresh rejected",
			fn: func() error {
				return &AuthError{Op: "refresh", StatusCode: 401, Payload: "{}"}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ShowProgress(ctx, "Refreshing access token", tt.fn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShowProgressWithSteps(t *testing.T) {
	ctx := context.Background()
	var ran []string
	step := func(name string, err error) ProgressStep {
		return ProgressStep{Message: name, Fn: func() error {
			ran = append(ran, name)
			return err
		}}
	}

	t.Run("all steps run in order", func(t *testing.T) {
		ran = nil
		err := ShowProgressWithSteps(ctx, []ProgressStep{step("token", nil), step("fetch", nil), step("write", nil)})
		require.NoError(t, err)
		assert.Equal(t, []string{"token", "fetch", "write"}, ran)
	})

	t.Run("stops at first failure and keeps error type", func(t *testing.T) {
		ran = nil
		fetchErr := &FetchError{Op: "list", Page: 2, Err: errors.New("boom")}
		err := ShowProgressWithSteps(ctx, []ProgressStep{step("token", nil), step("fetch", fetchErr), step("write", nil)})
		require.Error(t, err)
		var got *FetchError
		assert.ErrorAs(t, err, &got)
		assert.Equal(t, []string{"token", "fetch"}, ran)
	})

	t.Run("empty steps", func(t *testing.T) {
		assert.NoError(t, ShowProgressWithSteps(ctx, nil))
	})
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, isTerminal(&bytes.Buffer{}))

	f, err := os.CreateTemp(t.TempDir(), "progress")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, isTerminal(f), "regular file")
}
