package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"household-planner/internal/timewindow"
)

func TestBuildDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "20:00", want: "0 0 20 * * *"},
		{in: "00:00", want: "0 0 0 * * *"},
		{in: " 7:05 ", want: "0 5 7 * * *"},
		{in: "24:00", wantErr: true},
		{in: "12:60", wantErr: true},
		{in: "noon", wantErr: true},
		{in: "1:2:3", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := buildDailySpec(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSchedulerRegistersJobs(t *testing.T) {
	s := NewSchedulerService(timewindow.Reference, zerolog.Nop())
	noop := Job{Name: "noop", Run: func(context.Context) error { return nil }}

	_, err := s.ScheduleDaily("00:00", noop)
	require.NoError(t, err)
	_, err = s.ScheduleEvery(time.Minute, noop)
	require.NoError(t, err)
	_, err = s.ScheduleEvery(500*time.Millisecond, noop)
	assert.Error(t, err)
	_, err = s.ScheduleDaily("25:00", noop)
	assert.ErrorContains(t, err, "noop")

	assert.Len(t, s.Entries(), 2)
}

func TestSchedulerRunBoundsContext(t *testing.T) {
	s := NewSchedulerService(timewindow.Reference, zerolog.Nop())

	var deadline time.Time
	var calls int
	s.run(Job{
		Name:    "rollover",
		Timeout: time.Minute,
		Run: func(ctx context.Context) error {
			calls++
			deadline, _ = ctx.Deadline()
			return errors.New("store offline")
		},
	})

	assert.Equal(t, 1, calls)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, 5*time.Second)
}
