package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	cases := map[string]struct {
		input   string
		want    TimeOfDay
		wantErr bool
	}{
		"plain":           {input: "15:30", want: TimeOfDay{Hour: 15, Minute: 30}},
		"midnight":        {input: "0:00", want: TimeOfDay{}},
		"hour overflow":   {input: "24:00", wantErr: true},
		"minute overflow": {input: "12:60", wantErr: true},
		"garbage":         {input: "noon", wantErr: true},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ParseTimeOfDay(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTimeOfDayNext(t *testing.T) {
	at := TimeOfDay{Hour: 16, Minute: 0}

	cases := map[string]struct {
		now  time.Time
		want time.Time
	}{
		"earlier the same day": {
			now:  time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC),
		},
		"exactly at the instant rolls to tomorrow": {
			now:  time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC),
			want: time.Date(2026, 3, 11, 16, 0, 0, 0, time.UTC),
		},
		"later the same day": {
			now:  time.Date(2026, 3, 10, 23, 59, 0, 0, time.UTC),
			want: time.Date(2026, 3, 11, 16, 0, 0, 0, time.UTC),
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, at.Next(tc.now))
		})
	}
}

func TestSchedulerFiresAtConfiguredTime(t *testing.T) {
	at := TimeOfDay{Hour: 16, Minute: 0}
	// The fake clock sits a few milliseconds before the dispatch instant, so
	// the timer fires right away instead of waiting a day.
	clock := &fakeClock{now: at.On(time.Now()).Add(-5 * time.Millisecond)}

	fired := make(chan struct{}, 1)
	s := NewScheduler(clock, at, func(ctx context.Context) {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s.Start(ctx)

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduled task did not fire")
	}
}