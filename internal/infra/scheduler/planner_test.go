package scheduler

import (
	"testing"
	"time"
)

func TestNextDispatchBeforeEvening(t *testing.T) {
	// 10:00 UTC is 13:00 in UTC+3, still before the 20:00 dispatch.
	nowUTC := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)

	date, runAt, err := NextDispatch("UTC+3", nowUTC)
	if err != nil {
		t.Fatalf("NextDispatch: %v", err)
	}
	wantDate := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	wantRun := time.Date(2026, 4, 2, 17, 0, 0, 0, time.UTC)
	if !date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", date, wantDate)
	}
	if !runAt.Equal(wantRun) {
		t.Errorf("runAt = %v, want %v", runAt, wantRun)
	}
}

func TestNextDispatchAfterEvening(t *testing.T) {
	// 18:00 UTC is 21:00 in UTC+3, past dispatch, so tomorrow.
	nowUTC := time.Date(2026, 4, 2, 18, 0, 0, 0, time.UTC)

	date, runAt, err := NextDispatch("UTC+3", nowUTC)
	if err != nil {
		t.Fatalf("NextDispatch: %v", err)
	}
	wantDate := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	wantRun := time.Date(2026, 4, 3, 17, 0, 0, 0, time.UTC)
	if !date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", date, wantDate)
	}
	if !runAt.Equal(wantRun) {
		t.Errorf("runAt = %v, want %v", runAt, wantRun)
	}
}

func TestNextDispatchExactlyAtDispatchHour(t *testing.T) {
	// At exactly local 20:00 the slot has passed, dispatch rolls over.
	nowUTC := time.Date(2026, 4, 2, 20, 0, 0, 0, time.UTC)

	date, _, err := NextDispatch("UTC+0", nowUTC)
	if err != nil {
		t.Fatalf("NextDispatch: %v", err)
	}
	wantDate := time.Date(2026, 4, 3, 0, 0, 0, 0, time.UTC)
	if !date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", date, wantDate)
	}
}

func TestNextDispatchNegativeOffset(t *testing.T) {
	// 23:00 UTC is 18:00 in UTC-5, same local day, dispatch at 01:00 UTC next day.
	nowUTC := time.Date(2026, 4, 2, 23, 0, 0, 0, time.UTC)

	date, runAt, err := NextDispatch("UTC-5", nowUTC)
	if err != nil {
		t.Fatalf("NextDispatch: %v", err)
	}
	wantDate := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	wantRun := time.Date(2026, 4, 3, 1, 0, 0, 0, time.UTC)
	if !date.Equal(wantDate) {
		t.Errorf("date = %v, want %v", date, wantDate)
	}
	if !runAt.Equal(wantRun) {
		t.Errorf("runAt = %v, want %v", runAt, wantRun)
	}
}

func TestNextDispatchInvalidTimezone(t *testing.T) {
	if _, _, err := NextDispatch("Nowhere/Nothing", time.Now()); err == nil {
		t.Fatal("expected an error for an unknown timezone")
	}
}

func TestJobKey(t *testing.T) {
	date := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	got := JobKey(42, date)
	want := "deferred_survey:42:2026-04-02"
	if got != want {
		t.Fatalf("JobKey = %q, want %q", got, want)
	}
}

func TestJobKeyStableAcrossDerivations(t *testing.T) {
	nowUTC := time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC)
	date1, _, err := NextDispatch("UTC+2", nowUTC)
	if err != nil {
		t.Fatalf("NextDispatch: %v", err)
	}
	date2, _, err := NextDispatch("UTC+2", nowUTC.Add(5*time.Minute))
	if err != nil {
		t.Fatalf("NextDispatch: %v", err)
	}
	if JobKey(7, date1) != JobKey(7, date2) {
		t.Fatal("job key changed between resync passes within the same local day")
	}
}
