package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openevent/runsheet-api/internal/models"
	"github.com/openevent/runsheet-api/internal/repository"
)

func setupExecutionTest(t *testing.T) (*gorm.DB, *executionService) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Activity{}, &models.TransitionLog{}))

	svc := NewExecutionService(
		repository.NewActivityRepository(db),
		repository.NewTransitionLogRepository(db),
		testLogger(),
	).(*executionService)
	return db, svc
}

func seedActivity(t *testing.T, db *gorm.DB, activity models.Activity) models.Activity {
	t.Helper()
	if activity.Day == "" {
		activity.Day = models.EventDayD1
	}
	if activity.ScheduleVariant == "" {
		activity.ScheduleVariant = "official"
	}
	if activity.Title == "" {
		activity.Title = "Opening ceremony"
	}
	if activity.ExecutionStatus == "" {
		activity.ExecutionStatus = models.StatusPending
	}
	require.NoError(t, db.Create(&activity).Error)
	return activity
}

func TestStartThenCompleteRecordsRoundedDuration(t *testing.T) {
	db, svc := setupExecutionTest(t)
	activity := seedActivity(t, db, models.Activity{Position: 1, PlannedDurationMinutes: ptrInt(30)})

	startAt := time.Date(2026, 3, 12, 8, 2, 0, 0, time.UTC)
	svc.now = func() time.Time { return startAt }

	started, err := svc.Start(context.Background(), activity.ID, "alex")
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, started.ExecutionStatus)
	require.NotNil(t, started.ActualStart)
	require.True(t, started.ActualStart.Equal(startAt))

	// 34 minutes and 20 seconds rounds down to 34.
	svc.now = func() time.Time { return startAt.Add(34*time.Minute + 20*time.Second) }

	completed, err := svc.Complete(context.Background(), activity.ID, "alex")
	require.NoError(t, err)
	require.Equal(t, models.StatusCompleted, completed.ExecutionStatus)
	require.NotNil(t, completed.ActualEnd)
	require.NotNil(t, completed.ActualDurationMinutes)
	require.Equal(t, 34, *completed.ActualDurationMinutes)
}

func TestStartRejectsNonPendingStatus(t *testing.T) {
	db, svc := setupExecutionTest(t)
	running := seedActivity(t, db, models.Activity{Position: 1, ExecutionStatus: models.StatusInProgress, ActualStart: ptrTime(time.Now().UTC())})

	_, err := svc.Start(context.Background(), running.ID, "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, models.StatusInProgress, transitionErr.From)

	var unchanged models.Activity
	require.NoError(t, db.First(&unchanged, running.ID).Error)
	require.Equal(t, models.StatusInProgress, unchanged.ExecutionStatus)
}

func TestStartRejectsWhenSiblingIsRunning(t *testing.T) {
	db, svc := setupExecutionTest(t)
	running := seedActivity(t, db, models.Activity{Position: 1, Title: "Keynote", ExecutionStatus: models.StatusInProgress, ActualStart: ptrTime(time.Now().UTC())})
	next := seedActivity(t, db, models.Activity{Position: 2, Title: "Panel"})

	_, err := svc.Start(context.Background(), next.ID, "")
	var runningErr *AlreadyRunningError
	require.ErrorAs(t, err, &runningErr)
	require.Equal(t, running.ID, runningErr.ConflictingID)
	require.Equal(t, "Keynote", runningErr.ConflictingTitle)

	var unchanged models.Activity
	require.NoError(t, db.First(&unchanged, next.ID).Error)
	require.Equal(t, models.StatusPending, unchanged.ExecutionStatus)
}

func TestStartAllowedInOtherVariantWhileSiblingRuns(t *testing.T) {
	db, svc := setupExecutionTest(t)
	seedActivity(t, db, models.Activity{Position: 1, ExecutionStatus: models.StatusInProgress, ActualStart: ptrTime(time.Now().UTC())})
	logistics := seedActivity(t, db, models.Activity{Position: 1, ScheduleVariant: "logistics", Title: "Stage teardown"})

	started, err := svc.Start(context.Background(), logistics.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.StatusInProgress, started.ExecutionStatus)
}

func TestCompleteRequiresInProgress(t *testing.T) {
	db, svc := setupExecutionTest(t)
	pending := seedActivity(t, db, models.Activity{Position: 1})

	_, err := svc.Complete(context.Background(), pending.ID, "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
	require.Equal(t, "complete", transitionErr.Operation)
}

func TestSkipRequiresReason(t *testing.T) {
	db, svc := setupExecutionTest(t)
	activity := seedActivity(t, db, models.Activity{Position: 1})

	for _, reason := range []string{"", "   ", "\t\n"} {
		_, err := svc.Skip(context.Background(), activity.ID, reason, "")
		var validationErr *ValidationError
		require.ErrorAs(t, err, &validationErr)
		require.Equal(t, "reason required", validationErr.Reason)
	}

	var unchanged models.Activity
	require.NoError(t, db.First(&unchanged, activity.ID).Error)
	require.Equal(t, models.StatusPending, unchanged.ExecutionStatus)
}

func TestSkipFromPendingWritesNoteAndNoTimestamps(t *testing.T) {
	db, svc := setupExecutionTest(t)
	activity := seedActivity(t, db, models.Activity{Position: 1})

	skipped, err := svc.Skip(context.Background(), activity.ID, "  speaker cancelled  ", "alex")
	require.NoError(t, err)
	require.Equal(t, models.StatusSkipped, skipped.ExecutionStatus)
	require.Equal(t, "speaker cancelled", skipped.SkipNote)
	require.Nil(t, skipped.ActualStart)
	require.Nil(t, skipped.ActualEnd)
	require.Nil(t, skipped.ActualDurationMinutes)
}

func TestSkipAfterStartWritesNoActualEnd(t *testing.T) {
	db, svc := setupExecutionTest(t)
	activity := seedActivity(t, db, models.Activity{Position: 1})

	_, err := svc.Start(context.Background(), activity.ID, "")
	require.NoError(t, err)

	skipped, err := svc.Skip(context.Background(), activity.ID, "ran out of time", "")
	require.NoError(t, err)
	require.Equal(t, models.StatusSkipped, skipped.ExecutionStatus)
	require.Nil(t, skipped.ActualEnd)
	require.Nil(t, skipped.ActualDurationMinutes)
}

func TestSkipRejectsTerminalStatus(t *testing.T) {
	db, svc := setupExecutionTest(t)
	done := seedActivity(t, db, models.Activity{Position: 1, ExecutionStatus: models.StatusCompleted})

	_, err := svc.Skip(context.Background(), done.ID, "too late", "")
	var transitionErr *InvalidTransitionError
	require.ErrorAs(t, err, &transitionErr)
}

func TestSkipSanitizesNote(t *testing.T) {
	db, svc := setupExecutionTest(t)
	activity := seedActivity(t, db, models.Activity{Position: 1})

	skipped, err := svc.Skip(context.Background(), activity.ID, `<script>alert(1)</script>venue flooded`, "")
	require.NoError(t, err)
	require.Equal(t, "venue flooded", skipped.SkipNote)
}

func TestOperationsReportNotFound(t *testing.T) {
	_, svc := setupExecutionTest(t)

	_, err := svc.Start(context.Background(), 999, "")
	require.ErrorIs(t, err, ErrActivityNotFound)

	_, err = svc.Complete(context.Background(), 999, "")
	require.ErrorIs(t, err, ErrActivityNotFound)

	_, err = svc.Skip(context.Background(), 999, "reason", "")
	require.ErrorIs(t, err, ErrActivityNotFound)
}

func TestTransitionsListsAuditTrail(t *testing.T) {
	db, svc := setupExecutionTest(t)
	activity := seedActivity(t, db, models.Activity{Position: 1})

	_, err := svc.Start(context.Background(), activity.ID, "alex")
	require.NoError(t, err)
	_, err = svc.Complete(context.Background(), activity.ID, "")
	require.NoError(t, err)

	entries, err := svc.Transitions(context.Background(), activity.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.StatusPending, entries[0].FromStatus)
	require.Equal(t, models.StatusInProgress, entries[0].ToStatus)
	require.Equal(t, "alex", entries[0].Actor)
	require.Equal(t, models.StatusCompleted, entries[1].ToStatus)
	require.Equal(t, "system", entries[1].Actor)
}

// conflictRepo simulates a concurrent writer: reads observe pending, but the
// conditional update always loses.
type conflictRepo struct {
	repository.ActivityRepository
	current models.Activity
}

func (r *conflictRepo) GetByID(ctx context.Context, id uint) (models.Activity, error) {
	return r.current, nil
}

func (r *conflictRepo) FindRunning(ctx context.Context, day models.EventDay, variant string) (*models.Activity, error) {
	return nil, nil
}

func (r *conflictRepo) UpdateConditional(ctx context.Context, id uint, expected models.ExecutionStatus, patch repository.ActivityPatch) (bool, models.Activity, error) {
	r.current.ExecutionStatus = models.StatusSkipped
	return false, models.Activity{}, nil
}

func TestStartSurfacesConflictWhenRaceIsLost(t *testing.T) {
	repo := &conflictRepo{current: models.Activity{ID: 7, Day: models.EventDayD1, ScheduleVariant: "official", ExecutionStatus: models.StatusPending}}
	db, _ := setupExecutionTest(t)
	svc := NewExecutionService(repo, repository.NewTransitionLogRepository(db), testLogger()).(*executionService)

	_, err := svc.Start(context.Background(), 7, "")
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Equal(t, models.StatusPending, conflictErr.Expected)
	require.Equal(t, models.StatusSkipped, conflictErr.Found)
}
