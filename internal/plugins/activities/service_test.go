package activities

import (
	"context"
	"errors"
	"testing"

	"github.com/ecotrackapp/ecotrack/internal/apperror"
	"github.com/ecotrackapp/ecotrack/internal/plugins/notifications"
)

// mockActivityRepo implements ActivityRepository with function fields.
type mockActivityRepo struct {
	createFn      func(ctx context.Context, a *Activity) error
	listForUserFn func(ctx context.Context, userID string) ([]Activity, error)
}

func (m *mockActivityRepo) Create(ctx context.Context, a *Activity) error {
	if m.createFn != nil {
		return m.createFn(ctx, a)
	}
	return nil
}

func (m *mockActivityRepo) ListForUser(ctx context.Context, userID string) ([]Activity, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userID)
	}
	return nil, nil
}

// recordingNotifier captures confirmation calls.
type recordingNotifier struct {
	inputs []notifications.CreateInput
	err    error
}

func (n *recordingNotifier) Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error) {
	n.inputs = append(n.inputs, input)
	if n.err != nil {
		return nil, n.err
	}
	return &notifications.Notification{ID: "n-1", Message: input.Message}, nil
}

// assertAppError fails the test unless err is an AppError with the given code.
func assertAppError(t *testing.T, err error, code int) {
	t.Helper()
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T: %v", err, err)
	}
	if appErr.Code != code {
		t.Errorf("expected code %d, got %d", code, appErr.Code)
	}
}

func TestCreate_StoresAndConfirmsToUser(t *testing.T) {
	var stored *Activity
	repo := &mockActivityRepo{
		createFn: func(ctx context.Context, a *Activity) error {
			stored = a
			return nil
		},
	}
	notifier := &recordingNotifier{}
	svc := NewActivityService(repo, notifier)

	a, err := svc.Create(context.Background(), CreateInput{
		UserID:      "user-123",
		Description: "Biked to work",
		Points:      10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored == nil {
		t.Fatal("expected the activity to be persisted")
	}
	if a.ID == "" {
		t.Error("expected a generated id")
	}
	if a.UserID != "user-123" {
		t.Errorf("expected user-123, got %s", a.UserID)
	}

	if len(notifier.inputs) != 1 {
		t.Fatalf("expected 1 confirmation, got %d", len(notifier.inputs))
	}
	conf := notifier.inputs[0]
	// The confirmation targets the logging user, never a broadcast.
	if conf.UserID == nil || *conf.UserID != "user-123" {
		t.Errorf("expected confirmation targeted at user-123, got %v", conf.UserID)
	}
	if conf.Message != "Activity logged: Biked to work" {
		t.Errorf("unexpected confirmation message: %q", conf.Message)
	}
}

func TestCreate_EmptyDescription(t *testing.T) {
	notifier := &recordingNotifier{}
	svc := NewActivityService(&mockActivityRepo{}, notifier)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:      "user-123",
		Description: "   ",
	})
	assertAppError(t, err, 400)
	if len(notifier.inputs) != 0 {
		t.Error("nothing must be confirmed for invalid input")
	}
}

func TestCreate_NegativePoints(t *testing.T) {
	svc := NewActivityService(&mockActivityRepo{}, &recordingNotifier{})

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:      "user-123",
		Description: "Cheating",
		Points:      -5,
	})
	assertAppError(t, err, 400)
}

func TestCreate_RepoErrorSkipsConfirmation(t *testing.T) {
	repo := &mockActivityRepo{
		createFn: func(ctx context.Context, a *Activity) error {
			return apperror.NewInternal(errors.New("db down"))
		},
	}
	notifier := &recordingNotifier{}
	svc := NewActivityService(repo, notifier)

	_, err := svc.Create(context.Background(), CreateInput{
		UserID:      "user-123",
		Description: "Lost to the void",
	})
	assertAppError(t, err, 500)
	if len(notifier.inputs) != 0 {
		t.Error("expected no confirmation after a failed insert")
	}
}

func TestCreate_ConfirmationFailureIsNotFatal(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("broker offline")}
	svc := NewActivityService(&mockActivityRepo{}, notifier)

	a, err := svc.Create(context.Background(), CreateInput{
		UserID:      "user-123",
		Description: "Composted",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == nil || a.Description != "Composted" {
		t.Errorf("unexpected activity: %+v", a)
	}
}

func TestListForUser_ScopedToCaller(t *testing.T) {
	repo := &mockActivityRepo{
		listForUserFn: func(ctx context.Context, userID string) ([]Activity, error) {
			if userID != "user-123" {
				t.Errorf("expected user-123, got %s", userID)
			}
			return []Activity{{ID: "a-1", UserID: userID}}, nil
		},
	}
	svc := NewActivityService(repo, &recordingNotifier{})

	got, err := svc.ListForUser(context.Background(), "user-123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].ID != "a-1" {
		t.Errorf("unexpected list: %+v", got)
	}
}
