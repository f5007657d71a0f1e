package subscriptions

import (
	"context"
	"testing"
	"time"

	"github.com/intizom/intizom/internal/app/domain/user"
	"github.com/intizom/intizom/internal/app/storage/memory"
	"github.com/intizom/intizom/internal/errors"
)

func seedUser(t *testing.T, store *memory.Store, plan user.Plan, trialEndsAt time.Time) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		Email:       string(plan) + "@example.com",
		Name:        "Test",
		Role:        user.RoleUser,
		Plan:        plan,
		TrialEndsAt: trialEndsAt,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestGateAllowsActivePlans(t *testing.T) {
	store := memory.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := New(store, nil).WithClock(func() time.Time { return now })

	pro := seedUser(t, store, user.PlanPro, time.Time{})
	if err := svc.Gate(context.Background(), pro.ID); err != nil {
		t.Fatalf("pro gate: %v", err)
	}

	trial := seedUser(t, store, user.PlanTrial, now.AddDate(0, 0, 7))
	if err := svc.Gate(context.Background(), trial.ID); err != nil {
		t.Fatalf("trial gate: %v", err)
	}
}

func TestGateDowngradesLapsedTrial(t *testing.T) {
	store := memory.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := New(store, nil).WithClock(func() time.Time { return now })

	lapsed := seedUser(t, store, user.PlanTrial, now.AddDate(0, 0, -1))
	err := svc.Gate(context.Background(), lapsed.ID)
	se := errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodePlanExpired {
		t.Fatalf("expected plan expired, got %v", err)
	}

	reloaded, err := store.GetUser(context.Background(), lapsed.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Plan != user.PlanExpired {
		t.Fatalf("plan = %s, want expired after lapsed gate", reloaded.Plan)
	}

	// Still gated on the next call.
	err = svc.Gate(context.Background(), lapsed.ID)
	se = errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodePlanExpired {
		t.Fatalf("expected plan expired on expired plan, got %v", err)
	}
}

func TestGrantProLiftsGate(t *testing.T) {
	store := memory.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := New(store, nil).WithClock(func() time.Time { return now })

	expired := seedUser(t, store, user.PlanExpired, time.Time{})
	if err := svc.Gate(context.Background(), expired.ID); err == nil {
		t.Fatalf("expected expired account gated")
	}

	upgraded, err := svc.GrantPro(context.Background(), expired.ID)
	if err != nil {
		t.Fatalf("grant pro: %v", err)
	}
	if upgraded.Plan != user.PlanPro {
		t.Fatalf("plan = %s, want pro", upgraded.Plan)
	}
	if err := svc.Gate(context.Background(), expired.ID); err != nil {
		t.Fatalf("gate after grant: %v", err)
	}
}

func TestExtendTrialFromNowWhenLapsed(t *testing.T) {
	store := memory.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := New(store, nil).WithClock(func() time.Time { return now })

	lapsed := seedUser(t, store, user.PlanExpired, now.AddDate(0, 0, -30))
	extended, err := svc.ExtendTrial(context.Background(), lapsed.ID, 7)
	if err != nil {
		t.Fatalf("extend: %v", err)
	}
	if extended.Plan != user.PlanTrial {
		t.Fatalf("plan = %s, want trial", extended.Plan)
	}
	if want := now.AddDate(0, 0, 7); !extended.TrialEndsAt.Equal(want) {
		t.Fatalf("trial_ends_at = %v, want %v", extended.TrialEndsAt, want)
	}

	if _, err := svc.ExtendTrial(context.Background(), lapsed.ID, 0); err == nil {
		t.Fatalf("expected validation error for zero days")
	}
}

func TestSweepDowngradesOnlyLapsedTrials(t *testing.T) {
	store := memory.New()
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	svc := New(store, nil).WithClock(func() time.Time { return now })

	lapsed := seedUser(t, store, user.PlanTrial, now.AddDate(0, 0, -2))
	active := store2user(t, store, "active@example.com", user.PlanTrial, now.AddDate(0, 0, 2))
	pro := store2user(t, store, "pro2@example.com", user.PlanPro, time.Time{})

	expired, err := svc.SweepExpiredTrials(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if len(expired) != 1 || expired[0] != lapsed.ID {
		t.Fatalf("expired = %v, want just %s", expired, lapsed.ID)
	}

	for _, tc := range []struct {
		id   string
		want user.Plan
	}{
		{lapsed.ID, user.PlanExpired},
		{active.ID, user.PlanTrial},
		{pro.ID, user.PlanPro},
	} {
		u, err := store.GetUser(context.Background(), tc.id)
		if err != nil {
			t.Fatalf("reload %s: %v", tc.id, err)
		}
		if u.Plan != tc.want {
			t.Fatalf("user %s plan = %s, want %s", tc.id, u.Plan, tc.want)
		}
	}
}

func store2user(t *testing.T, store *memory.Store, email string, plan user.Plan, trialEndsAt time.Time) user.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), user.User{
		Email:       email,
		Name:        "Test",
		Role:        user.RoleUser,
		Plan:        plan,
		TrialEndsAt: trialEndsAt,
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}
