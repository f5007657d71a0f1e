package notifications

import (
	"context"
	"testing"

	"github.com/intizom/intizom/internal/app/domain/user"
	"github.com/intizom/intizom/internal/app/storage/memory"
	"github.com/intizom/intizom/internal/errors"
)

func seedUsers(t *testing.T, store *memory.Store, emails ...string) []user.User {
	t.Helper()
	var out []user.User
	for _, email := range emails {
		u, err := store.CreateUser(context.Background(), user.User{Email: email, Name: "Test", Role: user.RoleUser, Plan: user.PlanTrial})
		if err != nil {
			t.Fatalf("seed %s: %v", email, err)
		}
		out = append(out, u)
	}
	return out
}

func TestSendAndMarkRead(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	users := seedUsers(t, store, "a@example.com")

	n, err := svc.Send(context.Background(), users[0].ID, "Welcome", "Get started")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.Read() {
		t.Fatalf("new notification must start unread")
	}

	read, err := svc.MarkRead(context.Background(), users[0].ID, n.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.Read() {
		t.Fatalf("expected read timestamp set")
	}

	again, err := svc.MarkRead(context.Background(), users[0].ID, n.ID)
	if err != nil {
		t.Fatalf("second mark read: %v", err)
	}
	if !again.ReadAt.Equal(read.ReadAt) {
		t.Fatalf("second read must not restamp")
	}
}

func TestMarkReadChecksOwnership(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	users := seedUsers(t, store, "a@example.com", "b@example.com")

	n, err := svc.Send(context.Background(), users[0].ID, "Welcome", "")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	_, err = svc.MarkRead(context.Background(), users[1].ID, n.ID)
	se := errors.GetServiceError(err)
	if se == nil || se.Code != errors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestBroadcastReachesEveryUser(t *testing.T) {
	store := memory.New()
	svc := New(store, store, nil)
	users := seedUsers(t, store, "a@example.com", "b@example.com", "c@example.com")

	sent, err := svc.Broadcast(context.Background(), "Maintenance tonight", "Back at 03:00 UTC")
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if sent != 3 {
		t.Fatalf("sent = %d, want 3", sent)
	}
	for _, u := range users {
		list, err := svc.List(context.Background(), u.ID)
		if err != nil {
			t.Fatalf("list for %s: %v", u.Email, err)
		}
		if len(list) != 1 || list[0].Title != "Maintenance tonight" {
			t.Fatalf("unexpected inbox for %s: %+v", u.Email, list)
		}
	}

	if _, err := svc.Broadcast(context.Background(), "  ", ""); err == nil {
		t.Fatalf("expected validation error for blank title")
	}
}
