package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/taskhive/taskhive/internal/testenv"
)

func TestFindDueBetween(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	owner := env.User("owner@example.com")
	chain := env.Chain(owner.ID)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	soon := env.Card(chain.List.ID, "soon", owner.ID, now.Add(2*time.Hour))
	env.Card(chain.List.ID, "late", owner.ID, now.Add(48*time.Hour))
	env.Card(chain.List.ID, "past", owner.ID, now.Add(-time.Minute))
	env.Card(chain.List.ID, "none", owner.ID, time.Time{})
	edge := env.Card(chain.List.ID, "edge", owner.ID, now)

	cards, err := env.Cards.FindDueBetween(ctx, now, now.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 2 || cards[0].ID != edge.ID || cards[1].ID != soon.ID {
		t.Fatalf("due cards = %+v", cards)
	}

	// the end of the window is exclusive
	cards, err = env.Cards.FindDueBetween(ctx, now.Add(-time.Hour), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].Title != "past" {
		t.Errorf("cards before now = %+v", cards)
	}
}

func TestMarkReminderSent(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	owner := env.User("owner@example.com")
	chain := env.Chain(owner.ID)
	due := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	c := env.Card(chain.List.ID, "ship", owner.ID, due)

	if ok, err := env.Cards.MarkReminderSent(ctx, c.ID, due.Add(time.Hour)); err != nil || ok {
		t.Fatalf("mark with stale due date = %v, %v", ok, err)
	}
	ok, err := env.Cards.MarkReminderSent(ctx, c.ID, due)
	if err != nil || !ok {
		t.Fatalf("mark = %v, %v", ok, err)
	}
	if ok, _ := env.Cards.MarkReminderSent(ctx, c.ID, due); ok {
		t.Error("second mark changed the row")
	}

	got, err := env.Cards.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.ReminderSent {
		t.Error("reminder_sent not stored")
	}
	cards, err := env.Cards.FindDueBetween(ctx, due.Add(-time.Hour), due.Add(time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 0 {
		t.Errorf("reminded card still due: %+v", cards)
	}
}

func TestFindDueBetweenInWorkspaces(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	a := env.User("a@example.com")
	b := env.User("b@example.com")
	mine := env.Chain(a.ID)
	theirs := env.Chain(b.ID)

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	c := env.Card(mine.List.ID, "mine", a.ID, now.Add(time.Hour))
	env.Card(theirs.List.ID, "theirs", b.ID, now.Add(time.Hour))

	cards, err := env.Cards.FindDueBetweenInWorkspaces(ctx, []string{mine.Workspace.ID}, now, now.Add(24*time.Hour))
	if err != nil {
		t.Fatal(err)
	}
	if len(cards) != 1 || cards[0].ID != c.ID {
		t.Errorf("cards = %+v", cards)
	}
	cards, err = env.Cards.FindDueBetweenInWorkspaces(ctx, nil, now, now.Add(24*time.Hour))
	if err != nil || len(cards) != 0 {
		t.Errorf("no workspaces = %+v, %v", cards, err)
	}
}

func TestUpdateKeepsReminderFlagUnlessReset(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	owner := env.User("owner@example.com")
	chain := env.Chain(owner.ID)
	due := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	c := env.Card(chain.List.ID, "ship", owner.ID, due)

	// loaded before the scan marks the card
	stale, err := env.Cards.FindByID(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if ok, err := env.Cards.MarkReminderSent(ctx, c.ID, due); err != nil || !ok {
		t.Fatalf("mark = %v, %v", ok, err)
	}

	stale.Title = "ship it"
	if err := env.Cards.Update(ctx, stale, false); err != nil {
		t.Fatal(err)
	}
	got, _ := env.Cards.FindByID(ctx, c.ID)
	if got.Title != "ship it" || !got.ReminderSent {
		t.Errorf("title-only update = %q sent=%v, want flag kept", got.Title, got.ReminderSent)
	}

	later := due.Add(time.Hour)
	got.DueDate = &later
	if err := env.Cards.Update(ctx, got, true); err != nil {
		t.Fatal(err)
	}
	got, _ = env.Cards.FindByID(ctx, c.ID)
	if got.ReminderSent {
		t.Error("reset update left reminder_sent set")
	}
}
