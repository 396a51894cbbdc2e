package reminder

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	cardstructs "github.com/taskhive/taskhive/biz/card/structs"
	"github.com/taskhive/taskhive/config"
	userstructs "github.com/taskhive/taskhive/core/user/structs"
	"github.com/taskhive/taskhive/internal/testenv"
	"github.com/taskhive/taskhive/logging/logger"
	"github.com/taskhive/taskhive/metrics"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return now }

type notifier struct {
	mu   sync.Mutex
	sent map[string]int
	fail map[string]bool
	hold chan struct{}
}

func newNotifier() *notifier {
	return &notifier{sent: map[string]int{}, fail: map[string]bool{}}
}

func (n *notifier) SendReminder(_ context.Context, to *userstructs.User, c *cardstructs.Card) error {
	if n.hold != nil {
		<-n.hold
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[c.ID] {
		return errors.New("smtp down")
	}
	n.sent[to.Email+"/"+c.ID]++
	return nil
}

func (n *notifier) total() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	total := 0
	for _, v := range n.sent {
		total += v
	}
	return total
}

func TestRunOnceSendsOnce(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	a := env.User("a@example.com")
	chain := env.Chain(a.ID)
	due := env.Card(chain.List.ID, "Ship", a.ID, now.Add(30*time.Minute))
	later := env.Card(chain.List.ID, "Later", a.ID, now.Add(3*time.Hour))

	n := newNotifier()
	r := NewRunner(env.Cards, env.Users, n, logger.Nop(), nil, WithClock(fixedClock))

	res, err := r.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 1 || res.Sent != 1 || res.Failed != 0 || res.Skipped != 0 {
		t.Errorf("result = %+v", res)
	}
	if !res.StartedAt.Equal(now) || !res.WindowEnd.Equal(now.Add(time.Hour)) {
		t.Errorf("window = %v..%v", res.StartedAt, res.WindowEnd)
	}
	if n.sent["a@example.com/"+due.ID] != 1 {
		t.Errorf("sent = %v", n.sent)
	}
	stored, err := env.Cards.FindByID(ctx, due.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.ReminderSent {
		t.Error("reminder_sent not set")
	}
	untouched, _ := env.Cards.FindByID(ctx, later.ID)
	if untouched.ReminderSent {
		t.Error("card outside the window was marked")
	}

	res, err = r.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 0 || n.total() != 1 {
		t.Errorf("second run = %+v, sent %v", res, n.sent)
	}
}

func TestRunOnceSkipsAndFailures(t *testing.T) {
	ctx := context.Background()
	env := testenv.New(t)
	a := env.User("a@example.com")
	chain := env.Chain(a.ID)
	soon := now.Add(10 * time.Minute)

	unassigned := env.Card(chain.List.ID, "nobody", "", soon)
	ghost := env.Card(chain.List.ID, "ghost", "deleted-user", soon)
	broken := env.Card(chain.List.ID, "broken", a.ID, soon)
	ok := env.Card(chain.List.ID, "ok", a.ID, soon)

	n := newNotifier()
	n.fail[broken.ID] = true
	r := NewRunner(env.Cards, env.Users, n, logger.Nop(), &config.Reminder{Workers: 2}, WithClock(fixedClock))

	res, err := r.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 4 || res.Sent != 1 || res.Skipped != 2 || res.Failed != 1 {
		t.Errorf("result = %+v", res)
	}
	for _, id := range []string{unassigned.ID, ghost.ID, broken.ID} {
		c, _ := env.Cards.FindByID(ctx, id)
		if c.ReminderSent {
			t.Errorf("card %s marked without a delivered reminder", c.Title)
		}
	}
	if c, _ := env.Cards.FindByID(ctx, ok.ID); !c.ReminderSent {
		t.Error("delivered card not marked")
	}

	// the failed card is retried on the next scan
	delete(n.fail, broken.ID)
	res, err = r.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent != 1 || res.Skipped != 2 {
		t.Errorf("retry result = %+v", res)
	}
}

type failingStore struct{}

func (failingStore) FindDueBetween(context.Context, time.Time, time.Time) ([]*cardstructs.Card, error) {
	return nil, errors.New("db gone")
}

func (failingStore) MarkReminderSent(context.Context, string, time.Time) (bool, error) {
	return false, errors.New("unexpected mark")
}

func TestRunOnceQueryFailure(t *testing.T) {
	r := NewRunner(failingStore{}, nil, newNotifier(), logger.Nop(), nil)
	if _, err := r.RunOnce(context.Background()); err == nil {
		t.Fatal("query failure not returned")
	}
}

// countingStore hands out one due card until it is marked.
type countingStore struct {
	mu       sync.Mutex
	marked   bool
	queries  atomic.Int32
	due      time.Time
	assignee string
}

func (s *countingStore) FindDueBetween(context.Context, time.Time, time.Time) ([]*cardstructs.Card, error) {
	s.queries.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.marked {
		return nil, nil
	}
	due := s.due
	return []*cardstructs.Card{{ID: "c1", Title: "Ship", AssigneeID: s.assignee, DueDate: &due}}, nil
}

func (s *countingStore) MarkReminderSent(context.Context, string, time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.marked {
		return false, nil
	}
	s.marked = true
	return true, nil
}

type users map[string]*userstructs.User

func (u users) FindByID(_ context.Context, id string) (*userstructs.User, error) {
	if x, ok := u[id]; ok {
		return x, nil
	}
	return nil, errors.New("not found")
}

func TestRunOnceSerialised(t *testing.T) {
	store := &countingStore{due: now.Add(time.Minute), assignee: "u1"}
	n := newNotifier()
	n.hold = make(chan struct{})
	r := NewRunner(store, users{"u1": {ID: "u1", Email: "u1@example.com"}}, n, logger.Nop(), nil, WithClock(fixedClock))

	var wg sync.WaitGroup
	results := make([]int, 2)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := r.RunOnce(context.Background())
			if err != nil {
				t.Error(err)
				return
			}
			results[i] = res.Sent
		}()
	}
	// while the first send is held the second scan must not query
	deadline := time.Now().Add(2 * time.Second)
	for store.queries.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)
	if q := store.queries.Load(); q != 1 {
		t.Errorf("queries while a scan runs = %d", q)
	}
	close(n.hold)
	wg.Wait()

	if results[0]+results[1] != 1 || n.total() != 1 {
		t.Errorf("sent = %v, notifier %v", results, n.sent)
	}
}

func TestStartStop(t *testing.T) {
	store := &countingStore{due: now.Add(time.Minute), assignee: "u1"}
	n := newNotifier()
	r := NewRunner(store, users{"u1": {ID: "u1", Email: "u1@example.com"}}, n, logger.Nop(),
		&config.Reminder{Interval: 5 * time.Millisecond}, WithClock(fixedClock))

	r.Start(context.Background())
	r.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for n.total() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	r.Stop()
	r.Stop()
	if n.total() != 1 {
		t.Errorf("ticker sends = %d", n.total())
	}
}

// cancelOnSend delivers the reminder and then cancels the scan's context,
// like a manual trigger whose caller went away mid-dispatch.
type cancelOnSend struct {
	cancel context.CancelFunc
	sent   atomic.Int32
}

func (c *cancelOnSend) SendReminder(context.Context, *userstructs.User, *cardstructs.Card) error {
	c.sent.Add(1)
	c.cancel()
	return nil
}

func TestRunOnceMarksAfterCallerCancels(t *testing.T) {
	env := testenv.New(t)
	a := env.User("a@example.com")
	chain := env.Chain(a.ID)
	card := env.Card(chain.List.ID, "Ship", a.ID, now.Add(30*time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	n := &cancelOnSend{cancel: cancel}
	c := metrics.NewCollector("", 10)
	r := NewRunner(env.Cards, env.Users, n, logger.Nop(), nil, WithClock(fixedClock), WithMetrics(c))

	res, err := r.RunOnce(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if res.Sent != 1 || res.Failed != 0 {
		t.Errorf("result = %+v", res)
	}
	stored, err := env.Cards.FindByID(context.Background(), card.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !stored.ReminderSent {
		t.Fatal("delivered reminder not marked after cancellation")
	}

	res, err = r.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.Scanned != 0 || n.sent.Load() != 1 {
		t.Errorf("second scan = %+v, sends %d", res, n.sent.Load())
	}

	if c.GetCounter("reminder_sent") != 1 || c.GetCounter("reminder_tasks_completed") != 1 || c.GetCounter("reminder_scans") != 2 {
		t.Errorf("metrics = %+v", c.Snapshot()["counters"])
	}
}
