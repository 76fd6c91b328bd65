package dial

import (
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tunedial/tunedial-go/pkg/cooldown"
	"github.com/tunedial/tunedial-go/pkg/egg"
	"github.com/tunedial/tunedial-go/pkg/eventlog"
)

// fakeSink records panel operations in order.
type fakeSink struct {
	mu  sync.Mutex
	ops []string
}

func (f *fakeSink) ShowDigits(seq string) { f.record("digits:" + seq) }

func (f *fakeSink) ShowCode(text string) { f.record("code:" + text) }

func (f *fakeSink) ShowChannel(channel int) { f.record("channel:" + strconv.Itoa(channel)) }

func (f *fakeSink) record(op string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, op)
}

func (f *fakeSink) Ops() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ops))
	copy(out, f.ops)
	return out
}

func (f *fakeSink) Last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.ops) == 0 {
		return ""
	}
	return f.ops[len(f.ops)-1]
}

// fakeTuner records tune attempts against a fixed channel list.
type fakeTuner struct {
	mu      sync.Mutex
	valid   map[int]bool
	current int
	tuned   []int
}

func newFakeTuner(current int, valid ...int) *fakeTuner {
	t := &fakeTuner{current: current, valid: make(map[int]bool)}
	for _, channel := range valid {
		t.valid[channel] = true
	}
	return t
}

func (t *fakeTuner) Tune(channel int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tuned = append(t.tuned, channel)
	if t.valid[channel] {
		t.current = channel
		return true
	}
	return false
}

func (t *fakeTuner) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

func (t *fakeTuner) Tuned() []int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]int, len(t.tuned))
	copy(out, t.tuned)
	return out
}

// countingAction counts invocations and optionally fails.
type countingAction struct {
	mu    sync.Mutex
	name  string
	err   error
	count int
}

func (a *countingAction) Name() string { return a.name }

func (a *countingAction) Run() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.count++
	return a.err
}

func (a *countingAction) Count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.count
}

func testConfig() Config {
	return Config{
		DigitTimeout: 50 * time.Millisecond,
		ErrorHold:    time.Millisecond,
		SettleHold:   time.Millisecond,
	}
}

func newTestDialer(t *testing.T) (*Dialer, *fakeSink, *fakeTuner, *egg.Registry) {
	t.Helper()
	sink := &fakeSink{}
	tuner := newFakeTuner(1, 1, 2, 3, 8, 9, 13)
	eggs := egg.NewRegistry()
	d := NewDialerWithConfig(testConfig(), sink, tuner, eggs, cooldown.NewManager())
	return d, sink, tuner, eggs
}

func TestAddDigitEchoesBuffer(t *testing.T) {
	d, sink, _, _ := newTestDialer(t)

	if err := d.AddDigit(1); err != nil {
		t.Fatalf("AddDigit(1) error = %v", err)
	}
	if err := d.AddDigit(3); err != nil {
		t.Fatalf("AddDigit(3) error = %v", err)
	}

	if got := d.Buffer(); got != "13" {
		t.Errorf("Buffer() = %q, want %q", got, "13")
	}
	if got := d.State(); got != StateAccumulating {
		t.Errorf("State() = %v, want StateAccumulating", got)
	}

	ops := sink.Ops()
	if len(ops) != 2 || ops[0] != "digits:1" || ops[1] != "digits:13" {
		t.Errorf("Panel saw %v, want [digits:1 digits:13]", ops)
	}
}

func TestAddDigitRejectsOutOfRange(t *testing.T) {
	d, sink, _, _ := newTestDialer(t)

	for _, digit := range []int{-1, 10, 42} {
		if err := d.AddDigit(digit); err != ErrInvalidDigit {
			t.Errorf("AddDigit(%d) error = %v, want ErrInvalidDigit", digit, err)
		}
	}

	if got := d.State(); got != StateIdle {
		t.Errorf("State() = %v after rejected digits, want StateIdle", got)
	}
	if ops := sink.Ops(); len(ops) != 0 {
		t.Errorf("Panel saw %v, want no operations", ops)
	}
}

func TestQuietPeriodResolvesToTune(t *testing.T) {
	d, _, tuner, _ := newTestDialer(t)

	d.AddDigit(1)
	d.AddDigit(3)

	time.Sleep(100 * time.Millisecond)

	if tuned := tuner.Tuned(); len(tuned) != 1 || tuned[0] != 13 {
		t.Errorf("Tuned %v, want [13]", tuned)
	}
	if got := d.State(); got != StateIdle {
		t.Errorf("State() = %v after resolution, want StateIdle", got)
	}
	if got := d.Buffer(); got != "" {
		t.Errorf("Buffer() = %q after resolution, want empty", got)
	}
}

func TestDigitRestartsQuietPeriod(t *testing.T) {
	d, _, tuner, _ := newTestDialer(t)

	d.AddDigit(1)
	time.Sleep(35 * time.Millisecond)
	d.AddDigit(2)

	// 70ms after the first digit the original timer would have fired;
	// the second digit replaced it.
	time.Sleep(35 * time.Millisecond)
	if tuned := tuner.Tuned(); len(tuned) != 0 {
		t.Fatalf("Tuned %v before the restarted quiet period elapsed", tuned)
	}

	time.Sleep(60 * time.Millisecond)
	if tuned := tuner.Tuned(); len(tuned) != 1 || tuned[0] != 12 {
		t.Errorf("Tuned %v, want [12] as one joined sequence", tuned)
	}
}

func TestExactMatchFiresWithoutTimeout(t *testing.T) {
	d, _, tuner, eggs := newTestDialer(t)

	action := &countingAction{name: "reset"}
	if err := eggs.Register(egg.Descriptor{
		Key:      "0000",
		Label:    "RST",
		Action:   action,
		Cooldown: 3 * time.Second,
	}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	for i := 0; i < 4; i++ {
		d.AddDigit(0)
	}

	// The fourth digit completes the key: fired immediately, buffer
	// consumed, nothing pending.
	if got := action.Count(); got != 1 {
		t.Errorf("Action ran %d times, want 1", got)
	}
	if got := d.Buffer(); got != "" {
		t.Errorf("Buffer() = %q immediately after match, want empty", got)
	}
	if got := d.State(); got != StateIdle {
		t.Errorf("State() = %v immediately after match, want StateIdle", got)
	}

	time.Sleep(100 * time.Millisecond)
	if tuned := tuner.Tuned(); len(tuned) != 0 {
		t.Errorf("Tuned %v, want none (buffer was consumed by the match)", tuned)
	}
}

func TestPrefixShadowsLongerKey(t *testing.T) {
	d, _, tuner, eggs := newTestDialer(t)

	short := &countingAction{name: "short"}
	long := &countingAction{name: "long"}
	eggs.Register(egg.Descriptor{Key: "123", Action: short, Cooldown: time.Millisecond})
	eggs.Register(egg.Descriptor{Key: "1234", Action: long, Cooldown: time.Millisecond})

	d.AddDigit(1)
	d.AddDigit(2)
	d.AddDigit(3)
	d.AddDigit(4)

	time.Sleep(100 * time.Millisecond)

	if got := short.Count(); got != 1 {
		t.Errorf("Short key ran %d times, want 1", got)
	}
	if got := long.Count(); got != 0 {
		t.Errorf("Long key ran %d times, want 0 (shadowed by its prefix)", got)
	}

	// The digit after the match started a fresh sequence.
	if tuned := tuner.Tuned(); len(tuned) != 1 || tuned[0] != 4 {
		t.Errorf("Tuned %v, want [4]", tuned)
	}
}

func TestBlockedMatchStillConsumesDigits(t *testing.T) {
	d, _, tuner, eggs := newTestDialer(t)

	action := &countingAction{name: "emergency"}
	eggs.Register(egg.Descriptor{
		Key:      "911",
		Label:    "SHIT",
		Action:   action,
		Cooldown: time.Hour,
	})

	dial911 := func() {
		d.AddDigit(9)
		d.AddDigit(1)
		d.AddDigit(1)
	}

	dial911()
	if got := action.Count(); got != 1 {
		t.Fatalf("Action ran %d times after first dial, want 1", got)
	}

	dial911()
	if got := action.Count(); got != 1 {
		t.Errorf("Action ran %d times after blocked dial, want still 1", got)
	}
	if got := d.Buffer(); got != "" {
		t.Errorf("Buffer() = %q after blocked match, want empty", got)
	}

	// The blocked sequence must not fall through to channel tuning.
	time.Sleep(100 * time.Millisecond)
	if tuned := tuner.Tuned(); len(tuned) != 0 {
		t.Errorf("Tuned %v, want none", tuned)
	}
}

func TestResolveRechecksRegistry(t *testing.T) {
	d, _, tuner, eggs := newTestDialer(t)

	action := &countingAction{name: "late"}

	d.AddDigit(4)
	d.AddDigit(2)

	// Register the key mid-accumulation; the quiet-period resolution
	// picks it up.
	eggs.Register(egg.Descriptor{Key: "42", Action: action, Cooldown: time.Second})

	time.Sleep(100 * time.Millisecond)

	if got := action.Count(); got != 1 {
		t.Errorf("Action ran %d times, want 1", got)
	}
	if tuned := tuner.Tuned(); len(tuned) != 0 {
		t.Errorf("Tuned %v, want none", tuned)
	}
}

func TestOverflowingBufferShowsError(t *testing.T) {
	d, sink, tuner, _ := newTestDialer(t)

	// Twenty digits overflow int parsing; the buffer cannot resolve.
	for i := 0; i < 20; i++ {
		d.AddDigit(9)
	}

	time.Sleep(100 * time.Millisecond)

	if tuned := tuner.Tuned(); len(tuned) != 0 {
		t.Errorf("Tuned %v, want none", tuned)
	}

	ops := sink.Ops()
	if len(ops) < 2 {
		t.Fatalf("Panel saw %v, want error code and channel redisplay", ops)
	}
	if ops[len(ops)-2] != "code:ERR" {
		t.Errorf("Panel op = %q, want code:ERR", ops[len(ops)-2])
	}
	if ops[len(ops)-1] != "channel:1" {
		t.Errorf("Panel op = %q, want channel:1 redisplay", ops[len(ops)-1])
	}
	if got := d.State(); got != StateIdle {
		t.Errorf("State() = %v after error recovery, want StateIdle", got)
	}
}

func TestClearCancelsPendingResolution(t *testing.T) {
	d, sink, tuner, _ := newTestDialer(t)

	d.AddDigit(1)
	d.AddDigit(3)
	d.Clear()

	if got := d.State(); got != StateIdle {
		t.Errorf("State() = %v after Clear, want StateIdle", got)
	}
	if got := sink.Last(); got != "channel:1" {
		t.Errorf("Panel shows %q after Clear, want channel:1", got)
	}

	time.Sleep(100 * time.Millisecond)
	if tuned := tuner.Tuned(); len(tuned) != 0 {
		t.Errorf("Tuned %v after Clear, want none", tuned)
	}

	// Idempotent.
	d.Clear()
	d.Clear()
}

func TestTriggerUnknownKey(t *testing.T) {
	d, _, _, _ := newTestDialer(t)

	fired, err := d.Trigger("nothing")
	if fired {
		t.Error("Trigger() fired for an unregistered key")
	}
	if !errors.Is(err, ErrUnknownKey) {
		t.Errorf("Trigger() error = %v, want ErrUnknownKey", err)
	}
}

func TestTriggerRunsActionAndSettles(t *testing.T) {
	d, sink, _, eggs := newTestDialer(t)

	action := &countingAction{name: "crossfade"}
	eggs.Register(egg.Descriptor{
		Key:      "DIGITAL_ANALOG",
		Label:    "8bit",
		Action:   action,
		Cooldown: 3 * time.Second,
	})

	fired, err := d.Trigger("DIGITAL_ANALOG")
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	if !fired {
		t.Fatal("Trigger() = false, want fired")
	}
	if got := action.Count(); got != 1 {
		t.Errorf("Action ran %d times, want 1", got)
	}

	ops := sink.Ops()
	if len(ops) != 2 || ops[0] != "code:8bit" || ops[1] != "channel:1" {
		t.Errorf("Panel saw %v, want [code:8bit channel:1]", ops)
	}
}

func TestTriggerBlockedByCooldown(t *testing.T) {
	d, sink, _, eggs := newTestDialer(t)

	action := &countingAction{name: "crossfade"}
	eggs.Register(egg.Descriptor{
		Key:      "DIGITAL_ANALOG",
		Action:   action,
		Cooldown: time.Hour,
	})

	if fired, _ := d.Trigger("DIGITAL_ANALOG"); !fired {
		t.Fatal("First trigger should fire")
	}

	fired, err := d.Trigger("DIGITAL_ANALOG")
	if err != nil {
		t.Errorf("Blocked Trigger() error = %v, want nil", err)
	}
	if fired {
		t.Error("Trigger() fired inside the cooldown window")
	}
	if got := action.Count(); got != 1 {
		t.Errorf("Action ran %d times, want 1", got)
	}

	// The blocked trigger shows the remaining cooldown, then puts the
	// channel back.
	ops := sink.Ops()
	if len(ops) != 3 || ops[1] != "code:CD60" || ops[2] != "channel:1" {
		t.Errorf("Panel saw %v, want blocked feedback [... code:CD60 channel:1]", ops)
	}
}

func TestCooldownCode(t *testing.T) {
	cases := []struct {
		remaining time.Duration
		want      string
	}{
		{45 * time.Second, "CD45"},
		{5 * time.Second, "CD05"},
		{time.Minute, "CD01"},
		{30 * time.Minute, "CD30"},
		{time.Hour, "CD60"},
		{3 * time.Hour, "CD99"},
	}
	for _, tc := range cases {
		if got := cooldownCode(tc.remaining); got != tc.want {
			t.Errorf("cooldownCode(%v) = %q, want %q", tc.remaining, got, tc.want)
		}
	}
}

func TestActionFailureDoesNotRollBackActivation(t *testing.T) {
	d, _, _, eggs := newTestDialer(t)

	action := &countingAction{name: "flaky", err: errors.New("player offline")}
	eggs.Register(egg.Descriptor{
		Key:      "404",
		Action:   action,
		Cooldown: time.Hour,
	})

	fired, err := d.Trigger("404")
	if err != nil {
		t.Fatalf("Trigger() error = %v, want nil (failures are logged, not returned)", err)
	}
	if !fired {
		t.Fatal("Trigger() = false, want fired")
	}

	// The failed run consumed the activation; the key is in cooldown.
	if fired, _ := d.Trigger("404"); fired {
		t.Error("Second trigger fired; the failed action should have consumed the window")
	}
}

func TestTimedEffectCleanupAfterTrigger(t *testing.T) {
	d, _, _, eggs := newTestDialer(t)

	var mu sync.Mutex
	cleanups := 0

	eggs.Register(egg.Descriptor{
		Key:            "666",
		Action:         &countingAction{name: "demon"},
		Cleanup:        func() { mu.Lock(); cleanups++; mu.Unlock() },
		Cooldown:       time.Hour,
		EffectDuration: 40 * time.Millisecond,
	})

	if fired, err := d.Trigger("666"); err != nil || !fired {
		t.Fatalf("Trigger() = %v, %v; want fired", fired, err)
	}

	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if cleanups != 1 {
		t.Errorf("Cleanup ran %d times, want 1", cleanups)
	}
}

func TestEventCapture(t *testing.T) {
	sink := &fakeSink{}
	tuner := newFakeTuner(1, 1, 2, 3, 8, 9, 13)
	eggs := egg.NewRegistry()
	d := NewDialerWithConfig(testConfig(), sink, tuner, eggs, cooldown.NewManager())

	mock := &captureLogger{}
	d.SetEventLogger(mock)

	d.AddDigit(1)
	d.AddDigit(3)
	time.Sleep(100 * time.Millisecond)

	events := mock.Events()
	var outcomes []eventlog.DialOutcome
	for _, e := range events {
		if e.Dial != nil {
			outcomes = append(outcomes, e.Dial.Outcome)
		}
	}

	want := []eventlog.DialOutcome{
		eventlog.DialDigit,
		eventlog.DialDigit,
		eventlog.DialResolved,
	}
	if len(outcomes) != len(want) {
		t.Fatalf("Captured outcomes %v, want %v", outcomes, want)
	}
	for i := range want {
		if outcomes[i] != want[i] {
			t.Errorf("Outcome[%d] = %v, want %v", i, outcomes[i], want[i])
		}
	}

	last := events[len(events)-1]
	if last.Dial == nil || last.Dial.Channel != 13 {
		t.Errorf("Resolved event channel = %+v, want 13", last.Dial)
	}
	if last.Source != eventlog.SourceDialer {
		t.Errorf("Source = %v, want SourceDialer", last.Source)
	}
}

// captureLogger records events under a mutex; timer callbacks log from
// their own goroutine.
type captureLogger struct {
	mu     sync.Mutex
	events []eventlog.Event
}

func (c *captureLogger) Log(event eventlog.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
}

func (c *captureLogger) Events() []eventlog.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]eventlog.Event, len(c.events))
	copy(out, c.events)
	return out
}
