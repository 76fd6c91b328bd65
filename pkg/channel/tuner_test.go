package channel

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/tunedial/tunedial-go/pkg/eventlog"
	"github.com/tunedial/tunedial-go/pkg/station"
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

// fakePublisher records published commands.
type fakePublisher struct {
	mu   sync.Mutex
	cmds []station.Command
}

func (f *fakePublisher) Publish(cmd station.Command) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cmds = append(f.cmds, cmd)
}

func (f *fakePublisher) Commands() []station.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]station.Command, len(f.cmds))
	copy(out, f.cmds)
	return out
}

var testLineup = []int{1, 2, 3, 8, 9, 13}

func testTuner(t *testing.T) (*Tuner, *fakeSink, *fakePublisher) {
	t.Helper()
	sink := &fakeSink{}
	pub := &fakePublisher{}
	config := Config{RejectHold: time.Millisecond, StepHold: time.Millisecond}
	tuner, err := NewTunerWithConfig(config, testLineup, sink, pub)
	if err != nil {
		t.Fatalf("NewTunerWithConfig() error = %v", err)
	}
	return tuner, sink, pub
}

func TestNewTunerRequiresChannels(t *testing.T) {
	if _, err := NewTuner(nil, nil, nil); err != ErrNoChannels {
		t.Errorf("NewTuner(nil) error = %v, want ErrNoChannels", err)
	}
	if _, err := NewTuner([]int{}, nil, nil); err != ErrNoChannels {
		t.Errorf("NewTuner(empty) error = %v, want ErrNoChannels", err)
	}
}

func TestNewTunerStartsOnFirstChannel(t *testing.T) {
	tuner, _, _ := testTuner(t)
	if got := tuner.Current(); got != 1 {
		t.Errorf("Current() = %d, want 1", got)
	}
}

func TestTuneMember(t *testing.T) {
	tuner, sink, pub := testTuner(t)

	if !tuner.Tune(8) {
		t.Fatal("Tune(8) = false, want true")
	}
	if got := tuner.Current(); got != 8 {
		t.Errorf("Current() = %d, want 8", got)
	}

	ops := sink.Ops()
	if len(ops) != 1 || ops[0] != "channel:8" {
		t.Errorf("Panel saw %v, want [channel:8]", ops)
	}

	cmds := pub.Commands()
	if len(cmds) != 1 {
		t.Fatalf("Published %d commands, want 1", len(cmds))
	}
	cmd := cmds[0]
	if cmd.Name != station.CmdDirect {
		t.Errorf("Command = %q, want %q", cmd.Name, station.CmdDirect)
	}
	if cmd.Channel == nil || *cmd.Channel != 8 {
		t.Errorf("Channel = %v, want 8", cmd.Channel)
	}
	if cmd.Valid == nil || !*cmd.Valid {
		t.Errorf("Valid = %v, want true", cmd.Valid)
	}
	if cmd.FallbackChannel != nil {
		t.Errorf("FallbackChannel = %v, want unset", cmd.FallbackChannel)
	}
}

func TestTuneNonMemberRevertsDisplay(t *testing.T) {
	tuner, sink, pub := testTuner(t)

	if tuner.Tune(12) {
		t.Fatal("Tune(12) = true, want false")
	}
	if got := tuner.Current(); got != 1 {
		t.Errorf("Current() = %d after rejected tune, want 1", got)
	}

	ops := sink.Ops()
	if len(ops) != 2 || ops[0] != "code:NOPE" || ops[1] != "channel:1" {
		t.Errorf("Panel saw %v, want [code:NOPE channel:1]", ops)
	}

	cmds := pub.Commands()
	if len(cmds) != 1 {
		t.Fatalf("Published %d commands, want 1", len(cmds))
	}
	cmd := cmds[0]
	if cmd.Name != station.CmdDirect {
		t.Errorf("Command = %q, want %q", cmd.Name, station.CmdDirect)
	}
	if cmd.Channel == nil || *cmd.Channel != 12 {
		t.Errorf("Channel = %v, want 12", cmd.Channel)
	}
	if cmd.Valid == nil || *cmd.Valid {
		t.Errorf("Valid = %v, want false", cmd.Valid)
	}
	if cmd.FallbackChannel == nil || *cmd.FallbackChannel != 1 {
		t.Errorf("FallbackChannel = %v, want 1", cmd.FallbackChannel)
	}
}

func TestStepWrapsForward(t *testing.T) {
	tuner, sink, pub := testTuner(t)
	tuner.SetCurrent(13)

	if got := tuner.Step(StepUp); got != 1 {
		t.Errorf("Step(StepUp) = %d from 13, want 1", got)
	}
	if got := tuner.Current(); got != 1 {
		t.Errorf("Current() = %d, want 1", got)
	}

	ops := sink.Ops()
	if len(ops) != 2 || ops[0] != "code:UP" || ops[1] != "channel:1" {
		t.Errorf("Panel saw %v, want [code:UP channel:1]", ops)
	}

	cmds := pub.Commands()
	if len(cmds) != 1 || cmds[0].Name != station.CmdUp {
		t.Fatalf("Published %v, want one %q command", cmds, station.CmdUp)
	}
	if cmds[0].Channel == nil || *cmds[0].Channel != 1 {
		t.Errorf("Channel = %v, want 1", cmds[0].Channel)
	}
}

func TestStepWrapsBackward(t *testing.T) {
	tuner, sink, pub := testTuner(t)

	if got := tuner.Step(StepDown); got != 13 {
		t.Errorf("Step(StepDown) = %d from 1, want 13", got)
	}

	ops := sink.Ops()
	if len(ops) != 2 || ops[0] != "code:Dn" || ops[1] != "channel:13" {
		t.Errorf("Panel saw %v, want [code:Dn channel:13]", ops)
	}

	cmds := pub.Commands()
	if len(cmds) != 1 || cmds[0].Name != station.CmdDown {
		t.Fatalf("Published %v, want one %q command", cmds, station.CmdDown)
	}
}

func TestStepWalksLineup(t *testing.T) {
	tuner, _, _ := testTuner(t)

	want := []int{2, 3, 8, 9, 13, 1}
	for _, channel := range want {
		if got := tuner.Step(StepUp); got != channel {
			t.Fatalf("Step(StepUp) = %d, want %d", got, channel)
		}
	}
}

func TestStepRecoversFromDesyncedSelection(t *testing.T) {
	tuner, _, _ := testTuner(t)

	// Force a selection outside the lineup; the index fallback restarts
	// the walk from the head.
	tuner.mu.Lock()
	tuner.current = 55
	tuner.mu.Unlock()

	if got := tuner.Step(StepUp); got != 2 {
		t.Errorf("Step(StepUp) = %d from desynced selection, want 2", got)
	}
}

func TestSetCurrent(t *testing.T) {
	tuner, sink, pub := testTuner(t)

	if !tuner.SetCurrent(9) {
		t.Error("SetCurrent(9) = false, want true")
	}
	if got := tuner.Current(); got != 9 {
		t.Errorf("Current() = %d, want 9", got)
	}

	if tuner.SetCurrent(7) {
		t.Error("SetCurrent(7) = true for a non-member, want false")
	}
	if got := tuner.Current(); got != 9 {
		t.Errorf("Current() = %d after rejected set, want 9", got)
	}

	// Seeding is silent.
	if ops := sink.Ops(); len(ops) != 0 {
		t.Errorf("Panel saw %v, want none", ops)
	}
	if cmds := pub.Commands(); len(cmds) != 0 {
		t.Errorf("Published %v, want none", cmds)
	}
}

func TestChannelsReturnsCopy(t *testing.T) {
	tuner, _, _ := testTuner(t)

	lineup := tuner.Channels()
	lineup[0] = 99

	if got := tuner.Channels()[0]; got != 1 {
		t.Errorf("Channels()[0] = %d after mutating a copy, want 1", got)
	}
}

func TestShowCurrent(t *testing.T) {
	tuner, sink, _ := testTuner(t)
	tuner.SetCurrent(3)
	tuner.ShowCurrent()

	ops := sink.Ops()
	if len(ops) != 1 || ops[0] != "channel:3" {
		t.Errorf("Panel saw %v, want [channel:3]", ops)
	}
}

func TestTuneEventCapture(t *testing.T) {
	tuner, _, _ := testTuner(t)

	mock := &captureLogger{}
	tuner.SetEventLogger(mock)

	tuner.Tune(8)
	tuner.Tune(12)
	tuner.Step(StepUp)

	events := mock.Events()
	if len(events) != 3 {
		t.Fatalf("Captured %d events, want 3", len(events))
	}

	valid := events[0]
	if valid.Source != eventlog.SourceTuner || valid.Tune == nil {
		t.Fatalf("Event 0 = %+v, want tuner tune event", valid)
	}
	if valid.Tune.Command != station.CmdDirect || valid.Tune.From != 1 || valid.Tune.To != 8 || !valid.Tune.Valid {
		t.Errorf("Tune 0 = %+v, want direct 1->8 valid", valid.Tune)
	}

	rejected := events[1]
	if rejected.Tune == nil || rejected.Tune.Valid {
		t.Fatalf("Event 1 = %+v, want invalid tune event", rejected)
	}
	if rejected.Tune.To != 12 || rejected.Tune.Fallback != 8 {
		t.Errorf("Tune 1 = %+v, want to=12 fallback=8", rejected.Tune)
	}

	step := events[2]
	if step.Tune == nil || step.Tune.Command != station.CmdUp || step.Tune.To != 9 {
		t.Errorf("Tune 2 = %+v, want up to 9", step.Tune)
	}
}

// captureLogger records events under a mutex.
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
