package metrics

import (
	"testing"
	"time"
)

func TestSnapshotEmpty(t *testing.T) {
	r := NewRecorder()

	snap := r.Snapshot()
	if snap.PollTotal != 0 || snap.PollFailed != 0 {
		t.Errorf("empty snapshot has counts: %+v", snap)
	}
	if snap.LatencyMinMs != 0 || snap.LatencyAvgMs != 0 || snap.LatencyMaxMs != 0 {
		t.Errorf("empty snapshot has latencies: %+v", snap)
	}
}

func TestRecordPollTotals(t *testing.T) {
	r := NewRecorder()

	r.RecordPoll(true, 10*time.Millisecond)
	r.RecordPoll(true, 30*time.Millisecond)
	r.RecordPoll(false, 20*time.Millisecond)

	snap := r.Snapshot()
	if snap.PollTotal != 3 {
		t.Errorf("PollTotal = %d, want 3", snap.PollTotal)
	}
	if snap.PollSuccess != 2 {
		t.Errorf("PollSuccess = %d, want 2", snap.PollSuccess)
	}
	if snap.PollFailed != 1 {
		t.Errorf("PollFailed = %d, want 1", snap.PollFailed)
	}
	if snap.LatencyMinMs != 10 {
		t.Errorf("LatencyMinMs = %v, want 10", snap.LatencyMinMs)
	}
	if snap.LatencyAvgMs != 20 {
		t.Errorf("LatencyAvgMs = %v, want 20", snap.LatencyAvgMs)
	}
	if snap.LatencyMaxMs != 30 {
		t.Errorf("LatencyMaxMs = %v, want 30", snap.LatencyMaxMs)
	}
}

func TestLatencyWindowEvictsOldSamples(t *testing.T) {
	r := NewRecorder()

	r.RecordPoll(true, time.Second)
	for i := 0; i < latencyWindow; i++ {
		r.RecordPoll(true, 5*time.Millisecond)
	}

	snap := r.Snapshot()
	if snap.LatencyMaxMs != 5 {
		t.Errorf("LatencyMaxMs = %v, want 5 after old sample evicted", snap.LatencyMaxMs)
	}
	if snap.PollTotal != int64(latencyWindow)+1 {
		t.Errorf("PollTotal = %d, want %d", snap.PollTotal, latencyWindow+1)
	}
}

func TestRegistryRegistersOnce(t *testing.T) {
	r := NewRecorder()

	first := r.Registry()
	second := r.Registry()
	if first != second {
		t.Error("Registry() returned different instances")
	}
}
