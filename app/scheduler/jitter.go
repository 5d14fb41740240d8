package scheduler

import (
	"math/rand/v2"
	"time"
)

const (
	minPollingSec = 30
	maxPollingSec = 120

	// jitterFraction spreads ticks so guilds polling the same upstream do
	// not align.
	jitterFraction = 0.15

	// minDelay is the hard floor for any computed delay.
	minDelay = time.Second

	// maxStartupDelay bounds the random delay before a guild's first poll.
	maxStartupDelay = 30 * time.Second
)

// NextPollingDelay computes the delay until a guild's next poll: the
// configured interval clamped to the allowed range, with a fresh uniform
// jitter of ±15% applied every tick.
func NextPollingDelay(pollingSec int) time.Duration {
	if pollingSec < minPollingSec {
		pollingSec = minPollingSec
	}
	if pollingSec > maxPollingSec {
		pollingSec = maxPollingSec
	}

	base := time.Duration(pollingSec) * time.Second
	jitter := time.Duration((rand.Float64()*2 - 1) * jitterFraction * float64(base))

	delay := base + jitter
	if delay < minDelay {
		delay = minDelay
	}
	return delay
}

// StartupDelay returns a random delay in [0, 30s) applied before a guild's
// first poll, spreading the initial load across guilds.
func StartupDelay() time.Duration {
	return time.Duration(rand.Int64N(int64(maxStartupDelay)))
}
