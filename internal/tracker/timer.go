package tracker

import (
	"context"
	"time"
)

// StartTimer runs the countdown until ctx is done or Stop is called.
// Any previously running timer is stopped first. Once started, the timer
// is restarted automatically by every NewGame.
func (t *Tracker) StartTimer(ctx context.Context) {
	t.mu.Lock()
	t.timerParent = ctx
	t.mu.Unlock()
	t.restartTimer()
}

// Stop halts the countdown and disables automatic restarts.
func (t *Tracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimerLocked()
	t.timerParent = nil
}

func (t *Tracker) restartTimer() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopTimerLocked()
	if t.timerParent == nil {
		return
	}
	ctx, cancel := context.WithCancel(t.timerParent)
	t.stopTimer = cancel
	go t.run(ctx, t.session, t.interval)
}

func (t *Tracker) stopTimerLocked() {
	if t.stopTimer != nil {
		t.stopTimer()
		t.stopTimer = nil
	}
}

func (t *Tracker) run(ctx context.Context, session string, every time.Duration) {
	tk := time.NewTicker(every)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			// The answer fetch on expiry must outlive the timer's own cancellation.
			t.tick(context.WithoutCancel(ctx), session)
		}
	}
}
