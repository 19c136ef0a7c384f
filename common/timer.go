package common

import (
	"math/rand"
	"sync"
	"time"
)

type TimerHandle struct {
	timer   *time.Timer
	lock    sync.Mutex
	stopped bool
}

// Stop stops the timer without waiting for it to complete if it's already running
func (t *TimerHandle) Stop() {
	t.lock.Lock()
	defer t.lock.Unlock()
	t.stopped = true
	t.timer.Stop()
}

func ScheduleTimer(delay time.Duration, randomise bool, action func()) *TimerHandle {
	if randomise {
		// The first time, we schedule a random delay, to stop all timers firing at the same time
		delay = time.Duration(rand.Intn(int(delay)))
	}
	var handle TimerHandle
	handle.timer = time.AfterFunc(delay, func() {
		handle.lock.Lock()
		stopped := handle.stopped
		handle.lock.Unlock()
		if stopped {
			return
		}
		action()
	})
	return &handle
}
