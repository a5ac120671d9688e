package focus

import (
	"sync"
	"time"
)

// RealScheduler ticks on wall-clock time using a goroutine per schedule.
type RealScheduler struct{}

func (RealScheduler) Every(d time.Duration, fn func()) func() {
	ticker := time.NewTicker(d)
	done := make(chan struct{})
	var once sync.Once

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				select {
				case <-done:
					return
				default:
				}
				fn()
			}
		}
	}()

	return func() {
		once.Do(func() { close(done) })
	}
}

// NotifierFunc adapts a function to Notifier. Permitted reports the value of Allowed.
type NotifierFunc struct {
	Allowed func() bool
	Send    func(title, body string) error
}

func (n NotifierFunc) Permitted() bool {
	return n.Allowed != nil && n.Allowed()
}

func (n NotifierFunc) Notify(title, body string) error {
	if n.Send == nil {
		return nil
	}
	return n.Send(title, body)
}
