package ratelimit

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLimiterAllowsUpToMax(t *testing.T) {
	Convey("a limiter admits up to max requests per key within the window", t, func() {
		l := New(5, time.Minute)
		for i := 0; i < 5; i++ {
			So(l.Allow("1.2.3.4").Allowed, ShouldBeTrue)
		}

		d := l.Allow("1.2.3.4")
		So(d.Allowed, ShouldBeFalse)
		So(d.RetryAfterSeconds, ShouldBeBetweenOrEqual, 0, 60)
	})
}

func TestLimiterResetsAfterWindow(t *testing.T) {
	Convey("a limiter resets once the window elapses", t, func() {
		l := New(1, time.Minute)
		current := time.Now()
		l.now = func() time.Time { return current }

		So(l.Allow("1.2.3.4").Allowed, ShouldBeTrue)
		So(l.Allow("1.2.3.4").Allowed, ShouldBeFalse)

		current = current.Add(time.Minute + time.Second)
		So(l.Allow("1.2.3.4").Allowed, ShouldBeTrue)
	})
}

func TestLimiterTracksKeysIndependently(t *testing.T) {
	Convey("a limiter tracks each key's budget independently", t, func() {
		l := New(1, time.Minute)
		So(l.Allow("a").Allowed, ShouldBeTrue)
		So(l.Allow("b").Allowed, ShouldBeTrue)
		So(l.Allow("a").Allowed, ShouldBeFalse)
	})
}

func TestEvictExpiredRemovesStaleBuckets(t *testing.T) {
	Convey("EvictExpired removes buckets whose window has elapsed", t, func() {
		l := New(1, time.Minute)
		current := time.Now()
		l.now = func() time.Time { return current }

		l.Allow("a")
		So(l.Len(), ShouldEqual, 1)

		current = current.Add(2 * time.Minute)
		l.EvictExpired()
		So(l.Len(), ShouldEqual, 0)
	})
}
