package controller

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mpunie/govelbus/pkgs/frame"
	"github.com/mpunie/govelbus/pkgs/messages"
)

// SyncClock pushes the host's local time to every module on the bus: the
// current weekday/time, the date, and the current daylight-saving state,
// per spec.md §3's clock-sync operation. Broadcast at the protocol's
// reserved all-modules address (0x00), matching set_realtime_clock.py's
// "every module listens" framing.
func (c *Controller) SyncClock() error {
	if c.sender == nil {
		return ErrNotConnected
	}
	now := time.Now()
	weekday := (int(now.Weekday()) + 6) % 7 // Monday == 0

	clock := &messages.SetRealtimeClock{Weekday: byte(weekday), Hour: byte(now.Hour()), Minute: byte(now.Minute())}
	date := &messages.SetDate{Day: byte(now.Day()), Month: byte(now.Month()), Year: uint16(now.Year())}
	dst := &messages.SetDaylightSaving{Active: isDaylightSaving(now)}

	for _, msg := range []interface{ EncodeData() []byte }{clock, date, dst} {
		if err := c.sendBroadcast(msg); err != nil {
			return err
		}
	}
	logrus.WithField("time", now).Debug("controller: clock synced")
	return nil
}

func (c *Controller) sendBroadcast(msg interface{ EncodeData() []byte }) error {
	return c.sender.Send(frame.RawMessage{
		Priority: frame.PriorityLow,
		Address:  0x00,
		Data:     msg.EncodeData(),
	})
}

// isDaylightSaving reports whether t falls in a period whose UTC offset
// differs from January 1st's, a zone-independent way to detect DST without
// hardcoding Central European rules.
func isDaylightSaving(t time.Time) bool {
	_, januaryOffset := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location()).Zone()
	_, currentOffset := t.Zone()
	return currentOffset != januaryOffset
}
