package preference

import (
	"strconv"
	"strings"
	"time"

	"github.com/kaziconnect/notify-engine/internal/domain"
)

// Decision is the gate's verdict. Reason is machine-readable and is stored
// on suppressed delivery records for auditing.
type Decision struct {
	Allow  bool
	Silent bool
	Reason string
}

const (
	ReasonChannelDisabled = "channel_disabled"
	ReasonCategoryOptOut  = "category_opt_out"
	ReasonQuietHours      = "quiet_hours"
	ReasonDigest          = "digest_batching"
)

// Evaluate decides whether a message may leave the dispatcher right now.
// Pure function, no side effects.
//
// Order matters: a disabled channel suppresses even urgent messages, but
// quiet hours only silence urgent ones — alerts still go out, flagged
// Silent so the push adapter can deliver without a sound.
func Evaluate(p *Preferences, ch domain.Channel, cat domain.Category, now time.Time) Decision {
	if !p.ChannelEnabled(ch) {
		return Decision{Reason: ReasonChannelDisabled}
	}
	if !p.CategoryEnabled(cat) {
		return Decision{Reason: ReasonCategoryOptOut}
	}
	if p.Frequency != "" && p.Frequency != FrequencyImmediate && cat == domain.CategoryMarketing {
		return Decision{Reason: ReasonDigest}
	}
	if WithinQuietHours(p.QuietHoursStart, p.QuietHoursEnd, now) {
		if !cat.Urgent() {
			return Decision{Reason: ReasonQuietHours}
		}
		return Decision{Allow: true, Silent: true}
	}
	return Decision{Allow: true}
}

// WithinQuietHours reports whether now falls inside the [start, end) window.
// start and end are "HH:MM" strings; start > end means the window wraps
// midnight (22:00–07:00 covers 23:30 and 06:59 but not 12:00).
// Malformed or empty bounds disable quiet hours entirely.
func WithinQuietHours(start, end string, now time.Time) bool {
	startMin, okS := parseClock(start)
	endMin, okE := parseClock(end)
	if !okS || !okE || startMin == endMin {
		return false
	}

	nowMin := now.Hour()*60 + now.Minute()
	if startMin < endMin {
		return nowMin >= startMin && nowMin < endMin
	}
	// overnight wraparound
	return nowMin >= startMin || nowMin < endMin
}

func parseClock(s string) (int, bool) {
	h, m, ok := strings.Cut(s, ":")
	if !ok {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}
