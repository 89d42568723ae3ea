package chat

import "time"

// FormatTimestamp renders an RFC 3339 timestamp relative to now:
// "Today 3:04 PM", "Yesterday 3:04 PM", or "Jan 2 3:04 PM". Unparseable
// input is returned unchanged.
func FormatTimestamp(ts string, now time.Time) string {
	parsed, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}

	local := parsed.In(now.Location())
	timeStr := local.Format("3:04 PM")

	ny, nm, nd := now.Date()
	ly, lm, ld := local.Date()

	if ly == ny && lm == nm && ld == nd {
		return "Today " + timeStr
	}

	yy, ym, yd := now.AddDate(0, 0, -1).Date()
	if ly == yy && lm == ym && ld == yd {
		return "Yesterday " + timeStr
	}

	return local.Format("Jan 2") + " " + timeStr
}
