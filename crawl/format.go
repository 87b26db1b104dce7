package crawl

import "fmt"

// progressURLWidth is the widest URL shown by FormatProgress.
const progressURLWidth = 60

// FormatProgress renders event as a single terminal line. Per-page
// completions return an empty string.
func FormatProgress(event ProgressEvent) string {
	switch event.Type {
	case ProgressStarted:
		return fmt.Sprintf("  %s: %d pages", event.Loop, event.Total)
	case ProgressFailed:
		return fmt.Sprintf("  skip %s: %v", TruncateURL(event.URL, progressURLWidth), event.Error)
	case ProgressFinished:
		return fmt.Sprintf("  %s: %d/%d done", event.Loop, event.Completed, event.Total)
	default:
		return ""
	}
}

// TruncateURL shortens url to maxLen, keeping the tail where page ids live.
func TruncateURL(url string, maxLen int) string {
	switch {
	case maxLen <= 0:
		return ""
	case len(url) <= maxLen:
		return url
	case maxLen < 4:
		return url[:maxLen]
	default:
		return "..." + url[len(url)-maxLen+3:]
	}
}
