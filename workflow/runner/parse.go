package runner

import "strings"

// parseLine matches a runner output line against the two recognized
// progress-line shapes:
//
//	[run] <status>[: <detail>]
//	[step] <step-name> <status>[: <detail>]
//
// Lines matching neither shape are not events (ok is false); they are
// still retained as raw log lines by the caller.
func parseLine(line string) (Event, bool) {
	switch {
	case strings.HasPrefix(line, "[run] "):
		status, detail := splitStatusDetail(strings.TrimPrefix(line, "[run] "))
		return Event{Type: EventRun, Status: status, Detail: detail, Raw: line}, true

	case strings.HasPrefix(line, "[step] "):
		rest := strings.TrimPrefix(line, "[step] ")
		name, statusPart, ok := cutFirstField(rest)
		if !ok {
			return Event{}, false
		}
		status, detail := splitStatusDetail(statusPart)
		return Event{Type: EventStep, StepName: name, Status: status, Detail: detail, Raw: line}, true

	default:
		return Event{}, false
	}
}

// splitStatusDetail splits "status: detail" into its parts; detail is
// empty when there is no colon.
func splitStatusDetail(s string) (status, detail string) {
	if idx := strings.Index(s, ":"); idx >= 0 {
		return strings.TrimSpace(s[:idx]), strings.TrimSpace(s[idx+1:])
	}
	return strings.TrimSpace(s), ""
}

// cutFirstField splits "<step-name> <rest>" on the first space, failing
// if there is no rest to carry a status.
func cutFirstField(s string) (first, rest string, ok bool) {
	idx := strings.IndexByte(s, ' ')
	if idx < 0 {
		return "", "", false
	}
	return s[:idx], strings.TrimSpace(s[idx+1:]), true
}
