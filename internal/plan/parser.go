package plan

import "strings"

// ParsePlanText extracts tasks from generated planning text. It is a pure
// function of its input.
//
// The grammar is heuristic because the upstream generator's output is
// unstructured and untrusted:
//   - a line qualifies only if, after trimming, it starts with a decimal
//     digit (the "N. " numbering prefix);
//   - the text up to the first "." is dropped as numbering;
//   - the remainder is classified by case-insensitive prefix, checking "qa"
//     and "doc" before "dev" so descriptions that merely start with "dev"
//     are not misrouted;
//   - the matched keyword plus any following ":" or spaces are stripped;
//   - anything that does not qualify is skipped, never an error.
func ParsePlanText(text string) []Task {
	var tasks []Task
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}
		body := line
		if _, rest, found := strings.Cut(line, "."); found {
			body = strings.TrimSpace(rest)
		}
		kind := KindDev
		lower := strings.ToLower(body)
		switch {
		case strings.HasPrefix(lower, string(KindQa)):
			kind = KindQa
			body = strings.TrimLeft(body[len(KindQa):], " :")
		case strings.HasPrefix(lower, string(KindDoc)):
			kind = KindDoc
			body = strings.TrimLeft(body[len(KindDoc):], " :")
		case strings.HasPrefix(lower, string(KindDev)):
			body = strings.TrimLeft(body[len(KindDev):], " :")
		}
		description := strings.TrimSpace(body)
		if description == "" {
			continue
		}
		tasks = append(tasks, Task{Description: description, Kind: kind})
	}
	return tasks
}
