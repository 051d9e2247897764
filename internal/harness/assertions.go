package harness

import (
	"fmt"
	"slices"
	"strings"
)

// EvaluateExpect checks a result against an expectation block and returns
// one message per failed check. An empty return means every check held.
func EvaluateExpect(expect *Expect, result *Result) []string {
	failures := []string{}

	if expect.Dispatched != nil && result.Dispatched != *expect.Dispatched {
		failures = append(failures, fmt.Sprintf(
			"dispatched: expected %d outbound events, got %d",
			*expect.Dispatched, result.Dispatched))
	}

	if expect.DropReasons != nil {
		got := result.DropReasons()
		if !slices.Equal(got, expect.DropReasons) {
			failures = append(failures, fmt.Sprintf(
				"dropReasons: expected [%s], got [%s]",
				strings.Join(expect.DropReasons, ", "), strings.Join(got, ", ")))
		}
	}

	if expect.Paused != nil && result.Paused != *expect.Paused {
		failures = append(failures, fmt.Sprintf(
			"paused: expected %v, got %v", *expect.Paused, result.Paused))
	}

	if expect.Held != nil && result.Held != *expect.Held {
		failures = append(failures, fmt.Sprintf(
			"held: expected %d undelivered events, got %d",
			*expect.Held, result.Held))
	}

	return failures
}
