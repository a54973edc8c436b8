package classify

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Marker tags emitted by the driver scripts. These form the authoritative
// sub-protocol interleaved with free-text tool output.
const (
	tagStepSuccess = "[STEP_SUCCESS]"
	tagStepWarning = "[STEP_WARNING]"
	tagStepError   = "[STEP_ERROR]"
	tagContext     = "[CONTEXT]"
	tagArtefacts   = "[ARTEFACTS]"
	tagTiming      = "[TIMING_RESULT]"
)

var (
	errorPatterns = []string{
		`(?i)^error[:\s]`,
		`(?i)^\[error\]`,
		`(?i)\{error\}`,
		`ERROR:`,
		`\[ERROR\]`,
	}

	criticalWarningPatterns = []string{
		`(?i)critical warning[:\s]`,
		`(?i)\[critical warning\]`,
		`(?i)\{critical warning\}`,
	}

	warningPatterns = []string{
		`(?i)^warning[:\s]`,
		`(?i)^\[warning\]`,
		`(?i)\{warning\}`,
		`WARNING:`,
	}

	// Substrings that look like severity keywords but are not diagnostics.
	falsePositives = []string{
		"error_msg",
		"no error",
		"error_count",
		"warning_msg",
		"no warning",
	}

	countPattern = regexp.MustCompile(`\[W:(\d+) E:(\d+)\]`)
)

type compiledStep struct {
	def      StepDefinition
	patterns []*regexp.Regexp
	start    []*regexp.Regexp
	done     []*regexp.Regexp
	fail     []*regexp.Regexp
}

// Classifier turns raw output lines into typed events. It is stateless after
// construction and safe for concurrent use.
type Classifier struct {
	steps   []compiledStep
	errorRe []*regexp.Regexp
	critRe  []*regexp.Regexp
	warnRe  []*regexp.Regexp
}

// NewClassifier compiles the step definitions and heuristic patterns. An
// invalid pattern in any definition is reported immediately rather than at
// first match.
func NewClassifier(defs []StepDefinition) (*Classifier, error) {
	c := &Classifier{
		errorRe: compileAll(errorPatterns),
		critRe:  compileAll(criticalWarningPatterns),
		warnRe:  compileAll(warningPatterns),
	}

	for _, def := range defs {
		cs := compiledStep{def: def}
		var err error
		if cs.patterns, err = compileStepPatterns(def.ID, def.Patterns); err != nil {
			return nil, err
		}
		if cs.start, err = compileStepPatterns(def.ID, def.StartPatterns); err != nil {
			return nil, err
		}
		if cs.done, err = compileStepPatterns(def.ID, def.DonePatterns); err != nil {
			return nil, err
		}
		if cs.fail, err = compileStepPatterns(def.ID, def.FailPatterns); err != nil {
			return nil, err
		}
		c.steps = append(c.steps, cs)
	}

	return c, nil
}

func compileAll(patterns []string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		compiled = append(compiled, regexp.MustCompile(p))
	}
	return compiled
}

func compileStepPatterns(stepID string, patterns []string) ([]*regexp.Regexp, error) {
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile("(?i)" + p)
		if err != nil {
			return nil, fmt.Errorf("step %s: invalid pattern %q: %w", stepID, p, err)
		}
		compiled = append(compiled, re)
	}
	return compiled, nil
}

// Classify maps one newline-stripped line to exactly one Event. Precedence:
// empty line, false-positive substring, machine-readable tags, step
// definition patterns, severity heuristics, Info.
func (c *Classifier) Classify(line string) Event {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return Event{Type: EventInfo, Message: trimmed}
	}

	lower := strings.ToLower(trimmed)
	for _, fp := range falsePositives {
		if strings.Contains(lower, fp) {
			return Event{Type: EventInfo, Message: trimmed}
		}
	}

	// The bracketed tag tier is authoritative: a parsed tag skips every
	// heuristic below it.
	if ev, ok := c.classifyTag(trimmed); ok {
		return ev
	}

	if ev, ok := c.classifyStep(trimmed); ok {
		return ev
	}

	// Marker lines that did not match a registered definition must not be
	// double counted by the severity heuristics.
	if isMarkerLine(trimmed) {
		return Event{Type: EventInfo, Message: trimmed}
	}

	// A critical warning is checked before the plain warning patterns so a
	// line is only ever counted in one severity bucket.
	if matchesAny(c.critRe, trimmed) {
		return Event{Type: EventCriticalWarning, Message: trimmed}
	}
	if matchesAny(c.warnRe, trimmed) {
		return Event{Type: EventWarning, Message: trimmed}
	}
	if matchesAny(c.errorRe, trimmed) {
		return Event{Type: EventError, Message: trimmed}
	}

	return Event{Type: EventInfo, Message: trimmed}
}

func (c *Classifier) classifyTag(line string) (Event, bool) {
	switch {
	case strings.Contains(line, tagContext):
		fields := parseTagFields(line, tagContext)
		if name, ok := fields["name"]; ok {
			return Event{Type: EventContext, Message: line, ContextName: name}, true
		}
		return Event{Type: EventInfo, Message: line}, true

	case strings.Contains(line, tagArtefacts):
		rest := strings.TrimSpace(afterTag(line, tagArtefacts))
		if rest == "" {
			return Event{Type: EventInfo, Message: line}, true
		}
		return Event{Type: EventArtefacts, Message: line, ArtefactPath: rest}, true

	case strings.Contains(line, tagTiming):
		fields := parseTagFields(line, tagTiming)
		status, ok := fields["status"]
		if !ok {
			return Event{Type: EventInfo, Message: line}, true
		}
		return Event{
			Type:         EventTiming,
			Message:      line,
			TimingPassed: strings.EqualFold(status, "PASSED"),
			ReportPath:   fields["report"],
		}, true
	}

	return Event{}, false
}

// classifyStep checks registered definitions in order; the first matching
// definition wins.
func (c *Classifier) classifyStep(line string) (Event, bool) {
	for _, cs := range c.steps {
		if cs.def.Kind == StepMarked {
			if !matchesAny(cs.patterns, line) {
				continue
			}
			return markedEvent(cs.def, line), true
		}

		if matchesAny(cs.start, line) {
			return Event{
				Type:    EventStep,
				Message: line,
				StepID:  cs.def.ID,
				Phase:   PhaseStart,
			}, true
		}
		if matchesAny(cs.fail, line) {
			return Event{
				Type:    EventStep,
				Message: line,
				StepID:  cs.def.ID,
				Phase:   PhaseResult,
				Result:  ResultError,
			}, true
		}
		if matchesAny(cs.done, line) {
			// Completion with no inline marker defaults to success; the
			// tracker overrides it from accumulated counts.
			return Event{
				Type:    EventStep,
				Message: line,
				StepID:  cs.def.ID,
				Phase:   PhaseResult,
				Result:  ResultSuccess,
			}, true
		}
	}

	return Event{}, false
}

func markedEvent(def StepDefinition, line string) Event {
	ev := Event{
		Type:    EventStep,
		Message: line,
		StepID:  def.ID,
		Phase:   PhaseResult,
		Marked:  true,
	}

	switch {
	case strings.Contains(line, tagStepSuccess):
		ev.Result = ResultSuccess
	case strings.Contains(line, tagStepWarning):
		ev.Result = ResultWarning
		ev.WarnCount, ev.ErrCount = parseCounts(line)
	case strings.Contains(line, tagStepError):
		ev.Result = ResultError
		ev.WarnCount, ev.ErrCount = parseCounts(line)
	default:
		// Pattern matched but no recognisable marker tag; treat the sighting
		// as the step starting.
		ev.Phase = PhaseStart
	}

	return ev
}

func parseCounts(line string) (warn, errs int) {
	m := countPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, 0
	}
	warn, _ = strconv.Atoi(m[1])
	errs, _ = strconv.Atoi(m[2])
	return warn, errs
}

func parseTagFields(line, tag string) map[string]string {
	fields := make(map[string]string)
	for _, token := range strings.Fields(afterTag(line, tag)) {
		key, value, ok := strings.Cut(token, "=")
		if !ok || key == "" {
			continue
		}
		fields[key] = value
	}
	return fields
}

func afterTag(line, tag string) string {
	idx := strings.Index(line, tag)
	if idx < 0 {
		return ""
	}
	return line[idx+len(tag):]
}

func isMarkerLine(line string) bool {
	return strings.Contains(line, tagStepSuccess) ||
		strings.Contains(line, tagStepWarning) ||
		strings.Contains(line, tagStepError)
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, re := range patterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
