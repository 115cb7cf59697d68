package ingestion

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Cue is a single subtitle block: its sequence number, the time range it
// covers, and its text with line breaks preserved.
type Cue struct {
	Seq   int
	Start time.Duration
	End   time.Duration
	Text  string
}

var timelineRe = regexp.MustCompile(`^(\d{2}):(\d{2}):(\d{2}),(\d{3}) --> (\d{2}):(\d{2}):(\d{2}),(\d{3})`)

// ParseSRT reads SubRip cues from r. Each cue is a numeric sequence line,
// a "HH:MM:SS,mmm --> HH:MM:SS,mmm" timeline, and text lines up to a
// blank line. CRLF line endings are normalized, extra blank lines between
// cues are skipped, and cues with no text are dropped.
func ParseSRT(r io.Reader) ([]Cue, error) {
	br := bufio.NewReader(r)
	var cues []Cue
	first := true

	for {
		seqLine, eof, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if eof {
			break
		}
		if first {
			// Strip a UTF-8 BOM so the first sequence line parses.
			seqLine = strings.TrimPrefix(seqLine, "\ufeff")
			first = false
		}
		if seqLine == "" {
			continue
		}

		seq, err := strconv.Atoi(seqLine)
		if err != nil {
			return nil, fmt.Errorf("%w: sequence line %q", ErrMalformedCue, seqLine)
		}

		timeLine, _, err := readLine(br)
		if err != nil {
			return nil, err
		}
		start, end, err := parseTimeline(timeLine)
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", seq, err)
		}

		var lines []string
		for {
			line, _, err := readLine(br)
			if err != nil {
				return nil, err
			}
			if line == "" {
				break
			}
			lines = append(lines, line)
		}

		text := strings.Join(lines, "\n")
		if !utf8.ValidString(text) {
			return nil, fmt.Errorf("%w: cue %d text is not valid UTF-8", ErrMalformedCue, seq)
		}
		if text == "" {
			continue
		}
		cues = append(cues, Cue{Seq: seq, Start: start, End: end, Text: text})
	}

	return cues, nil
}

// parseTimeline parses "HH:MM:SS,mmm --> HH:MM:SS,mmm" into a time range.
func parseTimeline(line string) (time.Duration, time.Duration, error) {
	m := timelineRe.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: time line %q", ErrMalformedCue, line)
	}
	start := cueTime(m[1], m[2], m[3], m[4])
	end := cueTime(m[5], m[6], m[7], m[8])
	if end < start {
		return 0, 0, fmt.Errorf("%w: time line %q ends before it starts", ErrMalformedCue, line)
	}
	return start, end, nil
}

// cueTime assembles a duration from digit groups already validated by the
// timeline pattern.
func cueTime(h, m, s, ms string) time.Duration {
	hours, _ := strconv.Atoi(h)
	minutes, _ := strconv.Atoi(m)
	seconds, _ := strconv.Atoi(s)
	millis, _ := strconv.Atoi(ms)
	return time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
}

// readLine reads one line, normalizing CRLF and trimming the trailing
// newline. eof is reported only once the reader is fully drained.
func readLine(br *bufio.Reader) (string, bool, error) {
	line, err := br.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", false, err
	}
	atEOF := errors.Is(err, io.EOF)
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, atEOF && line == "", nil
}
