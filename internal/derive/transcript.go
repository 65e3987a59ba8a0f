package derive

import (
	"math"
	"regexp"
	"strings"
)

const (
	SpeakerVoicemail = "Voicemail"
	SpeakerUnknown   = "Unknown"

	// secondsPerLine is the fixed offset step per processed segment. Timestamps
	// are an approximation with no alignment to the audio.
	secondsPerLine = 30
)

var (
	blankLine   = regexp.MustCompile(`\r?\n[ \t]*\r?\n`)
	speakerLine = regexp.MustCompile(`(?s)^(Agent|Caller|Vendor):\s*(.*)$`)
	voicemail   = regexp.MustCompile(`(?s)^Voicemail:\s*(.*)$`)
)

// Segment is one speaker turn of a call transcript.
type Segment struct {
	Speaker   string `json:"speaker"`
	Text      string `json:"text"`
	Timestamp int    `json:"timestamp"`
	TimeLabel string `json:"time_label"`
}

// SegmentTranscript splits a transcript into speaker turns. Paragraphs are
// separated by blank lines; a paragraph without a speaker tag continues the
// previous turn.
func SegmentTranscript(transcript string, callDuration int) []Segment {
	var paragraphs []string
	for _, p := range blankLine.Split(transcript, -1) {
		if p = strings.TrimSpace(p); p != "" {
			paragraphs = append(paragraphs, p)
		}
	}
	if len(paragraphs) == 0 {
		return nil
	}
	if callDuration < 0 {
		callDuration = 0
	}

	count := float64(len(paragraphs))
	offset := 0
	var out []Segment
	for _, p := range paragraphs {
		ts := int(math.Floor(float64(offset) / count * float64(callDuration)))
		offset += secondsPerLine

		if m := speakerLine.FindStringSubmatch(p); m != nil {
			out = append(out, newSegment(m[1], m[2], ts))
			continue
		}
		if m := voicemail.FindStringSubmatch(p); m != nil {
			out = append(out, newSegment(SpeakerVoicemail, m[1], ts))
			continue
		}
		if len(out) > 0 {
			last := &out[len(out)-1]
			last.Text = strings.TrimSpace(last.Text + " " + p)
			continue
		}
		out = append(out, newSegment(SpeakerUnknown, p, ts))
	}
	return out
}

func newSegment(speaker, text string, ts int) Segment {
	return Segment{
		Speaker:   speaker,
		Text:      strings.TrimSpace(text),
		Timestamp: ts,
		TimeLabel: FormatDuration(ts),
	}
}
