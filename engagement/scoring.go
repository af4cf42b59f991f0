package engagement

import "math"

// EventType classifies a dwell event sent by the visitor client.
type EventType string

const (
	DwellStart EventType = "DWELL_START"
	DwellStop  EventType = "DWELL_STOP"
)

const (
	// baselineScore is returned for unknown event types.
	baselineScore = 0.50
	// startScore is the score assigned when a visitor focuses an item.
	startScore = 0.60
	// dwellWeight is the score share earned by dwell duration.
	dwellWeight = 0.40
	// maxDwellMs caps the duration contribution; dwelling longer adds nothing.
	maxDwellMs = 30_000
)

// Score maps a dwell event to an engagement score in [0, 1], rounded to two
// decimal places. It is deterministic and retains no state between calls.
func Score(eventType EventType, dureeDwellMs int64) float64 {
	switch eventType {
	case DwellStart:
		return startScore
	case DwellStop:
		d := dureeDwellMs
		if d < 0 {
			d = 0
		}
		if d > maxDwellMs {
			d = maxDwellMs
		}
		s := startScore + float64(d)/float64(maxDwellMs)*dwellWeight
		return math.Min(round2(s), 1.00)
	default:
		return baselineScore
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
