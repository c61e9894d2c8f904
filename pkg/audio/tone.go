package audio

import (
	"log/slog"
	"math"
)

// AlertCategory selects which alert tone sequence is played.
type AlertCategory string

const (
	// AlertDanger is a two-note falling alert: a higher pitch immediately
	// and a lower pitch 150ms later.
	AlertDanger AlertCategory = "danger"

	// AlertCaution is a single shorter, quieter tone.
	AlertCaution AlertCategory = "caution"
)

// tone describes one enveloped sine tone within an alert sequence.
// Times are in seconds relative to the sequence start.
type tone struct {
	freq  float64 // Hz
	start float64
	dur   float64
	amp   float64 // base amplitude, scaled by the user volume
}

// alertSequences are the fixed tone sequences per category.
// danger: G4 then Eb4 overlapping; caution: a short A4.
var alertSequences = map[AlertCategory][]tone{
	AlertDanger: {
		{freq: 392, start: 0, dur: 0.4, amp: 0.2},
		{freq: 311.13, start: 0.15, dur: 0.6, amp: 0.2},
	},
	AlertCaution: {
		{freq: 440, start: 0, dur: 0.3, amp: 0.1},
	},
}

const (
	// attackTime is the linear gain ramp at each tone's start. Starting
	// from zero gain avoids an audible click.
	attackTime = 0.05

	// decayFloor is the near-zero target of the exponential decay at tone
	// end.
	decayFloor = 0.001
)

// AlerterOption configures an [Alerter] during construction.
type AlerterOption func(*Alerter)

// WithAlertSampleRate overrides the synthesis sample rate. The default is
// [SpeechSampleRate].
func WithAlertSampleRate(rate int) AlerterOption {
	return func(a *Alerter) {
		if rate > 0 {
			a.sampleRate = rate
		}
	}
}

// Alerter synthesizes short alert tones against a fresh, throwaway sink per
// alert. Alert playback is best-effort: every failure is logged and
// swallowed so an alert can never block or fail the advisory flow.
type Alerter struct {
	open       SinkOpener
	sampleRate int
}

// NewAlerter creates an Alerter that obtains a new sink from open for each
// alert and discards it when the alert finishes.
func NewAlerter(open SinkOpener, opts ...AlerterOption) *Alerter {
	a := &Alerter{
		open:       open,
		sampleRate: SpeechSampleRate,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Play renders the tone sequence for category scaled by volume and starts
// playback on a freshly opened sink. It returns without waiting for the
// tones to finish.
//
// Play is a no-op when volume is zero or negative — no sink is opened.
// Unknown categories are treated as [AlertCaution].
func (a *Alerter) Play(category AlertCategory, volume float64) {
	if volume <= 0 {
		return
	}

	buf := RenderAlert(category, volume, a.sampleRate)

	sink, err := a.open()
	if err != nil {
		slog.Warn("audio alert failed: no output sink", "category", category, "err", err)
		return
	}

	voice, err := sink.Play(buf, 1.0)
	if err != nil {
		slog.Warn("audio alert failed", "category", category, "err", err)
		_ = sink.Close()
		return
	}

	// Discard the throwaway sink once the tones finish.
	go func() {
		<-voice.Done()
		_ = sink.Close()
	}()
}

// RenderAlert renders the mono tone sequence for category into a buffer at
// the given sample rate. The user volume is baked into each tone's envelope
// (final amplitude = base amplitude × volume). Overlapping tones are summed
// and the mix is clamped to [-1, 1].
func RenderAlert(category AlertCategory, volume float64, sampleRate int) *Buffer {
	seq, ok := alertSequences[category]
	if !ok {
		seq = alertSequences[AlertCaution]
	}

	var end float64
	for _, t := range seq {
		if e := t.start + t.dur; e > end {
			end = e
		}
	}

	frames := int(end * float64(sampleRate))
	samples := make([]float32, frames)
	for _, t := range seq {
		mixTone(samples, t, volume, sampleRate)
	}

	for i, v := range samples {
		if v > 1 {
			samples[i] = 1
		} else if v < -1 {
			samples[i] = -1
		}
	}

	return &Buffer{
		SampleRate: sampleRate,
		Channels:   [][]float32{samples},
	}
}

// mixTone adds one enveloped sine tone into samples. The envelope is zero
// at tone start, ramps linearly to the peak over attackTime, then decays
// exponentially toward decayFloor by tone end.
func mixTone(samples []float32, t tone, volume float64, sampleRate int) {
	peak := t.amp * volume
	if peak <= 0 {
		return
	}

	startIdx := int(t.start * float64(sampleRate))
	endIdx := int((t.start + t.dur) * float64(sampleRate))
	if endIdx > len(samples) {
		endIdx = len(samples)
	}

	decaySpan := t.dur - attackTime
	for i := startIdx; i < endIdx; i++ {
		elapsed := float64(i-startIdx) / float64(sampleRate)

		var env float64
		if elapsed < attackTime {
			env = peak * (elapsed / attackTime)
		} else if decaySpan > 0 {
			env = peak * math.Pow(decayFloor/peak, (elapsed-attackTime)/decaySpan)
		} else {
			env = peak
		}

		samples[i] += float32(env * math.Sin(2*math.Pi*t.freq*elapsed))
	}
}
