package console

// Tone is one play_tone(200) call's parameters, recorded for a host (or a
// test) to inspect; this package does not open an audio device itself.
type Tone struct {
	FreqHz     int
	DurationMs int
	Channel    int
}

// ToneGenerator is a 4-channel tone sink: play_tone overwrites the
// addressed channel's last-requested tone, matching the reference host's
// "channel = channel % 4" wraparound.
type ToneGenerator struct {
	Channels [4]Tone
}

func (t *ToneGenerator) Play(freqHz, durationMs, channel int) {
	ch := channel % 4
	if ch < 0 {
		ch += 4
	}
	t.Channels[ch] = Tone{FreqHz: freqHz, DurationMs: durationMs, Channel: ch}
}
