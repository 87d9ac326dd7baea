// Package audio implements the microphone capture side of the voice search
// pipeline: a Recorder abstraction over the capture device, an in-memory Clip
// of 16 kHz mono 16-bit PCM samples, peak normalization, RIFF/WAV encoding,
// and temporary-file handling for hand-off to a transcription provider.
package audio

import (
	"bytes"
	"encoding/binary"
	"time"
)

const (
	// SampleRate is the fixed capture rate. 16 kHz mono 16-bit PCM is the
	// common denominator every transcription backend accepts.
	SampleRate = 16000

	bitsPerSample = 16
	channels      = 1
)

// Clip is a finished recording: raw samples at [SampleRate], mono.
type Clip struct {
	Samples []int16
}

// Duration returns the play time of the clip.
func (c Clip) Duration() time.Duration {
	return time.Duration(len(c.Samples)) * time.Second / SampleRate
}

// Peak returns the largest absolute sample value in the clip.
func (c Clip) Peak() int {
	peak := 0
	for _, s := range c.Samples {
		v := int(s)
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}

// IsSilent reports whether every sample is zero.
func (c Clip) IsSilent() bool {
	return c.Peak() == 0
}

// Normalized returns a copy of the clip scaled so its peak amplitude is
// target (a fraction of full scale, e.g. 0.9). A silent clip is returned
// unmodified; there is nothing to scale and dividing by a zero peak must
// never happen.
func (c Clip) Normalized(target float64) Clip {
	peak := c.Peak()
	if peak == 0 {
		return c
	}

	factor := target * 32767 / float64(peak)
	out := Clip{Samples: make([]int16, len(c.Samples))}
	for i, s := range c.Samples {
		v := float64(s) * factor
		switch {
		case v > 32767:
			v = 32767
		case v < -32768:
			v = -32768
		}
		out.Samples[i] = int16(v)
	}
	return out
}

// WAV encodes the clip as a standard RIFF/WAV container with 16-bit signed
// little-endian PCM data.
func (c Clip) WAV() []byte {
	dataSize := len(c.Samples) * 2
	byteRate := SampleRate * channels * bitsPerSample / 8
	blockAlign := channels * bitsPerSample / 8

	buf := bytes.NewBuffer(make([]byte, 0, 44+dataSize))

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16)) // PCM sub-chunk size
	binary.Write(buf, binary.LittleEndian, uint16(1))  // audio format: PCM
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(SampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(dataSize))
	for _, s := range c.Samples {
		binary.Write(buf, binary.LittleEndian, s)
	}

	return buf.Bytes()
}
