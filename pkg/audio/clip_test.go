package audio_test

import (
	"encoding/binary"
	"math"
	"os"
	"testing"
	"time"

	"github.com/Zeeshan138063/voice-rag-search-assistant/pkg/audio"
)

// sineClip returns a clip containing a 440 Hz sine wave at the given peak
// amplitude lasting the given number of samples.
func sineClip(samples int, amplitude float64) audio.Clip {
	c := audio.Clip{Samples: make([]int16, samples)}
	for i := range c.Samples {
		c.Samples[i] = int16(amplitude * math.Sin(2*math.Pi*440*float64(i)/audio.SampleRate))
	}
	return c
}

func TestClip_Duration(t *testing.T) {
	t.Parallel()
	c := audio.Clip{Samples: make([]int16, audio.SampleRate*3)}
	if got := c.Duration(); got != 3*time.Second {
		t.Errorf("Duration() = %v, want 3s", got)
	}
}

func TestNormalized_PeakNeverExceedsTarget(t *testing.T) {
	t.Parallel()
	for _, amp := range []float64{100, 5000, 20_000, 32_767} {
		c := sineClip(audio.SampleRate, amp)
		n := c.Normalized(0.9)

		want := int(math.Trunc(0.9 * 32767))
		if got := n.Peak(); got > want {
			t.Errorf("amplitude %.0f: normalized peak = %d, want <= %d", amp, got, want)
		}
		// Normalization scales up as well as down: the result should land
		// close to the target, not merely below it.
		if got := n.Peak(); got < want-2 {
			t.Errorf("amplitude %.0f: normalized peak = %d, want ~%d", amp, got, want)
		}
	}
}

func TestNormalized_SilentClipUnmodified(t *testing.T) {
	t.Parallel()
	c := audio.Clip{Samples: make([]int16, 1024)}
	n := c.Normalized(0.9)

	if !n.IsSilent() {
		t.Error("silent clip should stay silent after normalization")
	}
	if len(n.Samples) != len(c.Samples) {
		t.Errorf("sample count changed: %d -> %d", len(c.Samples), len(n.Samples))
	}
}

func TestWAV_HeaderAndSize(t *testing.T) {
	t.Parallel()
	c := sineClip(160, 10_000)
	wav := c.WAV()

	if len(wav) != 44+len(c.Samples)*2 {
		t.Fatalf("wav length = %d, want %d", len(wav), 44+len(c.Samples)*2)
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		t.Error("missing RIFF/WAVE magic")
	}
	if rate := binary.LittleEndian.Uint32(wav[24:28]); rate != audio.SampleRate {
		t.Errorf("sample rate = %d, want %d", rate, audio.SampleRate)
	}
	if ch := binary.LittleEndian.Uint16(wav[22:24]); ch != 1 {
		t.Errorf("channels = %d, want 1", ch)
	}
	if bits := binary.LittleEndian.Uint16(wav[34:36]); bits != 16 {
		t.Errorf("bits per sample = %d, want 16", bits)
	}
	if size := binary.LittleEndian.Uint32(wav[40:44]); int(size) != len(c.Samples)*2 {
		t.Errorf("data size = %d, want %d", size, len(c.Samples)*2)
	}
}

func TestWriteTemp_CreatesAndCleansUp(t *testing.T) {
	t.Parallel()
	c := sineClip(160, 1000)

	path, cleanup, err := audio.WriteTemp(t.TempDir(), c)
	if err != nil {
		t.Fatalf("WriteTemp: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read temp wav: %v", err)
	}
	if len(data) != 44+len(c.Samples)*2 {
		t.Errorf("temp wav size = %d, want %d", len(data), 44+len(c.Samples)*2)
	}

	cleanup()
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("temp wav still exists after cleanup: %v", err)
	}
}

func TestWriteTemp_UniqueNames(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	c := sineClip(16, 1000)

	p1, c1, err := audio.WriteTemp(dir, c)
	if err != nil {
		t.Fatalf("WriteTemp: %v", err)
	}
	defer c1()
	p2, c2, err := audio.WriteTemp(dir, c)
	if err != nil {
		t.Fatalf("WriteTemp: %v", err)
	}
	defer c2()

	if p1 == p2 {
		t.Errorf("two temp files share the path %q", p1)
	}
}
