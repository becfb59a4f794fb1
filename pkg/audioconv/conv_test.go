package audioconv

import (
	"math"
	"testing"
)

func TestDownmix(t *testing.T) {
	in := []float32{1, 0, 0.5, 0.5, -1, 1}
	got := Downmix(in, 2)
	want := []float32{0.5, 0.5, 0}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("frame %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDownmix_MonoPassthrough(t *testing.T) {
	in := []float32{0.1, 0.2}
	got := Downmix(in, 1)
	if &got[0] != &in[0] {
		t.Fatal("mono input should pass through unchanged")
	}
}

func TestResample_HalvesRate(t *testing.T) {
	in := make([]float32, 32000)
	got := Resample(in, 32000, 16000)
	if len(got) != 16000 {
		t.Fatalf("len = %d, want 16000", len(got))
	}
}

func TestResample_PreservesConstantSignal(t *testing.T) {
	in := make([]float32, 4800)
	for i := range in {
		in[i] = 0.25
	}
	got := Resample(in, 48000, 16000)
	for i, v := range got {
		if math.Abs(float64(v)-0.25) > 1e-4 {
			t.Fatalf("sample %d = %v, want 0.25", i, v)
		}
	}
}

func TestEncodeWAV16k_RoundTrip(t *testing.T) {
	pcm := make([]float32, 1600)
	for i := range pcm {
		pcm[i] = float32(math.Sin(2 * math.Pi * 440 * float64(i) / float64(TargetRate)))
	}

	data := EncodeWAV16k(pcm)
	if len(data) != 44+len(pcm)*2 {
		t.Fatalf("encoded size = %d, want %d", len(data), 44+len(pcm)*2)
	}

	back, err := Decode(data, ".wav", Limits{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(back) != len(pcm) {
		t.Fatalf("round-trip length = %d, want %d", len(back), len(pcm))
	}
	for i := range pcm {
		if math.Abs(float64(back[i]-pcm[i])) > 1e-3 {
			t.Fatalf("sample %d = %v, want %v", i, back[i], pcm[i])
		}
	}
}

func TestDecode_Unsupported(t *testing.T) {
	if _, err := Decode([]byte("not audio at all"), ".flac", Limits{}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestDecode_MaxSamples(t *testing.T) {
	pcm := make([]float32, 32000)
	data := EncodeWAV16k(pcm)

	got, err := Decode(data, ".wav", Limits{MaxSamples: 1000})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1000 {
		t.Fatalf("len = %d, want 1000", len(got))
	}
}
