package client

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"
)

// decodeWAV reads a WAV file into normalized mono float32 samples at the
// given sample rate. Multi-channel audio is downmixed by averaging, and the
// waveform is linearly resampled when the file's rate differs.
func decodeWAV(path string, targetRate int) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("not a valid WAV file: %s", path)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to read PCM data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("audio file contains no samples")
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}

	samples := toMonoFloat32(buf.Data, channels, bitDepth)
	return resampleLinear(samples, buf.Format.SampleRate, targetRate), nil
}

// toMonoFloat32 averages interleaved channels into one and scales integer
// PCM into [-1, 1].
func toMonoFloat32(data []int, channels, bitDepth int) []float32 {
	if bitDepth <= 0 || bitDepth > 32 {
		bitDepth = 16
	}
	// 8-bit WAV PCM is unsigned, centered on 128.
	var offset float64
	if bitDepth == 8 {
		offset = 128
	}
	scale := float64(int64(1) << (bitDepth - 1))

	frames := len(data) / channels
	out := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(data[i*channels+c]) - offset
		}
		out[i] = float32(sum / float64(channels) / scale)
	}
	return out
}

// resampleLinear converts samples from srcRate to dstRate by linear
// interpolation.
func resampleLinear(samples []float32, srcRate, dstRate int) []float32 {
	if srcRate == dstRate || srcRate <= 0 || dstRate <= 0 || len(samples) == 0 {
		return samples
	}

	ratio := float64(srcRate) / float64(dstRate)
	n := int(float64(len(samples)) / ratio)
	if n < 1 {
		n = 1
	}

	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * ratio
		j := int(pos)
		if j >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := float32(pos - float64(j))
		out[i] = samples[j]*(1-frac) + samples[j+1]*frac
	}
	return out
}
