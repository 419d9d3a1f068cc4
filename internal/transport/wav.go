package transport

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/hexwarp/swl/internal/codec"
)

const wavBitDepth = 16

// WriteWAV persists a waveform as a 16-bit mono PCM WAV file. The caller
// owns the path and its cleanup.
func WriteWAV(path string, w *codec.Waveform) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create wav file: %w", err)
	}

	pcm := w.PCM()
	data := make([]int, len(pcm))
	for i, s := range pcm {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(f, w.Rate, wavBitDepth, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: w.Rate},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("failed to write wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize wav file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close wav file: %w", err)
	}
	return nil
}

// ReadWAV loads a waveform from a 16-bit mono PCM WAV file.
func ReadWAV(path string) (*codec.Waveform, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open wav file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode wav file: %w", err)
	}
	if buf.Format == nil || buf.Format.NumChannels != 1 {
		return nil, fmt.Errorf("unsupported wav layout in %s: want mono PCM", path)
	}

	pcm := make([]int16, len(buf.Data))
	for i, s := range buf.Data {
		pcm[i] = int16(s)
	}
	return codec.FromPCM(buf.Format.SampleRate, pcm), nil
}
