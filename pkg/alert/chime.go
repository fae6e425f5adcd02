package alert

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	chimeSampleRate = 44100
	chimeBitDepth   = 16
	wavFormatPCM    = 1
)

// chimeNotes are the two tones of the chime, in Hz, each played for a fifth
// of a second with a decaying envelope.
var chimeNotes = []float64{880, 1318.5}

// WriteChime encodes the default notification chime as 16-bit mono WAV
func WriteChime(w io.WriteSeeker) error {
	samplesPerNote := chimeSampleRate / 5
	amplitude := float64(int(1)<<(chimeBitDepth-1)-1) * 0.4

	data := make([]int, 0, samplesPerNote*len(chimeNotes))
	for _, freq := range chimeNotes {
		for i := 0; i < samplesPerNote; i++ {
			t := float64(i) / chimeSampleRate
			envelope := math.Exp(-6 * float64(i) / float64(samplesPerNote))
			data = append(data, int(amplitude*envelope*math.Sin(2*math.Pi*freq*t)))
		}
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: chimeSampleRate},
		Data:           data,
		SourceBitDepth: chimeBitDepth,
	}

	enc := wav.NewEncoder(w, chimeSampleRate, chimeBitDepth, 1, wavFormatPCM)
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("failed to encode chime: %w", err)
	}
	return enc.Close()
}

// WriteChimeFile writes the chime to path
func WriteChimeFile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to create chime file: %w", err)
	}
	if err := WriteChime(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
