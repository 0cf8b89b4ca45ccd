package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
)

// MP3MIMEType is the declared type of compacted audio.
const MP3MIMEType = "audio/mpeg"

var errNotPCMWave = errors.New("not a 16-bit PCM WAV file")

type waveFormat struct {
	channels   int
	sampleRate int
	data       []byte
}

// Compact shrinks uncompressed audio that is too large to send inline.
// Data at or under limit, and anything that is not 16-bit PCM WAV at a
// rate the MP3 encoder accepts, is returned unchanged. Otherwise the audio
// is downmixed to mono and encoded as MP3.
func Compact(ctx context.Context, data []byte, mimeType string, limit int) ([]byte, string, error) {
	if limit <= 0 || len(data) <= limit {
		return data, mimeType, nil
	}

	wf, err := parseWave(data)
	if err != nil || !mp3Rates[wf.sampleRate] {
		return data, mimeType, nil //nolint:nilerr // not ours to compact
	}

	config := EncoderConfig{SampleRate: wf.sampleRate}.WithDefaults()
	input := make(chan []int16, 4)
	var out bytes.Buffer

	enc, err := NewEncoder(config, input, &out)
	if err != nil {
		return nil, "", err
	}

	if err := enc.Start(ctx); err != nil {
		return nil, "", err
	}

	frame := wf.channels * 2
	chunk := config.BatchSamples

feed:
	for off := 0; off+frame <= len(wf.data); off += chunk * frame {
		end := min(off+chunk*frame, len(wf.data))
		select {
		case input <- downmix(wf.data[off:end], wf.channels):
		case <-ctx.Done():
			break feed
		}
	}
	close(input)

	if err := enc.Wait(); err != nil {
		return nil, "", fmt.Errorf("failed to compact audio: %w", err)
	}

	return out.Bytes(), MP3MIMEType, nil
}

// parseWave walks the RIFF chunks of a WAV file.
func parseWave(data []byte) (*waveFormat, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, errNotPCMWave
	}

	var wf waveFormat
	var haveFmt bool

	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		end := min(body+size, len(data))

		switch id {
		case "fmt ":
			if end-body < 16 {
				return nil, errNotPCMWave
			}
			format := binary.LittleEndian.Uint16(data[body:])
			bits := binary.LittleEndian.Uint16(data[body+14:])
			if format != 1 || bits != 16 {
				return nil, errNotPCMWave
			}
			wf.channels = int(binary.LittleEndian.Uint16(data[body+2:]))
			wf.sampleRate = int(binary.LittleEndian.Uint32(data[body+4:]))
			haveFmt = true
		case "data":
			if !haveFmt || wf.channels == 0 {
				return nil, errNotPCMWave
			}
			wf.data = data[body:end]
			return &wf, nil
		}

		// chunks are word aligned
		off = body + size + size%2
	}

	return nil, errNotPCMWave
}

// downmix averages interleaved little-endian frames to mono.
func downmix(pcm []byte, channels int) []int16 {
	frame := channels * 2
	out := make([]int16, len(pcm)/frame)

	for i := range out {
		var sum int32
		for c := range channels {
			p := i*frame + c*2
			sum += int32(int16(binary.LittleEndian.Uint16(pcm[p:])))
		}
		out[i] = int16(sum / int32(channels))
	}

	return out
}
