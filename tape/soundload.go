// This file is part of GopherSpeccy.
//
// GopherSpeccy is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// GopherSpeccy is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with GopherSpeccy.  If not, see <https://www.gnu.org/licenses/>.

package tape

import (
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/jetsetilly/gopherspeccy/curated"
	"github.com/jetsetilly/gopherspeccy/logger"
)

// Sampled audio of a real tape is ingested as one raw-data block: each
// sample becomes a bit, the sample period becomes the bit length in
// T-states, and the edge generator recovers the signal the EAR input
// would have seen.

// the Z80 clock used to convert sample rate to T-states per sample
const soundloadClock = 3500000

// samplesToBlock squashes a signed sample stream into a RawDataBlock.
func samplesToBlock(samples []int, sampleRate int) (*RawDataBlock, error) {
	if sampleRate <= 0 || sampleRate > soundloadClock {
		return nil, curated.Errorf(CorruptInput, "sound file has an unusable sample rate")
	}
	if len(samples) == 0 {
		return nil, curated.Errorf(CorruptInput, "sound file has no samples")
	}

	block := &RawDataBlock{
		Data:      make([]uint8, (len(samples)+7)/8),
		BitLength: uint32(soundloadClock / sampleRate),
	}

	// bits in last byte: eight when the sample count divides evenly
	block.BitsInLastByte = len(samples) % 8
	if block.BitsInLastByte == 0 {
		block.BitsInLastByte = 8
	}

	for i, s := range samples {
		if s > 0 {
			block.Data[i/8] |= 0x80 >> (i % 8)
		}
	}

	logger.Logf("tape", "sound file: %d samples at %dHz, %d tstates per bit",
		len(samples), sampleRate, block.BitLength)

	return block, nil
}

// mixToMono folds a PCM buffer's channels together.
func mixToMono(buf *audio.IntBuffer) []int {
	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	samples := make([]int, 0, len(buf.Data)/channels)
	for i := 0; i+channels <= len(buf.Data); i += channels {
		s := 0
		for c := 0; c < channels; c++ {
			s += buf.Data[i+c]
		}
		samples = append(samples, s/channels)
	}
	return samples
}

// ReadWAV decodes a WAV recording of a tape into a single raw-data
// block. Multi-channel recordings are mixed to mono.
func ReadWAV(src io.ReadSeeker) ([]Block, error) {
	dec := wav.NewDecoder(src)
	if !dec.IsValidFile() {
		return nil, curated.Errorf(CorruptInput, "not a WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, curated.Errorf(CorruptInput, err)
	}

	samples := mixToMono(buf)

	// PCM data is unsigned for eight bit files; centre it
	if dec.BitDepth == 8 {
		for i := range samples {
			samples[i] -= 0x80
		}
	}

	block, err := samplesToBlock(samples, buf.Format.SampleRate)
	if err != nil {
		return nil, err
	}
	return []Block{block}, nil
}

// ReadMP3 decodes an MP3 recording of a tape into a single raw-data
// block.
func ReadMP3(src io.Reader) ([]Block, error) {
	dec, err := mp3.NewDecoder(src)
	if err != nil {
		return nil, curated.Errorf(CorruptInput, err)
	}

	// the decoder emits 16 bit little-endian stereo frames
	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, curated.Errorf(CorruptInput, err)
	}

	samples := make([]int, 0, len(raw)/4)
	for i := 0; i+4 <= len(raw); i += 4 {
		left := int(int16(uint16(raw[i]) | uint16(raw[i+1])<<8))
		right := int(int16(uint16(raw[i+2]) | uint16(raw[i+3])<<8))
		samples = append(samples, (left+right)/2)
	}

	block, err := samplesToBlock(samples, dec.SampleRate())
	if err != nil {
		return nil, err
	}
	return []Block{block}, nil
}
