// ABOUTME: Oto-based audio output implementation
// ABOUTME: Handles clip playback with software volume control using oto library
package output

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/harperreed/podcast-recorder/pkg/audio"
	"github.com/harperreed/podcast-recorder/pkg/audio/encode"
	"github.com/harperreed/podcast-recorder/pkg/audio/resample"
	"go.uber.org/zap"
)

// Oto output implementation using oto library
type Oto struct {
	mu         sync.Mutex
	log        *zap.SugaredLogger
	otoCtx     *oto.Context
	player     *oto.Player
	sampleRate int
	channels   int
	volume     int
	muted      bool
}

// NewOto creates a new Oto output. The device context is created on first Play.
func NewOto(log *zap.SugaredLogger) *Oto {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Oto{
		log:    log,
		volume: 100,
	}
}

// open creates the oto context. oto allows one context per process, so the
// first clip's format fixes the device format and later clips are converted.
func (o *Oto) open(format audio.Format) error {
	if o.otoCtx != nil {
		return nil
	}

	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return fmt.Errorf("failed to create oto context: %w", err)
	}

	<-readyChan

	o.otoCtx = ctx
	o.sampleRate = format.SampleRate
	o.channels = format.Channels

	o.log.Infow("audio output initialized", "sample_rate", format.SampleRate, "channels", format.Channels)
	return nil
}

// Play renders samples from the start of the slice
func (o *Oto) Play(samples []float32, format audio.Format) error {
	if !format.Valid() {
		return fmt.Errorf("invalid format: %dHz %dch", format.SampleRate, format.Channels)
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if err := o.open(format); err != nil {
		return err
	}

	o.stopLocked()

	if format.SampleRate != o.sampleRate || format.Channels != o.channels {
		o.log.Debugw("converting clip to device format",
			"from_rate", format.SampleRate, "from_channels", format.Channels,
			"to_rate", o.sampleRate, "to_channels", o.channels)
	}
	pcm := prepare(samples, format, o.sampleRate, o.channels)

	o.player = o.otoCtx.NewPlayer(bytes.NewReader(pcm))
	o.player.SetVolume(getVolumeMultiplier(o.volume, o.muted))
	o.player.Play()

	return nil
}

// Stop halts the current clip
func (o *Oto) Stop() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.stopLocked()
}

func (o *Oto) stopLocked() error {
	if o.player == nil {
		return nil
	}
	o.player.Pause()
	err := o.player.Close()
	o.player = nil
	if err != nil {
		return fmt.Errorf("failed to close player: %w", err)
	}
	return nil
}

// Close releases output resources
func (o *Oto) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	err := o.stopLocked()
	if o.otoCtx != nil {
		if serr := o.otoCtx.Suspend(); serr != nil && err == nil {
			err = fmt.Errorf("failed to suspend oto context: %w", serr)
		}
	}
	return err
}

// SetVolume sets the volume (0-100)
func (o *Oto) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	o.volume = volume
	if o.player != nil {
		o.player.SetVolume(getVolumeMultiplier(o.volume, o.muted))
	}
	o.log.Debugw("volume set", "volume", volume)
}

// SetMuted sets mute state
func (o *Oto) SetMuted(muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.muted = muted
	if o.player != nil {
		o.player.SetVolume(getVolumeMultiplier(o.volume, o.muted))
	}
	o.log.Debugw("mute changed", "muted", muted)
}

// GetVolume returns current volume
func (o *Oto) GetVolume() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// IsMuted returns mute state
func (o *Oto) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// prepare converts a clip to the device rate and channel count and packs it as 16-bit PCM
func prepare(samples []float32, format audio.Format, rate, channels int) []byte {
	samples = remix(samples, format.Channels, channels)
	samples = resample.Convert(samples, channels, format.SampleRate, rate)
	return encode.PCM16(samples)
}

// remix converts between channel counts: mono is duplicated, extra channels are averaged down
func remix(samples []float32, from, to int) []float32 {
	if from == to || from <= 0 || to <= 0 {
		return samples
	}

	frames := len(samples) / from
	out := make([]float32, frames*to)
	for i := 0; i < frames; i++ {
		frame := samples[i*from : (i+1)*from]
		if from == 1 {
			for ch := 0; ch < to; ch++ {
				out[i*to+ch] = frame[0]
			}
			continue
		}

		var sum float32
		for _, s := range frame {
			sum += s
		}
		mean := sum / float32(from)
		for ch := 0; ch < to; ch++ {
			out[i*to+ch] = mean
		}
	}
	return out
}

// getVolumeMultiplier calculates volume multiplier
func getVolumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}
