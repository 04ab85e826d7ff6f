package effects

import (
	"math"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/effects"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
	"github.com/pkg/errors"
)

const (
	toneFrequency = 880.0
	toneBeeps     = 3
	toneLength    = 150 * time.Millisecond
	toneGap       = 100 * time.Millisecond
)

var playbackFormat = beep.Format{SampleRate: 44100, NumChannels: 2, Precision: 2}

var (
	speakerOnce sync.Once
	speakerErr  error
)

// Player plays one preloaded sound through the system speaker.
type Player struct {
	mu     sync.Mutex
	buffer *beep.Buffer
	volume float64
	play   func(beep.Streamer) error
}

// NewPlayer preloads soundFile, or a generated alarm tone when it is empty.
func NewPlayer(soundFile string, volume float64) (*Player, error) {
	buffer, err := loadBuffer(soundFile)
	if err != nil {
		return nil, err
	}

	return &Player{
		buffer: buffer,
		volume: volume,
		play:   playOnSpeaker,
	}, nil
}

// SetVolume changes the playback volume in [0, 1].
func (player *Player) SetVolume(volume float64) {
	player.mu.Lock()
	defer player.mu.Unlock()
	player.volume = volume
}

// Play starts the sound and returns without waiting for it to finish.
func (player *Player) Play() error {
	player.mu.Lock()
	volume := player.volume
	player.mu.Unlock()

	if volume <= 0 {
		return nil
	}

	streamer := player.buffer.Streamer(0, player.buffer.Len())
	return player.play(&effects.Volume{
		Streamer: streamer,
		Base:     2,
		Volume:   volumeLevel(volume),
		Silent:   false,
	})
}

// Length returns the duration of the loaded sound.
func (player *Player) Length() time.Duration {
	return playbackFormat.SampleRate.D(player.buffer.Len())
}

func playOnSpeaker(streamer beep.Streamer) error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(playbackFormat.SampleRate, playbackFormat.SampleRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return errors.Wrap(speakerErr, "failed to initialize speaker")
	}

	speaker.Play(streamer)
	return nil
}

// volumeLevel maps a linear [0, 1] volume to the exponent used by effects.Volume.
func volumeLevel(volume float64) float64 {
	if volume >= 1 {
		return 0
	}
	return math.Log2(volume)
}

func loadBuffer(soundFile string) (*beep.Buffer, error) {
	buffer := beep.NewBuffer(playbackFormat)
	if soundFile == "" {
		buffer.Append(alarmTone())
		return buffer, nil
	}

	f, err := os.Open(filepath.Clean(soundFile))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open sound, %q", soundFile)
	}
	defer f.Close()

	streamer, format, err := wav.Decode(f)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode sound, %q", soundFile)
	}
	defer streamer.Close()

	var source beep.Streamer = streamer
	if format.SampleRate != playbackFormat.SampleRate {
		source = beep.Resample(4, format.SampleRate, playbackFormat.SampleRate, streamer)
	}
	buffer.Append(source)
	return buffer, nil
}

func alarmTone() beep.Streamer {
	rate := float64(playbackFormat.SampleRate)
	beepSamples := playbackFormat.SampleRate.N(toneLength)
	period := beepSamples + playbackFormat.SampleRate.N(toneGap)
	total := period * toneBeeps

	var position int
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if position >= total {
			return 0, false
		}

		n := 0
		for i := range samples {
			if position >= total {
				break
			}

			var value float64
			if offset := position % period; offset < beepSamples {
				fade := math.Min(1, float64(beepSamples-offset)/float64(beepSamples/10+1))
				value = 0.5 * fade * math.Sin(2*math.Pi*toneFrequency*float64(position)/rate)
			}
			samples[i][0] = value
			samples[i][1] = value
			position++
			n++
		}
		return n, true
	})
}
