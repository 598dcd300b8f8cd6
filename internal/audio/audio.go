// Package audio synthesizes spatial impact sounds for bouncing balls and
// streams them through oto.
package audio

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/chewxy/math32"
	rl "github.com/gen2brain/raylib-go/raylib"
)

const (
	SampleRate   = 44100
	channelCount = 2
	frameBytes   = 4 * channelCount // float32 stereo

	DefaultMaxVoices = 16
)

// Listener represents the audio listener position and orientation
type Listener struct {
	Position rl.Vector3
	Forward  rl.Vector3
	Right    rl.Vector3
}

// NewListener normalizes forward and derives the right vector from up.
func NewListener(pos, forward, up rl.Vector3) Listener {
	l := Listener{Position: pos}

	// Normalize forward, default to +Z if zero
	if fwdLen := rl.Vector3Length(forward); fwdLen > 0.001 {
		l.Forward = rl.Vector3Scale(forward, 1.0/fwdLen)
	} else {
		l.Forward = rl.Vector3{Z: 1}
	}

	right := rl.Vector3CrossProduct(l.Forward, up)
	if rightLen := rl.Vector3Length(right); rightLen > 0.001 {
		l.Right = rl.Vector3Scale(right, 1.0/rightLen)
	} else {
		l.Right = rl.Vector3{X: -1}
	}
	return l
}

// Spatialize returns the gain for a source at pos, with linear distance
// falloff to zero at maxDistance, and its pan: 0 full left, 0.5 center,
// 1 full right.
func Spatialize(l Listener, pos rl.Vector3, maxDistance float32) (volume, pan float32) {
	toSource := rl.Vector3Subtract(pos, l.Position)
	distance := rl.Vector3Length(toSource)
	if distance >= maxDistance {
		return 0, 0.5
	}
	volume = 1.0 - distance/maxDistance
	pan = 0.5
	if distance > 0.001 {
		direction := rl.Vector3Scale(toSource, 1.0/distance)
		pan = clamp(0.5+rl.Vector3DotProduct(direction, l.Right)*0.5, 0, 1)

		// Sounds behind are slightly quieter
		if frontDot := rl.Vector3DotProduct(direction, l.Forward); frontDot < 0 {
			volume *= 0.7 + 0.3*math32.Abs(frontDot)
		}
	}
	return volume, pan
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}

// voice is one decaying tone.
type voice struct {
	freq        float32
	left, right float32
	decay       float32 // seconds
	t           int     // samples played
	length      int
}

func (v *voice) sample() float32 {
	sec := float32(v.t) / SampleRate
	return math32.Exp(-sec/v.decay) * math32.Sin(2*math.Pi*v.freq*sec)
}

// Mixer sums active voices into a float32 little-endian stereo stream. It is
// an io.Reader for an oto player; Read runs on oto's goroutine.
type Mixer struct {
	mu       sync.Mutex
	listener Listener
	voices   []*voice

	Volume      float32
	MaxDistance float32
	MinSpeed    float32
	MaxVoices   int
}

func NewMixer(volume, maxDistance, minSpeed float32) *Mixer {
	return &Mixer{
		listener:    NewListener(rl.Vector3{}, rl.Vector3{Z: 1}, rl.Vector3{Y: 1}),
		Volume:      volume,
		MaxDistance: maxDistance,
		MinSpeed:    minSpeed,
		MaxVoices:   DefaultMaxVoices,
	}
}

// SetListener updates the listener position and orientation
func (m *Mixer) SetListener(pos, forward, up rl.Vector3) {
	l := NewListener(pos, forward, up)
	m.mu.Lock()
	m.listener = l
	m.mu.Unlock()
}

// Bounce queues an impact at pos. Faster impacts are louder and lower, and
// impacts slower than MinSpeed or out of range are dropped. It reports
// whether a sound was queued.
func (m *Mixer) Bounce(pos rl.Vector3, speed float32) bool {
	if speed < m.MinSpeed {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	volume, pan := Spatialize(m.listener, pos, m.MaxDistance)
	strength := clamp(speed/10, 0.1, 1)
	gain := m.Volume * volume * strength
	if gain <= 0 {
		return false
	}

	decay := float32(0.08)
	v := &voice{
		freq:   220 - 100*strength,
		left:   gain * math32.Min(1, 2*(1-pan)),
		right:  gain * math32.Min(1, 2*pan),
		decay:  decay,
		length: int(decay * 6 * SampleRate),
	}
	if m.MaxVoices > 0 && len(m.voices) >= m.MaxVoices {
		m.voices = m.voices[1:]
	}
	m.voices = append(m.voices, v)
	return true
}

// Active is the number of voices still sounding.
func (m *Mixer) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.voices)
}

// Read fills buf with whole stereo frames. Silence is written when nothing
// is playing.
func (m *Mixer) Read(buf []byte) (int, error) {
	frames := len(buf) / frameBytes

	m.mu.Lock()
	defer m.mu.Unlock()

	for i := 0; i < frames; i++ {
		var l, r float32
		for _, v := range m.voices {
			if v.t >= v.length {
				continue
			}
			s := v.sample()
			l += s * v.left
			r += s * v.right
			v.t++
		}
		writeFloat32LE(buf[i*frameBytes:], clamp(l, -1, 1))
		writeFloat32LE(buf[i*frameBytes+4:], clamp(r, -1, 1))
	}

	live := m.voices[:0]
	for _, v := range m.voices {
		if v.t < v.length {
			live = append(live, v)
		}
	}
	clear(m.voices[len(live):])
	m.voices = live

	return frames * frameBytes, nil
}

func writeFloat32LE(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}
