package audio

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// oto allows one context per process.
var (
	otoContext     *oto.Context
	otoContextOnce sync.Once
	otoContextErr  error
)

func outputContext() (*oto.Context, error) {
	otoContextOnce.Do(func() {
		var ready chan struct{}
		otoContext, ready, otoContextErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   SampleRate,
			ChannelCount: channelCount,
			Format:       oto.FormatFloat32LE,
		})
		if otoContextErr != nil {
			otoContextErr = fmt.Errorf("audio: open device: %w", otoContextErr)
			return
		}
		<-ready
	})
	return otoContext, otoContextErr
}

// Player streams a Mixer to the default output device.
type Player struct {
	player *oto.Player
}

// Play opens the output device and starts streaming src.
func Play(src io.Reader) (*Player, error) {
	ctx, err := outputContext()
	if err != nil {
		return nil, err
	}
	p := ctx.NewPlayer(src)
	p.Play()
	return &Player{player: p}, nil
}

func (p *Player) Close() error {
	return p.player.Close()
}
