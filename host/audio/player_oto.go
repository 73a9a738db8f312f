//go:build !headless

package audio

import (
	"bytes"
	"time"

	"github.com/ebitengine/oto/v3"
)

// Play plays mono samples at rate and returns when they are done.
func Play(samples []float32, rate int) error {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   rate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return err
	}
	<-ready

	player := ctx.NewPlayer(bytes.NewReader(EncodeFloat32(samples)))
	player.Play()
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}
