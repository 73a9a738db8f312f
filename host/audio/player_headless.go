//go:build headless

package audio

import "errors"

// ErrNoAudio is returned by Play in headless builds.
var ErrNoAudio = errors.New("audio: built without an audio backend")

// Play is unavailable in headless builds.
func Play(samples []float32, rate int) error {
	return ErrNoAudio
}
