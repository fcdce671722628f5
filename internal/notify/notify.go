// Package notify gives the user audible and desktop feedback for the
// push-to-talk toggle, since the daemon has no window of its own.
package notify

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Beep plays the cue sound at path. Missing or undecodable cue files are
// reported, never fatal.
func Beep(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open cue sound: %w", err)
	}
	defer f.Close()

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		return fmt.Errorf("decode cue sound: %w", err)
	}
	defer streamer.Close()

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	done := make(chan bool)
	speaker.Play(beep.Seq(streamer, beep.Callback(func() {
		done <- true
	})))
	<-done
	return nil
}

// Desktop sends a transient desktop notification via notify-send.
func Desktop(summary string) error {
	return exec.Command("notify-send", "-a", "scenevox", "-t", "2000", summary).Run()
}
