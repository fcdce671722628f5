package audio

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

type streamInfo struct {
	ID      int
	Volume  int
	AppName string
}

type fadeTarget struct {
	id   int
	from int
	to   int
}

// Ducker fades every other desktop audio stream down while the microphone is
// open, and back up afterwards, so recordings are not drowned by playback.
// Streams whose application.name is in selfNames (our own beep cues) are
// left alone.
type Ducker struct {
	mu          sync.Mutex
	active      bool
	selfNames   []string
	originalVol map[int]int // sink-input id -> volume % before ducking
	duckVolume  int         // target % for foreign streams while recording
}

func NewDucker(selfNames []string, duckVolume int) *Ducker {
	if duckVolume < 0 {
		duckVolume = 0
	}
	if duckVolume > 150 {
		duckVolume = 150
	}

	return &Ducker{
		selfNames:   append([]string(nil), selfNames...),
		originalVol: make(map[int]int),
		duckVolume:  duckVolume,
	}
}

// Duck fades foreign streams down to the configured volume. Calling Duck
// while already active is a no-op.
func (d *Ducker) Duck(ctx context.Context, fade time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	streams, err := listStreams(ctx)
	if err != nil {
		return fmt.Errorf("list streams: %w", err)
	}

	d.originalVol = make(map[int]int)

	var targets []fadeTarget
	for _, s := range streams {
		if d.isSelfStream(s) {
			continue
		}
		to := d.duckVolume
		if s.Volume < to {
			to = s.Volume
		}
		d.originalVol[s.ID] = s.Volume
		targets = append(targets, fadeTarget{id: s.ID, from: s.Volume, to: to})
	}

	if len(targets) > 0 {
		if err := fadeInputs(ctx, targets, fade); err != nil {
			return err
		}
	}

	d.active = true
	return nil
}

// Restore fades previously ducked streams back to their original volumes.
// Streams that appeared after Duck are left untouched.
func (d *Ducker) Restore(ctx context.Context, fade time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	streams, err := listStreams(ctx)
	if err != nil {
		return fmt.Errorf("list streams: %w", err)
	}

	var targets []fadeTarget
	for _, s := range streams {
		if d.isSelfStream(s) {
			continue
		}
		orig, ok := d.originalVol[s.ID]
		if !ok {
			continue
		}
		targets = append(targets, fadeTarget{id: s.ID, from: s.Volume, to: orig})
	}

	if len(targets) > 0 {
		if err := fadeInputs(ctx, targets, fade); err != nil {
			return err
		}
	}

	d.originalVol = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) isSelfStream(s streamInfo) bool {
	for _, name := range d.selfNames {
		if s.AppName == name {
			return true
		}
	}
	return false
}

// fadeInputs performs a stepped fade for a set of sink inputs.
func fadeInputs(ctx context.Context, targets []fadeTarget, duration time.Duration) error {
	if duration <= 0 {
		for _, t := range targets {
			if err := setSinkInputVolume(ctx, t.id, t.to); err != nil {
				return fmt.Errorf("set volume id=%d: %w", t.id, err)
			}
		}
		return nil
	}

	const minStepDuration = 10 * time.Millisecond

	steps := int(duration / minStepDuration)
	if steps < 1 {
		steps = 1
	}
	stepDuration := duration / time.Duration(steps)

	for i := 0; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frac := float64(i) / float64(steps)
		for _, s := range targets {
			v := int(math.Round(float64(s.from) + float64(s.to-s.from)*frac))
			if err := setSinkInputVolume(ctx, s.id, v); err != nil {
				return fmt.Errorf("set volume id=%d: %w", s.id, err)
			}
		}

		if i < steps {
			time.Sleep(stepDuration)
		}
	}
	return nil
}

// --- pactl helpers ---

func listStreams(ctx context.Context) ([]streamInfo, error) {
	cmd := exec.CommandContext(ctx, "pactl", "list", "sink-inputs")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	parts := strings.Split(string(out), "Sink Input #")
	if len(parts) <= 1 {
		return nil, nil
	}

	var res []streamInfo
	for i := 1; i < len(parts); i++ {
		block := parts[i]

		newline := strings.IndexByte(block, '\n')
		if newline <= 0 {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(block[:newline]))
		if err != nil {
			continue
		}

		s := streamInfo{ID: id}
		for _, line := range strings.Split(block[newline+1:], "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && s.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); len(m) >= 2 {
					if v, err := strconv.Atoi(m[1]); err == nil {
						s.Volume = v
					}
				}
			}

			if strings.HasPrefix(line, "application.name =") && s.AppName == "" {
				// application.name = "Firefox"
				if idx := strings.Index(line, "\""); idx >= 0 {
					rest := line[idx+1:]
					if idx2 := strings.Index(rest, "\""); idx2 >= 0 {
						s.AppName = rest[:idx2]
					}
				}
			}
		}

		if s.Volume == 0 && s.AppName == "" {
			continue
		}
		res = append(res, s)
	}

	return res, nil
}

func setSinkInputVolume(ctx context.Context, id int, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 150 {
		percent = 150
	}

	arg := fmt.Sprintf("%d%%", percent)
	return exec.CommandContext(ctx, "pactl", "set-sink-input-volume", strconv.Itoa(id), arg).Run()
}
