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

var volumeRe = regexp.MustCompile(`(\d+)\s*%`)

type sinkInput struct {
	id     int
	volume int
	app    string
}

// Ducker lowers the volume of other desktop audio streams while the
// assistant speaks or listens, then restores them. Streams whose
// application.name matches ownApps are left alone. PulseAudio only;
// every call degrades to a no-op error when pactl is missing.
type Ducker struct {
	mu       sync.Mutex
	ducked   bool
	ownApps  []string
	restore  map[int]int
	floorPct int
}

func NewDucker(ownApps []string, floorPct int) *Ducker {
	if floorPct < 0 {
		floorPct = 0
	}
	if floorPct > 100 {
		floorPct = 100
	}
	return &Ducker{
		ownApps:  append([]string(nil), ownApps...),
		restore:  make(map[int]int),
		floorPct: floorPct,
	}
}

// Duck fades all foreign streams down to volume*factor, no lower than
// the configured floor. Calling Duck while already ducked is a no-op.
func (d *Ducker) Duck(ctx context.Context, factor float64, fade time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.ducked {
		return nil
	}

	inputs, err := listSinkInputs(ctx)
	if err != nil {
		return err
	}

	d.restore = make(map[int]int)
	var targets []sinkInput
	for _, in := range inputs {
		if d.owns(in.app) {
			continue
		}
		to := int(math.Round(float64(in.volume) * factor))
		if to < d.floorPct {
			to = d.floorPct
		}
		d.restore[in.id] = in.volume
		targets = append(targets, sinkInput{id: in.id, volume: to, app: in.app})
	}

	if err := fadeTo(ctx, inputs, targets, fade); err != nil {
		return err
	}
	d.ducked = true
	return nil
}

// Restore fades every stream ducked earlier back to its original
// volume. Streams that appeared after Duck are untouched.
func (d *Ducker) Restore(ctx context.Context, fade time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.ducked {
		return nil
	}

	inputs, err := listSinkInputs(ctx)
	if err != nil {
		return err
	}

	var targets []sinkInput
	for _, in := range inputs {
		orig, ok := d.restore[in.id]
		if !ok {
			continue
		}
		targets = append(targets, sinkInput{id: in.id, volume: orig, app: in.app})
	}

	if err := fadeTo(ctx, inputs, targets, fade); err != nil {
		return err
	}
	d.restore = make(map[int]int)
	d.ducked = false
	return nil
}

func (d *Ducker) owns(app string) bool {
	for _, name := range d.ownApps {
		if app == name {
			return true
		}
	}
	return false
}

func fadeTo(ctx context.Context, current, targets []sinkInput, fade time.Duration) error {
	from := make(map[int]int, len(current))
	for _, in := range current {
		from[in.id] = in.volume
	}

	steps := int(fade / (10 * time.Millisecond))
	if steps < 1 {
		steps = 1
	}

	for step := 1; step <= steps; step++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		frac := float64(step) / float64(steps)
		for _, t := range targets {
			start := from[t.id]
			v := int(math.Round(float64(start) + float64(t.volume-start)*frac))
			if err := setSinkInputVolume(ctx, t.id, v); err != nil {
				return fmt.Errorf("set volume id=%d: %w", t.id, err)
			}
		}
		if step < steps {
			time.Sleep(fade / time.Duration(steps))
		}
	}
	return nil
}

func listSinkInputs(ctx context.Context) ([]sinkInput, error) {
	out, err := exec.CommandContext(ctx, "pactl", "list", "sink-inputs").Output()
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	var res []sinkInput
	for _, block := range strings.Split(string(out), "Sink Input #")[1:] {
		nl := strings.IndexByte(block, '\n')
		if nl <= 0 {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(block[:nl]))
		if err != nil {
			continue
		}

		in := sinkInput{id: id}
		for _, line := range strings.Split(block[nl+1:], "\n") {
			line = strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(line, "Volume:") && in.volume == 0:
				if m := volumeRe.FindStringSubmatch(line); m != nil {
					in.volume, _ = strconv.Atoi(m[1])
				}
			case strings.HasPrefix(line, "application.name =") && in.app == "":
				if start := strings.IndexByte(line, '"'); start >= 0 {
					rest := line[start+1:]
					if end := strings.IndexByte(rest, '"'); end >= 0 {
						in.app = rest[:end]
					}
				}
			}
		}
		if in.volume == 0 && in.app == "" {
			continue
		}
		res = append(res, in)
	}
	return res, nil
}

func setSinkInputVolume(ctx context.Context, id, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > 150 {
		percent = 150
	}
	return exec.CommandContext(ctx, "pactl",
		"set-sink-input-volume", strconv.Itoa(id), fmt.Sprintf("%d%%", percent)).Run()
}
