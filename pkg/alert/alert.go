// Package alert makes the "new notification" sound.
package alert

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/go-audio/wav"

	"github.com/Saad0095/leaders-tax-cli/pkg/config"
	"github.com/Saad0095/leaders-tax-cli/pkg/logger"
)

// ChimeFile is the generated sound written into the config dir
const ChimeFile = "chime.wav"

// players are tried in order when no player is configured
var players = []string{"paplay", "aplay", "afplay", "play"}

// ErrInvalidSound is returned for files that are not readable WAV audio
var ErrInvalidSound = errors.New("invalid WAV file")

// Alerter raises an audible alert without blocking the caller
type Alerter interface {
	Alert()
}

// Bell rings the terminal bell
type Bell struct {
	Out io.Writer
}

// Alert writes BEL to the terminal
func (b Bell) Alert() {
	out := b.Out
	if out == nil {
		out = os.Stderr
	}
	_, _ = io.WriteString(out, "\a")
}

// Runner starts an external command and returns once it has started
type Runner func(name string, args ...string) error

// Sound plays a WAV file through an external player, falling back to the
// bell when the player cannot be started.
type Sound struct {
	Path     string
	Player   string
	Fallback Alerter
	Run      Runner

	mu      sync.Mutex
	playing bool
}

// Alert starts the player. An alert raised while the previous one is still
// playing is dropped.
func (s *Sound) Alert() {
	s.mu.Lock()
	if s.playing {
		s.mu.Unlock()
		return
	}
	s.playing = true
	s.mu.Unlock()

	run := s.Run
	if run == nil {
		run = startDetached(s.done)
	} else {
		defer s.done()
	}

	if err := run(s.Player, s.Path); err != nil {
		logger.Warn("Could not play notification sound", "player", s.Player, "file", s.Path, "error", err)
		s.done()
		if s.Fallback != nil {
			s.Fallback.Alert()
		}
	}
}

func (s *Sound) done() {
	s.mu.Lock()
	s.playing = false
	s.mu.Unlock()
}

// startDetached runs the player in the background and calls finished when
// it exits.
func startDetached(finished func()) Runner {
	return func(name string, args ...string) error {
		cmd := exec.Command(name, args...)
		if err := cmd.Start(); err != nil {
			return err
		}
		go func() {
			defer finished()
			if err := cmd.Wait(); err != nil {
				logger.Debug("Sound player exited", "player", name, "error", err)
			}
		}()
		return nil
	}
}

// Validate checks that path holds WAV audio
func Validate(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open sound file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	if !decoder.IsValidFile() {
		return fmt.Errorf("%s: %w", path, ErrInvalidSound)
	}

	logger.Debug("Notification sound",
		"file", path,
		"sample_rate", decoder.SampleRate,
		"bit_depth", decoder.BitDepth,
		"channels", decoder.NumChans,
	)
	return nil
}

// FindPlayer returns the configured player or the first known one on PATH
func FindPlayer(configured string) (string, error) {
	if configured != "" {
		return exec.LookPath(configured)
	}
	for _, name := range players {
		if path, err := exec.LookPath(name); err == nil {
			return path, nil
		}
	}
	return "", errors.New("no audio player found")
}

// New builds the alerter for the configured notification settings. Any
// problem with the sound setup degrades to the terminal bell.
func New(settings config.NotificationSettings, out io.Writer) Alerter {
	bell := Bell{Out: out}

	path := settings.SoundFile
	if path == "" {
		path = filepath.Join(config.GetConfigDir(), ChimeFile)
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			if err := WriteChimeFile(path); err != nil {
				logger.Warn("Could not write notification chime", "file", path, "error", err)
				return bell
			}
		}
	}

	if err := Validate(path); err != nil {
		logger.Warn("Notification sound unusable, using terminal bell", "error", err)
		return bell
	}

	player, err := FindPlayer(settings.SoundPlayer)
	if err != nil {
		logger.Debug("No audio player, using terminal bell", "error", err)
		return bell
	}

	return &Sound{Path: path, Player: player, Fallback: bell}
}
