// ABOUTME: Podcast recorder application orchestration
// ABOUTME: Turns user intents into capture, playback, catalog and waveform operations
package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/harperreed/podcast-recorder/internal/capture"
	"github.com/harperreed/podcast-recorder/internal/catalog"
	"github.com/harperreed/podcast-recorder/internal/playback"
	"github.com/harperreed/podcast-recorder/internal/transport"
	"github.com/harperreed/podcast-recorder/internal/waveform"
	"github.com/harperreed/podcast-recorder/pkg/audio"
	"github.com/harperreed/podcast-recorder/pkg/audio/decode"
	"github.com/harperreed/podcast-recorder/pkg/audio/encode"
	"github.com/harperreed/podcast-recorder/pkg/audio/input"
	"github.com/harperreed/podcast-recorder/pkg/audio/output"
	"go.uber.org/zap"
)

var (
	// ErrNoSelection is returned by operations that need a selected recording
	ErrNoSelection = errors.New("no recording selected")

	// ErrPlaybackActive is returned when recording is requested during playback
	ErrPlaybackActive = errors.New("stop playback before recording")

	// ErrRecordingActive is returned when the catalog is changed during a recording
	ErrRecordingActive = errors.New("stop recording first")

	// ErrSelectWhilePlaying is returned when another recording is selected during playback
	ErrSelectWhilePlaying = errors.New("pause or stop playback before selecting another recording")
)

// Catalog stores recording metadata
type Catalog interface {
	AddRecord(path, title, description string, durationSeconds float64) error
	ListRecords() ([]catalog.Record, error)
	Get(path string) (catalog.Record, error)
	UpdateTitleDescription(path, title, description string) error
	DeleteRecord(path string) error
}

// volumeControl is implemented by outputs with software volume
type volumeControl interface {
	SetVolume(volume int)
	GetVolume() int
	SetMuted(muted bool)
	IsMuted() bool
}

// Config holds application configuration
type Config struct {
	RecordingsDir  string
	Format         audio.Format
	FramesPerBlock int
	QueueBlocks    int
	DrainTimeout   time.Duration
	WaveformWidth  int
	Clock          func() time.Time
}

// ExportResult describes a finished FLAC export
type ExportResult struct {
	Path        string
	SourceBytes int64
	ExportBytes int64
	// Reduction is the size saving in percent relative to the source
	Reduction float64
}

// App wires the engines together
type App struct {
	cfg     Config
	log     *zap.SugaredLogger
	capture *capture.Engine
	player  *playback.Engine
	out     output.Output
	catalog Catalog
	wave    *waveform.Waveform
	clock   *transport.Clock
	newID   func() string

	mu       sync.Mutex
	selected string

	// warning is written from the device thread
	warnMu  sync.Mutex
	warning string
}

// New creates the application around an input device, an output sink and a catalog
func New(cfg Config, in input.Input, out output.Output, cat Catalog, log *zap.SugaredLogger) *App {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Format.BitDepth == 0 {
		cfg.Format.BitDepth = 16
	}

	a := &App{
		cfg:     cfg,
		log:     log,
		out:     out,
		catalog: cat,
		wave:    waveform.New(cfg.WaveformWidth),
		newID:   uuid.NewString,
	}

	a.capture = capture.New(in, capture.Config{
		FramesPerBlock: cfg.FramesPerBlock,
		QueueBlocks:    cfg.QueueBlocks,
		DrainTimeout:   cfg.DrainTimeout,
		OnStatus:       a.deviceStatus,
		Clock:          cfg.Clock,
	}, log.Named("capture"))

	a.player = playback.New(out, playback.Options{
		Clock:     cfg.Clock,
		Interlock: a.capture,
	}, log.Named("playback"))

	a.clock = transport.New(a.capture, a.player, a.wave, log.Named("transport"))

	return a
}

func (a *App) deviceStatus(err error) {
	a.log.Warnw("input device status", "error", err)
	a.warnMu.Lock()
	a.warning = err.Error()
	a.warnMu.Unlock()
}

// Warning returns and clears the latest device warning
func (a *App) Warning() string {
	a.warnMu.Lock()
	defer a.warnMu.Unlock()
	w := a.warning
	a.warning = ""
	return w
}

// StartRecording begins a new recording and returns its path
func (a *App) StartRecording() (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capture.Active() {
		return "", capture.ErrAlreadyRecording
	}

	switch a.player.State() {
	case playback.Playing:
		return "", ErrPlaybackActive
	case playback.Paused:
		if err := a.player.Stop(); err != nil {
			a.log.Warnw("failed to stop paused playback", "error", err)
		}
	}

	if err := os.MkdirAll(a.cfg.RecordingsDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create recordings directory: %w", err)
	}

	name := fmt.Sprintf("rec_%d_%s.wav", a.cfg.Clock().Unix(), a.newID()[:8])
	path := filepath.Join(a.cfg.RecordingsDir, name)

	if err := a.capture.Start(path, a.cfg.Format); err != nil {
		return "", err
	}
	a.wave.StartLive()

	return path, nil
}

// Stop ends the recording or, when not recording, stops playback and rewinds.
// After a recording the new catalog record is returned and selected.
func (a *App) Stop() (*catalog.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capture.Active() {
		return a.stopRecordingLocked()
	}

	err := a.player.Stop()
	a.wave.SetCursor(0)
	a.wave.SetIdle()
	return nil, err
}

func (a *App) stopRecordingLocked() (*catalog.Record, error) {
	info, stopErr := a.capture.Stop()
	if errors.Is(stopErr, capture.ErrDrainTimeout) {
		a.wave.Clear()
		return nil, stopErr
	}
	if stopErr != nil {
		a.log.Errorw("recording finished with errors", "path", info.Path, "error", stopErr)
	}

	duration := audio.SecondsForFrames(info.Frames, info.Format.SampleRate)
	if probed, err := decode.Probe(info.Path); err != nil {
		a.log.Warnw("failed to probe recording, using written frames", "path", info.Path, "error", err)
	} else {
		duration = probed.Seconds()
	}

	if err := a.catalog.AddRecord(info.Path, info.Path, "", duration); err != nil {
		return nil, errors.Join(stopErr, err)
	}

	rec, err := a.selectLocked(info.Path)
	if err != nil {
		return nil, errors.Join(stopErr, err)
	}
	return &rec, stopErr
}

// Select makes path the current recording and shows its overview
func (a *App) Select(path string) (catalog.Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.capture.Active() {
		return catalog.Record{}, ErrRecordingActive
	}
	switch a.player.State() {
	case playback.Playing:
		return catalog.Record{}, ErrSelectWhilePlaying
	case playback.Paused:
		if path != a.selected {
			if err := a.player.Stop(); err != nil {
				a.log.Warnw("failed to stop paused playback", "error", err)
			}
		}
	}
	return a.selectLocked(path)
}

func (a *App) selectLocked(path string) (catalog.Record, error) {
	rec, err := a.catalog.Get(path)
	if err != nil {
		return catalog.Record{}, err
	}
	a.selected = path

	buf, err := a.bufferLocked(path)
	if err != nil {
		a.log.Warnw("failed to read recording for overview", "path", path, "error", err)
		a.wave.Clear()
		return rec, nil
	}
	a.wave.SetBuffer(buf)
	return rec, nil
}

// bufferLocked returns the loaded buffer for path or decodes the file
func (a *App) bufferLocked(path string) (*audio.Buffer, error) {
	if loaded, buf := a.player.Loaded(); loaded == path && buf != nil {
		return buf, nil
	}
	return decode.File(path)
}

// Selected returns the selected path, or "" when nothing is selected
func (a *App) Selected() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.selected
}

// PlaySelected plays the selection from the start, or continues from the
// cursor when it is already loaded
func (a *App) PlaySelected() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.selected == "" {
		return ErrNoSelection
	}
	if a.capture.Active() {
		return playback.ErrBusy
	}

	if loaded, _ := a.player.Loaded(); loaded != a.selected {
		if err := a.loadSelectedLocked(); err != nil {
			return err
		}
		return a.player.Play(0)
	}

	switch a.player.State() {
	case playback.Playing:
		return nil
	default:
		// paused or stopped: continue from the frame cursor
		return a.player.Resume()
	}
}

func (a *App) loadSelectedLocked() error {
	if err := a.player.Load(a.selected); err != nil {
		return err
	}
	_, buf := a.player.Loaded()
	a.wave.SetBuffer(buf)
	return nil
}

// TogglePause pauses while playing. Otherwise it plays the loaded file from
// the cursor; with nothing loaded it does nothing.
func (a *App) TogglePause() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.player.State() == playback.Playing {
		if err := a.player.Pause(); err != nil {
			return err
		}
		a.wave.SetCursor(a.player.EstimatedPosition())
		return nil
	}
	if _, buf := a.player.Loaded(); buf == nil {
		return nil
	}
	if a.capture.Active() {
		return playback.ErrBusy
	}
	return a.player.Resume()
}

// Seek moves playback to seconds, loading the selection if needed
func (a *App) Seek(seconds float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.seekLocked(seconds)
}

// SeekBy moves playback by delta seconds from the current position
func (a *App) SeekBy(delta float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	target := a.player.EstimatedPosition() + delta
	if target < 0 {
		target = 0
	}
	return a.seekLocked(target)
}

func (a *App) seekLocked(seconds float64) error {
	if a.capture.Active() {
		return ErrRecordingActive
	}
	if loaded, _ := a.player.Loaded(); loaded != a.selected && a.selected != "" {
		if err := a.loadSelectedLocked(); err != nil {
			return err
		}
	}

	if err := a.player.Seek(seconds); err != nil {
		return err
	}
	if a.player.State() != playback.Playing {
		a.wave.SetCursor(a.player.EstimatedPosition())
	}
	return nil
}

// SaveMetadata updates the title and description of the selection
func (a *App) SaveMetadata(title, description string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.selected == "" {
		return ErrNoSelection
	}
	return a.catalog.UpdateTitleDescription(a.selected, title, description)
}

// DeleteSelected removes the selection from the catalog and the disk
func (a *App) DeleteSelected() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.selected == "" {
		return ErrNoSelection
	}
	if a.capture.Active() {
		return ErrRecordingActive
	}

	path := a.selected
	if err := a.catalog.DeleteRecord(path); err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		a.log.Warnw("failed to remove recording file", "path", path, "error", err)
	}
	if err := a.player.Unload(path); err != nil {
		a.log.Warnw("failed to stop playback of deleted recording", "path", path, "error", err)
	}

	a.selected = ""
	a.wave.Clear()
	a.log.Infow("recording deleted", "path", path)
	return nil
}

// ExportSelected writes a FLAC copy next to the selected file
func (a *App) ExportSelected() (ExportResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.selected == "" {
		return ExportResult{}, ErrNoSelection
	}

	src := a.selected
	buf, err := a.bufferLocked(src)
	if err != nil {
		return ExportResult{}, err
	}

	dst := strings.TrimSuffix(src, filepath.Ext(src)) + ".flac"
	if err := encode.FLACFile(dst, buf); err != nil {
		return ExportResult{}, err
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to stat %s: %w", src, err)
	}
	dstInfo, err := os.Stat(dst)
	if err != nil {
		return ExportResult{}, fmt.Errorf("failed to stat %s: %w", dst, err)
	}

	res := ExportResult{
		Path:        dst,
		SourceBytes: srcInfo.Size(),
		ExportBytes: dstInfo.Size(),
	}
	if res.SourceBytes > 0 {
		res.Reduction = (1 - float64(res.ExportBytes)/float64(res.SourceBytes)) * 100
	}

	a.log.Infow("recording exported",
		"source", src,
		"path", dst,
		"reduction_percent", res.Reduction)
	return res, nil
}

// Tick reconciles the display with the engines
func (a *App) Tick() transport.Status {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clock.Tick()
}

// Mode returns the transport mode
func (a *App) Mode() transport.Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.clock.Mode()
}

// Records lists the catalog, newest first
func (a *App) Records() ([]catalog.Record, error) {
	return a.catalog.ListRecords()
}

// RenderWaveform draws the waveform view
func (a *App) RenderWaveform(width, height int) []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wave.Render(width, height)
}

// WaveformTimeAt maps a waveform column to seconds in the shown file
func (a *App) WaveformTimeAt(col, width int) float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.wave.TimeAt(col, width)
}

// AdjustVolume changes the output volume by delta and returns the new value.
// ok is false when the output has no volume control.
func (a *App) AdjustVolume(delta int) (volume int, ok bool) {
	vc, ok := a.out.(volumeControl)
	if !ok {
		return 0, false
	}
	vc.SetVolume(vc.GetVolume() + delta)
	return vc.GetVolume(), true
}

// ToggleMute flips the output mute state and returns the new state
func (a *App) ToggleMute() (muted bool, ok bool) {
	vc, ok := a.out.(volumeControl)
	if !ok {
		return false, false
	}
	vc.SetMuted(!vc.IsMuted())
	return vc.IsMuted(), true
}

// Close finishes any recording, stops playback and releases the output
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.capture.Active() {
		if _, err := a.stopRecordingLocked(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := a.player.Stop(); err != nil {
		errs = append(errs, err)
	}
	if err := a.out.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close output: %w", err))
	}
	return errors.Join(errs...)
}
