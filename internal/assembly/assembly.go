// Package assembly drives the speech-synthesis engine over a directory of
// text artifacts and persists one voiceover per artifact.
package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"StoryForge/internal/dsp"
	"StoryForge/internal/ports"
)

// ErrNotDirectory marks an assembly input path that is missing or not a directory.
var ErrNotDirectory = errors.New("input path is not a directory")

// Config fixes the audio parameters of the stage.
type Config struct {
	// SourceRate is the rate the engine synthesizes at, and the rate every
	// artifact is declared at.
	SourceRate int
	// SpeedFactor compresses playback duration: segments are resampled to
	// round(SourceRate/SpeedFactor) and then written tagged at SourceRate.
	// That relabeling is the whole speed-up mechanism; it deliberately
	// raises pitch along with tempo.
	SpeedFactor float64
	// Voices is the catalog one voice per file is drawn from.
	Voices []string
}

// Assembler converts text artifacts into audio artifacts, one per file.
type Assembler struct {
	synth  ports.SpeechSynthesizer
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger
}

// New wires an assembler around an already-initialized synthesis engine. The
// engine handle is shared across all files of the stage; the caller owns its
// lifetime.
func New(synth ports.SpeechSynthesizer, cfg Config, rng *rand.Rand, logger *slog.Logger) *Assembler {
	return &Assembler{synth: synth, cfg: cfg, rng: rng, logger: logger}
}

// Assemble processes every .txt file in inputDir, in sorted name order, and
// writes <base>_speed_<factor>.wav files into outputDir. A per-file failure
// of any kind is logged and skipped; only a missing input directory or an
// uncreatable output directory aborts the stage.
func (a *Assembler) Assemble(ctx context.Context, inputDir, outputDir string) error {
	info, err := os.Stat(inputDir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrNotDirectory, inputDir)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create audio output directory %s: %w", outputDir, err)
	}

	names, err := textFileNames(inputDir)
	if err != nil {
		return fmt.Errorf("list %s: %w", inputDir, err)
	}
	if len(names) == 0 {
		a.logger.Info("no text files to process", "dir", inputDir)
		return nil
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("assemble audio: %w", err)
		}
		if err := a.processFile(ctx, inputDir, outputDir, name); err != nil {
			a.logger.Warn("voiceover failed", "file", name, "error", err)
		}
	}

	return nil
}

// textFileNames returns the .txt entries of dir sorted by name, so processing
// order (and with it per-file voice assignment) is reproducible.
func textFileNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (a *Assembler) processFile(ctx context.Context, inputDir, outputDir, name string) error {
	voice := a.cfg.Voices[a.rng.Intn(len(a.cfg.Voices))]

	raw, err := os.ReadFile(filepath.Join(inputDir, name))
	if err != nil {
		return fmt.Errorf("read text artifact: %w", err)
	}

	text := strings.TrimSpace(string(raw))
	if text == "" {
		a.logger.Info("skipping empty file", "file", name)
		return nil
	}

	a.logger.Info("generating voiceover", "file", name, "voice", voice)

	// The segment sequence is single-pass; a retry would mean a fresh request.
	segments, err := a.synth.Synthesize(ctx, text, voice)
	if err != nil {
		return fmt.Errorf("synthesize: %w", err)
	}

	targetRate := int(math.Round(float64(a.cfg.SourceRate) / a.cfg.SpeedFactor))

	var combined []float64
	for i, segment := range segments {
		a.logger.Debug("processing segment",
			"index", i, "global_step", segment.GlobalStep, "phoneme_step", segment.PhonemeStep)
		combined = append(combined, dsp.Resample(segment.Samples, a.cfg.SourceRate, targetRate)...)
	}

	if len(combined) == 0 {
		a.logger.Info("no audio segments generated", "file", name)
		return nil
	}

	outName := artifactName(name, a.cfg.SpeedFactor)
	outPath := filepath.Join(outputDir, outName)
	// Declaring the source rate on resampled data is what realizes the
	// tempo change.
	if err := writeWAV(outPath, combined, a.cfg.SourceRate); err != nil {
		return fmt.Errorf("write audio artifact: %w", err)
	}

	a.logger.Info("voiceover saved", "file", outName, "samples", len(combined))
	return nil
}

func artifactName(inputName string, speed float64) string {
	base := strings.TrimSuffix(inputName, filepath.Ext(inputName))
	return fmt.Sprintf("%s_speed_%s.wav", base, strconv.FormatFloat(speed, 'g', -1, 64))
}

func writeWAV(path string, samples []float64, rate int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	enc := wav.NewEncoder(f, rate, 16, 1, 1)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: rate},
		Data:           make([]int, len(samples)),
		SourceBitDepth: 16,
	}
	for i, s := range samples {
		buf.Data[i] = clampPCM16(s)
	}

	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func clampPCM16(s float64) int {
	v := int(math.Round(s * 32767))
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}
