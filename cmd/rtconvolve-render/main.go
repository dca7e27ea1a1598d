// Command rtconvolve-render is a thin, non-realtime host adapter around the
// convolve engine: it decodes a dry AIFF input and an impulse response (an
// AIFF file, or a named entry inside an .irlib library), runs them through a
// convolve.StereoManager block by block exactly as a real-time host would,
// and writes the result as raw interleaved float32 PCM.
//
// Usage:
//
//	rtconvolve-render [options] <input.aiff> <output.pcm>
package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"rtconvolve/convolve"
	"rtconvolve/internal/aiff"
	"rtconvolve/internal/presets"
	"rtconvolve/pkg/irformat"
	"rtconvolve/pkg/resampler"
)

var (
	irPath     = pflag.StringP("ir", "i", "", "Impulse response file: .aiff or .irlib")
	irName     = pflag.StringP("ir-name", "n", "", "IR name to select inside an .irlib library (default: first entry)")
	preset     = pflag.StringP("preset", "p", "", "Named preset from --presets-file (default: built-in default preset)")
	presetFile = pflag.StringP("presets-file", "f", "", "YAML presets catalogue")
	normalize  = pflag.BoolP("normalize", "N", false, "Normalize the IR before installing it")
	verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging")
)

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <input.aiff> <output.pcm>\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
	}
	pflag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if pflag.NArg() != 2 {
		pflag.Usage()
		os.Exit(1)
	}

	if err := run(pflag.Arg(0), pflag.Arg(1)); err != nil {
		slog.Error("render failed", "error", err)
		os.Exit(1)
	}
}

func run(inputPath, outputPath string) error {
	cfg, err := resolvePreset()
	if err != nil {
		return err
	}

	slog.Info("loaded preset", "block_size", cfg.BlockSize, "normalize_target", cfg.NormalizeTarget)

	input, err := os.Open(inputPath)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer input.Close()

	dry, err := aiff.Parse(input)
	if err != nil {
		return fmt.Errorf("parse input AIFF: %w", err)
	}

	slog.Debug("decoded input", "channels", dry.NumChannels, "sample_rate", dry.SampleRate, "samples", dry.NumSamples)

	ir, irRate, err := loadImpulseResponse(*irPath, *irName)
	if err != nil {
		return fmt.Errorf("load impulse response: %w", err)
	}

	if irRate > 0 && dry.SampleRate > 0 && irRate != dry.SampleRate {
		slog.Info("resampling impulse response", "ir_rate", irRate, "engine_rate", dry.SampleRate)

		ir, err = resampler.New().ResampleMultiChannel(ir, irRate, dry.SampleRate)
		if err != nil {
			return fmt.Errorf("resample impulse response: %w", err)
		}
	}

	if *normalize && cfg.NormalizeTarget != 0 {
		if len(ir) == 1 {
			convolve.NormalizeMono(ir[0], cfg.NormalizeTarget)
		} else if len(ir) >= 2 {
			convolve.NormalizeStereo(ir[0], ir[1], cfg.NormalizeTarget)
		}
	}

	channels := dry.NumChannels
	mgr, err := convolve.NewStereo(channels, ir[0], cfg.BlockSize)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	defer w.Flush()

	return processAudioBuffer(mgr, dry, cfg.BlockSize, w)
}

// processAudioBuffer drives the engine exactly as a real-time host pump
// would: de-interleave, process one block per channel, re-interleave, write
// out. Adapted from the teacher's own main.go processAudioBuffer loop,
// generalized from a single PipeWire channel to an arbitrary channel count
// and a file sink instead of a live device.
func processAudioBuffer(mgr *convolve.StereoManager, dry *aiff.File, blockSize int, w *bufio.Writer) error {
	channels := dry.NumChannels
	numSamples := dry.NumSamples

	block := make([]float32, blockSize)

	for off := 0; off < numSamples; off += blockSize {
		end := off + blockSize
		if end > numSamples {
			end = numSamples
		}
		n := end - off

		for ch := 0; ch < channels; ch++ {
			for i := range block {
				block[i] = 0
			}
			copy(block[:n], dry.Data[ch][off:end])

			mgr.ProcessInput(ch, block)
		}

		if err := writeInterleaved(w, mgr, channels, blockSize); err != nil {
			return err
		}
	}

	return nil
}

func writeInterleaved(w *bufio.Writer, mgr *convolve.StereoManager, channels, blockSize int) error {
	buf := make([]byte, 4)

	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < channels; ch++ {
			v := mgr.OutputBuffer(ch)[i]
			binary.LittleEndian.PutUint32(buf, math.Float32bits(v))
			if _, err := w.Write(buf); err != nil {
				return fmt.Errorf("write sample: %w", err)
			}
		}
	}

	return nil
}

// loadImpulseResponse returns the IR's channel data along with the sample
// rate it was authored at, so that run can resample it to the engine's rate
// (the dry input's sample rate) when the two disagree.
func loadImpulseResponse(path, name string) (data [][]float32, sampleRate float64, err error) {
	if path == "" {
		return [][]float32{{1}}, 0, nil // Dirac mono default, rate-agnostic
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".irlib") {
		lib, err := irformat.ReadLibrary(f)
		if err != nil {
			return nil, 0, fmt.Errorf("read irlib: %w", err)
		}

		var ir *irformat.ImpulseResponse
		if name != "" {
			for _, candidate := range lib.IRs {
				if candidate.Metadata.Name == name {
					ir = candidate
					break
				}
			}
			if ir == nil {
				return nil, 0, fmt.Errorf("no IR named %q in %s", name, path)
			}
		} else if len(lib.IRs) > 0 {
			ir = lib.IRs[0]
		} else {
			return nil, 0, fmt.Errorf("%s contains no impulse responses", path)
		}

		return ir.Audio.Data, ir.Metadata.SampleRate, nil
	}

	parsed, err := aiff.Parse(f)
	if err != nil {
		return nil, 0, fmt.Errorf("parse AIFF IR: %w", err)
	}

	return parsed.Data, parsed.SampleRate, nil
}

func resolvePreset() (presets.Preset, error) {
	if *presetFile == "" {
		return presets.Default, nil
	}

	cat, err := presets.LoadFile(*presetFile)
	if err != nil {
		return presets.Preset{}, err
	}

	p, _ := cat.Find(*preset)

	return p, nil
}
