package encoder

import (
	"errors"
	"fmt"
	"io"
	"runtime"
	"strings"
	"sync"

	"github.com/richinsley/goshaderbg/log"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

var logger = log.New("encoder")

// Frame is one rendered RGBA8 frame, bottom row first as read from GL.
type Frame struct {
	Pixels []byte
	PTS    int64
}

// Config describes the raw input stream and the output file.
type Config struct {
	Width      int
	Height     int
	FPS        int
	OutputFile string
	Codec      string
	FFMPEGPath string
}

var ErrClosed = errors.New("encoder: closed")

// Args builds the ffmpeg input and output arguments for cfg on goos.
func Args(cfg Config, goos string) (inputArgs ffmpeg.KwArgs, outputArgs ffmpeg.KwArgs) {
	inputArgs = ffmpeg.KwArgs{
		"f":       "rawvideo",
		"pix_fmt": "rgba",
		"s":       fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"r":       cfg.FPS,
	}

	outputArgs = ffmpeg.KwArgs{
		// GL rows come bottom first.
		"vf":      "vflip",
		"pix_fmt": "yuv420p",
	}

	switch goos {
	case "darwin":
		if cfg.Codec == "hevc" {
			outputArgs["c:v"] = "hevc_videotoolbox"
		} else {
			outputArgs["c:v"] = "h264_videotoolbox"
		}
		outputArgs["b:v"] = "12M"
	default:
		if cfg.Codec == "hevc" {
			outputArgs["c:v"] = "libx265"
		} else {
			outputArgs["c:v"] = "libx264"
		}
		outputArgs["crf"] = 18
	}

	if cfg.Codec == "hevc" && strings.HasSuffix(cfg.OutputFile, ".mp4") {
		outputArgs["tag:v"] = "hvc1"
	}
	return
}

// Encoder pipes frames into an ffmpeg process. WriteFrame is the producer
// side; a goroutine consumes frames and writes them to ffmpeg's stdin.
type Encoder struct {
	cfg       Config
	frameSize int

	frames chan *Frame
	done   chan error

	mu     sync.Mutex
	failed error
	closed bool
}

// Start launches ffmpeg and the consumer goroutine.
func Start(cfg Config) (*Encoder, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.FPS <= 0 {
		return nil, fmt.Errorf("encoder: invalid stream %dx%d@%d", cfg.Width, cfg.Height, cfg.FPS)
	}
	e := &Encoder{
		cfg:       cfg,
		frameSize: cfg.Width * cfg.Height * 4,
		frames:    make(chan *Frame, 3),
		done:      make(chan error, 1),
	}

	pipeReader, pipeWriter := io.Pipe()
	inputArgs, outputArgs := Args(cfg, runtime.GOOS)
	cmd := ffmpeg.Input("pipe:", inputArgs).
		Output(cfg.OutputFile, outputArgs).
		OverWriteOutput().WithInput(pipeReader).ErrorToStdOut()
	if cfg.FFMPEGPath != "" {
		cmd = cmd.SetFfmpegPath(cfg.FFMPEGPath)
	}

	errc := make(chan error, 1)
	go func() {
		err := cmd.Run()
		// Unblock the consumer if ffmpeg exits early.
		pipeReader.CloseWithError(io.ErrClosedPipe)
		errc <- err
	}()
	go e.consume(pipeWriter, errc)

	logger.Infof("encoding %dx%d@%d to %s", cfg.Width, cfg.Height, cfg.FPS, cfg.OutputFile)
	return e, nil
}

func (e *Encoder) consume(w *io.PipeWriter, errc <-chan error) {
	var writeErr error
	for frame := range e.frames {
		if writeErr != nil {
			continue
		}
		if _, err := w.Write(frame.Pixels); err != nil {
			writeErr = fmt.Errorf("failed to write frame %d to ffmpeg: %w", frame.PTS, err)
			logger.Error(writeErr)
			e.setFailed(writeErr)
		}
	}
	w.Close()

	runErr := <-errc
	if runErr != nil {
		e.done <- fmt.Errorf("ffmpeg failed: %w", runErr)
		return
	}
	e.done <- writeErr
}

func (e *Encoder) setFailed(err error) {
	e.mu.Lock()
	e.failed = err
	e.mu.Unlock()
}

// WriteFrame queues a frame. It fails fast once the pipeline broke.
func (e *Encoder) WriteFrame(f *Frame) error {
	e.mu.Lock()
	failed, closed := e.failed, e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if failed != nil {
		return failed
	}
	if len(f.Pixels) != e.frameSize {
		return fmt.Errorf("encoder: frame %d has %d bytes, want %d", f.PTS, len(f.Pixels), e.frameSize)
	}
	e.frames <- f
	return nil
}

// Close flushes queued frames and waits for ffmpeg to exit.
func (e *Encoder) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.closed = true
	e.mu.Unlock()

	close(e.frames)
	return <-e.done
}
