package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/user/planarenc/pkg/media"
	"github.com/user/planarenc/pkg/session"
)

// ErrInvalidTiming is returned when the frame rate and time base do not
// yield a positive frame duration.
var ErrInvalidTiming = errors.New("pipeline: invalid frame timing")

// Stage is one step that turns In into Out. Driver is the Stage that
// turns a RunInput into a finished stream.
type Stage[In, Out any] interface {
	Execute(ctx context.Context, input In) (Out, error)
}

// StageFunc lets a plain function serve as a Stage.
type StageFunc[In, Out any] func(ctx context.Context, input In) (Out, error)

func (f StageFunc[In, Out]) Execute(ctx context.Context, input In) (Out, error) {
	return f(ctx, input)
}

// RunInput contains parameters for one encoding run.
type RunInput struct {
	Width       int
	Height      int
	PixelFormat media.PixelFormat
	Alignment   int // row alignment (0 = allocator default)

	Frames    int            // number of ticks
	FrameRate media.Rational // input frame rate
	TimeBase  media.Rational // stream time base of submitted timestamps

	// KeyframeInterval forces a keyframe every n ticks (0 = encoder decides).
	KeyframeInterval int

	// DebugFrames is the number of leading filled frames handed to the debug sink.
	DebugFrames int
}

// DefaultRunInput returns RunInput with default values.
func DefaultRunInput() RunInput {
	return RunInput{
		Width:       640,
		Height:      320,
		PixelFormat: media.FormatNV21,
		Alignment:   32,
		Frames:      20,
		FrameRate:   media.R(2, 1),
		TimeBase:    media.R(1, 2),
	}
}

// RunResult contains the outcome of an encoding run.
type RunResult struct {
	SessionID     string
	State         session.State
	Strides       []int
	FrameDuration int64
	SubmittedPTS  []int64

	Stats     session.Stats // packet counters of the session
	Keyframes int

	Elapsed      time.Duration
	FlushElapsed time.Duration
}

// PacketRecord is one line of the debug packet log.
type PacketRecord struct {
	PTS      int64 `json:"pts"`
	DTS      int64 `json:"dts"`
	Size     int   `json:"size"`
	Keyframe bool  `json:"keyframe"`
	Flushed  bool  `json:"flushed"`
}
