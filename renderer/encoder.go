package renderer

import (
	"bufio"
	"fmt"
	"image"
	"image/png"
	"os"
)

// Image encoder result codes. Allocation failures abort a Go program
// instead of being reported so the allocation codes are never produced by
// EncodePNG; they are kept so the numbering stays stable for callers that
// report them.
const (
	CodeInvalidArgs  = -1
	CodeOpen         = -2
	CodeEncoderAlloc = -3
	CodeInfoAlloc    = -4
	CodeWrite        = -5
	CodeRowAlloc     = -6
)

var encodeErrorText = map[int]string{
	CodeInvalidArgs:  "invalid arguments",
	CodeOpen:         "could not open output file",
	CodeEncoderAlloc: "could not allocate encoder",
	CodeInfoAlloc:    "could not allocate image info",
	CodeWrite:        "write failed",
	CodeRowAlloc:     "could not allocate row buffer",
}

// An image encoding failure.
type EncodeError struct {
	Code int
	Path string
	Err  error
}

func (e *EncodeError) Error() string {
	msg := fmt.Sprintf("encoder: %s (code %d)", encodeErrorText[e.Code], e.Code)
	if e.Path != "" {
		msg += " for " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

// Write a row-major RGBA buffer (4 bytes per pixel, top row first) to a PNG
// file.
func EncodePNG(path string, width, height uint32, pix []byte) error {
	if path == "" || width == 0 || height == 0 || pix == nil {
		return &EncodeError{Code: CodeInvalidArgs, Path: path}
	}
	size := uint64(width) * uint64(height) * 4
	if uint64(len(pix)) < size {
		return &EncodeError{
			Code: CodeInvalidArgs,
			Path: path,
			Err:  fmt.Errorf("buffer holds %d bytes; expected %d", len(pix), size),
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return &EncodeError{Code: CodeOpen, Path: path, Err: err}
	}

	img := &image.NRGBA{
		Pix:    pix[:size],
		Stride: int(width) * 4,
		Rect:   image.Rect(0, 0, int(width), int(height)),
	}

	w := bufio.NewWriter(f)
	if err = png.Encode(w, img); err == nil {
		err = w.Flush()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return &EncodeError{Code: CodeWrite, Path: path, Err: err}
	}
	return nil
}

// Write a rendered frame to a PNG file.
func SavePNG(path string, frame *image.RGBA) error {
	if frame == nil {
		return &EncodeError{Code: CodeInvalidArgs, Path: path}
	}
	bounds := frame.Bounds()
	if frame.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		return &EncodeError{Code: CodeInvalidArgs, Path: path, Err: fmt.Errorf("frame is not a packed RGBA buffer")}
	}
	return EncodePNG(path, uint32(bounds.Dx()), uint32(bounds.Dy()), frame.Pix)
}
