// Package apngencoder writes true-color animated PNG.
//
// Every frame is compressed by image/png; the encoder then lifts the IDAT
// payloads out of those files and reassembles them with the animation chunks
// (acTL, fcTL, fdAT) into a single APNG stream.
package apngencoder

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/draw"
	"image/png"
	"io"

	"github.com/user/gifcap/pkg/frame"
	"github.com/user/gifcap/pkg/ports"
)

var (
	// ErrNoFrames is returned when there is nothing to encode.
	ErrNoFrames = errors.New("apngencoder: no frames to encode")

	// ErrMalformedPNG is returned when image/png output cannot be split into chunks.
	ErrMalformedPNG = errors.New("apngencoder: malformed png stream")
)

var pngSignature = []byte("\x89PNG\r\n\x1a\n")

const (
	disposeNone = 0
	blendSource = 0
)

// Encoder implements ports.Encoder for APNG.
type Encoder struct {
	logger ports.Logger
	png    png.Encoder
}

// New creates an APNG encoder.
func New(logger ports.Logger) *Encoder {
	return &Encoder{
		logger: logger.WithComponent("apng"),
		png:    png.Encoder{CompressionLevel: png.BestCompression},
	}
}

// Format implements ports.Encoder.
func (e *Encoder) Format() ports.Format {
	return ports.FormatAPNG
}

// Encode implements ports.Encoder. Progress is reported only at the start and
// at the end.
func (e *Encoder) Encode(ctx context.Context, frames []frame.Frame, opts ports.EncodeOptions, progress ports.ProgressFunc) ([]byte, error) {
	if len(frames) == 0 {
		return nil, ports.NewEncodeError(ports.FormatAPNG, ErrNoFrames)
	}
	report(progress, 0)

	frames = frame.FitFramesWidth(frames, opts.MaxWidth)
	w, h := frames[0].Width(), frames[0].Height()

	var out bytes.Buffer
	out.Write(pngSignature)

	seq := uint32(0)
	for i, f := range frames {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		chunks, err := e.compress(normalize(f.Image, w, h))
		if err != nil {
			return nil, ports.NewEncodeError(ports.FormatAPNG, fmt.Errorf("frame %d: %w", i, err))
		}

		if i == 0 {
			writeChunk(&out, "IHDR", chunks.ihdr)
			writeChunk(&out, "acTL", actl(len(frames), opts.LoopCount))
		}

		writeChunk(&out, "fcTL", fctl(seq, w, h, f.Duration.Milliseconds()))
		seq++

		for _, data := range chunks.idat {
			if i == 0 {
				writeChunk(&out, "IDAT", data)
				continue
			}
			payload := make([]byte, 4+len(data))
			binary.BigEndian.PutUint32(payload, seq)
			copy(payload[4:], data)
			writeChunk(&out, "fdAT", payload)
			seq++
		}
	}
	writeChunk(&out, "IEND", nil)

	e.logger.Debug("APNG: %d frames, %d bytes", len(frames), out.Len())
	report(progress, 1)
	return out.Bytes(), nil
}

type pngChunks struct {
	ihdr []byte
	idat [][]byte
}

func (e *Encoder) compress(img image.Image) (pngChunks, error) {
	var buf bytes.Buffer
	if err := e.png.Encode(&buf, img); err != nil {
		return pngChunks{}, err
	}
	return splitChunks(buf.Bytes())
}

// splitChunks extracts IHDR and the IDAT payloads from a PNG file.
func splitChunks(data []byte) (pngChunks, error) {
	var c pngChunks
	if !bytes.HasPrefix(data, pngSignature) {
		return c, ErrMalformedPNG
	}
	r := bytes.NewReader(data[len(pngSignature):])
	var header [8]byte
	for {
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return c, ErrMalformedPNG
		}
		n := binary.BigEndian.Uint32(header[:4])
		if uint64(n)+4 > uint64(r.Len()) {
			return c, ErrMalformedPNG
		}
		body := make([]byte, n)
		if _, err := io.ReadFull(r, body); err != nil {
			return c, ErrMalformedPNG
		}
		if _, err := r.Seek(4, io.SeekCurrent); err != nil {
			return c, ErrMalformedPNG
		}
		switch string(header[4:]) {
		case "IHDR":
			c.ihdr = body
		case "IDAT":
			c.idat = append(c.idat, body)
		case "IEND":
			if c.ihdr == nil || len(c.idat) == 0 {
				return c, ErrMalformedPNG
			}
			return c, nil
		}
	}
	return c, ErrMalformedPNG
}

// normalize pads or crops img to w x h on an opaque black canvas, so every
// frame compresses with the same IHDR color type.
func normalize(img *image.RGBA, w, h int) *image.RGBA {
	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.Black, image.Point{}, draw.Src)
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Over)
	return canvas
}

// actl builds the animation control chunk. plays follows EncodeOptions:
// 0 loops forever, which is also what num_plays 0 means.
func actl(frames, plays int) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint32(b[0:], uint32(frames))
	binary.BigEndian.PutUint32(b[4:], uint32(max(0, plays)))
	return b
}

func fctl(seq uint32, w, h int, delayMS int64) []byte {
	b := make([]byte, 26)
	binary.BigEndian.PutUint32(b[0:], seq)
	binary.BigEndian.PutUint32(b[4:], uint32(w))
	binary.BigEndian.PutUint32(b[8:], uint32(h))
	// x and y offsets stay zero
	binary.BigEndian.PutUint16(b[20:], uint16(min(delayMS, 65535)))
	binary.BigEndian.PutUint16(b[22:], 1000)
	b[24] = disposeNone
	b[25] = blendSource
	return b
}

func writeChunk(w *bytes.Buffer, kind string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	w.Write(n[:])

	crc := crc32.NewIEEE()
	crc.Write([]byte(kind))
	crc.Write(data)
	w.WriteString(kind)
	w.Write(data)

	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	w.Write(n[:])
}

func report(progress ports.ProgressFunc, v float64) {
	if progress != nil {
		progress(v)
	}
}

var _ ports.Encoder = (*Encoder)(nil)
