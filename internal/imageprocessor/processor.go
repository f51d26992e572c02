package imageprocessor

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	// регистрирует декодер webp для image.Decode
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedFormat = errors.New("unsupported image format")

// Result - обработанное изображение, готовое к сохранению
type Result struct {
	Data        []byte
	ContentType string
	Extension   string
	Width       int
	Height      int
}

// Processor уменьшает фото профиля до допустимого размера
type Processor struct {
	quality      int // JPEG quality (1-100)
	maxDimension int
}

func NewProcessor(quality, maxDimension int) *Processor {
	if quality <= 0 || quality > 100 {
		quality = 85
	}
	if maxDimension <= 0 {
		maxDimension = 512
	}
	return &Processor{
		quality:      quality,
		maxDimension: maxDimension,
	}
}

// Process декодирует изображение и вписывает его в квадрат maxDimension
// с сохранением пропорций. PNG остается PNG (прозрачность), остальное кодируется в JPEG:
// энкодера webp в x/image нет.
func (p *Processor) Process(reader io.Reader) (*Result, error) {
	img, format, err := image.Decode(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := p.fit(img)
	bounds := resized.Bounds()

	var buf bytes.Buffer
	result := &Result{Width: bounds.Dx(), Height: bounds.Dy()}

	switch format {
	case "png":
		if err := png.Encode(&buf, resized); err != nil {
			return nil, fmt.Errorf("failed to encode PNG: %w", err)
		}
		result.ContentType = "image/png"
		result.Extension = ".png"
	case "jpeg", "webp":
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: p.quality}); err != nil {
			return nil, fmt.Errorf("failed to encode JPEG: %w", err)
		}
		result.ContentType = "image/jpeg"
		result.Extension = ".jpg"
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	result.Data = buf.Bytes()
	return result, nil
}

// fit возвращает исходное изображение, если оно уже помещается
func (p *Processor) fit(img image.Image) image.Image {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= p.maxDimension && height <= p.maxDimension {
		return img
	}

	newWidth, newHeight := p.maxDimension, p.maxDimension
	if width > height {
		newHeight = height * p.maxDimension / width
	} else {
		newWidth = width * p.maxDimension / height
	}
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}
