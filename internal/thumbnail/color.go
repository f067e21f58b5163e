package thumbnail

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/nfnt/resize"
)

// SentinelColor is returned whenever a thumbnail cannot be fetched or
// decoded. Color extraction is best-effort and must never abort a run.
const SentinelColor = "#000000"

const (
	sampleSize   = 50
	maxBodyBytes = 4 << 20
)

// Extractor computes a representative color for thumbnail images.
type Extractor struct {
	HTTP   *http.Client
	Logger *log.Logger
}

func NewExtractor(logger *log.Logger) *Extractor {
	return &Extractor{
		HTTP:   &http.Client{Timeout: 5 * time.Second},
		Logger: logger,
	}
}

// Hex returns the dominant color of the image at url as a lowercase hex
// string. An empty url passes through as "" without a network call; any
// download or decode failure yields the sentinel black, never an error.
func (e *Extractor) Hex(ctx context.Context, url string) string {
	if url == "" {
		return ""
	}

	hex, err := e.extract(ctx, url)
	if err != nil {
		e.Logger.Printf("Thumbnail error (%s): %v", url, err)
		return SentinelColor
	}
	return hex
}

func (e *Extractor) extract(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	resp, err := e.HTTP.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("download: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("decode: %w", err)
	}

	// Downsample before clustering; 50x50 is plenty for a single color.
	small := resize.Resize(sampleSize, sampleSize, img, resize.NearestNeighbor)

	centers := dominantColors(flattenRGB(small), 1)
	c := centers[0]
	return fmt.Sprintf("#%02x%02x%02x", uint8(c[0]+0.5), uint8(c[1]+0.5), uint8(c[2]+0.5)), nil
}

// flattenRGB converts an image into a flat list of per-pixel RGB triples in
// the 0-255 range.
func flattenRGB(img image.Image) [][3]float64 {
	bounds := img.Bounds()
	pixels := make([][3]float64, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, [3]float64{
				float64(r >> 8),
				float64(g >> 8),
				float64(b >> 8),
			})
		}
	}
	return pixels
}

// dominantColors returns k cluster centers over the pixel samples. Only k=1
// is used today, where the centroid is simply the mean color; the signature
// is shaped so a future top-N palette extraction slots in without changing
// callers.
func dominantColors(pixels [][3]float64, k int) [][3]float64 {
	if k != 1 || len(pixels) == 0 {
		return make([][3]float64, max(k, 1))
	}

	var sum [3]float64
	for _, p := range pixels {
		sum[0] += p[0]
		sum[1] += p[1]
		sum[2] += p[2]
	}
	n := float64(len(pixels))
	return [][3]float64{{sum[0] / n, sum[1] / n, sum[2] / n}}
}
