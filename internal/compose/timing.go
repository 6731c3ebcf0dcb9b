package compose

import (
	"math"
	"time"
)

// fadeStart is the fraction of an image slice after which the next image
// fades in.
const fadeStart = 0.8

// SliceIndex returns the image shown at t seconds when n images share
// duration seconds equally. The result is clamped to [0, n-1].
func SliceIndex(t, duration float64, n int) int {
	if n <= 0 || duration <= 0 {
		return 0
	}
	i := int(math.Floor(t / (duration / float64(n))))
	return max(0, min(n-1, i))
}

// CrossFadeAlpha returns the opacity of the next image at t. It stays 0
// for the first 80% of a slice, rises linearly to 1 over the rest, and is
// always 0 on the last image.
func CrossFadeAlpha(t, duration float64, n int) float64 {
	i := SliceIndex(t, duration, n)
	if i >= n-1 {
		return 0
	}
	slice := duration / float64(n)
	frac := (t - float64(i)*slice) / slice
	if frac <= fadeStart {
		return 0
	}
	return math.Min(1, (frac-fadeStart)/(1-fadeStart))
}

// frameCount is the number of frames covering seconds at fps.
func frameCount(seconds float64, fps int) int {
	return int(math.Round(seconds * float64(fps)))
}

// frameTime is the capture timestamp of frame i.
func frameTime(i, fps int) time.Duration {
	return time.Duration(i) * time.Second / time.Duration(fps)
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
