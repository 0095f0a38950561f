package honeycomb

import (
	"fmt"
	"hash/crc32"
	"math"

	dynsampler "github.com/honeycombio/dynsampler-go"
)

// TraceSampler samples spans at a rate looked up by a key built from their fields.
// Failed spans are always kept.
type TraceSampler struct {
	// KeyFunc takes the event's fields map and returns a single string key
	// which will be used as the lookup into the sampling strategy
	KeyFunc func(map[string]interface{}) string

	Sampler dynsampler.Sampler
}

// Hook implements beeline.Config.SamplerHook
func (s *TraceSampler) Hook(fields map[string]interface{}) (sample bool, rate int) {
	if failed(fields) {
		return true, 1
	}

	key := s.KeyFunc(fields)
	rate = s.Sampler.GetSampleRate(key)
	if shouldSample(fmt.Sprintf("%v", fields["trace.trace_id"]), rate) {
		return true, rate
	}
	return false, 0
}

// failed is true for spans carrying an error, a panic or a server error status.
func failed(fields map[string]interface{}) bool {
	if _, ok := fields["error"]; ok {
		return true
	}
	if _, ok := fields["panic"]; ok {
		return true
	}
	code, ok := fields["http.status_code"].(int)
	return ok && code >= 500
}

// shouldSample deterministically decides whether to sample
// true means keep, false means drop
//
// See https://github.com/honeycombio/beeline-go/blob/master/sample/deterministic_sampler.go
func shouldSample(determinant string, rate int) bool {
	if rate <= 1 {
		return true
	}

	threshold := math.MaxUint32 / uint32(rate) //nolint:gosec
	v := crc32.ChecksumIEEE([]byte(determinant))

	return v < threshold
}
