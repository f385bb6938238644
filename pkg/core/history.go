package core

import (
	"sort"

	"github.com/user/bus-explorer-tui/pkg/models"
)

// History records payload samples per destination key, ascending by
// timestamp. Tree leaves read the most recent samples for their
// "current (previous, …)" annotation; the sets stay small in practice, so
// no bound is enforced.
type History struct {
	samples map[string][]models.PayloadSample
}

// NewHistory builds an empty history store.
func NewHistory() *History {
	return &History{samples: map[string][]models.PayloadSample{}}
}

// Record inserts one sample under key, keeping the per-key list sorted by
// timestamp. Tail appends arrive in order, so the common case is a plain
// append.
func (h *History) Record(key, timestamp, payload string) {
	list := h.samples[key]
	sample := models.PayloadSample{Timestamp: timestamp, Payload: payload}
	if n := len(list); n == 0 || list[n-1].Timestamp <= timestamp {
		h.samples[key] = append(list, sample)
		return
	}
	at := sort.Search(len(list), func(i int) bool { return list[i].Timestamp > timestamp })
	list = append(list, models.PayloadSample{})
	copy(list[at+1:], list[at:])
	list[at] = sample
	h.samples[key] = list
}

// Clear drops all samples.
func (h *History) Clear() {
	h.samples = map[string][]models.PayloadSample{}
}

// Latest returns up to n of the newest samples across the given keys,
// newest first. Leaves owning several keys (communication objects) combine
// their histories into one timeline.
func (h *History) Latest(keys []string, n int) []models.PayloadSample {
	var combined []models.PayloadSample
	for _, key := range keys {
		combined = append(combined, h.samples[key]...)
	}
	if len(combined) == 0 || n <= 0 {
		return nil
	}
	sort.SliceStable(combined, func(i, j int) bool {
		return combined[i].Timestamp < combined[j].Timestamp
	})
	if len(combined) > n {
		combined = combined[len(combined)-n:]
	}
	for i, j := 0, len(combined)-1; i < j; i, j = i+1, j-1 {
		combined[i], combined[j] = combined[j], combined[i]
	}
	return combined
}
