package plan

import "weekplan/internal/model"

// Bucket is the set of events sharing one day key: a concrete date, an
// abstract weekday, or the "unspecified" sentinel. Each bucket is resolved
// independently.
type Bucket struct {
	Key    string
	Events []model.Event
}

// GroupByDay partitions events into day buckets. Bucket order is the order in
// which each key first appears in the input; this order is part of the
// observable contract because it determines the order of resolver output and
// notes.
func GroupByDay(events []model.Event) []Bucket {
	index := make(map[string]int, len(events))
	buckets := make([]Bucket, 0)

	for _, ev := range events {
		key := ev.DayKey()
		i, ok := index[key]
		if !ok {
			i = len(buckets)
			index[key] = i
			buckets = append(buckets, Bucket{Key: key})
		}
		buckets[i].Events = append(buckets[i].Events, ev)
	}
	return buckets
}
