package mood

// FilterAll disables range filtering on the mood wall.
const FilterAll = "all"

// Range is an inclusive mood value range.
type Range struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

func (r Range) Contains(v int) bool { return v >= r.Min && v <= r.Max }

// Wall filter buckets. Some of them overlap (calm and neutral share 6-7,
// anxious/tired and sad/angry/overwhelmed share 3-4).
var filterRanges = map[string]Range{
	"happy":       {Min: 8, Max: 10},
	"excited":     {Min: 8, Max: 10},
	"calm":        {Min: 6, Max: 7},
	"neutral":     {Min: 5, Max: 7},
	"anxious":     {Min: 3, Max: 5},
	"tired":       {Min: 3, Max: 5},
	"sad":         {Min: 1, Max: 4},
	"angry":       {Min: 1, Max: 4},
	"overwhelmed": {Min: 1, Max: 4},
}

// FilterNames lists the accepted filter values in display order.
var FilterNames = []string{
	FilterAll, "happy", "calm", "neutral", "anxious", "sad", "angry", "excited", "tired", "overwhelmed",
}

// FilterRange resolves a wall filter name. ok is false for "all" and for
// unknown names, both of which mean no range restriction.
func FilterRange(name string) (r Range, ok bool) {
	r, ok = filterRanges[name]
	return r, ok
}
