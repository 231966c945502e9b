package watch

// maxSeen bounds how many alerts are remembered between polls.
const maxSeen = 64

// Seen remembers recently shown alerts so watch mode prints only new ones.
// Not safe for concurrent use.
type Seen struct {
	order []string
	set   map[string]struct{}
}

// NewSeen returns an empty alert memory.
func NewSeen() *Seen {
	return &Seen{set: make(map[string]struct{})}
}

// Fresh records alerts and returns those not seen before, in input order.
func (s *Seen) Fresh(alerts []string) []string {
	var fresh []string
	for _, a := range alerts {
		if _, ok := s.set[a]; ok {
			continue
		}
		fresh = append(fresh, a)
		s.record(a)
	}
	return fresh
}

func (s *Seen) record(a string) {
	s.set[a] = struct{}{}
	s.order = append(s.order, a)
	if len(s.order) > maxSeen {
		delete(s.set, s.order[0])
		s.order = s.order[1:]
	}
}
