package focus

import "strings"

// Suggested labels offered to the user; they carry no special meaning to the list.
var Suggested = []string{"dance", "outfit", "comedy", "tutorial", "unboxing", "product review"}

// List is an insertion-ordered set of focus labels for one session.
// It is not safe for concurrent use; the owning service serializes access.
type List struct {
	labels []string
}

// Add appends the trimmed label unless it is empty or already present.
func (l *List) Add(label string) bool {
	label = strings.TrimSpace(label)
	if label == "" || l.Contains(label) {
		return false
	}
	l.labels = append(l.labels, label)
	return true
}

// Remove deletes the label matching exactly.
func (l *List) Remove(label string) bool {
	for i, existing := range l.labels {
		if existing == label {
			l.labels = append(l.labels[:i], l.labels[i+1:]...)
			return true
		}
	}
	return false
}

func (l *List) Contains(label string) bool {
	for _, existing := range l.labels {
		if existing == label {
			return true
		}
	}
	return false
}

// Labels returns a copy in insertion order.
func (l *List) Labels() []string {
	out := make([]string, len(l.labels))
	copy(out, l.labels)
	return out
}

func (l *List) Len() int { return len(l.labels) }

func (l *List) Clear() { l.labels = nil }
