// Package replace collects byte-range edits against one file and applies
// them.
package replace

import (
	"fmt"
	"sort"
)

// Edit replaces Length bytes at Offset with Text. A zero Length inserts.
type Edit struct {
	Offset int
	Length int
	Text   string
}

type key struct {
	offset int
	length int
}

// Map holds at most one edit per (offset, length). Inserts staged at the
// same position accumulate in staging order; any other edit staged at an
// existing key replaces it.
type Map struct {
	index map[key]int
	edits []Edit
}

func NewMap() *Map {
	return &Map{index: make(map[key]int)}
}

// Stage records an edit.
func (m *Map) Stage(offset, length int, text string) {
	if m.index == nil {
		m.index = make(map[key]int)
	}
	k := key{offset, length}
	if i, ok := m.index[k]; ok {
		if length == 0 {
			m.edits[i].Text += text
		} else {
			m.edits[i].Text = text
		}
		return
	}
	m.index[k] = len(m.edits)
	m.edits = append(m.edits, Edit{Offset: offset, Length: length, Text: text})
}

// Lookup returns the text staged for exactly (offset, length).
func (m *Map) Lookup(offset, length int) (string, bool) {
	if m == nil {
		return "", false
	}
	i, ok := m.index[key{offset, length}]
	if !ok {
		return "", false
	}
	return m.edits[i].Text, true
}

// Merge stages every edit of other into m, in other's staging order.
func (m *Map) Merge(other *Map) {
	if other == nil {
		return
	}
	for _, e := range other.edits {
		m.Stage(e.Offset, e.Length, e.Text)
	}
}

func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.edits)
}

// Reset drops every edit.
func (m *Map) Reset() {
	m.index = make(map[key]int)
	m.edits = m.edits[:0]
}

// Sorted returns the edits by descending offset, longer edits first at
// equal offsets. That is the order Apply works in.
func (m *Map) Sorted() []Edit {
	if m == nil {
		return nil
	}
	out := append([]Edit(nil), m.edits...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Offset != out[j].Offset {
			return out[i].Offset > out[j].Offset
		}
		return out[i].Length > out[j].Length
	})
	return out
}

// Apply returns content with every edit of m applied. Edits are applied
// from the end of the buffer so earlier offsets stay valid.
func Apply(content []byte, m *Map) ([]byte, error) {
	edits := m.Sorted()
	for i, e := range edits {
		if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(content) {
			return nil, fmt.Errorf("edit at %d+%d is outside the %d byte buffer", e.Offset, e.Length, len(content))
		}
		if i > 0 {
			hi := edits[i-1]
			if e.Offset+e.Length > hi.Offset {
				return nil, fmt.Errorf("edit at %d+%d overlaps edit at %d+%d", e.Offset, e.Length, hi.Offset, hi.Length)
			}
		}
	}

	out := append([]byte(nil), content...)
	for _, e := range edits {
		tail := append([]byte(e.Text), out[e.Offset+e.Length:]...)
		out = append(out[:e.Offset], tail...)
	}
	return out, nil
}
