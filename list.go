package passbook

import "fmt"

// List returns the members of the bundle in archive order.
func (a *Archive) List() ([]Entry, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return nil, ErrClosed
	}

	names := a.reader.Names()
	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		size, err := a.reader.Size(name)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", name, err)
		}
		entries = append(entries, Entry{Name: name, Size: size})
	}
	return entries, nil
}
