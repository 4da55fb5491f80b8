package beatglow

import (
	"github.com/pkg/errors"

	"libdb.so/beatglow/internal/led"
)

var (
	// ErrUnknownGroup is returned when a group name has not been created.
	ErrUnknownGroup = errors.New("unknown group")
	// ErrGroupOverlap is returned when a new group would share pixels with an
	// existing one. Disjoint groups are what make concurrent group writers
	// safe, so overlap is rejected at creation time.
	ErrGroupOverlap = errors.New("group overlaps an existing group")
)

// CreateGroupOfEveryNth registers name as the set of pixel indices i with
// i mod n == offset. Groups created for offsets 0..n-1 partition the strip
// disjointly and exhaustively.
func (c *Controller) CreateGroupOfEveryNth(n, offset int, name string) error {
	if n <= 0 || offset < 0 || offset >= n {
		return errors.Errorf("invalid partition: n=%d offset=%d", n, offset)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	var pixels []int
	for i := 0; i < c.cfg.NumPixels; i++ {
		if i%n == offset {
			pixels = append(pixels, i)
		}
	}

	member := make(map[int]string)
	for otherName, other := range c.groups {
		for _, i := range other {
			member[i] = otherName
		}
	}
	for _, i := range pixels {
		if other, ok := member[i]; ok {
			return errors.Wrapf(ErrGroupOverlap, "pixel %d of %q already belongs to %q", i, name, other)
		}
	}

	c.groups[name] = pixels
	return nil
}

// Group returns a copy of the group's pixel indices.
func (c *Controller) Group(name string) ([]int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	group, ok := c.groups[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownGroup, "%q", name)
	}
	return append([]int(nil), group...), nil
}

// UpdateGroup sets every pixel in the group to color.
func (c *Controller) UpdateGroup(name string, color led.Color) error {
	c.mu.Lock()
	group, ok := c.groups[name]
	buf := c.buf
	c.mu.Unlock()

	if !ok {
		return errors.Wrapf(ErrUnknownGroup, "%q", name)
	}
	for _, i := range group {
		buf.Set(i, color)
	}
	return nil
}
