package view

import (
	"time"

	"portfolio/internal/catalog"
)

// DefaultInterval is the autoplay period.
const DefaultInterval = 5 * time.Second

// Slide is one carousel position. The last slide of a built carousel is the
// "view all" sentinel and carries no project.
type Slide struct {
	Index   int
	Project *catalog.Project
	ViewAll bool
}

// Carousel cycles through the projects of the current filter followed by a
// "view all" slide. It is not safe for concurrent use; Loop serializes access.
type Carousel struct {
	clock    Clock
	interval time.Duration

	projects []catalog.Project
	current  int
	total    int
	ticker   Ticker
}

// NewCarousel returns an empty carousel. Total is zero until the first Rebuild.
func NewCarousel(clock Clock, interval time.Duration) *Carousel {
	if clock == nil {
		clock = RealClock{}
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Carousel{clock: clock, interval: interval}
}

// Rebuild replaces the slides with projects plus the sentinel and resets to
// slide 0. A running autoplay restarts from the new first slide.
func (c *Carousel) Rebuild(projects []catalog.Project) {
	running := c.ticker != nil
	c.Stop()

	c.projects = append([]catalog.Project(nil), projects...)
	c.total = len(c.projects) + 1
	c.current = 0

	if running {
		c.Start()
	}
}

// GoTo moves to index i and returns the new index. Any index below zero
// lands on the last slide and any index past the end lands on the first.
// It does nothing before the first Rebuild.
func (c *Carousel) GoTo(i int) int {
	if c.total == 0 {
		return c.current
	}
	switch {
	case i < 0:
		i = c.total - 1
	case i >= c.total:
		i = 0
	}
	c.current = i
	return c.current
}

// Next moves one slide forward.
func (c *Carousel) Next() int { return c.GoTo(c.current + 1) }

// Prev moves one slide back.
func (c *Carousel) Prev() int { return c.GoTo(c.current - 1) }

// Start begins autoplay. Starting a running carousel restarts its interval.
func (c *Carousel) Start() {
	c.Stop()
	c.ticker = c.clock.NewTicker(c.interval)
}

// Stop ends autoplay.
func (c *Carousel) Stop() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
}

// ResetTimer restarts the interval if autoplay is running, so a manual move
// gets a full period before the next automatic one.
func (c *Carousel) ResetTimer() {
	if c.ticker != nil {
		c.Start()
	}
}

// Playing reports whether autoplay is running.
func (c *Carousel) Playing() bool { return c.ticker != nil }

// Ticks delivers autoplay ticks, or nil while stopped. A nil channel blocks
// forever in a select, which is what Loop relies on.
func (c *Carousel) Ticks() <-chan time.Time {
	if c.ticker == nil {
		return nil
	}
	return c.ticker.C()
}

// Current returns the current slide index.
func (c *Carousel) Current() int { return c.current }

// Total returns the slide count including the sentinel.
func (c *Carousel) Total() int { return c.total }

// Slides returns every slide in order.
func (c *Carousel) Slides() []Slide {
	if c.total == 0 {
		return nil
	}
	out := make([]Slide, 0, c.total)
	for i := range c.projects {
		out = append(out, Slide{Index: i, Project: &c.projects[i]})
	}
	return append(out, Slide{Index: len(c.projects), ViewAll: true})
}

// Slide returns the current slide.
func (c *Carousel) Slide() (Slide, bool) {
	if c.total == 0 {
		return Slide{}, false
	}
	if c.current == len(c.projects) {
		return Slide{Index: c.current, ViewAll: true}, true
	}
	return Slide{Index: c.current, Project: &c.projects[c.current]}, true
}
