// Package view holds the per-visitor navigation state: which section is
// shown, the active category filter, the project in the detail view and the
// carousel. A Machine is owned by one goroutine; Loop provides that goroutine.
package view

import (
	"fmt"
	"log/slog"

	"portfolio/internal/catalog"
)

// Section names a display state. Any name other than the three below is a
// static section such as "about" and has no behavior of its own.
type Section string

const (
	Portfolio     Section = "portfolio"
	AllProjects   Section = "all-projects"
	ProjectDetail Section = "project-detail"
)

// FilterAll clears the category filter.
const FilterAll = "all"

// Machine is the navigation state of one visitor.
type Machine struct {
	store    *catalog.Store
	lang     string
	carousel *Carousel
	logger   *slog.Logger

	active   Section
	previous Section
	filter   string
	detail   *catalog.Project
}

// NewMachine starts on the portfolio with the unfiltered mainpage carousel
// playing. A nil store is treated as empty.
func NewMachine(store *catalog.Store, lang string, carousel *Carousel, logger *slog.Logger) *Machine {
	if store == nil {
		store = catalog.Empty()
	}
	if carousel == nil {
		carousel = NewCarousel(nil, 0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	m := &Machine{
		store:    store,
		lang:     lang,
		carousel: carousel,
		logger:   logger,
	}
	m.carousel.Rebuild(store.Mainpage())
	m.Navigate(Portfolio)
	return m
}

// Navigate shows section. Leaving the detail view drops its project.
// ProjectDetail cannot be entered this way; use ShowDetail.
func (m *Machine) Navigate(section Section) {
	if section == "" || (section == ProjectDetail && m.detail == nil) {
		return
	}
	if m.active == ProjectDetail && section != ProjectDetail {
		m.detail = nil
	}
	m.active = section

	if section == Portfolio {
		if !m.carousel.Playing() {
			m.carousel.Start()
		}
	} else {
		m.carousel.Stop()
	}
}

// FilterByCategory rebuilds the carousel from the projects of category id and
// shows the portfolio. FilterAll or "" restores the mainpage set.
func (m *Machine) FilterByCategory(id string) {
	if id == "" || id == FilterAll {
		m.filter = ""
		m.carousel.Rebuild(m.store.Mainpage())
	} else {
		m.filter = id
		m.carousel.Rebuild(m.store.ByCategory(id))
	}
	m.logger.Debug("filter changed", "category", id, "slides", m.carousel.Total())
	m.Navigate(Portfolio)
}

// ShowDetail opens project id. The section to return to is recorded only
// when coming from outside the detail view, so Back after several detail
// views returns to where the first one was opened.
func (m *Machine) ShowDetail(id string) error {
	p, ok := m.store.FindByID(id)
	if !ok {
		return fmt.Errorf("show project %q: %w", id, catalog.ErrProjectNotFound)
	}
	if m.active != ProjectDetail {
		m.previous = m.active
	}
	m.detail = &p
	m.active = ProjectDetail
	m.carousel.Stop()
	return nil
}

// Back returns to the recorded section, or the portfolio if there is none.
// The record is consumed.
func (m *Machine) Back() {
	target := m.previous
	if target == "" || target == ProjectDetail {
		target = Portfolio
	}
	m.previous = ""
	m.Navigate(target)
}

// NavHighlight is the menu entry to mark as active.
func (m *Machine) NavHighlight() Section {
	switch m.active {
	case AllProjects, ProjectDetail:
		return Portfolio
	default:
		return m.active
	}
}

// GoToSlide moves the carousel and restarts the autoplay interval.
func (m *Machine) GoToSlide(i int) int {
	n := m.carousel.GoTo(i)
	m.carousel.ResetTimer()
	return n
}

// NextSlide moves one slide forward and restarts the autoplay interval.
func (m *Machine) NextSlide() int {
	n := m.carousel.Next()
	m.carousel.ResetTimer()
	return n
}

// PrevSlide moves one slide back and restarts the autoplay interval.
func (m *Machine) PrevSlide() int {
	n := m.carousel.Prev()
	m.carousel.ResetTimer()
	return n
}

// Tick is an autoplay step. It only advances while the portfolio is shown.
func (m *Machine) Tick() {
	if m.active == Portfolio {
		m.carousel.Next()
	}
}

// Grid returns the projects of the all-projects view: the filtered category,
// or every visible project.
func (m *Machine) Grid() []catalog.Project {
	if m.filter != "" {
		return m.store.ByCategory(m.filter)
	}
	return m.store.Visible()
}

// Active returns the shown section.
func (m *Machine) Active() Section { return m.active }

// Previous returns the section Back will return to, or "".
func (m *Machine) Previous() Section { return m.previous }

// Filter returns the active category filter, "" when unfiltered.
func (m *Machine) Filter() string { return m.filter }

// Lang returns the visitor's language.
func (m *Machine) Lang() string { return m.lang }

// Store returns the catalog the machine was built on.
func (m *Machine) Store() *catalog.Store { return m.store }

// Detail returns the project in the detail view.
func (m *Machine) Detail() (catalog.Project, bool) {
	if m.detail == nil {
		return catalog.Project{}, false
	}
	return *m.detail, true
}

// Carousel exposes the carousel for rendering.
func (m *Machine) Carousel() *Carousel { return m.carousel }

// Snapshot is a copy of the state safe to hand to another goroutine.
type Snapshot struct {
	Lang     string
	Active   Section
	Nav      Section
	Previous Section
	Filter   string
	Detail   *catalog.Project
	Slides   []Slide
	Current  int
	Total    int
	Playing  bool
	Grid     []catalog.Project
}

// Snapshot captures the state for rendering.
func (m *Machine) Snapshot() Snapshot {
	s := Snapshot{
		Lang:     m.lang,
		Active:   m.active,
		Nav:      m.NavHighlight(),
		Previous: m.previous,
		Filter:   m.filter,
		Slides:   m.carousel.Slides(),
		Current:  m.carousel.Current(),
		Total:    m.carousel.Total(),
		Playing:  m.carousel.Playing(),
	}
	if m.detail != nil {
		d := *m.detail
		s.Detail = &d
	}
	if m.active == AllProjects {
		s.Grid = m.Grid()
	}
	return s
}

// Close stops autoplay.
func (m *Machine) Close() {
	m.carousel.Stop()
}
