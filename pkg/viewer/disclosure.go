package viewer

// Disclosure is the open/closed state of one collapsible section. The owner keeps the
// value and hands the same pointer to whatever renders the trigger and the content,
// so both always agree on the state.
type Disclosure struct {
	label string
	open  bool
}

// Trigger is what a renderer needs to draw the control that toggles a section.
type Trigger struct {
	Label string
	Open  bool
}

func NewDisclosure(label string) *Disclosure {
	return &Disclosure{label: label}
}

func (d *Disclosure) IsOpen() bool {
	d.mustHaveState()
	return d.open
}

// Toggle flips the section between closed and open.
func (d *Disclosure) Toggle() {
	d.mustHaveState()
	d.open = !d.open
}

func (d *Disclosure) Trigger() Trigger {
	d.mustHaveState()
	return Trigger{Label: d.label, Open: d.open}
}

// Content returns items when the section is open and nil when it is closed.
// A closed section contributes nothing to the render.
func (d *Disclosure) Content(items []string) []string {
	d.mustHaveState()
	if !d.open {
		return nil
	}
	if items == nil {
		return []string{}
	}
	return items
}

func (d *Disclosure) mustHaveState() {
	if d == nil {
		panic("viewer: disclosure rendered without its state")
	}
}
