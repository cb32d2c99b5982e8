// Package console holds the page state of the administrative console: one
// generic View per entity page, the pages built on it and the Shell that
// navigates between them.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"text/tabwriter"

	"golang.org/x/sync/errgroup"

	"github.com/hms/hms/internal/platform/store"
)

// Phase is the load state of a view.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseErrored Phase = "errored"
)

// Modal is the form sub-state of a ready view.
type Modal string

const (
	ModalClosed   Modal = "closed"
	ModalCreating Modal = "creating"
	ModalEditing  Modal = "editing"
)

// Source is the store contract a view loads and mutates through.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, id int, patch store.Patch) (T, error)
	Delete(ctx context.Context, id int) (T, error)
}

// Loader fetches a related collection alongside the view's own list.
type Loader func(ctx context.Context) error

// Matcher reports whether rec matches a non-empty, lower-cased search term.
type Matcher[T any] func(rec T, term string) bool

// Column renders one table column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

// View is the state of one entity page. A view keeps its own snapshot of
// the collection; concurrent edits from another view are not detected.
type View[T store.Record[T]] struct {
	name    string
	src     Source[T]
	match   Matcher[T]
	related []Loader

	mu      sync.RWMutex
	phase   Phase
	errMsg  string
	records []T
	search  string
	modal   Modal
	editing int
}

// NewView creates an idle view. name is used in the load failure message.
func NewView[T store.Record[T]](name string, src Source[T], match Matcher[T], related ...Loader) *View[T] {
	return &View[T]{
		name:    name,
		src:     src,
		match:   match,
		related: related,
		phase:   PhaseIdle,
		modal:   ModalClosed,
	}
}

// Load fetches the collection and every related collection in parallel.
// Any failure leaves the view errored with a generic message.
func (v *View[T]) Load(ctx context.Context) error {
	v.mu.Lock()
	if v.phase == PhaseLoading {
		v.mu.Unlock()
		return fmt.Errorf("%s: load already in progress", v.name)
	}
	v.phase = PhaseLoading
	v.errMsg = ""
	v.mu.Unlock()

	var records []T
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		records, err = v.src.List(gctx)
		return err
	})
	for _, load := range v.related {
		g.Go(func() error { return load(gctx) })
	}
	err := g.Wait()

	v.mu.Lock()
	defer v.mu.Unlock()
	if err != nil {
		v.phase = PhaseErrored
		v.errMsg = "Failed to load " + v.name
		return fmt.Errorf("load %s: %w", v.name, err)
	}
	v.records = records
	v.phase = PhaseReady
	return nil
}

// Retry re-runs Load.
func (v *View[T]) Retry(ctx context.Context) error { return v.Load(ctx) }

func (v *View[T]) Phase() Phase {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.phase
}

// ErrorMessage returns the message shown while the view is errored.
func (v *View[T]) ErrorMessage() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.errMsg
}

// Records returns a copy of the loaded snapshot.
func (v *View[T]) Records() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.records)
}

func (v *View[T]) SetSearch(term string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.search = term
}

func (v *View[T]) Search() string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.search
}

// Visible returns the loaded records matching the search term.
func (v *View[T]) Visible() []T {
	v.mu.RLock()
	defer v.mu.RUnlock()

	term := strings.ToLower(strings.TrimSpace(v.search))
	out := make([]T, 0, len(v.records))
	for _, rec := range v.records {
		if v.match == nil || v.match(rec, term) {
			out = append(out, rec)
		}
	}
	return out
}

// Modal returns the form state and, while editing, the record id.
func (v *View[T]) Modal() (Modal, int) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.modal, v.editing
}

func (v *View[T]) OpenCreate() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.phase != PhaseReady {
		return fmt.Errorf("%s is not ready", v.name)
	}
	v.modal, v.editing = ModalCreating, 0
	return nil
}

// OpenEdit opens the form for a loaded record.
func (v *View[T]) OpenEdit(id int) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.phase != PhaseReady {
		return fmt.Errorf("%s is not ready", v.name)
	}
	if v.indexOf(id) < 0 {
		return fmt.Errorf("%s %d: %w", v.name, id, store.ErrNotFound)
	}
	v.modal, v.editing = ModalEditing, id
	return nil
}

// Editing returns the record the form was opened for.
func (v *View[T]) Editing() (T, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	var zero T
	if v.modal != ModalEditing {
		return zero, false
	}
	i := v.indexOf(v.editing)
	if i < 0 {
		return zero, false
	}
	return v.records[i].Clone(), true
}

func (v *View[T]) Cancel() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.modal, v.editing = ModalClosed, 0
}

// Submit creates form when the create form is open, or replaces the edited
// record's attributes with form's when the edit form is open. The result is
// merged into the snapshot and the form closed. On failure the form stays
// open.
func (v *View[T]) Submit(ctx context.Context, form T) (T, error) {
	modal, id := v.Modal()

	var (
		saved T
		err   error
	)
	switch modal {
	case ModalCreating:
		saved, err = v.src.Create(ctx, form)
	case ModalEditing:
		var patch store.Patch
		patch, err = formPatch(form)
		if err == nil {
			saved, err = v.src.Update(ctx, id, patch)
		}
	default:
		return saved, fmt.Errorf("%s: no form is open", v.name)
	}
	if err != nil {
		return saved, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if modal == ModalCreating {
		v.records = append(v.records, saved)
	} else if i := v.indexOf(id); i >= 0 {
		v.records[i] = saved
	}
	v.modal, v.editing = ModalClosed, 0
	return saved, nil
}

// Delete removes id through the store when confirm returns true, then drops
// it from the snapshot. A declined confirmation is not an error.
func (v *View[T]) Delete(ctx context.Context, id int, confirm func() bool) (bool, error) {
	if confirm != nil && !confirm() {
		return false, nil
	}
	if _, err := v.src.Delete(ctx, id); err != nil {
		return false, err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = slices.DeleteFunc(v.records, func(rec T) bool { return rec.RecordID() == id })
	return true, nil
}

// Render writes the visible records as an aligned table.
func (v *View[T]) Render(w io.Writer, columns []Column[T]) error {
	return renderTable(w, columns, v.Visible())
}

func renderTable[T any](w io.Writer, columns []Column[T], rows []T) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	headers := make([]string, len(columns))
	for i, c := range columns {
		headers[i] = c.Header
	}
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, c := range columns {
			cells[i] = c.Value(row)
		}
		fmt.Fprintln(tw, strings.Join(cells, "\t"))
	}
	return tw.Flush()
}

func (v *View[T]) indexOf(id int) int {
	return slices.IndexFunc(v.records, func(rec T) bool { return rec.RecordID() == id })
}

// formPatch turns a full form into a patch naming every attribute.
func formPatch[T any](form T) (store.Patch, error) {
	raw, err := json.Marshal(form)
	if err != nil {
		return nil, fmt.Errorf("encode form: %w", err)
	}
	var patch store.Patch
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, fmt.Errorf("decode form: %w", err)
	}
	return patch, nil
}
