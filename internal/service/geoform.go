package service

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/safastep/console/internal/domain"
)

// GeoFormMode describes whether the eco-location form is closed, creating
// a new location, or editing an existing one.
type GeoFormMode int

const (
	GeoFormClosed GeoFormMode = iota
	GeoFormCreate
	GeoFormEdit
)

// GeoFormFields holds the raw form values as entered. Coordinates stay
// strings until submit so a failed validation never mangles what the
// administrator typed.
type GeoFormFields struct {
	Name        string
	Description string
	Latitude    string
	Longitude   string
	Category    string
	Address     string
}

// GeoWriter is the slice of the platform API the form needs.
type GeoWriter interface {
	CreateEcoLocation(ctx context.Context, params domain.EcoLocationParams) error
	UpdateEcoLocation(ctx context.Context, id int64, params domain.EcoLocationParams) error
}

// GeoFormState is a snapshot of the form for rendering.
type GeoFormState struct {
	Mode     GeoFormMode
	TargetID int64
	Fields   GeoFormFields
}

// GeoForm owns the eco-location create/edit form state, including the
// map-click coordinate handshake.
type GeoForm struct {
	writer GeoWriter

	mu       sync.Mutex
	mode     GeoFormMode
	targetID int64
	fields   GeoFormFields
}

// NewGeoForm creates a closed form bound to a writer.
func NewGeoForm(writer GeoWriter) *GeoForm {
	return &GeoForm{writer: writer, mode: GeoFormClosed}
}

// State returns a snapshot for rendering.
func (f *GeoForm) State() GeoFormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return GeoFormState{Mode: f.mode, TargetID: f.targetID, Fields: f.fields}
}

// OpenCreate resets the fields to defaults and enters create mode.
func (f *GeoForm) OpenCreate() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = GeoFormCreate
	f.targetID = 0
	f.fields = GeoFormFields{Category: string(domain.CategoryOther)}
}

// OpenEdit populates the fields from an already loaded location and
// enters edit mode targeting it.
func (f *GeoForm) OpenEdit(loc domain.EcoLocation) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = GeoFormEdit
	f.targetID = loc.ID
	f.fields = GeoFormFields{
		Name:        loc.Name,
		Description: loc.Description,
		Latitude:    domain.FormatCoordinate(loc.Latitude),
		Longitude:   domain.FormatCoordinate(loc.Longitude),
		Category:    string(loc.Category),
		Address:     loc.Address,
	}
}

// Restore rebuilds an open form from posted request values: mode,
// edit target, and the entered fields. Closed mode resets the form.
func (f *GeoForm) Restore(mode GeoFormMode, targetID int64, fields GeoFormFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mode == GeoFormClosed {
		f.mode = GeoFormClosed
		f.targetID = 0
		f.fields = GeoFormFields{}
		return
	}
	if mode != GeoFormEdit {
		targetID = 0
	}
	f.mode = mode
	f.targetID = targetID
	f.fields = fields
}

// Close discards the form state.
func (f *GeoForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mode = GeoFormClosed
	f.targetID = 0
	f.fields = GeoFormFields{}
}

// SetFields replaces the entered values, e.g. from a posted form. Mode
// and target are unchanged. Ignored while the form is closed.
func (f *GeoForm) SetFields(fields GeoFormFields) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == GeoFormClosed {
		return
	}
	f.fields = fields
}

// ReceiveMapCoordinate applies a map click to the coordinate fields,
// formatted to six decimal places. A click while no form is open is
// inert: it must never create a phantom pending edit.
func (f *GeoForm) ReceiveMapCoordinate(lat, lng float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mode == GeoFormClosed {
		return
	}
	f.fields.Latitude = domain.FormatCoordinate(lat)
	f.fields.Longitude = domain.FormatCoordinate(lng)
}

// Submit validates the entered fields and calls the create or update
// endpoint depending on mode. On success the form closes and the caller
// should refetch the owning list's current page. On failure the form
// stays open with the entered values intact and the error is returned
// for the handler to surface.
func (f *GeoForm) Submit(ctx context.Context) error {
	const op = "geoform.submit"

	f.mu.Lock()
	mode := f.mode
	targetID := f.targetID
	fields := f.fields
	f.mu.Unlock()

	if mode == GeoFormClosed {
		return domain.Invalid(op, "No form is open")
	}

	params, verr := validateGeoFields(op, fields)
	if verr != nil {
		return verr
	}

	var err error
	if mode == GeoFormEdit {
		err = f.writer.UpdateEcoLocation(ctx, targetID, params)
	} else {
		err = f.writer.CreateEcoLocation(ctx, params)
	}
	if err != nil {
		return err
	}

	f.Close()
	return nil
}

// validateGeoFields checks required fields and coordinate parseability
// before any request is sent.
func validateGeoFields(op string, fields GeoFormFields) (domain.EcoLocationParams, error) {
	verr := &domain.ValidationError{Op: op, Fields: make(map[string]string)}

	name := strings.TrimSpace(fields.Name)
	if name == "" {
		verr.Fields["name"] = "Name is required"
	}

	lat, latErr := parseCoordinate(fields.Latitude)
	if latErr != nil {
		verr.Fields["latitude"] = "Latitude must be a number"
	}

	lng, lngErr := parseCoordinate(fields.Longitude)
	if lngErr != nil {
		verr.Fields["longitude"] = "Longitude must be a number"
	}

	category := domain.Category(fields.Category)
	if category == "" {
		category = domain.CategoryOther
	}
	if !category.Valid() {
		verr.Fields["category"] = "Unknown category"
	}

	if len(verr.Fields) > 0 {
		return domain.EcoLocationParams{}, verr
	}

	return domain.EcoLocationParams{
		Name:        name,
		Description: strings.TrimSpace(fields.Description),
		Latitude:    lat,
		Longitude:   lng,
		Category:    category,
		Address:     strings.TrimSpace(fields.Address),
	}, nil
}

func parseCoordinate(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
