package service

import (
	"context"
	"errors"
	"testing"

	"github.com/safastep/console/internal/domain"
)

type fakeGeoWriter struct {
	createErr error
	updateErr error

	createParams []domain.EcoLocationParams
	updateIDs    []int64
	updateParams []domain.EcoLocationParams
}

func (w *fakeGeoWriter) CreateEcoLocation(ctx context.Context, params domain.EcoLocationParams) error {
	if w.createErr != nil {
		return w.createErr
	}
	w.createParams = append(w.createParams, params)
	return nil
}

func (w *fakeGeoWriter) UpdateEcoLocation(ctx context.Context, id int64, params domain.EcoLocationParams) error {
	if w.updateErr != nil {
		return w.updateErr
	}
	w.updateIDs = append(w.updateIDs, id)
	w.updateParams = append(w.updateParams, params)
	return nil
}

func validFields() GeoFormFields {
	return GeoFormFields{
		Name:      "Vake Park",
		Latitude:  "41.715137",
		Longitude: "44.827095",
		Category:  "urban-park",
		Address:   "Chavchavadze Ave 49",
	}
}

// ============================================================
// Open, close, coordinate handshake
// ============================================================

func TestOpenCreateDefaultsCategory(t *testing.T) {
	form := NewGeoForm(&fakeGeoWriter{})
	form.OpenCreate()

	state := form.State()
	if state.Mode != GeoFormCreate {
		t.Errorf("expected create mode, got %v", state.Mode)
	}
	if state.Fields.Category != string(domain.CategoryOther) {
		t.Errorf("expected default category %q, got %q", domain.CategoryOther, state.Fields.Category)
	}
}

func TestOpenEditFormatsCoordinates(t *testing.T) {
	form := NewGeoForm(&fakeGeoWriter{})
	form.OpenEdit(domain.EcoLocation{
		ID:        42,
		Name:      "City Park",
		Latitude:  41.7151377777,
		Longitude: 44.8,
		Category:  domain.CategoryUrbanPark,
	})

	state := form.State()
	if state.Mode != GeoFormEdit || state.TargetID != 42 {
		t.Errorf("expected edit mode targeting 42, got %+v", state)
	}
	if state.Fields.Latitude != "41.715138" {
		t.Errorf("expected latitude rounded to six decimals, got %q", state.Fields.Latitude)
	}
	if state.Fields.Longitude != "44.800000" {
		t.Errorf("expected longitude padded to six decimals, got %q", state.Fields.Longitude)
	}
}

func TestReceiveMapCoordinate(t *testing.T) {
	form := NewGeoForm(&fakeGeoWriter{})
	form.OpenCreate()
	form.ReceiveMapCoordinate(41.12345678, -44.5)

	fields := form.State().Fields
	if fields.Latitude != "41.123457" {
		t.Errorf("expected six-decimal latitude, got %q", fields.Latitude)
	}
	if fields.Longitude != "-44.500000" {
		t.Errorf("expected six-decimal longitude, got %q", fields.Longitude)
	}
}

func TestReceiveMapCoordinateInertWhileClosed(t *testing.T) {
	form := NewGeoForm(&fakeGeoWriter{})
	form.ReceiveMapCoordinate(41.0, 44.0)

	state := form.State()
	if state.Mode != GeoFormClosed {
		t.Errorf("map click must not open a form, got mode %v", state.Mode)
	}
	if state.Fields != (GeoFormFields{}) {
		t.Errorf("map click while closed must not touch fields, got %+v", state.Fields)
	}
}

func TestSetFieldsIgnoredWhileClosed(t *testing.T) {
	form := NewGeoForm(&fakeGeoWriter{})
	form.SetFields(validFields())

	if state := form.State(); state.Fields != (GeoFormFields{}) {
		t.Errorf("expected fields untouched while closed, got %+v", state.Fields)
	}
}

// ============================================================
// Restore
// ============================================================

func TestRestore(t *testing.T) {
	form := NewGeoForm(&fakeGeoWriter{})

	form.Restore(GeoFormEdit, 9, validFields())
	state := form.State()
	if state.Mode != GeoFormEdit || state.TargetID != 9 || state.Fields.Name != "Vake Park" {
		t.Errorf("expected restored edit form, got %+v", state)
	}

	// Create mode carries no target.
	form.Restore(GeoFormCreate, 9, validFields())
	if state := form.State(); state.TargetID != 0 {
		t.Errorf("expected target cleared in create mode, got %d", state.TargetID)
	}

	form.Restore(GeoFormClosed, 9, validFields())
	state = form.State()
	if state.Mode != GeoFormClosed || state.Fields != (GeoFormFields{}) {
		t.Errorf("expected reset form, got %+v", state)
	}
}

// ============================================================
// Submit
// ============================================================

func TestSubmitWhileClosedIsInvalid(t *testing.T) {
	writer := &fakeGeoWriter{}
	form := NewGeoForm(writer)

	err := form.Submit(context.Background())
	if domain.ErrorCode(err) != domain.EINVALID {
		t.Fatalf("expected EINVALID, got %v", err)
	}
	if len(writer.createParams) != 0 || len(writer.updateParams) != 0 {
		t.Error("closed form must not call the backend")
	}
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*GeoFormFields)
		wantField string
	}{
		{"missing name", func(f *GeoFormFields) { f.Name = "  " }, "name"},
		{"bad latitude", func(f *GeoFormFields) { f.Latitude = "north" }, "latitude"},
		{"bad longitude", func(f *GeoFormFields) { f.Longitude = "" }, "longitude"},
		{"unknown category", func(f *GeoFormFields) { f.Category = "volcano" }, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			writer := &fakeGeoWriter{}
			form := NewGeoForm(writer)
			form.OpenCreate()

			fields := validFields()
			tt.mutate(&fields)
			form.SetFields(fields)

			err := form.Submit(context.Background())

			var verr *domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := verr.Fields[tt.wantField]; !ok {
				t.Errorf("expected field error for %q, got %v", tt.wantField, verr.Fields)
			}
			if state := form.State(); state.Mode != GeoFormCreate || state.Fields != fields {
				t.Error("expected form to stay open with entered values intact")
			}
			if len(writer.createParams) != 0 {
				t.Error("validation failure must not reach the backend")
			}
		})
	}
}

func TestSubmitCreate(t *testing.T) {
	writer := &fakeGeoWriter{}
	form := NewGeoForm(writer)
	form.OpenCreate()
	form.SetFields(validFields())

	if err := form.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.createParams) != 1 {
		t.Fatalf("expected one create call, got %d", len(writer.createParams))
	}
	params := writer.createParams[0]
	if params.Name != "Vake Park" || params.Category != domain.CategoryUrbanPark {
		t.Errorf("unexpected params %+v", params)
	}
	if params.Latitude != 41.715137 {
		t.Errorf("expected parsed latitude, got %v", params.Latitude)
	}
	if state := form.State(); state.Mode != GeoFormClosed {
		t.Errorf("expected form closed after success, got mode %v", state.Mode)
	}
}

func TestSubmitUpdateTargetsEditedLocation(t *testing.T) {
	writer := &fakeGeoWriter{}
	form := NewGeoForm(writer)
	form.Restore(GeoFormEdit, 42, validFields())

	if err := form.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(writer.updateIDs) != 1 || writer.updateIDs[0] != 42 {
		t.Fatalf("expected one update of id 42, got %v", writer.updateIDs)
	}
	if len(writer.createParams) != 0 {
		t.Error("edit mode must not create")
	}
}

func TestSubmitEmptyCategoryDefaultsToOther(t *testing.T) {
	writer := &fakeGeoWriter{}
	form := NewGeoForm(writer)
	form.OpenCreate()

	fields := validFields()
	fields.Category = ""
	form.SetFields(fields)

	if err := form.Submit(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if writer.createParams[0].Category != domain.CategoryOther {
		t.Errorf("expected default category, got %q", writer.createParams[0].Category)
	}
}

func TestSubmitBackendFailureKeepsFormOpen(t *testing.T) {
	writer := &fakeGeoWriter{createErr: domain.Invalid("api.create", "Name already taken")}
	form := NewGeoForm(writer)
	form.OpenCreate()
	form.SetFields(validFields())

	err := form.Submit(context.Background())
	if domain.ErrorCode(err) != domain.EINVALID {
		t.Fatalf("expected EINVALID, got %v", err)
	}

	state := form.State()
	if state.Mode != GeoFormCreate {
		t.Errorf("expected form to stay open on backend failure, got mode %v", state.Mode)
	}
	if state.Fields.Name != "Vake Park" {
		t.Error("expected entered values intact after failure")
	}
}
