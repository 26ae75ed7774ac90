package xbind

import (
	"errors"
	"reflect"
	"testing"
)

type vehicle interface {
	wheels() int
}

type car struct {
	ElementBinding `xbind:"name=car"`
	Plate          string `xbind:"attr,name=plate"`
}

func (car) wheels() int { return 4 }

type bike struct {
	ElementBinding `xbind:"name=bike"`
	Gears          int `xbind:"element,name=gears"`
}

func (bike) wheels() int { return 2 }

type garage struct {
	ElementBinding `xbind:"name=garage"`
	Parked         []vehicle `xbind:"element"`
}

func init() {
	MustRegisterVariant[vehicle, car]()
	MustRegisterVariant[vehicle, bike]()
}

func TestRegisterVariantChecks(t *testing.T) {
	r := NewRegistry()
	vt := reflect.TypeOf((*vehicle)(nil)).Elem()

	if err := r.RegisterVariantTypes(vt, reflect.TypeOf(car{})); err != nil {
		t.Fatalf("register error: %v", err)
	}
	err := r.RegisterVariantTypes(vt, reflect.TypeOf(car{}))
	if !errors.Is(err, ErrDuplicateVariant) {
		t.Errorf("expected duplicate variant error, got %v", err)
	}
	if err := r.RegisterVariantTypes(vt, reflect.TypeOf("nope")); err == nil {
		t.Error("expected error for non-implementing type")
	}
	if err := r.RegisterVariantTypes(reflect.TypeOf(car{}), reflect.TypeOf(car{})); err == nil {
		t.Error("expected error for non-interface type")
	}
	if got := r.Size(); got != 1 {
		t.Errorf("Size = %d, want 1", got)
	}
}

func TestChoiceResolution(t *testing.T) {
	// Pretty-printed input: whitespace between items must not end
	// the run early.
	input := Element{Name: Name("garage"), Children: []Value{
		Text("\n  "),
		Element{Name: Name("car"), Attrs: []Attribute{{Name: Name("plate"), Value: "ABC"}}},
		Text("\n  "),
		Element{Name: Name("bike"), Children: []Value{textElem("gears", "21")}},
		Text("\n  "),
		Element{Name: Name("car"), Attrs: []Attribute{{Name: Name("plate"), Value: "XYZ"}}},
		Text("\n"),
	}}
	var g garage
	if err := FromValue(input, &g); err != nil {
		t.Fatalf("FromValue error: %v", err)
	}
	if len(g.Parked) != 3 {
		t.Fatalf("parked %d vehicles, want 3", len(g.Parked))
	}
	if c, ok := g.Parked[0].(car); !ok || c.Plate != "ABC" {
		t.Errorf("Parked[0] = %+v", g.Parked[0])
	}
	if b, ok := g.Parked[1].(bike); !ok || b.Gears != 21 {
		t.Errorf("Parked[1] = %+v", g.Parked[1])
	}
}

func TestChoiceNoPossibleVariant(t *testing.T) {
	input := Element{Name: Name("garage"), Children: []Value{
		Element{Name: Name("boat")},
	}}
	var g garage
	err := FromValue(input, &g)
	if err != nil {
		// A mismatching child under the default unknown policy is
		// tolerated at the end, so the slice is simply empty.
		t.Fatalf("FromValue error: %v", err)
	}
	if len(g.Parked) != 0 {
		t.Errorf("parked %d vehicles, want 0", len(g.Parked))
	}

	var v vehicle
	rv := reflect.ValueOf(&v).Elem()
	err = deserializeValue(NewValueDeserializer(Element{Name: Name("boat")}), rv)
	var npv *NoPossibleVariantError
	if !errors.As(err, &npv) {
		t.Fatalf("expected NoPossibleVariantError, got %v", err)
	}
	if npv.Type != "vehicle" {
		t.Errorf("Type = %q, want vehicle", npv.Type)
	}
}

func TestChoiceUnregistered(t *testing.T) {
	type unknownIface interface{ never() }
	var v unknownIface
	rv := reflect.ValueOf(&v).Elem()
	err := deserializeValue(NewValueDeserializer(Text("x")), rv)
	if !errors.Is(err, ErrUnregisteredType) {
		t.Errorf("expected unregistered type error, got %v", err)
	}
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	vt := reflect.TypeOf((*vehicle)(nil)).Elem()
	if err := r.RegisterVariantTypes(vt, reflect.TypeOf(car{})); err != nil {
		t.Fatalf("register error: %v", err)
	}
	r.Clear()
	if r.Size() != 0 {
		t.Error("registry not empty after Clear")
	}
	if got := r.Variants(vt); got != nil {
		t.Errorf("Variants = %v, want nil", got)
	}
}
