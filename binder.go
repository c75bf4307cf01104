package acorn

import (
	"fmt"
	"reflect"
	"unsafe"
)

// Binder assigns a resolved dependency to a field of a struct under
// construction. The default [ExportedFieldBinder] reaches only exported
// fields; [UnsafeFieldBinder] opts in to unexported ones, the way a custom
// constructor finder would open up non-public construction paths.
type Binder interface {
	// Set assigns dep to field f of the addressable struct value v.
	Set(v reflect.Value, f reflect.StructField, dep reflect.Value) error
}

// ExportedFieldBinder is the default binder. It fails on unexported
// dependency fields instead of skipping them, so a type whose dependencies
// are reachable only through non-public fields fails resolution loudly.
type ExportedFieldBinder struct{}

// Set implements [Binder].
func (ExportedFieldBinder) Set(v reflect.Value, f reflect.StructField, dep reflect.Value) error {
	if !dep.Type().AssignableTo(f.Type) {
		return fmt.Errorf("dependency %s is not assignable to field type %s", dep.Type(), f.Type)
	}
	fv := v.FieldByIndex(f.Index)
	if !fv.CanSet() {
		return fmt.Errorf("field %s is unexported; configure the container with UnsafeFieldBinder to bind it", f.Name)
	}
	fv.Set(dep)
	return nil
}

// UnsafeFieldBinder binds exported and unexported dependency fields alike,
// writing unexported ones through their address.
type UnsafeFieldBinder struct{}

// Set implements [Binder].
func (UnsafeFieldBinder) Set(v reflect.Value, f reflect.StructField, dep reflect.Value) error {
	if !dep.Type().AssignableTo(f.Type) {
		return fmt.Errorf("dependency %s is not assignable to field type %s", dep.Type(), f.Type)
	}
	fv := v.FieldByIndex(f.Index)
	if fv.CanSet() {
		fv.Set(dep)
		return nil
	}
	if !fv.CanAddr() {
		return fmt.Errorf("field %s is not addressable", f.Name)
	}
	reflect.NewAt(f.Type, unsafe.Pointer(fv.UnsafeAddr())).Elem().Set(dep)
	return nil
}
