package custody

import (
	"reflect"

	"github.com/iov-one/custody/errors"
)

// assign sets src into the value pointed by dst, returning an error
// when the types are not compatible. A pointer src is dereferenced when
// that is what the destination expects.
func assign(dst, src interface{}) error {
	dv := reflect.ValueOf(dst)
	if dv.Kind() != reflect.Ptr || dv.IsNil() {
		return errors.Wrap(errors.ErrHuman, "destination must be a non nil pointer")
	}
	want := dv.Elem().Type()
	sv := reflect.ValueOf(src)
	switch {
	case sv.Type().AssignableTo(want):
		dv.Elem().Set(sv)
	case sv.Kind() == reflect.Ptr && !sv.IsNil() && sv.Elem().Type().AssignableTo(want):
		dv.Elem().Set(sv.Elem())
	default:
		return errors.Wrapf(errors.ErrType, "cannot use %T as %s", src, want)
	}
	return nil
}
