package validator

import "context"

// Field is one declared input field and its check.
type Field struct {
	Name  string
	Clean func(ctx context.Context, v Value) error
}

// Input is a request validator: an ordered list of field checks plus one
// cross-field check that runs after all of them.
type Input interface {
	Fields() []Field
	Clean(ctx context.Context, data Data, errs *ErrorSet) error
}

// Run validates data against in. It returns nil when the input is valid, an
// *ErrorSet when it is not, and any other error when a check could not be
// carried out at all.
func Run(ctx context.Context, in Input, data Data) error {
	errs := NewErrorSet()
	for _, f := range in.Fields() {
		if err := f.Clean(ctx, data.Get(f.Name)); err != nil {
			if !IsValidationError(err) {
				return err
			}
			errs.Add(f.Name, err)
		}
	}
	if err := in.Clean(ctx, data, errs); err != nil {
		if !IsValidationError(err) {
			return err
		}
		errs.Add(NonField, err)
	}
	if errs.Empty() {
		return nil
	}
	return errs
}
