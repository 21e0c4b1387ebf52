package tag

import (
	"reflect"
	"strconv"
	"strings"
)

const (
	tagName   = "default"
	separator = ","
	maxDepth  = 32
)

// ApplyDefaults sets default values for struct fields based on `default` tags.
// The target must be a non-nil pointer to a struct. Fields that already hold
// a non-zero value are left untouched; nested structs, pointers to structs
// and slices of structs are processed recursively.
//
// Example:
//
//	type Config struct {
//	    Host string `default:"localhost"`
//	    Port int    `default:"8080"`
//	}
//	config := &Config{}
//	err := ApplyDefaults(config)
func ApplyDefaults(target any) error {
	valueOf := reflect.ValueOf(target)
	if valueOf.Kind() != reflect.Pointer {
		return ErrTargetMustBePointer
	}
	if valueOf.IsNil() {
		return ErrTargetIsNil
	}

	elem := valueOf.Elem()
	if elem.Kind() != reflect.Struct {
		return ErrUnsupportedType
	}

	return applyStruct(elem, 0)
}

func applyStruct(value reflect.Value, depth int) error {
	if depth >= maxDepth {
		return ErrMaxDepthExceeded
	}

	typ := value.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		fieldValue := value.Field(i)

		// Skip unexported fields
		if !fieldValue.CanSet() {
			continue
		}

		tagValue := field.Tag.Get(tagName)
		if err := applyField(fieldValue, field, tagValue, depth); err != nil {
			return err
		}
	}

	return nil
}

func applyField(fieldValue reflect.Value, field reflect.StructField, tagValue string, depth int) error {
	// Populated slices still need their struct elements defaulted
	if fieldValue.Kind() == reflect.Slice && fieldValue.Len() > 0 {
		return applySliceElements(fieldValue, depth)
	}

	if !fieldValue.IsZero() {
		return nil
	}

	if tagValue == "" && fieldValue.Kind() != reflect.Struct {
		return nil
	}

	return applyValue(fieldValue, field, tagValue, depth)
}

func applyValue(value reflect.Value, field reflect.StructField, tagValue string, depth int) error {
	switch value.Kind() {
	case reflect.String:
		value.SetString(tagValue)

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(tagValue, 10, 64)
		if err != nil {
			return newFieldError(field.Name, tagValue, err)
		}
		value.SetInt(n)

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(tagValue, 10, 64)
		if err != nil {
			return newFieldError(field.Name, tagValue, err)
		}
		value.SetUint(n)

	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(tagValue, 64)
		if err != nil {
			return newFieldError(field.Name, tagValue, err)
		}
		value.SetFloat(f)

	case reflect.Bool:
		b, err := strconv.ParseBool(tagValue)
		if err != nil {
			return newFieldError(field.Name, tagValue, err)
		}
		value.SetBool(b)

	case reflect.Slice:
		return applySlice(value, field, tagValue, depth)

	case reflect.Struct:
		return applyStruct(value, depth+1)

	case reflect.Pointer:
		elemType := field.Type.Elem()
		if tagValue == "" && elemType.Kind() != reflect.Struct {
			return nil
		}
		newValue := reflect.New(elemType)
		value.Set(newValue)
		if elemType.Kind() == reflect.Struct {
			return applyStruct(newValue.Elem(), depth+1)
		}
		return applyValue(newValue.Elem(), field, tagValue, depth)

	default:
		return newFieldError(field.Name, tagValue, ErrUnsupportedType)
	}

	return nil
}

func applySlice(value reflect.Value, field reflect.StructField, tagValue string, depth int) error {
	parts := strings.Split(tagValue, separator)
	slice := reflect.MakeSlice(value.Type(), len(parts), len(parts))
	for i, part := range parts {
		if err := applyValue(slice.Index(i), field, strings.TrimSpace(part), depth); err != nil {
			return err
		}
	}
	value.Set(slice)
	return nil
}

func applySliceElements(value reflect.Value, depth int) error {
	for i := 0; i < value.Len(); i++ {
		elem := value.Index(i)
		if elem.Kind() == reflect.Pointer && !elem.IsNil() {
			elem = elem.Elem()
		}
		if elem.Kind() == reflect.Struct {
			if err := applyStruct(elem, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
