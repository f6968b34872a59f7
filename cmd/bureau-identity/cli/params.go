// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/pflag"
)

// FlagsFromParams returns a flag set bound to the tagged fields of
// params, a pointer to a struct. A malformed params struct is a
// programming error and panics.
func FlagsFromParams(name string, params any) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	if err := BindFlags(params, flagSet); err != nil {
		panic(fmt.Sprintf("cli.FlagsFromParams(%q): %v", name, err))
	}
	return flagSet
}

// BindFlags registers a flag on flagSet for every field of params that
// carries a flag tag:
//
//	UID    uint32 `flag:"uid"      desc:"numeric user id"`
//	Config string `flag:"config,c" desc:"configuration file"`
//	Level  string `flag:"log-level" default:"info"`
//
// The default tag is parsed the way the flag parses its argument.
// Supported field types are string, bool, int and uint32. Embedded
// structs ([Logging], [JSONOutput]) contribute their own flags.
func BindFlags(params any, flagSet *pflag.FlagSet) error {
	value := reflect.ValueOf(params)
	if value.Kind() != reflect.Pointer || value.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("params must be a pointer to a struct, got %T", params)
	}
	return bindStruct(value.Elem(), flagSet)
}

// flagSpec is the parsed tag set of one field.
type flagSpec struct {
	name         string
	shorthand    string
	usage        string
	defaultValue string
}

func specOf(field reflect.StructField) (flagSpec, bool) {
	tag, ok := field.Tag.Lookup("flag")
	if !ok || tag == "" {
		return flagSpec{}, false
	}
	name, shorthand := parseFlagTag(tag)
	return flagSpec{
		name:         name,
		shorthand:    shorthand,
		usage:        field.Tag.Get("desc"),
		defaultValue: field.Tag.Get("default"),
	}, true
}

// parseFlagTag splits "config,c" into the long name and shorthand.
func parseFlagTag(tag string) (name, shorthand string) {
	name, shorthand, _ = strings.Cut(tag, ",")
	return name, shorthand
}

func bindStruct(structValue reflect.Value, flagSet *pflag.FlagSet) error {
	for _, field := range reflect.VisibleFields(structValue.Type()) {
		if len(field.Index) != 1 {
			// Promoted through an embedded struct; bound when that
			// struct is walked.
			continue
		}
		fieldValue := structValue.FieldByIndex(field.Index)
		if field.Anonymous && field.Type.Kind() == reflect.Struct {
			if err := bindStruct(fieldValue, flagSet); err != nil {
				return fmt.Errorf("embedded %s: %w", field.Name, err)
			}
			continue
		}
		spec, ok := specOf(field)
		if !ok {
			continue
		}
		if err := spec.register(flagSet, fieldValue.Addr().Interface()); err != nil {
			return fmt.Errorf("field %s: %w", field.Name, err)
		}
	}
	return nil
}

// register adds the flag with a zero default, then applies the default
// tag through the flag's own parser so both use the same syntax.
func (s flagSpec) register(flagSet *pflag.FlagSet, target any) error {
	switch pointer := target.(type) {
	case *string:
		flagSet.StringVarP(pointer, s.name, s.shorthand, "", s.usage)
	case *bool:
		flagSet.BoolVarP(pointer, s.name, s.shorthand, false, s.usage)
	case *int:
		flagSet.IntVarP(pointer, s.name, s.shorthand, 0, s.usage)
	case *uint32:
		flagSet.Uint32VarP(pointer, s.name, s.shorthand, 0, s.usage)
	default:
		return fmt.Errorf("unsupported type %T for flag --%s", target, s.name)
	}

	if s.defaultValue == "" {
		return nil
	}
	registered := flagSet.Lookup(s.name)
	if err := registered.Value.Set(s.defaultValue); err != nil {
		return fmt.Errorf("default %q for --%s: %w", s.defaultValue, s.name, err)
	}
	registered.DefValue = registered.Value.String()
	return nil
}
