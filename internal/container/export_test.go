package container

import "reflect"

func reflectValue(fn any) reflect.Value { return reflect.ValueOf(fn) }
