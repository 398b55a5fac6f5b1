package io

import (
	"errors"

	"github.com/ezrec/lc3vm/translate"
)

var f = translate.From

var (
	// Device errors
	ErrKeyboard = errors.New(f("keyboard read"))
	ErrConsole  = errors.New(f("console write"))
)
