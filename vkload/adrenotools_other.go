//go:build !android

package vkload

import "errors"

// OpenAdrenotools is only available on Android.
func OpenAdrenotools() (Injector, error) {
	return nil, errors.New("libadrenotools is only available on android")
}
