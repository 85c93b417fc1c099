//go:build !android

package logging

import "errors"

func openLogcat() (LogWriter, error) {
	return nil, errors.New("logcat is only available on android")
}
