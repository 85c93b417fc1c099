//go:build !android

package device

// SystemProperties reads properties through libc's __system_property_get.
// It is only available on Android.
func SystemProperties() (Properties, error) {
	return nil, ErrNoSystemProperties
}
