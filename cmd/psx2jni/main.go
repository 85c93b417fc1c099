// Command psx2jni builds libpsx2.so, the JNI library loaded by the Android
// frontend:
//
//	CGO_ENABLED=1 GOOS=android GOARCH=arm64 go build -buildmode=c-shared -o libpsx2.so ./cmd/psx2jni
package main

import (
	_ "github.com/user-none/eblitui/android/nativeapp"
)

func main() {}
