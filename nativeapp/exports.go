//go:build android && cgo

package nativeapp

import "C"

import (
	"go.uber.org/zap"

	"github.com/user-none/eblitui/android/achievements"
	"github.com/user-none/eblitui/android/jni"
)

// JNI pointers (JavaVM*, JNIEnv*, jclass, jstring, jobjectArray) cross the
// boundary as uintptr.

func jboolean(b bool) C.uchar {
	if b {
		return 1
	}
	return 0
}

// natives returns the loaded app's natives, or a disabled stand-in.
func natives() *achievements.Natives {
	if a := Current(); a != nil {
		return a.Natives()
	}
	return achievements.NewNatives(nil, nil, nil)
}

func logger() *zap.Logger {
	if a := Current(); a != nil {
		return a.Logger()
	}
	return zap.NewNop()
}

func newString(envPtr uintptr, s string) uintptr {
	env := jni.EnvFromPointer(envPtr)
	if env == nil {
		return 0
	}
	r, err := env.NewStringUTF(s)
	if err != nil {
		logger().Warn("NewStringUTF failed", zap.Error(err))
		return 0
	}
	return uintptr(r)
}

// stringArgs converts two jstring arguments. ok is false when either is
// null.
func stringArgs(envPtr, a, b uintptr) (sa, sb string, ok bool) {
	env := jni.EnvFromPointer(envPtr)
	if env == nil || a == 0 || b == 0 {
		return "", "", false
	}
	return env.GetStringUTF(jni.Ref(a)), env.GetStringUTF(jni.Ref(b)), true
}

//export JNI_OnLoad
func JNI_OnLoad(vm uintptr, reserved uintptr) C.int {
	jvm := jni.VMFromPointer(vm)
	if jvm == nil {
		return C.int(jni.Err)
	}
	load(achievements.NewRuntime(jvm), processOptions())
	return C.int(jni.Version1_6)
}

//export JNI_OnUnload
func JNI_OnUnload(vm uintptr, reserved uintptr) {
	unload()
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsIsActive
func Java_com_izzy2lost_psx2_NativeApp_achievementsIsActive(env, clazz uintptr) C.uchar {
	return jboolean(natives().IsActive())
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsIsHardcoreMode
func Java_com_izzy2lost_psx2_NativeApp_achievementsIsHardcoreMode(env, clazz uintptr) C.uchar {
	return jboolean(natives().IsHardcoreMode())
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsHasActiveGame
func Java_com_izzy2lost_psx2_NativeApp_achievementsHasActiveGame(env, clazz uintptr) C.uchar {
	return jboolean(natives().HasActiveGame())
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsGetGameTitle
func Java_com_izzy2lost_psx2_NativeApp_achievementsGetGameTitle(env, clazz uintptr) uintptr {
	return newString(env, natives().GameTitle())
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsGetGameId
func Java_com_izzy2lost_psx2_NativeApp_achievementsGetGameId(env, clazz uintptr) C.int {
	return C.int(int32(natives().GameID()))
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsGetRichPresence
func Java_com_izzy2lost_psx2_NativeApp_achievementsGetRichPresence(env, clazz uintptr) uintptr {
	return newString(env, natives().RichPresence())
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsLogin
func Java_com_izzy2lost_psx2_NativeApp_achievementsLogin(env, clazz, username, password uintptr) {
	user, pass, ok := stringArgs(env, username, password)
	if !ok {
		logger().Error("Login called with null username or password")
		return
	}
	_ = natives().Login(user, pass)
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsLogout
func Java_com_izzy2lost_psx2_NativeApp_achievementsLogout(env, clazz uintptr) {
	natives().Logout()
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsInitialize
func Java_com_izzy2lost_psx2_NativeApp_achievementsInitialize(env, clazz uintptr) {
	_ = natives().Initialize()
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsShutdown
func Java_com_izzy2lost_psx2_NativeApp_achievementsShutdown(env, clazz uintptr) {
	natives().Shutdown()
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsGetAchievementList
func Java_com_izzy2lost_psx2_NativeApp_achievementsGetAchievementList(env, clazz uintptr) uintptr {
	e := jni.EnvFromPointer(env)
	if e == nil {
		return 0
	}
	return uintptr(natives().AchievementList(e))
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsSetHardcoreMode
func Java_com_izzy2lost_psx2_NativeApp_achievementsSetHardcoreMode(env, clazz uintptr, enabled C.uchar) {
	natives().SetHardcoreMode(enabled != 0)
}

//export Java_com_izzy2lost_psx2_NativeApp_achievementsLoginWithToken
func Java_com_izzy2lost_psx2_NativeApp_achievementsLoginWithToken(env, clazz, username, token uintptr) {
	user, tok, ok := stringArgs(env, username, token)
	if !ok {
		logger().Error("Login with token called with null username or token")
		return
	}
	_ = natives().LoginWithToken(user, tok)
}
