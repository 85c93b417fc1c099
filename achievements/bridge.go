// Package achievements connects the RetroAchievements client to the Android
// UI: Bridge forwards client events to static methods of the Java manager
// class and Natives implements the NativeApp.achievements* methods the UI
// calls into.
package achievements

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/user-none/eblitui/android/jni"
)

// DefaultManagerClass receives the bridge callbacks.
const DefaultManagerClass = "com/izzy2lost/psx2/RetroAchievementsManager"

type callback int

const (
	cbAchievementUnlocked callback = iota
	cbGameComplete
	cbLeaderboardStarted
	cbLeaderboardSubmitted
	cbLoginSuccess
	cbChallengeIndicatorShow
	cbProgressIndicatorUpdate
	cbGameSummary
	cbShowNotification
	numCallbacks
)

// callbacks lists the static methods of the manager class.
var callbacks = [numCallbacks]struct {
	name string
	sig  string
}{
	cbAchievementUnlocked:     {"onAchievementUnlocked", "(Ljava/lang/String;Ljava/lang/String;IZ)V"},
	cbGameComplete:            {"onGameComplete", "(Ljava/lang/String;II)V"},
	cbLeaderboardStarted:      {"onLeaderboardStarted", "(Ljava/lang/String;)V"},
	cbLeaderboardSubmitted:    {"onLeaderboardSubmitted", "(Ljava/lang/String;Ljava/lang/String;II)V"},
	cbLoginSuccess:            {"onLoginSuccess", "(Ljava/lang/String;III)V"},
	cbChallengeIndicatorShow:  {"onChallengeIndicatorShow", "(Ljava/lang/String;)V"},
	cbProgressIndicatorUpdate: {"onProgressIndicatorUpdate", "(Ljava/lang/String;Ljava/lang/String;)V"},
	cbGameSummary:             {"onGameSummary", "(Ljava/lang/String;IIIIZ)V"},
	cbShowNotification:        {"showNotification", "(Ljava/lang/String;I)V"},
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithClassName overrides the Java class receiving callbacks.
func WithClassName(name string) Option {
	return func(b *Bridge) {
		b.className = name
	}
}

// WithLogger sets the logger. The bridge logs under "achievements".
func WithLogger(l *zap.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.log = l
		}
	}
}

// WithNotifications gates ShowNotification popups on enabled, which is
// consulted on every call. Nil delivers every popup.
func WithNotifications(enabled func() bool) Option {
	return func(b *Bridge) {
		b.notify = enabled
	}
}

// Bridge delivers achievement events to the Java UI.
//
// All operations serialize on one mutex, so Shutdown never releases the
// class while a callback is using it.
type Bridge struct {
	mu        sync.Mutex
	rt        Runtime
	className string
	log       *zap.Logger
	notify    func() bool

	class   jni.Ref
	methods [numCallbacks]jni.MethodID
}

// NewBridge creates an uninitialized bridge.
func NewBridge(rt Runtime, opts ...Option) *Bridge {
	b := &Bridge{
		rt:        rt,
		className: DefaultManagerClass,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.log = b.log.Named("achievements")
	return b
}

// Initialize resolves the manager class and every callback. On failure the
// bridge stays uninitialized. Calling it on an initialized bridge does
// nothing.
func (b *Bridge) Initialize() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.class != 0 {
		return nil
	}

	env, release, err := b.rt.Attach()
	if err != nil {
		b.log.Error("Failed to get JNI env", zap.Error(err))
		return fmt.Errorf("attach: %w", err)
	}
	defer release()

	local, err := env.FindClass(b.className)
	if err != nil {
		b.log.Error("Failed to find manager class", zap.String("class", b.className), zap.Error(err))
		return err
	}
	class := env.NewGlobalRef(local)
	env.DeleteLocalRef(local)
	if class == 0 {
		b.log.Error("Failed to create global reference", zap.String("class", b.className))
		return fmt.Errorf("global ref for %s: %w", b.className, jni.ErrAllocation)
	}

	var methods [numCallbacks]jni.MethodID
	var errs []error
	for i, cb := range callbacks {
		id, err := env.GetStaticMethodID(class, cb.name, cb.sig)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		methods[i] = id
	}
	if len(errs) > 0 {
		env.DeleteGlobalRef(class)
		err := errors.Join(errs...)
		b.log.Error("Failed to find one or more method IDs", zap.Error(err))
		return fmt.Errorf("resolve %s callbacks: %w", b.className, err)
	}

	b.class = class
	b.methods = methods
	b.log.Info("Initialized successfully")
	return nil
}

// Initialized reports whether callbacks are delivered.
func (b *Bridge) Initialized() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.class != 0
}

// Shutdown releases the manager class. Later callbacks are dropped.
func (b *Bridge) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.class == 0 {
		return
	}
	if env, release, err := b.rt.Attach(); err == nil {
		env.DeleteGlobalRef(b.class)
		release()
	} else {
		b.log.Warn("Failed to get JNI env, leaking class reference", zap.Error(err))
	}
	b.class = 0
	b.methods = [numCallbacks]jni.MethodID{}
}

// argument is a callback parameter: a Java string created per call or a
// primitive.
type argument struct {
	str      string
	isString bool
	val      jni.Value
}

func str(s string) argument { return argument{str: s, isString: true} }

func val(v jni.Value) argument { return argument{val: v} }

func (b *Bridge) invoke(cb callback, args ...argument) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.class == 0 || b.methods[cb] == 0 {
		return
	}
	name := callbacks[cb].name

	env, release, err := b.rt.Attach()
	if err != nil {
		b.log.Warn("No JNI env for callback", zap.String("method", name), zap.Error(err))
		return
	}
	defer release()

	values := make([]jni.Value, len(args))
	locals := make([]jni.Ref, 0, len(args))
	defer func() {
		for _, r := range locals {
			env.DeleteLocalRef(r)
		}
	}()

	for i, a := range args {
		if !a.isString {
			values[i] = a.val
			continue
		}
		r, err := env.NewStringUTF(a.str)
		if err != nil {
			b.log.Warn("Failed to create callback string", zap.String("method", name), zap.Error(err))
			return
		}
		locals = append(locals, r)
		values[i] = jni.Object(r)
	}

	if err := env.CallStaticVoidMethod(b.class, b.methods[cb], values...); err != nil {
		b.log.Warn("Callback raised an exception", zap.String("method", name), zap.Error(err))
	}
}

// OnAchievementUnlocked reports a newly unlocked achievement.
func (b *Bridge) OnAchievementUnlocked(title, description string, points int32, hardcore bool) {
	b.invoke(cbAchievementUnlocked, str(title), str(description), val(jni.Int(points)), val(jni.Bool(hardcore)))
}

// OnGameComplete reports that every achievement of the game is unlocked.
func (b *Bridge) OnGameComplete(gameTitle string, achievementCount, totalPoints int32) {
	b.invoke(cbGameComplete, str(gameTitle), val(jni.Int(achievementCount)), val(jni.Int(totalPoints)))
}

// OnLeaderboardStarted reports that a leaderboard attempt began.
func (b *Bridge) OnLeaderboardStarted(title string) {
	b.invoke(cbLeaderboardStarted, str(title))
}

// OnLeaderboardSubmitted reports a submitted score and its rank.
func (b *Bridge) OnLeaderboardSubmitted(title, score string, rank, totalEntries int32) {
	b.invoke(cbLeaderboardSubmitted, str(title), str(score), val(jni.Int(rank)), val(jni.Int(totalEntries)))
}

// OnLoginSuccess reports the logged in user and their scores.
func (b *Bridge) OnLoginSuccess(username string, score, softcoreScore, unreadMessages int32) {
	b.invoke(cbLoginSuccess, str(username), val(jni.Int(score)), val(jni.Int(softcoreScore)), val(jni.Int(unreadMessages)))
}

// OnChallengeIndicatorShow reports that a challenge achievement is primed.
func (b *Bridge) OnChallengeIndicatorShow(title string) {
	b.invoke(cbChallengeIndicatorShow, str(title))
}

// OnProgressIndicatorUpdate reports progress toward a measured achievement.
func (b *Bridge) OnProgressIndicatorUpdate(title, progress string) {
	b.invoke(cbProgressIndicatorUpdate, str(title), str(progress))
}

// OnGameSummary reports progress for the game that just loaded.
func (b *Bridge) OnGameSummary(gameTitle string, unlocked, total, earnedPoints, totalPoints int32, hardcore bool) {
	b.invoke(cbGameSummary, str(gameTitle),
		val(jni.Int(unlocked)), val(jni.Int(total)),
		val(jni.Int(earnedPoints)), val(jni.Int(totalPoints)),
		val(jni.Bool(hardcore)))
}

// ShowNotification shows a toast-style message for duration seconds. It is
// dropped when notifications are turned off.
func (b *Bridge) ShowNotification(message string, duration int32) {
	if b.notify != nil && !b.notify() {
		b.log.Debug("Notification suppressed", zap.String("message", message))
		return
	}
	b.invoke(cbShowNotification, str(message), val(jni.Int(duration)))
}
