package achievements

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/user-none/eblitui/android/config"
	"github.com/user-none/eblitui/android/jni"
)

const (
	achievementClass = "com/izzy2lost/psx2/Achievement"
	achievementCtor  = "(ILjava/lang/String;Ljava/lang/String;Ljava/lang/String;IZJLjava/lang/String;FIFF)V"
)

var ErrNoClient = errors.New("no achievements client registered")

// Natives implements the achievement methods of NativeApp.
type Natives struct {
	client Client
	store  *config.Store
	log    *zap.Logger
}

// NewNatives binds the natives to a client and the settings store. A nil
// client reports everything as inactive until one is registered.
func NewNatives(client Client, store *config.Store, logger *zap.Logger) *Natives {
	if client == nil {
		client = disabledClient{}
	}
	if store == nil {
		store = config.NewStore("", nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Natives{
		client: client,
		store:  store,
		log:    logger.Named("achievements"),
	}
}

// IsActive through Logout forward to the client unchanged.
func (n *Natives) IsActive() bool       { return n.client.IsActive() }
func (n *Natives) IsHardcoreMode() bool { return n.client.IsHardcoreModeActive() }
func (n *Natives) HasActiveGame() bool  { return n.client.HasActiveGame() }
func (n *Natives) GameTitle() string    { return n.client.GameTitle() }
func (n *Natives) GameID() uint32       { return n.client.GameID() }
func (n *Natives) RichPresence() string { return n.client.RichPresence() }
func (n *Natives) Logout()              { n.client.Logout() }

// Login logs in with a password. Null strings are rejected at the JNI
// boundary; empty ones are left for the client to refuse.
func (n *Natives) Login(username, password string) error {
	n.log.Info("Attempting login", zap.String("user", username))
	if err := n.client.Login(username, password); err != nil {
		n.log.Error("Login failed", zap.String("user", username), zap.Error(err))
		return fmt.Errorf("login %s: %w", username, err)
	}
	n.log.Info("Login successful", zap.String("user", username))
	return nil
}

// LoginWithToken stores credentials for the client to use on its next
// login attempt.
func (n *Natives) LoginWithToken(username, token string) error {
	n.log.Info("Attempting token login", zap.String("user", username))
	if err := n.store.SetBaseStringSettingValue("Achievements", "Username", username); err != nil {
		n.log.Error("Failed to store username", zap.Error(err))
		return err
	}
	if err := n.store.SetBaseStringSettingValue("Achievements", "Token", token); err != nil {
		n.log.Error("Failed to store token", zap.Error(err))
		return err
	}
	n.log.Info("Token login credentials set")
	return nil
}

// Initialize enables achievements and starts the client.
func (n *Natives) Initialize() error {
	n.log.Info("Initializing achievements system")
	if n.client.IsActive() {
		n.log.Info("Achievements already active, skipping initialization")
		return nil
	}

	n.setConfig(func(c *config.Config) { c.Achievements.Enabled = true })

	if err := n.client.Initialize(); err != nil {
		n.log.Error("Failed to initialize achievements", zap.Error(err))
		return err
	}
	n.log.Info("Achievements initialized successfully")
	return nil
}

// Shutdown disables achievements and stops the client, keeping its state.
func (n *Natives) Shutdown() {
	n.log.Info("Shutting down achievements system")
	n.setConfig(func(c *config.Config) { c.Achievements.Enabled = false })
	n.client.Shutdown(false)
}

// SetHardcoreMode stores the hardcore preference. It applies on the next
// game load.
func (n *Natives) SetHardcoreMode(enabled bool) {
	n.log.Info("Setting hardcore mode", zap.Bool("enabled", enabled))
	n.setConfig(func(c *config.Config) { c.Achievements.HardcoreMode = enabled })
	n.log.Info("Hardcore mode will apply on next game load")
}

func (n *Natives) setConfig(fn func(*config.Config)) {
	n.store.Update(fn)
	if err := n.store.Save(); err != nil {
		n.log.Warn("Failed to save config", zap.String("path", n.store.Path()), zap.Error(err))
	}
}

// AchievementList builds a Java Achievement[] of every achievement in the
// client's buckets. Any failure yields an empty array, or a null reference
// if not even that can be created.
func (n *Natives) AchievementList(env Env) jni.Ref {
	if !n.client.HasActiveGame() {
		n.log.Warn("No active game, returning empty list")
		return n.emptyList(env, 0)
	}

	buckets, err := n.client.AchievementList()
	if err != nil || len(buckets) == 0 {
		n.log.Warn("No achievements found", zap.Error(err))
		return n.emptyList(env, 0)
	}

	var total int
	for _, b := range buckets {
		total += len(b.Achievements)
	}
	n.log.Info("Found achievements", zap.Int("count", total))

	cls, err := env.FindClass(achievementClass)
	if err != nil {
		n.log.Error("Could not find Achievement class", zap.Error(err))
		return n.emptyList(env, 0)
	}
	defer env.DeleteLocalRef(cls)

	ctor, err := env.GetMethodID(cls, "<init>", achievementCtor)
	if err != nil {
		n.log.Error("Could not find Achievement constructor", zap.Error(err))
		return n.emptyList(env, cls)
	}

	arr, err := env.NewObjectArray(int32(total), cls)
	if err != nil {
		n.log.Error("Could not create array", zap.Int("count", total), zap.Error(err))
		return n.emptyList(env, cls)
	}

	var index int32
	for _, b := range buckets {
		for i := range b.Achievements {
			a := &b.Achievements[i]
			obj, err := newAchievement(env, cls, ctor, a)
			if err != nil {
				n.log.Warn("Could not create achievement", zap.Uint32("id", a.ID), zap.Error(err))
			} else {
				if err := env.SetObjectArrayElement(arr, index, obj); err != nil {
					n.log.Warn("Could not store achievement", zap.Uint32("id", a.ID), zap.Error(err))
				}
				env.DeleteLocalRef(obj)
			}
			index++
		}
	}
	return arr
}

// emptyList returns a zero-length Achievement[]. cls may be zero, in which
// case the class is looked up.
func (n *Natives) emptyList(env Env, cls jni.Ref) jni.Ref {
	if cls == 0 {
		c, err := env.FindClass(achievementClass)
		if err != nil {
			n.log.Error("Could not find Achievement class", zap.Error(err))
			return 0
		}
		defer env.DeleteLocalRef(c)
		cls = c
	}
	arr, err := env.NewObjectArray(0, cls)
	if err != nil {
		n.log.Error("Could not create empty array", zap.Error(err))
		return 0
	}
	return arr
}

func newAchievement(env Env, cls jni.Ref, ctor jni.MethodID, a *Achievement) (jni.Ref, error) {
	var locals []jni.Ref
	defer func() {
		for _, r := range locals {
			env.DeleteLocalRef(r)
		}
	}()

	var refs [4]jni.Ref
	for i, s := range [4]string{a.Title, a.Description, a.BadgeName, a.MeasuredProgress} {
		r, err := env.NewStringUTF(s)
		if err != nil {
			return 0, err
		}
		locals = append(locals, r)
		refs[i] = r
	}

	return env.NewObject(cls, ctor,
		jni.Int(int32(a.ID)),
		jni.Object(refs[0]),
		jni.Object(refs[1]),
		jni.Object(refs[2]),
		jni.Int(int32(a.Points)),
		jni.Bool(a.Unlocked != UnlockedNone),
		jni.Long(a.UnlockTime),
		jni.Object(refs[3]),
		jni.Float(a.MeasuredPercent),
		jni.Int(int32(a.State)),
		jni.Float(a.Rarity),
		jni.Float(a.RarityHardcore),
	)
}
