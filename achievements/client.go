package achievements

// State is an achievement's activation state.
type State int32

const (
	StateInactive State = iota
	StateActive
	StateUnlocked
	StateDisabled
)

// Unlock records which modes an achievement was unlocked in.
type Unlock uint8

const (
	UnlockedNone     Unlock = 0
	UnlockedSoftcore Unlock = 1 << 0
	UnlockedHardcore Unlock = 1 << 1
	UnlockedBoth            = UnlockedSoftcore | UnlockedHardcore
)

// Achievement is one entry of the current game's achievement list.
type Achievement struct {
	ID               uint32
	Title            string
	Description      string
	BadgeName        string
	Points           uint32
	Unlocked         Unlock
	UnlockTime       int64 // unix seconds, 0 if locked
	MeasuredProgress string
	MeasuredPercent  float32
	State            State
	Rarity           float32
	RarityHardcore   float32
}

// Bucket groups achievements the way the client presents them (locked,
// unlocked, recently unlocked, ...).
type Bucket struct {
	Label        string
	Achievements []Achievement
}

// Client is the emulator's RetroAchievements client.
type Client interface {
	IsActive() bool
	IsHardcoreModeActive() bool
	HasActiveGame() bool
	GameTitle() string
	GameID() uint32
	RichPresence() string
	Login(username, password string) error
	Logout()
	Initialize() error
	Shutdown(clearState bool)
	AchievementList() ([]Bucket, error)
}

// disabledClient stands in until the emulator registers its client.
type disabledClient struct{}

func (disabledClient) IsActive() bool                        { return false }
func (disabledClient) IsHardcoreModeActive() bool            { return false }
func (disabledClient) HasActiveGame() bool                   { return false }
func (disabledClient) GameTitle() string                     { return "" }
func (disabledClient) GameID() uint32                        { return 0 }
func (disabledClient) RichPresence() string                  { return "" }
func (disabledClient) Login(username, password string) error { return ErrNoClient }
func (disabledClient) Logout()                               {}
func (disabledClient) Initialize() error                     { return ErrNoClient }
func (disabledClient) Shutdown(clearState bool)              {}
func (disabledClient) AchievementList() ([]Bucket, error)    { return nil, ErrNoClient }
