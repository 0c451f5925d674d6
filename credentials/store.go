package credentials

// Durable slot names. Each slot is stored independently.
const (
	SlotToken        = "token"
	SlotRefreshToken = "refreshToken"
	SlotUserEmail    = "userEmail"
	SlotUserRole     = "userRole"
)

// Slots lists every slot the store owns, in write order.
var Slots = []string{SlotToken, SlotRefreshToken, SlotUserEmail, SlotUserRole}

// Record is the durable mirror of a session. An empty field means the slot is absent.
type Record struct {
	AccessToken  string
	RefreshToken string
	UserEmail    string
	UserRole     string
}

// Complete reports whether all four slots are populated.
func (r Record) Complete() bool {
	return r.AccessToken != "" && r.RefreshToken != "" && r.UserEmail != "" && r.UserRole != ""
}

func (r Record) slots() map[string]string {
	return map[string]string{
		SlotToken:        r.AccessToken,
		SlotRefreshToken: r.RefreshToken,
		SlotUserEmail:    r.UserEmail,
		SlotUserRole:     r.UserRole,
	}
}

func recordFromSlots(slots map[string]string) Record {
	return Record{
		AccessToken:  slots[SlotToken],
		RefreshToken: slots[SlotRefreshToken],
		UserEmail:    slots[SlotUserEmail],
		UserRole:     slots[SlotUserRole],
	}
}

// Store persists session credentials. Token contents are opaque and never validated.
type Store interface {
	// Load reads the four slots; missing slots come back empty.
	Load() (Record, error)
	// Save writes all four slots. The record must be complete.
	Save(record Record) error
	// Clear removes all four slots.
	Clear() error
	// SetAccessToken replaces only the access token slot.
	SetAccessToken(token string) error
}
