package user

import "time"

// User represents an account in the system. Timezone is an IANA zone name
// ("Europe/Berlin"); it decides what "today" means for that user when the
// batch pipeline centers its warn windows.
type User struct {
	ID        int64
	Email     string
	Timezone  string
	CreatedAt time.Time
}

// Location resolves the user's timezone, falling back to UTC when the
// stored zone name is empty or unknown.
func (u *User) Location() *time.Location {
	if u.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(u.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// LocalNow converts an instant to the user's wall clock.
func (u *User) LocalNow(now time.Time) time.Time {
	return now.In(u.Location())
}
