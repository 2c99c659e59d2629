// Package domain contains core concepts of the group system.
// This file defines User entities and their profile rules.
// No runtime, storage, or UI logic should be added here.
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// User is a participant. ID is the identity key; Username is only a display
// name and may collide with other users.
type User struct {
	ID          uuid.UUID
	Username    string
	Birthdate   time.Time
	Location    string
	Phone       *string
	Description string
	Contacts    *ContactBook
}

func NewUser(username string, birthdate time.Time, location string, phone *string) *User {
	return &User{
		ID:        uuid.New(),
		Username:  username,
		Birthdate: birthdate,
		Location:  location,
		Phone:     phone,
		Contacts:  NewContactBook(),
	}
}

// Age is the calendar age at now: the year difference, minus one while the
// birthday of the current year has not been reached.
func (u *User) Age(now time.Time) int {
	age := now.Year() - u.Birthdate.Year()
	if now.Month() < u.Birthdate.Month() ||
		(now.Month() == u.Birthdate.Month() && now.Day() < u.Birthdate.Day()) {
		age--
	}
	return age
}

func (u *User) LocationLine() string {
	return fmt.Sprintf("%s lives in %s.", u.Username, u.Location)
}

// ProfileUpdate carries optional replacements; nil fields are left untouched.
type ProfileUpdate struct {
	Username  *string
	Birthdate *time.Time
	Location  *string
	Phone     *string
}

func (u *User) UpdateProfile(update ProfileUpdate) {
	if update.Username != nil {
		u.Username = *update.Username
	}
	if update.Birthdate != nil {
		u.Birthdate = *update.Birthdate
	}
	if update.Location != nil {
		u.Location = *update.Location
	}
	if update.Phone != nil {
		u.Phone = update.Phone
	}
}

func (u *User) ChangeUsername(username string) {
	u.Username = username
}

func (u *User) SetDescription(description string) {
	u.Description = description
}

func (u *User) AddContact(other *User) {
	if u.Contacts == nil {
		u.Contacts = NewContactBook()
	}
	u.Contacts.Add(other.ID)
}
