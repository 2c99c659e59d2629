package domain

import (
	"group-lab/errors"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestUser_Age(t *testing.T) {
	tests := []struct {
		name      string
		birthdate time.Time
		at        time.Time
		expected  int
	}{
		{"birthday already passed", birth(1990, 1, 1), birth(2023, 12, 3), 33},
		{"birthday not reached yet", birth(1990, 12, 25), birth(2023, 12, 3), 32},
		{"birthday today", birth(1990, 12, 3), birth(2023, 12, 3), 33},
		{"earlier month", birth(1995, 5, 15), birth(2023, 4, 30), 27},
		{"leap day before march", birth(2000, 2, 29), birth(2023, 2, 28), 22},
		{"newborn", birth(2023, 12, 3), birth(2023, 12, 3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := NewUser("Mat", tt.birthdate, "City X", nil)
			require.Equal(t, tt.expected, u.Age(tt.at))
		})
	}
}

func TestUser_UpdateProfile_KeepsNilFields(t *testing.T) {
	req := require.New(t)
	mat := NewUser("Mat", birth(1990, 1, 1), "City X", lo.ToPtr("+123456789"))

	mat.UpdateProfile(ProfileUpdate{
		Location: lo.ToPtr("New City"),
		Phone:    lo.ToPtr("+987654321"),
	})

	req.Equal("Mat", mat.Username)
	req.Equal(birth(1990, 1, 1), mat.Birthdate)
	req.Equal("New City", mat.Location)
	req.Equal("+987654321", *mat.Phone)
	req.Equal("Mat lives in New City.", mat.LocationLine())
}

func TestUser_ChangeUsername(t *testing.T) {
	mat := NewUser("Mat", birth(1990, 1, 1), "City X", nil)
	id := mat.ID

	mat.ChangeUsername("NewMat")

	require.Equal(t, "NewMat", mat.Username)
	require.Equal(t, id, mat.ID)
}

func TestPlaceCall_RequiresMutualContacts(t *testing.T) {
	req := require.New(t)
	mat := NewUser("Mat", birth(1990, 1, 1), "City X", nil)
	user1 := NewUser("User1", birth(1985, 5, 15), "City Y", nil)

	// Given only Mat knows User1
	mat.AddContact(user1)
	_, err := PlaceCall(mat, user1, now)
	req.ErrorIs(err, errors.ErrNotMutualContacts)

	// When User1 adds Mat back
	user1.AddContact(mat)
	call, err := PlaceCall(mat, user1, now)

	// Then the call lasts one minute
	req.NoError(err)
	req.Equal(mat.ID, call.CallerID)
	req.Equal(user1.ID, call.ReceiverID)
	req.Equal(now.Add(time.Minute), call.EndsAt)
}

func TestContactBook_AddIsIdempotent(t *testing.T) {
	req := require.New(t)
	book := NewContactBook()
	mat := NewUser("Mat", birth(1990, 1, 1), "City X", nil)

	book.Add(mat.ID)
	book.Add(mat.ID)

	req.Equal(1, book.Len())
	req.True(book.Contains(mat.ID))
}
