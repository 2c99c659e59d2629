package services

import (
	"fmt"
	"group-lab/domain"
	"group-lab/errors"
	"group-lab/mocks"
	"group-lab/repositories"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var now = time.Date(2023, 12, 3, 0, 40, 58, 0, time.UTC)

func clock() time.Time { return now }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestUserService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewUserService(mockRepo, discardLogger()).WithClock(clock)

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)
		mockRepo.EXPECT().
			CreateUser(gomock.Any()).
			DoAndReturn(func(u repositories.DiskUser) error {
				req.Equal("Mat", u.Username)
				req.Equal("City X", u.Location)
				req.NotEqual(uuid.Nil, u.ID)
				return nil
			}).Times(1)

		user, err := svc.Register(RegisterUserRequest{
			Username:  "Mat",
			Birthdate: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			Location:  "City X",
			Phone:     lo.ToPtr("+33612345678"),
		})

		req.NoError(err)
		found, err := svc.GetUser(user.ID)
		req.NoError(err)
		req.Same(user, found)
	})

	t.Run("should fail when validation rules are not met", func(t *testing.T) {
		// No expectation: reaching the repository fails the test
		cases := []RegisterUserRequest{
			{Username: "", Birthdate: now.AddDate(-20, 0, 0), Location: "City X"},
			{Username: "Mat", Birthdate: time.Time{}, Location: "City X"},
			{Username: "Mat", Birthdate: now.AddDate(1, 0, 0), Location: "City X"},
			{Username: "Mat", Birthdate: now.AddDate(-20, 0, 0), Location: ""},
			{Username: "Mat", Birthdate: now.AddDate(-20, 0, 0), Location: "City X", Phone: lo.ToPtr("not a phone")},
			{Username: "Mat\x00", Birthdate: now.AddDate(-20, 0, 0), Location: "City X"},
		}
		for _, c := range cases {
			_, err := svc.Register(c)
			require.ErrorIs(t, err, errors.ErrInvalidUser)
		}
	})

	t.Run("should propagate repository conflicts", func(t *testing.T) {
		mockRepo.EXPECT().CreateUser(gomock.Any()).Return(errors.ErrUserAlreadyExists).Times(1)

		_, err := svc.Register(RegisterUserRequest{Username: "Mat", Birthdate: now.AddDate(-20, 0, 0), Location: "City X"})

		require.ErrorIs(t, err, errors.ErrUserAlreadyExists)
	})
}

func TestUserService_Profile_Mutations_Are_Persisted(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewUserService(mockRepo, discardLogger()).WithClock(clock)

	mockRepo.EXPECT().CreateUser(gomock.Any()).Return(nil)
	mat, err := svc.Register(RegisterUserRequest{Username: "Mat", Birthdate: now.AddDate(-30, 0, 0), Location: "City X"})
	req.NoError(err)

	var saved []repositories.DiskUser
	mockRepo.EXPECT().SaveUser(gomock.Any()).DoAndReturn(func(u repositories.DiskUser) error {
		saved = append(saved, u)
		return nil
	}).Times(3)

	_, err = svc.UpdateProfile(mat.ID, domain.ProfileUpdate{Location: lo.ToPtr("New City")})
	req.NoError(err)
	req.NoError(svc.ChangeUsername(mat.ID, "NewMat"))
	req.NoError(svc.SetDescription(mat.ID, "Hello there"))

	req.Len(saved, 3)
	req.Equal("New City", saved[0].Location)
	req.Equal("NewMat", saved[1].Username)
	req.Equal("Hello there", saved[2].Description)
	req.Equal("NewMat lives in New City.", mat.LocationLine())

	_, err = svc.UpdateProfile(mat.ID, domain.ProfileUpdate{Phone: lo.ToPtr("12")})
	req.ErrorIs(err, errors.ErrInvalidUser)
	req.ErrorIs(svc.SetDescription(uuid.New(), "nobody"), errors.ErrUserNotFound)
}

func TestUserService_Call_Needs_Mutual_Contacts(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewUserService(mockRepo, discardLogger()).WithClock(clock)

	mockRepo.EXPECT().CreateUser(gomock.Any()).Return(nil).Times(2)
	mockRepo.EXPECT().SaveUser(gomock.Any()).Return(nil).Times(2)
	mat, err := svc.Register(RegisterUserRequest{Username: "Mat", Birthdate: now.AddDate(-30, 0, 0), Location: "City X"})
	req.NoError(err)
	user1, err := svc.Register(RegisterUserRequest{Username: "User1", Birthdate: now.AddDate(-25, 0, 0), Location: "City Y"})
	req.NoError(err)

	req.NoError(svc.AddContact(mat.ID, user1.ID))
	_, err = svc.Call(mat.ID, user1.ID)
	req.ErrorIs(err, errors.ErrNotMutualContacts)

	req.NoError(svc.AddContact(user1.ID, mat.ID))
	call, err := svc.Call(mat.ID, user1.ID)
	req.NoError(err)
	req.Equal(now.Add(domain.CallDuration), call.EndsAt)
}

func TestUserService_Load(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewUserService(mockRepo, discardLogger())
	mat := repositories.DiskUser{ID: uuid.New(), Username: "Mat", Location: "City X"}
	user1 := repositories.DiskUser{ID: uuid.New(), Username: "User1", Location: "City Y", Contacts: []uuid.UUID{mat.ID}}

	mockRepo.EXPECT().ListUsers().Return([]repositories.DiskUser{mat, user1}, nil)

	req.NoError(svc.Load())

	users := svc.ListUsers()
	req.Len(users, 2)
	req.Equal("Mat", users[0].Username)
	req.True(users[1].Contacts.Contains(mat.ID))

	mockRepo.EXPECT().ListUsers().Return(nil, fmt.Errorf("disk failure"))
	req.Error(svc.Load())
}

func TestUserService_Failed_Save_Keeps_Live_User(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewUserService(mockRepo, discardLogger()).WithClock(clock)

	mockRepo.EXPECT().CreateUser(gomock.Any()).Return(nil).Times(2)
	mat, err := svc.Register(RegisterUserRequest{Username: "Mat", Birthdate: now.AddDate(-30, 0, 0), Location: "City X"})
	req.NoError(err)
	user1, err := svc.Register(RegisterUserRequest{Username: "User1", Birthdate: now.AddDate(-25, 0, 0), Location: "City Y"})
	req.NoError(err)

	mockRepo.EXPECT().SaveUser(gomock.Any()).Return(fmt.Errorf("disk full")).Times(4)

	req.ErrorContains(svc.ChangeUsername(mat.ID, "NewMat"), "disk full")
	req.Error(svc.SetDescription(mat.ID, "Hello there"))
	_, err = svc.UpdateProfile(mat.ID, domain.ProfileUpdate{Location: lo.ToPtr("New City")})
	req.Error(err)
	req.Error(svc.AddContact(mat.ID, user1.ID))

	req.Equal("Mat lives in City X.", mat.LocationLine())
	req.Empty(mat.Description)
	req.Zero(mat.Contacts.Len())
}

func TestUserService_UpdateProfile_Validates_Username(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewUserService(mockRepo, discardLogger()).WithClock(clock)

	mockRepo.EXPECT().CreateUser(gomock.Any()).Return(nil)
	mat, err := svc.Register(RegisterUserRequest{Username: "Mat", Birthdate: now.AddDate(-30, 0, 0), Location: "City X"})
	req.NoError(err)

	// No SaveUser expectation: reaching the repository fails the test
	for _, username := range []string{"", "Mat\x00", strings.Repeat("m", 65)} {
		_, err = svc.UpdateProfile(mat.ID, domain.ProfileUpdate{Username: lo.ToPtr(username)})
		req.ErrorIs(err, errors.ErrInvalidUser)
		req.ErrorIs(svc.ChangeUsername(mat.ID, username), errors.ErrInvalidUser)
	}
	req.Equal("Mat", mat.Username)
}
