package repositories

import (
	"group-lab/errors"
	"testing"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func TestGroupRepository_Save_Get_List(t *testing.T) {
	req := require.New(t)
	repo := NewGroupRepository(openBadger(t))
	creator, member := uuid.New(), uuid.New()
	team := DiskGroup{
		ID:           uuid.New(),
		Name:         "Team",
		CreatorID:    creator,
		MinAgeToJoin: lo.ToPtr(18),
		CreatedAt:    at,
		Members:      []DiskMember{{creator, "admin"}, {member, "member"}},
		Contacts:     []uuid.UUID{member},
	}
	family := DiskGroup{ID: uuid.New(), Name: "Family", CreatorID: member, CreatedAt: at,
		Members: []DiskMember{{member, "admin"}}}

	req.NoError(repo.SaveGroup(team))
	req.NoError(repo.SaveGroup(family))

	fetched, err := repo.GetGroup(team.ID)
	req.NoError(err)
	req.Equal(team, fetched)

	// Overwriting keeps a single entry
	team.Members = team.Members[:1]
	req.NoError(repo.SaveGroup(team))
	groups, err := repo.ListGroups()
	req.NoError(err)
	req.Len(groups, 2)
}

func TestGroupRepository_GetGroup_NotFound(t *testing.T) {
	repo := NewGroupRepository(openBadger(t))

	_, err := repo.GetGroup(uuid.New())

	require.ErrorIs(t, err, errors.ErrGroupNotFound)
}
