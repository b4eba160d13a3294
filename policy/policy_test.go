package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-management-api/models"
)

var (
	adminID   = primitive.NewObjectID()
	creatorID = primitive.NewObjectID()
	memberID  = primitive.NewObjectID()
	otherID   = primitive.NewObjectID()
)

func admin() Principal   { return Principal{ID: adminID, Role: models.RoleAdmin} }
func creator() Principal { return Principal{ID: creatorID, Role: models.RoleManager} }
func member(role models.Role) Principal {
	return Principal{ID: memberID, Role: role}
}
func outsider(role models.Role) Principal {
	return Principal{ID: otherID, Role: role}
}

func projectFacts(kind Kind) Facts {
	return Facts{
		Kind:           kind,
		ProjectCreator: creatorID,
		ProjectMembers: []primitive.ObjectID{memberID},
	}
}

func TestAdminAllowedEverything(t *testing.T) {
	pl := Policy{}
	for _, kind := range []Kind{KindProject, KindTask, KindComment} {
		for _, op := range []Operation{OpRead, OpCreate, OpUpdate, OpDelete} {
			assert.NoError(t, pl.Authorize(admin(), op, projectFacts(kind)),
				"admin should be allowed %s on %s", op, kind)
		}
	}
	assert.NoError(t, pl.CanReadAllActions(admin()))
	assert.NoError(t, pl.CanReadUserActions(admin(), otherID))
	assert.NoError(t, pl.CanUpdateUser(admin(), otherID))
	assert.NoError(t, pl.CanDeleteUser(admin()))
}

func TestManagerWritesRequireOwnership(t *testing.T) {
	pl := Policy{}
	for _, kind := range []Kind{KindProject, KindTask} {
		for _, op := range []Operation{OpUpdate, OpDelete} {
			assert.NoError(t, pl.Authorize(creator(), op, projectFacts(kind)))
			assert.ErrorIs(t, pl.Authorize(outsider(models.RoleManager), op, projectFacts(kind)), ErrForbidden)
		}
	}
	// A manager who is a member but not the creator is a non-owner.
	facts := projectFacts(KindProject)
	assert.ErrorIs(t, pl.Authorize(member(models.RoleManager), OpUpdate, facts), ErrForbidden)
	assert.ErrorIs(t, pl.Authorize(member(models.RoleManager), OpDelete, facts), ErrForbidden)
}

func TestManagerCreate(t *testing.T) {
	pl := Policy{}
	// Any manager may create projects.
	assert.NoError(t, pl.Authorize(outsider(models.RoleManager), OpCreate, Facts{Kind: KindProject}))
	// Tasks and comments only inside projects they created.
	assert.NoError(t, pl.Authorize(creator(), OpCreate, projectFacts(KindTask)))
	assert.NoError(t, pl.Authorize(creator(), OpCreate, projectFacts(KindComment)))
	assert.ErrorIs(t, pl.Authorize(member(models.RoleManager), OpCreate, projectFacts(KindTask)), ErrForbidden)
	assert.ErrorIs(t, pl.Authorize(member(models.RoleManager), OpCreate, projectFacts(KindComment)), ErrForbidden)
}

func TestUserNeverWritesProjectsOrTasks(t *testing.T) {
	pl := Policy{}
	for _, kind := range []Kind{KindProject, KindTask} {
		for _, op := range []Operation{OpCreate, OpUpdate, OpDelete} {
			assert.ErrorIs(t, pl.Authorize(member(models.RoleUser), op, projectFacts(kind)), ErrForbidden,
				"user must not %s %s", op, kind)
		}
	}
	assert.ErrorIs(t, pl.RoleAllowsCreate(member(models.RoleUser)), ErrForbidden)
	assert.NoError(t, pl.RoleAllowsCreate(creator()))
	assert.NoError(t, pl.RoleAllowsCreate(admin()))
}

func TestReadRequiresMembershipOrCreator(t *testing.T) {
	pl := Policy{}
	for _, kind := range []Kind{KindProject, KindTask, KindComment} {
		assert.NoError(t, pl.Authorize(creator(), OpRead, projectFacts(kind)))
		assert.NoError(t, pl.Authorize(member(models.RoleUser), OpRead, projectFacts(kind)))
		assert.ErrorIs(t, pl.Authorize(outsider(models.RoleUser), OpRead, projectFacts(kind)), ErrForbidden)
		assert.ErrorIs(t, pl.Authorize(outsider(models.RoleManager), OpRead, projectFacts(kind)), ErrForbidden)
	}
}

func TestOutsiderGainsReadWhenAddedAsMember(t *testing.T) {
	pl := Policy{}
	facts := projectFacts(KindProject)
	p := outsider(models.RoleUser)

	assert.ErrorIs(t, pl.Authorize(p, OpRead, facts), ErrForbidden)

	facts.ProjectMembers = append(facts.ProjectMembers, p.ID)
	assert.NoError(t, pl.Authorize(p, OpRead, facts))
}

func TestCommentOwnership(t *testing.T) {
	pl := Policy{}
	facts := projectFacts(KindComment)
	facts.CommentAuthor = memberID

	// Authors may edit and delete their own comments.
	assert.NoError(t, pl.Authorize(member(models.RoleUser), OpUpdate, facts))
	assert.NoError(t, pl.Authorize(member(models.RoleUser), OpDelete, facts))

	// Non-authors may not, apart from the project creator's delete right.
	assert.ErrorIs(t, pl.Authorize(outsider(models.RoleUser), OpUpdate, facts), ErrForbidden)
	assert.ErrorIs(t, pl.Authorize(creator(), OpUpdate, facts), ErrForbidden)
	assert.NoError(t, pl.Authorize(creator(), OpDelete, facts))
	assert.ErrorIs(t, pl.Authorize(outsider(models.RoleManager), OpDelete, facts), ErrForbidden)

	// Plain users never create comments.
	assert.ErrorIs(t, pl.Authorize(member(models.RoleUser), OpCreate, facts), ErrForbidden)
}

func TestTaskListPolicyParameter(t *testing.T) {
	facts := projectFacts(KindTask)
	p := outsider(models.RoleUser)

	open := Policy{OpenTaskRead: true}
	assert.NoError(t, open.AuthorizeTaskList(p, facts))

	closed := Policy{OpenTaskRead: false}
	assert.ErrorIs(t, closed.AuthorizeTaskList(p, facts), ErrForbidden)
	assert.NoError(t, closed.AuthorizeTaskList(member(models.RoleUser), facts))
	assert.NoError(t, closed.AuthorizeTaskList(admin(), facts))
}

func TestActionFeedAccess(t *testing.T) {
	pl := Policy{}
	p := member(models.RoleUser)

	assert.NoError(t, pl.CanReadUserActions(p, p.ID))
	assert.ErrorIs(t, pl.CanReadUserActions(p, otherID), ErrForbidden)
	assert.ErrorIs(t, pl.CanReadAllActions(p), ErrForbidden)
	assert.ErrorIs(t, pl.CanReadAllActions(outsider(models.RoleManager)), ErrForbidden)
}

func TestSelfScopedUserManagement(t *testing.T) {
	pl := Policy{}
	p := member(models.RoleUser)

	assert.NoError(t, pl.CanUpdateUser(p, p.ID))
	assert.ErrorIs(t, pl.CanUpdateUser(p, otherID), ErrForbidden)
	assert.ErrorIs(t, pl.CanDeleteUser(p), ErrForbidden)
	assert.ErrorIs(t, pl.CanDeleteUser(outsider(models.RoleManager)), ErrForbidden)
}
