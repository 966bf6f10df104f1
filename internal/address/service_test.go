package address

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hamperhouse/storefront-backend/pkg/db"
	"github.com/hamperhouse/storefront-backend/pkg/db/dbtest"
	pkgerrors "github.com/hamperhouse/storefront-backend/pkg/errors"
)

func newTestService(t *testing.T) (Service, *Repository) {
	t.Helper()
	conn := dbtest.Open(t)
	repo := NewRepository(conn)
	svc, err := NewService(repo, db.NewFromConn(conn))
	require.NoError(t, err)
	return svc, repo
}

func validInput() CreateAddressInput {
	return CreateAddressInput{
		FullName:   "Asha Rao",
		Phone:      "+91 98765 43210",
		Line1:      "12 MG Road",
		City:       "Bengaluru",
		State:      "KA",
		PostalCode: "560001",
	}
}

func TestCreateFirstAddressBecomesDefault(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	first, err := svc.Create(ctx, userID, validInput())
	require.NoError(t, err)
	require.True(t, first.IsDefault)
	require.Equal(t, "IN", first.Country)

	second, err := svc.Create(ctx, userID, validInput())
	require.NoError(t, err)
	require.False(t, second.IsDefault)

	input := validInput()
	input.IsDefault = true
	third, err := svc.Create(ctx, userID, input)
	require.NoError(t, err)

	list, err := svc.List(ctx, userID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.Equal(t, third.ID, list[0].ID)
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
		}
	}
	require.Equal(t, 1, defaults)
}

func TestCreateRejectsInvalidFields(t *testing.T) {
	svc, _ := newTestService(t)

	input := validInput()
	input.Phone = "call me"
	input.City = " "
	_, err := svc.Create(context.Background(), uuid.New(), input)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	fields := pkgerrors.As(err).Fields()
	require.Contains(t, fields, "phone")
	require.Contains(t, fields, "city")
}

func TestDeleteIsScopedToOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	err = svc.Delete(ctx, uuid.New(), created.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	require.NoError(t, svc.Delete(ctx, owner, created.ID))
	list, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestFindForUserMapsMissingToFieldError(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()

	created, err := svc.Create(ctx, owner, validInput())
	require.NoError(t, err)

	row, err := FindForUser(ctx, repo, owner, created.ID)
	require.NoError(t, err)
	require.Equal(t, "560001", row.PostalCode)

	_, err = FindForUser(ctx, repo, uuid.New(), created.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Contains(t, pkgerrors.As(err).Fields(), "shippingAddressId")
}
