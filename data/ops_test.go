package data

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
)

func strPtr(s string) *string { return &s }
func int64Ptr(v int64) *int64 { return &v }

func fieldErrors(t *testing.T, err error) map[string]string {
	t.Helper()
	var ve *models.ValidationError
	require.True(t, errors.As(err, &ve), "expected validation error, got %v", err)
	return ve.Fields
}

func TestOrganizations(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	org := seedOrganization(t, s, "TASH")
	assert.Equal(t, fixedNow, org.CreatedAt.UTC())
	seedOrganization(t, s, "BUX")

	_, err := s.CreateOrganization(ctx, &models.OrganizationInput{Name: "Dup", Code: "TASH"})
	assert.True(t, errors.Is(err, models.ErrConflict), err)

	items, total, err := s.ListOrganizations(ctx, models.Scope{}, params().With(filter.KeySearch, "bux"))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "BUX", items[0].Code)

	items, total, err = s.ListOrganizations(ctx, scopeOf(org.ID), params())
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, org.ID, items[0].ID)

	updated, err := s.UpdateOrganization(ctx, models.Scope{}, org.ID, &models.OrganizationInput{Name: "Toshkent", Code: "TASH", Address: "Chilonzor"})
	require.NoError(t, err)
	assert.Equal(t, org.ID, updated.ID)
	assert.Equal(t, org.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Chilonzor", updated.Address)

	seedLocomotive(t, s, org.ID, "001")
	err = s.DeleteOrganizations(ctx, models.Scope{}, []int64{org.ID})
	assert.True(t, errors.Is(err, models.ErrReferenced), err)

	_, err = s.GetOrganization(ctx, models.Scope{}, org.ID)
	assert.NoError(t, err, "failed delete keeps the row")
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	org := seedOrganization(t, s, "TASH")
	other := seedOrganization(t, s, "BUX")

	in := &models.UserInput{Username: "ali", FullName: "Ali Valiyev", Role: models.RoleOperator, OrganizationID: &org.ID, Password: "secret1"}
	user, err := s.CreateUser(ctx, models.Scope{}, in)
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	require.NotNil(t, user.OrganizationName)
	assert.Equal(t, "Depo TASH", *user.OrganizationName)
	assert.NotEqual(t, "secret1", user.PasswordHash)

	_, err = s.CreateUser(ctx, models.Scope{}, in)
	assert.True(t, errors.Is(err, models.ErrConflict))

	_, err = s.CreateUser(ctx, scopeOf(org.ID), &models.UserInput{Username: "x", FullName: "X", Role: models.RoleViewer, OrganizationID: &other.ID, Password: "secret1"})
	assert.Contains(t, fieldErrors(t, err), "organizationId")

	got, err := s.Authenticate(ctx, "ali", "secret1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = s.Authenticate(ctx, "ali", "wrong")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))
	_, err = s.Authenticate(ctx, "nobody", "secret1")
	assert.True(t, errors.Is(err, models.ErrInvalidCredentials))

	inactive := false
	in.IsActive = &inactive
	in.Password = ""
	_, err = s.UpdateUser(ctx, models.Scope{}, user.ID, in)
	require.NoError(t, err)
	_, err = s.Authenticate(ctx, "ali", "secret1")
	assert.True(t, errors.Is(err, models.ErrInactiveUser), "empty password keeps the old hash")

	in.IsActive = nil
	in.FullName = "Ali V."
	edited, err := s.UpdateUser(ctx, models.Scope{}, user.ID, in)
	require.NoError(t, err)
	assert.False(t, edited.IsActive, "omitted isActive keeps the user disabled")
	assert.Equal(t, "Ali V.", edited.FullName)

	_, total, err := s.ListUsers(ctx, scopeOf(other.ID), params())
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	_, total, err = s.ListUsers(ctx, models.Scope{}, params().With(filter.KeyRole, "operator"))
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	profile, err := s.UpdateProfile(ctx, user.ID, &models.UpdateProfileRequest{FullName: "Ali V.", Password: "newpass"})
	require.NoError(t, err)
	assert.Equal(t, "Ali V.", profile.FullName)
}

func TestLocomotives_ScopeFiltersPaging(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	org := seedOrganization(t, s, "TASH")
	other := seedOrganization(t, s, "BUX")

	seedLocomotive(t, s, org.ID, "001")
	second := seedLocomotive(t, s, org.ID, "002")
	seedLocomotive(t, s, org.ID, "003")
	foreign := seedLocomotive(t, s, other.ID, "900")

	_, err := s.CreateLocomotive(ctx, models.Scope{}, &models.LocomotiveInput{Number: "001", Model: "VL80", OrganizationID: org.ID, Status: models.LocomotiveActive})
	assert.True(t, errors.Is(err, models.ErrConflict))

	p := params()
	p.PageSize = 2
	items, total, err := s.ListLocomotives(ctx, scopeOf(org.ID), p)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, items, 2)
	assert.Equal(t, "001", items[0].Number)
	assert.Equal(t, "Depo TASH", items[0].OrganizationName)

	items, _, err = s.ListLocomotives(ctx, scopeOf(org.ID), p.WithPage(2))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "003", items[0].Number)

	_, err = s.GetLocomotive(ctx, scopeOf(org.ID), foreign.ID)
	assert.True(t, errors.Is(err, models.ErrNotFound))

	repair := &models.LocomotiveInput{Number: "002", Model: "2TE10M", OrganizationID: org.ID, Status: models.LocomotiveRepair, CommissionedOn: strPtr("1999-01-01")}
	updated, err := s.UpdateLocomotive(ctx, scopeOf(org.ID), second.ID, repair)
	require.NoError(t, err)
	assert.Equal(t, models.LocomotiveRepair, updated.Status)
	assert.Equal(t, second.ID, updated.ID)
	assert.Equal(t, second.CreatedAt, updated.CreatedAt)

	items, total, err = s.ListLocomotives(ctx, models.Scope{}, params().With(filter.KeyStatus, "repair"))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "002", items[0].Number)
	require.NotNil(t, items[0].CommissionedOn)
	assert.Equal(t, "1999-01-01", *items[0].CommissionedOn)

	err = s.DeleteLocomotives(ctx, scopeOf(org.ID), []int64{foreign.ID})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}

func TestInspections_DueDates(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	org := seedOrganization(t, s, "TASH")
	loco := seedLocomotive(t, s, org.ID, "001")

	create := func(last string, interval int) *models.Inspection {
		item, err := s.CreateInspection(ctx, scopeOf(org.ID), &models.InspectionInput{
			LocomotiveID: loco.ID, Kind: "TO-2", IntervalDays: interval, LastInspectedOn: last,
		})
		require.NoError(t, err)
		return item
	}
	overdue := create("2024-04-01", 30)  // 2024-05-01
	upcoming := create("2024-05-01", 20) // 2024-05-21
	create("2024-05-01", 90)             // 2024-07-30

	assert.Equal(t, "2024-05-01", overdue.NextDueOn)
	assert.Equal(t, -9, overdue.RemainingDays)
	assert.Equal(t, 11, upcoming.RemainingDays)

	items, total, err := s.ListInspections(ctx, models.Scope{}, params().With(filter.KeyTab, filter.TabOverdue))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, overdue.ID, items[0].ID)
	assert.Equal(t, "001", items[0].LocomotiveNumber)

	items, _, err = s.ListInspections(ctx, models.Scope{}, params().With(filter.KeyTab, filter.TabUpcoming))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, upcoming.ID, items[0].ID)

	_, total, err = s.ListInspections(ctx, models.Scope{}, params().With(filter.KeyFrom, "2024-05-02"))
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	other := seedOrganization(t, s, "BUX")
	_, err = s.CreateInspection(ctx, scopeOf(other.ID), &models.InspectionInput{LocomotiveID: loco.ID, Kind: "TO-1", IntervalDays: 1, LastInspectedOn: "2024-05-01"})
	assert.Contains(t, fieldErrors(t, err), "locomotiveId")

	_, total, err = s.ListInspections(ctx, scopeOf(other.ID), params())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestLinkedRecordsCascadeWithLocomotive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	org := seedOrganization(t, s, "TASH")
	loco := seedLocomotive(t, s, org.ID, "001")

	_, err := s.CreateDelay(ctx, models.Scope{}, &models.DelayEntryInput{LocomotiveID: loco.ID, TrainNumber: "55", Station: "Samarqand", Reason: "Nosozlik", DelayMinutes: 15, OccurredOn: "2024-05-09"})
	require.NoError(t, err)
	defect, err := s.CreateDefectiveWork(ctx, models.Scope{}, &models.DefectiveWorkInput{LocomotiveID: loco.ID, Component: "TED", Description: "Qizib ketish", DetectedOn: "2024-05-01", FixedOn: strPtr("2024-05-03"), Status: models.DefectFixed})
	require.NoError(t, err)
	assert.Equal(t, models.DefectFixed, defect.Status)
	oil, err := s.CreateReplacementOil(ctx, models.Scope{}, &models.ReplacementOilInput{LocomotiveID: loco.ID, OilType: "M14", IntervalDays: 10, LastReplacedOn: "2024-05-05", QuantityLiters: 12.5})
	require.NoError(t, err)
	assert.Equal(t, "2024-05-15", oil.NextDueOn)
	assert.Equal(t, 5, oil.RemainingDays)
	comp, err := s.CreateComponent(ctx, models.Scope{}, &models.ComponentInput{LocomotiveID: loco.ID, ComponentName: "Juftg'ildirak", SerialNumber: "SN-1", Measurements: map[string]string{"koren_1": "12.4", "shatun_2": "8"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"koren_1": "12.4", "shatun_2": "8"}, comp.Measurements)

	_, total, err := s.ListDefectiveWorks(ctx, models.Scope{}, params().With(filter.KeyStatus, "open"))
	require.NoError(t, err)
	assert.Equal(t, 0, total)

	require.NoError(t, s.DeleteLocomotives(ctx, models.Scope{}, []int64{loco.ID}))

	_, total, err = s.ListDelays(ctx, models.Scope{}, params())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
	_, total, err = s.ListComponents(ctx, models.Scope{}, params())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestBulkDeleteIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	org := seedOrganization(t, s, "TASH")
	a := seedLocomotive(t, s, org.ID, "001")
	b := seedLocomotive(t, s, org.ID, "002")

	err := s.DeleteLocomotives(ctx, models.Scope{}, []int64{a.ID, b.ID, 999})
	assert.True(t, errors.Is(err, models.ErrNotFound))

	_, total, err := s.ListLocomotives(ctx, models.Scope{}, params())
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	require.NoError(t, s.DeleteLocomotives(ctx, models.Scope{}, []int64{a.ID, b.ID}))
	_, total, err = s.ListLocomotives(ctx, models.Scope{}, params())
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestBulletinsAndRows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	org := seedOrganization(t, s, "TASH")
	other := seedOrganization(t, s, "BUX")

	cl, err := s.CreateClassificator(ctx, &models.ClassificatorInput{Name: "Smena", Elements: []models.ClassificatorElement{{ID: "1", Name: "Kunduzgi"}, {ID: "2", Name: "Tungi"}}})
	require.NoError(t, err)

	shared, err := s.CreateBulletin(ctx, models.Scope{}, &models.BulletinInput{
		Name: "Kunlik hisobot",
		Columns: []models.BulletinColumn{
			{Key: "count", Name: "Soni", Type: models.ColumnNumber, Required: true},
			{Key: "day", Name: "Sana", Type: models.ColumnDate},
			{Key: "shift", Name: "Smena", Type: models.ColumnClassificator, ClassificatorID: &cl.ID},
		},
	})
	require.NoError(t, err)
	assert.Nil(t, shared.OrganizationID)

	own, err := s.CreateBulletin(ctx, scopeOf(org.ID), &models.BulletinInput{Name: "Depo", OrganizationID: &other.ID})
	require.NoError(t, err)
	require.NotNil(t, own.OrganizationID)
	assert.Equal(t, org.ID, *own.OrganizationID, "non-admin bulletins belong to their organization")

	_, total, err := s.ListBulletins(ctx, scopeOf(org.ID), params())
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	_, total, err = s.ListBulletins(ctx, scopeOf(other.ID), params())
	require.NoError(t, err)
	assert.Equal(t, 1, total, "shared bulletin only")

	_, err = s.UpdateBulletin(ctx, scopeOf(org.ID), shared.ID, &models.BulletinInput{Name: "x"})
	assert.True(t, errors.Is(err, models.ErrForbidden))

	row, err := s.CreateBulletinRow(ctx, scopeOf(org.ID), shared.ID, &models.BulletinRowInput{Values: map[string]string{"count": " 5 ", "shift": "2"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"count": "5", "shift": "2"}, row.Values)

	_, err = s.CreateBulletinRow(ctx, models.Scope{}, shared.ID, &models.BulletinRowInput{Values: map[string]string{"count": "x", "day": "yesterday", "shift": "9", "extra": "1"}})
	fields := fieldErrors(t, err)
	assert.Len(t, fields, 4)

	got, err := s.GetBulletin(ctx, models.Scope{}, shared.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.RowCount)

	err = s.DeleteClassificators(ctx, []int64{cl.ID})
	assert.True(t, errors.Is(err, models.ErrReferenced))

	require.NoError(t, s.DeleteBulletins(ctx, models.Scope{}, []int64{shared.ID}))
	_, _, err = s.ListBulletinRows(ctx, models.Scope{}, shared.ID, params())
	assert.True(t, errors.Is(err, models.ErrNotFound))
	require.NoError(t, s.DeleteClassificators(ctx, []int64{cl.ID}))
}

func TestClassificatorElementsCanBeEmptied(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	cl, err := s.CreateClassificator(ctx, &models.ClassificatorInput{Name: "Seriya", Elements: []models.ClassificatorElement{{ID: "1", Name: "A"}}})
	require.NoError(t, err)

	updated, err := s.UpdateClassificator(ctx, cl.ID, &models.ClassificatorInput{Name: "Seriya", Elements: []models.ClassificatorElement{}})
	require.NoError(t, err)
	assert.NotNil(t, updated.Elements)
	assert.Empty(t, updated.Elements)

	_, err = s.UpdateClassificator(ctx, 404, &models.ClassificatorInput{Name: "x"})
	assert.True(t, errors.Is(err, models.ErrNotFound))
}
