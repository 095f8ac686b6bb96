package controllers

import (
	"sort"
	"strconv"
	"strings"

	"lokomotiv_server_go/cache"
	"lokomotiv_server_go/export"
	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
	"lokomotiv_server_go/permission"
	"lokomotiv_server_go/table"
)

var emptyState = table.EmptyState{Title: msgEmptyTitle, Description: msgEmptyDescription}

var (
	organizationFilter = filter.Descriptor{Name: filter.KeyOrganization, Label: "Tashkilot", IsSelect: true, Searchable: true}
	locomotiveFilter   = filter.Descriptor{Name: filter.KeyLocomotive, Label: "Lokomotiv", IsSelect: true, Searchable: true}
	fromFilter         = filter.Descriptor{Name: filter.KeyFrom, Label: "Sanadan", IsDate: true}
	toFilter           = filter.Descriptor{Name: filter.KeyTo, Label: "Sanagacha", IsDate: true}
	tabFilter          = filter.Descriptor{Name: filter.KeyTab, Label: "Holat", IsSelect: true, Options: filter.TabOptions}
)

func itoa(v int64) string { return strconv.FormatInt(v, 10) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "Ha"
	}
	return "Yo'q"
}

// measurementsText - замеры одной строкой "ключ: значение" в порядке ключей.
func measurementsText(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+m[k])
	}
	return strings.Join(parts, "; ")
}

func (h *Handler) organizations() *Resource[models.Organization, models.OrganizationInput] {
	return &Resource[models.Organization, models.OrganizationInput]{
		Name:       cache.Organizations,
		Title:      "Tashkilotlar",
		ViewPerm:   permission.OrganizationsView,
		ManagePerm: permission.OrganizationsManage,
		Empty:      emptyState,
		Messages:   resourceMessages("Tashkilot"),
		Columns: []table.Column[models.Organization]{
			{Key: "name", Header: "Nomi", Accessor: func(o models.Organization) string { return o.Name }},
			{Key: "code", Header: "Kodi", Accessor: func(o models.Organization) string { return o.Code }},
			{Key: "address", Header: "Manzil", Accessor: func(o models.Organization) string { return o.Address }},
		},
		List: func(c Call, p filter.Params) ([]models.Organization, int, error) {
			return h.store.ListOrganizations(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.Organization, error) {
			return h.store.GetOrganization(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.OrganizationInput) (*models.Organization, error) {
			return h.store.CreateOrganization(c.Ctx, in)
		},
		Update: func(c Call, id int64, in *models.OrganizationInput) (*models.Organization, error) {
			return h.store.UpdateOrganization(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteOrganizations(c.Ctx, c.Scope(), ids)
		},
	}
}

func (h *Handler) users() *Resource[models.User, models.UserInput] {
	roles := []filter.Option{
		{Value: string(models.RoleAdmin), Label: "Administrator"},
		{Value: string(models.RoleManager), Label: "Rahbar"},
		{Value: string(models.RoleOperator), Label: "Operator"},
		{Value: string(models.RoleViewer), Label: "Kuzatuvchi"},
	}
	return &Resource[models.User, models.UserInput]{
		Name:           cache.Users,
		Title:          "Foydalanuvchilar",
		ViewPerm:       permission.UsersView,
		ManagePerm:     permission.UsersManage,
		Empty:          emptyState,
		Messages:       resourceMessages("Foydalanuvchi"),
		PerUserActions: true,
		Filters: []filter.Descriptor{
			{Name: filter.KeyRole, Label: "Rol", IsSelect: true, Options: roles},
			organizationFilter,
		},
		Columns: []table.Column[models.User]{
			{Key: "username", Header: "Login", Accessor: func(u models.User) string { return u.Username }},
			{Key: "fullName", Header: "F.I.Sh.", Accessor: func(u models.User) string { return u.FullName }},
			{Key: "role", Header: "Rol", Accessor: func(u models.User) string { return string(u.Role) }},
			{Key: "organization", Header: "Tashkilot", Accessor: func(u models.User) string { return deref(u.OrganizationName) }},
			{Key: "isActive", Header: "Faol", Accessor: func(u models.User) string { return yesNo(u.IsActive) }},
		},
		List: func(c Call, p filter.Params) ([]models.User, int, error) {
			return h.store.ListUsers(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.User, error) {
			return h.store.GetUser(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.UserInput) (*models.User, error) {
			return h.store.CreateUser(c.Ctx, c.Scope(), in)
		},
		Update: func(c Call, id int64, in *models.UserInput) (*models.User, error) {
			return h.store.UpdateUser(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteUsers(c.Ctx, c.Scope(), ids)
		},
		RowGuard: func(c Call, u models.User) table.RowActions {
			manage := permission.Allowed(c.Session, permission.UsersManage)
			return table.RowActions{Edit: manage, Delete: manage && u.ID != c.Session.UserID}
		},
		BeforeDelete: func(c Call, ids []int64) error {
			for _, id := range ids {
				if id == c.Session.UserID {
					return models.FieldError("ids", msgSelfDelete)
				}
			}
			return nil
		},
	}
}

func (h *Handler) classificators() *Resource[models.Classificator, models.ClassificatorInput] {
	return &Resource[models.Classificator, models.ClassificatorInput]{
		Name:       cache.Classificators,
		Title:      "Klassifikatorlar",
		ViewPerm:   permission.ClassificatorsView,
		ManagePerm: permission.ClassificatorsEdit,
		Empty:      emptyState,
		Messages:   resourceMessages("Klassifikator"),
		Columns: []table.Column[models.Classificator]{
			{Key: "name", Header: "Nomi", Accessor: func(c models.Classificator) string { return c.Name }},
			{Key: "description", Header: "Tavsif", Accessor: func(c models.Classificator) string { return c.Description }},
			{Key: "elements", Header: "Elementlar soni", Accessor: func(c models.Classificator) string { return strconv.Itoa(len(c.Elements)) }},
		},
		List: func(c Call, p filter.Params) ([]models.Classificator, int, error) {
			return h.store.ListClassificators(c.Ctx, p)
		},
		Get: func(c Call, id int64) (*models.Classificator, error) {
			return h.store.GetClassificator(c.Ctx, id)
		},
		Create: func(c Call, in *models.ClassificatorInput) (*models.Classificator, error) {
			return h.store.CreateClassificator(c.Ctx, in)
		},
		Update: func(c Call, id int64, in *models.ClassificatorInput) (*models.Classificator, error) {
			return h.store.UpdateClassificator(c.Ctx, id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteClassificators(c.Ctx, ids)
		},
	}
}

func (h *Handler) locomotives() *Resource[models.Locomotive, models.LocomotiveInput] {
	statuses := []filter.Option{
		{Value: string(models.LocomotiveActive), Label: "Ishda"},
		{Value: string(models.LocomotiveRepair), Label: "Ta'mirda"},
		{Value: string(models.LocomotiveReserve), Label: "Zaxirada"},
		{Value: string(models.LocomotiveWrittenOff), Label: "Hisobdan chiqarilgan"},
	}
	return &Resource[models.Locomotive, models.LocomotiveInput]{
		Name:       cache.Locomotives,
		Title:      "Lokomotivlar",
		ViewPerm:   permission.LocomotivesView,
		ManagePerm: permission.LocomotivesManage,
		Empty:      emptyState,
		Messages:   resourceMessages("Lokomotiv"),
		Filters: []filter.Descriptor{
			organizationFilter,
			{Name: filter.KeyStatus, Label: "Holati", IsSelect: true, Options: statuses},
		},
		Columns: []table.Column[models.Locomotive]{
			{Key: "number", Header: "Raqami", Accessor: func(l models.Locomotive) string { return l.Number }},
			{Key: "model", Header: "Modeli", Accessor: func(l models.Locomotive) string { return l.Model }},
			{Key: "series", Header: "Seriyasi", Accessor: func(l models.Locomotive) string { return l.Series }},
			{Key: "organization", Header: "Depo", Accessor: func(l models.Locomotive) string { return l.OrganizationName }},
			{Key: "status", Header: "Holati", Accessor: func(l models.Locomotive) string { return string(l.Status) }},
			{Key: "commissionedOn", Header: "Foydalanishga topshirilgan", Accessor: func(l models.Locomotive) string { return deref(l.CommissionedOn) }},
			{Key: "mileageKm", Header: "Yurgan masofa, km", Accessor: func(l models.Locomotive) string { return itoa(l.MileageKm) }},
		},
		List: func(c Call, p filter.Params) ([]models.Locomotive, int, error) {
			return h.store.ListLocomotives(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.Locomotive, error) {
			return h.store.GetLocomotive(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.LocomotiveInput) (*models.Locomotive, error) {
			return h.store.CreateLocomotive(c.Ctx, c.Scope(), in)
		},
		Update: func(c Call, id int64, in *models.LocomotiveInput) (*models.Locomotive, error) {
			return h.store.UpdateLocomotive(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteLocomotives(c.Ctx, c.Scope(), ids)
		},
	}
}

func (h *Handler) inspections() *Resource[models.Inspection, models.InspectionInput] {
	return &Resource[models.Inspection, models.InspectionInput]{
		Name:       cache.Inspections,
		Title:      "Ko'riklar",
		ViewPerm:   permission.InspectionsView,
		ManagePerm: permission.InspectionsManage,
		Empty:      emptyState,
		Messages:   resourceMessages("Ko'rik"),
		Filters:    []filter.Descriptor{locomotiveFilter, organizationFilter, tabFilter, fromFilter, toFilter},
		Columns: []table.Column[models.Inspection]{
			{Key: "locomotive", Header: "Lokomotiv", Accessor: func(i models.Inspection) string { return i.LocomotiveNumber }},
			{Key: "kind", Header: "Ko'rik turi", Accessor: func(i models.Inspection) string { return i.Kind }},
			{Key: "intervalDays", Header: "Davriylik, kun", Accessor: func(i models.Inspection) string { return strconv.Itoa(i.IntervalDays) }},
			{Key: "lastInspectedOn", Header: "Oxirgi ko'rik", Accessor: func(i models.Inspection) string { return i.LastInspectedOn }},
			{Key: "nextDueOn", Header: "Keyingi ko'rik", Accessor: func(i models.Inspection) string { return i.NextDueOn }},
			{Key: "remainingDays", Header: "Qolgan kun", Accessor: func(i models.Inspection) string { return strconv.Itoa(i.RemainingDays) }},
			{Key: "notes", Header: "Izoh", Accessor: func(i models.Inspection) string { return i.Notes }},
		},
		List: func(c Call, p filter.Params) ([]models.Inspection, int, error) {
			return h.store.ListInspections(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.Inspection, error) {
			return h.store.GetInspection(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.InspectionInput) (*models.Inspection, error) {
			return h.store.CreateInspection(c.Ctx, c.Scope(), in)
		},
		Update: func(c Call, id int64, in *models.InspectionInput) (*models.Inspection, error) {
			return h.store.UpdateInspection(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteInspections(c.Ctx, c.Scope(), ids)
		},
	}
}

func (h *Handler) delays() *Resource[models.DelayEntry, models.DelayEntryInput] {
	return &Resource[models.DelayEntry, models.DelayEntryInput]{
		Name:       cache.Delays,
		Title:      "Kechikishlar",
		ViewPerm:   permission.DelaysView,
		ManagePerm: permission.DelaysManage,
		Empty:      emptyState,
		Messages:   resourceMessages("Kechikish"),
		Filters:    []filter.Descriptor{locomotiveFilter, organizationFilter, fromFilter, toFilter},
		Columns: []table.Column[models.DelayEntry]{
			{Key: "locomotive", Header: "Lokomotiv", Accessor: func(d models.DelayEntry) string { return d.LocomotiveNumber }},
			{Key: "trainNumber", Header: "Poyezd", Accessor: func(d models.DelayEntry) string { return d.TrainNumber }},
			{Key: "station", Header: "Stansiya", Accessor: func(d models.DelayEntry) string { return d.Station }},
			{Key: "reason", Header: "Sabab", Accessor: func(d models.DelayEntry) string { return d.Reason }},
			{Key: "delayMinutes", Header: "Kechikish, daq", Accessor: func(d models.DelayEntry) string { return strconv.Itoa(d.DelayMinutes) }},
			{Key: "occurredOn", Header: "Sana", Accessor: func(d models.DelayEntry) string { return d.OccurredOn }},
		},
		List: func(c Call, p filter.Params) ([]models.DelayEntry, int, error) {
			return h.store.ListDelays(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.DelayEntry, error) {
			return h.store.GetDelay(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.DelayEntryInput) (*models.DelayEntry, error) {
			return h.store.CreateDelay(c.Ctx, c.Scope(), in)
		},
		Update: func(c Call, id int64, in *models.DelayEntryInput) (*models.DelayEntry, error) {
			return h.store.UpdateDelay(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteDelays(c.Ctx, c.Scope(), ids)
		},
	}
}

func (h *Handler) defectiveWorks() *Resource[models.DefectiveWorkEntry, models.DefectiveWorkInput] {
	statuses := []filter.Option{
		{Value: string(models.DefectOpen), Label: "Ochiq"},
		{Value: string(models.DefectFixed), Label: "Bartaraf etilgan"},
	}
	return &Resource[models.DefectiveWorkEntry, models.DefectiveWorkInput]{
		Name:       cache.DefectiveWorks,
		Title:      "Nosozliklar",
		ViewPerm:   permission.DefectsView,
		ManagePerm: permission.DefectsManage,
		Empty:      emptyState,
		Messages:   resourceMessages("Nosozlik"),
		Filters: []filter.Descriptor{
			locomotiveFilter, organizationFilter,
			{Name: filter.KeyStatus, Label: "Holati", IsSelect: true, Options: statuses},
			fromFilter, toFilter,
		},
		Columns: []table.Column[models.DefectiveWorkEntry]{
			{Key: "locomotive", Header: "Lokomotiv", Accessor: func(d models.DefectiveWorkEntry) string { return d.LocomotiveNumber }},
			{Key: "component", Header: "Uzel", Accessor: func(d models.DefectiveWorkEntry) string { return d.Component }},
			{Key: "description", Header: "Tavsif", Accessor: func(d models.DefectiveWorkEntry) string { return d.Description }},
			{Key: "detectedOn", Header: "Aniqlangan", Accessor: func(d models.DefectiveWorkEntry) string { return d.DetectedOn }},
			{Key: "fixedOn", Header: "Bartaraf etilgan", Accessor: func(d models.DefectiveWorkEntry) string { return deref(d.FixedOn) }},
			{Key: "status", Header: "Holati", Accessor: func(d models.DefectiveWorkEntry) string { return string(d.Status) }},
		},
		List: func(c Call, p filter.Params) ([]models.DefectiveWorkEntry, int, error) {
			return h.store.ListDefectiveWorks(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.DefectiveWorkEntry, error) {
			return h.store.GetDefectiveWork(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.DefectiveWorkInput) (*models.DefectiveWorkEntry, error) {
			return h.store.CreateDefectiveWork(c.Ctx, c.Scope(), in)
		},
		Update: func(c Call, id int64, in *models.DefectiveWorkInput) (*models.DefectiveWorkEntry, error) {
			return h.store.UpdateDefectiveWork(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteDefectiveWorks(c.Ctx, c.Scope(), ids)
		},
	}
}

func (h *Handler) replacementOils() *Resource[models.ReplacementOil, models.ReplacementOilInput] {
	return &Resource[models.ReplacementOil, models.ReplacementOilInput]{
		Name:       cache.ReplacementOils,
		Title:      "Moy almashtirish jadvali",
		ViewPerm:   permission.ReplacementsView,
		ManagePerm: permission.ReplacementsManage,
		Empty:      emptyState,
		Messages:   resourceMessages("Moy almashtirish"),
		Filters:    []filter.Descriptor{locomotiveFilter, organizationFilter, tabFilter},
		Columns: []table.Column[models.ReplacementOil]{
			{Key: "locomotive", Header: "Lokomotiv", Accessor: func(o models.ReplacementOil) string { return o.LocomotiveNumber }},
			{Key: "oilType", Header: "Moy turi", Accessor: func(o models.ReplacementOil) string { return o.OilType }},
			{Key: "section", Header: "Seksiya", Accessor: func(o models.ReplacementOil) string { return o.Section }},
			{Key: "intervalDays", Header: "Davriylik, kun", Accessor: func(o models.ReplacementOil) string { return strconv.Itoa(o.IntervalDays) }},
			{Key: "lastReplacedOn", Header: "Oxirgi almashtirish", Accessor: func(o models.ReplacementOil) string { return o.LastReplacedOn }},
			{Key: "nextDueOn", Header: "Keyingi almashtirish", Accessor: func(o models.ReplacementOil) string { return o.NextDueOn }},
			{Key: "remainingDays", Header: "Qolgan kun", Accessor: func(o models.ReplacementOil) string { return strconv.Itoa(o.RemainingDays) }},
			{Key: "quantityLiters", Header: "Hajmi, l", Accessor: func(o models.ReplacementOil) string { return strconv.FormatFloat(o.QuantityLiters, 'f', -1, 64) }},
		},
		List: func(c Call, p filter.Params) ([]models.ReplacementOil, int, error) {
			return h.store.ListReplacementOils(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.ReplacementOil, error) {
			return h.store.GetReplacementOil(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.ReplacementOilInput) (*models.ReplacementOil, error) {
			return h.store.CreateReplacementOil(c.Ctx, c.Scope(), in)
		},
		Update: func(c Call, id int64, in *models.ReplacementOilInput) (*models.ReplacementOil, error) {
			return h.store.UpdateReplacementOil(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteReplacementOils(c.Ctx, c.Scope(), ids)
		},
	}
}

func (h *Handler) components() *Resource[models.ComponentRegistryEntry, models.ComponentInput] {
	return &Resource[models.ComponentRegistryEntry, models.ComponentInput]{
		Name:       cache.Components,
		Title:      "Uzellar reyestri",
		ViewPerm:   permission.ComponentsView,
		ManagePerm: permission.ComponentsManage,
		Empty:      emptyState,
		Messages:   resourceMessages("Uzel"),
		Filters:    []filter.Descriptor{locomotiveFilter, organizationFilter},
		Columns: []table.Column[models.ComponentRegistryEntry]{
			{Key: "locomotive", Header: "Lokomotiv", Accessor: func(e models.ComponentRegistryEntry) string { return e.LocomotiveNumber }},
			{Key: "componentName", Header: "Uzel", Accessor: func(e models.ComponentRegistryEntry) string { return e.ComponentName }},
			{Key: "serialNumber", Header: "Zavod raqami", Accessor: func(e models.ComponentRegistryEntry) string { return e.SerialNumber }},
			{Key: "installedOn", Header: "O'rnatilgan", Accessor: func(e models.ComponentRegistryEntry) string { return deref(e.InstalledOn) }},
			{Key: "measurements", Header: "O'lchovlar", Accessor: func(e models.ComponentRegistryEntry) string { return measurementsText(e.Measurements) }},
		},
		List: func(c Call, p filter.Params) ([]models.ComponentRegistryEntry, int, error) {
			return h.store.ListComponents(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.ComponentRegistryEntry, error) {
			return h.store.GetComponent(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.ComponentInput) (*models.ComponentRegistryEntry, error) {
			return h.store.CreateComponent(c.Ctx, c.Scope(), in)
		},
		Update: func(c Call, id int64, in *models.ComponentInput) (*models.ComponentRegistryEntry, error) {
			return h.store.UpdateComponent(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteComponents(c.Ctx, c.Scope(), ids)
		},
	}
}

func (h *Handler) bulletins() *Resource[models.Bulletin, models.BulletinInput] {
	return &Resource[models.Bulletin, models.BulletinInput]{
		Name:       cache.Bulletins,
		Title:      "Byulletenlar",
		ViewPerm:   permission.BulletinsView,
		ManagePerm: permission.BulletinsManage,
		Empty:      emptyState,
		Messages:   resourceMessages("Byulleten"),
		Filters:    []filter.Descriptor{organizationFilter},
		Columns: []table.Column[models.Bulletin]{
			{Key: "name", Header: "Nomi", Accessor: func(b models.Bulletin) string { return b.Name }},
			{Key: "description", Header: "Tavsif", Accessor: func(b models.Bulletin) string { return b.Description }},
			{Key: "columns", Header: "Ustunlar soni", Accessor: func(b models.Bulletin) string { return strconv.Itoa(len(b.Columns)) }},
			{Key: "rowCount", Header: "Yozuvlar soni", Accessor: func(b models.Bulletin) string { return strconv.Itoa(b.RowCount) }},
		},
		List: func(c Call, p filter.Params) ([]models.Bulletin, int, error) {
			return h.store.ListBulletins(c.Ctx, c.Scope(), p)
		},
		Get: func(c Call, id int64) (*models.Bulletin, error) {
			return h.store.GetBulletin(c.Ctx, c.Scope(), id)
		},
		Create: func(c Call, in *models.BulletinInput) (*models.Bulletin, error) {
			return h.store.CreateBulletin(c.Ctx, c.Scope(), in)
		},
		Update: func(c Call, id int64, in *models.BulletinInput) (*models.Bulletin, error) {
			return h.store.UpdateBulletin(c.Ctx, c.Scope(), id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteBulletins(c.Ctx, c.Scope(), ids)
		},
		// общий бюллетень виден всем, но менять его может только администратор
		RowGuard: func(c Call, b models.Bulletin) table.RowActions {
			allowed := permission.Allowed(c.Session, permission.BulletinsManage) && c.Session.OwnsOrganization(b.OrganizationID)
			return table.RowActions{Edit: allowed, Delete: allowed}
		},
	}
}

func (h *Handler) bulletinRows() *Resource[models.BulletinRow, models.BulletinRowInput] {
	return &Resource[models.BulletinRow, models.BulletinRowInput]{
		Name:       cache.BulletinRows,
		Title:      "Byulleten yozuvlari",
		ViewPerm:   permission.BulletinsView,
		ManagePerm: permission.BulletinRowsEdit,
		Empty:      emptyState,
		Messages:   resourceMessages("Yozuv"),
		ParentVar:  "bulletinId",
		List: func(c Call, p filter.Params) ([]models.BulletinRow, int, error) {
			return h.store.ListBulletinRows(c.Ctx, c.Scope(), c.ParentID, p)
		},
		Get: func(c Call, id int64) (*models.BulletinRow, error) {
			return h.store.GetBulletinRow(c.Ctx, c.Scope(), c.ParentID, id)
		},
		Create: func(c Call, in *models.BulletinRowInput) (*models.BulletinRow, error) {
			return h.store.CreateBulletinRow(c.Ctx, c.Scope(), c.ParentID, in)
		},
		Update: func(c Call, id int64, in *models.BulletinRowInput) (*models.BulletinRow, error) {
			return h.store.UpdateBulletinRow(c.Ctx, c.Scope(), c.ParentID, id, in)
		},
		Delete: func(c Call, ids []int64) error {
			return h.store.DeleteBulletinRows(c.Ctx, c.Scope(), c.ParentID, ids)
		},
		Document: h.bulletinDocument,
	}
}

// bulletinDocument выгружает строки бюллетеня по его собственным столбцам.
// Значения столбцов-классификаторов заменяются названиями элементов.
func (h *Handler) bulletinDocument(c Call, p filter.Params) (export.Document, error) {
	b, err := h.store.GetBulletin(c.Ctx, c.Scope(), c.ParentID)
	if err != nil {
		return export.Document{}, err
	}
	classificators, err := h.store.GetClassificatorsByIDs(c.Ctx, b.ClassificatorIDs())
	if err != nil {
		return export.Document{}, err
	}
	rows, _, err := h.store.ListBulletinRows(c.Ctx, c.Scope(), b.ID, p)
	if err != nil {
		return export.Document{}, err
	}

	cols := make([]table.Column[models.BulletinRow], 0, len(b.Columns))
	for _, col := range b.Columns {
		names := map[string]string{}
		if col.Type == models.ColumnClassificator && col.ClassificatorID != nil {
			if cl, ok := classificators[*col.ClassificatorID]; ok {
				for _, e := range cl.Elements {
					names[e.ID] = e.Name
				}
			}
		}
		cols = append(cols, table.Column[models.BulletinRow]{
			Key:    col.Key,
			Header: col.Name,
			Accessor: func(r models.BulletinRow) string {
				v := r.Values[col.Key]
				if name, ok := names[v]; ok {
					return name
				}
				return v
			},
		})
	}
	headers, matrix := table.Matrix(cols, rows)
	return export.Document{Title: b.Name, Headers: headers, Rows: matrix}, nil
}
