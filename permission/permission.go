// Пакет permission содержит таблицу прав по ролям, сессию запроса
// и HTTP-проверку прав поверх них.
package permission

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"

	"lokomotiv_server_go/models"
)

// Права. Формат: <ресурс>.<действие>.
const (
	OrganizationsView   = "organizations.view"
	OrganizationsManage = "organizations.manage"
	UsersView           = "users.view"
	UsersManage         = "users.manage"
	ClassificatorsView  = "classificators.view"
	ClassificatorsEdit  = "classificators.manage"
	BulletinsView       = "bulletins.view"
	BulletinsManage     = "bulletins.manage"
	BulletinRowsEdit    = "bulletins.rows.edit"
	LocomotivesView     = "locomotives.view"
	LocomotivesManage   = "locomotives.manage"
	InspectionsView     = "inspections.view"
	InspectionsManage   = "inspections.manage"
	DelaysView          = "delays.view"
	DelaysManage        = "delays.manage"
	DefectsView         = "defective_works.view"
	DefectsManage       = "defective_works.manage"
	ReplacementsView    = "replacement_oils.view"
	ReplacementsManage  = "replacement_oils.manage"
	ComponentsView      = "components.view"
	ComponentsManage    = "components.manage"
	ReportsExport       = "reports.export"
)

var viewPerms = []string{
	OrganizationsView, UsersView, ClassificatorsView, BulletinsView, LocomotivesView,
	InspectionsView, DelaysView, DefectsView, ReplacementsView, ComponentsView,
}

var operatorPerms = []string{
	BulletinRowsEdit, InspectionsManage, DelaysManage, DefectsManage, ReplacementsManage,
	ComponentsManage, ReportsExport,
}

var managerPerms = []string{
	BulletinsManage, LocomotivesManage, ClassificatorsEdit,
}

var adminPerms = []string{
	OrganizationsManage, UsersManage,
}

var table = buildTable()

func buildTable() map[models.Role]map[string]bool {
	set := func(groups ...[]string) map[string]bool {
		m := make(map[string]bool)
		for _, g := range groups {
			for _, p := range g {
				m[p] = true
			}
		}
		return m
	}
	return map[models.Role]map[string]bool{
		models.RoleViewer:   set(viewPerms, []string{ReportsExport}),
		models.RoleOperator: set(viewPerms, operatorPerms),
		models.RoleManager:  set(viewPerms, operatorPerms, managerPerms),
		models.RoleAdmin:    set(viewPerms, operatorPerms, managerPerms, adminPerms),
	}
}

// Session - аутентифицированный пользователь текущего запроса.
type Session struct {
	UserID         int64
	Username       string
	Role           models.Role
	OrganizationID *int64
}

// IsAdmin сообщает, что у пользователя нет ограничения по организации.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == models.RoleAdmin
}

// Scope возвращает ограничение выборки. Пользователь без организации
// (кроме администратора) не видит ничего: scope на несуществующую организацию 0.
func (s *Session) Scope() models.Scope {
	if s.IsAdmin() {
		return models.Scope{}
	}
	if s == nil || s.OrganizationID == nil {
		none := int64(0)
		return models.Scope{OrganizationID: &none}
	}
	org := *s.OrganizationID
	return models.Scope{OrganizationID: &org}
}

// OwnsOrganization - может ли пользователь менять записи организации orgID (nil - общие записи).
func (s *Session) OwnsOrganization(orgID *int64) bool {
	if s.IsAdmin() {
		return true
	}
	if s == nil || s.OrganizationID == nil || orgID == nil {
		return false
	}
	return *s.OrganizationID == *orgID
}

// Allowed проверяет право. Пустое право разрешено всегда, отсутствие сессии - запрет.
func Allowed(s *Session, perm string) bool {
	if perm == "" {
		return true
	}
	if s == nil {
		return false
	}
	return table[s.Role][perm]
}

// List возвращает отсортированный список прав роли.
func List(role models.Role) []string {
	perms := make([]string, 0, len(table[role]))
	for p := range table[role] {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

type ctxKey struct{}

// WithSession кладет сессию в контекст.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext достает сессию из контекста (nil, если запрос не аутентифицирован).
func FromContext(ctx context.Context) *Session {
	s, _ := ctx.Value(ctxKey{}).(*Session)
	return s
}

// Guard пропускает запрос в children, если у сессии есть право perm, иначе отдает fallback.
func Guard(perm string, children, fallback http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if Allowed(FromContext(r.Context()), perm) {
			children.ServeHTTP(w, r)
			return
		}
		fallback.ServeHTTP(w, r)
	})
}

// MsgForbidden - текст ответа при отсутствии права.
const MsgForbidden = "Bu amal uchun ruxsat yo'q"

// Forbidden - стандартный fallback: 403 с JSON-телом ошибки.
var Forbidden = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": MsgForbidden})
})

// Require - middleware для роутера: Guard с 403-ответом.
func Require(perm string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return Guard(perm, next, Forbidden)
	}
}
