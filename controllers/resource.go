package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"lokomotiv_server_go/export"
	"lokomotiv_server_go/filter"
	"lokomotiv_server_go/models"
	"lokomotiv_server_go/permission"
	"lokomotiv_server_go/table"
)

// Call - контекст одного вызова ресурса.
type Call struct {
	Ctx      context.Context
	Session  *permission.Session
	ParentID int64
}

func (c Call) Scope() models.Scope {
	return c.Session.Scope()
}

// Resource описывает CRUD-ресурс: права, фильтры, колонки выгрузки и операции хранилища.
// In - входной DTO формы; если *In реализует models.Validator, он проверяется перед сохранением.
type Resource[T any, In any] struct {
	Name       string
	Title      string
	ViewPerm   string
	ManagePerm string
	Filters    []filter.Descriptor
	Columns    []table.Column[T]
	Empty      table.EmptyState
	Messages   messages
	// ParentVar - имя переменной пути родителя (строки бюллетеня).
	ParentVar string
	// PerUserActions - действия над строками зависят от самого пользователя, а не только от роли.
	PerUserActions bool

	List   func(c Call, p filter.Params) ([]T, int, error)
	Get    func(c Call, id int64) (*T, error)
	Create func(c Call, in *In) (*T, error)
	Update func(c Call, id int64, in *In) (*T, error)
	Delete func(c Call, ids []int64) error

	// RowGuard - действия над строкой; по умолчанию edit/delete по ManagePerm.
	RowGuard func(c Call, item T) table.RowActions
	// BeforeDelete - дополнительная проверка перед удалением.
	BeforeDelete func(c Call, ids []int64) error
	// Document - своя выгрузка вместо колонок Columns.
	Document func(c Call, p filter.Params) (export.Document, error)
}

type bulkDeleteRequest struct {
	IDs []int64 `json:"ids"`
}

// Register подключает маршруты ресурса к подроутеру.
func (res *Resource[T, In]) Register(r *mux.Router, h *Handler) {
	view := permission.Require(res.ViewPerm)
	manage := permission.Require(res.ManagePerm)
	exportPerm := permission.Require(permission.ReportsExport)

	r.Handle("", view(res.list(h))).Methods(http.MethodGet)
	r.Handle("/filters", view(res.filters())).Methods(http.MethodGet)
	r.Handle("/export", view(exportPerm(res.export(h)))).Methods(http.MethodGet)
	r.Handle("/bulk-delete", manage(res.bulkDelete(h))).Methods(http.MethodPost)
	r.Handle("/{id:[0-9]+}", view(res.get(h))).Methods(http.MethodGet)
	r.Handle("", manage(res.create(h))).Methods(http.MethodPost)
	r.Handle("/{id:[0-9]+}", manage(res.update(h))).Methods(http.MethodPut)
	r.Handle("/{id:[0-9]+}", manage(res.delete(h))).Methods(http.MethodDelete)
}

func (res *Resource[T, In]) call(r *http.Request) (Call, bool) {
	c := Call{Ctx: r.Context(), Session: permission.FromContext(r.Context())}
	if res.ParentVar != "" {
		id, ok := pathID(r, res.ParentVar)
		if !ok {
			return c, false
		}
		c.ParentID = id
	}
	return c, true
}

func (res *Resource[T, In]) guard(c Call, item T) table.RowActions {
	if res.RowGuard != nil {
		return res.RowGuard(c, item)
	}
	allowed := permission.Allowed(c.Session, res.ManagePerm)
	return table.RowActions{Edit: allowed, Delete: allowed}
}

// cacheVariant - часть ключа кэша, от которой зависят действия над строками.
func (res *Resource[T, In]) cacheVariant(c Call) string {
	v := string(c.Session.Role)
	if res.PerUserActions {
		v += ":" + strconv.FormatInt(c.Session.UserID, 10)
	}
	if res.ParentVar != "" {
		v += "|" + strconv.FormatInt(c.ParentID, 10)
	}
	return v
}

// list godoc
// @Summary Постраничный список с фильтрами
// @Produce json
// @Success 200 {object} table.Page
func (res *Resource[T, In]) list(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := res.call(r)
		if !ok {
			respondError(w, http.StatusBadRequest, msgBadID)
			return
		}
		p, err := filter.Parse(r.URL.Query(), res.Filters)
		if err != nil {
			respondError(w, http.StatusBadRequest, msgBadFilter)
			return
		}

		key := res.cacheVariant(c) + "|" + p.Encode()
		if raw, ok := h.cache.Get(c.Ctx, res.Name, c.Scope(), key); ok {
			respondRaw(w, raw)
			return
		}
		gen := h.cache.Generation(res.Name)

		items, total, err := res.List(c, p)
		if err != nil {
			respondStoreError(c.Ctx, w, h.log, "list "+res.Name, err)
			return
		}
		page := table.NewPage(items, total, p.Page, p.PageSize, func(item T) table.RowActions {
			return res.guard(c, item)
		}, res.Empty)

		raw, err := json.Marshal(page)
		if err != nil {
			respondStoreError(c.Ctx, w, h.log, "encode "+res.Name, err)
			return
		}
		h.cache.Set(c.Ctx, res.Name, c.Scope(), key, gen, raw)
		respondRaw(w, raw)
	}
}

// filters отдает описание панели фильтров ресурса.
func (res *Resource[T, In]) filters() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		descs := res.Filters
		if descs == nil {
			descs = []filter.Descriptor{}
		}
		respondJSON(w, http.StatusOK, descs)
	}
}

func (res *Resource[T, In]) get(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := res.call(r)
		id, idOK := pathID(r, "id")
		if !ok || !idOK {
			respondError(w, http.StatusBadRequest, msgBadID)
			return
		}
		item, err := res.Get(c, id)
		if err != nil {
			respondStoreError(c.Ctx, w, h.log, "get "+res.Name, err)
			return
		}
		respondJSON(w, http.StatusOK, item)
	}
}

// decodeInput читает и проверяет форму. false - ответ уже отправлен.
func (res *Resource[T, In]) decodeInput(w http.ResponseWriter, r *http.Request, mode models.FormMode) (*In, bool) {
	in := new(In)
	if err := decodeJSON(r, in); err != nil {
		respondError(w, http.StatusBadRequest, msgBadRequest)
		return nil, false
	}
	if v, ok := any(in).(models.Validator); ok {
		if err := v.Validate(mode); err != nil {
			respondValidation(w, err)
			return nil, false
		}
	}
	return in, true
}

// create godoc
// @Summary Создание записи
// @Accept json
// @Produce json
// @Success 201 {object} mutationBody
func (res *Resource[T, In]) create(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := res.call(r)
		if !ok {
			respondError(w, http.StatusBadRequest, msgBadID)
			return
		}
		in, ok := res.decodeInput(w, r, models.ModeCreate)
		if !ok {
			return
		}
		item, err := res.Create(c, in)
		if err != nil {
			respondStoreError(c.Ctx, w, h.log, "create "+res.Name, err)
			return
		}
		h.cache.Invalidate(c.Ctx, res.Name)
		h.log.Info(c.Ctx, "record created", "resource", res.Name, "user", c.Session.Username)
		respondJSON(w, http.StatusCreated, mutationBody{Message: res.Messages.Created, Data: item})
	}
}

// update godoc
// @Summary Редактирование записи. ID берется из пути, ID в теле игнорируется.
// @Accept json
// @Produce json
// @Success 200 {object} mutationBody
func (res *Resource[T, In]) update(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := res.call(r)
		id, idOK := pathID(r, "id")
		if !ok || !idOK {
			respondError(w, http.StatusBadRequest, msgBadID)
			return
		}
		in, ok := res.decodeInput(w, r, models.ModeEdit)
		if !ok {
			return
		}
		item, err := res.Update(c, id, in)
		if err != nil {
			respondStoreError(c.Ctx, w, h.log, "update "+res.Name, err)
			return
		}
		h.cache.Invalidate(c.Ctx, res.Name)
		h.log.Info(c.Ctx, "record updated", "resource", res.Name, "id", id, "user", c.Session.Username)
		respondJSON(w, http.StatusOK, mutationBody{Message: res.Messages.Updated, Data: item})
	}
}

func (res *Resource[T, In]) delete(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := res.call(r)
		id, idOK := pathID(r, "id")
		if !ok || !idOK {
			respondError(w, http.StatusBadRequest, msgBadID)
			return
		}
		if res.remove(w, h, c, []int64{id}) {
			respondJSON(w, http.StatusOK, mutationBody{Message: res.Messages.Deleted})
		}
	}
}

// bulkDelete godoc
// @Summary Удаление нескольких записей в одной транзакции
// @Accept json
// @Param body body bulkDeleteRequest true "ids"
// @Success 200 {object} mutationBody
func (res *Resource[T, In]) bulkDelete(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := res.call(r)
		if !ok {
			respondError(w, http.StatusBadRequest, msgBadID)
			return
		}
		var req bulkDeleteRequest
		if err := decodeJSON(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, msgBadRequest)
			return
		}
		if len(req.IDs) == 0 {
			respondError(w, http.StatusBadRequest, msgNoIDs)
			return
		}
		if res.remove(w, h, c, req.IDs) {
			respondJSON(w, http.StatusOK, mutationBody{Message: res.Messages.BulkDeleted})
		}
	}
}

func (res *Resource[T, In]) remove(w http.ResponseWriter, h *Handler, c Call, ids []int64) bool {
	if res.BeforeDelete != nil {
		if err := res.BeforeDelete(c, ids); err != nil {
			respondStoreError(c.Ctx, w, h.log, "delete "+res.Name, err)
			return false
		}
	}
	if err := res.Delete(c, ids); err != nil {
		respondStoreError(c.Ctx, w, h.log, "delete "+res.Name, err)
		return false
	}
	h.cache.Invalidate(c.Ctx, res.Name)
	h.log.Info(c.Ctx, "records deleted", "resource", res.Name, "ids", ids, "user", c.Session.Username)
	return true
}

// export godoc
// @Summary Выгрузка отфильтрованного списка в Word (.doc) или Excel (.xls)
// @Param format query string false "doc | xls"
// @Produce application/msword
// @Produce application/vnd.ms-excel
func (res *Resource[T, In]) export(h *Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, ok := res.call(r)
		if !ok {
			respondError(w, http.StatusBadRequest, msgBadID)
			return
		}
		format, err := export.ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			respondError(w, http.StatusBadRequest, msgExportFormat)
			return
		}
		p, err := filter.Parse(r.URL.Query(), res.Filters)
		if err != nil {
			respondError(w, http.StatusBadRequest, msgBadFilter)
			return
		}
		p = p.All(export.MaxRows)

		var doc export.Document
		if res.Document != nil {
			doc, err = res.Document(c, p)
		} else {
			doc, err = res.document(c, p)
		}
		if err != nil {
			respondStoreError(c.Ctx, w, h.log, "export "+res.Name, err)
			return
		}
		doc.GeneratedAt = h.now()

		var buf bytes.Buffer
		if err := export.Render(&buf, format, doc); err != nil {
			respondStoreError(c.Ctx, w, h.log, "export "+res.Name, err)
			return
		}
		w.Header().Set("Content-Type", format.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(res.Name, format, doc.GeneratedAt)))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(buf.Bytes())
	}
}

func (res *Resource[T, In]) document(c Call, p filter.Params) (export.Document, error) {
	items, _, err := res.List(c, p)
	if err != nil {
		return export.Document{}, err
	}
	headers, rows := table.Matrix(res.Columns, items)
	return export.Document{Title: res.Title, Headers: headers, Rows: rows}, nil
}
