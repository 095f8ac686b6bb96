// Пакет client - типизированный HTTP-клиент API администрирования депо.
// Каждый Resource соответствует одному экрану листинга.
package client

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"lokomotiv_server_go/export"
	"lokomotiv_server_go/models"
	"lokomotiv_server_go/table"
)

// MsgElementsDeleted - сообщение после удаления элементов классификатора.
const MsgElementsDeleted = "Elementlar muvaffaqiyatli o'chirildi"

// APIError - ответ сервера с кодом 4xx/5xx.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: %d %s %v", e.Status, e.Message, e.Fields)
}

type errorBody struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

// Mutation - ответ на создание или редактирование.
type Mutation[T any] struct {
	Message string `json:"message"`
	Data    *T     `json:"data"`
}

type messageBody struct {
	Message string `json:"message"`
}

// Client - клиент API. Повторных попыток нет: ошибка сразу возвращается вызывающему.
type Client struct {
	http *resty.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")+"/api").
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Client{http: c}
}

// SetToken задает токен для последующих запросов.
func (c *Client) SetToken(token string) {
	c.http.SetAuthToken(token)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	return c.http.R().SetContext(ctx).SetError(&errorBody{})
}

func check(resp *resty.Response, err error) error {
	if err != nil {
		return err
	}
	if !resp.IsError() {
		return nil
	}
	apiErr := &APIError{Status: resp.StatusCode()}
	if body, ok := resp.Error().(*errorBody); ok && body != nil {
		apiErr.Message = body.Error
		apiErr.Fields = body.Fields
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(resp.StatusCode())
	}
	return apiErr
}

// Login выполняет вход и запоминает полученный токен.
func (c *Client) Login(ctx context.Context, username, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	resp, err := c.request(ctx).
		SetBody(models.LoginRequest{Username: username, Password: password}).
		SetResult(&out).
		Post("/auth/login")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	c.SetToken(out.Token)
	return &out, nil
}

// Me возвращает текущего пользователя и его права.
func (c *Client) Me(ctx context.Context) (*models.UserPublicInfo, error) {
	var out models.UserPublicInfo
	resp, err := c.request(ctx).SetResult(&out).Get("/auth/me")
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile меняет ФИО и пароль текущего пользователя.
func (c *Client) UpdateProfile(ctx context.Context, in models.UpdateProfileRequest) (string, error) {
	var out messageBody
	resp, err := c.request(ctx).SetBody(in).SetResult(&out).Put("/auth/profile")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Resource - операции над одним ресурсом API.
type Resource[T any, In any] struct {
	c    *Client
	path string
}

func NewResource[T any, In any](c *Client, path string) *Resource[T, In] {
	return &Resource[T, In]{c: c, path: path}
}

func (r *Resource[T, In]) item(id int64) string {
	return r.path + "/" + strconv.FormatInt(id, 10)
}

// List загружает страницу по параметрам строки запроса (q, page, pageSize и фильтры).
func (r *Resource[T, In]) List(ctx context.Context, query url.Values) (*table.Page[T], error) {
	var out table.Page[T]
	resp, err := r.c.request(ctx).SetQueryParamsFromValues(query).SetResult(&out).Get(r.path)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T, In]) Get(ctx context.Context, id int64) (*T, error) {
	out := new(T)
	resp, err := r.c.request(ctx).SetResult(out).Get(r.item(id))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T, In]) Create(ctx context.Context, in *In) (*Mutation[T], error) {
	var out Mutation[T]
	resp, err := r.c.request(ctx).SetBody(in).SetResult(&out).Post(r.path)
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

// Update отправляет форму редактирования; ID записи берется из пути.
func (r *Resource[T, In]) Update(ctx context.Context, id int64, in *In) (*Mutation[T], error) {
	var out Mutation[T]
	resp, err := r.c.request(ctx).SetBody(in).SetResult(&out).Put(r.item(id))
	if err := check(resp, err); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Resource[T, In]) Delete(ctx context.Context, id int64) (string, error) {
	var out messageBody
	resp, err := r.c.request(ctx).SetResult(&out).Delete(r.item(id))
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

// BulkDelete удаляет записи одной транзакцией: либо все, либо ни одной.
func (r *Resource[T, In]) BulkDelete(ctx context.Context, ids []int64) (string, error) {
	var out messageBody
	resp, err := r.c.request(ctx).
		SetBody(map[string][]int64{"ids": ids}).
		SetResult(&out).
		Post(r.path + "/bulk-delete")
	if err := check(resp, err); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Export скачивает выгрузку и возвращает ее содержимое и имя файла.
func (r *Resource[T, In]) Export(ctx context.Context, query url.Values, format export.Format) ([]byte, string, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("format", string(format))
	resp, err := r.c.request(ctx).SetQueryParamsFromValues(q).Get(r.path + "/export")
	if err := check(resp, err); err != nil {
		return nil, "", err
	}
	name := ""
	if _, params, err := mime.ParseMediaType(resp.Header().Get("Content-Disposition")); err == nil {
		name = params["filename"]
	}
	return resp.Body(), name, nil
}

// ClassificatorsClient добавляет к ресурсу удаление отдельных элементов.
type ClassificatorsClient struct {
	*Resource[models.Classificator, models.ClassificatorInput]
}

// DeleteElements загружает классификатор и сохраняет его без указанных элементов.
// Если удалены все элементы, отправляется пустой список.
func (cc *ClassificatorsClient) DeleteElements(ctx context.Context, id int64, elementIDs []string) (string, error) {
	cl, err := cc.Get(ctx, id)
	if err != nil {
		return "", err
	}
	in := &models.ClassificatorInput{
		Name:        cl.Name,
		Description: cl.Description,
		Elements:    cl.WithoutElements(elementIDs),
	}
	if _, err := cc.Update(ctx, id, in); err != nil {
		return "", err
	}
	return MsgElementsDeleted, nil
}

func (c *Client) Organizations() *Resource[models.Organization, models.OrganizationInput] {
	return NewResource[models.Organization, models.OrganizationInput](c, "/organizations")
}

func (c *Client) Users() *Resource[models.User, models.UserInput] {
	return NewResource[models.User, models.UserInput](c, "/users")
}

func (c *Client) Classificators() *ClassificatorsClient {
	return &ClassificatorsClient{NewResource[models.Classificator, models.ClassificatorInput](c, "/classificators")}
}

func (c *Client) Bulletins() *Resource[models.Bulletin, models.BulletinInput] {
	return NewResource[models.Bulletin, models.BulletinInput](c, "/bulletins")
}

func (c *Client) BulletinRows(bulletinID int64) *Resource[models.BulletinRow, models.BulletinRowInput] {
	return NewResource[models.BulletinRow, models.BulletinRowInput](c, "/bulletins/"+strconv.FormatInt(bulletinID, 10)+"/rows")
}

func (c *Client) Locomotives() *Resource[models.Locomotive, models.LocomotiveInput] {
	return NewResource[models.Locomotive, models.LocomotiveInput](c, "/locomotives")
}

func (c *Client) Inspections() *Resource[models.Inspection, models.InspectionInput] {
	return NewResource[models.Inspection, models.InspectionInput](c, "/inspections")
}

func (c *Client) Delays() *Resource[models.DelayEntry, models.DelayEntryInput] {
	return NewResource[models.DelayEntry, models.DelayEntryInput](c, "/delays")
}

func (c *Client) DefectiveWorks() *Resource[models.DefectiveWorkEntry, models.DefectiveWorkInput] {
	return NewResource[models.DefectiveWorkEntry, models.DefectiveWorkInput](c, "/defective-works")
}

func (c *Client) ReplacementOils() *Resource[models.ReplacementOil, models.ReplacementOilInput] {
	return NewResource[models.ReplacementOil, models.ReplacementOilInput](c, "/replacement-oils")
}

func (c *Client) Components() *Resource[models.ComponentRegistryEntry, models.ComponentInput] {
	return NewResource[models.ComponentRegistryEntry, models.ComponentInput](c, "/components")
}
