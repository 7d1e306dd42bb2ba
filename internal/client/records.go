package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/basewire/basewire-go/internal/auth"
	"github.com/basewire/basewire-go/internal/constants"
	bwhttp "github.com/basewire/basewire-go/internal/http"
	"github.com/basewire/basewire-go/pkg/basewire"
)

// RecordsClient implements basewire.RecordsClient for one collection.
type RecordsClient struct {
	client     *Client
	collection string
}

// NewRecordsClient creates a records client for a collection.
func NewRecordsClient(c *Client, collection string) *RecordsClient {
	return &RecordsClient{client: c, collection: collection}
}

func (r *RecordsClient) basePath() string {
	return "/api/collections/" + url.PathEscape(r.collection)
}

func (r *RecordsClient) crudPath() string {
	return r.basePath() + "/records"
}

func (r *RecordsClient) recordPath(recordID string) string {
	return r.crudPath() + "/" + url.PathEscape(recordID)
}

// GetList fetches one page of records.
func (r *RecordsClient) GetList(ctx context.Context, page, perPage int, opts *basewire.ListOptions) (*basewire.RecordList, error) {
	if page <= 0 || perPage <= 0 {
		return nil, fmt.Errorf("%w: %w: page=%d perPage=%d",
			basewire.ErrValidation, basewire.ErrPageOutOfRange, page, perPage)
	}

	query, err := opts.ToValues()
	if err != nil {
		return nil, err
	}

	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("perPage", fmt.Sprintf("%d", perPage))

	var result basewire.RecordList

	err = r.getCached(ctx, r.crudPath(), query, &result, "record list")
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// GetFullList fetches every record of the collection, paging internally.
func (r *RecordsClient) GetFullList(ctx context.Context, opts *basewire.ListOptions) ([]*basewire.Record, error) {
	perPage := constants.DefaultPageSize
	if opts != nil && opts.PerPage > 0 {
		perPage = opts.PerPage
	}

	return basewire.FetchAll(ctx, func(ctx context.Context, page, perPage int) (*basewire.RecordList, error) {
		pageOpts := basewire.ListOptions{SkipTotal: true}
		if opts != nil {
			pageOpts = *opts
			pageOpts.SkipTotal = true
		}

		return r.GetList(ctx, page, perPage, &pageOpts)
	}, &basewire.PaginationOptions{PageSize: perPage})
}

// GetFirstListItem returns the first record matching the filter.
func (r *RecordsClient) GetFirstListItem(ctx context.Context, filter string, opts *basewire.ListOptions) (*basewire.Record, error) {
	if filter == "" {
		return nil, fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingFilter)
	}

	firstOpts := basewire.ListOptions{}
	if opts != nil {
		firstOpts = *opts
	}

	firstOpts.Filter = filter
	firstOpts.SkipTotal = true

	result, err := r.GetList(ctx, 1, 1, &firstOpts)
	if err != nil {
		return nil, err
	}

	if len(result.Items) == 0 {
		return nil, &basewire.APIError{
			URL:     r.client.BaseURL() + r.crudPath(),
			Status:  http.StatusNotFound,
			Message: "The requested resource wasn't found.",
		}
	}

	return result.Items[0], nil
}

// GetOne fetches a single record by ID.
func (r *RecordsClient) GetOne(ctx context.Context, recordID string, opts *basewire.ListOptions) (*basewire.Record, error) {
	if recordID == "" {
		return nil, fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingRecordID)
	}

	query, err := opts.ToValues()
	if err != nil {
		return nil, err
	}

	var record basewire.Record

	err = r.getCached(ctx, r.recordPath(recordID), query, &record, "record")
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// getCached routes a GET through the cache manager when one is configured.
func (r *RecordsClient) getCached(ctx context.Context, path string, query url.Values, out any, what string) error {
	cache := r.client.cache
	cacheable := cache != nil && cache.Policy().ShouldCache(http.MethodGet, path, http.StatusOK)

	var key string

	if cacheable {
		params := make(map[string]string, len(query))
		for name := range query {
			params[name] = query.Get(name)
		}

		key = cache.GetCacheKey(http.MethodGet, path, params)

		data, err := cache.Get(ctx, key)
		if err == nil {
			return decodeJSON(data, out, what)
		}
	}

	resp, err := r.client.httpClient.Get(ctx, path, query)
	if err != nil {
		return err
	}

	err = decodeJSON(resp.Body, out, what)
	if err != nil {
		return err
	}

	if cacheable {
		_ = cache.Set(ctx, key, resp.Body, constants.DefaultCacheTTL)
	}

	return nil
}

// Create inserts a new record.
func (r *RecordsClient) Create(ctx context.Context, body map[string]any, opts *basewire.ListOptions) (*basewire.Record, error) {
	query, err := opts.ToValues()
	if err != nil {
		return nil, err
	}

	resp, err := r.client.httpClient.Do(ctx, &bwhttp.Request{
		Method: http.MethodPost,
		Path:   r.crudPath(),
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	var record basewire.Record

	err = decodeJSON(resp.Body, &record, "created record")
	if err != nil {
		return nil, err
	}

	r.invalidateCache(ctx)

	return &record, nil
}

// Update patches an existing record. When the updated record is the
// authenticated one, the session's copy is synced.
func (r *RecordsClient) Update(ctx context.Context, recordID string, body map[string]any, opts *basewire.ListOptions) (*basewire.Record, error) {
	if recordID == "" {
		return nil, fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingRecordID)
	}

	query, err := opts.ToValues()
	if err != nil {
		return nil, err
	}

	resp, err := r.client.httpClient.Do(ctx, &bwhttp.Request{
		Method: http.MethodPatch,
		Path:   r.recordPath(recordID),
		Query:  query,
		Body:   body,
	})
	if err != nil {
		return nil, err
	}

	var record basewire.Record

	err = decodeJSON(resp.Body, &record, "updated record")
	if err != nil {
		return nil, err
	}

	r.invalidateCache(ctx)
	r.syncAuthRecord(&record)

	return &record, nil
}

// Delete removes a record. Deleting the authenticated record clears the
// session.
func (r *RecordsClient) Delete(ctx context.Context, recordID string) error {
	if recordID == "" {
		return fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingRecordID)
	}

	_, err := r.client.httpClient.Delete(ctx, r.recordPath(recordID))
	if err != nil {
		return err
	}

	r.invalidateCache(ctx)

	if r.isAuthRecord(recordID) {
		return r.client.session.Clear()
	}

	return nil
}

// invalidateCache drops every cached read for the collection: the single
// record entries and any list pages that may contain the mutated record.
func (r *RecordsClient) invalidateCache(ctx context.Context) {
	if r.client.cache == nil {
		return
	}

	_ = r.client.cache.DeletePrefix(ctx, http.MethodGet+":"+r.crudPath())
}

func (r *RecordsClient) isAuthRecord(recordID string) bool {
	current := r.client.session.Record()

	return current != nil && current.ID == recordID &&
		(current.CollectionName == r.collection || current.CollectionID == r.collection)
}

func (r *RecordsClient) syncAuthRecord(updated *basewire.Record) {
	if !r.isAuthRecord(updated.ID) {
		return
	}

	cred := r.client.session.Snapshot()
	if cred == nil {
		return
	}

	cred.Record = updated

	_ = r.client.session.Set(cred)
}

// installAuth decodes an auth payload and installs it in the session.
func (r *RecordsClient) installAuth(resp *bwhttp.Response) (*basewire.AuthResponse, error) {
	var authResp basewire.AuthResponse

	err := decodeJSON(resp.Body, &authResp, "auth response")
	if err != nil {
		return nil, err
	}

	err = r.client.session.Set(&auth.Credential{
		Token:  authResp.Token,
		Record: authResp.Record,
	})
	if err != nil {
		return nil, err
	}

	return &authResp, nil
}

// AuthWithPassword authenticates with an identity/password pair.
func (r *RecordsClient) AuthWithPassword(ctx context.Context, identity, password string) (*basewire.AuthResponse, error) {
	resp, err := r.client.httpClient.Do(ctx, &bwhttp.Request{
		Method:          http.MethodPost,
		Path:            r.basePath() + "/auth-with-password",
		Body:            map[string]any{"identity": identity, "password": password},
		SkipAuthRefresh: true,
	})
	if err != nil {
		return nil, err
	}

	return r.installAuth(resp)
}

// AuthWithOTP authenticates with a one-time password.
func (r *RecordsClient) AuthWithOTP(ctx context.Context, otpID, password string) (*basewire.AuthResponse, error) {
	resp, err := r.client.httpClient.Do(ctx, &bwhttp.Request{
		Method:          http.MethodPost,
		Path:            r.basePath() + "/auth-with-otp",
		Body:            map[string]any{"otpId": otpID, "password": password},
		SkipAuthRefresh: true,
	})
	if err != nil {
		return nil, err
	}

	return r.installAuth(resp)
}

// RequestOTP requests a one-time password for an email.
func (r *RecordsClient) RequestOTP(ctx context.Context, email string) (*basewire.OTPResponse, error) {
	resp, err := r.client.httpClient.Post(ctx, r.basePath()+"/request-otp", map[string]any{
		"email": email,
	})
	if err != nil {
		return nil, err
	}

	var otp basewire.OTPResponse

	err = decodeJSON(resp.Body, &otp, "otp response")
	if err != nil {
		return nil, err
	}

	return &otp, nil
}

// AuthRefresh re-issues the current token. The refresh call itself never
// triggers another refresh.
func (r *RecordsClient) AuthRefresh(ctx context.Context) (*basewire.AuthResponse, error) {
	resp, err := r.client.httpClient.Do(ctx, &bwhttp.Request{
		Method:          http.MethodPost,
		Path:            r.basePath() + "/auth-refresh",
		SkipAuthRefresh: true,
	})
	if err != nil {
		return nil, err
	}

	return r.installAuth(resp)
}

// RequestPasswordReset sends a password reset email.
func (r *RecordsClient) RequestPasswordReset(ctx context.Context, email string) error {
	_, err := r.client.httpClient.Post(ctx, r.basePath()+"/request-password-reset", map[string]any{
		"email": email,
	})

	return err
}

// ConfirmPasswordReset completes a password reset.
func (r *RecordsClient) ConfirmPasswordReset(ctx context.Context, token, password, passwordConfirm string) error {
	_, err := r.client.httpClient.Post(ctx, r.basePath()+"/confirm-password-reset", map[string]any{
		"token":           token,
		"password":        password,
		"passwordConfirm": passwordConfirm,
	})

	return err
}

// RequestVerification sends a verification email.
func (r *RecordsClient) RequestVerification(ctx context.Context, email string) error {
	_, err := r.client.httpClient.Post(ctx, r.basePath()+"/request-verification", map[string]any{
		"email": email,
	})

	return err
}

// ConfirmVerification completes an email verification.
func (r *RecordsClient) ConfirmVerification(ctx context.Context, token string) error {
	_, err := r.client.httpClient.Post(ctx, r.basePath()+"/confirm-verification", map[string]any{
		"token": token,
	})

	return err
}

// RequestEmailChange starts an email change for the authenticated record.
func (r *RecordsClient) RequestEmailChange(ctx context.Context, newEmail string) error {
	_, err := r.client.httpClient.Post(ctx, r.basePath()+"/request-email-change", map[string]any{
		"newEmail": newEmail,
	})

	return err
}

// ConfirmEmailChange completes an email change.
func (r *RecordsClient) ConfirmEmailChange(ctx context.Context, token, password string) error {
	_, err := r.client.httpClient.Post(ctx, r.basePath()+"/confirm-email-change", map[string]any{
		"token":    token,
		"password": password,
	})

	return err
}

// ListAuthMethods lists the auth methods enabled for the collection.
func (r *RecordsClient) ListAuthMethods(ctx context.Context) (*basewire.AuthMethodsResponse, error) {
	resp, err := r.client.httpClient.Get(ctx, r.basePath()+"/auth-methods", nil)
	if err != nil {
		return nil, err
	}

	var methods basewire.AuthMethodsResponse

	err = decodeJSON(resp.Body, &methods, "auth methods")
	if err != nil {
		return nil, err
	}

	return &methods, nil
}

// Impersonate issues a token for another record (superusers only) and
// returns a fresh client authenticated as that record. The current
// client's session is untouched.
func (r *RecordsClient) Impersonate(ctx context.Context, recordID string, duration time.Duration) (basewire.Client, error) {
	if recordID == "" {
		return nil, fmt.Errorf("%w: %w", basewire.ErrValidation, basewire.ErrMissingRecordID)
	}

	body := map[string]any{}
	if duration > 0 {
		body["duration"] = int(duration.Seconds())
	}

	resp, err := r.client.httpClient.Post(ctx, r.basePath()+"/impersonate/"+url.PathEscape(recordID), body)
	if err != nil {
		return nil, err
	}

	var authResp basewire.AuthResponse

	err = decodeJSON(resp.Body, &authResp, "impersonate response")
	if err != nil {
		return nil, err
	}

	// The impersonated session is in-memory only; it must not clobber the
	// parent client's persisted credential.
	config := *r.client.config
	config.Token = ""
	config.Identity = ""
	config.Password = ""
	config.AuthStorePath = ""

	impersonated, err := New(ctx, &config)
	if err != nil {
		return nil, err
	}

	err = impersonated.session.Set(&auth.Credential{
		Token:  authResp.Token,
		Record: authResp.Record,
	})
	if err != nil {
		return nil, err
	}

	return impersonated, nil
}
