package ocpi

import (
	"context"
	"emsp/entity/cdr"
	"emsp/entity/location"
	"emsp/entity/session"
	"emsp/entity/tariff"
	"emsp/entity/token"
	"emsp/ocpi/client"
	"emsp/ocpi/envelope"
	"emsp/ocpi/options"
	"emsp/ocpi/versions"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Query limits a list request; zero values are left out of the url.
type Query struct {
	DateFrom time.Time
	DateTo   time.Time
	Offset   int
	Limit    int
}

func (q Query) values() url.Values {
	values := url.Values{}
	if !q.DateFrom.IsZero() {
		values.Set("date_from", q.DateFrom.UTC().Format(time.RFC3339))
	}
	if !q.DateTo.IsZero() {
		values.Set("date_to", q.DateTo.UTC().Format(time.RFC3339))
	}
	if q.Offset > 0 {
		values.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		values.Set("limit", strconv.Itoa(q.Limit))
	}
	return values
}

func (o *OCPI) GetLocations(ctx context.Context, query Query, opts ...options.Option) *envelope.Response[[]*location.Location] {
	return request[[]*location.Location](ctx, o, versions.Locations, versions.Sender, http.MethodGet, "", query.values(), nil, o.call(opts))
}

func (o *OCPI) GetTariffs(ctx context.Context, query Query, opts ...options.Option) *envelope.Response[[]*tariff.Tariff] {
	return request[[]*tariff.Tariff](ctx, o, versions.Tariffs, versions.Sender, http.MethodGet, "", query.values(), nil, o.call(opts))
}

func (o *OCPI) GetSessions(ctx context.Context, query Query, opts ...options.Option) *envelope.Response[[]*session.Session] {
	return request[[]*session.Session](ctx, o, versions.Sessions, versions.Sender, http.MethodGet, "", query.values(), nil, o.call(opts))
}

func (o *OCPI) GetCDRs(ctx context.Context, query Query, opts ...options.Option) *envelope.Response[[]*cdr.Cdr] {
	return request[[]*cdr.Cdr](ctx, o, versions.Cdrs, versions.Sender, http.MethodGet, "", query.values(), nil, o.call(opts))
}

// GetToken reads back a token the CPO holds for us; an empty tokenType means RFID.
func (o *OCPI) GetToken(ctx context.Context, countryCode, partyId, uid string, tokenType token.Type, opts ...options.Option) (*envelope.Response[*token.Token], error) {
	path, err := tokenPath(countryCode, partyId, uid)
	if err != nil {
		return nil, err
	}
	return request[*token.Token](ctx, o, versions.Tokens, versions.Receiver, http.MethodGet, path, tokenTypeQuery(tokenType), nil, o.call(opts)), nil
}

// PutToken pushes the full token object to the CPO.
func (o *OCPI) PutToken(ctx context.Context, tok *token.Token, opts ...options.Option) (*envelope.Response[json.RawMessage], error) {
	if tok == nil {
		return nil, fmt.Errorf("%w: token is nil", ErrInvalidArgument)
	}
	path, err := tokenPath(tok.CountryCode, tok.PartyId, tok.Uid)
	if err != nil {
		return nil, err
	}
	return request[json.RawMessage](ctx, o, versions.Tokens, versions.Receiver, http.MethodPut, path, tokenTypeQuery(tok.Type), tok, o.call(opts)), nil
}

func (o *OCPI) PatchToken(ctx context.Context, countryCode, partyId, uid string, tokenType token.Type, patch *token.Patch, opts ...options.Option) (*envelope.Response[json.RawMessage], error) {
	if patch == nil {
		return nil, fmt.Errorf("%w: patch is nil", ErrInvalidArgument)
	}
	path, err := tokenPath(countryCode, partyId, uid)
	if err != nil {
		return nil, err
	}
	if patch.LastUpdated == "" {
		patch.LastUpdated = time.Now().UTC().Format(time.RFC3339)
	}
	return request[json.RawMessage](ctx, o, versions.Tokens, versions.Receiver, http.MethodPatch, path, tokenTypeQuery(tokenType), patch, o.call(opts)), nil
}

func tokenPath(countryCode, partyId, uid string) (string, error) {
	if countryCode == "" || partyId == "" || uid == "" {
		return "", fmt.Errorf("%w: country code, party id and uid are required", ErrInvalidArgument)
	}
	return "/" + url.PathEscape(countryCode) + "/" + url.PathEscape(partyId) + "/" + url.PathEscape(uid), nil
}

func tokenTypeQuery(tokenType token.Type) url.Values {
	values := url.Values{}
	if tokenType != "" && tokenType != token.Rfid {
		values.Set("type", string(tokenType))
	}
	return values
}

// request resolves the module endpoint and runs one exchange with it. Every
// failure is folded into the returned envelope.
func request[T any](ctx context.Context, o *OCPI, module versions.ModuleId, role versions.Role, method, path string, query url.Values, body any, call options.Call) (result *envelope.Response[T]) {
	feature := fmt.Sprintf("%s %s", method, module)
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error(feature, fmt.Errorf("panic: %v", r))
			result = envelope.Failure[T](call.RequestId, call.CorrelationId, fmt.Sprintf("%v", r), "panic")
		}
	}()
	if ctx == nil {
		ctx = context.Background()
	}

	resolved, ok, err := o.resolver.Resolve(ctx, call.Version, module, role)
	if err != nil {
		o.logger.Warn(fmt.Sprintf("%s: %v", feature, err))
		return envelope.FromError[T](call.RequestId, call.CorrelationId, err)
	}
	if !ok {
		o.logger.FeatureEvent(feature, call.RequestId, envelope.MessageNoRemoteUrl)
		return envelope.NoRemoteUrl[T](call.RequestId, call.CorrelationId)
	}

	target := strings.TrimRight(resolved.Url, "/") + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req := &client.Request{
		Method:  method,
		Url:     target,
		Timeout: call.Timeout,
	}
	if body != nil {
		req.Body, err = json.Marshal(body)
		if err != nil {
			return envelope.FromError[T](call.RequestId, call.CorrelationId, fmt.Errorf("encoding %s body: %w", module, err))
		}
	}

	response, err := envelope.Exchange[T](ctx, o.executor, o.observers, req, call.RequestId, call.CorrelationId)
	if err != nil {
		o.logger.Warn(fmt.Sprintf("%s: %v", feature, err))
		return envelope.FromError[T](call.RequestId, call.CorrelationId, err)
	}
	o.logger.FeatureEvent(feature, call.RequestId, response.String())
	return response
}
