package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/leostudiooo/GOOSE/internal/config"
	"github.com/leostudiooo/GOOSE/internal/profile"
	"github.com/leostudiooo/GOOSE/internal/record"
	"github.com/leostudiooo/GOOSE/internal/route"
)

type fakeClient struct {
	calls  []string
	failOn string

	headers profile.SystemHeaders
	token   string

	startPayload  record.StartPayload
	finishPayload record.FinishPayload
	routes        []route.Route
}

func (f *fakeClient) step(name string) error {
	f.calls = append(f.calls, name)
	if f.failOn == name {
		return fmt.Errorf("%s blew up", name)
	}
	return nil
}

func (f *fakeClient) CheckTenant(context.Context) error { return f.step("checkTenant") }
func (f *fakeClient) CheckToken(context.Context) error  { return f.step("checkToken") }

func (f *fakeClient) UploadStartImage(_ context.Context, _ []byte) (string, error) {
	return "https://cdn.example/start.jpg", f.step("uploadStart")
}

func (f *fakeClient) UploadFinishImage(_ context.Context, _ []byte) (string, error) {
	return "https://cdn.example/finish.jpg", f.step("uploadFinish")
}

func (f *fakeClient) SubmitStart(_ context.Context, p record.StartPayload) (string, error) {
	f.startPayload = p
	return "record-7", f.step("submitStart")
}

func (f *fakeClient) SubmitFinish(_ context.Context, p record.FinishPayload) (bool, error) {
	f.finishPayload = p
	return true, f.step("submitFinish")
}

func (f *fakeClient) ListRoutes(context.Context) ([]route.Route, error) {
	return f.routes, f.step("listRoutes")
}

func testToken(t *testing.T) string {
	t.Helper()
	enc := base64.RawURLEncoding
	header := enc.EncodeToString([]byte(`{"alg":"none"}`))
	payload := enc.EncodeToString([]byte(`{"userid":"213230000"}`))
	return header + "." + payload + ".sig"
}

const headersYAML = `user_agent: "Mozilla/5.0 test"
miniapp_version: "3.3.7"
referer: "https://servicewechat.com/wx/page.html"
tenant: "NJ102"
`

const catalogYAML = `routes:
  - route_name: "Test田径场"
    rule_id: "25"
    plan_id: "10"
    route_rule: "Test校区"
    max_time: 12
    min_time: 4
    route_distance_km: 1.2
    rule_end_time: "22:00"
    rule_start_time: "06:00"
`

const trackJSON = `{
  "track": [
    {"lat": 31.88, "lng": 118.81, "sortNum": 0},
    {"lat": 31.88, "lng": 118.81, "sortNum": 1}
  ],
  "metadata": {
    "totalDistance": 0,
    "formattedDistance": "0.00",
    "totalTime": 600,
    "formattedTime": "00:10:00",
    "sampleTimeInterval": 2,
    "pointCount": 2,
    "createdAt": "2025-04-01 07:30:00"
  }
}`

func userYAMLRoute(t *testing.T, routeName, extra string) string {
	t.Helper()
	return `token: "` + testToken(t) + `"
date_time: "2025-04-01 07:30:00"
start_image: "images/start.jpg"
finish_image: "images/finish.jpg"
route: "` + routeName + `"
` + extra
}

func userYAML(t *testing.T, extra string) string {
	t.Helper()
	return userYAMLRoute(t, "Test田径场", extra)
}

func newTestService(t *testing.T, fake *fakeClient, userExtra string) *Service {
	t.Helper()
	fs := afero.NewMemMapFs()
	write := func(path, content string) {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	write("config/headers.yaml", headersYAML)
	write("config/user.yaml", userYAML(t, userExtra))
	write("config/route_group.yaml", catalogYAML)
	write("resources/default_tracks/Test田径场.json", trackJSON)
	write("images/start.jpg", "start-bytes")
	write("images/finish.jpg", "finish-bytes")

	cfg := config.Config{ConfigDir: "config", TrackDir: "resources/default_tracks"}
	svc := NewService(cfg, NopReporter{}).WithFs(fs)
	svc.newClient = func(h profile.SystemHeaders, token string) RecordClient {
		fake.headers = h
		fake.token = token
		return fake
	}
	return svc
}

func TestValidate(t *testing.T) {
	fake := &fakeClient{}
	svc := newTestService(t, fake, "")

	v, err := svc.Validate(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"checkTenant", "checkToken"}, fake.calls)
	require.Equal(t, "NJ102", fake.headers.Tenant)
	require.Equal(t, "213230000", v.StudentID)
	require.Equal(t, "Test田径场", v.Route.RouteName)
	require.Equal(t, 600, v.Track.DurationSec())
	require.Equal(t, []byte("start-bytes"), v.StartImage)
	require.Equal(t, []byte("finish-bytes"), v.FinishImage)
}

func TestValidateUnknownRoute(t *testing.T) {
	fake := &fakeClient{}
	svc := newTestService(t, fake, "")
	require.NoError(t, afero.WriteFile(svc.fs, "config/user.yaml",
		[]byte(userYAMLRoute(t, "环湖跑道", "")), 0o644))

	_, err := svc.Validate(context.Background())
	var op *OpError
	require.ErrorAs(t, err, &op)
	require.Equal(t, "resolving route", op.Desc)
	var nf *route.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.Contains(t, Explain(err), "'Test田径场'")
	require.Empty(t, fake.calls)
}

func TestUploadOrder(t *testing.T) {
	fake := &fakeClient{}
	svc := newTestService(t, fake, "")

	require.NoError(t, svc.Upload(context.Background()))
	require.Equal(t, []string{
		"checkTenant", "checkToken",
		"uploadStart", "submitStart", "uploadFinish", "submitFinish",
	}, fake.calls)

	start := fake.startPayload
	require.Equal(t, "Test田径场", start.RouteName)
	require.Equal(t, "25", start.RuleID)
	require.Equal(t, "213230000", start.StudentID)
	require.Equal(t, "https://cdn.example/start.jpg", start.StartImage)
	require.Equal(t, "07:30:00", start.StartTime)
	require.Equal(t, "", start.EndTime)

	finish := fake.finishPayload
	require.Equal(t, "record-7", finish.ID)
	require.Equal(t, 2, finish.NowStatus)
	require.Equal(t, 600, finish.ExerciseTimes)
	require.Equal(t, "07:40:00", finish.EndTime)
	require.Equal(t, "https://cdn.example/finish.jpg", finish.EndImage)
	require.JSONEq(t,
		`[{"lat":31.88,"lng":118.81,"sortNum":0},{"lat":31.88,"lng":118.81,"sortNum":1}]`,
		finish.StrLatitudeLongitude.(string))
}

func TestUploadLeavesDanglingRecord(t *testing.T) {
	fake := &fakeClient{failOn: "uploadFinish"}
	svc := newTestService(t, fake, "")

	err := svc.Upload(context.Background())
	var dangling *DanglingRecordError
	require.ErrorAs(t, err, &dangling)
	require.Equal(t, "record-7", dangling.RecordID)
	require.NotContains(t, fake.calls, "submitFinish")
	require.Contains(t, Explain(err), "started but not finished")
}

func TestUploadStopsBeforeStartOnTokenFailure(t *testing.T) {
	fake := &fakeClient{failOn: "checkToken"}
	svc := newTestService(t, fake, "")

	err := svc.Upload(context.Background())
	require.Error(t, err)
	require.Equal(t, []string{"checkTenant", "checkToken"}, fake.calls)
	var dangling *DanglingRecordError
	require.False(t, errors.As(err, &dangling))
}

func TestCustomTrack(t *testing.T) {
	fake := &fakeClient{}
	svc := newTestService(t, fake, `custom_track:
  enable: true
  file_path: "my/laps.json"
`)
	require.NoError(t, afero.WriteFile(svc.fs, "my/laps.json", []byte(trackJSON), 0o644))

	v, err := svc.Validate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, len(v.Track.Points))
}

func TestGetUserWhenMissing(t *testing.T) {
	fake := &fakeClient{}
	svc := newTestService(t, fake, "")
	require.NoError(t, svc.fs.Remove("config/user.yaml"))

	user, err := svc.GetUser()
	require.NoError(t, err)
	require.Empty(t, user.Token)
}

func TestSaveThenGetUser(t *testing.T) {
	fake := &fakeClient{}
	svc := newTestService(t, fake, "")

	user, err := svc.GetUser()
	require.NoError(t, err)
	user.Route = "Test田径场"
	require.NoError(t, svc.SaveUser(user))

	again, err := svc.GetUser()
	require.NoError(t, err)
	require.Equal(t, user, again)
}

func TestGetRouteNames(t *testing.T) {
	svc := newTestService(t, &fakeClient{}, "")

	names, err := svc.GetRouteNames()
	require.NoError(t, err)
	require.Equal(t, []string{"Test田径场"}, names)
}

func TestFetchRoutes(t *testing.T) {
	fetched := route.Route{
		RouteName: "北操场", RuleID: "26", PlanID: "11",
		RouteRule: "Test校区", MaxTime: 30, MinTime: 10,
		RouteDistanceKm: 2, RuleEndTime: "22:00", RuleStartTime: "06:00",
	}
	fake := &fakeClient{routes: []route.Route{fetched}}
	svc := newTestService(t, fake, "")

	routes, err := svc.FetchRoutes(context.Background())
	require.NoError(t, err)
	require.Equal(t, []route.Route{fetched}, routes)

	names, err := svc.GetRouteNames()
	require.NoError(t, err)
	require.Equal(t, []string{"北操场"}, names)
}
